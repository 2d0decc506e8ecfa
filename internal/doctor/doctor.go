package doctor

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"crashprobe/internal/config"
	"crashprobe/internal/fsutil"
	"crashprobe/internal/store"

	"github.com/google/uuid"
)

type Finding struct {
	Code    string `json:"code"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type Report struct {
	Healthy  bool      `json:"healthy"`
	Outdir   string    `json:"outdir,omitempty"`
	Counters []Counter `json:"counters,omitempty"`
	Findings []Finding `json:"findings"`
}

type Counter struct {
	Name  string `json:"name"`
	Value uint   `json:"value"`
}

type Service struct {
	ConfigPath string
}

// Run inspects the config and the state persisted under the crashlog outdir.
// It never modifies anything.
func (s *Service) Run() Report {
	findings := []Finding{}
	report := Report{}
	add := func(code, level, msg string) {
		findings = append(findings, Finding{Code: code, Level: level, Message: msg})
	}

	if _, err := os.Stat(s.ConfigPath); err != nil {
		add("DOC_CONFIG_MISSING", "error", err.Error())
		return finish(report, findings)
	}
	cfg, err := config.Load(s.ConfigPath)
	if err != nil {
		add("DOC_CONFIG_INVALID", "error", err.Error())
		return finish(report, findings)
	}
	if cfg.Build.DeviceUUID == "" {
		add("DOC_DEVICE_UUID_MISSING", "warn", "device uuid is empty; event ids and crashfiles lose device identity")
	} else if _, err := uuid.Parse(cfg.Build.DeviceUUID); err != nil {
		add("DOC_DEVICE_UUID_FORMAT", "warn", fmt.Sprintf("device id %q is not a uuid; it is used verbatim", cfg.Build.DeviceUUID))
	}

	sender, ok := config.FindSender(cfg, config.SenderCrashlog)
	if !ok {
		add("DOC_SENDER_MISSING", "error", "no crashlog sender configured")
		return finish(report, findings)
	}
	report.Outdir = sender.Outdir

	maxdirs, err := strconv.ParseUint(strings.TrimSpace(sender.MaxCrashDirs), 10, 32)
	if err != nil || maxdirs == 0 {
		add("DOC_LIMIT_INVALID", "error", fmt.Sprintf("maxcrashdirs %q is not a positive integer", sender.MaxCrashDirs))
	}

	if fi, err := os.Stat(sender.Outdir); err != nil || !fi.IsDir() {
		add("DOC_OUTDIR_MISSING", "error", sender.Outdir+" is not a directory; run init")
		return finish(report, findings)
	}

	for _, name := range store.CounterFiles() {
		v, err := fsutil.ReadUint(store.CounterPath(sender.Outdir, name))
		switch {
		case errors.Is(err, fsutil.ErrIntMissing):
			add("DOC_COUNTER_MISSING", "error", name+" missing; run init")
		case err != nil:
			add("DOC_COUNTER_CORRUPT", "error", err.Error())
		case maxdirs > 0 && uint64(v) >= maxdirs:
			add("DOC_COUNTER_RANGE", "warn", fmt.Sprintf("%s holds %d, limit is %d; next reservation wraps it", name, v, maxdirs))
			report.Counters = append(report.Counters, Counter{Name: name, Value: v})
		default:
			report.Counters = append(report.Counters, Counter{Name: name, Value: v})
		}
	}

	if blob, err := fsutil.ReadFile(cfg.Reboot.BootIDPath); err != nil || len(blob) == 0 {
		add("DOC_BOOTID_UNREADABLE", "warn", cfg.Reboot.BootIDPath+" unreadable; every check will report a reboot")
	}
	return finish(report, findings)
}

func finish(r Report, findings []Finding) Report {
	healthy := true
	for _, f := range findings {
		if f.Level == "error" {
			healthy = false
			break
		}
	}
	r.Healthy = healthy
	r.Findings = findings
	return r
}
