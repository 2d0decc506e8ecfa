package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"crashprobe/internal/config"
	"crashprobe/internal/fsutil"
	"crashprobe/internal/store"
)

func writeConfig(t *testing.T, outdir, maxdirs, bootID string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.DefaultConfig()
	cfg.Build.DeviceUUID = "6f1d2c3b-0000-4000-8000-000000000001"
	cfg.Senders = []config.SenderConfig{{Name: config.SenderCrashlog, Outdir: outdir, MaxCrashDirs: maxdirs}}
	cfg.Reboot.BootIDPath = bootID
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return path
}

func hasCode(r Report, code string) bool {
	for _, f := range r.Findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

func TestDoctorHealthy(t *testing.T) {
	outdir := t.TempDir()
	if _, err := store.EnsureLayout(outdir); err != nil {
		t.Fatalf("layout: %v", err)
	}
	bootID := filepath.Join(t.TempDir(), "boot_id")
	if err := os.WriteFile(bootID, []byte("abc\n"), 0o644); err != nil {
		t.Fatalf("boot id: %v", err)
	}
	report := (&Service{ConfigPath: writeConfig(t, outdir, "10", bootID)}).Run()
	if !report.Healthy {
		t.Fatalf("expected healthy report, got %+v", report.Findings)
	}
	if len(report.Counters) != 3 {
		t.Fatalf("counters = %+v", report.Counters)
	}
}

func TestDoctorFindings(t *testing.T) {
	outdir := t.TempDir()
	if _, err := store.EnsureLayout(outdir); err != nil {
		t.Fatalf("layout: %v", err)
	}
	if err := os.Remove(store.CounterPath(outdir, store.StatsCounterFile)); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := fsutil.WriteUint(store.CounterPath(outdir, store.CrashCounterFile), 12); err != nil {
		t.Fatalf("seed: %v", err)
	}
	report := (&Service{ConfigPath: writeConfig(t, outdir, "10", filepath.Join(outdir, "nope"))}).Run()
	if report.Healthy {
		t.Fatalf("expected unhealthy report")
	}
	for _, code := range []string{"DOC_COUNTER_MISSING", "DOC_COUNTER_RANGE", "DOC_BOOTID_UNREADABLE"} {
		if !hasCode(report, code) {
			t.Errorf("missing finding %s in %+v", code, report.Findings)
		}
	}
}

func TestDoctorMissingConfig(t *testing.T) {
	report := (&Service{ConfigPath: filepath.Join(t.TempDir(), "none.toml")}).Run()
	if report.Healthy || !hasCode(report, "DOC_CONFIG_MISSING") {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestDoctorMissingOutdir(t *testing.T) {
	outdir := filepath.Join(t.TempDir(), "absent")
	report := (&Service{ConfigPath: writeConfig(t, outdir, "0", "/nonexistent")}).Run()
	if !hasCode(report, "DOC_OUTDIR_MISSING") || !hasCode(report, "DOC_LIMIT_INVALID") {
		t.Fatalf("unexpected findings: %+v", report.Findings)
	}
}

func TestDoctorWarnsOnNonUUIDDeviceID(t *testing.T) {
	outdir := t.TempDir()
	if _, err := store.EnsureLayout(outdir); err != nil {
		t.Fatalf("layout: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.DefaultConfig()
	cfg.Build.DeviceUUID = "GPU0A1B2C3D4E5F"
	cfg.Senders = []config.SenderConfig{{Name: config.SenderCrashlog, Outdir: outdir, MaxCrashDirs: "10"}}
	cfg.Reboot.BootIDPath = filepath.Join(outdir, store.CrashCounterFile)
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	report := (&Service{ConfigPath: path}).Run()
	if !report.Healthy {
		t.Fatalf("a serial-style device id is not an error: %+v", report.Findings)
	}
	if !hasCode(report, "DOC_DEVICE_UUID_FORMAT") {
		t.Fatalf("expected DOC_DEVICE_UUID_FORMAT warning, got %+v", report.Findings)
	}
}

func TestDoctorCounterBeyondLimitIsWarning(t *testing.T) {
	outdir := t.TempDir()
	if _, err := store.EnsureLayout(outdir); err != nil {
		t.Fatalf("layout: %v", err)
	}
	if err := fsutil.WriteUint(store.CounterPath(outdir, store.VMEventCounterFile), 40); err != nil {
		t.Fatalf("seed: %v", err)
	}
	report := (&Service{ConfigPath: writeConfig(t, outdir, "10", filepath.Join(outdir, store.CrashCounterFile))}).Run()
	if !report.Healthy || !hasCode(report, "DOC_COUNTER_RANGE") {
		t.Fatalf("unexpected report: %+v", report)
	}
}
