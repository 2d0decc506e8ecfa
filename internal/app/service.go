package app

import (
	"fmt"
	"log/slog"

	"crashprobe/internal/clock"
	"crashprobe/internal/config"
	"crashprobe/internal/crashfile"
	"crashprobe/internal/doctor"
	"crashprobe/internal/eventid"
	"crashprobe/internal/history"
	"crashprobe/internal/logging"
	"crashprobe/internal/reboot"
	"crashprobe/internal/slot"
	"crashprobe/internal/store"
)

type Options struct {
	ConfigPath string
	// Clock overrides the system clock; tests use it to pin uptime and date.
	Clock *clock.Clock
	// Logger overrides the logger built from the config's logging section.
	Logger *slog.Logger
}

type Service struct {
	ConfigPath string
	Config     config.Config
	Build      config.BuildContext
	Outdir     string

	Logger  *slog.Logger
	Clock   *clock.Clock
	IDs     *eventid.Generator
	Slots   *slot.Allocator
	Writer  *crashfile.Writer
	Reboot  *reboot.Detector
	History *history.Logger
	Doctor  *doctor.Service
}

func New(opts Options) (*Service, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	cfg, err := config.Ensure(configPath)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Init(cfg.Logging.Format, logging.ParseLevel(cfg.Logging.Level))
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New(clock.Options{})
	}

	build := cfg.BuildContext()
	registry := config.NewRegistry(cfg)
	var outdir string
	var hist *history.Logger
	if sender, ok := config.FindSender(cfg, config.SenderCrashlog); ok {
		outdir = sender.Outdir
		hist = history.New(store.HistoryPath(outdir))
	}

	return &Service{
		ConfigPath: configPath,
		Config:     cfg,
		Build:      build,
		Outdir:     outdir,
		Logger:     logger,
		Clock:      clk,
		IDs:        eventid.NewGenerator(build, clk),
		Slots:      &slot.Allocator{Registry: registry, Alerts: hist, Logger: logger},
		Writer:     crashfile.NewWriter(build, clk, logger),
		Reboot:     &reboot.Detector{Registry: registry, BootIDPath: cfg.Reboot.BootIDPath, Logger: logger},
		History:    hist,
		Doctor:     &doctor.Service{ConfigPath: configPath},
	}, nil
}

func (s *Service) SaveConfig() error {
	return config.Save(s.ConfigPath, s.Config)
}

// Init prepares the crashlog outdir so reservations can succeed.
func (s *Service) Init() ([]string, error) {
	if s.Outdir == "" {
		return nil, fmt.Errorf("%w: sender %q", slot.ErrConfigMissing, config.SenderCrashlog)
	}
	created, err := store.EnsureLayout(s.Outdir)
	if err != nil {
		return created, err
	}
	for _, name := range created {
		s.Logger.Info("initialised counter", "path", store.CounterPath(s.Outdir, name))
	}
	return created, nil
}

// EventRequest describes one detected event to log.
type EventRequest struct {
	Category slot.Category
	Size     eventid.Size
	Seed1    string
	Seed2    string
	Event    string
	Type     string
	Data     [3]*string
}

type EventResult struct {
	ID  string `json:"id"`
	Dir string `json:"dir"`
}

// LogEvent runs the full sequence for one event: derive an id, create its
// slot directory and write the crashfile into it. Failures are returned as-is
// and nothing is retried.
func (s *Service) LogEvent(req EventRequest) (EventResult, error) {
	id, err := s.IDs.Generate(req.Seed1, req.Seed2, req.Size)
	if err != nil {
		s.Logger.Error("generate event id", "event", req.Event, "error", err)
		return EventResult{}, err
	}
	dir, err := s.Slots.CreateDir(req.Category, id)
	if err != nil {
		return EventResult{ID: id}, err
	}
	rec := crashfile.Record{Event: req.Event, ID: id, Type: req.Type, Data: req.Data}
	if err := s.Writer.Write(dir, rec); err != nil {
		return EventResult{ID: id, Dir: dir}, err
	}
	s.Logger.Debug("event logged", "category", req.Category.String(), "id", id, "dir", dir)
	return EventResult{ID: id, Dir: dir}, nil
}
