package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if _, ok := FindSender(cfg, SenderCrashlog); !ok {
		t.Fatalf("expected default crashlog sender")
	}
}

func TestEnsureCreatesAndLoadsConfig(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.toml")
	cfg, err := Ensure(path)
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if cfg.Version != SchemaVersion {
		t.Fatalf("expected schema version %d, got %d", SchemaVersion, cfg.Version)
	}
	if _, err := uuid.Parse(cfg.Build.DeviceUUID); err != nil {
		t.Fatalf("expected generated device uuid, got %q: %v", cfg.Build.DeviceUUID, err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file should exist: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Build.DeviceUUID != cfg.Build.DeviceUUID {
		t.Fatalf("device uuid not persisted: %q vs %q", loaded.Build.DeviceUUID, cfg.Build.DeviceUUID)
	}

	again, err := Ensure(path)
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if again.Build.DeviceUUID != cfg.Build.DeviceUUID {
		t.Fatalf("ensure must not regenerate an existing uuid")
	}
}

func TestLoadParsesSenders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `version = 1
[build]
version = "1.2.3"
device_uuid = "6F1D2C3B-0000-4000-8000-000000000001"

[[senders]]
name = "crashlog"
outdir = "/data/logs/"
maxcrashdirs = "10"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Build.DeviceUUID != "6F1D2C3B-0000-4000-8000-000000000001" {
		t.Fatalf("device id must be kept verbatim, got %q", cfg.Build.DeviceUUID)
	}
	if cfg.Reboot.BootIDPath != DefaultBootIDPath {
		t.Fatalf("boot id path default missing: %q", cfg.Reboot.BootIDPath)
	}
	outdir, maxdirs, ok := NewRegistry(cfg).Lookup("crashlog")
	if !ok || outdir != "/data/logs" || maxdirs != "10" {
		t.Fatalf("lookup = %q, %q, %v", outdir, maxdirs, ok)
	}
	if _, _, ok := NewRegistry(cfg).Lookup("telemd"); ok {
		t.Fatalf("unexpected sender telemd")
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"DOC_CONFIG_VERSION": func(c *Config) { c.Version = 2 },
		"DOC_CONFIG_BUILD":   func(c *Config) { c.Build.Version = "" },
		"DOC_CONFIG_LOGGING": func(c *Config) { c.Logging.Format = "xml" },
		"DOC_CONFIG_SENDER":  func(c *Config) { c.Senders = append(c.Senders, c.Senders[0]) },
	}
	for code, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		err := Validate(cfg)
		if err == nil || !strings.HasPrefix(err.Error(), code) {
			t.Errorf("%s: got %v", code, err)
		}
	}
}

func TestSetSenderReplaces(t *testing.T) {
	cfg := DefaultConfig()
	if err := SetSender(&cfg, SenderConfig{Name: SenderCrashlog, Outdir: "/tmp/x", MaxCrashDirs: "5"}); err != nil {
		t.Fatalf("SetSender: %v", err)
	}
	if len(cfg.Senders) != 1 {
		t.Fatalf("expected replacement, got %d senders", len(cfg.Senders))
	}
	if err := SetSender(&cfg, SenderConfig{Name: "telemd", Outdir: "/tmp/y"}); err != nil {
		t.Fatalf("SetSender append: %v", err)
	}
	s, _ := FindSender(cfg, "telemd")
	if s.MaxCrashDirs != DefaultMaxCrashDirs {
		t.Fatalf("expected default maxcrashdirs, got %q", s.MaxCrashDirs)
	}
	if err := SetSender(nil, SenderConfig{}); err == nil {
		t.Fatalf("expected nil config error")
	}
}

func TestLoadKeepsSerialStyleDeviceID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `version = 1
[build]
version = "1.2.3"
device_uuid = "  GPU0A1B2C3D4E5F "
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Build.DeviceUUID != "GPU0A1B2C3D4E5F" {
		t.Fatalf("DeviceUUID = %q", cfg.Build.DeviceUUID)
	}
	ensured, err := Ensure(path)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if ensured.BuildContext().DeviceUUID != "GPU0A1B2C3D4E5F" {
		t.Fatalf("ensure replaced device id: %q", ensured.Build.DeviceUUID)
	}
}

func TestEnsureFillsUUIDWithoutRewritingPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `version = 1
[build]
version = "1.2.3"

[[senders]]
name = "crashlog"
outdir = "~/logs/"
maxcrashdirs = "10"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Ensure(path)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if cfg.Build.DeviceUUID == "" {
		t.Fatalf("expected generated device uuid")
	}
	if s, _ := FindSender(cfg, SenderCrashlog); s.Outdir != filepath.Join(home, "logs") {
		t.Fatalf("resolved outdir = %q", s.Outdir)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(blob), "~/logs/") {
		t.Fatalf("saved config lost the user's outdir:\n%s", blob)
	}
	if strings.Contains(string(blob), home) {
		t.Fatalf("saved config has an expanded outdir:\n%s", blob)
	}
	if !strings.Contains(string(blob), cfg.Build.DeviceUUID) {
		t.Fatalf("saved config missing device uuid:\n%s", blob)
	}
}
