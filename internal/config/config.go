package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"crashprobe/internal/fsutil"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

// Ensure loads the config at path, creating a default one when it does not
// exist. A config without a device uuid gets a fresh one persisted; the rest
// of the document is written back as the user wrote it.
func Ensure(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	cfg, err := Load(path)
	if err == nil {
		if cfg.Build.DeviceUUID != "" {
			return cfg, nil
		}
		raw, err := decode(path)
		if err != nil {
			return Config{}, err
		}
		raw.Build.DeviceUUID = uuid.NewString()
		if err := Save(path, raw); err != nil {
			return Config{}, err
		}
		cfg.Build.DeviceUUID = raw.Build.DeviceUUID
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	cfg = DefaultConfig()
	cfg.Build.DeviceUUID = uuid.NewString()
	if err := Save(path, cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads, validates and resolves the config: sender outdirs come back
// with "~" expanded and cleaned.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	cfg, err := decode(path)
	if err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	for i := range cfg.Senders {
		outdir, err := ExpandPath(cfg.Senders[i].Outdir)
		if err != nil {
			return Config{}, fmt.Errorf("DOC_CONFIG_SENDER: sender %q: %w", cfg.Senders[i].Name, err)
		}
		cfg.Senders[i].Outdir = filepath.Clean(outdir)
	}
	return cfg, nil
}

// decode returns the normalized document without resolving paths.
func decode(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("DOC_CONFIG_PARSE: %w", err)
	}
	return Normalize(cfg), nil
}

func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	cfg = Normalize(cfg)
	if err := Validate(cfg); err != nil {
		return err
	}

	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	blob, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("DOC_CONFIG_ENCODE: %w", err)
	}
	return fsutil.AtomicWrite(path, blob, 0o644)
}
