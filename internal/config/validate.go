package config

import (
	"fmt"
	"strings"
)

var allowedLogFormats = map[string]struct{}{
	"text": {},
	"json": {},
}

func Validate(cfg Config) error {
	if cfg.Version != SchemaVersion {
		return fmt.Errorf("DOC_CONFIG_VERSION: unsupported version %d", cfg.Version)
	}
	if cfg.Build.Version == "" {
		return fmt.Errorf("DOC_CONFIG_BUILD: missing build version")
	}
	if cfg.Logging.Level == "" || cfg.Logging.Format == "" {
		return fmt.Errorf("DOC_CONFIG_LOGGING: missing logging level/format")
	}
	if _, ok := allowedLogFormats[cfg.Logging.Format]; !ok {
		return fmt.Errorf("DOC_CONFIG_LOGGING: unsupported format %q", cfg.Logging.Format)
	}

	names := map[string]struct{}{}
	for _, s := range cfg.Senders {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("DOC_CONFIG_SENDER: sender name is required")
		}
		if _, ok := names[s.Name]; ok {
			return fmt.Errorf("DOC_CONFIG_SENDER: duplicate sender %q", s.Name)
		}
		names[s.Name] = struct{}{}
		if s.Outdir == "" {
			return fmt.Errorf("DOC_CONFIG_SENDER: sender %q missing outdir", s.Name)
		}
	}
	return nil
}
