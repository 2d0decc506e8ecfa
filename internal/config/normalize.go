package config

import "strings"

func Normalize(cfg Config) Config {
	if cfg.Version == 0 {
		cfg.Version = SchemaVersion
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Reboot.BootIDPath == "" {
		cfg.Reboot.BootIDPath = DefaultBootIDPath
	}
	cfg.Build.DeviceUUID = strings.TrimSpace(cfg.Build.DeviceUUID)
	for i := range cfg.Senders {
		cfg.Senders[i].Name = strings.TrimSpace(cfg.Senders[i].Name)
		if cfg.Senders[i].MaxCrashDirs == "" {
			cfg.Senders[i].MaxCrashDirs = DefaultMaxCrashDirs
		}
	}
	return cfg
}
