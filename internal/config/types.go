package config

// Config is the v1 probe configuration schema.
type Config struct {
	Version int            `toml:"version"`
	Build   BuildConfig    `toml:"build"`
	Logging LoggingConfig  `toml:"logging"`
	Senders []SenderConfig `toml:"senders"`
	Reboot  RebootConfig   `toml:"reboot"`
}

type BuildConfig struct {
	Version    string `toml:"version" json:"version"`
	DeviceUUID string `toml:"device_uuid" json:"deviceUuid"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SenderConfig describes one output target. MaxCrashDirs is kept as text and
// parsed where it is used so a bad value fails the operation that needs it.
type SenderConfig struct {
	Name         string `toml:"name" json:"name"`
	Outdir       string `toml:"outdir" json:"outdir"`
	MaxCrashDirs string `toml:"maxcrashdirs" json:"maxCrashDirs"`
}

type RebootConfig struct {
	BootIDPath string `toml:"boot_id_path" json:"bootIdPath"`
}

// BuildContext is the immutable identity of the running build and device.
type BuildContext struct {
	Version    string
	DeviceUUID string
}

func (c Config) BuildContext() BuildContext {
	return BuildContext{Version: c.Build.Version, DeviceUUID: c.Build.DeviceUUID}
}
