package config

const (
	SchemaVersion = 1

	// SenderCrashlog is the sender whose outdir hosts counters, slots and
	// the boot-id record.
	SenderCrashlog = "crashlog"

	DefaultBootIDPath   = "/proc/sys/kernel/random/boot_id"
	DefaultMaxCrashDirs = "1000"
)

// Set through -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// DefaultConfig returns a fully-populated v1 config document. DeviceUUID is
// left empty; Ensure fills it when the file is first created.
func DefaultConfig() Config {
	return Config{
		Version: SchemaVersion,
		Build: BuildConfig{
			Version: Version,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Senders: []SenderConfig{
			{Name: SenderCrashlog, Outdir: "/var/log/crashlog", MaxCrashDirs: DefaultMaxCrashDirs},
		},
		Reboot: RebootConfig{
			BootIDPath: DefaultBootIDPath,
		},
	}
}
