package config

import "fmt"

func FindSender(cfg Config, name string) (SenderConfig, bool) {
	for _, s := range cfg.Senders {
		if s.Name == name {
			return s, true
		}
	}
	return SenderConfig{}, false
}

// SetSender replaces the sender with the same name or appends it.
func SetSender(cfg *Config, s SenderConfig) error {
	if cfg == nil {
		return fmt.Errorf("DOC_CONFIG_SENDER: nil config")
	}
	replaced := false
	for i := range cfg.Senders {
		if cfg.Senders[i].Name == s.Name {
			cfg.Senders[i] = s
			replaced = true
			break
		}
	}
	if !replaced {
		cfg.Senders = append(cfg.Senders, s)
	}
	*cfg = Normalize(*cfg)
	return Validate(*cfg)
}

// Registry answers sender lookups for the slot allocator and the reboot
// detector.
type Registry struct {
	cfg Config
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg}
}

// Lookup returns the sender's output directory and its raw max-dirs limit.
func (r *Registry) Lookup(name string) (outdir, maxdirs string, ok bool) {
	if r == nil {
		return "", "", false
	}
	s, ok := FindSender(r.cfg, name)
	if !ok {
		return "", "", false
	}
	return s.Outdir, s.MaxCrashDirs, true
}
