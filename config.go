package poolshell

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlConfig is the on-disk shape of a pool Config. Durations are
// strings (e.g. "30s") so the file stays human-editable, matching the
// convention most of this dependency's users follow for config files
// that lean on yaml.v3's strict unmarshalling.
type yamlConfig struct {
	MinPoolSize     int    `yaml:"minPoolSize"`
	MaxPoolSize     int    `yaml:"maxPoolSize"`
	ReserveSize     int    `yaml:"reserveSize"`
	KeepAlive       string `yaml:"keepAlive"`
	Verbose         bool   `yaml:"verbose"`
	StartupDeadline string `yaml:"startupDeadline"`
}

// LoadConfig reads a Config from a YAML file at path. Zero-valued or
// absent duration fields default to "0s".
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, wrapErr(ErrInvalidConfiguration, "reading config %s: %v", path, err)
	}

	var y yamlConfig
	if err := yaml.Unmarshal(raw, &y); err != nil {
		return Config{}, wrapErr(ErrInvalidConfiguration, "parsing config %s: %v", path, err)
	}

	keepAlive, err := parseOptionalDuration(y.KeepAlive)
	if err != nil {
		return Config{}, wrapErr(ErrInvalidConfiguration, "config %s: keepAlive: %v", path, err)
	}
	startupDeadline, err := parseOptionalDuration(y.StartupDeadline)
	if err != nil {
		return Config{}, wrapErr(ErrInvalidConfiguration, "config %s: startupDeadline: %v", path, err)
	}

	cfg := Config{
		MinPoolSize:     y.MinPoolSize,
		MaxPoolSize:     y.MaxPoolSize,
		ReserveSize:     y.ReserveSize,
		KeepAlive:       keepAlive,
		Verbose:         y.Verbose,
		StartupDeadline: startupDeadline,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseOptionalDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
