// Package config loads ambient, non-secret connector settings from YAML.
// Credentials (API key, private key path) are an external collaborator's
// concern and never appear here.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level ambient configuration for a FIX connector
// process. Any number of sessions may be constructed against one Config.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Session SessionConfig `yaml:"session"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig holds the log level and destination read from the file.
// The session package does not apply them: a session logs through
// Params.Logger, or logrus's standard logger when that is nil.
type LoggingConfig struct {
	Level string `yaml:"level"` // logrus level name, e.g. "info", "warn"
	Path  string `yaml:"path"`  // empty means stderr
}

// SessionConfig holds defaults the factories fall back to when a caller
// does not override them.
type SessionConfig struct {
	HeartBtIntSeconds  int           `yaml:"heart_bt_int_seconds"`
	RetrieveTimeout    time.Duration `yaml:"retrieve_timeout"`
	RestartDelay       time.Duration `yaml:"restart_delay"`
	DialTimeout        time.Duration `yaml:"dial_timeout"`
	ReceiveBufferBytes int           `yaml:"receive_buffer_bytes"`
}

// MetricsConfig holds the metrics toggle read from the file. Session
// construction does not consult it: the factories create collectors
// whenever FactoryOptions.PromRegistry is non-nil.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads and parses a YAML config file, applying defaults for any
// field the file does not set.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the ambient settings a Config falls back to when a file
// does not override them. Callers that never load a config file (e.g.
// session construction with no operator-supplied YAML) use this directly.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Session: SessionConfig{
			HeartBtIntSeconds: 30,
			RetrieveTimeout:   20 * time.Second,
			RestartDelay:      10 * time.Minute,
			DialTimeout:       10 * time.Second,
			ReceiveBufferBytes: 64 * 1024,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
