// Package config loads the client configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file or a field is absent.
const (
	DefaultBaseURL = "http://127.0.0.1:8000"
	DefaultTimeout = 30 * time.Second
)

// Config holds all CircleShare client configuration.
type Config struct {
	// BaseURL is the backend's root URL.
	BaseURL string `yaml:"base_url"`

	// DataDir is where the session database lives. Defaults to
	// ~/.config/circleshare.
	DataDir string `yaml:"data_dir"`

	// RequestTimeout bounds each backend call, as a duration string
	// ("30s", "2m"). Use Timeout() to read it parsed.
	RequestTimeout string `yaml:"request_timeout"`

	// LogLevel is debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`
}

// DefaultPath returns the standard config file location,
// ~/.config/circleshare/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "circleshare", "config.yaml")
}

// Load reads the config at path, fills in defaults, and applies environment
// overrides (CIRCLESHARE_BASE_URL, CIRCLESHARE_DATA_DIR, LOG_LEVEL).
// A missing file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to defaults
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if cfg.RequestTimeout != "" {
		if _, err := time.ParseDuration(cfg.RequestTimeout); err != nil {
			return nil, fmt.Errorf("invalid request_timeout %q: %w", cfg.RequestTimeout, err)
		}
	}

	if v := os.Getenv("CIRCLESHARE_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("CIRCLESHARE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Dir(DefaultPath())
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Timeout returns the parsed request timeout, falling back to
// DefaultTimeout.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// SessionDBPath returns the session database location under DataDir.
func (c *Config) SessionDBPath() string {
	return filepath.Join(c.DataDir, "session.db")
}
