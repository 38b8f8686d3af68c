package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Client defaults.
const (
	DefaultAPIURL  = "http://localhost:8080"
	DefaultTimeout = 30 * time.Second
)

// Config represents the CLI client configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	APIURL    string `json:"api_url,omitempty"`    // Base URL of the job-board API
	StatePath string `json:"state_path,omitempty"` // SQLite file holding favorites, recent and applied jobs
	Timeout   string `json:"timeout,omitempty"`    // Overall HTTP timeout, e.g. "30s"
	Email     string `json:"email,omitempty"`      // Default email for "my applications"
	LogLevel  string `json:"log_level,omitempty"`  // zerolog level for CLI diagnostics
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv returns the client settings found in JOBBOARD_API_URL, JOBBOARD_STATE
// and JOBBOARD_EMAIL.
func FromEnv() Config {
	return Config{
		APIURL:    getEnvString("JOBBOARD_API_URL", ""),
		StatePath: getEnvString("JOBBOARD_STATE", ""),
		Email:     getEnvString("JOBBOARD_EMAIL", ""),
	}
}

// Defaults returns the built-in client settings.
func Defaults() Config {
	return Config{
		APIURL:    DefaultAPIURL,
		StatePath: DefaultStatePath(),
		Timeout:   DefaultTimeout.String(),
		LogLevel:  "warn",
	}
}

// DefaultStatePath returns the per-user location of the client state file.
func DefaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "jobboard", "state.db")
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("config error: invalid timeout %q: %v", c.Timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("config error: 'timeout' must be positive")
		}
	}
	return nil
}

// TimeoutDuration returns the parsed timeout, DefaultTimeout when unset or invalid.
func (c *Config) TimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}
	return DefaultTimeout
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to layer flags over the environment over the config file over built-ins.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.StatePath == "" {
		result.StatePath = defaults.StatePath
	}
	if result.Timeout == "" {
		result.Timeout = defaults.Timeout
	}
	if result.Email == "" {
		result.Email = defaults.Email
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	return result
}
