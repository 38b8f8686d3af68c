package config

import (
	"fmt"
	"strings"
)

// DefaultPort is the port the API listens on when PORT is not set.
const DefaultPort = 8080

// ServerConfig holds the API server settings read from the environment.
type ServerConfig struct {
	Port              int
	DatabaseURL       string
	RequireAdminToken bool
	OrphanPolicy      string
	LogLevel          string
	LogFormat         string
}

// LoadServerConfig reads PORT, DATABASE_URL, REQUIRE_ADMIN_TOKEN,
// ORPHAN_POLICY, LOG_LEVEL and LOG_FORMAT.
func LoadServerConfig() (*ServerConfig, error) {
	port, err := getEnvInt("PORT", DefaultPort)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %v", err)
	}
	requireToken, err := getEnvBool("REQUIRE_ADMIN_TOKEN", false)
	if err != nil {
		return nil, fmt.Errorf("invalid REQUIRE_ADMIN_TOKEN: %v", err)
	}

	cfg := &ServerConfig{
		Port:              port,
		DatabaseURL:       getEnvString("DATABASE_URL", ""),
		RequireAdminToken: requireToken,
		OrphanPolicy:      strings.ToLower(getEnvString("ORPHAN_POLICY", "retain")),
		LogLevel:          getEnvString("LOG_LEVEL", "info"),
		LogFormat:         getEnvString("LOG_FORMAT", "json"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the ranges of the configured values.
func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: port must be between 1 and 65535, got %d", c.Port)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("config error: log format must be json or console, got %q", c.LogFormat)
	}
	return nil
}
