// Package config loads the server and client configuration from the
// environment and from optional JSON files.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// JWTConfig holds configuration for admin token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	// Generated is set when no JWT_SECRET was configured and a random
	// per-process secret is used instead. Tokens do not survive a restart.
	Generated bool
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads JWT_SECRET and JWT_EXPIRATION_HOURS (default: 24).
func NewJWTConfig() (*JWTConfig, error) {
	expirationHours, err := getEnvInt("JWT_EXPIRATION_HOURS", 24)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
	}

	config := &JWTConfig{
		Secret:          getEnvString("JWT_SECRET", ""),
		ExpirationHours: expirationHours,
	}
	if config.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		config.Secret = secret
		config.Generated = true
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
