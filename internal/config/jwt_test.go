package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig_DefaultValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "test-secret-key", cfg.Secret)
	assert.Equal(t, 24, cfg.ExpirationHours, "should use default expiration of 24 hours")
	assert.False(t, cfg.Generated)
}

func TestNewJWTConfig_CustomExpiration(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")
	t.Setenv("JWT_EXPIRATION_HOURS", "48")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, 48, cfg.ExpirationHours)
}

func TestNewJWTConfig_MissingSecretGeneratesOne(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	first, err := NewJWTConfig()
	require.NoError(t, err)
	assert.True(t, first.Generated)
	assert.Len(t, first.Secret, 64)

	second, err := NewJWTConfig()
	require.NoError(t, err)
	assert.NotEqual(t, first.Secret, second.Secret)
}

func TestNewJWTConfig_InvalidExpiration(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not a number", "abc"},
		{"zero", "0"},
		{"negative", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret-key")
			t.Setenv("JWT_EXPIRATION_HOURS", tt.value)

			_, err := NewJWTConfig()
			assert.Error(t, err)
		})
	}
}
