package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPasswords() *PasswordConfig {
	return &PasswordConfig{BcryptCost: 10}
}

func TestNewPasswordConfig(t *testing.T) {
	tests := []struct {
		name     string
		cost     string
		pepper   string
		wantCost int
		wantErr  bool
	}{
		{"default cost", "", "", 12, false},
		{"custom cost", "11", "pepper", 11, false},
		{"cost too low", "9", "", 0, true},
		{"cost too high", "15", "", 0, true},
		{"not a number", "high", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BCRYPT_COST", tt.cost)
			t.Setenv("PASSWORD_PEPPER", tt.pepper)

			cfg, err := NewPasswordConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
			assert.Equal(t, tt.pepper, cfg.Pepper)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := testPasswords()

	hash, err := cfg.HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"))
	assert.True(t, cfg.VerifyPassword("s3cret", hash))
	assert.False(t, cfg.VerifyPassword("wrong", hash))
}

func TestPasswordConfig_VerifyPassword_WithPepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: 10, Pepper: "pepper"}
	hash, err := peppered.HashPassword("s3cret")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("s3cret", hash))
	assert.False(t, testPasswords().VerifyPassword("s3cret", hash), "pepper must be required to verify")
}

func TestNewAdminCredentials(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "")
	t.Setenv("ADMIN_PASSWORD", "hunter2")

	creds, err := NewAdminCredentials(testPasswords())
	require.NoError(t, err)
	assert.Equal(t, DefaultAdminUsername, creds.Username)
	assert.True(t, creds.Verify("admin", "hunter2"))
	assert.False(t, creds.Verify("admin", "hunter3"))
	assert.False(t, creds.Verify("root", "hunter2"))
}

func TestNewAdminCredentials_MissingPassword(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "")

	_, err := NewAdminCredentials(testPasswords())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD")
}

func TestNewAdminCredentialsFrom_Validation(t *testing.T) {
	_, err := NewAdminCredentialsFrom("", "pw", testPasswords())
	assert.Error(t, err)

	_, err = NewAdminCredentialsFrom("admin", "", testPasswords())
	assert.Error(t, err)
}
