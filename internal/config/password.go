package config

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultAdminUsername is used when ADMIN_USERNAME is not set.
const DefaultAdminUsername = "admin"

// PasswordConfig holds configuration for password hashing and verification.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string // optional global secret for additional security
}

// NewPasswordConfig creates a new password configuration from environment variables.
// It reads BCRYPT_COST (default: 12) and optionally PASSWORD_PEPPER.
func NewPasswordConfig() (*PasswordConfig, error) {
	cost, err := getEnvInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	config := &PasswordConfig{
		BcryptCost: cost,
		Pepper:     getEnvString("PASSWORD_PEPPER", ""),
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *PasswordConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return nil
}

// HashPassword hashes a password using bcrypt (with optional pepper).
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw+c.Pepper), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a stored hash (with optional pepper).
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pw+c.Pepper)) == nil
}

// AdminCredentials is the single administrator account. Only the bcrypt
// hash of the password is kept in memory.
type AdminCredentials struct {
	Username     string
	passwordHash string
	passwords    *PasswordConfig
}

// NewAdminCredentials reads ADMIN_USERNAME (default: admin) and
// ADMIN_PASSWORD (required) and hashes the password with passwords.
func NewAdminCredentials(passwords *PasswordConfig) (*AdminCredentials, error) {
	password := getEnvString("ADMIN_PASSWORD", "")
	if password == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD is required but not set")
	}
	return NewAdminCredentialsFrom(getEnvString("ADMIN_USERNAME", DefaultAdminUsername), password, passwords)
}

// NewAdminCredentialsFrom builds credentials from explicit values.
func NewAdminCredentialsFrom(username, password string, passwords *PasswordConfig) (*AdminCredentials, error) {
	if username == "" {
		return nil, fmt.Errorf("admin username cannot be empty")
	}
	if password == "" {
		return nil, fmt.Errorf("admin password cannot be empty")
	}
	hash, err := passwords.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &AdminCredentials{Username: username, passwordHash: hash, passwords: passwords}, nil
}

// Verify reports whether username and password match the administrator.
func (a *AdminCredentials) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1
	passOK := a.passwords.VerifyPassword(password, a.passwordHash)
	return userOK && passOK
}
