package types

import (
	"github.com/go-playground/validator/v10"
)

// RoleAdmin is the only role issued by the login endpoint.
const RoleAdmin = "admin"

// LoginRequest represents the admin login request.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminUser is the principal returned on a successful login.
type AdminUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResponse represents the login response. Message is only set on failure.
type LoginResponse struct {
	Success bool       `json:"success"`
	Token   string     `json:"token,omitempty"`
	User    *AdminUser `json:"user,omitempty"`
	Message string     `json:"message,omitempty"`
}

// LogoutResponse acknowledges a logout.
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
