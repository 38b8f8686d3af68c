package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jobboard/jobboard/internal/config"
	"github.com/jobboard/jobboard/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	admin      *config.AdminCredentials
	jwtService *JWTService
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler. A nil admin rejects every login.
func NewAuthHandler(admin *config.AdminCredentials, jwtService *JWTService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		admin:      admin,
		jwtService: jwtService,
		validator:  validator.New(),
		logger:     logger,
	}
}

// adminID derives a stable id for the administrator from the username.
func adminID(username string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("jobboard:admin:"+username)).String()
}

// Login handles admin login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, types.MessageResponse{Message: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil || h.admin == nil || !h.admin.Verify(req.Username, req.Password) {
		h.logger.Warn().Str("username", req.Username).Msg("admin login failed")
		writeJSON(w, HTTPStatus(&ErrInvalidCredentials{}), types.LoginResponse{
			Success: false,
			Message: (&ErrInvalidCredentials{}).Error(),
		})
		return
	}

	token, err := h.jwtService.GenerateToken(h.admin.Username, types.RoleAdmin)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to generate token")
		writeJSON(w, http.StatusInternalServerError, types.MessageResponse{Message: "Server error"})
		return
	}

	writeJSON(w, http.StatusOK, types.LoginResponse{
		Success: true,
		Token:   token,
		User: &types.AdminUser{
			ID:       adminID(h.admin.Username),
			Username: h.admin.Username,
			Role:     types.RoleAdmin,
		},
	})
}

// Logout acknowledges a logout. Tokens are stateless, so the client simply
// discards its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, types.LogoutResponse{Success: true, Message: "Logged out successfully"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log error but response already sent
		return
	}
}
