// Package middleware provides HTTP middleware for authentication and authorization.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// principalKey is the context key for the authenticated principal.
const principalKey ContextKey = "principal"

// TokenValidator is an interface for validating bearer tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (Principal, error)
}

// Principal is the identity carried by a validated token.
type Principal interface {
	GetUsername() string
	GetRole() string
}

// RequireRole creates middleware that validates the bearer token and
// rejects principals without role. Missing or invalid tokens get 401, a
// valid token with another role gets 403.
func RequireRole(validator TokenValidator, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := BearerToken(r)
			if !ok {
				deny(w, http.StatusUnauthorized)
				return
			}

			principal, err := validator.ValidateToken(tokenString)
			if err != nil {
				deny(w, http.StatusUnauthorized)
				return
			}
			if principal.GetRole() != role {
				deny(w, http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func deny(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": http.StatusText(status)})
}

// GetPrincipal extracts the authenticated principal from the request context.
func GetPrincipal(r *http.Request) (Principal, error) {
	principal, ok := r.Context().Value(principalKey).(Principal)
	if !ok {
		return nil, fmt.Errorf("principal not found in request context")
	}
	return principal, nil
}
