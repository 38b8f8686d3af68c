package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobboard/jobboard/internal/config"
	"github.com/jobboard/jobboard/internal/db"
	"github.com/jobboard/jobboard/internal/server/ratelimit"
	"github.com/jobboard/jobboard/internal/types"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: "test-secret", ExpirationHours: 1}
}

func newTestServer(t *testing.T, mutate func(*Config)) (*Server, *db.Memory) {
	t.Helper()
	admin, err := config.NewAdminCredentialsFrom("admin", "secret", &config.PasswordConfig{BcryptCost: 10})
	require.NoError(t, err)

	cfg := Config{
		Admin:     admin,
		JWT:       testJWTConfig(),
		RateLimit: &ratelimit.Config{Enabled: false},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	repo := db.NewMemory()
	s, err := New(cfg, repo, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)
	return s, repo
}

func doRequest(t *testing.T, s *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func messageOf(t *testing.T, w *httptest.ResponseRecorder) string {
	return decode[types.MessageResponse](t, w).Message
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Config{JWT: testJWTConfig()}, nil, zerolog.Nop())
	assert.Error(t, err)

	_, err = New(Config{}, db.NewMemory(), zerolog.Nop())
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := doRequest(t, s, http.MethodGet, "/api/health", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	health := decode[types.HealthResponse](t, w)
	assert.Equal(t, "OK", health.Status)
	assert.False(t, health.Timestamp.IsZero())
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := doRequest(t, s, http.MethodGet, "/api/nope", nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", messageOf(t, w))
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := doRequest(t, s, http.MethodOptions, "/api/jobs", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestInvalidBody(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := doRequest(t, s, http.MethodPost, "/api/jobs", "{not json", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", messageOf(t, w))
}

func TestRateLimit_Login(t *testing.T) {
	s, _ := newTestServer(t, func(cfg *Config) {
		cfg.RateLimit = &ratelimit.Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   60_000_000_000,
			EndpointConfigs: ratelimit.DefaultEndpointConfigs(),
		}
	})

	creds := types.LoginRequest{Username: "admin", Password: "wrong"}
	for i := 0; i < 5; i++ {
		w := doRequest(t, s, http.MethodPost, "/api/auth/login", creds, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	}

	w := doRequest(t, s, http.MethodPost, "/api/auth/login", creds, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Health checks are never limited.
	w = doRequest(t, s, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminToken(t *testing.T) {
	s, _ := newTestServer(t, func(cfg *Config) { cfg.RequireAdminToken = true })

	job := validJobRequest()
	w := doRequest(t, s, http.MethodPost, "/api/jobs", job, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, s, http.MethodGet, "/api/apply", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := s.jwtService.GenerateToken("admin", types.RoleAdmin)
	require.NoError(t, err)

	w = doRequest(t, s, http.MethodPost, "/api/jobs", job, token)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[types.Job](t, w)

	// Public endpoints stay open.
	w = doRequest(t, s, http.MethodGet, "/api/jobs", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, s, http.MethodPost, "/api/apply/"+created.ID, validApplyRequest("ada@example.com"), "")
	assert.Equal(t, http.StatusCreated, w.Code)
	w = doRequest(t, s, http.MethodGet, "/api/apply/user/ada@example.com", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	other, err := s.jwtService.GenerateToken("someone", "viewer")
	require.NoError(t, err)
	w = doRequest(t, s, http.MethodDelete, "/api/jobs/"+created.ID, nil, other)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
