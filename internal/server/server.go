// Package server provides the HTTP REST API for the job board.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jobboard/jobboard/internal/config"
	"github.com/jobboard/jobboard/internal/db"
	"github.com/jobboard/jobboard/internal/server/middleware"
	"github.com/jobboard/jobboard/internal/server/ratelimit"
	"github.com/jobboard/jobboard/internal/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Repository is the storage the handlers run against. Both db.DB and
// db.Memory implement it.
type Repository interface {
	ListJobs(ctx context.Context, q types.JobQuery) ([]types.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error)
	CreateJob(ctx context.Context, req *types.CreateJobRequest) (*types.Job, error)
	UpdateJob(ctx context.Context, id uuid.UUID, req *types.UpdateJobRequest) (*types.Job, error)
	DeleteJob(ctx context.Context, id uuid.UUID, policy db.OrphanPolicy) error

	CreateApplication(ctx context.Context, jobID uuid.UUID, req *types.ApplyRequest) (*types.Application, error)
	ListApplications(ctx context.Context) ([]types.Application, error)
	ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]types.Application, error)
	ListApplicationsByEmail(ctx context.Context, email string) ([]types.Application, error)
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status types.ApplicationStatus) (*types.Application, error)
	DeleteApplication(ctx context.Context, id uuid.UUID) error
}

// Config holds server configuration
type Config struct {
	Port              int
	OrphanPolicy      db.OrphanPolicy
	RequireAdminToken bool
	Admin             *config.AdminCredentials
	JWT               *config.JWTConfig
	RateLimit         *ratelimit.Config
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	repo        Repository
	logger      zerolog.Logger
	orphans     db.OrphanPolicy
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	authHandler *AuthHandler
	requireAuth func(http.Handler) http.Handler
	validate    *validator.Validate
	sanitize    *sanitizer
	now         func() time.Time
}

// New creates a new server instance
func New(cfg Config, repo Repository, logger zerolog.Logger) (*Server, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if cfg.JWT == nil {
		return nil, fmt.Errorf("JWT configuration is required")
	}

	s := &Server{
		repo:        repo,
		logger:      logger,
		orphans:     cfg.OrphanPolicy,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		jwtService:  NewJWTService(cfg.JWT),
		validate:    validator.New(),
		sanitize:    newSanitizer(),
		now:         time.Now,
	}
	if s.orphans == "" {
		s.orphans = db.OrphanRetain
	}
	s.authHandler = NewAuthHandler(cfg.Admin, s.jwtService, s.logger)

	s.requireAuth = func(next http.Handler) http.Handler { return next }
	if cfg.RequireAdminToken {
		s.requireAuth = middleware.RequireRole(s.jwtService.AsTokenValidator(), types.RoleAdmin)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)

	// Jobs
	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	mux.Handle("POST /api/jobs", s.admin(s.handleCreateJob))
	mux.Handle("PUT /api/jobs/{id}", s.admin(s.handleUpdateJob))
	mux.Handle("DELETE /api/jobs/{id}", s.admin(s.handleDeleteJob))

	// Applications
	mux.HandleFunc("POST /api/apply/{jobId}", s.handleApply)
	mux.HandleFunc("GET /api/apply/user/{email}", s.handleListApplicationsByEmail)
	mux.Handle("GET /api/apply", s.admin(s.handleListApplications))
	mux.Handle("GET /api/apply/job/{jobId}", s.admin(s.handleListApplicationsByJob))
	mux.Handle("PUT /api/apply/{id}/status", s.admin(s.handleUpdateApplicationStatus))
	mux.Handle("DELETE /api/apply/{id}", s.admin(s.handleDeleteApplication))

	// Auth
	mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", s.authHandler.Logout)

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		s.errorResponse(w, http.StatusNotFound, "Route not found")
	})

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves requests until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("server starting")
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info().Msg("server stopped")
	return nil
}

// admin wraps h with the admin token check when it is enabled.
func (s *Server) admin(h http.HandlerFunc) http.Handler {
	return s.requireAuth(h)
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(info.RetryAfter.Round(time.Second).Seconds())))
	}
	s.logger.Warn().
		Int("limit", info.Limit).
		Time("reset", info.ResetTime).
		Msg("rate limit exceeded")
	s.errorResponse(w, http.StatusTooManyRequests, "Too many requests, please try again later")
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, types.HealthResponse{Status: "OK", Timestamp: s.now().UTC()})
}

// decodeJSON reads a bounded JSON body into dst.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, types.MessageResponse{Message: message})
}

// writeError maps err to its status. Unknown errors are logged and reported
// as a generic server error.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		s.errorResponse(w, status, "Server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// pathID parses the UUID path value name. A malformed id cannot address any
// record, so it is reported as missing.
func pathID(r *http.Request, name, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &ErrNotFound{Resource: resource}
	}
	return id, nil
}
