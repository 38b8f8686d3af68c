// Package client is the HTTP client of the job-board REST API. Every call
// issues exactly one request and validates the decoded payload against the
// embedded JSON Schemas before returning it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jobboard/jobboard/internal/schemas"
	"github.com/jobboard/jobboard/internal/types"
	embedded "github.com/jobboard/jobboard/schemas"
)

// DefaultTimeout is the default overall HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// maxBodySize bounds the response bodies read from the server.
const maxBodySize = 10 << 20

// APIError is a non-2xx response. Message is the server's message verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP status %d", e.Status)
}

// StatusCode returns the HTTP status of err when it is an *APIError, 0 otherwise.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool { return StatusCode(err) == http.StatusNotFound }

// IsConflict reports whether err is a 409 response.
func IsConflict(err error) bool { return StatusCode(err) == http.StatusConflict }

// IsValidation reports whether err is a 400 response.
func IsValidation(err error) bool { return StatusCode(err) == http.StatusBadRequest }

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool { return StatusCode(err) == http.StatusUnauthorized }

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Client talks to the job-board API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	mu    sync.RWMutex
	token string
}

// New creates a client for the API rooted at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token. An empty token sends no Authorization header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ---------------------------------------------------------------------
// Jobs
// ---------------------------------------------------------------------

// ListJobs returns the active jobs matching q, newest first.
func (c *Client) ListJobs(ctx context.Context, q types.JobQuery) ([]types.Job, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	if q.Type != "" {
		params.Set("type", string(q.Type))
	}
	path := "/api/jobs"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var jobs []types.Job
	if err := c.do(ctx, http.MethodGet, path, nil, &jobs, eachOf(embedded.Job)); err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []types.Job{}
	}
	return jobs, nil
}

// GetJob returns one job.
func (c *Client) GetJob(ctx context.Context, id string) (*types.Job, error) {
	var job types.Job
	if err := c.do(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(id), nil, &job, one(embedded.Job)); err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJob creates a job and returns the stored record.
func (c *Client) CreateJob(ctx context.Context, req *types.CreateJobRequest) (*types.Job, error) {
	var job types.Job
	if err := c.do(ctx, http.MethodPost, "/api/jobs", req, &job, one(embedded.Job)); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateJob partially updates a job and returns the stored record.
func (c *Client) UpdateJob(ctx context.Context, id string, req *types.UpdateJobRequest) (*types.Job, error) {
	var job types.Job
	if err := c.do(ctx, http.MethodPut, "/api/jobs/"+url.PathEscape(id), req, &job, one(embedded.Job)); err != nil {
		return nil, err
	}
	return &job, nil
}

// DeleteJob deletes a job.
func (c *Client) DeleteJob(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/jobs/"+url.PathEscape(id), nil, nil, nil)
}

// ---------------------------------------------------------------------
// Applications
// ---------------------------------------------------------------------

// Apply submits an application to jobID.
func (c *Client) Apply(ctx context.Context, jobID string, req *types.ApplyRequest) (*types.ApplyResponse, error) {
	var resp types.ApplyResponse
	if err := c.do(ctx, http.MethodPost, "/api/apply/"+url.PathEscape(jobID), req, &resp, field("application", embedded.Application)); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListApplications returns every application, newest first.
func (c *Client) ListApplications(ctx context.Context) ([]types.Application, error) {
	return c.listApplications(ctx, "/api/apply")
}

// ListApplicationsByJob returns the applications submitted to jobID.
func (c *Client) ListApplicationsByJob(ctx context.Context, jobID string) ([]types.Application, error) {
	return c.listApplications(ctx, "/api/apply/job/"+url.PathEscape(jobID))
}

// ListApplicationsByEmail returns the applications submitted with email.
func (c *Client) ListApplicationsByEmail(ctx context.Context, email string) ([]types.Application, error) {
	return c.listApplications(ctx, "/api/apply/user/"+url.PathEscape(email))
}

func (c *Client) listApplications(ctx context.Context, path string) ([]types.Application, error) {
	var apps []types.Application
	if err := c.do(ctx, http.MethodGet, path, nil, &apps, eachOf(embedded.Application)); err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []types.Application{}
	}
	return apps, nil
}

// UpdateApplicationStatus sets the status of an application.
func (c *Client) UpdateApplicationStatus(ctx context.Context, id string, status types.ApplicationStatus) (*types.Application, error) {
	var resp types.StatusUpdateResponse
	path := "/api/apply/" + url.PathEscape(id) + "/status"
	body := types.StatusUpdateRequest{Status: status}
	if err := c.do(ctx, http.MethodPut, path, body, &resp, field("application", embedded.Application)); err != nil {
		return nil, err
	}
	return &resp.Application, nil
}

// DeleteApplication deletes an application.
func (c *Client) DeleteApplication(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/apply/"+url.PathEscape(id), nil, nil, nil)
}

// ---------------------------------------------------------------------
// Auth and health
// ---------------------------------------------------------------------

// Login exchanges admin credentials for a token. Rejected credentials are
// returned as a 401 *APIError.
func (c *Client) Login(ctx context.Context, username, password string) (*types.LoginResponse, error) {
	var resp types.LoginResponse
	body := types.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp, one(embedded.LoginResponse)); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout ends the admin session on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

// Health calls the liveness probe.
func (c *Client) Health(ctx context.Context) (*types.HealthResponse, error) {
	var resp types.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &resp, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ---------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------

// checker validates a raw response body before it is decoded.
type checker func(body []byte) error

func one(schema string) checker {
	return func(body []byte) error { return schemas.Validate(schema, body) }
}

func eachOf(schema string) checker {
	return func(body []byte) error { return schemas.ValidateEach(schema, body) }
}

// field validates a single member of a JSON object.
func field(name, schema string) checker {
	return func(body []byte) error {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err != nil {
			return fmt.Errorf("failed to decode response object: %w", err)
		}
		raw, ok := obj[name]
		if !ok {
			return &schemas.ValidationError{
				Schema: schema,
				Errors: []schemas.FieldError{{Field: name, Message: "is required"}},
			}
		}
		return schemas.Validate(schema, raw)
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, check checker) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}

	if check != nil {
		if err := check(data); err != nil {
			return fmt.Errorf("invalid response from %s %s: %w", method, path, err)
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var msg types.MessageResponse
	if err := json.Unmarshal(body, &msg); err != nil || msg.Message == "" {
		msg.Message = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg.Message}
}
