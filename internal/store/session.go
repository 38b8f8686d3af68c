package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jobboard/jobboard/internal/client"
	"github.com/jobboard/jobboard/internal/types"
)

var (
	// ErrJobNotFound is returned when a job no longer exists on the server.
	ErrJobNotFound = errors.New("job not found")
	// ErrStale is returned when a response was discarded because a newer
	// request for the same resource had been issued.
	ErrStale = errors.New("stale response discarded")
	// ErrNotAdmin is returned by administrative actions without an admin login.
	ErrNotAdmin = errors.New("admin login required")
)

// Remote is the job-board API as seen by the session.
type Remote interface {
	SetToken(token string)
	ListJobs(ctx context.Context, q types.JobQuery) ([]types.Job, error)
	GetJob(ctx context.Context, id string) (*types.Job, error)
	CreateJob(ctx context.Context, req *types.CreateJobRequest) (*types.Job, error)
	UpdateJob(ctx context.Context, id string, req *types.UpdateJobRequest) (*types.Job, error)
	DeleteJob(ctx context.Context, id string) error
	Apply(ctx context.Context, jobID string, req *types.ApplyRequest) (*types.ApplyResponse, error)
	ListApplications(ctx context.Context) ([]types.Application, error)
	ListApplicationsByJob(ctx context.Context, jobID string) ([]types.Application, error)
	ListApplicationsByEmail(ctx context.Context, email string) ([]types.Application, error)
	UpdateApplicationStatus(ctx context.Context, id string, status types.ApplicationStatus) (*types.Application, error)
	DeleteApplication(ctx context.Context, id string) error
	Login(ctx context.Context, username, password string) (*types.LoginResponse, error)
	Logout(ctx context.Context) error
}

// Session keeps a Store in sync with the remote API. Remote calls run outside
// the store lock and their results are folded back through store actions.
type Session struct {
	store  *Store
	remote Remote
	logger zerolog.Logger
}

// NewSession creates a session and restores the persisted admin token on the remote.
func NewSession(store *Store, remote Remote, logger zerolog.Logger) *Session {
	if tok := store.AdminToken(); tok != "" {
		remote.SetToken(tok)
	}
	return &Session{store: store, remote: remote, logger: logger}
}

// Store returns the underlying store.
func (s *Session) Store() *Store {
	return s.store
}

// Bootstrap loads the jobs and the administrative applications concurrently.
// A failed application fetch is logged and does not fail the bootstrap.
func (s *Session) Bootstrap(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.FetchJobs(gCtx, types.JobQuery{})
	})
	g.Go(func() error {
		if err := s.FetchApplications(gCtx); err != nil && !errors.Is(err, ErrStale) {
			s.logger.Warn().Err(err).Msg("failed to load applications")
		}
		return nil
	})

	return g.Wait()
}

// FetchJobs loads the job list. On failure the error flag is set and the
// job collection is left unchanged.
func (s *Session) FetchJobs(ctx context.Context, q types.JobQuery) error {
	tok := s.store.Begin(ResourceJobs)
	s.store.SetLoading(true)

	jobs, err := s.remote.ListJobs(ctx, q)
	if err != nil {
		if s.store.IsLatest(tok) {
			s.store.SetError(err)
		}
		s.logger.Warn().Err(err).Msg("failed to fetch jobs")
		return fmt.Errorf("failed to fetch jobs: %w", err)
	}
	if !s.store.LoadJobs(tok, jobs) {
		return ErrStale
	}
	return nil
}

// ViewJob fetches a job, folds it into the collection and records it as
// recently viewed.
func (s *Session) ViewJob(ctx context.Context, id string) (*types.Job, error) {
	tok := s.store.Begin(JobResource(id))

	job, err := s.remote.GetJob(ctx, id)
	if err != nil {
		if client.IsNotFound(err) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to fetch job: %w", err)
	}
	if !s.store.UpdateJob(tok, *job) {
		return nil, ErrStale
	}
	if err := s.store.AddRecentlyViewed(job.ID); err != nil {
		return job, err
	}
	return job, nil
}

// CreateJob creates a posting and adds the confirmed record to the collection.
func (s *Session) CreateJob(ctx context.Context, req *types.CreateJobRequest) (*types.Job, error) {
	job, err := s.remote.CreateJob(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	s.store.AddJob(Token{}, *job)
	return job, nil
}

// UpdateJob edits a posting and replaces the stored record with the server's.
func (s *Session) UpdateJob(ctx context.Context, id string, req *types.UpdateJobRequest) (*types.Job, error) {
	tok := s.store.Begin(JobResource(id))

	job, err := s.remote.UpdateJob(ctx, id, req)
	if err != nil {
		if client.IsNotFound(err) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	if !s.store.UpdateJob(tok, *job) {
		return nil, ErrStale
	}
	return job, nil
}

// DeleteJob deletes a posting and drops it from the collection.
func (s *Session) DeleteJob(ctx context.Context, id string) error {
	tok := s.store.Begin(JobResource(id))

	if err := s.remote.DeleteJob(ctx, id); err != nil {
		if client.IsNotFound(err) {
			s.store.RemoveJob(tok, id)
			return ErrJobNotFound
		}
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if !s.store.RemoveJob(tok, id) {
		return ErrStale
	}
	return nil
}

// ApplyToJob submits an application. The confirmed application is added to
// the user's applications and the job is recorded as applied. A rejected
// submission leaves the store untouched and returns the server's error.
func (s *Session) ApplyToJob(ctx context.Context, jobID string, req *types.ApplyRequest) (*types.ApplyResponse, error) {
	resp, err := s.remote.Apply(ctx, jobID, req)
	if err != nil {
		return nil, err
	}

	s.store.UpsertUserApplication(Token{}, resp.Application)
	if err := s.store.RecordApplied(jobID); err != nil {
		return resp, fmt.Errorf("application submitted but not recorded locally: %w", err)
	}
	return resp, nil
}

// FetchApplications loads the administrative application list.
func (s *Session) FetchApplications(ctx context.Context) error {
	tok := s.store.Begin(ResourceApplications)

	apps, err := s.remote.ListApplications(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch applications: %w", err)
	}
	if !s.store.SetApplications(tok, apps) {
		return ErrStale
	}
	return nil
}

// FetchApplicationsForJob loads the applications of one job into the
// administrative list.
func (s *Session) FetchApplicationsForJob(ctx context.Context, jobID string) error {
	tok := s.store.Begin(ResourceApplications)

	apps, err := s.remote.ListApplicationsByJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to fetch applications for job: %w", err)
	}
	if !s.store.SetApplications(tok, apps) {
		return ErrStale
	}
	return nil
}

// FetchUserApplications loads the applications submitted with email.
func (s *Session) FetchUserApplications(ctx context.Context, email string) error {
	tok := s.store.Begin(ResourceUserApplications)

	apps, err := s.remote.ListApplicationsByEmail(ctx, types.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to fetch user applications: %w", err)
	}
	if !s.store.SetUserApplications(tok, apps) {
		return ErrStale
	}
	return nil
}

// SetApplicationStatus changes the status of an application.
func (s *Session) SetApplicationStatus(ctx context.Context, id string, status types.ApplicationStatus) (*types.Application, error) {
	tok := s.store.Begin(ApplicationResource(id))

	app, err := s.remote.UpdateApplicationStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}
	if !s.store.ReplaceApplication(tok, *app) {
		return nil, ErrStale
	}
	return app, nil
}

// DeleteApplication deletes an application and drops it from both lists.
func (s *Session) DeleteApplication(ctx context.Context, id string) error {
	tok := s.store.Begin(ApplicationResource(id))

	if err := s.remote.DeleteApplication(ctx, id); err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if !s.store.RemoveApplication(tok, id) {
		return ErrStale
	}
	return nil
}

// Login authenticates as administrator and persists the admin flag and token.
func (s *Session) Login(ctx context.Context, username, password string) (*types.AdminUser, error) {
	resp, err := s.remote.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &client.APIError{Status: 401, Message: resp.Message}
	}

	if err := s.store.SetAdmin(true, resp.Token); err != nil {
		return nil, err
	}
	s.remote.SetToken(resp.Token)
	return resp.User, nil
}

// Logout clears the admin flag. The local state is cleared even when the
// server cannot be reached.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.remote.Logout(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("logout request failed")
	}
	s.remote.SetToken("")
	return s.store.SetAdmin(false, "")
}

// RequireAdmin returns ErrNotAdmin unless an admin is logged in.
func (s *Session) RequireAdmin() error {
	if !s.store.IsAdmin() {
		return ErrNotAdmin
	}
	return nil
}
