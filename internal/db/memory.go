package db

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jobboard/jobboard/internal/types"
)

// Memory is an in-process repository with the same behaviour as DB. It backs
// `serve --in-memory` and the handler tests.
type Memory struct {
	mu           sync.RWMutex
	now          func() time.Time
	jobs         map[uuid.UUID]types.Job
	applications map[uuid.UUID]types.Application
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		now:          func() time.Time { return time.Now().UTC() },
		jobs:         make(map[uuid.UUID]types.Job),
		applications: make(map[uuid.UUID]types.Application),
	}
}

// SetClock overrides the clock used for timestamps.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// ListJobs returns the active jobs matching q, newest first, at most JobListLimit.
func (m *Memory) ListJobs(_ context.Context, q types.JobQuery) ([]types.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	search := strings.ToLower(q.Search)
	location := strings.ToLower(q.Location)

	out := []types.Job{}
	for _, j := range m.jobs {
		if !j.IsActive {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(j.Title), search) &&
			!strings.Contains(strings.ToLower(j.Company), search) &&
			!strings.Contains(strings.ToLower(j.Description), search) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(j.Location), location) {
			continue
		}
		if q.Type != "" && j.Type != q.Type {
			continue
		}
		out = append(out, cloneJob(j))
	}

	slices.SortFunc(out, func(a, b types.Job) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if len(out) > JobListLimit {
		out = out[:JobListLimit]
	}
	return out, nil
}

// GetJob retrieves a job by ID. It returns nil, nil when the job does not exist.
func (m *Memory) GetJob(_ context.Context, id uuid.UUID) (*types.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	j = cloneJob(j)
	return &j, nil
}

// CreateJob stores a new active job. The request must already be normalized.
func (m *Memory) CreateJob(_ context.Context, req *types.CreateJobRequest) (*types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	id := uuid.New()
	j := types.Job{
		ID:           id.String(),
		Title:        req.Title,
		Company:      req.Company,
		Location:     req.Location,
		Description:  req.Description,
		Type:         req.Type,
		Requirements: types.CleanLines(req.Requirements),
		Benefits:     types.CleanLines(req.Benefits),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Salary != nil {
		salary := *req.Salary
		j.Salary = &salary
	}
	m.jobs[id] = j

	j = cloneJob(j)
	return &j, nil
}

// UpdateJob merges req into the stored job. It returns nil, nil when the job
// does not exist.
func (m *Memory) UpdateJob(_ context.Context, id uuid.UUID, req *types.UpdateJobRequest) (*types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	j = cloneJob(j)
	req.ApplyTo(&j)
	j.UpdatedAt = m.now()
	m.jobs[id] = j

	j = cloneJob(j)
	return &j, nil
}

// DeleteJob deletes a job and applies policy to its applications. It returns
// ErrNotFound when the job does not exist.
func (m *Memory) DeleteJob(_ context.Context, id uuid.UUID, policy OrphanPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[id]; !ok {
		return ErrNotFound
	}

	jobID := id.String()
	switch policy {
	case OrphanBlock:
		for _, a := range m.applications {
			if a.JobID == jobID {
				return ErrHasApplications
			}
		}
	case OrphanCascade:
		for appID, a := range m.applications {
			if a.JobID == jobID {
				delete(m.applications, appID)
			}
		}
	}

	delete(m.jobs, id)
	return nil
}

// CreateApplication stores a pending application for jobID. It returns
// ErrNotFound when the job does not exist and ErrDuplicate when the email
// already applied to the job.
func (m *Memory) CreateApplication(_ context.Context, jobID uuid.UUID, req *types.ApplyRequest) (*types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	email := types.NormalizeEmail(req.Email)
	for _, a := range m.applications {
		if a.JobID == j.ID && a.Email == email {
			return nil, ErrDuplicate
		}
	}

	now := m.now()
	id := uuid.New()
	app := types.Application{
		ID:          id.String(),
		JobID:       j.ID,
		Name:        req.Name,
		Email:       email,
		ResumeURL:   req.ResumeURL,
		CoverLetter: req.CoverLetter,
		Status:      types.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.applications[id] = app
	return m.withSummaryLocked(app), nil
}

// GetApplication retrieves an application by ID. It returns nil, nil when the
// application does not exist.
func (m *Memory) GetApplication(_ context.Context, id uuid.UUID) (*types.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.applications[id]
	if !ok {
		return nil, nil
	}
	return m.withSummaryLocked(a), nil
}

// ListApplications returns the newest applications, at most ApplicationListLimit.
func (m *Memory) ListApplications(_ context.Context) ([]types.Application, error) {
	out := m.listApplications(func(types.Application) bool { return true })
	if len(out) > ApplicationListLimit {
		out = out[:ApplicationListLimit]
	}
	return out, nil
}

// ListApplicationsByJob returns the applications for jobID, newest first.
func (m *Memory) ListApplicationsByJob(_ context.Context, jobID uuid.UUID) ([]types.Application, error) {
	id := jobID.String()
	return m.listApplications(func(a types.Application) bool { return a.JobID == id }), nil
}

// ListApplicationsByEmail returns the applications submitted with email, newest first.
func (m *Memory) ListApplicationsByEmail(_ context.Context, email string) ([]types.Application, error) {
	email = types.NormalizeEmail(email)
	return m.listApplications(func(a types.Application) bool { return a.Email == email }), nil
}

func (m *Memory) listApplications(keep func(types.Application) bool) []types.Application {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []types.Application{}
	for _, a := range m.applications {
		if keep(a) {
			out = append(out, *m.withSummaryLocked(a))
		}
	}
	slices.SortFunc(out, func(a, b types.Application) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

// UpdateApplicationStatus sets the status of an application. It returns nil,
// nil when the application does not exist.
func (m *Memory) UpdateApplicationStatus(_ context.Context, id uuid.UUID, status types.ApplicationStatus) (*types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.applications[id]
	if !ok {
		return nil, nil
	}
	a.Status = status
	a.UpdatedAt = m.now()
	m.applications[id] = a
	return m.withSummaryLocked(a), nil
}

// DeleteApplication deletes an application. It returns ErrNotFound when the
// application does not exist.
func (m *Memory) DeleteApplication(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.applications[id]; !ok {
		return ErrNotFound
	}
	delete(m.applications, id)
	return nil
}

func (m *Memory) withSummaryLocked(a types.Application) *types.Application {
	if id, err := uuid.Parse(a.JobID); err == nil {
		if j, ok := m.jobs[id]; ok {
			a.Job = j.Summary()
		}
	}
	return &a
}

func cloneJob(j types.Job) types.Job {
	j.Requirements = slices.Clone(j.Requirements)
	j.Benefits = slices.Clone(j.Benefits)
	if j.Requirements == nil {
		j.Requirements = []string{}
	}
	if j.Benefits == nil {
		j.Benefits = []string{}
	}
	if j.Salary != nil {
		salary := *j.Salary
		j.Salary = &salary
	}
	return j
}
