package store

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobboard/jobboard/internal/client"
	"github.com/jobboard/jobboard/internal/persist"
	"github.com/jobboard/jobboard/internal/types"
)

// fakeRemote is an in-memory Remote.
type fakeRemote struct {
	mu           sync.Mutex
	token        string
	jobs         []types.Job
	applications []types.Application
	listErr      error
	appsErr      error
	logoutErr    error
	nextID       int
}

func (f *fakeRemote) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeRemote) ListJobs(_ context.Context, _ types.JobQuery) ([]types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]types.Job{}, f.jobs...), nil
}

func (f *fakeRemote) GetJob(_ context.Context, id string) (*types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.ID == id {
			j := j
			return &j, nil
		}
	}
	return nil, &client.APIError{Status: http.StatusNotFound, Message: "Job not found"}
}

func (f *fakeRemote) CreateJob(_ context.Context, req *types.CreateJobRequest) (*types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	job := types.Job{ID: "created", Title: req.Title, Company: req.Company, Location: req.Location, IsActive: true, CreatedAt: testNow}
	f.jobs = append(f.jobs, job)
	return &job, nil
}

func (f *fakeRemote) UpdateJob(_ context.Context, id string, req *types.UpdateJobRequest) (*types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			req.ApplyTo(&f.jobs[i])
			j := f.jobs[i]
			return &j, nil
		}
	}
	return nil, &client.APIError{Status: http.StatusNotFound, Message: "Job not found"}
}

func (f *fakeRemote) DeleteJob(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			f.jobs = append(f.jobs[:i], f.jobs[i+1:]...)
			return nil
		}
	}
	return &client.APIError{Status: http.StatusNotFound, Message: "Job not found"}
}

func (f *fakeRemote) Apply(_ context.Context, jobID string, req *types.ApplyRequest) (*types.ApplyResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email := types.NormalizeEmail(req.Email)
	for _, a := range f.applications {
		if a.JobID == jobID && a.Email == email {
			return nil, &client.APIError{Status: http.StatusBadRequest, Message: "You have already applied for this job"}
		}
	}
	f.nextID++
	app := types.Application{
		ID:        "app-" + jobID,
		JobID:     jobID,
		Name:      req.Name,
		Email:     email,
		ResumeURL: req.ResumeURL,
		Status:    types.StatusPending,
		CreatedAt: testNow,
	}
	f.applications = append(f.applications, app)
	return &types.ApplyResponse{Message: "Application submitted successfully", Application: app, ID: app.ID}, nil
}

func (f *fakeRemote) ListApplications(context.Context) ([]types.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appsErr != nil {
		return nil, f.appsErr
	}
	return append([]types.Application{}, f.applications...), nil
}

func (f *fakeRemote) ListApplicationsByJob(_ context.Context, jobID string) ([]types.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []types.Application{}
	for _, a := range f.applications {
		if a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRemote) ListApplicationsByEmail(_ context.Context, email string) ([]types.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []types.Application{}
	for _, a := range f.applications {
		if a.Email == email {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRemote) UpdateApplicationStatus(_ context.Context, id string, status types.ApplicationStatus) (*types.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.applications {
		if f.applications[i].ID == id {
			f.applications[i].Status = status
			a := f.applications[i]
			return &a, nil
		}
	}
	return nil, &client.APIError{Status: http.StatusNotFound, Message: "Application not found"}
}

func (f *fakeRemote) DeleteApplication(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.applications {
		if f.applications[i].ID == id {
			f.applications = append(f.applications[:i], f.applications[i+1:]...)
			return nil
		}
	}
	return &client.APIError{Status: http.StatusNotFound, Message: "Application not found"}
}

func (f *fakeRemote) Login(_ context.Context, username, password string) (*types.LoginResponse, error) {
	if username != "admin" || password != "secret" {
		return nil, &client.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	return &types.LoginResponse{
		Success: true,
		Token:   "signed-token",
		User:    &types.AdminUser{ID: "1", Username: "admin", Role: types.RoleAdmin},
	}, nil
}

func (f *fakeRemote) Logout(context.Context) error {
	return f.logoutErr
}

func newTestSession(t *testing.T, remote *fakeRemote) (*Session, *persist.MemoryStorage) {
	t.Helper()
	s, storage := newTestStore(t)
	return NewSession(s, remote, zerolog.Nop()), storage
}

func TestSession_Bootstrap(t *testing.T) {
	remote := &fakeRemote{
		jobs:         makeJobs(3),
		applications: []types.Application{{ID: "a1", JobID: "job-01", Status: types.StatusPending}},
	}
	sess, _ := newTestSession(t, remote)

	require.NoError(t, sess.Bootstrap(context.Background()))

	st := sess.Store().Snapshot()
	assert.Len(t, st.Jobs, 3)
	assert.Len(t, st.Applications, 1)
	assert.False(t, st.Loading)
}

func TestSession_BootstrapToleratesApplicationFailure(t *testing.T) {
	remote := &fakeRemote{jobs: makeJobs(2), appsErr: errors.New("unauthorized")}
	sess, _ := newTestSession(t, remote)

	require.NoError(t, sess.Bootstrap(context.Background()))
	assert.Len(t, sess.Store().Jobs(), 2)
	assert.Empty(t, sess.Store().Applications())
}

func TestSession_FetchJobsFailureKeepsJobs(t *testing.T) {
	remote := &fakeRemote{jobs: makeJobs(2)}
	sess, _ := newTestSession(t, remote)
	require.NoError(t, sess.FetchJobs(context.Background(), types.JobQuery{}))

	remote.listErr = errors.New("connection refused")
	err := sess.FetchJobs(context.Background(), types.JobQuery{})
	require.Error(t, err)

	st := sess.Store().Snapshot()
	assert.Len(t, st.Jobs, 2)
	assert.False(t, st.Loading)
	assert.Equal(t, "connection refused", st.Error)
}

func TestSession_ViewJob(t *testing.T) {
	remote := &fakeRemote{jobs: makeJobs(2)}
	sess, _ := newTestSession(t, remote)

	job, err := sess.ViewJob(context.Background(), "job-02")
	require.NoError(t, err)
	assert.Equal(t, "job-02", job.ID)
	assert.Equal(t, []string{"job-02"}, sess.Store().RecentlyViewed())

	_, err = sess.ViewJob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.Equal(t, []string{"job-02"}, sess.Store().RecentlyViewed())
}

func TestSession_JobMutations(t *testing.T) {
	remote := &fakeRemote{jobs: makeJobs(2)}
	sess, _ := newTestSession(t, remote)
	ctx := context.Background()
	require.NoError(t, sess.FetchJobs(ctx, types.JobQuery{}))

	created, err := sess.CreateJob(ctx, &types.CreateJobRequest{Title: "Designer", Company: "Acme", Location: "Paris", Description: "d"})
	require.NoError(t, err)
	assert.Len(t, sess.Store().Jobs(), 3)

	_, err = sess.UpdateJob(ctx, created.ID, &types.UpdateJobRequest{Title: "Lead Designer"})
	require.NoError(t, err)
	got, ok := sess.Store().Job(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Lead Designer", got.Title)
	assert.Equal(t, "Acme", got.Company)

	require.NoError(t, sess.DeleteJob(ctx, created.ID))
	assert.Len(t, sess.Store().Jobs(), 2)

	assert.ErrorIs(t, sess.DeleteJob(ctx, created.ID), ErrJobNotFound)
}

func TestSession_DuplicateApplication(t *testing.T) {
	remote := &fakeRemote{jobs: makeJobs(1)}
	sess, storage := newTestSession(t, remote)
	ctx := context.Background()

	req := &types.ApplyRequest{Name: "Ada", Email: "Ada@Example.com", ResumeURL: "https://cv.example/ada"}
	resp, err := sess.ApplyToJob(ctx, "job-01", req)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", resp.Application.Email)

	_, err = sess.ApplyToJob(ctx, "job-01", &types.ApplyRequest{Name: "Ada", Email: "ada@example.com", ResumeURL: "x"})
	require.Error(t, err)
	assert.True(t, client.IsValidation(err))
	assert.Equal(t, "You have already applied for this job", err.Error())

	assert.Len(t, sess.Store().UserApplications(), 1)
	assert.Equal(t, []string{"job-01"}, sess.Store().Applied())
	assert.True(t, sess.Store().HasApplied("job-01"))

	raw, _, _ := storage.GetItem(persist.KeyApplied)
	assert.JSONEq(t, `["job-01"]`, raw)
}

func TestSession_Applications(t *testing.T) {
	remote := &fakeRemote{jobs: makeJobs(2)}
	sess, _ := newTestSession(t, remote)
	ctx := context.Background()

	_, err := sess.ApplyToJob(ctx, "job-01", &types.ApplyRequest{Name: "Ada", Email: "ada@example.com", ResumeURL: "x"})
	require.NoError(t, err)
	_, err = sess.ApplyToJob(ctx, "job-02", &types.ApplyRequest{Name: "Bob", Email: "bob@example.com", ResumeURL: "y"})
	require.NoError(t, err)

	require.NoError(t, sess.FetchApplications(ctx))
	assert.Len(t, sess.Store().Applications(), 2)

	require.NoError(t, sess.FetchUserApplications(ctx, "ADA@example.com"))
	assert.Len(t, sess.Store().UserApplications(), 1)

	app, err := sess.SetApplicationStatus(ctx, "app-job-01", types.StatusShortlisted)
	require.NoError(t, err)
	assert.Equal(t, types.StatusShortlisted, app.Status)
	assert.Equal(t, types.StatusShortlisted, sess.Store().UserApplications()[0].Status)

	require.NoError(t, sess.DeleteApplication(ctx, "app-job-02"))
	assert.Len(t, sess.Store().Applications(), 1)

	require.NoError(t, sess.FetchApplicationsForJob(ctx, "job-02"))
	assert.Empty(t, sess.Store().Applications())
}

func TestSession_LoginLogout(t *testing.T) {
	remote := &fakeRemote{}
	sess, storage := newTestSession(t, remote)
	ctx := context.Background()

	require.ErrorIs(t, sess.RequireAdmin(), ErrNotAdmin)

	_, err := sess.Login(ctx, "admin", "wrong")
	require.Error(t, err)
	assert.False(t, sess.Store().IsAdmin())

	user, err := sess.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, user.Role)
	assert.True(t, sess.Store().IsAdmin())
	assert.Equal(t, "signed-token", remote.token)
	assert.NoError(t, sess.RequireAdmin())

	restored := NewSession(New(persist.NewAdapter(storage, zerolog.Nop())), &fakeRemote{}, zerolog.Nop())
	assert.True(t, restored.Store().IsAdmin())

	remote.logoutErr = errors.New("offline")
	require.NoError(t, sess.Logout(ctx))
	assert.False(t, sess.Store().IsAdmin())
	assert.Empty(t, remote.token)
}
