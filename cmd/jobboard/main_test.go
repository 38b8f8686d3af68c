package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobboard/jobboard/internal/config"
	"github.com/jobboard/jobboard/internal/db"
	"github.com/jobboard/jobboard/internal/server"
	"github.com/jobboard/jobboard/internal/server/ratelimit"
	"github.com/jobboard/jobboard/internal/types"
)

type testEnv struct {
	t     *testing.T
	url   string
	state string
	repo  *db.Memory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("JOBBOARD_API_URL", "")
	t.Setenv("JOBBOARD_STATE", "")
	t.Setenv("JOBBOARD_EMAIL", "")

	admin, err := config.NewAdminCredentialsFrom("admin", "secret", &config.PasswordConfig{BcryptCost: 10})
	require.NoError(t, err)

	repo := db.NewMemory()
	srv, err := server.New(server.Config{
		RequireAdminToken: true,
		Admin:             admin,
		JWT:               &config.JWTConfig{Secret: "cli-test-secret", ExpirationHours: 1},
		RateLimit:         &ratelimit.Config{Enabled: false},
	}, repo, zerolog.Nop())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{
		t:     t,
		url:   ts.URL,
		state: filepath.Join(t.TempDir(), "state.db"),
		repo:  repo,
	}
}

// run executes one CLI invocation with a fresh command tree against the
// shared server and state file.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	c := newCLI(&out, &errOut)
	root := newRootCmd(c)
	root.SetArgs(append([]string{"--api-url", e.url, "--state", e.state, "--log-level", "error"}, args...))
	root.SetIn(strings.NewReader(""))

	err := root.ExecuteContext(context.Background())
	require.NoError(e.t, c.close())
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, out)
	return out
}

func (e *testEnv) jobIDByTitle(title string) string {
	e.t.Helper()
	jobs, err := e.repo.ListJobs(context.Background(), types.JobQuery{Search: title})
	require.NoError(e.t, err)
	require.Len(e.t, jobs, 1)
	return jobs[0].ID
}

func (e *testEnv) seed() {
	e.t.Helper()
	e.mustRun("login", "--username", "admin", "--password", "secret")
	e.mustRun("seed", filepath.Join("testdata", "jobs.yaml"))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("login", "--username", "admin", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", err.Error())

	out := env.mustRun("login", "--username", "admin", "--password", "secret")
	assert.Contains(t, out, "Logged in as admin (admin)")

	out = env.mustRun("logout")
	assert.Contains(t, out, "Logged out")

	_, err = env.run("seed", filepath.Join("testdata", "jobs.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin login required")
}

func TestLogin_PasswordFromStdin(t *testing.T) {
	env := newTestEnv(t)

	var out bytes.Buffer
	c := newCLI(&out, &bytes.Buffer{})
	root := newRootCmd(c)
	root.SetArgs([]string{"--api-url", env.url, "--state", env.state, "login"})
	root.SetIn(strings.NewReader("secret\n"))

	require.NoError(t, root.ExecuteContext(context.Background()))
	require.NoError(t, c.close())
	assert.Contains(t, out.String(), "Logged in as admin")
}

func TestSeedAndList(t *testing.T) {
	env := newTestEnv(t)
	env.seed()

	out := env.mustRun("jobs", "list")
	assert.Contains(t, out, "Senior Frontend Developer")
	assert.Contains(t, out, "Backend Engineer")
	assert.Contains(t, out, "Showing 1-3 of 3 jobs")

	out = env.mustRun("jobs", "list", "--type", "Remote")
	assert.Contains(t, out, "Backend Engineer")
	assert.NotContains(t, out, "Senior Frontend Developer")
	assert.Contains(t, out, "Showing 1-1 of 1 jobs")

	out = env.mustRun("jobs", "list", "--search", "nothing-matches-this")
	assert.Contains(t, out, "No jobs found. Try adjusting your filters.")

	out = env.mustRun("jobs", "list", "--stats")
	assert.Contains(t, out, "JOB STATS")
	assert.Contains(t, out, "Companies:       3")
}

func TestJobsList_InvalidFilters(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("jobs", "list", "--type", "Internship")
	assert.ErrorContains(t, err, "invalid job type")

	_, err = env.run("jobs", "list", "--posted", "yesterday")
	assert.ErrorContains(t, err, "invalid posting age")

	_, err = env.run("jobs", "list", "--salary-min", "100", "--salary-max", "10")
	assert.ErrorContains(t, err, "salary-min must not exceed salary-max")
}

func TestSeed_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jobs:\n  - title: Missing fields\n"), 0o600))

	_, err := loadSeedFile(path)
	assert.ErrorContains(t, err, "is invalid")

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("jobs: []\n"), 0o600))
	_, err = loadSeedFile(empty)
	assert.ErrorContains(t, err, "contains no jobs")

	jobs, err := loadSeedFile(filepath.Join("testdata", "jobs.yaml"))
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, types.JobTypeFullTime, jobs[2].Type)
}

func TestShowFavoritesAndRecent(t *testing.T) {
	env := newTestEnv(t)
	env.seed()
	id := env.jobIDByTitle("Backend Engineer")

	out := env.mustRun("jobs", "show", id)
	assert.Contains(t, out, "Backend Engineer")
	assert.Contains(t, out, "$125,000")

	out = env.mustRun("recent")
	assert.Contains(t, out, "Backend Engineer")
	assert.NotContains(t, out, "Senior Frontend Developer")

	env.mustRun("favorites", "add", id)
	out = env.mustRun("favorites", "list")
	assert.Contains(t, out, "★ "+id)

	out = env.mustRun("favorites", "toggle", id)
	assert.Contains(t, out, "Removed "+id)
	out = env.mustRun("favorites", "list")
	assert.Contains(t, out, "No jobs found")
}

func TestShow_UnknownJob(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("jobs", "show", "00000000-0000-0000-0000-000000000000")
	assert.Error(t, err)
}

func TestApplyAndReview(t *testing.T) {
	env := newTestEnv(t)
	env.seed()
	id := env.jobIDByTitle("Senior Frontend Developer")

	args := []string{"apply", id, "--name", "Jane Doe", "--email", "Jane@Example.com", "--resume", "https://example.com/jane.pdf"}
	out := env.mustRun(args...)
	assert.Contains(t, out, "Application submitted successfully")

	_, err := env.run(args...)
	require.Error(t, err)
	assert.Equal(t, "You have already applied for this job", err.Error())

	out = env.mustRun("--email", "jane@example.com", "applications", "mine")
	assert.Contains(t, out, "Senior Frontend Developer at TechCorp")
	assert.Contains(t, out, "[pending]")

	out = env.mustRun("applications", "list")
	assert.Contains(t, out, "pending: 1  reviewed: 0  shortlisted: 0  rejected: 0")

	apps, err := env.repo.ListApplications(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	appID := apps[0].ID

	_, err = env.run("applications", "status", appID, "hired")
	assert.ErrorContains(t, err, "invalid status")

	out = env.mustRun("applications", "status", appID, "shortlisted")
	assert.Contains(t, out, "is now shortlisted")

	out = env.mustRun("applications", "job", id)
	assert.Contains(t, out, "[shortlisted]")

	env.mustRun("applications", "delete", appID)
	out = env.mustRun("applications", "user", "jane@example.com")
	assert.Contains(t, out, "No applications found.")
}

func TestApply_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("apply", "some-job", "--name", "Jane")
	assert.ErrorContains(t, err, "name, email, and resume URL are required")
}

func TestJobsCreateUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("login", "--password", "secret")

	out := env.mustRun("jobs", "create",
		"--title", "Data Analyst",
		"--company", "Numbers LLC",
		"--location", "Chicago, IL",
		"--description", "Analyze things.",
		"--salary", "90000",
		"--requirements", "SQL\n\nPython",
	)
	assert.Contains(t, out, "Data Analyst")
	id := env.jobIDByTitle("Data Analyst")

	env.mustRun("jobs", "update", id, "--location", "Remote")
	job, err := env.repo.GetJob(context.Background(), uuid.MustParse(id))
	require.NoError(t, err)
	assert.Equal(t, "Remote", job.Location)
	assert.Equal(t, "Data Analyst", job.Title)
	assert.Equal(t, []string{"SQL", "Python"}, job.Requirements)

	env.mustRun("jobs", "delete", id)
	_, err = env.run("jobs", "show", id)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("health")
	assert.Contains(t, out, env.url+" OK")
}
