package server

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobboard/jobboard/internal/types"
)

func validApplyRequest(email string) types.ApplyRequest {
	return types.ApplyRequest{
		Name:        "Ada Lovelace",
		Email:       email,
		ResumeURL:   "https://example.com/ada.pdf",
		CoverLetter: "Hello",
	}
}

func apply(t *testing.T, s *Server, jobID, email string) types.ApplyResponse {
	t.Helper()
	w := doRequest(t, s, http.MethodPost, "/api/apply/"+jobID, validApplyRequest(email), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[types.ApplyResponse](t, w)
}

func TestApply(t *testing.T) {
	s, _ := newTestServer(t, nil)
	job := createJob(t, s, validJobRequest())

	resp := apply(t, s, job.ID, "  Ada@Example.COM ")

	assert.Equal(t, "Application submitted successfully", resp.Message)
	assert.Equal(t, resp.Application.ID, resp.ID)
	assert.Equal(t, "ada@example.com", resp.Application.Email)
	assert.Equal(t, types.StatusPending, resp.Application.Status)
	require.NotNil(t, resp.Application.Job)
	assert.Equal(t, "Backend Engineer", resp.Application.Job.Title)
}

func TestApply_Errors(t *testing.T) {
	s, _ := newTestServer(t, nil)
	job := createJob(t, s, validJobRequest())

	missing := validApplyRequest("ada@example.com")
	missing.ResumeURL = ""
	w := doRequest(t, s, http.MethodPost, "/api/apply/"+job.ID, missing, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Name, email, and resume URL are required", messageOf(t, w))

	w = doRequest(t, s, http.MethodPost, "/api/apply/"+job.ID, validApplyRequest("not-an-email"), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please provide a valid email address", messageOf(t, w))

	w = doRequest(t, s, http.MethodPost, "/api/apply/"+uuid.NewString(), validApplyRequest("ada@example.com"), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Job not found", messageOf(t, w))
}

func TestApply_Duplicate(t *testing.T) {
	s, _ := newTestServer(t, nil)
	job := createJob(t, s, validJobRequest())
	apply(t, s, job.ID, "ada@example.com")

	w := doRequest(t, s, http.MethodPost, "/api/apply/"+job.ID, validApplyRequest("ADA@example.com"), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You have already applied for this job", messageOf(t, w))

	// The same email may apply to a different job.
	other := createJob(t, s, validJobRequest())
	apply(t, s, other.ID, "ada@example.com")
}

func TestListApplications(t *testing.T) {
	s, _ := newTestServer(t, nil)
	jobA := createJob(t, s, validJobRequest())
	jobB := createJob(t, s, validJobRequest())
	apply(t, s, jobA.ID, "ada@example.com")
	apply(t, s, jobB.ID, "ada@example.com")
	apply(t, s, jobA.ID, "grace@example.com")

	w := doRequest(t, s, http.MethodGet, "/api/apply", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.Application](t, w), 3)

	w = doRequest(t, s, http.MethodGet, "/api/apply/job/"+jobA.ID, nil, "")
	byJob := decode[[]types.Application](t, w)
	assert.Len(t, byJob, 2)
	for _, app := range byJob {
		assert.Equal(t, jobA.ID, app.JobID)
	}

	w = doRequest(t, s, http.MethodGet, "/api/apply/user/ADA@EXAMPLE.COM", nil, "")
	byEmail := decode[[]types.Application](t, w)
	assert.Len(t, byEmail, 2)

	w = doRequest(t, s, http.MethodGet, "/api/apply/job/not-a-uuid", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestUpdateApplicationStatus(t *testing.T) {
	s, _ := newTestServer(t, nil)
	job := createJob(t, s, validJobRequest())
	resp := apply(t, s, job.ID, "ada@example.com")

	w := doRequest(t, s, http.MethodPut, "/api/apply/"+resp.ID+"/status", types.StatusUpdateRequest{Status: types.StatusShortlisted}, "")
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[types.StatusUpdateResponse](t, w)
	assert.Equal(t, "Application status updated successfully", updated.Message)
	assert.Equal(t, types.StatusShortlisted, updated.Application.Status)

	w = doRequest(t, s, http.MethodPut, "/api/apply/"+resp.ID+"/status", map[string]string{"status": "hired"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid status", messageOf(t, w))

	w = doRequest(t, s, http.MethodPut, "/api/apply/"+uuid.NewString()+"/status", types.StatusUpdateRequest{Status: types.StatusRejected}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Application not found", messageOf(t, w))
}

func TestDeleteApplication(t *testing.T) {
	s, _ := newTestServer(t, nil)
	job := createJob(t, s, validJobRequest())
	resp := apply(t, s, job.ID, "ada@example.com")

	w := doRequest(t, s, http.MethodDelete, "/api/apply/"+resp.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Application deleted successfully", messageOf(t, w))

	w = doRequest(t, s, http.MethodDelete, "/api/apply/"+resp.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Application not found", messageOf(t, w))
}
