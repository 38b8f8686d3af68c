package server

import (
	"errors"
	"net/http"

	"github.com/jobboard/jobboard/internal/db"
	"github.com/jobboard/jobboard/internal/types"
)

const jobRequiredMsg = "Title, company, location, and description are required"

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobs, err := s.repo.ListJobs(r.Context(), types.JobQuery{
		Search:   q.Get("search"),
		Location: q.Get("location"),
		Type:     types.JobType(q.Get("type")),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Job")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	job, err := s.repo.GetJob(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if job == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "Job"})
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req types.CreateJobRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	s.sanitize.createJob(&req)
	req.Normalize()
	if err := s.validate.Struct(&req); err != nil {
		s.writeError(w, r, validationError(err, jobRequiredMsg))
		return
	}

	job, err := s.repo.CreateJob(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info().Str("job_id", job.ID).Str("company", job.Company).Msg("job created")
	s.jsonResponse(w, http.StatusCreated, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Job")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.UpdateJobRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	s.sanitize.updateJob(&req)
	req.Normalize()
	if err := s.validate.Struct(&req); err != nil {
		s.writeError(w, r, validationError(err, jobRequiredMsg))
		return
	}

	job, err := s.repo.UpdateJob(r.Context(), id, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if job == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "Job"})
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Job")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	err = s.repo.DeleteJob(r.Context(), id, s.orphans)
	switch {
	case errors.Is(err, db.ErrNotFound):
		s.writeError(w, r, &ErrNotFound{Resource: "Job"})
		return
	case errors.Is(err, db.ErrHasApplications):
		s.writeError(w, r, &ErrConflict{Message: "Cannot delete a job that has applications"})
		return
	case err != nil:
		s.writeError(w, r, err)
		return
	}
	s.logger.Info().Str("job_id", id.String()).Str("orphan_policy", string(s.orphans)).Msg("job deleted")
	s.jsonResponse(w, http.StatusOK, types.MessageResponse{Message: "Job deleted successfully"})
}
