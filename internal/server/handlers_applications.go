package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/jobboard/jobboard/internal/db"
	"github.com/jobboard/jobboard/internal/types"
)

const applicationRequiredMsg = "Name, email, and resume URL are required"

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req types.ApplyRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	s.sanitize.application(&req)
	req.Normalize()
	if err := s.validate.Struct(&req); err != nil {
		s.writeError(w, r, validationError(err, applicationRequiredMsg))
		return
	}

	jobID, err := pathID(r, "jobId", "Job")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	app, err := s.repo.CreateApplication(r.Context(), jobID, &req)
	switch {
	case errors.Is(err, db.ErrNotFound):
		s.writeError(w, r, &ErrNotFound{Resource: "Job"})
		return
	case errors.Is(err, db.ErrDuplicate):
		s.writeError(w, r, &ErrDuplicateApplication{JobID: jobID.String(), Email: req.Email})
		return
	case err != nil:
		s.writeError(w, r, err)
		return
	}

	s.logger.Info().Str("application_id", app.ID).Str("job_id", app.JobID).Msg("application submitted")
	s.jsonResponse(w, http.StatusCreated, types.ApplyResponse{
		Message:     "Application submitted successfully",
		Application: *app,
		ID:          app.ID,
	})
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.repo.ListApplications(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, apps)
}

func (s *Server) handleListApplicationsByJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("jobId"))
	if err != nil {
		// No job can carry a malformed id, so it has no applications.
		s.jsonResponse(w, http.StatusOK, []types.Application{})
		return
	}

	apps, err := s.repo.ListApplicationsByJob(r.Context(), jobID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, apps)
}

func (s *Server) handleListApplicationsByEmail(w http.ResponseWriter, r *http.Request) {
	apps, err := s.repo.ListApplicationsByEmail(r.Context(), types.NormalizeEmail(r.PathValue("email")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, apps)
}

func (s *Server) handleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req types.StatusUpdateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if !req.Status.Valid() {
		s.writeError(w, r, &ErrInvalidStatus{Status: string(req.Status)})
		return
	}

	id, err := pathID(r, "id", "Application")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	app, err := s.repo.UpdateApplicationStatus(r.Context(), id, req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if app == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "Application"})
		return
	}
	s.jsonResponse(w, http.StatusOK, types.StatusUpdateResponse{
		Message:     "Application status updated successfully",
		Application: *app,
	})
}

func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Application")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.repo.DeleteApplication(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			err = &ErrNotFound{Resource: "Application"}
		}
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.MessageResponse{Message: "Application deleted successfully"})
}
