package types

import (
	"strings"
	"time"
)

// ApplicationStatus is the review state of an application.
type ApplicationStatus string

// Application statuses in review order.
const (
	StatusPending     ApplicationStatus = "pending"
	StatusReviewed    ApplicationStatus = "reviewed"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusRejected    ApplicationStatus = "rejected"
)

// ApplicationStatuses returns every status in review order.
func ApplicationStatuses() []ApplicationStatus {
	return []ApplicationStatus{StatusPending, StatusReviewed, StatusShortlisted, StatusRejected}
}

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusShortlisted, StatusRejected:
		return true
	default:
		return false
	}
}

// Application is a candidate's submission against exactly one job.
type Application struct {
	ID          string            `json:"id"`
	JobID       string            `json:"jobId"`
	Job         *JobSummary       `json:"job,omitempty"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	ResumeURL   string            `json:"resumeUrl"`
	CoverLetter string            `json:"coverLetter,omitempty"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ApplyRequest is the payload for submitting an application.
type ApplyRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	ResumeURL   string `json:"resumeUrl" validate:"required"`
	CoverLetter string `json:"coverLetter,omitempty"`
}

// Normalize trims every field and lowercases the email address.
func (r *ApplyRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.ResumeURL = strings.TrimSpace(r.ResumeURL)
	r.CoverLetter = strings.TrimSpace(r.CoverLetter)
}

// NormalizeEmail returns the canonical, case-insensitive form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ApplyResponse is returned after a successful submission.
type ApplyResponse struct {
	Message     string      `json:"message"`
	Application Application `json:"application"`
	ID          string      `json:"id"`
}

// StatusUpdateRequest sets the status of an application.
type StatusUpdateRequest struct {
	Status ApplicationStatus `json:"status"`
}

// StatusUpdateResponse is returned after a status change.
type StatusUpdateResponse struct {
	Message     string      `json:"message"`
	Application Application `json:"application"`
}

// MessageResponse is the body of error responses and of acknowledgements
// that carry no record.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by the liveness probe.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
