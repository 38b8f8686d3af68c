// Package types provides the typed records exchanged between the job-board API, its client and the client-side store.
package types

import (
	"strings"
	"time"
)

// JobType is the employment type of a posting.
type JobType string

// Supported job types.
const (
	JobTypeFullTime JobType = "Full-time"
	JobTypePartTime JobType = "Part-time"
	JobTypeContract JobType = "Contract"
	JobTypeRemote   JobType = "Remote"
)

// JobTypes returns the supported job types in display order.
func JobTypes() []JobType {
	return []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeRemote}
}

// Valid reports whether t is one of the supported job types.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeRemote:
		return true
	default:
		return false
	}
}

// Job is a posting describing an open position.
type Job struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	Salary       *float64  `json:"salary,omitempty"`
	Type         JobType   `json:"type"`
	Requirements []string  `json:"requirements"`
	Benefits     []string  `json:"benefits"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasSalary reports whether the posting advertises a salary. A zero salary
// counts as unset.
func (j *Job) HasSalary() bool {
	return j.Salary != nil && *j.Salary != 0
}

// Summary returns the fields embedded into application reads.
func (j *Job) Summary() *JobSummary {
	return &JobSummary{
		ID:       j.ID,
		Title:    j.Title,
		Company:  j.Company,
		Location: j.Location,
	}
}

// JobSummary is the subset of a job shown alongside an application.
type JobSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
}

// JobQuery holds the server-side filters accepted by the job listing endpoint.
type JobQuery struct {
	Search   string
	Location string
	Type     JobType
}

// CreateJobRequest is the payload for creating a job posting.
type CreateJobRequest struct {
	Title        string   `json:"title" yaml:"title" validate:"required"`
	Company      string   `json:"company" yaml:"company" validate:"required"`
	Location     string   `json:"location" yaml:"location" validate:"required"`
	Description  string   `json:"description" yaml:"description" validate:"required"`
	Salary       *float64 `json:"salary,omitempty" yaml:"salary,omitempty" validate:"omitempty,gte=0"`
	Type         JobType  `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=Full-time Part-time Contract Remote"`
	Requirements []string `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	Benefits     []string `json:"benefits,omitempty" yaml:"benefits,omitempty"`
}

// Normalize trims text fields, drops blank list entries and applies the default job type.
func (r *CreateJobRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Company = strings.TrimSpace(r.Company)
	r.Location = strings.TrimSpace(r.Location)
	r.Description = strings.TrimSpace(r.Description)
	r.Requirements = CleanLines(r.Requirements)
	r.Benefits = CleanLines(r.Benefits)
	if r.Type == "" {
		r.Type = JobTypeFullTime
	}
}

// UpdateJobRequest is the payload for editing a job posting. Blank text
// fields keep their stored value; nil lists and a nil salary are left untouched.
type UpdateJobRequest struct {
	Title        string   `json:"title,omitempty"`
	Company      string   `json:"company,omitempty"`
	Location     string   `json:"location,omitempty"`
	Description  string   `json:"description,omitempty"`
	Salary       *float64 `json:"salary,omitempty" validate:"omitempty,gte=0"`
	Type         JobType  `json:"type,omitempty" validate:"omitempty,oneof=Full-time Part-time Contract Remote"`
	Requirements []string `json:"requirements,omitempty"`
	Benefits     []string `json:"benefits,omitempty"`
}

// Normalize trims text fields and drops blank list entries.
func (r *UpdateJobRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Company = strings.TrimSpace(r.Company)
	r.Location = strings.TrimSpace(r.Location)
	r.Description = strings.TrimSpace(r.Description)
	if r.Requirements != nil {
		r.Requirements = CleanLines(r.Requirements)
	}
	if r.Benefits != nil {
		r.Benefits = CleanLines(r.Benefits)
	}
}

// ApplyTo merges the request into job following the partial-update rules.
func (r *UpdateJobRequest) ApplyTo(job *Job) {
	if r.Title != "" {
		job.Title = r.Title
	}
	if r.Company != "" {
		job.Company = r.Company
	}
	if r.Location != "" {
		job.Location = r.Location
	}
	if r.Description != "" {
		job.Description = r.Description
	}
	if r.Salary != nil {
		salary := *r.Salary
		job.Salary = &salary
	}
	if r.Type != "" {
		job.Type = r.Type
	}
	if r.Requirements != nil {
		job.Requirements = append([]string{}, r.Requirements...)
	}
	if r.Benefits != nil {
		job.Benefits = append([]string{}, r.Benefits...)
	}
}

// CleanLines trims every entry and drops the blank ones. The result is never nil.
func CleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// SplitLines splits newline separated text into cleaned entries.
func SplitLines(text string) []string {
	return CleanLines(strings.Split(text, "\n"))
}
