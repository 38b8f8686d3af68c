package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jobboard/jobboard/internal/types"
)

// -----------------------------------------------------------------------------
// Application Methods
// -----------------------------------------------------------------------------

// applicationSelect reads applications together with the summary of their job.
// The join is outer: retained applications of deleted jobs have no summary.
const applicationSelect = `SELECT a.id, a.job_id, a.name, a.email, a.resume_url, a.cover_letter,
	a.status, a.created_at, a.updated_at, j.title, j.company, j.location
	FROM applications a LEFT JOIN jobs j ON j.id = a.job_id`

func scanApplication(row rowScanner) (*types.Application, error) {
	var a types.Application
	var id, jobID uuid.UUID
	var status string
	var title, company, location *string
	if err := row.Scan(&id, &jobID, &a.Name, &a.Email, &a.ResumeURL, &a.CoverLetter,
		&status, &a.CreatedAt, &a.UpdatedAt, &title, &company, &location); err != nil {
		return nil, err
	}
	a.ID = id.String()
	a.JobID = jobID.String()
	a.Status = types.ApplicationStatus(status)
	if title != nil {
		a.Job = &types.JobSummary{ID: a.JobID, Title: *title, Company: deref(company), Location: deref(location)}
	}
	return &a, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (db *DB) queryApplications(ctx context.Context, query string, args ...any) ([]types.Application, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []types.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// CreateApplication stores a pending application for jobID. The request must
// already be normalized. It returns ErrNotFound when the job does not exist
// and ErrDuplicate when the email already applied to the job.
func (db *DB) CreateApplication(ctx context.Context, jobID uuid.UUID, req *types.ApplyRequest) (*types.Application, error) {
	job, err := db.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrNotFound
	}

	now := time.Now().UTC()
	app := types.Application{
		JobID:       job.ID,
		Job:         job.Summary(),
		Name:        req.Name,
		Email:       req.Email,
		ResumeURL:   req.ResumeURL,
		CoverLetter: req.CoverLetter,
		Status:      types.StatusPending,
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO applications (id, job_id, name, email, resume_url, cover_letter, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		 RETURNING id, created_at, updated_at`,
		uuid.New(), jobID, app.Name, app.Email, app.ResumeURL, app.CoverLetter, string(app.Status), now,
	).Scan(&id, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	app.ID = id.String()
	return &app, nil
}

// GetApplication retrieves an application by ID. It returns nil, nil when the
// application does not exist.
func (db *DB) GetApplication(ctx context.Context, id uuid.UUID) (*types.Application, error) {
	app, err := scanApplication(db.pool.QueryRow(ctx, applicationSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

// ListApplications returns the newest applications, at most ApplicationListLimit.
func (db *DB) ListApplications(ctx context.Context) ([]types.Application, error) {
	return db.queryApplications(ctx,
		applicationSelect+` ORDER BY a.created_at DESC LIMIT $1`, ApplicationListLimit)
}

// ListApplicationsByJob returns the applications for jobID, newest first.
func (db *DB) ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]types.Application, error) {
	return db.queryApplications(ctx,
		applicationSelect+` WHERE a.job_id = $1 ORDER BY a.created_at DESC`, jobID)
}

// ListApplicationsByEmail returns the applications submitted with email, newest first.
func (db *DB) ListApplicationsByEmail(ctx context.Context, email string) ([]types.Application, error) {
	return db.queryApplications(ctx,
		applicationSelect+` WHERE a.email = $1 ORDER BY a.created_at DESC`, types.NormalizeEmail(email))
}

// UpdateApplicationStatus sets the status of an application. It returns nil,
// nil when the application does not exist.
func (db *DB) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status types.ApplicationStatus) (*types.Application, error) {
	result, err := db.pool.Exec(ctx,
		`UPDATE applications SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, nil
	}
	return db.GetApplication(ctx, id)
}

// DeleteApplication deletes an application. It returns ErrNotFound when the
// application does not exist.
func (db *DB) DeleteApplication(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
