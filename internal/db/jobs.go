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
// Job Methods
// -----------------------------------------------------------------------------

const jobColumns = `id, title, company, location, description, salary, type,
	requirements, benefits, is_active, created_at, updated_at`

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*types.Job, error) {
	var j types.Job
	var id uuid.UUID
	var jobType string
	if err := row.Scan(&id, &j.Title, &j.Company, &j.Location, &j.Description, &j.Salary,
		&jobType, &j.Requirements, &j.Benefits, &j.IsActive, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	j.ID = id.String()
	j.Type = types.JobType(jobType)
	if j.Requirements == nil {
		j.Requirements = []string{}
	}
	if j.Benefits == nil {
		j.Benefits = []string{}
	}
	return &j, nil
}

// ListJobs returns the active jobs matching q, newest first, at most JobListLimit.
func (db *DB) ListJobs(ctx context.Context, q types.JobQuery) ([]types.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE is_active = TRUE`
	args := []any{}
	argNum := 1

	if q.Search != "" {
		query += fmt.Sprintf(` AND (title ILIKE $%d ESCAPE '\' OR company ILIKE $%d ESCAPE '\' OR description ILIKE $%d ESCAPE '\')`,
			argNum, argNum, argNum)
		args = append(args, "%"+escapeLike(q.Search)+"%")
		argNum++
	}
	if q.Location != "" {
		query += fmt.Sprintf(` AND location ILIKE $%d ESCAPE '\'`, argNum)
		args = append(args, "%"+escapeLike(q.Location)+"%")
		argNum++
	}
	if q.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argNum)
		args = append(args, string(q.Type))
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, JobListLimit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []types.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// GetJob retrieves a job by ID. It returns nil, nil when the job does not exist.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	job, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// CreateJob stores a new active job. The request must already be normalized.
func (db *DB) CreateJob(ctx context.Context, req *types.CreateJobRequest) (*types.Job, error) {
	now := time.Now().UTC()
	job, err := scanJob(db.pool.QueryRow(ctx,
		`INSERT INTO jobs (id, title, company, location, description, salary, type,
		                   requirements, benefits, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, $10, $10)
		 RETURNING `+jobColumns,
		uuid.New(), req.Title, req.Company, req.Location, req.Description, req.Salary,
		string(req.Type), types.CleanLines(req.Requirements), types.CleanLines(req.Benefits), now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// UpdateJob merges req into the stored job. It returns nil, nil when the job
// does not exist.
func (db *DB) UpdateJob(ctx context.Context, id uuid.UUID, req *types.UpdateJobRequest) (*types.Job, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	job, err := scanJob(tx.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	req.ApplyTo(job)

	updated, err := scanJob(tx.QueryRow(ctx,
		`UPDATE jobs SET title = $2, company = $3, location = $4, description = $5,
		        salary = $6, type = $7, requirements = $8, benefits = $9, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+jobColumns,
		id, job.Title, job.Company, job.Location, job.Description, job.Salary,
		string(job.Type), job.Requirements, job.Benefits,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit job update: %w", err)
	}
	return updated, nil
}

// DeleteJob deletes a job and applies policy to its applications. It returns
// ErrNotFound when the job does not exist.
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID, policy OrphanPolicy) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	switch policy {
	case OrphanBlock:
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM applications WHERE job_id = $1)`, id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check applications: %w", err)
		}
		if exists {
			return ErrHasApplications
		}
	case OrphanCascade:
		if _, err := tx.Exec(ctx, `DELETE FROM applications WHERE job_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete applications: %w", err)
		}
	}

	result, err := tx.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit job delete: %w", err)
	}
	return nil
}
