package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when the record to change does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an application for the same job and
	// email already exists.
	ErrDuplicate = errors.New("duplicate application")
	// ErrHasApplications is returned when deleting a job that still has
	// applications under the block orphan policy.
	ErrHasApplications = errors.New("job has applications")
)

// uniqueViolation is the PostgreSQL error code for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// List limits applied by the listing queries.
const (
	JobListLimit         = 50
	ApplicationListLimit = 100
)

// OrphanPolicy decides what happens to the applications of a deleted job.
type OrphanPolicy string

// Orphan policies.
const (
	// OrphanRetain keeps the applications; they no longer resolve to a job.
	OrphanRetain OrphanPolicy = "retain"
	// OrphanCascade deletes the applications with the job.
	OrphanCascade OrphanPolicy = "cascade"
	// OrphanBlock refuses to delete a job that has applications.
	OrphanBlock OrphanPolicy = "block"
)

// ParseOrphanPolicy parses a policy name. The empty string selects OrphanRetain.
func ParseOrphanPolicy(s string) (OrphanPolicy, error) {
	switch p := OrphanPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return OrphanRetain, nil
	case OrphanRetain, OrphanCascade, OrphanBlock:
		return p, nil
	default:
		return "", fmt.Errorf("invalid orphan policy %q: must be retain, cascade or block", s)
	}
}

// escapeLike escapes the LIKE wildcards of a user supplied search term.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
