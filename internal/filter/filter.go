// Package filter narrows a job collection with the user's current criteria.
package filter

import (
	"math"
	"strings"
	"time"

	"github.com/jobboard/jobboard/internal/types"
)

// DateBucket limits results by posting age.
type DateBucket string

// Posting age buckets. DateAny disables the predicate.
const (
	DateAny   DateBucket = ""
	DateToday DateBucket = "today"
	DateWeek  DateBucket = "week"
	DateMonth DateBucket = "month"
)

// Default salary bounds used when no range has been chosen.
const (
	DefaultSalaryMin = 0
	DefaultSalaryMax = 200000
)

const day = 24 * time.Hour

// maxAgeDays returns the inclusive age threshold of the bucket and whether
// the bucket restricts anything at all.
func (b DateBucket) maxAgeDays() (int, bool) {
	switch b {
	case DateToday:
		return 1, true
	case DateWeek:
		return 7, true
	case DateMonth:
		return 30, true
	default:
		return 0, false
	}
}

// ParseDateBucket parses a bucket name. The empty string maps to DateAny.
func ParseDateBucket(s string) (DateBucket, bool) {
	switch b := DateBucket(strings.ToLower(strings.TrimSpace(s))); b {
	case DateAny, DateToday, DateWeek, DateMonth:
		return b, true
	default:
		return DateAny, false
	}
}

// Spec is the set of narrowing criteria applied to the job collection.
type Spec struct {
	SearchTerm  string
	Location    string
	SalaryRange [2]float64
	JobType     types.JobType
	DatePosted  DateBucket
}

// DefaultSpec returns the criteria in effect after "clear filters".
func DefaultSpec() Spec {
	return Spec{SalaryRange: [2]float64{DefaultSalaryMin, DefaultSalaryMax}}
}

// IsDefault reports whether s narrows nothing beyond the default salary range.
func (s Spec) IsDefault() bool {
	return s == DefaultSpec()
}

// Apply returns the jobs that satisfy every predicate of spec, preserving input order.
func Apply(jobs []types.Job, spec Spec, now time.Time) []types.Job {
	matcher := newMatcher(spec, now)
	out := make([]types.Job, 0, len(jobs))
	for i := range jobs {
		if matcher.match(&jobs[i]) {
			out = append(out, jobs[i])
		}
	}
	return out
}

// Matches reports whether a single job satisfies spec.
func Matches(job *types.Job, spec Spec, now time.Time) bool {
	return newMatcher(spec, now).match(job)
}

// AgeDays returns the whole-day age of a posting, rounding any partial day up.
func AgeDays(createdAt, now time.Time) int {
	elapsed := now.Sub(createdAt)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	return int(math.Ceil(float64(elapsed) / float64(day)))
}

// matcher holds the lowercased criteria so a pass over the collection folds
// case once per spec rather than once per job.
type matcher struct {
	spec     Spec
	search   string
	location string
	now      time.Time
}

func newMatcher(spec Spec, now time.Time) matcher {
	return matcher{
		spec:     spec,
		search:   strings.ToLower(spec.SearchTerm),
		location: strings.ToLower(spec.Location),
		now:      now,
	}
}

func (m matcher) match(job *types.Job) bool {
	return m.matchesSearch(job) &&
		m.matchesLocation(job) &&
		m.matchesSalary(job) &&
		m.matchesType(job) &&
		m.matchesDate(job)
}

func (m matcher) matchesSearch(job *types.Job) bool {
	if m.search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(job.Title), m.search) ||
		strings.Contains(strings.ToLower(job.Company), m.search) ||
		strings.Contains(strings.ToLower(job.Description), m.search)
}

func (m matcher) matchesLocation(job *types.Job) bool {
	return m.location == "" || strings.Contains(strings.ToLower(job.Location), m.location)
}

// matchesSalary lets jobs without a salary through regardless of range.
func (m matcher) matchesSalary(job *types.Job) bool {
	if !job.HasSalary() {
		return true
	}
	salary := *job.Salary
	return salary >= m.spec.SalaryRange[0] && salary <= m.spec.SalaryRange[1]
}

func (m matcher) matchesType(job *types.Job) bool {
	return m.spec.JobType == "" || job.Type == m.spec.JobType
}

func (m matcher) matchesDate(job *types.Job) bool {
	maxAge, ok := m.spec.DatePosted.maxAgeDays()
	if !ok {
		return true
	}
	return AgeDays(job.CreatedAt, m.now) <= maxAge
}
