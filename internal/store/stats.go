package store

import (
	"math"

	"github.com/jobboard/jobboard/internal/types"
)

// Stats summarizes the filtered jobs.
type Stats struct {
	Available     int
	Companies     int
	Locations     int
	AverageSalary int
}

// Stats computes the summary over the jobs matching the active filter.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeStats(s.filtered)
}

// ComputeStats counts unique companies and locations and averages the
// advertised salaries, rounded to the nearest unit.
func ComputeStats(jobs []types.Job) Stats {
	companies := make(map[string]struct{})
	locations := make(map[string]struct{})
	var total float64
	var salaried int

	for i := range jobs {
		companies[jobs[i].Company] = struct{}{}
		locations[jobs[i].Location] = struct{}{}
		if jobs[i].HasSalary() {
			total += *jobs[i].Salary
			salaried++
		}
	}

	st := Stats{
		Available: len(jobs),
		Companies: len(companies),
		Locations: len(locations),
	}
	if salaried > 0 {
		st.AverageSalary = int(math.Round(total / float64(salaried)))
	}
	return st
}

// StatusCounts counts the administrative applications per status.
func (s *Store) StatusCounts() map[types.ApplicationStatus]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CountStatuses(s.applications)
}

// CountStatuses returns the number of applications in every status, including zeros.
func CountStatuses(apps []types.Application) map[types.ApplicationStatus]int {
	counts := make(map[types.ApplicationStatus]int, len(types.ApplicationStatuses()))
	for _, st := range types.ApplicationStatuses() {
		counts[st] = 0
	}
	for _, a := range apps {
		counts[a.Status]++
	}
	return counts
}
