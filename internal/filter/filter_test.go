package filter

import (
	"fmt"
	"testing"
	"time"

	"github.com/jobboard/jobboard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func salary(v float64) *float64 { return &v }

func ids(jobs []types.Job) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.ID)
	}
	return out
}

func sampleJobs() []types.Job {
	return []types.Job{
		{ID: "1", Title: "Go Developer", Company: "Gopher Inc", Location: "Berlin, DE", Description: "Build APIs", Salary: salary(90000), Type: types.JobTypeFullTime, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "2", Title: "Frontend Engineer", Company: "Pixel", Location: "Remote", Description: "React and Go tooling", Type: types.JobTypeRemote, CreatedAt: now.Add(-3 * day)},
		{ID: "3", Title: "Data Analyst", Company: "Numbers", Location: "berlin", Description: "SQL", Salary: salary(40000), Type: types.JobTypePartTime, CreatedAt: now.Add(-20 * day)},
		{ID: "4", Title: "Contractor", Company: "GOLANG GmbH", Location: "Munich", Description: "Short gig", Salary: salary(250000), Type: types.JobTypeContract, CreatedAt: now.Add(-90 * day)},
	}
}

func TestApply_DefaultSpecKeepsEverythingInRange(t *testing.T) {
	got := Apply(sampleJobs(), DefaultSpec(), now)
	assert.Equal(t, []string{"1", "2", "3"}, ids(got), "job 4 exceeds the default salary ceiling")
}

func TestApply_SearchMatchesTitleCompanyOrDescription(t *testing.T) {
	spec := DefaultSpec()
	spec.SalaryRange = [2]float64{0, 1e9}
	spec.SearchTerm = "GO"

	got := Apply(sampleJobs(), spec, now)
	assert.Equal(t, []string{"1", "2", "4"}, ids(got))
}

func TestApply_LocationIsCaseInsensitiveSubstring(t *testing.T) {
	spec := DefaultSpec()
	spec.Location = "BERLIN"

	got := Apply(sampleJobs(), spec, now)
	assert.Equal(t, []string{"1", "3"}, ids(got))
}

func TestApply_JobTypeIsExact(t *testing.T) {
	spec := DefaultSpec()
	spec.JobType = types.JobTypeRemote

	got := Apply(sampleJobs(), spec, now)
	assert.Equal(t, []string{"2"}, ids(got))
}

func TestApply_DateBuckets(t *testing.T) {
	tests := []struct {
		bucket DateBucket
		want   []string
	}{
		{DateAny, []string{"1", "2", "3"}},
		{DateToday, []string{"1"}},
		{DateWeek, []string{"1", "2"}},
		{DateMonth, []string{"1", "2", "3"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.bucket), func(t *testing.T) {
			spec := DefaultSpec()
			spec.DatePosted = tt.bucket
			assert.Equal(t, tt.want, ids(Apply(sampleJobs(), spec, now)))
		})
	}
}

func TestApply_JobsWithoutSalaryAlwaysPass(t *testing.T) {
	jobs := []types.Job{
		{ID: "1", Title: "a", Company: "b", Location: "c", Description: "d"},
		{ID: "2", Title: "a", Company: "b", Location: "c", Description: "d", Salary: salary(90000)},
	}

	got := Apply(jobs, Spec{SalaryRange: [2]float64{0, 50000}}, now)
	assert.Equal(t, []string{"1"}, ids(got))

	for _, r := range [][2]float64{{0, 0}, {100, 200}, {1e9, 1e10}, {50, 10}} {
		spec := Spec{SalaryRange: r}
		assert.True(t, Matches(&jobs[0], spec, now), "range %v", r)
		assert.True(t, Matches(&types.Job{Salary: salary(0)}, spec, now), "zero salary counts as unset, range %v", r)
	}
}

func TestApply_SalaryBoundsAreInclusive(t *testing.T) {
	job := types.Job{Salary: salary(50000)}
	assert.True(t, Matches(&job, Spec{SalaryRange: [2]float64{50000, 60000}}, now))
	assert.True(t, Matches(&job, Spec{SalaryRange: [2]float64{40000, 50000}}, now))
	assert.False(t, Matches(&job, Spec{SalaryRange: [2]float64{50001, 60000}}, now))
}

// Every returned job satisfies every predicate and every satisfying job is returned.
func TestApply_SoundAndComplete(t *testing.T) {
	jobs := make([]types.Job, 0, 60)
	locations := []string{"Berlin", "Remote", "Paris", "New York"}
	for i := 0; i < 60; i++ {
		j := types.Job{
			ID:          fmt.Sprintf("%d", i),
			Title:       fmt.Sprintf("Role %d", i%7),
			Company:     fmt.Sprintf("Company %d", i%5),
			Location:    locations[i%len(locations)],
			Description: fmt.Sprintf("desc %d", i%3),
			Type:        types.JobTypes()[i%4],
			CreatedAt:   now.Add(-time.Duration(i) * 13 * time.Hour),
		}
		if i%3 != 0 {
			j.Salary = salary(float64(i * 5000))
		}
		jobs = append(jobs, j)
	}

	specs := []Spec{
		DefaultSpec(),
		{SearchTerm: "role 3", SalaryRange: [2]float64{0, 1e9}},
		{Location: "ber", SalaryRange: [2]float64{20000, 150000}, DatePosted: DateWeek},
		{JobType: types.JobTypeContract, SalaryRange: [2]float64{0, 100000}, DatePosted: DateMonth},
		{SearchTerm: "company 2", Location: "remote", SalaryRange: [2]float64{0, 0}, DatePosted: DateToday},
	}

	for i, spec := range specs {
		t.Run(fmt.Sprintf("spec-%d", i), func(t *testing.T) {
			got := Apply(jobs, spec, now)
			inResult := make(map[string]bool, len(got))
			for k := range got {
				inResult[got[k].ID] = true
				require.True(t, Matches(&got[k], spec, now), "job %s returned but does not match", got[k].ID)
			}
			for k := range jobs {
				if Matches(&jobs[k], spec, now) {
					assert.True(t, inResult[jobs[k].ID], "job %s matches but was dropped", jobs[k].ID)
				}
			}
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	jobs := sampleJobs()
	before := ids(jobs)
	_ = Apply(jobs, Spec{SearchTerm: "zzz"}, now)
	assert.Equal(t, before, ids(jobs))
}

func TestAgeDays(t *testing.T) {
	assert.Equal(t, 0, AgeDays(now, now))
	assert.Equal(t, 1, AgeDays(now.Add(-time.Minute), now))
	assert.Equal(t, 1, AgeDays(now.Add(-day), now))
	assert.Equal(t, 2, AgeDays(now.Add(-day-time.Second), now))
	assert.Equal(t, 1, AgeDays(now.Add(time.Hour), now), "future timestamps use the absolute difference")
}

func TestParseDateBucket(t *testing.T) {
	b, ok := ParseDateBucket(" Week ")
	assert.True(t, ok)
	assert.Equal(t, DateWeek, b)

	b, ok = ParseDateBucket("")
	assert.True(t, ok)
	assert.Equal(t, DateAny, b)

	_, ok = ParseDateBucket("year")
	assert.False(t, ok)
}

func TestSpec_IsDefault(t *testing.T) {
	assert.True(t, DefaultSpec().IsDefault())
	spec := DefaultSpec()
	spec.Location = "x"
	assert.False(t, spec.IsDefault())
}
