package server

import (
	"html"

	"github.com/microcosm-cc/bluemonday"

	"github.com/jobboard/jobboard/internal/types"
)

// sanitizer strips markup from free-text fields before they are stored.
type sanitizer struct {
	policy *bluemonday.Policy
}

func newSanitizer() *sanitizer {
	return &sanitizer{policy: bluemonday.StrictPolicy()}
}

// text removes every tag. The strict policy escapes entities, which are
// decoded again so "R&D" is stored as typed.
func (s *sanitizer) text(in string) string {
	if in == "" {
		return in
	}
	return html.UnescapeString(s.policy.Sanitize(in))
}

func (s *sanitizer) lines(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, line := range in {
		out[i] = s.text(line)
	}
	return out
}

func (s *sanitizer) createJob(req *types.CreateJobRequest) {
	req.Title = s.text(req.Title)
	req.Company = s.text(req.Company)
	req.Location = s.text(req.Location)
	req.Description = s.text(req.Description)
	req.Requirements = s.lines(req.Requirements)
	req.Benefits = s.lines(req.Benefits)
}

func (s *sanitizer) updateJob(req *types.UpdateJobRequest) {
	req.Title = s.text(req.Title)
	req.Company = s.text(req.Company)
	req.Location = s.text(req.Location)
	req.Description = s.text(req.Description)
	req.Requirements = s.lines(req.Requirements)
	req.Benefits = s.lines(req.Benefits)
}

func (s *sanitizer) application(req *types.ApplyRequest) {
	req.Name = s.text(req.Name)
	req.CoverLetter = s.text(req.CoverLetter)
}
