package store

import "strconv"

// Resources that carry request tokens.
const (
	ResourceJobs             = "jobs"
	ResourceApplications     = "applications"
	ResourceUserApplications = "user-applications"
)

// JobResource names the resource of a single job request.
func JobResource(id string) string { return "job:" + id }

// ApplicationResource names the resource of a single application request.
func ApplicationResource(id string) string { return "application:" + id }

// Token identifies one outstanding request for a resource. The zero Token is
// never stale.
type Token struct {
	resource string
	seq      uint64
}

// IsZero reports whether t is the zero Token.
func (t Token) IsZero() bool { return t.resource == "" }

// Resource returns the resource t was issued for.
func (t Token) Resource() string { return t.resource }

func (t Token) String() string {
	if t.IsZero() {
		return "token(none)"
	}
	return t.resource + "#" + strconv.FormatUint(t.seq, 10)
}

// Begin issues a token for a new request on resource. Tokens issued earlier
// for the same resource become stale.
func (s *Store) Begin(resource string) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.latest[resource] = s.seq
	return Token{resource: resource, seq: s.seq}
}

// IsLatest reports whether tok is still the latest token for its resource.
func (s *Store) IsLatest(tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acceptLocked(tok)
}

func (s *Store) acceptLocked(tok Token) bool {
	if tok.IsZero() {
		return true
	}
	return s.latest[tok.resource] == tok.seq
}
