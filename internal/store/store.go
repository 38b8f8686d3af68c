// Package store holds the client session state: the canonical job list, the
// filtered and paginated projections over it, the applications fetched from
// the API and the locally persisted favorites, recently viewed and applied sets.
//
// Every action is an atomic transition; reads return copies.
package store

import (
	"slices"
	"sync"
	"time"

	"github.com/jobboard/jobboard/internal/filter"
	"github.com/jobboard/jobboard/internal/paginate"
	"github.com/jobboard/jobboard/internal/persist"
	"github.com/jobboard/jobboard/internal/types"
)

// MaxRecentlyViewed caps the recently viewed list.
const MaxRecentlyViewed = 10

// State is a point-in-time copy of the store.
type State struct {
	Jobs             []types.Job
	Filtered         []types.Job
	Paginated        []types.Job
	Favorites        []string
	RecentlyViewed   []string
	Applied          []string
	Applications     []types.Application
	UserApplications []types.Application
	Loading          bool
	Error            string
	Filter           filter.Spec
	CurrentPage      int
	PageSize         int
	TotalJobs        int
	TotalPages       int
	IsAdmin          bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for date filtering.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the session state container.
type Store struct {
	mu      sync.Mutex
	persist *persist.Adapter
	now     func() time.Time

	jobs             []types.Job
	filtered         []types.Job
	favorites        []string
	recentlyViewed   []string
	applied          []string
	applications     []types.Application
	userApplications []types.Application
	loading          bool
	errMsg           string
	spec             filter.Spec
	currentPage      int
	isAdmin          bool
	adminToken       string

	latest map[string]uint64
	seq    uint64
}

// New creates a store seeded from the persisted client state.
func New(adapter *persist.Adapter, opts ...Option) *Store {
	s := &Store{
		persist:          adapter,
		now:              time.Now,
		jobs:             []types.Job{},
		filtered:         []types.Job{},
		applications:     []types.Application{},
		userApplications: []types.Application{},
		spec:             filter.DefaultSpec(),
		currentPage:      1,
		latest:           make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.favorites = uniqueIDs(adapter.Favorites())
	s.recentlyViewed = uniqueIDs(adapter.RecentlyViewed())
	if len(s.recentlyViewed) > MaxRecentlyViewed {
		s.recentlyViewed = s.recentlyViewed[:MaxRecentlyViewed]
	}
	s.applied = uniqueIDs(adapter.Applied())
	s.isAdmin = adapter.IsAdmin()
	s.adminToken = adapter.AdminToken()

	return s
}

// ---------------------------------------------------------------------
// Jobs
// ---------------------------------------------------------------------

// LoadJobs replaces the job collection and recomputes the filtered view.
// It reports false when tok has been superseded and the jobs were discarded.
func (s *Store) LoadJobs(tok Token, jobs []types.Job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptLocked(tok) {
		return false
	}
	s.jobs = slices.Clone(jobs)
	if s.jobs == nil {
		s.jobs = []types.Job{}
	}
	s.loading = false
	s.errMsg = ""
	s.refilterLocked(false)
	return true
}

// AddJob folds a server-confirmed new job into the collection. A job with the
// same id is replaced rather than duplicated.
func (s *Store) AddJob(tok Token, job types.Job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptLocked(tok) {
		return false
	}
	if i := s.jobIndexLocked(job.ID); i >= 0 {
		s.jobs[i] = job
	} else {
		s.jobs = append(s.jobs, job)
	}
	s.refilterLocked(false)
	return true
}

// UpdateJob replaces the job with the same id. Unknown ids are ignored.
func (s *Store) UpdateJob(tok Token, job types.Job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptLocked(tok) {
		return false
	}
	if i := s.jobIndexLocked(job.ID); i >= 0 {
		s.jobs[i] = job
		s.refilterLocked(false)
	}
	return true
}

// RemoveJob drops the job with the given id.
func (s *Store) RemoveJob(tok Token, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptLocked(tok) {
		return false
	}
	s.jobs = slices.DeleteFunc(s.jobs, func(j types.Job) bool { return j.ID == id })
	s.refilterLocked(false)
	return true
}

// SetLoading sets the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetError records err as the global error and clears the loading flag.
// A nil error clears the error.
func (s *Store) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err == nil {
		s.errMsg = ""
		return
	}
	s.errMsg = err.Error()
}

// ApplyFilter makes spec the active filter and resets the page to 1.
func (s *Store) ApplyFilter(spec filter.Spec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spec = spec
	s.refilterLocked(true)
}

// ClearFilter restores the default filter.
func (s *Store) ClearFilter() {
	s.ApplyFilter(filter.DefaultSpec())
}

// SetPage moves to page, clamped to the available pages, and returns the page applied.
func (s *Store) SetPage(page int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentPage = paginate.Clamp(page, s.totalPagesLocked())
	return s.currentPage
}

func (s *Store) refilterLocked(resetPage bool) {
	s.filtered = filter.Apply(s.jobs, s.spec, s.now())
	if resetPage {
		s.currentPage = 1
		return
	}
	s.currentPage = paginate.Clamp(s.currentPage, s.totalPagesLocked())
}

func (s *Store) totalPagesLocked() int {
	return paginate.TotalPages(len(s.filtered), paginate.DefaultPageSize)
}

func (s *Store) jobIndexLocked(id string) int {
	return slices.IndexFunc(s.jobs, func(j types.Job) bool { return j.ID == id })
}

// ---------------------------------------------------------------------
// Favorites, recently viewed, applied
// ---------------------------------------------------------------------

// AddFavorite adds id to the favorites. Adding an existing favorite is a no-op.
func (s *Store) AddFavorite(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.favorites, id) {
		return nil
	}
	next := append(slices.Clone(s.favorites), id)
	if err := s.persist.SaveFavorites(next); err != nil {
		return err
	}
	s.favorites = next
	return nil
}

// RemoveFavorite removes id from the favorites. Removing a non-member is a no-op.
func (s *Store) RemoveFavorite(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.favorites, id) {
		return nil
	}
	next := slices.DeleteFunc(slices.Clone(s.favorites), func(f string) bool { return f == id })
	if err := s.persist.SaveFavorites(next); err != nil {
		return err
	}
	s.favorites = next
	return nil
}

// ToggleFavorite flips the favorite state of id and reports whether it is now a favorite.
func (s *Store) ToggleFavorite(id string) (bool, error) {
	if s.IsFavorite(id) {
		return false, s.RemoveFavorite(id)
	}
	return true, s.AddFavorite(id)
}

// IsFavorite reports whether id is a favorite.
func (s *Store) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.favorites, id)
}

// AddRecentlyViewed moves id to the front of the recently viewed list,
// keeping at most MaxRecentlyViewed unique entries.
func (s *Store) AddRecentlyViewed(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, MaxRecentlyViewed)
	next = append(next, id)
	for _, v := range s.recentlyViewed {
		if v != id && len(next) < MaxRecentlyViewed {
			next = append(next, v)
		}
	}
	if err := s.persist.SaveRecentlyViewed(next); err != nil {
		return err
	}
	s.recentlyViewed = next
	return nil
}

// RecordApplied remembers that the user applied to jobID.
func (s *Store) RecordApplied(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.applied, jobID) {
		return nil
	}
	next := append(slices.Clone(s.applied), jobID)
	if err := s.persist.SaveApplied(next); err != nil {
		return err
	}
	s.applied = next
	return nil
}

// SetAdmin records the admin login state and its token.
func (s *Store) SetAdmin(isAdmin bool, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !isAdmin {
		token = ""
	}
	if err := s.persist.SaveAdmin(isAdmin, token); err != nil {
		return err
	}
	s.isAdmin = isAdmin
	s.adminToken = token
	return nil
}

// ---------------------------------------------------------------------
// Applications
// ---------------------------------------------------------------------

// SetApplications replaces the administrative application list.
func (s *Store) SetApplications(tok Token, apps []types.Application) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptLocked(tok) {
		return false
	}
	s.applications = cloneApplications(apps)
	return true
}

// SetUserApplications replaces the current user's application list.
func (s *Store) SetUserApplications(tok Token, apps []types.Application) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptLocked(tok) {
		return false
	}
	s.userApplications = cloneApplications(apps)
	return true
}

// UpsertUserApplication appends app to the user's applications or replaces
// the entry with the same id in place.
func (s *Store) UpsertUserApplication(tok Token, app types.Application) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptLocked(tok) {
		return false
	}
	s.userApplications = upsertApplication(s.userApplications, app, true)
	return true
}

// ReplaceApplication folds a server-confirmed application change into both
// application lists. Lists that do not contain the application are untouched.
func (s *Store) ReplaceApplication(tok Token, app types.Application) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptLocked(tok) {
		return false
	}
	s.applications = upsertApplication(s.applications, app, false)
	s.userApplications = upsertApplication(s.userApplications, app, false)
	return true
}

// RemoveApplication drops the application from both lists.
func (s *Store) RemoveApplication(tok Token, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptLocked(tok) {
		return false
	}
	byID := func(a types.Application) bool { return a.ID == id }
	s.applications = slices.DeleteFunc(s.applications, byID)
	s.userApplications = slices.DeleteFunc(s.userApplications, byID)
	return true
}

func upsertApplication(apps []types.Application, app types.Application, appendMissing bool) []types.Application {
	if i := slices.IndexFunc(apps, func(a types.Application) bool { return a.ID == app.ID }); i >= 0 {
		apps[i] = app
		return apps
	}
	if appendMissing {
		return append(apps, app)
	}
	return apps
}

// ---------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Jobs:             slices.Clone(s.jobs),
		Filtered:         slices.Clone(s.filtered),
		Paginated:        s.paginatedLocked(),
		Favorites:        slices.Clone(s.favorites),
		RecentlyViewed:   slices.Clone(s.recentlyViewed),
		Applied:          slices.Clone(s.applied),
		Applications:     cloneApplications(s.applications),
		UserApplications: cloneApplications(s.userApplications),
		Loading:          s.loading,
		Error:            s.errMsg,
		Filter:           s.spec,
		CurrentPage:      s.currentPage,
		PageSize:         paginate.DefaultPageSize,
		TotalJobs:        len(s.filtered),
		TotalPages:       s.totalPagesLocked(),
		IsAdmin:          s.isAdmin,
	}
}

// Jobs returns the canonical job collection.
func (s *Store) Jobs() []types.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.jobs)
}

// Job returns the job with the given id.
func (s *Store) Job(id string) (types.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.jobIndexLocked(id); i >= 0 {
		return s.jobs[i], true
	}
	return types.Job{}, false
}

// Filtered returns the jobs matching the active filter.
func (s *Store) Filtered() []types.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.filtered)
}

// Paginated returns the current page of the filtered jobs.
func (s *Store) Paginated() []types.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paginatedLocked()
}

func (s *Store) paginatedLocked() []types.Job {
	return paginate.Page(s.filtered, s.currentPage, paginate.DefaultPageSize)
}

// CurrentPage returns the active 1-based page.
func (s *Store) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

// TotalPages returns the number of pages of the filtered jobs.
func (s *Store) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPagesLocked()
}

// Filter returns the active filter.
func (s *Store) Filter() filter.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec
}

// Favorites returns the favorite job ids in insertion order.
func (s *Store) Favorites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.favorites)
}

// RecentlyViewed returns the recently viewed job ids, newest first.
func (s *Store) RecentlyViewed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.recentlyViewed)
}

// Applied returns the job ids the user applied to from this client.
func (s *Store) Applied() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.applied)
}

// Applications returns the administrative application list.
func (s *Store) Applications() []types.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneApplications(s.applications)
}

// UserApplications returns the current user's applications.
func (s *Store) UserApplications() []types.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneApplications(s.userApplications)
}

// IsAdmin reports whether the admin flag is set.
func (s *Store) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isAdmin
}

// AdminToken returns the token issued at admin login.
func (s *Store) AdminToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adminToken
}

// Loading reports whether a job fetch is in progress.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the global error message, empty when there is none.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// HasApplied reports whether the user applied to jobID, either from this
// client or according to the fetched user applications.
func (s *Store) HasApplied(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.applied, jobID) {
		return true
	}
	return slices.ContainsFunc(s.userApplications, func(a types.Application) bool { return a.JobID == jobID })
}

// FavoriteJobs returns the loaded jobs that are favorites, in collection order.
func (s *Store) FavoriteJobs() []types.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Job, 0, len(s.favorites))
	for _, j := range s.jobs {
		if slices.Contains(s.favorites, j.ID) {
			out = append(out, j)
		}
	}
	return out
}

// RecentJobs returns the loaded jobs that were recently viewed, newest first.
func (s *Store) RecentJobs() []types.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Job, 0, len(s.recentlyViewed))
	for _, id := range s.recentlyViewed {
		if i := s.jobIndexLocked(id); i >= 0 {
			out = append(out, s.jobs[i])
		}
	}
	return out
}

// MyApplications returns the user's applications: the ones known to belong
// to the user plus administrative entries for jobs applied to from this client.
func (s *Store) MyApplications() []types.Application {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := cloneApplications(s.userApplications)
	seen := make(map[string]bool, len(out))
	for _, a := range out {
		seen[a.ID] = true
	}
	for _, a := range s.applications {
		if !seen[a.ID] && slices.Contains(s.applied, a.JobID) {
			out = append(out, a)
		}
	}
	return out
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func cloneApplications(apps []types.Application) []types.Application {
	if apps == nil {
		return []types.Application{}
	}
	return slices.Clone(apps)
}
