package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
	"github.com/rajsir217-oss/profiledata-gateway/internal/services/criteria"
	"github.com/rajsir217-oss/profiledata-gateway/internal/upstream"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNoActiveSession = errors.New("no active search session")
	ErrPageInFlight    = errors.New("page request already in flight")
	ErrPageOutOfOrder  = errors.New("page requested out of order")
	ErrSuperseded      = errors.New("search superseded by a newer one")
)

type Upstream interface {
	Search(ctx context.Context, query upstream.SearchQuery) (upstream.SearchPage, error)
}

// ExclusionLister reports the usernames a viewer has excluded. Excluded
// profiles are dropped when pages are merged, before reconciliation.
type ExclusionLister interface {
	Exclusions(ctx context.Context, username string) ([]string, error)
}

type Config struct {
	PageSize    int
	MaxPageSize int
}

// PageResult is the view returned to the caller after any session
// mutation: the reconciled rows plus paging state.
type PageResult struct {
	Users   []model.SearchResultUser
	Total   int
	Page    int
	HasMore bool
}

type session struct {
	mu sync.Mutex

	criteria model.SearchCriteria

	// Raw accumulated rows across pages, in arrival order. The version
	// counter is bumped on every mutation so the reconciler can trust
	// its memo.
	results        []model.SearchResultUser
	resultsVersion uint64

	total   int
	page    int
	hasMore bool

	// generation identifies which search the accumulated rows belong
	// to. A page response fetched under an older generation is dropped.
	generation uint64

	inFlight bool

	excluded map[string]struct{}

	minMatchScore int
	sortBy        string
	sortOrder     string
	scrollOffset  int

	reconciler *Reconciler
}

// Service executes searches against the upstream profile API and owns
// one accumulation session per user.
type Service struct {
	cfg        Config
	builder    *criteria.Builder
	upstream   Upstream
	exclusions ExclusionLister
	logger     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

func NewService(cfg Config, builder *criteria.Builder, up Upstream, logger *zap.Logger) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 50
	}
	if cfg.PageSize > cfg.MaxPageSize {
		cfg.PageSize = cfg.MaxPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		cfg:      cfg,
		builder:  builder,
		upstream: up,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// AttachExclusions wires the optional exclusion list source.
func (s *Service) AttachExclusions(lister ExclusionLister) {
	s.exclusions = lister
}

// StartSearch normalizes the criteria, discards any accumulated results
// and fetches the first page. Page one always replaces, never merges.
func (s *Service) StartSearch(ctx context.Context, username string, raw model.SearchCriteria) (PageResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return PageResult{}, ErrValidation
	}

	normalized, err := s.builder.Normalize(raw)
	if err != nil {
		return PageResult{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	sess := s.sessionFor(username)

	sess.mu.Lock()
	if sess.inFlight {
		sess.mu.Unlock()
		return PageResult{}, ErrPageInFlight
	}
	sess.inFlight = true
	generation := sess.generation
	sess.mu.Unlock()

	excluded := s.loadExclusions(ctx, username)

	page, err := s.upstream.Search(ctx, s.builder.UpstreamQuery(normalized, 1, s.cfg.PageSize, username))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.inFlight = false

	// Nothing is committed until the fetch succeeds: a failed restart
	// leaves the previous search fully intact.
	if err != nil {
		return PageResult{}, fmt.Errorf("fetch first page: %w", err)
	}
	if sess.generation != generation {
		return PageResult{}, ErrSuperseded
	}

	sess.generation++
	sess.criteria = normalized
	sess.excluded = excluded
	sess.results = sess.results[:0]
	sess.total = page.Total
	sess.page = 1
	appended := sess.merge(page.Users)
	sess.hasMore = moreAvailable(len(sess.results), page.Total, len(page.Users), s.cfg.PageSize, appended)
	sess.resultsVersion++

	return s.viewLocked(sess), nil
}

// LoadPage fetches one additional page. Pages are strictly sequential
// per session and only one request may be in flight at a time.
func (s *Service) LoadPage(ctx context.Context, username string, page int) (PageResult, error) {
	sess, ok := s.lookup(username)
	if !ok {
		return PageResult{}, ErrNoActiveSession
	}

	sess.mu.Lock()
	if sess.page == 0 {
		sess.mu.Unlock()
		return PageResult{}, ErrNoActiveSession
	}
	if sess.inFlight {
		sess.mu.Unlock()
		return PageResult{}, ErrPageInFlight
	}
	if page != sess.page+1 {
		sess.mu.Unlock()
		return PageResult{}, ErrPageOutOfOrder
	}
	if !sess.hasMore {
		result := s.viewLocked(sess)
		sess.mu.Unlock()
		return result, nil
	}
	sess.inFlight = true
	generation := sess.generation
	query := s.builder.UpstreamQuery(sess.criteria, page, s.cfg.PageSize, username)
	sess.mu.Unlock()

	upstreamPage, err := s.upstream.Search(ctx, query)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.inFlight = false

	if err != nil {
		return PageResult{}, fmt.Errorf("fetch page %d: %w", page, err)
	}
	if sess.generation != generation {
		return PageResult{}, ErrSuperseded
	}

	sess.total = upstreamPage.Total
	sess.page = page
	appended := sess.merge(upstreamPage.Users)
	sess.hasMore = moreAvailable(len(sess.results), upstreamPage.Total, len(upstreamPage.Users), s.cfg.PageSize, appended)
	sess.resultsVersion++

	return s.viewLocked(sess), nil
}

// LoadMore fetches the page after the last loaded one.
func (s *Service) LoadMore(ctx context.Context, username string) (PageResult, error) {
	sess, ok := s.lookup(username)
	if !ok {
		return PageResult{}, ErrNoActiveSession
	}

	sess.mu.Lock()
	next := sess.page + 1
	sess.mu.Unlock()

	return s.LoadPage(ctx, username, next)
}

// Results returns the current reconciled view without fetching.
func (s *Service) Results(username string) (PageResult, error) {
	sess, ok := s.lookup(username)
	if !ok {
		return PageResult{}, ErrNoActiveSession
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.page == 0 {
		return PageResult{}, ErrNoActiveSession
	}
	return s.viewLocked(sess), nil
}

// SetView updates the client-side filter and ordering knobs. These only
// change how accumulated results are presented, never what was fetched.
func (s *Service) SetView(username string, minMatchScore int, sortBy, sortOrder string) (PageResult, error) {
	if minMatchScore < 0 || minMatchScore > 100 {
		return PageResult{}, ErrValidation
	}
	switch sortBy {
	case "", SortByMatchScore, SortByCreatedAt, SortByAge, SortByHeight,
		SortByName, SortByLocation, SortByEducation, SortByOccupation, SortByUsername:
	default:
		return PageResult{}, ErrValidation
	}
	switch strings.ToLower(sortOrder) {
	case "", SortAsc, SortDesc:
	default:
		return PageResult{}, ErrValidation
	}

	sess, ok := s.lookup(username)
	if !ok {
		return PageResult{}, ErrNoActiveSession
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.page == 0 {
		return PageResult{}, ErrNoActiveSession
	}
	sess.minMatchScore = minMatchScore
	sess.sortBy = sortBy
	sess.sortOrder = strings.ToLower(sortOrder)
	return s.viewLocked(sess), nil
}

// SetScrollOffset records the viewer's list position for restoration.
func (s *Service) SetScrollOffset(username string, offset int) {
	sess, ok := s.lookup(username)
	if !ok {
		return
	}
	sess.mu.Lock()
	if offset >= 0 {
		sess.scrollOffset = offset
	}
	sess.mu.Unlock()
}

// Clear drops the session entirely.
func (s *Service) Clear(username string) {
	s.mu.Lock()
	delete(s.sessions, username)
	s.mu.Unlock()
}

// Snapshot captures the session for persistence. Returns false when the
// user has no results to save.
func (s *Service) Snapshot(username string, now time.Time) (model.SearchSnapshot, bool) {
	sess, ok := s.lookup(username)
	if !ok {
		return model.SearchSnapshot{}, false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.page == 0 || len(sess.results) == 0 {
		return model.SearchSnapshot{}, false
	}

	results := make([]model.SearchResultUser, len(sess.results))
	copy(results, sess.results)

	return model.SearchSnapshot{
		Username:      username,
		Criteria:      sess.criteria,
		Results:       results,
		TotalResults:  sess.total,
		Page:          sess.page,
		HasMore:       sess.hasMore,
		MinMatchScore: sess.minMatchScore,
		SortBy:        sess.sortBy,
		SortOrder:     sess.sortOrder,
		ScrollOffset:  sess.scrollOffset,
		SavedAt:       now.UTC(),
	}, true
}

// Restore replaces the session with a persisted snapshot. The caller is
// responsible for having validated snapshot ownership and freshness.
func (s *Service) Restore(ctx context.Context, username string, snapshot model.SearchSnapshot) (PageResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || snapshot.Username != username {
		return PageResult{}, ErrValidation
	}

	excluded := s.loadExclusions(ctx, username)

	sess := s.sessionFor(username)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.generation++
	sess.inFlight = false
	sess.criteria = snapshot.Criteria
	sess.excluded = excluded
	sess.results = sess.results[:0]
	sess.merge(snapshot.Results)
	sess.total = snapshot.TotalResults
	sess.page = snapshot.Page
	sess.hasMore = snapshot.HasMore
	sess.minMatchScore = snapshot.MinMatchScore
	sess.sortBy = snapshot.SortBy
	sess.sortOrder = snapshot.SortOrder
	sess.scrollOffset = snapshot.ScrollOffset
	sess.resultsVersion++

	return s.viewLocked(sess), nil
}

// ExcludeNow removes a username from the accumulated results of a live
// session, so an exclusion takes effect without a refetch.
func (s *Service) ExcludeNow(username, excluded string) {
	sess, ok := s.lookup(username)
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.excluded == nil {
		sess.excluded = make(map[string]struct{})
	}
	sess.excluded[excluded] = struct{}{}

	kept := sess.results[:0]
	for _, user := range sess.results {
		if user.Username != excluded {
			kept = append(kept, user)
		}
	}
	if len(kept) != len(sess.results) {
		sess.results = kept
		sess.resultsVersion++
	}
}

func (s *Service) sessionFor(username string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[username]
	if !ok {
		sess = &session{reconciler: NewReconciler()}
		s.sessions[username] = sess
	}
	return sess
}

func (s *Service) lookup(username string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[username]
	return sess, ok
}

func (s *Service) loadExclusions(ctx context.Context, username string) map[string]struct{} {
	if s.exclusions == nil {
		return nil
	}
	targets, err := s.exclusions.Exclusions(ctx, username)
	if err != nil {
		s.logger.Warn("load exclusions", zap.String("username", username), zap.Error(err))
		return nil
	}
	excluded := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		excluded[target] = struct{}{}
	}
	return excluded
}

func (s *Service) viewLocked(sess *session) PageResult {
	users := sess.reconciler.View(sess.resultsVersion, sess.results, ReconcileParams{
		Criteria:      sess.criteria,
		MinMatchScore: sess.minMatchScore,
		SortBy:        sess.sortBy,
		SortOrder:     sess.sortOrder,
	})

	return PageResult{
		Users:   users,
		Total:   sess.total,
		Page:    sess.page,
		HasMore: sess.hasMore,
	}
}

// merge appends rows not already accumulated, dropping excluded
// profiles, and reports how many genuinely new rows arrived. Callers
// must hold the session lock.
func (sess *session) merge(incoming []model.SearchResultUser) int {
	seen := make(map[string]struct{}, len(sess.results))
	for _, user := range sess.results {
		seen[user.Username] = struct{}{}
	}

	appended := 0
	for _, user := range incoming {
		if user.Username == "" {
			continue
		}
		if _, ok := seen[user.Username]; ok {
			continue
		}
		if _, ok := sess.excluded[user.Username]; ok {
			continue
		}
		seen[user.Username] = struct{}{}
		sess.results = append(sess.results, user)
		appended++
	}
	return appended
}

// moreAvailable guards against pagination livelock: stop when the
// upstream keeps reporting more rows but a full page produced nothing
// new, which would otherwise loop forever on duplicate data.
func moreAvailable(accumulated, total, pageLen, pageSize, appended int) bool {
	if accumulated >= total {
		return false
	}
	if pageLen < pageSize {
		return false
	}
	return appended >= 1
}
