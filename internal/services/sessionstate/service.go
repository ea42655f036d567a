package sessionstate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
	"github.com/rajsir217-oss/profiledata-gateway/internal/services/search"
)

var ErrValidation = errors.New("validation error")

// Phase tracks where a user's session restoration stands. Saves are
// refused until restoration has finished, so a half-restored session
// can never overwrite a good snapshot.
type Phase string

const (
	PhaseUninitialized       Phase = "uninitialized"
	PhaseRestoring           Phase = "restoring"
	PhaseRestored            Phase = "restored"
	PhaseFreshSearchRequired Phase = "fresh_search_required"
)

type SnapshotStore interface {
	Save(ctx context.Context, snapshot model.SearchSnapshot) error
	Load(ctx context.Context, username string) (model.SearchSnapshot, error)
	Delete(ctx context.Context, username string) error
}

type SearchSessions interface {
	Restore(ctx context.Context, username string, snapshot model.SearchSnapshot) (search.PageResult, error)
	Snapshot(username string, now time.Time) (model.SearchSnapshot, bool)
	Clear(username string)
}

type Config struct {
	SnapshotTTL  time.Duration
	SaveDebounce time.Duration
	SaveTimeout  time.Duration
}

type userState struct {
	phase Phase
	timer *time.Timer
}

type RestoreResult struct {
	Phase   Phase
	Session search.PageResult
}

type Service struct {
	cfg    Config
	store  SnapshotStore
	search SearchSessions
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	states map[string]*userState
}

func NewService(cfg Config, store SnapshotStore, searchSessions SearchSessions, logger *zap.Logger) *Service {
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = 30 * time.Minute
	}
	if cfg.SaveDebounce <= 0 {
		cfg.SaveDebounce = 2 * time.Second
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		cfg:    cfg,
		store:  store,
		search: searchSessions,
		logger: logger,
		now:    time.Now,
		states: make(map[string]*userState),
	}
}

// Restore loads the persisted snapshot for a user and rebuilds their
// search session from it. Anything suspect about the snapshot, wrong
// owner, expired, or results that no longer survive revalidation, purges
// it and asks for a fresh search instead.
func (s *Service) Restore(ctx context.Context, username string) (RestoreResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return RestoreResult{}, ErrValidation
	}

	s.setPhase(username, PhaseRestoring)

	snapshot, err := s.store.Load(ctx, username)
	if err != nil {
		return s.freshSearch(ctx, username, "no usable snapshot"), nil
	}

	if snapshot.Username != username {
		return s.freshSearch(ctx, username, "snapshot owner mismatch"), nil
	}
	if s.now().Sub(snapshot.SavedAt) > s.cfg.SnapshotTTL {
		return s.freshSearch(ctx, username, "snapshot expired"), nil
	}

	result, err := s.search.Restore(ctx, username, snapshot)
	if err != nil {
		return s.freshSearch(ctx, username, "snapshot rejected"), nil
	}

	// A snapshot whose rows all fail revalidation is stale data from a
	// previous criteria shape. Showing an empty list the user never
	// asked for would be worse than starting over.
	if len(result.Users) == 0 && len(snapshot.Results) > 0 {
		s.search.Clear(username)
		return s.freshSearch(ctx, username, "restored results all filtered"), nil
	}

	s.setPhase(username, PhaseRestored)
	return RestoreResult{Phase: PhaseRestored, Session: result}, nil
}

// ScheduleSave requests a debounced snapshot write. Calls made before
// restoration finishes are dropped. Rapid successive calls collapse
// into a single write.
func (s *Service) ScheduleSave(username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[username]
	if !ok || (state.phase != PhaseRestored && state.phase != PhaseFreshSearchRequired) {
		return
	}

	if state.timer != nil {
		state.timer.Stop()
	}
	state.timer = time.AfterFunc(s.cfg.SaveDebounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SaveTimeout)
		defer cancel()
		s.saveNow(ctx, username)
	})
}

// SaveNow writes the snapshot immediately, bypassing the debounce. Used
// on logout and shutdown.
func (s *Service) SaveNow(ctx context.Context, username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		return
	}

	s.mu.Lock()
	state, ok := s.states[username]
	if !ok || (state.phase != PhaseRestored && state.phase != PhaseFreshSearchRequired) {
		s.mu.Unlock()
		return
	}
	if state.timer != nil {
		state.timer.Stop()
		state.timer = nil
	}
	s.mu.Unlock()

	s.saveNow(ctx, username)
}

// MarkSearchStarted moves a user straight to the restored phase. A user
// who runs a fresh search has implicitly finished restoration.
func (s *Service) MarkSearchStarted(username string) {
	s.setPhase(username, PhaseRestored)
}

// Purge drops both the live session and the persisted snapshot.
func (s *Service) Purge(ctx context.Context, username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		return
	}

	s.search.Clear(username)
	if err := s.store.Delete(ctx, username); err != nil {
		s.logger.Warn("delete search snapshot", zap.String("username", username), zap.Error(err))
	}

	s.mu.Lock()
	if state, ok := s.states[username]; ok {
		if state.timer != nil {
			state.timer.Stop()
		}
		delete(s.states, username)
	}
	s.mu.Unlock()
}

func (s *Service) Phase(username string) Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states[username]; ok {
		return state.phase
	}
	return PhaseUninitialized
}

func (s *Service) saveNow(ctx context.Context, username string) {
	snapshot, ok := s.search.Snapshot(username, s.now())
	if !ok {
		return
	}
	if err := s.store.Save(ctx, snapshot); err != nil {
		s.logger.Warn("save search snapshot", zap.String("username", username), zap.Error(err))
	}
}

func (s *Service) freshSearch(ctx context.Context, username, reason string) RestoreResult {
	if err := s.store.Delete(ctx, username); err != nil {
		s.logger.Warn("purge search snapshot", zap.String("username", username), zap.Error(err))
	}
	s.logger.Debug("fresh search required", zap.String("username", username), zap.String("reason", reason))
	s.setPhase(username, PhaseFreshSearchRequired)
	return RestoreResult{Phase: PhaseFreshSearchRequired}
}

func (s *Service) setPhase(username string, phase Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[username]
	if !ok {
		state = &userState{}
		s.states[username] = state
	}
	state.phase = phase
}
