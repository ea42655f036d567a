package sessionstate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
	"github.com/rajsir217-oss/profiledata-gateway/internal/services/search"
)

type stubStore struct {
	mu       sync.Mutex
	snapshot *model.SearchSnapshot
	saves    int
	deletes  int
}

func (s *stubStore) Save(_ context.Context, snapshot model.SearchSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = &snapshot
	s.saves++
	return nil
}

func (s *stubStore) Load(_ context.Context, _ string) (model.SearchSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return model.SearchSnapshot{}, errors.New("not found")
	}
	return *s.snapshot, nil
}

func (s *stubStore) Delete(_ context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
	s.deletes++
	return nil
}

func (s *stubStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

type stubSessions struct {
	mu         sync.Mutex
	restoreRes search.PageResult
	restoreErr error
	snapshot   model.SearchSnapshot
	hasState   bool
	cleared    int
}

func (s *stubSessions) Restore(_ context.Context, _ string, _ model.SearchSnapshot) (search.PageResult, error) {
	return s.restoreRes, s.restoreErr
}

func (s *stubSessions) Snapshot(_ string, _ time.Time) (model.SearchSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, s.hasState
}

func (s *stubSessions) Clear(_ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
}

func newTestService(store *stubStore, sessions *stubSessions) *Service {
	return NewService(Config{
		SnapshotTTL:  30 * time.Minute,
		SaveDebounce: 20 * time.Millisecond,
	}, store, sessions, nil)
}

func resultUser(username string) model.SearchResultUser {
	return model.SearchResultUser{Username: username, Gender: "Female"}
}

func TestRestoreWithoutSnapshotRequiresFreshSearch(t *testing.T) {
	svc := newTestService(&stubStore{}, &stubSessions{})

	res, err := svc.Restore(context.Background(), "arjun_k")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if res.Phase != PhaseFreshSearchRequired {
		t.Fatalf("expected fresh search phase, got %s", res.Phase)
	}
}

func TestRestoreExpiredSnapshotPurges(t *testing.T) {
	store := &stubStore{}
	store.snapshot = &model.SearchSnapshot{
		Username: "arjun_k",
		Results:  []model.SearchResultUser{resultUser("anita_r")},
		SavedAt:  time.Now().Add(-2 * time.Hour),
	}
	svc := newTestService(store, &stubSessions{})

	res, err := svc.Restore(context.Background(), "arjun_k")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if res.Phase != PhaseFreshSearchRequired {
		t.Fatalf("expired snapshot should force fresh search, got %s", res.Phase)
	}
	if store.deletes == 0 {
		t.Fatalf("expired snapshot should be deleted")
	}
}

func TestRestoreForeignSnapshotPurges(t *testing.T) {
	store := &stubStore{}
	store.snapshot = &model.SearchSnapshot{
		Username: "someone_else",
		Results:  []model.SearchResultUser{resultUser("anita_r")},
		SavedAt:  time.Now(),
	}
	sessions := &stubSessions{restoreRes: search.PageResult{Users: []model.SearchResultUser{resultUser("anita_r")}}}
	svc := newTestService(store, sessions)

	res, err := svc.Restore(context.Background(), "arjun_k")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if res.Phase != PhaseFreshSearchRequired {
		t.Fatalf("foreign snapshot must never be applied, got %s", res.Phase)
	}
	if store.deletes == 0 {
		t.Fatalf("foreign snapshot should be deleted")
	}
	if len(res.Session.Users) != 0 {
		t.Fatalf("foreign snapshot data leaked into session")
	}
}

func TestRestoreSuccess(t *testing.T) {
	store := &stubStore{}
	store.snapshot = &model.SearchSnapshot{
		Username: "arjun_k",
		Results:  []model.SearchResultUser{resultUser("anita_r")},
		SavedAt:  time.Now(),
	}
	sessions := &stubSessions{restoreRes: search.PageResult{
		Users: []model.SearchResultUser{resultUser("anita_r")},
		Page:  1,
	}}
	svc := newTestService(store, sessions)

	res, err := svc.Restore(context.Background(), "arjun_k")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if res.Phase != PhaseRestored {
		t.Fatalf("expected restored phase, got %s", res.Phase)
	}
	if len(res.Session.Users) != 1 {
		t.Fatalf("restored session missing results")
	}
	if svc.Phase("arjun_k") != PhaseRestored {
		t.Fatalf("phase not recorded")
	}
}

func TestRestoreFullyFilteredSnapshotPurges(t *testing.T) {
	store := &stubStore{}
	store.snapshot = &model.SearchSnapshot{
		Username: "arjun_k",
		Results:  []model.SearchResultUser{resultUser("anita_r")},
		SavedAt:  time.Now(),
	}
	// Every saved row fails revalidation against the current rules.
	sessions := &stubSessions{restoreRes: search.PageResult{}}
	svc := newTestService(store, sessions)

	res, err := svc.Restore(context.Background(), "arjun_k")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if res.Phase != PhaseFreshSearchRequired {
		t.Fatalf("fully filtered snapshot should force fresh search, got %s", res.Phase)
	}
	if sessions.cleared == 0 {
		t.Fatalf("live session should be cleared")
	}
}

func TestScheduleSaveGatedUntilRestoreCompletes(t *testing.T) {
	store := &stubStore{}
	sessions := &stubSessions{
		snapshot: model.SearchSnapshot{Username: "arjun_k"},
		hasState: true,
	}
	svc := newTestService(store, sessions)

	svc.ScheduleSave("arjun_k")
	time.Sleep(80 * time.Millisecond)
	if store.saveCount() != 0 {
		t.Fatalf("save before restore completion must be dropped")
	}

	if _, err := svc.Restore(context.Background(), "arjun_k"); err != nil {
		t.Fatalf("restore: %v", err)
	}

	svc.ScheduleSave("arjun_k")
	time.Sleep(80 * time.Millisecond)
	if store.saveCount() != 1 {
		t.Fatalf("expected exactly one save after restore, got %d", store.saveCount())
	}
}

func TestScheduleSaveDebounces(t *testing.T) {
	store := &stubStore{}
	sessions := &stubSessions{
		snapshot: model.SearchSnapshot{Username: "arjun_k"},
		hasState: true,
	}
	svc := newTestService(store, sessions)
	svc.MarkSearchStarted("arjun_k")

	for i := 0; i < 5; i++ {
		svc.ScheduleSave("arjun_k")
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	if store.saveCount() != 1 {
		t.Fatalf("rapid schedules should collapse into one save, got %d", store.saveCount())
	}
}

func TestSaveNowBypassesDebounce(t *testing.T) {
	store := &stubStore{}
	sessions := &stubSessions{
		snapshot: model.SearchSnapshot{Username: "arjun_k"},
		hasState: true,
	}
	svc := newTestService(store, sessions)
	svc.MarkSearchStarted("arjun_k")

	svc.SaveNow(context.Background(), "arjun_k")
	if store.saveCount() != 1 {
		t.Fatalf("save now should write immediately, got %d saves", store.saveCount())
	}
}
