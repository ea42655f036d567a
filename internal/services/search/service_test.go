package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
	"github.com/rajsir217-oss/profiledata-gateway/internal/services/criteria"
	"github.com/rajsir217-oss/profiledata-gateway/internal/upstream"
)

type stubUpstream struct {
	mu      sync.Mutex
	pages   map[int]upstream.SearchPage
	queries []upstream.SearchQuery
	block   chan struct{}
	err     error
}

func (s *stubUpstream) Search(_ context.Context, query upstream.SearchQuery) (upstream.SearchPage, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	block := s.block
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if s.err != nil {
		return upstream.SearchPage{}, s.err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.pages[query.Page]
	if !ok {
		return upstream.SearchPage{Page: query.Page}, nil
	}
	return page, nil
}

type stubExclusions struct {
	targets []string
}

func (s stubExclusions) Exclusions(_ context.Context, _ string) ([]string, error) {
	return s.targets, nil
}

func newSearchService(up *stubUpstream) *Service {
	builder := criteria.NewBuilder(criteria.Config{})
	return NewService(Config{PageSize: 2}, builder, up, nil)
}

func user(username, gender string, score int) model.SearchResultUser {
	return model.SearchResultUser{Username: username, Gender: gender, MatchScore: &score}
}

func unscored(username, gender string) model.SearchResultUser {
	return model.SearchResultUser{Username: username, Gender: gender}
}

func usernames(users []model.SearchResultUser) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out
}

func TestStartSearchThenMergeDeduplicates(t *testing.T) {
	up := &stubUpstream{pages: map[int]upstream.SearchPage{
		1: {Users: []model.SearchResultUser{user("anita_r", "Female", 80), user("divya_m", "Female", 75)}, Total: 3},
		2: {Users: []model.SearchResultUser{user("divya_m", "Female", 75), user("kavya_n", "Female", 60)}, Total: 3},
	}}
	svc := newSearchService(up)
	ctx := context.Background()

	first, err := svc.StartSearch(ctx, "arjun_k", model.SearchCriteria{Gender: "Female"})
	if err != nil {
		t.Fatalf("start search: %v", err)
	}
	if len(first.Users) != 2 || !first.HasMore {
		t.Fatalf("unexpected first page: users=%d hasMore=%v", len(first.Users), first.HasMore)
	}

	second, err := svc.LoadMore(ctx, "arjun_k")
	if err != nil {
		t.Fatalf("load more: %v", err)
	}

	got := usernames(second.Users)
	want := []string{"anita_r", "divya_m", "kavya_n"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if second.HasMore {
		t.Fatalf("all rows accumulated, hasMore should be false")
	}
}

func TestFailedRestartKeepsPreviousResults(t *testing.T) {
	up := &stubUpstream{pages: map[int]upstream.SearchPage{
		1: {Users: []model.SearchResultUser{user("anita_r", "Female", 80), user("divya_m", "Female", 75)}, Total: 2},
	}}
	svc := newSearchService(up)
	ctx := context.Background()

	if _, err := svc.StartSearch(ctx, "arjun_k", model.SearchCriteria{Gender: "Female"}); err != nil {
		t.Fatalf("start search: %v", err)
	}

	up.err = errors.New("upstream down")
	if _, err := svc.StartSearch(ctx, "arjun_k", model.SearchCriteria{Gender: "Male"}); err == nil {
		t.Fatalf("expected error when the restarted fetch fails")
	}

	res, err := svc.Results("arjun_k")
	if err != nil {
		t.Fatalf("results after failed restart: %v", err)
	}
	got := usernames(res.Users)
	want := []string{"anita_r", "divya_m"}
	if len(got) != len(want) {
		t.Fatalf("expected %v after failed restart, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v after failed restart, got %v", want, got)
		}
	}
	if res.Total != 2 || res.Page != 1 {
		t.Fatalf("pagination state changed after failed restart: total=%d page=%d", res.Total, res.Page)
	}
}

func TestDuplicateOnlyPageStopsPagination(t *testing.T) {
	// Upstream claims 10 rows but page 2 repeats page 1 verbatim. Without
	// the guard the client would keep requesting pages forever.
	dupes := []model.SearchResultUser{user("anita_r", "Female", 80), user("divya_m", "Female", 75)}
	up := &stubUpstream{pages: map[int]upstream.SearchPage{
		1: {Users: dupes, Total: 10},
		2: {Users: dupes, Total: 10},
	}}
	svc := newSearchService(up)
	ctx := context.Background()

	if _, err := svc.StartSearch(ctx, "arjun_k", model.SearchCriteria{}); err != nil {
		t.Fatalf("start search: %v", err)
	}

	result, err := svc.LoadMore(ctx, "arjun_k")
	if err != nil {
		t.Fatalf("load more: %v", err)
	}
	if result.HasMore {
		t.Fatalf("duplicate-only full page should stop pagination")
	}
	if len(result.Users) != 2 {
		t.Fatalf("unexpected accumulated users: %v", usernames(result.Users))
	}
}

func TestMinMatchScoreFiltersView(t *testing.T) {
	up := &stubUpstream{pages: map[int]upstream.SearchPage{
		1: {Users: []model.SearchResultUser{
			user("a_50", "Female", 50),
			user("b_70", "Female", 70),
			user("c_90", "Female", 90),
			unscored("d_nil", "Female"),
		}, Total: 4},
	}}
	svc := newSearchService(up)
	ctx := context.Background()

	if _, err := svc.StartSearch(ctx, "arjun_k", model.SearchCriteria{}); err != nil {
		t.Fatalf("start search: %v", err)
	}

	result, err := svc.SetView("arjun_k", 60, "", "")
	if err != nil {
		t.Fatalf("set view: %v", err)
	}

	got := usernames(result.Users)
	if len(got) != 2 || got[0] != "b_70" || got[1] != "c_90" {
		t.Fatalf("min score 60 should keep b_70 and c_90, got %v", got)
	}
}

func TestGenderRevalidationDropsMismatches(t *testing.T) {
	up := &stubUpstream{pages: map[int]upstream.SearchPage{
		1: {Users: []model.SearchResultUser{
			user("anita_r", "Female", 80),
			user("rogue_m", "Male", 95),
		}, Total: 2},
	}}
	svc := newSearchService(up)

	result, err := svc.StartSearch(context.Background(), "arjun_k", model.SearchCriteria{Gender: "Female"})
	if err != nil {
		t.Fatalf("start search: %v", err)
	}

	got := usernames(result.Users)
	if len(got) != 1 || got[0] != "anita_r" {
		t.Fatalf("male row should be filtered from a female search, got %v", got)
	}
}

func TestProfileIDLookupBypassesFilters(t *testing.T) {
	up := &stubUpstream{pages: map[int]upstream.SearchPage{
		1: {Users: []model.SearchResultUser{user("rogue_m", "Male", 10)}, Total: 1},
	}}
	svc := newSearchService(up)

	if _, err := svc.StartSearch(context.Background(), "arjun_k", model.SearchCriteria{ProfileID: "rogue_m", Gender: "Female"}); err != nil {
		t.Fatalf("start search: %v", err)
	}

	result, err := svc.SetView("arjun_k", 90, "", "")
	if err != nil {
		t.Fatalf("set view: %v", err)
	}
	if len(result.Users) != 1 || result.Users[0].Username != "rogue_m" {
		t.Fatalf("direct lookup should bypass filters, got %v", usernames(result.Users))
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	up := &stubUpstream{pages: map[int]upstream.SearchPage{
		1: {Users: []model.SearchResultUser{user("anita_r", "Female", 80), user("divya_m", "Female", 75)}, Total: 2},
	}}
	svc := newSearchService(up)

	if _, err := svc.StartSearch(context.Background(), "arjun_k", model.SearchCriteria{}); err != nil {
		t.Fatalf("start search: %v", err)
	}

	first, err := svc.Results("arjun_k")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	second, err := svc.Results("arjun_k")
	if err != nil {
		t.Fatalf("results again: %v", err)
	}

	if len(first.Users) != len(second.Users) {
		t.Fatalf("view changed between identical reads")
	}
	for i := range first.Users {
		if first.Users[i].Username != second.Users[i].Username {
			t.Fatalf("view order changed between identical reads")
		}
	}
}

func TestSortByMatchScoreDefaultsDescending(t *testing.T) {
	up := &stubUpstream{pages: map[int]upstream.SearchPage{
		1: {Users: []model.SearchResultUser{
			user("low", "Female", 40),
			user("high", "Female", 95),
			user("mid", "Female", 70),
		}, Total: 3},
	}}
	svc := newSearchService(up)

	if _, err := svc.StartSearch(context.Background(), "arjun_k", model.SearchCriteria{}); err != nil {
		t.Fatalf("start search: %v", err)
	}

	result, err := svc.SetView("arjun_k", 0, SortByMatchScore, "")
	if err != nil {
		t.Fatalf("set view: %v", err)
	}

	got := usernames(result.Users)
	if got[0] != "high" || got[1] != "mid" || got[2] != "low" {
		t.Fatalf("expected score-descending order, got %v", got)
	}
}

func TestLoadPageOutOfOrder(t *testing.T) {
	up := &stubUpstream{pages: map[int]upstream.SearchPage{
		1: {Users: []model.SearchResultUser{user("anita_r", "Female", 80), user("divya_m", "Female", 70)}, Total: 6},
	}}
	svc := newSearchService(up)
	ctx := context.Background()

	if _, err := svc.LoadMore(ctx, "arjun_k"); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("load more without session should fail, got %v", err)
	}

	if _, err := svc.StartSearch(ctx, "arjun_k", model.SearchCriteria{}); err != nil {
		t.Fatalf("start search: %v", err)
	}

	if _, err := svc.LoadPage(ctx, "arjun_k", 4); !errors.Is(err, ErrPageOutOfOrder) {
		t.Fatalf("skipping pages should fail, got %v", err)
	}
}

func TestConcurrentLoadIsRejected(t *testing.T) {
	up := &stubUpstream{
		pages: map[int]upstream.SearchPage{
			1: {Users: []model.SearchResultUser{user("anita_r", "Female", 80), user("divya_m", "Female", 70)}, Total: 6},
			2: {Users: []model.SearchResultUser{user("kavya_n", "Female", 60), user("meera_p", "Female", 55)}, Total: 6},
		},
	}
	svc := newSearchService(up)
	ctx := context.Background()

	if _, err := svc.StartSearch(ctx, "arjun_k", model.SearchCriteria{}); err != nil {
		t.Fatalf("start search: %v", err)
	}

	block := make(chan struct{})
	up.mu.Lock()
	up.block = block
	up.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := svc.LoadPage(ctx, "arjun_k", 2)
		done <- err
	}()

	// Wait for the first request to reach the upstream stub.
	deadline := time.After(2 * time.Second)
	for {
		up.mu.Lock()
		reached := len(up.queries) >= 2
		up.mu.Unlock()
		if reached {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("first load never reached upstream")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := svc.LoadPage(ctx, "arjun_k", 2); !errors.Is(err, ErrPageInFlight) {
		t.Fatalf("second load during flight should fail, got %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first load: %v", err)
	}
}

func TestExclusionsFilteredAtMerge(t *testing.T) {
	up := &stubUpstream{pages: map[int]upstream.SearchPage{
		1: {Users: []model.SearchResultUser{user("anita_r", "Female", 80), user("blocked_b", "Female", 90)}, Total: 2},
	}}
	svc := newSearchService(up)
	svc.AttachExclusions(stubExclusions{targets: []string{"blocked_b"}})

	result, err := svc.StartSearch(context.Background(), "arjun_k", model.SearchCriteria{})
	if err != nil {
		t.Fatalf("start search: %v", err)
	}

	got := usernames(result.Users)
	if len(got) != 1 || got[0] != "anita_r" {
		t.Fatalf("excluded profile should never surface, got %v", got)
	}
}

func TestExcludeNowRemovesFromLiveSession(t *testing.T) {
	up := &stubUpstream{pages: map[int]upstream.SearchPage{
		1: {Users: []model.SearchResultUser{user("anita_r", "Female", 80), user("divya_m", "Female", 70)}, Total: 2},
	}}
	svc := newSearchService(up)
	ctx := context.Background()

	if _, err := svc.StartSearch(ctx, "arjun_k", model.SearchCriteria{}); err != nil {
		t.Fatalf("start search: %v", err)
	}

	svc.ExcludeNow("arjun_k", "divya_m")

	result, err := svc.Results("arjun_k")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	got := usernames(result.Users)
	if len(got) != 1 || got[0] != "anita_r" {
		t.Fatalf("excluded profile should drop from live results, got %v", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	up := &stubUpstream{pages: map[int]upstream.SearchPage{
		1: {Users: []model.SearchResultUser{user("anita_r", "Female", 80), user("divya_m", "Female", 70)}, Total: 4},
	}}
	svc := newSearchService(up)
	ctx := context.Background()

	if _, err := svc.StartSearch(ctx, "arjun_k", model.SearchCriteria{Gender: "Female"}); err != nil {
		t.Fatalf("start search: %v", err)
	}
	if _, err := svc.SetView("arjun_k", 75, SortByMatchScore, SortDesc); err != nil {
		t.Fatalf("set view: %v", err)
	}

	snapshot, ok := svc.Snapshot("arjun_k", time.Now())
	if !ok {
		t.Fatalf("snapshot should exist")
	}

	svc.Clear("arjun_k")

	restored, err := svc.Restore(ctx, "arjun_k", snapshot)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	got := usernames(restored.Users)
	if len(got) != 1 || got[0] != "anita_r" {
		t.Fatalf("restored view should keep min score filter, got %v", got)
	}
	if restored.Page != 1 || !restored.HasMore {
		t.Fatalf("restored paging state wrong: page=%d hasMore=%v", restored.Page, restored.HasMore)
	}
}

func TestRestoreRejectsForeignSnapshot(t *testing.T) {
	svc := newSearchService(&stubUpstream{})

	snapshot := model.SearchSnapshot{Username: "someone_else"}
	if _, err := svc.Restore(context.Background(), "arjun_k", snapshot); !errors.Is(err, ErrValidation) {
		t.Fatalf("foreign snapshot must be rejected, got %v", err)
	}
}
