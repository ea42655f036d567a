package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
	"github.com/rajsir217-oss/profiledata-gateway/internal/services/criteria"
	"github.com/rajsir217-oss/profiledata-gateway/internal/upstream"
)

type stubSource struct {
	searches []model.SavedSearch
}

func (s stubSource) ListNotifiable(_ context.Context) ([]model.SavedSearch, error) {
	return s.searches, nil
}

type stubSearcher struct {
	page    upstream.SearchPage
	queries []upstream.SearchQuery
}

func (s *stubSearcher) Search(_ context.Context, query upstream.SearchQuery) (upstream.SearchPage, error) {
	s.queries = append(s.queries, query)
	return s.page, nil
}

type stubPublisher struct {
	events []MatchEvent
	keys   []string
}

func (p *stubPublisher) Publish(_ context.Context, routingKey string, event any) error {
	p.keys = append(p.keys, routingKey)
	p.events = append(p.events, event.(MatchEvent))
	return nil
}

func score(v int) *int { return &v }

func TestRunPublishesMatches(t *testing.T) {
	source := stubSource{searches: []model.SavedSearch{{
		ID:            "ss-1",
		Username:      "priya_s",
		Name:          "NYC engineers",
		Criteria:      model.SearchCriteria{Gender: "Male"},
		MinMatchScore: 60,
		Notifications: model.SavedSearchNotifications{Enabled: true, Channels: []string{"email"}},
	}}}
	searcher := &stubSearcher{page: upstream.SearchPage{
		Users: []model.SearchResultUser{
			{Username: "arjun_k", Gender: "Male", MatchScore: score(80)},
			{Username: "low_score", Gender: "Male", MatchScore: score(30)},
			{Username: "wrong_gender", Gender: "Female", MatchScore: score(90)},
		},
		Total: 3,
	}}
	publisher := &stubPublisher{}

	job := New(source, searcher, criteria.NewBuilder(criteria.Config{}), publisher, 6*time.Hour, nil)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected one event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if len(event.Matches) != 1 || event.Matches[0] != "arjun_k" {
		t.Fatalf("expected only arjun_k to match, got %v", event.Matches)
	}
	if event.SavedSearchID != "ss-1" || event.Username != "priya_s" {
		t.Fatalf("event identity wrong: %+v", event)
	}
	if publisher.keys[0] != "saved_search.matched" {
		t.Fatalf("unexpected routing key: %s", publisher.keys[0])
	}
}

func TestRunAppliesLookbackWindow(t *testing.T) {
	source := stubSource{searches: []model.SavedSearch{{
		ID:       "ss-1",
		Username: "priya_s",
		Criteria: model.SearchCriteria{Gender: "Male"},
	}}}
	searcher := &stubSearcher{}

	job := New(source, searcher, criteria.NewBuilder(criteria.Config{}), &stubPublisher{}, 6*time.Hour, nil)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(searcher.queries) != 1 {
		t.Fatalf("expected one upstream query, got %d", len(searcher.queries))
	}
	if searcher.queries[0].DaysBack != 1 {
		t.Fatalf("6h lookback should round up to 1 day, got %d", searcher.queries[0].DaysBack)
	}
}

func TestRunSkipsWhenNothingMatches(t *testing.T) {
	source := stubSource{searches: []model.SavedSearch{{
		ID:            "ss-1",
		Username:      "priya_s",
		Criteria:      model.SearchCriteria{Gender: "Male"},
		MinMatchScore: 95,
	}}}
	searcher := &stubSearcher{page: upstream.SearchPage{
		Users: []model.SearchResultUser{{Username: "arjun_k", Gender: "Male", MatchScore: score(40)}},
		Total: 1,
	}}
	publisher := &stubPublisher{}

	job := New(source, searcher, criteria.NewBuilder(criteria.Config{}), publisher, 24*time.Hour, nil)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("nothing should be published, got %d events", len(publisher.events))
	}
}
