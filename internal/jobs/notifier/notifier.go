package notifier

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
	"github.com/rajsir217-oss/profiledata-gateway/internal/services/criteria"
	searchsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/search"
	"github.com/rajsir217-oss/profiledata-gateway/internal/upstream"
)

const (
	matchRoutingKey = "saved_search.matched"
	matchPageSize   = 50
)

type SavedSearchSource interface {
	ListNotifiable(ctx context.Context) ([]model.SavedSearch, error)
}

type Searcher interface {
	Search(ctx context.Context, query upstream.SearchQuery) (upstream.SearchPage, error)
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// MatchEvent announces fresh profiles matching a user's saved search.
// Downstream consumers fan it out to the configured channels.
type MatchEvent struct {
	Username        string   `json:"username"`
	SavedSearchID   string   `json:"savedSearchId"`
	SavedSearchName string   `json:"savedSearchName"`
	Matches         []string `json:"matches"`
	Channels        []string `json:"channels"`
	OccurredAt      string   `json:"occurredAt"`
}

// Job periodically re-runs every notification-enabled saved search
// against new profiles and publishes the matches.
type Job struct {
	searches  SavedSearchSource
	searcher  Searcher
	builder   *criteria.Builder
	publisher Publisher
	lookback  time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func New(
	searches SavedSearchSource,
	searcher Searcher,
	builder *criteria.Builder,
	publisher Publisher,
	lookback time.Duration,
	logger *zap.Logger,
) *Job {
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		searches:  searches,
		searcher:  searcher,
		builder:   builder,
		publisher: publisher,
		lookback:  lookback,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	searches, err := j.searches.ListNotifiable(ctx)
	if err != nil {
		return fmt.Errorf("list notifiable saved searches: %w", err)
	}

	published := 0
	for _, search := range searches {
		if err := ctx.Err(); err != nil {
			return err
		}
		matched, err := j.runOne(ctx, search)
		if err != nil {
			j.logger.Warn("saved search notification failed",
				zap.String("username", search.Username),
				zap.String("saved_search_id", search.ID),
				zap.Error(err))
			continue
		}
		if matched {
			published++
		}
	}

	if published > 0 {
		j.logger.Info("saved search notifications published", zap.Int("count", published))
	}
	return nil
}

func (j *Job) runOne(ctx context.Context, search model.SavedSearch) (bool, error) {
	crit := search.Criteria
	crit.DaysBack = lookbackDays(j.lookback)

	page, err := j.searcher.Search(ctx, j.builder.UpstreamQuery(crit, 1, matchPageSize, search.Username))
	if err != nil {
		return false, fmt.Errorf("run saved search: %w", err)
	}

	matches := searchsvc.Reconcile(page.Users, searchsvc.ReconcileParams{
		Criteria:      search.Criteria,
		MinMatchScore: search.MinMatchScore,
	})
	if len(matches) == 0 {
		return false, nil
	}

	usernames := make([]string, 0, len(matches))
	for _, user := range matches {
		usernames = append(usernames, user.Username)
	}

	event := MatchEvent{
		Username:        search.Username,
		SavedSearchID:   search.ID,
		SavedSearchName: search.Name,
		Matches:         usernames,
		Channels:        search.Notifications.Channels,
		OccurredAt:      j.now().UTC().Format(time.RFC3339),
	}
	if err := j.publisher.Publish(ctx, matchRoutingKey, event); err != nil {
		return false, fmt.Errorf("publish match event: %w", err)
	}
	return true, nil
}

// lookbackDays converts the run interval into the upstream daysBack
// filter, rounding up so no window is ever skipped.
func lookbackDays(lookback time.Duration) int {
	days := int((lookback + 24*time.Hour - 1) / (24 * time.Hour))
	if days < 1 {
		days = 1
	}
	return days
}
