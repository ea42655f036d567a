package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
)

const snapshotPrefix = "searchPageState:"

var ErrSnapshotNotFound = errors.New("search snapshot not found")

// SnapshotRepo persists per-user search page state so a user can resume
// where they left off after a reconnect. Entries expire on their own;
// a stale snapshot is the same as no snapshot.
type SnapshotRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewSnapshotRepo(client *goredis.Client, ttl time.Duration) *SnapshotRepo {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SnapshotRepo{client: client, ttl: ttl}
}

func (r *SnapshotRepo) Save(ctx context.Context, snapshot model.SearchSnapshot) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if snapshot.Username == "" {
		return fmt.Errorf("snapshot username is required")
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal search snapshot: %w", err)
	}

	if err := r.client.Set(ctx, snapshotKey(snapshot.Username), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("save search snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepo) Load(ctx context.Context, username string) (model.SearchSnapshot, error) {
	if r.client == nil {
		return model.SearchSnapshot{}, fmt.Errorf("redis client is nil")
	}

	payload, err := r.client.Get(ctx, snapshotKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return model.SearchSnapshot{}, ErrSnapshotNotFound
		}
		return model.SearchSnapshot{}, fmt.Errorf("load search snapshot: %w", err)
	}

	var snapshot model.SearchSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		// A corrupt snapshot must never block a fresh search.
		return model.SearchSnapshot{}, ErrSnapshotNotFound
	}
	return snapshot, nil
}

func (r *SnapshotRepo) Delete(ctx context.Context, username string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, snapshotKey(username)).Err(); err != nil {
		return fmt.Errorf("delete search snapshot: %w", err)
	}
	return nil
}

func snapshotKey(username string) string {
	return snapshotPrefix + username
}
