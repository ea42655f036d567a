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

const profileCachePrefix = "viewerProfile:"

var ErrProfileNotCached = errors.New("viewer profile not cached")

// ProfileCacheRepo keeps the logged-in user's own profile close by so
// criteria derivation does not hit the upstream API on every search.
type ProfileCacheRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewProfileCacheRepo(client *goredis.Client, ttl time.Duration) *ProfileCacheRepo {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ProfileCacheRepo{client: client, ttl: ttl}
}

func (r *ProfileCacheRepo) Put(ctx context.Context, profile model.ViewerProfile) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if profile.Username == "" {
		return fmt.Errorf("profile username is required")
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal viewer profile: %w", err)
	}

	if err := r.client.Set(ctx, profileCacheKey(profile.Username), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache viewer profile: %w", err)
	}
	return nil
}

func (r *ProfileCacheRepo) Get(ctx context.Context, username string) (model.ViewerProfile, error) {
	if r.client == nil {
		return model.ViewerProfile{}, fmt.Errorf("redis client is nil")
	}

	payload, err := r.client.Get(ctx, profileCacheKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return model.ViewerProfile{}, ErrProfileNotCached
		}
		return model.ViewerProfile{}, fmt.Errorf("load cached viewer profile: %w", err)
	}

	var profile model.ViewerProfile
	if err := json.Unmarshal(payload, &profile); err != nil {
		return model.ViewerProfile{}, ErrProfileNotCached
	}
	return profile, nil
}

func (r *ProfileCacheRepo) Invalidate(ctx context.Context, username string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, profileCacheKey(username)).Err(); err != nil {
		return fmt.Errorf("invalidate cached viewer profile: %w", err)
	}
	return nil
}

func profileCacheKey(username string) string {
	return profileCachePrefix + username
}
