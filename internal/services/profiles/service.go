package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
)

type Fetcher interface {
	GetProfile(ctx context.Context, username, requester string) (model.ViewerProfile, error)
}

type Cache interface {
	Put(ctx context.Context, profile model.ViewerProfile) error
	Get(ctx context.Context, username string) (model.ViewerProfile, error)
	Invalidate(ctx context.Context, username string) error
}

type Service struct {
	fetcher Fetcher
	cache   Cache
	logger  *zap.Logger
}

func NewService(fetcher Fetcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{fetcher: fetcher, logger: logger}
}

// AttachCache wires the optional profile cache. Without it every call
// goes straight to the upstream API.
func (s *Service) AttachCache(cache Cache) {
	s.cache = cache
}

// GetOwn returns the viewer's own profile, serving from the cache when
// the entry is still fresh.
func (s *Service) GetOwn(ctx context.Context, username string) (model.ViewerProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.ViewerProfile{}, ErrValidation
	}

	if s.cache != nil {
		if profile, err := s.cache.Get(ctx, username); err == nil {
			return profile, nil
		}
	}

	profile, err := s.fetcher.GetProfile(ctx, username, username)
	if err != nil {
		return model.ViewerProfile{}, fmt.Errorf("fetch own profile: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, profile); err != nil {
			s.logger.Warn("cache viewer profile", zap.String("username", username), zap.Error(err))
		}
	}
	return profile, nil
}

// Get returns another user's profile on behalf of a requester. The
// result is not cached; PII gating happens in the pii service before
// this leaves the gateway.
func (s *Service) Get(ctx context.Context, username, requester string) (model.ViewerProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.ViewerProfile{}, ErrValidation
	}

	profile, err := s.fetcher.GetProfile(ctx, username, requester)
	if err != nil {
		return model.ViewerProfile{}, err
	}
	return profile, nil
}

// Invalidate drops the cached copy after a profile update.
func (s *Service) Invalidate(ctx context.Context, username string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, username); err != nil {
		s.logger.Warn("invalidate viewer profile cache", zap.String("username", username), zap.Error(err))
	}
}
