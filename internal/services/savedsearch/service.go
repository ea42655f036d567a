package savedsearch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
)

const (
	MaxPerUser = 20
	MaxNameLen = 60
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("saved search not found")
	ErrLimit      = errors.New("saved search limit reached")
)

type Repository interface {
	Create(ctx context.Context, search model.SavedSearch) error
	Update(ctx context.Context, search model.SavedSearch) error
	Delete(ctx context.Context, username, id string) error
	ListByUser(ctx context.Context, username string) ([]model.SavedSearch, error)
	GetDefault(ctx context.Context, username string) (model.SavedSearch, error)
}

// CriteriaNormalizer validates criteria before they are persisted, so a
// saved search can always be executed later without revalidation.
type CriteriaNormalizer interface {
	Normalize(criteria model.SearchCriteria) (model.SearchCriteria, error)
}

type Service struct {
	repo       Repository
	normalizer CriteriaNormalizer
	now        func() time.Time
}

func NewService(repo Repository, normalizer CriteriaNormalizer) *Service {
	return &Service{
		repo:       repo,
		normalizer: normalizer,
		now:        time.Now,
	}
}

type SaveInput struct {
	Name          string
	Criteria      model.SearchCriteria
	MinMatchScore int
	IsDefault     bool
	Notifications model.SavedSearchNotifications
}

func (s *Service) Create(ctx context.Context, username string, input SaveInput) (model.SavedSearch, error) {
	username = strings.TrimSpace(username)
	search, err := s.validate(username, input)
	if err != nil {
		return model.SavedSearch{}, err
	}

	existing, err := s.repo.ListByUser(ctx, username)
	if err != nil {
		return model.SavedSearch{}, fmt.Errorf("list saved searches: %w", err)
	}
	if len(existing) >= MaxPerUser {
		return model.SavedSearch{}, ErrLimit
	}
	for _, other := range existing {
		if strings.EqualFold(other.Name, search.Name) {
			return model.SavedSearch{}, fmt.Errorf("%w: name already in use", ErrValidation)
		}
	}

	search.ID = uuid.NewString()
	search.CreatedAt = s.now().UTC()
	search.UpdatedAt = search.CreatedAt

	if err := s.repo.Create(ctx, search); err != nil {
		return model.SavedSearch{}, fmt.Errorf("create saved search: %w", err)
	}
	return search, nil
}

func (s *Service) Update(ctx context.Context, username, id string, input SaveInput) (model.SavedSearch, error) {
	username = strings.TrimSpace(username)
	if strings.TrimSpace(id) == "" {
		return model.SavedSearch{}, ErrValidation
	}

	search, err := s.validate(username, input)
	if err != nil {
		return model.SavedSearch{}, err
	}
	search.ID = id
	search.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, search); err != nil {
		return model.SavedSearch{}, err
	}
	return search, nil
}

func (s *Service) Delete(ctx context.Context, username, id string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(id) == "" {
		return ErrValidation
	}
	return s.repo.Delete(ctx, username, id)
}

func (s *Service) List(ctx context.Context, username string) ([]model.SavedSearch, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrValidation
	}
	return s.repo.ListByUser(ctx, username)
}

// Default returns the user's default saved search, if any.
func (s *Service) Default(ctx context.Context, username string) (model.SavedSearch, error) {
	if strings.TrimSpace(username) == "" {
		return model.SavedSearch{}, ErrValidation
	}
	return s.repo.GetDefault(ctx, username)
}

func (s *Service) validate(username string, input SaveInput) (model.SavedSearch, error) {
	if username == "" {
		return model.SavedSearch{}, ErrValidation
	}

	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > MaxNameLen {
		return model.SavedSearch{}, fmt.Errorf("%w: name must be 1-%d characters", ErrValidation, MaxNameLen)
	}
	if input.MinMatchScore < 0 || input.MinMatchScore > 100 {
		return model.SavedSearch{}, fmt.Errorf("%w: min match score out of range", ErrValidation)
	}

	criteria, err := s.normalizer.Normalize(input.Criteria)
	if err != nil {
		return model.SavedSearch{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	return model.SavedSearch{
		Username:      username,
		Name:          name,
		Criteria:      criteria,
		MinMatchScore: input.MinMatchScore,
		IsDefault:     input.IsDefault,
		Notifications: input.Notifications,
	}, nil
}
