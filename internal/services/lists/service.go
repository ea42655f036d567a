package lists

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
)

const MaxNotesLen = 500

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("list entry not found")
)

type Repository interface {
	Add(ctx context.Context, kind string, entry model.ListEntry) error
	Remove(ctx context.Context, kind, owner, target string) error
	List(ctx context.Context, kind, owner string) ([]model.ListEntry, error)
	Targets(ctx context.Context, kind, owner string) ([]string, error)
}

// LiveExcluder lets an exclusion take effect on the user's current
// search results without waiting for the next fetch.
type LiveExcluder interface {
	ExcludeNow(username, excluded string)
}

type Service struct {
	repo     Repository
	excluder LiveExcluder
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AttachLiveExcluder wires the optional live search session hook.
func (s *Service) AttachLiveExcluder(excluder LiveExcluder) {
	s.excluder = excluder
}

func (s *Service) Add(ctx context.Context, kind string, entry model.ListEntry) error {
	if !model.ValidListKind(kind) {
		return fmt.Errorf("%w: unknown list %q", ErrValidation, kind)
	}

	entry.Owner = strings.TrimSpace(entry.Owner)
	entry.Target = strings.TrimSpace(entry.Target)
	if entry.Owner == "" || entry.Target == "" || entry.Owner == entry.Target {
		return ErrValidation
	}
	if len(entry.Notes) > MaxNotesLen || len(entry.Reason) > MaxNotesLen {
		return ErrValidation
	}

	// Notes belong to the shortlist, reasons to exclusions.
	if kind != model.ListShortlist {
		entry.Notes = ""
	}
	if kind != model.ListExclusions {
		entry.Reason = ""
	}

	if err := s.repo.Add(ctx, kind, entry); err != nil {
		return fmt.Errorf("add to %s: %w", kind, err)
	}

	if kind == model.ListExclusions && s.excluder != nil {
		s.excluder.ExcludeNow(entry.Owner, entry.Target)
	}
	return nil
}

func (s *Service) Remove(ctx context.Context, kind, owner, target string) error {
	if !model.ValidListKind(kind) {
		return ErrValidation
	}
	if strings.TrimSpace(owner) == "" || strings.TrimSpace(target) == "" {
		return ErrValidation
	}
	return s.repo.Remove(ctx, kind, owner, target)
}

func (s *Service) List(ctx context.Context, kind, owner string) ([]model.ListEntry, error) {
	if !model.ValidListKind(kind) {
		return nil, ErrValidation
	}
	if strings.TrimSpace(owner) == "" {
		return nil, ErrValidation
	}
	return s.repo.List(ctx, kind, owner)
}

// Exclusions satisfies the search service's exclusion source.
func (s *Service) Exclusions(ctx context.Context, username string) ([]string, error) {
	return s.repo.Targets(ctx, model.ListExclusions, username)
}
