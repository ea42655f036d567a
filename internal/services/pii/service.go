package pii

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/rules"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("pii request not found")
	ErrForbidden  = errors.New("not allowed")
)

type Repository interface {
	CreateRequest(ctx context.Context, req model.PIIRequest) error
	SetRequestStatus(ctx context.Context, id, status string) error
	ListOutgoing(ctx context.Context, requester string) ([]model.PIIRequest, error)
	ListPendingForOwner(ctx context.Context, owner string) ([]model.PIIRequest, error)
	UpsertGrant(ctx context.Context, grant model.PIIGrant) error
	RevokeGrant(ctx context.Context, granter, grantedTo, accessType string) error
	ActiveAccessTypes(ctx context.Context, granter, grantedTo string) ([]string, error)
	ListReceived(ctx context.Context, grantedTo string) ([]model.ReceivedAccess, error)
}

// PhotoPresigner turns stored object keys into short-lived URLs. Photo
// URLs are only produced for viewers holding an images grant.
type PhotoPresigner interface {
	PresignedURL(ctx context.Context, objectKey string) (string, error)
}

type Service struct {
	repo      Repository
	presigner PhotoPresigner
	now       func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// AttachPresigner wires the optional photo URL signer. Without it,
// granted image access still hides the URLs.
func (s *Service) AttachPresigner(presigner PhotoPresigner) {
	s.presigner = presigner
}

func (s *Service) RequestAccess(ctx context.Context, requester, requested, accessType, message string) (model.PIIRequest, error) {
	requester = strings.TrimSpace(requester)
	requested = strings.TrimSpace(requested)
	if requester == "" || requested == "" || requester == requested {
		return model.PIIRequest{}, ErrValidation
	}
	if !model.ValidAccessType(accessType) {
		return model.PIIRequest{}, fmt.Errorf("%w: unknown access type %q", ErrValidation, accessType)
	}

	req := model.PIIRequest{
		ID:         uuid.NewString(),
		Requester:  requester,
		Requested:  requested,
		AccessType: accessType,
		Message:    strings.TrimSpace(message),
		Status:     model.PIIStatusPending,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return model.PIIRequest{}, fmt.Errorf("create access request: %w", err)
	}
	return req, nil
}

// Respond resolves a pending request. Approval writes the grant row;
// the request row itself never authorizes anything.
func (s *Service) Respond(ctx context.Context, owner string, req model.PIIRequest, approve bool) error {
	if strings.TrimSpace(owner) == "" || req.ID == "" {
		return ErrValidation
	}
	if req.Requested != owner {
		return ErrForbidden
	}

	status := model.PIIStatusRejected
	if approve {
		status = model.PIIStatusApproved
	}
	if err := s.repo.SetRequestStatus(ctx, req.ID, status); err != nil {
		return err
	}

	if !approve {
		return nil
	}

	grant := model.PIIGrant{
		ID:         uuid.NewString(),
		Granter:    owner,
		GrantedTo:  req.Requester,
		AccessType: req.AccessType,
		IsActive:   true,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.UpsertGrant(ctx, grant); err != nil {
		return fmt.Errorf("record grant: %w", err)
	}
	return nil
}

// Grant gives access directly, without a preceding request.
func (s *Service) Grant(ctx context.Context, granter, grantedTo, accessType string) error {
	granter = strings.TrimSpace(granter)
	grantedTo = strings.TrimSpace(grantedTo)
	if granter == "" || grantedTo == "" || granter == grantedTo {
		return ErrValidation
	}
	if !model.ValidAccessType(accessType) {
		return ErrValidation
	}

	grant := model.PIIGrant{
		ID:         uuid.NewString(),
		Granter:    granter,
		GrantedTo:  grantedTo,
		AccessType: accessType,
		IsActive:   true,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.UpsertGrant(ctx, grant); err != nil {
		return fmt.Errorf("record grant: %w", err)
	}
	return nil
}

func (s *Service) Revoke(ctx context.Context, granter, grantedTo, accessType string) error {
	if strings.TrimSpace(granter) == "" || strings.TrimSpace(grantedTo) == "" || !model.ValidAccessType(accessType) {
		return ErrValidation
	}
	return s.repo.RevokeGrant(ctx, granter, grantedTo, accessType)
}

func (s *Service) OutgoingRequests(ctx context.Context, requester string) ([]model.PIIRequest, error) {
	if strings.TrimSpace(requester) == "" {
		return nil, ErrValidation
	}
	return s.repo.ListOutgoing(ctx, requester)
}

func (s *Service) PendingRequests(ctx context.Context, owner string) ([]model.PIIRequest, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, ErrValidation
	}
	return s.repo.ListPendingForOwner(ctx, owner)
}

// Check reports which access types granter has given to viewer. Only
// active grant rows count.
func (s *Service) Check(ctx context.Context, granter, viewer string) ([]string, error) {
	granter = strings.TrimSpace(granter)
	viewer = strings.TrimSpace(viewer)
	if granter == "" || viewer == "" {
		return nil, ErrValidation
	}
	granted, err := s.repo.ActiveAccessTypes(ctx, granter, viewer)
	if err != nil {
		return nil, fmt.Errorf("load access types: %w", err)
	}
	return granted, nil
}

func (s *Service) ReceivedAccess(ctx context.Context, grantedTo string) ([]model.ReceivedAccess, error) {
	if strings.TrimSpace(grantedTo) == "" {
		return nil, ErrValidation
	}
	return s.repo.ListReceived(ctx, grantedTo)
}

// Sanitize applies the field gates to another user's profile before it
// leaves the gateway. The owner viewing their own profile passes
// through untouched.
func (s *Service) Sanitize(ctx context.Context, viewer string, profile model.ViewerProfile) (model.ViewerProfile, error) {
	if viewer == profile.Username {
		return profile, nil
	}

	granted, err := s.repo.ActiveAccessTypes(ctx, profile.Username, viewer)
	if err != nil {
		return model.ViewerProfile{}, fmt.Errorf("load access types: %w", err)
	}

	allowed := make(map[string]struct{}, len(granted))
	for _, accessType := range granted {
		allowed[accessType] = struct{}{}
	}

	if _, ok := allowed[model.AccessContactInfo]; !ok {
		profile.ContactEmail = rules.MaskEmail(profile.ContactEmail)
		profile.ContactNumber = rules.MaskPhone(profile.ContactNumber)
		profile.Location = rules.MaskLocation(profile.Location)
		profile.Workplace = rules.MaskWorkplace(profile.Workplace)
	}
	if _, ok := allowed[model.AccessLinkedinURL]; !ok {
		profile.LinkedinURL = rules.MaskLinkedinURL(profile.LinkedinURL)
	}
	if _, ok := allowed[model.AccessDateOfBirth]; !ok {
		profile.DOB = ""
	}
	if _, ok := allowed[model.AccessImages]; !ok {
		profile.Images = nil
	} else {
		profile.Images = s.presignImages(ctx, profile.Images)
	}

	return profile, nil
}

func (s *Service) presignImages(ctx context.Context, keys []string) []string {
	if s.presigner == nil || len(keys) == 0 {
		return nil
	}

	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		signed, err := s.presigner.PresignedURL(ctx, key)
		if err != nil {
			continue
		}
		urls = append(urls, signed)
	}
	return urls
}
