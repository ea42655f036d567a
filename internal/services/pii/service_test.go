package pii

import (
	"context"
	"errors"
	"testing"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
)

type stubRepo struct {
	requests   []model.PIIRequest
	grants     []model.PIIGrant
	statusByID map[string]string
	access     map[string][]string // granter -> access types for the fixed viewer
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		statusByID: make(map[string]string),
		access:     make(map[string][]string),
	}
}

func (r *stubRepo) CreateRequest(_ context.Context, req model.PIIRequest) error {
	r.requests = append(r.requests, req)
	return nil
}

func (r *stubRepo) SetRequestStatus(_ context.Context, id, status string) error {
	r.statusByID[id] = status
	return nil
}

func (r *stubRepo) ListOutgoing(_ context.Context, _ string) ([]model.PIIRequest, error) {
	return r.requests, nil
}

func (r *stubRepo) ListPendingForOwner(_ context.Context, _ string) ([]model.PIIRequest, error) {
	return r.requests, nil
}

func (r *stubRepo) UpsertGrant(_ context.Context, grant model.PIIGrant) error {
	r.grants = append(r.grants, grant)
	return nil
}

func (r *stubRepo) RevokeGrant(_ context.Context, _, _, _ string) error {
	return nil
}

func (r *stubRepo) ActiveAccessTypes(_ context.Context, granter, _ string) ([]string, error) {
	return r.access[granter], nil
}

func (r *stubRepo) ListReceived(_ context.Context, _ string) ([]model.ReceivedAccess, error) {
	return nil, nil
}

type stubPresigner struct{}

func (stubPresigner) PresignedURL(_ context.Context, objectKey string) (string, error) {
	return "https://cdn.example.com/" + objectKey + "?sig=abc", nil
}

func fullProfile() model.ViewerProfile {
	return model.ViewerProfile{
		Username:      "anita_r",
		ContactEmail:  "anita@example.com",
		ContactNumber: "555-123-4567",
		DOB:           "1997-04-12",
		Location:      "Jersey City, Hudson County, NJ, USA",
		Workplace:     "Acme Corp, Newark",
		LinkedinURL:   "https://linkedin.com/in/anita",
		Images:        []string{"photos/anita/1.jpg"},
	}
}

func TestRequestAccessValidation(t *testing.T) {
	svc := NewService(newStubRepo())
	ctx := context.Background()

	if _, err := svc.RequestAccess(ctx, "arjun_k", "arjun_k", model.AccessImages, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("self-request should fail, got %v", err)
	}
	if _, err := svc.RequestAccess(ctx, "arjun_k", "anita_r", "passport_number", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown access type should fail, got %v", err)
	}
}

func TestRespondApprovalWritesGrant(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	ctx := context.Background()

	req, err := svc.RequestAccess(ctx, "arjun_k", "anita_r", model.AccessContactInfo, "please")
	if err != nil {
		t.Fatalf("request access: %v", err)
	}

	if err := svc.Respond(ctx, "anita_r", req, true); err != nil {
		t.Fatalf("respond: %v", err)
	}

	if repo.statusByID[req.ID] != model.PIIStatusApproved {
		t.Fatalf("request status not set to approved")
	}
	if len(repo.grants) != 1 {
		t.Fatalf("approval should write exactly one grant, got %d", len(repo.grants))
	}
	grant := repo.grants[0]
	if grant.Granter != "anita_r" || grant.GrantedTo != "arjun_k" || grant.AccessType != model.AccessContactInfo {
		t.Fatalf("unexpected grant: %+v", grant)
	}
}

func TestRespondRejectionWritesNoGrant(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	ctx := context.Background()

	req, err := svc.RequestAccess(ctx, "arjun_k", "anita_r", model.AccessImages, "")
	if err != nil {
		t.Fatalf("request access: %v", err)
	}

	if err := svc.Respond(ctx, "anita_r", req, false); err != nil {
		t.Fatalf("respond: %v", err)
	}

	if repo.statusByID[req.ID] != model.PIIStatusRejected {
		t.Fatalf("request status not set to rejected")
	}
	if len(repo.grants) != 0 {
		t.Fatalf("rejection must not write a grant")
	}
}

func TestRespondRejectsWrongOwner(t *testing.T) {
	svc := NewService(newStubRepo())

	req := model.PIIRequest{ID: "r1", Requester: "arjun_k", Requested: "anita_r"}
	if err := svc.Respond(context.Background(), "imposter", req, true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("only the requested owner may respond, got %v", err)
	}
}

func TestSanitizeMasksUngatedFields(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	profile, err := svc.Sanitize(context.Background(), "arjun_k", fullProfile())
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}

	if profile.ContactEmail != "a***@example.com" {
		t.Fatalf("email not masked: %s", profile.ContactEmail)
	}
	if profile.ContactNumber != "***-***-4567" {
		t.Fatalf("phone not masked: %s", profile.ContactNumber)
	}
	if profile.Location != "NJ, USA" {
		t.Fatalf("location not masked: %s", profile.Location)
	}
	if profile.Workplace != "Acme Corp" {
		t.Fatalf("workplace not masked: %s", profile.Workplace)
	}
	if profile.LinkedinURL != "[Private - Request Access]" {
		t.Fatalf("linkedin not masked: %s", profile.LinkedinURL)
	}
	if profile.DOB != "" {
		t.Fatalf("dob should be hidden: %s", profile.DOB)
	}
	if profile.Images != nil {
		t.Fatalf("images should be hidden: %v", profile.Images)
	}
}

func TestSanitizeHonorsGrants(t *testing.T) {
	repo := newStubRepo()
	repo.access["anita_r"] = []string{model.AccessContactInfo, model.AccessImages}
	svc := NewService(repo)
	svc.AttachPresigner(stubPresigner{})

	profile, err := svc.Sanitize(context.Background(), "arjun_k", fullProfile())
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}

	if profile.ContactEmail != "anita@example.com" {
		t.Fatalf("granted contact info should pass through: %s", profile.ContactEmail)
	}
	if len(profile.Images) != 1 || profile.Images[0] != "https://cdn.example.com/photos/anita/1.jpg?sig=abc" {
		t.Fatalf("granted images should be presigned: %v", profile.Images)
	}
	if profile.LinkedinURL != "[Private - Request Access]" {
		t.Fatalf("ungranted linkedin should stay masked: %s", profile.LinkedinURL)
	}
}

func TestSanitizeOwnerPassthrough(t *testing.T) {
	svc := NewService(newStubRepo())

	profile, err := svc.Sanitize(context.Background(), "anita_r", fullProfile())
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if profile.ContactEmail != "anita@example.com" || profile.DOB == "" {
		t.Fatalf("owner view must be unmasked: %+v", profile)
	}
}
