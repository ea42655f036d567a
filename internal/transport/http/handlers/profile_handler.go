package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/auth"
	criteriasvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/criteria"
	piisvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/pii"
	profilesvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/profiles"
	"github.com/rajsir217-oss/profiledata-gateway/internal/transport/http/dto"
	httperrors "github.com/rajsir217-oss/profiledata-gateway/internal/transport/http/errors"
	"github.com/rajsir217-oss/profiledata-gateway/internal/upstream"
)

type ProfileHandler struct {
	profiles *profilesvc.Service
	pii      *piisvc.Service
	builder  *criteriasvc.Builder
}

func NewProfileHandler(profiles *profilesvc.Service, pii *piisvc.Service, builder *criteriasvc.Builder) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, pii: pii, builder: builder}
}

// GetOwn returns the caller's own profile, ungated.
func (h *ProfileHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	profile, err := h.profiles.GetOwn(r.Context(), identity.Username)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ProfileResponse{Profile: profile})
}

// Get returns another user's profile with the PII gates applied.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	profile, err := h.profiles.Get(r.Context(), chi.URLParam(r, "username"), identity.Username)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	sanitized, err := h.pii.Sanitize(r.Context(), identity.Username, profile)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ProfileResponse{Profile: sanitized})
}

// GetUnmasked returns another user's profile with no field gates.
// Reserved for moderation; the route is role-guarded.
func (h *ProfileHandler) GetUnmasked(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	profile, err := h.profiles.Get(r.Context(), chi.URLParam(r, "username"), identity.Username)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ProfileResponse{Profile: profile})
}

// DefaultCriteria derives the search defaults from the caller's own
// profile and partner preferences.
func (h *ProfileHandler) DefaultCriteria(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	profile, err := h.profiles.GetOwn(r.Context(), identity.Username)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DefaultCriteriaResponse{
		Criteria: h.builder.BuildDefault(profile),
	})
}

func handleProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profilesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "profile request validation failed")
	case errors.Is(err, profilesvc.ErrNotFound), errors.Is(err, upstream.ErrProfileNotFound):
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
	case errors.Is(err, upstream.ErrUnauthorized):
		writeUnauthorized(w, "UNAUTHORIZED", "upstream rejected the request")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
