package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/auth"
	savedsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/savedsearch"
	"github.com/rajsir217-oss/profiledata-gateway/internal/transport/http/dto"
	httperrors "github.com/rajsir217-oss/profiledata-gateway/internal/transport/http/errors"
)

type SavedSearchHandler struct {
	service *savedsvc.Service
}

func NewSavedSearchHandler(service *savedsvc.Service) *SavedSearchHandler {
	return &SavedSearchHandler{service: service}
}

func (h *SavedSearchHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	searches, err := h.service.List(r.Context(), identity.Username)
	if err != nil {
		handleSavedSearchError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SavedSearchListResponse{SavedSearches: searches})
}

func (h *SavedSearchHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.SavedSearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	search, err := h.service.Create(r.Context(), identity.Username, savedSearchInput(req))
	if err != nil {
		handleSavedSearchError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.SavedSearchResponse{SavedSearch: search})
}

func (h *SavedSearchHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.SavedSearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	search, err := h.service.Update(r.Context(), identity.Username, chi.URLParam(r, "id"), savedSearchInput(req))
	if err != nil {
		handleSavedSearchError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SavedSearchResponse{SavedSearch: search})
}

func (h *SavedSearchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	if err := h.service.Delete(r.Context(), identity.Username, chi.URLParam(r, "id")); err != nil {
		handleSavedSearchError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *SavedSearchHandler) Default(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	search, err := h.service.Default(r.Context(), identity.Username)
	if err != nil {
		handleSavedSearchError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SavedSearchResponse{SavedSearch: search})
}

func savedSearchInput(req dto.SavedSearchRequest) savedsvc.SaveInput {
	return savedsvc.SaveInput{
		Name:          req.Name,
		Criteria:      req.Criteria,
		MinMatchScore: req.MinMatchScore,
		IsDefault:     req.IsDefault,
		Notifications: req.Notifications,
	}
}

func handleSavedSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, savedsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, savedsvc.ErrLimit):
		writeConflict(w, "SAVED_SEARCH_LIMIT", "saved search limit reached")
	case errors.Is(err, savedsvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "saved search not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
