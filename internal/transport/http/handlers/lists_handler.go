package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
	authsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/auth"
	listsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/lists"
	"github.com/rajsir217-oss/profiledata-gateway/internal/transport/http/dto"
	httperrors "github.com/rajsir217-oss/profiledata-gateway/internal/transport/http/errors"
)

// ListsHandler serves the favorites, shortlist and exclusions lists.
// The list kind comes from the URL, so all three share one handler.
type ListsHandler struct {
	service *listsvc.Service
}

func NewListsHandler(service *listsvc.Service) *ListsHandler {
	return &ListsHandler{service: service}
}

func (h *ListsHandler) Add(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.ListAddRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	entry := model.ListEntry{
		Owner:  identity.Username,
		Target: req.Username,
		Notes:  req.Notes,
		Reason: req.Reason,
	}
	if err := h.service.Add(r.Context(), chi.URLParam(r, "kind"), entry); err != nil {
		handleListError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.OKResponse{OK: true})
}

func (h *ListsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	kind := chi.URLParam(r, "kind")
	target := chi.URLParam(r, "username")
	if err := h.service.Remove(r.Context(), kind, identity.Username, target); err != nil {
		handleListError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *ListsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	entries, err := h.service.List(r.Context(), chi.URLParam(r, "kind"), identity.Username)
	if err != nil {
		handleListError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ListResponse{Entries: entries})
}

func handleListError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, listsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, listsvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "list entry not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
