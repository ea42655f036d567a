package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/auth"
	piisvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/pii"
	"github.com/rajsir217-oss/profiledata-gateway/internal/transport/http/dto"
	httperrors "github.com/rajsir217-oss/profiledata-gateway/internal/transport/http/errors"
)

type PIIHandler struct {
	service *piisvc.Service
}

func NewPIIHandler(service *piisvc.Service) *PIIHandler {
	return &PIIHandler{service: service}
}

// Request asks another user for access to one gated field group.
func (h *PIIHandler) Request(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.PIIRequestCreate
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	created, err := h.service.RequestAccess(r.Context(), identity.Username, req.Username, req.AccessType, req.Message)
	if err != nil {
		handlePIIError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.PIIRequestResponse{Request: created})
}

// Respond approves or rejects one of the caller's pending incoming
// requests. The request id comes from the URL.
func (h *PIIHandler) Respond(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.PIIRespondRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	pending, err := h.service.PendingRequests(r.Context(), identity.Username)
	if err != nil {
		handlePIIError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	for _, candidate := range pending {
		if candidate.ID != id {
			continue
		}
		if err := h.service.Respond(r.Context(), identity.Username, candidate, req.Approve); err != nil {
			handlePIIError(w, err)
			return
		}
		httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
		return
	}

	writeNotFound(w, "NOT_FOUND", "pending access request not found")
}

// Grant gives another user access without a preceding request.
func (h *PIIHandler) Grant(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.PIIGrantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.service.Grant(r.Context(), identity.Username, req.Username, req.AccessType); err != nil {
		handlePIIError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *PIIHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.PIIGrantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.service.Revoke(r.Context(), identity.Username, req.Username, req.AccessType); err != nil {
		handlePIIError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

// Outgoing lists requests the caller has sent to other users.
func (h *PIIHandler) Outgoing(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	requests, err := h.service.OutgoingRequests(r.Context(), identity.Username)
	if err != nil {
		handlePIIError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PIIRequestListResponse{Requests: requests})
}

// Pending lists incoming requests awaiting the caller's decision.
func (h *PIIHandler) Pending(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	requests, err := h.service.PendingRequests(r.Context(), identity.Username)
	if err != nil {
		handlePIIError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PIIRequestListResponse{Requests: requests})
}

// Check reports which access types the named user has granted the
// caller. Used by the client to decide whether to offer a request
// button or show the field.
func (h *PIIHandler) Check(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	granted, err := h.service.Check(r.Context(), r.URL.Query().Get("username"), identity.Username)
	if err != nil {
		handlePIIError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PIICheckResponse{AccessTypes: granted})
}

// Received lists the access other users have granted to the caller.
func (h *PIIHandler) Received(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	received, err := h.service.ReceivedAccess(r.Context(), identity.Username)
	if err != nil {
		handlePIIError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PIIReceivedResponse{Received: received})
}

func handlePIIError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, piisvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, piisvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "not allowed to respond to this request")
	case errors.Is(err, piisvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "pii request not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
