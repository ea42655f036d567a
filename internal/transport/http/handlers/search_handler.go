package handlers

import (
	"errors"
	"net/http"
	"strconv"

	authsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/auth"
	searchsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/search"
	sessionsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/sessionstate"
	"github.com/rajsir217-oss/profiledata-gateway/internal/transport/http/dto"
	httperrors "github.com/rajsir217-oss/profiledata-gateway/internal/transport/http/errors"
)

type SearchHandler struct {
	search   *searchsvc.Service
	sessions *sessionsvc.Service
}

func NewSearchHandler(search *searchsvc.Service, sessions *sessionsvc.Service) *SearchHandler {
	return &SearchHandler{search: search, sessions: sessions}
}

// Start runs a fresh search. Any previously accumulated results for
// this user are discarded.
func (h *SearchHandler) Start(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	result, err := h.search.StartSearch(r.Context(), identity.Username, req.Criteria)
	if err != nil {
		handleSearchError(w, err)
		return
	}

	if h.sessions != nil {
		h.sessions.MarkSearchStarted(identity.Username)
		h.sessions.ScheduleSave(identity.Username)
	}

	httperrors.Write(w, http.StatusOK, searchResponse(result))
}

// Page loads the next page of the active search. The page number must
// be exactly one past the last loaded page.
func (h *SearchHandler) Page(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 2 {
		writeBadRequest(w, "VALIDATION_ERROR", "page must be an integer greater than 1")
		return
	}

	result, err := h.search.LoadPage(r.Context(), identity.Username, page)
	if err != nil {
		handleSearchError(w, err)
		return
	}

	if h.sessions != nil {
		h.sessions.ScheduleSave(identity.Username)
	}

	httperrors.Write(w, http.StatusOK, searchResponse(result))
}

// More loads whatever page comes next, for infinite-scroll clients
// that do not track page numbers themselves.
func (h *SearchHandler) More(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	result, err := h.search.LoadMore(r.Context(), identity.Username)
	if err != nil {
		handleSearchError(w, err)
		return
	}

	if h.sessions != nil {
		h.sessions.ScheduleSave(identity.Username)
	}

	httperrors.Write(w, http.StatusOK, searchResponse(result))
}

// Results returns the current reconciled view without fetching.
func (h *SearchHandler) Results(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	result, err := h.search.Results(identity.Username)
	if err != nil {
		handleSearchError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, searchResponse(result))
}

// View updates the client-side score filter and ordering.
func (h *SearchHandler) View(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.SearchViewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	result, err := h.search.SetView(identity.Username, req.MinMatchScore, req.SortBy, req.SortOrder)
	if err != nil {
		handleSearchError(w, err)
		return
	}

	if h.sessions != nil {
		h.sessions.ScheduleSave(identity.Username)
	}

	httperrors.Write(w, http.StatusOK, searchResponse(result))
}

// Scroll records the viewer's list position.
func (h *SearchHandler) Scroll(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.ScrollRequest
	if err := decodeJSON(r, &req); err != nil || req.Offset < 0 {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	h.search.SetScrollOffset(identity.Username, req.Offset)
	if h.sessions != nil {
		h.sessions.ScheduleSave(identity.Username)
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

// Clear drops the active search and its persisted snapshot.
func (h *SearchHandler) Clear(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	if h.sessions != nil {
		h.sessions.Purge(r.Context(), identity.Username)
	} else {
		h.search.Clear(identity.Username)
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

// Restore rebuilds the user's previous search session, if a usable
// snapshot exists.
func (h *SearchHandler) Restore(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.sessions == nil {
		writeInternal(w, "SESSION_SERVICE_UNAVAILABLE", "session service is unavailable")
		return
	}

	res, err := h.sessions.Restore(r.Context(), identity.Username)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	response := dto.SessionRestoreResponse{State: string(res.Phase)}
	if res.Phase == sessionsvc.PhaseRestored {
		session := searchResponse(res.Session)
		response.Session = &session
	}
	httperrors.Write(w, http.StatusOK, response)
}

func searchResponse(result searchsvc.PageResult) dto.SearchResponse {
	return dto.SearchResponse{
		Users:   result.Users,
		Total:   result.Total,
		Page:    result.Page,
		HasMore: result.HasMore,
	}
}

func handleSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, searchsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "search criteria validation failed")
	case errors.Is(err, searchsvc.ErrNoActiveSession):
		writeNotFound(w, "NO_ACTIVE_SESSION", "no active search session")
	case errors.Is(err, searchsvc.ErrPageInFlight):
		writeConflict(w, "PAGE_IN_FLIGHT", "a page request is already in flight")
	case errors.Is(err, searchsvc.ErrPageOutOfOrder):
		writeConflict(w, "PAGE_OUT_OF_ORDER", "pages must be requested sequentially")
	case errors.Is(err, searchsvc.ErrSuperseded):
		writeConflict(w, "SEARCH_SUPERSEDED", "search was superseded by a newer one")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
