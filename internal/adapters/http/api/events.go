// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// EventsHandler handles cached event reads.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleGet handles GET /v1/events/{code} requests.
func (h *EventsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	code := strings.TrimPrefix(r.URL.Path, "/v1/events/")
	if code == "" || strings.Contains(code, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	rec, err := h.deps.GetEvent(r.Context(), code, boolParam(r, "reload"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleList handles GET /v1/events?codes=A,B batch requests.
func (h *EventsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("codes"))
	if raw == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingEventCodes)
		return
	}
	codes := strings.Split(raw, ",")

	recs, err := h.deps.GetEvents(r.Context(), codes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
