// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// CacheHandler handles cache listing and maintenance requests.
type CacheHandler struct {
	deps Dependencies
}

// NewCacheHandler creates a new cache handler.
func NewCacheHandler(deps Dependencies) *CacheHandler {
	return &CacheHandler{deps: deps}
}

// HandleTeams handles GET /v1/cache/teams requests.
func (h *CacheHandler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	entries, err := h.deps.LoadedTeams(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleEvents handles GET /v1/cache/events requests.
func (h *CacheHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	entries, err := h.deps.LoadedEvents(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type pruneResponse struct {
	Removed int `json:"removed"`
}

// HandlePrune handles POST /v1/cache/prune requests.
func (h *CacheHandler) HandlePrune(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	removed, err := h.deps.PruneCache(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pruneResponse{Removed: removed})
}
