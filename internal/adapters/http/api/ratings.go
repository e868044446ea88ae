// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/robostats/scoutrank/internal/domain/model"
)

// RatingsHandler handles rating runs and rating queries.
type RatingsHandler struct {
	deps Dependencies
}

// NewRatingsHandler creates a new ratings handler.
func NewRatingsHandler(deps Dependencies) *RatingsHandler {
	return &RatingsHandler{deps: deps}
}

// HandleRun handles POST /v1/ratings/run requests: build the region from
// the configured seed and replay it.
func (h *RatingsHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	summary, err := h.deps.RunRatings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleSummary handles GET /v1/ratings/summary requests.
func (h *RatingsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	summary, err := h.deps.RegionSummary(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleList handles GET /v1/ratings requests.
func (h *RatingsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ratings, err := h.deps.TeamRatings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ratings)
}

// HandleGet handles GET /v1/ratings/{number} requests.
func (h *RatingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/ratings/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	number, err := strconv.Atoi(path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrInvalidTeamNumber)
		return
	}

	rating, err := h.deps.TeamRating(r.Context(), model.TeamNumber(number))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rating)
}
