// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/robostats/scoutrank/internal/domain/model"
)

// TeamsHandler handles cached team reads.
type TeamsHandler struct {
	deps Dependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps Dependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

// HandleGet handles GET /v1/teams/{number} requests. The reload query
// parameter forces a fetch-and-replace.
func (h *TeamsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/teams/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	number, err := strconv.Atoi(path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrInvalidTeamNumber)
		return
	}

	rec, err := h.deps.GetTeam(r.Context(), model.TeamNumber(number), boolParam(r, "reload"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleList handles GET /v1/teams?numbers=1,2,3 batch requests.
func (h *TeamsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	numbers, err := parseTeamNumbers(r.URL.Query().Get("numbers"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	recs, err := h.deps.GetTeams(r.Context(), numbers)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// boolParam reads a query flag; "true" and "1" both count.
func boolParam(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	return v == "true" || v == "1"
}

func parseTeamNumbers(raw string) ([]model.TeamNumber, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMissingTeamNumbers
	}
	parts := strings.Split(raw, ",")
	out := make([]model.TeamNumber, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, ErrInvalidTeamNumber
		}
		out = append(out, model.TeamNumber(n))
	}
	return out, nil
}
