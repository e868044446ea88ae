// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/robostats/scoutrank/internal/domain/model"
)

// PredictionsHandler handles match and hypothetical predictions.
type PredictionsHandler struct {
	deps Dependencies
}

// NewPredictionsHandler creates a new predictions handler.
func NewPredictionsHandler(deps Dependencies) *PredictionsHandler {
	return &PredictionsHandler{deps: deps}
}

// HandleGet handles GET /v1/predictions/{code}/{matchId} requests.
func (h *PredictionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/predictions/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrInvalidMatchID)
		return
	}

	pred, err := h.deps.MatchPrediction(r.Context(), parts[0], model.MatchID(id))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

type hypotheticalResponse struct {
	RedWinProbability float64 `json:"red_win_probability"`
}

// HandleHypothetical handles /v1/predict requests with red1, red2, blue1
// and blue2 query parameters. POST and GET are equivalent; the computation
// has no side effects.
func (h *PredictionsHandler) HandleHypothetical(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	teams := make([]model.TeamNumber, 0, 4)
	for _, name := range []string{"red1", "red2", "blue1", "blue2"} {
		n, err := strconv.Atoi(q.Get(name))
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrInvalidTeamNumber)
			return
		}
		teams = append(teams, model.TeamNumber(n))
	}

	p, err := h.deps.PredictMatch(r.Context(), teams[0], teams[1], teams[2], teams[3])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hypotheticalResponse{RedWinProbability: p})
}
