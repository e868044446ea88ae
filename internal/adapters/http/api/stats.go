// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// StatsProvider reports cache and rating-run counters for monitoring.
// Kept separate from Dependencies so the stats route needs nothing else.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves the service counters.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a stats handler over the given provider.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}
