// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/robostats/scoutrank/internal/app"
	"github.com/robostats/scoutrank/internal/cache"
	"github.com/robostats/scoutrank/internal/domain/model"
	"github.com/robostats/scoutrank/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Cached record reads; reload forces a fetch-and-replace.
	GetTeam(ctx context.Context, number model.TeamNumber, reload bool) (*model.TeamRecord, error)
	GetTeams(ctx context.Context, numbers []model.TeamNumber) ([]model.TeamRecord, error)
	GetEvent(ctx context.Context, code string, reload bool) (*model.EventRecord, error)
	GetEvents(ctx context.Context, codes []string) ([]model.EventRecord, error)

	// Cache maintenance.
	LoadedTeams(ctx context.Context) ([]model.CacheEntryInfo, error)
	LoadedEvents(ctx context.Context) ([]model.CacheEntryInfo, error)
	PruneCache(ctx context.Context) (int, error)

	// Rating runs and queries.
	RunRatings(ctx context.Context) (types.RegionSummary, error)
	RegionSummary(ctx context.Context) (types.RegionSummary, error)
	TeamRating(ctx context.Context, number model.TeamNumber) (types.TeamRating, error)
	TeamRatings(ctx context.Context) ([]types.TeamRating, error)
	MatchPrediction(ctx context.Context, code string, id model.MatchID) (types.MatchPrediction, error)
	PredictMatch(ctx context.Context, red1, red2, blue1, blue2 model.TeamNumber) (float64, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	teamsHandler       *TeamsHandler
	eventsHandler      *EventsHandler
	cacheHandler       *CacheHandler
	ratingsHandler     *RatingsHandler
	predictionsHandler *PredictionsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		teamsHandler:       NewTeamsHandler(deps),
		eventsHandler:      NewEventsHandler(deps),
		cacheHandler:       NewCacheHandler(deps),
		ratingsHandler:     NewRatingsHandler(deps),
		predictionsHandler: NewPredictionsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/v1/teams", MetricsMiddleware(s.teamsHandler.HandleList, "teams"))
	mux.HandleFunc("/v1/teams/", MetricsMiddleware(s.teamsHandler.HandleGet, "team"))
	mux.HandleFunc("/v1/events", MetricsMiddleware(s.eventsHandler.HandleList, "events"))
	mux.HandleFunc("/v1/events/", MetricsMiddleware(s.eventsHandler.HandleGet, "event"))

	mux.HandleFunc("/v1/cache/teams", MetricsMiddleware(s.cacheHandler.HandleTeams, "cache_teams"))
	mux.HandleFunc("/v1/cache/events", MetricsMiddleware(s.cacheHandler.HandleEvents, "cache_events"))
	mux.HandleFunc("/v1/cache/prune", MetricsMiddleware(s.cacheHandler.HandlePrune, "cache_prune"))

	mux.HandleFunc("/v1/ratings", MetricsMiddleware(s.ratingsHandler.HandleList, "ratings"))
	mux.HandleFunc("/v1/ratings/run", MetricsMiddleware(s.ratingsHandler.HandleRun, "ratings_run"))
	mux.HandleFunc("/v1/ratings/summary", MetricsMiddleware(s.ratingsHandler.HandleSummary, "ratings_summary"))
	mux.HandleFunc("/v1/ratings/", MetricsMiddleware(s.ratingsHandler.HandleGet, "rating"))

	mux.HandleFunc("/v1/predictions/", MetricsMiddleware(s.predictionsHandler.HandleGet, "prediction"))
	mux.HandleFunc("/v1/predict", MetricsMiddleware(s.predictionsHandler.HandleHypothetical, "predict"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates service and cache sentinels into status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cache.ErrNotFound),
		errors.Is(err, service.ErrUnknownTeam),
		errors.Is(err, service.ErrUnknownMatch):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, cache.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrNoRatings):
		writeError(w, http.StatusConflict, "no_ratings", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
