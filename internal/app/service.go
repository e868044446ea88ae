// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robostats/scoutrank/internal/adapters/store"
	"github.com/robostats/scoutrank/internal/adapters/upstream"
	"github.com/robostats/scoutrank/internal/cache"
	"github.com/robostats/scoutrank/internal/config"
	"github.com/robostats/scoutrank/internal/domain/model"
	"github.com/robostats/scoutrank/internal/domain/rating"
	"github.com/robostats/scoutrank/internal/domain/region"
	"github.com/robostats/scoutrank/internal/domain/types"
	"github.com/robostats/scoutrank/pkg/logger"
)

// Service wires the store, the upstream client, the cache coordinator and
// the rating engine behind one facade.
type Service struct {
	mu sync.RWMutex

	cfg     *config.Config
	st      store.Store
	fetcher cache.Fetcher
	cache   *cache.Coordinator
	builder *region.Builder
	engine  *rating.Engine

	// Last completed rating run.
	region     *model.Region
	lastResult *rating.Result

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the process configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithStore overrides the durable store, used by tests.
func WithStore(st store.Store) Option {
	return func(s *Service) {
		s.st = st
	}
}

// WithFetcher overrides the upstream fetcher, used by tests.
func WithFetcher(f cache.Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: config.New(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting scoutrank service...")

	if s.st == nil {
		s.st = store.NewFileStore(s.cfg.DataFile, store.WithLogger(s.logger.Named("store")))
	}
	if s.fetcher == nil {
		s.fetcher = upstream.New(s.cfg.UpstreamURL,
			upstream.WithSeason(s.cfg.Season),
			upstream.WithMaxBatchSize(s.cfg.MaxBatchSize),
			upstream.WithRateLimit(s.cfg.UpstreamRPS),
			upstream.WithTimeout(time.Duration(s.cfg.UpstreamTimeoutMS)*time.Millisecond),
			upstream.WithLogger(s.logger.Named("upstream")),
		)
	}

	s.cache = cache.New(s.st, s.fetcher,
		cache.WithTTL(time.Duration(s.cfg.CacheTTLHours)*time.Hour),
		cache.WithLogger(s.logger.Named("cache")),
	)
	s.builder = region.NewBuilder(s.cache,
		region.WithEventCodeMarker(s.cfg.EventCodeFilter),
		region.WithLogger(s.logger.Named("region")),
	)
	s.engine = rating.NewEngine(s.ratingConfig(),
		rating.WithLogger(s.logger.Named("rating")),
	)

	removed, err := s.cache.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading cache: %w", err)
	}

	s.started = true
	s.logger.Info(ctx, "scoutrank service started",
		logger.String("data_file", s.cfg.DataFile),
		logger.Int("cache_ttl_hours", s.cfg.CacheTTLHours),
		logger.Int("pruned_on_load", removed),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "scoutrank service stopped")
}

// ratingConfig derives the versioned rating constants from the process
// configuration.
func (s *Service) ratingConfig() rating.Config {
	cfg := rating.V1()
	if s.cfg.EloWeight > 0 || s.cfg.EPAWeight > 0 {
		cfg.EloWeight = s.cfg.EloWeight
		cfg.EPAWeight = s.cfg.EPAWeight
	}
	if s.cfg.SeedMatchCount > 0 {
		cfg.SeedMatchCount = s.cfg.SeedMatchCount
	}
	for _, t := range s.cfg.ExcludedEventTypes {
		cfg.ExcludedEventTypes = append(cfg.ExcludedEventTypes, model.EventType(t))
	}
	return cfg
}

func (s *Service) ready() error {
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// GetTeam returns one cached team record, re-fetching when stale or when
// reload is requested.
func (s *Service) GetTeam(ctx context.Context, number model.TeamNumber, reload bool) (*model.TeamRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.cache.GetTeam(ctx, number, reload)
}

// GetTeams resolves a batch of team records.
func (s *Service) GetTeams(ctx context.Context, numbers []model.TeamNumber) ([]model.TeamRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.cache.GetTeams(ctx, numbers)
}

// GetEvent returns one cached event record.
func (s *Service) GetEvent(ctx context.Context, code string, reload bool) (*model.EventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.cache.GetEvent(ctx, code, reload)
}

// GetEvents resolves a batch of event records.
func (s *Service) GetEvents(ctx context.Context, codes []string) ([]model.EventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.cache.GetEvents(ctx, codes)
}

// LoadedTeams lists cached teams with their update times.
func (s *Service) LoadedTeams(ctx context.Context) ([]model.CacheEntryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.cache.LoadedTeams(ctx)
}

// LoadedEvents lists cached events with their update times.
func (s *Service) LoadedEvents(ctx context.Context) ([]model.CacheEntryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.cache.LoadedEvents(ctx)
}

// PruneCache drops duplicate cache records, keeping the freshest entry per
// key, and reports how many were removed.
func (s *Service) PruneCache(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.cache.Prune(ctx)
}

// RunRatings builds the region from the configured seed event and replays
// every loaded match, replacing the previous rating run.
func (s *Service) RunRatings(ctx context.Context) (types.RegionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return types.RegionSummary{}, err
	}

	r, err := s.builder.Build(ctx, []string{s.cfg.SeedEvent}, nil)
	if err != nil {
		return types.RegionSummary{}, fmt.Errorf("building region: %w", err)
	}

	res, err := s.engine.Replay(ctx, r)
	if err != nil {
		return types.RegionSummary{}, fmt.Errorf("replaying region: %w", err)
	}

	s.region = r
	s.lastResult = res
	return s.summaryLocked(), nil
}

func (s *Service) summaryLocked() types.RegionSummary {
	return types.RegionSummary{
		Teams:         s.region.TeamCount(),
		Events:        s.region.EventCount(),
		Matches:       s.lastResult.Matches + s.lastResult.Skipped,
		LoadedMatches: s.lastResult.Matches,
		Accuracy:      s.lastResult.Accuracy,
		ReplayedAt:    s.lastResult.ReplayedAt,
	}
}

// RegionSummary reports the last rating run.
func (s *Service) RegionSummary(ctx context.Context) (types.RegionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return types.RegionSummary{}, err
	}
	if s.region == nil {
		return types.RegionSummary{}, ErrNoRatings
	}
	return s.summaryLocked(), nil
}

// TeamRating returns one team's ratings from the last run.
func (s *Service) TeamRating(ctx context.Context, number model.TeamNumber) (types.TeamRating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return types.TeamRating{}, err
	}
	if s.region == nil {
		return types.TeamRating{}, ErrNoRatings
	}

	t := s.region.Team(number)
	if t == nil {
		return types.TeamRating{}, fmt.Errorf("%w: team %s", ErrUnknownTeam, number)
	}
	return types.TeamRating{
		Number: int(t.Number),
		Elo:    t.Elo,
		EPA: types.EPA{
			Total:            t.EPA.Total,
			Auto:             t.EPA.Auto,
			DriverControlled: t.EPA.DriverControlled,
			Endgame:          t.EPA.Endgame,
		},
		MatchesPlayed: t.MatchesPlayed,
	}, nil
}

// TeamRatings returns every rated team from the last run, in region
// insertion order.
func (s *Service) TeamRatings(ctx context.Context) ([]types.TeamRating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.region == nil {
		return nil, ErrNoRatings
	}

	teams := s.region.Teams()
	out := make([]types.TeamRating, 0, len(teams))
	for _, t := range teams {
		out = append(out, types.TeamRating{
			Number: int(t.Number),
			Elo:    t.Elo,
			EPA: types.EPA{
				Total:            t.EPA.Total,
				Auto:             t.EPA.Auto,
				DriverControlled: t.EPA.DriverControlled,
				Endgame:          t.EPA.Endgame,
			},
			MatchesPlayed: t.MatchesPlayed,
		})
	}
	return out, nil
}

// MatchPrediction returns the red-alliance win probability for a match of
// the last built region. The value stored during replay is preferred; a
// match without one (not yet played, or scores missing) is recomputed from
// current ratings and flagged as such.
func (s *Service) MatchPrediction(ctx context.Context, code string, id model.MatchID) (types.MatchPrediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return types.MatchPrediction{}, err
	}
	if s.region == nil {
		return types.MatchPrediction{}, ErrNoRatings
	}

	ev := s.region.Event(model.ParseEventCode(code))
	if ev == nil {
		return types.MatchPrediction{}, fmt.Errorf("%w: event %s", ErrUnknownMatch, code)
	}
	m := ev.Match(id)
	if m == nil {
		return types.MatchPrediction{}, fmt.Errorf("%w: match %d at %s", ErrUnknownMatch, id, code)
	}

	pred := types.MatchPrediction{
		EventCode: ev.Code.String(),
		MatchID:   int(m.ID),
	}
	if m.PredictionStored {
		pred.RedWinProbability = m.PredictedWinProbability
		pred.Stored = true
		return pred, nil
	}

	pred.RedWinProbability = s.predictLocked(m.Red1, m.Red2, m.Blue1, m.Blue2)
	return pred, nil
}

// PredictMatch computes the red-alliance win probability for a hypothetical
// pairing from current ratings. It never fails on rating preconditions: with
// no completed rating run, or with any of the four teams unrated, it degrades
// to a neutral 0.5.
func (s *Service) PredictMatch(ctx context.Context, red1, red2, blue1, blue2 model.TeamNumber) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return 0, err
	}
	if s.region == nil {
		return 0.5, nil
	}
	return s.predictLocked(red1, red2, blue1, blue2), nil
}

func (s *Service) predictLocked(red1, red2, blue1, blue2 model.TeamNumber) float64 {
	r1 := s.region.Team(red1)
	r2 := s.region.Team(red2)
	b1 := s.region.Team(blue1)
	b2 := s.region.Team(blue2)
	if r1 == nil || r2 == nil || b1 == nil || b2 == nil {
		return 0.5
	}

	return rating.WinProbability(s.ratingConfig(),
		r1.Elo+r2.Elo, b1.Elo+b2.Elo,
		r1.EPA.Add(r2.EPA), b1.EPA.Add(b2.EPA),
		s.lastResult.StdDev,
	)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
	}
	if !s.started {
		return stats
	}

	teams, events, err := s.cache.Counts(context.Background())
	if err == nil {
		stats["cachedTeams"] = teams
		stats["cachedEvents"] = events
	}
	if s.region != nil {
		stats["regionTeams"] = s.region.TeamCount()
		stats["regionEvents"] = s.region.EventCount()
		stats["replayedMatches"] = s.lastResult.Matches
		stats["predictionAccuracy"] = s.lastResult.Accuracy
		stats["ratingVersion"] = s.lastResult.Version
	}
	return stats
}
