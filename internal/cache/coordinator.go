// Package cache implements the cache/access coordinator over the durable
// document store and the upstream fetch adapter.
//
// Collections are maps keyed by natural id with last-writer-wins-by-timestamp
// insertion, so duplicate records are structurally impossible in memory; the
// legacy array document is folded (pruned) on load. All mutations are
// single-flight behind one mutex owned by the coordinator.
package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robostats/scoutrank/internal/adapters/store"
	"github.com/robostats/scoutrank/internal/domain/model"
	"github.com/robostats/scoutrank/pkg/logger"
	"github.com/robostats/scoutrank/pkg/metrics"
)

// Metric label values for record kinds.
const (
	kindTeam  = "team"
	kindEvent = "event"
)

const defaultTTL = 7 * 24 * time.Hour

// Fetcher is the upstream surface the coordinator depends on.
type Fetcher interface {
	FetchTeam(ctx context.Context, number model.TeamNumber) (*model.TeamRecord, error)
	FetchTeams(ctx context.Context, numbers []model.TeamNumber) ([]model.TeamRecord, error)
	FetchEvent(ctx context.Context, code model.EventCode) (*model.EventRecord, error)
	FetchEvents(ctx context.Context, codes []model.EventCode) ([]model.EventRecord, error)

	// MaxBatchSize caps keys per bulk round trip; GetTeams chunks by it.
	MaxBatchSize() int
}

// Coordinator owns the cached team/event collections.
type Coordinator struct {
	mu      sync.Mutex
	store   store.Store
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time
	log     logger.Logger

	loaded bool
	teams  map[model.TeamNumber]model.TeamRecord
	events map[model.EventCode]model.EventRecord
}

// New creates a coordinator with configuration options.
func New(st store.Store, fetcher Fetcher, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:   st,
		fetcher: fetcher,
		ttl:     defaultTTL,
		now:     time.Now,
		teams:   make(map[model.TeamNumber]model.TeamRecord),
		events:  make(map[model.EventCode]model.EventRecord),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.log == nil {
		c.log = logger.Named("cache")
	}

	return c
}

// Load reads the durable document and folds its collections into the keyed
// maps, keeping the entry with the greatest lastUpdated per key. Returns the
// number of duplicate records dropped by the fold.
func (c *Coordinator) Load(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

func (c *Coordinator) loadLocked(ctx context.Context) (int, error) {
	doc, migrated, err := c.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	if migrated {
		c.log.Info(ctx, "cache document migrated on load")
	}

	removed := 0
	c.teams = make(map[model.TeamNumber]model.TeamRecord, len(doc.Teams))
	for _, t := range doc.Teams {
		if prev, ok := c.teams[t.Number]; ok {
			removed++
			if t.LastUpdated <= prev.LastUpdated {
				continue
			}
		}
		c.teams[t.Number] = t
	}

	c.events = make(map[model.EventCode]model.EventRecord, len(doc.Events))
	for _, e := range doc.Events {
		key := e.EventCode()
		if prev, ok := c.events[key]; ok {
			removed++
			if e.LastUpdated <= prev.LastUpdated {
				continue
			}
		}
		c.events[key] = e
	}

	c.loaded = true
	if removed > 0 {
		c.log.Info(ctx, "pruned duplicate cache records on load", logger.Int("removed", removed))
	}
	metrics.UpdateCachedCounts(len(c.teams), len(c.events))
	return removed, nil
}

// ensureLoadedLocked lazily loads the document on first access.
func (c *Coordinator) ensureLoadedLocked(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	_, err := c.loadLocked(ctx)
	return err
}

// saveLocked persists the keyed collections as the durable document. Keys
// are emitted in sorted order so saves are deterministic.
func (c *Coordinator) saveLocked(ctx context.Context) error {
	doc := store.Blank()

	numbers := make([]model.TeamNumber, 0, len(c.teams))
	for n := range c.teams {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for _, n := range numbers {
		doc.Teams = append(doc.Teams, c.teams[n])
	}

	codes := make([]model.EventCode, 0, len(c.events))
	for code := range c.events {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	for _, code := range codes {
		doc.Events = append(doc.Events, c.events[code])
	}

	if err := c.store.Save(ctx, doc); err != nil {
		return err
	}
	metrics.UpdateCachedCounts(len(c.teams), len(c.events))
	return nil
}

// fresh reports whether a record timestamp is within the TTL.
func (c *Coordinator) fresh(lastUpdated int64) bool {
	age := c.now().UnixMilli() - lastUpdated
	return age < c.ttl.Milliseconds()
}

// GetTeam returns the cached team record, fetching and replacing it when
// absent, stale, or when reload is requested. On upstream failure the prior
// record (if any) is returned intact; a first-ever fetch failure reports
// absence.
func (c *Coordinator) GetTeam(ctx context.Context, number model.TeamNumber, reload bool) (*model.TeamRecord, error) {
	if !number.Valid() {
		return nil, fmt.Errorf("%w: team number %d", ErrInvalidKey, number)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	existing, ok := c.teams[number]
	if ok && c.fresh(existing.LastUpdated) && !reload {
		metrics.RecordCacheHit(kindTeam)
		rec := existing
		return &rec, nil
	}

	if reload && ok {
		metrics.RecordCacheReload(kindTeam)
	} else {
		metrics.RecordCacheMiss(kindTeam)
	}

	fetched, err := c.fetcher.FetchTeam(ctx, number)
	if err != nil {
		c.log.Warn(ctx, "team fetch failed",
			logger.String("team", number.String()),
			logger.Error(err),
		)
		if ok {
			// No poison-write: the stale record stays usable.
			rec := existing
			return &rec, nil
		}
		return nil, fmt.Errorf("%w: team %s: %w", ErrNotFound, number, err)
	}

	delete(c.teams, number)
	c.teams[number] = *fetched
	if err := c.saveLocked(ctx); err != nil {
		return nil, err
	}
	if _, ok := c.teams[number]; !ok {
		return nil, fmt.Errorf("%w: team %s missing after write", ErrCacheConsistency, number)
	}

	c.log.Info(ctx, "team record replaced", logger.String("team", number.String()))
	rec := c.teams[number]
	return &rec, nil
}

// GetEvent returns the cached event record with the same fetch-and-replace
// semantics as GetTeam. Codes are case-normalized.
func (c *Coordinator) GetEvent(ctx context.Context, rawCode string, reload bool) (*model.EventRecord, error) {
	code := model.ParseEventCode(rawCode)
	if !code.Valid() {
		return nil, fmt.Errorf("%w: empty event code", ErrInvalidKey)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	existing, ok := c.events[code]
	if ok && c.fresh(existing.LastUpdated) && !reload {
		metrics.RecordCacheHit(kindEvent)
		rec := existing
		return &rec, nil
	}

	if reload && ok {
		metrics.RecordCacheReload(kindEvent)
	} else {
		metrics.RecordCacheMiss(kindEvent)
	}

	fetched, err := c.fetcher.FetchEvent(ctx, code)
	if err != nil {
		c.log.Warn(ctx, "event fetch failed",
			logger.String("event", code.String()),
			logger.Error(err),
		)
		if ok {
			rec := existing
			return &rec, nil
		}
		return nil, fmt.Errorf("%w: event %s: %w", ErrNotFound, code, err)
	}

	delete(c.events, code)
	c.events[code] = *fetched
	if err := c.saveLocked(ctx); err != nil {
		return nil, err
	}
	if _, ok := c.events[code]; !ok {
		return nil, fmt.Errorf("%w: event %s missing after write", ErrCacheConsistency, code)
	}

	c.log.Info(ctx, "event record replaced", logger.String("event", code.String()))
	rec := c.events[code]
	return &rec, nil
}

// Prune re-folds the durable document, keeping the freshest entry per key,
// and persists the result. Idempotent: a second prune removes nothing.
func (c *Coordinator) Prune(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed, err := c.loadLocked(ctx)
	if err != nil {
		return 0, err
	}
	if err := c.saveLocked(ctx); err != nil {
		return removed, err
	}
	return removed, nil
}

// LoadedTeams lists cached team records with their update times.
func (c *Coordinator) LoadedTeams(ctx context.Context) ([]model.CacheEntryInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	out := make([]model.CacheEntryInfo, 0, len(c.teams))
	for _, t := range c.teams {
		out = append(out, model.CacheEntryInfo{
			Key:         t.Number.String(),
			Name:        t.Name,
			LastUpdated: time.UnixMilli(t.LastUpdated),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// LoadedEvents lists cached event records with their update times.
func (c *Coordinator) LoadedEvents(ctx context.Context) ([]model.CacheEntryInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	out := make([]model.CacheEntryInfo, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, model.CacheEntryInfo{
			Key:         e.Code,
			Name:        e.Name,
			LastUpdated: time.UnixMilli(e.LastUpdated),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Counts reports the current collection sizes.
func (c *Coordinator) Counts(ctx context.Context) (teams, events int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLoadedLocked(ctx); err != nil {
		return 0, 0, err
	}
	return len(c.teams), len(c.events), nil
}
