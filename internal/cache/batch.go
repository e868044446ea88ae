package cache

import (
	"context"
	"fmt"

	"github.com/robostats/scoutrank/internal/domain/model"
	"github.com/robostats/scoutrank/pkg/logger"
	"github.com/robostats/scoutrank/pkg/metrics"
)

// GetTeams resolves a set of team numbers, fetching only keys not already
// cached. Missing keys are chunked by the upstream batch limit and fetched
// sequentially; keys the upstream does not know are skipped, never retried
// within the call. Results carry every resolved key in request order,
// deduplicated.
func (c *Coordinator) GetTeams(ctx context.Context, numbers []model.TeamNumber) ([]model.TeamRecord, error) {
	for _, n := range numbers {
		if !n.Valid() {
			return nil, fmt.Errorf("%w: team number %d", ErrInvalidKey, n)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	seen := make(map[model.TeamNumber]bool, len(numbers))
	ordered := make([]model.TeamNumber, 0, len(numbers))
	missing := make([]model.TeamNumber, 0)
	for _, n := range numbers {
		if seen[n] {
			continue
		}
		seen[n] = true
		ordered = append(ordered, n)
		if _, ok := c.teams[n]; ok {
			metrics.RecordCacheHit(kindTeam)
		} else {
			metrics.RecordCacheMiss(kindTeam)
			missing = append(missing, n)
		}
	}

	if len(missing) > 0 {
		limit := c.fetcher.MaxBatchSize()
		if limit < 1 {
			limit = 1
		}
		for start := 0; start < len(missing); start += limit {
			end := start + limit
			if end > len(missing) {
				end = len(missing)
			}
			chunk := missing[start:end]

			fetched, err := c.fetcher.FetchTeams(ctx, chunk)
			if err != nil {
				c.log.Warn(ctx, "team batch fetch failed",
					logger.Int("requested", len(chunk)),
					logger.Error(err),
				)
				continue
			}
			for _, rec := range fetched {
				c.teams[rec.Number] = rec
			}
		}
		if err := c.saveLocked(ctx); err != nil {
			return nil, err
		}
	}

	out := make([]model.TeamRecord, 0, len(ordered))
	for _, n := range ordered {
		if rec, ok := c.teams[n]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// GetEvents resolves a set of event codes with the same semantics as
// GetTeams. Codes are case-normalized before lookup.
func (c *Coordinator) GetEvents(ctx context.Context, rawCodes []string) ([]model.EventRecord, error) {
	codes := make([]model.EventCode, 0, len(rawCodes))
	for _, raw := range rawCodes {
		code := model.ParseEventCode(raw)
		if !code.Valid() {
			return nil, fmt.Errorf("%w: empty event code", ErrInvalidKey)
		}
		codes = append(codes, code)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	seen := make(map[model.EventCode]bool, len(codes))
	ordered := make([]model.EventCode, 0, len(codes))
	missing := make([]model.EventCode, 0)
	for _, code := range codes {
		if seen[code] {
			continue
		}
		seen[code] = true
		ordered = append(ordered, code)
		if _, ok := c.events[code]; ok {
			metrics.RecordCacheHit(kindEvent)
		} else {
			metrics.RecordCacheMiss(kindEvent)
			missing = append(missing, code)
		}
	}

	if len(missing) > 0 {
		limit := c.fetcher.MaxBatchSize()
		if limit < 1 {
			limit = 1
		}
		for start := 0; start < len(missing); start += limit {
			end := start + limit
			if end > len(missing) {
				end = len(missing)
			}
			chunk := missing[start:end]

			fetched, err := c.fetcher.FetchEvents(ctx, chunk)
			if err != nil {
				c.log.Warn(ctx, "event batch fetch failed",
					logger.Int("requested", len(chunk)),
					logger.Error(err),
				)
				continue
			}
			for _, rec := range fetched {
				c.events[rec.EventCode()] = rec
			}
		}
		if err := c.saveLocked(ctx); err != nil {
			return nil, err
		}
	}

	out := make([]model.EventRecord, 0, len(ordered))
	for _, code := range ordered {
		if rec, ok := c.events[code]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}
