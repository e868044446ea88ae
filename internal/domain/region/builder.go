// Package region builds the transient team/event graph a rating run operates
// on. Starting from seed events or teams it walks the cache to a fixed point:
// events contribute their participating teams, teams contribute the events in
// their history, until nothing new is discovered. Team match histories then
// fill final scores into the event schedules.
package region

import (
	"context"
	"strings"

	"github.com/robostats/scoutrank/internal/domain/model"
	"github.com/robostats/scoutrank/pkg/logger"
)

// Source is the cache surface the builder walks. Batch lookups let the
// coordinator chunk upstream round trips.
type Source interface {
	GetTeams(ctx context.Context, numbers []model.TeamNumber) ([]model.TeamRecord, error)
	GetEvents(ctx context.Context, codes []string) ([]model.EventRecord, error)
}

// Builder discovers a region graph from cache records.
type Builder struct {
	src        Source
	codeMarker string
	maxRounds  int
	log        logger.Logger
}

// NewBuilder creates a builder over the given cache source.
func NewBuilder(src Source, opts ...Option) *Builder {
	b := &Builder{
		src:       src,
		maxRounds: 64,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = logger.Named("region")
	}
	return b
}

// accept reports whether an event code belongs to the region. An empty
// marker accepts everything.
func (b *Builder) accept(code model.EventCode) bool {
	if b.codeMarker == "" {
		return true
	}
	return strings.Contains(string(code), b.codeMarker)
}

// Build walks the cache from the seeds to a fixed point and returns the
// resulting graph. At least one seed event or team is required.
func (b *Builder) Build(ctx context.Context, seedEvents []string, seedTeams []model.TeamNumber) (*model.Region, error) {
	if len(seedEvents) == 0 && len(seedTeams) == 0 {
		return nil, ErrNoSeed
	}

	r := model.NewRegion()
	visitedTeams := make(map[model.TeamNumber]bool)
	visitedEvents := make(map[model.EventCode]bool)
	var pendingTeams []model.TeamNumber
	var pendingEvents []model.EventCode
	var teamRecords []model.TeamRecord

	for _, raw := range seedEvents {
		code := model.ParseEventCode(raw)
		if !code.Valid() || visitedEvents[code] {
			continue
		}
		visitedEvents[code] = true
		pendingEvents = append(pendingEvents, code)
	}
	for _, n := range seedTeams {
		if !n.Valid() || visitedTeams[n] {
			continue
		}
		visitedTeams[n] = true
		pendingTeams = append(pendingTeams, n)
	}

	rounds := 0
	for len(pendingEvents) > 0 || len(pendingTeams) > 0 {
		rounds++
		if rounds > b.maxRounds {
			return nil, ErrUnboundedWalk
		}

		if len(pendingEvents) > 0 {
			codes := make([]string, len(pendingEvents))
			for i, c := range pendingEvents {
				codes[i] = string(c)
			}
			pendingEvents = pendingEvents[:0]

			records, err := b.src.GetEvents(ctx, codes)
			if err != nil {
				return nil, err
			}
			for i := range records {
				rec := &records[i]
				b.addEvent(r, rec)
				for _, n := range b.eventTeams(rec) {
					if !n.Valid() || visitedTeams[n] {
						continue
					}
					visitedTeams[n] = true
					pendingTeams = append(pendingTeams, n)
				}
			}
		}

		if len(pendingTeams) > 0 {
			numbers := pendingTeams
			pendingTeams = nil

			records, err := b.src.GetTeams(ctx, numbers)
			if err != nil {
				return nil, err
			}
			for i := range records {
				rec := records[i]
				t := r.AddTeam(rec.Number)
				t.Name = rec.Name
				teamRecords = append(teamRecords, rec)

				for _, ref := range rec.Events {
					code := model.ParseEventCode(ref.EventCode)
					if !code.Valid() || !b.accept(code) || visitedEvents[code] {
						continue
					}
					visitedEvents[code] = true
					pendingEvents = append(pendingEvents, code)
				}
			}
		}
	}

	b.fillScores(r, teamRecords)

	for _, e := range r.Events() {
		e.SortMatches()
	}

	b.log.Info(ctx, "region built",
		logger.Int("teams", r.TeamCount()),
		logger.Int("events", r.EventCount()),
		logger.Int("rounds", rounds),
	)
	return r, nil
}

// addEvent converts a cached event record into an owned graph event with its
// scheduled matches.
func (b *Builder) addEvent(r *model.Region, rec *model.EventRecord) {
	e := r.AddEvent(&model.Event{
		Code:  rec.EventCode(),
		Name:  rec.Name,
		Start: rec.Start,
		End:   rec.End,
		Type:  rec.Type,
	})
	for _, sm := range rec.Matches {
		e.AddMatch(&model.Match{
			ID:     sm.ID,
			Start:  sm.Start,
			Played: sm.Played,
			Red1:   sm.Red1,
			Red2:   sm.Red2,
			Blue1:  sm.Blue1,
			Blue2:  sm.Blue2,
		})
	}
}

// eventTeams collects the participants of an event record, falling back to
// the schedule when the roster is empty.
func (b *Builder) eventTeams(rec *model.EventRecord) []model.TeamNumber {
	if len(rec.Teams) > 0 {
		return rec.Teams
	}
	var out []model.TeamNumber
	for _, sm := range rec.Matches {
		out = append(out, sm.Red1, sm.Red2, sm.Blue1, sm.Blue2)
	}
	return out
}

// fillScores joins per-team match histories into the event schedules. A
// history ref names no participants, so entries for matches the schedule
// does not carry are dropped rather than turned into participant-less
// matches.
func (b *Builder) fillScores(r *model.Region, teamRecords []model.TeamRecord) {
	for i := range teamRecords {
		rec := &teamRecords[i]
		for _, ref := range rec.Matches {
			if ref.Scores == nil {
				continue
			}
			e := r.Event(model.ParseEventCode(ref.EventCode))
			if e == nil {
				continue
			}
			m := e.Match(ref.MatchID)
			if m == nil {
				continue
			}
			m.SetScores(ref.Scores.Red, ref.Scores.Blue)
		}
	}
}
