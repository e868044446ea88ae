package service

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/robostats/scoutrank/internal/adapters/store"
	"github.com/robostats/scoutrank/internal/config"
	"github.com/robostats/scoutrank/internal/domain/model"
	"github.com/robostats/scoutrank/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type memStore struct {
	doc *store.Document
}

func (m *memStore) Load(ctx context.Context) (*store.Document, bool, error) {
	if m.doc == nil {
		return store.Blank(), false, nil
	}
	cp := *m.doc
	return &cp, false, nil
}

func (m *memStore) Save(ctx context.Context, doc *store.Document) error {
	m.doc = doc
	return nil
}

type fakeFetcher struct {
	teams  map[model.TeamNumber]model.TeamRecord
	events map[model.EventCode]model.EventRecord
}

func (f *fakeFetcher) FetchTeam(ctx context.Context, n model.TeamNumber) (*model.TeamRecord, error) {
	rec, ok := f.teams[n]
	if !ok {
		return nil, errors.New("no such team")
	}
	return &rec, nil
}

func (f *fakeFetcher) FetchTeams(ctx context.Context, ns []model.TeamNumber) ([]model.TeamRecord, error) {
	out := make([]model.TeamRecord, 0, len(ns))
	for _, n := range ns {
		if rec, ok := f.teams[n]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeFetcher) FetchEvent(ctx context.Context, code model.EventCode) (*model.EventRecord, error) {
	rec, ok := f.events[code]
	if !ok {
		return nil, errors.New("no such event")
	}
	return &rec, nil
}

func (f *fakeFetcher) FetchEvents(ctx context.Context, codes []model.EventCode) ([]model.EventRecord, error) {
	out := make([]model.EventRecord, 0, len(codes))
	for _, code := range codes {
		if rec, ok := f.events[code]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeFetcher) MaxBatchSize() int { return 25 }

// seededFetcher builds a one-event region: qualification match 1 at SEEDEV,
// red 11+12 beating blue 21+22 120 to 80.
func seededFetcher() *fakeFetcher {
	now := model.Millis(time.Now())
	scores := &model.MatchScores{
		Red:  model.AllianceScore{Total: 120, Auto: 30, DriverControlled: 60, Endgame: 30},
		Blue: model.AllianceScore{Total: 80, Auto: 20, DriverControlled: 40, Endgame: 20},
	}

	f := &fakeFetcher{
		teams:  make(map[model.TeamNumber]model.TeamRecord),
		events: make(map[model.EventCode]model.EventRecord),
	}
	f.events["SEEDEV"] = model.EventRecord{
		Code:  "SEEDEV",
		Name:  "Seed Qualifier",
		Type:  model.EventTypeQualifier,
		Start: now,
		End:   now,
		Matches: []model.ScheduledMatch{
			{ID: 1, Start: now, Played: true, Red1: 11, Red2: 12, Blue1: 21, Blue2: 22},
		},
		Teams:       []model.TeamNumber{11, 12, 21, 22},
		LastUpdated: now,
	}
	for _, n := range []model.TeamNumber{11, 12, 21, 22} {
		f.teams[n] = model.TeamRecord{
			Number:      n,
			Name:        "Team " + n.String(),
			Events:      []model.TeamEventRef{{EventCode: "SEEDEV"}},
			Matches:     []model.TeamMatchRef{{EventCode: "SEEDEV", MatchID: 1, Scores: scores}},
			LastUpdated: now,
		}
	}
	return f
}

func newTestService() *Service {
	cfg := config.New()
	cfg.SeedEvent = "SEEDEV"
	return New(
		WithConfig(cfg),
		WithStore(&memStore{}),
		WithFetcher(seededFetcher()),
	)
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service that has not been started", t, func() {
		svc := newTestService()

		Convey("Every operation reports not started", func() {
			_, err := svc.GetTeam(ctx, 11, false)
			So(err, ShouldWrap, ErrNotStarted)
			_, err = svc.RunRatings(ctx)
			So(err, ShouldWrap, ErrNotStarted)
			So(svc.GetStats()["started"], ShouldBeFalse)
		})
	})

	Convey("Given a started service", t, func() {
		svc := newTestService()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Start is idempotent", func() {
			So(svc.Start(ctx), ShouldBeNil)
		})

		Convey("Cache reads resolve through the fetcher", func() {
			rec, err := svc.GetTeam(ctx, 11, false)
			So(err, ShouldBeNil)
			So(rec.Name, ShouldEqual, "Team 11")

			ev, err := svc.GetEvent(ctx, "seedev", false)
			So(err, ShouldBeNil)
			So(ev.Code, ShouldEqual, "SEEDEV")
		})

		Convey("Rating queries report no ratings before the first run", func() {
			_, err := svc.RegionSummary(ctx)
			So(err, ShouldWrap, ErrNoRatings)
			_, err = svc.TeamRating(ctx, 11)
			So(err, ShouldWrap, ErrNoRatings)
		})

		Convey("Hypothetical predictions degrade to even odds before a run", func() {
			p, err := svc.PredictMatch(ctx, 11, 12, 21, 22)
			So(err, ShouldBeNil)
			So(p, ShouldAlmostEqual, 0.5)
		})

		Convey("After stopping, operations report not started again", func() {
			svc.Stop()
			_, err := svc.LoadedTeams(ctx)
			So(err, ShouldWrap, ErrNotStarted)
		})
	})
}

func TestServiceRatings(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service with one replayed qualification match", t, func() {
		svc := newTestService()
		So(svc.Start(ctx), ShouldBeNil)

		summary, err := svc.RunRatings(ctx)
		So(err, ShouldBeNil)

		Convey("The summary covers the whole region", func() {
			So(summary.Teams, ShouldEqual, 4)
			So(summary.Events, ShouldEqual, 1)
			So(summary.LoadedMatches, ShouldEqual, 1)
			So(summary.Accuracy, ShouldAlmostEqual, 1.0)
		})

		Convey("Winners gained rating and losers lost it", func() {
			red, err := svc.TeamRating(ctx, 11)
			So(err, ShouldBeNil)
			blue, err := svc.TeamRating(ctx, 21)
			So(err, ShouldBeNil)

			So(red.Elo, ShouldBeGreaterThan, 1500)
			So(blue.Elo, ShouldBeLessThan, 1500)
			So(red.EPA.Total, ShouldBeGreaterThan, blue.EPA.Total)
			So(red.MatchesPlayed, ShouldAlmostEqual, 1)
		})

		Convey("Alliance partners end with identical ratings", func() {
			r1, _ := svc.TeamRating(ctx, 11)
			r2, _ := svc.TeamRating(ctx, 12)
			So(r1.Elo, ShouldAlmostEqual, r2.Elo)
			So(r1.EPA.Total, ShouldAlmostEqual, r2.EPA.Total)
		})

		Convey("TeamRatings lists every region team", func() {
			all, err := svc.TeamRatings(ctx)
			So(err, ShouldBeNil)
			So(len(all), ShouldEqual, 4)
		})

		Convey("An unknown team is rejected", func() {
			_, err := svc.TeamRating(ctx, 999)
			So(err, ShouldWrap, ErrUnknownTeam)
		})

		Convey("The replayed match keeps its stored prediction", func() {
			pred, err := svc.MatchPrediction(ctx, "SEEDEV", 1)
			So(err, ShouldBeNil)
			So(pred.Stored, ShouldBeTrue)
			So(pred.RedWinProbability, ShouldAlmostEqual, 0.5)
		})

		Convey("An unknown match is rejected", func() {
			_, err := svc.MatchPrediction(ctx, "SEEDEV", 42)
			So(err, ShouldWrap, ErrUnknownMatch)
			_, err = svc.MatchPrediction(ctx, "NOPE", 1)
			So(err, ShouldWrap, ErrUnknownMatch)
		})

		Convey("A hypothetical rematch now favors the winners", func() {
			p, err := svc.PredictMatch(ctx, 11, 12, 21, 22)
			So(err, ShouldBeNil)
			So(p, ShouldBeGreaterThan, 0.5)
		})

		Convey("Any unrated participant degrades the odds to even", func() {
			p, err := svc.PredictMatch(ctx, 11, 12, 21, 999)
			So(err, ShouldBeNil)
			So(p, ShouldAlmostEqual, 0.5)

			p, err = svc.PredictMatch(ctx, 901, 902, 903, 904)
			So(err, ShouldBeNil)
			So(p, ShouldAlmostEqual, 0.5)
		})

		Convey("Stats expose the region and cache sizes", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["regionTeams"], ShouldEqual, 4)
			So(stats["regionEvents"], ShouldEqual, 1)
			So(stats["replayedMatches"], ShouldEqual, 1)
			So(stats["cachedTeams"], ShouldEqual, 4)
			So(stats["cachedEvents"], ShouldEqual, 1)
		})
	})
}
