package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/robostats/scoutrank/internal/adapters/store"
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
	doc   *store.Document
	saves int
	fail  bool
}

func (m *memStore) Load(ctx context.Context) (*store.Document, bool, error) {
	if m.fail {
		return nil, false, errors.New("load failed")
	}
	if m.doc == nil {
		return store.Blank(), false, nil
	}
	cp := *m.doc
	return &cp, false, nil
}

func (m *memStore) Save(ctx context.Context, doc *store.Document) error {
	if m.fail {
		return errors.New("save failed")
	}
	m.doc = doc
	m.saves++
	return nil
}

type fakeFetcher struct {
	teams      map[model.TeamNumber]model.TeamRecord
	events     map[model.EventCode]model.EventRecord
	batchLimit int
	teamCalls  int
	batchCalls int
	batchSizes []int
	eventCalls int
	fail       bool
	now        func() time.Time
}

func (f *fakeFetcher) FetchTeam(ctx context.Context, n model.TeamNumber) (*model.TeamRecord, error) {
	f.teamCalls++
	if f.fail {
		return nil, errors.New("upstream down")
	}
	rec, ok := f.teams[n]
	if !ok {
		return nil, errors.New("no such team")
	}
	rec.LastUpdated = f.now().UnixMilli()
	return &rec, nil
}

func (f *fakeFetcher) FetchTeams(ctx context.Context, ns []model.TeamNumber) ([]model.TeamRecord, error) {
	f.batchCalls++
	f.batchSizes = append(f.batchSizes, len(ns))
	if f.fail {
		return nil, errors.New("upstream down")
	}
	out := make([]model.TeamRecord, 0, len(ns))
	for _, n := range ns {
		if rec, ok := f.teams[n]; ok {
			rec.LastUpdated = f.now().UnixMilli()
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeFetcher) FetchEvent(ctx context.Context, code model.EventCode) (*model.EventRecord, error) {
	f.eventCalls++
	if f.fail {
		return nil, errors.New("upstream down")
	}
	rec, ok := f.events[code]
	if !ok {
		return nil, errors.New("no such event")
	}
	rec.LastUpdated = f.now().UnixMilli()
	return &rec, nil
}

func (f *fakeFetcher) FetchEvents(ctx context.Context, codes []model.EventCode) ([]model.EventRecord, error) {
	if f.fail {
		return nil, errors.New("upstream down")
	}
	out := make([]model.EventRecord, 0, len(codes))
	for _, code := range codes {
		if rec, ok := f.events[code]; ok {
			rec.LastUpdated = f.now().UnixMilli()
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeFetcher) MaxBatchSize() int { return f.batchLimit }

func newFixture(nowMS int64) (*memStore, *fakeFetcher, func() time.Time) {
	clock := func() time.Time { return time.UnixMilli(nowMS) }
	st := &memStore{}
	fetcher := &fakeFetcher{
		teams:      make(map[model.TeamNumber]model.TeamRecord),
		events:     make(map[model.EventCode]model.EventRecord),
		batchLimit: 25,
		now:        clock,
	}
	return st, fetcher, clock
}

func TestGetTeam(t *testing.T) {
	ctx := context.Background()
	base := int64(1_700_000_000_000)

	Convey("Given a coordinator with an empty cache", t, func() {
		st, fetcher, clock := newFixture(base)
		fetcher.teams[5064] = model.TeamRecord{Number: 5064, Name: "Aperture"}
		c := New(st, fetcher, WithClock(clock))

		Convey("When a team is requested for the first time", func() {
			rec, err := c.GetTeam(ctx, 5064, false)

			Convey("Then it is fetched and persisted", func() {
				So(err, ShouldBeNil)
				So(rec.Name, ShouldEqual, "Aperture")
				So(fetcher.teamCalls, ShouldEqual, 1)
				So(st.saves, ShouldEqual, 1)
			})

			Convey("And a second request within the TTL does not re-fetch", func() {
				rec2, err := c.GetTeam(ctx, 5064, false)
				So(err, ShouldBeNil)
				So(rec2.Number, ShouldEqual, model.TeamNumber(5064))
				So(fetcher.teamCalls, ShouldEqual, 1)
			})

			Convey("And a reload request forces a re-fetch", func() {
				_, err := c.GetTeam(ctx, 5064, true)
				So(err, ShouldBeNil)
				So(fetcher.teamCalls, ShouldEqual, 2)
			})
		})

		Convey("When an invalid team number is requested", func() {
			_, err := c.GetTeam(ctx, 0, false)

			Convey("Then the key is rejected without an upstream call", func() {
				So(errors.Is(err, ErrInvalidKey), ShouldBeTrue)
				So(fetcher.teamCalls, ShouldEqual, 0)
			})
		})

		Convey("When the upstream fails on a first-ever fetch", func() {
			fetcher.fail = true
			_, err := c.GetTeam(ctx, 5064, false)

			Convey("Then the record is reported absent", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given a coordinator with a stale cached team", t, func() {
		st, fetcher, _ := newFixture(base)
		staleAt := base - (8 * 24 * time.Hour).Milliseconds()
		st.doc = &store.Document{
			Teams: []model.TeamRecord{{Number: 5064, Name: "Old Name", LastUpdated: staleAt}},
		}
		clock := func() time.Time { return time.UnixMilli(base) }
		fetcher.teams[5064] = model.TeamRecord{Number: 5064, Name: "New Name"}
		c := New(st, fetcher, WithClock(clock))

		Convey("When the team is requested", func() {
			rec, err := c.GetTeam(ctx, 5064, false)

			Convey("Then the stale record is replaced", func() {
				So(err, ShouldBeNil)
				So(rec.Name, ShouldEqual, "New Name")
				So(fetcher.teamCalls, ShouldEqual, 1)
			})
		})

		Convey("When the upstream fails during the refresh", func() {
			fetcher.fail = true
			rec, err := c.GetTeam(ctx, 5064, false)

			Convey("Then the prior record survives untouched", func() {
				So(err, ShouldBeNil)
				So(rec.Name, ShouldEqual, "Old Name")
				So(rec.LastUpdated, ShouldEqual, staleAt)
			})
		})
	})
}

func TestGetTeamsBatching(t *testing.T) {
	ctx := context.Background()
	base := int64(1_700_000_000_000)

	Convey("Given 30 unresolved teams and a batch limit of 25", t, func() {
		st, fetcher, clock := newFixture(base)
		numbers := make([]model.TeamNumber, 0, 30)
		for i := 1; i <= 30; i++ {
			n := model.TeamNumber(i)
			numbers = append(numbers, n)
			fetcher.teams[n] = model.TeamRecord{Number: n}
		}
		c := New(st, fetcher, WithClock(clock))

		Convey("When the teams are requested in one call", func() {
			recs, err := c.GetTeams(ctx, numbers)

			Convey("Then exactly two upstream batches are issued", func() {
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 30)
				So(fetcher.batchCalls, ShouldEqual, 2)
				So(fetcher.batchSizes, ShouldResemble, []int{25, 5})
			})

			Convey("And a repeat call issues no upstream batches", func() {
				_, err := c.GetTeams(ctx, numbers)
				So(err, ShouldBeNil)
				So(fetcher.batchCalls, ShouldEqual, 2)
			})
		})
	})

	Convey("Given a request with duplicate and cached keys", t, func() {
		st, fetcher, clock := newFixture(base)
		st.doc = &store.Document{
			Teams: []model.TeamRecord{{Number: 7, Name: "Cached", LastUpdated: base}},
		}
		fetcher.teams[8] = model.TeamRecord{Number: 8, Name: "Fetched"}
		c := New(st, fetcher, WithClock(clock))

		Convey("When the teams are requested", func() {
			recs, err := c.GetTeams(ctx, []model.TeamNumber{7, 8, 7, 8})

			Convey("Then only the missing key reaches the upstream, once", func() {
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 2)
				So(fetcher.batchSizes, ShouldResemble, []int{1})
			})
		})
	})
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	base := int64(1_700_000_000_000)

	Convey("Given a document with duplicate records", t, func() {
		st, fetcher, clock := newFixture(base)
		st.doc = &store.Document{
			Teams: []model.TeamRecord{
				{Number: 11, Name: "older", LastUpdated: base - 100},
				{Number: 11, Name: "newer", LastUpdated: base - 10},
				{Number: 12, Name: "only", LastUpdated: base - 50},
			},
			Events: []model.EventRecord{
				{Code: "USNYC", Name: "older", LastUpdated: base - 100},
				{Code: "USNYC", Name: "newer", LastUpdated: base - 10},
			},
		}
		c := New(st, fetcher, WithClock(clock))

		Convey("When the cache is pruned", func() {
			removed, err := c.Prune(ctx)

			Convey("Then duplicates are dropped keeping the freshest entry", func() {
				So(err, ShouldBeNil)
				So(removed, ShouldEqual, 2)

				rec, err := c.GetTeam(ctx, 11, false)
				So(err, ShouldBeNil)
				So(rec.Name, ShouldEqual, "newer")

				ev, err := c.GetEvent(ctx, "usnyc", false)
				So(err, ShouldBeNil)
				So(ev.Name, ShouldEqual, "newer")
			})

			Convey("And pruning again removes nothing", func() {
				removedAgain, err := c.Prune(ctx)
				So(err, ShouldBeNil)
				So(removedAgain, ShouldEqual, 0)
			})
		})
	})
}

func TestListings(t *testing.T) {
	ctx := context.Background()
	base := int64(1_700_000_000_000)

	Convey("Given a populated cache", t, func() {
		st, fetcher, clock := newFixture(base)
		st.doc = &store.Document{
			Teams: []model.TeamRecord{
				{Number: 310, Name: "Stuy Fission", LastUpdated: base - 5},
				{Number: 201, Name: "Gears", LastUpdated: base - 9},
			},
			Events: []model.EventRecord{
				{Code: "USNYC", Name: "NYC Champs", LastUpdated: base - 3},
			},
		}
		c := New(st, fetcher, WithClock(clock))

		Convey("When the listings are requested", func() {
			teams, err := c.LoadedTeams(ctx)
			So(err, ShouldBeNil)
			events, err := c.LoadedEvents(ctx)
			So(err, ShouldBeNil)

			Convey("Then entries come back sorted by key with timestamps", func() {
				So(len(teams), ShouldEqual, 2)
				So(teams[0].Name, ShouldEqual, "Gears")
				So(len(events), ShouldEqual, 1)
				So(events[0].LastUpdated.UnixMilli(), ShouldEqual, base-3)
			})
		})

		Convey("When counts are requested", func() {
			nt, ne, err := c.Counts(ctx)
			So(err, ShouldBeNil)
			So(nt, ShouldEqual, 2)
			So(ne, ShouldEqual, 1)
		})
	})
}
