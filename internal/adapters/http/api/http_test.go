package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/robostats/scoutrank/internal/app"
	"github.com/robostats/scoutrank/internal/cache"
	"github.com/robostats/scoutrank/internal/domain/model"
	"github.com/robostats/scoutrank/internal/domain/types"
)

type fakeDeps struct {
	teams   map[model.TeamNumber]model.TeamRecord
	ratings map[model.TeamNumber]types.TeamRating
	ran     bool
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{
		teams: map[model.TeamNumber]model.TeamRecord{
			5064: {Number: 5064, Name: "Aperture", LastUpdated: 1_700_000_000_000},
		},
		ratings: map[model.TeamNumber]types.TeamRating{
			5064: {Number: 5064, Elo: 1536, EPA: types.EPA{Total: 61.5}, MatchesPlayed: 8},
		},
	}
}

func (f *fakeDeps) GetTeam(ctx context.Context, n model.TeamNumber, reload bool) (*model.TeamRecord, error) {
	if rec, ok := f.teams[n]; ok {
		return &rec, nil
	}
	return nil, fmt.Errorf("%w: team %s", cache.ErrNotFound, n)
}

func (f *fakeDeps) GetTeams(ctx context.Context, ns []model.TeamNumber) ([]model.TeamRecord, error) {
	out := make([]model.TeamRecord, 0, len(ns))
	for _, n := range ns {
		if rec, ok := f.teams[n]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeDeps) GetEvent(ctx context.Context, code string, reload bool) (*model.EventRecord, error) {
	if model.ParseEventCode(code) == "USNYC" {
		return &model.EventRecord{Code: "USNYC", Name: "NYC Champs"}, nil
	}
	return nil, fmt.Errorf("%w: event %s", cache.ErrNotFound, code)
}

func (f *fakeDeps) GetEvents(ctx context.Context, codes []string) ([]model.EventRecord, error) {
	return []model.EventRecord{{Code: "USNYC"}}, nil
}

func (f *fakeDeps) LoadedTeams(ctx context.Context) ([]model.CacheEntryInfo, error) {
	return []model.CacheEntryInfo{{Key: "5064", Name: "Aperture", LastUpdated: time.UnixMilli(1_700_000_000_000)}}, nil
}

func (f *fakeDeps) LoadedEvents(ctx context.Context) ([]model.CacheEntryInfo, error) {
	return []model.CacheEntryInfo{}, nil
}

func (f *fakeDeps) PruneCache(ctx context.Context) (int, error) { return 3, nil }

func (f *fakeDeps) RunRatings(ctx context.Context) (types.RegionSummary, error) {
	f.ran = true
	return types.RegionSummary{Teams: 1, Events: 1, Matches: 10, LoadedMatches: 9, Accuracy: 0.78}, nil
}

func (f *fakeDeps) RegionSummary(ctx context.Context) (types.RegionSummary, error) {
	if !f.ran {
		return types.RegionSummary{}, service.ErrNoRatings
	}
	return types.RegionSummary{Teams: 1}, nil
}

func (f *fakeDeps) TeamRating(ctx context.Context, n model.TeamNumber) (types.TeamRating, error) {
	if r, ok := f.ratings[n]; ok {
		return r, nil
	}
	return types.TeamRating{}, fmt.Errorf("%w: team %s", service.ErrUnknownTeam, n)
}

func (f *fakeDeps) TeamRatings(ctx context.Context) ([]types.TeamRating, error) {
	return []types.TeamRating{f.ratings[5064]}, nil
}

func (f *fakeDeps) MatchPrediction(ctx context.Context, code string, id model.MatchID) (types.MatchPrediction, error) {
	if model.ParseEventCode(code) != "USNYC" || id != 7 {
		return types.MatchPrediction{}, fmt.Errorf("%w: match %d", service.ErrUnknownMatch, id)
	}
	return types.MatchPrediction{EventCode: "USNYC", MatchID: 7, RedWinProbability: 0.62, Stored: true}, nil
}

func (f *fakeDeps) PredictMatch(ctx context.Context, r1, r2, b1, b2 model.TeamNumber) (float64, error) {
	return 0.5, nil
}

func (f *fakeDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestServer() (*httptest.Server, *fakeDeps) {
	deps := newFakeDeps()
	srv := NewServer(deps, deps)
	mux := http.NewServeMux()
	srv.Register(context.Background(), mux)
	return httptest.NewServer(mux), deps
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec // test URL
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		_ = json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode
}

func TestTeamRoutes(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts, _ := newTestServer()
		defer ts.Close()

		Convey("GET /v1/teams/{number} returns the cached record", func() {
			var rec model.TeamRecord
			code := getJSON(t, ts.URL+"/v1/teams/5064", &rec)
			So(code, ShouldEqual, http.StatusOK)
			So(rec.Name, ShouldEqual, "Aperture")
		})

		Convey("GET /v1/teams/{number} for an unknown team returns 404", func() {
			var er errorResponse
			code := getJSON(t, ts.URL+"/v1/teams/99999", &er)
			So(code, ShouldEqual, http.StatusNotFound)
			So(er.Code, ShouldEqual, "not_found")
		})

		Convey("GET /v1/teams/{number} with a non-numeric id returns 400", func() {
			code := getJSON(t, ts.URL+"/v1/teams/abc", nil)
			So(code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET /v1/teams without numbers returns 400", func() {
			code := getJSON(t, ts.URL+"/v1/teams", nil)
			So(code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET /v1/teams with numbers returns the batch", func() {
			var recs []model.TeamRecord
			code := getJSON(t, ts.URL+"/v1/teams?numbers=5064", &recs)
			So(code, ShouldEqual, http.StatusOK)
			So(len(recs), ShouldEqual, 1)
		})
	})
}

func TestRatingRoutes(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts, deps := newTestServer()
		defer ts.Close()

		Convey("GET /v1/ratings/summary before any run returns 409", func() {
			var er errorResponse
			code := getJSON(t, ts.URL+"/v1/ratings/summary", &er)
			So(code, ShouldEqual, http.StatusConflict)
			So(er.Code, ShouldEqual, "no_ratings")
		})

		Convey("POST /v1/ratings/run triggers a run", func() {
			resp, err := http.Post(ts.URL+"/v1/ratings/run", "application/json", nil)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			var summary types.RegionSummary
			So(json.NewDecoder(resp.Body).Decode(&summary), ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(summary.LoadedMatches, ShouldEqual, 9)
			So(deps.ran, ShouldBeTrue)
		})

		Convey("GET /v1/ratings/{number} returns the rating", func() {
			var r types.TeamRating
			code := getJSON(t, ts.URL+"/v1/ratings/5064", &r)
			So(code, ShouldEqual, http.StatusOK)
			So(r.Elo, ShouldEqual, 1536)
		})

		Convey("GET /v1/ratings/run as a GET returns 404", func() {
			code := getJSON(t, ts.URL+"/v1/ratings/run", nil)
			So(code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPredictionRoutes(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts, _ := newTestServer()
		defer ts.Close()

		Convey("GET /v1/predictions/{code}/{id} returns the stored prediction", func() {
			var p types.MatchPrediction
			code := getJSON(t, ts.URL+"/v1/predictions/USNYC/7", &p)
			So(code, ShouldEqual, http.StatusOK)
			So(p.RedWinProbability, ShouldEqual, 0.62)
			So(p.Stored, ShouldBeTrue)
		})

		Convey("GET /v1/predictions with a malformed path returns 400", func() {
			code := getJSON(t, ts.URL+"/v1/predictions/USNYC", nil)
			So(code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET /v1/predict with all four teams returns a probability", func() {
			var p hypotheticalResponse
			code := getJSON(t, ts.URL+"/v1/predict?red1=1&red2=2&blue1=3&blue2=4", &p)
			So(code, ShouldEqual, http.StatusOK)
			So(p.RedWinProbability, ShouldEqual, 0.5)
		})

		Convey("POST /v1/predict is accepted as well", func() {
			resp, err := http.Post(ts.URL+"/v1/predict?red1=1&red2=2&blue1=3&blue2=4", "application/json", nil)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			var p hypotheticalResponse
			So(json.NewDecoder(resp.Body).Decode(&p), ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(p.RedWinProbability, ShouldEqual, 0.5)
		})

		Convey("GET /v1/predict with a missing team returns 400", func() {
			code := getJSON(t, ts.URL+"/v1/predict?red1=1&red2=2&blue1=3", nil)
			So(code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestCacheRoutes(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts, _ := newTestServer()
		defer ts.Close()

		Convey("GET /v1/cache/teams lists cached teams", func() {
			var entries []model.CacheEntryInfo
			code := getJSON(t, ts.URL+"/v1/cache/teams", &entries)
			So(code, ShouldEqual, http.StatusOK)
			So(len(entries), ShouldEqual, 1)
			So(entries[0].Key, ShouldEqual, "5064")
		})

		Convey("POST /v1/cache/prune reports removals", func() {
			resp, err := http.Post(ts.URL+"/v1/cache/prune", "application/json", nil)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			var pr pruneResponse
			So(json.NewDecoder(resp.Body).Decode(&pr), ShouldBeNil)
			So(pr.Removed, ShouldEqual, 3)
		})

		Convey("GET /v1/cache/prune returns 404", func() {
			code := getJSON(t, ts.URL+"/v1/cache/prune", nil)
			So(code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestStatsRoute(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts, _ := newTestServer()
		defer ts.Close()

		Convey("GET /stats returns the service stats", func() {
			var stats map[string]interface{}
			code := getJSON(t, ts.URL+"/stats", &stats)
			So(code, ShouldEqual, http.StatusOK)
			So(stats["started"], ShouldEqual, true)
		})
	})
}
