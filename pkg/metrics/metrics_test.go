package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with nil histogram buckets", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording cache metrics", func() {
			So(func() {
				RecordCacheHit("team")
				RecordCacheMiss("event")
				RecordCacheReload("team")
				UpdateCachedCounts(10, 3)
			}, ShouldNotPanic)
		})

		Convey("When recording upstream metrics", func() {
			So(func() {
				RecordUpstreamRequest("teams")
				RecordUpstreamError("teams")
				ObserveUpstreamLatency(120.0)
			}, ShouldNotPanic)
		})

		Convey("When recording store metrics", func() {
			So(func() {
				ObserveStoreSaveDuration(5.0)
				ObserveStoreLoadDuration(2.0)
			}, ShouldNotPanic)
		})

		Convey("When recording rating metrics", func() {
			So(func() {
				ObserveReplayDuration(250.0)
				AddReplayMatches(64)
				SetPredictionAccuracy(0.7)
				UpdateRegionSize(40, 4)
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP metrics", func() {
			So(func() {
				RecordHTTPRequest("/healthz", "GET", "200")
				RecordHTTPRequestDuration("/v1/teams", "GET", "200", 15.0)
				RecordHTTPRequest("", "", "200")
			}, ShouldNotPanic)
		})

		Convey("When recording edge values", func() {
			So(func() {
				UpdateCachedCounts(0, 0)
				SetPredictionAccuracy(0.0)
				ObserveReplayDuration(0.0)
				AddReplayMatches(0)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent metric recording", t, func() {
		done := make(chan bool, 10)

		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					RecordCacheHit("team")
					UpdateCachedCounts(j, j)
					ObserveUpstreamLatency(float64(j))
					RecordHTTPRequest("/v1/teams", "GET", "200")
				}
				done <- true
			}()
		}

		for i := 0; i < 10; i++ {
			<-done
		}

		Convey("Then concurrent access completes without panics", func() {
			So(true, ShouldBeTrue)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the package registry", t, func() {
		So(GetRegistry(), ShouldNotBeNil)

		Convey("Gathering succeeds after recording", func() {
			RecordCacheHit("team")
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
