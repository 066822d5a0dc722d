package metrics_test

import (
	"testing"

	"github.com/gamekeep/gamekeep/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a metrics manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		m := metrics.NewManager(
			metrics.WithPrometheusRegistry(registry),
			metrics.WithNamespace("testns"),
			metrics.WithSubsystem("testsub"),
		)

		Convey("Then construction registers the metric families", func() {
			So(m, ShouldNotBeNil)

			families, err := registry.Gather()
			So(err, ShouldBeNil)
			// Counters start hidden until first increment, but histograms and
			// gauges register immediately.
			So(len(families), ShouldBeGreaterThan, 0)
		})

		Convey("When two managers share a registry", func() {
			Convey("Then duplicate registration panics, so each registry gets one manager", func() {
				So(func() {
					metrics.NewManager(metrics.WithPrometheusRegistry(registry))
				}, ShouldPanic)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the package-level recorders never panic", func() {
			So(func() {
				metrics.RecordScoreSubmission()
				metrics.RecordScoreUnchanged()
				metrics.RecordRankQuery()
				metrics.RecordCounterIncrement()
				metrics.RecordCounterRead()
				metrics.RecordWindowReset("leaderboard")
				metrics.RecordWindowReset("counter")
				metrics.RecordStoreOpLatency("top_scores", 1.5)
				metrics.RecordStoreError("top_scores")
				metrics.RecordHTTPRequest("scores", "POST", "200")
				metrics.RecordHTTPRequestDuration("scores", "POST", "200", 3.2)
				metrics.RecordErrorByEndpoint("scores", "POST", "client_error")
				metrics.UpdateTrackedScoreRecords(42)
				metrics.UpdateSystemMemoryUsage(1 << 20)
				metrics.UpdateSystemGoroutineCount(8)
				metrics.RecordSystemGCPauseTime(0.1)
			}, ShouldNotPanic)
		})

		Convey("Then the shared registry is available for the health endpoint", func() {
			So(metrics.GetRegistry(), ShouldNotBeNil)
		})
	})
}
