package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should use the service namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "bestxi")
				So(manager.subsystem, ShouldEqual, "lineup")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("test_prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metric names carry the prefix", func() {
				manager.weightRejections.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, mf := range families {
					if mf.GetName() == "test_namespace_test_subsystem_test_prefix_weight_rejections_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When registering twice on the same registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should panic on duplicate registration", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording selections", func() {
			before := testutil.ToFloat64(globalManager.selectionsTotal.WithLabelValues("true"))
			RecordSelection(true, 0.4)
			RecordSelection(false, 0.2)

			Convey("Then counters are labelled by legality", func() {
				So(testutil.ToFloat64(globalManager.selectionsTotal.WithLabelValues("true")), ShouldEqual, before+1)
			})
		})

		Convey("When recording substitutions", func() {
			before := testutil.ToFloat64(globalManager.substitutionsTotal.WithLabelValues("preferred"))
			RecordSubstitution("preferred")
			So(testutil.ToFloat64(globalManager.substitutionsTotal.WithLabelValues("preferred")), ShouldEqual, before+1)
		})

		Convey("When recording stat writes", func() {
			writes := testutil.ToFloat64(globalManager.statWrites)
			oor := testutil.ToFloat64(globalManager.statOutOfRange)
			RecordStatWrite(false)
			RecordStatWrite(true)

			So(testutil.ToFloat64(globalManager.statWrites), ShouldEqual, writes+2)
			So(testutil.ToFloat64(globalManager.statOutOfRange), ShouldEqual, oor+1)
		})

		Convey("When updating gauges", func() {
			UpdateTotalTeams(3)
			UpdateTotalPlayers(40)
			UpdateTotalStatValues(200)

			So(testutil.ToFloat64(globalManager.totalTeams), ShouldEqual, 3)
			So(testutil.ToFloat64(globalManager.totalPlayers), ShouldEqual, 40)
			So(testutil.ToFloat64(globalManager.totalStatValues), ShouldEqual, 200)
		})

		Convey("When recording the remaining metrics", func() {
			So(func() {
				RecordPositionCoercion()
				RecordCompositesComputed(16)
				RecordIllegalFormation()
				RecordWeightWrite()
				RecordWeightRejection()
				RecordRepositoryUpdateLatency(0.01)
				RecordRepositoryQueryLatency(0.02)
				RecordHTTPRequest("lineup", "POST", "200")
				RecordHTTPRequestDuration("lineup", "POST", "200", 1.5)
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("lineup", "POST", "client_error")
				RecordErrorLatency("http", "client_error", 1)
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("When gathering the registry", func() {
			_, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
		})
	})
}
