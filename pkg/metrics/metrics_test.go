package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should register its collectors on that registry", func() {
				So(manager, ShouldNotBeNil)
				manager.casesProcessed.WithLabelValues(StatusPass).Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				So(families[0].GetName(), ShouldStartWith, "test_unit_")
			})
		})

		Convey("When empty options are passed", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldBeEmpty)
				So(manager.subsystem, ShouldBeEmpty)
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})

		Convey("When inspecting the process-wide manager", func() {
			Convey("Then it carries the service prefix and latency buckets", func() {
				So(globalManager.namespace, ShouldEqual, Namespace)
				So(globalManager.subsystem, ShouldEqual, Subsystem)
				So(globalManager.histogramBuckets, ShouldResemble, LatencyBucketsMS)

				RecordCase(StatusScored)
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "sppb_scoring_cases_processed_total")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording cases", func() {
			before := testutil.ToFloat64(globalManager.casesProcessed.WithLabelValues(StatusFail))
			RecordCase(StatusFail)
			RecordCase(StatusFail)

			Convey("Then the status counter increases", func() {
				after := testutil.ToFloat64(globalManager.casesProcessed.WithLabelValues(StatusFail))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When recording rule fallbacks", func() {
			before := testutil.ToFloat64(globalManager.ruleFallbacks.WithLabelValues("score"))
			RecordRuleFallback("score")

			Convey("Then the lookup counter increases", func() {
				after := testutil.ToFloat64(globalManager.ruleFallbacks.WithLabelValues("score"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording generation failures", func() {
			before := testutil.ToFloat64(globalManager.generationFailures)
			RecordGenerationFailure()

			Convey("Then the counter increases", func() {
				So(testutil.ToFloat64(globalManager.generationFailures)-before, ShouldEqual, 1)
			})
		})

		Convey("When updating the rule issue gauge", func() {
			UpdateRuleIssues(3)

			Convey("Then the gauge holds the last value", func() {
				So(testutil.ToFloat64(globalManager.ruleIssues), ShouldEqual, 3)
			})
			UpdateRuleIssues(0)
		})

		Convey("When recording latencies and HTTP metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordCompositeScore(6)
					RecordCaseLatency(12.5)
					RecordRepositoryQueryLatency("interpretation", 0.3)
					RecordRepositoryError("meaning")
					RecordGenerationLatency(850)
					RecordAuditFinding("missing_fact")
					RecordHTTPRequest("assess", "POST", "200")
					RecordHTTPRequestDuration("assess", "POST", "200", 4)
				}, ShouldNotPanic)
			})
		})

		Convey("When gathering the custom registry", func() {
			RecordCase(StatusPass)
			families, err := GetRegistry().Gather()

			Convey("Then sppb metrics are exposed", func() {
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "sppb_scoring_cases_processed_total")
			})
		})
	})
}
