// Package metrics provides Prometheus metrics for the SPPB scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Case status label values.
const (
	StatusPass  = "PASS"
	StatusFail  = "FAIL"
	StatusError = "ERROR"
	// StatusScored is used when a case has no expected score to verify against.
	StatusScored = "SCORED"
)

// Metric name prefix and latency buckets of the process-wide manager.
const (
	Namespace = "sppb"
	Subsystem = "scoring"
)

// LatencyBucketsMS covers sub-millisecond lookups up to a minute-long
// generation call.
var LatencyBucketsMS = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 120000} //nolint:gochecknoglobals // shared bucket layout

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Case pipeline
	casesProcessed  *prometheus.CounterVec
	compositeScores prometheus.Histogram
	caseLatency     prometheus.Histogram

	// Rule repository
	repositoryQueryLatency *prometheus.HistogramVec
	repositoryErrors       *prometheus.CounterVec
	ruleFallbacks          *prometheus.CounterVec
	ruleIssues             prometheus.Gauge

	// Report generation
	generationLatency  prometheus.Histogram
	generationFailures prometheus.Counter
	auditFindings      *prometheus.CounterVec

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served at /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(
		WithPrometheusRegistry(customRegistry),
		WithNamespace(Namespace),
		WithSubsystem(Subsystem),
		WithHistogramBuckets(LatencyBucketsMS),
	)
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.casesProcessed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cases_processed_total",
		Help:      "Cases processed, by verification status",
	}, []string{"status"})

	m.compositeScores = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "composite_score",
		Help:      "Distribution of computed composite scores",
		Buckets:   prometheus.LinearBuckets(0, 1, 13),
	})

	m.caseLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "case_latency_milliseconds",
		Help:      "End-to-end case latency in milliseconds, generation included",
		Buckets:   m.histogramBuckets,
	})

	m.repositoryQueryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_query_latency_milliseconds",
		Help:      "Rule repository query latency in milliseconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
	}, []string{"lookup"})

	m.repositoryErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_errors_total",
		Help:      "Rule repository faults (store unavailable), by lookup",
	}, []string{"lookup"})

	m.ruleFallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rule_fallbacks_total",
		Help:      "Lookups that matched no rule and fell back to the default, by lookup",
	}, []string{"lookup"})

	m.ruleIssues = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rule_issues",
		Help:      "Coverage issues found by the last rule table validation",
	})

	m.generationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "generation_latency_milliseconds",
		Help:      "Report generation round-trip latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.generationFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "generation_failures_total",
		Help:      "Report generation calls that failed",
	})

	m.auditFindings = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "report_audit_findings_total",
		Help:      "Post-generation audit findings, by kind",
	}, []string{"kind"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordCase counts a processed case under its status.
func RecordCase(status string) {
	globalManager.casesProcessed.WithLabelValues(status).Inc()
}

// RecordCompositeScore observes a computed composite score.
func RecordCompositeScore(score int) {
	globalManager.compositeScores.Observe(float64(score))
}

// RecordCaseLatency records end-to-end case latency in milliseconds.
func RecordCaseLatency(latencyMs float64) {
	globalManager.caseLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records the latency of one rule lookup.
func RecordRepositoryQueryLatency(lookup string, latencyMs float64) {
	globalManager.repositoryQueryLatency.WithLabelValues(lookup).Observe(latencyMs)
}

// RecordRepositoryError counts a store fault for a lookup.
func RecordRepositoryError(lookup string) {
	globalManager.repositoryErrors.WithLabelValues(lookup).Inc()
}

// RecordRuleFallback counts a lookup that matched no rule.
func RecordRuleFallback(lookup string) {
	globalManager.ruleFallbacks.WithLabelValues(lookup).Inc()
}

// UpdateRuleIssues sets the number of issues found by rule validation.
func UpdateRuleIssues(count int) {
	globalManager.ruleIssues.Set(float64(count))
}

// RecordGenerationLatency records a generation round-trip in milliseconds.
func RecordGenerationLatency(latencyMs float64) {
	globalManager.generationLatency.Observe(latencyMs)
}

// RecordGenerationFailure increments the generation failures counter.
func RecordGenerationFailure() {
	globalManager.generationFailures.Inc()
}

// RecordAuditFinding counts a post-generation audit finding.
func RecordAuditFinding(kind string) {
	globalManager.auditFindings.WithLabelValues(kind).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the registry every global metric is registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
