package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for Quartermaster
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Workflow Metrics
	WorkflowsStarted  prometheus.CounterVec
	WorkflowsFinished prometheus.CounterVec
	SessionsActive    prometheus.Gauge
	SessionsExpired   prometheus.Counter

	// Roster Metrics
	RosterCommitsTotal prometheus.CounterVec
	BadgeSyncFailures  prometheus.Counter
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quartermaster_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quartermaster_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "quartermaster_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		WorkflowsStarted: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quartermaster_workflows_started_total",
				Help: "Workflow sessions started, by workflow kind",
			},
			[]string{"kind"},
		),
		WorkflowsFinished: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quartermaster_workflows_finished_total",
				Help: "Workflow sessions finished, by kind and terminal outcome",
			},
			[]string{"kind", "outcome"},
		),
		SessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "quartermaster_sessions_active",
				Help: "Workflow sessions currently in flight",
			},
		),
		SessionsExpired: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "quartermaster_sessions_expired_total",
				Help: "Sessions torn down by the inactivity ladder",
			},
		),

		RosterCommitsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quartermaster_roster_commits_total",
				Help: "Committed roster transactions, by operation",
			},
			[]string{"operation"},
		),
		BadgeSyncFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "quartermaster_badge_sync_failures_total",
				Help: "Best-effort badge operations that failed and were skipped",
			},
		),
	}
}
