// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Alignment metrics
	GamesAligned      prometheus.Counter
	SnapshotsEmitted  prometheus.Counter
	AlignmentFlags    *prometheus.CounterVec
	AlignmentDuration prometheus.Histogram

	// Simulation metrics
	UnitsSimulated    prometheus.Counter
	TradesSimulated   prometheus.Counter
	UnitRetries       prometheus.Counter
	UnitFailures      prometheus.Counter
	UnitDuration      prometheus.Histogram
	DiagEvents        *prometheus.CounterVec
	GridRunsTotal     *prometheus.CounterVec
	GridRunDuration   prometheus.Histogram
	ActiveGridWorkers prometheus.Gauge

	// Feed metrics
	FeedMessagesReceived prometheus.Counter
	FeedReconnects       prometheus.Counter
	FeedMessageLatency   prometheus.Histogram

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Reporting metrics
	ReportsGenerated     prometheus.Counter
	ReportCacheEvictions *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "sports_edge_lab"
	}

	return &Metrics{
		// Alignment metrics
		GamesAligned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alignment",
			Name:      "games_aligned_total",
			Help:      "Total number of games aligned into snapshot streams",
		}),
		SnapshotsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alignment",
			Name:      "snapshots_emitted_total",
			Help:      "Total number of snapshots emitted by alignment",
		}),
		AlignmentFlags: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alignment",
			Name:      "flags_total",
			Help:      "Total number of alignment flags by category",
		}, []string{"category"}),
		AlignmentDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "alignment",
			Name:      "duration_seconds",
			Help:      "Per-game alignment duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Simulation metrics
		UnitsSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "units_simulated_total",
			Help:      "Total number of (combination, game) units simulated",
		}),
		TradesSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "trades_simulated_total",
			Help:      "Total number of synthetic trades produced",
		}),
		UnitRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "unit_retries_total",
			Help:      "Total number of simulation unit retries",
		}),
		UnitFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "unit_failures_total",
			Help:      "Total number of simulation units failed after retry",
		}),
		UnitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "unit_duration_seconds",
			Help:      "Per-unit simulation duration in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
		DiagEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "diag_events_total",
			Help:      "Total number of diagnostic events by category",
		}, []string{"category"}),
		GridRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gridsearch",
			Name:      "runs_total",
			Help:      "Total number of grid-search runs by status",
		}, []string{"status"}),
		GridRunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gridsearch",
			Name:      "run_duration_seconds",
			Help:      "Full grid-search run duration in seconds",
			Buckets:   []float64{1, 5, 15, 60, 300, 900, 1800, 3600},
		}),
		ActiveGridWorkers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gridsearch",
			Name:      "active_workers",
			Help:      "Current number of active grid-search workers",
		}),

		// Feed metrics
		FeedMessagesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "messages_received_total",
			Help:      "Total number of market feed messages received",
		}),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "reconnects_total",
			Help:      "Total number of market feed reconnects",
		}),
		FeedMessageLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "message_latency_seconds",
			Help:      "Market feed message handling latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Reporting metrics
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reporting",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),
		ReportCacheEvictions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reporting",
			Name:      "cache_evictions_total",
			Help:      "Total number of report cache evictions by trigger",
		}, []string{"trigger"}),
	}
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordGameAligned records one aligned game and its snapshot count.
func RecordGameAligned(snapshots int, seconds float64) {
	DefaultMetrics.GamesAligned.Inc()
	DefaultMetrics.SnapshotsEmitted.Add(float64(snapshots))
	DefaultMetrics.AlignmentDuration.Observe(seconds)
}

// RecordAlignmentFlag records one alignment flag.
func RecordAlignmentFlag(category string) {
	DefaultMetrics.AlignmentFlags.WithLabelValues(category).Inc()
}

// RecordUnitSimulated records one completed simulation unit.
func RecordUnitSimulated(trades int, seconds float64) {
	DefaultMetrics.UnitsSimulated.Inc()
	DefaultMetrics.TradesSimulated.Add(float64(trades))
	DefaultMetrics.UnitDuration.Observe(seconds)
}

// RecordUnitRetry increments the unit retry counter.
func RecordUnitRetry() {
	DefaultMetrics.UnitRetries.Inc()
}

// RecordUnitFailure increments the unit failure counter.
func RecordUnitFailure() {
	DefaultMetrics.UnitFailures.Inc()
}

// RecordDiagEvent records one diagnostic event.
func RecordDiagEvent(category string) {
	DefaultMetrics.DiagEvents.WithLabelValues(category).Inc()
}

// RecordGridRun records a grid-search run.
func RecordGridRun(status string, durationSeconds float64) {
	DefaultMetrics.GridRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.GridRunDuration.Observe(durationSeconds)
}

// RecordFeedMessage records one handled market feed message.
func RecordFeedMessage(seconds float64) {
	DefaultMetrics.FeedMessagesReceived.Inc()
	DefaultMetrics.FeedMessageLatency.Observe(seconds)
}

// RecordFeedReconnect increments the feed reconnect counter.
func RecordFeedReconnect() {
	DefaultMetrics.FeedReconnects.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordReportGenerated increments the report counter.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}

// RecordCacheEvictions records report cache evictions for a trigger.
func RecordCacheEvictions(trigger string, count int) {
	DefaultMetrics.ReportCacheEvictions.WithLabelValues(trigger).Add(float64(count))
}

// Handler returns the HTTP handler exposing the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
