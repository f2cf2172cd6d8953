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
	// Computation metrics
	AspectScansTotal     prometheus.Counter
	AspectFallbacksTotal prometheus.Counter
	BodiesSkipped        *prometheus.CounterVec
	DayScoresComputed    prometheus.Counter

	// Generator metrics
	GenerationRunsTotal    *prometheus.CounterVec
	GenerationDuration     prometheus.Histogram
	CandidatesFound        *prometheus.CounterVec
	CandidatesDeduplicated prometheus.Counter
	LastSuccessfulRun      prometheus.Gauge

	// Persistence metrics
	EventsPersisted     *prometheus.CounterVec
	PersistenceFailures *prometheus.CounterVec
	DBQueryDuration     *prometheus.HistogramVec
	DBQueryErrors       *prometheus.CounterVec
	PublishedEvents     *prometheus.CounterVec

	// Filter metrics
	FilterEvaluations *prometheus.CounterVec

	// Transport metrics
	WSClientsConnected prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "electional"
	}

	return &Metrics{
		AspectScansTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aspects",
			Name:      "scans_total",
			Help:      "Total number of instants scanned for aspects",
		}),
		AspectFallbacksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aspects",
			Name:      "fallbacks_total",
			Help:      "Total number of days served with the illustrative fallback aspect set",
		}),
		BodiesSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ephemeris",
			Name:      "bodies_skipped_total",
			Help:      "Total number of body lookups skipped after an ephemeris failure",
		}, []string{"body"}),
		DayScoresComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "day_scores_computed_total",
			Help:      "Total number of calendar day scores computed",
		}),

		GenerationRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "runs_total",
			Help:      "Total number of generation runs by terminal state",
		}, []string{"state"}),
		GenerationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "duration_seconds",
			Help:      "Generation run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		CandidatesFound: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "candidates_found_total",
			Help:      "Total number of candidate instants clearing the threshold by timing method",
		}, []string{"method"}),
		CandidatesDeduplicated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "candidates_deduplicated_total",
			Help:      "Total number of candidates dropped as duplicates of existing events",
		}),
		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_generation_timestamp",
			Help:      "Unix timestamp of last completed generation run",
		}),

		EventsPersisted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "events_persisted_total",
			Help:      "Total number of events by terminal persistence state",
		}, []string{"state"}),
		PersistenceFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "persistence_failures_total",
			Help:      "Total number of remote persistence failures by operation",
		}, []string{"operation"}),
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
		PublishedEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "messaging",
			Name:      "published_total",
			Help:      "Total number of published messages by status",
		}, []string{"status"}),

		FilterEvaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "filter",
			Name:      "evaluations_total",
			Help:      "Total number of filter pipeline evaluations by scope",
		}, []string{"scope"}),

		WSClientsConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "ws_clients_connected",
			Help:      "Number of connected generation stream clients",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordAspectScan increments the aspect scan counter.
func RecordAspectScan() {
	DefaultMetrics.AspectScansTotal.Inc()
}

// RecordAspectFallback increments the fallback counter.
func RecordAspectFallback() {
	DefaultMetrics.AspectFallbacksTotal.Inc()
}

// RecordBodySkipped records a body excluded from a scan.
func RecordBodySkipped(body string) {
	DefaultMetrics.BodiesSkipped.WithLabelValues(body).Inc()
}

// RecordDayScore increments the day score counter.
func RecordDayScore() {
	DefaultMetrics.DayScoresComputed.Inc()
}

// RecordCandidate records a candidate found by a timing method.
func RecordCandidate(method string) {
	DefaultMetrics.CandidatesFound.WithLabelValues(method).Inc()
}

// RecordDeduplicated records candidates dropped as duplicates.
func RecordDeduplicated(n int) {
	DefaultMetrics.CandidatesDeduplicated.Add(float64(n))
}

// RecordGenerationRun records a finished generation run.
func RecordGenerationRun(state string, durationSeconds float64, unixNow int64) {
	DefaultMetrics.GenerationRunsTotal.WithLabelValues(state).Inc()
	DefaultMetrics.GenerationDuration.Observe(durationSeconds)
	if state == "completed" {
		DefaultMetrics.LastSuccessfulRun.Set(float64(unixNow))
	}
}

// RecordPersisted records events reaching a terminal persistence state.
func RecordPersisted(state string, n int) {
	DefaultMetrics.EventsPersisted.WithLabelValues(state).Add(float64(n))
}

// RecordPersistenceFailure records a remote persistence failure.
func RecordPersistenceFailure(operation string) {
	DefaultMetrics.PersistenceFailures.WithLabelValues(operation).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordPublish records a message publish attempt.
func RecordPublish(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.PublishedEvents.WithLabelValues(status).Inc()
}

// RecordFilterEvaluation records a filter pipeline evaluation.
func RecordFilterEvaluation(scope string) {
	DefaultMetrics.FilterEvaluations.WithLabelValues(scope).Inc()
}

// UpdateWSClients sets the connected stream client gauge.
func UpdateWSClients(n int) {
	DefaultMetrics.WSClientsConnected.Set(float64(n))
}
