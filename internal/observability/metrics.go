package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Ingest & Analytics Metrics ─────────────────────────────────────────────

// IngestDuration tracks store_schedule wall time (parse + validate +
// store + populate).
var IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "scheduler_analytics",
	Subsystem: "ingest",
	Name:      "duration_seconds",
	Help:      "Wall time of a full store_schedule workflow, in seconds.",
	Buckets:   prometheus.DefBuckets,
})

// IngestBlocksTotal tracks total blocks ingested across all schedules.
var IngestBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "scheduler_analytics",
	Subsystem: "ingest",
	Name:      "blocks_total",
	Help:      "Total scheduling blocks ingested.",
})

// AnalyticsDuration tracks Engine.Populate wall time, labeled by whether
// the visibility-bin grid was computed.
var AnalyticsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "scheduler_analytics",
	Subsystem: "analytics",
	Name:      "duration_seconds",
	Help:      "Wall time of analytics population, in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"skip_time_bins"})

// ─── Feasibility Metrics ────────────────────────────────────────────────────

// FeasibilitySolveDuration tracks check_feasibility wall time.
var FeasibilitySolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "scheduler_analytics",
	Subsystem: "feasibility",
	Name:      "solve_seconds",
	Help:      "Wall time of a feasibility check, in seconds.",
	Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
})

// FeasibilityOutcomeTotal tracks outcomes by status (FEASIBLE/INFEASIBLE/UNKNOWN).
var FeasibilityOutcomeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "scheduler_analytics",
	Subsystem: "feasibility",
	Name:      "outcome_total",
	Help:      "Total feasibility checks by outcome status.",
}, []string{"status"})

// ─── Repository Metrics ─────────────────────────────────────────────────────

// RepositoryRetries tracks retry attempts on transport errors.
var RepositoryRetries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "scheduler_analytics",
	Subsystem: "repository",
	Name:      "retries_total",
	Help:      "Total repository operation retries by operation name.",
}, []string{"operation"})

// JobsActive tracks currently running/queued jobs.
var JobsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "scheduler_analytics",
	Subsystem: "jobs",
	Name:      "active",
	Help:      "Number of jobs currently queued or running.",
})
