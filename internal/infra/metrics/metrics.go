// Package metrics exposes ebphd's Prometheus metrics: counters, gauges,
// and histograms over the profile engine, the event bus, and persistence
// (SPEC_FULL.md MODULE: metrics).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Profiles ───────────────────────────────────────────────────────────────

// ProfilesTotal tracks the number of distinct profiles currently registered,
// by status.
var ProfilesTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "ebph",
	Name:      "profiles_total",
	Help:      "Number of registered profiles by status.",
}, []string{"status"})

// ProfilesCreated tracks how many new_profile events have fired since start.
var ProfilesCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ebph",
	Name:      "profiles_created_total",
	Help:      "Total profiles created since daemon start.",
})

// TasksActive tracks the number of tasks the registry is currently tracking.
var TasksActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "ebph",
	Name:      "tasks_active",
	Help:      "Number of task states currently tracked.",
})

// ─── Anomaly engine ─────────────────────────────────────────────────────────

// CallsProcessed tracks calls processed by the anomaly engine, partitioned
// by the enforcement decision (PERMIT/DENY) returned for them.
var CallsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ebph",
	Name:      "calls_processed_total",
	Help:      "Calls processed by the anomaly engine, by enforcement decision.",
}, []string{"status"})

// AnomaliesDetected tracks LPT misses observed while FROZEN/NORMAL.
var AnomaliesDetected = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ebph",
	Name:      "anomalies_detected_total",
	Help:      "Total LPT-miss anomalies detected.",
})

// EnforcementDenials tracks calls denied while ENFORCING was active.
var EnforcementDenials = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ebph",
	Name:      "enforcement_denials_total",
	Help:      "Total calls denied under active enforcement.",
})

// LFCHistogram tracks the distribution of locality-frame-count values
// observed at tolerize time.
var LFCHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "ebph",
	Name:      "locality_frame_count",
	Help:      "Observed locality frame counts at the moment a task tolerized.",
	Buckets:   prometheus.LinearBuckets(0, 8, 16),
})

// ─── Transitions ────────────────────────────────────────────────────────────

// StateTransitions tracks profile state-machine transitions by kind.
var StateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ebph",
	Name:      "state_transitions_total",
	Help:      "Profile state machine transitions, by kind (promote/normalize/sensitize/tolerize).",
}, []string{"kind"})

// ─── Event bus ──────────────────────────────────────────────────────────────

// EventBusDropped tracks events dropped because the bus buffer was full.
var EventBusDropped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ebph",
	Name:      "eventbus_dropped_total",
	Help:      "Total events dropped because the event bus buffer was full.",
})

// EventsPublished tracks events actually delivered onto the bus, by kind.
var EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ebph",
	Name:      "events_published_total",
	Help:      "Total events published onto the event bus, by event kind.",
}, []string{"kind"})

// ─── Persistence ────────────────────────────────────────────────────────────

// SaveLatency tracks how long a SaveAll tick takes.
var SaveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "ebph",
	Name:      "persist_save_latency_seconds",
	Help:      "Duration of a full SaveAll persistence tick.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
})

// DiskUsageBytes tracks the total size of persisted profile blobs.
var DiskUsageBytes = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "ebph",
	Name:      "persist_disk_usage_bytes",
	Help:      "Total size of persisted profile blobs on disk.",
})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "ebph",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})
