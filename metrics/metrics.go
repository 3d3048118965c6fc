// Package metrics holds the process-wide Prometheus collectors every
// component registers into on the default registry, grounded on the
// teacher corpus's promauto-based registration style (99souls-ariadne's
// telemetry/metrics package, simplified from its dynamic provider down to
// the fixed metric set this service actually emits) per SPEC_FULL.md's
// metrics section.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SchedulerRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flood_scheduler_runs_total",
		Help: "Total collection-fusion cycles run.",
	})
	SchedulerFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flood_scheduler_failures_total",
		Help: "Collection cycles that ended with an upstream error.",
	})
	SourceObservations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flood_source_observations_total",
		Help: "Observations emitted per source per cycle.",
	}, []string{"source"})
	SourceParseErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flood_source_parse_errors_total",
		Help: "Parse errors encountered per source.",
	}, []string{"source"})

	EdgesAboveThreshold = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "flood_edges_above_threshold",
		Help: "Count of edges at or above a tracked risk threshold.",
	}, []string{"threshold"})

	RouterExpansions = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flood_router_expansions",
		Help:    "A* node expansions per route computation.",
		Buckets: prometheus.ExponentialBuckets(10, 2, 16),
	})
	RouterLatencySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flood_router_latency_seconds",
		Help:    "Wall-clock time per route computation.",
		Buckets: prometheus.DefBuckets,
	})

	BroadcastSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flood_broadcast_subscribers",
		Help: "Currently connected broadcast subscribers.",
	})
	BroadcastDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flood_broadcast_dropped_total",
		Help: "Events dropped because a subscriber's queue was full.",
	})
	BroadcastDisconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flood_broadcast_disconnects_total",
		Help: "Subscribers disconnected by the hub (slow consumer or heartbeat timeout).",
	})
)
