// Package metrics defines and registers all custom Prometheus metrics for the
// mood tracker API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package init
// through promauto; the echoprometheus handler mounted at /metrics exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "moodtracker"

// ── Daily record metrics ──────────────────────────────────────────────────────

// RecordsUpsertedTotal counts successful daily record writes.
// Label:
//   - result: "created" or "updated"
var RecordsUpsertedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_upserted_total",
		Help:      "Total number of daily record writes, by result (created/updated).",
	},
	[]string{"result"},
)

// RecordUpsertErrorsTotal counts upserts that did not persist.
// Label:
//   - reason: "validation", "not_found", "store" or "other"
var RecordUpsertErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_upsert_errors_total",
		Help:      "Total number of daily record writes that failed.",
	},
	[]string{"reason"},
)

// RecordConflictsTotal counts creates that lost the race against the unique
// (user_id, day) index and were merged into the existing record instead.
var RecordConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_conflicts_total",
		Help:      "Total number of concurrent creates resolved by merging into the existing record.",
	},
)

// DayLockFailuresTotal counts upserts that proceeded without the Redis day lock.
var DayLockFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "day_lock_failures_total",
		Help:      "Total number of upserts that could not acquire the per-day lock.",
	},
)

// RecordUpsertDuration measures the locked read-merge-write section.
// Label:
//   - result: "created", "updated" or "error"
var RecordUpsertDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "record_upsert_duration_seconds",
		Help:      "Duration of a daily record upsert including lock wait.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"result"},
)

// ProgressCacheTotal counts weekly progress cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var ProgressCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "progress_cache_total",
		Help:      "Total number of weekly progress cache lookups, by result.",
	},
	[]string{"result"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsDeliveredTotal counts record event deliveries per sink.
// Labels:
//   - sink: "audit", "rabbitmq" or "websocket"
//   - result: "ok" or "error"
var EventsDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_delivered_total",
		Help:      "Total number of record events handed to each sink.",
	},
	[]string{"sink", "result"},
)

// EventsDroppedTotal counts events that never reached the sinks.
// Label:
//   - reason: "queue_full" | "shutdown"
var EventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of record events dropped by the dispatcher.",
	},
	[]string{"reason"},
)

// EventsQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// WebsocketClients is the number of connected realtime clients.
var WebsocketClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_clients",
		Help:      "Current number of connected websocket clients.",
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - action: "register" or "login"
//   - result: "ok", "invalid", "duplicate" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by action and result.",
	},
	[]string{"action", "result"},
)
