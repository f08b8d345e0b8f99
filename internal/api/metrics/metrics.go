// Package metrics defines and registers the custom Prometheus metrics of the
// identity API. It is the single source of truth for metric names, labels
// and help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// ── Authentication ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "rejected", "throttled" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Lifecycle ────────────────────────────────────────────────────────────────

// UserOperationsTotal counts lifecycle operations served over HTTP.
// Labels:
//   - operation: "register", "update", "activate", "deactivate", "delete"
//   - outcome: "ok", "denied", "unauthorized", "invalid", "not_found", "conflict", "error"
var UserOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_operations_total",
		Help:      "Total number of user lifecycle operations, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// ── Events ───────────────────────────────────────────────────────────────────

// LifecycleEventsTotal counts lifecycle event deliveries.
// Labels:
//   - type: event type (e.g. "user.registered")
//   - result: "published", "failed" or "dropped"
var LifecycleEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lifecycle_events_total",
		Help:      "Total number of lifecycle events handled by the dispatcher, by result.",
	},
	[]string{"type", "result"},
)

// EventsQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventPublishDuration measures how long one publish call takes.
var EventPublishDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_publish_duration_seconds",
		Help:      "Duration of a single lifecycle event publish.",
		Buckets:   prometheus.DefBuckets,
	},
)
