// Package metrics defines and registers all custom Prometheus metrics for the
// showroom API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on import via
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "showroom"

// ── Request log metrics ───────────────────────────────────────────────────────

// RequestLogEntriesTotal counts request-log decisions.
// Label:
//   - result: "written", "disabled", "flag_error", "write_error"
var RequestLogEntriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_log_entries_total",
		Help:      "Total number of API request log decisions, by result.",
	},
	[]string{"result"},
)

// ── Background task metrics ───────────────────────────────────────────────────

// TasksTotal counts background task outcomes.
// Labels:
//   - task: task name (e.g. "realtime.publish", "push.send", "mail.send")
//   - result: "ok", "retry", "failed", "dropped"
var TasksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_total",
		Help:      "Total number of background task attempts, by task and result.",
	},
	[]string{"task", "result"},
)

// TaskQueueDepth tracks the number of tasks waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var TaskQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "task_queue_depth",
		Help:      "Current number of tasks pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// TaskDuration measures how long a single task attempt takes.
var TaskDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Duration of a single background task attempt.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"task"},
)

// ── Domain metrics ────────────────────────────────────────────────────────────

// OTPTotal counts passcode lifecycle events.
// Labels:
//   - purpose: "signup" or "password_change"
//   - result: "issued", "verified", "expired", "consumed", "mismatch", "not_found", "throttled", "locked"
var OTPTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_total",
		Help:      "Total number of one-time passcode events, by purpose and result.",
	},
	[]string{"purpose", "result"},
)

// BookingsCreatedTotal counts newly created bookings.
var BookingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings created.",
	},
)

// RealtimeSubscribers tracks open server-sent event streams.
var RealtimeSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_subscribers",
		Help:      "Current number of open realtime subscriber streams.",
	},
)
