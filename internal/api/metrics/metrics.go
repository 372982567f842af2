// Package metrics defines and registers all custom Prometheus metrics for the
// user service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "userhub"

// ── Account metrics ───────────────────────────────────────────────────────────

// UsersRegisteredTotal counts newly stored users.
// Label:
//   - method: "local" (registration form) or the external provider (e.g. "google")
var UsersRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of users created, by registration method.",
	},
	[]string{"method"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts authentication attempts.
// Labels:
//   - strategy: "local" or "google"
//   - result: "success", "failure" (bad credentials) or "error" (store fault)
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by strategy and result.",
	},
	[]string{"strategy", "result"},
)

// SessionsInvalidatedTotal counts sessions that ended.
// Label:
//   - reason: "logout" or "unresolvable" (unknown handle, or the user is gone)
var SessionsInvalidatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_invalidated_total",
		Help:      "Total number of sessions invalidated, by reason.",
	},
	[]string{"reason"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsDroppedTotal counts audit events discarded because a worker queue was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped on a full dispatcher queue.",
	},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
