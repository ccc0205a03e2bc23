// Package metrics defines and registers all custom Prometheus metrics for
// the Bahasaku gateway. It is the single source of truth for metric names,
// labels, and help strings; metrics self-register with the default registry
// on first import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bahasaku"

// ── Session metrics ───────────────────────────────────────────────────────

// SessionLogins counts successful logins.
// Label:
//   - policy: "default" or "remembered", the max-age policy chosen at login
var SessionLogins = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_logins_total",
		Help:      "Total number of sessions created, by max-age policy.",
	},
	[]string{"policy"},
)

// SessionRestores counts snapshot restore attempts.
// Label:
//   - result: "active", "expired", "invalid" or "missing"
var SessionRestores = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_restores_total",
		Help:      "Total number of session restore attempts, by outcome.",
	},
	[]string{"result"},
)

// SessionLogouts counts explicit logouts of live sessions.
var SessionLogouts = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_logouts_total",
		Help:      "Total number of explicit logouts.",
	},
)

// ── Route guard metrics ───────────────────────────────────────────────────

// GuardDenials counts requests the route guard turned away.
// Label:
//   - reason: "unauthenticated" (no session) or "forbidden" (wrong role)
var GuardDenials = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_denials_total",
		Help:      "Total number of protected-route denials, by reason.",
	},
	[]string{"reason"},
)

// ── Upstream metrics ──────────────────────────────────────────────────────

// UpstreamRequests counts calls to the Bahasaku backend.
// Labels:
//   - endpoint: logical endpoint name (e.g. "login", "users")
//   - status: HTTP status class ("2xx", "4xx", "5xx") or "error"
var UpstreamRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of backend API calls, by endpoint and status class.",
	},
	[]string{"endpoint", "status"},
)

// UpstreamDuration measures backend call latency per logical endpoint.
var UpstreamDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of backend API calls from send to decoded response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)

// ── Audit pipeline metrics ────────────────────────────────────────────────

// AuditEventsDropped counts session events discarded because the audit
// pipeline's buffer was full.
var AuditEventsDropped = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of session audit events dropped on full buffers.",
	},
)
