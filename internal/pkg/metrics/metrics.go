// Package metrics defines and registers all custom Prometheus metrics for the
// SaveEat client core. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry at package init through
// promauto; the facade exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "saveeat"

// ── Backend calls ─────────────────────────────────────────────────────────────

// BackendRequestsTotal counts calls made to the remote REST API.
// Labels:
//   - method: HTTP method
//   - outcome: "ok", "validation", "rejected", "transport", "network"
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of backend API calls, by method and outcome.",
	},
	[]string{"method", "outcome"},
)

// BackendRequestDuration measures round-trip time of backend calls.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of backend API calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// ── Store ─────────────────────────────────────────────────────────────────────

// StoreRefreshTotal counts collection refreshes.
// Labels:
//   - collection: "all_listings", "my_listings", "reservations"
//   - result: "ok" or "error"
var StoreRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_refresh_total",
		Help:      "Total number of cached collection refreshes.",
	},
	[]string{"collection", "result"},
)

// RefreshQueueDepth tracks jobs waiting in each refresh worker.
var RefreshQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "refresh_queue_depth",
		Help:      "Current number of refresh jobs pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// ReservationTransitionsTotal counts requested reservation transitions.
// Label result is "applied", "noop" or "error".
var ReservationTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_transitions_total",
		Help:      "Reservation status transitions requested, by action and result.",
	},
	[]string{"action", "result"},
)

// ── Session ───────────────────────────────────────────────────────────────────

// SessionEventsTotal counts session lifecycle events
// ("login", "register", "logout", "restore", "invalidate").
var SessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Session lifecycle events.",
	},
	[]string{"event"},
)
