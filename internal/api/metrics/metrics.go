// Package metrics defines and registers all custom Prometheus metrics for the
// freight coordination API. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "freight"

// ── Shipment metrics ──────────────────────────────────────────────────────────

// ShipmentsCreatedTotal counts newly accepted shipment requests.
var ShipmentsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shipments_created_total",
		Help:      "Total number of shipment requests accepted.",
	},
)

// RoutesAssignedTotal counts built routes, labelled by segment count.
var RoutesAssignedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "routes_assigned_total",
		Help:      "Total number of routes built, by number of segments.",
	},
	[]string{"segments"},
)

// ShipmentsSettledTotal counts shipments settled to delivered.
var ShipmentsSettledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shipments_settled_total",
		Help:      "Total number of shipments settled and delivered.",
	},
)

// ── Segment metrics ───────────────────────────────────────────────────────────

// SegmentTransitionsTotal counts segment lifecycle transitions.
// Labels:
//   - transition: "assign_truck", "start", "finish"
//   - result: "ok" or "error"
var SegmentTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "segment_transitions_total",
		Help:      "Total number of segment lifecycle transitions attempted.",
	},
	[]string{"transition", "result"},
)

// ── Collaborator metrics ──────────────────────────────────────────────────────

// DistanceFallbacksTotal counts legs priced with the great-circle fallback
// because the distance provider was unavailable.
var DistanceFallbacksTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "distance_fallbacks_total",
		Help:      "Total number of route legs computed with the haversine fallback.",
	},
)
