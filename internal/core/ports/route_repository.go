package ports

import (
	"context"
	"time"

	"github.com/rodocarga/logistics-api/internal/core/domain"
)

// RouteRepository persists routes and their segments.
//
// The three transition writes (AssignTruck, StartSegment, FinishSegment) are
// conditional on the segment's current status and report
// domain.ErrInvalidTransition when the stored state has moved on — the same
// optimistic guard ShipmentRepository applies to shipment transitions.
type RouteRepository interface {
	CreateRoute(ctx context.Context, r *domain.Route) error
	// InsertSegments persists the ordered segment list of a freshly built
	// route in one write.
	InsertSegments(ctx context.Context, segments []*domain.Segment) error
	FindRouteByID(ctx context.Context, id string) (*domain.Route, error)
	FindRouteByShipmentID(ctx context.Context, shipmentID string) (*domain.Route, error)
	FindSegmentByID(ctx context.Context, id string) (*domain.Segment, error)
	// SegmentsByRoute returns a route's segments in creation order.
	SegmentsByRoute(ctx context.Context, routeID string) ([]*domain.Segment, error)
	SegmentsByTruck(ctx context.Context, plate string) ([]*domain.Segment, error)
	// AssignTruck sets the truck plate on an estimated segment and moves it
	// to assigned.
	AssignTruck(ctx context.Context, segmentID, plate string) error
	// StartSegment records the real start timestamp on an assigned segment
	// and moves it to in_transit.
	StartSegment(ctx context.Context, segmentID string, at time.Time) error
	// FinishSegment records the real end timestamp, overwrites the distance
	// with the real kilometres driven, stores the real cost, and moves an
	// in_transit segment to finished.
	FinishSegment(ctx context.Context, segmentID string, at time.Time, realKm, realCost float64) error
}
