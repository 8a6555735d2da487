package ports

import (
	"context"
	"time"
)

// LocationInput holds a free-text endpoint description and optional coordinates.
type LocationInput struct {
	Description string
	Lat         *float64
	Lng         *float64
}

// CreateShipmentInput carries all data needed to accept a new shipment request.
// TrackingNumber is optional; one is generated when empty.
type CreateShipmentInput struct {
	TrackingNumber string
	ContainerID    string
	ClientID       string
	Origin         LocationInput
	Destination    LocationInput
}

// ShipmentResult is returned by the service after creating a shipment.
type ShipmentResult struct {
	ShipmentID     string
	TrackingNumber string
	Status         string
	CreatedAt      time.Time
}

// EstimateRouteInput carries the parameters for a non-persisting route quote.
// Cargo weight/volume are optional; when both are present the applicable
// tariff band is validated against master data.
type EstimateRouteInput struct {
	Origin      LocationInput
	Destination LocationInput
	WeightKg    *float64
	VolumeM3    *float64
}

// LegEstimate is one leg of a route quote.
type LegEstimate struct {
	Origin         string
	Destination    string
	DistanceKm     float64
	EstimatedCost  float64
	EstimatedHours float64
}

// EstimateRouteResult is the quote returned by EstimateRoute.
type EstimateRouteResult struct {
	EstimatedCost  float64
	EstimatedHours float64
	Legs           []LegEstimate
}

// SegmentView is the segment representation exposed outside the core.
type SegmentView struct {
	ID             string
	RouteID        string
	TruckPlate     string
	Origin         string
	Destination    string
	DistanceKm     float64
	Status         string
	EstimatedStart time.Time
	EstimatedEnd   time.Time
	RealStart      *time.Time
	RealEnd        *time.Time
	EstimatedCost  float64
	RealCost       *float64
}

// AssignRouteResult describes the route built for a shipment.
type AssignRouteResult struct {
	RouteID        string
	ShipmentStatus string
	EstimatedCost  float64
	EstimatedHours float64
	Segments       []SegmentView
}

// TrackingEvent is one entry in a shipment's reconstructed timeline.
type TrackingEvent struct {
	Timestamp   time.Time
	Event       string
	Description string
	Status      string
}

// TrackingResult is the full tracking view for one shipment.
type TrackingResult struct {
	ShipmentID     string
	TrackingNumber string
	Status         string
	EstimatedCost  float64
	EstimatedHours float64
	FinalCost      *float64
	FinalHours     *float64
	History        []TrackingEvent
}

// Current-location kinds derived for pending shipments.
const (
	LocationInTransit    = "in_transit"
	LocationAtDepot      = "at_depot"
	LocationPendingTruck = "pending_assignment"
	LocationAtOrigin     = "at_origin"
)

// PendingShipment is one row of the pending-shipments view: a non-terminal
// shipment annotated with its derived current location.
type PendingShipment struct {
	ShipmentID      string
	TrackingNumber  string
	ContainerID     string
	ClientID        string
	Status          string
	EstimatedCost   float64
	FinalCost       *float64
	CurrentLocation string
	LocationDetail  string
	ActiveSegment   *SegmentView
}

// GetTrackingInput carries the parameters for the tracking endpoint. Role and
// ClientID enforce RBAC: the client role only sees its own shipments.
type GetTrackingInput struct {
	TrackingNumber string
	Role           string
	ClientID       string
}

// ShipmentService defines the shipment-side use-case operations.
type ShipmentService interface {
	CreateShipment(ctx context.Context, input CreateShipmentInput) (*ShipmentResult, error)
	EstimateRoute(ctx context.Context, input EstimateRouteInput) (*EstimateRouteResult, error)
	// AssignRoute builds and persists the route for a draft shipment and
	// schedules it.
	AssignRoute(ctx context.Context, shipmentID string) (*AssignRouteResult, error)
	GetTracking(ctx context.Context, input GetTrackingInput) (*TrackingResult, error)
	ListPending(ctx context.Context, filter PendingFilter) ([]PendingShipment, error)
}
