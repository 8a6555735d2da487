package domain

import "time"

// SegmentStatus represents the lifecycle state of a route segment.
type SegmentStatus string

const (
	SegmentEstimated SegmentStatus = "estimated"
	SegmentAssigned  SegmentStatus = "assigned"
	SegmentInTransit SegmentStatus = "in_transit"
	SegmentFinished  SegmentStatus = "finished"
)

// segmentTransitions defines the allowed state machine transitions. A segment
// only ever moves forward; there is no cancellation path once created.
var segmentTransitions = map[SegmentStatus][]SegmentStatus{
	SegmentEstimated: {SegmentAssigned},
	SegmentAssigned:  {SegmentInTransit},
	SegmentInTransit: {SegmentFinished},
}

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s SegmentStatus) CanTransitionTo(next SegmentStatus) bool {
	for _, allowed := range segmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Route groups the ordered segments realizing one shipment. One route belongs
// to exactly one shipment.
type Route struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	ShipmentID string    `json:"shipment_id" bson:"shipment_id"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// Segment is one leg of a route between two points, operated by exactly one
// truck. Real start/end timestamps are written once, at the start and finish
// transitions; DistanceKm is overwritten with the real figure at finish.
type Segment struct {
	ID             string        `json:"id" bson:"_id,omitempty"`
	RouteID        string        `json:"route_id" bson:"route_id"`
	TruckPlate     string        `json:"truck_plate,omitempty" bson:"truck_plate,omitempty"`
	Origin         Location      `json:"origin" bson:"origin"`
	Destination    Location      `json:"destination" bson:"destination"`
	DistanceKm     float64       `json:"distance_km" bson:"distance_km"`
	Status         SegmentStatus `json:"status" bson:"status"`
	EstimatedStart time.Time     `json:"estimated_start" bson:"estimated_start"`
	EstimatedEnd   time.Time     `json:"estimated_end" bson:"estimated_end"`
	RealStart      *time.Time    `json:"real_start,omitempty" bson:"real_start,omitempty"`
	RealEnd        *time.Time    `json:"real_end,omitempty" bson:"real_end,omitempty"`
	EstimatedCost  float64       `json:"estimated_cost" bson:"estimated_cost"`
	RealCost       *float64      `json:"real_cost,omitempty" bson:"real_cost,omitempty"`
}
