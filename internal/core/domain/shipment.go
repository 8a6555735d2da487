package domain

import "time"

// ShipmentStatus represents the lifecycle state of a shipment.
type ShipmentStatus string

const (
	StatusDraft     ShipmentStatus = "draft"
	StatusScheduled ShipmentStatus = "scheduled"
	StatusDelivered ShipmentStatus = "delivered"
	StatusCancelled ShipmentStatus = "cancelled"
)

// shipmentTransitions defines the allowed state machine transitions.
var shipmentTransitions = map[ShipmentStatus][]ShipmentStatus{
	StatusDraft:     {StatusScheduled, StatusCancelled},
	StatusScheduled: {StatusDelivered, StatusCancelled},
}

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	for _, allowed := range shipmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the shipment lifecycle.
func (s ShipmentStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Coordinates represents a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Location is an endpoint of a shipment or segment: a free-text description
// plus optional coordinates. Coordinates are required before a route can be
// assigned, but a draft may be created from descriptions alone.
type Location struct {
	Description string       `json:"description" bson:"description"`
	Coordinates *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
}

// HasCoordinates reports whether the location carries a usable coordinate pair.
func (l Location) HasCoordinates() bool {
	return l.Coordinates != nil
}

// Shipment is the core aggregate root: one client's request to move one
// container from an origin to a destination. Final cost/duration stay nil
// until settlement marks the shipment delivered.
type Shipment struct {
	ID             string         `json:"id" bson:"_id,omitempty"`
	TrackingNumber string         `json:"tracking_number" bson:"tracking_number"`
	ContainerID    string         `json:"container_id" bson:"container_id"`
	ClientID       string         `json:"client_id" bson:"client_id"`
	Origin         Location       `json:"origin" bson:"origin"`
	Destination    Location       `json:"destination" bson:"destination"`
	Status         ShipmentStatus `json:"status" bson:"status"`
	EstimatedCost  float64        `json:"estimated_cost" bson:"estimated_cost"`
	EstimatedHours float64        `json:"estimated_hours" bson:"estimated_hours"`
	FinalCost      *float64       `json:"final_cost,omitempty" bson:"final_cost,omitempty"`
	FinalHours     *float64       `json:"final_hours,omitempty" bson:"final_hours,omitempty"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
	ScheduledAt    *time.Time     `json:"scheduled_at,omitempty" bson:"scheduled_at,omitempty"`
	DeliveredAt    *time.Time     `json:"delivered_at,omitempty" bson:"delivered_at,omitempty"`
}
