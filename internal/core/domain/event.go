package domain

import "time"

// Audit event types emitted by lifecycle operations.
const (
	EventShipmentCreated = "shipment_created"
	EventRouteAssigned   = "route_assigned"
	EventTruckAssigned   = "truck_assigned"
	EventSegmentStarted  = "segment_started"
	EventSegmentFinished = "segment_finished"
	EventShipmentSettled = "shipment_settled"
)

// ShipmentEvent is an audit record of a lifecycle transition, persisted to the
// events collection for traceability. Losing one is non-fatal; the tracking
// timeline is reconstructed from segment timestamps, not from these records.
type ShipmentEvent struct {
	TrackingNumber string    `json:"tracking_number" bson:"tracking_number"`
	Type           string    `json:"type" bson:"type"`
	Description    string    `json:"description" bson:"description"`
	SegmentID      string    `json:"segment_id,omitempty" bson:"segment_id,omitempty"`
	Timestamp      time.Time `json:"timestamp" bson:"timestamp"`
}
