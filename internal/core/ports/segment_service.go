package ports

import "context"

// AssignTruckInput carries the parameters for assigning a truck to a segment.
type AssignTruckInput struct {
	SegmentID     string
	TruckPlate    string
	CargoWeightKg float64
	CargoVolumeM3 float64
}

// FinishSegmentInput carries the real figures reported when a segment arrives.
// All three values must be strictly positive.
type FinishSegmentInput struct {
	SegmentID            string
	RealDistanceKm       float64
	TruckCostPerKm       float64
	TruckFuelConsumption float64
}

// SegmentService drives segments through their lifecycle. Finishing the last
// segment of a route settles the owning shipment.
type SegmentService interface {
	AssignTruck(ctx context.Context, input AssignTruckInput) (*SegmentView, error)
	Start(ctx context.Context, segmentID string) (*SegmentView, error)
	Finish(ctx context.Context, input FinishSegmentInput) (*SegmentView, error)
	ListByTruck(ctx context.Context, plate string) ([]SegmentView, error)
}
