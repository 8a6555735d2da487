package ports

import (
	"context"

	"github.com/rodocarga/logistics-api/internal/core/domain"
)

// DistanceProvider resolves driving distance and duration between two points.
// Implementations are remote (distance-matrix API) and may fail; callers fall
// back to great-circle distance and the average-speed duration estimate.
type DistanceProvider interface {
	DistanceAndDuration(ctx context.Context, a, b domain.Coordinates) (km float64, hours float64, err error)
}

// DepotCatalog lists the depots known to the management service.
type DepotCatalog interface {
	ListDepots(ctx context.Context) ([]domain.Depot, error)
}

// FleetService exposes fleet availability and capacity checks.
type FleetService interface {
	IsAvailable(ctx context.Context, plate string) (bool, error)
	TruckFitsCargo(ctx context.Context, plate string, weightKg, volumeM3 float64) (bool, error)
}

// MasterData validates client/container references and tariff applicability
// against the management service before a shipment request is accepted.
type MasterData interface {
	ClientExists(ctx context.Context, clientID string) (bool, error)
	ContainerExists(ctx context.Context, containerID string) (bool, error)
	// HasApplicableTariff reports whether a tariff band covers the given
	// cargo weight and volume.
	HasApplicableTariff(ctx context.Context, weightKg, volumeM3 float64) (bool, error)
}

// ShipmentLocker serializes lifecycle operations on one shipment aggregate
// (shipment + route + segments) across instances. Acquire returns a release
// function, or domain.ErrAggregateLocked when another operation holds the lock.
type ShipmentLocker interface {
	Acquire(ctx context.Context, shipmentID string) (release func(), err error)
}
