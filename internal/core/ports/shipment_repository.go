package ports

import (
	"context"
	"time"

	"github.com/rodocarga/logistics-api/internal/core/domain"
)

// PendingFilter narrows the pending-shipments listing. Zero values mean no
// filtering: every non-terminal shipment is returned.
type PendingFilter struct {
	Status      string // optional: exact status match
	ContainerID string // optional: scope to one container
}

// ShipmentRepository defines persistence operations for shipments.
//
// MarkScheduled and Settle are conditional writes: they only apply when the
// stored status still matches the expected source state, and report
// domain.ErrInvalidTransition otherwise. This is the optimistic guard that
// keeps concurrent lifecycle operations from interleaving illegally even if
// the aggregate lock is lost.
type ShipmentRepository interface {
	Create(ctx context.Context, s *domain.Shipment) error
	FindByID(ctx context.Context, id string) (*domain.Shipment, error)
	// FindByTrackingNumber retrieves a shipment by tracking number. When
	// clientID is non-empty, the query is additionally filtered by client_id.
	FindByTrackingNumber(ctx context.Context, trackingNumber string, clientID string) (*domain.Shipment, error)
	// ListPending returns shipments whose status is outside the terminal set,
	// optionally narrowed by filter.
	ListPending(ctx context.Context, filter PendingFilter) ([]*domain.Shipment, error)
	// MarkScheduled moves a draft shipment to scheduled, writing the route's
	// aggregated estimates.
	MarkScheduled(ctx context.Context, id string, estimatedCost, estimatedHours float64, at time.Time) error
	// Settle moves a scheduled shipment to delivered, writing the final
	// cost and duration.
	Settle(ctx context.Context, id string, finalCost, finalHours float64, at time.Time) error
}
