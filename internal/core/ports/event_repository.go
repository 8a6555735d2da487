package ports

import (
	"context"

	"github.com/rodocarga/logistics-api/internal/core/domain"
)

// EventRepository persists lifecycle audit events.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.ShipmentEvent) error
}

// AuditPublisher accepts lifecycle audit events for asynchronous persistence.
// Publishing never blocks the lifecycle operation and failures are non-fatal.
type AuditPublisher interface {
	Publish(event domain.ShipmentEvent)
}
