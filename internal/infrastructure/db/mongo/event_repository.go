package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rodocarga/logistics-api/internal/core/domain"
	"github.com/rodocarga/logistics-api/internal/core/ports"
)

const collectionEvents = "shipment_events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	col *mongo.Collection
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) ports.EventRepository {
	return &EventRepository{col: db.Collection(collectionEvents)}
}

// InsertEvent persists a lifecycle audit event.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.ShipmentEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"tracking_number": event.TrackingNumber,
		"type":            event.Type,
		"description":     event.Description,
		"timestamp":       event.Timestamp.UTC(),
		"recorded_at":     time.Now().UTC(),
	}
	if event.SegmentID != "" {
		doc["segment_id"] = event.SegmentID
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}
