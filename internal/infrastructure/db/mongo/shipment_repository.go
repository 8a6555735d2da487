package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rodocarga/logistics-api/internal/core/domain"
	"github.com/rodocarga/logistics-api/internal/core/ports"
)

const collectionShipments = "shipments"

// terminalStates as stored; matched case-insensitively because legacy rows
// carry free-text states.
var terminalStates = []string{string(domain.StatusDelivered), string(domain.StatusCancelled)}

type ShipmentRepository struct {
	col *mongo.Collection
}

func NewShipmentRepository(db *mongo.Database) *ShipmentRepository {
	return &ShipmentRepository{col: db.Collection(collectionShipments)}
}

// Create inserts a new shipment document and backfills the generated ID.
// The unique tracking_number index is the authoritative duplicate guard:
// the service's read-before-insert check can race across instances, so a
// second insert with the same tracking number lands here as a duplicate-key
// violation and surfaces as ErrDuplicateShipment.
func (r *ShipmentRepository) Create(ctx context.Context, s *domain.Shipment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if s.ID == "" {
		s.ID = primitive.NewObjectID().Hex()
	}

	if _, err := r.col.InsertOne(ctx, s); err != nil {
		return mapInsertErr(err, s.TrackingNumber)
	}
	return nil
}

// mapInsertErr translates a duplicate-key violation on the unique
// tracking_number index into the domain sentinel.
func mapInsertErr(err error, trackingNumber string) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert shipment %s: %w", trackingNumber, domain.ErrDuplicateShipment)
	}
	return err
}

func (r *ShipmentRepository) FindByID(ctx context.Context, id string) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.Shipment
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByTrackingNumber retrieves a shipment by tracking number. When clientID
// is non-empty, an additional filter by client_id is applied.
func (r *ShipmentRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string, clientID string) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"tracking_number": trackingNumber}
	if clientID != "" {
		filter["client_id"] = clientID
	}

	var s domain.Shipment
	err := r.col.FindOne(ctx, filter).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListPending returns shipments whose status is outside the terminal set,
// optionally narrowed by an exact status or a container id.
func (r *ShipmentRepository) ListPending(ctx context.Context, filter ports.PendingFilter) ([]*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	switch {
	case filter.Status != "":
		query["status"] = bson.M{"$regex": exactStatusPattern(filter.Status), "$options": "i"}
	default:
		query["status"] = bson.M{"$nin": terminalStatusPatterns()}
	}
	if filter.ContainerID != "" {
		query["container_id"] = filter.ContainerID
	}

	cursor, err := r.col.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var shipments []*domain.Shipment
	if err := cursor.All(ctx, &shipments); err != nil {
		return nil, err
	}
	return shipments, nil
}

// MarkScheduled moves a draft shipment to scheduled with its route estimates.
// The status filter makes the write conditional: a concurrent transition on
// the same shipment loses and surfaces ErrInvalidTransition.
func (r *ShipmentRepository) MarkScheduled(ctx context.Context, id string, estimatedCost, estimatedHours float64, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": string(domain.StatusDraft)},
		bson.M{"$set": bson.M{
			"status":          string(domain.StatusScheduled),
			"estimated_cost":  estimatedCost,
			"estimated_hours": estimatedHours,
			"scheduled_at":    at.UTC(),
		}},
	)
	if err != nil {
		return err
	}
	return r.checkConditional(ctx, id, res)
}

// Settle moves a scheduled shipment to delivered with its final figures.
func (r *ShipmentRepository) Settle(ctx context.Context, id string, finalCost, finalHours float64, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": string(domain.StatusScheduled)},
		bson.M{"$set": bson.M{
			"status":       string(domain.StatusDelivered),
			"final_cost":   finalCost,
			"final_hours":  finalHours,
			"delivered_at": at.UTC(),
		}},
	)
	if err != nil {
		return err
	}
	return r.checkConditional(ctx, id, res)
}

// checkConditional distinguishes a missing shipment from a lost state race
// after a conditional update matched nothing.
func (r *ShipmentRepository) checkConditional(ctx context.Context, id string, res *mongo.UpdateResult) error {
	if res.MatchedCount > 0 {
		return nil
	}
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Err(); errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrShipmentNotFound
	}
	return domain.ErrInvalidTransition
}

// EnsureIndexes creates necessary indexes on the shipments collection.
func (r *ShipmentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tracking_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "client_id", Value: 1}}},
		{Keys: bson.D{{Key: "container_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// exactStatusPattern anchors and quotes a caller-supplied status so regex
// metacharacters cannot widen the match beyond the literal value.
func exactStatusPattern(status string) string {
	return "^" + regexp.QuoteMeta(status) + "$"
}

func terminalStatusPatterns() []string {
	// Stored statuses are lowercase; include upper variants for rows written
	// by older tooling.
	patterns := make([]string, 0, len(terminalStates)*2)
	for _, s := range terminalStates {
		patterns = append(patterns, s, strings.ToUpper(s))
	}
	return patterns
}
