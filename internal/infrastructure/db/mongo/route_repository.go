package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rodocarga/logistics-api/internal/core/domain"
)

const (
	collectionRoutes   = "routes"
	collectionSegments = "segments"
)

// RouteRepository implements ports.RouteRepository on two collections: one
// for route headers, one for segments. Segment transitions are conditional
// updates filtered on the current status.
type RouteRepository struct {
	routes   *mongo.Collection
	segments *mongo.Collection
}

func NewRouteRepository(db *mongo.Database) *RouteRepository {
	return &RouteRepository{
		routes:   db.Collection(collectionRoutes),
		segments: db.Collection(collectionSegments),
	}
}

func (r *RouteRepository) CreateRoute(ctx context.Context, route *domain.Route) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if route.ID == "" {
		route.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.routes.InsertOne(ctx, route)
	return err
}

// InsertSegments persists a freshly built route's segments in one write,
// backfilling generated IDs.
func (r *RouteRepository) InsertSegments(ctx context.Context, segments []*domain.Segment) error {
	if len(segments) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs := make([]interface{}, len(segments))
	for i, seg := range segments {
		if seg.ID == "" {
			seg.ID = primitive.NewObjectID().Hex()
		}
		docs[i] = seg
	}

	_, err := r.segments.InsertMany(ctx, docs)
	return err
}

func (r *RouteRepository) FindRouteByID(ctx context.Context, id string) (*domain.Route, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var route domain.Route
	err := r.routes.FindOne(ctx, bson.M{"_id": id}).Decode(&route)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRouteNotFound
		}
		return nil, err
	}
	return &route, nil
}

func (r *RouteRepository) FindRouteByShipmentID(ctx context.Context, shipmentID string) (*domain.Route, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var route domain.Route
	err := r.routes.FindOne(ctx, bson.M{"shipment_id": shipmentID}).Decode(&route)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRouteNotFound
		}
		return nil, err
	}
	return &route, nil
}

func (r *RouteRepository) FindSegmentByID(ctx context.Context, id string) (*domain.Segment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var seg domain.Segment
	err := r.segments.FindOne(ctx, bson.M{"_id": id}).Decode(&seg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSegmentNotFound
		}
		return nil, err
	}
	return &seg, nil
}

// SegmentsByRoute returns a route's segments ordered by estimated start,
// which reconstructs creation order.
func (r *RouteRepository) SegmentsByRoute(ctx context.Context, routeID string) ([]*domain.Segment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "estimated_start", Value: 1}})
	cursor, err := r.segments.Find(ctx, bson.M{"route_id": routeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var segments []*domain.Segment
	if err := cursor.All(ctx, &segments); err != nil {
		return nil, err
	}
	return segments, nil
}

func (r *RouteRepository) SegmentsByTruck(ctx context.Context, plate string) ([]*domain.Segment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "estimated_start", Value: 1}})
	cursor, err := r.segments.Find(ctx, bson.M{"truck_plate": plate}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var segments []*domain.Segment
	if err := cursor.All(ctx, &segments); err != nil {
		return nil, err
	}
	return segments, nil
}

// AssignTruck moves an estimated segment to assigned with its truck plate.
func (r *RouteRepository) AssignTruck(ctx context.Context, segmentID, plate string) error {
	return r.transition(ctx, segmentID, domain.SegmentEstimated, bson.M{
		"status":      string(domain.SegmentAssigned),
		"truck_plate": plate,
	})
}

// StartSegment records the real departure timestamp on an assigned segment.
func (r *RouteRepository) StartSegment(ctx context.Context, segmentID string, at time.Time) error {
	return r.transition(ctx, segmentID, domain.SegmentAssigned, bson.M{
		"status":     string(domain.SegmentInTransit),
		"real_start": at.UTC(),
	})
}

// FinishSegment records arrival: real end timestamp, real kilometres
// overwriting the planned distance, and the real cost.
func (r *RouteRepository) FinishSegment(ctx context.Context, segmentID string, at time.Time, realKm, realCost float64) error {
	return r.transition(ctx, segmentID, domain.SegmentInTransit, bson.M{
		"status":      string(domain.SegmentFinished),
		"real_end":    at.UTC(),
		"distance_km": realKm,
		"real_cost":   realCost,
	})
}

// transition performs a conditional status update: the filter on the source
// status guarantees a lost race surfaces as ErrInvalidTransition instead of
// silently double-applying.
func (r *RouteRepository) transition(ctx context.Context, segmentID string, from domain.SegmentStatus, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.segments.UpdateOne(ctx,
		bson.M{"_id": segmentID, "status": string(from)},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	if err := r.segments.FindOne(ctx, bson.M{"_id": segmentID}).Err(); errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrSegmentNotFound
	}
	return domain.ErrInvalidTransition
}

// EnsureIndexes creates necessary indexes on the route collections.
func (r *RouteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := r.routes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "shipment_id", Value: 1}},
	}); err != nil {
		return err
	}

	_, err := r.segments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "route_id", Value: 1}}},
		{Keys: bson.D{{Key: "truck_plate", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}
