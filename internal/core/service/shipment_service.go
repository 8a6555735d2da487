package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/rodocarga/logistics-api/internal/api/metrics"
	"github.com/rodocarga/logistics-api/internal/core/domain"
	"github.com/rodocarga/logistics-api/internal/core/ports"
)

// Scheduling policy applied while building a route.
const (
	// firstSegmentLeadTime separates scheduling from the estimated departure
	// of the first segment.
	firstSegmentLeadTime = 24 * time.Hour
	// depotHandlingBuffer separates one segment's estimated arrival from the
	// next segment's estimated departure.
	depotHandlingBuffer = time.Hour
)

// ShipmentService implements ports.ShipmentService: shipment intake, route
// construction and the client-facing tracking views.
type ShipmentService struct {
	shipments ports.ShipmentRepository
	routes    ports.RouteRepository
	selector  *DepotSelector
	distance  ports.DistanceProvider
	master    ports.MasterData
	locker    ports.ShipmentLocker
	audit     ports.AuditPublisher
	tariff    Tariff
	logger    zerolog.Logger
}

func NewShipmentService(
	shipments ports.ShipmentRepository,
	routes ports.RouteRepository,
	selector *DepotSelector,
	distance ports.DistanceProvider,
	master ports.MasterData,
	locker ports.ShipmentLocker,
	audit ports.AuditPublisher,
	logger zerolog.Logger,
) *ShipmentService {
	return &ShipmentService{
		shipments: shipments,
		routes:    routes,
		selector:  selector,
		distance:  distance,
		master:    master,
		locker:    locker,
		audit:     audit,
		logger:    logger,
	}
}

// CreateShipment validates the request against master data and stores a new
// shipment in draft state.
func (s *ShipmentService) CreateShipment(ctx context.Context, input ports.CreateShipmentInput) (*ports.ShipmentResult, error) {
	if input.ContainerID == "" || input.ClientID == "" ||
		input.Origin.Description == "" || input.Destination.Description == "" {
		return nil, fmt.Errorf("create shipment: missing required fields: %w", domain.ErrInvalidInput)
	}

	ok, err := s.master.ClientExists(ctx, input.ClientID)
	if err != nil {
		return nil, fmt.Errorf("create shipment: validate client: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("create shipment: unknown client %s: %w", input.ClientID, domain.ErrInvalidInput)
	}

	ok, err = s.master.ContainerExists(ctx, input.ContainerID)
	if err != nil {
		return nil, fmt.Errorf("create shipment: validate container: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("create shipment: unknown container %s: %w", input.ContainerID, domain.ErrInvalidInput)
	}

	trackingNumber := input.TrackingNumber
	if trackingNumber == "" {
		trackingNumber = generateTrackingNumber()
	} else if _, err := s.shipments.FindByTrackingNumber(ctx, trackingNumber, ""); err == nil {
		return nil, fmt.Errorf("create shipment: tracking number %s: %w", trackingNumber, domain.ErrDuplicateShipment)
	} else if !errors.Is(err, domain.ErrShipmentNotFound) {
		return nil, fmt.Errorf("create shipment: %w", err)
	}

	shipment := &domain.Shipment{
		TrackingNumber: trackingNumber,
		ContainerID:    input.ContainerID,
		ClientID:       input.ClientID,
		Origin:         toLocation(input.Origin),
		Destination:    toLocation(input.Destination),
		Status:         domain.StatusDraft,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.shipments.Create(ctx, shipment); err != nil {
		s.logger.Error().Err(err).Msg("failed to create shipment")
		return nil, err
	}

	s.audit.Publish(domain.ShipmentEvent{
		TrackingNumber: trackingNumber,
		Type:           domain.EventShipmentCreated,
		Description:    "shipment request accepted",
		Timestamp:      shipment.CreatedAt,
	})

	metrics.ShipmentsCreatedTotal.Inc()
	s.logger.Info().Str("tracking_number", trackingNumber).Str("client_id", input.ClientID).Msg("shipment created")

	return &ports.ShipmentResult{
		ShipmentID:     shipment.ID,
		TrackingNumber: trackingNumber,
		Status:         string(shipment.Status),
		CreatedAt:      shipment.CreatedAt,
	}, nil
}

// EstimateRoute quotes a direct trip without persisting anything. When cargo
// weight and volume are supplied, the applicable tariff band is validated
// against master data first.
func (s *ShipmentService) EstimateRoute(ctx context.Context, input ports.EstimateRouteInput) (*ports.EstimateRouteResult, error) {
	origin, err := requireCoordinates(input.Origin)
	if err != nil {
		return nil, fmt.Errorf("estimate route: origin: %w", err)
	}
	destination, err := requireCoordinates(input.Destination)
	if err != nil {
		return nil, fmt.Errorf("estimate route: destination: %w", err)
	}

	if input.WeightKg != nil && input.VolumeM3 != nil {
		ok, err := s.master.HasApplicableTariff(ctx, *input.WeightKg, *input.VolumeM3)
		if err != nil {
			s.logger.Warn().Err(err).Msg("tariff band check unavailable, continuing estimate")
		} else if !ok {
			return nil, fmt.Errorf("estimate route: no tariff band covers weight %.1f volume %.1f: %w",
				*input.WeightKg, *input.VolumeM3, domain.ErrInvalidInput)
		}
	}

	km, hours := s.legDistance(ctx, origin, destination)
	cost := s.tariff.EstimatedSegmentCost(km, DefaultFuelConsumption)

	return &ports.EstimateRouteResult{
		EstimatedCost:  cost,
		EstimatedHours: hours,
		Legs: []ports.LegEstimate{{
			Origin:         input.Origin.Description,
			Destination:    input.Destination.Description,
			DistanceKm:     km,
			EstimatedCost:  cost,
			EstimatedHours: hours,
		}},
	}, nil
}

// AssignRoute builds the route for a draft shipment: waypoints come from the
// depot selector, each consecutive pair becomes a segment priced at the
// default fuel consumption, and the aggregated estimates schedule the
// shipment.
func (s *ShipmentService) AssignRoute(ctx context.Context, shipmentID string) (*ports.AssignRouteResult, error) {
	release, err := s.locker.Acquire(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("assign route: %w", err)
	}
	defer release()

	shipment, err := s.shipments.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("assign route: %w", err)
	}
	if shipment.Status != domain.StatusDraft {
		return nil, fmt.Errorf("assign route: shipment is %s, not %s: %w",
			shipment.Status, domain.StatusDraft, domain.ErrInvalidTransition)
	}

	origin, err := requireCoordinates(ports.LocationInput{
		Description: shipment.Origin.Description,
		Lat:         coordsLat(shipment.Origin),
		Lng:         coordsLng(shipment.Origin),
	})
	if err != nil {
		return nil, fmt.Errorf("assign route: origin: %w", err)
	}
	destination, err := requireCoordinates(ports.LocationInput{
		Description: shipment.Destination.Description,
		Lat:         coordsLat(shipment.Destination),
		Lng:         coordsLng(shipment.Destination),
	})
	if err != nil {
		return nil, fmt.Errorf("assign route: destination: %w", err)
	}

	depots, err := s.selector.SelectWaypoints(ctx, origin, destination)
	if err != nil {
		// Availability over optimality: an unreachable depot catalog
		// degrades the trip to a direct segment.
		s.logger.Warn().Err(err).Str("shipment_id", shipmentID).
			Msg("depot catalog unavailable, building direct route")
		depots = nil
	}

	waypoints := make([]domain.Waypoint, 0, len(depots)+2)
	waypoints = append(waypoints, domain.Waypoint{
		Description: shipment.Origin.Description, Lat: origin.Lat, Lng: origin.Lng,
	})
	for _, d := range depots {
		waypoints = append(waypoints, domain.Waypoint{
			Description: fmt.Sprintf("%s (%s)", d.Address, d.Name), Lat: d.Lat, Lng: d.Lng,
		})
	}
	waypoints = append(waypoints, domain.Waypoint{
		Description: shipment.Destination.Description, Lat: destination.Lat, Lng: destination.Lng,
	})

	route := &domain.Route{ShipmentID: shipmentID, CreatedAt: time.Now().UTC()}
	if err := s.routes.CreateRoute(ctx, route); err != nil {
		return nil, fmt.Errorf("assign route: %w", err)
	}

	var totalCost, totalHours float64
	segments := make([]*domain.Segment, 0, len(waypoints)-1)
	start := route.CreatedAt.Add(firstSegmentLeadTime)

	for i := 0; i < len(waypoints)-1; i++ {
		from, to := waypoints[i], waypoints[i+1]

		km, hours := s.legDistance(ctx,
			domain.Coordinates{Lat: from.Lat, Lng: from.Lng},
			domain.Coordinates{Lat: to.Lat, Lng: to.Lng},
		)
		cost := s.tariff.EstimatedSegmentCost(km, DefaultFuelConsumption)
		end := start.Add(time.Duration(hours * float64(time.Hour)))

		segments = append(segments, &domain.Segment{
			RouteID:        route.ID,
			Origin:         domain.Location{Description: from.Description, Coordinates: &domain.Coordinates{Lat: from.Lat, Lng: from.Lng}},
			Destination:    domain.Location{Description: to.Description, Coordinates: &domain.Coordinates{Lat: to.Lat, Lng: to.Lng}},
			DistanceKm:     km,
			Status:         domain.SegmentEstimated,
			EstimatedStart: start,
			EstimatedEnd:   end,
			EstimatedCost:  cost,
		})

		totalCost += cost
		totalHours += hours
		start = end.Add(depotHandlingBuffer)
	}

	if err := s.routes.InsertSegments(ctx, segments); err != nil {
		return nil, fmt.Errorf("assign route: %w", err)
	}
	if err := s.shipments.MarkScheduled(ctx, shipmentID, totalCost, totalHours, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("assign route: %w", err)
	}

	s.audit.Publish(domain.ShipmentEvent{
		TrackingNumber: shipment.TrackingNumber,
		Type:           domain.EventRouteAssigned,
		Description:    fmt.Sprintf("route built with %d segment(s)", len(segments)),
		Timestamp:      time.Now().UTC(),
	})

	metrics.RoutesAssignedTotal.WithLabelValues(strconv.Itoa(len(segments))).Inc()
	s.logger.Info().Str("shipment_id", shipmentID).Int("segments", len(segments)).
		Float64("estimated_cost", totalCost).Float64("estimated_hours", totalHours).
		Msg("route assigned")

	views := make([]ports.SegmentView, len(segments))
	for i, seg := range segments {
		views[i] = segmentView(seg)
	}

	return &ports.AssignRouteResult{
		RouteID:        route.ID,
		ShipmentStatus: string(domain.StatusScheduled),
		EstimatedCost:  totalCost,
		EstimatedHours: totalHours,
		Segments:       views,
	}, nil
}

// GetTracking reconstructs the chronological timeline of a shipment from its
// stored creation, route assignment and segment transition timestamps.
func (s *ShipmentService) GetTracking(ctx context.Context, input ports.GetTrackingInput) (*ports.TrackingResult, error) {
	clientFilter := ""
	if input.Role == domain.RoleClient {
		clientFilter = input.ClientID
	}

	shipment, err := s.shipments.FindByTrackingNumber(ctx, input.TrackingNumber, clientFilter)
	if err != nil {
		return nil, fmt.Errorf("get tracking: %w", err)
	}

	history := []ports.TrackingEvent{{
		Timestamp:   shipment.CreatedAt,
		Event:       domain.EventShipmentCreated,
		Description: "shipment request registered",
		Status:      string(domain.StatusDraft),
	}}

	route, err := s.routes.FindRouteByShipmentID(ctx, shipment.ID)
	if err != nil && !errors.Is(err, domain.ErrRouteNotFound) {
		return nil, fmt.Errorf("get tracking: %w", err)
	}

	if route != nil {
		segments, err := s.routes.SegmentsByRoute(ctx, route.ID)
		if err != nil {
			return nil, fmt.Errorf("get tracking: %w", err)
		}

		history = append(history, ports.TrackingEvent{
			Timestamp:   route.CreatedAt,
			Event:       domain.EventRouteAssigned,
			Description: fmt.Sprintf("route calculated with %d segment(s)", len(segments)),
			Status:      string(domain.StatusScheduled),
		})

		for _, seg := range segments {
			if seg.RealStart != nil {
				history = append(history, ports.TrackingEvent{
					Timestamp:   *seg.RealStart,
					Event:       domain.EventSegmentStarted,
					Description: fmt.Sprintf("departed %s towards %s", seg.Origin.Description, seg.Destination.Description),
					Status:      string(domain.SegmentInTransit),
				})
			}
			if seg.RealEnd != nil {
				history = append(history, ports.TrackingEvent{
					Timestamp:   *seg.RealEnd,
					Event:       domain.EventSegmentFinished,
					Description: fmt.Sprintf("arrived at %s from %s", seg.Destination.Description, seg.Origin.Description),
					Status:      string(seg.Status),
				})
			}
		}
	}

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp.Before(history[j].Timestamp)
	})

	return &ports.TrackingResult{
		ShipmentID:     shipment.ID,
		TrackingNumber: shipment.TrackingNumber,
		Status:         string(shipment.Status),
		EstimatedCost:  shipment.EstimatedCost,
		EstimatedHours: shipment.EstimatedHours,
		FinalCost:      shipment.FinalCost,
		FinalHours:     shipment.FinalHours,
		History:        history,
	}, nil
}

// ListPending returns every non-terminal shipment annotated with its derived
// current location.
func (s *ShipmentService) ListPending(ctx context.Context, filter ports.PendingFilter) ([]ports.PendingShipment, error) {
	shipments, err := s.shipments.ListPending(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}

	pending := make([]ports.PendingShipment, 0, len(shipments))
	for _, shipment := range shipments {
		row := ports.PendingShipment{
			ShipmentID:     shipment.ID,
			TrackingNumber: shipment.TrackingNumber,
			ContainerID:    shipment.ContainerID,
			ClientID:       shipment.ClientID,
			Status:         string(shipment.Status),
			EstimatedCost:  shipment.EstimatedCost,
			FinalCost:      shipment.FinalCost,
		}

		if err := s.deriveLocation(ctx, shipment, &row); err != nil {
			return nil, fmt.Errorf("list pending: %w", err)
		}
		pending = append(pending, row)
	}
	return pending, nil
}

// deriveLocation inspects a shipment's segments to place the container: in
// transit on an active segment, waiting at a depot, or still at the origin.
func (s *ShipmentService) deriveLocation(ctx context.Context, shipment *domain.Shipment, row *ports.PendingShipment) error {
	route, err := s.routes.FindRouteByShipmentID(ctx, shipment.ID)
	if errors.Is(err, domain.ErrRouteNotFound) {
		row.CurrentLocation = ports.LocationAtOrigin
		row.LocationDetail = "at origin: " + shipment.Origin.Description
		return nil
	}
	if err != nil {
		return err
	}

	segments, err := s.routes.SegmentsByRoute(ctx, route.ID)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		row.CurrentLocation = ports.LocationAtOrigin
		row.LocationDetail = "at origin: " + shipment.Origin.Description
		return nil
	}

	for _, seg := range segments {
		switch seg.Status {
		case domain.SegmentInTransit:
			row.CurrentLocation = ports.LocationInTransit
			row.LocationDetail = fmt.Sprintf("travelling from %s to %s", seg.Origin.Description, seg.Destination.Description)
			view := segmentView(seg)
			row.ActiveSegment = &view
			return nil
		case domain.SegmentAssigned:
			row.CurrentLocation = ports.LocationAtDepot
			row.LocationDetail = "waiting at " + seg.Origin.Description
			view := segmentView(seg)
			row.ActiveSegment = &view
			return nil
		}
	}

	var lastFinished *domain.Segment
	for _, seg := range segments {
		if seg.Status == domain.SegmentFinished {
			lastFinished = seg
		}
	}
	if lastFinished != nil {
		row.CurrentLocation = ports.LocationAtDepot
		row.LocationDetail = "at depot: " + lastFinished.Destination.Description
		return nil
	}

	row.CurrentLocation = ports.LocationPendingTruck
	row.LocationDetail = "waiting for truck assignment"
	return nil
}

// legDistance resolves one leg's distance and duration, preferring the
// external provider and falling back to the great-circle figure at the
// average speed when the provider fails.
func (s *ShipmentService) legDistance(ctx context.Context, a, b domain.Coordinates) (km, hours float64) {
	if s.distance != nil {
		km, hours, err := s.distance.DistanceAndDuration(ctx, a, b)
		if err == nil {
			return km, hours
		}
		s.logger.Warn().Err(err).Msg("distance provider failed, using great-circle fallback")
		metrics.DistanceFallbacksTotal.Inc()
	}

	km = domain.DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng)
	return km, s.tariff.EstimatedDurationHours(km)
}

func toLocation(in ports.LocationInput) domain.Location {
	loc := domain.Location{Description: in.Description}
	if in.Lat != nil && in.Lng != nil {
		loc.Coordinates = &domain.Coordinates{Lat: *in.Lat, Lng: *in.Lng}
	}
	return loc
}

func requireCoordinates(in ports.LocationInput) (domain.Coordinates, error) {
	if in.Lat == nil || in.Lng == nil {
		return domain.Coordinates{}, fmt.Errorf("missing coordinates for %q: %w", in.Description, domain.ErrInvalidInput)
	}
	return domain.Coordinates{Lat: *in.Lat, Lng: *in.Lng}, nil
}

func coordsLat(l domain.Location) *float64 {
	if l.Coordinates == nil {
		return nil
	}
	return &l.Coordinates.Lat
}

func coordsLng(l domain.Location) *float64 {
	if l.Coordinates == nil {
		return nil
	}
	return &l.Coordinates.Lng
}

func segmentView(seg *domain.Segment) ports.SegmentView {
	return ports.SegmentView{
		ID:             seg.ID,
		RouteID:        seg.RouteID,
		TruckPlate:     seg.TruckPlate,
		Origin:         seg.Origin.Description,
		Destination:    seg.Destination.Description,
		DistanceKm:     seg.DistanceKm,
		Status:         string(seg.Status),
		EstimatedStart: seg.EstimatedStart,
		EstimatedEnd:   seg.EstimatedEnd,
		RealStart:      seg.RealStart,
		RealEnd:        seg.RealEnd,
		EstimatedCost:  seg.EstimatedCost,
		RealCost:       seg.RealCost,
	}
}

// generateTrackingNumber returns a tracking number in the format RC-XXXXXXXX.
func generateTrackingNumber() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("RC-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("RC-%08X", b)
}
