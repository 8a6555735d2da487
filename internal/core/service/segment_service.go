package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/rodocarga/logistics-api/internal/api/metrics"
	"github.com/rodocarga/logistics-api/internal/core/domain"
	"github.com/rodocarga/logistics-api/internal/core/ports"
)

// SegmentService implements ports.SegmentService: the segment state machine
// and the shipment settlement it triggers.
type SegmentService struct {
	routes    ports.RouteRepository
	shipments ports.ShipmentRepository
	fleet     ports.FleetService
	locker    ports.ShipmentLocker
	audit     ports.AuditPublisher
	tariff    Tariff
	logger    zerolog.Logger
}

func NewSegmentService(
	routes ports.RouteRepository,
	shipments ports.ShipmentRepository,
	fleet ports.FleetService,
	locker ports.ShipmentLocker,
	audit ports.AuditPublisher,
	logger zerolog.Logger,
) *SegmentService {
	return &SegmentService{
		routes:    routes,
		shipments: shipments,
		fleet:     fleet,
		locker:    locker,
		audit:     audit,
		logger:    logger,
	}
}

// AssignTruck assigns a named truck to an estimated segment, after the fleet
// service confirms the truck is available and fits the cargo.
func (s *SegmentService) AssignTruck(ctx context.Context, input ports.AssignTruckInput) (*ports.SegmentView, error) {
	view, err := s.assignTruck(ctx, input)
	observeTransition("assign_truck", err)
	return view, err
}

func (s *SegmentService) assignTruck(ctx context.Context, input ports.AssignTruckInput) (*ports.SegmentView, error) {
	if input.TruckPlate == "" {
		return nil, fmt.Errorf("assign truck: empty plate: %w", domain.ErrInvalidInput)
	}
	if input.CargoWeightKg <= 0 || input.CargoVolumeM3 <= 0 {
		return nil, fmt.Errorf("assign truck: cargo weight and volume must be positive: %w", domain.ErrInvalidInput)
	}

	segment, shipment, release, err := s.lockAggregate(ctx, input.SegmentID)
	if err != nil {
		return nil, fmt.Errorf("assign truck: %w", err)
	}
	defer release()

	if segment.Status != domain.SegmentEstimated {
		return nil, fmt.Errorf("assign truck: segment is %s, not %s: %w",
			segment.Status, domain.SegmentEstimated, domain.ErrInvalidTransition)
	}

	available, err := s.fleet.IsAvailable(ctx, input.TruckPlate)
	if err != nil {
		return nil, fmt.Errorf("assign truck: fleet availability: %w", err)
	}
	if !available {
		return nil, fmt.Errorf("assign truck: truck %s is not available: %w",
			input.TruckPlate, domain.ErrCapacityUnavailable)
	}

	fits, err := s.fleet.TruckFitsCargo(ctx, input.TruckPlate, input.CargoWeightKg, input.CargoVolumeM3)
	if err != nil {
		return nil, fmt.Errorf("assign truck: fleet capacity: %w", err)
	}
	if !fits {
		return nil, fmt.Errorf("assign truck: truck %s cannot carry %.1fkg / %.1fm3: %w",
			input.TruckPlate, input.CargoWeightKg, input.CargoVolumeM3, domain.ErrCapacityUnavailable)
	}

	if err := s.routes.AssignTruck(ctx, segment.ID, input.TruckPlate); err != nil {
		return nil, fmt.Errorf("assign truck: %w", err)
	}

	segment.TruckPlate = input.TruckPlate
	segment.Status = domain.SegmentAssigned

	s.audit.Publish(domain.ShipmentEvent{
		TrackingNumber: shipment.TrackingNumber,
		Type:           domain.EventTruckAssigned,
		Description:    fmt.Sprintf("truck %s assigned for %s → %s", input.TruckPlate, segment.Origin.Description, segment.Destination.Description),
		SegmentID:      segment.ID,
		Timestamp:      time.Now().UTC(),
	})

	s.logger.Info().Str("segment_id", segment.ID).Str("truck_plate", input.TruckPlate).Msg("truck assigned")

	view := segmentView(segment)
	return &view, nil
}

// Start records the real departure of an assigned segment.
func (s *SegmentService) Start(ctx context.Context, segmentID string) (*ports.SegmentView, error) {
	view, err := s.start(ctx, segmentID)
	observeTransition("start", err)
	return view, err
}

func (s *SegmentService) start(ctx context.Context, segmentID string) (*ports.SegmentView, error) {
	segment, shipment, release, err := s.lockAggregate(ctx, segmentID)
	if err != nil {
		return nil, fmt.Errorf("start segment: %w", err)
	}
	defer release()

	if segment.Status != domain.SegmentAssigned {
		return nil, fmt.Errorf("start segment: segment is %s, not %s: %w",
			segment.Status, domain.SegmentAssigned, domain.ErrInvalidTransition)
	}

	now := time.Now().UTC()
	if err := s.routes.StartSegment(ctx, segmentID, now); err != nil {
		return nil, fmt.Errorf("start segment: %w", err)
	}

	segment.Status = domain.SegmentInTransit
	segment.RealStart = &now

	s.audit.Publish(domain.ShipmentEvent{
		TrackingNumber: shipment.TrackingNumber,
		Type:           domain.EventSegmentStarted,
		Description:    fmt.Sprintf("departed %s towards %s", segment.Origin.Description, segment.Destination.Description),
		SegmentID:      segment.ID,
		Timestamp:      now,
	})

	s.logger.Info().Str("segment_id", segmentID).Msg("segment started")

	view := segmentView(segment)
	return &view, nil
}

// Finish records the real arrival of an in-transit segment: the real
// kilometres driven overwrite the planned distance and the real cost is
// computed from the assigned truck's figures. When every segment of the route
// is finished the owning shipment is settled.
func (s *SegmentService) Finish(ctx context.Context, input ports.FinishSegmentInput) (*ports.SegmentView, error) {
	view, err := s.finish(ctx, input)
	observeTransition("finish", err)
	return view, err
}

func (s *SegmentService) finish(ctx context.Context, input ports.FinishSegmentInput) (*ports.SegmentView, error) {
	if input.RealDistanceKm <= 0 {
		return nil, fmt.Errorf("finish segment: real distance must be positive: %w", domain.ErrInvalidInput)
	}
	if input.TruckCostPerKm <= 0 {
		return nil, fmt.Errorf("finish segment: truck cost per km must be positive: %w", domain.ErrInvalidInput)
	}
	if input.TruckFuelConsumption <= 0 {
		return nil, fmt.Errorf("finish segment: truck fuel consumption must be positive: %w", domain.ErrInvalidInput)
	}

	segment, shipment, release, err := s.lockAggregate(ctx, input.SegmentID)
	if err != nil {
		return nil, fmt.Errorf("finish segment: %w", err)
	}
	defer release()

	if segment.Status != domain.SegmentInTransit {
		return nil, fmt.Errorf("finish segment: segment is %s, not %s: %w",
			segment.Status, domain.SegmentInTransit, domain.ErrInvalidTransition)
	}

	now := time.Now().UTC()
	realCost := s.tariff.RealSegmentCost(input.RealDistanceKm, input.TruckCostPerKm, input.TruckFuelConsumption)

	if err := s.routes.FinishSegment(ctx, input.SegmentID, now, input.RealDistanceKm, realCost); err != nil {
		return nil, fmt.Errorf("finish segment: %w", err)
	}

	segment.Status = domain.SegmentFinished
	segment.RealEnd = &now
	segment.DistanceKm = input.RealDistanceKm
	segment.RealCost = &realCost

	s.audit.Publish(domain.ShipmentEvent{
		TrackingNumber: shipment.TrackingNumber,
		Type:           domain.EventSegmentFinished,
		Description:    fmt.Sprintf("arrived at %s from %s", segment.Destination.Description, segment.Origin.Description),
		SegmentID:      segment.ID,
		Timestamp:      now,
	})

	s.logger.Info().Str("segment_id", segment.ID).Float64("real_km", input.RealDistanceKm).
		Float64("real_cost", realCost).Msg("segment finished")

	segments, err := s.routes.SegmentsByRoute(ctx, segment.RouteID)
	if err != nil {
		return nil, fmt.Errorf("finish segment: %w", err)
	}
	if allFinished(segments) {
		if err := s.settle(ctx, shipment, segments); err != nil {
			// The segment stays finished and the shipment stays
			// scheduled; an operator corrects the segment data and
			// re-triggers settlement.
			return nil, fmt.Errorf("finish segment: settlement: %w", err)
		}
	}

	view := segmentView(segment)
	return &view, nil
}

// ListByTruck returns every segment assigned to the given plate.
func (s *SegmentService) ListByTruck(ctx context.Context, plate string) ([]ports.SegmentView, error) {
	if plate == "" {
		return nil, fmt.Errorf("list by truck: empty plate: %w", domain.ErrInvalidInput)
	}
	segments, err := s.routes.SegmentsByTruck(ctx, plate)
	if err != nil {
		return nil, fmt.Errorf("list by truck: %w", err)
	}

	views := make([]ports.SegmentView, len(segments))
	for i, seg := range segments {
		views[i] = segmentView(seg)
	}
	return views, nil
}

// settle closes a shipment once its final segment has finished: total real
// cost plus dwell charges, and total elapsed driving time. A malformed
// timestamp set aborts the settlement, leaving the shipment untouched for a
// later retry.
func (s *SegmentService) settle(ctx context.Context, shipment *domain.Shipment, segments []*domain.Segment) error {
	ordered := make([]*domain.Segment, len(segments))
	copy(ordered, segments)

	var totalCost, totalHours float64
	for _, seg := range ordered {
		if seg.RealStart == nil || seg.RealEnd == nil {
			return fmt.Errorf("segment %s finished without real timestamps", seg.ID)
		}
		if seg.RealEnd.Before(*seg.RealStart) {
			return fmt.Errorf("segment %s real end precedes real start", seg.ID)
		}
		if seg.RealCost == nil {
			return fmt.Errorf("segment %s finished without real cost", seg.ID)
		}
		totalCost += *seg.RealCost
		totalHours += seg.RealEnd.Sub(*seg.RealStart).Hours()
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].RealStart.Before(*ordered[j].RealStart)
	})

	var dwellCost float64
	for i := 0; i < len(ordered)-1; i++ {
		gap := ordered[i+1].RealStart.Sub(*ordered[i].RealEnd).Hours()
		days := s.tariff.DwellDays(gap)
		dwellCost += s.tariff.DwellCost(days, DepotStayCostPerDay)
	}
	totalCost += dwellCost

	now := time.Now().UTC()
	if err := s.shipments.Settle(ctx, shipment.ID, totalCost, totalHours, now); err != nil {
		return err
	}

	s.audit.Publish(domain.ShipmentEvent{
		TrackingNumber: shipment.TrackingNumber,
		Type:           domain.EventShipmentSettled,
		Description:    fmt.Sprintf("shipment delivered, final cost %.2f (dwell %.2f)", totalCost, dwellCost),
		Timestamp:      now,
	})

	metrics.ShipmentsSettledTotal.Inc()
	s.logger.Info().Str("shipment_id", shipment.ID).Float64("final_cost", totalCost).
		Float64("dwell_cost", dwellCost).Float64("final_hours", totalHours).
		Msg("shipment settled")

	return nil
}

func observeTransition(transition string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.SegmentTransitionsTotal.WithLabelValues(transition, result).Inc()
}

// lockAggregate resolves a segment up to its owning shipment and takes the
// per-shipment lock, returning the resolved pair and the release callback.
func (s *SegmentService) lockAggregate(ctx context.Context, segmentID string) (*domain.Segment, *domain.Shipment, func(), error) {
	segment, err := s.routes.FindSegmentByID(ctx, segmentID)
	if err != nil {
		return nil, nil, nil, err
	}

	// The route row holds the shipment reference.
	shipment, err := s.shipmentForRoute(ctx, segment.RouteID)
	if err != nil {
		return nil, nil, nil, err
	}

	release, err := s.locker.Acquire(ctx, shipment.ID)
	if err != nil {
		return nil, nil, nil, err
	}

	// Re-read under the lock so the status check sees the latest state.
	segment, err = s.routes.FindSegmentByID(ctx, segmentID)
	if err != nil {
		release()
		return nil, nil, nil, err
	}

	return segment, shipment, release, nil
}

func (s *SegmentService) shipmentForRoute(ctx context.Context, routeID string) (*domain.Shipment, error) {
	route, err := s.routes.FindRouteByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	return s.shipments.FindByID(ctx, route.ShipmentID)
}

func allFinished(segments []*domain.Segment) bool {
	for _, seg := range segments {
		if seg.Status != domain.SegmentFinished {
			return false
		}
	}
	return len(segments) > 0
}
