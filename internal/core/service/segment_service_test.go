package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rodocarga/logistics-api/internal/core/domain"
	"github.com/rodocarga/logistics-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stub fleet service
// ---------------------------------------------------------------------------

type stubFleet struct {
	available bool
	fits      bool
}

func (s *stubFleet) IsAvailable(_ context.Context, _ string) (bool, error) {
	return s.available, nil
}

func (s *stubFleet) TruckFitsCargo(_ context.Context, _ string, _, _ float64) (bool, error) {
	return s.fits, nil
}

// ---------------------------------------------------------------------------
// Fixture: one scheduled shipment with a routed chain of segments
// ---------------------------------------------------------------------------

type segmentFixture struct {
	routes    *stubRouteRepo
	shipments *stubShipmentRepo
	fleet     *stubFleet
	locker    *stubLocker
	audit     *recordingPublisher
	svc       *SegmentService
}

func newSegmentFixture(t *testing.T, segmentCount int) *segmentFixture {
	t.Helper()

	f := &segmentFixture{
		routes:    newStubRouteRepo(),
		shipments: newStubShipmentRepo(),
		fleet:     &stubFleet{available: true, fits: true},
		locker:    &stubLocker{},
		audit:     &recordingPublisher{},
	}
	f.svc = NewSegmentService(f.routes, f.shipments, f.fleet, f.locker, f.audit, discardLogger)

	f.shipments.byID["ship_1"] = &domain.Shipment{
		ID:             "ship_1",
		TrackingNumber: "RC-TEST0001",
		ContainerID:    "cont_1",
		ClientID:       "client_1",
		Status:         domain.StatusScheduled,
		CreatedAt:      time.Now().UTC().Add(-48 * time.Hour),
	}
	f.routes.routes["route_1"] = &domain.Route{
		ID:         "route_1",
		ShipmentID: "ship_1",
		CreatedAt:  time.Now().UTC().Add(-47 * time.Hour),
	}

	start := time.Now().UTC().Add(-24 * time.Hour)
	for i := 1; i <= segmentCount; i++ {
		id := "seg_" + string(rune('0'+i))
		end := start.Add(8 * time.Hour)
		f.routes.segments[id] = &domain.Segment{
			ID:             id,
			RouteID:        "route_1",
			Origin:         domain.Location{Description: "stop " + string(rune('0'+i-1))},
			Destination:    domain.Location{Description: "stop " + string(rune('0'+i))},
			DistanceKm:     480,
			Status:         domain.SegmentEstimated,
			EstimatedStart: start,
			EstimatedEnd:   end,
			EstimatedCost:  500,
		}
		start = end.Add(time.Hour)
	}
	return f
}

// ---------------------------------------------------------------------------
// AssignTruck tests
// ---------------------------------------------------------------------------

func validAssignInput() ports.AssignTruckInput {
	return ports.AssignTruckInput{
		SegmentID:     "seg_1",
		TruckPlate:    "ABC-123",
		CargoWeightKg: 12000,
		CargoVolumeM3: 40,
	}
}

func TestSegmentService_AssignTruck_Success(t *testing.T) {
	f := newSegmentFixture(t, 1)

	view, err := f.svc.AssignTruck(context.Background(), validAssignInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if view.Status != string(domain.SegmentAssigned) {
		t.Errorf("expected status %s, got %s", domain.SegmentAssigned, view.Status)
	}
	if view.TruckPlate != "ABC-123" {
		t.Errorf("expected plate ABC-123, got %s", view.TruckPlate)
	}
	if f.routes.segments["seg_1"].Status != domain.SegmentAssigned {
		t.Error("stored segment must be assigned")
	}
	if len(f.audit.events) != 1 || f.audit.events[0].Type != domain.EventTruckAssigned {
		t.Errorf("expected one %s audit event, got %+v", domain.EventTruckAssigned, f.audit.events)
	}
}

func TestSegmentService_AssignTruck_ValidatesBeforeLocking(t *testing.T) {
	f := newSegmentFixture(t, 1)

	input := validAssignInput()
	input.TruckPlate = ""

	_, err := f.svc.AssignTruck(context.Background(), input)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if f.locker.acquires != 0 {
		t.Error("input validation must run before the lock is taken")
	}

	input = validAssignInput()
	input.CargoWeightKg = 0
	if _, err := f.svc.AssignTruck(context.Background(), input); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero weight, got %v", err)
	}
}

func TestSegmentService_AssignTruck_TruckUnavailable(t *testing.T) {
	f := newSegmentFixture(t, 1)
	f.fleet.available = false

	_, err := f.svc.AssignTruck(context.Background(), validAssignInput())
	if !errors.Is(err, domain.ErrCapacityUnavailable) {
		t.Fatalf("expected ErrCapacityUnavailable, got %v", err)
	}
	if f.routes.segments["seg_1"].Status != domain.SegmentEstimated {
		t.Error("segment must stay estimated when no truck is available")
	}
}

func TestSegmentService_AssignTruck_CargoDoesNotFit(t *testing.T) {
	f := newSegmentFixture(t, 1)
	f.fleet.fits = false

	_, err := f.svc.AssignTruck(context.Background(), validAssignInput())
	if !errors.Is(err, domain.ErrCapacityUnavailable) {
		t.Fatalf("expected ErrCapacityUnavailable, got %v", err)
	}
}

func TestSegmentService_AssignTruck_OnlyFromEstimated(t *testing.T) {
	f := newSegmentFixture(t, 1)

	if _, err := f.svc.AssignTruck(context.Background(), validAssignInput()); err != nil {
		t.Fatalf("first assignment failed: %v", err)
	}
	_, err := f.svc.AssignTruck(context.Background(), validAssignInput())
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on reassignment, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Start tests
// ---------------------------------------------------------------------------

func TestSegmentService_Start_Success(t *testing.T) {
	f := newSegmentFixture(t, 1)

	if _, err := f.svc.AssignTruck(context.Background(), validAssignInput()); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	view, err := f.svc.Start(context.Background(), "seg_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if view.Status != string(domain.SegmentInTransit) {
		t.Errorf("expected status %s, got %s", domain.SegmentInTransit, view.Status)
	}
	if view.RealStart == nil {
		t.Error("starting must record the real departure time")
	}
}

func TestSegmentService_Start_RequiresAssignedTruck(t *testing.T) {
	f := newSegmentFixture(t, 1)

	_, err := f.svc.Start(context.Background(), "seg_1")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for estimated segment, got %v", err)
	}
	if f.routes.segments["seg_1"].RealStart != nil {
		t.Error("rejected start must not record a departure time")
	}
}

func TestSegmentService_Start_UnknownSegment(t *testing.T) {
	f := newSegmentFixture(t, 1)

	_, err := f.svc.Start(context.Background(), "seg_missing")
	if !errors.Is(err, domain.ErrSegmentNotFound) {
		t.Fatalf("expected ErrSegmentNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Finish tests
// ---------------------------------------------------------------------------

func validFinishInput(segmentID string) ports.FinishSegmentInput {
	return ports.FinishSegmentInput{
		SegmentID:            segmentID,
		RealDistanceKm:       512,
		TruckCostPerKm:       120,
		TruckFuelConsumption: 0.2,
	}
}

func driveToInTransit(t *testing.T, f *segmentFixture, segmentID string) {
	t.Helper()
	input := validAssignInput()
	input.SegmentID = segmentID
	if _, err := f.svc.AssignTruck(context.Background(), input); err != nil {
		t.Fatalf("assign %s failed: %v", segmentID, err)
	}
	if _, err := f.svc.Start(context.Background(), segmentID); err != nil {
		t.Fatalf("start %s failed: %v", segmentID, err)
	}
}

func TestSegmentService_Finish_RejectsNonPositiveFigures(t *testing.T) {
	f := newSegmentFixture(t, 1)
	driveToInTransit(t, f, "seg_1")

	cases := []ports.FinishSegmentInput{
		{SegmentID: "seg_1", RealDistanceKm: 0, TruckCostPerKm: 120, TruckFuelConsumption: 0.2},
		{SegmentID: "seg_1", RealDistanceKm: 512, TruckCostPerKm: -1, TruckFuelConsumption: 0.2},
		{SegmentID: "seg_1", RealDistanceKm: 512, TruckCostPerKm: 120, TruckFuelConsumption: 0},
	}
	for _, input := range cases {
		if _, err := f.svc.Finish(context.Background(), input); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("input %+v: expected ErrInvalidInput, got %v", input, err)
		}
	}

	seg := f.routes.segments["seg_1"]
	if seg.Status != domain.SegmentInTransit || seg.RealEnd != nil {
		t.Error("rejected finish must leave the segment untouched")
	}
}

func TestSegmentService_Finish_WritesRealFigures(t *testing.T) {
	f := newSegmentFixture(t, 2)
	driveToInTransit(t, f, "seg_1")

	view, err := f.svc.Finish(context.Background(), validFinishInput("seg_1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var tariff Tariff
	wantCost := tariff.RealSegmentCost(512, 120, 0.2)

	if view.Status != string(domain.SegmentFinished) {
		t.Errorf("expected status %s, got %s", domain.SegmentFinished, view.Status)
	}
	if !almostEqual(view.DistanceKm, 512) {
		t.Errorf("real kilometres must overwrite the planned distance, got %f", view.DistanceKm)
	}
	if view.RealCost == nil || !almostEqual(*view.RealCost, wantCost) {
		t.Errorf("expected real cost %.2f, got %v", wantCost, view.RealCost)
	}

	// The second segment is still pending: no settlement yet.
	if f.shipments.byID["ship_1"].Status != domain.StatusScheduled {
		t.Error("shipment must stay scheduled while segments remain")
	}
}

func TestSegmentService_Finish_OnlyFromInTransit(t *testing.T) {
	f := newSegmentFixture(t, 1)

	_, err := f.svc.Finish(context.Background(), validFinishInput("seg_1"))
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for estimated segment, got %v", err)
	}
}

func TestSegmentService_Finish_DoubleFinish(t *testing.T) {
	f := newSegmentFixture(t, 1)
	driveToInTransit(t, f, "seg_1")

	if _, err := f.svc.Finish(context.Background(), validFinishInput("seg_1")); err != nil {
		t.Fatalf("first finish failed: %v", err)
	}
	_, err := f.svc.Finish(context.Background(), validFinishInput("seg_1"))
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double finish, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Settlement tests
// ---------------------------------------------------------------------------

func TestSegmentService_Finish_LastSegmentSettlesShipment(t *testing.T) {
	f := newSegmentFixture(t, 1)
	driveToInTransit(t, f, "seg_1")

	if _, err := f.svc.Finish(context.Background(), validFinishInput("seg_1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shipment := f.shipments.byID["ship_1"]
	if shipment.Status != domain.StatusDelivered {
		t.Fatalf("expected shipment delivered, got %s", shipment.Status)
	}

	// Single segment, no dwell: final cost is exactly the real segment cost.
	var tariff Tariff
	wantCost := tariff.RealSegmentCost(512, 120, 0.2)
	if shipment.FinalCost == nil || !almostEqual(*shipment.FinalCost, wantCost) {
		t.Errorf("expected final cost %.2f, got %v", wantCost, shipment.FinalCost)
	}
	if shipment.FinalHours == nil {
		t.Error("settlement must record the final duration")
	}

	var settled bool
	for _, ev := range f.audit.events {
		if ev.Type == domain.EventShipmentSettled {
			settled = true
		}
	}
	if !settled {
		t.Error("settlement must emit an audit event")
	}
}

func TestSegmentService_Finish_SettlementChargesDwell(t *testing.T) {
	f := newSegmentFixture(t, 2)

	// First segment already finished: 5h drive, then the container waited
	// 30h at the depot before the second segment departed. A 30h gap bills
	// two whole days of storage.
	t0 := time.Now().UTC().Add(-40 * time.Hour)
	end0 := t0.Add(5 * time.Hour)
	start1 := end0.Add(30 * time.Hour)
	cost0 := 20000.0

	seg0 := f.routes.segments["seg_1"]
	seg0.Status = domain.SegmentFinished
	seg0.TruckPlate = "ABC-123"
	seg0.RealStart = &t0
	seg0.RealEnd = &end0
	seg0.RealCost = &cost0

	seg1 := f.routes.segments["seg_2"]
	seg1.Status = domain.SegmentInTransit
	seg1.TruckPlate = "XYZ-789"
	seg1.RealStart = &start1

	if _, err := f.svc.Finish(context.Background(), validFinishInput("seg_2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shipment := f.shipments.byID["ship_1"]
	if shipment.Status != domain.StatusDelivered {
		t.Fatalf("expected shipment delivered, got %s", shipment.Status)
	}

	var tariff Tariff
	wantCost := cost0 + tariff.RealSegmentCost(512, 120, 0.2) + 2*DepotStayCostPerDay
	if shipment.FinalCost == nil || !almostEqual(*shipment.FinalCost, wantCost) {
		t.Errorf("expected final cost %.2f including dwell, got %v", wantCost, shipment.FinalCost)
	}
}

func TestSegmentService_Finish_SettlementAbortsOnMalformedSegment(t *testing.T) {
	f := newSegmentFixture(t, 2)

	// The first segment claims to be finished but lost its real cost: the
	// settlement must refuse rather than write a wrong invoice.
	t0 := time.Now().UTC().Add(-10 * time.Hour)
	end0 := t0.Add(5 * time.Hour)
	start1 := end0.Add(2 * time.Hour)

	seg0 := f.routes.segments["seg_1"]
	seg0.Status = domain.SegmentFinished
	seg0.RealStart = &t0
	seg0.RealEnd = &end0

	seg1 := f.routes.segments["seg_2"]
	seg1.Status = domain.SegmentInTransit
	seg1.RealStart = &start1

	_, err := f.svc.Finish(context.Background(), validFinishInput("seg_2"))
	if err == nil {
		t.Fatal("expected settlement to fail on a malformed segment")
	}
	if f.shipments.byID["ship_1"].Status != domain.StatusScheduled {
		t.Error("aborted settlement must leave the shipment scheduled")
	}
}

// ---------------------------------------------------------------------------
// ListByTruck tests
// ---------------------------------------------------------------------------

func TestSegmentService_ListByTruck(t *testing.T) {
	f := newSegmentFixture(t, 2)
	driveToInTransit(t, f, "seg_1")

	views, err := f.svc.ListByTruck(context.Background(), "ABC-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 segment for ABC-123, got %d", len(views))
	}
	if views[0].ID != "seg_1" {
		t.Errorf("expected seg_1, got %s", views[0].ID)
	}

	if _, err := f.svc.ListByTruck(context.Background(), ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty plate, got %v", err)
	}
}
