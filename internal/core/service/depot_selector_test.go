package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rodocarga/logistics-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stub depot catalog
// ---------------------------------------------------------------------------

type stubDepotCatalog struct {
	depots []domain.Depot
	err    error
}

func (c *stubDepotCatalog) ListDepots(_ context.Context) ([]domain.Depot, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.depots, nil
}

var discardLogger = zerolog.Nop()

// Test geometry runs along the Greenwich meridian, where one degree of
// latitude is ~111.19 km and distances are easy to reason about.
func meridianDepot(id string, lat float64) domain.Depot {
	return domain.Depot{ID: id, Name: "Depot " + id, Address: "km marker " + id, Lat: lat, Lng: 0}
}

// ---------------------------------------------------------------------------
// SelectWaypoints tests
// ---------------------------------------------------------------------------

func TestDepotSelector_ShortTripIsDirect(t *testing.T) {
	catalog := &stubDepotCatalog{depots: []domain.Depot{meridianDepot("d1", 1.5)}}
	selector := NewDepotSelector(catalog, discardLogger)

	// ~334 km, well under the split threshold.
	got, err := selector.SelectWaypoints(context.Background(), domain.Coordinates{Lat: 0, Lng: 0}, domain.Coordinates{Lat: 3, Lng: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("short trip must have no waypoints, got %d", len(got))
	}
}

func TestDepotSelector_LongTripPicksEvenlySpacedDepots(t *testing.T) {
	// ~1501 km trip → 2 intermediate stops, targets at ~500 and ~1000 km.
	catalog := &stubDepotCatalog{depots: []domain.Depot{
		meridianDepot("far", 12),    // ~1334 km from origin, poor fit for both targets
		meridianDepot("mid2", 9),    // ~1000 km from origin
		meridianDepot("mid1", 4.5),  // ~500 km from origin
		meridianDepot("early", 0.5), // ~55 km from origin
	}}
	selector := NewDepotSelector(catalog, discardLogger)

	got, err := selector.SelectWaypoints(context.Background(), domain.Coordinates{Lat: 0, Lng: 0}, domain.Coordinates{Lat: 13.5, Lng: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 waypoints, got %d", len(got))
	}
	if got[0].ID != "mid1" || got[1].ID != "mid2" {
		t.Errorf("expected [mid1 mid2], got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestDepotSelector_SingleStopPicksNearestToMidpoint(t *testing.T) {
	// ~778 km trip → 1 stop, target at the midpoint (~389 km).
	catalog := &stubDepotCatalog{depots: []domain.Depot{
		meridianDepot("a", 1), // ~111 km
		meridianDepot("b", 3), // ~334 km, closest to the midpoint
		meridianDepot("c", 6), // ~667 km
	}}
	selector := NewDepotSelector(catalog, discardLogger)

	got, err := selector.SelectWaypoints(context.Background(), domain.Coordinates{Lat: 0, Lng: 0}, domain.Coordinates{Lat: 7, Lng: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 waypoint, got %d", len(got))
	}
	if got[0].ID != "b" {
		t.Errorf("expected depot b, got %s", got[0].ID)
	}
}

func TestDepotSelector_RejectsDepotsOffRoute(t *testing.T) {
	// The only depot sits ~890 km off the route axis: the detour far exceeds
	// the tolerance and the trip degrades to a direct segment.
	catalog := &stubDepotCatalog{depots: []domain.Depot{
		{ID: "offroute", Name: "Offroute", Lat: 6.75, Lng: 8},
	}}
	selector := NewDepotSelector(catalog, discardLogger)

	got, err := selector.SelectWaypoints(context.Background(), domain.Coordinates{Lat: 0, Lng: 0}, domain.Coordinates{Lat: 13.5, Lng: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("off-route depot must not be selected, got %d waypoints", len(got))
	}
}

func TestDepotSelector_NeverReusesADepot(t *testing.T) {
	// Only one on-route depot but two targets: it may serve only one.
	catalog := &stubDepotCatalog{depots: []domain.Depot{meridianDepot("only", 4.5)}}
	selector := NewDepotSelector(catalog, discardLogger)

	got, err := selector.SelectWaypoints(context.Background(), domain.Coordinates{Lat: 0, Lng: 0}, domain.Coordinates{Lat: 13.5, Lng: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 waypoint from a single candidate, got %d", len(got))
	}
	if got[0].ID != "only" {
		t.Errorf("expected depot only, got %s", got[0].ID)
	}
}

func TestDepotSelector_CatalogErrorPropagates(t *testing.T) {
	catalog := &stubDepotCatalog{err: errors.New("management service down")}
	selector := NewDepotSelector(catalog, discardLogger)

	_, err := selector.SelectWaypoints(context.Background(), domain.Coordinates{Lat: 0, Lng: 0}, domain.Coordinates{Lat: 13.5, Lng: 0})
	if err == nil {
		t.Fatal("expected catalog error to propagate, got nil")
	}
}
