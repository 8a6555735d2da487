package domain

import (
	"math"
	"testing"
)

func TestDistanceKm_KnownDistance(t *testing.T) {
	// Madrid → Barcelona, roughly 505 km great-circle.
	got := DistanceKm(40.4168, -3.7038, 41.3874, 2.1686)
	if got < 500 || got > 510 {
		t.Errorf("Madrid-Barcelona: expected ~505 km, got %.2f", got)
	}
}

func TestDistanceKm_ZeroForSamePoint(t *testing.T) {
	if got := DistanceKm(19.4326, -99.1332, 19.4326, -99.1332); got != 0 {
		t.Errorf("same point must be 0 km, got %f", got)
	}
}

func TestDistanceKm_Symmetry(t *testing.T) {
	ab := DistanceKm(19.4326, -99.1332, 25.6866, -100.3161)
	ba := DistanceKm(25.6866, -100.3161, 19.4326, -99.1332)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance must be symmetric: %.12f vs %.12f", ab, ba)
	}
}

func TestDistanceKm_OneDegreeOfLatitude(t *testing.T) {
	// One degree of latitude along a meridian is ~111.19 km.
	got := DistanceKm(0, 0, 1, 0)
	if math.Abs(got-111.19) > 0.1 {
		t.Errorf("one degree of latitude: expected ~111.19 km, got %.4f", got)
	}
}
