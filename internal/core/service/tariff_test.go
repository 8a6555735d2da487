package service

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTariff_EstimatedSegmentCost(t *testing.T) {
	var tariff Tariff

	// 100 km at the default consumption:
	// 5000 + 100*150 + 100*0.15*1200 = 38000
	got := tariff.EstimatedSegmentCost(100, DefaultFuelConsumption)
	if !almostEqual(got, 38000) {
		t.Errorf("expected 38000, got %f", got)
	}

	// Zero distance still pays the management fee.
	if got := tariff.EstimatedSegmentCost(0, DefaultFuelConsumption); !almostEqual(got, BaseMgmtFee) {
		t.Errorf("zero distance must cost the base fee, got %f", got)
	}
}

func TestTariff_RealSegmentCost(t *testing.T) {
	var tariff Tariff

	// 100 km, 120/km, 0.2 l/km:
	// 5000 + 100*120 + 100*0.2*1200 = 41000
	got := tariff.RealSegmentCost(100, 120, 0.2)
	if !almostEqual(got, 41000) {
		t.Errorf("expected 41000, got %f", got)
	}
}

func TestTariff_EstimatedDurationHours(t *testing.T) {
	var tariff Tariff

	if got := tariff.EstimatedDurationHours(120); !almostEqual(got, 2) {
		t.Errorf("120 km at 60 km/h must be 2h, got %f", got)
	}
	if got := tariff.EstimatedDurationHours(0); !almostEqual(got, 0) {
		t.Errorf("zero distance must be 0h, got %f", got)
	}
}

func TestTariff_DwellDays(t *testing.T) {
	var tariff Tariff

	// Gaps of under an hour are free; once billable, any started day is
	// charged whole.
	cases := []struct {
		gapHours float64
		want     float64
	}{
		{0, 0},
		{0.5, 0},
		{0.99, 0},
		{1, 1},
		{23, 1},
		{24, 1},
		{24.5, 2},
		{30, 2},
		{48, 2},
		{49, 3},
	}

	for _, tc := range cases {
		if got := tariff.DwellDays(tc.gapHours); !almostEqual(got, tc.want) {
			t.Errorf("gap %.2fh: expected %.0f days, got %.0f", tc.gapHours, tc.want, got)
		}
	}
}

func TestTariff_DwellCost(t *testing.T) {
	var tariff Tariff

	if got := tariff.DwellCost(2, DepotStayCostPerDay); !almostEqual(got, 1000) {
		t.Errorf("2 days at 500/day must be 1000, got %f", got)
	}
	if got := tariff.DwellCost(0, DepotStayCostPerDay); !almostEqual(got, 0) {
		t.Errorf("0 days must be free, got %f", got)
	}
}
