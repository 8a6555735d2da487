package service

import "math"

// Fixed tariff policy. These are commercial constants, not runtime
// configuration.
const (
	// BaseMgmtFee is charged once per segment.
	BaseMgmtFee = 5000.0
	// BaseCostPerKm prices a segment before a concrete truck is known.
	BaseCostPerKm = 150.0
	// FuelCostPerLiter prices fuel for both estimated and real costs.
	FuelCostPerLiter = 1200.0
	// AvgSpeedKmh converts distance to estimated duration.
	AvgSpeedKmh = 60.0
	// DefaultFuelConsumption (liters/km) is assumed while no truck is assigned.
	DefaultFuelConsumption = 0.15
	// DepotStayCostPerDay prices dwell time between consecutive segments.
	DepotStayCostPerDay = 500.0
)

// Tariff computes per-segment costs and durations. Stateless; all methods are
// total over non-negative inputs and never return a negative figure.
type Tariff struct{}

// EstimatedSegmentCost prices a segment from its planned distance at the fleet
// average fuel consumption.
func (Tariff) EstimatedSegmentCost(distanceKm, avgFuelConsumption float64) float64 {
	return BaseMgmtFee + distanceKm*BaseCostPerKm + distanceKm*avgFuelConsumption*FuelCostPerLiter
}

// RealSegmentCost prices a finished segment from the real kilometres driven
// and the assigned truck's own cost and consumption figures.
func (Tariff) RealSegmentCost(distanceKm, truckCostPerKm, truckFuelConsumption float64) float64 {
	return BaseMgmtFee + distanceKm*truckCostPerKm + distanceKm*truckFuelConsumption*FuelCostPerLiter
}

// EstimatedDurationHours converts a distance to hours at the average speed.
func (Tariff) EstimatedDurationHours(distanceKm float64) float64 {
	return distanceKm / AvgSpeedKmh
}

// DwellCost prices a depot stay of the given whole days at the daily rate.
func (Tariff) DwellCost(days float64, dailyRate float64) float64 {
	return days * dailyRate
}

// DwellDays converts a gap between segments to billable days, rounding any
// started day up. Gaps of an hour or less are free.
func (Tariff) DwellDays(gapHours float64) float64 {
	if gapHours < 1 {
		return 0
	}
	return math.Ceil(gapHours / 24)
}
