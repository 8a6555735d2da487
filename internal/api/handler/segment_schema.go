package handler

type assignTruckRequest struct {
	TruckPlate    string  `json:"truck_plate"     validate:"required"`
	CargoWeightKg float64 `json:"cargo_weight_kg" validate:"required,gt=0"`
	CargoVolumeM3 float64 `json:"cargo_volume_m3" validate:"required,gt=0"`
}

type finishSegmentRequest struct {
	RealDistanceKm       float64 `json:"real_distance_km"       validate:"required,gt=0"`
	TruckCostPerKm       float64 `json:"truck_cost_per_km"      validate:"required,gt=0"`
	TruckFuelConsumption float64 `json:"truck_fuel_consumption" validate:"required,gt=0"`
}

type listSegmentsResponse struct {
	Data  []segmentResponse `json:"data"`
	Total int               `json:"total"`
}
