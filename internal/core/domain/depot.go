package domain

// Depot is a fixed intermediate facility where cargo may be staged between
// segments. Owned by the management service; consumed here read-only.
type Depot struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	DailyStayCost float64 `json:"daily_stay_cost"`
}

// Waypoint is a transient point in a planned route: the shipment's origin,
// zero or more depots, then the destination. Never persisted.
type Waypoint struct {
	Description string
	Lat         float64
	Lng         float64
}
