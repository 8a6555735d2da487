package handler

import (
	"time"

	"github.com/rodocarga/logistics-api/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type locationRequest struct {
	Description string   `json:"description" validate:"required"`
	Lat         *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng         *float64 `json:"lng,omitempty" validate:"omitempty,longitude"`
}

type createShipmentRequest struct {
	TrackingNumber string          `json:"tracking_number,omitempty"`
	ContainerID    string          `json:"container_id" validate:"required"`
	ClientID       string          `json:"client_id,omitempty"`
	Origin         locationRequest `json:"origin"       validate:"required"`
	Destination    locationRequest `json:"destination"  validate:"required"`
}

type estimateRouteRequest struct {
	Origin      locationRequest `json:"origin"      validate:"required"`
	Destination locationRequest `json:"destination" validate:"required"`
	WeightKg    *float64        `json:"weight_kg,omitempty"  validate:"omitempty,gt=0"`
	VolumeM3    *float64        `json:"volume_m3,omitempty"  validate:"omitempty,gt=0"`
}

// --- Response types ---
// These are intentionally separate from ports/domain types so the JSON
// contract is not coupled to internal service changes.

type shipmentLinks struct {
	Self     string `json:"self"`
	Tracking string `json:"tracking"`
}

type createShipmentResponse struct {
	ShipmentID     string        `json:"shipment_id"`
	TrackingNumber string        `json:"tracking_number"`
	Status         string        `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	Links          shipmentLinks `json:"_links"`
}

type legEstimateResponse struct {
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	DistanceKm     float64 `json:"distance_km"`
	EstimatedCost  float64 `json:"estimated_cost"`
	EstimatedHours float64 `json:"estimated_hours"`
}

type estimateRouteResponse struct {
	EstimatedCost  float64               `json:"estimated_cost"`
	EstimatedHours float64               `json:"estimated_hours"`
	Legs           []legEstimateResponse `json:"legs"`
}

type segmentResponse struct {
	ID             string     `json:"id"`
	RouteID        string     `json:"route_id"`
	TruckPlate     string     `json:"truck_plate,omitempty"`
	Origin         string     `json:"origin"`
	Destination    string     `json:"destination"`
	DistanceKm     float64    `json:"distance_km"`
	Status         string     `json:"status"`
	EstimatedStart time.Time  `json:"estimated_start"`
	EstimatedEnd   time.Time  `json:"estimated_end"`
	RealStart      *time.Time `json:"real_start,omitempty"`
	RealEnd        *time.Time `json:"real_end,omitempty"`
	EstimatedCost  float64    `json:"estimated_cost"`
	RealCost       *float64   `json:"real_cost,omitempty"`
}

type assignRouteResponse struct {
	RouteID        string            `json:"route_id"`
	ShipmentStatus string            `json:"shipment_status"`
	EstimatedCost  float64           `json:"estimated_cost"`
	EstimatedHours float64           `json:"estimated_hours"`
	Segments       []segmentResponse `json:"segments"`
}

type trackingEventResponse struct {
	Timestamp   time.Time `json:"timestamp"`
	Event       string    `json:"event"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
}

type trackingResponse struct {
	ShipmentID     string                  `json:"shipment_id"`
	TrackingNumber string                  `json:"tracking_number"`
	Status         string                  `json:"status"`
	EstimatedCost  float64                 `json:"estimated_cost"`
	EstimatedHours float64                 `json:"estimated_hours"`
	FinalCost      *float64                `json:"final_cost,omitempty"`
	FinalHours     *float64                `json:"final_hours,omitempty"`
	History        []trackingEventResponse `json:"history"`
}

type pendingShipmentResponse struct {
	ShipmentID      string           `json:"shipment_id"`
	TrackingNumber  string           `json:"tracking_number"`
	ContainerID     string           `json:"container_id"`
	ClientID        string           `json:"client_id"`
	Status          string           `json:"status"`
	EstimatedCost   float64          `json:"estimated_cost"`
	FinalCost       *float64         `json:"final_cost,omitempty"`
	CurrentLocation string           `json:"current_location"`
	LocationDetail  string           `json:"location_detail"`
	ActiveSegment   *segmentResponse `json:"active_segment,omitempty"`
}

type listPendingResponse struct {
	Data  []pendingShipmentResponse `json:"data"`
	Total int                       `json:"total"`
}

// --- Mappers ---

func toLocationInput(req locationRequest) ports.LocationInput {
	return ports.LocationInput{Description: req.Description, Lat: req.Lat, Lng: req.Lng}
}

func toSegmentResponse(view ports.SegmentView) segmentResponse {
	return segmentResponse{
		ID:             view.ID,
		RouteID:        view.RouteID,
		TruckPlate:     view.TruckPlate,
		Origin:         view.Origin,
		Destination:    view.Destination,
		DistanceKm:     view.DistanceKm,
		Status:         view.Status,
		EstimatedStart: view.EstimatedStart,
		EstimatedEnd:   view.EstimatedEnd,
		RealStart:      view.RealStart,
		RealEnd:        view.RealEnd,
		EstimatedCost:  view.EstimatedCost,
		RealCost:       view.RealCost,
	}
}

func toSegmentResponses(views []ports.SegmentView) []segmentResponse {
	out := make([]segmentResponse, len(views))
	for i, v := range views {
		out[i] = toSegmentResponse(v)
	}
	return out
}
