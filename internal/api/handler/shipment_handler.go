package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rodocarga/logistics-api/internal/core/domain"
	"github.com/rodocarga/logistics-api/internal/core/ports"
)

// ShipmentHandler handles HTTP requests for shipment operations.
type ShipmentHandler struct {
	service ports.ShipmentService
}

func NewShipmentHandler(service ports.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

// Create handles POST /v1/shipments.
//
// @Summary      Register a new shipment request
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createShipmentRequest  true  "Shipment details"
// @Success      201   {object}  createShipmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/shipments [post]
func (h *ShipmentHandler) Create(c echo.Context) error {
	var req createShipmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, clientID, err := ctxClaims(c)
	if err != nil {
		return err
	}
	// Clients always create on their own behalf; back-office roles name the
	// client in the payload.
	if role != domain.RoleClient {
		clientID = req.ClientID
	}

	result, err := h.service.CreateShipment(c.Request().Context(), ports.CreateShipmentInput{
		TrackingNumber: req.TrackingNumber,
		ContainerID:    req.ContainerID,
		ClientID:       clientID,
		Origin:         toLocationInput(req.Origin),
		Destination:    toLocationInput(req.Destination),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createShipmentResponse{
		ShipmentID:     result.ShipmentID,
		TrackingNumber: result.TrackingNumber,
		Status:         result.Status,
		CreatedAt:      result.CreatedAt,
		Links: shipmentLinks{
			Self:     "/v1/shipments/" + result.ShipmentID,
			Tracking: "/v1/tracking/" + result.TrackingNumber,
		},
	})
}

// Estimate handles POST /v1/routes/estimate. Nothing is persisted.
//
// @Summary      Quote a route without persisting it
// @Tags         routes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      estimateRouteRequest  true  "Endpoints and optional cargo figures"
// @Success      200   {object}  estimateRouteResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/routes/estimate [post]
func (h *ShipmentHandler) Estimate(c echo.Context) error {
	var req estimateRouteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.EstimateRoute(c.Request().Context(), ports.EstimateRouteInput{
		Origin:      toLocationInput(req.Origin),
		Destination: toLocationInput(req.Destination),
		WeightKg:    req.WeightKg,
		VolumeM3:    req.VolumeM3,
	})
	if err != nil {
		return err
	}

	legs := make([]legEstimateResponse, len(result.Legs))
	for i, leg := range result.Legs {
		legs[i] = legEstimateResponse{
			Origin:         leg.Origin,
			Destination:    leg.Destination,
			DistanceKm:     leg.DistanceKm,
			EstimatedCost:  leg.EstimatedCost,
			EstimatedHours: leg.EstimatedHours,
		}
	}

	return c.JSON(http.StatusOK, estimateRouteResponse{
		EstimatedCost:  result.EstimatedCost,
		EstimatedHours: result.EstimatedHours,
		Legs:           legs,
	})
}

// AssignRoute handles POST /v1/shipments/:id/route.
//
// @Summary      Build and persist the route for a draft shipment
// @Tags         routes
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Shipment ID"
// @Success      201  {object}  assignRouteResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/shipments/{id}/route [post]
func (h *ShipmentHandler) AssignRoute(c echo.Context) error {
	result, err := h.service.AssignRoute(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, assignRouteResponse{
		RouteID:        result.RouteID,
		ShipmentStatus: result.ShipmentStatus,
		EstimatedCost:  result.EstimatedCost,
		EstimatedHours: result.EstimatedHours,
		Segments:       toSegmentResponses(result.Segments),
	})
}

// Tracking handles GET /v1/tracking/:tracking_number.
//
// @Summary      Get the tracking timeline of a shipment
// @Tags         tracking
// @Produce      json
// @Security     BearerAuth
// @Param        tracking_number  path      string  true  "Tracking number (e.g. RC-7A8B9C2D)"
// @Success      200              {object}  trackingResponse
// @Failure      404              {object}  errorResponse
// @Router       /v1/tracking/{tracking_number} [get]
func (h *ShipmentHandler) Tracking(c echo.Context) error {
	role, clientID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	result, err := h.service.GetTracking(c.Request().Context(), ports.GetTrackingInput{
		TrackingNumber: c.Param("tracking_number"),
		Role:           role,
		ClientID:       clientID,
	})
	if err != nil {
		return err
	}

	history := make([]trackingEventResponse, len(result.History))
	for i, ev := range result.History {
		history[i] = trackingEventResponse{
			Timestamp:   ev.Timestamp,
			Event:       ev.Event,
			Description: ev.Description,
			Status:      ev.Status,
		}
	}

	return c.JSON(http.StatusOK, trackingResponse{
		ShipmentID:     result.ShipmentID,
		TrackingNumber: result.TrackingNumber,
		Status:         result.Status,
		EstimatedCost:  result.EstimatedCost,
		EstimatedHours: result.EstimatedHours,
		FinalCost:      result.FinalCost,
		FinalHours:     result.FinalHours,
		History:        history,
	})
}

// Pending handles GET /v1/shipments/pending. Optional query filters: status,
// container_id.
//
// @Summary      List non-terminal shipments with their derived location
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        status        query     string  false  "Filter by shipment status"
// @Param        container_id  query     string  false  "Filter by container"
// @Success      200           {object}  listPendingResponse
// @Router       /v1/shipments/pending [get]
func (h *ShipmentHandler) Pending(c echo.Context) error {
	pending, err := h.service.ListPending(c.Request().Context(), ports.PendingFilter{
		Status:      c.QueryParam("status"),
		ContainerID: c.QueryParam("container_id"),
	})
	if err != nil {
		return err
	}

	rows := make([]pendingShipmentResponse, len(pending))
	for i, p := range pending {
		rows[i] = pendingShipmentResponse{
			ShipmentID:      p.ShipmentID,
			TrackingNumber:  p.TrackingNumber,
			ContainerID:     p.ContainerID,
			ClientID:        p.ClientID,
			Status:          p.Status,
			EstimatedCost:   p.EstimatedCost,
			FinalCost:       p.FinalCost,
			CurrentLocation: p.CurrentLocation,
			LocationDetail:  p.LocationDetail,
		}
		if p.ActiveSegment != nil {
			seg := toSegmentResponse(*p.ActiveSegment)
			rows[i].ActiveSegment = &seg
		}
	}

	return c.JSON(http.StatusOK, listPendingResponse{Data: rows, Total: len(rows)})
}
