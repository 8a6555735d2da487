package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rodocarga/logistics-api/internal/core/ports"
)

// SegmentHandler handles HTTP requests for segment lifecycle operations.
type SegmentHandler struct {
	service ports.SegmentService
}

func NewSegmentHandler(service ports.SegmentService) *SegmentHandler {
	return &SegmentHandler{service: service}
}

// AssignTruck handles POST /v1/segments/:id/truck.
//
// @Summary      Assign a truck to an estimated segment
// @Tags         segments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Segment ID"
// @Param        body  body      assignTruckRequest  true  "Truck plate and cargo figures"
// @Success      200   {object}  segmentResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/segments/{id}/truck [post]
func (h *SegmentHandler) AssignTruck(c echo.Context) error {
	var req assignTruckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	view, err := h.service.AssignTruck(c.Request().Context(), ports.AssignTruckInput{
		SegmentID:     c.Param("id"),
		TruckPlate:    req.TruckPlate,
		CargoWeightKg: req.CargoWeightKg,
		CargoVolumeM3: req.CargoVolumeM3,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSegmentResponse(*view))
}

// Start handles POST /v1/segments/:id/start.
//
// @Summary      Record the real departure of an assigned segment
// @Tags         segments
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Segment ID"
// @Success      200  {object}  segmentResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/segments/{id}/start [post]
func (h *SegmentHandler) Start(c echo.Context) error {
	view, err := h.service.Start(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSegmentResponse(*view))
}

// Finish handles POST /v1/segments/:id/finish. Finishing the last segment of
// a route settles the owning shipment.
//
// @Summary      Record the real arrival of an in-transit segment
// @Tags         segments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Segment ID"
// @Param        body  body      finishSegmentRequest  true  "Real distance and truck figures"
// @Success      200   {object}  segmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/segments/{id}/finish [post]
func (h *SegmentHandler) Finish(c echo.Context) error {
	var req finishSegmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	view, err := h.service.Finish(c.Request().Context(), ports.FinishSegmentInput{
		SegmentID:            c.Param("id"),
		RealDistanceKm:       req.RealDistanceKm,
		TruckCostPerKm:       req.TruckCostPerKm,
		TruckFuelConsumption: req.TruckFuelConsumption,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSegmentResponse(*view))
}

// ListByTruck handles GET /v1/trucks/:plate/segments.
//
// @Summary      List the segments assigned to a truck
// @Tags         segments
// @Produce      json
// @Security     BearerAuth
// @Param        plate  path      string  true  "Truck plate"
// @Success      200    {object}  listSegmentsResponse
// @Router       /v1/trucks/{plate}/segments [get]
func (h *SegmentHandler) ListByTruck(c echo.Context) error {
	views, err := h.service.ListByTruck(c.Request().Context(), c.Param("plate"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listSegmentsResponse{
		Data:  toSegmentResponses(views),
		Total: len(views),
	})
}
