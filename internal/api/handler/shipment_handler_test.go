package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rodocarga/logistics-api/internal/core/domain"
	"github.com/rodocarga/logistics-api/internal/core/ports"
)

type stubShipmentService struct {
	createFn   func(ctx context.Context, input ports.CreateShipmentInput) (*ports.ShipmentResult, error)
	trackingFn func(ctx context.Context, input ports.GetTrackingInput) (*ports.TrackingResult, error)
}

func (s *stubShipmentService) CreateShipment(ctx context.Context, input ports.CreateShipmentInput) (*ports.ShipmentResult, error) {
	return s.createFn(ctx, input)
}

func (s *stubShipmentService) EstimateRoute(_ context.Context, _ ports.EstimateRouteInput) (*ports.EstimateRouteResult, error) {
	return &ports.EstimateRouteResult{}, nil
}

func (s *stubShipmentService) AssignRoute(_ context.Context, _ string) (*ports.AssignRouteResult, error) {
	return &ports.AssignRouteResult{}, nil
}

func (s *stubShipmentService) GetTracking(ctx context.Context, input ports.GetTrackingInput) (*ports.TrackingResult, error) {
	return s.trackingFn(ctx, input)
}

func (s *stubShipmentService) ListPending(_ context.Context, _ ports.PendingFilter) ([]ports.PendingShipment, error) {
	return nil, nil
}

func newShipmentTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestShipmentHandler_Create_Success(t *testing.T) {
	stub := &stubShipmentService{
		createFn: func(_ context.Context, input ports.CreateShipmentInput) (*ports.ShipmentResult, error) {
			if input.ContainerID != "cont_1" || input.ClientID != "client_1" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &ports.ShipmentResult{
				ShipmentID:     "ship_1",
				TrackingNumber: "RC-AAAA1111",
				Status:         string(domain.StatusDraft),
				CreatedAt:      time.Now().UTC(),
			}, nil
		},
	}
	h := NewShipmentHandler(stub)

	body := `{"container_id":"cont_1","origin":{"description":"CDMX"},"destination":{"description":"MTY"}}`
	c, rec := newShipmentTestContext(http.MethodPost, "/v1/shipments", body)
	c.Set("role", domain.RoleClient)
	c.Set("client_id", "client_1")

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["tracking_number"] != "RC-AAAA1111" {
		t.Errorf("unexpected payload: %+v", resp)
	}
}

func TestShipmentHandler_Create_MissingContainerIsRejected(t *testing.T) {
	h := NewShipmentHandler(&stubShipmentService{
		createFn: func(_ context.Context, _ ports.CreateShipmentInput) (*ports.ShipmentResult, error) {
			t.Fatal("service must not be called on invalid payloads")
			return nil, nil
		},
	})

	body := `{"origin":{"description":"CDMX"},"destination":{"description":"MTY"}}`
	c, _ := newShipmentTestContext(http.MethodPost, "/v1/shipments", body)
	c.Set("role", domain.RoleClient)
	c.Set("client_id", "client_1")

	err := h.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected HTTP 400 error, got %v", err)
	}
}

func TestShipmentHandler_Create_BackOfficeNamesClient(t *testing.T) {
	stub := &stubShipmentService{
		createFn: func(_ context.Context, input ports.CreateShipmentInput) (*ports.ShipmentResult, error) {
			if input.ClientID != "client_42" {
				t.Fatalf("expected client from payload, got %q", input.ClientID)
			}
			return &ports.ShipmentResult{TrackingNumber: "RC-BBBB2222"}, nil
		},
	}
	h := NewShipmentHandler(stub)

	body := `{"container_id":"cont_1","client_id":"client_42","origin":{"description":"CDMX"},"destination":{"description":"MTY"}}`
	c, rec := newShipmentTestContext(http.MethodPost, "/v1/shipments", body)
	c.Set("role", domain.RoleOperator)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestShipmentHandler_Tracking_ForwardsClaims(t *testing.T) {
	stub := &stubShipmentService{
		trackingFn: func(_ context.Context, input ports.GetTrackingInput) (*ports.TrackingResult, error) {
			if input.TrackingNumber != "RC-CCCC3333" {
				t.Fatalf("unexpected tracking number %q", input.TrackingNumber)
			}
			if input.Role != domain.RoleClient || input.ClientID != "client_1" {
				t.Fatalf("claims not forwarded: %+v", input)
			}
			return &ports.TrackingResult{TrackingNumber: input.TrackingNumber}, nil
		},
	}
	h := NewShipmentHandler(stub)

	c, rec := newShipmentTestContext(http.MethodGet, "/v1/tracking/RC-CCCC3333", "")
	c.SetParamNames("tracking_number")
	c.SetParamValues("RC-CCCC3333")
	c.Set("role", domain.RoleClient)
	c.Set("client_id", "client_1")

	if err := h.Tracking(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestShipmentHandler_Tracking_MissingClaims(t *testing.T) {
	h := NewShipmentHandler(&stubShipmentService{
		trackingFn: func(_ context.Context, _ ports.GetTrackingInput) (*ports.TrackingResult, error) {
			t.Fatal("service must not be called without auth claims")
			return nil, nil
		},
	})

	c, _ := newShipmentTestContext(http.MethodGet, "/v1/tracking/RC-CCCC3333", "")
	c.SetParamNames("tracking_number")
	c.SetParamValues("RC-CCCC3333")

	err := h.Tracking(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected HTTP 401 error, got %v", err)
	}
}
