package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rodocarga/logistics-api/internal/api/handler"
	"github.com/rodocarga/logistics-api/internal/api/middleware"
	"github.com/rodocarga/logistics-api/internal/core/domain"
	"github.com/rodocarga/logistics-api/internal/core/ports"
)

// RouterDeps carries everything the router needs to register routes.
type RouterDeps struct {
	Shipments ports.ShipmentService
	Segments  ports.SegmentService
	Auth      ports.AuthService
	Mongo     *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("freight_http"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	shipmentHandler := handler.NewShipmentHandler(deps.Shipments)
	segmentHandler := handler.NewSegmentHandler(deps.Segments)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Authenticated API ---
	v1 := e.Group("/v1", middleware.Auth(deps.JWTSecret))

	// Lifecycle operations are reserved for back-office roles; clients only
	// create shipments and follow their own tracking.
	backOffice := middleware.RBAC(domain.RoleAdmin, domain.RoleOperator)

	v1.POST("/shipments", shipmentHandler.Create)
	v1.GET("/shipments/pending", shipmentHandler.Pending, backOffice)
	v1.POST("/shipments/:id/route", shipmentHandler.AssignRoute, backOffice)
	v1.POST("/routes/estimate", shipmentHandler.Estimate)
	v1.GET("/tracking/:tracking_number", shipmentHandler.Tracking)

	v1.POST("/segments/:id/truck", segmentHandler.AssignTruck, backOffice)
	v1.POST("/segments/:id/start", segmentHandler.Start, backOffice)
	v1.POST("/segments/:id/finish", segmentHandler.Finish, backOffice)
	v1.GET("/trucks/:plate/segments", segmentHandler.ListByTruck, backOffice)

	return e
}
