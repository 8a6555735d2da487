package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rodocarga/logistics-api/internal/api"
	"github.com/rodocarga/logistics-api/internal/core/ports"
	"github.com/rodocarga/logistics-api/internal/core/service"
	"github.com/rodocarga/logistics-api/internal/infrastructure/clients"
	"github.com/rodocarga/logistics-api/internal/infrastructure/config"
	mongodb "github.com/rodocarga/logistics-api/internal/infrastructure/db/mongo"
	redisdb "github.com/rodocarga/logistics-api/internal/infrastructure/db/redis"
	"github.com/rodocarga/logistics-api/internal/infrastructure/queue"
	"github.com/rodocarga/logistics-api/pkg/logger"
)

const (
	auditWorkers    = 4
	tokenTTL        = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "logistics-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "logistics-api",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	shipmentRepo := mongodb.NewShipmentRepository(db)
	routeRepo := mongodb.NewRouteRepository(db)
	eventRepo := mongodb.NewEventRepository(db)
	authRepo := mongodb.NewAuthRepository(db)

	if err := shipmentRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("shipment index creation failed")
	}
	if err := routeRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("route index creation failed")
	}
	if err := authRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}

	// --- Collaborators ---
	up := cfg.Upstream
	management := clients.NewManagementClient(up.ManagementURL, up.Timeout, up.Retries, log)
	fleet := clients.NewFleetClient(up.FleetURL, up.Timeout, up.Retries, log)

	var distance *clients.DistanceClient
	if up.DistanceURL != "" {
		distance = clients.NewDistanceClient(up.DistanceURL, up.DistanceAPIKey, up.Timeout, log)
	}

	// --- Audit trail ---
	dispatcher := queue.NewAuditDispatcher(auditWorkers, eventRepo, log)
	dispatcher.Start(ctx)

	// --- Core services ---
	locker := redisdb.NewShipmentLock(rdb, log)
	selector := service.NewDepotSelector(management, log)

	shipmentService := service.NewShipmentService(
		shipmentRepo, routeRepo, selector, distanceProvider(distance),
		management, locker, dispatcher, log,
	)
	segmentService := service.NewSegmentService(
		routeRepo, shipmentRepo, fleet, locker, dispatcher, log,
	)
	authService := service.NewAuthService(authRepo, cfg.JWTSecret, tokenTTL)

	// --- HTTP ---
	e := api.NewRouter(api.RouterDeps{
		Shipments: shipmentService,
		Segments:  segmentService,
		Auth:      authService,
		Mongo:     db,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("freight coordination api started")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// distanceProvider avoids handing the service a typed-nil interface when no
// distance API is configured.
func distanceProvider(c *clients.DistanceClient) ports.DistanceProvider {
	if c == nil {
		return nil
	}
	return c
}
