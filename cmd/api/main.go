package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/parking-garage-service/internal/api/http"
	"github.com/spec-kit/parking-garage-service/internal/api/http/handlers"
	"github.com/spec-kit/parking-garage-service/internal/config"
	"github.com/spec-kit/parking-garage-service/internal/events"
	"github.com/spec-kit/parking-garage-service/internal/observability"
	"github.com/spec-kit/parking-garage-service/internal/persistence"
	"github.com/spec-kit/parking-garage-service/internal/repository"
	"github.com/spec-kit/parking-garage-service/internal/service"
	"github.com/spec-kit/parking-garage-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	if cfg.Garage.SeedOnBoot {
		if err := persistence.SeedGarage(ctx, pool, cfg.Garage, logger); err != nil {
			logger.Fatal("failed to seed garage", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	lotRepo := repository.NewLotRepository(pool)
	vehicleRepo := repository.NewVehicleRepository(pool)

	statsService := service.NewStatsService(lotRepo, redis.ClientHandle(), cfg.Garage.StatsCacheTTL(), logger)
	allocator := service.NewLotAllocator(lotRepo, cfg.Allocator, logger)
	registrar := service.NewVehicleRegistrar(vehicleRepo, lotRepo, logger)
	parkingService := service.NewParkingService(service.ParkingDependencies{
		LotRepo:     lotRepo,
		VehicleRepo: vehicleRepo,
		Allocator:   allocator,
		Registrar:   registrar,
		Stats:       statsService,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	batchService := service.NewBatchService(parkingService, lotRepo, service.NewRandomDataGenerator(), logger)

	worker.NewCacheWorker(statsService, logger).Register(dispatcher)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Parking: handlers.NewParkingHandler(parkingService, batchService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
