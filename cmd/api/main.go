package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/booking-service/internal/api/http"
	"github.com/spec-kit/booking-service/internal/api/http/handlers"
	"github.com/spec-kit/booking-service/internal/auth"
	"github.com/spec-kit/booking-service/internal/config"
	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/events"
	"github.com/spec-kit/booking-service/internal/observability"
	"github.com/spec-kit/booking-service/internal/persistence"
	"github.com/spec-kit/booking-service/internal/repository"
	"github.com/spec-kit/booking-service/internal/repository/memory"
	"github.com/spec-kit/booking-service/internal/service"
	"github.com/spec-kit/booking-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// backend is the storage the services run against.
type backend struct {
	store repository.Store
	tx    repository.TxManager
	flags repository.FeatureFlagRepository
	ping  handlers.Pinger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	schedule, err := config.LoadSchedule(cfg.Booking.ScheduleFile)
	if err != nil {
		logger.Fatal("failed to load schedule", zap.String("file", cfg.Booking.ScheduleFile), zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var be backend
	if pg.Enabled() {
		pool := pg.PoolHandle()
		be = backend{
			store: repository.NewStore(pool),
			tx:    repository.NewTxManager(pool),
			flags: repository.NewFeatureFlagRepository(pool),
			ping:  pg,
		}
	} else {
		mem := memory.NewStore()
		be = backend{store: mem, tx: mem, flags: mem.FeatureFlags(), ping: mem}
	}
	flags := repository.NewCachedFeatureFlagRepository(be.flags, redis.ClientHandle(), cfg.Booking.FeatureFlagCacheTTL(), logger)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	notifications := service.NewNotificationService(logger, cfg.Notification)
	notificationWorker := worker.NewNotificationWorker(notifications, logger, 0)
	worker.StartNotificationWorker(ctx, dispatcher, notificationWorker)

	availabilityService := service.NewAvailabilityService(service.AvailabilityDependencies{
		Store:    be.store,
		Flags:    flags,
		Schedule: schedule,
		Metrics:  metrics,
		Logger:   logger,
	})
	bookingService := service.NewBookingService(service.BookingDependencies{
		Store:      be.store,
		TxManager:  be.tx,
		Flags:      flags,
		Schedule:   schedule,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	flagService := service.NewFeatureFlagService(flags, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, auth.TenantFromContext)

	deps := map[string]handlers.Pinger{"store": be.ping}
	if redis != nil {
		deps["redis"] = redis
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env != "development",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Availability:   handlers.NewAvailabilityHandler(availabilityService),
		Reservations:   handlers.NewReservationsHandler(bookingService),
		FeatureFlags:   handlers.NewFeatureFlagsHandler(flagService),
		AuthMiddleware: authMiddleware,
		DefaultTenant:  domain.TenantID(cfg.Booking.DefaultTenantID),
		BookingLimiter: httptransport.NewBookingRateLimiter(cfg.RateLimit),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	notificationWorker.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
