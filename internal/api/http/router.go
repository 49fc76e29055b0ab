package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/booking-service/internal/api/http/handlers"
	"github.com/spec-kit/booking-service/internal/auth"
	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Availability   *handlers.AvailabilityHandler
	Reservations   *handlers.ReservationsHandler
	FeatureFlags   *handlers.FeatureFlagsHandler
	AuthMiddleware *auth.AuthMiddleware
	DefaultTenant  domain.TenantID
	BookingLimiter *BookingRateLimiter
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api/v1", auth.TenantMiddleware(cfg.DefaultTenant))
	api.Get("/availability", cfg.Availability.GetAvailability)
	api.Get("/feature-flags", cfg.FeatureFlags.Get)

	reservations := api.Group("/reservations", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	reservations.Post("", cfg.BookingLimiter.Handler(), cfg.Reservations.Create)
	reservations.Post("/:id/cancel", cfg.Reservations.Cancel)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Patch("/reservations/:id/status", cfg.Reservations.UpdateStatus)
	admin.Put("/feature-flags", cfg.FeatureFlags.Update)
}
