package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/supportops/internal/api/http/handlers"
	"github.com/spec-kit/supportops/internal/realtime"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Tickets *handlers.TicketsHandler
	Metrics *handlers.MetricsHandler
	// Realtime serves /ws; nil leaves the route unregistered.
	Realtime fiber.Handler
	// StaticDir, when set, is served at /.
	StaticDir string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health", cfg.Health.Health)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Snapshot)

	api := app.Group("/api")
	api.Get("/tickets", cfg.Tickets.ListTickets)
	api.Post("/tickets", cfg.Tickets.CreateTicket)

	if cfg.Realtime != nil {
		app.Get("/ws", realtime.UpgradeRequired(), cfg.Realtime)
	}
	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}
}
