package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/slaworks/sla-service/internal/api/http/handlers"
	"github.com/slaworks/sla-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	SLA       *handlers.SLAHandler
	Tickets   *handlers.TicketsHandler
	WorkItems *handlers.WorkItemsHandler
	Metrics   *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api/v1")

	sla := api.Group("/sla")
	sla.Get("/matrix", cfg.SLA.Matrix)
	sla.Post("/classify", cfg.SLA.Classify)

	api.Get("/tickets/:id/sla", cfg.Tickets.GetSLA)
	api.Get("/tasks/:id/deadline", cfg.WorkItems.TaskDeadline)
	api.Get("/instances/:id/deadline", cfg.WorkItems.InstanceDeadline)

	reports := api.Group("/compliance")
	reports.Get("/tickets", cfg.Tickets.Metrics)
	reports.Get("/tasks", cfg.WorkItems.TaskMetrics)
	reports.Get("/instances", cfg.WorkItems.InstanceMetrics)
	reports.Get("/snapshot", cfg.SLA.Snapshot)
	reports.Get("/history/:subject/:id", cfg.SLA.History)
}
