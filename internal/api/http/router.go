package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-lifecycle/internal/api/http/handlers"
	"github.com/spec-kit/ticket-lifecycle/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	History        *handlers.HistoryHandler
	Audit          *handlers.AuditHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/transition", cfg.Tickets.Transition)
	tickets.Post("/:id/resolve", cfg.Tickets.Resolve)
	tickets.Post("/:id/assignee", cfg.Tickets.Reassign)
	tickets.Post("/:id/group", cfg.Tickets.AssignGroup)
	tickets.Get("/:id/history", cfg.History.GetStatusHistory)
	tickets.Post("/:id/history", cfg.History.CreateStatusHistory)

	protected.Post("/audit-logs", cfg.Audit.CreateAuditLog)
	protected.Get("/audit-logs", cfg.Audit.ListAuditLogs)

	protected.Get("/reports/resolution", cfg.Reports.ResolutionReport)
}
