package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/servicedesk/internal/api/http/handlers"
	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Customers *handlers.CustomersHandler
	Tickets   *handlers.TicketsHandler
	Files     *handlers.FilesHandler
	Tasks     *handlers.TasksHandler
	Authority *auth.Authority
	Metrics   *observability.Metrics
	// AssetsDir is served under /assets when set (disk storage backend).
	AssetsDir string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}
	if cfg.AssetsDir != "" {
		app.Static("/assets", cfg.AssetsDir)
	}

	// Routes without authn are anonymous. Tag edits record the role only
	// when one is sent.
	authn := cfg.Authority.Handle
	api := app.Group("/api")

	customers := api.Group("/customers")
	customers.Post("/", authn, auth.RequireRole(domain.RoleSupportAgent, domain.RoleEngineer), cfg.Customers.CreateCustomer)
	customers.Get("/", authn, cfg.Customers.ListCustomers)
	customers.Get("/:id", cfg.Customers.GetCustomer)

	tickets := api.Group("/tickets")
	tickets.Post("/", authn, auth.RequireRole(domain.RoleUser, domain.RoleSupportAgent), cfg.Tickets.CreateTicket)
	tickets.Get("/", authn, cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/status", authn, cfg.Tickets.UpdateStatus)
	tickets.Get("/:id/transitions", authn, cfg.Tickets.Transitions)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Post("/:id/files", authn, cfg.Files.Upload)
	tickets.Get("/:id/files", cfg.Files.ListByTicket)
	tickets.Post("/:id/comments", authn, cfg.Tickets.AddComment)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)

	files := api.Group("/files")
	files.Post("/search", cfg.Files.Search)
	files.Put("/:id/tags", cfg.Authority.Optional, cfg.Files.UpdateTags)

	api.Get("/tasks/:id", cfg.Tasks.Get)
}
