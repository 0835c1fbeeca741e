package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Users  *handlers.UsersHandler
}

// RegisterRoutes wires HTTP routes. Static user subpaths are registered
// before the :id parameter route so they are not captured as ids.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	system := app.Group("/system")
	system.Get("/health", cfg.Health.Health)
	system.Get("/health/live", cfg.Health.Live)
	system.Get("/health/ready", cfg.Health.Ready)

	users := app.Group("/users")
	users.Post("/", cfg.Users.Create)
	users.Get("/", cfg.Users.List)
	users.Get("/stats/summary", cfg.Users.Stats)
	users.Get("/export/json", cfg.Users.Export)
	users.Get("/username/:username", cfg.Users.GetByUsername)
	users.Get("/email/:email", cfg.Users.GetByEmail)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)
	users.Patch("/:id/status", cfg.Users.ChangeStatus)
}
