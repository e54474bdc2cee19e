package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rescue-report-service/internal/api/http/handlers"
	"github.com/spec-kit/rescue-report-service/internal/auth"
	"github.com/spec-kit/rescue-report-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Reports        *handlers.ReportsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.Middleware
	UploadsDir     string
}

// RegisterRoutes wires HTTP routes. Role gates run after credential checks,
// so Forbidden always wins over NotFound for under-privileged callers.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Static("/uploads", cfg.UploadsDir)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Required, cfg.Auth.Me)

	reports := app.Group("/reports")
	reports.Post("/", cfg.AuthMiddleware.Optional, cfg.Reports.Create)
	reports.Get("/", cfg.Reports.List)
	reports.Get("/map", cfg.Reports.Map)
	reports.Get("/:id", cfg.Reports.Get)
	reports.Patch("/:id/cerrar", cfg.AuthMiddleware.Required, auth.RequireRole(domain.RoleAdmin), cfg.Reports.Resolve)
	reports.Patch("/:id/cancelar", cfg.AuthMiddleware.Required, auth.RequireRole(domain.RoleAdmin), cfg.Reports.Cancel)

	admin := app.Group("/admin", cfg.AuthMiddleware.Required, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Post("/users/admin", auth.RequireRole(domain.RoleSuperAdmin), cfg.Admin.CreateAdmin)
	admin.Patch("/users/:id/role", auth.RequireRole(domain.RoleSuperAdmin), cfg.Admin.UpdateRole)
	admin.Patch("/users/:id/ban", cfg.Admin.SetBan)
	admin.Get("/dashboard", cfg.Admin.Dashboard)
}
