package routes

import (
	"scrimworks/quartermaster/internal/api"
	"scrimworks/quartermaster/internal/config"
	"scrimworks/quartermaster/internal/metrics"
	"scrimworks/quartermaster/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers the API v1 routes. The read side is open to
// any authenticated caller; mutations sit behind the admin gate.
func RegisterAPIRoutes(
	r chi.Router,
	cfg *config.Config,
	metricsReg *metrics.MetricsRegistry,
	deps *api.Dependencies,
	adminHandlers *api.AdminHandlers,
) {
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.MetricsMiddleware(metricsReg))
		v1.Use(middleware.AuthMiddleware(cfg.JWTSecret))

		v1.Get("/teams", api.ListTeamsHandler(deps))
		v1.Get("/teams/{teamID}", api.GetTeamProfileHandler(deps))
		v1.Get("/players/{discordID}", api.GetPlayerHandler(deps))

		// Admin-only group
		v1.Group(func(admin chi.Router) {
			admin.Use(middleware.IsAdminMiddleware())

			admin.Post("/admin/teams/{teamID}/captain", adminHandlers.ForceTransfer)
			admin.Patch("/admin/teams/{teamID}", adminHandlers.EditTeam)
			admin.Delete("/admin/teams/{teamID}", adminHandlers.ForceDisband)

			admin.Post("/admin/bans", adminHandlers.BanPlayer)
			admin.Delete("/admin/bans/{discordID}", adminHandlers.UnbanPlayer)

			admin.Patch("/admin/players/{discordID}", adminHandlers.EditPlayer)
			admin.Delete("/admin/players/{discordID}", adminHandlers.DeletePlayer)
		})
	})
}
