package routes

import (
	"net/http"
	"time"

	"scrimworks/quartermaster/internal/api"
	"scrimworks/quartermaster/internal/config"
	"scrimworks/quartermaster/internal/db"
	"scrimworks/quartermaster/internal/logging"
	"scrimworks/quartermaster/internal/metrics"
	"scrimworks/quartermaster/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes builds the HTTP surface: health, metrics, the read-side
// team API, and the admin dashboard endpoints.
func RegisterRoutes(
	cfg *config.Config,
	metricsReg *metrics.MetricsRegistry,
	deps *api.Dependencies,
	adminHandlers *api.AdminHandlers,
	upSince time.Time,
) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RateLimitMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, upSince))
	r.Handle("/metrics", promhttp.Handler())

	RegisterAPIRoutes(r, cfg, metricsReg, deps, adminHandlers)

	return r
}
