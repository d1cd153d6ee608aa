package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pledgecli/internal/config"
	"pledgecli/internal/middleware"
)

// NewRouter assembles the HTTP routes with the standard middleware chain.
func NewRouter(cfg *config.Config, logger *slog.Logger, importService Importer, version string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Timeout(cfg.Server.WriteTimeout))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	if cfg.Security.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst, logger)
		r.Use(limiter.Handler)
	}

	importHandler := NewImportHandler(importService, logger, cfg.Import.MaxUploadBytes, cfg.Import.MaxFiles)
	healthHandler := NewHealthHandler(version)

	r.Route("/api", func(api chi.Router) {
		api.Mount("/import", importHandler.Routes())
		api.Mount("/health", healthHandler.Routes())
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
