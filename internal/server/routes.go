package server

import (
	"os"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/viralstrategist/viralstrategist/internal/appid"
	"github.com/viralstrategist/viralstrategist/internal/observability"
	"github.com/viralstrategist/viralstrategist/internal/server/handlers"
	"github.com/viralstrategist/viralstrategist/internal/strategist"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	s.router.Get("/health", s.health.HealthHandler)
	s.router.Get("/health/live", s.health.LivenessHandler)
	s.router.Get("/health/ready", s.health.ReadinessHandler)
	s.router.Get("/health/startup", s.health.StartupHandler)

	s.router.Get("/version", handlers.NewVersionHandler(s.opts.Prompts))
	s.router.Get("/metrics", newMetricsHandler(s.opts.MetricsPort))

	if s.opts.Session != nil {
		h := &handlers.StrategistHandler{
			Session:       s.opts.Session,
			Prompts:       s.opts.Prompts,
			MaxVideoBytes: s.opts.MaxVideoBytes,
		}
		s.router.Route("/v1", func(r chi.Router) {
			r.Post("/analyze", h.Action(strategist.ModeAnalysis))
			r.Post("/ideas", h.Action(strategist.ModeIdeas))
			r.Post("/hashtags", h.Action(strategist.ModeHashtags))
			r.Get("/result", h.GetResult)
			r.Delete("/result", h.ClearResult)
			r.Get("/options", h.Options)
			r.Get("/prompts", h.ListPrompts)
		})
	}

	s.registerAdminEndpoint()
}

// registerAdminEndpoint exposes /admin/signal when VIRALSTRATEGIST_ADMIN_TOKEN is set.
func (s *Server) registerAdminEndpoint() {
	envName := appid.Get().Env("ADMIN_TOKEN")
	adminToken := os.Getenv(envName)
	logger := observability.Logger()

	if adminToken == "" {
		logger.Debug("Admin signal endpoint disabled (no " + envName + " set)")
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,  // requests per minute
		RateBurst: 5,   // burst size
		Manager:   nil, // default global manager
	})

	s.router.Post("/admin/signal", handler.ServeHTTP)

	logger.Info("Admin signal endpoint enabled",
		zap.String("path", "/admin/signal"),
		zap.String("auth", "bearer token"),
		zap.String("rate_limit", "10/min, burst 5"))
}
