package server

import (
	"github.com/gatelink/gatelink/internal/server/handlers"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	// Standard health endpoints
	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", handlers.ReadinessHandler)
	s.router.Get("/health/startup", handlers.StartupHandler)

	// Version endpoint
	s.router.Get("/version", handlers.VersionHandler)

	// Engine introspection
	s.router.Get("/status", handlers.StatusHandler)
	s.router.Get("/events", handlers.EventsHandler)
	s.router.Get("/pool", handlers.PoolHandler)
	s.router.Get("/intervals", handlers.IntervalsHandler)
	s.router.Get("/requests", handlers.RequestsHandler)

	// Metrics endpoint (in server package to access HandleError)
	s.router.Get("/metrics", MetricsHandler)
}
