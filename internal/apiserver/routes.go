package apiserver

import (
	"github.com/prevenia/vigia/internal/api/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerHandlers registers all HTTP handlers
func (s *Server) registerHandlers() {
	// Register HTTP API handlers
	s.registerHTTPHandlers()

	// Register health and readiness endpoints
	s.registerHealthEndpoints()

	// Register Prometheus metrics endpoint
	s.registerMetricsEndpoint()
}

// registerHTTPHandlers registers all HTTP API handlers
func (s *Server) registerHTTPHandlers() {
	tracer := s.getTracer("vigia.api")

	handlers.RegisterHandlers(
		s.router,
		s.orchestrator,
		s.client,
		s.logger,
		tracer,
		s.withMethod,
	)
}

// registerHealthEndpoints registers health and readiness check endpoints
func (s *Server) registerHealthEndpoints() {
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.HandleFunc("/ready", s.handleReady)
}

// registerMetricsEndpoint exposes the Prometheus registry, when configured
func (s *Server) registerMetricsEndpoint() {
	if s.registry == nil {
		s.logger.Debug("Metrics registry not configured, skipping /metrics endpoint")
		return
	}
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	s.logger.Info("Metrics endpoint registered at /metrics")
}
