package apiserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prevenia/vigia/internal/api"
	"github.com/prevenia/vigia/internal/expressmode"
	"github.com/prevenia/vigia/internal/logging"
	"github.com/prevenia/vigia/internal/reportapi"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// ReadinessChecker is an interface for checking component readiness
type ReadinessChecker interface {
	IsReady() bool
}

// NoOpReadinessChecker is a ReadinessChecker that always returns true.
type NoOpReadinessChecker struct{}

// IsReady always returns true for the no-op checker.
func (n *NoOpReadinessChecker) IsReady() bool {
	return true
}

// TracerSource yields tracers for handler instrumentation.
type TracerSource interface {
	GetTracer(string) trace.Tracer
	IsEnabled() bool
}

// Server handles HTTP API requests
type Server struct {
	port             int
	server           *http.Server
	logger           *logging.Logger
	router           *http.ServeMux
	client           reportapi.Client
	orchestrator     *expressmode.Orchestrator
	readinessChecker ReadinessChecker
	tracingProvider  TracerSource
	registry         *prometheus.Registry
}

// New creates an API server over the given backend client.
func New(
	port int,
	client reportapi.Client,
	orchestrator *expressmode.Orchestrator,
	readinessChecker ReadinessChecker,
	tracingProvider TracerSource,
	registry *prometheus.Registry,
) *Server {
	s := &Server{
		port:             port,
		logger:           logging.GetLogger("api"),
		router:           http.NewServeMux(),
		client:           client,
		orchestrator:     orchestrator,
		readinessChecker: readinessChecker,
		tracingProvider:  tracingProvider,
		registry:         registry,
	}

	// Register all routes and handlers
	s.registerHandlers()

	// Configure HTTP server with CORS middleware and timeouts
	s.configureHTTPServer(port)

	return s
}

// configureHTTPServer creates the HTTP server with CORS middleware and timeouts
func (s *Server) configureHTTPServer(port int) {
	handler := s.corsMiddleware(s.router)

	// Express drafts fan out many backend fetches; give them room
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}

// getTracer returns a tracer from the tracing provider, or nil when
// tracing is not wired.
func (s *Server) getTracer(name string) trace.Tracer {
	if s.tracingProvider == nil {
		return nil
	}
	return s.tracingProvider.GetTracer(name)
}

// Start implements the lifecycle.Component interface
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting API server on port %d", s.port)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error: %v", err)
		}
	}()

	s.logger.Info("API server started and listening on port %d", s.port)
	return nil
}

// Stop implements the lifecycle.Component interface
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")

	done := make(chan error, 1)
	go func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done <- s.server.Shutdown(shutdownCtx)
	}()

	select {
	case err := <-done:
		if err != nil {
			s.logger.Error("HTTP server shutdown error: %v", err)
			return err
		}
		s.logger.Info("API server stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("API server shutdown timeout")
		return ctx.Err()
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status": "healthy",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = api.WriteJSON(w, response)
}

// handleReady handles readiness check requests
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ready := s.readinessChecker != nil && s.readinessChecker.IsReady()

	response := map[string]interface{}{
		"ready": ready,
	}

	if ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	_ = api.WriteJSON(w, response)
}

// GetPort returns the port the server is listening on
func (s *Server) GetPort() int {
	return s.port
}

// Name implements the lifecycle.Component interface
func (s *Server) Name() string {
	return "API Server"
}
