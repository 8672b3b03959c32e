package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/prevenia/vigia/internal/apiserver"
	"github.com/prevenia/vigia/internal/config"
	"github.com/prevenia/vigia/internal/expressmode"
	"github.com/prevenia/vigia/internal/lifecycle"
	"github.com/prevenia/vigia/internal/logging"
	"github.com/prevenia/vigia/internal/reportapi"
	"github.com/prevenia/vigia/internal/tracing"
)

var (
	apiPort               int
	backendURL            string
	backendToken          string
	backendsConfigPath    string
	requestTimeout        time.Duration
	loaderConcurrency     int
	maxConcurrentRequests int
	cacheEnabled          bool
	cacheMaxEntries       int
	cacheTTL              time.Duration
	costoDiario           float64
	tracingEnabled        bool
	tracingEndpoint       string
	tracingTLSCAPath      string
	tracingTLSInsecure    bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Vigia server",
	Long: `Start the Vigia server which consolidates incident investigation
reports from the incident backend and serves express drafts, causal-tree
editing and cost estimates over an HTTP API.`,
	Run: runServer,
}

func init() {
	serverCmd.Flags().IntVar(&apiPort, "api-port", 8080, "Port the API server listens on")
	serverCmd.Flags().StringVar(&backendURL, "backend-url", "", "Base URL of the incident backend REST API")
	serverCmd.Flags().StringVar(&backendToken, "backend-token", "", "Bearer token for incident backend requests")
	serverCmd.Flags().StringVar(&backendsConfigPath, "backends-config", "",
		"Path to a YAML file with named backend environments. Overrides --backend-url/--backend-token when set.")
	serverCmd.Flags().DurationVar(&requestTimeout, "request-timeout", 15*time.Second, "Timeout for each backend request (default: 15s)")
	serverCmd.Flags().IntVar(&loaderConcurrency, "loader-concurrency", 4, "Maximum parallel analysis fetches per batch (default: 4)")
	serverCmd.Flags().IntVar(&maxConcurrentRequests, "max-concurrent-requests", 100, "Maximum number of concurrent API requests")
	serverCmd.Flags().BoolVar(&cacheEnabled, "cache-enabled", true, "Enable caching of backend reads (default: true)")
	serverCmd.Flags().IntVar(&cacheMaxEntries, "cache-max-entries", 512, "Maximum number of cached backend reads (default: 512)")
	serverCmd.Flags().DurationVar(&cacheTTL, "cache-ttl", 30*time.Second, "Time a cached backend read stays valid (default: 30s)")
	serverCmd.Flags().Float64Var(&costoDiario, "costo-diario", 50000, "Estimated cost of one lost work day, in whole currency units (default: 50000)")
	serverCmd.Flags().BoolVar(&tracingEnabled, "tracing-enabled", false, "Enable OpenTelemetry tracing (default: false)")
	serverCmd.Flags().StringVar(&tracingEndpoint, "tracing-endpoint", "", "OTLP gRPC endpoint for traces (e.g., otel-collector:4317)")
	serverCmd.Flags().StringVar(&tracingTLSCAPath, "tracing-tls-ca", "", "Path to CA certificate for TLS verification (optional)")
	serverCmd.Flags().BoolVar(&tracingTLSInsecure, "tracing-tls-insecure", false, "Skip TLS certificate verification (insecure, use only for testing)")
}

func runServer(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg := config.LoadConfig(
		apiPort,
		GetLogLevel(),
		backendURL,
		backendToken,
		backendsConfigPath,
		requestTimeout,
		loaderConcurrency,
		maxConcurrentRequests,
		cacheEnabled,
		cacheMaxEntries,
		cacheTTL,
		costoDiario,
		tracingEnabled,
		tracingEndpoint,
		tracingTLSCAPath,
	)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		HandleError(err, "Configuration error")
	}

	// Setup logging
	if err := setupLog(logLevelFlags); err != nil {
		HandleError(err, "Failed to setup logging")
	}
	logger := logging.GetLogger("server")

	logger.Info("Starting Vigia v%s", Version)
	logger.Debug("Configuration loaded: APIPort=%d", cfg.APIPort)

	manager := lifecycle.NewManager()

	// Initialize tracing provider
	tracingCfg := tracing.Config{
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.TracingEndpoint,
		TLSCAPath:   cfg.TracingTLSCAPath,
		TLSInsecure: tracingTLSInsecure,
	}
	tracingProvider, err := tracing.NewTracingProvider(tracingCfg)
	if err != nil {
		logger.Warn("Failed to initialize tracing (continuing without tracing): %v", err)
		tracingProvider = nil
	}

	// Register tracing provider first so spans cover API server startup
	var tracerSource apiserver.TracerSource
	if tracingProvider != nil {
		tracerSource = tracingProvider
		if err := manager.Register(tracingProvider); err != nil {
			logger.Error("Failed to register tracing provider: %v", err)
			HandleError(err, "Tracing registration error")
		}
	}

	// Resolve the active backend: a backends file wins over the flags
	activeURL := cfg.BackendURL
	activeToken := cfg.BackendToken
	if cfg.BackendsConfigPath != "" {
		backendsFile, err := config.LoadBackendsFile(cfg.BackendsConfigPath)
		if err != nil {
			logger.Error("Failed to load backends config: %v", err)
			HandleError(err, "Backends config error")
		}
		backend, err := backendsFile.Active()
		if err != nil {
			logger.Error("No usable backend in config: %v", err)
			HandleError(err, "Backends config error")
		}
		activeURL = backend.URL
		activeToken = backend.Token
		logger.Info("Using backend %q from %s", backend.Name, cfg.BackendsConfigPath)
	}

	// Build the backend client with request metrics, wrapped with a read
	// cache when enabled
	registry := prometheus.NewRegistry()
	metrics := reportapi.NewMetrics(registry)
	var client reportapi.Client = reportapi.NewHTTPClient(activeURL, activeToken, cfg.RequestTimeout, metrics)
	if cfg.CacheEnabled {
		cached, err := reportapi.NewCachedClient(client, reportapi.CacheConfig{
			MaxEntries: cfg.CacheMaxEntries,
			TTL:        cfg.CacheTTL,
		})
		if err != nil {
			logger.Error("Failed to create cached client: %v", err)
			HandleError(err, "Cache initialization error")
		}
		client = cached
		logger.Info("Backend read cache enabled (entries=%d, ttl=%s)", cfg.CacheMaxEntries, cfg.CacheTTL)
	}

	orchestrator := expressmode.NewOrchestrator(client, cfg.CostoDiario, cfg.LoaderConcurrency)

	apiComponent := apiserver.New(
		cfg.APIPort,
		client,
		orchestrator,
		&apiserver.NoOpReadinessChecker{},
		tracerSource,
		registry,
	)
	logger.Info("API server component created")

	if err := manager.Register(apiComponent); err != nil {
		logger.Error("Failed to register API server component: %v", err)
		HandleError(err, "API server registration error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := manager.Start(ctx); err != nil {
		logger.Error("Failed to start components: %v", err)
		HandleError(err, "Startup error")
	}

	logger.Info("Application started successfully")
	logger.Info("Listening on port %d", cfg.APIPort)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	<-sigChan
	logger.Info("Shutdown signal received, gracefully shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := manager.Stop(shutdownCtx); err != nil {
		logger.Error("Error during shutdown: %v", err)
	}

	logger.Info("Shutdown complete")
}
