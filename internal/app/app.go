package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"finora/internal/config"
	"finora/internal/dataprocessing"
	apierrors "finora/internal/errors"
	"finora/internal/files"
	"finora/internal/infrastructure"
	customMiddleware "finora/internal/middleware"
	"finora/internal/services"
	handlers "finora/internal/transport/http"
	"finora/internal/validation"
	"finora/pkg/contracts"
)

// BuildID is a short identifier for this build
var BuildID = generateBuildID()

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(contracts.Version))
	h.Write([]byte(contracts.BuildTime))
	h.Write([]byte(contracts.GitCommit))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config         *config.Config
	Paths          *config.Paths
	Router         *chi.Mux
	Server         *http.Server
	Logger         *slog.Logger
	OTelProviders  *infrastructure.OTelProviders
	Metrics        *infrastructure.BusinessMetrics
	Registry       *prometheus.Registry
	Catalog        *files.Catalog
	DatasetService *services.DatasetService
	HealthService  *services.HealthService
	ErrorHandler   *apierrors.ErrorHandler

	listener net.Listener
}

// NewApplication loads configuration, initializes the global logger and
// builds the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New builds an application from an already loaded configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("build_id", BuildID))

	paths := cfg.ResolvedPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	// Each application owns its registry so that several instances (tests)
	// never collide on the default one.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	otelCfg := infrastructure.OTelConfigFrom(cfg.Telemetry)
	otelCfg.Registry = registry
	otelProviders, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	var metrics *infrastructure.BusinessMetrics
	if otelProviders.Meter != nil {
		metrics, err = infrastructure.CreateBusinessMetrics(otelProviders.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		Registry:      registry,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// newFetcher picks the catalog source: a static base URL when configured,
// the source directory otherwise.
func (a *Application) newFetcher() files.Fetcher {
	if a.Config.Catalog.BaseURL != "" {
		return files.NewHTTPFetcher(a.Config.Catalog.BaseURL, a.Config.Catalog.FetchTimeout)
	}
	return files.NewDirFetcher(a.Config.GetSourceDir())
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	a.Catalog = files.NewCatalog(a.Config.Catalog.Files, a.Config.Catalog.MasterFile, a.newFetcher(), a.Logger)

	if a.Config.Catalog.BaseURL == "" {
		// Readiness reports missing files; a bad directory is only logged here.
		if _, err := validation.NewFileValidator(a.Logger).ValidateSourceDirectory(a.Config.GetSourceDir()); err != nil {
			a.Logger.Warn("Catalog source directory unusable", slog.String("error", err.Error()))
		}
	}

	currency := a.Config.Catalog.CurrencyColumns
	if len(currency) == 0 {
		currency = dataprocessing.MasterCurrencyColumns
	}

	a.DatasetService = services.NewDatasetService(a.Catalog, services.DatasetOptions{
		HiddenColumns:   a.Config.Catalog.HiddenColumns,
		CurrencyColumns: currency,
		MaxFileSize:     a.Config.Catalog.MaxFileSize,
		Metrics:         a.Metrics,
	}, a.Logger)

	a.HealthService = services.NewHealthService(
		contracts.Version,
		contracts.BuildTime,
		BuildID,
		a.Paths,
		a.Catalog,
		a.Logger,
	)

	a.ErrorHandler = apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
}

// setupRouter configures the HTTP router with all routes
// Middleware order: RequestID → RealIP → Logger → Recoverer → OTel → Timeout → CORS → headers → rate limit
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(apierrors.NewErrorMiddleware(a.ErrorHandler, a.Logger).Handler)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
	r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			Logger:         a.Logger,
		}))
	}
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	validation := customMiddleware.NewValidationMiddleware(a.Logger, a.ErrorHandler)

	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		datasetHandler := handlers.NewDatasetHandler(a.DatasetService, validation, a.Logger, a.ErrorHandler)
		r.Mount("/files", datasetHandler.Routes())

		masterHandler := handlers.NewMasterHandler(a.DatasetService, validation, a.Logger, a.ErrorHandler)
		r.Mount("/master", masterHandler.Routes())

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		r.Post("/log/client", handlers.NewClientLogHandler(a.Logger, a.ErrorHandler).Handle)
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Addr returns the address the server listens on once started.
func (a *Application) Addr() string {
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return a.Server.Addr
}

// Start binds the listener and serves in the background. A serve failure
// calls cancel so that Run can shut down.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("address", ln.Addr().String()),
		slog.String("catalog_source", a.Catalog.Source()),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://%s", ln.Addr().String())))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("Received shutdown signal")

	// ctx is already done; shut down on a fresh one.
	return a.Stop(context.Background())
}

// performStartupHealthCheck probes every catalog file once so that missing
// spreadsheets show up in the logs at startup rather than on first use.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, config.ProbeTimeout)
	defer cancel()

	start := time.Now()
	results, unavailable, err := a.Catalog.Probe(probeCtx)
	if err != nil {
		return fmt.Errorf("catalog probe: %w", err)
	}

	for _, res := range results {
		if !res.Available {
			a.Logger.WarnContext(ctx, "Catalog file unavailable",
				slog.String("file", res.Name),
				slog.String("error", res.Error))
		}
	}

	a.Logger.InfoContext(ctx, "Startup health check complete",
		slog.Int("files", len(results)),
		slog.Int("unavailable", unavailable),
		slog.Duration("duration", time.Since(start)))

	if unavailable > 0 {
		return fmt.Errorf("%d of %d catalog files unavailable", unavailable, len(results))
	}
	return nil
}
