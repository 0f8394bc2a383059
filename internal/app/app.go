package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"alumnipulse/internal/config"
	"alumnipulse/internal/errors"
	"alumnipulse/internal/infrastructure"
	customMiddleware "alumnipulse/internal/middleware"
	"alumnipulse/internal/services"
	handlers "alumnipulse/internal/transport/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// BuildTime is set at compile time via -ldflags.
var BuildTime = time.Now().Format(time.RFC3339)

// Application is the main application container. It owns configuration,
// logging, telemetry, services and the HTTP server.
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	SurveyService *services.SurveyService
	Conclusions   *services.ConclusionsStore
	HealthService *services.HealthService
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Assets        fs.FS
}

// NewApplication wires the application from configuration. assets holds the
// embedded web UI; pass nil to serve API routes only.
func NewApplication(assets fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	paths.ApplyOverrides(cfg.Paths)
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(context.Background(), logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		Assets:        assets,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the service layer in dependency order.
func (a *Application) initializeServices() error {
	set, err := config.LoadQuestionSet(a.Paths.QuestionsFile)
	if err != nil {
		return fmt.Errorf("failed to load question set from %s: %w", a.Paths.QuestionsFile, err)
	}
	a.Logger.Info("Question set loaded",
		slog.String("path", a.Paths.QuestionsFile),
		slog.Int("questions", len(set.Questions)))

	// Question sets without their own cap inherit the configured one.
	if set.TopK <= 0 {
		set.TopK = a.Config.Report.TopKCategories
	}

	a.SurveyService = services.NewSurveyService(
		*set,
		a.Config.Report.MaxUploadBytes,
		a.Config.Report.CacheEntries,
		a.Metrics,
		a.Logger,
	)

	a.Conclusions = services.NewConclusionsStore(a.Logger)

	a.HealthService = services.NewHealthService(
		config.AppVersion,
		BuildTime,
		a.Paths,
		a.SurveyService,
		a.Logger,
	)

	return nil
}

// setupRouter configures the HTTP router with middleware and all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.CORS(a.getCORSConfig()))

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	errorHandler := errors.NewErrorHandler(a.Logger, false)
	r.Use(errors.NewErrorMiddleware(errorHandler, a.Logger).Handler)

	a.setupAPIRoutes(r, errorHandler)
	a.setupWebRoutes(r)

	// Prometheus scrape endpoint, outside the API timeout group.
	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures the JSON API endpoints.
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *errors.ErrorHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		surveyHandler := handlers.NewSurveyHandler(
			a.SurveyService,
			a.Conclusions,
			a.Config.Report.MaxUploadBytes,
			a.Logger,
			errorHandler,
		)
		r.Route("/surveys", func(r chi.Router) {
			r.Use(customMiddleware.ContentTypeValidator("multipart/form-data", "application/json"))
			r.Use(customMiddleware.NewValidationMiddleware(a.Logger, errorHandler).ValidateRequest)
			r.Mount("/", surveyHandler.Routes())
		})
	})
}

// setupWebRoutes serves the embedded single-page UI and its static assets.
func (a *Application) setupWebRoutes(r chi.Router) {
	if a.Assets == nil {
		a.Logger.Warn("No embedded web assets, serving API only")
		return
	}

	r.Route("/static", func(r chi.Router) {
		r.Use(customMiddleware.Compress(5))
		r.Handle("/*", handlers.StaticFiles(a.Assets))
	})

	r.Get("/", handlers.ServeIndex(a.Assets))
}

// getCORSConfig builds the CORS policy from security configuration.
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}

	cfg.AllowedOrigins = []string{
		fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
	}
	if a.Config.Security.EnableCORS && len(a.Config.Security.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, a.Config.Security.AllowedOrigins...)
	}

	return cfg
}

// createServer creates the HTTP server from server configuration.
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

// Start begins serving HTTP traffic. Server errors cancel the supplied
// context so the caller can shut down.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting server",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop gracefully stops the application.
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

	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// Run runs the application until interrupted.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}

// performStartupHealthCheck verifies that critical directories are writable.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	var warnings []string

	directories := map[string]string{
		"Data":    a.Paths.DataDir,
		"Reports": a.Paths.ReportsDir,
		"Cache":   a.Paths.CacheDir,
		"Logs":    a.Paths.LogsDir,
	}

	for name, dir := range directories {
		testFile := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %s", name, dir))
		} else {
			os.Remove(testFile)
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}
