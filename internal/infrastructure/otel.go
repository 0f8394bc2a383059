package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName    = "alumnipulse"
	ServiceVersion = "1.0.0"
	MeterName      = "alumnipulse"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	MetricExporter string // "prometheus", "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    env,
		TraceExporter:  "stdout", // Use stdout for development
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  false,
		SampleRatio:    1.0,
	}
}

// InitializeOTel initializes OpenTelemetry tracing and metrics
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}

	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Logger: logger,
	}

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	// Set up global propagators for trace context
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "OpenTelemetry initialization complete",
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(
			stdouttrace.WithPrettyPrint(),
		)
	case "none":
		// No exporter - tracing disabled
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))

	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

// initializeMetrics sets up OpenTelemetry metrics
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		exporter, err := prometheus.New()
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		providers.PrometheusHTTP = promhttp.Handler()

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))

		otel.SetMeterProvider(mp)

	case "none":
		// No exporter - metrics disabled
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	providers.Logger.InfoContext(ctx, "Metrics initialized",
		slog.String("exporter", cfg.MetricExporter))

	return nil
}

// BusinessMetrics holds all application-specific metrics
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Survey ingestion metrics
	UploadsTotal      metric.Int64Counter
	UploadBytes       metric.Int64Counter
	ParseDuration     metric.Float64Histogram
	HeaderScanDepth   metric.Int64Histogram
	ParseCacheHits    metric.Int64Counter
	ParseCacheMisses  metric.Int64Counter

	// Report metrics
	ReportsRendered      metric.Int64Counter
	ReportRenderDuration metric.Float64Histogram
	QuestionNotices      metric.Int64Counter

	// System metrics
	SystemErrors metric.Int64Counter
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total: %w", err)
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds: %w", err)
	}

	httpActiveRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_active_requests: %w", err)
	}

	uploadsTotal, err := meter.Int64Counter(
		"survey_uploads_total",
		metric.WithDescription("Total number of survey file uploads"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create survey_uploads_total: %w", err)
	}

	uploadBytes, err := meter.Int64Counter(
		"survey_upload_bytes_total",
		metric.WithDescription("Total bytes of uploaded survey files"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create survey_upload_bytes_total: %w", err)
	}

	parseDuration, err := meter.Float64Histogram(
		"survey_parse_duration_seconds",
		metric.WithDescription("Survey file parse duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create survey_parse_duration_seconds: %w", err)
	}

	headerScanDepth, err := meter.Int64Histogram(
		"survey_header_scan_depth",
		metric.WithDescription("Row index at which the survey header was located"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create survey_header_scan_depth: %w", err)
	}

	parseCacheHits, err := meter.Int64Counter(
		"survey_parse_cache_hits_total",
		metric.WithDescription("Parsed-upload cache hits"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create survey_parse_cache_hits_total: %w", err)
	}

	parseCacheMisses, err := meter.Int64Counter(
		"survey_parse_cache_misses_total",
		metric.WithDescription("Parsed-upload cache misses"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create survey_parse_cache_misses_total: %w", err)
	}

	reportsRendered, err := meter.Int64Counter(
		"reports_rendered_total",
		metric.WithDescription("Total number of rendered reports"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reports_rendered_total: %w", err)
	}

	reportRenderDuration, err := meter.Float64Histogram(
		"report_render_duration_seconds",
		metric.WithDescription("Report render duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create report_render_duration_seconds: %w", err)
	}

	questionNotices, err := meter.Int64Counter(
		"report_question_notices_total",
		metric.WithDescription("Per-question notices emitted instead of charts"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create report_question_notices_total: %w", err)
	}

	systemErrors, err := meter.Int64Counter(
		"system_errors_total",
		metric.WithDescription("Total number of system errors"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create system_errors_total: %w", err)
	}

	return &BusinessMetrics{
		HTTPRequestsTotal:    httpRequestsTotal,
		HTTPRequestDuration:  httpRequestDuration,
		HTTPActiveRequests:   httpActiveRequests,
		UploadsTotal:         uploadsTotal,
		UploadBytes:          uploadBytes,
		ParseDuration:        parseDuration,
		HeaderScanDepth:      headerScanDepth,
		ParseCacheHits:       parseCacheHits,
		ParseCacheMisses:     parseCacheMisses,
		ReportsRendered:      reportsRendered,
		ReportRenderDuration: reportRenderDuration,
		QuestionNotices:      questionNotices,
		SystemErrors:         systemErrors,
	}, nil
}

// RecordUpload records metrics for one accepted survey upload.
func RecordUpload(ctx context.Context, metrics *BusinessMetrics, size int64, format string, cached bool, parseTime time.Duration, headerRow int) {
	if metrics == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("format", format),
	)

	metrics.UploadsTotal.Add(ctx, 1, attrs)
	metrics.UploadBytes.Add(ctx, size, attrs)

	if cached {
		metrics.ParseCacheHits.Add(ctx, 1)
		return
	}

	metrics.ParseCacheMisses.Add(ctx, 1)
	metrics.ParseDuration.Record(ctx, parseTime.Seconds(), attrs)
	metrics.HeaderScanDepth.Record(ctx, int64(headerRow))
}

// RecordReport records metrics for one rendered report.
func RecordReport(ctx context.Context, metrics *BusinessMetrics, duration time.Duration, responses int, notices int) {
	if metrics == nil {
		return
	}

	metrics.ReportsRendered.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("empty", responses == 0),
	))
	metrics.ReportRenderDuration.Record(ctx, duration.Seconds())
	if notices > 0 {
		metrics.QuestionNotices.Add(ctx, int64(notices))
	}
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}
