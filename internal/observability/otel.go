package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"jobfinder/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Enabled        bool
	ConsoleOutput  bool
	PrettyPrint    bool
	SampleRate     float64
	Prometheus     PrometheusConfig
}

// Metrics holds all custom metrics for the job finder
type Metrics struct {
	// Provider operation metrics
	ProviderSearchTime   metric.Float64Histogram
	ProviderRequestCount metric.Int64Counter
	ProviderErrorCount   metric.Int64Counter
	ProviderListings     metric.Int64Histogram

	// Business metrics
	ResumesParsed     metric.Int64Counter
	SearchesCompleted metric.Int64Counter
	ListingsMerged    metric.Int64Counter
	DuplicatesDropped metric.Int64Counter
	TitleStrategyHits metric.Int64Counter

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// ObservabilityManager manages OpenTelemetry setup
type ObservabilityManager struct {
	config           ObservabilityConfig
	fullConfig       *config.Config // Store full config for access to nested settings
	tracerProvider   *trace.TracerProvider
	meterProvider    *sdkmetric.MeterProvider
	metrics          *Metrics
	shutdownFuncs    []func(context.Context) error
	prometheusServer *http.ServeMux
}

// GetObservabilityConfig builds the manager config from application config
func GetObservabilityConfig(cfg *config.Config) ObservabilityConfig {
	return ObservabilityConfig{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Enabled:        cfg.Observability.Enabled,
		ConsoleOutput:  cfg.Observability.Console.Enabled,
		PrettyPrint:    cfg.Observability.Console.PrettyPrint,
		SampleRate:     cfg.Observability.SampleRate,
		Prometheus:     GetPrometheusConfig(cfg),
	}
}

// NewObservabilityManager creates a new observability manager
func NewObservabilityManager(obsConfig ObservabilityConfig, fullConfig *config.Config) (*ObservabilityManager, error) {
	if !obsConfig.Enabled {
		return &ObservabilityManager{config: obsConfig, fullConfig: fullConfig}, nil
	}

	om := &ObservabilityManager{
		config:        obsConfig,
		fullConfig:    fullConfig,
		shutdownFuncs: make([]func(context.Context) error, 0),
	}

	if err := om.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := om.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return om, nil
}

// initTracing sets up OpenTelemetry tracing
func (om *ObservabilityManager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	if om.config.ConsoleOutput {
		// Console exporter for development
		opts := []stdouttrace.Option{}
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	} else if om.fullConfig != nil && om.fullConfig.Observability.OTLP.Enabled {
		// OTLP exporter for production
		exporter, err = om.createOTLPExporter()
	} else {
		// No-op exporter when no production exporter is configured
		exporter = &noOpSpanExporter{}
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := om.createResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(om.config.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)

	return nil
}

// initMetrics sets up OpenTelemetry metrics
func (om *ObservabilityManager) initMetrics() error {
	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}

	res, err := om.createResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	meterProviderOptions := []sdkmetric.Option{
		sdkmetric.WithResource(res),
	}
	for _, reader := range readers {
		meterProviderOptions = append(meterProviderOptions, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(meterProviderOptions...)

	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	return om.initCustomMetrics()
}

// setupMetricReaders sets up all metric readers based on configuration
func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	if err := om.setupConsoleReader(&readers); err != nil {
		return nil, err
	}

	if err := om.setupOTLPReader(&readers); err != nil {
		return nil, err
	}

	if err := om.setupPrometheusReader(&readers); err != nil {
		return nil, err
	}

	// If no readers configured, use manual reader as fallback
	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}

	return readers, nil
}

// setupConsoleReader sets up console metric reader if enabled
func (om *ObservabilityManager) setupConsoleReader(readers *[]sdkmetric.Reader) error {
	if !om.config.ConsoleOutput {
		return nil
	}

	exporter, err := stdoutmetric.New()
	if err != nil {
		return fmt.Errorf("failed to create console metric exporter: %w", err)
	}

	interval := om.getMetricsCollectionInterval()
	*readers = append(*readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	return nil
}

// setupOTLPReader sets up OTLP metric reader if enabled
func (om *ObservabilityManager) setupOTLPReader(readers *[]sdkmetric.Reader) error {
	if om.fullConfig == nil || !om.fullConfig.Observability.OTLP.Enabled {
		return nil
	}

	otlpReader, err := om.createOTLPMetricsReader()
	if err != nil {
		return fmt.Errorf("failed to create OTLP metrics reader: %w", err)
	}
	if otlpReader != nil {
		*readers = append(*readers, otlpReader)
	}
	return nil
}

// setupPrometheusReader sets up Prometheus metric reader if enabled
func (om *ObservabilityManager) setupPrometheusReader(readers *[]sdkmetric.Reader) error {
	if !om.config.Prometheus.Enabled {
		return nil
	}

	prometheusReader, prometheusMux, err := SetupPrometheusExporter(om.config.Prometheus)
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	if prometheusReader != nil {
		*readers = append(*readers, prometheusReader)
		om.prometheusServer = prometheusMux

		if err := StartPrometheusServer(prometheusMux, om.config.Prometheus.Port); err != nil {
			return fmt.Errorf("failed to start Prometheus server: %w", err)
		}
	}
	return nil
}

// createResource creates the OpenTelemetry resource
func (om *ObservabilityManager) createResource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			attribute.String("service.instance.id", om.getServiceInstanceID()),
		),
	)
}

// initCustomMetrics creates all custom metrics for the job finder
func (om *ObservabilityManager) initCustomMetrics() error {
	meter := om.meterProvider.Meter(om.config.ServiceName)
	om.metrics = &Metrics{}

	if err := om.createProviderMetrics(meter); err != nil {
		return err
	}

	if err := om.createBusinessMetrics(meter); err != nil {
		return err
	}

	if err := om.createRateLimitMetrics(meter); err != nil {
		return err
	}

	return nil
}

// createProviderMetrics creates provider operation metrics
func (om *ObservabilityManager) createProviderMetrics(meter metric.Meter) error {
	var err error

	om.metrics.ProviderSearchTime, err = meter.Float64Histogram(
		"jobfinder_provider_search_duration_seconds",
		metric.WithDescription("Time spent querying job-search providers"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create provider search time metric: %w", err)
	}

	om.metrics.ProviderRequestCount, err = meter.Int64Counter(
		"jobfinder_provider_requests_total",
		metric.WithDescription("Total number of provider search requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create provider request count metric: %w", err)
	}

	om.metrics.ProviderErrorCount, err = meter.Int64Counter(
		"jobfinder_provider_errors_total",
		metric.WithDescription("Total number of provider search errors"),
	)
	if err != nil {
		return fmt.Errorf("failed to create provider error count metric: %w", err)
	}

	om.metrics.ProviderListings, err = meter.Int64Histogram(
		"jobfinder_provider_listings",
		metric.WithDescription("Listings returned per provider search"),
	)
	if err != nil {
		return fmt.Errorf("failed to create provider listings metric: %w", err)
	}

	return nil
}

// createBusinessMetrics creates business-related metrics
func (om *ObservabilityManager) createBusinessMetrics(meter metric.Meter) error {
	var err error

	om.metrics.ResumesParsed, err = meter.Int64Counter(
		"jobfinder_resumes_parsed_total",
		metric.WithDescription("Total number of resumes parsed"),
	)
	if err != nil {
		return fmt.Errorf("failed to create resumes parsed metric: %w", err)
	}

	om.metrics.SearchesCompleted, err = meter.Int64Counter(
		"jobfinder_searches_total",
		metric.WithDescription("Total number of job searches completed"),
	)
	if err != nil {
		return fmt.Errorf("failed to create searches completed metric: %w", err)
	}

	om.metrics.ListingsMerged, err = meter.Int64Counter(
		"jobfinder_listings_merged_total",
		metric.WithDescription("Total number of listings returned after aggregation"),
	)
	if err != nil {
		return fmt.Errorf("failed to create listings merged metric: %w", err)
	}

	om.metrics.DuplicatesDropped, err = meter.Int64Counter(
		"jobfinder_duplicates_dropped_total",
		metric.WithDescription("Total number of duplicate listings dropped during aggregation"),
	)
	if err != nil {
		return fmt.Errorf("failed to create duplicates dropped metric: %w", err)
	}

	om.metrics.TitleStrategyHits, err = meter.Int64Counter(
		"jobfinder_title_strategy_hits_total",
		metric.WithDescription("Job title detections per extraction strategy"),
	)
	if err != nil {
		return fmt.Errorf("failed to create title strategy hits metric: %w", err)
	}

	return nil
}

// createRateLimitMetrics creates rate limiting metrics
func (om *ObservabilityManager) createRateLimitMetrics(meter metric.Meter) error {
	var err error

	om.metrics.RateLimitHits, err = meter.Int64Counter(
		"jobfinder_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return nil
}

// GetMetrics returns the metrics instance
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om.metrics == nil {
		return &Metrics{} // Return empty metrics if not initialized
	}
	return om.metrics
}

// RecordProviderOperation records the outcome of one provider search.
func (om *ObservabilityManager) RecordProviderOperation(ctx context.Context, provider string, duration time.Duration, listings int, err error) {
	if om == nil || om.metrics == nil || !om.providerMetricsEnabled() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.Bool("success", err == nil),
	}

	if om.fullConfig == nil || om.fullConfig.Observability.CustomMetrics.ProviderOperations.TrackDuration {
		om.metrics.ProviderSearchTime.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	}
	om.metrics.ProviderRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		om.metrics.ProviderErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else if om.fullConfig == nil || om.fullConfig.Observability.CustomMetrics.ProviderOperations.TrackListings {
		om.metrics.ProviderListings.Record(ctx, int64(listings), metric.WithAttributes(attrs...))
	}
}

// RecordAggregation records merge results for one search.
func (om *ObservabilityManager) RecordAggregation(ctx context.Context, merged, duplicatesDropped int) {
	if om == nil || om.metrics == nil || !om.businessMetricsEnabled() {
		return
	}
	if om.metrics.ListingsMerged != nil {
		om.metrics.ListingsMerged.Add(ctx, int64(merged))
	}
	if om.metrics.DuplicatesDropped != nil {
		om.metrics.DuplicatesDropped.Add(ctx, int64(duplicatesDropped))
	}
}

// RecordResumeParsed records one parsed resume and the strategy that
// detected its title.
func (om *ObservabilityManager) RecordResumeParsed(ctx context.Context, success bool, strategy string) {
	if om == nil || om.metrics == nil || !om.businessMetricsEnabled() {
		return
	}
	if om.metrics.ResumesParsed != nil {
		om.metrics.ResumesParsed.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	}
	if strategy != "" && om.metrics.TitleStrategyHits != nil {
		om.metrics.TitleStrategyHits.Add(ctx, 1, metric.WithAttributes(attribute.String("strategy", strategy)))
	}
}

// RecordSearchCompleted records one completed search request.
func (om *ObservabilityManager) RecordSearchCompleted(ctx context.Context, kind string, success bool) {
	if om == nil || om.metrics == nil || !om.businessMetricsEnabled() {
		return
	}
	if om.metrics.SearchesCompleted != nil {
		om.metrics.SearchesCompleted.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.Bool("success", success),
		))
	}
}

// RecordRateLimitHit records one rejected request.
func (om *ObservabilityManager) RecordRateLimitHit(ctx context.Context, keyType string) {
	if om == nil || om.metrics == nil {
		return
	}
	if om.fullConfig != nil && !om.fullConfig.Observability.CustomMetrics.BusinessMetrics.TrackRateLimits {
		return
	}
	if om.metrics.RateLimitHits != nil {
		om.metrics.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("key_type", keyType)))
	}
}

func (om *ObservabilityManager) providerMetricsEnabled() bool {
	if om.fullConfig == nil {
		return true
	}
	return om.fullConfig.Observability.CustomMetrics.ProviderOperations.Enabled
}

func (om *ObservabilityManager) businessMetricsEnabled() bool {
	if om.fullConfig == nil {
		return true
	}
	return om.fullConfig.Observability.CustomMetrics.BusinessMetrics.Enabled
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	return otelhttp.NewMiddleware(
		om.config.ServiceName,
		otelhttp.WithTracerProvider(om.tracerProvider),
		otelhttp.WithMeterProvider(om.meterProvider),
	)
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if !om.config.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return otel.Tracer(name)
}

// Shutdown gracefully shuts down all observability components
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// No-op exporter for when neither console nor OTLP output is configured
type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// createOTLPExporter creates an OTLP HTTP trace exporter
func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	if om.fullConfig == nil {
		return nil, fmt.Errorf("config not available for OTLP configuration")
	}

	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(otlpConfig.Endpoint),
	}

	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	return exporter, nil
}

// createOTLPMetricsReader creates an OTLP HTTP metrics reader
func (om *ObservabilityManager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	if om.fullConfig == nil {
		return nil, fmt.Errorf("config not available for OTLP configuration")
	}

	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint),
	}

	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	interval := om.getMetricsCollectionInterval()
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))

	return reader, nil
}

// getServiceInstanceID returns the service instance ID from config or a default
func (om *ObservabilityManager) getServiceInstanceID() string {
	if om.fullConfig != nil && om.fullConfig.Observability.ServiceInstance != "" {
		return om.fullConfig.Observability.ServiceInstance
	}
	return "jobfinder-1"
}

// getMetricsCollectionInterval returns the configured metrics collection interval
func (om *ObservabilityManager) getMetricsCollectionInterval() time.Duration {
	if om.fullConfig != nil {
		return om.fullConfig.Observability.Metrics.CollectionInterval
	}
	return 15 * time.Second
}
