package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skyblockz/sbz-giveaway/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// MetricsProvider manages OpenTelemetry metrics. Every Record method is safe
// on a nil or disabled provider.
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	drawingsResolvedCounter   metric.Int64Counter
	rerollsCounter            metric.Int64Counter
	rosterChangesCounter      metric.Int64Counter
	gateEvictionsCounter      metric.Int64Counter
	jobDurationHist           metric.Float64Histogram
	itemFailuresCounter       metric.Int64Counter
	eventsPublishedCounter    metric.Int64Counter
	databaseQueriesCounter    metric.Int64Counter
	databaseQueryDurationHist metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the exporter selected by OTEL_EXPORTER_TYPE
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.markInitialized()
		return nil
	}

	var (
		exporter sdkmetric.Exporter
		err      error
	)
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.markInitialized()
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
	return mp.InitializeWithReader(reader)
}

// InitializeWithReader builds the meter provider on an explicit reader
func (mp *MetricsProvider) InitializeWithReader(reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("sbz-giveaway")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

func (mp *MetricsProvider) markInitialized() {
	mp.mu.Lock()
	mp.initialized = true
	mp.mu.Unlock()
}

func (mp *MetricsProvider) createInstruments() error {
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&mp.drawingsResolvedCounter, DrawingsResolvedTotal, "Drawings rolled by the scheduler, by outcome"},
		{&mp.rerollsCounter, DrawingRerollsTotal, "Operator rerolls"},
		{&mp.rosterChangesCounter, RosterChangesTotal, "Roster mutations, by result"},
		{&mp.gateEvictionsCounter, GateEvictionsTotal, "Reactions removed from gated messages"},
		{&mp.itemFailuresCounter, SchedulerItemFailureTotal, "Scheduler items that failed and were left for the next tick"},
		{&mp.eventsPublishedCounter, EventsPublishedTotal, "Domain events published after commit"},
		{&mp.databaseQueriesCounter, DatabaseQueriesTotal, "Total number of database queries"},
	}

	for _, c := range counters {
		counter, err := mp.meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit("1"),
		)
		if err != nil {
			return fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
		*c.target = counter
	}

	var err error
	mp.jobDurationHist, err = mp.meter.Float64Histogram(
		SchedulerJobDuration,
		metric.WithDescription("Duration of one scheduler job run in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return fmt.Errorf("failed to create job duration histogram: %w", err)
	}

	mp.databaseQueryDurationHist, err = mp.meter.Float64Histogram(
		DatabaseQueryDuration,
		metric.WithDescription("Duration of database queries in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create database query duration histogram: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the exporter
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	if mp == nil {
		return nil
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordDrawingResolved counts a scheduler resolution
func (mp *MetricsProvider) RecordDrawingResolved(ctx context.Context, outcome string) {
	if !mp.isEnabled() {
		return
	}
	mp.drawingsResolvedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelOutcome, outcome)))
}

// RecordReroll counts an operator reroll
func (mp *MetricsProvider) RecordReroll(ctx context.Context) {
	if !mp.isEnabled() {
		return
	}
	mp.rerollsCounter.Add(ctx, 1)
}

// RecordRosterChange counts a roster mutation by its result
func (mp *MetricsProvider) RecordRosterChange(ctx context.Context, result string) {
	if !mp.isEnabled() {
		return
	}
	mp.rosterChangesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelResult, result)))
}

func (mp *MetricsProvider) RecordGateEvictions(ctx context.Context, count int) {
	if !mp.isEnabled() || count == 0 {
		return
	}
	mp.gateEvictionsCounter.Add(ctx, int64(count))
}

// RecordSchedulerItemFailure counts an item a job skipped after an error
func (mp *MetricsProvider) RecordSchedulerItemFailure(ctx context.Context, job string) {
	if !mp.isEnabled() {
		return
	}
	mp.itemFailuresCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelJob, job)))
}

// MeasureJob returns a function that records the job's duration.
//
//	defer metrics.MeasureJob(ctx, JobResolveDrawings)()
func (mp *MetricsProvider) MeasureJob(ctx context.Context, job string) func() {
	start := time.Now()
	return func() {
		if !mp.isEnabled() {
			return
		}
		mp.jobDurationHist.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String(LabelJob, job)))
	}
}

func (mp *MetricsProvider) RecordEventPublished(ctx context.Context, eventType string) {
	if !mp.isEnabled() {
		return
	}
	mp.eventsPublishedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelEventType, eventType)))
}

// RecordDatabaseQuery records a database query with duration
func (mp *MetricsProvider) RecordDatabaseQuery(repository, method string, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelRepository, repository),
		attribute.String(LabelMethod, method),
	)

	mp.databaseQueriesCounter.Add(context.Background(), 1, attrs)
	mp.databaseQueryDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// MeasureDatabaseQuery returns a function to measure database query duration
//
//	defer mp.MeasureDatabaseQuery("drawing", "GetDue")()
func (mp *MetricsProvider) MeasureDatabaseQuery(repository, method string) func() {
	start := time.Now()
	return func() {
		mp.RecordDatabaseQuery(repository, method, time.Since(start))
	}
}

// isEnabled reports whether instruments exist. With exporter "none" the
// provider is initialized but has no meter.
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meter != nil
}

var (
	globalMetrics *MetricsProvider
	metricsMu     sync.RWMutex
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	metricsMu.Lock()
	defer metricsMu.Unlock()

	if globalMetrics != nil {
		return nil
	}

	provider := NewMetricsProvider(cfg)
	if err := provider.Initialize(ctx); err != nil {
		return err
	}
	globalMetrics = provider
	return nil
}

// GetMetrics returns the global metrics provider, or nil before initialization
func GetMetrics() *MetricsProvider {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return globalMetrics
}

// SetMetrics replaces the global provider. Tests use it with a manual reader.
func SetMetrics(mp *MetricsProvider) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	globalMetrics = mp
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	return GetMetrics().Shutdown(ctx)
}
