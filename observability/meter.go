package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/audiotext/logger"
)

// MeterConfig configures the OTLP metric exporter.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	Insecure       bool
	Interval       time.Duration
}

// DefaultMeterConfig returns development defaults.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a global MeterProvider exporting over OTLP/HTTP.
// The caller owns shutdown.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Job outcomes recorded on job.total.
const (
	OutcomeCompleted = "completed"
	OutcomeAborted   = "aborted"
	OutcomeFailed    = "failed"
)

// JobMetrics holds the transcription job instruments.
type JobMetrics struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
	rejected metric.Int64Counter
	active   metric.Int64UpDownCounter
	segments metric.Int64Histogram
}

// NewJobMetrics creates the job instruments on meter.
func NewJobMetrics(meter metric.Meter) (*JobMetrics, error) {
	total, err := meter.Int64Counter("job.total",
		metric.WithDescription("Finished transcription jobs by outcome"))
	if err != nil {
		return nil, fmt.Errorf("creating job.total counter: %w", err)
	}
	duration, err := meter.Float64Histogram("job.duration",
		metric.WithDescription("Wall time of admitted jobs"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("creating job.duration histogram: %w", err)
	}
	rejected, err := meter.Int64Counter("job.rejected",
		metric.WithDescription("Transcribe requests refused because a job was active"))
	if err != nil {
		return nil, fmt.Errorf("creating job.rejected counter: %w", err)
	}
	active, err := meter.Int64UpDownCounter("job.active",
		metric.WithDescription("Jobs currently holding the slot"))
	if err != nil {
		return nil, fmt.Errorf("creating job.active gauge: %w", err)
	}
	segments, err := meter.Int64Histogram("job.segments",
		metric.WithDescription("Segments consumed per job"))
	if err != nil {
		return nil, fmt.Errorf("creating job.segments histogram: %w", err)
	}

	return &JobMetrics{
		total:    total,
		duration: duration,
		rejected: rejected,
		active:   active,
		segments: segments,
	}, nil
}

// JobStarted marks the slot as taken.
func (m *JobMetrics) JobStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.active.Add(ctx, 1)
}

// JobFinished frees the slot and records the outcome.
func (m *JobMetrics) JobFinished(ctx context.Context, outcome string, segments int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.active.Add(ctx, -1)
	m.total.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
	m.segments.Record(ctx, int64(segments), attrs)
}

// JobRejected counts a busy response.
func (m *JobMetrics) JobRejected(ctx context.Context) {
	if m == nil {
		return
	}
	m.rejected.Add(ctx, 1)
}
