package main

import (
	"context"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/audiotext/component"
	"github.com/kbukum/audiotext/config"
	"github.com/kbukum/audiotext/logger"
	"github.com/kbukum/audiotext/observability"
)

const instrumentationName = "github.com/kbukum/audiotext"

// telemetry owns the trace and metric exporters and the Sentry client.
type telemetry struct {
	cfg     observability.Config
	svc     *config.ServiceConfig
	log     *logger.Logger
	tp      *sdktrace.TracerProvider
	mp      *sdkmetric.MeterProvider
	flush   func()
	metrics *observability.JobMetrics
}

var (
	_ component.Component   = (*telemetry)(nil)
	_ component.Describable = (*telemetry)(nil)
)

func newTelemetry(cfg observability.Config, svc *config.ServiceConfig, log *logger.Logger) *telemetry {
	return &telemetry{cfg: cfg, svc: svc, log: log.WithComponent("telemetry"), flush: func() {}}
}

func (t *telemetry) Name() string { return "telemetry" }

func (t *telemetry) Start(ctx context.Context) error {
	if t.cfg.TracingEnabled {
		tp, err := observability.InitTracer(ctx, t.cfg.Tracer(t.svc.Name, t.svc.Version, t.svc.Environment))
		if err != nil {
			return err
		}
		t.tp = tp
	}
	if t.cfg.MetricsEnabled {
		mp, err := observability.InitMeter(ctx, t.cfg.Meter(t.svc.Name, t.svc.Version, t.svc.Environment))
		if err != nil {
			return err
		}
		t.mp = mp
	}

	metrics, err := observability.NewJobMetrics(observability.Meter(instrumentationName))
	if err != nil {
		return fmt.Errorf("job metrics: %w", err)
	}
	t.metrics = metrics

	flush, err := observability.InitSentry(observability.SentryConfig{
		DSN:         t.cfg.SentryDSN,
		Environment: t.svc.Environment,
		Release:     t.svc.Name + "@" + t.svc.Version,
	})
	if err != nil {
		t.log.Warn("sentry disabled", logger.Fields(logger.FieldError, err.Error()))
	}
	t.flush = flush
	return nil
}

func (t *telemetry) Stop(ctx context.Context) error {
	t.flush()
	var errs []error
	if t.mp != nil {
		if err := t.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	if t.tp != nil {
		if err := t.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("telemetry: %v", errs)
	}
	return nil
}

func (t *telemetry) Health(context.Context) observability.Health {
	return observability.Health{Name: t.Name(), Status: observability.HealthStatusUp}
}

func (t *telemetry) Describe() component.Description {
	return component.Description{
		Name: "Telemetry",
		Type: "telemetry",
		Details: fmt.Sprintf("traces=%s metrics=%s sentry=%s endpoint=%s",
			onOff(t.cfg.TracingEnabled), onOff(t.cfg.MetricsEnabled), onOff(t.cfg.SentryDSN != ""), t.cfg.Endpoint),
	}
}

// Metrics returns the job instruments. It is nil before Start.
func (t *telemetry) Metrics() *observability.JobMetrics {
	return t.metrics
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
