// Package observability wires OpenTelemetry tracing and metrics plus Sentry
// error reporting for audiotext.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("audiotext"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanJobTranscribe)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("audiotext"))
//	defer mp.Shutdown(ctx)
//	jm, err := observability.NewJobMetrics(observability.Meter("audiotext"))
//
// A nil *JobMetrics is valid and records nothing, as does CaptureError when
// Sentry was never initialized.
package observability
