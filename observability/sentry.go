package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kbukum/audiotext/logger"
)

const sentryFlushTimeout = 2 * time.Second

// SentryConfig configures error reporting. An empty DSN disables it.
type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
	SampleRate  float64
}

// InitSentry initializes the global Sentry client. The returned func flushes
// buffered events and is safe to call when Sentry is disabled.
func InitSentry(cfg SentryConfig) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		EnableTracing:    cfg.SampleRate > 0,
		TracesSampleRate: cfg.SampleRate,
	})
	if err != nil {
		return func() {}, err
	}
	logger.Info("sentry initialized", logger.Fields("environment", cfg.Environment))
	return func() { sentry.Flush(sentryFlushTimeout) }, nil
}

// CaptureError reports err with the request and tags attached. It is a no-op
// when Sentry has not been initialized.
func CaptureError(ctx context.Context, req *http.Request, err error, tags map[string]string) {
	if err == nil || sentry.CurrentHub().Client() == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		if req != nil {
			scope.SetRequest(req)
		}
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hub.CaptureException(err)
	})
}

// Recover reports a recovered panic value to Sentry and flushes.
func Recover(ctx context.Context, req *http.Request, recovered any) {
	if sentry.CurrentHub().Client() == nil {
		return
	}
	hub := sentry.CurrentHub().Clone()
	if req != nil {
		hub.Scope().SetRequest(req)
	}
	hub.RecoverWithContext(ctx, recovered)
	hub.Flush(sentryFlushTimeout)
}
