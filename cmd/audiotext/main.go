// Command audiotext serves single-slot, cancellable speech transcription
// over HTTP.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/audiotext/api"
	"github.com/kbukum/audiotext/audio"
	"github.com/kbukum/audiotext/bootstrap"
	"github.com/kbukum/audiotext/config"
	"github.com/kbukum/audiotext/job"
	"github.com/kbukum/audiotext/server"
	"github.com/kbukum/audiotext/transcription"
	"github.com/kbukum/audiotext/transcription/whisper"
	"github.com/kbukum/audiotext/transcription/whispercpp"
	"github.com/kbukum/audiotext/version"
)

const serviceName = "audiotext"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg AppConfig
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		return err
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().Short()
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}

	tel := newTelemetry(cfg.Observability, &cfg.ServiceConfig, app.Logger)
	if err := app.RegisterComponent(tel); err != nil {
		return err
	}
	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*AppConfig]) error {
		return wire(ctx, a, tel)
	})
	return app.Run(ctx)
}

// wire builds the job pipeline and the HTTP surface once telemetry is up.
func wire(ctx context.Context, a *bootstrap.App[*AppConfig], tel *telemetry) error {
	cfg, log := a.Cfg, a.Logger

	recognizers := transcription.NewRegistry()
	recognizers.RegisterFactory(whispercpp.ProviderName, whispercpp.Factory())
	recognizers.RegisterFactory(whisper.ProviderName, whisper.Factory())
	rec, err := transcription.Build(ctx, recognizers, cfg.Transcription, log)
	if err != nil {
		return err
	}

	conv := audio.NewFFmpegConverter(cfg.Audio, log)
	gate := job.NewGate(log)
	ctrl := job.NewController(gate, conv, rec, cfg.Job, log, job.WithMetrics(tel.Metrics()))

	srv := server.New(cfg.Server, log)
	srv.ApplyDefaults(cfg.Name, a.Components.HealthAll)
	api.NewHandler(ctrl, log).Register(srv.GinEngine())

	if err := a.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}
	return a.RegisterComponent(&pipeline{
		provider: cfg.Transcription.Provider,
		rec:      rec,
		ffmpeg:   conv,
		gate:     gate,
	})
}
