package main

import (
	"context"
	"fmt"

	"github.com/kbukum/audiotext/component"
	"github.com/kbukum/audiotext/job"
	"github.com/kbukum/audiotext/observability"
	"github.com/kbukum/audiotext/transcription"
)

// ffmpegChecker is satisfied by audio.FFmpegConverter.
type ffmpegChecker interface {
	Available(ctx context.Context) error
}

// pipeline reports whether jobs can run: the converter binary, the
// recognizer backend and the admission gate.
type pipeline struct {
	provider string
	rec      transcription.Recognizer
	ffmpeg   ffmpegChecker
	gate     *job.Gate
}

var (
	_ component.Component   = (*pipeline)(nil)
	_ component.Describable = (*pipeline)(nil)
)

func (p *pipeline) Name() string { return "transcription" }

func (p *pipeline) Start(context.Context) error { return nil }

// Stop asks a running job to finish early so the server can drain.
func (p *pipeline) Stop(context.Context) error {
	if p.gate.Active() {
		p.gate.Stop()
	}
	return nil
}

func (p *pipeline) Health(ctx context.Context) observability.Health {
	st := p.gate.Status()
	h := observability.Health{
		Name:   p.Name(),
		Status: observability.HealthStatusUp,
		Details: map[string]any{
			"provider": p.provider,
			"active":   st.Active,
			"state":    string(st.State),
		},
	}
	if err := p.ffmpeg.Available(ctx); err != nil {
		h.Status = observability.HealthStatusDown
		h.Message = err.Error()
		return h
	}
	if !p.rec.IsAvailable(ctx) {
		h.Status = observability.HealthStatusDown
		h.Message = fmt.Sprintf("recognizer %s unavailable", p.provider)
	}
	return h
}

func (p *pipeline) Describe() component.Description {
	return component.Description{
		Name:    "Transcription",
		Type:    "recognizer",
		Details: p.provider,
	}
}
