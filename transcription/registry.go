package transcription

import (
	"context"
	"fmt"

	"github.com/kbukum/audiotext/logger"
	"github.com/kbukum/audiotext/observability"
	"github.com/kbukum/audiotext/provider"
)

// Config selects and configures the recognizer backend.
type Config struct {
	// Provider names the registered factory to use.
	Provider string `yaml:"provider" mapstructure:"provider" validate:"required"`
	// WhisperCPP and Whisper are passed verbatim to their factories.
	WhisperCPP map[string]any `yaml:"whispercpp" mapstructure:"whispercpp"`
	Whisper    map[string]any `yaml:"whisper" mapstructure:"whisper"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "whispercpp"
	}
}

// Section returns the config map for the named provider.
func (c *Config) Section(name string) map[string]any {
	switch name {
	case "whispercpp":
		return c.WhisperCPP
	case "whisper":
		return c.Whisper
	}
	return nil
}

// NewRegistry creates an empty recognizer registry.
func NewRegistry() *provider.Registry[Recognizer] {
	return provider.NewRegistry[Recognizer]()
}

// Build creates the configured recognizer, verifies it can start, and wraps
// it with logging and tracing.
func Build(ctx context.Context, reg *provider.Registry[Recognizer], cfg Config, log *logger.Logger) (Recognizer, error) {
	rec, err := reg.Create(cfg.Provider, cfg.Section(cfg.Provider))
	if err != nil {
		return nil, fmt.Errorf("transcription: create %s: %w", cfg.Provider, err)
	}
	if err := provider.InitIfNeeded(ctx, rec); err != nil {
		return nil, fmt.Errorf("transcription: init %s: %w", cfg.Provider, err)
	}
	return provider.ChainStream(
		provider.WithStreamLogging[Request, Segment](log),
		provider.WithStreamTracing[Request, Segment](observability.SpanJobRecognize),
	)(rec), nil
}
