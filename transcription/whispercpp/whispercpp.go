// Package whispercpp recognizes speech by running the whisper.cpp CLI and
// reading segments from its stdout as they are printed.
package whispercpp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/kbukum/audiotext/process"
	"github.com/kbukum/audiotext/provider"
	"github.com/kbukum/audiotext/transcription"
)

// ProviderName is the registry name of this backend.
const ProviderName = "whispercpp"

const (
	defaultBinary   = "whisper-cli"
	defaultBeamSize = 3
	defaultBestOf   = 3
)

// Config configures the whisper.cpp CLI invocation.
type Config struct {
	Binary   string `yaml:"binary" mapstructure:"binary"`
	Model    string `yaml:"model" mapstructure:"model"`
	BeamSize int    `yaml:"beam_size" mapstructure:"beam_size"`
	BestOf   int    `yaml:"best_of" mapstructure:"best_of"`
	// Threads is passed as -t when positive.
	Threads int `yaml:"threads" mapstructure:"threads"`
	// GracePeriod is the SIGTERM to SIGKILL delay when a job is stopped.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
	// ExtraArgs are appended verbatim.
	ExtraArgs []string `yaml:"extra_args" mapstructure:"extra_args"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Binary == "" {
		c.Binary = defaultBinary
	}
	if c.BeamSize <= 0 {
		c.BeamSize = defaultBeamSize
	}
	if c.BestOf <= 0 {
		c.BestOf = defaultBestOf
	}
}

// Recognizer implements transcription.Recognizer over whisper.cpp.
type Recognizer struct {
	cfg Config
}

var _ transcription.Recognizer = (*Recognizer)(nil)

// New creates a Recognizer. Defaults are applied to cfg.
func New(cfg Config) *Recognizer {
	cfg.ApplyDefaults()
	return &Recognizer{cfg: cfg}
}

// Factory builds Recognizers from a config map.
func Factory() provider.Factory[transcription.Recognizer] {
	return func(m map[string]any) (transcription.Recognizer, error) {
		var cfg Config
		if err := provider.DecodeConfig(m, &cfg); err != nil {
			return nil, err
		}
		return New(cfg), nil
	}
}

// Name implements provider.Provider.
func (r *Recognizer) Name() string { return ProviderName }

// IsAvailable reports whether the binary resolves and the model is readable.
func (r *Recognizer) IsAvailable(ctx context.Context) bool {
	return r.Init(ctx) == nil
}

// Init implements provider.Initializable.
func (r *Recognizer) Init(_ context.Context) error {
	if _, err := exec.LookPath(r.cfg.Binary); err != nil {
		return fmt.Errorf("whispercpp: binary %q: %w", r.cfg.Binary, err)
	}
	if r.cfg.Model == "" {
		return errors.New("whispercpp: model path is required")
	}
	if _, err := os.Stat(r.cfg.Model); err != nil {
		return fmt.Errorf("whispercpp: model: %w", err)
	}
	return nil
}

// Execute starts whisper.cpp on req.AudioPath. Segments are parsed from
// stdout one line at a time as the caller pulls them.
func (r *Recognizer) Execute(ctx context.Context, req transcription.Request) (provider.Iterator[transcription.Segment], error) {
	stream, err := process.Start(ctx, process.Command{
		Binary:      r.cfg.Binary,
		Args:        r.args(req),
		GracePeriod: r.cfg.GracePeriod,
	})
	if err != nil {
		return nil, err
	}
	return &iterator{stream: stream}, nil
}

func (r *Recognizer) args(req transcription.Request) []string {
	args := []string{
		"-m", r.cfg.Model,
		"-f", req.AudioPath,
		"-bs", strconv.Itoa(r.cfg.BeamSize),
		"-bo", strconv.Itoa(r.cfg.BestOf),
		"--no-prints",
	}
	if req.Language != "" {
		args = append(args, "-l", req.Language)
	}
	if r.cfg.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(r.cfg.Threads))
	}
	return append(args, r.cfg.ExtraArgs...)
}

// iterator pulls one segment line per Next. Lines that are not segments
// (banners, blank lines) are skipped.
type iterator struct {
	stream *process.Stream
	done   bool
}

func (it *iterator) Next(ctx context.Context) (transcription.Segment, bool, error) {
	for !it.done {
		if err := ctx.Err(); err != nil {
			return transcription.Segment{}, false, err
		}
		line, err := it.stream.ReadLine()
		if errors.Is(err, io.EOF) {
			it.done = true
			break
		}
		if err != nil {
			return transcription.Segment{}, false, err
		}
		if seg, ok := ParseLine(line); ok {
			return seg, true, nil
		}
	}

	res, err := it.stream.Wait()
	if err != nil {
		return transcription.Segment{}, false, fmt.Errorf("whispercpp: %w: %s", err, tail(res))
	}
	return transcription.Segment{}, false, nil
}

// Close stops whisper.cpp if it is still running.
func (it *iterator) Close() error {
	return it.stream.Close()
}

func tail(res *process.Result) string {
	if res == nil {
		return ""
	}
	const limit = 512
	s := res.Stderr
	if len(s) > limit {
		s = s[len(s)-limit:]
	}
	return string(s)
}
