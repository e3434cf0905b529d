package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/audiotext/errors"
	"github.com/kbukum/audiotext/logger"
	"github.com/kbukum/audiotext/process"
)

// ConvertedSuffix is appended to the input's base name to form the output path.
const ConvertedSuffix = "_converted.wav"

const stderrTail = 1 << 10

// Config configures the ffmpeg invocation.
type Config struct {
	Binary     string        `yaml:"binary" mapstructure:"binary"`
	SampleRate int           `yaml:"sample_rate" mapstructure:"sample_rate" validate:"omitempty,min=8000,max=48000"`
	Channels   int           `yaml:"channels" mapstructure:"channels" validate:"omitempty,min=1,max=2"`
	Codec      string        `yaml:"codec" mapstructure:"codec"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Binary == "" {
		c.Binary = "ffmpeg"
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.Channels <= 0 {
		c.Channels = 1
	}
	if c.Codec == "" {
		c.Codec = "pcm_s16le"
	}
}

// FFmpegConverter converts arbitrary audio into a PCM WAV with ffmpeg.
type FFmpegConverter struct {
	cfg Config
	log *logger.Logger
}

// NewFFmpegConverter creates a converter. Defaults are applied to cfg.
func NewFFmpegConverter(cfg Config, log *logger.Logger) *FFmpegConverter {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	return &FFmpegConverter{cfg: cfg, log: log.WithComponent("audio")}
}

// OutputPath returns where Convert writes the waveform for inputPath.
func OutputPath(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ConvertedSuffix
}

// Convert writes a normalized copy of inputPath next to it and returns the
// new path. Failures are reported as CONVERSION_FAILED with the exit code
// and the tail of ffmpeg's stderr.
func (c *FFmpegConverter) Convert(ctx context.Context, inputPath string) (string, error) {
	out := OutputPath(inputPath)
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	res, err := process.Run(ctx, process.Command{
		Binary: c.cfg.Binary,
		Args:   c.args(inputPath, out),
	})
	if err != nil {
		_ = os.Remove(out)
		appErr := errors.ConversionFailed(err)
		if res != nil {
			appErr.WithDetail("exit_code", res.ExitCode).
				WithDetail("stderr", tail(res.Stderr))
		}
		return "", appErr
	}

	c.log.Debug("audio converted", logger.Fields(
		"input", filepath.Base(inputPath),
		"output", filepath.Base(out),
		logger.FieldDuration, res.Duration.Milliseconds(),
	))
	return out, nil
}

func (c *FFmpegConverter) args(in, out string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", in,
		"-vn",
		"-ac", strconv.Itoa(c.cfg.Channels),
		"-ar", strconv.Itoa(c.cfg.SampleRate),
		"-c:a", c.cfg.Codec,
		out,
	}
}

// Available reports whether the ffmpeg binary resolves.
func (c *FFmpegConverter) Available(context.Context) error {
	if _, err := exec.LookPath(c.cfg.Binary); err != nil {
		return fmt.Errorf("audio: ffmpeg binary %q: %w", c.cfg.Binary, err)
	}
	return nil
}

func tail(b []byte) string {
	if len(b) > stderrTail {
		b = b[len(b)-stderrTail:]
	}
	return strings.TrimSpace(string(b))
}
