package job

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kbukum/audiotext/errors"
	"github.com/kbukum/audiotext/logger"
	"github.com/kbukum/audiotext/observability"
	"github.com/kbukum/audiotext/transcription"
	"github.com/kbukum/audiotext/util"
)

// ErrBusy is returned when another job holds the slot.
var ErrBusy = errors.Busy()

// Converter turns an uploaded file into a mono 16 kHz PCM WAV and returns
// its path.
type Converter interface {
	Convert(ctx context.Context, inputPath string) (string, error)
}

// Upload is one transcription request.
type Upload struct {
	// Filename is the client's name for the file; only its extension is used.
	Filename string
	Body     io.Reader
	// Language overrides the configured default when set.
	Language string
}

// Config configures the Controller.
type Config struct {
	// Timeout bounds a whole job. Zero means no limit.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"min=0"`
	// TempDir is where per-job directories are created. Empty means os.TempDir.
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir"`
	// DefaultLanguage is the recognizer hint used when an upload has none.
	DefaultLanguage string `yaml:"default_language" mapstructure:"default_language" validate:"omitempty,language"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = "pt"
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithMetrics records job metrics on m.
func WithMetrics(m *observability.JobMetrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// Controller runs uploads through admission, conversion and recognition.
type Controller struct {
	gate    *Gate
	conv    Converter
	runner  *Runner
	cfg     Config
	log     *logger.Logger
	metrics *observability.JobMetrics
}

// NewController creates a Controller. The gate is shared with whoever
// serves stop and status requests.
func NewController(gate *Gate, conv Converter, rec transcription.Recognizer, cfg Config, log *logger.Logger, opts ...Option) *Controller {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	c := &Controller{
		gate:   gate,
		conv:   conv,
		runner: NewRunner(rec, log),
		cfg:    cfg,
		log:    log.WithComponent("job"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Gate returns the controller's admission gate.
func (c *Controller) Gate() *Gate { return c.gate }

// Transcribe runs one upload to completion. It returns ErrBusy without
// touching the filesystem when another job is active. The job is detached
// from ctx cancellation so a dropped client does not free the slot while
// the recognizer is still running; ctx values such as the trace are kept.
func (c *Controller) Transcribe(ctx context.Context, up Upload) (Result, error) {
	lease, ok := c.gate.TryAcquire()
	if !ok {
		c.metrics.JobRejected(ctx)
		return Result{}, ErrBusy
	}
	defer lease.Release()

	sig := NewSignal()
	lease.Register(sig)

	ctx = context.WithoutCancel(ctx)
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	language := up.Language
	if language == "" {
		language = c.cfg.DefaultLanguage
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanJobTranscribe)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrJobID, lease.ID())
	observability.SetSpanAttribute(ctx, observability.AttrLanguage, language)

	log := c.log.WithFields(logger.Fields(logger.FieldJobID, lease.ID()))
	log.Info("job started", logger.Fields("language", language, "filename", up.Filename))
	c.metrics.JobStarted(ctx)

	res, err := c.run(ctx, lease, sig, up, language, log)

	outcome := observability.OutcomeCompleted
	switch {
	case err != nil:
		outcome = observability.OutcomeFailed
		lease.SetState(StateFailed)
		observability.SetSpanError(ctx, err)
	case res.Aborted:
		outcome = observability.OutcomeAborted
		lease.SetState(StateAborted)
	default:
		lease.SetState(StateCompleted)
	}
	elapsed := time.Since(lease.StartedAt())
	observability.SetSpanAttribute(ctx, observability.AttrOutcome, outcome)
	observability.SetSpanAttribute(ctx, observability.AttrSegments, res.Segments)
	c.metrics.JobFinished(ctx, outcome, res.Segments, elapsed)

	fields := logger.Fields(
		logger.FieldState, outcome,
		"segments", res.Segments,
		"aborted", res.Aborted,
		logger.FieldDuration, elapsed.Milliseconds(),
	)
	if err != nil {
		log.WithError(err).Error("job failed", fields)
		return Result{}, err
	}
	log.Info("job finished", fields)
	return res, nil
}

func (c *Controller) run(ctx context.Context, lease *Lease, sig *Signal, up Upload, language string, log *logger.Logger) (Result, error) {
	dir, err := os.MkdirTemp(c.cfg.TempDir, "audiotext-")
	if err != nil {
		return Result{}, errors.Internal(fmt.Errorf("create job dir: %w", err))
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Debug("job dir cleanup failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	input, err := persist(dir, up)
	if err != nil {
		return Result{}, err
	}

	lease.SetState(StateConverting)
	convCtx, convSpan := observability.StartSpan(ctx, observability.SpanJobConvert)
	wav, err := c.conv.Convert(convCtx, input)
	observability.SetSpanError(convCtx, err)
	convSpan.End()
	if err != nil {
		return Result{}, conversionError(ctx, err)
	}

	lease.SetState(StateTranscribing)
	return c.recognize(ctx, wav, sig, language)
}

type runOutcome struct {
	res Result
	err error
}

// recognize hands the waveform to the runner on its own goroutine and waits
// for it to finish.
func (c *Controller) recognize(ctx context.Context, wav string, sig *Signal, language string) (Result, error) {
	done := make(chan runOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				observability.Recover(ctx, nil, r)
				done <- runOutcome{err: errors.Internal(fmt.Errorf("recognizer panic: %v", r))}
			}
		}()
		res, err := c.runner.Run(ctx, wav, sig, language)
		done <- runOutcome{res: res, err: err}
	}()
	out := <-done
	return out.res, out.err
}

func persist(dir string, up Upload) (string, error) {
	if up.Body == nil {
		return "", errors.MissingField("audio")
	}
	ext := strings.ToLower(filepath.Ext(util.SanitizeFilename(up.Filename, "")))
	if ext == "" || ext == "." {
		ext = ".wav"
	}
	path := filepath.Join(dir, "upload"+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Internal(fmt.Errorf("create upload file: %w", err))
	}
	if _, err := io.Copy(f, up.Body); err != nil {
		f.Close()
		return "", errors.Internal(fmt.Errorf("write upload: %w", err))
	}
	if err := f.Close(); err != nil {
		return "", errors.Internal(fmt.Errorf("close upload: %w", err))
	}
	return path, nil
}

func conversionError(ctx context.Context, err error) error {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Timeout("conversion").WithCause(err)
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	return errors.ConversionFailed(err)
}
