package job

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/kbukum/audiotext/errors"
	"github.com/kbukum/audiotext/logger"
	"github.com/kbukum/audiotext/transcription"
)

// Result is the outcome of one transcription.
type Result struct {
	// Text joins the trimmed, non-empty segment texts with single spaces.
	Text string `json:"text"`
	// Aborted is set when a stop was observed before the recognizer finished.
	// Text then holds only the segments consumed before the stop.
	Aborted bool `json:"aborted,omitempty"`
	// Segments counts the segments that contributed to Text.
	Segments int `json:"-"`
}

// Runner drives a recognizer over one waveform.
type Runner struct {
	rec transcription.Recognizer
	log *logger.Logger
}

// NewRunner creates a Runner over rec.
func NewRunner(rec transcription.Recognizer, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{rec: rec, log: log.WithComponent("runner")}
}

// Run transcribes wavPath. sig is checked after each segment is pulled; once
// it is set the recognizer is closed and the text gathered so far is
// returned with Aborted set. Recognizer failures come back as
// RECOGNITION_FAILED, or TIMEOUT when ctx's deadline expired.
func (r *Runner) Run(ctx context.Context, wavPath string, sig *Signal, language string) (Result, error) {
	it, err := r.rec.Execute(ctx, transcription.Request{AudioPath: wavPath, Language: language})
	if err != nil {
		return Result{}, recognitionError(ctx, err)
	}
	defer func() {
		if cerr := it.Close(); cerr != nil {
			r.log.Debug("recognizer close failed", logger.Fields(logger.FieldError, cerr.Error()))
		}
	}()

	var text textBuilder
	for {
		seg, ok, err := it.Next(ctx)
		if err != nil {
			return text.result(false), recognitionError(ctx, err)
		}
		if !ok {
			return text.result(false), nil
		}
		if sig.IsSet() {
			return text.result(true), nil
		}
		text.add(seg.Text)
	}
}

type textBuilder struct {
	b strings.Builder
	n int
}

func (t *textBuilder) add(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if t.n > 0 {
		t.b.WriteByte(' ')
	}
	t.b.WriteString(s)
	t.n++
}

func (t *textBuilder) result(aborted bool) Result {
	return Result{Text: t.b.String(), Aborted: aborted, Segments: t.n}
}

func recognitionError(ctx context.Context, err error) error {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Timeout("transcription").WithCause(err)
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	return errors.RecognitionFailed(err)
}
