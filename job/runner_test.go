package job

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/kbukum/audiotext/errors"
)

func TestRunnerCompletes(t *testing.T) {
	rec := &scriptedRecognizer{segments: segs("  Olá ", "", " tudo", "bem?  ")}
	res, err := NewRunner(rec, nil).Run(context.Background(), "a.wav", NewSignal(), "pt")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Text != "Olá tudo bem?" || res.Aborted {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Segments != 3 {
		t.Errorf("expected 3 contributing segments, got %d", res.Segments)
	}
	if rec.closed.Load() != 1 {
		t.Errorf("iterator must be closed once, got %d", rec.closed.Load())
	}
	if rec.lastReq.AudioPath != "a.wav" || rec.lastReq.Language != "pt" {
		t.Errorf("unexpected request %+v", rec.lastReq)
	}
}

func TestRunnerAbortsBeforeThirdSegment(t *testing.T) {
	sig := NewSignal()
	rec := &scriptedRecognizer{
		segments: segs(" s0", " s1", " s2"),
		// Stop arrives while the recognizer produces s2.
		hook: func(i int) {
			if i == 2 {
				sig.Set()
			}
		},
	}
	res, err := NewRunner(rec, nil).Run(context.Background(), "a.wav", sig, "pt")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Text != "s0 s1" || !res.Aborted {
		t.Errorf("unexpected result %+v", res)
	}
	if rec.closed.Load() != 1 {
		t.Error("iterator must be closed on abort")
	}
}

func TestRunnerSignalSetBeforeStart(t *testing.T) {
	sig := NewSignal()
	sig.Set()
	res, err := NewRunner(&scriptedRecognizer{segments: segs("a", "b")}, nil).Run(context.Background(), "a.wav", sig, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Text != "" || !res.Aborted {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestRunnerSignalAfterLastSegment(t *testing.T) {
	sig := NewSignal()
	rec := &scriptedRecognizer{segments: segs("a", "b")}
	res, err := NewRunner(rec, nil).Run(context.Background(), "a.wav", sig, "")
	sig.Set()
	if err != nil || res.Aborted || res.Text != "a b" {
		t.Errorf("unexpected result %+v err=%v", res, err)
	}
}

func TestRunnerOpenFailure(t *testing.T) {
	rec := &scriptedRecognizer{openErr: errors.New("model not found")}
	_, err := NewRunner(rec, nil).Run(context.Background(), "a.wav", NewSignal(), "")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeRecognitionFailed {
		t.Fatalf("expected RECOGNITION_FAILED, got %v", err)
	}
}

func TestRunnerMidStreamFailure(t *testing.T) {
	rec := &scriptedRecognizer{segments: segs("a", "b", "c"), failAt: 2}
	_, err := NewRunner(rec, nil).Run(context.Background(), "a.wav", NewSignal(), "")
	if !errors.Is(err, apperrors.RecognitionFailed(nil)) {
		t.Fatalf("expected RECOGNITION_FAILED, got %v", err)
	}
	if rec.closed.Load() != 1 {
		t.Error("iterator must be closed on failure")
	}
}

func TestRunnerDeadline(t *testing.T) {
	rec := newBlockingRecognizer()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewRunner(rec, nil).Run(ctx, "a.wav", NewSignal(), "")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeTimeout || appErr.HTTPStatus != 504 {
		t.Fatalf("expected TIMEOUT, got %v", err)
	}
}
