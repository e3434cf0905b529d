package job

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	apperrors "github.com/kbukum/audiotext/errors"
	"github.com/kbukum/audiotext/observability"
	"github.com/kbukum/audiotext/transcription"
)

func newController(t *testing.T, conv Converter, rec transcription.Recognizer, cfg Config, opts ...Option) (*Controller, string) {
	t.Helper()
	if cfg.TempDir == "" {
		cfg.TempDir = t.TempDir()
	}
	return NewController(NewGate(nil), conv, rec, cfg, nil, opts...), cfg.TempDir
}

func upload(name, body string) Upload {
	return Upload{Filename: name, Body: strings.NewReader(body)}
}

func assertNoJobDirs(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected temp artifacts removed, found %d entries", len(entries))
	}
}

func TestTranscribeCompletes(t *testing.T) {
	conv := &fakeConverter{}
	rec := &scriptedRecognizer{segments: segs(" Bom dia", " a todos. ")}
	c, tmp := newController(t, conv, rec, Config{})

	res, err := c.Transcribe(context.Background(), upload("reunião.MP3", "ID3"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != "Bom dia a todos." || res.Aborted {
		t.Errorf("unexpected result %+v", res)
	}
	if rec.lastReq.Language != "pt" {
		t.Errorf("expected default language pt, got %q", rec.lastReq.Language)
	}
	if ext := filepath.Ext(conv.inputs[0]); ext != ".mp3" {
		t.Errorf("expected extension hint .mp3, got %q", ext)
	}
	assertNoJobDirs(t, tmp)
	if c.Gate().Active() {
		t.Error("slot must be released")
	}
	if st := c.Gate().Status(); st.LastOutcome != StateCompleted {
		t.Errorf("expected completed outcome, got %+v", st)
	}
}

func TestTranscribeDefaultExtension(t *testing.T) {
	conv := &fakeConverter{}
	c, _ := newController(t, conv, &scriptedRecognizer{}, Config{})
	if _, err := c.Transcribe(context.Background(), upload("", "RIFF")); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if ext := filepath.Ext(conv.inputs[0]); ext != ".wav" {
		t.Errorf("expected default .wav, got %q", ext)
	}
}

func TestTranscribeLanguageOverride(t *testing.T) {
	rec := &scriptedRecognizer{}
	c, _ := newController(t, &fakeConverter{}, rec, Config{DefaultLanguage: "en"})
	up := upload("a.wav", "x")
	up.Language = "es"
	if _, err := c.Transcribe(context.Background(), up); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if rec.lastReq.Language != "es" {
		t.Errorf("expected es, got %q", rec.lastReq.Language)
	}
}

func TestTranscribeBusyWhileActive(t *testing.T) {
	rec := newBlockingRecognizer()
	conv := &fakeConverter{}
	c, _ := newController(t, conv, rec, Config{})

	done := make(chan error, 1)
	go func() {
		_, err := c.Transcribe(context.Background(), upload("a.wav", "x"))
		done <- err
	}()
	<-rec.started

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Transcribe(context.Background(), upload("b.wav", "y"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if !errors.Is(err, ErrBusy) {
			t.Errorf("expected busy, got %v", err)
		}
		if apperrors.StatusOf(err) != 429 {
			t.Errorf("expected 429, got %d", apperrors.StatusOf(err))
		}
	}
	if conv.calls.Load() != 1 {
		t.Errorf("busy requests must not be processed, converter calls=%d", conv.calls.Load())
	}

	close(rec.release)
	if err := <-done; err != nil {
		t.Fatalf("first job: %v", err)
	}
}

func TestTranscribeStopReturnsPartial(t *testing.T) {
	rec := newBlockingRecognizer()
	c, tmp := newController(t, &fakeConverter{}, rec, Config{})

	type out struct {
		res Result
		err error
	}
	done := make(chan out, 1)
	go func() {
		res, err := c.Transcribe(context.Background(), upload("a.wav", "x"))
		done <- out{res, err}
	}()
	<-rec.started

	if got := c.Gate().Stop(); got != Stopping {
		t.Fatalf("expected stopping, got %s", got)
	}
	if got := c.Gate().Stop(); got != Stopping {
		t.Fatalf("repeat stop should report stopping, got %s", got)
	}
	close(rec.release)

	o := <-done
	if o.err != nil {
		t.Fatalf("Transcribe: %v", o.err)
	}
	if o.res.Text != "primeiro" || !o.res.Aborted {
		t.Errorf("unexpected result %+v", o.res)
	}
	if got := c.Gate().Stop(); got != NoActiveTask {
		t.Errorf("stop after the job must report no_active_task, got %s", got)
	}
	assertNoJobDirs(t, tmp)

	// The slot is free for the next job, with a fresh signal.
	c.runner = NewRunner(&scriptedRecognizer{segments: segs("novo")}, nil)
	res, err := c.Transcribe(context.Background(), upload("b.wav", "y"))
	if err != nil || res.Aborted || res.Text != "novo" {
		t.Errorf("next job: %+v err=%v", res, err)
	}
}

func TestTranscribeConversionFailureReleases(t *testing.T) {
	conv := &fakeConverter{err: errors.New("Invalid data found when processing input")}
	rec := &scriptedRecognizer{segments: segs("x")}
	c, tmp := newController(t, conv, rec, Config{})

	_, err := c.Transcribe(context.Background(), upload("bad.mp3", "garbage"))
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeConversionFailed || appErr.HTTPStatus != 500 {
		t.Fatalf("expected CONVERSION_FAILED, got %v", err)
	}
	if rec.lastReq.AudioPath != "" {
		t.Error("recognizer must not run after a failed conversion")
	}
	assertNoJobDirs(t, tmp)
	if c.Gate().Active() {
		t.Fatal("slot must be released after conversion failure")
	}

	conv.err = nil
	if _, err := c.Transcribe(context.Background(), upload("ok.wav", "RIFF")); err != nil {
		t.Fatalf("next job must be admitted: %v", err)
	}
}

func TestTranscribeConverterAppErrorPassesThrough(t *testing.T) {
	want := apperrors.ConversionFailed(errors.New("exit 1")).WithDetail("exit_code", 1)
	c, _ := newController(t, &fakeConverter{err: want}, &scriptedRecognizer{}, Config{})
	_, err := c.Transcribe(context.Background(), upload("a.wav", "x"))
	appErr, _ := apperrors.AsAppError(err)
	if appErr != want {
		t.Errorf("expected converter error unchanged, got %v", err)
	}
}

func TestTranscribeRecognitionFailureReleases(t *testing.T) {
	rec := &scriptedRecognizer{segments: segs("a", "b"), failAt: 1}
	c, _ := newController(t, &fakeConverter{}, rec, Config{})
	_, err := c.Transcribe(context.Background(), upload("a.wav", "x"))
	if !errors.Is(err, apperrors.RecognitionFailed(nil)) {
		t.Fatalf("expected RECOGNITION_FAILED, got %v", err)
	}
	if c.Gate().Active() {
		t.Fatal("slot must be released after recognition failure")
	}
	if st := c.Gate().Status(); st.LastOutcome != StateFailed {
		t.Errorf("expected failed outcome, got %+v", st)
	}
}

func TestTranscribeRecognizerPanicReleases(t *testing.T) {
	c, _ := newController(t, &fakeConverter{}, panicRecognizer{}, Config{})
	_, err := c.Transcribe(context.Background(), upload("a.wav", "x"))
	if apperrors.StatusOf(err) != 500 {
		t.Fatalf("expected internal error, got %v", err)
	}
	if c.Gate().Active() {
		t.Fatal("slot must be released after a recognizer panic")
	}
}

func TestTranscribeTimeout(t *testing.T) {
	rec := newBlockingRecognizer()
	c, _ := newController(t, &fakeConverter{}, rec, Config{Timeout: 50 * time.Millisecond})
	_, err := c.Transcribe(context.Background(), upload("a.wav", "x"))
	if apperrors.StatusOf(err) != 504 {
		t.Fatalf("expected 504, got %v", err)
	}
	if c.Gate().Active() {
		t.Fatal("slot must be released after timeout")
	}
}

func TestTranscribeIgnoresClientCancel(t *testing.T) {
	rec := newBlockingRecognizer()
	c, _ := newController(t, &fakeConverter{}, rec, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Transcribe(ctx, upload("a.wav", "x"))
		done <- err
	}()
	<-rec.started
	cancel()

	select {
	case err := <-done:
		t.Fatalf("job ended on client cancel: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	if !c.Gate().Active() {
		t.Fatal("slot must stay held while the worker runs")
	}
	close(rec.release)
	if err := <-done; err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
}

func TestTranscribeMissingBody(t *testing.T) {
	conv := &fakeConverter{}
	c, _ := newController(t, conv, &scriptedRecognizer{}, Config{})
	_, err := c.Transcribe(context.Background(), Upload{Filename: "a.wav"})
	if apperrors.StatusOf(err) != 400 {
		t.Fatalf("expected 400, got %v", err)
	}
	if conv.calls.Load() != 0 || c.Gate().Active() {
		t.Error("missing body must not convert and must release")
	}
}

func TestTranscribeRecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	jm, err := observability.NewJobMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	rec := newBlockingRecognizer()
	c, _ := newController(t, &fakeConverter{}, rec, Config{}, WithMetrics(jm))
	done := make(chan struct{})
	go func() {
		_, _ = c.Transcribe(context.Background(), upload("a.wav", "x"))
		close(done)
	}()
	<-rec.started
	_, _ = c.Transcribe(context.Background(), upload("b.wav", "y"))
	close(rec.release)
	<-done

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if s, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range s.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	if sums["job.total"] != 1 || sums["job.rejected"] != 1 || sums["job.active"] != 0 {
		t.Errorf("unexpected metric sums %v", sums)
	}
}
