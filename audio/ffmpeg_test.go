package audio

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/kbukum/audiotext/errors"
)

func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write fake ffmpeg: %v", err)
	}
	return path
}

func TestOutputPath(t *testing.T) {
	tests := map[string]string{
		"/tmp/job/upload.mp3": "/tmp/job/upload_converted.wav",
		"/tmp/job/upload.wav": "/tmp/job/upload_converted.wav",
		"/tmp/job/upload":     "/tmp/job/upload_converted.wav",
	}
	for in, want := range tests {
		if got := OutputPath(in); got != want {
			t.Errorf("OutputPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestArgs(t *testing.T) {
	c := NewFFmpegConverter(Config{}, nil)
	got := strings.Join(c.args("in.ogg", "in_converted.wav"), " ")
	want := "-hide_banner -nostdin -y -i in.ogg -vn -ac 1 -ar 16000 -c:a pcm_s16le in_converted.wav"
	if got != want {
		t.Errorf("args:\n got %s\nwant %s", got, want)
	}
}

func TestConvertWritesOutput(t *testing.T) {
	// The last argument is the output path.
	bin := fakeFFmpeg(t, `for a; do last=$a; done; printf RIFF > "$last"`)
	input := filepath.Join(t.TempDir(), "voice.ogg")
	if err := os.WriteFile(input, []byte("OggS"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := NewFFmpegConverter(Config{Binary: bin}, nil).Convert(context.Background(), input)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if out != OutputPath(input) {
		t.Errorf("unexpected output path %q", out)
	}
	if b, err := os.ReadFile(out); err != nil || string(b) != "RIFF" {
		t.Errorf("output not written: %q %v", b, err)
	}
}

func TestConvertFailure(t *testing.T) {
	bin := fakeFFmpeg(t, `echo "voice.ogg: Invalid data found when processing input" >&2; exit 1`)
	input := filepath.Join(t.TempDir(), "voice.ogg")

	_, err := NewFFmpegConverter(Config{Binary: bin}, nil).Convert(context.Background(), input)
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != apperrors.ErrCodeConversionFailed || appErr.HTTPStatus != 500 {
		t.Errorf("unexpected error %+v", appErr)
	}
	if appErr.Details["exit_code"] != 1 {
		t.Errorf("expected exit code detail, got %v", appErr.Details)
	}
	if !strings.Contains(appErr.Details["stderr"].(string), "Invalid data") {
		t.Errorf("expected stderr detail, got %v", appErr.Details)
	}
}

func TestConvertMissingBinary(t *testing.T) {
	c := NewFFmpegConverter(Config{Binary: "/nonexistent/ffmpeg"}, nil)
	if c.Available(context.Background()) == nil {
		t.Error("expected unavailable")
	}
	if _, err := c.Convert(context.Background(), "in.wav"); err == nil {
		t.Fatal("expected error")
	}
}
