package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout)
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
	err = New(ErrCodeConversionFailed, "bad file", http.StatusInternalServerError)
	if err.Retryable {
		t.Error("CONVERSION_FAILED should not be retryable")
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"Busy", Busy(), ErrCodeBusy, http.StatusTooManyRequests, true},
		{"ServiceUnavailable", ServiceUnavailable("recognizer"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable, true},
		{"Timeout", Timeout("transcribe"), ErrCodeTimeout, http.StatusGatewayTimeout, true},
		{"InvalidInput", InvalidInput("language", "unsupported"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"MissingField", MissingField("audio"), ErrCodeMissingField, http.StatusBadRequest, false},
		{"PayloadTooLarge", PayloadTooLarge(1024), ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge, false},
		{"Validation", Validation("bad input"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"ConversionFailed", ConversionFailed(nil), ErrCodeConversionFailed, http.StatusInternalServerError, false},
		{"RecognitionFailed", RecognitionFailed(nil), ErrCodeRecognitionFailed, http.StatusInternalServerError, false},
		{"Internal", Internal(nil), ErrCodeInternal, http.StatusInternalServerError, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("ffmpeg exited 1")
	err := ConversionFailed(nil).WithCause(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable via errors.Is")
	}
	if !strings.Contains(err.Error(), "ffmpeg exited 1") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("admission: %w", Busy())
	if !stderrors.Is(err, Busy()) {
		t.Error("expected wrapped Busy to match a fresh Busy")
	}
	if stderrors.Is(err, Internal(nil)) {
		t.Error("Busy must not match Internal")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("exit_code", 1)
	if err.Details["exit_code"] != 1 {
		t.Errorf("expected exit_code=1, got %v", err.Details["exit_code"])
	}
}

func TestAppError_ToResponse(t *testing.T) {
	resp := RecognitionFailed(fmt.Errorf("model crashed")).WithDetail("provider", "whispercpp").ToResponse()
	if resp.Error.Code != ErrCodeRecognitionFailed {
		t.Errorf("expected RECOGNITION_FAILED, got %s", resp.Error.Code)
	}
	if resp.Error.Details["provider"] != "whispercpp" {
		t.Errorf("expected provider detail, got %v", resp.Error.Details)
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("wrap: %w", Timeout("job"))
	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed for wrapped AppError")
	}
	if got.Code != ErrCodeTimeout {
		t.Errorf("expected TIMEOUT, got %s", got.Code)
	}
	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("expected AsAppError to return false for plain error")
	}
	if !IsAppError(wrapped) {
		t.Error("expected IsAppError for wrapped AppError")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}
	orig := Busy()
	if Wrap(orig) != orig {
		t.Error("Wrap should return the original AppError unchanged")
	}
	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal || got.Cause != plain {
		t.Errorf("expected INTERNAL_ERROR wrapping plain error, got %v", got)
	}
}

func TestStatusOf(t *testing.T) {
	if got := StatusOf(fmt.Errorf("x: %w", Busy())); got != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", got)
	}
	if got := StatusOf(fmt.Errorf("plain")); got != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", got)
	}
}
