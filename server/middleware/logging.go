package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/audiotext/logger"
)

// slowRequest marks non-transcription requests worth a second look.
const slowRequest = 500 * time.Millisecond

var quietPaths = map[string]bool{
	"/health": true,
	"/info":   true,
	"/status": true,
}

// RequestLogger returns middleware that logs every request with method,
// path, status code and duration. Polling paths are skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"bytes", sw.bytes,
				logger.FieldDuration, duration.Milliseconds(),
			)
			if id := r.Header.Get(RequestIDHeader); id != "" {
				fields[logger.FieldRequestID] = id
			}
			if duration > slowRequest && r.URL.Path != "/transcribe" {
				fields["slow"] = true
			}
			logByStatus(log, fields, sw.status)
		})
	}
}

// logByStatus logs request fields at a level derived from the status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Info("Request completed", fields)
	}
}
