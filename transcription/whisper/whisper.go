// Package whisper recognizes speech through a faster-whisper HTTP sidecar.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/kbukum/audiotext/provider"
	"github.com/kbukum/audiotext/resilience"
	"github.com/kbukum/audiotext/security"
	"github.com/kbukum/audiotext/transcription"
)

const (
	// ProviderName is the registered name for the sidecar backend.
	ProviderName = "whisper"

	defaultURL     = "http://localhost:8387"
	defaultModel   = "base"
	defaultTimeout = 120 * time.Second
)

// Config holds configuration for the sidecar backend.
type Config struct {
	URL         string        `yaml:"url" mapstructure:"url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	Device      string        `yaml:"device" mapstructure:"device"`
	ComputeType string        `yaml:"compute_type" mapstructure:"compute_type"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Retry covers connection failures and 502/503/504 answers.
	Retry   resilience.RetryConfig          `yaml:"retry" mapstructure:"retry"`
	Breaker resilience.CircuitBreakerConfig `yaml:"breaker" mapstructure:"breaker"`

	// TLS applies to https URLs: a private CA, a client certificate for
	// mutual TLS, or a server name override.
	TLS security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// Recognizer implements transcription.Recognizer against the sidecar. The
// sidecar answers with all segments at once; stopping a job cancels the
// in-flight request.
type Recognizer struct {
	cfg     Config
	client  *http.Client
	breaker *resilience.CircuitBreaker
}

var _ transcription.Recognizer = (*Recognizer)(nil)

// New creates a sidecar Recognizer.
func New(cfg Config) *Recognizer {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.Retry.RetryIf = resilience.IsTransient
	cfg.Breaker.Name = ProviderName
	cfg.Breaker.IsFailure = resilience.IsTransient
	return &Recognizer{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: resilience.NewCircuitBreaker(cfg.Breaker),
	}
}

// Factory builds Recognizers from a config map.
func Factory() provider.Factory[transcription.Recognizer] {
	return func(m map[string]any) (transcription.Recognizer, error) {
		var cfg Config
		if err := provider.DecodeConfig(m, &cfg); err != nil {
			return nil, err
		}
		r := New(cfg)
		if err := r.useTLS(cfg.TLS); err != nil {
			return nil, err
		}
		return r, nil
	}
}

// useTLS swaps the client transport for one carrying the TLS settings.
func (r *Recognizer) useTLS(cfg security.TLSConfig) error {
	tlsCfg, err := cfg.ClientConfig()
	if err != nil {
		return fmt.Errorf("whisper: %w", err)
	}
	if tlsCfg == nil {
		return nil
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsCfg
	r.client.Transport = transport
	return nil
}

// Name implements provider.Provider.
func (r *Recognizer) Name() string { return ProviderName }

// IsAvailable checks that the sidecar answers its health endpoint. It is
// false without a probe while the circuit is open.
func (r *Recognizer) IsAvailable(ctx context.Context) bool {
	if r.breaker.State() == resilience.StateOpen {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Execute uploads the waveform and returns the sidecar's segments.
func (r *Recognizer) Execute(ctx context.Context, req transcription.Request) (provider.Iterator[transcription.Segment], error) {
	body, contentType, err := r.form(req)
	if err != nil {
		return nil, err
	}

	segments, err := resilience.Retry(ctx, r.cfg.Retry, func(ctx context.Context) ([]transcription.Segment, error) {
		var out []transcription.Segment
		err := r.breaker.Execute(func() error {
			var err error
			out, err = r.upload(ctx, body, contentType)
			return err
		})
		return out, err
	})
	if err != nil {
		return nil, err
	}
	return provider.FromSlice(segments), nil
}

func (r *Recognizer) upload(ctx context.Context, body []byte, contentType string) ([]transcription.Segment, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.URL+"/transcribe", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("whisper: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, resilience.Transient(fmt.Errorf("whisper: request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		err := fmt.Errorf("whisper: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
		switch resp.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return nil, resilience.Transient(err)
		}
		return nil, err
	}

	var result response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("whisper: decode response: %w", err)
	}
	return result.Segments, nil
}

// form buffers the multipart body so retries can resend it.
func (r *Recognizer) form(req transcription.Request) ([]byte, string, error) {
	f, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, "", fmt.Errorf("whisper: open audio: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("audio", filepath.Base(req.AudioPath))
	if err != nil {
		return nil, "", fmt.Errorf("whisper: create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("whisper: write audio: %w", err)
	}

	fields := map[string]string{
		"model":        r.cfg.Model,
		"device":       r.cfg.Device,
		"compute_type": r.cfg.ComputeType,
	}
	if req.Language != "" && req.Language != "auto" {
		fields["language"] = req.Language
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("whisper: write field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("whisper: close form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

type response struct {
	Text     string                  `json:"text"`
	Segments []transcription.Segment `json:"segments"`
	Language string                  `json:"language"`
}
