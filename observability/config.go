package observability

import (
	"fmt"
	"time"
)

// Config is the observability section of the service config.
type Config struct {
	TracingEnabled  bool          `yaml:"tracing_enabled" mapstructure:"tracing_enabled"`
	MetricsEnabled  bool          `yaml:"metrics_enabled" mapstructure:"metrics_enabled"`
	Endpoint        string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure        bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate      float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	MetricsInterval time.Duration `yaml:"metrics_interval" mapstructure:"metrics_interval"`
	SentryDSN       string        `yaml:"sentry_dsn" mapstructure:"sentry_dsn"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricsInterval == 0 {
		c.MetricsInterval = 15 * time.Second
	}
}

// Validate checks values ApplyDefaults cannot repair.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("observability.sample_rate must be within [0, 1] (got: %v)", c.SampleRate)
	}
	if (c.TracingEnabled || c.MetricsEnabled) && c.Endpoint == "" {
		return fmt.Errorf("observability.endpoint is required when tracing or metrics are enabled")
	}
	return nil
}

// Tracer derives a TracerConfig for the service.
func (c *Config) Tracer(service, version, environment string) TracerConfig {
	return TracerConfig{
		ServiceName:    service,
		ServiceVersion: version,
		Environment:    environment,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		SampleRate:     c.SampleRate,
	}
}

// Meter derives a MeterConfig for the service.
func (c *Config) Meter(service, version, environment string) MeterConfig {
	return MeterConfig{
		ServiceName:    service,
		ServiceVersion: version,
		Environment:    environment,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		Interval:       c.MetricsInterval,
	}
}
