package main

import (
	"fmt"

	"github.com/kbukum/audiotext/audio"
	"github.com/kbukum/audiotext/config"
	"github.com/kbukum/audiotext/job"
	"github.com/kbukum/audiotext/observability"
	"github.com/kbukum/audiotext/server"
	"github.com/kbukum/audiotext/transcription"
	"github.com/kbukum/audiotext/validation"
)

// AppConfig is the full service configuration loaded from config.yml and
// the environment.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Job           job.Config           `yaml:"job" mapstructure:"job"`
	Audio         audio.Config         `yaml:"audio" mapstructure:"audio"`
	Transcription transcription.Config `yaml:"transcription" mapstructure:"transcription"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Job.ApplyDefaults()
	c.Audio.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section, then the struct tags.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Observability.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
