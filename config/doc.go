// Package config loads service configuration from a YAML file, an optional
// .env file, and the process environment, in that order of precedence
// (later wins).
//
// # Usage
//
//	var cfg MyConfig
//	err := config.LoadConfig("audiotext", &cfg)
//
// Environment variables map onto nested keys by splitting on underscores,
// so JOB_TEMP_DIR can populate job.temp_dir. A service-prefixed form such as
// AUDIOTEXT_JOB_TEMP_DIR is accepted as well.
package config
