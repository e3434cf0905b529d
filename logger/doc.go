// Package logger provides structured logging for audiotext using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.GetGlobalLogger().WithComponent("job")
//	log.Info("job admitted", logger.Fields("job_id", id))
package logger
