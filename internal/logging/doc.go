// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Log Levels:
//   - Debug: Verbose debugging information
//   - Info: General informational messages
//   - Warn: Warning messages
//   - Error: Error messages
//   - Fatal: Fatal errors (exits process)
//
// Components derive child loggers with Named, and module-scoped loggers with
// ForModule. Module and Action build the shared structured fields.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Named("gateway").Info("Module context ready", logging.Module("ethereum"))
//	logger.Error("Failed to connect", zap.Error(err))
package logging
