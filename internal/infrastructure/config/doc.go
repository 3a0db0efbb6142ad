// Package config provides 12-factor configuration management for the module gateway.
//
// Configuration is loaded from environment variables with sensible defaults and
// validated before use. CLI flags can override environment variables.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Assets: directory holding the glue script and module bundles
//   - Sandbox: per-evaluation timeout and call stack limit
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - CORS: allowed origins
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s\n", cfg.Address())
//
// Environment Variables:
//   - PORT, HOST, ASSETS_DIR
//   - SANDBOX_EVAL_TIMEOUT, SANDBOX_MAX_CALL_STACK
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CORS_ORIGINS
package config
