// Package middleware provides Gin middleware for the module API: CORS,
// per-client rate limiting and request ids.
package middleware
