// Package main is the entry point for the module gateway server.
//
// The server keeps one isolated script context per protocol module family
// and exposes module calls over a JSON API.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -assets /srv/wallet
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: stop HTTP, then tear down every module context
package main
