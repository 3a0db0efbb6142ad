// Package server wires the module gateway behind an HTTP API.
//
// Server Lifecycle:
//  1. Load and validate configuration from the environment
//  2. Build the logger, metrics registry and asset store
//  3. Create the gateway guard and HTTP routes
//  4. Initialize the gateway and start serving
//  5. On shutdown, stop HTTP first, then tear down every module context
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg, logger)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
