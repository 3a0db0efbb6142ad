// Command modulectl performs a single module action without running the server.
//
// Usage:
//
//	modulectl load [--protocol-type offline|online|full] [--module <name>]
//	modulectl call <target> <method> [args-json] [--protocol <id>] [--module <id>] [--network <id>]
//
// Results are printed as JSON, or YAML with -o yaml.
package main
