// Package http exposes the module gateway as a JSON API.
//
// Routes:
//   - POST /modules/load  {protocolType?, module?}            → {"loadModules": value}
//   - POST /modules/call  {target, method, args?, protocolIdentifier?,
//     moduleIdentifier?, networkId?}                          → {"result": value}
//   - GET  /health
//
// Failures answer {"error": message}. Errors reported by a module keep their
// message verbatim and use status 422.
package http
