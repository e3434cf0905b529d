// Package server provides the HTTP server: a Gin engine mounted on a
// ServeMux, served with HTTP/2 cleartext support and wrapped in a standard
// middleware stack.
//
// # Middleware
//
// Applied at the handler level by ApplyMiddleware (server/middleware):
//
//   - Recovery: panic recovery with stack logging and Sentry reporting
//   - RequestID: X-Request-Id generation and propagation
//   - CORS: cross-origin headers and preflight handling
//   - BodySizeLimit: upload size cap
//   - RequestLogger: status-levelled request logging
//
// # Endpoints
//
// RegisterDefaultEndpoints adds /health (component aggregation, 503 when a
// component is down) and /info (build information).
package server
