// Package api implements the clock's local HTTP status API and display
// mirror.
//
// This package provides:
//   - GET /api/v1/health: liveness plus per-component health checks
//   - GET /api/v1/status: the controller snapshot as JSON
//   - GET /api/v1/audit: history of commands, surveys and link changes
//   - GET /api/v1/display/ws: WebSocket stream of rendered display frames
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// The API is read-only. Configuration changes go through the MQTT command
// topic, never through HTTP.
package api
