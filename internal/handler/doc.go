// Package handler implements the read-only HTTP API over a user's context.
//
// The API is for inspection: dashboards, scripts and debugging. Writes go
// through the MCP tools or the CLI so that every mutation is audited with
// the configured actor.
//
// # Routes
//
//	GET /healthz
//	GET /api/users/{user}/context      query; kind, limit and filter keys as query parameters
//	GET /api/users/{user}/activity     recent audit entries; limit
//	GET /api/users/{user}/export       format (json, yaml, csv, markdown) and include
//	GET /api/{kind}/{id}               one decision, goal, preference, issue or todo
//	GET /api/history/{id}              audit trail of one entity, oldest first
//	GET /events                        Server-Sent Events; optional user parameter
//
// # Response Format
//
// Success responses are JSON (exports use the codec's own content type).
// Errors are JSON {error, details} with 400 for bad input, 404 for missing
// entities and 503 when the store is unavailable.
package handler
