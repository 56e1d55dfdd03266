// Package service implements the operations on a user's context.
//
// ContextService sits between the surfaces (MCP tools, CLI, HTTP API) and the
// repositories. It validates input, delegates to the store and records what
// changed.
//
// # Audit
//
// Creates, updates, deletes and status changes append an audit entry naming
// the configured actor. Counter bumps (decision applied, preference observed)
// are not audited. The audit append runs after the mutation has committed;
// a failed append is logged and does not undo the change.
//
// # Errors
//
// Invalid caller input wraps ErrInvalid. A missing entity wraps
// repository.ErrNotFound with the kind and id ("decision <id>: not found").
// Storage failures pass through with their repository sentinel.
//
// # Event System
//
// Every audited mutation is also published on the EventBus. The MCP server
// forwards these as notifications and the HTTP API streams them over SSE.
//
// # Query and Export
//
// Query narrows one kind, or all kinds, with a Filter and a per-kind limit.
// Export gathers whole kinds for a codec, and Import writes such a snapshot
// back with a merge or skip strategy.
package service
