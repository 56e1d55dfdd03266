package domain

import (
	"encoding/json"
	"strings"
)

// ScopeKind names the variant of a ContextScope
type ScopeKind string

const (
	ScopeKindGlobal   ScopeKind = "global"
	ScopeKindProject  ScopeKind = "project"
	ScopeKindWorkflow ScopeKind = "workflow"
)

const (
	scopeGlobal         = "global"
	scopeProjectPrefix  = "project_id:"
	scopeWorkflowPrefix = "workflow:"
)

// ContextScope is the applicability domain of a decision or preference:
// global, a single project, or a named workflow.
//
// The zero value is the global scope.
type ContextScope struct {
	kind  ScopeKind
	value string
}

// GlobalScope returns the scope that applies everywhere
func GlobalScope() ContextScope {
	return ContextScope{}
}

// ProjectScope returns a scope tied to one project. The id may be empty.
func ProjectScope(projectID string) ContextScope {
	return ContextScope{kind: ScopeKindProject, value: projectID}
}

// WorkflowScope returns a scope tied to a named workflow
func WorkflowScope(name string) ContextScope {
	return ContextScope{kind: ScopeKindWorkflow, value: name}
}

// ScopeFromParts rebuilds a scope from its kind and value columns.
// Unknown kinds yield the global scope, matching DecodeScope.
func ScopeFromParts(kind, value string) ContextScope {
	switch ScopeKind(kind) {
	case ScopeKindProject:
		return ProjectScope(value)
	case ScopeKindWorkflow:
		return WorkflowScope(value)
	default:
		return GlobalScope()
	}
}

// Kind returns the scope variant
func (s ContextScope) Kind() ScopeKind {
	if s.kind == "" {
		return ScopeKindGlobal
	}
	return s.kind
}

// Value returns the project id or workflow name; empty for global
func (s ContextScope) Value() string {
	return s.value
}

// IsGlobal reports whether the scope applies everywhere
func (s ContextScope) IsGlobal() bool {
	return s.Kind() == ScopeKindGlobal
}

// String returns the single-string encoding of the scope
func (s ContextScope) String() string {
	return EncodeScope(s)
}

// EncodeScope flattens a scope into "global", "project_id:<id>" or
// "workflow:<name>".
func EncodeScope(s ContextScope) string {
	switch s.Kind() {
	case ScopeKindProject:
		return scopeProjectPrefix + s.value
	case ScopeKindWorkflow:
		return scopeWorkflowPrefix + s.value
	default:
		return scopeGlobal
	}
}

// DecodeScope is the inverse of EncodeScope. Any input that is not one of
// the three encoded shapes, including malformed prefixes and the empty
// string, silently decodes to the global scope. Use ParseScope to reject
// such input instead.
func DecodeScope(encoded string) ContextScope {
	s, err := ParseScope(encoded)
	if err != nil {
		return GlobalScope()
	}
	return s
}

// ParseScope decodes an encoded scope and fails on unrecognized shapes
func ParseScope(encoded string) (ContextScope, error) {
	switch {
	case encoded == scopeGlobal:
		return GlobalScope(), nil
	case strings.HasPrefix(encoded, scopeProjectPrefix):
		return ProjectScope(strings.TrimPrefix(encoded, scopeProjectPrefix)), nil
	case strings.HasPrefix(encoded, scopeWorkflowPrefix):
		return WorkflowScope(strings.TrimPrefix(encoded, scopeWorkflowPrefix)), nil
	default:
		return GlobalScope(), &UnrecognizedValueError{Kind: "scope", Raw: encoded}
	}
}

// MarshalJSON encodes the scope as its string form
func (s ContextScope) MarshalJSON() ([]byte, error) {
	return json.Marshal(EncodeScope(s))
}

// UnmarshalJSON accepts the string form, with DecodeScope's fallback
func (s *ContextScope) UnmarshalJSON(data []byte) error {
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return err
	}
	*s = DecodeScope(encoded)
	return nil
}
