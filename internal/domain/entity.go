package domain

import "slices"

// EntityType tags which kind of record an id refers to
type EntityType string

const (
	EntityTypeUserDecision   EntityType = "user_decision"
	EntityTypeUserGoal       EntityType = "user_goal"
	EntityTypeKnownIssue     EntityType = "known_issue"
	EntityTypeUserPreference EntityType = "user_preference"
	// EntityTypeContextualTodo only appears on audit entries; todos never
	// link to other todos.
	EntityTypeContextualTodo EntityType = "contextual_todo"
)

var entityTypes = []EntityType{
	EntityTypeUserDecision,
	EntityTypeUserGoal,
	EntityTypeKnownIssue,
	EntityTypeUserPreference,
	EntityTypeContextualTodo,
}

// LinkableEntityTypes returns the kinds a contextual todo may point to
func LinkableEntityTypes() []EntityType {
	return slices.Clone(entityTypes[:4])
}

// Code returns the canonical string for the entity type
func (t EntityType) Code() string { return string(t) }

// Valid reports whether t is a known entity type
func (t EntityType) Valid() bool { return slices.Contains(entityTypes, t) }

// Linkable reports whether a todo may reference an entity of this type
func (t EntityType) Linkable() bool { return slices.Contains(entityTypes[:4], t) }

// EntityTypeFromCode never fails; unknown codes map to user_decision
func EntityTypeFromCode(code string) EntityType {
	return fromCode(code, entityTypes, EntityTypeUserDecision)
}

// ParseEntityType decodes code strictly
func ParseEntityType(code string) (EntityType, error) {
	return parseCode("entity type", code, entityTypes)
}

// EntityStatus is the lifecycle tag for decisions
type EntityStatus string

const (
	EntityStatusActive     EntityStatus = "active"
	EntityStatusArchived   EntityStatus = "archived"
	EntityStatusSuperseded EntityStatus = "superseded"
)

var entityStatuses = []EntityStatus{EntityStatusActive, EntityStatusArchived, EntityStatusSuperseded}

// AllEntityStatuses lists every lifecycle status
func AllEntityStatuses() []string { return codes(entityStatuses) }

func (s EntityStatus) Code() string { return string(s) }

func (s EntityStatus) Valid() bool { return slices.Contains(entityStatuses, s) }

// EntityStatusFromCode never fails; unknown codes map to active
func EntityStatusFromCode(code string) EntityStatus {
	return fromCode(code, entityStatuses, EntityStatusActive)
}

// ParseEntityStatus decodes code strictly
func ParseEntityStatus(code string) (EntityStatus, error) {
	return parseCode("entity status", code, entityStatuses)
}
