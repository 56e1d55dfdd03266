package domain

import "time"

// ContextSnapshot is a point-in-time view of a user's context, as returned by
// queries and exports. Kinds that were not requested are left nil.
type ContextSnapshot struct {
	UserID      string           `json:"user_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Decisions   []UserDecision   `json:"decisions,omitempty"`
	Goals       []UserGoal       `json:"goals,omitempty"`
	Preferences []UserPreference `json:"preferences,omitempty"`
	Issues      []KnownIssue     `json:"issues,omitempty"`
	Todos       []ContextualTodo `json:"todos,omitempty"`
}

// Count returns the total number of entities in the snapshot
func (s *ContextSnapshot) Count() int {
	return len(s.Decisions) + len(s.Goals) + len(s.Preferences) + len(s.Issues) + len(s.Todos)
}

// ContextKind selects one entity collection of a snapshot
type ContextKind string

const (
	ContextKindDecisions   ContextKind = "decisions"
	ContextKindGoals       ContextKind = "goals"
	ContextKindPreferences ContextKind = "preferences"
	ContextKindIssues      ContextKind = "issues"
	ContextKindTodos       ContextKind = "todos"
	ContextKindAll         ContextKind = "all"
)

var contextKinds = []ContextKind{
	ContextKindDecisions,
	ContextKindGoals,
	ContextKindPreferences,
	ContextKindIssues,
	ContextKindTodos,
	ContextKindAll,
}

func AllContextKinds() []string { return codes(contextKinds) }

func ParseContextKind(code string) (ContextKind, error) {
	return parseCode("context kind", code, contextKinds)
}
