package repository

import (
	"context"

	"usercontext/internal/domain"
)

// DecisionRepository defines data access for user decisions
type DecisionRepository interface {
	Create(ctx context.Context, d *domain.UserDecision) (*domain.UserDecision, error)
	FindByID(ctx context.Context, id string) (*domain.UserDecision, error)

	// Finders are scoped to one user and ordered newest first
	FindByUser(ctx context.Context, userID string) ([]domain.UserDecision, error)
	FindByScope(ctx context.Context, userID string, scope domain.ContextScope) ([]domain.UserDecision, error)
	FindByCategory(ctx context.Context, userID string, category domain.DecisionCategory) ([]domain.UserDecision, error)
	FindByStatus(ctx context.Context, userID string, status domain.EntityStatus) ([]domain.UserDecision, error)

	Update(ctx context.Context, d *domain.UserDecision) (*domain.UserDecision, error)
	Delete(ctx context.Context, id string) (bool, error)

	// Narrow mutators
	IncrementApplied(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) error
	Supersede(ctx context.Context, id string) error
}

// GoalRepository defines data access for user goals
type GoalRepository interface {
	Create(ctx context.Context, g *domain.UserGoal) (*domain.UserGoal, error)
	FindByID(ctx context.Context, id string) (*domain.UserGoal, error)

	// Finders are ordered by priority, then newest first
	FindByUser(ctx context.Context, userID string) ([]domain.UserGoal, error)
	FindByStatus(ctx context.Context, userID string, status domain.GoalStatus) ([]domain.UserGoal, error)
	FindByProject(ctx context.Context, userID, projectID string) ([]domain.UserGoal, error)

	Update(ctx context.Context, g *domain.UserGoal) (*domain.UserGoal, error)
	Delete(ctx context.Context, id string) (bool, error)

	// UpdateStatus also stamps completion_date when status is completed
	UpdateStatus(ctx context.Context, id string, status domain.GoalStatus) error
}

// PreferenceRepository defines data access for learned preferences
type PreferenceRepository interface {
	Create(ctx context.Context, p *domain.UserPreference) (*domain.UserPreference, error)
	FindByID(ctx context.Context, id string) (*domain.UserPreference, error)

	FindByUser(ctx context.Context, userID string) ([]domain.UserPreference, error)
	FindByScope(ctx context.Context, userID string, scope domain.ContextScope) ([]domain.UserPreference, error)
	FindByType(ctx context.Context, userID string, prefType domain.PreferenceType) ([]domain.UserPreference, error)
	// FindAutomationApplicable orders by observation frequency, most seen first
	FindAutomationApplicable(ctx context.Context, userID string) ([]domain.UserPreference, error)

	Update(ctx context.Context, p *domain.UserPreference) (*domain.UserPreference, error)
	Delete(ctx context.Context, id string) (bool, error)

	IncrementFrequency(ctx context.Context, id string) error
}

// IssueRepository defines data access for known issues
type IssueRepository interface {
	Create(ctx context.Context, i *domain.KnownIssue) (*domain.KnownIssue, error)
	FindByID(ctx context.Context, id string) (*domain.KnownIssue, error)

	// Finders are ordered by learned date, newest first
	FindByUser(ctx context.Context, userID string) ([]domain.KnownIssue, error)
	// FindByStatus orders by severity, most severe first
	FindByStatus(ctx context.Context, userID string, status domain.ResolutionStatus) ([]domain.KnownIssue, error)
	FindBySeverity(ctx context.Context, userID string, severity domain.IssueSeverity) ([]domain.KnownIssue, error)
	FindByCategory(ctx context.Context, userID string, category domain.IssueCategory) ([]domain.KnownIssue, error)
	// FindByComponent filters the user's issues in memory, since affected
	// components are stored as a serialized list.
	FindByComponent(ctx context.Context, userID, component string) ([]domain.KnownIssue, error)

	Update(ctx context.Context, i *domain.KnownIssue) (*domain.KnownIssue, error)
	Delete(ctx context.Context, id string) (bool, error)

	MarkResolved(ctx context.Context, id string, status domain.ResolutionStatus) error
}

// TodoRepository defines data access for contextual todos
type TodoRepository interface {
	Create(ctx context.Context, t *domain.ContextualTodo) (*domain.ContextualTodo, error)
	FindByID(ctx context.Context, id string) (*domain.ContextualTodo, error)

	// Finders are ordered by priority, then earliest due date
	FindByUser(ctx context.Context, userID string) ([]domain.ContextualTodo, error)
	FindByStatus(ctx context.Context, userID string, status domain.TodoStatus) ([]domain.ContextualTodo, error)
	FindByProject(ctx context.Context, userID, projectID string) ([]domain.ContextualTodo, error)
	// FindByEntity returns todos linked to one entity, newest first. It is
	// not scoped to a user.
	FindByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]domain.ContextualTodo, error)

	Update(ctx context.Context, t *domain.ContextualTodo) (*domain.ContextualTodo, error)
	Delete(ctx context.Context, id string) (bool, error)

	// UpdateStatus also stamps completion_date when status is completed
	UpdateStatus(ctx context.Context, id string, status domain.TodoStatus) error
}

// AuditRepository is append-only
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	FindByEntity(ctx context.Context, entityID string) ([]domain.AuditEntry, error)
	FindByUser(ctx context.Context, userID string, limit int) ([]domain.AuditEntry, error)
}

// Store bundles the repositories that share one database
type Store interface {
	Decisions() DecisionRepository
	Goals() GoalRepository
	Preferences() PreferenceRepository
	Issues() IssueRepository
	Todos() TodoRepository
	Audit() AuditRepository

	// Close releases resources
	Close() error
}
