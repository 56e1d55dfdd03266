package service

import (
	"context"
	"errors"
	"fmt"

	"usercontext/internal/domain"
	"usercontext/internal/repository"
)

// Import strategies
const (
	ImportMerge = "merge" // overwrite entities whose id already exists
	ImportSkip  = "skip"  // leave existing entities untouched
)

// ImportResult represents the result of an import operation
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	// Conflicts counts ids that already exist under another user. They are
	// left untouched whatever the strategy.
	Conflicts int    `json:"conflicts"`
	Strategy  string `json:"strategy"`
}

// Import stores every entity of a snapshot, typically one produced by
// Export. When userID is set the entities are reassigned to that user.
// Each entity goes through the same validation and audit as a direct create
// or update; the first failure aborts the import.
func (s *ContextService) Import(ctx context.Context, snap *domain.ContextSnapshot, strategy, userID string) (*ImportResult, error) {
	if strategy == "" {
		strategy = ImportMerge
	}
	if strategy != ImportMerge && strategy != ImportSkip {
		return nil, invalid(fmt.Errorf("strategy %q must be %q or %q", strategy, ImportMerge, ImportSkip))
	}

	res := &ImportResult{Strategy: strategy}

	if err := importEach(ctx, snap.Decisions, res, strategy, entityOps[domain.UserDecision]{
		id:     func(d *domain.UserDecision) string { return d.ID },
		owner:  func(d *domain.UserDecision) *string { return &d.UserID },
		get:    s.GetDecision,
		create: s.CreateDecision,
		update: s.UpdateDecision,
	}, userID); err != nil {
		return nil, err
	}
	if err := importEach(ctx, snap.Goals, res, strategy, entityOps[domain.UserGoal]{
		id:     func(g *domain.UserGoal) string { return g.ID },
		owner:  func(g *domain.UserGoal) *string { return &g.UserID },
		get:    s.GetGoal,
		create: s.CreateGoal,
		update: s.UpdateGoal,
	}, userID); err != nil {
		return nil, err
	}
	if err := importEach(ctx, snap.Preferences, res, strategy, entityOps[domain.UserPreference]{
		id:     func(p *domain.UserPreference) string { return p.ID },
		owner:  func(p *domain.UserPreference) *string { return &p.UserID },
		get:    s.GetPreference,
		create: s.CreatePreference,
		update: s.UpdatePreference,
	}, userID); err != nil {
		return nil, err
	}
	if err := importEach(ctx, snap.Issues, res, strategy, entityOps[domain.KnownIssue]{
		id:     func(i *domain.KnownIssue) string { return i.ID },
		owner:  func(i *domain.KnownIssue) *string { return &i.UserID },
		get:    s.GetIssue,
		create: s.CreateIssue,
		update: s.UpdateIssue,
	}, userID); err != nil {
		return nil, err
	}
	if err := importEach(ctx, snap.Todos, res, strategy, entityOps[domain.ContextualTodo]{
		id:     func(t *domain.ContextualTodo) string { return t.ID },
		owner:  func(t *domain.ContextualTodo) *string { return &t.UserID },
		get:    s.GetTodo,
		create: s.CreateTodo,
		update: s.UpdateTodo,
	}, userID); err != nil {
		return nil, err
	}

	s.log.Info("import finished",
		"strategy", strategy,
		"created", res.Created,
		"updated", res.Updated,
		"skipped", res.Skipped,
		"conflicts", res.Conflicts)
	return res, nil
}

// entityOps adapts the per-kind service methods for importEach
type entityOps[T any] struct {
	id     func(*T) string
	owner  func(*T) *string
	get    func(context.Context, string) (*T, error)
	create func(context.Context, *T) (*T, error)
	update func(context.Context, *T) (*T, error)
}

func importEach[T any](ctx context.Context, items []T, res *ImportResult, strategy string, ops entityOps[T], userID string) error {
	for i := range items {
		item := &items[i]
		if userID != "" {
			*ops.owner(item) = userID
		}
		id := ops.id(item)
		if id == "" {
			return invalid(&domain.InvalidFieldError{Field: "id", Reason: "must not be empty"})
		}

		existing, err := ops.get(ctx, id)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			if _, err := ops.create(ctx, item); err != nil {
				return fmt.Errorf("import %s: %w", id, err)
			}
			res.Created++
		case err != nil:
			return err
		case *ops.owner(existing) != *ops.owner(item):
			res.Conflicts++
		case strategy == ImportSkip:
			res.Skipped++
		default:
			if _, err := ops.update(ctx, item); err != nil {
				return fmt.Errorf("import %s: %w", id, err)
			}
			res.Updated++
		}
	}
	return nil
}
