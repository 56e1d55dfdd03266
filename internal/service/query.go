package service

import (
	"context"
	"fmt"
	"slices"

	"usercontext/internal/domain"
)

// Filter keys understood by Query
const (
	FilterCategory   = "category"
	FilterStatus     = "status"
	FilterSeverity   = "severity"
	FilterScope      = "scope"
	FilterProject    = "project_id"
	FilterType       = "type"
	FilterComponent  = "component"
	FilterEntityType = "entity_type"
	FilterEntityID   = "entity_id"
)

// Filter narrows a Query. Every key must apply to the queried kind; the
// first key with a dedicated finder picks the query and the rest are matched
// in memory.
type Filter map[string]string

func (f Filter) check(kind domain.ContextKind, allowed ...string) error {
	for key := range f {
		if !slices.Contains(allowed, key) {
			return invalid(fmt.Errorf("filter %q does not apply to %s", key, kind))
		}
	}
	return nil
}

// selection accumulates the finder and in-memory predicates for one kind
type selection[T any] struct {
	find     func() ([]T, error)
	narrowed bool
	keep     []func(*T) bool
}

func newSelection[T any](all func() ([]T, error)) *selection[T] {
	return &selection[T]{find: all}
}

// narrow switches to a dedicated finder unless an earlier key already did
func (q *selection[T]) narrow(find func() ([]T, error), keep func(*T) bool) {
	if !q.narrowed {
		q.find = find
		q.narrowed = true
	}
	q.keep = append(q.keep, keep)
}

func (q *selection[T]) where(keep func(*T) bool) {
	q.keep = append(q.keep, keep)
}

func (q *selection[T]) run(limit int) ([]T, error) {
	list, err := q.find()
	if err != nil {
		return nil, err
	}
	out := list[:0]
next:
	for i := range list {
		for _, keep := range q.keep {
			if !keep(&list[i]) {
				continue next
			}
		}
		out = append(out, list[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Query returns one kind of context for a user, or every kind when kind is
// ContextKindAll. With ContextKindAll only the project_id filter is accepted.
// limit caps each collection; zero means no cap.
func (s *ContextService) Query(ctx context.Context, userID string, kind domain.ContextKind, filter Filter, limit int) (*domain.ContextSnapshot, error) {
	if userID == "" {
		return nil, invalid(domain.ErrMissingUser)
	}
	if limit < 0 {
		return nil, invalid(&domain.InvalidFieldError{Field: "limit", Reason: "must not be negative"})
	}
	snap := &domain.ContextSnapshot{UserID: userID, GeneratedAt: domain.Now()}

	kinds := []domain.ContextKind{kind}
	if kind == domain.ContextKindAll {
		if err := filter.check(kind, FilterProject); err != nil {
			return nil, err
		}
		kinds = []domain.ContextKind{
			domain.ContextKindDecisions,
			domain.ContextKindGoals,
			domain.ContextKindPreferences,
			domain.ContextKindIssues,
			domain.ContextKindTodos,
		}
	}

	var err error
	for _, k := range kinds {
		switch k {
		case domain.ContextKindDecisions:
			snap.Decisions, err = s.queryDecisions(ctx, userID, filter, limit)
		case domain.ContextKindGoals:
			snap.Goals, err = s.queryGoals(ctx, userID, filter, limit)
		case domain.ContextKindPreferences:
			snap.Preferences, err = s.queryPreferences(ctx, userID, filter, limit)
		case domain.ContextKindIssues:
			snap.Issues, err = s.queryIssues(ctx, userID, filter, limit)
		case domain.ContextKindTodos:
			snap.Todos, err = s.queryTodos(ctx, userID, filter, limit)
		default:
			err = invalid(&domain.UnrecognizedValueError{Kind: "context kind", Raw: string(k)})
		}
		if err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// Export gathers the requested kinds without filters. An empty include list
// exports everything.
func (s *ContextService) Export(ctx context.Context, userID string, include []domain.ContextKind) (*domain.ContextSnapshot, error) {
	if len(include) == 0 || slices.Contains(include, domain.ContextKindAll) {
		return s.Query(ctx, userID, domain.ContextKindAll, nil, 0)
	}
	snap := &domain.ContextSnapshot{UserID: userID, GeneratedAt: domain.Now()}
	for _, kind := range include {
		part, err := s.Query(ctx, userID, kind, nil, 0)
		if err != nil {
			return nil, err
		}
		switch kind {
		case domain.ContextKindDecisions:
			snap.Decisions = part.Decisions
		case domain.ContextKindGoals:
			snap.Goals = part.Goals
		case domain.ContextKindPreferences:
			snap.Preferences = part.Preferences
		case domain.ContextKindIssues:
			snap.Issues = part.Issues
		case domain.ContextKindTodos:
			snap.Todos = part.Todos
		}
	}
	return snap, nil
}

func (s *ContextService) queryDecisions(ctx context.Context, userID string, f Filter, limit int) ([]domain.UserDecision, error) {
	kind := domain.ContextKindDecisions
	if err := f.check(kind, FilterCategory, FilterStatus, FilterScope, FilterProject); err != nil {
		return nil, err
	}
	repo := s.store.Decisions()
	q := newSelection(func() ([]domain.UserDecision, error) { return repo.FindByUser(ctx, userID) })

	if v, ok := f[FilterCategory]; ok {
		category, err := domain.ParseDecisionCategory(v)
		if err != nil {
			return nil, invalid(err)
		}
		q.narrow(func() ([]domain.UserDecision, error) { return repo.FindByCategory(ctx, userID, category) },
			func(d *domain.UserDecision) bool { return d.Category == category })
	}
	if v, ok := f[FilterStatus]; ok {
		status, err := domain.ParseEntityStatus(v)
		if err != nil {
			return nil, invalid(err)
		}
		q.narrow(func() ([]domain.UserDecision, error) { return repo.FindByStatus(ctx, userID, status) },
			func(d *domain.UserDecision) bool { return d.Status == status })
	}
	if v, ok := f[FilterScope]; ok {
		scope, err := domain.ParseScope(v)
		if err != nil {
			return nil, invalid(err)
		}
		q.narrow(func() ([]domain.UserDecision, error) { return repo.FindByScope(ctx, userID, scope) },
			func(d *domain.UserDecision) bool { return d.Scope == scope })
	}
	if v, ok := f[FilterProject]; ok {
		q.where(func(d *domain.UserDecision) bool { return d.RelatedProjectID != nil && *d.RelatedProjectID == v })
	}
	return q.run(limit)
}

func (s *ContextService) queryGoals(ctx context.Context, userID string, f Filter, limit int) ([]domain.UserGoal, error) {
	kind := domain.ContextKindGoals
	if err := f.check(kind, FilterStatus, FilterProject); err != nil {
		return nil, err
	}
	repo := s.store.Goals()
	q := newSelection(func() ([]domain.UserGoal, error) { return repo.FindByUser(ctx, userID) })

	if v, ok := f[FilterStatus]; ok {
		status, err := domain.ParseGoalStatus(v)
		if err != nil {
			return nil, invalid(err)
		}
		q.narrow(func() ([]domain.UserGoal, error) { return repo.FindByStatus(ctx, userID, status) },
			func(g *domain.UserGoal) bool { return g.Status == status })
	}
	if v, ok := f[FilterProject]; ok {
		q.narrow(func() ([]domain.UserGoal, error) { return repo.FindByProject(ctx, userID, v) },
			func(g *domain.UserGoal) bool { return g.ProjectID != nil && *g.ProjectID == v })
	}
	return q.run(limit)
}

func (s *ContextService) queryPreferences(ctx context.Context, userID string, f Filter, limit int) ([]domain.UserPreference, error) {
	kind := domain.ContextKindPreferences
	if err := f.check(kind, FilterType, FilterScope, FilterProject); err != nil {
		return nil, err
	}
	repo := s.store.Preferences()
	q := newSelection(func() ([]domain.UserPreference, error) { return repo.FindByUser(ctx, userID) })

	if v, ok := f[FilterType]; ok {
		prefType, err := domain.ParsePreferenceType(v)
		if err != nil {
			return nil, invalid(err)
		}
		q.narrow(func() ([]domain.UserPreference, error) { return repo.FindByType(ctx, userID, prefType) },
			func(p *domain.UserPreference) bool { return p.PreferenceType == prefType })
	}
	if v, ok := f[FilterScope]; ok {
		scope, err := domain.ParseScope(v)
		if err != nil {
			return nil, invalid(err)
		}
		q.narrow(func() ([]domain.UserPreference, error) { return repo.FindByScope(ctx, userID, scope) },
			func(p *domain.UserPreference) bool { return p.Scope == scope })
	}
	if v, ok := f[FilterProject]; ok {
		// preferences carry a project only through their scope
		scope := domain.ProjectScope(v)
		q.narrow(func() ([]domain.UserPreference, error) { return repo.FindByScope(ctx, userID, scope) },
			func(p *domain.UserPreference) bool { return p.Scope == scope })
	}
	return q.run(limit)
}

func (s *ContextService) queryIssues(ctx context.Context, userID string, f Filter, limit int) ([]domain.KnownIssue, error) {
	kind := domain.ContextKindIssues
	if err := f.check(kind, FilterCategory, FilterSeverity, FilterStatus, FilterComponent, FilterProject); err != nil {
		return nil, err
	}
	repo := s.store.Issues()
	q := newSelection(func() ([]domain.KnownIssue, error) { return repo.FindByUser(ctx, userID) })

	if v, ok := f[FilterStatus]; ok {
		status, err := domain.ParseResolutionStatus(v)
		if err != nil {
			return nil, invalid(err)
		}
		q.narrow(func() ([]domain.KnownIssue, error) { return repo.FindByStatus(ctx, userID, status) },
			func(i *domain.KnownIssue) bool { return i.ResolutionStatus == status })
	}
	if v, ok := f[FilterSeverity]; ok {
		severity, err := domain.ParseIssueSeverity(v)
		if err != nil {
			return nil, invalid(err)
		}
		q.narrow(func() ([]domain.KnownIssue, error) { return repo.FindBySeverity(ctx, userID, severity) },
			func(i *domain.KnownIssue) bool { return i.Severity == severity })
	}
	if v, ok := f[FilterCategory]; ok {
		category, err := domain.ParseIssueCategory(v)
		if err != nil {
			return nil, invalid(err)
		}
		q.narrow(func() ([]domain.KnownIssue, error) { return repo.FindByCategory(ctx, userID, category) },
			func(i *domain.KnownIssue) bool { return i.Category == category })
	}
	if v, ok := f[FilterComponent]; ok {
		q.narrow(func() ([]domain.KnownIssue, error) { return repo.FindByComponent(ctx, userID, v) },
			func(i *domain.KnownIssue) bool { return i.AffectsComponent(v) })
	}
	if v, ok := f[FilterProject]; ok {
		q.where(func(i *domain.KnownIssue) bool { return slices.Contains(i.ProjectContexts, v) })
	}
	return q.run(limit)
}

func (s *ContextService) queryTodos(ctx context.Context, userID string, f Filter, limit int) ([]domain.ContextualTodo, error) {
	kind := domain.ContextKindTodos
	if err := f.check(kind, FilterStatus, FilterProject, FilterEntityType, FilterEntityID); err != nil {
		return nil, err
	}
	repo := s.store.Todos()
	q := newSelection(func() ([]domain.ContextualTodo, error) { return repo.FindByUser(ctx, userID) })

	if v, ok := f[FilterStatus]; ok {
		status, err := domain.ParseTodoStatus(v)
		if err != nil {
			return nil, invalid(err)
		}
		q.narrow(func() ([]domain.ContextualTodo, error) { return repo.FindByStatus(ctx, userID, status) },
			func(t *domain.ContextualTodo) bool { return t.Status == status })
	}
	if v, ok := f[FilterProject]; ok {
		q.narrow(func() ([]domain.ContextualTodo, error) { return repo.FindByProject(ctx, userID, v) },
			func(t *domain.ContextualTodo) bool { return t.ProjectID != nil && *t.ProjectID == v })
	}
	if v, ok := f[FilterEntityType]; ok {
		entityType, err := domain.ParseEntityType(v)
		if err != nil {
			return nil, invalid(err)
		}
		if id, ok := f[FilterEntityID]; ok {
			q.narrow(func() ([]domain.ContextualTodo, error) { return repo.FindByEntity(ctx, entityType, id) },
				func(t *domain.ContextualTodo) bool { return t.UserID == userID })
		}
		q.where(func(t *domain.ContextualTodo) bool {
			return t.RelatedEntityType != nil && *t.RelatedEntityType == entityType
		})
	}
	if v, ok := f[FilterEntityID]; ok {
		q.where(func(t *domain.ContextualTodo) bool { return t.RelatedEntityID != nil && *t.RelatedEntityID == v })
	}
	return q.run(limit)
}
