package service

import (
	"context"

	"usercontext/internal/domain"
)

const todoKind = domain.EntityTypeContextualTodo

func (s *ContextService) CreateTodo(ctx context.Context, t *domain.ContextualTodo) (*domain.ContextualTodo, error) {
	if err := validate(t); err != nil {
		return nil, err
	}
	created, err := s.store.Todos().Create(ctx, t)
	if err != nil {
		return nil, err
	}
	s.recordCreate(ctx, created.UserID, todoKind, created.ID, created)
	return created, nil
}

func (s *ContextService) GetTodo(ctx context.Context, id string) (*domain.ContextualTodo, error) {
	t, err := s.store.Todos().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, notFound("todo", id)
	}
	return t, nil
}

func (s *ContextService) ListTodos(ctx context.Context, userID string) ([]domain.ContextualTodo, error) {
	return s.store.Todos().FindByUser(ctx, userID)
}

func (s *ContextService) TodosByStatus(ctx context.Context, userID string, status domain.TodoStatus) ([]domain.ContextualTodo, error) {
	return s.store.Todos().FindByStatus(ctx, userID, status)
}

func (s *ContextService) TodosByProject(ctx context.Context, userID, projectID string) ([]domain.ContextualTodo, error) {
	return s.store.Todos().FindByProject(ctx, userID, projectID)
}

// TodosByEntity lists the todos linked to an entity, for every user
func (s *ContextService) TodosByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]domain.ContextualTodo, error) {
	if !entityType.Linkable() {
		return nil, invalid(&domain.InvalidFieldError{Field: "entity_type", Reason: "must name a decision, goal, issue or preference"})
	}
	return s.store.Todos().FindByEntity(ctx, entityType, entityID)
}

func (s *ContextService) UpdateTodo(ctx context.Context, t *domain.ContextualTodo) (*domain.ContextualTodo, error) {
	if err := validate(t); err != nil {
		return nil, err
	}
	old, err := s.GetTodo(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if err := sameOwner("todo", t.ID, old.UserID, t.UserID); err != nil {
		return nil, err
	}
	t.CreatedAt = old.CreatedAt
	updated, err := s.store.Todos().Update(ctx, t)
	if err != nil {
		return nil, err
	}
	s.recordUpdate(ctx, old.UserID, todoKind, t.ID, old, updated)
	return updated, nil
}

func (s *ContextService) DeleteTodo(ctx context.Context, id string) (bool, error) {
	old, err := s.store.Todos().FindByID(ctx, id)
	if err != nil || old == nil {
		return false, err
	}
	ok, err := s.store.Todos().Delete(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	s.recordDelete(ctx, old.UserID, todoKind, id, old)
	return true, nil
}

// SetTodoStatus moves a todo to a new status. Completing a todo stamps its
// completion date.
func (s *ContextService) SetTodoStatus(ctx context.Context, id string, status domain.TodoStatus, reason string) (*domain.ContextualTodo, error) {
	old, err := s.GetTodo(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Todos().UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.recordStatus(ctx, old.UserID, todoKind, id, old.Status.Code(), status.Code(), reason)
	return s.GetTodo(ctx, id)
}
