package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"usercontext/internal/domain"
)

const goalKind = domain.EntityTypeUserGoal

// CreateGoal validates and stores a new goal
func (s *ContextService) CreateGoal(ctx context.Context, g *domain.UserGoal) (*domain.UserGoal, error) {
	if err := validate(g); err != nil {
		return nil, err
	}
	created, err := s.store.Goals().Create(ctx, g)
	if err != nil {
		return nil, err
	}
	s.recordCreate(ctx, created.UserID, goalKind, created.ID, created)
	return created, nil
}

// GetGoal retrieves a single goal by ID
func (s *ContextService) GetGoal(ctx context.Context, id string) (*domain.UserGoal, error) {
	g, err := s.store.Goals().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, notFound("goal", id)
	}
	return g, nil
}

func (s *ContextService) ListGoals(ctx context.Context, userID string) ([]domain.UserGoal, error) {
	return s.store.Goals().FindByUser(ctx, userID)
}

func (s *ContextService) GoalsByStatus(ctx context.Context, userID string, status domain.GoalStatus) ([]domain.UserGoal, error) {
	return s.store.Goals().FindByStatus(ctx, userID, status)
}

func (s *ContextService) GoalsByProject(ctx context.Context, userID, projectID string) ([]domain.UserGoal, error) {
	return s.store.Goals().FindByProject(ctx, userID, projectID)
}

// UpdateGoal replaces the stored goal and records both versions
func (s *ContextService) UpdateGoal(ctx context.Context, g *domain.UserGoal) (*domain.UserGoal, error) {
	if err := validate(g); err != nil {
		return nil, err
	}
	old, err := s.GetGoal(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	if err := sameOwner("goal", g.ID, old.UserID, g.UserID); err != nil {
		return nil, err
	}
	g.CreatedAt = old.CreatedAt
	updated, err := s.store.Goals().Update(ctx, g)
	if err != nil {
		return nil, err
	}
	s.recordUpdate(ctx, old.UserID, goalKind, g.ID, old, updated)
	return updated, nil
}

func (s *ContextService) DeleteGoal(ctx context.Context, id string) (bool, error) {
	old, err := s.store.Goals().FindByID(ctx, id)
	if err != nil || old == nil {
		return false, err
	}
	ok, err := s.store.Goals().Delete(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	s.recordDelete(ctx, old.UserID, goalKind, id, old)
	return true, nil
}

// SetGoalStatus moves a goal to a new status. Completing a goal stamps its
// completion date.
func (s *ContextService) SetGoalStatus(ctx context.Context, id string, status domain.GoalStatus, reason string) (*domain.UserGoal, error) {
	old, err := s.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Goals().UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.recordStatus(ctx, old.UserID, goalKind, id, old.Status.Code(), status.Code(), reason)
	return s.GetGoal(ctx, id)
}

// AddGoalStep appends a step numbered after the last one
func (s *ContextService) AddGoalStep(ctx context.Context, id, description string, due *time.Time) (*domain.UserGoal, error) {
	if strings.TrimSpace(description) == "" {
		return nil, invalid(&domain.InvalidFieldError{Field: "description", Reason: "must not be empty"})
	}
	g, err := s.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}
	step := domain.NewGoalStep(0, description)
	step.DueDate = due
	g.AddStep(step, domain.Now())
	return s.UpdateGoal(ctx, g)
}

// SetGoalStepStatus changes the status of one step of a goal
func (s *ContextService) SetGoalStepStatus(ctx context.Context, id string, stepNumber int, status domain.GoalStatus) (*domain.UserGoal, error) {
	g, err := s.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}
	if !g.SetStepStatus(stepNumber, status, domain.Now()) {
		return nil, notFound("goal step", fmt.Sprintf("%s#%d", id, stepNumber))
	}
	return s.UpdateGoal(ctx, g)
}
