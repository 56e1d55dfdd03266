package service

import (
	"context"

	"usercontext/internal/domain"
)

const decisionKind = domain.EntityTypeUserDecision

// CreateDecision validates and stores a new decision
func (s *ContextService) CreateDecision(ctx context.Context, d *domain.UserDecision) (*domain.UserDecision, error) {
	if err := validate(d); err != nil {
		return nil, err
	}
	created, err := s.store.Decisions().Create(ctx, d)
	if err != nil {
		return nil, err
	}
	s.recordCreate(ctx, created.UserID, decisionKind, created.ID, created)
	return created, nil
}

// GetDecision retrieves a single decision by ID
func (s *ContextService) GetDecision(ctx context.Context, id string) (*domain.UserDecision, error) {
	d, err := s.store.Decisions().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, notFound("decision", id)
	}
	return d, nil
}

func (s *ContextService) ListDecisions(ctx context.Context, userID string) ([]domain.UserDecision, error) {
	return s.store.Decisions().FindByUser(ctx, userID)
}

func (s *ContextService) DecisionsByCategory(ctx context.Context, userID string, category domain.DecisionCategory) ([]domain.UserDecision, error) {
	return s.store.Decisions().FindByCategory(ctx, userID, category)
}

func (s *ContextService) DecisionsByScope(ctx context.Context, userID string, scope domain.ContextScope) ([]domain.UserDecision, error) {
	return s.store.Decisions().FindByScope(ctx, userID, scope)
}

func (s *ContextService) DecisionsByStatus(ctx context.Context, userID string, status domain.EntityStatus) ([]domain.UserDecision, error) {
	return s.store.Decisions().FindByStatus(ctx, userID, status)
}

// UpdateDecision replaces the stored decision and records both versions
func (s *ContextService) UpdateDecision(ctx context.Context, d *domain.UserDecision) (*domain.UserDecision, error) {
	if err := validate(d); err != nil {
		return nil, err
	}
	old, err := s.GetDecision(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	if err := sameOwner("decision", d.ID, old.UserID, d.UserID); err != nil {
		return nil, err
	}
	d.CreatedAt = old.CreatedAt
	updated, err := s.store.Decisions().Update(ctx, d)
	if err != nil {
		return nil, err
	}
	s.recordUpdate(ctx, old.UserID, decisionKind, d.ID, old, updated)
	return updated, nil
}

// DeleteDecision removes a decision. False means there was nothing to delete.
func (s *ContextService) DeleteDecision(ctx context.Context, id string) (bool, error) {
	old, err := s.store.Decisions().FindByID(ctx, id)
	if err != nil || old == nil {
		return false, err
	}
	ok, err := s.store.Decisions().Delete(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	s.recordDelete(ctx, old.UserID, decisionKind, id, old)
	return true, nil
}

// ApplyDecision counts one more application of the decision
func (s *ContextService) ApplyDecision(ctx context.Context, id string) (*domain.UserDecision, error) {
	if err := s.store.Decisions().IncrementApplied(ctx, id); err != nil {
		return nil, err
	}
	return s.GetDecision(ctx, id)
}

func (s *ContextService) ArchiveDecision(ctx context.Context, id, reason string) (*domain.UserDecision, error) {
	return s.setDecisionStatus(ctx, id, domain.EntityStatusArchived, reason)
}

func (s *ContextService) SupersedeDecision(ctx context.Context, id, reason string) (*domain.UserDecision, error) {
	return s.setDecisionStatus(ctx, id, domain.EntityStatusSuperseded, reason)
}

func (s *ContextService) setDecisionStatus(ctx context.Context, id string, status domain.EntityStatus, reason string) (*domain.UserDecision, error) {
	old, err := s.GetDecision(ctx, id)
	if err != nil {
		return nil, err
	}
	repo := s.store.Decisions()
	if status == domain.EntityStatusSuperseded {
		err = repo.Supersede(ctx, id)
	} else {
		err = repo.Archive(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	s.recordStatus(ctx, old.UserID, decisionKind, id, old.Status.Code(), status.Code(), reason)
	return s.GetDecision(ctx, id)
}
