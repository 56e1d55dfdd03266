package service

import (
	"context"
	"strings"

	"usercontext/internal/domain"
)

const issueKind = domain.EntityTypeKnownIssue

func (s *ContextService) CreateIssue(ctx context.Context, i *domain.KnownIssue) (*domain.KnownIssue, error) {
	if err := validate(i); err != nil {
		return nil, err
	}
	created, err := s.store.Issues().Create(ctx, i)
	if err != nil {
		return nil, err
	}
	s.recordCreate(ctx, created.UserID, issueKind, created.ID, created)
	return created, nil
}

func (s *ContextService) GetIssue(ctx context.Context, id string) (*domain.KnownIssue, error) {
	i, err := s.store.Issues().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if i == nil {
		return nil, notFound("issue", id)
	}
	return i, nil
}

func (s *ContextService) ListIssues(ctx context.Context, userID string) ([]domain.KnownIssue, error) {
	return s.store.Issues().FindByUser(ctx, userID)
}

// IssuesByStatus lists issues in one resolution state, most severe first
func (s *ContextService) IssuesByStatus(ctx context.Context, userID string, status domain.ResolutionStatus) ([]domain.KnownIssue, error) {
	return s.store.Issues().FindByStatus(ctx, userID, status)
}

func (s *ContextService) IssuesBySeverity(ctx context.Context, userID string, severity domain.IssueSeverity) ([]domain.KnownIssue, error) {
	return s.store.Issues().FindBySeverity(ctx, userID, severity)
}

func (s *ContextService) IssuesByCategory(ctx context.Context, userID string, category domain.IssueCategory) ([]domain.KnownIssue, error) {
	return s.store.Issues().FindByCategory(ctx, userID, category)
}

func (s *ContextService) IssuesByComponent(ctx context.Context, userID, component string) ([]domain.KnownIssue, error) {
	return s.store.Issues().FindByComponent(ctx, userID, component)
}

func (s *ContextService) UpdateIssue(ctx context.Context, i *domain.KnownIssue) (*domain.KnownIssue, error) {
	if err := validate(i); err != nil {
		return nil, err
	}
	old, err := s.GetIssue(ctx, i.ID)
	if err != nil {
		return nil, err
	}
	if err := sameOwner("issue", i.ID, old.UserID, i.UserID); err != nil {
		return nil, err
	}
	i.CreatedAt = old.CreatedAt
	updated, err := s.store.Issues().Update(ctx, i)
	if err != nil {
		return nil, err
	}
	s.recordUpdate(ctx, old.UserID, issueKind, i.ID, old, updated)
	return updated, nil
}

func (s *ContextService) DeleteIssue(ctx context.Context, id string) (bool, error) {
	old, err := s.store.Issues().FindByID(ctx, id)
	if err != nil || old == nil {
		return false, err
	}
	ok, err := s.store.Issues().Delete(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	s.recordDelete(ctx, old.UserID, issueKind, id, old)
	return true, nil
}

// ResolveIssue sets the resolution status and stamps the resolution date
func (s *ContextService) ResolveIssue(ctx context.Context, id string, status domain.ResolutionStatus, reason string) (*domain.KnownIssue, error) {
	old, err := s.GetIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Issues().MarkResolved(ctx, id, status); err != nil {
		return nil, err
	}
	s.recordStatus(ctx, old.UserID, issueKind, id, old.ResolutionStatus.Code(), status.Code(), reason)
	return s.GetIssue(ctx, id)
}

func (s *ContextService) AddIssueSymptom(ctx context.Context, id, symptom string) (*domain.KnownIssue, error) {
	if strings.TrimSpace(symptom) == "" {
		return nil, invalid(&domain.InvalidFieldError{Field: "symptom", Reason: "must not be empty"})
	}
	i, err := s.GetIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	i.AddSymptom(symptom)
	return s.UpdateIssue(ctx, i)
}
