package service

import (
	"context"

	"usercontext/internal/domain"
)

const preferenceKind = domain.EntityTypeUserPreference

func (s *ContextService) CreatePreference(ctx context.Context, p *domain.UserPreference) (*domain.UserPreference, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	created, err := s.store.Preferences().Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.recordCreate(ctx, created.UserID, preferenceKind, created.ID, created)
	return created, nil
}

func (s *ContextService) GetPreference(ctx context.Context, id string) (*domain.UserPreference, error) {
	p, err := s.store.Preferences().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, notFound("preference", id)
	}
	return p, nil
}

func (s *ContextService) ListPreferences(ctx context.Context, userID string) ([]domain.UserPreference, error) {
	return s.store.Preferences().FindByUser(ctx, userID)
}

func (s *ContextService) PreferencesByType(ctx context.Context, userID string, prefType domain.PreferenceType) ([]domain.UserPreference, error) {
	return s.store.Preferences().FindByType(ctx, userID, prefType)
}

func (s *ContextService) PreferencesByScope(ctx context.Context, userID string, scope domain.ContextScope) ([]domain.UserPreference, error) {
	return s.store.Preferences().FindByScope(ctx, userID, scope)
}

// AutomationPreferences returns the preferences an assistant may apply on
// its own, most frequently observed first.
func (s *ContextService) AutomationPreferences(ctx context.Context, userID string) ([]domain.UserPreference, error) {
	return s.store.Preferences().FindAutomationApplicable(ctx, userID)
}

func (s *ContextService) UpdatePreference(ctx context.Context, p *domain.UserPreference) (*domain.UserPreference, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	old, err := s.GetPreference(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if err := sameOwner("preference", p.ID, old.UserID, p.UserID); err != nil {
		return nil, err
	}
	p.CreatedAt = old.CreatedAt
	updated, err := s.store.Preferences().Update(ctx, p)
	if err != nil {
		return nil, err
	}
	s.recordUpdate(ctx, old.UserID, preferenceKind, p.ID, old, updated)
	return updated, nil
}

func (s *ContextService) DeletePreference(ctx context.Context, id string) (bool, error) {
	old, err := s.store.Preferences().FindByID(ctx, id)
	if err != nil || old == nil {
		return false, err
	}
	ok, err := s.store.Preferences().Delete(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	s.recordDelete(ctx, old.UserID, preferenceKind, id, old)
	return true, nil
}

// ObservePreference records one more sighting of the preference
func (s *ContextService) ObservePreference(ctx context.Context, id string) (*domain.UserPreference, error) {
	if err := s.store.Preferences().IncrementFrequency(ctx, id); err != nil {
		return nil, err
	}
	return s.GetPreference(ctx, id)
}
