package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"usercontext/internal/domain"
	"usercontext/internal/repository"
)

// PreferenceRepository implements repository.PreferenceRepository
type PreferenceRepository struct {
	db  *sql.DB
	log *slog.Logger
}

var _ repository.PreferenceRepository = (*PreferenceRepository)(nil)

func newPreferenceRow() *preferenceRow { return &preferenceRow{} }

const preferenceOrder = ` ORDER BY priority ASC, created_at ASC`

func (r *PreferenceRepository) Create(ctx context.Context, p *domain.UserPreference) (*domain.UserPreference, error) {
	args, err := preferenceInsertArgs(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preference: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO user_preferences (`+preferenceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return nil, classify("insert preference", err)
	}
	return p, nil
}

func (r *PreferenceRepository) FindByID(ctx context.Context, id string) (*domain.UserPreference, error) {
	return queryOne[domain.UserPreference](ctx, r.db, r.log, "get preference", newPreferenceRow(),
		`SELECT `+preferenceColumns+` FROM user_preferences WHERE id = ?`, id)
}

func (r *PreferenceRepository) FindByUser(ctx context.Context, userID string) ([]domain.UserPreference, error) {
	return queryList[domain.UserPreference](ctx, r.db, r.log, "list preferences", newPreferenceRow,
		`SELECT `+preferenceColumns+` FROM user_preferences WHERE user_id = ?`+preferenceOrder, userID)
}

func (r *PreferenceRepository) FindByScope(ctx context.Context, userID string, scope domain.ContextScope) ([]domain.UserPreference, error) {
	return queryList[domain.UserPreference](ctx, r.db, r.log, "list preferences by scope", newPreferenceRow,
		`SELECT `+preferenceColumns+` FROM user_preferences
		WHERE user_id = ? AND scope_kind = ? AND scope_value = ?`+preferenceOrder,
		userID, string(scope.Kind()), scope.Value())
}

func (r *PreferenceRepository) FindByType(ctx context.Context, userID string, prefType domain.PreferenceType) ([]domain.UserPreference, error) {
	return queryList[domain.UserPreference](ctx, r.db, r.log, "list preferences by type", newPreferenceRow,
		`SELECT `+preferenceColumns+` FROM user_preferences WHERE user_id = ? AND preference_type = ?`+preferenceOrder,
		userID, prefType.Code())
}

// FindAutomationApplicable returns preferences automation may act on, most
// frequently observed first
func (r *PreferenceRepository) FindAutomationApplicable(ctx context.Context, userID string) ([]domain.UserPreference, error) {
	return queryList[domain.UserPreference](ctx, r.db, r.log, "list automation preferences", newPreferenceRow,
		`SELECT `+preferenceColumns+` FROM user_preferences
		WHERE user_id = ? AND applies_to_automation = 1
		ORDER BY frequency_observed DESC, priority ASC`, userID)
}

func (r *PreferenceRepository) Update(ctx context.Context, p *domain.UserPreference) (*domain.UserPreference, error) {
	tags, err := encodeList(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preference: %w", err)
	}
	now := domain.Now()
	res, err := r.db.ExecContext(ctx, `UPDATE user_preferences SET
		preference_name = ?, preference_value = ?, preference_type = ?, scope_kind = ?, scope_value = ?,
		applies_to_automation = ?, rationale = ?, priority = ?, frequency_observed = ?, tags = ?,
		updated_at = ?, last_referenced = ?
		WHERE id = ?`,
		p.PreferenceName,
		p.PreferenceValue,
		p.PreferenceType.Code(),
		string(p.Scope.Kind()),
		p.Scope.Value(),
		boolToInt(p.AppliesToAutomation),
		stringPtrToNull(p.Rationale),
		p.Priority,
		p.FrequencyObserved,
		tags,
		formatTime(now),
		timePtrToNull(p.LastReferenced),
		p.ID,
	)
	if err != nil {
		return nil, classify("update preference", err)
	}
	if err := requireAffected(res, "update preference", "preference", p.ID); err != nil {
		return nil, err
	}
	p.UpdatedAt = &now
	return p, nil
}

func (r *PreferenceRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_preferences WHERE id = ?`, id)
	if err != nil {
		return false, classify("delete preference", err)
	}
	return deleted(res, "delete preference")
}

// IncrementFrequency records one more observation and stamps last_referenced
func (r *PreferenceRepository) IncrementFrequency(ctx context.Context, id string) error {
	now := formatTime(domain.Now())
	res, err := r.db.ExecContext(ctx, `UPDATE user_preferences
		SET frequency_observed = frequency_observed + 1, last_referenced = ?, updated_at = ?
		WHERE id = ?`, now, now, id)
	if err != nil {
		return classify("increment preference frequency", err)
	}
	return requireAffected(res, "increment preference frequency", "preference", id)
}
