package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"usercontext/internal/domain"
	"usercontext/internal/repository"
)

// DecisionRepository implements repository.DecisionRepository
type DecisionRepository struct {
	db  *sql.DB
	log *slog.Logger
}

var _ repository.DecisionRepository = (*DecisionRepository)(nil)

func newDecisionRow() *decisionRow { return &decisionRow{} }

const decisionOrder = ` ORDER BY created_at DESC`

// Create inserts a decision
func (r *DecisionRepository) Create(ctx context.Context, d *domain.UserDecision) (*domain.UserDecision, error) {
	args, err := decisionInsertArgs(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode decision: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO user_decisions (`+decisionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return nil, classify("insert decision", err)
	}
	return d, nil
}

// FindByID retrieves a decision, or nil if it does not exist
func (r *DecisionRepository) FindByID(ctx context.Context, id string) (*domain.UserDecision, error) {
	return queryOne[domain.UserDecision](ctx, r.db, r.log, "get decision", newDecisionRow(),
		`SELECT `+decisionColumns+` FROM user_decisions WHERE id = ?`, id)
}

func (r *DecisionRepository) FindByUser(ctx context.Context, userID string) ([]domain.UserDecision, error) {
	return queryList[domain.UserDecision](ctx, r.db, r.log, "list decisions", newDecisionRow,
		`SELECT `+decisionColumns+` FROM user_decisions WHERE user_id = ?`+decisionOrder, userID)
}

func (r *DecisionRepository) FindByScope(ctx context.Context, userID string, scope domain.ContextScope) ([]domain.UserDecision, error) {
	return queryList[domain.UserDecision](ctx, r.db, r.log, "list decisions by scope", newDecisionRow,
		`SELECT `+decisionColumns+` FROM user_decisions
		WHERE user_id = ? AND scope_kind = ? AND scope_value = ?`+decisionOrder,
		userID, string(scope.Kind()), scope.Value())
}

func (r *DecisionRepository) FindByCategory(ctx context.Context, userID string, category domain.DecisionCategory) ([]domain.UserDecision, error) {
	return queryList[domain.UserDecision](ctx, r.db, r.log, "list decisions by category", newDecisionRow,
		`SELECT `+decisionColumns+` FROM user_decisions WHERE user_id = ? AND decision_category = ?`+decisionOrder,
		userID, category.Code())
}

func (r *DecisionRepository) FindByStatus(ctx context.Context, userID string, status domain.EntityStatus) ([]domain.UserDecision, error) {
	return queryList[domain.UserDecision](ctx, r.db, r.log, "list decisions by status", newDecisionRow,
		`SELECT `+decisionColumns+` FROM user_decisions WHERE user_id = ? AND status = ?`+decisionOrder,
		userID, status.Code())
}

// Update replaces every mutable field and stamps updated_at
func (r *DecisionRepository) Update(ctx context.Context, d *domain.UserDecision) (*domain.UserDecision, error) {
	items, err := encodeList(d.ReferencedItems)
	if err != nil {
		return nil, fmt.Errorf("failed to encode decision: %w", err)
	}
	now := domain.Now()
	res, err := r.db.ExecContext(ctx, `UPDATE user_decisions SET
		decision_text = ?, reason = ?, decision_category = ?, scope_kind = ?, scope_value = ?,
		related_project_id = ?, confidence_score = ?, referenced_items = ?, updated_at = ?,
		applied_count = ?, last_applied = ?, status = ?
		WHERE id = ?`,
		d.DecisionText,
		stringPtrToNull(d.Reason),
		d.Category.Code(),
		string(d.Scope.Kind()),
		d.Scope.Value(),
		stringPtrToNull(d.RelatedProjectID),
		d.ConfidenceScore,
		items,
		formatTime(now),
		d.AppliedCount,
		timePtrToNull(d.LastApplied),
		d.Status.Code(),
		d.ID,
	)
	if err != nil {
		return nil, classify("update decision", err)
	}
	if err := requireAffected(res, "update decision", "decision", d.ID); err != nil {
		return nil, err
	}
	d.UpdatedAt = &now
	return d, nil
}

// Delete removes a decision; false means nothing matched
func (r *DecisionRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_decisions WHERE id = ?`, id)
	if err != nil {
		return false, classify("delete decision", err)
	}
	return deleted(res, "delete decision")
}

// IncrementApplied bumps applied_count and stamps last_applied
func (r *DecisionRepository) IncrementApplied(ctx context.Context, id string) error {
	now := formatTime(domain.Now())
	res, err := r.db.ExecContext(ctx, `UPDATE user_decisions
		SET applied_count = applied_count + 1, last_applied = ?, updated_at = ?
		WHERE id = ?`, now, now, id)
	if err != nil {
		return classify("increment decision applied count", err)
	}
	return requireAffected(res, "increment decision applied count", "decision", id)
}

func (r *DecisionRepository) Archive(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, domain.EntityStatusArchived)
}

func (r *DecisionRepository) Supersede(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, domain.EntityStatusSuperseded)
}

func (r *DecisionRepository) setStatus(ctx context.Context, id string, status domain.EntityStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE user_decisions SET status = ?, updated_at = ? WHERE id = ?`,
		status.Code(), formatTime(domain.Now()), id)
	if err != nil {
		return classify("set decision status", err)
	}
	return requireAffected(res, "set decision status", "decision", id)
}
