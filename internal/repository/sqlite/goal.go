package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"usercontext/internal/domain"
	"usercontext/internal/repository"
)

// GoalRepository implements repository.GoalRepository
type GoalRepository struct {
	db  *sql.DB
	log *slog.Logger
}

var _ repository.GoalRepository = (*GoalRepository)(nil)

func newGoalRow() *goalRow { return &goalRow{} }

const goalOrder = ` ORDER BY priority ASC, created_at DESC`

func (r *GoalRepository) Create(ctx context.Context, g *domain.UserGoal) (*domain.UserGoal, error) {
	args, err := goalInsertArgs(g)
	if err != nil {
		return nil, fmt.Errorf("failed to encode goal: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO user_goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return nil, classify("insert goal", err)
	}
	return g, nil
}

func (r *GoalRepository) FindByID(ctx context.Context, id string) (*domain.UserGoal, error) {
	return queryOne[domain.UserGoal](ctx, r.db, r.log, "get goal", newGoalRow(),
		`SELECT `+goalColumns+` FROM user_goals WHERE id = ?`, id)
}

func (r *GoalRepository) FindByUser(ctx context.Context, userID string) ([]domain.UserGoal, error) {
	return queryList[domain.UserGoal](ctx, r.db, r.log, "list goals", newGoalRow,
		`SELECT `+goalColumns+` FROM user_goals WHERE user_id = ?`+goalOrder, userID)
}

func (r *GoalRepository) FindByStatus(ctx context.Context, userID string, status domain.GoalStatus) ([]domain.UserGoal, error) {
	return queryList[domain.UserGoal](ctx, r.db, r.log, "list goals by status", newGoalRow,
		`SELECT `+goalColumns+` FROM user_goals WHERE user_id = ? AND status = ?`+goalOrder,
		userID, status.Code())
}

func (r *GoalRepository) FindByProject(ctx context.Context, userID, projectID string) ([]domain.UserGoal, error) {
	return queryList[domain.UserGoal](ctx, r.db, r.log, "list goals by project", newGoalRow,
		`SELECT `+goalColumns+` FROM user_goals WHERE user_id = ? AND project_id = ?`+goalOrder,
		userID, projectID)
}

func (r *GoalRepository) Update(ctx context.Context, g *domain.UserGoal) (*domain.UserGoal, error) {
	args, err := goalInsertArgs(g)
	if err != nil {
		return nil, fmt.Errorf("failed to encode goal: %w", err)
	}
	now := domain.Now()
	// args follow goalColumns: 0 id, 1 user_id, 8 created_at are not written
	res, err := r.db.ExecContext(ctx, `UPDATE user_goals SET
		goal_text = ?, description = ?, project_id = ?, status = ?, priority = ?, steps = ?,
		updated_at = ?, completion_target_date = ?, completion_date = ?, blockers = ?, related_todos = ?
		WHERE id = ?`,
		args[2], args[3], args[4], args[5], args[6], args[7],
		formatTime(now), args[10], args[11], args[12], args[13],
		g.ID,
	)
	if err != nil {
		return nil, classify("update goal", err)
	}
	if err := requireAffected(res, "update goal", "goal", g.ID); err != nil {
		return nil, err
	}
	g.UpdatedAt = &now
	return g, nil
}

func (r *GoalRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_goals WHERE id = ?`, id)
	if err != nil {
		return false, classify("delete goal", err)
	}
	return deleted(res, "delete goal")
}

// UpdateStatus sets the goal status. Moving to completed also stamps
// completion_date; other statuses leave it untouched.
func (r *GoalRepository) UpdateStatus(ctx context.Context, id string, status domain.GoalStatus) error {
	now := formatTime(domain.Now())
	var (
		res sql.Result
		err error
	)
	if status == domain.GoalStatusCompleted {
		res, err = r.db.ExecContext(ctx, `UPDATE user_goals
			SET status = ?, completion_date = ?, updated_at = ? WHERE id = ?`,
			status.Code(), now, now, id)
	} else {
		res, err = r.db.ExecContext(ctx, `UPDATE user_goals SET status = ?, updated_at = ? WHERE id = ?`,
			status.Code(), now, id)
	}
	if err != nil {
		return classify("update goal status", err)
	}
	return requireAffected(res, "update goal status", "goal", id)
}
