package sqlite

import (
	"context"
	"database/sql"
	"log/slog"

	"usercontext/internal/domain"
	"usercontext/internal/repository"
)

// TodoRepository implements repository.TodoRepository
type TodoRepository struct {
	db  *sql.DB
	log *slog.Logger
}

var _ repository.TodoRepository = (*TodoRepository)(nil)

func newTodoRow() *todoRow { return &todoRow{} }

// undated todos sort after dated ones within a priority
const todoOrder = ` ORDER BY priority ASC, due_date IS NULL, due_date ASC`

func (r *TodoRepository) Create(ctx context.Context, t *domain.ContextualTodo) (*domain.ContextualTodo, error) {
	_, err := r.db.ExecContext(ctx, `INSERT INTO contextual_todos (`+todoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, todoInsertArgs(t)...)
	if err != nil {
		return nil, classify("insert todo", err)
	}
	return t, nil
}

func (r *TodoRepository) FindByID(ctx context.Context, id string) (*domain.ContextualTodo, error) {
	return queryOne[domain.ContextualTodo](ctx, r.db, r.log, "get todo", newTodoRow(),
		`SELECT `+todoColumns+` FROM contextual_todos WHERE id = ?`, id)
}

func (r *TodoRepository) FindByUser(ctx context.Context, userID string) ([]domain.ContextualTodo, error) {
	return queryList[domain.ContextualTodo](ctx, r.db, r.log, "list todos", newTodoRow,
		`SELECT `+todoColumns+` FROM contextual_todos WHERE user_id = ?`+todoOrder, userID)
}

func (r *TodoRepository) FindByStatus(ctx context.Context, userID string, status domain.TodoStatus) ([]domain.ContextualTodo, error) {
	return queryList[domain.ContextualTodo](ctx, r.db, r.log, "list todos by status", newTodoRow,
		`SELECT `+todoColumns+` FROM contextual_todos WHERE user_id = ? AND status = ?`+todoOrder,
		userID, status.Code())
}

func (r *TodoRepository) FindByProject(ctx context.Context, userID, projectID string) ([]domain.ContextualTodo, error) {
	return queryList[domain.ContextualTodo](ctx, r.db, r.log, "list todos by project", newTodoRow,
		`SELECT `+todoColumns+` FROM contextual_todos WHERE user_id = ? AND project_id = ?`+todoOrder,
		userID, projectID)
}

// FindByEntity returns todos linked to an entity, newest first, regardless
// of owner
func (r *TodoRepository) FindByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]domain.ContextualTodo, error) {
	return queryList[domain.ContextualTodo](ctx, r.db, r.log, "list todos by entity", newTodoRow,
		`SELECT `+todoColumns+` FROM contextual_todos
		WHERE related_entity_type = ? AND related_entity_id = ?
		ORDER BY created_at DESC`,
		entityType.Code(), entityID)
}

func (r *TodoRepository) Update(ctx context.Context, t *domain.ContextualTodo) (*domain.ContextualTodo, error) {
	args := todoInsertArgs(t)
	now := domain.Now()
	// args follow todoColumns; id, user_id and created_at are not written
	res, err := r.db.ExecContext(ctx, `UPDATE contextual_todos SET
		task_description = ?, context_type = ?, related_entity_id = ?, related_entity_type = ?,
		project_id = ?, assigned_to = ?, due_date = ?, status = ?, priority = ?,
		created_from_conversation_date = ?, updated_at = ?, completion_date = ?
		WHERE id = ?`,
		args[2], args[3], args[4], args[5],
		args[6], args[7], args[8], args[9], args[10],
		args[11], formatTime(now), args[14],
		t.ID,
	)
	if err != nil {
		return nil, classify("update todo", err)
	}
	if err := requireAffected(res, "update todo", "todo", t.ID); err != nil {
		return nil, err
	}
	t.UpdatedAt = &now
	return t, nil
}

func (r *TodoRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contextual_todos WHERE id = ?`, id)
	if err != nil {
		return false, classify("delete todo", err)
	}
	return deleted(res, "delete todo")
}

// UpdateStatus sets the todo status, stamping completion_date on completion
func (r *TodoRepository) UpdateStatus(ctx context.Context, id string, status domain.TodoStatus) error {
	now := formatTime(domain.Now())
	var (
		res sql.Result
		err error
	)
	if status == domain.TodoStatusCompleted {
		res, err = r.db.ExecContext(ctx, `UPDATE contextual_todos
			SET status = ?, completion_date = ?, updated_at = ? WHERE id = ?`,
			status.Code(), now, now, id)
	} else {
		res, err = r.db.ExecContext(ctx, `UPDATE contextual_todos SET status = ?, updated_at = ? WHERE id = ?`,
			status.Code(), now, id)
	}
	if err != nil {
		return classify("update todo status", err)
	}
	return requireAffected(res, "update todo status", "todo", id)
}
