package sqlite

import (
	"context"
	"database/sql"
	"log/slog"

	"usercontext/internal/domain"
	"usercontext/internal/repository"
)

// AuditRepository implements repository.AuditRepository. It only appends.
type AuditRepository struct {
	db  *sql.DB
	log *slog.Logger
}

var _ repository.AuditRepository = (*AuditRepository)(nil)

func newAuditRow() *auditRow { return &auditRow{} }

func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO user_context_audit (`+auditColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, auditInsertArgs(entry)...)
	if err != nil {
		return classify("append audit entry", err)
	}
	return nil
}

// FindByEntity returns the history of one entity, oldest first
func (r *AuditRepository) FindByEntity(ctx context.Context, entityID string) ([]domain.AuditEntry, error) {
	return queryList[domain.AuditEntry](ctx, r.db, r.log, "list audit entries", newAuditRow,
		`SELECT `+auditColumns+` FROM user_context_audit WHERE entity_id = ? ORDER BY changed_at ASC, rowid ASC`,
		entityID)
}

// FindByUser returns the most recent entries for a user, newest first.
// A limit of zero or less returns everything.
func (r *AuditRepository) FindByUser(ctx context.Context, userID string, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	return queryList[domain.AuditEntry](ctx, r.db, r.log, "list audit entries", newAuditRow,
		`SELECT `+auditColumns+` FROM user_context_audit WHERE user_id = ? ORDER BY changed_at DESC, rowid DESC LIMIT ?`,
		userID, limit)
}
