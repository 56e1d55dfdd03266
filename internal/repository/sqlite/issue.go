package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"usercontext/internal/domain"
	"usercontext/internal/repository"
)

// IssueRepository implements repository.IssueRepository
type IssueRepository struct {
	db  *sql.DB
	log *slog.Logger
}

var _ repository.IssueRepository = (*IssueRepository)(nil)

func newIssueRow() *issueRow { return &issueRow{} }

const issueOrder = ` ORDER BY learned_date DESC`

// severityRank sorts critical first. Unrecognized codes rank with critical,
// matching how they decode.
const severityRank = `CASE severity
	WHEN 'high' THEN 1
	WHEN 'medium' THEN 2
	WHEN 'low' THEN 3
	ELSE 0 END`

func (r *IssueRepository) Create(ctx context.Context, i *domain.KnownIssue) (*domain.KnownIssue, error) {
	args, err := issueInsertArgs(i)
	if err != nil {
		return nil, fmt.Errorf("failed to encode issue: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO known_issues (`+issueColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return nil, classify("insert issue", err)
	}
	return i, nil
}

func (r *IssueRepository) FindByID(ctx context.Context, id string) (*domain.KnownIssue, error) {
	return queryOne[domain.KnownIssue](ctx, r.db, r.log, "get issue", newIssueRow(),
		`SELECT `+issueColumns+` FROM known_issues WHERE id = ?`, id)
}

func (r *IssueRepository) FindByUser(ctx context.Context, userID string) ([]domain.KnownIssue, error) {
	return queryList[domain.KnownIssue](ctx, r.db, r.log, "list issues", newIssueRow,
		`SELECT `+issueColumns+` FROM known_issues WHERE user_id = ?`+issueOrder, userID)
}

// FindByStatus orders by severity, most severe first, then newest learned
func (r *IssueRepository) FindByStatus(ctx context.Context, userID string, status domain.ResolutionStatus) ([]domain.KnownIssue, error) {
	return queryList[domain.KnownIssue](ctx, r.db, r.log, "list issues by status", newIssueRow,
		`SELECT `+issueColumns+` FROM known_issues WHERE user_id = ? AND resolution_status = ?
		ORDER BY `+severityRank+`, learned_date DESC`,
		userID, status.Code())
}

func (r *IssueRepository) FindBySeverity(ctx context.Context, userID string, severity domain.IssueSeverity) ([]domain.KnownIssue, error) {
	return queryList[domain.KnownIssue](ctx, r.db, r.log, "list issues by severity", newIssueRow,
		`SELECT `+issueColumns+` FROM known_issues WHERE user_id = ? AND severity = ?`+issueOrder,
		userID, severity.Code())
}

func (r *IssueRepository) FindByCategory(ctx context.Context, userID string, category domain.IssueCategory) ([]domain.KnownIssue, error) {
	return queryList[domain.KnownIssue](ctx, r.db, r.log, "list issues by category", newIssueRow,
		`SELECT `+issueColumns+` FROM known_issues WHERE user_id = ? AND issue_category = ?`+issueOrder,
		userID, category.Code())
}

// FindByComponent loads every issue for the user and keeps those whose
// affected components contain component exactly. The list column is a JSON
// blob, so the cost is a full scan of the user's issues.
func (r *IssueRepository) FindByComponent(ctx context.Context, userID, component string) ([]domain.KnownIssue, error) {
	all, err := r.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []domain.KnownIssue{}
	for _, issue := range all {
		if issue.AffectsComponent(component) {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (r *IssueRepository) Update(ctx context.Context, i *domain.KnownIssue) (*domain.KnownIssue, error) {
	args, err := issueInsertArgs(i)
	if err != nil {
		return nil, fmt.Errorf("failed to encode issue: %w", err)
	}
	now := domain.Now()
	// args follow issueColumns; id, user_id and created_at are not written
	res, err := r.db.ExecContext(ctx, `UPDATE known_issues SET
		issue_description = ?, symptoms = ?, root_cause = ?, workaround = ?, permanent_solution = ?,
		affected_components = ?, severity = ?, issue_category = ?, learned_date = ?,
		resolution_status = ?, resolution_date = ?, prevention_notes = ?, project_contexts = ?,
		updated_at = ?
		WHERE id = ?`,
		args[2], args[3], args[4], args[5], args[6],
		args[7], args[8], args[9], args[10],
		args[11], args[12], args[13], args[14],
		formatTime(now),
		i.ID,
	)
	if err != nil {
		return nil, classify("update issue", err)
	}
	if err := requireAffected(res, "update issue", "issue", i.ID); err != nil {
		return nil, err
	}
	i.UpdatedAt = &now
	return i, nil
}

func (r *IssueRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM known_issues WHERE id = ?`, id)
	if err != nil {
		return false, classify("delete issue", err)
	}
	return deleted(res, "delete issue")
}

// MarkResolved sets the resolution status and stamps resolution_date
func (r *IssueRepository) MarkResolved(ctx context.Context, id string, status domain.ResolutionStatus) error {
	now := formatTime(domain.Now())
	res, err := r.db.ExecContext(ctx, `UPDATE known_issues
		SET resolution_status = ?, resolution_date = ?, updated_at = ? WHERE id = ?`,
		status.Code(), now, now, id)
	if err != nil {
		return classify("resolve issue", err)
	}
	return requireAffected(res, "resolve issue", "issue", id)
}
