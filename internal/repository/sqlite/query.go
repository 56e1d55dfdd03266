package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
)

// domainRow is implemented by the xxxRow scanner types
type domainRow[T any] interface {
	scanArgs() []any
	toDomain(log *slog.Logger) (*T, error)
}

// queryOne runs a single-row SELECT. A missing row yields nil, nil.
func queryOne[T any, R domainRow[T]](ctx context.Context, db *sql.DB, log *slog.Logger, op string, row R, query string, args ...any) (*T, error) {
	err := db.QueryRowContext(ctx, query, args...).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(op, err)
	}
	return row.toDomain(log)
}

// queryList runs a SELECT and converts every row. newRow must return a fresh
// scanner per call.
func queryList[T any, R domainRow[T]](ctx context.Context, db *sql.DB, log *slog.Logger, op string, newRow func() R, query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		row := newRow()
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, classify(op, err)
		}
		v, err := row.toDomain(log)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}
