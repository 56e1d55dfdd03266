package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"usercontext/internal/repository"
)

// Options tunes how the database is opened
type Options struct {
	// MaxOpenConns caps the pool. The default of one gives a single writer.
	MaxOpenConns int
	// BusyTimeout is how long SQLite waits on a locked database
	BusyTimeout time.Duration
	Logger      *slog.Logger
}

const (
	defaultBusyTimeout = 5 * time.Second
	memoryPath         = ":memory:"
)

// Repository implements repository.Store using SQLite. The repositories it
// hands out share one connection pool; there is no process-wide lock.
type Repository struct {
	db  *sql.DB
	log *slog.Logger

	decisions   *DecisionRepository
	goals       *GoalRepository
	preferences *PreferenceRepository
	issues      *IssueRepository
	todos       *TodoRepository
	audit       *AuditRepository
}

var _ repository.Store = (*Repository)(nil)

// New opens dbPath with default options
func New(dbPath string) (*Repository, error) {
	return Open(context.Background(), dbPath, Options{})
}

// Open opens the database, applies the schema if it is missing and verifies
// every table is present before returning.
func Open(ctx context.Context, dbPath string, opts Options) (*Repository, error) {
	if opts.MaxOpenConns <= 0 || dbPath == memoryPath {
		// each in-memory connection is a separate database
		opts.MaxOpenConns = 1
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = defaultBusyTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	db, err := sql.Open("sqlite", dsn(dbPath, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxOpenConns)
	db.SetConnMaxLifetime(0)

	if dbPath == memoryPath {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure database: %w", err)
		}
	}

	log := opts.Logger.With("component", "sqlite")
	repo := &Repository{db: db, log: log}
	if err := repo.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := repo.verify(ctx); err != nil {
		db.Close()
		return nil, err
	}

	repo.decisions = &DecisionRepository{db: db, log: log.With("table", "user_decisions")}
	repo.goals = &GoalRepository{db: db, log: log.With("table", "user_goals")}
	repo.preferences = &PreferenceRepository{db: db, log: log.With("table", "user_preferences")}
	repo.issues = &IssueRepository{db: db, log: log.With("table", "known_issues")}
	repo.todos = &TodoRepository{db: db, log: log.With("table", "contextual_todos")}
	repo.audit = &AuditRepository{db: db, log: log.With("table", "user_context_audit")}

	log.Debug("database ready", "path", dbPath, "max_open_conns", opts.MaxOpenConns)
	return repo, nil
}

// dsn adds connection pragmas as query parameters so every pooled
// connection gets them, not just the first.
func dsn(dbPath string, opts Options) string {
	if dbPath == memoryPath {
		return dbPath
	}
	pragmas := []string{
		fmt.Sprintf("busy_timeout(%d)", opts.BusyTimeout.Milliseconds()),
		"journal_mode(WAL)",
		"foreign_keys(1)",
		"synchronous(NORMAL)",
	}
	var b strings.Builder
	b.WriteString(dbPath)
	for i, p := range pragmas {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString("_pragma=")
		b.WriteString(p)
	}
	return b.String()
}

func (r *Repository) Decisions() repository.DecisionRepository     { return r.decisions }
func (r *Repository) Goals() repository.GoalRepository             { return r.goals }
func (r *Repository) Preferences() repository.PreferenceRepository { return r.preferences }
func (r *Repository) Issues() repository.IssueRepository           { return r.issues }
func (r *Repository) Todos() repository.TodoRepository             { return r.todos }
func (r *Repository) Audit() repository.AuditRepository            { return r.audit }

// DB exposes the underlying pool for diagnostics
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// ============================================================================
// Error Classification
// ============================================================================

// classify wraps err with the repository sentinel that describes it
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("failed to %s: %w: %w", op, repository.ErrUnavailable, err)
	}

	var serr *msqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return fmt.Errorf("failed to %s: %w: %w", op, repository.ErrConflict, err)
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("failed to %s: %w: %w", op, repository.ErrUnavailable, err)
		}
	}
	return fmt.Errorf("failed to %s: %w: %w", op, repository.ErrStatement, err)
}

// requireAffected turns a zero-row write into ErrNotFound
func requireAffected(res sql.Result, op, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, repository.ErrNotFound)
	}
	return nil
}

// deleted reports whether a delete removed a row
func deleted(res sql.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify(op, err)
	}
	return n > 0, nil
}
