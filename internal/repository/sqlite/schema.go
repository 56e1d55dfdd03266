package sqlite

import (
	"context"
	"fmt"
)

// schemaVersion is stored in PRAGMA user_version
const schemaVersion = 1

// Timestamps are TEXT, not DATETIME, so the driver hands back the exact
// string that was written.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS user_decisions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	decision_text TEXT NOT NULL,
	reason TEXT,
	decision_category TEXT NOT NULL,
	scope_kind TEXT NOT NULL DEFAULT 'global',
	scope_value TEXT NOT NULL DEFAULT '',
	related_project_id TEXT,
	confidence_score REAL NOT NULL DEFAULT 0.5,
	referenced_items TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL,
	updated_at TEXT,
	applied_count INTEGER NOT NULL DEFAULT 0,
	last_applied TEXT,
	status TEXT NOT NULL DEFAULT 'active'
);

CREATE TABLE IF NOT EXISTS user_goals (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	goal_text TEXT NOT NULL,
	description TEXT,
	project_id TEXT,
	status TEXT NOT NULL DEFAULT 'planned',
	priority INTEGER NOT NULL DEFAULT 3,
	steps TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL,
	updated_at TEXT,
	completion_target_date TEXT,
	completion_date TEXT,
	blockers TEXT NOT NULL DEFAULT '[]',
	related_todos TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS user_preferences (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	preference_name TEXT NOT NULL,
	preference_value TEXT NOT NULL,
	preference_type TEXT NOT NULL,
	scope_kind TEXT NOT NULL DEFAULT 'global',
	scope_value TEXT NOT NULL DEFAULT '',
	applies_to_automation INTEGER NOT NULL DEFAULT 1,
	rationale TEXT,
	priority INTEGER NOT NULL DEFAULT 3,
	frequency_observed INTEGER NOT NULL DEFAULT 1,
	tags TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL,
	updated_at TEXT,
	last_referenced TEXT
);

CREATE TABLE IF NOT EXISTS known_issues (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	issue_description TEXT NOT NULL,
	symptoms TEXT NOT NULL DEFAULT '[]',
	root_cause TEXT,
	workaround TEXT,
	permanent_solution TEXT,
	affected_components TEXT NOT NULL DEFAULT '[]',
	severity TEXT NOT NULL,
	issue_category TEXT NOT NULL,
	learned_date TEXT NOT NULL,
	resolution_status TEXT NOT NULL DEFAULT 'unresolved',
	resolution_date TEXT,
	prevention_notes TEXT,
	project_contexts TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL,
	updated_at TEXT
);

CREATE TABLE IF NOT EXISTS contextual_todos (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	task_description TEXT NOT NULL,
	context_type TEXT NOT NULL,
	related_entity_id TEXT,
	related_entity_type TEXT,
	project_id TEXT,
	assigned_to TEXT,
	due_date TEXT,
	status TEXT NOT NULL DEFAULT 'pending',
	priority INTEGER NOT NULL DEFAULT 3,
	created_from_conversation_date TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT,
	completion_date TEXT
);

CREATE TABLE IF NOT EXISTS user_context_audit (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL,
	old_value TEXT,
	new_value TEXT,
	changed_by TEXT NOT NULL,
	changed_at TEXT NOT NULL,
	reason TEXT
);

CREATE INDEX IF NOT EXISTS idx_decisions_user ON user_decisions(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_decisions_scope ON user_decisions(user_id, scope_kind, scope_value);
CREATE INDEX IF NOT EXISTS idx_decisions_category ON user_decisions(user_id, decision_category);
CREATE INDEX IF NOT EXISTS idx_goals_user ON user_goals(user_id, priority);
CREATE INDEX IF NOT EXISTS idx_goals_status ON user_goals(user_id, status);
CREATE INDEX IF NOT EXISTS idx_goals_project ON user_goals(user_id, project_id);
CREATE INDEX IF NOT EXISTS idx_preferences_user ON user_preferences(user_id, priority);
CREATE INDEX IF NOT EXISTS idx_preferences_scope ON user_preferences(user_id, scope_kind, scope_value);
CREATE INDEX IF NOT EXISTS idx_preferences_type ON user_preferences(user_id, preference_type);
CREATE INDEX IF NOT EXISTS idx_issues_user ON known_issues(user_id, learned_date);
CREATE INDEX IF NOT EXISTS idx_issues_status ON known_issues(user_id, resolution_status);
CREATE INDEX IF NOT EXISTS idx_issues_severity ON known_issues(user_id, severity);
CREATE INDEX IF NOT EXISTS idx_todos_user ON contextual_todos(user_id, priority);
CREATE INDEX IF NOT EXISTS idx_todos_status ON contextual_todos(user_id, status);
CREATE INDEX IF NOT EXISTS idx_todos_entity ON contextual_todos(related_entity_type, related_entity_id);
CREATE INDEX IF NOT EXISTS idx_audit_entity ON user_context_audit(entity_id, changed_at);
CREATE INDEX IF NOT EXISTS idx_audit_user ON user_context_audit(user_id, changed_at);
`

// requiredTables must all exist before the repositories are handed out
var requiredTables = []string{
	"user_decisions",
	"user_goals",
	"user_preferences",
	"known_issues",
	"contextual_todos",
	"user_context_audit",
}

// migrate brings the schema up to schemaVersion
func (r *Repository) migrate(ctx context.Context) error {
	var version int
	if err := r.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to apply schema v1: %w", err)
	}
	// PRAGMA does not accept bound parameters
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	r.log.Info("schema migrated", "from", version, "to", schemaVersion)
	return nil
}

// verify checks that every required table exists
func (r *Repository) verify(ctx context.Context) error {
	for _, table := range requiredTables {
		var name string
		err := r.db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if err != nil {
			return fmt.Errorf("failed to verify table %s: %w", table, err)
		}
	}
	return nil
}
