package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usercontext/internal/domain"
)

// isolate keeps config discovery away from the developer's real files
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("USERCONTEXT_CONFIG", "")
	t.Setenv("USERCONTEXT_DB", "")
	t.Setenv("USERCONTEXT_USER", "")
	t.Setenv("USERCONTEXT_LOG_LEVEL", "")
	return dir
}

// run executes one CLI invocation against db and returns its stdout
func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", db, "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := run(t, db, args...)
	require.NoError(t, err, "usercontext %v", args)
	return out
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestDecisionLifecycle(t *testing.T) {
	db := filepath.Join(isolate(t), "ctx.db")

	d := decode[domain.UserDecision](t, mustRun(t, db, "-u", "alice", "-o", "json",
		"decision", "create", "use sqlite for storage",
		"--category", "architecture", "--scope", "project_id:p1", "--confidence", "0.9"))
	assert.Equal(t, "alice", d.UserID)
	assert.Equal(t, domain.DecisionCategoryArchitecture, d.Category)
	assert.Equal(t, "project_id:p1", d.Scope.String())
	assert.InDelta(t, 0.9, d.ConfidenceScore, 1e-9)

	out := mustRun(t, db, "decision", "show", d.ID)
	assert.Contains(t, out, "use sqlite for storage")
	assert.Contains(t, out, "architecture")

	applied := decode[domain.UserDecision](t, mustRun(t, db, "-o", "json", "decision", "apply", d.ID))
	assert.Equal(t, 1, applied.AppliedCount)

	archived := decode[domain.UserDecision](t, mustRun(t, db, "-o", "json", "decision", "archive", d.ID, "--reason", "moved to postgres"))
	assert.Equal(t, domain.EntityStatusArchived, archived.Status)

	list := decode[[]domain.UserDecision](t, mustRun(t, db, "-u", "alice", "-o", "json", "decision", "list", "--status", "archived"))
	require.Len(t, list, 1)
	assert.Equal(t, d.ID, list[0].ID)

	assert.Contains(t, mustRun(t, db, "decision", "delete", d.ID), "Deleted decision "+d.ID)

	_, err := run(t, db, "decision", "show", d.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDecisionUpdateOnlyTouchesChangedFlags(t *testing.T) {
	db := filepath.Join(isolate(t), "ctx.db")

	d := decode[domain.UserDecision](t, mustRun(t, db, "-u", "alice", "-o", "json",
		"decision", "create", "prefer small PRs", "--category", "workflow", "--reason", "easier review"))

	updated := decode[domain.UserDecision](t, mustRun(t, db, "-o", "json", "decision", "update", d.ID, "--confidence", "0.8"))
	assert.Equal(t, "prefer small PRs", updated.DecisionText)
	assert.Equal(t, domain.DecisionCategoryWorkflow, updated.Category)
	require.NotNil(t, updated.Reason)
	assert.Equal(t, "easier review", *updated.Reason)
	assert.InDelta(t, 0.8, updated.ConfidenceScore, 1e-9)
}

func TestGoalSteps(t *testing.T) {
	db := filepath.Join(isolate(t), "ctx.db")

	g := decode[domain.UserGoal](t, mustRun(t, db, "-u", "alice", "-o", "json",
		"goal", "create", "ship v1", "--step", "write code", "--step", "write docs", "--priority", "5"))
	require.Len(t, g.Steps, 2)
	assert.Equal(t, 5, g.Priority)

	out := mustRun(t, db, "goal", "step", g.ID, "1", "completed")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "write docs")

	started := decode[domain.UserGoal](t, mustRun(t, db, "-o", "json", "goal", "start", g.ID))
	assert.Equal(t, domain.GoalStatusInProgress, started.Status)

	_, err := run(t, db, "goal", "step", g.ID, "one", "completed")
	assert.ErrorContains(t, err, "not a number")
}

func TestPreferenceObserve(t *testing.T) {
	db := filepath.Join(isolate(t), "ctx.db")

	p := decode[domain.UserPreference](t, mustRun(t, db, "-u", "alice", "-o", "json",
		"preference", "create", "editor", "neovim", "--type", "tool", "--tag", "editor", "--no-automation"))
	assert.False(t, p.AppliesToAutomation)
	assert.Equal(t, []string{"editor"}, p.Tags)

	observed := decode[domain.UserPreference](t, mustRun(t, db, "-o", "json", "preference", "observe", p.ID))
	assert.Equal(t, 2, observed.FrequencyObserved)
}

func TestIssueResolve(t *testing.T) {
	db := filepath.Join(isolate(t), "ctx.db")

	i := decode[domain.KnownIssue](t, mustRun(t, db, "-u", "alice", "-o", "json",
		"issue", "create", "flaky CI on arm64", "--severity", "high", "--category", "deployment",
		"--symptom", "timeouts", "--component", "ci"))
	assert.Equal(t, []string{"timeouts"}, i.Symptoms)

	i = decode[domain.KnownIssue](t, mustRun(t, db, "-o", "json", "issue", "add-symptom", i.ID, "OOM kills"))
	assert.Equal(t, []string{"timeouts", "OOM kills"}, i.Symptoms)

	resolved := decode[domain.KnownIssue](t, mustRun(t, db, "-o", "json", "issue", "resolve", i.ID, "--reason", "pinned runner"))
	assert.Equal(t, domain.ResolutionStatusFixed, resolved.ResolutionStatus)
	assert.NotNil(t, resolved.ResolutionDate)

	list := decode[[]domain.KnownIssue](t, mustRun(t, db, "-u", "alice", "-o", "json", "issue", "list", "--component", "ci"))
	assert.Len(t, list, 1)
}

func TestTodoEntityLink(t *testing.T) {
	db := filepath.Join(isolate(t), "ctx.db")

	_, err := run(t, db, "-u", "alice", "todo", "create", "migrate", "--entity-type", "user_goal")
	assert.ErrorContains(t, err, "must be given together")

	g := decode[domain.UserGoal](t, mustRun(t, db, "-u", "alice", "-o", "json", "goal", "create", "ship v1"))
	td := decode[domain.ContextualTodo](t, mustRun(t, db, "-u", "alice", "-o", "json",
		"todo", "create", "write changelog", "--context", "goal_step",
		"--entity-type", "user_goal", "--entity-id", g.ID, "--due", "2030-01-31"))
	require.NotNil(t, td.DueDate)
	assert.Equal(t, "2030-01-31", td.DueDate.Format("2006-01-02"))

	linked := decode[[]domain.ContextualTodo](t, mustRun(t, db, "-u", "alice", "-o", "json",
		"todo", "list", "--entity-type", "user_goal", "--entity-id", g.ID))
	require.Len(t, linked, 1)
	assert.Equal(t, td.ID, linked[0].ID)

	done := decode[domain.ContextualTodo](t, mustRun(t, db, "-o", "json", "todo", "done", td.ID))
	assert.Equal(t, domain.TodoStatusCompleted, done.Status)
	assert.NotNil(t, done.CompletionDate)
}

func TestQueryWithFilter(t *testing.T) {
	db := filepath.Join(isolate(t), "ctx.db")

	mustRun(t, db, "-u", "alice", "issue", "create", "disk full", "--severity", "critical")
	mustRun(t, db, "-u", "alice", "issue", "create", "slow build", "--severity", "low")
	mustRun(t, db, "-u", "alice", "preference", "create", "shell", "zsh")

	snap := decode[domain.ContextSnapshot](t, mustRun(t, db, "-u", "alice", "-o", "json",
		"query", "issues", "--filter", "severity=critical"))
	require.Len(t, snap.Issues, 1)
	assert.Equal(t, "disk full", snap.Issues[0].IssueDescription)
	assert.Nil(t, snap.Preferences)

	out := mustRun(t, db, "-u", "alice", "query")
	assert.Contains(t, out, "Known issues")
	assert.Contains(t, out, "shell")

	_, err := run(t, db, "-u", "alice", "query", "goals", "--filter", "severity=low")
	assert.Error(t, err)

	_, err = run(t, db, "-u", "alice", "query", "projects")
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	db := filepath.Join(isolate(t), "ctx.db")

	d := decode[domain.UserDecision](t, mustRun(t, db, "-u", "alice", "-o", "json", "decision", "create", "use tabs"))
	mustRun(t, db, "decision", "supersede", d.ID, "--reason", "switched to spaces")

	trail := decode[[]domain.AuditEntry](t, mustRun(t, db, "-o", "json", "history", d.ID))
	require.Len(t, trail, 2)
	assert.Equal(t, domain.AuditActionCreate, trail[0].Action)
	assert.Equal(t, domain.AuditActionStatusChange, trail[1].Action)

	out := mustRun(t, db, "-u", "alice", "history")
	assert.Contains(t, out, "active → superseded")
	assert.Contains(t, out, "switched to spaces")
}

func TestExportImport(t *testing.T) {
	dir := isolate(t)
	src := filepath.Join(dir, "src.db")
	dst := filepath.Join(dir, "dst.db")
	file := filepath.Join(dir, "alice.yaml")

	mustRun(t, src, "-u", "alice", "decision", "create", "use sqlite")
	mustRun(t, src, "-u", "alice", "goal", "create", "ship v1", "--step", "write code")
	mustRun(t, src, "-u", "alice", "export", "--file", file)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "use sqlite")

	out := mustRun(t, dst, "import", file, "--as-user", "bob")
	assert.Contains(t, out, "2 created")

	snap := decode[domain.ContextSnapshot](t, mustRun(t, dst, "-u", "bob", "-o", "json", "query"))
	assert.Equal(t, 2, snap.Count())

	out = mustRun(t, dst, "import", file, "--as-user", "bob", "--strategy", "skip")
	assert.Contains(t, out, "2 skipped")

	md := mustRun(t, src, "-u", "alice", "export", "--format", "markdown")
	assert.Contains(t, md, "use sqlite")

	_, err = run(t, dst, "import", file, "--format", "csv")
	assert.ErrorContains(t, err, "unsupported import format")
}

func TestGlobalFlagErrors(t *testing.T) {
	db := filepath.Join(isolate(t), "ctx.db")

	_, err := run(t, db, "decision", "list")
	assert.ErrorContains(t, err, "no user given")

	_, err = run(t, db, "-o", "xml", "-u", "alice", "decision", "list")
	assert.ErrorContains(t, err, "unknown output format")

	_, err = run(t, db, "-u", "alice", "decision", "create", "x", "--scope", "team:core")
	assert.ErrorContains(t, err, "--scope")
}

func TestDefaultUserFromEnv(t *testing.T) {
	db := filepath.Join(isolate(t), "ctx.db")
	t.Setenv("USERCONTEXT_USER", "carol")

	p := decode[domain.UserPreference](t, mustRun(t, db, "-o", "json", "preference", "create", "theme", "dark"))
	assert.Equal(t, "carol", p.UserID)
}

func TestConfigInitAndShow(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "ctx.db")
	path := filepath.Join(dir, "conf", "usercontext.yaml")

	out := mustRun(t, db, "-u", "dave", "config", "init", "--path", path)
	assert.Contains(t, out, "Wrote "+path)

	_, err := run(t, db, "config", "init", "--path", path)
	assert.ErrorContains(t, err, "already exists")

	out = mustRun(t, db, "--config", path, "config", "show")
	assert.Contains(t, out, path)
	assert.Contains(t, out, "Default user: dave")

	_, err = os.Stat(db)
	assert.True(t, os.IsNotExist(err), "config commands must not create the database")
}
