package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usercontext/internal/domain"
)

func seedContext(t *testing.T, svc *ContextService) {
	t.Helper()
	ctx := context.Background()

	decisions := []*domain.UserDecision{
		domain.NewUserDecision("u1", "rotate keys", domain.DecisionCategorySecurity, domain.GlobalScope()).WithProject("p1"),
		domain.NewUserDecision("u1", "pin deps", domain.DecisionCategorySecurity, domain.ProjectScope("p2")),
		domain.NewUserDecision("u1", "cache reads", domain.DecisionCategoryPerformance, domain.ProjectScope("p1")).WithProject("p1"),
		domain.NewUserDecision("u2", "other user", domain.DecisionCategorySecurity, domain.GlobalScope()),
	}
	for _, d := range decisions {
		_, err := svc.CreateDecision(ctx, d)
		require.NoError(t, err)
	}

	_, err := svc.CreateGoal(ctx, domain.NewUserGoal("u1", "launch").WithProject("p1"))
	require.NoError(t, err)
	_, err = svc.CreatePreference(ctx, domain.NewUserPreference("u1", "editor", "vim", domain.PreferenceTypeTool, domain.ProjectScope("p1")))
	require.NoError(t, err)

	issue := domain.NewKnownIssue("u1", "slow tests", domain.IssueSeverityMedium, domain.IssueCategoryPerformance).WithProjectContexts("p1")
	issue.AddAffectedComponent("ci")
	_, err = svc.CreateIssue(ctx, issue)
	require.NoError(t, err)
	_, err = svc.CreateIssue(ctx, domain.NewKnownIssue("u1", "bad deploy", domain.IssueSeverityCritical, domain.IssueCategoryDeployment))
	require.NoError(t, err)

	_, err = svc.CreateTodo(ctx, domain.NewContextualTodo("u1", "speed up ci", domain.TodoContextIssueResolution).
		WithRelatedEntity(domain.EntityTypeKnownIssue, issue.ID).WithProject("p1"))
	require.NoError(t, err)
}

func TestQuerySingleKind(t *testing.T) {
	svc, _ := newTestService(t)
	seedContext(t, svc)
	ctx := context.Background()

	snap, err := svc.Query(ctx, "u1", domain.ContextKindDecisions, Filter{FilterCategory: "security"}, 0)
	require.NoError(t, err)
	assert.Len(t, snap.Decisions, 2)
	assert.Nil(t, snap.Goals)

	snap, err = svc.Query(ctx, "u1", domain.ContextKindDecisions, Filter{FilterCategory: "security", FilterProject: "p1"}, 0)
	require.NoError(t, err)
	require.Len(t, snap.Decisions, 1)
	assert.Equal(t, "rotate keys", snap.Decisions[0].DecisionText)

	snap, err = svc.Query(ctx, "u1", domain.ContextKindDecisions, Filter{FilterScope: "project_id:p1"}, 0)
	require.NoError(t, err)
	require.Len(t, snap.Decisions, 1)
	assert.Equal(t, "cache reads", snap.Decisions[0].DecisionText)

	snap, err = svc.Query(ctx, "u1", domain.ContextKindDecisions, nil, 2)
	require.NoError(t, err)
	assert.Len(t, snap.Decisions, 2)
}

func TestQueryIssuesAndTodos(t *testing.T) {
	svc, _ := newTestService(t)
	seedContext(t, svc)
	ctx := context.Background()

	snap, err := svc.Query(ctx, "u1", domain.ContextKindIssues, Filter{FilterStatus: "unresolved"}, 0)
	require.NoError(t, err)
	require.Len(t, snap.Issues, 2)
	assert.Equal(t, domain.IssueSeverityCritical, snap.Issues[0].Severity)

	snap, err = svc.Query(ctx, "u1", domain.ContextKindIssues, Filter{FilterComponent: "ci"}, 0)
	require.NoError(t, err)
	require.Len(t, snap.Issues, 1)
	issueID := snap.Issues[0].ID

	snap, err = svc.Query(ctx, "u1", domain.ContextKindTodos, Filter{FilterEntityType: "known_issue", FilterEntityID: issueID}, 0)
	require.NoError(t, err)
	assert.Len(t, snap.Todos, 1)

	snap, err = svc.Query(ctx, "u1", domain.ContextKindTodos, Filter{FilterEntityID: "nope"}, 0)
	require.NoError(t, err)
	assert.Empty(t, snap.Todos)
}

func TestQueryAll(t *testing.T) {
	svc, _ := newTestService(t)
	seedContext(t, svc)
	ctx := context.Background()

	snap, err := svc.Query(ctx, "u1", domain.ContextKindAll, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, snap.Count())
	assert.Equal(t, "u1", snap.UserID)

	snap, err = svc.Query(ctx, "u1", domain.ContextKindAll, Filter{FilterProject: "p1"}, 0)
	require.NoError(t, err)
	assert.Len(t, snap.Decisions, 2)
	assert.Len(t, snap.Goals, 1)
	assert.Len(t, snap.Preferences, 1)
	assert.Len(t, snap.Issues, 1)
	assert.Len(t, snap.Todos, 1)
}

func TestQueryRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		user   string
		kind   domain.ContextKind
		filter Filter
		limit  int
	}{
		{"missing user", "", domain.ContextKindGoals, nil, 0},
		{"negative limit", "u1", domain.ContextKindGoals, nil, -1},
		{"unknown kind", "u1", domain.ContextKind("memories"), nil, 0},
		{"filter for another kind", "u1", domain.ContextKindGoals, Filter{FilterSeverity: "high"}, 0},
		{"unknown enum value", "u1", domain.ContextKindDecisions, Filter{FilterCategory: "vibes"}, 0},
		{"all with kind filter", "u1", domain.ContextKindAll, Filter{FilterStatus: "active"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Query(ctx, tt.user, tt.kind, tt.filter, tt.limit)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestExport(t *testing.T) {
	svc, _ := newTestService(t)
	seedContext(t, svc)
	ctx := context.Background()

	snap, err := svc.Export(ctx, "u1", []domain.ContextKind{domain.ContextKindGoals, domain.ContextKindIssues})
	require.NoError(t, err)
	assert.Len(t, snap.Goals, 1)
	assert.Len(t, snap.Issues, 2)
	assert.Nil(t, snap.Decisions)

	snap, err = svc.Export(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, 8, snap.Count())
}
