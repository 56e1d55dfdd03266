package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usercontext/internal/domain"
	"usercontext/internal/repository"
	"usercontext/internal/repository/sqlite"
)

func newTestService(t *testing.T) (*ContextService, *sqlite.Repository) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo, err := sqlite.Open(context.Background(), ":memory:", sqlite.Options{Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return NewContextService(repo, "tester", nil, log), repo
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("missing user", func(t *testing.T) {
		d := domain.NewUserDecision("", "text", domain.DecisionCategoryOther, domain.GlobalScope())
		_, err := svc.CreateDecision(ctx, d)
		require.ErrorIs(t, err, ErrInvalid)
		assert.ErrorIs(t, err, domain.ErrMissingUser)
	})

	t.Run("empty goal text", func(t *testing.T) {
		_, err := svc.CreateGoal(ctx, domain.NewUserGoal("u1", "  "))
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("todo linked to another todo", func(t *testing.T) {
		td := domain.NewContextualTodo("u1", "x", domain.TodoContextOther).
			WithRelatedEntity(domain.EntityTypeContextualTodo, "t0")
		_, err := svc.CreateTodo(ctx, td)
		assert.ErrorIs(t, err, ErrInvalid)
	})

	trail, err := svc.RecentActivity(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, trail, "rejected input must not be audited")
}

func TestCreateEmitsAudit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	d := domain.NewUserDecision("u1", "use sqlite", domain.DecisionCategoryArchitecture, domain.ProjectScope("p1"))
	_, err := svc.CreateDecision(ctx, d)
	require.NoError(t, err)

	trail, err := svc.AuditTrail(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)

	entry := trail[0]
	assert.Equal(t, domain.AuditActionCreate, entry.Action)
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, domain.EntityTypeUserDecision, entry.EntityType)
	assert.Equal(t, "tester", entry.ChangedBy)
	assert.Nil(t, entry.OldValue)
	require.NotNil(t, entry.NewValue)

	var stored domain.UserDecision
	require.NoError(t, json.Unmarshal([]byte(*entry.NewValue), &stored))
	assert.Equal(t, d.ID, stored.ID)
	assert.Equal(t, domain.ProjectScope("p1"), stored.Scope)
}

func TestUpdateAndDeleteEmitAudit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	g := domain.NewUserGoal("u1", "ship")
	_, err := svc.CreateGoal(ctx, g)
	require.NoError(t, err)

	g.GoalText = "ship v2"
	_, err = svc.UpdateGoal(ctx, g)
	require.NoError(t, err)

	ok, err := svc.DeleteGoal(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	trail, err := svc.AuditTrail(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	assert.Equal(t, domain.AuditActionCreate, trail[0].Action)
	assert.Equal(t, domain.AuditActionUpdate, trail[1].Action)
	assert.Contains(t, *trail[1].OldValue, `"goal_text":"ship"`)
	assert.Contains(t, *trail[1].NewValue, `"goal_text":"ship v2"`)
	assert.Equal(t, domain.AuditActionDelete, trail[2].Action)
	assert.Nil(t, trail[2].NewValue)

	ok, err = svc.DeleteGoal(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	trail, err = svc.AuditTrail(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, trail, 3, "deleting a missing goal records nothing")
}

func TestUpdateKeepsOwnerAndCreation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	d, err := svc.CreateDecision(ctx, domain.NewUserDecision("alice", "use sqlite", domain.DecisionCategoryToolChoice, domain.GlobalScope()))
	require.NoError(t, err)

	stolen := *d
	stolen.UserID = "mallory"
	_, err = svc.UpdateDecision(ctx, &stolen)
	assert.ErrorIs(t, err, ErrInvalid)

	got, err := svc.GetDecision(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, "use sqlite", got.DecisionText)
	created := got.CreatedAt

	edit := *got
	edit.DecisionText = "use sqlite in WAL mode"
	edit.CreatedAt = created.Add(time.Hour)
	updated, err := svc.UpdateDecision(ctx, &edit)
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.UserID)
	assert.True(t, created.Equal(updated.CreatedAt), "created_at comes from the stored row")
}

func TestMissingEntities(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetDecision(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.UpdateIssue(ctx, domain.NewKnownIssue("u1", "x", domain.IssueSeverityLow, domain.IssueCategoryOther))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.ApplyDecision(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.SetTodoStatus(ctx, "missing", domain.TodoStatusCompleted, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.ObservePreference(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStatusChangesAreAudited(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	d := domain.NewUserDecision("u1", "x", domain.DecisionCategoryOther, domain.GlobalScope())
	_, err := svc.CreateDecision(ctx, d)
	require.NoError(t, err)

	archived, err := svc.ArchiveDecision(ctx, d.ID, "replaced by adr-9")
	require.NoError(t, err)
	assert.Equal(t, domain.EntityStatusArchived, archived.Status)

	trail, err := svc.AuditTrail(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	change := trail[1]
	assert.Equal(t, domain.AuditActionStatusChange, change.Action)
	assert.Equal(t, "active", *change.OldValue)
	assert.Equal(t, "archived", *change.NewValue)
	require.NotNil(t, change.Reason)
	assert.Equal(t, "replaced by adr-9", *change.Reason)

	i := domain.NewKnownIssue("u1", "flaky", domain.IssueSeverityHigh, domain.IssueCategoryWorkflow)
	_, err = svc.CreateIssue(ctx, i)
	require.NoError(t, err)
	resolved, err := svc.ResolveIssue(ctx, i.ID, domain.ResolutionStatusFixed, "")
	require.NoError(t, err)
	assert.Equal(t, domain.ResolutionStatusFixed, resolved.ResolutionStatus)
	assert.NotNil(t, resolved.ResolutionDate)
}

func TestCounterBumpsAreNotAudited(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p := domain.NewUserPreference("u1", "indent", "tabs", domain.PreferenceTypePattern, domain.GlobalScope())
	_, err := svc.CreatePreference(ctx, p)
	require.NoError(t, err)

	observed, err := svc.ObservePreference(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, observed.FrequencyObserved)

	trail, err := svc.AuditTrail(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, trail, 1)
}

func TestGoalSteps(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	g := domain.NewUserGoal("u1", "release")
	_, err := svc.CreateGoal(ctx, g)
	require.NoError(t, err)

	_, err = svc.AddGoalStep(ctx, g.ID, "write notes", nil)
	require.NoError(t, err)
	got, err := svc.AddGoalStep(ctx, g.ID, "tag", nil)
	require.NoError(t, err)
	require.Len(t, got.Steps, 2)
	assert.Equal(t, 2, got.Steps[1].StepNumber)

	got, err = svc.SetGoalStepStatus(ctx, g.ID, 1, domain.GoalStatusCompleted)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, got.CompletionPercentage(), 0.001)

	_, err = svc.SetGoalStepStatus(ctx, g.ID, 9, domain.GoalStatusCompleted)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.AddGoalStep(ctx, g.ID, "", nil)
	assert.ErrorIs(t, err, ErrInvalid)

	done, err := svc.SetGoalStatus(ctx, g.ID, domain.GoalStatusCompleted, "")
	require.NoError(t, err)
	assert.NotNil(t, done.CompletionDate)
}

func TestEventsPublished(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	events := make(chan Event, 4)
	svc.Events().Subscribe(events)

	td := domain.NewContextualTodo("u1", "write tests", domain.TodoContextOther)
	_, err := svc.CreateTodo(ctx, td)
	require.NoError(t, err)
	_, err = svc.SetTodoStatus(ctx, td.ID, domain.TodoStatusInProgress, "")
	require.NoError(t, err)

	first := <-events
	assert.Equal(t, EventEntityCreated, first.Type)
	assert.Equal(t, td.ID, first.EntityID)
	second := <-events
	assert.Equal(t, EventStatusChanged, second.Type)
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	a := make(chan Event, 1)
	b := make(chan Event, 1)
	bus.Subscribe(a)
	bus.Subscribe(b)
	require.Equal(t, 2, bus.SubscriberCount())

	bus.Unsubscribe(a)
	assert.Equal(t, 1, bus.SubscriberCount())

	bus.Publish(Event{Type: EventEntityDeleted, EntityID: "d1"})
	assert.Len(t, a, 0)
	assert.Equal(t, "d1", (<-b).EntityID)
}

func TestTodosByEntityRejectsTodoType(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.TodosByEntity(context.Background(), domain.EntityTypeContextualTodo, "t1")
	assert.ErrorIs(t, err, ErrInvalid)
}
