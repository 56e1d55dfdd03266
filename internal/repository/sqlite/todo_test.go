package sqlite

import (
	"context"
	"testing"
	"time"

	"usercontext/internal/domain"
	"usercontext/internal/repository"
)

func TestCreateTodoRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	now := domain.Now()

	td := domain.NewContextualTodo("u1", "adopt gofumpt", domain.TodoContextPreferenceAdoption).
		WithRelatedEntity(domain.EntityTypeUserPreference, "pref-1").
		WithProject("p1").
		WithAssignee("assistant").
		WithDueDate(now.Add(48 * time.Hour)).
		WithPriority(1).
		FromConversation(now)

	_, err := repo.Todos().Create(ctx, td)
	assertNoError(t, err)

	got, err := repo.Todos().FindByID(ctx, td.ID)
	assertNoError(t, err)
	assertEqual(t, td, got)
}

func TestFindTodosOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	undated := domain.NewContextualTodo("u1", "undated", domain.TodoContextOther).WithPriority(2)
	later := domain.NewContextualTodo("u1", "later", domain.TodoContextOther).WithPriority(2).WithDueDate(base.AddDate(0, 0, 5))
	sooner := domain.NewContextualTodo("u1", "sooner", domain.TodoContextOther).WithPriority(2).WithDueDate(base)
	urgent := domain.NewContextualTodo("u1", "urgent", domain.TodoContextOther).WithPriority(1)

	for _, td := range []*domain.ContextualTodo{undated, later, sooner, urgent} {
		_, err := repo.Todos().Create(ctx, td)
		assertNoError(t, err)
	}

	list, err := repo.Todos().FindByUser(ctx, "u1")
	assertNoError(t, err)
	want := []string{"urgent", "sooner", "later", "undated"}
	assertEqual(t, len(want), len(list))
	for n, td := range list {
		assertEqual(t, want[n], td.TaskDescription)
	}
}

func TestFindTodosByEntity(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	a := domain.NewContextualTodo("u1", "a", domain.TodoContextGoalStep).WithRelatedEntity(domain.EntityTypeUserGoal, "g1")
	b := domain.NewContextualTodo("u2", "b", domain.TodoContextGoalStep).WithRelatedEntity(domain.EntityTypeUserGoal, "g1")
	c := domain.NewContextualTodo("u1", "c", domain.TodoContextIssueResolution).WithRelatedEntity(domain.EntityTypeKnownIssue, "g1")
	for _, td := range []*domain.ContextualTodo{a, b, c} {
		_, err := repo.Todos().Create(ctx, td)
		assertNoError(t, err)
	}

	list, err := repo.Todos().FindByEntity(ctx, domain.EntityTypeUserGoal, "g1")
	assertNoError(t, err)
	assertEqual(t, 2, len(list))
	for _, td := range list {
		assertEqual(t, domain.EntityTypeUserGoal, *td.RelatedEntityType)
	}
}

func TestFindTodosByStatusAndProject(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	a := domain.NewContextualTodo("u1", "a", domain.TodoContextOther).WithProject("p1")
	b := domain.NewContextualTodo("u1", "b", domain.TodoContextOther).WithProject("p2")
	b.Status = domain.TodoStatusBlocked
	for _, td := range []*domain.ContextualTodo{a, b} {
		_, err := repo.Todos().Create(ctx, td)
		assertNoError(t, err)
	}

	p1, err := repo.Todos().FindByProject(ctx, "u1", "p1")
	assertNoError(t, err)
	assertEqual(t, 1, len(p1))
	assertEqual(t, a.ID, p1[0].ID)

	blocked, err := repo.Todos().FindByStatus(ctx, "u1", domain.TodoStatusBlocked)
	assertNoError(t, err)
	assertEqual(t, 1, len(blocked))
	assertEqual(t, b.ID, blocked[0].ID)
}

func TestUpdateTodoStatus(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	td := domain.NewContextualTodo("u1", "a", domain.TodoContextOther)
	_, err := repo.Todos().Create(ctx, td)
	assertNoError(t, err)

	assertNoError(t, repo.Todos().UpdateStatus(ctx, td.ID, domain.TodoStatusCompleted))
	got, err := repo.Todos().FindByID(ctx, td.ID)
	assertNoError(t, err)
	assertEqual(t, domain.TodoStatusCompleted, got.Status)
	assertNotNil(t, got.CompletionDate)

	assertErrorIs(t, repo.Todos().UpdateStatus(ctx, "missing", domain.TodoStatusPending), repository.ErrNotFound)
}

func TestUpdateTodo(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	td := domain.NewContextualTodo("u1", "a", domain.TodoContextOther)
	_, err := repo.Todos().Create(ctx, td)
	assertNoError(t, err)

	td.TaskDescription = "b"
	td.WithRelatedEntity(domain.EntityTypeUserDecision, "d1")
	_, err = repo.Todos().Update(ctx, td)
	assertNoError(t, err)

	got, err := repo.Todos().FindByID(ctx, td.ID)
	assertNoError(t, err)
	assertEqual(t, td, got)

	_, err = repo.Todos().Update(ctx, domain.NewContextualTodo("u1", "ghost", domain.TodoContextOther))
	assertErrorIs(t, err, repository.ErrNotFound)

	ok, err := repo.Todos().Delete(ctx, td.ID)
	assertNoError(t, err)
	assertEqual(t, true, ok)
}
