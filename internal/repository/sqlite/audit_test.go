package sqlite

import (
	"context"
	"testing"
	"time"

	"usercontext/internal/domain"
)

func TestAuditAppendAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	create := domain.NewCreateAuditEntry("u1", domain.EntityTypeUserGoal, "g1", `{"id":"g1"}`, "assistant")
	create.ChangedAt = base
	status := "completed"
	change := domain.NewAuditEntry(domain.AuditActionStatusChange, "u1", domain.EntityTypeUserGoal, "g1", nil, &status, "assistant").
		WithReason("all steps done")
	change.ChangedAt = base.Add(time.Hour)
	other := domain.NewCreateAuditEntry("u1", domain.EntityTypeContextualTodo, "t1", `{}`, "cli")
	other.ChangedAt = base.Add(2 * time.Hour)

	for _, e := range []*domain.AuditEntry{create, change, other} {
		assertNoError(t, repo.Audit().Append(ctx, e))
	}

	history, err := repo.Audit().FindByEntity(ctx, "g1")
	assertNoError(t, err)
	assertEqual(t, 2, len(history))
	assertEqual(t, *create, history[0])
	assertEqual(t, *change, history[1])

	recent, err := repo.Audit().FindByUser(ctx, "u1", 2)
	assertNoError(t, err)
	assertEqual(t, 2, len(recent))
	assertEqual(t, other.ID, recent[0].ID)
	assertEqual(t, domain.EntityTypeContextualTodo, recent[0].EntityType)

	all, err := repo.Audit().FindByUser(ctx, "u1", 0)
	assertNoError(t, err)
	assertEqual(t, 3, len(all))
}
