package sqlite

import (
	"context"
	"testing"

	"usercontext/internal/domain"
	"usercontext/internal/repository"
)

func TestCreatePreferenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	p := domain.NewUserPreference("u1", "formatter", "gofumpt", domain.PreferenceTypeTool, domain.ProjectScope("")).
		WithRationale("stricter than gofmt").
		WithTags("go", "style").
		WithPriority(2).
		WithAutomation(false)

	_, err := repo.Preferences().Create(ctx, p)
	assertNoError(t, err)

	got, err := repo.Preferences().FindByID(ctx, p.ID)
	assertNoError(t, err)
	assertEqual(t, p, got)
}

func TestFindPreferences(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	rare := domain.NewUserPreference("u1", "rare", "v", domain.PreferenceTypeTool, domain.GlobalScope()).WithPriority(1)
	common := domain.NewUserPreference("u1", "common", "v", domain.PreferenceTypePattern, domain.WorkflowScope("review"))
	common.FrequencyObserved = 9
	manual := domain.NewUserPreference("u1", "manual", "v", domain.PreferenceTypeTool, domain.GlobalScope()).WithAutomation(false)
	manual.FrequencyObserved = 20
	foreign := domain.NewUserPreference("u2", "foreign", "v", domain.PreferenceTypeTool, domain.GlobalScope())

	for _, p := range []*domain.UserPreference{rare, common, manual, foreign} {
		_, err := repo.Preferences().Create(ctx, p)
		assertNoError(t, err)
	}

	all, err := repo.Preferences().FindByUser(ctx, "u1")
	assertNoError(t, err)
	assertEqual(t, 3, len(all))
	assertEqual(t, "rare", all[0].PreferenceName)

	tools, err := repo.Preferences().FindByType(ctx, "u1", domain.PreferenceTypeTool)
	assertNoError(t, err)
	assertEqual(t, 2, len(tools))

	review, err := repo.Preferences().FindByScope(ctx, "u1", domain.WorkflowScope("review"))
	assertNoError(t, err)
	assertEqual(t, 1, len(review))
	assertEqual(t, "common", review[0].PreferenceName)

	auto, err := repo.Preferences().FindAutomationApplicable(ctx, "u1")
	assertNoError(t, err)
	assertEqual(t, 2, len(auto))
	assertEqual(t, "common", auto[0].PreferenceName)
	assertEqual(t, "rare", auto[1].PreferenceName)
}

func TestIncrementFrequency(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	p := domain.NewUserPreference("u1", "n", "v", domain.PreferenceTypeOther, domain.GlobalScope())
	_, err := repo.Preferences().Create(ctx, p)
	assertNoError(t, err)

	for i := 0; i < 3; i++ {
		assertNoError(t, repo.Preferences().IncrementFrequency(ctx, p.ID))
	}

	got, err := repo.Preferences().FindByID(ctx, p.ID)
	assertNoError(t, err)
	assertEqual(t, 4, got.FrequencyObserved)
	assertNotNil(t, got.LastReferenced)

	assertErrorIs(t, repo.Preferences().IncrementFrequency(ctx, "missing"), repository.ErrNotFound)
}

func TestUpdatePreference(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	p := domain.NewUserPreference("u1", "n", "v", domain.PreferenceTypeOther, domain.GlobalScope())
	_, err := repo.Preferences().Create(ctx, p)
	assertNoError(t, err)

	p.PreferenceValue = "v2"
	p.Scope = domain.ProjectScope("p1")
	p.Tags = append(p.Tags, "t")
	_, err = repo.Preferences().Update(ctx, p)
	assertNoError(t, err)

	got, err := repo.Preferences().FindByID(ctx, p.ID)
	assertNoError(t, err)
	assertEqual(t, p, got)

	_, err = repo.Preferences().Update(ctx, domain.NewUserPreference("u1", "g", "v", domain.PreferenceTypeOther, domain.GlobalScope()))
	assertErrorIs(t, err, repository.ErrNotFound)

	ok, err := repo.Preferences().Delete(ctx, p.ID)
	assertNoError(t, err)
	assertEqual(t, true, ok)
}
