package sqlite

import (
	"context"
	"testing"
	"time"

	"usercontext/internal/domain"
	"usercontext/internal/repository"
)

func TestCreateIssueRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	i := domain.NewKnownIssue("u1", "builds run out of memory", domain.IssueSeverityHigh, domain.IssueCategoryPerformance).
		WithRootCause("linker parallelism").
		WithWorkaround("limit jobs to 2").
		WithProjectContexts("p1")
	i.AddSymptom("high memory")
	i.AddSymptom("timeouts")
	i.AddAffectedComponent("builder")

	_, err := repo.Issues().Create(ctx, i)
	assertNoError(t, err)

	got, err := repo.Issues().FindByID(ctx, i.ID)
	assertNoError(t, err)
	assertEqual(t, i, got)
	assertEqual(t, []string{"high memory", "timeouts"}, got.Symptoms)
}

func TestFindIssuesByStatusSeverityOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	severities := []domain.IssueSeverity{
		domain.IssueSeverityLow,
		domain.IssueSeverityCritical,
		domain.IssueSeverityMedium,
		domain.IssueSeverityHigh,
	}
	for n, sev := range severities {
		i := domain.NewKnownIssue("u1", sev.Code(), sev, domain.IssueCategoryOther)
		i.LearnedDate = base.Add(time.Duration(n) * time.Hour)
		_, err := repo.Issues().Create(ctx, i)
		assertNoError(t, err)
	}
	fixed := domain.NewKnownIssue("u1", "fixed", domain.IssueSeverityCritical, domain.IssueCategoryOther)
	fixed.ResolutionStatus = domain.ResolutionStatusFixed
	_, err := repo.Issues().Create(ctx, fixed)
	assertNoError(t, err)

	list, err := repo.Issues().FindByStatus(ctx, "u1", domain.ResolutionStatusUnresolved)
	assertNoError(t, err)
	assertEqual(t, 4, len(list))
	want := []string{"critical", "high", "medium", "low"}
	for n, issue := range list {
		assertEqual(t, want[n], issue.IssueDescription)
	}

	// default ordering is newest learned first
	all, err := repo.Issues().FindByUser(ctx, "u1")
	assertNoError(t, err)
	assertEqual(t, 5, len(all))
	assertEqual(t, "fixed", all[0].IssueDescription)
	assertEqual(t, "high", all[1].IssueDescription)
}

func TestFindIssuesByCategoryAndSeverity(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	a := domain.NewKnownIssue("u1", "a", domain.IssueSeverityLow, domain.IssueCategoryData)
	b := domain.NewKnownIssue("u1", "b", domain.IssueSeverityLow, domain.IssueCategoryDeployment)
	c := domain.NewKnownIssue("u2", "c", domain.IssueSeverityLow, domain.IssueCategoryData)
	for _, i := range []*domain.KnownIssue{a, b, c} {
		_, err := repo.Issues().Create(ctx, i)
		assertNoError(t, err)
	}

	data, err := repo.Issues().FindByCategory(ctx, "u1", domain.IssueCategoryData)
	assertNoError(t, err)
	assertEqual(t, 1, len(data))
	assertEqual(t, a.ID, data[0].ID)

	low, err := repo.Issues().FindBySeverity(ctx, "u1", domain.IssueSeverityLow)
	assertNoError(t, err)
	assertEqual(t, 2, len(low))
}

func TestFindIssuesByComponent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	a := domain.NewKnownIssue("u1", "a", domain.IssueSeverityLow, domain.IssueCategoryOther)
	a.AddAffectedComponent("api")
	a.AddAffectedComponent("db")
	b := domain.NewKnownIssue("u1", "b", domain.IssueSeverityLow, domain.IssueCategoryOther)
	b.AddAffectedComponent("api-gateway")
	c := domain.NewKnownIssue("u2", "c", domain.IssueSeverityLow, domain.IssueCategoryOther)
	c.AddAffectedComponent("api")
	for _, i := range []*domain.KnownIssue{a, b, c} {
		_, err := repo.Issues().Create(ctx, i)
		assertNoError(t, err)
	}

	list, err := repo.Issues().FindByComponent(ctx, "u1", "api")
	assertNoError(t, err)
	assertEqual(t, 1, len(list))
	assertEqual(t, a.ID, list[0].ID)

	none, err := repo.Issues().FindByComponent(ctx, "u1", "cache")
	assertNoError(t, err)
	assertEqual(t, 0, len(none))
}

func TestMarkResolved(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	i := domain.NewKnownIssue("u1", "a", domain.IssueSeverityMedium, domain.IssueCategoryOther)
	_, err := repo.Issues().Create(ctx, i)
	assertNoError(t, err)

	assertNoError(t, repo.Issues().MarkResolved(ctx, i.ID, domain.ResolutionStatusWorkaroundAvailable))
	got, err := repo.Issues().FindByID(ctx, i.ID)
	assertNoError(t, err)
	assertEqual(t, domain.ResolutionStatusWorkaroundAvailable, got.ResolutionStatus)
	assertNotNil(t, got.ResolutionDate)

	assertErrorIs(t, repo.Issues().MarkResolved(ctx, "missing", domain.ResolutionStatusFixed), repository.ErrNotFound)
}

func TestIssueStoredValueDrift(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	i := domain.NewKnownIssue("u1", "a", domain.IssueSeverityLow, domain.IssueCategoryData)
	i.AddSymptom("s1")
	_, err := repo.Issues().Create(ctx, i)
	assertNoError(t, err)

	_, err = repo.db.Exec(`UPDATE known_issues
		SET severity = 'sev1', issue_category = 'network', symptoms = 'high memory', resolution_date = 'never'
		WHERE id = ?`, i.ID)
	assertNoError(t, err)

	got, err := repo.Issues().FindByID(ctx, i.ID)
	assertNoError(t, err)
	assertEqual(t, domain.IssueSeverityCritical, got.Severity)
	assertEqual(t, domain.IssueCategoryOther, got.Category)
	assertEqual(t, []string{}, got.Symptoms)
	assertNil(t, got.ResolutionDate)
}

func TestIssueMalformedLearnedDate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	i := domain.NewKnownIssue("u1", "a", domain.IssueSeverityLow, domain.IssueCategoryData)
	_, err := repo.Issues().Create(ctx, i)
	assertNoError(t, err)

	_, err = repo.db.Exec(`UPDATE known_issues SET learned_date = '2024-13-45' WHERE id = ?`, i.ID)
	assertNoError(t, err)

	_, err = repo.Issues().FindByID(ctx, i.ID)
	assertErrorIs(t, err, repository.ErrEncoding)
}

func TestUpdateIssue(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	i := domain.NewKnownIssue("u1", "a", domain.IssueSeverityLow, domain.IssueCategoryData)
	_, err := repo.Issues().Create(ctx, i)
	assertNoError(t, err)

	i.Severity = domain.IssueSeverityHigh
	i.AddAffectedComponent("etl")
	prevention := "validate input"
	i.PreventionNotes = &prevention
	_, err = repo.Issues().Update(ctx, i)
	assertNoError(t, err)

	got, err := repo.Issues().FindByID(ctx, i.ID)
	assertNoError(t, err)
	assertEqual(t, i, got)

	_, err = repo.Issues().Update(ctx, domain.NewKnownIssue("u1", "ghost", domain.IssueSeverityLow, domain.IssueCategoryData))
	assertErrorIs(t, err, repository.ErrNotFound)

	ok, err := repo.Issues().Delete(ctx, "missing")
	assertNoError(t, err)
	assertEqual(t, false, ok)
}
