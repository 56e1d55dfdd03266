package codec

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"usercontext/internal/domain"
)

func sampleSnapshot() *domain.ContextSnapshot {
	at := time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC)

	d := domain.NewUserDecision("u1", "use sqlite, not postgres", domain.DecisionCategoryArchitecture, domain.ProjectScope("p1")).
		WithReason("embedded").WithConfidence(0.8)
	d.CreatedAt = at

	g := domain.NewUserGoal("u1", "ship v1").WithPriority(2)
	g.AddStep(domain.NewGoalStep(1, "docs"), at)
	g.AddStep(domain.NewGoalStep(2, "tag"), at)
	g.Steps[0].Status = domain.GoalStatusCompleted
	g.CreatedAt = at

	p := domain.NewUserPreference("u1", "indent", "tabs", domain.PreferenceTypePattern, domain.WorkflowScope("review"))
	p.CreatedAt = at

	i := domain.NewKnownIssue("u1", "flaky \"e2e\" suite", domain.IssueSeverityHigh, domain.IssueCategoryWorkflow).
		WithWorkaround("retry once")
	i.AddSymptom("timeouts")
	i.CreatedAt = at
	i.LearnedDate = at

	td := domain.NewContextualTodo("u1", "fix e2e", domain.TodoContextIssueResolution).
		WithRelatedEntity(domain.EntityTypeKnownIssue, i.ID).WithDueDate(at.AddDate(0, 0, 3))
	td.CreatedAt = at

	return &domain.ContextSnapshot{
		UserID:      "u1",
		GeneratedAt: at,
		Decisions:   []domain.UserDecision{*d},
		Goals:       []domain.UserGoal{*g},
		Preferences: []domain.UserPreference{*p},
		Issues:      []domain.KnownIssue{*i},
		Todos:       []domain.ContextualTodo{*td},
	}
}

func TestForFormat(t *testing.T) {
	for _, name := range Formats() {
		exp, err := ForFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, exp.Format())
	}

	_, err := ForFormat("xml")
	assert.Error(t, err)

	_, err = ImporterFor("csv")
	assert.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	snap := sampleSnapshot()
	c := NewJSONCodec()

	var buf bytes.Buffer
	require.NoError(t, c.Export(snap, &buf))
	assert.Contains(t, buf.String(), `"context_scope": "project_id:p1"`)

	got, err := c.Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestYAMLRoundTrip(t *testing.T) {
	snap := sampleSnapshot()
	c := NewYAMLCodec()

	var buf bytes.Buffer
	require.NoError(t, c.Export(snap, &buf))

	var tree map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &tree))
	assert.Equal(t, "u1", tree["user_id"])
	assert.Contains(t, buf.String(), "decision_text: use sqlite, not postgres")

	got, err := c.Parse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestCSVExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVCodec().Export(sampleSnapshot(), &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Equal(t, csvHeader, records[0])

	kinds := make([]string, 0, 5)
	for _, r := range records[1:] {
		kinds = append(kinds, r[0])
	}
	assert.Equal(t, []string{"decision", "goal", "preference", "issue", "todo"}, kinds)
	assert.Equal(t, "use sqlite, not postgres", records[1][3])
	assert.Equal(t, `flaky "e2e" suite`, records[4][3])
	assert.Equal(t, "2024-04-02T09:30:00Z", records[1][9])
}

func TestMarkdownExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownCodec().Export(sampleSnapshot(), &buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# User context: u1\n"))
	for _, heading := range []string{"## Decisions", "## Goals", "## Preferences", "## Known Issues", "## Todos"} {
		assert.Contains(t, out, heading)
	}
	assert.Contains(t, out, "50% complete")
	assert.Contains(t, out, "  - [x] 1. docs")
	assert.Contains(t, out, "due 2024-04-05")
}

func TestMarkdownSkipsEmptySections(t *testing.T) {
	var buf bytes.Buffer
	snap := &domain.ContextSnapshot{UserID: "u1", GeneratedAt: time.Now()}
	require.NoError(t, NewMarkdownCodec().Export(snap, &buf))
	assert.NotContains(t, buf.String(), "##")
}

func TestJSONParseRejectsGarbage(t *testing.T) {
	_, err := NewJSONCodec().Parse(strings.NewReader("{not json"))
	assert.Error(t, err)

	var syntax *json.SyntaxError
	assert.ErrorAs(t, err, &syntax)
}
