package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewUserDecision(t *testing.T) {
	t.Run("creates decision with defaults", func(t *testing.T) {
		d := NewUserDecision("u1", "use sqlite", DecisionCategoryToolChoice, GlobalScope())

		if d.ID == "" {
			t.Error("expected ID to be generated")
		}
		if d.ConfidenceScore != 0.5 {
			t.Errorf("expected confidence 0.5, got %v", d.ConfidenceScore)
		}
		if d.Status != EntityStatusActive {
			t.Errorf("expected status active, got %s", d.Status)
		}
		if d.UpdatedAt != nil {
			t.Error("expected UpdatedAt to be nil until first mutation")
		}
		if d.CreatedAt.Location() != time.UTC {
			t.Error("expected CreatedAt in UTC")
		}
	})

	t.Run("ids are unique", func(t *testing.T) {
		a := NewUserDecision("u1", "a", DecisionCategoryOther, GlobalScope())
		b := NewUserDecision("u1", "b", DecisionCategoryOther, GlobalScope())
		if a.ID == b.ID {
			t.Error("expected distinct ids")
		}
	})
}

func TestDecisionConfidenceClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.5, 1.0},
		{-0.2, 0.0},
		{0.7, 0.7},
	}

	for _, tt := range tests {
		d := NewUserDecision("u1", "x", DecisionCategoryOther, GlobalScope()).WithConfidence(tt.in)
		if d.ConfidenceScore != tt.want {
			t.Errorf("WithConfidence(%v): expected %v, got %v", tt.in, tt.want, d.ConfidenceScore)
		}
	}
}

func TestDecisionMutators(t *testing.T) {
	d := NewUserDecision("u1", "x", DecisionCategoryOther, GlobalScope())
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	last := first.Add(time.Hour)

	d.IncrementApplied(first)
	d.IncrementApplied(last)

	if d.AppliedCount != 2 {
		t.Errorf("expected applied count 2, got %d", d.AppliedCount)
	}
	if !d.LastApplied.Equal(last) {
		t.Errorf("expected last applied %v, got %v", last, d.LastApplied)
	}

	d.Archive(last)
	if d.Status != EntityStatusArchived {
		t.Errorf("expected archived, got %s", d.Status)
	}
	d.Supersede(last)
	if d.Status != EntityStatusSuperseded {
		t.Errorf("expected superseded, got %s", d.Status)
	}
}

func TestGoalCompletionPercentage(t *testing.T) {
	now := Now()

	t.Run("no steps", func(t *testing.T) {
		g := NewUserGoal("u1", "ship")
		if g.CompletionPercentage() != 0 {
			t.Errorf("expected 0, got %v", g.CompletionPercentage())
		}
	})

	t.Run("one of three", func(t *testing.T) {
		g := NewUserGoal("u1", "ship")
		for i := 1; i <= 3; i++ {
			g.AddStep(NewGoalStep(i, "step"), now)
		}
		g.Steps[0].Status = GoalStatusCompleted

		if got := g.CompletionPercentage(); math.Abs(got-33.33) > 0.01 {
			t.Errorf("expected ~33.33, got %v", got)
		}
	})

	t.Run("all complete", func(t *testing.T) {
		g := NewUserGoal("u1", "ship")
		g.AddStep(NewGoalStep(1, "a"), now)
		g.AddStep(NewGoalStep(2, "b"), now)
		for i := range g.Steps {
			g.Steps[i].Status = GoalStatusCompleted
		}
		if g.CompletionPercentage() != 100 {
			t.Errorf("expected 100, got %v", g.CompletionPercentage())
		}
	})
}

func TestGoalAddStepNumbers(t *testing.T) {
	g := NewUserGoal("u1", "ship")
	g.AddStep(GoalStep{Description: "first"}, Now())
	g.AddStep(GoalStep{Description: "second"}, Now())

	if g.Steps[1].StepNumber != 2 {
		t.Errorf("expected step number 2, got %d", g.Steps[1].StepNumber)
	}
	if g.Steps[0].Status != GoalStatusPlanned {
		t.Errorf("expected planned step, got %s", g.Steps[0].Status)
	}
	if g.UpdatedAt == nil {
		t.Error("expected UpdatedAt after AddStep")
	}

	if !g.SetStepStatus(2, GoalStatusCompleted, Now()) {
		t.Fatal("expected step 2 to exist")
	}
	if g.CompletionPercentage() != 50 {
		t.Errorf("expected 50%%, got %v", g.CompletionPercentage())
	}
	if g.SetStepStatus(7, GoalStatusCompleted, Now()) {
		t.Error("expected missing step to report false")
	}
}

func TestGoalLifecycle(t *testing.T) {
	g := NewUserGoal("u1", "ship").WithPriority(9)
	if g.Priority != 5 {
		t.Errorf("expected priority clamped to 5, got %d", g.Priority)
	}

	now := Now()
	g.MarkStarted(now)
	if g.Status != GoalStatusInProgress {
		t.Errorf("expected in_progress, got %s", g.Status)
	}
	g.MarkBlocked("waiting on review", now)
	if g.Status != GoalStatusBlocked || len(g.Blockers) != 1 {
		t.Errorf("expected blocked with one blocker, got %s %v", g.Status, g.Blockers)
	}
	g.MarkCompleted(now)
	if g.CompletionDate == nil {
		t.Error("expected completion date")
	}
}

func TestPreferenceDefaults(t *testing.T) {
	p := NewUserPreference("u1", "editor", "vim", PreferenceTypeTool, ProjectScope("p1"))

	if !p.AppliesToAutomation {
		t.Error("expected AppliesToAutomation to default to true")
	}
	if p.FrequencyObserved != 1 {
		t.Errorf("expected frequency 1, got %d", p.FrequencyObserved)
	}
	if p.Priority != DefaultPriority {
		t.Errorf("expected priority %d, got %d", DefaultPriority, p.Priority)
	}

	p.IncrementFrequency(Now())
	if p.FrequencyObserved != 2 || p.LastReferenced == nil {
		t.Errorf("expected frequency 2 with last referenced, got %d", p.FrequencyObserved)
	}
	if p.WithPriority(0).Priority != 1 {
		t.Errorf("expected priority clamped to 1, got %d", p.Priority)
	}
}

func TestKnownIssue(t *testing.T) {
	i := NewKnownIssue("u1", "oom on build", IssueSeverityHigh, IssueCategoryPerformance)
	i.AddSymptom("high memory")
	i.AddSymptom("timeouts")
	i.AddAffectedComponent("builder")

	if i.ResolutionStatus != ResolutionStatusUnresolved {
		t.Errorf("expected unresolved, got %s", i.ResolutionStatus)
	}
	if len(i.Symptoms) != 2 || i.Symptoms[1] != "timeouts" {
		t.Errorf("unexpected symptoms %v", i.Symptoms)
	}
	if !i.AffectsComponent("builder") || i.AffectsComponent("build") {
		t.Error("expected exact component membership")
	}

	i.MarkResolved(ResolutionStatusFixed, Now())
	if i.ResolutionDate == nil {
		t.Error("expected resolution date")
	}
}

func TestContextualTodo(t *testing.T) {
	td := NewContextualTodo("u1", "write docs", TodoContextGoalStep).
		WithRelatedEntity(EntityTypeUserGoal, "g1").
		WithPriority(2)

	if td.Status != TodoStatusPending {
		t.Errorf("expected pending, got %s", td.Status)
	}
	if *td.RelatedEntityType != EntityTypeUserGoal || *td.RelatedEntityID != "g1" {
		t.Error("expected related goal g1")
	}
	if err := td.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}

	td.MarkCompleted(Now())
	if td.Status != TodoStatusCompleted || td.CompletionDate == nil {
		t.Error("expected completed todo with completion date")
	}
}

func TestValidate(t *testing.T) {
	t.Run("decision out of range", func(t *testing.T) {
		d := NewUserDecision("u1", "x", DecisionCategoryOther, GlobalScope())
		d.ConfidenceScore = 2
		var fe *InvalidFieldError
		if err := d.Validate(); !errors.As(err, &fe) || fe.Field != "confidence_score" {
			t.Errorf("expected confidence_score error, got %v", err)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		g := NewUserGoal("", "x")
		if err := g.Validate(); !errors.Is(err, ErrMissingUser) {
			t.Errorf("expected ErrMissingUser, got %v", err)
		}
	})

	t.Run("todo links to todo", func(t *testing.T) {
		td := NewContextualTodo("u1", "x", TodoContextOther).WithRelatedEntity(EntityTypeContextualTodo, "t1")
		if err := td.Validate(); err == nil {
			t.Error("expected error linking a todo to a todo")
		}
	})

	t.Run("unknown codes", func(t *testing.T) {
		tests := []struct {
			name   string
			entity interface{ Validate() error }
			raw    string
		}{
			{"decision category", &UserDecision{UserID: "u1", DecisionText: "x", Category: "bogus", Status: EntityStatusActive}, "bogus"},
			{"decision status", &UserDecision{UserID: "u1", DecisionText: "x", Category: DecisionCategoryOther, Status: "deleted"}, "deleted"},
			{"goal step status", func() *UserGoal {
				g := NewUserGoal("u1", "x")
				g.Steps = []GoalStep{{StepNumber: 1, Description: "s", Status: "halfway"}}
				return g
			}(), "halfway"},
			{"preference type", func() *UserPreference {
				p := NewUserPreference("u1", "n", "v", PreferenceTypeOther, GlobalScope())
				p.PreferenceType = "vibe"
				return p
			}(), "vibe"},
			{"issue severity", func() *KnownIssue {
				i := NewKnownIssue("u1", "x", IssueSeverityLow, IssueCategoryOther)
				i.Severity = "meh"
				return i
			}(), "meh"},
			{"todo status", func() *ContextualTodo {
				td := NewContextualTodo("u1", "x", TodoContextOther)
				td.Status = "someday"
				return td
			}(), "someday"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var ue *UnrecognizedValueError
				if err := tt.entity.Validate(); !errors.As(err, &ue) || ue.Raw != tt.raw {
					t.Errorf("expected unrecognized %q, got %v", tt.raw, err)
				}
			})
		}
	})

	t.Run("priority out of range", func(t *testing.T) {
		p := NewUserPreference("u1", "n", "v", PreferenceTypeOther, GlobalScope())
		p.Priority = 0
		if err := p.Validate(); err == nil {
			t.Error("expected priority error")
		}
	})
}

func TestNewCreateAuditEntry(t *testing.T) {
	a := NewCreateAuditEntry("u1", EntityTypeKnownIssue, "i1", `{"id":"i1"}`, "assistant")

	if a.Action != "create" {
		t.Errorf("expected action create, got %s", a.Action)
	}
	if a.OldValue != nil {
		t.Error("expected no old value")
	}
	if a.NewValue == nil || *a.NewValue != `{"id":"i1"}` {
		t.Error("expected new value to be kept")
	}
	if a.ChangedAt.IsZero() {
		t.Error("expected ChangedAt to be set")
	}
}
