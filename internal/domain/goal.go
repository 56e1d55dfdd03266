package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// GoalStatus is shared by goals and their steps
type GoalStatus string

const (
	GoalStatusPlanned    GoalStatus = "planned" // fallback
	GoalStatusInProgress GoalStatus = "in_progress"
	GoalStatusCompleted  GoalStatus = "completed"
	GoalStatusBlocked    GoalStatus = "blocked"
)

var goalStatuses = []GoalStatus{GoalStatusPlanned, GoalStatusInProgress, GoalStatusCompleted, GoalStatusBlocked}

func AllGoalStatuses() []string { return codes(goalStatuses) }

func (s GoalStatus) Code() string { return string(s) }

func (s GoalStatus) Valid() bool { return slices.Contains(goalStatuses, s) }

// GoalStatusFromCode never fails; unknown codes map to planned
func GoalStatusFromCode(code string) GoalStatus {
	return fromCode(code, goalStatuses, GoalStatusPlanned)
}

func ParseGoalStatus(code string) (GoalStatus, error) {
	return parseCode("goal status", code, goalStatuses)
}

// GoalStep is one ordered unit of work within a goal
type GoalStep struct {
	StepNumber  int        `json:"step_number"`
	Description string     `json:"description"`
	Status      GoalStatus `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func NewGoalStep(number int, description string) GoalStep {
	return GoalStep{
		StepNumber:  number,
		Description: description,
		Status:      GoalStatusPlanned,
	}
}

// UserGoal is something the user is working towards
type UserGoal struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"user_id"`
	GoalText             string     `json:"goal_text"`
	Description          *string    `json:"description,omitempty"`
	ProjectID            *string    `json:"project_id,omitempty"`
	Status               GoalStatus `json:"status"`
	Priority             int        `json:"priority"`
	Steps                []GoalStep `json:"steps"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`
	CompletionTargetDate *time.Time `json:"completion_target_date,omitempty"`
	CompletionDate       *time.Time `json:"completion_date,omitempty"`
	Blockers             []string   `json:"blockers"`
	RelatedTodos         []string   `json:"related_todos"`
}

func NewUserGoal(userID, text string) *UserGoal {
	return &UserGoal{
		ID:           NewID(),
		UserID:       userID,
		GoalText:     text,
		Status:       GoalStatusPlanned,
		Priority:     DefaultPriority,
		Steps:        []GoalStep{},
		CreatedAt:    Now(),
		Blockers:     []string{},
		RelatedTodos: []string{},
	}
}

func (g *UserGoal) WithDescription(desc string) *UserGoal {
	g.Description = stringPtr(desc)
	return g
}

func (g *UserGoal) WithProject(projectID string) *UserGoal {
	g.ProjectID = stringPtr(projectID)
	return g
}

// WithPriority sets the priority, clamped to [1, 5]
func (g *UserGoal) WithPriority(priority int) *UserGoal {
	g.Priority = clampPriority(priority)
	return g
}

func (g *UserGoal) WithTargetDate(target time.Time) *UserGoal {
	g.CompletionTargetDate = timePtr(target)
	return g
}

// AddStep appends a step. When step.StepNumber is zero it is numbered after
// the last step.
func (g *UserGoal) AddStep(step GoalStep, now time.Time) {
	if step.StepNumber == 0 {
		step.StepNumber = len(g.Steps) + 1
	}
	if step.Status == "" {
		step.Status = GoalStatusPlanned
	}
	g.Steps = append(g.Steps, step)
	g.UpdatedAt = timePtr(now)
}

// SetStepStatus changes the status of the step with the given number.
// It reports false when no such step exists.
func (g *UserGoal) SetStepStatus(number int, status GoalStatus, now time.Time) bool {
	for i := range g.Steps {
		if g.Steps[i].StepNumber == number {
			g.Steps[i].Status = status
			g.UpdatedAt = timePtr(now)
			return true
		}
	}
	return false
}

func (g *UserGoal) MarkStarted(now time.Time) {
	g.Status = GoalStatusInProgress
	g.UpdatedAt = timePtr(now)
}

func (g *UserGoal) MarkCompleted(now time.Time) {
	g.Status = GoalStatusCompleted
	g.CompletionDate = timePtr(now)
	g.UpdatedAt = timePtr(now)
}

// MarkBlocked flags the goal and records why
func (g *UserGoal) MarkBlocked(reason string, now time.Time) {
	g.Status = GoalStatusBlocked
	if reason != "" {
		g.Blockers = append(g.Blockers, reason)
	}
	g.UpdatedAt = timePtr(now)
}

// CompletionPercentage is derived from the steps and never stored
func (g *UserGoal) CompletionPercentage() float64 {
	if len(g.Steps) == 0 {
		return 0
	}
	completed := 0
	for _, s := range g.Steps {
		if s.Status == GoalStatusCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(g.Steps)) * 100
}

func (g *UserGoal) Validate() error {
	var errs []error
	if g.UserID == "" {
		errs = append(errs, ErrMissingUser)
	}
	if strings.TrimSpace(g.GoalText) == "" {
		errs = append(errs, &InvalidFieldError{Field: "goal_text", Reason: "must not be empty"})
	}
	if err := validatePriority(g.Priority); err != nil {
		errs = append(errs, err)
	}
	errs = appendErr(errs, checkCode("goal status", g.Status))
	for _, s := range g.Steps {
		if err := checkCode("goal status", s.Status); err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", s.StepNumber, err))
		}
	}
	return errors.Join(errs...)
}
