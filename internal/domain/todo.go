package domain

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// TodoContextType says why a todo exists
type TodoContextType string

const (
	TodoContextDecisionImplementation TodoContextType = "decision_implementation"
	TodoContextGoalStep               TodoContextType = "goal_step"
	TodoContextIssueResolution        TodoContextType = "issue_resolution"
	TodoContextPreferenceAdoption     TodoContextType = "preference_adoption"
	TodoContextOther                  TodoContextType = "other" // fallback
)

var todoContextTypes = []TodoContextType{
	TodoContextDecisionImplementation,
	TodoContextGoalStep,
	TodoContextIssueResolution,
	TodoContextPreferenceAdoption,
	TodoContextOther,
}

func AllTodoContextTypes() []string { return codes(todoContextTypes) }

func (t TodoContextType) Code() string { return string(t) }

func (t TodoContextType) Valid() bool { return slices.Contains(todoContextTypes, t) }

func TodoContextTypeFromCode(code string) TodoContextType {
	return fromCode(code, todoContextTypes, TodoContextOther)
}

func ParseTodoContextType(code string) (TodoContextType, error) {
	return parseCode("todo context type", code, todoContextTypes)
}

type TodoStatus string

const (
	TodoStatusPending    TodoStatus = "pending" // fallback
	TodoStatusInProgress TodoStatus = "in_progress"
	TodoStatusCompleted  TodoStatus = "completed"
	TodoStatusBlocked    TodoStatus = "blocked"
)

var todoStatuses = []TodoStatus{TodoStatusPending, TodoStatusInProgress, TodoStatusCompleted, TodoStatusBlocked}

func AllTodoStatuses() []string { return codes(todoStatuses) }

func (s TodoStatus) Code() string { return string(s) }

func (s TodoStatus) Valid() bool { return slices.Contains(todoStatuses, s) }

func TodoStatusFromCode(code string) TodoStatus {
	return fromCode(code, todoStatuses, TodoStatusPending)
}

func ParseTodoStatus(code string) (TodoStatus, error) {
	return parseCode("todo status", code, todoStatuses)
}

// ContextualTodo is a task that optionally points at a decision, goal, issue
// or preference through RelatedEntityType and RelatedEntityID.
type ContextualTodo struct {
	ID                          string          `json:"id"`
	UserID                      string          `json:"user_id"`
	TaskDescription             string          `json:"task_description"`
	ContextType                 TodoContextType `json:"context_type"`
	RelatedEntityID             *string         `json:"related_entity_id,omitempty"`
	RelatedEntityType           *EntityType     `json:"related_entity_type,omitempty"`
	ProjectID                   *string         `json:"project_id,omitempty"`
	AssignedTo                  *string         `json:"assigned_to,omitempty"`
	DueDate                     *time.Time      `json:"due_date,omitempty"`
	Status                      TodoStatus      `json:"status"`
	Priority                    int             `json:"priority"`
	CreatedFromConversationDate *time.Time      `json:"created_from_conversation_date,omitempty"`
	CreatedAt                   time.Time       `json:"created_at"`
	UpdatedAt                   *time.Time      `json:"updated_at,omitempty"`
	CompletionDate              *time.Time      `json:"completion_date,omitempty"`
}

func NewContextualTodo(userID, task string, contextType TodoContextType) *ContextualTodo {
	return &ContextualTodo{
		ID:              NewID(),
		UserID:          userID,
		TaskDescription: task,
		ContextType:     contextType,
		Status:          TodoStatusPending,
		Priority:        DefaultPriority,
		CreatedAt:       Now(),
	}
}

// WithRelatedEntity links the todo to another entity
func (t *ContextualTodo) WithRelatedEntity(kind EntityType, id string) *ContextualTodo {
	t.RelatedEntityType = &kind
	t.RelatedEntityID = stringPtr(id)
	return t
}

func (t *ContextualTodo) WithProject(projectID string) *ContextualTodo {
	t.ProjectID = stringPtr(projectID)
	return t
}

func (t *ContextualTodo) WithAssignee(assignee string) *ContextualTodo {
	t.AssignedTo = stringPtr(assignee)
	return t
}

func (t *ContextualTodo) WithDueDate(due time.Time) *ContextualTodo {
	t.DueDate = timePtr(due)
	return t
}

// WithPriority sets the priority, clamped to [1, 5]
func (t *ContextualTodo) WithPriority(priority int) *ContextualTodo {
	t.Priority = clampPriority(priority)
	return t
}

// FromConversation stamps when the todo was captured in conversation
func (t *ContextualTodo) FromConversation(at time.Time) *ContextualTodo {
	t.CreatedFromConversationDate = timePtr(at)
	return t
}

func (t *ContextualTodo) MarkStarted(now time.Time) {
	t.Status = TodoStatusInProgress
	t.UpdatedAt = timePtr(now)
}

func (t *ContextualTodo) MarkCompleted(now time.Time) {
	t.Status = TodoStatusCompleted
	t.CompletionDate = timePtr(now)
	t.UpdatedAt = timePtr(now)
}

func (t *ContextualTodo) Validate() error {
	var errs []error
	if t.UserID == "" {
		errs = append(errs, ErrMissingUser)
	}
	if strings.TrimSpace(t.TaskDescription) == "" {
		errs = append(errs, &InvalidFieldError{Field: "task_description", Reason: "must not be empty"})
	}
	if err := validatePriority(t.Priority); err != nil {
		errs = append(errs, err)
	}
	if (t.RelatedEntityID == nil) != (t.RelatedEntityType == nil) {
		errs = append(errs, &InvalidFieldError{Field: "related_entity", Reason: "id and type must be set together"})
	}
	if t.RelatedEntityType != nil && !t.RelatedEntityType.Linkable() {
		errs = append(errs, &InvalidFieldError{Field: "related_entity_type", Reason: "must name a decision, goal, issue or preference"})
	}
	errs = appendErr(errs, checkCode("todo context type", t.ContextType))
	errs = appendErr(errs, checkCode("todo status", t.Status))
	return errors.Join(errs...)
}
