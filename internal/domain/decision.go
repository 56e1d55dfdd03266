package domain

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// DecisionCategory classifies what a decision is about
type DecisionCategory string

const (
	DecisionCategoryArchitecture DecisionCategory = "architecture"
	DecisionCategoryToolChoice   DecisionCategory = "tool_choice"
	DecisionCategoryConstraint   DecisionCategory = "constraint"
	DecisionCategoryWorkflow     DecisionCategory = "workflow"
	DecisionCategoryPerformance  DecisionCategory = "performance"
	DecisionCategorySecurity     DecisionCategory = "security"
	DecisionCategoryOther        DecisionCategory = "other" // fallback
)

var decisionCategories = []DecisionCategory{
	DecisionCategoryArchitecture,
	DecisionCategoryToolChoice,
	DecisionCategoryConstraint,
	DecisionCategoryWorkflow,
	DecisionCategoryPerformance,
	DecisionCategorySecurity,
	DecisionCategoryOther,
}

// AllDecisionCategories lists every category code
func AllDecisionCategories() []string { return codes(decisionCategories) }

func (c DecisionCategory) Code() string { return string(c) }

func (c DecisionCategory) Valid() bool { return slices.Contains(decisionCategories, c) }

// DecisionCategoryFromCode never fails; unknown codes map to other
func DecisionCategoryFromCode(code string) DecisionCategory {
	return fromCode(code, decisionCategories, DecisionCategoryOther)
}

// ParseDecisionCategory decodes code strictly
func ParseDecisionCategory(code string) (DecisionCategory, error) {
	return parseCode("decision category", code, decisionCategories)
}

// UserDecision records a choice the user made, so the assistant can apply it
// again without asking.
type UserDecision struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	DecisionText     string           `json:"decision_text"`
	Reason           *string          `json:"reason,omitempty"`
	Category         DecisionCategory `json:"decision_category"`
	Scope            ContextScope     `json:"context_scope"`
	RelatedProjectID *string          `json:"related_project_id,omitempty"`
	ConfidenceScore  float64          `json:"confidence_score"`
	ReferencedItems  []string         `json:"referenced_items"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        *time.Time       `json:"updated_at,omitempty"`
	AppliedCount     int              `json:"applied_count"`
	LastApplied      *time.Time       `json:"last_applied,omitempty"`
	Status           EntityStatus     `json:"status"`
}

// DefaultConfidence is the score assigned to a new decision
const DefaultConfidence = 0.5

// NewUserDecision creates an active decision with default confidence
func NewUserDecision(userID, text string, category DecisionCategory, scope ContextScope) *UserDecision {
	return &UserDecision{
		ID:              NewID(),
		UserID:          userID,
		DecisionText:    text,
		Category:        category,
		Scope:           scope,
		ConfidenceScore: DefaultConfidence,
		ReferencedItems: []string{},
		CreatedAt:       Now(),
		Status:          EntityStatusActive,
	}
}

func (d *UserDecision) WithReason(reason string) *UserDecision {
	d.Reason = stringPtr(reason)
	return d
}

func (d *UserDecision) WithProject(projectID string) *UserDecision {
	d.RelatedProjectID = stringPtr(projectID)
	return d
}

// WithConfidence sets the confidence score, clamped to [0, 1]
func (d *UserDecision) WithConfidence(score float64) *UserDecision {
	d.ConfidenceScore = clampFloat(score, 0, 1)
	return d
}

func (d *UserDecision) WithReferencedItems(items ...string) *UserDecision {
	d.ReferencedItems = append(d.ReferencedItems, items...)
	return d
}

// IncrementApplied records one more application of the decision
func (d *UserDecision) IncrementApplied(now time.Time) {
	d.AppliedCount++
	d.LastApplied = timePtr(now)
	d.UpdatedAt = timePtr(now)
}

func (d *UserDecision) Archive(now time.Time) {
	d.Status = EntityStatusArchived
	d.UpdatedAt = timePtr(now)
}

func (d *UserDecision) Supersede(now time.Time) {
	d.Status = EntityStatusSuperseded
	d.UpdatedAt = timePtr(now)
}

// Validate checks the invariants the builders enforce
func (d *UserDecision) Validate() error {
	var errs []error
	if d.UserID == "" {
		errs = append(errs, ErrMissingUser)
	}
	if strings.TrimSpace(d.DecisionText) == "" {
		errs = append(errs, &InvalidFieldError{Field: "decision_text", Reason: "must not be empty"})
	}
	if d.ConfidenceScore < 0 || d.ConfidenceScore > 1 {
		errs = append(errs, &InvalidFieldError{Field: "confidence_score", Reason: "must be within [0, 1]"})
	}
	if d.AppliedCount < 0 {
		errs = append(errs, &InvalidFieldError{Field: "applied_count", Reason: "must not be negative"})
	}
	errs = appendErr(errs, checkCode("decision category", d.Category))
	errs = appendErr(errs, checkCode("entity status", d.Status))
	return errors.Join(errs...)
}
