package domain

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// IssueSeverity orders critical > high > medium > low
type IssueSeverity string

const (
	IssueSeverityCritical IssueSeverity = "critical" // fallback
	IssueSeverityHigh     IssueSeverity = "high"
	IssueSeverityMedium   IssueSeverity = "medium"
	IssueSeverityLow      IssueSeverity = "low"
)

// most severe first
var issueSeverities = []IssueSeverity{IssueSeverityCritical, IssueSeverityHigh, IssueSeverityMedium, IssueSeverityLow}

func AllIssueSeverities() []string { return codes(issueSeverities) }

func (s IssueSeverity) Code() string { return string(s) }

func (s IssueSeverity) Valid() bool { return slices.Contains(issueSeverities, s) }

// Rank returns 0 for critical through 3 for low. Unknown values rank as
// critical, consistent with IssueSeverityFromCode.
func (s IssueSeverity) Rank() int {
	if i := slices.Index(issueSeverities, s); i >= 0 {
		return i
	}
	return 0
}

// IssueSeverityFromCode never fails. Unknown codes map to critical, the most
// severe variant, so an unreadable severity is never understated.
func IssueSeverityFromCode(code string) IssueSeverity {
	return fromCode(code, issueSeverities, IssueSeverityCritical)
}

func ParseIssueSeverity(code string) (IssueSeverity, error) {
	return parseCode("issue severity", code, issueSeverities)
}

type IssueCategory string

const (
	IssueCategoryIntegration IssueCategory = "integration"
	IssueCategoryPerformance IssueCategory = "performance"
	IssueCategoryDeployment  IssueCategory = "deployment"
	IssueCategoryData        IssueCategory = "data"
	IssueCategoryWorkflow    IssueCategory = "workflow"
	IssueCategoryOther       IssueCategory = "other" // fallback
)

var issueCategories = []IssueCategory{
	IssueCategoryIntegration,
	IssueCategoryPerformance,
	IssueCategoryDeployment,
	IssueCategoryData,
	IssueCategoryWorkflow,
	IssueCategoryOther,
}

func AllIssueCategories() []string { return codes(issueCategories) }

func (c IssueCategory) Code() string { return string(c) }

func (c IssueCategory) Valid() bool { return slices.Contains(issueCategories, c) }

func IssueCategoryFromCode(code string) IssueCategory {
	return fromCode(code, issueCategories, IssueCategoryOther)
}

func ParseIssueCategory(code string) (IssueCategory, error) {
	return parseCode("issue category", code, issueCategories)
}

// ResolutionStatus tracks an issue's lifecycle independently of severity
type ResolutionStatus string

const (
	ResolutionStatusUnresolved          ResolutionStatus = "unresolved" // fallback
	ResolutionStatusWorkaroundAvailable ResolutionStatus = "workaround_available"
	ResolutionStatusFixed               ResolutionStatus = "fixed"
	ResolutionStatusNoActionNeeded      ResolutionStatus = "no_action_needed"
)

var resolutionStatuses = []ResolutionStatus{
	ResolutionStatusUnresolved,
	ResolutionStatusWorkaroundAvailable,
	ResolutionStatusFixed,
	ResolutionStatusNoActionNeeded,
}

func AllResolutionStatuses() []string { return codes(resolutionStatuses) }

func (s ResolutionStatus) Code() string { return string(s) }

func (s ResolutionStatus) Valid() bool { return slices.Contains(resolutionStatuses, s) }

func ResolutionStatusFromCode(code string) ResolutionStatus {
	return fromCode(code, resolutionStatuses, ResolutionStatusUnresolved)
}

func ParseResolutionStatus(code string) (ResolutionStatus, error) {
	return parseCode("resolution status", code, resolutionStatuses)
}

// KnownIssue is a problem the user has run into before, with what is known
// about avoiding it.
type KnownIssue struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"user_id"`
	IssueDescription   string           `json:"issue_description"`
	Symptoms           []string         `json:"symptoms"`
	RootCause          *string          `json:"root_cause,omitempty"`
	Workaround         *string          `json:"workaround,omitempty"`
	PermanentSolution  *string          `json:"permanent_solution,omitempty"`
	AffectedComponents []string         `json:"affected_components"`
	Severity           IssueSeverity    `json:"severity"`
	Category           IssueCategory    `json:"issue_category"`
	LearnedDate        time.Time        `json:"learned_date"`
	ResolutionStatus   ResolutionStatus `json:"resolution_status"`
	ResolutionDate     *time.Time       `json:"resolution_date,omitempty"`
	PreventionNotes    *string          `json:"prevention_notes,omitempty"`
	ProjectContexts    []string         `json:"project_contexts"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          *time.Time       `json:"updated_at,omitempty"`
}

func NewKnownIssue(userID, description string, severity IssueSeverity, category IssueCategory) *KnownIssue {
	now := Now()
	return &KnownIssue{
		ID:                 NewID(),
		UserID:             userID,
		IssueDescription:   description,
		Symptoms:           []string{},
		AffectedComponents: []string{},
		Severity:           severity,
		Category:           category,
		LearnedDate:        now,
		ResolutionStatus:   ResolutionStatusUnresolved,
		ProjectContexts:    []string{},
		CreatedAt:          now,
	}
}

func (i *KnownIssue) WithWorkaround(workaround string) *KnownIssue {
	i.Workaround = stringPtr(workaround)
	return i
}

func (i *KnownIssue) WithRootCause(cause string) *KnownIssue {
	i.RootCause = stringPtr(cause)
	return i
}

func (i *KnownIssue) WithPermanentSolution(solution string) *KnownIssue {
	i.PermanentSolution = stringPtr(solution)
	return i
}

func (i *KnownIssue) WithProjectContexts(projects ...string) *KnownIssue {
	i.ProjectContexts = append(i.ProjectContexts, projects...)
	return i
}

func (i *KnownIssue) AddSymptom(symptom string) {
	i.Symptoms = append(i.Symptoms, symptom)
}

func (i *KnownIssue) AddAffectedComponent(component string) {
	i.AffectedComponents = append(i.AffectedComponents, component)
}

// AffectsComponent reports exact membership in AffectedComponents
func (i *KnownIssue) AffectsComponent(component string) bool {
	return slices.Contains(i.AffectedComponents, component)
}

func (i *KnownIssue) MarkResolved(status ResolutionStatus, now time.Time) {
	i.ResolutionStatus = status
	i.ResolutionDate = timePtr(now)
	i.UpdatedAt = timePtr(now)
}

func (i *KnownIssue) Validate() error {
	var errs []error
	if i.UserID == "" {
		errs = append(errs, ErrMissingUser)
	}
	if strings.TrimSpace(i.IssueDescription) == "" {
		errs = append(errs, &InvalidFieldError{Field: "issue_description", Reason: "must not be empty"})
	}
	if i.LearnedDate.IsZero() {
		errs = append(errs, &InvalidFieldError{Field: "learned_date", Reason: "must be set"})
	}
	errs = appendErr(errs, checkCode("issue severity", i.Severity))
	errs = appendErr(errs, checkCode("issue category", i.Category))
	errs = appendErr(errs, checkCode("resolution status", i.ResolutionStatus))
	return errors.Join(errs...)
}
