package domain

import (
	"errors"
	"slices"
	"strings"
	"time"
)

type PreferenceType string

const (
	PreferenceTypeTool       PreferenceType = "tool"
	PreferenceTypeFramework  PreferenceType = "framework"
	PreferenceTypeConstraint PreferenceType = "constraint"
	PreferenceTypePattern    PreferenceType = "pattern"
	PreferenceTypeOther      PreferenceType = "other" // fallback
)

var preferenceTypes = []PreferenceType{
	PreferenceTypeTool,
	PreferenceTypeFramework,
	PreferenceTypeConstraint,
	PreferenceTypePattern,
	PreferenceTypeOther,
}

func AllPreferenceTypes() []string { return codes(preferenceTypes) }

func (t PreferenceType) Code() string { return string(t) }

func (t PreferenceType) Valid() bool { return slices.Contains(preferenceTypes, t) }

func PreferenceTypeFromCode(code string) PreferenceType {
	return fromCode(code, preferenceTypes, PreferenceTypeOther)
}

func ParsePreferenceType(code string) (PreferenceType, error) {
	return parseCode("preference type", code, preferenceTypes)
}

// UserPreference is a learned habit or taste. FrequencyObserved counts how
// often it has been seen and starts at one.
type UserPreference struct {
	ID                  string         `json:"id"`
	UserID              string         `json:"user_id"`
	PreferenceName      string         `json:"preference_name"`
	PreferenceValue     string         `json:"preference_value"`
	PreferenceType      PreferenceType `json:"preference_type"`
	Scope               ContextScope   `json:"scope"`
	AppliesToAutomation bool           `json:"applies_to_automation"`
	Rationale           *string        `json:"rationale,omitempty"`
	Priority            int            `json:"priority"`
	FrequencyObserved   int            `json:"frequency_observed"`
	Tags                []string       `json:"tags"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           *time.Time     `json:"updated_at,omitempty"`
	LastReferenced      *time.Time     `json:"last_referenced,omitempty"`
}

func NewUserPreference(userID, name, value string, prefType PreferenceType, scope ContextScope) *UserPreference {
	return &UserPreference{
		ID:                  NewID(),
		UserID:              userID,
		PreferenceName:      name,
		PreferenceValue:     value,
		PreferenceType:      prefType,
		Scope:               scope,
		AppliesToAutomation: true,
		Priority:            DefaultPriority,
		FrequencyObserved:   1,
		Tags:                []string{},
		CreatedAt:           Now(),
	}
}

func (p *UserPreference) WithRationale(rationale string) *UserPreference {
	p.Rationale = stringPtr(rationale)
	return p
}

func (p *UserPreference) WithTags(tags ...string) *UserPreference {
	p.Tags = append(p.Tags, tags...)
	return p
}

// WithPriority sets the priority, clamped to [1, 5]
func (p *UserPreference) WithPriority(priority int) *UserPreference {
	p.Priority = clampPriority(priority)
	return p
}

func (p *UserPreference) WithAutomation(applies bool) *UserPreference {
	p.AppliesToAutomation = applies
	return p
}

// IncrementFrequency records one more observation of the preference
func (p *UserPreference) IncrementFrequency(now time.Time) {
	p.FrequencyObserved++
	p.LastReferenced = timePtr(now)
	p.UpdatedAt = timePtr(now)
}

func (p *UserPreference) Validate() error {
	var errs []error
	if p.UserID == "" {
		errs = append(errs, ErrMissingUser)
	}
	if strings.TrimSpace(p.PreferenceName) == "" {
		errs = append(errs, &InvalidFieldError{Field: "preference_name", Reason: "must not be empty"})
	}
	if err := validatePriority(p.Priority); err != nil {
		errs = append(errs, err)
	}
	if p.FrequencyObserved < 0 {
		errs = append(errs, &InvalidFieldError{Field: "frequency_observed", Reason: "must not be negative"})
	}
	errs = appendErr(errs, checkCode("preference type", p.PreferenceType))
	return errors.Join(errs...)
}
