package domain

import (
	"errors"
	"fmt"
)

// ErrMissingUser is reported when an entity has no owner
var ErrMissingUser = errors.New("user_id is required")

// InvalidFieldError describes a field that breaks an entity invariant
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Priorities run from 1 (highest) to 5 (lowest)
const (
	MinPriority     = 1
	MaxPriority     = 5
	DefaultPriority = 3
)

// code is a string-backed enumeration
type enumCode interface {
	~string
	Valid() bool
}

// checkCode reports a value outside its enumeration, keeping the raw text
func checkCode[T enumCode](kind string, v T) error {
	if v.Valid() {
		return nil
	}
	return &UnrecognizedValueError{Kind: kind, Raw: string(v)}
}

// appendErr appends err when it is non-nil
func appendErr(errs []error, err error) []error {
	if err != nil {
		return append(errs, err)
	}
	return errs
}

func validatePriority(p int) error {
	if p < MinPriority || p > MaxPriority {
		return &InvalidFieldError{Field: "priority", Reason: fmt.Sprintf("must be within [%d, %d]", MinPriority, MaxPriority)}
	}
	return nil
}

func clampPriority(p int) int {
	return clampInt(p, MinPriority, MaxPriority)
}
