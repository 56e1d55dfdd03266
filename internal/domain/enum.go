package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// UnrecognizedValueError is returned by the strict Parse* functions when a
// code does not name any variant. Raw holds the input as received.
type UnrecognizedValueError struct {
	Kind string
	Raw  string
}

func (e *UnrecognizedValueError) Error() string {
	return fmt.Sprintf("unrecognized %s %q", e.Kind, e.Raw)
}

// fromCode maps code onto one of values, or fallback when nothing matches
func fromCode[T ~string](code string, values []T, fallback T) T {
	if v := T(code); slices.Contains(values, v) {
		return v
	}
	return fallback
}

// parseCode is the strict counterpart of fromCode
func parseCode[T ~string](kind, code string, values []T) (T, error) {
	if v := T(code); slices.Contains(values, v) {
		return v, nil
	}
	var zero T
	return zero, &UnrecognizedValueError{Kind: kind, Raw: code}
}

// codes converts a variant list to plain strings, for schema enums
func codes[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// NewID returns a fresh globally unique entity identifier
func NewID() string {
	return uuid.NewString()
}

// Now returns the current time in UTC without a monotonic reading, so values
// compare equal after a round trip through storage.
func Now() time.Time {
	return time.Now().UTC()
}

func clampFloat(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func stringPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}
