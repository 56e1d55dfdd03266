package repository

import "errors"

// Sentinel errors, matched with errors.Is. Implementations wrap them with
// context about the failing operation.
var (
	// ErrNotFound means the target of an update or mutator does not exist.
	// Finders report absence as a nil result instead.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a create collided with an existing id
	ErrConflict = errors.New("conflict")

	// ErrUnavailable means no connection could be obtained, either because
	// the context ended while waiting or the database stayed locked.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrStatement covers prepare, execute and scan failures
	ErrStatement = errors.New("statement failed")

	// ErrEncoding means a mandatory stored value could not be decoded
	ErrEncoding = errors.New("stored value could not be decoded")
)
