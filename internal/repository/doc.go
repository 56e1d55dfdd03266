// Package repository defines the data access interfaces for usercontext.
//
// This package provides one repository interface per entity kind, plus an
// append-only audit log. The actual implementation is in the sqlite
// subpackage.
//
// # Contracts
//
// Every repository offers Create, FindByID, FindByUser, one or more filtered
// finders, Update and Delete, plus narrow mutators that touch a single
// concern (a counter or a status) without a full round trip.
//
// - FindByID returns a nil entity and a nil error when the id is absent
// - Update replaces all mutable fields and stamps updated_at
// - Update and the mutators return ErrNotFound when no row matches
// - Delete reports whether a row was removed; a missing id is not an error
//
// # Errors
//
// Failures are wrapped around the sentinels in errors.go so callers can use
// errors.Is: ErrNotFound, ErrConflict, ErrUnavailable, ErrStatement and
// ErrEncoding.
//
// # Deletion
//
// Deletes are hard deletes for every kind. Decisions additionally carry an
// archived and a superseded state, set through Archive and Supersede, for
// callers that want to retire a decision without losing it.
package repository
