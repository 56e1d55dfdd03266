// Package domain defines the core types for the usercontext assistant memory.
//
// This package contains the five entity kinds the assistant remembers about a
// user, the closed enumerations that classify them, and the scope value type
// that says where a decision or preference applies.
//
// # Entities
//
// UserDecision records a choice the user made, with a confidence score and a
// counter of how often it has been applied.
//
// UserGoal tracks work towards an outcome as an ordered list of GoalStep
// values. Its completion percentage is derived from the steps.
//
// UserPreference is a learned habit, counted each time it is observed.
//
// KnownIssue catalogues a problem, its symptoms and any workaround.
//
// ContextualTodo is a task, optionally linked to one of the other four kinds
// by an EntityType and id pair.
//
// # Enumerations
//
// Every enumeration has a Code method and two decoders. XxxFromCode never
// fails and maps unrecognized input to a documented fallback; it is what the
// storage layer uses to tolerate schema drift. ParseXxx is strict and returns
// an *UnrecognizedValueError holding the raw input.
//
// # Scope
//
// ContextScope is global, tied to a project, or tied to a named workflow. Its
// string form ("global", "project_id:<id>", "workflow:<name>") is the wire
// encoding. DecodeScope maps anything else to the global scope.
//
// # Invariants
//
// Builders clamp scores and priorities into range. Validate methods check the
// same invariants and are called before writes; values loaded from storage
// are not re-validated.
//
// # Design Principles
//
// - No database access; ids come from github.com/google/uuid
// - Timestamps are UTC
// - List fields preserve insertion order and may hold duplicates
package domain
