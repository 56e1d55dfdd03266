package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"usercontext/internal/domain"
	"usercontext/internal/repository"
)

// DefaultActor is recorded as changed_by when no actor is configured
const DefaultActor = "assistant"

// ErrInvalid wraps validation failures of caller input
var ErrInvalid = errors.New("invalid input")

// ContextService provides the operations on a user's context. It validates
// input, delegates to the repositories and records an audit entry for every
// mutation.
type ContextService struct {
	store    repository.Store
	actor    string
	eventBus *EventBus
	log      *slog.Logger
}

// NewContextService creates a new context service. eventBus and log may be nil.
func NewContextService(store repository.Store, actor string, eventBus *EventBus, log *slog.Logger) *ContextService {
	if actor == "" {
		actor = DefaultActor
	}
	if eventBus == nil {
		eventBus = NewEventBus()
	}
	if log == nil {
		log = slog.Default()
	}
	return &ContextService{
		store:    store,
		actor:    actor,
		eventBus: eventBus,
		log:      log.With("component", "service"),
	}
}

// Actor returns the name recorded as changed_by
func (s *ContextService) Actor() string {
	return s.actor
}

// Events returns the bus mutations are published on
func (s *ContextService) Events() *EventBus {
	return s.eventBus
}

type validator interface {
	Validate() error
}

func validate(v validator) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalid, err)
}

// sameOwner rejects an update that would move an entity to another user
func sameOwner(kind, id, stored, given string) error {
	if stored != given {
		return invalid(fmt.Errorf("%s %s belongs to another user", kind, id))
	}
	return nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, repository.ErrNotFound)
}

// Audit helpers. The mutation has already committed when these run, so a
// failed append is logged and swallowed.

func (s *ContextService) record(ctx context.Context, event EventType, entry *domain.AuditEntry) {
	if err := s.store.Audit().Append(ctx, entry); err != nil {
		s.log.Error("failed to append audit entry",
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
			"action", entry.Action,
			"error", err)
	}
	s.eventBus.Publish(Event{
		Type:       event,
		UserID:     entry.UserID,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
	})
}

func (s *ContextService) recordCreate(ctx context.Context, userID string, kind domain.EntityType, id string, v any) {
	entry := domain.NewAuditEntry(domain.AuditActionCreate, userID, kind, id, nil, s.encode(v), s.actor)
	s.record(ctx, EventEntityCreated, entry)
}

func (s *ContextService) recordUpdate(ctx context.Context, userID string, kind domain.EntityType, id string, old, updated any) {
	entry := domain.NewAuditEntry(domain.AuditActionUpdate, userID, kind, id, s.encode(old), s.encode(updated), s.actor)
	s.record(ctx, EventEntityUpdated, entry)
}

func (s *ContextService) recordDelete(ctx context.Context, userID string, kind domain.EntityType, id string, old any) {
	entry := domain.NewAuditEntry(domain.AuditActionDelete, userID, kind, id, s.encode(old), nil, s.actor)
	s.record(ctx, EventEntityDeleted, entry)
}

func (s *ContextService) recordStatus(ctx context.Context, userID string, kind domain.EntityType, id, from, to, reason string) {
	entry := domain.NewAuditEntry(domain.AuditActionStatusChange, userID, kind, id, &from, &to, s.actor)
	if reason != "" {
		entry.WithReason(reason)
	}
	s.record(ctx, EventStatusChanged, entry)
}

func (s *ContextService) encode(v any) *string {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("failed to encode audit value", "error", err)
		return nil
	}
	out := string(data)
	return &out
}

// AuditTrail returns every audit entry for an entity, oldest first
func (s *ContextService) AuditTrail(ctx context.Context, entityID string) ([]domain.AuditEntry, error) {
	return s.store.Audit().FindByEntity(ctx, entityID)
}

// RecentActivity returns the newest audit entries for a user. A limit of
// zero returns everything.
func (s *ContextService) RecentActivity(ctx context.Context, userID string, limit int) ([]domain.AuditEntry, error) {
	if userID == "" {
		return nil, invalid(domain.ErrMissingUser)
	}
	return s.store.Audit().FindByUser(ctx, userID, limit)
}
