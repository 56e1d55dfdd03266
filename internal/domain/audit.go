package domain

import "time"

// Audit actions
const (
	AuditActionCreate       = "create"
	AuditActionUpdate       = "update"
	AuditActionDelete       = "delete"
	AuditActionStatusChange = "status_change"
)

// AuditEntry is an append-only record of one change to an entity.
// OldValue and NewValue carry the JSON form of the entity, or a bare status
// code for status changes.
type AuditEntry struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Action     string     `json:"action"`
	OldValue   *string    `json:"old_value,omitempty"`
	NewValue   *string    `json:"new_value,omitempty"`
	ChangedBy  string     `json:"changed_by"`
	ChangedAt  time.Time  `json:"changed_at"`
	Reason     *string    `json:"reason,omitempty"`
}

// NewCreateAuditEntry records the creation of an entity
func NewCreateAuditEntry(userID string, entityType EntityType, entityID, newValue, changedBy string) *AuditEntry {
	return NewAuditEntry(AuditActionCreate, userID, entityType, entityID, nil, stringPtr(newValue), changedBy)
}

// NewAuditEntry records an arbitrary action. Either value may be nil.
func NewAuditEntry(action, userID string, entityType EntityType, entityID string, oldValue, newValue *string, changedBy string) *AuditEntry {
	return &AuditEntry{
		ID:         NewID(),
		UserID:     userID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		OldValue:   oldValue,
		NewValue:   newValue,
		ChangedBy:  changedBy,
		ChangedAt:  Now(),
	}
}

func (a *AuditEntry) WithReason(reason string) *AuditEntry {
	a.Reason = stringPtr(reason)
	return a
}
