package service

import (
	"slices"
	"sync"

	"usercontext/internal/domain"
)

// EventType defines the type of event
type EventType string

const (
	EventEntityCreated EventType = "entity_created"
	EventEntityUpdated EventType = "entity_updated"
	EventEntityDeleted EventType = "entity_deleted"
	EventStatusChanged EventType = "status_changed"
)

// Event represents a change that was committed to the store
type Event struct {
	Type       EventType         `json:"type"`
	UserID     string            `json:"user_id"`
	EntityType domain.EntityType `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Unsubscribe removes ch; it is not closed
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = slices.DeleteFunc(eb.subscribers, func(c chan<- Event) bool { return c == ch })
}

// SubscriberCount returns the number of subscribed channels
func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
