package events

import "time"

// DomainEvent represents a domain event raised by an aggregate.
type DomainEvent interface {
	// AggregateID returns the ID of the aggregate that generated the event
	AggregateID() string

	// EventType returns the type/name of the event
	EventType() string

	// OccurredAt returns when the event occurred
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all domain events.
type BaseEvent struct {
	ID   string    `json:"aggregate_id"`
	Type string    `json:"event_type"`
	At   time.Time `json:"occurred_at"`
}

func (e BaseEvent) AggregateID() string {
	return e.ID
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.At
}

// Handler processes a single domain event.
type Handler func(event DomainEvent) error

// Publisher publishes domain events after the owning aggregate was persisted.
type Publisher interface {
	Publish(event DomainEvent) error
	PublishAll(events []DomainEvent) error
}
