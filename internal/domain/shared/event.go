package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened to an aggregate: an order was
// created, an item was produced, wastage was approved.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// EventPublisher delivers committed events to interested handlers
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventHandler reacts to the event types it lists
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// BaseDomainEvent is embedded by every concrete event
type BaseDomainEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	SourceID   uuid.UUID `json:"aggregate_id"`
	SourceType string    `json:"aggregate_type"`
}

// NewBaseDomainEvent stamps a new event raised by the aggregate sourceType/sourceID
func NewBaseDomainEvent(eventType, sourceType string, sourceID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Timestamp:  time.Now(),
		SourceID:   sourceID,
		SourceType: sourceType,
	}
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the event type name
func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event was raised
func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the ID of the aggregate that raised the event
func (e *BaseDomainEvent) AggregateID() uuid.UUID {
	return e.SourceID
}

// AggregateType returns the type of the aggregate that raised the event
func (e *BaseDomainEvent) AggregateType() string {
	return e.SourceType
}
