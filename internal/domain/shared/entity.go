package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and timestamps every persisted record shares
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// NewBaseEntity assigns a fresh ID and stamps both timestamps with now
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch bumps UpdatedAt
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// AggregateRoot is an entity that records domain events while it changes.
// Application services drain them with PullEvents after the transaction commits.
type AggregateRoot interface {
	AggregateID() uuid.UUID
	PendingEvents() []DomainEvent
	PullEvents() []DomainEvent
}

// BaseAggregateRoot implements AggregateRoot for embedding structs
type BaseAggregateRoot struct {
	BaseEntity
	events []DomainEvent `gorm:"-"`
}

// NewBaseAggregateRoot creates an aggregate with a new identity and no events
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity()}
}

// AggregateID returns the aggregate's identity
func (a *BaseAggregateRoot) AggregateID() uuid.UUID {
	return a.ID
}

// AddDomainEvent records an event to be published once the change is committed
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

// PendingEvents returns the recorded events without clearing them
func (a *BaseAggregateRoot) PendingEvents() []DomainEvent {
	return a.events
}

// PullEvents returns the recorded events and clears them
func (a *BaseAggregateRoot) PullEvents() []DomainEvent {
	events := a.events
	a.events = nil
	return events
}
