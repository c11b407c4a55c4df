package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact about a task that the outbox delivers to the broker
// under RoutingKey.
type DomainEvent interface {
	EventID() uuid.UUID
	AggregateID() uuid.UUID
	AggregateType() string
	RoutingKey() string
	OccurredAt() time.Time
	Metadata() EventMetadata
}

// EventMetadata ties an event to the command and user that caused it.
type EventMetadata struct {
	CorrelationID uuid.UUID
	CausationID   uuid.UUID
	UserID        uuid.UUID
}

// BaseEvent is embedded by every task event for the identifying fields.
type BaseEvent struct {
	id         uuid.UUID
	subject    uuid.UUID
	kind       string
	routingKey string
	at         time.Time
	meta       EventMetadata
}

// NewBaseEvent stamps a fresh event id and the current UTC time.
func NewBaseEvent(subject uuid.UUID, kind, routingKey string) BaseEvent {
	return BaseEvent{id: uuid.New(), subject: subject, kind: kind, routingKey: routingKey, at: time.Now().UTC()}
}

func (e BaseEvent) EventID() uuid.UUID      { return e.id }
func (e BaseEvent) AggregateID() uuid.UUID  { return e.subject }
func (e BaseEvent) AggregateType() string   { return e.kind }
func (e BaseEvent) RoutingKey() string      { return e.routingKey }
func (e BaseEvent) OccurredAt() time.Time   { return e.at }
func (e BaseEvent) Metadata() EventMetadata { return e.meta }

// SetMetadata is called once per command before the event is written to the outbox.
func (e *BaseEvent) SetMetadata(md EventMetadata) { e.meta = md }
