package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to an entity
type EventType string

const (
	EventTypeCreated     EventType = "created"
	EventTypeUpdated     EventType = "updated"
	EventTypeDeleted     EventType = "deleted"
	EventTypeInvalidated EventType = "invalidated"
	EventTypeArchived    EventType = "archived"
	EventTypeReady       EventType = "ready"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeTransaction  EntityType = "transaction"
	EntityTypeBudget       EntityType = "budget"
	EntityTypeReport       EntityType = "report"
	EntityTypeSnapshot     EntityType = "snapshot"
	EntityTypeSubscription EntityType = "subscription"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "transaction.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "transaction"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionCreated creates a transaction.created event
func TransactionCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
}

// TransactionUpdated creates a transaction.updated event
func TransactionUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeTransaction, payload)
}

// TransactionDeleted creates a transaction.deleted event
func TransactionDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeTransaction, payload)
}

// BudgetCreated creates a budget.created event
func BudgetCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeBudget, payload)
}

// BudgetUpdated creates a budget.updated event
func BudgetUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBudget, payload)
}

// BudgetDeleted creates a budget.deleted event
func BudgetDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeBudget, payload)
}

// ReportInvalidation is the payload of a report.invalidated event
type ReportInvalidation struct {
	Reason string `json:"reason"`
}

// ReportInvalidated tells clients that derived reports must be recomputed
func ReportInvalidated(reason string) Event {
	return NewEvent(EventTypeInvalidated, EntityTypeReport, ReportInvalidation{Reason: reason})
}

// SnapshotArchived creates a snapshot.archived event
func SnapshotArchived(payload interface{}) Event {
	return NewEvent(EventTypeArchived, EntityTypeSnapshot, payload)
}

// Subscription is the payload of a subscription.ready event
type Subscription struct {
	WorkspaceID int32 `json:"workspaceId"`
}

// Subscribed is the first event a new subscriber receives. Reports fetched after it are current
// until the next report.invalidated.
func Subscribed(workspaceID int32) Event {
	return NewEvent(EventTypeReady, EntityTypeSubscription, Subscription{WorkspaceID: workspaceID})
}
