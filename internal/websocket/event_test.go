package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"id":     "6f1c",
		"amount": "100.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
	after := time.Now()

	assert.Equal(t, "transaction.created", evt.Type)
	assert.Equal(t, EntityTypeTransaction, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_ToJSON(t *testing.T) {
	evt := ReportInvalidated("budget.updated")

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "report.invalidated", decoded["type"])
	assert.Equal(t, "report", decoded["entity"])
	payload, ok := decoded["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "budget.updated", payload["reason"])
	assert.NotNil(t, decoded["timestamp"])
}

func TestEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{"id": "x"}

	tests := []struct {
		name   string
		evt    Event
		want   string
		entity EntityType
	}{
		{"TransactionCreated", TransactionCreated(payload), "transaction.created", EntityTypeTransaction},
		{"TransactionUpdated", TransactionUpdated(payload), "transaction.updated", EntityTypeTransaction},
		{"TransactionDeleted", TransactionDeleted(payload), "transaction.deleted", EntityTypeTransaction},
		{"BudgetCreated", BudgetCreated(payload), "budget.created", EntityTypeBudget},
		{"BudgetUpdated", BudgetUpdated(payload), "budget.updated", EntityTypeBudget},
		{"BudgetDeleted", BudgetDeleted(payload), "budget.deleted", EntityTypeBudget},
		{"SnapshotArchived", SnapshotArchived(payload), "snapshot.archived", EntityTypeSnapshot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.evt.Type)
			assert.Equal(t, tt.entity, tt.evt.Entity)
			assert.Equal(t, payload, tt.evt.Payload)
		})
	}
}

func TestSubscribed(t *testing.T) {
	evt := Subscribed(9)

	assert.Equal(t, "subscription.ready", evt.Type)
	assert.Equal(t, EntityTypeSubscription, evt.Entity)
	assert.Equal(t, Subscription{WorkspaceID: 9}, evt.Payload)
}
