package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events map[int32][]Event
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(map[int32][]Event)}
}

func (r *recordingPublisher) Publish(workspaceID int32, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[workspaceID] = append(r.events[workspaceID], event)
}

func (r *recordingPublisher) count(workspaceID int32) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events[workspaceID])
}

func TestHub_Publish(t *testing.T) {
	hub := NewHub()

	client := newMockClient("client-1", 1)
	hub.Register(client)

	var publisher EventPublisher = hub
	publisher.Publish(1, ReportInvalidated("transaction.created"))

	time.Sleep(10 * time.Millisecond)

	assert.Len(t, client.GetMessages(), 1)
}

func TestNoOpPublisher_Publish(t *testing.T) {
	publisher := &NoOpPublisher{}

	assert.NotPanics(t, func() {
		publisher.Publish(1, BudgetCreated(map[string]interface{}{"id": "b-1"}))
	})
}

func TestDebouncedPublisher_CoalescesInvalidations(t *testing.T) {
	next := newRecordingPublisher()
	p := NewDebouncedPublisher(next, 30*time.Millisecond)
	defer p.Stop()

	for i := 0; i < 5; i++ {
		p.Publish(1, ReportInvalidated("transaction.created"))
	}
	p.Publish(2, ReportInvalidated("budget.updated"))

	assert.Equal(t, 2, p.Pending())
	assert.Equal(t, 0, next.count(1))

	require.Eventually(t, func() bool {
		return next.count(1) == 1 && next.count(2) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, p.Pending())
}

func TestDebouncedPublisher_EntityEventsPassThrough(t *testing.T) {
	next := newRecordingPublisher()
	p := NewDebouncedPublisher(next, time.Hour)
	defer p.Stop()

	p.Publish(1, TransactionCreated(map[string]interface{}{"id": "t-1"}))
	p.Publish(1, BudgetDeleted(map[string]interface{}{"id": "b-1"}))

	assert.Equal(t, 2, next.count(1))
	assert.Equal(t, 0, p.Pending())
}

func TestDebouncedPublisher_ZeroDelay(t *testing.T) {
	next := newRecordingPublisher()
	p := NewDebouncedPublisher(next, 0)

	p.Publish(1, ReportInvalidated("budget.created"))
	assert.Equal(t, 1, next.count(1))
}

func TestDebouncedPublisher_Stop(t *testing.T) {
	next := newRecordingPublisher()
	p := NewDebouncedPublisher(next, 20*time.Millisecond)

	p.Publish(1, ReportInvalidated("transaction.deleted"))
	p.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, next.count(1))
	assert.Equal(t, 0, p.Pending())
}
