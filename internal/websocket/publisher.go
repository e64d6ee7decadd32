package websocket

import (
	"sync"
	"time"
)

// EventPublisher defines the interface for publishing events to WebSocket clients
type EventPublisher interface {
	// Publish sends an event to all clients connected to the specified workspace
	Publish(workspaceID int32, event Event)
}

var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting the event to the workspace
func (h *Hub) Publish(workspaceID int32, event Event) {
	h.Broadcast(workspaceID, event)
}

// NoOpPublisher drops every event, used when no clients can connect (CLI, tests)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(workspaceID int32, event Event) {}

// DebouncedPublisher forwards entity events immediately but coalesces report.invalidated
// events per workspace: a burst of writes produces one invalidation once the workspace
// has been quiet for the delay.
type DebouncedPublisher struct {
	next    EventPublisher
	delay   time.Duration
	mu      sync.Mutex
	pending map[int32]*time.Timer
}

// NewDebouncedPublisher wraps next. A non-positive delay disables coalescing.
func NewDebouncedPublisher(next EventPublisher, delay time.Duration) *DebouncedPublisher {
	return &DebouncedPublisher{
		next:    next,
		delay:   delay,
		pending: make(map[int32]*time.Timer),
	}
}

// Publish implements EventPublisher
func (p *DebouncedPublisher) Publish(workspaceID int32, event Event) {
	if event.Entity != EntityTypeReport || p.delay <= 0 {
		p.next.Publish(workspaceID, event)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.pending[workspaceID]; ok {
		t.Stop()
	}
	p.pending[workspaceID] = time.AfterFunc(p.delay, func() {
		p.mu.Lock()
		delete(p.pending, workspaceID)
		p.mu.Unlock()
		p.next.Publish(workspaceID, event)
	})
}

// Pending returns the number of workspaces with an invalidation waiting to be sent
func (p *DebouncedPublisher) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Stop cancels every pending invalidation
func (p *DebouncedPublisher) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, t := range p.pending {
		t.Stop()
		delete(p.pending, id)
	}
}
