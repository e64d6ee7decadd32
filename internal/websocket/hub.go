package websocket

import (
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface is a connected subscriber of one workspace
type ClientInterface interface {
	ID() string
	WorkspaceID() int32
	Send(data []byte) error
	Close() error
}

// Hub fans out report events to the clients of each workspace.
// It is safe for concurrent use.
type Hub struct {
	subscribers map[int32]map[string]ClientInterface
	mu          sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[int32]map[string]ClientInterface),
	}
}

// Register subscribes a client to its workspace
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	workspaceID := client.WorkspaceID()
	clients, ok := h.subscribers[workspaceID]
	if !ok {
		clients = make(map[string]ClientInterface)
		h.subscribers[workspaceID] = clients
	}
	clients[client.ID()] = client

	log.Debug().
		Int32("workspace_id", workspaceID).
		Str("client_id", client.ID()).
		Msg("WebSocket client registered")
}

// Unregister removes a client. Unknown clients are ignored.
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	workspaceID := client.WorkspaceID()
	clients, ok := h.subscribers[workspaceID]
	if !ok {
		return
	}
	if _, exists := clients[client.ID()]; !exists {
		return
	}

	delete(clients, client.ID())
	if len(clients) == 0 {
		delete(h.subscribers, workspaceID)
	}

	log.Debug().
		Int32("workspace_id", workspaceID).
		Str("client_id", client.ID()).
		Msg("WebSocket client unregistered")
}

// Broadcast sends an event to every client of a workspace without blocking on slow clients
func (h *Hub) Broadcast(workspaceID int32, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Int32("workspace_id", workspaceID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	targets := h.clientsOf(workspaceID)
	if len(targets) == 0 {
		return
	}

	for _, client := range targets {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Int32("workspace_id", workspaceID).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Int32("workspace_id", workspaceID).
		Str("event_type", event.Type).
		Int("client_count", len(targets)).
		Msg("Broadcast event")
}

// clientsOf copies the subscribers of a workspace so sends happen outside the lock
func (h *Hub) clientsOf(workspaceID int32) []ClientInterface {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.subscribers[workspaceID]
	result := make([]ClientInterface, 0, len(clients))
	for _, c := range clients {
		result = append(result, c)
	}
	return result
}

// ClientCount returns the number of clients connected to a workspace
func (h *Hub) ClientCount(workspaceID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[workspaceID])
}

// Workspaces returns the IDs of workspaces with at least one connected client, ascending
func (h *Hub) Workspaces() []int32 {
	h.mu.RLock()
	ids := make([]int32, 0, len(h.subscribers))
	for id := range h.subscribers {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TotalClientCount returns the number of connected clients across all workspaces
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.subscribers {
		total += len(clients)
	}
	return total
}
