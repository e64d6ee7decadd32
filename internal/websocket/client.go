package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ErrSlowClient is returned when a subscriber's outbox is full. The subscriber is dropped so the
// dashboard reconnects and refetches instead of silently missing invalidations.
var ErrSlowClient = errors.New("client outbox is full")

const (
	inboundLimit = 512
	outboxSize   = 64
)

// Timings bounds how long a subscriber connection may stay silent. A subscriber that sends no
// pong within IdleTimeout is dropped; heartbeats go out at nine tenths of it.
type Timings struct {
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultTimings returns the production connection timings
func DefaultTimings() Timings {
	return Timings{WriteTimeout: 10 * time.Second, IdleTimeout: 60 * time.Second}
}

func (t Timings) heartbeat() time.Duration {
	return t.IdleTimeout * 9 / 10
}

// Client streams one workspace's events to a dashboard connection.
// Inbound frames only keep the connection alive.
type Client struct {
	id          string
	workspaceID int32
	conn        *websocket.Conn
	hub         *Hub
	timings     Timings
	outbox      chan []byte
	mu          sync.Mutex
	closed      bool
	once        sync.Once
}

// NewClientWithTimings wraps an upgraded connection
func NewClientWithTimings(conn *websocket.Conn, workspaceID int32, hub *Hub, timings Timings) *Client {
	return &Client{
		id:          uuid.New().String(),
		workspaceID: workspaceID,
		conn:        conn,
		hub:         hub,
		timings:     timings,
		outbox:      make(chan []byte, outboxSize),
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) WorkspaceID() int32 { return c.workspaceID }

// Send queues a frame without blocking. A full outbox drops the client.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.outbox <- data:
		return nil
	default:
		go c.Close()
		return ErrSlowClient
	}
}

// Close ends the subscription. Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.outbox)
		c.mu.Unlock()

		err = c.conn.Close()
	})
	return err
}

// Serve greets the subscriber and runs the connection until either side ends it.
// The client must already be registered with the hub.
func (c *Client) Serve() {
	if ready, err := Subscribed(c.workspaceID).ToJSON(); err == nil {
		_ = c.Send(ready)
	}
	go c.deliver()
	go c.drain()
}

// drain reads and discards inbound frames so pongs and close frames are processed
func (c *Client) drain() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(inboundLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.timings.IdleTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.timings.IdleTimeout))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("client_id", c.id).Int32("workspace_id", c.workspaceID).Msg("Subscriber connection lost")
			}
			return
		}
	}
}

// deliver writes queued events and heartbeats until the outbox is closed
func (c *Client) deliver() {
	heartbeat := time.NewTicker(c.timings.heartbeat())
	defer func() {
		heartbeat.Stop()
		c.Close()
	}()

	for {
		select {
		case frame, ok := <-c.outbox:
			if !ok {
				_ = c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, frame); err != nil {
				log.Warn().Err(err).Str("client_id", c.id).Int32("workspace_id", c.workspaceID).Msg("Failed to deliver event")
				return
			}
		case <-heartbeat.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timings.WriteTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
