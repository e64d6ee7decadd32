package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveSubscribers upgrades every request into a client on workspace 1 and hands it to the test
func serveSubscribers(t *testing.T, hub *Hub, timings Timings) (*httptest.Server, <-chan *Client) {
	t.Helper()
	clients := make(chan *Client, 4)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClientWithTimings(conn, 1, hub, timings)
		hub.Register(client)
		client.Serve()
		clients <- client
	}))
	t.Cleanup(srv.Close)
	return srv, clients
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestClient_GreetsThenDelivers(t *testing.T) {
	hub := NewHub()
	srv, _ := serveSubscribers(t, hub, DefaultTimings())
	conn := dial(t, srv)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var first Event
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "subscription.ready", first.Type)

	hub.Broadcast(1, ReportInvalidated("budget.deleted"))

	var second map[string]json.RawMessage
	require.NoError(t, conn.ReadJSON(&second))
	assert.JSONEq(t, `"report.invalidated"`, string(second["type"]))
}

func TestClient_RemoteCloseUnregisters(t *testing.T) {
	hub := NewHub()
	srv, clients := serveSubscribers(t, hub, DefaultTimings())
	conn := dial(t, srv)

	client := <-clients
	require.Equal(t, 1, hub.ClientCount(1))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))

	assert.Eventually(t, func() bool { return hub.ClientCount(1) == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, client.Send([]byte("late")), ErrClientClosed)
}

func TestClient_IdleSubscriberIsDropped(t *testing.T) {
	hub := NewHub()
	timings := Timings{WriteTimeout: time.Second, IdleTimeout: 150 * time.Millisecond}
	srv, _ := serveSubscribers(t, hub, timings)

	// a dialer that never reads cannot answer pings
	dial(t, srv)

	require.Eventually(t, func() bool { return hub.ClientCount(1) == 1 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return hub.ClientCount(1) == 0 }, 2*time.Second, 20*time.Millisecond)
}

func TestClient_SlowSubscriberIsDropped(t *testing.T) {
	hub := NewHub()
	srv, clients := serveSubscribers(t, hub, DefaultTimings())
	dial(t, srv)
	client := <-clients

	var err error
	for i := 0; i < outboxSize*64 && err == nil; i++ {
		err = client.Send(make([]byte, 4096))
	}
	require.Error(t, err)
	assert.Contains(t, []error{ErrSlowClient, ErrClientClosed}, err)

	assert.Eventually(t, func() bool { return hub.ClientCount(1) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	hub := NewHub()
	srv, clients := serveSubscribers(t, hub, DefaultTimings())
	dial(t, srv)
	client := <-clients

	require.NoError(t, client.Close())
	assert.NoError(t, client.Close())
	assert.ErrorIs(t, client.Send([]byte("x")), ErrClientClosed)
}
