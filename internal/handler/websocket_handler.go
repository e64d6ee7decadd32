package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dafibh/fortuna/fortuna-insights/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler turns dashboard connections into workspace event subscriptions
type WebSocketHandler struct {
	hub      *websocket.Hub
	upgrader ws.Upgrader
	timings  websocket.Timings
}

// NewWebSocketHandler accepts browser connections only from allowedOrigins ("*" allows any)
func NewWebSocketHandler(hub *websocket.Hub, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originPolicy(allowedOrigins),
		},
		timings: websocket.DefaultTimings(),
	}
}

// originPolicy admits requests without an Origin header, which come from non-browser clients
func originPolicy(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		set[normalizeOrigin(origin)] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get(echo.HeaderOrigin)
		if origin == "" || set["*"] || set[normalizeOrigin(origin)] {
			return true
		}
		log.Warn().Str("origin", origin).Msg("Rejected WebSocket origin")
		return false
	}
}

func normalizeOrigin(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}

// HandleWS subscribes the caller to one workspace at GET /ws?workspace=
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	workspaceID, ok := workspaceQuery(c.QueryParam("workspace"))
	if !ok {
		return NewValidationError(c, "Invalid workspace", []ValidationError{
			{Field: "workspace", Message: "Must be a positive integer"},
		})
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already answered the request
		log.Debug().Err(err).Int32("workspace_id", workspaceID).Msg("WebSocket upgrade refused")
		return nil
	}

	client := websocket.NewClientWithTimings(conn, workspaceID, h.hub, h.timings)
	h.hub.Register(client)
	client.Serve()

	log.Info().
		Int32("workspace_id", workspaceID).
		Str("client_id", client.ID()).
		Int("subscribers", h.hub.ClientCount(workspaceID)).
		Msg("Dashboard subscribed")
	return nil
}

func workspaceQuery(raw string) (int32, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}
