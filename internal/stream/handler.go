package stream

import (
	"net/http"

	"github.com/gorilla/websocket"

	"ems-mock/internal/ems"
	"ems-mock/internal/logger"
)

// Source supplies the views pushed to clients.
type Source interface {
	LiveTelemetry() ems.LiveTelemetry
	KPIs() ems.KPIReport
	Alerts() []ems.Alert
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades requests to WebSocket connections and attaches them to
// the hub. Clients only listen; anything they send is discarded.
type Handler struct {
	hub *Hub
	src Source
	log logger.Logger
}

func NewHandler(hub *Hub, src Source, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{hub: hub, src: src, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}

	// Queued before the hub can see the client, so it is always the first
	// message and never races CloseAll.
	h.queueLive(client)
	h.hub.Register(client)
	go client.writePump()

	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warnf("websocket read error: %v", err)
			}
			return
		}
	}
}

func (h *Handler) queueLive(c *Client) {
	msg, err := NewEnvelope(TypeTelemetryLive, h.src.LiveTelemetry())
	if err != nil {
		h.log.Errorf("marshal live telemetry: %v", err)
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}
