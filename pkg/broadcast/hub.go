// Package broadcast fans server events out to connected websocket clients.
package broadcast

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// Message is the envelope every event is sent in
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected clients and publishes events to all of them.
// A client that cannot keep up is disconnected rather than blocking publishers.
type Hub struct {
	mu       sync.Mutex
	clients  map[string]*client
	upgrader websocket.Upgrader
	onCount  func(int)
}

// HubOption customises a Hub
type HubOption func(*Hub)

// WithCheckOrigin sets the origin policy used on upgrade
func WithCheckOrigin(check func(r *http.Request) bool) HubOption {
	return func(h *Hub) { h.upgrader.CheckOrigin = check }
}

// WithClientCountHook is called with the client count whenever it changes
func WithClientCountHook(fn func(int)) HubOption {
	return func(h *Hub) { h.onCount = fn }
}

// NewHub creates an empty hub
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		onCount: func(int) {},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish sends an event to every connected client
func (h *Hub) Publish(event string, payload interface{}) {
	data, err := json.Marshal(Message{Type: event, Payload: payload})
	if err != nil {
		slog.Error("Failed to encode broadcast message", "event", event, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		select {
		case c.send <- data:
		default:
			slog.Warn("Dropping slow websocket client", "clientId", id)
			h.removeLocked(id)
		}
	}
}

// Serve upgrades the request, sends the state returned by initial as an
// initialData message and keeps the connection registered until the client
// goes away. initial runs under the hub lock together with registration, so
// every event published afterwards reaches the client and none is lost in
// between. initial must not publish.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, initial func() interface{}) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{id: uuid.New().String(), conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	data, err := json.Marshal(Message{Type: "initialData", Payload: initial()})
	if err != nil {
		h.mu.Unlock()
		conn.Close()
		return err
	}
	c.send <- data
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()
	h.onCount(count)
	slog.Info("Websocket client connected", "clientId", c.id, "clients", count)

	go h.writePump(c)
	h.readPump(c)
	return nil
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	h.removeLocked(id)
	h.mu.Unlock()
}

func (h *Hub) removeLocked(id string) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	close(c.send)
	h.onCount(len(h.clients))
}

// readPump discards inbound messages; it exists to process control frames
// and notice disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c.id)
		c.conn.Close()
		slog.Info("Websocket client disconnected", "clientId", c.id)
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.clients {
		h.removeLocked(id)
	}
}
