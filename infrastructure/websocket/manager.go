package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"event-gallery/pkg/logger"
)

const writeWait = 5 * time.Second

// Message is the envelope of every server push.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type client struct {
	conn    *websocket.Conn
	adminID uuid.UUID
	mu      sync.Mutex // serializes writes to conn
}

func (c *client) send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Manager tracks admin dashboard connections and pushes batch events to them.
type Manager struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]*client
}

func NewManager() *Manager {
	return &Manager{clients: make(map[*websocket.Conn]*client)}
}

func (m *Manager) RegisterClient(conn *websocket.Conn, adminID uuid.UUID) {
	m.mu.Lock()
	m.clients[conn] = &client{conn: conn, adminID: adminID}
	count := len(m.clients)
	m.mu.Unlock()

	logger.WebSocket("client_registered", "WebSocket client registered", map[string]interface{}{
		"admin_id": adminID.String(),
		"clients":  count,
	})
}

func (m *Manager) UnregisterClient(conn *websocket.Conn) {
	m.mu.Lock()
	delete(m.clients, conn)
	m.mu.Unlock()
}

func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Broadcast sends an event to every connected client. Clients that fail to
// receive it are dropped.
func (m *Manager) Broadcast(event string, data interface{}) {
	payload, err := json.Marshal(Message{Type: event, Data: data, Timestamp: time.Now()})
	if err != nil {
		logger.WebSocketError("marshal", "Failed to marshal websocket message", err, map[string]interface{}{"type": event})
		return
	}

	m.mu.RLock()
	targets := make([]*client, 0, len(m.clients))
	for _, c := range m.clients {
		targets = append(targets, c)
	}
	m.mu.RUnlock()

	for _, c := range targets {
		if err := c.send(payload); err != nil {
			logger.WebSocketError("send", "Dropping websocket client", err, map[string]interface{}{
				"admin_id": c.adminID.String(),
			})
			m.UnregisterClient(c.conn)
			_ = c.conn.Close()
		}
	}
}

// HandleMessage answers client pings; other messages are ignored.
func (m *Manager) HandleMessage(conn *websocket.Conn, messageType int, message []byte) {
	if messageType != websocket.TextMessage {
		return
	}
	var in struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &in); err != nil || in.Type != "ping" {
		return
	}

	m.mu.RLock()
	c := m.clients[conn]
	m.mu.RUnlock()
	if c == nil {
		return
	}
	payload, _ := json.Marshal(Message{Type: "pong", Timestamp: time.Now()})
	_ = c.send(payload)
}
