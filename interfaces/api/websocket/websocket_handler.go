package websocket

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	websocketManager "event-gallery/infrastructure/websocket"
	"event-gallery/pkg/logger"
	"event-gallery/pkg/utils"
)

type WebSocketHandler struct {
	manager *websocketManager.Manager
}

func NewWebSocketHandler(manager *websocketManager.Manager) *WebSocketHandler {
	return &WebSocketHandler{manager: manager}
}

func (h *WebSocketHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleWebSocket keeps an admin dashboard connection open until it closes.
// Batch events are pushed by the manager; reads only serve pings.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	var adminID uuid.UUID
	if admin, ok := c.Locals("admin").(*utils.AdminContext); ok {
		adminID = admin.ID
	}

	h.manager.RegisterClient(c, adminID)
	defer h.manager.UnregisterClient(c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WebSocketError("read_message", "WebSocket read error", err, map[string]interface{}{"admin_id": adminID.String()})
			}
			break
		}
		h.manager.HandleMessage(c, messageType, message)
	}
}
