package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	wsManager "event-gallery/infrastructure/websocket"
	"event-gallery/interfaces/api/middleware"
	websocketHandler "event-gallery/interfaces/api/websocket"
)

func SetupWebSocketRoutes(app *fiber.App, manager *wsManager.Manager, secret string) {
	wsHandler := websocketHandler.NewWebSocketHandler(manager)

	// browsers pass the token as ?token= on the upgrade request
	app.Use("/ws", middleware.AdminAuthWithQueryToken(secret), wsHandler.WebSocketUpgrade)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))
}
