package routes

import (
	"github.com/gofiber/fiber/v2"

	"event-gallery/infrastructure/websocket"
	"event-gallery/interfaces/api/handlers"
	"event-gallery/interfaces/api/middleware"
	"event-gallery/pkg/config"
)

func SetupRoutes(app *fiber.App, h *handlers.Handlers, cfg *config.Config, ws *websocket.Manager) {
	SetupHealthRoutes(app, h)

	api := app.Group("/api", middleware.RateLimiter(&cfg.RateLimit))
	api.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": cfg.App.Name + " API"})
	})

	SetupGalleryRoutes(api, h)
	SetupAdminRoutes(api, h, cfg)

	if ws != nil {
		SetupWebSocketRoutes(app, ws, cfg.JWT.Secret)
	}
}
