package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"event-gallery/interfaces/api/handlers"
	"event-gallery/pkg/metrics"
)

func SetupHealthRoutes(app *fiber.App, h *handlers.Handlers) {
	app.Get("/health", h.Health.Health)
	app.Get("/health/detailed", h.Health.DetailedHealth)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
}
