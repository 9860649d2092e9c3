package routes

import (
	"github.com/gofiber/fiber/v2"

	"event-gallery/interfaces/api/handlers"
	"event-gallery/interfaces/api/middleware"
	"event-gallery/pkg/config"
)

func SetupAdminRoutes(router fiber.Router, h *handlers.Handlers, cfg *config.Config) {
	admin := router.Group("/admin")

	admin.Post("/login", middleware.AuthRateLimiter(&cfg.RateLimit), h.Auth.Login)

	// image tags cannot send headers
	admin.Get("/images/:id/file", middleware.AdminAuthWithQueryToken(cfg.JWT.Secret), h.Admin.ImageFile)

	protected := admin.Group("", middleware.AdminAuth(cfg.JWT.Secret))
	protected.Get("/me", h.Auth.Me)
	protected.Post("/upload", h.Admin.Upload)
	protected.Post("/process", h.Admin.Process)
	protected.Get("/batches", h.Admin.ListBatches)
	protected.Get("/batches/:id", h.Admin.GetBatch)
	protected.Get("/stats", h.Admin.Stats)
	protected.Get("/users", h.Admin.ListUsers)
	protected.Get("/images", h.Admin.ListImages)
	protected.Delete("/user/:id", h.Admin.DeleteUser)
	protected.Delete("/image/:id", h.Admin.DeleteImage)

	protected.Get("/logs", h.Log.GetLogs)
	protected.Get("/logs/files", h.Log.GetLogFiles)
}
