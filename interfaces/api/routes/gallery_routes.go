package routes

import (
	"github.com/gofiber/fiber/v2"

	"event-gallery/interfaces/api/handlers"
)

// SetupGalleryRoutes mounts the public attendee endpoints.
func SetupGalleryRoutes(router fiber.Router, h *handlers.Handlers) {
	router.Post("/register", h.Registration.Register)
	router.Get("/gallery/:gallery_id", h.Gallery.GetGallery)
	router.Get("/image/:gallery_id/:filename", h.Gallery.GetImage)
	router.Get("/qrcode/:gallery_id", h.Gallery.GetQRCode)
}
