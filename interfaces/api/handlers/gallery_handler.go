package handlers

import (
	"github.com/gofiber/fiber/v2"

	"event-gallery/domain/dto"
	"event-gallery/domain/services"
)

type GalleryHandler struct {
	gallery services.GalleryService
}

func NewGalleryHandler(gallery services.GalleryService) *GalleryHandler {
	return &GalleryHandler{gallery: gallery}
}

func (h *GalleryHandler) GetGallery(c *fiber.Ctx) error {
	g, err := h.gallery.Resolve(c.UserContext(), c.Params("gallery_id"))
	if err != nil {
		return respondError(c, "get_gallery", err)
	}
	return c.JSON(dto.GalleryToResponse(g))
}

// GetImage streams a photo matched to the gallery.
func (h *GalleryHandler) GetImage(c *fiber.Ctx) error {
	rc, photo, err := h.gallery.OpenPhoto(c.UserContext(), c.Params("gallery_id"), c.Params("filename"))
	if err != nil {
		return respondError(c, "get_image", err)
	}
	c.Set(fiber.HeaderContentType, photo.ContentType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	return c.SendStream(rc, int(photo.SizeBytes))
}

func (h *GalleryHandler) GetQRCode(c *fiber.Ctx) error {
	png, err := h.gallery.QRCode(c.UserContext(), c.Params("gallery_id"))
	if err != nil {
		return respondError(c, "get_qrcode", err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
