package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"event-gallery/domain/services"
	"event-gallery/pkg/logger"
	"event-gallery/pkg/utils"
)

const noFaceDetail = "No face detected in image. Please try again with a clear face photo."

type errorMapping struct {
	target error
	status int
	detail string
}

// errorTable is checked in order; the first errors.Is match wins.
var errorTable = []errorMapping{
	{services.ErrNoFaceDetected, fiber.StatusBadRequest, noFaceDetail},
	{services.ErrMultipleFacesDetected, fiber.StatusBadRequest, "More than one face detected. Please upload a photo with only your face."},
	{services.ErrValidation, fiber.StatusBadRequest, ""},
	{services.ErrEmailAlreadyRegistered, fiber.StatusConflict, "Email is already registered"},
	{services.ErrUnsupportedMediaType, fiber.StatusUnsupportedMediaType, "Unsupported image type"},
	{services.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge, "File too large"},
	{services.ErrGalleryNotFound, fiber.StatusNotFound, "Gallery not found"},
	{services.ErrUserNotFound, fiber.StatusNotFound, "User not found"},
	{services.ErrPhotoNotFound, fiber.StatusNotFound, "Image not found"},
	{services.ErrBatchNotFound, fiber.StatusNotFound, "Batch not found"},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized, "Invalid credentials"},
	{services.ErrExtractorUnavailable, fiber.StatusServiceUnavailable, "Face recognition is temporarily unavailable. Please try again later."},
}

// statusFor returns the HTTP status and client detail of a service error.
// ok is false for errors outside the table.
func statusFor(err error) (status int, detail string, ok bool) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			detail = m.detail
			if detail == "" {
				detail = err.Error()
			}
			return m.status, detail, true
		}
	}
	return fiber.StatusInternalServerError, "", false
}

// respondError writes a known service error, or hands anything else to the
// fiber ErrorHandler.
func respondError(c *fiber.Ctx, action string, err error) error {
	status, detail, ok := statusFor(err)
	if !ok {
		return err
	}
	if status >= fiber.StatusInternalServerError {
		logger.Error(logger.CategoryAPI, action, detail, err, map[string]interface{}{"path": c.Path()})
	}
	return utils.ErrorResponse(c, status, detail, err)
}
