package handlers

import (
	"encoding/base64"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"event-gallery/domain/dto"
	"event-gallery/domain/services"
	"event-gallery/pkg/utils"
)

type RegistrationHandler struct {
	registration services.RegistrationService
}

func NewRegistrationHandler(registration services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// Register accepts JSON with a base64 face image, or a multipart form with a
// face_image file.
func (h *RegistrationHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ValidationErrorResponse(c, "Invalid request body")
	}

	image, err := faceImage(c, req.FaceImageData)
	if err != nil {
		return utils.ValidationErrorResponse(c, "Invalid face image: "+err.Error())
	}

	user, err := h.registration.Register(c.UserContext(), services.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		FaceImage: image,
	})
	if err != nil {
		return respondError(c, "register", err)
	}

	return c.JSON(dto.RegisterResponse{
		Success:   true,
		UserID:    user.ID,
		GalleryID: user.GalleryID,
		Name:      user.Name,
		Message:   "Registration successful",
	})
}

// faceImage reads the multipart file if present, else decodes the base64
// field. A missing image returns nil so validation reports it.
func faceImage(c *fiber.Ctx, encoded string) ([]byte, error) {
	if fh, err := c.FormFile("face_image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	if encoded == "" {
		return nil, nil
	}
	return decodeDataURL(encoded)
}

// decodeDataURL accepts "data:image/...;base64,<payload>" or a bare payload.
func decodeDataURL(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.TrimSpace(s)
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
