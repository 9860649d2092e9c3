package handlers

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"event-gallery/domain/dto"
	"event-gallery/domain/services"
	"event-gallery/pkg/logger"
	"event-gallery/pkg/utils"
)

type AdminHandler struct {
	admin    services.AdminService
	ingest   services.IngestService
	maxFiles int
}

func NewAdminHandler(admin services.AdminService, ingest services.IngestService, maxFiles int) *AdminHandler {
	return &AdminHandler{admin: admin, ingest: ingest, maxFiles: maxFiles}
}

// Upload stores the multipart "files" as pending photos. Bad files are
// reported in rejected and do not fail the request.
func (h *AdminHandler) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return utils.ValidationErrorResponse(c, "Expected multipart form data")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return utils.ValidationErrorResponse(c, "No files uploaded")
	}
	if h.maxFiles > 0 && len(headers) > h.maxFiles {
		return utils.ValidationErrorResponse(c, fmt.Sprintf("Too many files: at most %d per upload", h.maxFiles))
	}

	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read upload", err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read upload", err)
		}
		files = append(files, services.UploadFile{Filename: fh.Filename, Data: data})
	}

	result, err := h.ingest.Ingest(c.UserContext(), files)
	if err != nil {
		return respondError(c, "upload", err)
	}
	return c.JSON(dto.IngestResultToResponse(result))
}

func (h *AdminHandler) Process(c *fiber.Ctx) error {
	batch, err := h.admin.TriggerProcessing(c.UserContext())
	if err != nil {
		return respondError(c, "trigger_processing", err)
	}

	fields := map[string]interface{}{"batch_id": batch.ID.String()}
	if admin, err := utils.GetAdminFromContext(c); err == nil {
		fields["admin_id"] = admin.ID.String()
	}
	logger.API("processing_triggered", "Processing triggered", fields)

	return c.Status(fiber.StatusAccepted).JSON(dto.ProcessResponse{
		Success: true,
		Message: "Processing started in background",
		BatchID: batch.ID,
		Status:  string(batch.Status),
	})
}

func (h *AdminHandler) ListBatches(c *fiber.Ctx) error {
	batches, err := h.admin.ListBatches(c.UserContext(), c.QueryInt("limit", 20))
	if err != nil {
		return respondError(c, "list_batches", err)
	}
	return c.JSON(batches)
}

func (h *AdminHandler) GetBatch(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ValidationErrorResponse(c, "Invalid batch id")
	}
	batch, err := h.admin.GetBatch(c.UserContext(), id)
	if err != nil {
		return respondError(c, "get_batch", err)
	}
	return c.JSON(batch)
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.admin.Stats(c.UserContext())
	if err != nil {
		return respondError(c, "stats", err)
	}
	return c.JSON(stats)
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.admin.ListUsers(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, "list_users", err)
	}
	return c.JSON(dto.UserSummariesToResponse(users))
}

func (h *AdminHandler) ListImages(c *fiber.Ctx) error {
	photos, err := h.admin.ListImages(c.UserContext())
	if err != nil {
		return respondError(c, "list_images", err)
	}
	return c.JSON(dto.PhotoSummariesToResponse(photos))
}

// ImageFile streams any stored photo to the dashboard.
func (h *AdminHandler) ImageFile(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ValidationErrorResponse(c, "Invalid image id")
	}
	rc, photo, err := h.ingest.OpenPhoto(c.UserContext(), id)
	if err != nil {
		return respondError(c, "image_file", err)
	}
	c.Set(fiber.HeaderContentType, photo.ContentType)
	return c.SendStream(rc, int(photo.SizeBytes))
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ValidationErrorResponse(c, "Invalid user id")
	}
	if err := h.admin.DeleteUser(c.UserContext(), id); err != nil {
		return respondError(c, "delete_user", err)
	}
	return utils.SuccessResponse(c, fiber.Map{"message": "User deleted"})
}

func (h *AdminHandler) DeleteImage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ValidationErrorResponse(c, "Invalid image id")
	}
	if err := h.admin.DeleteImage(c.UserContext(), id); err != nil {
		return respondError(c, "delete_image", err)
	}
	return utils.SuccessResponse(c, fiber.Map{"message": "Image deleted"})
}
