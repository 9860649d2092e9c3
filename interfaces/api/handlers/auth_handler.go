package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"event-gallery/domain/dto"
	"event-gallery/domain/services"
	"event-gallery/pkg/logger"
	"event-gallery/pkg/utils"
)

type AuthHandler struct {
	authService services.AuthService
	expiry      time.Duration
}

func NewAuthHandler(authService services.AuthService, expiry time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		expiry:      expiry,
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ValidationErrorResponse(c, "Invalid request body")
	}
	if err := utils.Validator().Struct(req); err != nil {
		return utils.ValidationErrorResponse(c, utils.FormatValidationErrors(err))
	}

	token, admin, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		logger.AuthWarn("login_failed", "Admin login failed", map[string]interface{}{
			"ip": c.IP(),
		})
		return respondError(c, "login", err)
	}

	logger.Auth("login_success", "Admin logged in", map[string]interface{}{
		"admin_id": admin.ID.String(),
		"ip":       c.IP(),
	})

	return c.JSON(dto.LoginResponse{
		Success:   true,
		Token:     token,
		ExpiresIn: int64(h.expiry.Seconds()),
		AdminID:   admin.ID,
	})
}

// Me returns the admin identity carried by the token.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	admin, err := utils.GetAdminFromContext(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Not authenticated", nil)
	}
	return utils.SuccessResponse(c, fiber.Map{
		"admin_id": admin.ID,
		"email":    admin.Email,
		"role":     admin.Role,
	})
}
