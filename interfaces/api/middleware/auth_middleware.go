package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"event-gallery/pkg/logger"
	"event-gallery/pkg/utils"
)

// AdminAuth validates the bearer token and stores the admin in locals.
func AdminAuth(secret string) fiber.Handler {
	return adminAuth(secret, false)
}

// AdminAuthWithQueryToken also accepts ?token=, for image tags and websocket
// upgrades that cannot send an Authorization header.
func AdminAuthWithQueryToken(secret string) fiber.Handler {
	return adminAuth(secret, true)
}

func adminAuth(secret string, allowQuery bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := utils.ExtractTokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if token == "" && allowQuery {
			token = c.Query("token")
		}
		if token == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Missing authorization", nil)
		}

		admin, err := utils.ValidateToken(token, secret)
		if err != nil {
			logger.AuthWarn("token_rejected", "Admin token rejected", map[string]interface{}{
				"path":   c.Path(),
				"ip":     c.IP(),
				"reason": err.Error(),
			})
			switch {
			case errors.Is(err, utils.ErrExpiredToken):
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Token has expired", nil)
			default:
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid token", nil)
			}
		}
		if admin.Role != utils.RoleAdmin {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "Insufficient permissions", nil)
		}

		c.Locals("admin", admin)
		return c.Next()
	}
}
