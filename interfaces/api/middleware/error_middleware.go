package middleware

import (
	"errors"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"

	"event-gallery/pkg/logger"
	"event-gallery/pkg/utils"
)

// ErrorHandler logs unhandled errors and reports server errors to Sentry when
// the sentry middleware attached a hub.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		detail := "An error occurred"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			detail = fe.Message
		}

		logger.Error(logger.CategoryAPI, "error_handler", "Request error occurred", err, map[string]interface{}{
			"status_code": code,
			"path":        c.Path(),
			"method":      c.Method(),
		})

		if code >= fiber.StatusInternalServerError {
			if hub := sentryfiber.GetHubFromContext(c); hub != nil {
				hub.WithScope(func(scope *sentry.Scope) {
					scope.SetTag("path", c.Path())
					hub.CaptureException(err)
				})
			}
		}

		return utils.ErrorResponse(c, code, detail, err)
	}
}
