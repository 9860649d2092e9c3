package utils

import "github.com/gofiber/fiber/v2"

// ErrorBody is the error envelope. detail is what the web client shows.
type ErrorBody struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
	Error   string `json:"error,omitempty"`
}

func SuccessResponse(c *fiber.Ctx, data fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range data {
		body[k] = v
	}
	return c.JSON(body)
}

func AcceptedResponse(c *fiber.Ctx, data fiber.Map) error {
	c.Status(fiber.StatusAccepted)
	return SuccessResponse(c, data)
}

func ErrorResponse(c *fiber.Ctx, status int, detail string, err error) error {
	body := ErrorBody{Detail: detail}
	if err != nil && err.Error() != detail {
		body.Error = err.Error()
	}
	return c.Status(status).JSON(body)
}

func ValidationErrorResponse(c *fiber.Ctx, detail string) error {
	return ErrorResponse(c, fiber.StatusBadRequest, detail, nil)
}
