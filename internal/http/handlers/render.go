package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"txdash/internal/log"
)

const msgGeneric = "Something went wrong. Please try again."

func render(c *fiber.Ctx, status int, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if rid, ok := c.Locals("requestid").(string); ok {
		data["RequestID"] = rid
	}
	return c.Status(status).Render(tmpl, data)
}

// ErrorHandler is the app-wide fallback. Client errors keep their message;
// anything else is logged and answered with a generic text.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).SendString(fe.Message)
	}
	log.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).SendString(msgGeneric)
}
