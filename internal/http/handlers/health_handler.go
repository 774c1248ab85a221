package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"txdash/internal/log"
	"txdash/internal/repos"
)

type HealthHandler struct {
	Store repos.RecordStore
}

// GET /healthz
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		log.Error(c, "health.store.fail", err, nil)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
	}
	return c.JSON(fiber.Map{"ok": true})
}
