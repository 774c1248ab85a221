package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"txdash/internal/log"
	"txdash/internal/services"
)

type SeedHandler struct {
	Seed    *services.SeedService
	Timeout time.Duration
}

// GET /api/initialize-db
func (h *SeedHandler) Initialize(c *fiber.Ctx) error {
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	res, err := h.Seed.Initialize(ctx)
	if err != nil {
		log.Error(c, "seed.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("An error occurred while initializing the database")
	}
	log.Audit(c, "seed.ok", map[string]any{"run_id": res.RunID, "records": res.Records})
	return c.SendString("Database initialized with seed data")
}
