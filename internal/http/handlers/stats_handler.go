package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"txdash/internal/log"
	"txdash/internal/services"
	"txdash/internal/validate"
)

const msgMonthYearRequired = "Month and year are required"

type StatsHandler struct {
	Stats   *services.StatsService
	Timeout time.Duration
}

// monthYear reads and checks ?month&year. All statistics routes share it
// so a bad year is rejected as firmly as a bad month.
func monthYear(c *fiber.Ctx) (year, month int, ok bool) {
	month, okM := validate.Month(c.Query("month"))
	year, okY := validate.Year(c.Query("year"))
	if !okM || !okY {
		log.Security(c, "validation.fail", map[string]any{"month": c.Query("month"), "year": c.Query("year")})
		return 0, 0, false
	}
	return year, month, true
}

// GET /api/statistics?month&year
func (h *StatsHandler) Statistics(c *fiber.Ctx) error {
	year, month, ok := monthYear(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString(msgMonthYearRequired)
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	st, err := h.Stats.Totals(ctx, year, month)
	if err != nil {
		log.Error(c, "stats.totals.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("An error occurred while fetching statistics")
	}
	return c.JSON(st)
}

// GET /api/price-range-data?month&year
func (h *StatsHandler) PriceRanges(c *fiber.Ctx) error {
	year, month, ok := monthYear(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString(msgMonthYearRequired)
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	out, err := h.Stats.PriceRanges(ctx, year, month)
	if err != nil {
		log.Error(c, "stats.price_ranges.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("An error occurred while fetching price range data")
	}
	return c.JSON(out)
}

// GET /api/category-data?month&year
func (h *StatsHandler) Categories(c *fiber.Ctx) error {
	year, month, ok := monthYear(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString(msgMonthYearRequired)
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	out, err := h.Stats.Categories(ctx, year, month)
	if err != nil {
		log.Error(c, "stats.categories.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("An error occurred while fetching category data")
	}
	return c.JSON(out)
}
