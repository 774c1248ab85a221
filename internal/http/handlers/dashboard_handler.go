package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"txdash/internal/log"
	"txdash/internal/services"
	"txdash/internal/validate"
)

type DashboardHandler struct {
	Listing *services.ListingService
	Stats   *services.StatsService
	Timeout time.Duration
	Now     func() time.Time
}

// GET /?month&year&search&page
func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	today := now().UTC()
	month, year := int(today.Month()), today.Year()

	// absent values default to the current month; present ones must be valid
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		m, ok := validate.Month(raw)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "month"})
			return render(c, fiber.StatusBadRequest, "error", fiber.Map{"Message": "Enter a month between 1 and 12"})
		}
		month = m
	}
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		y, ok := validate.Year(raw)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "year"})
			return render(c, fiber.StatusBadRequest, "error", fiber.Map{"Message": "Enter a valid year"})
		}
		year = y
	}
	search := validate.Search(c.Query("search"))
	page := validate.Page(c.Query("page"))

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	stats, err := h.Stats.Totals(ctx, year, month)
	if err != nil {
		return h.fail(c, err)
	}
	ranges, err := h.Stats.PriceRanges(ctx, year, month)
	if err != nil {
		return h.fail(c, err)
	}
	cats, err := h.Stats.Categories(ctx, year, month)
	if err != nil {
		return h.fail(c, err)
	}
	txs, err := h.Listing.Page(ctx, search, page, services.DefaultPerPage)
	if err != nil {
		return h.fail(c, err)
	}

	return render(c, fiber.StatusOK, "dashboard", fiber.Map{
		"Month":        month,
		"MonthName":    time.Month(month).String(),
		"Year":         year,
		"Search":       search,
		"Page":         page,
		"PrevPage":     page - 1,
		"NextPage":     page + 1,
		"HasNext":      len(txs) == services.DefaultPerPage,
		"Stats":        stats,
		"Ranges":       ranges,
		"Categories":   cats,
		"Transactions": txs,
	})
}

func (h *DashboardHandler) fail(c *fiber.Ctx, err error) error {
	log.Error(c, "dashboard.fail", err, nil)
	return render(c, fiber.StatusInternalServerError, "error", fiber.Map{"Message": "Could not load the dashboard. Please retry."})
}
