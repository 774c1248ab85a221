package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"txdash/internal/log"
	"txdash/internal/services"
	"txdash/internal/validate"
)

type TransactionHandler struct {
	Listing *services.ListingService
	Timeout time.Duration
}

// GET /api/products
func (h *TransactionHandler) Products(c *fiber.Ctx) error {
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	recs, err := h.Listing.All(ctx)
	if err != nil {
		log.Error(c, "products.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("An error occurred while fetching products")
	}
	return c.JSON(recs)
}

// GET /api/transactions?page&perPage&search
func (h *TransactionHandler) Transactions(c *fiber.Ctx) error {
	page := validate.Page(c.Query("page"))
	perPage := validate.PerPage(c.Query("perPage"))
	search := validate.Search(c.Query("search"))

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	recs, err := h.Listing.Page(ctx, search, page, perPage)
	if err != nil {
		log.Error(c, "transactions.list.fail", err, map[string]any{"page": page, "perPage": perPage})
		return c.Status(fiber.StatusInternalServerError).SendString("An error occurred while fetching transactions")
	}
	return c.JSON(recs)
}
