package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"txdash/internal/log"
)

// SecureHeaders is helmet with the resource policy relaxed so browsers on
// other origins can read the JSON API.
func SecureHeaders() fiber.Handler {
	return helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	})
}

// Routes mounts the API, dashboard and health endpoints.
func Routes(app *fiber.App, d *Deps) {
	// seeding wipes the store, so throttle it per client
	seedLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|seed"
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Security(c, "rate.seed.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many seed requests, retry soon")
		},
	})

	api := app.Group("/api")
	api.Get("/initialize-db", seedLimiter, d.SeedHandler.Initialize)
	api.Get("/products", d.TransactionHandler.Products)
	api.Get("/transactions", d.TransactionHandler.Transactions)
	api.Get("/statistics", d.StatsHandler.Statistics)
	api.Get("/price-range-data", d.StatsHandler.PriceRanges)
	api.Get("/category-data", d.StatsHandler.Categories)

	app.Get("/", d.DashboardHandler.Show)
	app.Get("/healthz", d.HealthHandler.Check)
}
