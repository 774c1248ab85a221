package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"txdash/internal/config"
	"txdash/internal/events"
	"txdash/internal/metrics"
	"txdash/internal/repos"
	"txdash/internal/seed"
	"txdash/internal/services"
)

type Deps struct {
	SeedHandler        *SeedHandler
	TransactionHandler *TransactionHandler
	StatsHandler       *StatsHandler
	DashboardHandler   *DashboardHandler
	HealthHandler      *HealthHandler
}

func NewDeps(store repos.RecordStore, cfg config.Config, src seed.Source, pub events.Publisher, m *metrics.Metrics) *Deps {
	if src == nil {
		src = seed.NewHTTPSource(cfg.SeedURL, cfg.SeedTimeout)
	}
	timeout := cfg.StoreTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	listing := services.NewListingService(store)
	stats := services.NewStatsService(store, m)
	seeder := services.NewSeedService(store, src, cfg.SeedURL, pub, m)
	seeder.Timeout = timeout + cfg.SeedTimeout

	return &Deps{
		SeedHandler:        &SeedHandler{Seed: seeder, Timeout: seeder.Timeout},
		TransactionHandler: &TransactionHandler{Listing: listing, Timeout: timeout},
		StatsHandler:       &StatsHandler{Stats: stats, Timeout: timeout},
		DashboardHandler:   &DashboardHandler{Listing: listing, Stats: stats, Timeout: timeout},
		HealthHandler:      &HealthHandler{Store: store},
	}
}

// requestCtx bounds store work for one request.
func requestCtx(c *fiber.Ctx, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), d)
}
