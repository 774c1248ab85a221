package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"txdash/internal/domain"
	"txdash/internal/metrics"
	"txdash/internal/repos"
)

// ErrInvalidWindow marks a month/year pair that cannot form a window.
var ErrInvalidWindow = errors.New("invalid month or year")

type StatsService struct {
	Store   repos.RecordStore
	Metrics *metrics.Metrics
}

func NewStatsService(store repos.RecordStore, m *metrics.Metrics) *StatsService {
	return &StatsService{Store: store, Metrics: m}
}

func window(year, month int) (domain.Window, error) {
	w, err := domain.MonthWindow(year, month)
	if err != nil {
		return domain.Window{}, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	return w, nil
}

// Totals sums sold prices and counts sold and unsold records in the month.
// Each figure is its own store pass.
func (s *StatsService) Totals(ctx context.Context, year, month int) (domain.Statistics, error) {
	w, err := window(year, month)
	if err != nil {
		return domain.Statistics{}, err
	}
	defer s.Metrics.ObserveStats("totals", time.Now())

	amount, err := s.Store.SoldAmount(ctx, w)
	if err != nil {
		return domain.Statistics{}, fmt.Errorf("sold amount: %w", err)
	}
	sold, err := s.Store.CountBySold(ctx, w, true)
	if err != nil {
		return domain.Statistics{}, fmt.Errorf("count sold: %w", err)
	}
	unsold, err := s.Store.CountBySold(ctx, w, false)
	if err != nil {
		return domain.Statistics{}, fmt.Errorf("count unsold: %w", err)
	}
	return domain.Statistics{
		TotalSaleAmount:   amount,
		TotalSoldItems:    sold,
		TotalNotSoldItems: unsold,
	}, nil
}

// PriceRanges counts records of the month per price bucket, in bucket
// order, zero buckets included.
func (s *StatsService) PriceRanges(ctx context.Context, year, month int) ([]domain.PriceRangeCount, error) {
	w, err := window(year, month)
	if err != nil {
		return nil, err
	}
	defer s.Metrics.ObserveStats("price_ranges", time.Now())

	out := make([]domain.PriceRangeCount, 0, len(domain.PriceBuckets))
	for _, b := range domain.PriceBuckets {
		n, err := s.Store.CountInBucket(ctx, w, b)
		if err != nil {
			return nil, fmt.Errorf("count bucket %q: %w", b.Label, err)
		}
		out = append(out, domain.PriceRangeCount{Range: b.Label, Count: n})
	}
	return out, nil
}

// Categories counts records of the month per distinct category.
func (s *StatsService) Categories(ctx context.Context, year, month int) ([]domain.CategoryCount, error) {
	w, err := window(year, month)
	if err != nil {
		return nil, err
	}
	defer s.Metrics.ObserveStats("categories", time.Now())

	out, err := s.Store.CountByCategory(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	if out == nil {
		out = []domain.CategoryCount{}
	}
	return out, nil
}
