package services_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"txdash/internal/domain"
	"txdash/internal/repos"
	"txdash/internal/seed"
)

func memStore(t *testing.T) *repos.RecordRepo {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repos.NewRecordRepo(db)
}

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 30, 0, 0, time.UTC)
}

// countingStore counts every store call that reaches the backend.
type countingStore struct {
	repos.RecordStore
	calls atomic.Int64
}

func (s *countingStore) hit() { s.calls.Add(1) }

func (s *countingStore) SoldAmount(ctx context.Context, w domain.Window) (float64, error) {
	s.hit()
	return s.RecordStore.SoldAmount(ctx, w)
}

func (s *countingStore) CountBySold(ctx context.Context, w domain.Window, sold bool) (int64, error) {
	s.hit()
	return s.RecordStore.CountBySold(ctx, w, sold)
}

func (s *countingStore) CountInBucket(ctx context.Context, w domain.Window, b domain.PriceBucket) (int64, error) {
	s.hit()
	return s.RecordStore.CountInBucket(ctx, w, b)
}

func (s *countingStore) CountByCategory(ctx context.Context, w domain.Window) ([]domain.CategoryCount, error) {
	s.hit()
	return s.RecordStore.CountByCategory(ctx, w)
}

func (s *countingStore) ReplaceAll(ctx context.Context, recs []domain.Record) error {
	s.hit()
	return s.RecordStore.ReplaceAll(ctx, recs)
}

// staticSource serves fixed items, optionally blocking until release.
type staticSource struct {
	items   []seed.Item
	err     error
	fetches atomic.Int64
	release chan struct{}
	started chan struct{}
}

func (s *staticSource) Fetch(ctx context.Context) ([]seed.Item, error) {
	s.fetches.Add(1)
	if s.started != nil {
		close(s.started)
		s.started = nil
	}
	if s.release != nil {
		<-s.release
	}
	return s.items, s.err
}
