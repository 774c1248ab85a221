package repos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txdash/internal/domain"
	"txdash/internal/repos"
)

func memStore(t *testing.T) *repos.RecordRepo {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repos.NewRecordRepo(db)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func fixtures() []domain.Record {
	return []domain.Record{
		{ID: 3, Title: "Mens Cotton Jacket", Description: "great outerwear", Category: "men's clothing", Price: 55.99, Sold: true, DateOfSale: day(2022, 1, 10)},
		{ID: 1, Title: "Fjallraven Backpack", Description: "Your perfect pack", Category: "men's clothing", Price: 109.95, Sold: false, DateOfSale: day(2022, 1, 31)},
		{ID: 2, Title: "Solid Gold Petite", Description: "Micropave ring", Category: "jewelery", Price: 168, Sold: true, DateOfSale: day(2022, 2, 1)},
		{ID: 4, Title: "SanDisk SSD", Description: "100% tested 1TB", Category: "electronics", Price: 950, Sold: true, DateOfSale: day(2022, 1, 1)},
		{ID: 5, Title: "Rain Jacket", Description: "lightweight", Category: "women's clothing", Price: 100.5, Sold: false, DateOfSale: day(2021, 12, 31)},
	}
}

func seeded(t *testing.T) *repos.RecordRepo {
	t.Helper()
	r := memStore(t)
	require.NoError(t, r.ReplaceAll(context.Background(), fixtures()))
	return r
}

func jan2022(t *testing.T) domain.Window {
	t.Helper()
	w, err := domain.MonthWindow(2022, 1)
	require.NoError(t, err)
	return w
}

func TestRecordRepo_ReplaceAllRoundTrip(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	all, err := r.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)

	ids := []int64{}
	for _, rec := range all {
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids)

	jacket := all[2]
	assert.Equal(t, "Mens Cotton Jacket", jacket.Title)
	assert.Equal(t, 55.99, jacket.Price)
	assert.True(t, jacket.Sold)
	assert.True(t, day(2022, 1, 10).Equal(jacket.DateOfSale))
	assert.Equal(t, time.UTC, jacket.DateOfSale.Location())
}

func TestRecordRepo_ReplaceAllDiscardsPrevious(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	next := []domain.Record{{ID: 9, Title: "only", DateOfSale: day(2022, 3, 3)}}
	require.NoError(t, r.ReplaceAll(ctx, next))
	require.NoError(t, r.ReplaceAll(ctx, next))

	all, err := r.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(9), all[0].ID)

	require.NoError(t, r.ReplaceAll(ctx, nil))
	all, err = r.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRecordRepo_ReplaceAllBatches(t *testing.T) {
	r := memStore(t)
	ctx := context.Background()

	recs := make([]domain.Record, 0, 250)
	for i := 0; i < 250; i++ {
		recs = append(recs, domain.Record{ID: int64(i), Title: "bulk", Price: float64(i), DateOfSale: day(2022, 1, 1)})
	}
	require.NoError(t, r.ReplaceAll(ctx, recs))

	all, err := r.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 250)
}

func TestRecordRepo_Page(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	p1, err := r.Page(ctx, "", 2, 0)
	require.NoError(t, err)
	require.Len(t, p1, 2)
	assert.Equal(t, int64(1), p1[0].ID)
	assert.Equal(t, int64(2), p1[1].ID)

	p3, err := r.Page(ctx, "", 2, 4)
	require.NoError(t, err)
	require.Len(t, p3, 1)
	assert.Equal(t, int64(5), p3[0].ID)

	beyond, err := r.Page(ctx, "", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestRecordRepo_PageSearch(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	tests := []struct {
		search string
		want   []int64
	}{
		{"jacket", []int64{3, 5}},
		{"JACKET", []int64{3, 5}},
		{"perfect", []int64{1}},
		{"109.95", []int64{1}},
		{"168", []int64{2}},
		{"168.0", nil},
		{"950.0", nil},
		{"100.5", []int64{5}},
		{"100%", []int64{4}},
		{"%", []int64{4}},
		{"_", nil},
		{"nothing-like-this", nil},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got, err := r.Page(ctx, tt.search, 10, 0)
			require.NoError(t, err)
			ids := []int64{}
			for _, rec := range got {
				ids = append(ids, rec.ID)
			}
			if tt.want == nil {
				assert.Empty(t, ids)
				return
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestRecordRepo_SoldPartitions(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()
	w := jan2022(t)

	amount, err := r.SoldAmount(ctx, w)
	require.NoError(t, err)
	assert.InDelta(t, 55.99+950, amount, 1e-9)

	sold, err := r.CountBySold(ctx, w, true)
	require.NoError(t, err)
	unsold, err := r.CountBySold(ctx, w, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sold)
	assert.Equal(t, int64(1), unsold)

	empty, err := domain.MonthWindow(2019, 6)
	require.NoError(t, err)
	amount, err = r.SoldAmount(ctx, empty)
	require.NoError(t, err)
	assert.Zero(t, amount)
}

func TestRecordRepo_BucketsSumToWindow(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()
	w := jan2022(t)

	counts := map[string]int64{}
	var total int64
	for _, b := range domain.PriceBuckets {
		n, err := r.CountInBucket(ctx, w, b)
		require.NoError(t, err)
		counts[b.Label] = n
		total += n
	}
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(1), counts["0 - 100"])
	assert.Equal(t, int64(1), counts["101 - 200"])
	assert.Equal(t, int64(1), counts["901 - Above"])
}

func TestRecordRepo_CountByCategory(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()

	got, err := r.CountByCategory(ctx, jan2022(t))
	require.NoError(t, err)
	assert.Equal(t, []domain.CategoryCount{
		{Category: "electronics", Count: 1},
		{Category: "men's clothing", Count: 2},
	}, got)

	none, err := domain.MonthWindow(2030, 1)
	require.NoError(t, err)
	got, err = r.CountByCategory(ctx, none)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecordRepo_Ping(t *testing.T) {
	r := memStore(t)
	assert.NoError(t, r.Ping(context.Background()))
}

func TestBackend(t *testing.T) {
	assert.Equal(t, "mongo", repos.Backend("mongodb://localhost:27017"))
	assert.Equal(t, "mongo", repos.Backend("mongodb+srv://cluster0.example.net"))
	assert.Equal(t, "postgres", repos.Backend("postgres://u:p@localhost/db"))
	assert.Equal(t, "postgres", repos.Backend("postgresql://u:p@localhost/db"))
	assert.Equal(t, "sqlite", repos.Backend("txdash.db"))
	assert.Equal(t, "sqlite", repos.Backend(":memory:"))
}

func TestOpenSQLite(t *testing.T) {
	st, err := repos.Open(context.Background(), ":memory:", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	assert.IsType(t, &repos.RecordRepo{}, st)
}
