package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"txdash/internal/config"
	"txdash/internal/domain"
	"txdash/internal/http/handlers"
	"txdash/internal/metrics"
	"txdash/internal/repos"
	"txdash/internal/seed"
	"txdash/web"
)

// Two January 2022 sales and one February sale; ids out of order on purpose.
const seedDoc = `[
  {"id":2,"title":"Mens Cotton Jacket","price":55.99,"description":"great outerwear jackets","category":"men's clothing","image":"https://example.com/2.jpg","sold":true,"dateOfSale":"2022-01-15T10:00:00Z"},
  {"id":1,"title":"Fjallraven Backpack","price":109.95,"description":"Your perfect pack","category":"men's clothing","image":"https://example.com/1.jpg","sold":false,"dateOfSale":"2022-01-31T23:30:00Z"},
  {"id":3,"title":"WD 2TB Elements","price":964,"description":"USB 3.0 and USB 2.0 compatibility","category":"electronics","image":"https://example.com/3.jpg","sold":true,"dateOfSale":"2022-02-01T00:00:00Z"}
]`

// countingStore counts store calls issued by handlers.
type countingStore struct {
	repos.RecordStore
	calls atomic.Int64
}

func (s *countingStore) SoldAmount(ctx context.Context, w domain.Window) (float64, error) {
	s.calls.Add(1)
	return s.RecordStore.SoldAmount(ctx, w)
}

func (s *countingStore) CountBySold(ctx context.Context, w domain.Window, sold bool) (int64, error) {
	s.calls.Add(1)
	return s.RecordStore.CountBySold(ctx, w, sold)
}

func (s *countingStore) CountInBucket(ctx context.Context, w domain.Window, b domain.PriceBucket) (int64, error) {
	s.calls.Add(1)
	return s.RecordStore.CountInBucket(ctx, w, b)
}

func (s *countingStore) CountByCategory(ctx context.Context, w domain.Window) ([]domain.CategoryCount, error) {
	s.calls.Add(1)
	return s.RecordStore.CountByCategory(ctx, w)
}

type testEnv struct {
	app     *fiber.App
	store   *countingStore
	metrics *metrics.Metrics
}

func seedServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newTestEnv wires the real routes over an in-memory store.
func newTestEnv(t *testing.T, seedURL string) *testEnv {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := &countingStore{RecordStore: repos.NewRecordRepo(db)}

	cfg := config.Config{
		DBDSN:        ":memory:",
		SeedURL:      seedURL,
		SeedTimeout:  5 * time.Second,
		StoreTimeout: 5 * time.Second,
	}
	m := metrics.New(prometheus.NewRegistry())

	app := fiber.New(fiber.Config{Views: web.Engine(), ErrorHandler: handlers.ErrorHandler})
	app.Use(handlers.SecureHeaders())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{AllowOrigins: "*"}))
	app.Use(m.Middleware())

	deps := handlers.NewDeps(store, cfg, seed.NewHTTPSource(cfg.SeedURL, cfg.SeedTimeout), nil, m)
	handlers.Routes(app, deps)
	return &testEnv{app: app, store: store, metrics: m}
}

func newSeededEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t, seedServer(t, seedDoc, http.StatusOK).URL)
	resp := env.get(t, "/api/initialize-db")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return env
}

func (e *testEnv) get(t *testing.T, target string) *http.Response {
	t.Helper()
	resp, err := e.app.Test(httptest.NewRequest("GET", target, nil), -1)
	require.NoError(t, err)
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}
