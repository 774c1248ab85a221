package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	SeedRuns      *prometheus.CounterVec
	SeededRecords prometheus.Gauge
	StatsQuery    *prometheus.HistogramVec
	HTTPRequests  *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SeedRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "txdash_seed_runs_total",
			Help: "Seed attempts by result.",
		}, []string{"result"}),
		SeededRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "txdash_seeded_records",
			Help: "Records written by the last successful seed.",
		}),
		StatsQuery: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "txdash_stats_query_seconds",
			Help:    "Latency of statistics computations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "txdash_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.SeedRuns, m.SeededRecords, m.StatsQuery, m.HTTPRequests)
	return m
}

func (m *Metrics) SeedOK(n int) {
	if m == nil {
		return
	}
	m.SeedRuns.WithLabelValues("ok").Inc()
	m.SeededRecords.Set(float64(n))
}

func (m *Metrics) SeedFailed() {
	if m == nil {
		return
	}
	m.SeedRuns.WithLabelValues("error").Inc()
}

// ObserveStats records how long op took since start.
func (m *Metrics) ObserveStats(op string, start time.Time) {
	if m == nil {
		return
	}
	m.StatsQuery.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Middleware counts requests by matched route pattern.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.HTTPRequests.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).Inc()
		return err
	}
}
