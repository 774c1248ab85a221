package main

import (
	"context"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"txdash/internal/config"
	"txdash/internal/events"
	"txdash/internal/http/handlers"
	applog "txdash/internal/log"
	"txdash/internal/metrics"
	"txdash/internal/repos"
	"txdash/web"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		stdlog.Fatalf("[config] %v", err)
	}

	// Optional file logging
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			stdlog.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	zl := applog.New("txdash", cfg.LogLevel, out)
	defer func() { _ = zl.Sync() }()
	applog.SetLogger(zl)

	zl.Info("config",
		zap.String("port", cfg.Port),
		zap.String("backend", repos.Backend(cfg.DBDSN)),
		zap.String("seed_url", cfg.SeedURL),
		zap.Bool("events", cfg.AMQPURL != ""),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
	store, err := repos.Open(ctx, cfg.DBDSN, cfg.DBName)
	cancel()
	if err != nil {
		zl.Fatal("store.open", zap.Error(err))
	}
	defer store.Close()

	var pub events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			// events are best effort; keep serving without them
			zl.Warn("events.disabled", zap.Error(err))
		} else {
			pub = p
		}
	}
	defer pub.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	app := fiber.New(fiber.Config{
		Views:        web.Engine(),
		ErrorHandler: handlers.ErrorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(handlers.SecureHeaders())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{Output: out}))
	app.Use(cors.New(cors.Config{AllowOrigins: "*"}))
	app.Use(m.Middleware())

	// ---------- App handlers ----------
	deps := handlers.NewDeps(store, cfg, nil, pub, m)
	handlers.Routes(app, deps)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		zl.Info("shutdown", zap.String("signal", s.String()))
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			zl.Error("shutdown", zap.Error(err))
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Error("listen", zap.Error(err))
	}
}
