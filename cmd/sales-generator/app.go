package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/synthetic-sales-generator/config"
	"github.com/AntonStoeckl/synthetic-sales-generator/sales"
	"github.com/AntonStoeckl/synthetic-sales-generator/sales/generator"
	"github.com/AntonStoeckl/synthetic-sales-generator/sales/notification"
	"github.com/AntonStoeckl/synthetic-sales-generator/sales/oteladapters"
	"github.com/AntonStoeckl/synthetic-sales-generator/sales/promadapters"
	"github.com/AntonStoeckl/synthetic-sales-generator/sales/storage"
)

const (
	flagInitialBurst = "initial-burst"
	flagInterval     = "interval"
	flagMinBatch     = "min-batch"
	flagMaxBatch     = "max-batch"

	meterName = "github.com/AntonStoeckl/synthetic-sales-generator"

	metricsShutdownTimeout    = 5 * time.Second
	notificationShutdownGrace = 500 * time.Millisecond
)

func newApp(stdout, logOutput io.Writer) *cli.App {
	return &cli.App{
		Name:      "sales-generator",
		Usage:     "generate synthetic sales against the sales database",
		Writer:    stdout,
		ErrWriter: logOutput,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: flagInitialBurst, Usage: "sales generated before the periodic phase (overrides GENERATOR_INITIAL_BURST)"},
			&cli.DurationFlag{Name: flagInterval, Usage: "tick period (overrides GENERATOR_INTERVAL)"},
			&cli.IntFlag{Name: flagMinBatch, Usage: "smallest batch per tick (overrides GENERATOR_MIN_BATCH)"},
			&cli.IntFlag{Name: flagMaxBatch, Usage: "largest batch per tick (overrides GENERATOR_MAX_BATCH)"},
		},
		Action: func(c *cli.Context) error {
			return runGenerator(c, logOutput)
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "generate the initial burst, then one batch per tick until interrupted (default)",
				Action: func(c *cli.Context) error {
					return runGenerator(c, logOutput)
				},
			},
			{
				Name:  "check",
				Usage: "verify that the store is reachable and the reference data is usable",
				Action: func(c *cli.Context) error {
					return runCheck(c, stdout)
				},
			},
		},
	}
}

// loadConfig reads the environment and applies the command line overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if c.IsSet(flagInitialBurst) {
		cfg.InitialBurst = c.Int(flagInitialBurst)
	}

	if c.IsSet(flagInterval) {
		cfg.Interval = c.Duration(flagInterval)
	}

	if c.IsSet(flagMinBatch) {
		cfg.MinBatchSize = c.Int(flagMinBatch)
	}

	if c.IsSet(flagMaxBatch) {
		cfg.MaxBatchSize = c.Int(flagMaxBatch)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func runGenerator(c *cli.Context, logOutput io.Writer) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, err := cfg.NewLogger(logOutput)
	if err != nil {
		return err
	}

	metricsCollector, stopMetrics := startMetrics(cfg, logger)
	defer stopMetrics()

	conn, err := cfg.OpenStore(c.Context, storage.WithLogger(logger), storage.WithMetrics(metricsCollector))
	if err != nil {
		return err
	}
	defer conn.Close()

	relay, err := notification.NewRelay(
		cfg.NotificationBaseURL(),
		notification.WithTimeout(cfg.NotifyTimeout),
		notification.WithLogger(logger),
		notification.WithMetrics(metricsCollector),
	)
	if err != nil {
		return errors.Join(sales.ErrInvalidConfig, err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), notificationShutdownGrace)
		defer cancel()

		if shutdownErr := relay.Shutdown(ctx); shutdownErr != nil {
			logger.Warn("abandoned in-flight notifications on shutdown", "error", shutdownErr.Error())
		}
	}()

	scheduler, err := generator.NewScheduler(
		conn.Store,
		relay,
		generator.WithInitialBurst(cfg.InitialBurst),
		generator.WithInterval(cfg.Interval),
		generator.WithBatchSizeRange(cfg.MinBatchSize, cfg.MaxBatchSize),
		generator.WithLogger(logger),
		generator.WithMetrics(metricsCollector),
	)
	if err != nil {
		return errors.Join(sales.ErrInvalidConfig, err)
	}

	return scheduler.Run(c.Context)
}

func runCheck(c *cli.Context, stdout io.Writer) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	conn, err := cfg.OpenStore(c.Context)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(c.Context, cfg.DBConnectTimeout)
	defer cancel()

	if err := conn.Store.Ping(ctx); err != nil {
		return errors.Join(sales.ErrFatalConnect, err)
	}

	snapshot, err := conn.Store.ReferenceSnapshot(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "store reachable: %d products, %d salesmen, %d stores\n",
		len(snapshot.Products), len(snapshot.Salesmen), len(snapshot.Stores))

	if len(snapshot.Products) == 0 || len(snapshot.Salesmen) == 0 || len(snapshot.Stores) == 0 {
		return sales.ErrEmptyReferenceSet
	}

	return nil
}

// startMetrics creates the collector for the configured backend and, for Prometheus with METRICS_ADDR set,
// serves /metrics until the returned stop function is called.
func startMetrics(cfg config.Config, logger *slog.Logger) (sales.MetricsCollector, func()) {
	if cfg.MetricsBackend == config.MetricsBackendOTel {
		if cfg.MetricsAddr != "" {
			logger.Warn("METRICS_ADDR is ignored for the otel metrics backend")
		}

		return oteladapters.NewMetricsCollector(otel.GetMeterProvider().Meter(meterName)), func() {}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	collector := promadapters.NewMetricsCollector(registry)

	if cfg.MetricsAddr == "" {
		return collector, func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promadapters.Handler(registry))

	server := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", "addr", cfg.MetricsAddr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err.Error())
		}
	}()

	return collector, func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()

		_ = server.Shutdown(ctx)
	}
}
