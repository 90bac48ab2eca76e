// Command notification-sink runs a mock payment notification endpoint for local runs of the sales generator.
package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AntonStoeckl/synthetic-sales-generator/config"
	"github.com/AntonStoeckl/synthetic-sales-generator/notificationsink"
)

func main() {
	cfg, err := config.LoadSink()
	if err != nil {
		panic(fmt.Errorf("error loading sink configuration: %w", err))
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Errorf("error creating logger: %w", err))
	}
	defer func() { _ = logger.Sync() }()

	sink, err := notificationsink.NewSink(logger, notificationsink.WithFailureRate(cfg.FailureRate))
	if err != nil {
		panic(fmt.Errorf("error creating sink: %w", err))
	}

	r := gin.Default()
	sink.InitRoutes(r)

	logger.Info("notification sink listening", zap.String("addr", cfg.Addr), zap.Float64("failure_rate", cfg.FailureRate))

	if err := r.Run(cfg.Addr); err != nil {
		panic(fmt.Errorf("error trying to start server: %w", err))
	}
}
