package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobby-s-dev/countries-explorer/internal/api"
	"github.com/bobby-s-dev/countries-explorer/internal/config"
	"github.com/bobby-s-dev/countries-explorer/internal/metrics"
	"github.com/bobby-s-dev/countries-explorer/internal/scheduler"
	"github.com/bobby-s-dev/countries-explorer/internal/services"
	"github.com/bobby-s-dev/countries-explorer/pkg/client"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	zap.ReplaceGlobals(logger)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.Level())
	if leveled, err := zapCfg.Build(); err == nil {
		logger = leveled
		zap.ReplaceGlobals(logger)
	}
	defer logger.Sync()

	logger.Info("Starting Countries Explorer Service")

	clientConfig := client.ClientConfig{
		Timeout:        cfg.Client.Timeout,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
		Observe:        metrics.ObserveUpstream,
	}

	// One countries client for the whole process.
	countries := client.NewCountriesClient(cfg.CountriesAPI.URL, clientConfig, logger)
	weatherClient := client.NewWeatherAPIClient(cfg.WeatherAPI.URL, cfg.WeatherAPI.APIKey, clientConfig, logger)

	sessions := services.NewSessionStore(countries, weatherClient, cfg.Sessions.TTL, cfg.Sessions.MaxSize, logger)
	sessions.OnChange(metrics.SetActiveSessions)

	// Initialize scheduler
	sweepScheduler := scheduler.NewScheduler(sessions, cfg.Sessions.SweepSchedule, logger)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		JSONEncoder:  json.Marshal,
		ErrorHandler: api.ErrorHandler,
	})

	// Setup handlers and routes
	handler := api.NewHandler(sessions, countries, weatherClient, logger).
		WithUpstreams(countries, weatherClient).
		WithScheduler(sweepScheduler)
	api.SetupRoutes(app, handler, logger)

	// Start scheduler
	if err := sweepScheduler.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop scheduler
	sweepScheduler.Stop()

	// Shutdown Fiber app
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
