package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bobby-s-dev/countries-explorer/internal/config"
	"github.com/bobby-s-dev/countries-explorer/internal/services"
	"github.com/bobby-s-dev/countries-explorer/internal/tui"
	"github.com/bobby-s-dev/countries-explorer/pkg/client"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a rotating file.
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Explorer.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}),
		cfg.Level(),
	)
	logger := zap.New(core)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	clientConfig := client.ClientConfig{
		Timeout:        cfg.Client.Timeout,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}
	countries := client.NewCountriesClient(cfg.CountriesAPI.URL, clientConfig, logger)
	weatherClient := client.NewWeatherAPIClient(cfg.WeatherAPI.URL, cfg.WeatherAPI.APIKey, clientConfig, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := services.NewSession("", countries, weatherClient, logger)
	defer session.Close()

	logger.Info("Starting Countries Explorer")

	if _, err := tea.NewProgram(tui.NewApp(ctx, session, logger), tea.WithAltScreen()).Run(); err != nil {
		logger.Error("Explorer exited with error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "explorer: %v\n", err)
		os.Exit(1)
	}
}
