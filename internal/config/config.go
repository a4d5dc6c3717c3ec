package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string
	}

	CountriesAPI struct {
		URL string
	}

	WeatherAPI struct {
		URL    string
		APIKey string
	}

	// Zero disables the client timeout.
	Client struct {
		Timeout time.Duration
	}

	CircuitBreaker struct {
		Threshold int
		Timeout   time.Duration
	}

	Sessions struct {
		TTL           time.Duration
		MaxSize       int
		SweepSchedule string
	}

	Explorer struct {
		LogFile string
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("FIBER_PORT", "8080")
	cfg.Server.ReadTimeout = parseDuration(getEnv("FIBER_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("FIBER_WRITE_TIMEOUT", "10s"))
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	// Upstream services
	cfg.CountriesAPI.URL = getEnv("COUNTRIES_API_URL", "https://countries.trevorblades.com")
	cfg.WeatherAPI.URL = getEnv("WEATHERAPI_URL", "https://api.weatherapi.com/v1")
	cfg.WeatherAPI.APIKey = getEnv("WEATHERAPI_API_KEY", "")
	cfg.Client.Timeout = parseDuration(getEnv("CLIENT_TIMEOUT", "0s"))

	// Circuit breaker configuration
	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "3"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// Session configuration
	cfg.Sessions.TTL = parseDuration(getEnv("SESSION_TTL", "30m"))
	cfg.Sessions.MaxSize = parseInt(getEnv("MAX_SESSIONS", "1000"))
	cfg.Sessions.SweepSchedule = getEnv("SESSION_SWEEP_SCHEDULE", "@every 1m")

	cfg.Explorer.LogFile = getEnv("EXPLORER_LOG_FILE", "explorer.log")

	if cfg.WeatherAPI.APIKey == "" {
		zap.L().Warn("WEATHERAPI_API_KEY is not set, weather lookups will fail")
	}

	return cfg, nil
}

// Level parses LOG_LEVEL, falling back to info.
func (c *Config) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Server.LogLevel)
	if err != nil {
		zap.L().Warn("Failed to parse log level", zap.String("value", c.Server.LogLevel), zap.Error(err))
		return zapcore.InfoLevel
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}
