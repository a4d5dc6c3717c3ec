package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"FIBER_PORT", "WEATHERAPI_API_KEY", "CLIENT_TIMEOUT", "SESSION_TTL", "LOG_LEVEL", "COUNTRIES_API_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://countries.trevorblades.com", cfg.CountriesAPI.URL)
	assert.Equal(t, "https://api.weatherapi.com/v1", cfg.WeatherAPI.URL)
	assert.Equal(t, "", cfg.WeatherAPI.APIKey)
	assert.Equal(t, time.Duration(0), cfg.Client.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.TTL)
	assert.Equal(t, "@every 1m", cfg.Sessions.SweepSchedule)
	assert.Equal(t, zapcore.InfoLevel, cfg.Level())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("FIBER_PORT", "9090")
	t.Setenv("WEATHERAPI_API_KEY", "k")
	t.Setenv("CLIENT_TIMEOUT", "5s")
	t.Setenv("MAX_SESSIONS", "12")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "k", cfg.WeatherAPI.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 12, cfg.Sessions.MaxSize)
	assert.Equal(t, zapcore.DebugLevel, cfg.Level())
}

func TestParseHelpersFallBackToZero(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseDuration("soon"))
	assert.Equal(t, 0, parseInt("many"))
}
