package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bobby-s-dev/countries-explorer/internal/models"
	"go.uber.org/zap"
)

var (
	ErrMissingAPIKey   = errors.New("weather API key is not configured")
	ErrMissingLocation = errors.New("location is required")
)

// WeatherAPIClient reads current conditions from weatherapi.com.
type WeatherAPIClient struct {
	*BaseClient
	apiKey  string
	baseURL string
}

type WeatherAPICurrentResponse struct {
	Location struct {
		Name    string  `json:"name"`
		Region  string  `json:"region"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		TzID    string  `json:"tz_id"`
	} `json:"location"`
	Current *struct {
		TempC     float64 `json:"temp_c"`
		Condition struct {
			Text string `json:"text"`
			Icon string `json:"icon"`
			Code int    `json:"code"`
		} `json:"condition"`
	} `json:"current"`
}

func NewWeatherAPIClient(baseURL, apiKey string, config ClientConfig, logger *zap.Logger) *WeatherAPIClient {
	return &WeatherAPIClient{
		BaseClient: NewBaseClient("weatherapi", config, logger),
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c *WeatherAPIClient) CurrentWeather(ctx context.Context, location string) (*models.WeatherSnapshot, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(location) == "" {
		return nil, ErrMissingLocation
	}

	query := url.Values{}
	query.Set("key", c.apiKey)
	query.Set("q", location)
	endpoint := fmt.Sprintf("%s/current.json?%s", c.baseURL, query.Encode())

	data, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current weather: %w", err)
	}

	var response WeatherAPICurrentResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if response.Current == nil || response.Location.Name == "" {
		return nil, fmt.Errorf("incomplete weather response for %s", location)
	}

	icon := response.Current.Condition.Icon
	if strings.HasPrefix(icon, "//") {
		icon = "https:" + icon
	}

	return &models.WeatherSnapshot{
		LocationName:       response.Location.Name,
		TemperatureCelsius: response.Current.TempC,
		ConditionText:      response.Current.Condition.Text,
		ConditionIconURL:   icon,
	}, nil
}
