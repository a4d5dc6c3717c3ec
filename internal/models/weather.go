package models

type WeatherSnapshot struct {
	LocationName       string  `json:"location_name"`
	TemperatureCelsius float64 `json:"temperature_celsius"`
	ConditionText      string  `json:"condition_text"`
	ConditionIconURL   string  `json:"condition_icon_url"`
}
