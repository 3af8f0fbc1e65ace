package model

import "github.com/fakhrymubarak/weather-advisor/internal/classifier"

// WeatherReading is the flattened result of one successful lookup.
type WeatherReading struct {
	City               string  `json:"city"`
	Description        string  `json:"description"`
	TemperatureCelsius float64 `json:"temperature_celsius"`
	HumidityPercent    int     `json:"humidity_percent"`
	WindSpeedMps       float64 `json:"wind_speed_mps"`
	CountryCode        string  `json:"country_code"`
}

// Report is what the display surface renders for a city.
type Report struct {
	Reading        WeatherReading           `json:"reading"`
	Background     classifier.BackgroundKey `json:"background"`
	BackgroundURL  string                   `json:"background_url"`
	Recommendation string                   `json:"recommendation"`
}
