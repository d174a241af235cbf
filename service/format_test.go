package service

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weatherbot.app/models"
)

func sampleWeather(t *testing.T) *models.CurrentWeather {
	t.Helper()

	var w models.CurrentWeather
	err := json.Unmarshal([]byte(`{
		"name": "Moscow",
		"coord": {"lat": 55.7558, "lon": 37.6176},
		"main": {"temp": 21.5, "feels_like": 20.1, "humidity": 60, "pressure": 1012},
		"weather": [{"description": "clear sky"}],
		"wind": {"speed": 3.2},
		"visibility": 10000,
		"clouds": {"all": 20},
		"sys": {"sunrise": 1717207200, "sunset": 1717268400}
	}`), &w)
	require.NoError(t, err)

	return &w
}

func TestFormatCurrentWeather(t *testing.T) {
	msg := FormatCurrentWeather(sampleWeather(t))

	assert.Contains(t, msg, "Weather in Moscow")
	assert.Contains(t, msg, "Temperature: 21.5°C (feels like 20.1°C)")
	assert.Contains(t, msg, "Humidity: 60%")
	assert.Contains(t, msg, "Wind: 3.2 m/s")
	assert.Contains(t, msg, "Conditions: clear sky")
}

func TestFormatComparison(t *testing.T) {
	a := sampleWeather(t)
	b := sampleWeather(t)
	b.Name = "London"
	b.Main.Temp = 15.0

	msg := FormatComparison(a, b)

	assert.Contains(t, msg, "Weather comparison: Moscow vs London")
	assert.Contains(t, msg, "Moscow is warmer by 6.5°C")
}

func TestFormatComparisonEqualTemps(t *testing.T) {
	a := sampleWeather(t)
	b := sampleWeather(t)
	b.Name = "London"

	msg := FormatComparison(a, b)
	assert.NotContains(t, msg, "warmer")
}

func forecastWith(t *testing.T, items string) *models.Forecast {
	t.Helper()

	var f models.Forecast
	err := json.Unmarshal([]byte(`{"city": {"name": "Moscow"}, "list": [`+items+`]}`), &f)
	require.NoError(t, err)

	return &f
}

func TestFormatDailyForecastAveragesPerDay(t *testing.T) {
	// Two slots on 2024-06-01 (12.0, 18.0) and one on 2024-06-02 (20.0)
	f := forecastWith(t, `
		{"dt": 1717243200, "main": {"temp": 12.0}, "weather": [{"description": "rain"}]},
		{"dt": 1717254000, "main": {"temp": 18.0}, "weather": [{"description": "clouds"}]},
		{"dt": 1717329600, "main": {"temp": 20.0}, "weather": [{"description": "clear sky"}]}`)

	msg := FormatDailyForecast(f)

	assert.Contains(t, msg, "5-day forecast for Moscow")
	assert.Contains(t, msg, "01.06 Saturday: 15.0°C")
	assert.Contains(t, msg, "02.06 Sunday: 20.0°C")
}

func TestFormatHourlyForecastFiltersByDay(t *testing.T) {
	f := forecastWith(t, `
		{"dt": 1717243200, "main": {"temp": 12.0}, "weather": [{"description": "rain"}]},
		{"dt": 1717329600, "main": {"temp": 20.0}, "weather": [{"description": "clear sky"}]}`)

	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	today := FormatHourlyForecast(f, 0, now)
	assert.Contains(t, today, "2024-06-01")
	assert.Contains(t, today, "12.0°C, rain")
	assert.NotContains(t, today, "clear sky")

	tomorrow := FormatHourlyForecast(f, 1, now)
	assert.Contains(t, tomorrow, "20.0°C, clear sky")
}

func TestFormatHourlyForecastNoData(t *testing.T) {
	f := forecastWith(t, `{"dt": 1717243200, "main": {"temp": 12.0}, "weather": []}`)

	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	msg := FormatHourlyForecast(f, 0, now)
	assert.True(t, strings.HasPrefix(msg, "No forecast data"))
}

func TestFormatExtendedWeather(t *testing.T) {
	var air models.AirQuality
	require.NoError(t, json.Unmarshal([]byte(`{"list": [{"main": {"aqi": 2}, "components": {"o3": 68.66}}]}`), &air))

	msg := FormatExtendedWeather(sampleWeather(t), &air)

	assert.Contains(t, msg, "Extended weather for Moscow")
	assert.Contains(t, msg, "Visibility: 10.0 km")
	assert.Contains(t, msg, "Cloud cover: 20%")
	assert.Contains(t, msg, "Air quality: Fair")
	assert.Contains(t, msg, "O3: 68.66")
}

func TestFormatExtendedWeatherWithoutAirQuality(t *testing.T) {
	msg := FormatExtendedWeather(sampleWeather(t), nil)
	assert.NotContains(t, msg, "Air quality")
}

func TestAirQualityLabel(t *testing.T) {
	tests := []struct {
		aqi  int
		want string
	}{
		{1, "Good"},
		{2, "Fair"},
		{3, "Moderate"},
		{4, "Poor"},
		{5, "Very Poor"},
		{0, "Unknown"},
		{9, "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AirQualityLabel(tt.aqi))
	}
}
