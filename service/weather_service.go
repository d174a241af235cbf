// Package service implements the weather lookup orchestration and message
// rendering on top of the cached upstream client.
package service

import (
	"encoding/json"

	"weatherbot.app/errors"
	"weatherbot.app/models"
	"weatherbot.app/providers"
)

// WeatherService decodes verbatim upstream payloads into typed views. The
// cache sits below the client it is given, so every method transparently
// benefits from the lookup/fetch/upsert cycle.
type WeatherService struct {
	client providers.WeatherClient
}

// NewWeatherService creates a weather service backed by the given client
func NewWeatherService(client providers.WeatherClient) *WeatherService {
	return &WeatherService{client: client}
}

// GetCurrentWeatherByCity retrieves and decodes current weather for a city
func (s *WeatherService) GetCurrentWeatherByCity(city string) (*models.CurrentWeather, error) {
	if city == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	payload, err := s.client.CurrentWeatherByCity(city)
	if err != nil {
		return nil, err
	}

	var weather models.CurrentWeather
	if err := json.Unmarshal(payload, &weather); err != nil {
		return nil, errors.NewExternalAPIError("decode current weather payload", err)
	}

	return &weather, nil
}

// GetCurrentWeatherByCoords retrieves current weather for a coordinate pair
func (s *WeatherService) GetCurrentWeatherByCoords(lat, lon float64) (*models.CurrentWeather, error) {
	payload, err := s.client.CurrentWeatherByCoords(lat, lon)
	if err != nil {
		return nil, err
	}

	var weather models.CurrentWeather
	if err := json.Unmarshal(payload, &weather); err != nil {
		return nil, errors.NewExternalAPIError("decode current weather payload", err)
	}

	return &weather, nil
}

// GetForecast retrieves the 5-day/3-hour forecast for a city
func (s *WeatherService) GetForecast(city string) (*models.Forecast, error) {
	if city == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	payload, err := s.client.ForecastByCity(city)
	if err != nil {
		return nil, err
	}

	var forecast models.Forecast
	if err := json.Unmarshal(payload, &forecast); err != nil {
		return nil, errors.NewExternalAPIError("decode forecast payload", err)
	}

	return &forecast, nil
}

// GetAirQuality retrieves air pollution data for a coordinate pair
func (s *WeatherService) GetAirQuality(lat, lon float64) (*models.AirQuality, error) {
	payload, err := s.client.AirQuality(lat, lon)
	if err != nil {
		return nil, err
	}

	var air models.AirQuality
	if err := json.Unmarshal(payload, &air); err != nil {
		return nil, errors.NewExternalAPIError("decode air quality payload", err)
	}

	return &air, nil
}

// GetExtendedWeather retrieves current weather plus air quality for the
// city's confirmed coordinates. A failed air-quality fetch degrades to
// weather-only rather than failing the whole request.
func (s *WeatherService) GetExtendedWeather(city string) (*models.CurrentWeather, *models.AirQuality, error) {
	weather, err := s.GetCurrentWeatherByCity(city)
	if err != nil {
		return nil, nil, err
	}

	air, err := s.GetAirQuality(weather.Coord.Lat, weather.Coord.Lon)
	if err != nil {
		return weather, nil, nil
	}

	return weather, air, nil
}

// Locate resolves a city name to coordinates and the canonical name
func (s *WeatherService) Locate(city string) (*models.Location, error) {
	if city == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	payload, err := s.client.Geocode(city)
	if err != nil {
		return nil, err
	}

	return decodeLocation(payload)
}

// ReverseLocate resolves coordinates to the nearest named place
func (s *WeatherService) ReverseLocate(lat, lon float64) (*models.Location, error) {
	payload, err := s.client.ReverseGeocode(lat, lon)
	if err != nil {
		return nil, err
	}

	return decodeLocation(payload)
}

func decodeLocation(payload json.RawMessage) (*models.Location, error) {
	var locations []models.Location
	if err := json.Unmarshal(payload, &locations); err != nil {
		return nil, errors.NewExternalAPIError("decode geocoding payload", err)
	}
	if len(locations) == 0 {
		return nil, errors.NewNotFoundError("location not found")
	}

	return &locations[0], nil
}
