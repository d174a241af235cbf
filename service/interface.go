package service

import "weatherbot.app/models"

// WeatherServiceInterface defines weather lookup operations consumed by the
// API layer and the notification sweep.
type WeatherServiceInterface interface {
	GetCurrentWeatherByCity(city string) (*models.CurrentWeather, error)
	GetCurrentWeatherByCoords(lat, lon float64) (*models.CurrentWeather, error)
	GetForecast(city string) (*models.Forecast, error)
	GetAirQuality(lat, lon float64) (*models.AirQuality, error)
	GetExtendedWeather(city string) (*models.CurrentWeather, *models.AirQuality, error)
	Locate(city string) (*models.Location, error)
	ReverseLocate(lat, lon float64) (*models.Location, error)
}

// NotificationRunner is the scheduler's view of the notification service
type NotificationRunner interface {
	RunDueNotifications() error
}
