package providers

import (
	"encoding/json"

	"weatherbot.app/models"
	"weatherbot.app/providers/cache"
)

// WeatherClient is the upstream fetch collaborator. Every method returns the
// provider's JSON payload verbatim so responses can be cached without
// interpretation; decoding happens at the service layer.
type WeatherClient interface {
	CurrentWeatherByCity(city string) (json.RawMessage, error)
	CurrentWeatherByCoords(lat, lon float64) (json.RawMessage, error)
	ForecastByCity(city string) (json.RawMessage, error)
	AirQuality(lat, lon float64) (json.RawMessage, error)
	Geocode(city string) (json.RawMessage, error)
	ReverseGeocode(lat, lon float64) (json.RawMessage, error)
}

// Cache is an alias to avoid spelling the nested import everywhere
type Cache = cache.Cache

// Notifier delivers a rendered weather update to a user
type Notifier interface {
	Notify(user *models.UserSettings, subject, body string) error
}
