package providers

import (
	"encoding/json"
	"log/slog"

	"weatherbot.app/providers/cache"
)

// CachedWeatherClient decorates a WeatherClient with the response cache.
// Each call follows the same contract: lookup, on miss fetch upstream, on
// success upsert, then return the payload. A failed upsert is logged and
// swallowed - the cache must never block the weather response.
type CachedWeatherClient struct {
	upstream WeatherClient
	cache    Cache
}

func NewCachedWeatherClient(upstream WeatherClient, c Cache) *CachedWeatherClient {
	return &CachedWeatherClient{
		upstream: upstream,
		cache:    c,
	}
}

func (c *CachedWeatherClient) CurrentWeatherByCity(city string) (json.RawMessage, error) {
	return c.through(cache.KindCurrentWeather, cache.CityKey(city), canonicalCityKey,
		func() (json.RawMessage, error) { return c.upstream.CurrentWeatherByCity(city) })
}

func (c *CachedWeatherClient) CurrentWeatherByCoords(lat, lon float64) (json.RawMessage, error) {
	return c.through(cache.KindCurrentWeather, cache.CoordKey(lat, lon), nil,
		func() (json.RawMessage, error) { return c.upstream.CurrentWeatherByCoords(lat, lon) })
}

func (c *CachedWeatherClient) ForecastByCity(city string) (json.RawMessage, error) {
	return c.through(cache.KindForecast, cache.CityKey(city), nil,
		func() (json.RawMessage, error) { return c.upstream.ForecastByCity(city) })
}

func (c *CachedWeatherClient) AirQuality(lat, lon float64) (json.RawMessage, error) {
	return c.through(cache.KindAirQuality, cache.CoordKey(lat, lon), nil,
		func() (json.RawMessage, error) { return c.upstream.AirQuality(lat, lon) })
}

func (c *CachedWeatherClient) Geocode(city string) (json.RawMessage, error) {
	return c.through(cache.KindGeocoding, cache.CityKey(city), nil,
		func() (json.RawMessage, error) { return c.upstream.Geocode(city) })
}

func (c *CachedWeatherClient) ReverseGeocode(lat, lon float64) (json.RawMessage, error) {
	return c.through(cache.KindReverseGeocoding, cache.CoordKey(lat, lon), nil,
		func() (json.RawMessage, error) { return c.upstream.ReverseGeocode(lat, lon) })
}

// through runs one lookup/fetch/upsert cycle. canonicalize, when non-nil, may
// derive the storage key from the fetched payload so city entries are saved
// under the upstream-confirmed name rather than whatever the caller typed.
func (c *CachedWeatherClient) through(
	kind cache.Kind,
	key cache.Key,
	canonicalize func(json.RawMessage) (cache.Key, bool),
	fetch func() (json.RawMessage, error),
) (json.RawMessage, error) {
	if payload, ok := c.cache.Lookup(kind, key); ok {
		slog.Info("cache hit", "kind", kind, "key", key.String())
		return payload, nil
	}

	slog.Info("cache miss", "kind", kind, "key", key.String())

	payload, err := fetch()
	if err != nil {
		return nil, err
	}

	storeKey := key
	if canonicalize != nil {
		if canonical, ok := canonicalize(payload); ok {
			storeKey = canonical
		}
	}

	if err := c.cache.Upsert(kind, storeKey, payload); err != nil {
		slog.Warn("cache upsert failed", "kind", kind, "key", storeKey.String(), "error", err)
	}

	return payload, nil
}

// canonicalCityKey extracts the upstream-confirmed city name from a
// current-weather payload.
func canonicalCityKey(payload json.RawMessage) (cache.Key, bool) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.Name == "" {
		return cache.Key{}, false
	}
	return cache.CityKey(body.Name), true
}
