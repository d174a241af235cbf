// Package cache implements the TTL-aware weather response cache, addressed
// by a request kind and either a city name or a coordinate pair.
package cache

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"weatherbot.app/models"
)

// Kind partitions the cache namespace by request category. It is always
// supplied by the caller and is the authoritative partition; both key forms
// are legal under any kind.
type Kind string

const (
	KindCurrentWeather   Kind = "current-weather"
	KindForecast         Kind = "forecast"
	KindAirQuality       Kind = "air-quality"
	KindGeocoding        Kind = "geocoding"
	KindReverseGeocoding Kind = "reverse-geocoding"
)

// Key addresses a cache entry within a kind. City keys are lower-cased so
// lookup is case-insensitive; coordinate keys compare by exact equality on
// both latitude and longitude, never by proximity.
type Key struct {
	city   string
	lat    float64
	lon    float64
	coords bool
}

// CityKey builds a city-form key. The name is normalized (trimmed,
// lower-cased) for storage and comparison.
func CityKey(name string) Key {
	return Key{city: strings.ToLower(strings.TrimSpace(name))}
}

// CoordKey builds a coordinate-form key
func CoordKey(lat, lon float64) Key {
	return Key{lat: lat, lon: lon, coords: true}
}

// IsCoords reports whether the key is coordinate-form
func (k Key) IsCoords() bool {
	return k.coords
}

// City returns the normalized city name for a city-form key
func (k Key) City() string {
	return k.city
}

// Coords returns the coordinate pair for a coordinate-form key
func (k Key) Coords() (lat, lon float64) {
	return k.lat, k.lon
}

// String renders the key for flat-keyspace backends (memory, Redis) and logs
func (k Key) String() string {
	if k.coords {
		return strconv.FormatFloat(k.lat, 'f', -1, 64) + "," + strconv.FormatFloat(k.lon, 'f', -1, 64)
	}
	return k.city
}

// Matches reports whether the key structurally addresses the given entry,
// regardless of the entry's freshness.
func (k Key) Matches(e *models.CacheEntry) bool {
	if k.coords {
		return e.Lat != nil && e.Lon != nil && *e.Lat == k.lat && *e.Lon == k.lon
	}
	return e.City != "" && strings.EqualFold(e.City, k.city)
}

// Cache is the lookup/upsert contract shared by all backends. Lookup returns
// the payload verbatim when a fresh entry exists; a stale or absent entry is
// a miss. Upsert replaces the entry for (kind, key) or creates it; an upsert
// failure is reported as a value and must never block the caller's response.
type Cache interface {
	Lookup(kind Kind, key Key) (json.RawMessage, bool)
	Upsert(kind Kind, key Key, payload json.RawMessage) error
}

// flatKey joins kind and key for backends with a single string keyspace
func flatKey(kind Kind, key Key) string {
	return fmt.Sprintf("%s:%s", kind, key)
}
