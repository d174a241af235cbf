// Package models defines data structures used throughout the application
package models

import (
	"encoding/json"
	"time"
)

// CacheEntry is one cached upstream response in the cache store document.
// Exactly one key form is populated: City for city-keyed entries, Lat/Lon
// for coordinate-keyed ones. Payload is the upstream JSON held verbatim.
type CacheEntry struct {
	Kind      string          `json:"kind"`
	City      string          `json:"city,omitempty"`
	Lat       *float64        `json:"lat,omitempty"`
	Lon       *float64        `json:"lon,omitempty"`
	FetchedAt time.Time       `json:"fetched_at"`
	Payload   json.RawMessage `json:"payload"`
}

// UserSettings holds a chat user's saved location and notification preferences
type UserSettings struct {
	ID                   uint       `json:"id" gorm:"primaryKey"`
	ChatID               int64      `json:"chat_id" gorm:"uniqueIndex;not null"`
	Email                string     `json:"email,omitempty"`
	City                 string     `json:"city"`
	Lat                  float64    `json:"lat"`
	Lon                  float64    `json:"lon"`
	NotificationsEnabled bool       `json:"notifications_enabled" gorm:"default:false"`
	IntervalHours        int        `json:"interval_hours" gorm:"default:3"`
	LastNotifiedAt       *time.Time `json:"last_notified_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// CurrentWeather is the decoded view of an OpenWeatherMap current-weather payload
type CurrentWeather struct {
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility int `json:"visibility"`
	Clouds     struct {
		All int `json:"all"`
	} `json:"clouds"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

// Description returns the first weather condition description, if any
func (w *CurrentWeather) Description() string {
	if len(w.Weather) == 0 {
		return ""
	}
	return w.Weather[0].Description
}

// Forecast is the decoded view of a 5-day/3-hour forecast payload
type Forecast struct {
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	List []ForecastItem `json:"list"`
}

// ForecastItem is one 3-hour slot in a forecast
type ForecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Description returns the slot's condition description, if any
func (i *ForecastItem) Description() string {
	if len(i.Weather) == 0 {
		return ""
	}
	return i.Weather[0].Description
}

// AirQuality is the decoded view of an air-pollution payload
type AirQuality struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components map[string]float64 `json:"components"`
	} `json:"list"`
}

// Location is one geocoding result
type Location struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
}

// SettingsRequest represents data accepted when updating user settings
type SettingsRequest struct {
	City                 string   `json:"city" form:"city"`
	Lat                  *float64 `json:"lat" form:"lat" binding:"omitempty,min=-90,max=90"`
	Lon                  *float64 `json:"lon" form:"lon" binding:"omitempty,min=-180,max=180"`
	Email                string   `json:"email" form:"email" binding:"omitempty,email"`
	NotificationsEnabled *bool    `json:"notifications_enabled" form:"notifications_enabled"`
	IntervalHours        *int     `json:"interval_hours" form:"interval_hours" binding:"omitempty,oneof=1 3 6 12 24"`
}

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error string `json:"error"`
}
