package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"weatherbot.app/config"
	"weatherbot.app/errors"
	"weatherbot.app/models"
	"weatherbot.app/repository"
)

// MockWeatherService for testing
type MockWeatherService struct {
	mock.Mock
}

func (m *MockWeatherService) GetCurrentWeatherByCity(city string) (*models.CurrentWeather, error) {
	args := m.Called(city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CurrentWeather), args.Error(1)
}

func (m *MockWeatherService) GetCurrentWeatherByCoords(lat, lon float64) (*models.CurrentWeather, error) {
	args := m.Called(lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CurrentWeather), args.Error(1)
}

func (m *MockWeatherService) GetForecast(city string) (*models.Forecast, error) {
	args := m.Called(city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Forecast), args.Error(1)
}

func (m *MockWeatherService) GetAirQuality(lat, lon float64) (*models.AirQuality, error) {
	args := m.Called(lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AirQuality), args.Error(1)
}

func (m *MockWeatherService) GetExtendedWeather(city string) (*models.CurrentWeather, *models.AirQuality, error) {
	args := m.Called(city)
	var weather *models.CurrentWeather
	var air *models.AirQuality
	if args.Get(0) != nil {
		weather = args.Get(0).(*models.CurrentWeather)
	}
	if args.Get(1) != nil {
		air = args.Get(1).(*models.AirQuality)
	}
	return weather, air, args.Error(2)
}

func (m *MockWeatherService) Locate(city string) (*models.Location, error) {
	args := m.Called(city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockWeatherService) ReverseLocate(lat, lon float64) (*models.Location, error) {
	args := m.Called(lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func sampleWeather(name string, temp float64) *models.CurrentWeather {
	var w models.CurrentWeather
	payload := fmt.Sprintf(`{
		"name": %q,
		"main": {"temp": %f, "feels_like": %f, "humidity": 60, "pressure": 1012},
		"weather": [{"description": "clear sky"}],
		"wind": {"speed": 3.2}
	}`, name, temp, temp-1)
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		panic(err)
	}
	return &w
}

func newTestServer(t *testing.T) (*Server, *MockWeatherService, *repository.UserRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserSettings{}))

	users := repository.NewUserRepository(db)
	weather := new(MockWeatherService)
	cfg := &config.Config{Server: config.ServerConfig{Port: 8080}}

	return NewServer(cfg, weather, users, nil), weather, users
}

func performRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetWeatherByCity(t *testing.T) {
	server, weather, _ := newTestServer(t)
	weather.On("GetCurrentWeatherByCity", "Moscow").Return(sampleWeather("Moscow", 21.5), nil)

	w := performRequest(server.GetRouter(), http.MethodGet, "/api/weather?city=Moscow", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Weather in Moscow")
	weather.AssertExpectations(t)
}

func TestGetWeatherByCoords(t *testing.T) {
	server, weather, _ := newTestServer(t)
	weather.On("GetCurrentWeatherByCoords", 55.7558, 37.6176).Return(sampleWeather("Moscow", 21.5), nil)

	w := performRequest(server.GetRouter(), http.MethodGet, "/api/weather?lat=55.7558&lon=37.6176", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	weather.AssertExpectations(t)
}

func TestGetWeatherMissingParams(t *testing.T) {
	server, _, _ := newTestServer(t)

	w := performRequest(server.GetRouter(), http.MethodGet, "/api/weather", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetWeatherInvalidCoords(t *testing.T) {
	server, _, _ := newTestServer(t)

	w := performRequest(server.GetRouter(), http.MethodGet, "/api/weather?lat=91&lon=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetWeatherCityNotFound(t *testing.T) {
	server, weather, _ := newTestServer(t)
	weather.On("GetCurrentWeatherByCity", "nowhere").Return(nil, errors.NewNotFoundError("city not found"))

	w := performRequest(server.GetRouter(), http.MethodGet, "/api/weather?city=nowhere", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "city not found", resp.Error)
}

func TestGetWeatherUpstreamUnavailable(t *testing.T) {
	server, weather, _ := newTestServer(t)
	weather.On("GetCurrentWeatherByCity", "Moscow").Return(nil, errors.NewExternalAPIError("timeout", nil))

	w := performRequest(server.GetRouter(), http.MethodGet, "/api/weather?city=Moscow", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCompareWeather(t *testing.T) {
	server, weather, _ := newTestServer(t)
	weather.On("GetCurrentWeatherByCity", "Moscow").Return(sampleWeather("Moscow", 21.5), nil)
	weather.On("GetCurrentWeatherByCity", "London").Return(sampleWeather("London", 15.0), nil)

	w := performRequest(server.GetRouter(), http.MethodGet, "/api/weather/compare?first=Moscow&second=London", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Moscow is warmer")
	weather.AssertExpectations(t)
}

func TestCompareWeatherMissingParam(t *testing.T) {
	server, _, _ := newTestServer(t)

	w := performRequest(server.GetRouter(), http.MethodGet, "/api/weather/compare?first=Moscow", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetForecastInvalidDay(t *testing.T) {
	server, weather, _ := newTestServer(t)
	weather.On("GetForecast", "Moscow").Return(&models.Forecast{}, nil)

	w := performRequest(server.GetRouter(), http.MethodGet, "/api/forecast?city=Moscow&day=7", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSettingsNotFound(t *testing.T) {
	server, _, _ := newTestServer(t)

	w := performRequest(server.GetRouter(), http.MethodGet, "/api/users/42/settings", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateSettingsCreatesAndReads(t *testing.T) {
	server, _, _ := newTestServer(t)

	body := []byte(`{"city": "Moscow", "lat": 55.7558, "lon": 37.6176, "interval_hours": 6}`)
	w := performRequest(server.GetRouter(), http.MethodPut, "/api/users/42/settings", body)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(server.GetRouter(), http.MethodGet, "/api/users/42/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var settings models.UserSettings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	assert.Equal(t, int64(42), settings.ChatID)
	assert.Equal(t, "Moscow", settings.City)
	assert.Equal(t, 6, settings.IntervalHours)
	assert.False(t, settings.NotificationsEnabled)
}

func TestUpdateSettingsRejectsBadInterval(t *testing.T) {
	server, _, _ := newTestServer(t)

	body := []byte(`{"city": "Moscow", "interval_hours": 7}`)
	w := performRequest(server.GetRouter(), http.MethodPut, "/api/users/42/settings", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateSettingsRejectsHalfCoordinatePair(t *testing.T) {
	server, _, _ := newTestServer(t)

	body := []byte(`{"city": "Moscow", "lat": 55.7558}`)
	w := performRequest(server.GetRouter(), http.MethodPut, "/api/users/42/settings", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateSettingsRejectsBadChatID(t *testing.T) {
	server, _, _ := newTestServer(t)

	w := performRequest(server.GetRouter(), http.MethodPut, "/api/users/abc/settings", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToggleNotifications(t *testing.T) {
	server, _, users := newTestServer(t)
	require.NoError(t, users.Save(&models.UserSettings{ChatID: 42, City: "Moscow", IntervalHours: 3}))

	w := performRequest(server.GetRouter(), http.MethodPost, "/api/users/42/notifications/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"notifications_enabled":true`)

	w = performRequest(server.GetRouter(), http.MethodPost, "/api/users/42/notifications/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"notifications_enabled":false`)
}

func TestToggleNotificationsRequiresCity(t *testing.T) {
	server, _, users := newTestServer(t)
	require.NoError(t, users.Save(&models.UserSettings{ChatID: 42, IntervalHours: 3}))

	w := performRequest(server.GetRouter(), http.MethodPost, "/api/users/42/notifications/toggle", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	server, _, _ := newTestServer(t)

	w := performRequest(server.GetRouter(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	server, _, _ := newTestServer(t)

	w := performRequest(server.GetRouter(), http.MethodGet, "/healthz", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec := httptest.NewRecorder()
	server.GetRouter().ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}
