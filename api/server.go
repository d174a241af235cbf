// Package api exposes the weather lookup and user settings HTTP surface
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"weatherbot.app/config"
	weathererr "weatherbot.app/errors"
	"weatherbot.app/metrics"
	"weatherbot.app/models"
	"weatherbot.app/repository"
	"weatherbot.app/service"
)

// CacheStatsProvider exposes hit/miss counters for the diagnostics endpoint
type CacheStatsProvider interface {
	Stats() metrics.Stats
}

// Server represents the HTTP server and API handler
type Server struct {
	router         *gin.Engine
	config         *config.Config
	weatherService service.WeatherServiceInterface
	users          *repository.UserRepository
	cacheStats     CacheStatsProvider
}

// NewServer creates and configures a new HTTP server
func NewServer(
	config *config.Config,
	weatherService service.WeatherServiceInterface,
	users *repository.UserRepository,
	cacheStats CacheStatsProvider,
) *Server {
	router := gin.Default()
	router.Use(requestIDMiddleware())

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterStructValidation(settingsRequestValidation, models.SettingsRequest{})
	}

	server := &Server{
		router:         router,
		config:         config,
		weatherService: weatherService,
		users:          users,
		cacheStats:     cacheStats,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/weather", s.getWeather)
		api.GET("/weather/extended", s.getExtendedWeather)
		api.GET("/weather/compare", s.compareWeather)
		api.GET("/forecast", s.getForecast)
		api.GET("/geocode", s.geocode)
		api.GET("/geocode/reverse", s.reverseGeocode)
		api.GET("/users/:chat_id/settings", s.getSettings)
		api.PUT("/users/:chat_id/settings", s.updateSettings)
		api.POST("/users/:chat_id/notifications/toggle", s.toggleNotifications)
		api.GET("/cache/stats", s.getCacheStats)
	}

	s.router.GET("/healthz", s.healthz)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Start begins the HTTP server
func (s *Server) Start() error {
	return s.router.Run(fmt.Sprintf(":%d", s.config.Server.Port))
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// requestIDMiddleware tags every request with an id for log correlation
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

func (s *Server) getWeather(c *gin.Context) {
	city := c.Query("city")
	latStr, lonStr := c.Query("lat"), c.Query("lon")

	switch {
	case city != "":
		weather, err := s.weatherService.GetCurrentWeatherByCity(city)
		if err != nil {
			slog.Error("weather lookup failed", "city", city, "error", err)
			s.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"weather": weather, "message": service.FormatCurrentWeather(weather)})

	case latStr != "" && lonStr != "":
		lat, lon, err := parseCoords(latStr, lonStr)
		if err != nil {
			s.handleError(c, err)
			return
		}
		weather, err := s.weatherService.GetCurrentWeatherByCoords(lat, lon)
		if err != nil {
			slog.Error("weather lookup failed", "lat", lat, "lon", lon, "error", err)
			s.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"weather": weather, "message": service.FormatCurrentWeather(weather)})

	default:
		s.handleError(c, weathererr.NewValidationError("either city or lat/lon parameters are required"))
	}
}

func (s *Server) getExtendedWeather(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		s.handleError(c, weathererr.NewValidationError("city parameter is required"))
		return
	}

	weather, air, err := s.weatherService.GetExtendedWeather(city)
	if err != nil {
		slog.Error("extended weather lookup failed", "city", city, "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"weather":     weather,
		"air_quality": air,
		"message":     service.FormatExtendedWeather(weather, air),
	})
}

func (s *Server) compareWeather(c *gin.Context) {
	first, second := c.Query("first"), c.Query("second")
	if first == "" || second == "" {
		s.handleError(c, weathererr.NewValidationError("first and second city parameters are required"))
		return
	}

	a, err := s.weatherService.GetCurrentWeatherByCity(first)
	if err != nil {
		s.handleError(c, err)
		return
	}
	b, err := s.weatherService.GetCurrentWeatherByCity(second)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": service.FormatComparison(a, b)})
}

func (s *Server) getForecast(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		s.handleError(c, weathererr.NewValidationError("city parameter is required"))
		return
	}

	forecast, err := s.weatherService.GetForecast(city)
	if err != nil {
		slog.Error("forecast lookup failed", "city", city, "error", err)
		s.handleError(c, err)
		return
	}

	if dayStr := c.Query("day"); dayStr != "" {
		day, err := strconv.Atoi(dayStr)
		if err != nil || day < 0 || day > 4 {
			s.handleError(c, weathererr.NewValidationError("day must be an integer between 0 and 4"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": service.FormatHourlyForecast(forecast, day, nowUTC())})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": service.FormatDailyForecast(forecast)})
}

func (s *Server) geocode(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		s.handleError(c, weathererr.NewValidationError("city parameter is required"))
		return
	}

	location, err := s.weatherService.Locate(city)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

func (s *Server) reverseGeocode(c *gin.Context) {
	lat, lon, err := parseCoords(c.Query("lat"), c.Query("lon"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	location, err := s.weatherService.ReverseLocate(lat, lon)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

func (s *Server) getSettings(c *gin.Context) {
	chatID, err := parseChatID(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	settings, err := s.users.FindByChatID(chatID)
	if err != nil {
		s.handleError(c, err)
		return
	}
	if settings == nil {
		s.handleError(c, weathererr.NewNotFoundError("no settings for this chat"))
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (s *Server) updateSettings(c *gin.Context) {
	chatID, err := parseChatID(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	var req models.SettingsRequest
	if err := c.ShouldBind(&req); err != nil {
		slog.Error("settings binding error", "chat_id", chatID, "error", err)
		s.handleError(c, weathererr.NewValidationError("invalid request format"))
		return
	}

	settings, err := s.users.FindByChatID(chatID)
	if err != nil {
		s.handleError(c, err)
		return
	}
	if settings == nil {
		settings = &models.UserSettings{ChatID: chatID, IntervalHours: 3}
	}

	applySettings(settings, &req)

	if err := s.users.Save(settings); err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (s *Server) toggleNotifications(c *gin.Context) {
	chatID, err := parseChatID(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	settings, err := s.users.FindByChatID(chatID)
	if err != nil {
		s.handleError(c, err)
		return
	}
	if settings == nil {
		s.handleError(c, weathererr.NewNotFoundError("no settings for this chat"))
		return
	}
	if settings.City == "" && !settings.NotificationsEnabled {
		s.handleError(c, weathererr.NewValidationError("set a city before enabling notifications"))
		return
	}

	settings.NotificationsEnabled = !settings.NotificationsEnabled
	if err := s.users.Save(settings); err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications_enabled": settings.NotificationsEnabled})
}

func (s *Server) getCacheStats(c *gin.Context) {
	if s.cacheStats == nil {
		s.handleError(c, weathererr.NewNotFoundError("cache statistics are not available"))
		return
	}
	c.JSON(http.StatusOK, s.cacheStats.Stats())
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func applySettings(settings *models.UserSettings, req *models.SettingsRequest) {
	if req.City != "" {
		settings.City = req.City
	}
	if req.Lat != nil {
		settings.Lat = *req.Lat
	}
	if req.Lon != nil {
		settings.Lon = *req.Lon
	}
	if req.Email != "" {
		settings.Email = req.Email
	}
	if req.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *req.NotificationsEnabled
	}
	if req.IntervalHours != nil {
		settings.IntervalHours = *req.IntervalHours
	}
}

// settingsRequestValidation rejects requests that set only one half of a
// coordinate pair.
func settingsRequestValidation(sl validator.StructLevel) {
	req := sl.Current().Interface().(models.SettingsRequest)
	if (req.Lat == nil) != (req.Lon == nil) {
		if req.Lat == nil {
			sl.ReportError(req.Lat, "lat", "Lat", "required_with", "lon")
		} else {
			sl.ReportError(req.Lon, "lon", "Lon", "required_with", "lat")
		}
	}
}

func parseChatID(c *gin.Context) (int64, error) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		return 0, weathererr.NewValidationError("chat_id must be an integer")
	}
	return chatID, nil
}

func parseCoords(latStr, lonStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, weathererr.NewValidationError("lat must be a number between -90 and 90")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, weathererr.NewValidationError("lon must be a number between -180 and 180")
	}
	return lat, lon, nil
}

// handleError handles different types of application errors
func (s *Server) handleError(c *gin.Context, err error) {
	var appErr *weathererr.AppError
	var statusCode int
	var message string

	if errors.As(err, &appErr) {
		switch appErr.Type {
		case weathererr.ValidationError:
			statusCode = http.StatusBadRequest
			message = appErr.Message
		case weathererr.NotFoundError:
			statusCode = http.StatusNotFound
			message = appErr.Message
		case weathererr.ExternalAPIError:
			statusCode = http.StatusServiceUnavailable
			message = "Weather service unavailable"
		case weathererr.PersistenceError, weathererr.DatabaseError:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		case weathererr.NotificationError:
			statusCode = http.StatusServiceUnavailable
			message = "Unable to send notification"
		default:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		}
	} else {
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	c.JSON(statusCode, models.ErrorResponse{Error: message})
}
