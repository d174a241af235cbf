package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"weatherbot.app/errors"
)

// Config represents the application configuration structure
type Config struct {
	Server    ServerConfig    `split_words:"true"`
	Database  DatabaseConfig  `split_words:"true"`
	Weather   WeatherConfig   `split_words:"true"`
	Cache     CacheConfig     `split_words:"true"`
	Notifier  NotifierConfig  `split_words:"true"`
	Scheduler SchedulerConfig `split_words:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// DatabaseConfig contains settings for the user-settings database
type DatabaseConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	Path     string `envconfig:"DB_PATH" default:"weatherbot.db"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"weatherbot"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

// GetDSN returns a formatted postgres connection string
func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// WeatherConfig contains settings for the upstream weather API
type WeatherConfig struct {
	APIKey            string `envconfig:"WEATHER_API_KEY" required:"true"`
	BaseURL           string `envconfig:"WEATHER_API_BASE_URL" default:"https://api.openweathermap.org/data/2.5"`
	GeoBaseURL        string `envconfig:"WEATHER_GEO_BASE_URL" default:"http://api.openweathermap.org/geo/1.0"`
	Units             string `envconfig:"WEATHER_UNITS" default:"metric"`
	TimeoutSeconds    int    `envconfig:"WEATHER_TIMEOUT_SECONDS" default:"10"`
	MaxRetries        int    `envconfig:"WEATHER_MAX_RETRIES" default:"3"`
	RetryDelaySeconds int    `envconfig:"WEATHER_RETRY_DELAY_SECONDS" default:"1"`
}

// CacheConfig contains settings for the response cache
type CacheConfig struct {
	Type                     string `envconfig:"CACHE_TYPE" default:"file"`
	FilePath                 string `envconfig:"CACHE_FILE_PATH" default:"weather_cache.json"`
	TTLMinutes               int    `envconfig:"CACHE_TTL_MINUTES" default:"180"`
	RedisAddr                string `envconfig:"CACHE_REDIS_ADDR" default:"localhost:6379"`
	RedisPassword            string `envconfig:"CACHE_REDIS_PASSWORD"`
	RedisDB                  int    `envconfig:"CACHE_REDIS_DB" default:"0"`
	RedisDialTimeoutSeconds  int    `envconfig:"CACHE_REDIS_DIAL_TIMEOUT_SECONDS" default:"5"`
	RedisReadTimeoutSeconds  int    `envconfig:"CACHE_REDIS_READ_TIMEOUT_SECONDS" default:"3"`
	RedisWriteTimeoutSeconds int    `envconfig:"CACHE_REDIS_WRITE_TIMEOUT_SECONDS" default:"3"`
}

// TTL returns the configured entry time-to-live
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// NotifierConfig contains settings for notification delivery
type NotifierConfig struct {
	Type         string `envconfig:"NOTIFIER_TYPE" default:"log"`
	SMTPHost     string `envconfig:"NOTIFIER_SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort     int    `envconfig:"NOTIFIER_SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"NOTIFIER_SMTP_USERNAME"`
	SMTPPassword string `envconfig:"NOTIFIER_SMTP_PASSWORD"`
	FromName     string `envconfig:"NOTIFIER_FROM_NAME" default:"Weather Bot"`
	FromAddress  string `envconfig:"NOTIFIER_FROM_ADDRESS" default:"no-reply@weatherbot.app"`
}

// SchedulerConfig contains settings for the background notification sweep
type SchedulerConfig struct {
	NotifyCheckInterval int `envconfig:"NOTIFY_CHECK_INTERVAL" default:"5"`
}

// LoadConfig loads and validates application configuration from environment variables
func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Weather.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Notifier.Validate(); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

// Validate checks database configuration
func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case "sqlite":
		if d.Path == "" {
			return errors.NewConfigurationError("DB_PATH cannot be empty for the sqlite driver", nil)
		}
	case "postgres":
		if d.Host == "" {
			return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
		}
		if d.Port < 1 || d.Port > 65535 {
			return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
		}
		if d.User == "" {
			return errors.NewConfigurationError("DB_USER cannot be empty", nil)
		}
		if d.Name == "" {
			return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
		}
		if err := d.validateSSLMode(); err != nil {
			return err
		}
	default:
		return errors.NewConfigurationError("DB_DRIVER must be one of: sqlite, postgres", nil)
	}
	return nil
}

func (d *DatabaseConfig) validateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

// Validate checks weather API configuration
func (w *WeatherConfig) Validate() error {
	if w.APIKey == "" {
		return errors.NewConfigurationError("WEATHER_API_KEY is required", nil)
	}
	if !strings.HasPrefix(w.BaseURL, "http://") && !strings.HasPrefix(w.BaseURL, "https://") {
		return errors.NewConfigurationError("WEATHER_API_BASE_URL must start with http:// or https://", nil)
	}
	if !strings.HasPrefix(w.GeoBaseURL, "http://") && !strings.HasPrefix(w.GeoBaseURL, "https://") {
		return errors.NewConfigurationError("WEATHER_GEO_BASE_URL must start with http:// or https://", nil)
	}
	if w.TimeoutSeconds < 1 {
		return errors.NewConfigurationError("WEATHER_TIMEOUT_SECONDS must be at least 1", nil)
	}
	if w.MaxRetries < 1 {
		return errors.NewConfigurationError("WEATHER_MAX_RETRIES must be at least 1", nil)
	}
	if w.RetryDelaySeconds < 1 {
		return errors.NewConfigurationError("WEATHER_RETRY_DELAY_SECONDS must be at least 1", nil)
	}
	return nil
}

// Validate checks cache configuration
func (c *CacheConfig) Validate() error {
	switch c.Type {
	case "file":
		if c.FilePath == "" {
			return errors.NewConfigurationError("CACHE_FILE_PATH cannot be empty for the file cache", nil)
		}
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			return errors.NewConfigurationError("CACHE_REDIS_ADDR cannot be empty for the redis cache", nil)
		}
	default:
		return errors.NewConfigurationError("CACHE_TYPE must be one of: file, memory, redis", nil)
	}
	if c.TTLMinutes < 1 {
		return errors.NewConfigurationError("CACHE_TTL_MINUTES must be at least 1", nil)
	}
	return nil
}

// Validate checks notifier configuration
func (n *NotifierConfig) Validate() error {
	switch n.Type {
	case "log":
	case "smtp":
		if n.SMTPHost == "" {
			return errors.NewConfigurationError("NOTIFIER_SMTP_HOST cannot be empty", nil)
		}
		if n.SMTPPort < 1 || n.SMTPPort > 65535 {
			return errors.NewConfigurationError("NOTIFIER_SMTP_PORT must be between 1 and 65535", nil)
		}
		if n.SMTPUsername == "" {
			return errors.NewConfigurationError("NOTIFIER_SMTP_USERNAME is required for the smtp notifier", nil)
		}
		if n.SMTPPassword == "" {
			return errors.NewConfigurationError("NOTIFIER_SMTP_PASSWORD is required for the smtp notifier", nil)
		}
		if !strings.Contains(n.FromAddress, "@") {
			return errors.NewConfigurationError("NOTIFIER_FROM_ADDRESS must be a valid email address", nil)
		}
	default:
		return errors.NewConfigurationError("NOTIFIER_TYPE must be one of: log, smtp", nil)
	}
	return nil
}

// Validate checks scheduler configuration
func (s *SchedulerConfig) Validate() error {
	if s.NotifyCheckInterval < 1 {
		return errors.NewConfigurationError("NOTIFY_CHECK_INTERVAL must be at least 1 minute", nil)
	}
	if s.NotifyCheckInterval > 1440 {
		return errors.NewConfigurationError("NOTIFY_CHECK_INTERVAL cannot exceed 1440 minutes (24 hours)", nil)
	}
	return nil
}
