package providers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"weatherbot.app/config"
	"weatherbot.app/errors"
)

// Sentinel errors for the retry loop; anything else is returned as-is.
var (
	errRateLimited = stderrors.New("rate limited")
	errServerError = stderrors.New("server error")
)

// OpenWeatherMapClient implements WeatherClient against the OpenWeatherMap
// API. Outbound calls retry with exponential backoff on rate limits, server
// errors, and network failures, behind a circuit breaker.
type OpenWeatherMapClient struct {
	apiKey     string
	baseURL    string
	geoBaseURL string
	units      string
	maxRetries int
	retryDelay time.Duration
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewOpenWeatherMapClient creates a client from weather API configuration
func NewOpenWeatherMapClient(cfg *config.WeatherConfig) *OpenWeatherMapClient {
	return &OpenWeatherMapClient{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		geoBaseURL: cfg.GeoBaseURL,
		units:      cfg.Units,
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Duration(cfg.RetryDelaySeconds) * time.Second,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "openweathermap",
			IsSuccessful: func(err error) bool {
				if err == nil {
					return true
				}
				// Typed application errors are upstream responses (bad key,
				// unknown city), not outages; they must not trip the breaker.
				var appErr *errors.AppError
				return stderrors.As(err, &appErr)
			},
		}),
	}
}

func (c *OpenWeatherMapClient) CurrentWeatherByCity(city string) (json.RawMessage, error) {
	if city == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("units", c.units)
	return c.get(c.baseURL, "/weather", query)
}

func (c *OpenWeatherMapClient) CurrentWeatherByCoords(lat, lon float64) (json.RawMessage, error) {
	query := coordQuery(lat, lon)
	query.Set("units", c.units)
	return c.get(c.baseURL, "/weather", query)
}

func (c *OpenWeatherMapClient) ForecastByCity(city string) (json.RawMessage, error) {
	if city == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("units", c.units)
	return c.get(c.baseURL, "/forecast", query)
}

func (c *OpenWeatherMapClient) AirQuality(lat, lon float64) (json.RawMessage, error) {
	return c.get(c.baseURL, "/air_pollution", coordQuery(lat, lon))
}

func (c *OpenWeatherMapClient) Geocode(city string) (json.RawMessage, error) {
	if city == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("limit", "1")
	return c.get(c.geoBaseURL, "/direct", query)
}

func (c *OpenWeatherMapClient) ReverseGeocode(lat, lon float64) (json.RawMessage, error) {
	query := coordQuery(lat, lon)
	query.Set("limit", "1")
	return c.get(c.geoBaseURL, "/reverse", query)
}

func coordQuery(lat, lon float64) url.Values {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return query
}

// get performs the request with exponential backoff: 429, 5xx, and network
// failures are retried with a doubling delay; everything else returns
// immediately.
func (c *OpenWeatherMapClient) get(baseURL, path string, query url.Values) (json.RawMessage, error) {
	query.Set("appid", c.apiKey)
	requestURL := fmt.Sprintf("%s%s?%s", baseURL, path, query.Encode())

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("retrying weather API request", "path", path, "attempt", attempt+1, "delay", delay)
			time.Sleep(delay)
			delay *= 2
		}

		payload, err := c.doOnce(requestURL)
		if err == nil {
			return payload, nil
		}

		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.NewExternalAPIError("weather API circuit open", err)
		}

		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			// Already typed and not retryable (invalid key, unknown city)
			return nil, err
		}

		lastErr = err
	}

	return nil, errors.NewExternalAPIError("weather API unavailable after retries", lastErr)
}

func (c *OpenWeatherMapClient) doOnce(requestURL string) (json.RawMessage, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Get(requestURL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if closeErr := resp.Body.Close(); closeErr != nil {
				slog.Warn("close response body", "error", closeErr)
			}
		}()

		switch {
		case resp.StatusCode == http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, err
			}
			return json.RawMessage(body), nil
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, errors.NewExternalAPIError("invalid weather API key", nil)
		case resp.StatusCode == http.StatusNotFound:
			return nil, errors.NewNotFoundError("city not found")
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, errRateLimited
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: HTTP %d", errServerError, resp.StatusCode)
		default:
			return nil, errors.NewExternalAPIError(
				fmt.Sprintf("weather API returned status code %d", resp.StatusCode), nil)
		}
	})
	if err != nil {
		return nil, err
	}

	return result.(json.RawMessage), nil
}
