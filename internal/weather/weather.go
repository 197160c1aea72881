// Package weather wraps the OpenWeatherMap current-weather API.
//
// Lookups are best-effort: a single attempt with no retries. Callers are
// expected to fall back to a default temperature on ErrUnavailable.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the OpenWeatherMap current-weather endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// DefaultTimeout bounds a single lookup attempt.
const DefaultTimeout = 10 * time.Second

// ErrUnavailable indicates the temperature could not be fetched; callers
// degrade to a default value.
var ErrUnavailable = errors.New("temperature lookup unavailable")

// Service provides ambient temperature by city name.
type Service interface {
	// Temperature returns the current temperature in °C for the city, or
	// ErrUnavailable (possibly wrapped) when the lookup fails.
	Temperature(ctx context.Context, city string) (float64, error)
}

// Opts holds configuration options for the weather client.
type Opts struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// Option defines a configuration option for the weather client.
type Option func(*Opts)

// WithAPIKey sets the OpenWeatherMap API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) {
		o.APIKey = key
	}
}

// WithBaseURL overrides the API endpoint (used by tests).
func WithBaseURL(u string) Option {
	return func(o *Opts) {
		o.BaseURL = u
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) {
		o.Client = c
	}
}

// Client is an OpenWeatherMap-backed Service.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a weather client, applying any provided options.
func NewClient(opts ...Option) *Client {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("Weather NewClient options set", "APIKey_set", cfg.APIKey != "", "BaseURL_set", cfg.BaseURL != "")

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{apiKey: cfg.APIKey, baseURL: cfg.BaseURL, client: cfg.Client}
}

type currentWeatherResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// Temperature fetches the current temperature in °C for the given city.
func (c *Client) Temperature(ctx context.Context, city string) (float64, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		slog.Error("Weather request build failed", "error", err, "city", city)
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Error("Weather request failed", "error", err, "city", city)
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("Weather API returned non-OK status", "status", resp.StatusCode, "city", city)
		return 0, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body currentWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		slog.Error("Weather response decode failed", "error", err, "city", city)
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	slog.Debug("Weather lookup succeeded", "city", city, "temp_c", body.Main.Temp)
	return body.Main.Temp, nil
}
