// Package nutrition wraps the OpenFoodFacts product-search API.
//
// A query that matches no products is a terminal miss (ErrNotFound), not a
// retryable condition; the food-logging dialogue aborts on it.
package nutrition

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

// DefaultBaseURL is the OpenFoodFacts search endpoint.
const DefaultBaseURL = "https://world.openfoodfacts.org/cgi/search.pl"

// DefaultTimeout bounds a single lookup attempt.
const DefaultTimeout = 10 * time.Second

// ErrNotFound indicates no product matched the query.
var ErrNotFound = errors.New("food product not found")

// FoodInfo is the nutrition summary for the best-matching product.
type FoodInfo struct {
	Name            string  `json:"name"`
	CaloriesPer100g float64 `json:"calories_per_100g"`
}

// Service provides per-100g nutrition facts by free-text query.
type Service interface {
	// Lookup returns the best match for the query, or ErrNotFound.
	Lookup(ctx context.Context, query string) (*FoodInfo, error)
}

// Opts holds configuration options for the nutrition client.
type Opts struct {
	BaseURL string
	Client  *http.Client
}

// Option defines a configuration option for the nutrition client.
type Option func(*Opts)

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

// Client is an OpenFoodFacts-backed Service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a nutrition client, applying any provided options.
func NewClient(opts ...Option) *Client {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: cfg.BaseURL, client: cfg.Client}
}

type searchResponse struct {
	Products []struct {
		ProductName string `json:"product_name"`
		Nutriments  struct {
			EnergyKcal100g float64 `json:"energy-kcal_100g"`
		} `json:"nutriments"`
	} `json:"products"`
}

// Lookup searches for the product and returns the first match.
func (c *Client) Lookup(ctx context.Context, query string) (*FoodInfo, error) {
	q := url.Values{}
	q.Set("action", "process")
	q.Set("search_terms", query)
	q.Set("json", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		slog.Error("Nutrition request build failed", "error", err, "query", query)
		return nil, fmt.Errorf("failed to build nutrition request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Error("Nutrition request failed", "error", err, "query", query)
		return nil, fmt.Errorf("nutrition lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("Nutrition API returned non-OK status", "status", resp.StatusCode, "query", query)
		return nil, fmt.Errorf("nutrition lookup failed: status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		slog.Error("Nutrition response decode failed", "error", err, "query", query)
		return nil, fmt.Errorf("failed to decode nutrition response: %w", err)
	}

	if len(body.Products) == 0 {
		slog.Debug("Nutrition lookup no match", "query", query)
		return nil, ErrNotFound
	}

	first := body.Products[0]
	name := first.ProductName
	if name == "" {
		name = query
	}
	info := &FoodInfo{Name: name, CaloriesPer100g: first.Nutriments.EnergyKcal100g}
	slog.Debug("Nutrition lookup succeeded", "query", query, "name", info.Name, "kcal_100g", info.CaloriesPer100g)
	return info, nil
}
