package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/metrics"
)

const DefaultCity = "London"

// ErrorKind classifies upstream failures.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindRateLimited   ErrorKind = "rate_limited"
	KindMisconfigured ErrorKind = "misconfigured"
	KindUnavailable   ErrorKind = "unavailable"
)

type Error struct {
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("weather %s (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("weather %s (status %d)", e.Kind, e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns KindUnavailable for errors not produced by this package.
func KindOf(err error) ErrorKind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return KindUnavailable
}

// kindForStatus maps a non-2xx upstream status.
func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusBadRequest, http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindMisconfigured
	case http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindUnavailable
	}
}

// Cache stores successful upstream payloads.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Client proxies the OpenWeather current-weather endpoint.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client

	cache    Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewClient builds a client. cache may be nil.
func NewClient(apiKey, baseURL string, cache Cache, cacheTTL time.Duration, logger *slog.Logger) *Client {
	return &Client{
		APIKey:  strings.TrimSpace(apiKey),
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Current returns the upstream JSON for city unchanged. Errors are *Error.
func (c *Client) Current(ctx context.Context, city string) (json.RawMessage, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		city = DefaultCity
	}
	if c.APIKey == "" {
		metrics.WeatherUpstream.WithLabelValues(string(KindMisconfigured)).Inc()
		return nil, &Error{Kind: KindMisconfigured, Err: errors.New("OPENWEATHER_API_KEY is not configured")}
	}

	key := "weather:" + strings.ToLower(city)
	if c.cache != nil {
		if cached, ok, err := c.cache.Get(ctx, key); err != nil {
			c.logger.Warn("weather cache read failed", "error", err)
		} else if ok {
			metrics.WeatherUpstream.WithLabelValues("cached").Inc()
			return json.RawMessage(cached), nil
		}
	}

	body, err := c.fetch(ctx, city)
	if err != nil {
		metrics.WeatherUpstream.WithLabelValues(string(KindOf(err))).Inc()
		return nil, err
	}
	metrics.WeatherUpstream.WithLabelValues("ok").Inc()

	if c.cache != nil && c.cacheTTL > 0 {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
			c.logger.Warn("weather cache write failed", "error", err)
		}
	}
	return json.RawMessage(body), nil
}

func (c *Client) fetch(ctx context.Context, city string) ([]byte, error) {
	u, err := url.Parse(c.BaseURL + "/data/2.5/weather")
	if err != nil {
		return nil, &Error{Kind: KindMisconfigured, Err: fmt.Errorf("invalid OPENWEATHER_BASE_URL: %w", err)}
	}
	q := u.Query()
	q.Set("q", city)
	q.Set("units", "metric")
	q.Set("appid", c.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode}
	}
	if !json.Valid(body) {
		return nil, &Error{Kind: KindUnavailable, Status: resp.StatusCode, Err: errors.New("upstream returned invalid JSON")}
	}
	return body, nil
}
