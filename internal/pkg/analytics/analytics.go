package analytics

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/metrics"
)

const defaultGraphBaseURL = "https://graph.facebook.com/v19.0"

// Event names shared with the browser pixel.
const (
	EventNewsCreated   = "NewsCreated"
	EventNewsReviewed  = "NewsReviewed"
	EventWeatherSearch = "WeatherSearch"
	EventPageView      = "PageView"
)

type Event struct {
	Name   string
	UserID string
	Data   map[string]interface{}
}

// Tracker records analytics events without blocking the caller.
type Tracker interface {
	Track(ctx context.Context, e Event)
}

// NoopTracker is used when no pixel is configured.
type NoopTracker struct{}

func (NoopTracker) Track(context.Context, Event) {}

// PixelTracker posts events to the Meta Conversions API.
type PixelTracker struct {
	PixelID     string
	AccessToken string
	BaseURL     string
	HTTPClient  *http.Client
	Timeout     time.Duration

	logger *slog.Logger
	now    func() time.Time
}

func NewPixelTracker(pixelID, accessToken string, logger *slog.Logger) *PixelTracker {
	return &PixelTracker{
		PixelID:     strings.TrimSpace(pixelID),
		AccessToken: strings.TrimSpace(accessToken),
		BaseURL:     defaultGraphBaseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Timeout: 5 * time.Second,
		logger:  logger,
		now:     time.Now,
	}
}

// New returns a PixelTracker when both credentials are set, NoopTracker otherwise.
func New(pixelID, accessToken string, logger *slog.Logger) Tracker {
	if strings.TrimSpace(pixelID) == "" || strings.TrimSpace(accessToken) == "" {
		return NoopTracker{}
	}
	return NewPixelTracker(pixelID, accessToken, logger)
}

// Track sends in the background. The request context is not reused since it
// ends with the HTTP response.
func (p *PixelTracker) Track(_ context.Context, e Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
		defer cancel()
		if err := p.Send(ctx, e); err != nil {
			metrics.AnalyticsEvents.WithLabelValues(e.Name, "failed").Inc()
			p.logger.Warn("analytics event not delivered", "event", e.Name, "error", err)
			return
		}
		metrics.AnalyticsEvents.WithLabelValues(e.Name, "sent").Inc()
	}()
}

type serverEvent struct {
	EventName    string                 `json:"event_name"`
	EventTime    int64                  `json:"event_time"`
	ActionSource string                 `json:"action_source"`
	UserData     map[string][]string    `json:"user_data"`
	CustomData   map[string]interface{} `json:"custom_data,omitempty"`
}

type eventsRequest struct {
	Data        []serverEvent `json:"data"`
	AccessToken string        `json:"access_token"`
}

// Send delivers one event synchronously.
func (p *PixelTracker) Send(ctx context.Context, e Event) error {
	if e.Name == "" {
		return errors.New("event name is required")
	}
	userData := map[string][]string{}
	if e.UserID != "" {
		userData["external_id"] = []string{HashIdentifier(e.UserID)}
	}

	payload, err := json.Marshal(eventsRequest{
		Data: []serverEvent{{
			EventName:    e.Name,
			EventTime:    p.now().Unix(),
			ActionSource: "website",
			UserData:     userData,
			CustomData:   e.Data,
		}},
		AccessToken: p.AccessToken,
	})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s/events", strings.TrimRight(p.BaseURL, "/"), p.PixelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("conversions api request failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}

// HashIdentifier normalizes and SHA-256 hashes a user identifier as the
// Conversions API expects for external_id.
func HashIdentifier(id string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(id))))
	return hex.EncodeToString(sum[:])
}
