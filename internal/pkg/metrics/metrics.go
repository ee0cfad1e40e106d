package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_http_requests_total",
			Help: "Total HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsdesk_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status code.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)

	ContentTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_content_transitions_total",
			Help: "Moderation status transitions by target status.",
		},
		[]string{"status"},
	)

	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_notifications_total",
			Help: "Moderation outcome notifications by result (sent, failed, skipped).",
		},
		[]string{"result"},
	)

	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_billing_webhook_events_total",
			Help: "Billing webhook deliveries by event type and outcome.",
		},
		[]string{"type", "outcome"},
	)

	WeatherUpstream = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_weather_upstream_total",
			Help: "Weather lookups by result kind (ok, cached, not_found, rate_limited, misconfigured, unavailable).",
		},
		[]string{"kind"},
	)

	AnalyticsEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_analytics_events_total",
			Help: "Server side analytics events by name and result.",
		},
		[]string{"event", "result"},
	)
)

// Middleware records request count and latency per route pattern.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		code := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			} else {
				code = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		labels := []string{c.Method(), route, strconv.Itoa(code)}
		httpRequestsTotal.WithLabelValues(labels...).Inc()
		httpRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the Prometheus exposition format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
