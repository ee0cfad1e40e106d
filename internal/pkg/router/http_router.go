package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/metrics"
)

// HttpRouter mounts the non-API surfaces: health, provider webhooks and metrics.
type HttpRouter struct {
	handlers Handlers
	opts     Options
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get("/healthz", h.handlers.Main.HandleHealth)

	// signed by the provider, no bearer token
	app.Post("/webhooks/stripe", h.handlers.Billing.HandleStripeWebhook)

	// metrics are only exposed with credentials configured
	if h.opts.MetricsPassword != "" {
		auth := basicauth.New(basicauth.Config{
			Users: map[string]string{
				h.opts.MetricsUser: h.opts.MetricsPassword,
			},
		})
		app.Get("/metrics", auth, monitor.New())
		app.Get("/metrics/prometheus", auth, metrics.Handler())
	}
}

func NewHttpRouter(h Handlers, opts Options) *HttpRouter {
	return &HttpRouter{handlers: h, opts: opts}
}
