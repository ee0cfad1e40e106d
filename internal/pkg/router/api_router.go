package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/middleware"
)

type ApiRouter struct {
	handlers Handlers
	opts     Options
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	limit := h.opts.RateLimit
	if limit <= 0 {
		limit = 60
	}
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        limit,
		Expiration: time.Minute,
		Storage:    h.opts.LimiterStorage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "Too many requests",
			})
		},
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")
	auth := middleware.BearerAuth(h.opts.Verifier)

	// public
	v1.Get("/content", h.handlers.Content.HandleList)
	v1.Get("/content/:id", h.handlers.Content.HandleGet)
	v1.Get("/weather", h.handlers.Main.HandleWeather)
	v1.Get("/client-config", h.handlers.Main.HandleClientConfig)

	// authenticated
	v1.Post("/content", auth, h.handlers.Content.HandleCreate)
	v1.Put("/content/:id", auth, h.handlers.Content.HandleUpdate)
	v1.Delete("/content/:id", auth, h.handlers.Content.HandleDelete)

	v1.Post("/channel-token", auth, h.handlers.Channel.HandleRegister)
	v1.Get("/channel-token", auth, h.handlers.Channel.HandleGet)
	v1.Delete("/channel-token", auth, h.handlers.Channel.HandleUnregister)

	v1.Post("/checkout", auth, h.handlers.Billing.HandleCheckout)
	v1.Get("/entitlement", auth, h.handlers.Billing.HandleGetEntitlement)

	// reviewers
	v1.Get("/admin/review-queue", auth, middleware.RequireAdmin, h.handlers.Content.HandleReviewQueue)
}

func NewApiRouter(h Handlers, opts Options) *ApiRouter {
	return &ApiRouter{handlers: h, opts: opts}
}
