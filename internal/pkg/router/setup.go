package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/NewsDesk/app/controllers"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/identity"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Handlers groups the controllers the routers mount.
type Handlers struct {
	Content *controllers.ContentController
	Channel *controllers.ChannelController
	Billing *controllers.BillingController
	Main    *controllers.MainController
}

type Options struct {
	Verifier identity.Verifier
	// LimiterStorage is shared across instances; nil keeps counters in memory.
	LimiterStorage  fiber.Storage
	RateLimit       int
	MetricsUser     string
	MetricsPassword string
}

func InstallRouter(app *fiber.App, h Handlers, opts Options) {
	// Ops and webhook routes first so they stay outside the /api limiter.
	setup(app, NewHttpRouter(h, opts), NewApiRouter(h, opts))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
