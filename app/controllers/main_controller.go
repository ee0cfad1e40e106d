package controllers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/analytics"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/entitlements"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/usercontext"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/weather"
)

const cityNotFoundMessage = "City not found. Please check the spelling and try again."

type MainController struct {
	weather        *weather.Client
	tracker        analytics.Tracker
	plans          entitlements.PlanTable
	pixelID        string
	publishableKey string
	logger         *slog.Logger
}

func NewMainController(
	weatherClient *weather.Client,
	tracker analytics.Tracker,
	plans entitlements.PlanTable,
	pixelID, publishableKey string,
	logger *slog.Logger,
) *MainController {
	return &MainController{
		weather:        weatherClient,
		tracker:        tracker,
		plans:          plans,
		pixelID:        pixelID,
		publishableKey: publishableKey,
		logger:         logger,
	}
}

func (h *MainController) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleWeather passes the upstream payload through. Failures carry a kind
// so the client can tell a typo from an outage.
func (h *MainController) HandleWeather(c *fiber.Ctx) error {
	city := c.Query("city")
	body, err := h.weather.Current(c.UserContext(), city)

	h.tracker.Track(c.UserContext(), analytics.Event{
		Name:   analytics.EventWeatherSearch,
		UserID: usercontext.GetUserID(c),
		Data:   map[string]interface{}{"city": city, "found": err == nil},
	})

	if err != nil {
		kind := weather.KindOf(err)
		switch kind {
		case weather.KindNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": cityNotFoundMessage, "kind": kind})
		case weather.KindRateLimited:
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Weather service is busy, try again later", "kind": kind})
		default:
			h.logger.Error("weather lookup failed", "city", city, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch weather data", "kind": kind})
		}
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

func (h *MainController) HandleClientConfig(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"pixelId":              h.pixelID,
		"stripePublishableKey": h.publishableKey,
		"plans":                h.plans.Offers(),
	})
}
