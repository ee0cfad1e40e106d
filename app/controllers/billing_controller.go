package controllers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/billing"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/entitlements"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/usercontext"
)

type BillingController struct {
	billing      *billing.Service
	entitlements *entitlements.Service
	logger       *slog.Logger
}

func NewBillingController(billingSvc *billing.Service, entitlementSvc *entitlements.Service, logger *slog.Logger) *BillingController {
	return &BillingController{billing: billingSvc, entitlements: entitlementSvc, logger: logger}
}

type checkoutRequest struct {
	PriceID string `json:"priceId" validate:"required"`
	UserID  string `json:"userId"`
}

func (h *BillingController) HandleCheckout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, h.logger, err)
	}
	if err := checkClaimedUser(c, req.UserID); err != nil {
		return writeError(c, h.logger, err)
	}

	sessionID, err := h.billing.RequestCheckout(c.UserContext(), usercontext.GetUserID(c), req.PriceID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"sessionId": sessionID})
}

// HandleStripeWebhook needs the raw body; it must not sit behind a body-rewriting middleware.
func (h *BillingController) HandleStripeWebhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	res, err := h.billing.HandleWebhook(c.UserContext(), payload, c.Get("Stripe-Signature"))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	resp := fiber.Map{"received": true}
	if res.Duplicate {
		resp["duplicate"] = true
	}
	if res.Ignored {
		resp["ignored"] = true
	}
	return c.JSON(resp)
}

func (h *BillingController) HandleGetEntitlement(c *fiber.Ctx) error {
	ent, err := h.entitlements.GetCurrent(c.UserContext(), usercontext.GetUserID(c), c.Query("userId"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"entitlement": ent})
}
