package controllers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/push"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/usercontext"
)

type ChannelController struct {
	channels *push.ChannelService
	logger   *slog.Logger
}

func NewChannelController(channels *push.ChannelService, logger *slog.Logger) *ChannelController {
	return &ChannelController{channels: channels, logger: logger}
}

// registerTokenRequest accepts the older fcmToken field name as well.
type registerTokenRequest struct {
	Token    string `json:"token"`
	FCMToken string `json:"fcmToken"`
}

func (h *ChannelController) HandleRegister(c *fiber.Ctx) error {
	var req registerTokenRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, h.logger, err)
	}
	token := req.Token
	if token == "" {
		token = req.FCMToken
	}

	if err := h.channels.Register(c.UserContext(), usercontext.GetUserID(c), token); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "FCM token updated successfully"})
}

func (h *ChannelController) HandleGet(c *fiber.Ctx) error {
	ch, err := h.channels.Get(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(ch)
}

func (h *ChannelController) HandleUnregister(c *fiber.Ctx) error {
	if err := h.channels.Unregister(c.UserContext(), usercontext.GetUserID(c)); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "FCM token removed successfully"})
}
