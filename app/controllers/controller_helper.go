package controllers

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/apperr"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/content"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/usercontext"
)

var validate = validator.New()

// writeError renders err as {"error": kind, "message": text}. Causes are
// logged for 5xx and never sent to the client.
func writeError(c *fiber.Ctx, logger *slog.Logger, err error) error {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= fiber.StatusInternalServerError {
		logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   string(kind),
		"message": apperr.MessageOf(err),
	})
}

// parseBody decodes and validates a JSON request body.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Wrap(apperr.KindValidation, "Invalid request body", err)
	}
	if err := validate.Struct(out); err != nil {
		return apperr.Wrap(apperr.KindValidation, "Invalid request body", err)
	}
	return nil
}

func actorFrom(c *fiber.Ctx) content.Actor {
	uc := usercontext.GetUserContext(c)
	return content.Actor{UID: uc.UID, IsReviewer: uc.IsAdmin}
}

// checkClaimedUser rejects a body userId that differs from the verified caller.
func checkClaimedUser(c *fiber.Ctx, claimed string) error {
	if claimed != "" && claimed != usercontext.GetUserID(c) {
		return apperr.Forbidden("userId does not match the authenticated user")
	}
	return nil
}
