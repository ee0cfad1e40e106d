package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/apperr"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/identity"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/usercontext"
)

// BearerAuth verifies the bearer token and stores the principal on the request.
// Requests without a valid token stop here with a JSON 401.
func BearerAuth(verifier identity.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := identity.ExtractBearer(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c, "Missing or invalid authentication")
		}

		principal, err := verifier.Verify(c.UserContext(), token)
		if err != nil {
			return unauthorized(c, apperr.MessageOf(err))
		}

		usercontext.SetUserContext(c, usercontext.UserContext{
			UID:        principal.UID,
			Email:      principal.Email,
			IsLoggedIn: true,
			IsAdmin:    principal.IsAdmin,
		})
		return c.Next()
	}
}

// RequireAdmin ensures a verified admin; must run after BearerAuth.
func RequireAdmin(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return unauthorized(c, "login required")
	}
	if !usercontext.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "admin privileges required",
		})
	}
	return c.Next()
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthorized",
		"message": msg,
	})
}
