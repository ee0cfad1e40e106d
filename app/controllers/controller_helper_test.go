package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/apperr"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/usercontext"
)

func TestWriteError(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"validation", apperr.Validation("Title is required"), http.StatusBadRequest,
			`{"error":"validation","message":"Title is required"}`},
		{"conflict", apperr.Conflict("stale"), http.StatusConflict,
			`{"error":"conflict","message":"stale"}`},
		{"upstream hides cause", apperr.Wrap(apperr.KindUpstream, "Error creating checkout session", errors.New("sk_live leaked")),
			http.StatusInternalServerError, `{"error":"upstream","message":"Error creating checkout session"}`},
		{"plain error", errors.New("db exploded"), http.StatusInternalServerError,
			`{"error":"internal_server_error","message":"Internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return writeError(c, logger, tt.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.JSONEq(t, tt.wantBody, string(body))
		})
	}
}

func TestCheckClaimedUser(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/:claimed?", func(c *fiber.Ctx) error {
		usercontext.SetUserContext(c, usercontext.UserContext{UID: "U1", IsLoggedIn: true})
		if err := checkClaimedUser(c, c.Params("claimed")); err != nil {
			return c.SendStatus(apperr.HTTPStatus(apperr.KindOf(err)))
		}
		return c.SendStatus(http.StatusNoContent)
	})

	for path, want := range map[string]int{"/": http.StatusNoContent, "/U1": http.StatusNoContent, "/U2": http.StatusForbidden} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}
