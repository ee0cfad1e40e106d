package controllers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/NewsDesk/app/models"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/content"
)

type ContentController struct {
	service *content.Service
	logger  *slog.Logger
}

func NewContentController(service *content.Service, logger *slog.Logger) *ContentController {
	return &ContentController{service: service, logger: logger}
}

type createContentRequest struct {
	Title  string `json:"title" validate:"required"`
	Detail string `json:"detail" validate:"required"`
	UserID string `json:"userId"`
}

// HandleCreate submits a new item. Any status in the body is ignored.
func (h *ContentController) HandleCreate(c *fiber.Ctx) error {
	var req createContentRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, h.logger, err)
	}
	if err := checkClaimedUser(c, req.UserID); err != nil {
		return writeError(c, h.logger, err)
	}

	item, err := h.service.Create(c.UserContext(), actorFrom(c), req.Title, req.Detail)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": item.ID, "success": true})
}

func (h *ContentController) HandleList(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), c.Query("userId"), c.Query("status"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(items)
}

// HandleReviewQueue lists pending items of all authors for reviewers.
func (h *ContentController) HandleReviewQueue(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), "", string(models.ContentStatusPending))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(items)
}

func (h *ContentController) HandleGet(c *fiber.Ctx) error {
	item, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(item)
}

type updateContentRequest struct {
	Title   *string `json:"title"`
	Detail  *string `json:"detail"`
	Status  *string `json:"status"`
	Version *int64  `json:"version" validate:"omitempty,min=1"`
}

func (h *ContentController) HandleUpdate(c *fiber.Ctx) error {
	var req updateContentRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, h.logger, err)
	}

	item, err := h.service.Update(c.UserContext(), actorFrom(c), c.Params("id"), content.UpdateInput{
		Title:           req.Title,
		Detail:          req.Detail,
		Status:          req.Status,
		ExpectedVersion: req.Version,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "version": item.Version})
}

func (h *ContentController) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
