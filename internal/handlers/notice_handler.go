package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jangbuk/volunteer-backend/internal/dto"
	"github.com/jangbuk/volunteer-backend/internal/middleware"
	"github.com/jangbuk/volunteer-backend/internal/services"
)

type NoticeHandler struct {
	notices *services.NoticeService
}

func NewNoticeHandler(notices *services.NoticeService) *NoticeHandler {
	return &NoticeHandler{notices: notices}
}

func (h *NoticeHandler) List(c *fiber.Ctx) error {
	notices, err := h.notices.List()
	if err != nil {
		return serverError(c)
	}
	return c.JSON(notices)
}

func (h *NoticeHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid notice id")
	}

	notice, err := h.notices.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNoticeNotFound) {
			return notFound(c, err.Error())
		}
		return serverError(c)
	}
	return c.JSON(notice)
}

func (h *NoticeHandler) Create(c *fiber.Ctx) error {
	user, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.NoticeCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	notice, err := h.notices.Create(user.ID, &req)
	if err != nil {
		if errors.Is(err, services.ErrMissingNoticeFields) {
			return badRequest(c, err.Error())
		}
		return serverError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(notice)
}

func (h *NoticeHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid notice id")
	}

	var req dto.NoticeUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	notice, err := h.notices.Update(id, &req)
	if err != nil {
		if errors.Is(err, services.ErrNoticeNotFound) {
			return notFound(c, err.Error())
		}
		return serverError(c)
	}
	return c.JSON(notice)
}

func (h *NoticeHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid notice id")
	}

	if err := h.notices.Delete(id); err != nil {
		if errors.Is(err, services.ErrNoticeNotFound) {
			return notFound(c, err.Error())
		}
		return serverError(c)
	}
	return c.JSON(dto.MessageResponse{Message: "Notice deleted"})
}
