package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jangbuk/volunteer-backend/internal/dto"
	"github.com/jangbuk/volunteer-backend/internal/middleware"
	"github.com/jangbuk/volunteer-backend/internal/services"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	authService   *services.AuthService
}

func NewNotificationHandler(notifications *services.NotificationService, authService *services.AuthService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, authService: authService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	user, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}

	notifications, err := h.notifications.Mine(user.ID)
	if err != nil {
		return serverError(c)
	}
	return c.JSON(notifications)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	user, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid notification id")
	}

	if err := h.notifications.MarkRead(user.ID, id); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			return notFound(c, err.Error())
		}
		return serverError(c)
	}
	return c.JSON(dto.MessageResponse{Message: "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	user, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.notifications.MarkAllRead(user.ID); err != nil {
		return serverError(c)
	}
	return c.JSON(dto.MessageResponse{Message: "All notifications marked as read"})
}

func (h *NotificationHandler) RegisterToken(c *fiber.Ctx) error {
	user, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.FCMTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Token == "" {
		return badRequest(c, "Token is required")
	}

	if err := h.authService.RegisterFCMToken(c.Context(), user, req.Token); err != nil {
		return serverError(c)
	}
	return c.JSON(dto.MessageResponse{Message: "FCM token registered"})
}
