package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jangbuk/volunteer-backend/internal/dto"
	"github.com/jangbuk/volunteer-backend/internal/middleware"
	"github.com/jangbuk/volunteer-backend/internal/models"
	"github.com/jangbuk/volunteer-backend/internal/services"
)

type AdminHandler struct {
	authService *services.AuthService
}

func NewAdminHandler(authService *services.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

func (h *AdminHandler) RegisterAdmin(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.RegisterAdmin(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken),
			errors.Is(err, services.ErrMissingFields):
			return badRequest(c, err.Error())
		default:
			return serverError(c)
		}
	}
	return c.JSON(resp)
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.authService.ListUsers(c.Context())
	if err != nil {
		return serverError(c)
	}
	return c.JSON(users)
}

func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	actor, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}

	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	var req dto.RoleUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.UpdateUserRole(c.Context(), actor, targetID, req.Role); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return notFound(c, err.Error())
		case errors.Is(err, services.ErrSelfRoleChange):
			return badRequest(c, err.Error())
		case errors.Is(err, models.ErrInvalidRole):
			return badRequest(c, err.Error())
		default:
			return serverError(c)
		}
	}

	return c.JSON(dto.MessageResponse{Message: "User role updated to " + req.Role})
}
