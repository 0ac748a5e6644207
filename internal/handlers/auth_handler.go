package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jangbuk/volunteer-backend/internal/dto"
	"github.com/jangbuk/volunteer-backend/internal/middleware"
	"github.com/jangbuk/volunteer-backend/internal/oauth"
	"github.com/jangbuk/volunteer-backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Register(c.Context(), &req)
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

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Login(c.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return serverError(c)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Refresh(c.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRefreshToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return serverError(c)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(dto.NewUserResponse(user))
}

func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	user, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	updated, err := h.authService.UpdateProfile(c.Context(), user, &req)
	if err != nil {
		return serverError(c)
	}
	return c.JSON(dto.NewUserResponse(updated))
}

// Logout is a stateless acknowledgment: issued tokens stay valid until
// expiry, the client just discards them.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) SocialAuthURL(c *fiber.Ctx) error {
	url, err := h.authService.SocialAuthURL(c.Params("provider"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(dto.AuthURLResponse{URL: url})
}

func (h *AuthHandler) SocialCallback(c *fiber.Ctx) error {
	var req dto.SocialCallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Code == "" {
		return badRequest(c, "Authorization code is required")
	}

	resp, err := h.authService.SocialCallback(c.Context(), c.Params("provider"), req.Code)
	if err != nil {
		// Provider failures and cross-provider conflicts are
		// client-visible 400s; anything else stays in the logs.
		switch {
		case errors.Is(err, oauth.ErrUnknownProvider),
			errors.Is(err, oauth.ErrProviderAuth),
			errors.Is(err, oauth.ErrProfileFetch),
			errors.Is(err, services.ErrEmailLinked):
			return badRequest(c, err.Error())
		default:
			return serverError(c)
		}
	}

	return c.JSON(resp)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

func serverError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}
