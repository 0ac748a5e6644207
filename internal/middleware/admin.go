package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jangbuk/volunteer-backend/internal/dto"
)

// AdminRequired builds on RequireUser and rejects non-admin principals
// with 403, distinct from the 401 of a failed authentication.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := Principal(c)
		if !ok {
			return unauthorized(c)
		}
		if !user.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Admin access required",
			})
		}
		return c.Next()
	}
}
