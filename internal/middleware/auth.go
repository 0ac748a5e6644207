package middleware

import (
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jangbuk/volunteer-backend/internal/config"
	"github.com/jangbuk/volunteer-backend/internal/dto"
	"github.com/jangbuk/volunteer-backend/internal/models"
	"github.com/jangbuk/volunteer-backend/internal/store"
	"github.com/jangbuk/volunteer-backend/internal/token"
)

const principalKey = "principal"

// JWTProtected validates the bearer token's signature and expiry.
// Kind and subject checks happen in RequireUser on top of it.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// RequireUser resolves the verified claims into a stored user. Refresh
// tokens are rejected here even though their signature is valid, and a
// subject that no longer resolves to a row fails unauthenticated.
func RequireUser(users store.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok, ok := c.Locals("user").(*jwt.Token)
		if !ok || tok == nil {
			return unauthorized(c)
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c)
		}
		if kind, _ := claims["type"].(string); kind != string(token.KindAccess) {
			return unauthorized(c)
		}
		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			return unauthorized(c)
		}

		user, err := users.ByID(c.Context(), userID)
		if err != nil {
			return unauthorized(c)
		}

		c.Locals(principalKey, user)
		return c.Next()
	}
}

// OptionalUser resolves the current user when a valid access token is
// present and yields no principal otherwise. It never fails the request.
func OptionalUser(users store.UserStore, codec *token.Codec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Next()
		}

		userID, err := codec.Verify(strings.TrimPrefix(header, "Bearer "), token.KindAccess)
		if err != nil {
			return c.Next()
		}

		user, err := users.ByID(c.Context(), userID)
		if err != nil {
			return c.Next()
		}

		c.Locals(principalKey, user)
		return c.Next()
	}
}

// Principal returns the authenticated user attached by RequireUser or
// OptionalUser, if any.
func Principal(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(principalKey).(*models.User)
	return user, ok
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
