package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jangbuk/volunteer-backend/internal/config"
	"github.com/jangbuk/volunteer-backend/internal/models"
	"github.com/jangbuk/volunteer-backend/internal/store"
	"github.com/jangbuk/volunteer-backend/internal/token"
)

const testSecret = "middleware-test-secret"

type guardFixture struct {
	app   *fiber.App
	users *store.MemoryUserStore
	codec *token.Codec
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()

	cfg := &config.Config{JWTSecret: testSecret}
	users := store.NewMemoryUserStore()
	codec := token.NewCodec(testSecret, 30*time.Minute, 168*time.Hour)

	app := fiber.New()
	whoami := func(c *fiber.Ctx) error {
		if user, ok := Principal(c); ok {
			return c.JSON(fiber.Map{"email": user.Email})
		}
		return c.JSON(fiber.Map{"email": nil})
	}
	app.Get("/required", JWTProtected(cfg), RequireUser(users), whoami)
	app.Get("/optional", OptionalUser(users, codec), whoami)
	app.Get("/admin", JWTProtected(cfg), RequireUser(users), AdminRequired(), whoami)

	return &guardFixture{app: app, users: users, codec: codec}
}

func (f *guardFixture) addUser(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		ID:       uuid.New(),
		Email:    email,
		Name:     "Test",
		Role:     role,
		Provider: models.ProviderEmail,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *guardFixture) get(t *testing.T, path, bearer string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestRequireUser(t *testing.T) {
	t.Parallel()

	t.Run("valid access token resolves the principal", func(t *testing.T) {
		t.Parallel()

		f := newGuardFixture(t)
		user := f.addUser(t, "a@x.com", models.RoleUser)
		access, err := f.codec.Issue(user.ID, token.KindAccess)
		require.NoError(t, err)

		resp := f.get(t, "/required", access)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "a@x.com")
	})

	t.Run("missing token fails unauthenticated", func(t *testing.T) {
		t.Parallel()

		f := newGuardFixture(t)
		resp := f.get(t, "/required", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed token fails unauthenticated", func(t *testing.T) {
		t.Parallel()

		f := newGuardFixture(t)
		resp := f.get(t, "/required", "not-a-token")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("refresh token rejected despite valid signature", func(t *testing.T) {
		t.Parallel()

		f := newGuardFixture(t)
		user := f.addUser(t, "a@x.com", models.RoleUser)
		refresh, err := f.codec.Issue(user.ID, token.KindRefresh)
		require.NoError(t, err)

		resp := f.get(t, "/required", refresh)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("dangling subject fails unauthenticated", func(t *testing.T) {
		t.Parallel()

		f := newGuardFixture(t)
		access, err := f.codec.Issue(uuid.New(), token.KindAccess)
		require.NoError(t, err)

		resp := f.get(t, "/required", access)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestOptionalUser(t *testing.T) {
	t.Parallel()

	t.Run("no header yields no principal, not a failure", func(t *testing.T) {
		t.Parallel()

		f := newGuardFixture(t)
		resp := f.get(t, "/optional", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "null")
	})

	t.Run("bad token yields no principal", func(t *testing.T) {
		t.Parallel()

		f := newGuardFixture(t)
		resp := f.get(t, "/optional", "garbage")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "null")
	})

	t.Run("valid token resolves the principal", func(t *testing.T) {
		t.Parallel()

		f := newGuardFixture(t)
		user := f.addUser(t, "opt@x.com", models.RoleUser)
		access, err := f.codec.Issue(user.ID, token.KindAccess)
		require.NoError(t, err)

		resp := f.get(t, "/optional", access)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "opt@x.com")
	})

	t.Run("unknown subject yields no principal", func(t *testing.T) {
		t.Parallel()

		f := newGuardFixture(t)
		access, err := f.codec.Issue(uuid.New(), token.KindAccess)
		require.NoError(t, err)

		resp := f.get(t, "/optional", access)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestAdminRequired(t *testing.T) {
	t.Parallel()

	t.Run("admin passes", func(t *testing.T) {
		t.Parallel()

		f := newGuardFixture(t)
		admin := f.addUser(t, "admin@x.com", models.RoleAdmin)
		access, err := f.codec.Issue(admin.ID, token.KindAccess)
		require.NoError(t, err)

		resp := f.get(t, "/admin", access)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("regular user forbidden, distinct from unauthenticated", func(t *testing.T) {
		t.Parallel()

		f := newGuardFixture(t)
		user := f.addUser(t, "user@x.com", models.RoleUser)
		access, err := f.codec.Issue(user.ID, token.KindAccess)
		require.NoError(t, err)

		resp := f.get(t, "/admin", access)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("no token is unauthenticated, not forbidden", func(t *testing.T) {
		t.Parallel()

		f := newGuardFixture(t)
		resp := f.get(t, "/admin", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
