package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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
	"github.com/jangbuk/volunteer-backend/internal/dto"
	"github.com/jangbuk/volunteer-backend/internal/middleware"
	"github.com/jangbuk/volunteer-backend/internal/models"
	"github.com/jangbuk/volunteer-backend/internal/oauth"
	"github.com/jangbuk/volunteer-backend/internal/services"
	"github.com/jangbuk/volunteer-backend/internal/store"
	"github.com/jangbuk/volunteer-backend/internal/token"
)

// failingUserStore simulates a store whose writes fail with a low-level
// driver error.
type failingUserStore struct {
	*store.MemoryUserStore
}

func (f *failingUserStore) Create(_ context.Context, _ *models.User) error {
	return errors.New("pq: connection reset by peer")
}

type apiFixture struct {
	app   *fiber.App
	users *store.MemoryUserStore
	auth  *services.AuthService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:         "handler-test-secret",
		GoogleClientID:    "google-client",
		GoogleRedirectURI: "https://app.example.com/callback/google",
		KakaoClientID:     "kakao-client",
		KakaoRedirectURI:  "https://app.example.com/callback/kakao",
	}
	users := store.NewMemoryUserStore()
	codec := token.NewCodec(cfg.JWTSecret, 30*time.Minute, 168*time.Hour)
	authService := services.NewAuthService(users, codec, oauth.NewRegistry(cfg))

	authHandler := NewAuthHandler(authService)
	adminHandler := NewAdminHandler(authService)

	protect := middleware.JWTProtected(cfg)
	loadUser := middleware.RequireUser(users)

	app := fiber.New()
	auth := app.Group("/api/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Get("/social/:provider", authHandler.SocialAuthURL)
	auth.Get("/me", protect, loadUser, authHandler.Me)
	auth.Put("/me", protect, loadUser, authHandler.UpdateMe)
	auth.Post("/logout", protect, loadUser, authHandler.Logout)

	admin := app.Group("/api/admin", protect, loadUser, middleware.AdminRequired())
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:id/role", adminHandler.UpdateUserRole)

	return &apiFixture{app: app, users: users, auth: authService}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, bearer string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (f *apiFixture) register(t *testing.T, email, password, name string) dto.AuthResponse {
	t.Helper()

	resp := f.do(t, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
		Email: email, Password: password, Name: name,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[dto.AuthResponse](t, resp)
}

func TestAuthEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("register then fetch own profile", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		created := f.register(t, "a@x.com", "pw123", "A")
		assert.NotEmpty(t, created.AccessToken)
		assert.NotEmpty(t, created.RefreshToken)
		assert.Equal(t, models.RoleUser, created.User.Role)
		assert.Equal(t, models.ProviderEmail, created.User.Provider)

		resp := f.do(t, http.MethodGet, "/api/auth/me", nil, created.AccessToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		me := decode[dto.UserResponse](t, resp)
		assert.Equal(t, "a@x.com", me.Email)
		assert.Equal(t, "A", me.Name)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		resp := f.do(t, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
			Email: "a@x.com",
		}, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("internal store failure is masked", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{JWTSecret: "handler-test-secret"}
		users := &failingUserStore{MemoryUserStore: store.NewMemoryUserStore()}
		codec := token.NewCodec(cfg.JWTSecret, 30*time.Minute, 168*time.Hour)
		handler := NewAuthHandler(services.NewAuthService(users, codec, oauth.Registry{}))

		app := fiber.New()
		app.Post("/api/auth/register", handler.Register)

		raw, err := json.Marshal(dto.RegisterRequest{Email: "a@x.com", Password: "pw123", Name: "A"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decode[dto.ErrorResponse](t, resp)
		assert.Equal(t, "Internal server error", body.Message)
		assert.NotContains(t, body.Message, "connection reset")
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		f.register(t, "a@x.com", "pw123", "A")

		resp := f.do(t, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
			Email: "a@x.com", Password: "other", Name: "B",
		}, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("login succeeds with correct password", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		f.register(t, "a@x.com", "pw123", "A")

		resp := f.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{
			Email: "a@x.com", Password: "pw123",
		}, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[dto.AuthResponse](t, resp)
		assert.NotEmpty(t, body.AccessToken)
		assert.Equal(t, "a@x.com", body.User.Email)
	})

	t.Run("login failures are indistinguishable", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		f.register(t, "a@x.com", "pw123", "A")

		wrongPw := f.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{
			Email: "a@x.com", Password: "nope",
		}, "")
		unknown := f.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{
			Email: "ghost@x.com", Password: "pw123",
		}, "")

		assert.Equal(t, http.StatusUnauthorized, wrongPw.StatusCode)
		assert.Equal(t, http.StatusUnauthorized, unknown.StatusCode)

		first := decode[dto.ErrorResponse](t, wrongPw)
		second := decode[dto.ErrorResponse](t, unknown)
		assert.Equal(t, first.Message, second.Message)
	})

	t.Run("refresh rotates the pair", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		created := f.register(t, "a@x.com", "pw123", "A")

		resp := f.do(t, http.MethodPost, "/api/auth/refresh", dto.RefreshRequest{
			RefreshToken: created.RefreshToken,
		}, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		rotated := decode[dto.AuthResponse](t, resp)
		assert.NotEmpty(t, rotated.AccessToken)
		assert.NotEmpty(t, rotated.RefreshToken)
		assert.Equal(t, created.User.ID, rotated.User.ID)
	})

	t.Run("refresh rejects garbage and access tokens", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		created := f.register(t, "a@x.com", "pw123", "A")

		garbage := f.do(t, http.MethodPost, "/api/auth/refresh", dto.RefreshRequest{
			RefreshToken: "garbage",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, garbage.StatusCode)

		asRefresh := f.do(t, http.MethodPost, "/api/auth/refresh", dto.RefreshRequest{
			RefreshToken: created.AccessToken,
		}, "")
		assert.Equal(t, http.StatusUnauthorized, asRefresh.StatusCode)
	})

	t.Run("profile update patches only provided fields", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		created := f.register(t, "a@x.com", "pw123", "A")

		name := "Renamed"
		resp := f.do(t, http.MethodPut, "/api/auth/me", dto.UpdateProfileRequest{Name: &name}, created.AccessToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		updated := decode[dto.UserResponse](t, resp)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, "a@x.com", updated.Email)
	})

	t.Run("social auth URL points at the provider", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)

		resp := f.do(t, http.MethodGet, "/api/auth/social/google", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[dto.AuthURLResponse](t, resp)
		assert.Contains(t, body.URL, "accounts.google.com")
		assert.Contains(t, body.URL, "google-client")
	})

	t.Run("unknown social provider rejected", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		resp := f.do(t, http.MethodGet, "/api/auth/social/github", nil, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("logout acknowledges without revoking", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		created := f.register(t, "a@x.com", "pw123", "A")

		resp := f.do(t, http.MethodPost, "/api/auth/logout", nil, created.AccessToken)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// Tokens remain valid until expiry.
		me := f.do(t, http.MethodGet, "/api/auth/me", nil, created.AccessToken)
		assert.Equal(t, http.StatusOK, me.StatusCode)
	})
}

func TestAdminEndpoints(t *testing.T) {
	t.Parallel()

	promote := func(t *testing.T, f *apiFixture, email string) *models.User {
		t.Helper()

		user, err := f.users.ByEmail(context.Background(), email)
		require.NoError(t, err)
		user.Role = models.RoleAdmin
		require.NoError(t, f.users.Save(context.Background(), user))
		return user
	}

	t.Run("admin promotes another user", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		admin := f.register(t, "admin@x.com", "pw123", "Admin")
		promote(t, f, "admin@x.com")
		target := f.register(t, "user@x.com", "pw123", "User")

		resp := f.do(t, http.MethodPut, "/api/admin/users/"+target.User.ID.String()+"/role",
			dto.RoleUpdateRequest{Role: "admin"}, admin.AccessToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		stored, err := f.users.ByID(context.Background(), target.User.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, stored.Role)
	})

	t.Run("admin cannot change own role", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		admin := f.register(t, "admin@x.com", "pw123", "Admin")
		promote(t, f, "admin@x.com")

		resp := f.do(t, http.MethodPut, "/api/admin/users/"+admin.User.ID.String()+"/role",
			dto.RoleUpdateRequest{Role: "user"}, admin.AccessToken)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("regular user forbidden from admin surface", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		user := f.register(t, "user@x.com", "pw123", "User")

		resp := f.do(t, http.MethodGet, "/api/admin/users", nil, user.AccessToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("unknown target yields not found", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		admin := f.register(t, "admin@x.com", "pw123", "Admin")
		promote(t, f, "admin@x.com")

		resp := f.do(t, http.MethodPut, "/api/admin/users/"+uuid.NewString()+"/role",
			dto.RoleUpdateRequest{Role: "admin"}, admin.AccessToken)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		t.Parallel()

		f := newAPIFixture(t)
		admin := f.register(t, "admin@x.com", "pw123", "Admin")
		promote(t, f, "admin@x.com")
		target := f.register(t, "user@x.com", "pw123", "User")

		resp := f.do(t, http.MethodPut, "/api/admin/users/"+target.User.ID.String()+"/role",
			dto.RoleUpdateRequest{Role: "superuser"}, admin.AccessToken)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
