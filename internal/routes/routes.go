package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/jangbuk/volunteer-backend/internal/config"
	"github.com/jangbuk/volunteer-backend/internal/handlers"
	"github.com/jangbuk/volunteer-backend/internal/middleware"
	"github.com/jangbuk/volunteer-backend/internal/store"
	"github.com/jangbuk/volunteer-backend/internal/token"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	users store.UserStore,
	codec *token.Codec,
	authHandler *handlers.AuthHandler,
	adminHandler *handlers.AdminHandler,
	scheduleHandler *handlers.ScheduleHandler,
	noticeHandler *handlers.NoticeHandler,
	notificationHandler *handlers.NotificationHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Route guards
	protect := middleware.JWTProtected(cfg)
	loadUser := middleware.RequireUser(users)
	optional := middleware.OptionalUser(users, codec)

	// Auth public surface, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Get("/social/:provider", authHandler.SocialAuthURL)
	auth.Post("/social/:provider/callback", authHandler.SocialCallback)

	// Protected auth routes, registered on api so the auth limiter does not
	// throttle profile reads
	api.Get("/auth/me", protect, loadUser, authHandler.Me)
	api.Put("/auth/me", protect, loadUser, authHandler.UpdateMe)
	api.Post("/auth/logout", protect, loadUser, authHandler.Logout)

	// Admin (protected + admin role required)
	admin := api.Group("/admin", protect, loadUser, middleware.AdminRequired())
	admin.Post("/register", adminHandler.RegisterAdmin)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:id/role", adminHandler.UpdateUserRole)

	// Schedule reads carry the optional principal so the
	// "did I apply" flag can be rendered
	api.Get("/schedules", optional, scheduleHandler.List)
	api.Get("/schedules/:id", optional, scheduleHandler.Get)
	admin.Post("/schedules", scheduleHandler.Create)
	admin.Put("/schedules/:id", scheduleHandler.Update)
	admin.Delete("/schedules/:id", scheduleHandler.Delete)
	admin.Get("/schedules/:id/applicants", scheduleHandler.Applicants)

	// Applications
	api.Post("/schedules/:id/apply", protect, loadUser, scheduleHandler.Apply)
	api.Delete("/schedules/:id/apply", protect, loadUser, scheduleHandler.CancelApplication)
	api.Get("/applications/me", protect, loadUser, scheduleHandler.MyApplications)

	// Notices
	api.Get("/notices", optional, noticeHandler.List)
	api.Get("/notices/:id", optional, noticeHandler.Get)
	admin.Post("/notices", noticeHandler.Create)
	admin.Put("/notices/:id", noticeHandler.Update)
	admin.Delete("/notices/:id", noticeHandler.Delete)

	// Notifications
	api.Get("/notifications", protect, loadUser, notificationHandler.List)
	api.Put("/notifications/read-all", protect, loadUser, notificationHandler.MarkAllRead)
	api.Put("/notifications/:id/read", protect, loadUser, notificationHandler.MarkRead)
	api.Post("/notifications/register-token", protect, loadUser, notificationHandler.RegisterToken)
}
