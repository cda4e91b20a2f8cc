package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/autodealer/showroom/internal/api/handler"
	"github.com/autodealer/showroom/internal/api/middleware"
	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Rooms         *handler.RoomHandler
	Cars          *handler.CarHandler
	Bookings      *handler.BookingHandler
	Payments      *handler.PaymentHandler
	Chats         *handler.ChatHandler
	Notifications *handler.NotificationHandler
	Realtime      *handler.RealtimeHandler
	Admin         *handler.AdminHandler
	Health        *handler.HealthHandler
}

// Options carries the cross-cutting dependencies of the middleware chain.
type Options struct {
	Codec       ports.TokenCodec
	SetupKey    string
	Recorder    ports.RequestLogger
	Queue       ports.TaskQueue
	BodyLimit   int
	CORSOrigins []string
	Log         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(h Handlers, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLog(opts.Recorder, opts.Queue, middleware.RequestLogConfig{BodyLimit: opts.BodyLimit}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: corsOrigins(opts.CORSOrigins),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.SetupKeyHeader},
	}))
	e.Use(echoprometheus.NewMiddleware("showroom"))

	// --- Probes and tooling (no auth required) ---
	e.GET("/health", h.Health.Liveness)
	e.GET("/health/ready", h.Health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	auth := middleware.Auth(opts.Codec)
	optional := middleware.OptionalAuth(opts.Codec)
	user := middleware.RBAC(domain.RoleUser)
	admin := middleware.RBAC(domain.RoleAdmin)
	super := middleware.RBAC(domain.RoleSuperadmin)
	manager := middleware.RBAC(domain.RoleAdmin, domain.RoleSuperadmin)
	participant := middleware.RBAC(domain.RoleUser, domain.RoleAdmin)

	api := e.Group("/api")

	api.POST("/setup/superadmin", h.Auth.BootstrapSuperadmin, middleware.SetupKey(opts.SetupKey))

	// --- Auth ---
	a := api.Group("/auth")
	a.POST("/signup", h.Auth.Signup)
	a.POST("/verify-otp", h.Auth.VerifyOTP)
	a.POST("/resend-otp", h.Auth.ResendOTP)
	a.POST("/login", h.Auth.Login)
	a.POST("/forgot-password", h.Auth.ForgotPassword)
	a.POST("/reset-password", h.Auth.ResetPassword)
	a.GET("/me", h.Auth.Me, auth)

	// --- Users ---
	u := api.Group("/users", auth)
	u.GET("", h.Users.List, super)
	u.PUT("/me", h.Users.UpdateMe)
	u.POST("/me/password", h.Users.RequestPasswordChange)
	u.POST("/me/password/confirm", h.Users.ConfirmPasswordChange)
	u.POST("/admins", h.Users.CreateAdmin, super)
	u.GET("/:id", h.Users.Get)
	u.PUT("/:id/role", h.Users.SetRole, super)
	u.PUT("/:id/status", h.Users.SetStatus, super)
	u.DELETE("/:id", h.Users.Delete, super)

	// --- Rooms ---
	api.GET("/rooms", h.Rooms.List)
	api.GET("/rooms/mine", h.Rooms.Mine, auth, admin)
	api.GET("/rooms/:id", h.Rooms.Get, optional)
	api.POST("/rooms", h.Rooms.Create, auth, admin)
	api.PUT("/rooms/:id", h.Rooms.Update, auth, manager)
	api.PUT("/rooms/:id/status", h.Rooms.SetStatus, auth, super)
	api.DELETE("/rooms/:id", h.Rooms.Delete, auth, manager)

	// --- Cars ---
	api.GET("/cars", h.Cars.List)
	api.GET("/cars/:id", h.Cars.Get, optional)
	api.POST("/cars", h.Cars.Create, auth, admin)
	api.PUT("/cars/:id", h.Cars.Update, auth, manager)
	api.DELETE("/cars/:id", h.Cars.Delete, auth, manager)

	// --- Bookings ---
	b := api.Group("/bookings", auth)
	b.POST("", h.Bookings.Create, user)
	b.GET("", h.Bookings.List)
	b.PUT("/:id/status", h.Bookings.UpdateStatus, participant)

	// --- Payments ---
	p := api.Group("/payments", auth)
	p.POST("", h.Payments.Create, user)
	p.GET("", h.Payments.List, middleware.RBAC(domain.RoleUser, domain.RoleSuperadmin))
	p.PUT("/:id/status", h.Payments.UpdateStatus, super)

	// --- Chats ---
	c := api.Group("/chats", auth)
	c.POST("", h.Chats.Start, user)
	c.GET("", h.Chats.List, participant)
	c.GET("/:id/messages", h.Chats.Messages)
	c.POST("/:id/messages", h.Chats.Send, participant)
	c.PUT("/:id/read", h.Chats.MarkRead, participant)

	// --- Notifications ---
	n := api.Group("/notifications", auth)
	n.GET("", h.Notifications.List)
	n.GET("/unread-count", h.Notifications.UnreadCount)
	n.PUT("/read-all", h.Notifications.MarkAllRead)
	n.PUT("/:id/read", h.Notifications.MarkRead)
	n.DELETE("/:id", h.Notifications.Delete)

	// --- Realtime ---
	api.POST("/realtime/auth", h.Realtime.Authorize, auth)
	api.GET("/realtime/stream", h.Realtime.Stream)

	// --- Superadmin dashboard ---
	ad := api.Group("/admin", auth, super)
	ad.GET("/stats", h.Admin.Stats)
	ad.GET("/rooms", h.Rooms.ListAll)
	ad.GET("/logs", h.Admin.Logs)
	ad.DELETE("/logs", h.Admin.PurgeLogs)
	ad.GET("/settings/logging", h.Admin.GetLogging)
	ad.PUT("/settings/logging", h.Admin.SetLogging)

	return e
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
