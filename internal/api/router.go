package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"

	_ "github.com/bahasaku/gateway/docs"
	"github.com/bahasaku/gateway/internal/api/handler"
	"github.com/bahasaku/gateway/internal/api/middleware"
	"github.com/bahasaku/gateway/internal/core/ports"
)

// loginPath is where the guard sends anyone without a usable session. The
// unauthenticated landing page is the same for "not logged in" and "wrong
// role" on purpose.
const loginPath = "/login"

// Deps carries everything the router needs wired in.
type Deps struct {
	Sessions ports.SessionService
	Backend  ports.Upstream
	Audit    ports.AuditReader
	Health   *handler.HealthHandler
	Log      zerolog.Logger

	// Metrics receives the HTTP middleware collectors. Nil means the
	// default registry; tests pass a fresh one per router to avoid
	// duplicate registration.
	Metrics prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	registerer := d.Metrics
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "bahasaku",
		Registerer: registerer,
	}))

	guard := middleware.Session(d.Sessions, loginPath)
	adminOnly := middleware.RequireRole("Admin", loginPath)

	authHandler := handler.NewAuthHandler(d.Sessions, d.Backend)
	profileHandler := handler.NewProfileHandler(d.Sessions, d.Backend)
	adminHandler := handler.NewAdminHandler(d.Backend, d.Audit)
	contentHandler := handler.NewContentHandler(d.Backend)

	// --- Auth ---
	e.POST("/api/auth/login", authHandler.Login)
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/logout", authHandler.Logout)
	e.GET("/api/auth/session", authHandler.Session, guard)

	// --- Profile ---
	e.GET("/api/profile", profileHandler.Get, guard)
	e.PUT("/api/profile", profileHandler.Update, guard)

	// --- Public content ---
	e.GET("/api/vocabulary", contentHandler.Vocabulary)
	e.GET("/api/information", contentHandler.Information)

	// --- Translation and feedback (any logged-in user) ---
	e.POST("/api/translate", contentHandler.Translate, guard)
	e.POST("/api/feedback", contentHandler.Feedback, guard)

	// --- Admin back-office ---
	admin := e.Group("/api/admin", guard, adminOnly)
	admin.GET("/users", adminHandler.ListUsers)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.GET("/users/:id/sessions", adminHandler.UserSessions)
	admin.GET("/feedback", adminHandler.ListFeedback)
	admin.POST("/vocabulary", adminHandler.CreateVocabulary)
	admin.POST("/information", adminHandler.CreateInformation)
	admin.PUT("/information/:id", adminHandler.UpdateInformation)
	admin.DELETE("/information/:id", adminHandler.DeleteInformation)

	// --- Health probes (no auth required) ---
	e.GET("/health", d.Health.Liveness)
	e.GET("/health/ready", d.Health.Readiness)

	// --- Operational surfaces ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
