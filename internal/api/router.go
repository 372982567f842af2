package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/userhub/user-service/docs"
	"github.com/userhub/user-service/internal/api/handler"
	"github.com/userhub/user-service/internal/api/middleware"
	"github.com/userhub/user-service/internal/core/ports"
	"github.com/userhub/user-service/internal/infrastructure/oauth"
)

// BasePath prefixes every user and session route.
const BasePath = "/api/assignment"

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Users   ports.UserService
	Auth    ports.AuthService
	Cookies handler.SessionCookies

	// Google is optional; its routes are only mounted when set.
	Google    oauth.Provider
	Redirects handler.OAuthRedirects

	// Checks back the readiness probe, keyed by dependency name.
	Checks map[string]handler.Check

	// Registry receives the HTTP metrics. Defaults to the global registry.
	Registry *prometheus.Registry

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.AccessLog(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
	}))
	e.Use(middleware.Session(d.Auth, d.Cookies.Options, d.Log))

	// --- Handlers ---
	users := handler.NewUserHandler(d.Users, d.Auth, d.Cookies, d.Log)
	auth := handler.NewAuthHandler(d.Auth, d.Cookies, d.Log)
	admin := middleware.RequireAdmin()

	// --- User and session routes ---
	g := e.Group(BasePath)
	g.GET("/user", users.Lookup)
	g.GET("/user/availability", users.CheckUsername)
	g.POST("/user/credentials", users.FindByCredentials)
	g.POST("/login", auth.Login)
	g.POST("/logout", auth.Logout)
	g.GET("/checkLoggedIn", auth.CheckLoggedIn)
	g.GET("/checkAdmin", auth.CheckAdmin)

	g.GET("/user/:userId", users.Get)
	g.POST("/user", users.Register)
	g.DELETE("/user/:userId", users.Unregister)
	g.GET("/admin/user", users.List, admin)
	g.PUT("/user/:userId", users.Update)
	g.DELETE("/admin/user/:userId", users.Delete, admin)

	// --- External login ---
	if d.Google != nil {
		google := handler.NewOAuthHandler(d.Google, d.Auth, d.Cookies, d.Redirects, d.Log)
		e.GET("/auth/google", google.Redirect)
		e.GET("/auth/google/callback", google.Callback)
	}

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)                   // liveness  – is the process alive?
	e.GET("/health/ready", handler.NewReadinessHandler(d.Checks).Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
