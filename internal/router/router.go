// Package router maps the HTTP surface onto handlers and attaches the
// auth, role, rate-limit and cache middleware per route group.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/sambali01/lessonlink/internal/handler"
	"github.com/sambali01/lessonlink/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication or
// middleware.  Currently just the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints.  Register, login, refresh
// and logout live under /v1/auth without a session; /v1/me requires a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout takes either a bearer token or a refresh_token body, so
	// it stays outside the JWT middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}
