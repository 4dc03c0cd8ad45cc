package router

import (
	"github.com/labstack/echo/v4"

	"github.com/sambali01/lessonlink/internal/handler"
	"github.com/sambali01/lessonlink/internal/middleware"
)

// RegisterStudent registers STUDENT-scoped endpoints under /v1.
func RegisterStudent(e *echo.Echo, b *handler.BookingHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("STUDENT"),
	)
	g.POST("/bookings", b.Create, limiter)
	g.GET("/my-bookings", b.ListMine)
}
