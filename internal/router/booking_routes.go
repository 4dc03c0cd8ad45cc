package router

import (
	"github.com/labstack/echo/v4"

	"github.com/sambali01/lessonlink/internal/handler"
	"github.com/sambali01/lessonlink/internal/middleware"
)

// RegisterBookingParties registers the booking endpoints shared by
// both parties: reading a booking and cancelling one.  The handlers
// verify that the caller is the booking's student or the slot's
// teacher; the role middleware only keeps anonymous roles out.
func RegisterBookingParties(e *echo.Echo, b *handler.BookingHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("TEACHER", "STUDENT"),
	)
	g.GET("/bookings/:id", b.Get)
	g.DELETE("/bookings/:id", b.Cancel, limiter)
}
