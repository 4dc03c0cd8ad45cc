package router

import (
	"github.com/labstack/echo/v4"

	"github.com/sambali01/lessonlink/internal/handler"
	"github.com/sambali01/lessonlink/internal/middleware"
)

// RegisterTeacher registers TEACHER-scoped endpoints under /v1.  The
// rate limiter guards the mutating scheduling routes; list and detail
// reads stay unthrottled.
func RegisterTeacher(e *echo.Echo, s *handler.SlotHandler, b *handler.BookingHandler, subj *handler.SubjectHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("TEACHER"),
	)

	// ---- Availability ----
	g.POST("/available-slots", s.Create, limiter)
	g.PUT("/available-slots/:id", s.Update, limiter)
	g.DELETE("/available-slots/:id", s.Delete, limiter)
	g.GET("/available-slots/my-slots/current", s.ListCurrent)
	g.GET("/available-slots/my-slots/past", s.ListPast)
	g.GET("/available-slots/:id/details", s.Details)

	// ---- Booking decisions ----
	g.PUT("/bookings/:id/status", b.Decide, limiter)
	g.GET("/booking-requests", b.ListRequests)

	// ---- Subject catalog ----
	g.POST("/subjects", subj.Create)
	g.GET("/subjects/mine", subj.ListMine)
	g.DELETE("/subjects/:id", subj.Delete)
}
