package router

import (
	"github.com/labstack/echo/v4"

	"github.com/sambali01/lessonlink/internal/handler"
)

// RegisterPublic registers the unauthenticated browse endpoints.  The
// response cache middleware sits on these GETs; pass a pass-through
// middleware when Redis is not configured.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/available-slots/teacher/:teacherId", p.ListTeacherFreeSlots, cache)
	e.GET("/v1/teachers/:id/subjects", p.ListTeacherSubjects, cache)
	e.GET("/v1/search/teachers", p.SearchTeachers, cache)
}
