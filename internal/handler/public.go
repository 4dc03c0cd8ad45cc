package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sambali01/lessonlink/internal/repository"
)

// PublicHandler serves unauthenticated browse endpoints: a teacher's
// free slots, their subjects and the teacher directory search.
// Responses carry only display-safe fields.
type PublicHandler struct {
	Slots    *repository.SlotRepo
	Subjects *repository.SubjectRepo
}

func NewPublicHandler(slots *repository.SlotRepo, subjects *repository.SubjectRepo) *PublicHandler {
	if slots == nil || subjects == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Slots: slots, Subjects: subjects}
}

// publicSlot exposes the fields students need to pick a time.
type publicSlot struct {
	ID        uint64    `json:"id"`
	TeacherID uint64    `json:"teacher_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// ListTeacherFreeSlots handles GET /v1/available-slots/teacher/:teacherId:
// a teacher's future slots with no active booking, paginated.
func (h *PublicHandler) ListTeacherFreeSlots(c echo.Context) error {
	teacherID, ok := pathID(c, "teacherId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid teacher id"})
	}
	page, size, offset := pageParams(c)
	slots, total, err := h.Slots.ListFreeByTeacher(c.Request().Context(), teacherID, size, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]publicSlot, 0, len(slots))
	for _, s := range slots {
		out = append(out, publicSlot{ID: s.ID, TeacherID: s.TeacherID, StartTime: s.StartTime, EndTime: s.EndTime})
	}
	return c.JSON(http.StatusOK, paged(out, total, page, size))
}

// ListTeacherSubjects handles GET /v1/teachers/:id/subjects.
func (h *PublicHandler) ListTeacherSubjects(c echo.Context) error {
	teacherID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid teacher id"})
	}
	items, err := h.Subjects.ListByTeacher(c.Request().Context(), teacherID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toSubjectResps(items)})
}

// SearchTeachers handles GET /v1/search/teachers?subject=&page&pageSize:
// the public directory, optionally filtered by subject name fragment.
func (h *PublicHandler) SearchTeachers(c echo.Context) error {
	subject := strings.TrimSpace(c.QueryParam("subject"))
	page, size, offset := pageParams(c)
	teachers, total, err := h.Subjects.SearchTeachers(c.Request().Context(), subject, size, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, paged(teachers, total, page, size))
}
