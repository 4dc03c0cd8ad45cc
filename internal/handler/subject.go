package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sambali01/lessonlink/internal/model"
	"github.com/sambali01/lessonlink/internal/repository"
)

// subjectResp is the wire shape of a subject.
type subjectResp struct {
	ID          uint64    `json:"id"`
	TeacherID   uint64    `json:"teacher_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toSubjectResps(subjects []model.Subject) []subjectResp {
	out := make([]subjectResp, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, subjectResp{
			ID:          s.ID,
			TeacherID:   s.TeacherID,
			Name:        s.Name,
			Description: s.Description,
			CreatedAt:   s.CreatedAt,
		})
	}
	return out
}

// SubjectHandler serves the subject catalog teachers maintain.
type SubjectHandler struct {
	Subjects *repository.SubjectRepo
}

func NewSubjectHandler(subjects *repository.SubjectRepo) *SubjectHandler {
	if subjects == nil {
		panic("nil repository passed to NewSubjectHandler")
	}
	return &SubjectHandler{Subjects: subjects}
}

// Create handles POST /v1/subjects.
func (h *SubjectHandler) Create(c echo.Context) error {
	teacherID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	subject := &model.Subject{
		TeacherID:   teacherID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	if err := h.Subjects.Create(c.Request().Context(), subject); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create subject failed"})
	}
	return c.JSON(http.StatusCreated, subjectResp{
		ID:          subject.ID,
		TeacherID:   subject.TeacherID,
		Name:        subject.Name,
		Description: subject.Description,
		CreatedAt:   subject.CreatedAt,
	})
}

// ListMine handles GET /v1/subjects/mine.
func (h *SubjectHandler) ListMine(c echo.Context) error {
	teacherID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Subjects.ListByTeacher(c.Request().Context(), teacherID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toSubjectResps(items)})
}

// Delete handles DELETE /v1/subjects/:id.
func (h *SubjectHandler) Delete(c echo.Context) error {
	teacherID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	subjectID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid subject id"})
	}
	if err := h.Subjects.DeleteByIDAndTeacher(c.Request().Context(), subjectID, teacherID); err != nil {
		return schedulingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
