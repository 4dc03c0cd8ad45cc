package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sambali01/lessonlink/internal/model"
	"github.com/sambali01/lessonlink/internal/repository"
	"github.com/sambali01/lessonlink/internal/service"
)

// SlotHandler serves the teacher-facing slot endpoints.  Mutations go
// through the scheduling service; reads hit the slot store directly.
type SlotHandler struct {
	Sched *service.Scheduler
	Slots *repository.SlotRepo
}

func NewSlotHandler(sched *service.Scheduler, slots *repository.SlotRepo) *SlotHandler {
	if sched == nil || slots == nil {
		panic("nil dependency passed to NewSlotHandler")
	}
	return &SlotHandler{Sched: sched, Slots: slots}
}

// slotReq carries a slot's time range.  Timestamps must be RFC 3339
// with an explicit offset; Go's JSON decoding rejects anything less,
// so ambiguous local times never reach the service.
type slotReq struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// slotResp is the wire shape of a slot owned by the caller.
type slotResp struct {
	ID        uint64    `json:"id"`
	TeacherID uint64    `json:"teacher_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toSlotResp(s *model.AvailableSlot) slotResp {
	return slotResp{
		ID:        s.ID,
		TeacherID: s.TeacherID,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toSlotResps(slots []model.AvailableSlot) []slotResp {
	out := make([]slotResp, 0, len(slots))
	for i := range slots {
		out = append(out, toSlotResp(&slots[i]))
	}
	return out
}

// Create handles POST /v1/available-slots.
func (h *SlotHandler) Create(c echo.Context) error {
	teacherID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req slotReq
	if err := c.Bind(&req); err != nil || req.StartTime.IsZero() || req.EndTime.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time and end_time required"})
	}
	slot, err := h.Sched.CreateSlot(c.Request().Context(), teacherID, req.StartTime, req.EndTime)
	if err != nil {
		return schedulingError(c, err)
	}
	return c.JSON(http.StatusCreated, toSlotResp(slot))
}

// Update handles PUT /v1/available-slots/:id.
func (h *SlotHandler) Update(c echo.Context) error {
	teacherID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	var req slotReq
	if err := c.Bind(&req); err != nil || req.StartTime.IsZero() || req.EndTime.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time and end_time required"})
	}
	slot, err := h.Sched.UpdateSlot(c.Request().Context(), teacherID, slotID, req.StartTime, req.EndTime)
	if err != nil {
		return schedulingError(c, err)
	}
	return c.JSON(http.StatusOK, toSlotResp(slot))
}

// Delete handles DELETE /v1/available-slots/:id.
func (h *SlotHandler) Delete(c echo.Context) error {
	teacherID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	if err := h.Sched.DeleteSlot(c.Request().Context(), teacherID, slotID); err != nil {
		return schedulingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListCurrent handles GET /v1/available-slots/my-slots/current.
func (h *SlotHandler) ListCurrent(c echo.Context) error {
	teacherID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, size, offset := pageParams(c)
	slots, total, err := h.Slots.ListCurrentByTeacher(c.Request().Context(), teacherID, size, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, paged(toSlotResps(slots), total, page, size))
}

// ListPast handles GET /v1/available-slots/my-slots/past.
func (h *SlotHandler) ListPast(c echo.Context) error {
	teacherID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, size, offset := pageParams(c)
	slots, total, err := h.Slots.ListPastByTeacher(c.Request().Context(), teacherID, size, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, paged(toSlotResps(slots), total, page, size))
}

// Details handles GET /v1/available-slots/:id/details: the slot plus
// its active booking and the student's display name, owner only.
func (h *SlotHandler) Details(c echo.Context) error {
	teacherID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	det, err := h.Slots.GetWithBooking(c.Request().Context(), slotID)
	if err != nil {
		return schedulingError(c, err)
	}
	if det.TeacherID != teacherID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, det)
}
