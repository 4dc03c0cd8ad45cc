package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sambali01/lessonlink/internal/model"
	"github.com/sambali01/lessonlink/internal/repository"
	"github.com/sambali01/lessonlink/internal/service"
)

// bookingResp is the wire shape of a bare booking row.
type bookingResp struct {
	ID              uint64    `json:"id"`
	StudentID       uint64    `json:"student_id"`
	AvailableSlotID uint64    `json:"available_slot_id"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toBookingResp(b *model.Booking) bookingResp {
	return bookingResp{
		ID:              b.ID,
		StudentID:       b.StudentID,
		AvailableSlotID: b.AvailableSlotID,
		Status:          b.Status,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// BookingHandler serves the booking lifecycle endpoints for both
// parties: students reserve and cancel, teachers decide and cancel.
type BookingHandler struct {
	Sched    *service.Scheduler
	Bookings *repository.BookingRepo
}

func NewBookingHandler(sched *service.Scheduler, bookings *repository.BookingRepo) *BookingHandler {
	if sched == nil || bookings == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Sched: sched, Bookings: bookings}
}

// Create handles POST /v1/bookings.  Students reserve a free slot;
// the new booking starts out PENDING.
func (h *BookingHandler) Create(c echo.Context) error {
	studentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req struct {
		AvailableSlotID uint64 `json:"available_slot_id"`
	}
	if err := c.Bind(&req); err != nil || req.AvailableSlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "available_slot_id required"})
	}
	booking, err := h.Sched.CreateBooking(c.Request().Context(), studentID, req.AvailableSlotID)
	if err != nil {
		return schedulingError(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingResp(booking))
}

// Decide handles PUT /v1/bookings/:id/status.  The slot's teacher
// confirms or rejects a pending booking.
func (h *BookingHandler) Decide(c echo.Context) error {
	teacherID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	booking, err := h.Sched.DecideBooking(c.Request().Context(), teacherID, bookingID, status)
	if err != nil {
		return schedulingError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(booking))
}

// Cancel handles DELETE /v1/bookings/:id.  Either party may cancel a
// booking more than 24 hours before the lesson starts; the row is
// removed entirely.
func (h *BookingHandler) Cancel(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if err := h.Sched.CancelBooking(c.Request().Context(), actorID, bookingID); err != nil {
		return schedulingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /v1/bookings/:id, visible to the two parties only.
func (h *BookingHandler) Get(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	det, err := h.Bookings.GetDetail(c.Request().Context(), bookingID)
	if err != nil {
		return schedulingError(c, err)
	}
	if actorID != det.StudentID && actorID != det.TeacherID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": det})
}

// ListMine handles GET /v1/my-bookings for students.
func (h *BookingHandler) ListMine(c echo.Context) error {
	studentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByStudent(c.Request().Context(), studentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListRequests handles GET /v1/booking-requests for teachers: every
// booking made against their slots, newest first.
func (h *BookingHandler) ListRequests(c echo.Context) error {
	teacherID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByTeacher(c.Request().Context(), teacherID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
