// Package queue defines booking lifecycle messages exchanged over the
// message broker, plus the publisher and the background consumer.
package queue

// Event names carried in BookingEvent.Event.
const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingRejected  = "booking.rejected"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is published on every booking lifecycle change.  It
// carries enough information for downstream consumers to log or
// notify without querying the primary database.
type BookingEvent struct {
	Event      string `json:"event"`
	BookingID  uint64 `json:"booking_id"`
	SlotID     uint64 `json:"slot_id"`
	TeacherID  uint64 `json:"teacher_id"`
	StudentID  uint64 `json:"student_id"`
	StartsAt   string `json:"starts_at"`
	EndsAt     string `json:"ends_at"`
	Status     string `json:"status"`
	OccurredAt string `json:"occurred_at"`
}
