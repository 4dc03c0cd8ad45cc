package model

import "time"

// Booking status values.  PENDING and CONFIRMED are "active": a slot
// may carry at most one active booking at any time.  CANCELLED is
// terminal; a slot may accumulate any number of historical CANCELLED
// rows.
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// CancelWindow is the minimum lead time before a slot's start
// required to cancel a booking on it.  It applies to both the
// student and the teacher.
const CancelWindow = 24 * time.Hour

// Booking records a student's reservation against a teacher's
// available slot.  StudentID and AvailableSlotID are immutable after
// creation; only Status changes, and only along the lifecycle below.
//
// Fields:
//
//	ID              – primary key identifier.
//	StudentID       – student who made the booking.
//	AvailableSlotID – slot being reserved.
//	Status          – PENDING, CONFIRMED or CANCELLED.
//	CreatedAt       – creation timestamp (immutable).
//	UpdatedAt       – last status change.
type Booking struct {
	ID              uint64    // bookings.id
	StudentID       uint64    // bookings.student_id
	AvailableSlotID uint64    // bookings.available_slot_id
	Status          string    // bookings.status
	CreatedAt       time.Time // bookings.created_at
	UpdatedAt       time.Time // bookings.updated_at
}

// IsActive reports whether a status counts against the
// one-active-booking-per-slot invariant.
func IsActive(status string) bool {
	return status == BookingPending || status == BookingConfirmed
}

// CanTransition reports whether a booking may move from one status
// to another.  Allowed paths: PENDING -> CONFIRMED, PENDING ->
// CANCELLED and CONFIRMED -> CANCELLED.  CANCELLED is terminal and
// there is no path back to PENDING.
func CanTransition(from, to string) bool {
	switch from {
	case BookingPending:
		return to == BookingConfirmed || to == BookingCancelled
	case BookingConfirmed:
		return to == BookingCancelled
	}
	return false
}

// CanCancelAt reports whether a booking on a slot starting at
// slotStart may still be cancelled at the given instant.  Both
// times must be UTC.  The cut-off is strict: exactly 24h of lead
// time is already too late.
func CanCancelAt(now, slotStart time.Time) bool {
	return slotStart.Sub(now) > CancelWindow
}
