package model

import "time"

// AvailableSlot represents a bookable time window published by a
// teacher.  Slots are exclusively owned by their teacher; a booking
// references a slot but does not own it.  Start and end times are
// stored and compared in UTC and form a half-open interval
// [StartTime, EndTime).
//
// Invariants enforced by the scheduling service:
//   - StartTime < EndTime
//   - for a given teacher no two slots overlap
//   - a slot can only be created future-dated
//   - a slot with an active booking can be neither updated nor deleted
//
// Fields:
//
//	ID        – primary key identifier.
//	TeacherID – owning teacher.
//	StartTime – when the window opens (UTC).
//	EndTime   – when the window closes (UTC, exclusive).
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type AvailableSlot struct {
	ID        uint64    // available_slots.id
	TeacherID uint64    // available_slots.teacher_id
	StartTime time.Time // available_slots.start_time
	EndTime   time.Time // available_slots.end_time
	CreatedAt time.Time // available_slots.created_at
	UpdatedAt time.Time // available_slots.updated_at
}
