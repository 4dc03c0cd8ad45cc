package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/sambali01/lessonlink/internal/model"
	"github.com/sambali01/lessonlink/internal/queue"
	"github.com/sambali01/lessonlink/internal/repository"
	"github.com/sambali01/lessonlink/internal/utils"
)

// Scheduler orchestrates slot and booking mutations.  It holds no
// state of its own between requests; all durable state lives in the
// stores, and each operation runs its checks and writes inside a
// single transaction so a concurrent writer cannot slip between the
// check and the act.  Actor identity arrives as an explicit parameter
// on every method; the scheduler never reads it from ambient context,
// which keeps it independent of the transport layer and testable on
// its own.
type Scheduler struct {
	db       *sql.DB
	slots    *repository.SlotRepo
	bookings *repository.BookingRepo
}

// NewScheduler constructs a Scheduler.  All dependencies must be
// non-nil.
func NewScheduler(db *sql.DB, slots *repository.SlotRepo, bookings *repository.BookingRepo) *Scheduler {
	if db == nil || slots == nil || bookings == nil {
		panic("nil dependency passed to NewScheduler")
	}
	return &Scheduler{db: db, slots: slots, bookings: bookings}
}

// begin opens a transaction and returns it along with a rollback
// closure for the deferred-rollback-unless-committed pattern.
func (s *Scheduler) begin(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// CreateSlot publishes a new available slot for a teacher.  The range
// must be valid, future-dated and free of overlap with the teacher's
// existing slots.  The overlap check and the insert share one
// transaction.
func (s *Scheduler) CreateSlot(ctx context.Context, teacherID uint64, start, end time.Time) (*model.AvailableSlot, error) {
	start = utils.ToUTC(start)
	end = utils.ToUTC(end)
	if !start.Before(end) {
		return nil, ErrInvalidRange
	}
	if start.Before(time.Now().UTC()) {
		return nil, ErrPastTime
	}
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// Serialize with other slot writers for the same teacher: the
	// overlap check below is a snapshot read and the table has no
	// structural no-overlap constraint, so concurrent racers must
	// queue on the teacher's user row instead.
	if err := repository.LockUserTx(ctx, tx, teacherID); err != nil {
		return nil, err
	}
	overlap, err := s.slots.HasOverlappingTx(ctx, tx, teacherID, start, end, 0)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrSlotOverlap
	}
	slot := &model.AvailableSlot{TeacherID: teacherID, StartTime: start, EndTime: end}
	if err := s.slots.CreateTx(ctx, tx, slot); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return slot, nil
}

// UpdateSlot changes a slot's time range.  The same rules as creation
// apply (valid range, not in the past, no overlap excluding the slot
// itself), and a slot holding an active booking cannot be moved:
// that would silently reschedule a student's lesson.
func (s *Scheduler) UpdateSlot(ctx context.Context, teacherID, slotID uint64, start, end time.Time) (*model.AvailableSlot, error) {
	start = utils.ToUTC(start)
	end = utils.ToUTC(end)
	if !start.Before(end) {
		return nil, ErrInvalidRange
	}
	if start.Before(time.Now().UTC()) {
		return nil, ErrPastTime
	}
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// Same lock ordering as CreateSlot: teacher row first, so a
	// concurrent create and update cannot both pass the overlap
	// check against each other's uncommitted range.
	if err := repository.LockUserTx(ctx, tx, teacherID); err != nil {
		return nil, err
	}
	slot, err := s.slots.GetForUpdateTx(ctx, tx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.TeacherID != teacherID {
		return nil, repository.ErrForbidden
	}
	booked, err := s.slots.HasActiveBookingTx(ctx, tx, slotID)
	if err != nil {
		return nil, err
	}
	if booked {
		return nil, ErrSlotHasBooking
	}
	overlap, err := s.slots.HasOverlappingTx(ctx, tx, teacherID, start, end, slotID)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrSlotOverlap
	}
	slot.StartTime = start
	slot.EndTime = end
	if err := s.slots.UpdateTx(ctx, tx, slot); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return slot, nil
}

// DeleteSlot removes a slot owned by the teacher, refusing while any
// active booking references it.
func (s *Scheduler) DeleteSlot(ctx context.Context, teacherID, slotID uint64) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	slot, err := s.slots.GetForUpdateTx(ctx, tx, slotID)
	if err != nil {
		return err
	}
	if slot.TeacherID != teacherID {
		return repository.ErrForbidden
	}
	booked, err := s.slots.HasActiveBookingTx(ctx, tx, slotID)
	if err != nil {
		return err
	}
	if booked {
		return ErrSlotHasBooking
	}
	if err := s.slots.DeleteTx(ctx, tx, slotID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// CreateBooking reserves a slot for a student with status PENDING.
// The slot row is locked for the duration of the transaction, the
// bookable predicate is re-evaluated under that lock, and the unique
// index on active bookings backs the whole thing up: of two
// concurrent calls against the same slot exactly one commits.
func (s *Scheduler) CreateBooking(ctx context.Context, studentID, slotID uint64) (*model.Booking, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	slot, err := s.slots.GetForUpdateTx(ctx, tx, slotID)
	if err != nil {
		return nil, err
	}
	taken, err := s.slots.HasActiveBookingTx(ctx, tx, slotID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, repository.ErrSlotTaken
	}
	// The cross-slot guard reads bookings against other slots whose
	// rows this transaction does not lock.  Two concurrent bookings
	// by the same student against different overlapping slots would
	// each see a clash-free snapshot, so serialize them on the
	// student's user row.  Slot row first, student row second, in
	// every path, to keep the lock order acyclic.
	if err := repository.LockUserTx(ctx, tx, studentID); err != nil {
		return nil, err
	}
	clash, err := s.bookings.HasOverlappingActiveTx(ctx, tx, studentID, slot.StartTime, slot.EndTime)
	if err != nil {
		return nil, err
	}
	if clash {
		return nil, ErrOverlappingBooking
	}
	booking := &model.Booking{
		StudentID:       studentID,
		AvailableSlotID: slotID,
		Status:          model.BookingPending,
	}
	if err := s.bookings.CreateTx(ctx, tx, booking); err != nil {
		return nil, err // ErrSlotTaken when the unique guard fires
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	queue.PublishBookingEvent(ctx, queue.EventBookingCreated, booking, slot)
	return booking, nil
}

// DecideBooking lets the teacher who owns the referenced slot accept
// (CONFIRMED) or reject (CANCELLED) a booking.  Rejection keeps the
// row as an auditable CANCELLED record; the freed slot becomes
// bookable again through the active-booking predicate.  Lessons whose
// start time has passed can no longer be decided.
func (s *Scheduler) DecideBooking(ctx context.Context, teacherID, bookingID uint64, newStatus string) (*model.Booking, error) {
	if newStatus != model.BookingConfirmed && newStatus != model.BookingCancelled {
		return nil, ErrInvalidStatus
	}
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	booking, slot, err := s.bookings.GetWithSlotForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if slot.TeacherID != teacherID {
		return nil, repository.ErrForbidden
	}
	if !slot.StartTime.After(time.Now().UTC()) {
		return nil, ErrPastLesson
	}
	if !model.CanTransition(booking.Status, newStatus) {
		return nil, ErrInvalidStatus
	}
	if err := s.bookings.UpdateStatusTx(ctx, tx, bookingID, newStatus); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	booking.Status = newStatus
	event := queue.EventBookingConfirmed
	if newStatus == model.BookingCancelled {
		event = queue.EventBookingRejected
	}
	queue.PublishBookingEvent(ctx, event, booking, slot)
	return booking, nil
}

// CancelBooking removes a booking at the request of either party.
// Unlike a teacher's rejection this purges the row entirely.  The
// time gate applies uniformly: more than 24 hours before the slot
// starts, whoever asks.
func (s *Scheduler) CancelBooking(ctx context.Context, actorID, bookingID uint64) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	booking, slot, err := s.bookings.GetWithSlotForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return err
	}
	if actorID != booking.StudentID && actorID != slot.TeacherID {
		return repository.ErrForbidden
	}
	if !model.CanCancelAt(time.Now().UTC(), slot.StartTime) {
		return ErrCancelWindow
	}
	if err := s.bookings.DeleteTx(ctx, tx, bookingID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	queue.PublishBookingEvent(ctx, queue.EventBookingCancelled, booking, slot)
	return nil
}
