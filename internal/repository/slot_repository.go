// Package repository contains data access logic for the scheduling
// domain.  This file implements persistence for available slots: the
// bookable time windows teachers publish.  All timestamp columns are
// DATETIME values stored in UTC; the driver scans them into time.Time
// (parseTime=true&loc=UTC) and every value read back is re-tagged UTC
// before leaving the repository.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sambali01/lessonlink/internal/model"
	"github.com/sambali01/lessonlink/internal/utils"
)

// SlotRepo manages persistence for available slots.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo constructs a SlotRepo with the given DB handle.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *SlotRepo) DB() *sql.DB { return r.db }

const slotCols = `id, teacher_id, start_time, end_time, created_at, updated_at`

func scanSlot(row interface {
	Scan(dest ...interface{}) error
}) (*model.AvailableSlot, error) {
	var s model.AvailableSlot
	if err := row.Scan(&s.ID, &s.TeacherID, &s.StartTime, &s.EndTime, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.StartTime = utils.ToUTC(s.StartTime)
	s.EndTime = utils.ToUTC(s.EndTime)
	return &s, nil
}

// CreateTx inserts a new slot within the scope of an existing
// transaction and populates the generated ID plus DB-default fields
// on the provided struct.  The caller must commit or roll back.
func (r *SlotRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.AvailableSlot) error {
	const q = `INSERT INTO available_slots (teacher_id, start_time, end_time) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, s.TeacherID, s.StartTime, s.EndTime)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT ` + slotCols + ` FROM available_slots WHERE id = ?`
	fresh, err := scanSlot(tx.QueryRowContext(ctx, sel, s.ID))
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

// GetByID retrieves a slot by its ID.  It returns ErrSlotNotFound
// when there is no matching row.
func (r *SlotRepo) GetByID(ctx context.Context, id uint64) (*model.AvailableSlot, error) {
	const q = `SELECT ` + slotCols + ` FROM available_slots WHERE id = ?`
	s, err := scanSlot(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetForUpdateTx loads a slot inside a transaction and takes a row
// lock on it.  Every mutation that depends on the slot's current
// booking state goes through this lock so two concurrent writers
// serialize on the row instead of racing between check and act.
func (r *SlotRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.AvailableSlot, error) {
	const q = `SELECT ` + slotCols + ` FROM available_slots WHERE id = ? FOR UPDATE`
	s, err := scanSlot(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return s, nil
}

// UpdateTx changes a slot's time range within a transaction.
func (r *SlotRepo) UpdateTx(ctx context.Context, tx *sql.Tx, s *model.AvailableSlot) error {
	const q = `UPDATE available_slots SET start_time = ?, end_time = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, s.StartTime, s.EndTime, s.ID)
	return err
}

// DeleteTx removes a slot row within a transaction.  Historical
// CANCELLED bookings referencing the slot are removed by the FK
// cascade.
func (r *SlotRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM available_slots WHERE id = ?`, id)
	return err
}

// HasOverlappingTx reports whether the teacher already has a slot
// whose half-open interval intersects [start, end).  The predicate
// mirrors utils.Overlaps: existing.start < end AND existing.end >
// start.  excludeID skips the slot being edited; pass 0 on create.
func (r *SlotRepo) HasOverlappingTx(ctx context.Context, tx *sql.Tx, teacherID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	const q = `SELECT EXISTS(
                 SELECT 1 FROM available_slots
                 WHERE teacher_id = ? AND id <> ?
                   AND start_time < ? AND end_time > ?)`
	var exists bool
	err := tx.QueryRowContext(ctx, q, teacherID, excludeID, end, start).Scan(&exists)
	return exists, err
}

// HasActiveBookingTx reports whether any non-CANCELLED booking
// references the slot.  Evaluated under the caller's transaction so
// the answer stays true until commit.
func (r *SlotRepo) HasActiveBookingTx(ctx context.Context, tx *sql.Tx, slotID uint64) (bool, error) {
	const q = `SELECT EXISTS(
                 SELECT 1 FROM bookings
                 WHERE available_slot_id = ? AND status <> 'CANCELLED')`
	var exists bool
	err := tx.QueryRowContext(ctx, q, slotID).Scan(&exists)
	return exists, err
}

// listPage runs a paginated slot query plus its COUNT twin and
// returns the page and the total row count.
func (r *SlotRepo) listPage(ctx context.Context, countQ, pageQ string, teacherID uint64, limit, offset int) ([]model.AvailableSlot, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, countQ, teacherID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, pageQ, teacherID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	slots := make([]model.AvailableSlot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, 0, err
		}
		slots = append(slots, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return slots, total, nil
}

// ListCurrentByTeacher returns the teacher's slots whose end time has
// not passed yet, ordered by start time ascending, plus the total
// count for pagination.
func (r *SlotRepo) ListCurrentByTeacher(ctx context.Context, teacherID uint64, limit, offset int) ([]model.AvailableSlot, int, error) {
	const countQ = `SELECT COUNT(*) FROM available_slots WHERE teacher_id = ? AND end_time >= UTC_TIMESTAMP()`
	const pageQ = `SELECT ` + slotCols + ` FROM available_slots
                   WHERE teacher_id = ? AND end_time >= UTC_TIMESTAMP()
                   ORDER BY start_time ASC LIMIT ? OFFSET ?`
	return r.listPage(ctx, countQ, pageQ, teacherID, limit, offset)
}

// ListPastByTeacher returns the teacher's slots whose end time has
// passed, newest first.
func (r *SlotRepo) ListPastByTeacher(ctx context.Context, teacherID uint64, limit, offset int) ([]model.AvailableSlot, int, error) {
	const countQ = `SELECT COUNT(*) FROM available_slots WHERE teacher_id = ? AND end_time < UTC_TIMESTAMP()`
	const pageQ = `SELECT ` + slotCols + ` FROM available_slots
                   WHERE teacher_id = ? AND end_time < UTC_TIMESTAMP()
                   ORDER BY start_time DESC LIMIT ? OFFSET ?`
	return r.listPage(ctx, countQ, pageQ, teacherID, limit, offset)
}

// ListFreeByTeacher returns a teacher's future slots that carry no
// active booking.  This feeds the public browse endpoint students use
// to pick a lesson time.
func (r *SlotRepo) ListFreeByTeacher(ctx context.Context, teacherID uint64, limit, offset int) ([]model.AvailableSlot, int, error) {
	const countQ = `SELECT COUNT(*) FROM available_slots s
                    WHERE s.teacher_id = ? AND s.start_time >= UTC_TIMESTAMP()
                      AND NOT EXISTS (SELECT 1 FROM bookings b
                                      WHERE b.available_slot_id = s.id AND b.status <> 'CANCELLED')`
	const pageQ = `SELECT s.id, s.teacher_id, s.start_time, s.end_time, s.created_at, s.updated_at
                   FROM available_slots s
                   WHERE s.teacher_id = ? AND s.start_time >= UTC_TIMESTAMP()
                     AND NOT EXISTS (SELECT 1 FROM bookings b
                                     WHERE b.available_slot_id = s.id AND b.status <> 'CANCELLED')
                   ORDER BY s.start_time ASC LIMIT ? OFFSET ?`
	return r.listPage(ctx, countQ, pageQ, teacherID, limit, offset)
}

// SlotDetail is a slot joined with its active booking (if any) and
// the booking student's display fields.  It is returned by the
// owner-only details endpoint.
type SlotDetail struct {
	ID        uint64    `json:"id"`
	TeacherID uint64    `json:"teacher_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Booking   *struct {
		ID          uint64    `json:"id"`
		Status      string    `json:"status"`
		CreatedAt   time.Time `json:"created_at"`
		StudentID   uint64    `json:"student_id"`
		StudentName string    `json:"student_name"`
	} `json:"booking,omitempty"`
}

// GetWithBooking loads a slot together with its active booking and
// student display data.  The Booking field stays nil for free slots.
// ErrSlotNotFound is returned when the id does not resolve.
func (r *SlotRepo) GetWithBooking(ctx context.Context, id uint64) (*SlotDetail, error) {
	const q = `SELECT s.id, s.teacher_id, s.start_time, s.end_time,
                      b.id, b.status, b.created_at, u.id, u.full_name
               FROM available_slots s
               LEFT JOIN bookings b ON b.available_slot_id = s.id AND b.status <> 'CANCELLED'
               LEFT JOIN users u ON u.id = b.student_id
               WHERE s.id = ?`
	var det SlotDetail
	var bID, sID sql.NullInt64
	var bStatus, sName sql.NullString
	var bCreated sql.NullTime
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&det.ID, &det.TeacherID, &det.StartTime, &det.EndTime,
		&bID, &bStatus, &bCreated, &sID, &sName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	det.StartTime = utils.ToUTC(det.StartTime)
	det.EndTime = utils.ToUTC(det.EndTime)
	if bID.Valid {
		det.Booking = &struct {
			ID          uint64    `json:"id"`
			Status      string    `json:"status"`
			CreatedAt   time.Time `json:"created_at"`
			StudentID   uint64    `json:"student_id"`
			StudentName string    `json:"student_name"`
		}{
			ID:          uint64(bID.Int64),
			Status:      bStatus.String,
			CreatedAt:   utils.ToUTC(bCreated.Time),
			StudentID:   uint64(sID.Int64),
			StudentName: sName.String,
		}
	}
	return &det, nil
}
