package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/sambali01/lessonlink/internal/model"
	"github.com/sambali01/lessonlink/internal/utils"
)

// BookingRepo provides CRUD operations for bookings: student
// reservations against teachers' available slots.  The bookings table
// carries a generated active_slot_id column with a unique index so the
// database itself rejects a second non-terminal booking per slot; the
// repository maps that violation to ErrSlotTaken.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying sql.DB for cross-repository transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingCols = `id, student_id, available_slot_id, status, created_at, updated_at`

func scanBooking(row interface {
	Scan(dest ...interface{}) error
}) (*model.Booking, error) {
	var b model.Booking
	if err := row.Scan(&b.ID, &b.StudentID, &b.AvailableSlotID, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.CreatedAt = utils.ToUTC(b.CreatedAt)
	b.UpdatedAt = utils.ToUTC(b.UpdatedAt)
	return &b, nil
}

// CreateTx inserts a booking within the caller's transaction and
// populates the generated ID and timestamps.  A duplicate-key error
// on the active-booking unique index comes back as ErrSlotTaken: it
// means a concurrent transaction reserved the slot first.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (student_id, available_slot_id, status) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.StudentID, b.AvailableSlotID, b.Status)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrSlotTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const sel = `SELECT ` + bookingCols + ` FROM bookings WHERE id = ?`
	fresh, err := scanBooking(tx.QueryRowContext(ctx, sel, b.ID))
	if err != nil {
		return err
	}
	*b = *fresh
	return nil
}

// UpdateStatusTx changes a booking's status within a transaction.
// Lifecycle validation happens in the scheduling service; the store
// only persists the transition.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	const q = `UPDATE bookings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, id)
	return err
}

// DeleteTx removes a booking row within a transaction.  Party
// cancellation is modelled as row deletion, unlike a teacher's
// rejection which keeps an auditable CANCELLED row.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	return err
}

// GetByID retrieves a bare booking row.  ErrBookingNotFound is
// returned when the id does not resolve.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetWithSlotForUpdateTx loads a booking joined with its slot inside
// a transaction, locking the booking row.  Decide and cancel both go
// through here: the slot's teacher id and start time drive their
// ownership and time-gate checks.
func (r *BookingRepo) GetWithSlotForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, *model.AvailableSlot, error) {
	const q = `SELECT b.id, b.student_id, b.available_slot_id, b.status, b.created_at, b.updated_at,
                      s.id, s.teacher_id, s.start_time, s.end_time, s.created_at, s.updated_at
               FROM bookings b
               JOIN available_slots s ON s.id = b.available_slot_id
               WHERE b.id = ? FOR UPDATE`
	var b model.Booking
	var s model.AvailableSlot
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.StudentID, &b.AvailableSlotID, &b.Status, &b.CreatedAt, &b.UpdatedAt,
		&s.ID, &s.TeacherID, &s.StartTime, &s.EndTime, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrBookingNotFound
		}
		return nil, nil, err
	}
	s.StartTime = utils.ToUTC(s.StartTime)
	s.EndTime = utils.ToUTC(s.EndTime)
	b.CreatedAt = utils.ToUTC(b.CreatedAt)
	b.UpdatedAt = utils.ToUTC(b.UpdatedAt)
	return &b, &s, nil
}

// HasOverlappingActiveTx reports whether the student already holds an
// active booking whose slot intersects [start, end).  This is the
// cross-slot guard: one person cannot reserve two lessons for the
// same period, even with different teachers.
func (r *BookingRepo) HasOverlappingActiveTx(ctx context.Context, tx *sql.Tx, studentID uint64, start, end time.Time) (bool, error) {
	const q = `SELECT EXISTS(
                 SELECT 1 FROM bookings b
                 JOIN available_slots s ON s.id = b.available_slot_id
                 WHERE b.student_id = ? AND b.status <> 'CANCELLED'
                   AND s.start_time < ? AND s.end_time > ?)`
	var exists bool
	err := tx.QueryRowContext(ctx, q, studentID, end, start).Scan(&exists)
	return exists, err
}

// BookingDetail is a booking joined with its slot and the counterpart
// users' display fields.  It is the shape both parties see in lists
// and single reads.
type BookingDetail struct {
	ID        uint64    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Slot      struct {
		ID        uint64    `json:"id"`
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
	} `json:"slot"`
	TeacherID   uint64 `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	StudentID   uint64 `json:"student_id"`
	StudentName string `json:"student_name"`
}

const detailSelect = `SELECT b.id, b.status, b.created_at,
                             s.id, s.start_time, s.end_time,
                             t.id, t.full_name, u.id, u.full_name
                      FROM bookings b
                      JOIN available_slots s ON s.id = b.available_slot_id
                      JOIN users t ON t.id = s.teacher_id
                      JOIN users u ON u.id = b.student_id`

func scanDetail(row interface {
	Scan(dest ...interface{}) error
}) (*BookingDetail, error) {
	var d BookingDetail
	if err := row.Scan(
		&d.ID, &d.Status, &d.CreatedAt,
		&d.Slot.ID, &d.Slot.StartTime, &d.Slot.EndTime,
		&d.TeacherID, &d.TeacherName, &d.StudentID, &d.StudentName,
	); err != nil {
		return nil, err
	}
	d.CreatedAt = utils.ToUTC(d.CreatedAt)
	d.Slot.StartTime = utils.ToUTC(d.Slot.StartTime)
	d.Slot.EndTime = utils.ToUTC(d.Slot.EndTime)
	return &d, nil
}

// GetDetail returns a single booking joined with slot and both
// parties' display data.
func (r *BookingRepo) GetDetail(ctx context.Context, id uint64) (*BookingDetail, error) {
	d, err := scanDetail(r.db.QueryRowContext(ctx, detailSelect+` WHERE b.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *BookingRepo) listDetails(ctx context.Context, q string, id uint64) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// ListByStudent returns all bookings made by a student, newest first,
// joined with slot and teacher display data.
func (r *BookingRepo) ListByStudent(ctx context.Context, studentID uint64) ([]BookingDetail, error) {
	return r.listDetails(ctx, detailSelect+` WHERE b.student_id = ? ORDER BY b.created_at DESC`, studentID)
}

// ListByTeacher returns all bookings on a teacher's slots, newest
// first, joined with slot and student display data.
func (r *BookingRepo) ListByTeacher(ctx context.Context, teacherID uint64) ([]BookingDetail, error) {
	return r.listDetails(ctx, detailSelect+` WHERE s.teacher_id = ? ORDER BY b.created_at DESC`, teacherID)
}
