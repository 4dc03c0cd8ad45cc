package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/sambali01/lessonlink/internal/database"
	"github.com/sambali01/lessonlink/internal/model"
	"github.com/sambali01/lessonlink/internal/repository"
)

// dryScheduler returns a Scheduler over an unopened connection handle.
// Only the checks that run before BeginTx may be exercised with it.
func dryScheduler(t *testing.T) *Scheduler {
	t.Helper()
	db, err := sql.Open("mysql", "test@tcp(127.0.0.1:3306)/test")
	if err != nil {
		t.Fatalf("open handle: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewScheduler(db, repository.NewSlotRepo(db), repository.NewBookingRepo(db))
}

func TestCreateSlotRejectsInvalidRange(t *testing.T) {
	s := dryScheduler(t)
	start := time.Now().UTC().Add(48 * time.Hour)

	if _, err := s.CreateSlot(context.Background(), 1, start, start); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("equal start/end: got %v, want ErrInvalidRange", err)
	}
	if _, err := s.CreateSlot(context.Background(), 1, start, start.Add(-time.Hour)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("end before start: got %v, want ErrInvalidRange", err)
	}
}

func TestCreateSlotRejectsPastStart(t *testing.T) {
	s := dryScheduler(t)
	start := time.Now().UTC().Add(-time.Minute)

	// A past start fails regardless of how far out the end is.
	if _, err := s.CreateSlot(context.Background(), 1, start, start.Add(24*time.Hour)); !errors.Is(err, ErrPastTime) {
		t.Fatalf("got %v, want ErrPastTime", err)
	}
}

func TestDecideBookingRejectsUnknownStatus(t *testing.T) {
	s := dryScheduler(t)
	for _, status := range []string{"PENDING", "DONE", "confirmed", ""} {
		if _, err := s.DecideBooking(context.Background(), 1, 1, status); !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("status %q: got %v, want ErrInvalidStatus", status, err)
		}
	}
}

// testDB opens the database named by the DB_* environment variables.
// Integration tests skip when the environment is not configured.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	host := os.Getenv("DB_HOST")
	name := os.Getenv("DB_NAME")
	if host == "" || name == "" {
		t.Skip("DB_HOST/DB_NAME not set, skipping database integration test")
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "3306"
	}
	db, err := database.Open(os.Getenv("DB_USER"), os.Getenv("DB_PASS"), host, port, name)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestUser inserts a user row and registers cascade cleanup.
func newTestUser(t *testing.T, db *sql.DB, role string) uint64 {
	t.Helper()
	email := fmt.Sprintf("svc_%s_%d@test.local", role, time.Now().UnixNano())
	res, err := db.Exec(
		"INSERT INTO users (email, password_hash, full_name, role) VALUES (?,?,?,?)",
		email, "x", "Test "+role, role)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	id, _ := res.LastInsertId()
	t.Cleanup(func() {
		_, _ = db.Exec("DELETE FROM users WHERE id = ?", id)
	})
	return uint64(id)
}

func newLiveScheduler(db *sql.DB) *Scheduler {
	return NewScheduler(db, repository.NewSlotRepo(db), repository.NewBookingRepo(db))
}

func TestSlotOverlapRules(t *testing.T) {
	db := testDB(t)
	s := newLiveScheduler(db)
	ctx := context.Background()
	teacher := newTestUser(t, db, "TEACHER")

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	end := start.Add(time.Hour)

	slot, err := s.CreateSlot(ctx, teacher, start, end)
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}

	// Identical range collides.
	if _, err := s.CreateSlot(ctx, teacher, start, end); !errors.Is(err, ErrSlotOverlap) {
		t.Fatalf("identical range: got %v, want ErrSlotOverlap", err)
	}
	// Fully contained range collides.
	if _, err := s.CreateSlot(ctx, teacher, start.Add(15*time.Minute), end.Add(-15*time.Minute)); !errors.Is(err, ErrSlotOverlap) {
		t.Fatalf("contained range: got %v, want ErrSlotOverlap", err)
	}
	// Back-to-back is allowed under half-open semantics.
	next, err := s.CreateSlot(ctx, teacher, end, end.Add(time.Hour))
	if err != nil {
		t.Fatalf("adjacent slot: %v", err)
	}
	// Moving the second slot onto the first collides; the slot being
	// edited is excluded from its own overlap check.
	if _, err := s.UpdateSlot(ctx, teacher, next.ID, start.Add(30*time.Minute), end.Add(30*time.Minute)); !errors.Is(err, ErrSlotOverlap) {
		t.Fatalf("update onto neighbour: got %v, want ErrSlotOverlap", err)
	}
	if _, err := s.UpdateSlot(ctx, teacher, next.ID, end.Add(time.Hour), end.Add(2*time.Hour)); err != nil {
		t.Fatalf("update to free range: %v", err)
	}

	// A different teacher cannot touch the slot.
	other := newTestUser(t, db, "TEACHER")
	if err := s.DeleteSlot(ctx, other, slot.ID); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("foreign delete: got %v, want ErrForbidden", err)
	}
	if err := s.DeleteSlot(ctx, teacher, slot.ID); err != nil {
		t.Fatalf("delete slot: %v", err)
	}
	if err := s.DeleteSlot(ctx, teacher, slot.ID); !errors.Is(err, repository.ErrSlotNotFound) {
		t.Fatalf("second delete: got %v, want ErrSlotNotFound", err)
	}
}

func TestBookingLifecycle(t *testing.T) {
	db := testDB(t)
	s := newLiveScheduler(db)
	ctx := context.Background()
	teacher := newTestUser(t, db, "TEACHER")
	student := newTestUser(t, db, "STUDENT")
	rival := newTestUser(t, db, "STUDENT")

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	slot, err := s.CreateSlot(ctx, teacher, start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}

	booking, err := s.CreateBooking(ctx, student, slot.ID)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if booking.Status != model.BookingPending {
		t.Fatalf("new booking status = %q, want PENDING", booking.Status)
	}

	// The slot is no longer bookable.
	if _, err := s.CreateBooking(ctx, rival, slot.ID); !errors.Is(err, repository.ErrSlotTaken) {
		t.Fatalf("second booking: got %v, want ErrSlotTaken", err)
	}

	// The student cannot hold a second lesson in the same period,
	// even with another teacher.
	teacher2 := newTestUser(t, db, "TEACHER")
	clashing, err := s.CreateSlot(ctx, teacher2, start.Add(30*time.Minute), start.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("create clashing slot: %v", err)
	}
	if _, err := s.CreateBooking(ctx, student, clashing.ID); !errors.Is(err, ErrOverlappingBooking) {
		t.Fatalf("cross-slot booking: got %v, want ErrOverlappingBooking", err)
	}

	// Only the slot's teacher may decide.
	if _, err := s.DecideBooking(ctx, teacher2, booking.ID, model.BookingConfirmed); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("foreign decide: got %v, want ErrForbidden", err)
	}
	confirmed, err := s.DecideBooking(ctx, teacher, booking.ID, model.BookingConfirmed)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != model.BookingConfirmed {
		t.Fatalf("status after confirm = %q", confirmed.Status)
	}

	// The booked slot can be neither deleted nor moved.
	if err := s.DeleteSlot(ctx, teacher, slot.ID); !errors.Is(err, ErrSlotHasBooking) {
		t.Fatalf("delete booked slot: got %v, want ErrSlotHasBooking", err)
	}
	if _, err := s.UpdateSlot(ctx, teacher, slot.ID, start.Add(2*time.Hour), start.Add(3*time.Hour)); !errors.Is(err, ErrSlotHasBooking) {
		t.Fatalf("move booked slot: got %v, want ErrSlotHasBooking", err)
	}

	// 48 hours of lead time is outside the cancellation window, so the
	// student may cancel; the row is removed and the slot frees up.
	if err := s.CancelBooking(ctx, rival, booking.ID); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("third-party cancel: got %v, want ErrForbidden", err)
	}
	if err := s.CancelBooking(ctx, student, booking.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := s.CancelBooking(ctx, student, booking.ID); !errors.Is(err, repository.ErrBookingNotFound) {
		t.Fatalf("cancel twice: got %v, want ErrBookingNotFound", err)
	}
	if err := s.DeleteSlot(ctx, teacher, slot.ID); err != nil {
		t.Fatalf("delete freed slot: %v", err)
	}
}

func TestRejectedBookingFreesSlot(t *testing.T) {
	db := testDB(t)
	s := newLiveScheduler(db)
	ctx := context.Background()
	teacher := newTestUser(t, db, "TEACHER")
	student := newTestUser(t, db, "STUDENT")
	rival := newTestUser(t, db, "STUDENT")

	start := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)
	slot, err := s.CreateSlot(ctx, teacher, start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}
	booking, err := s.CreateBooking(ctx, student, slot.ID)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	// Rejection keeps the CANCELLED row but releases the slot.
	rejected, err := s.DecideBooking(ctx, teacher, booking.ID, model.BookingCancelled)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != model.BookingCancelled {
		t.Fatalf("status after reject = %q", rejected.Status)
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM bookings WHERE id = ?", booking.ID).Scan(&count); err != nil || count != 1 {
		t.Fatalf("cancelled row kept: count=%d err=%v", count, err)
	}

	// A cancelled booking is terminal.
	if _, err := s.DecideBooking(ctx, teacher, booking.ID, model.BookingConfirmed); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("revive cancelled: got %v, want ErrInvalidStatus", err)
	}

	// The freed slot takes a new booking.
	if _, err := s.CreateBooking(ctx, rival, slot.ID); err != nil {
		t.Fatalf("rebook freed slot: %v", err)
	}
}

func TestCancelWindow(t *testing.T) {
	db := testDB(t)
	s := newLiveScheduler(db)
	ctx := context.Background()
	teacher := newTestUser(t, db, "TEACHER")
	student := newTestUser(t, db, "STUDENT")

	// A lesson 23 hours out is inside the 24h window.
	start := time.Now().UTC().Add(23 * time.Hour).Truncate(time.Second)
	slot, err := s.CreateSlot(ctx, teacher, start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}
	booking, err := s.CreateBooking(ctx, student, slot.ID)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if err := s.CancelBooking(ctx, student, booking.ID); !errors.Is(err, ErrCancelWindow) {
		t.Fatalf("student cancel at 23h: got %v, want ErrCancelWindow", err)
	}
	// The gate applies to the teacher too.
	if err := s.CancelBooking(ctx, teacher, booking.ID); !errors.Is(err, ErrCancelWindow) {
		t.Fatalf("teacher cancel at 23h: got %v, want ErrCancelWindow", err)
	}
}

func TestDecidePastLesson(t *testing.T) {
	db := testDB(t)
	s := newLiveScheduler(db)
	ctx := context.Background()
	teacher := newTestUser(t, db, "TEACHER")
	student := newTestUser(t, db, "STUDENT")

	// The service refuses to create past slots, so seed one directly.
	start := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Second)
	res, err := db.Exec(
		"INSERT INTO available_slots (teacher_id, start_time, end_time) VALUES (?,?,?)",
		teacher, start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("seed slot: %v", err)
	}
	slotID, _ := res.LastInsertId()
	res, err = db.Exec(
		"INSERT INTO bookings (student_id, available_slot_id, status) VALUES (?,?, 'PENDING')",
		student, slotID)
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	bookingID, _ := res.LastInsertId()

	if _, err := s.DecideBooking(ctx, teacher, uint64(bookingID), model.BookingConfirmed); !errors.Is(err, ErrPastLesson) {
		t.Fatalf("decide past lesson: got %v, want ErrPastLesson", err)
	}
}

// TestConcurrentBookingRace drives many students at one free slot
// simultaneously; exactly one booking must win.
func TestConcurrentBookingRace(t *testing.T) {
	db := testDB(t)
	s := newLiveScheduler(db)
	ctx := context.Background()
	teacher := newTestUser(t, db, "TEACHER")

	const contenders = 8
	students := make([]uint64, contenders)
	for i := range students {
		students[i] = newTestUser(t, db, "STUDENT")
	}

	start := time.Now().UTC().Add(96 * time.Hour).Truncate(time.Second)
	slot, err := s.CreateSlot(ctx, teacher, start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	wg.Add(contenders)
	for i := 0; i < contenders; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.CreateBooking(ctx, students[i], slot.ID)
		}(i)
	}
	wg.Wait()

	won := 0
	for i, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, repository.ErrSlotTaken):
			// expected loser
		default:
			t.Errorf("contender %d: unexpected error %v", i, err)
		}
	}
	if won != 1 {
		t.Fatalf("winners = %d, want exactly 1", won)
	}
}

// Concurrent creates of intersecting ranges for one teacher must
// serialize on the teacher's user row; without that lock both
// snapshot reads pass the overlap check and both inserts commit.
func TestConcurrentSlotCreateRace(t *testing.T) {
	db := testDB(t)
	s := newLiveScheduler(db)
	ctx := context.Background()
	teacher := newTestUser(t, db, "TEACHER")

	const contenders = 8
	base := time.Now().UTC().Add(120 * time.Hour).Truncate(time.Second)

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	wg.Add(contenders)
	for i := 0; i < contenders; i++ {
		go func(i int) {
			defer wg.Done()
			// Every range intersects every other: shifted starts,
			// shared middle hour.
			start := base.Add(time.Duration(i) * 10 * time.Minute)
			_, errs[i] = s.CreateSlot(ctx, teacher, start, start.Add(2*time.Hour))
		}(i)
	}
	wg.Wait()

	won := 0
	for i, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrSlotOverlap):
			// expected loser
		default:
			t.Errorf("contender %d: unexpected error %v", i, err)
		}
	}
	if won != 1 {
		t.Fatalf("winners = %d, want exactly 1", won)
	}

	var count int
	if err := db.QueryRow(
		`SELECT COUNT(*) FROM available_slots WHERE teacher_id = ?`, teacher,
	).Scan(&count); err != nil {
		t.Fatalf("count slots: %v", err)
	}
	if count != 1 {
		t.Fatalf("committed slots = %d, want 1", count)
	}
}

// One student booking two different teachers' slots for the same hour
// at the same moment: the per-slot unique index cannot catch this, so
// the student-row lock has to.
func TestConcurrentCrossSlotBookingRace(t *testing.T) {
	db := testDB(t)
	s := newLiveScheduler(db)
	ctx := context.Background()
	student := newTestUser(t, db, "STUDENT")

	const contenders = 4
	start := time.Now().UTC().Add(144 * time.Hour).Truncate(time.Second)
	slotIDs := make([]uint64, contenders)
	for i := range slotIDs {
		teacher := newTestUser(t, db, "TEACHER")
		slot, err := s.CreateSlot(ctx, teacher, start, start.Add(time.Hour))
		if err != nil {
			t.Fatalf("create slot %d: %v", i, err)
		}
		slotIDs[i] = slot.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	wg.Add(contenders)
	for i := 0; i < contenders; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.CreateBooking(ctx, student, slotIDs[i])
		}(i)
	}
	wg.Wait()

	won := 0
	for i, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrOverlappingBooking):
			// expected loser
		default:
			t.Errorf("contender %d: unexpected error %v", i, err)
		}
	}
	if won != 1 {
		t.Fatalf("winners = %d, want exactly 1", won)
	}

	var count int
	if err := db.QueryRow(
		`SELECT COUNT(*) FROM bookings WHERE student_id = ? AND status <> 'CANCELLED'`, student,
	).Scan(&count); err != nil {
		t.Fatalf("count bookings: %v", err)
	}
	if count != 1 {
		t.Fatalf("committed bookings = %d, want 1", count)
	}
}
