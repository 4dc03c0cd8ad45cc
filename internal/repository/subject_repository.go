package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sambali01/lessonlink/internal/model"
)

// SubjectRepo manages the subject catalog.  Subjects are plain CRUD
// data owned by teachers; no scheduling invariants apply.
type SubjectRepo struct {
	db *sql.DB
}

func NewSubjectRepo(db *sql.DB) *SubjectRepo { return &SubjectRepo{db: db} }

// Create inserts a subject and assigns the generated ID.
func (r *SubjectRepo) Create(ctx context.Context, s *model.Subject) error {
	const q = `INSERT INTO subjects (teacher_id, name, description) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.TeacherID, s.Name, s.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM subjects WHERE id = ?`, s.ID).Scan(&s.CreatedAt)
}

// ListByTeacher returns a teacher's subjects ordered by name.
func (r *SubjectRepo) ListByTeacher(ctx context.Context, teacherID uint64) ([]model.Subject, error) {
	const q = `SELECT id, teacher_id, name, description, created_at FROM subjects WHERE teacher_id = ? ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	subjects := make([]model.Subject, 0)
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.TeacherID, &s.Name, &s.Description, &s.CreatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// DeleteByIDAndTeacher removes a subject if it belongs to the caller.
// ErrSubjectNotFound when the id does not resolve, ErrForbidden when
// it belongs to another teacher.
func (r *SubjectRepo) DeleteByIDAndTeacher(ctx context.Context, id, teacherID uint64) error {
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, `SELECT teacher_id FROM subjects WHERE id = ?`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSubjectNotFound
		}
		return err
	}
	if ownerID != teacherID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = ?`, id)
	return err
}

// TeacherSummary is a directory entry returned by the public teacher
// search: the teacher plus the subjects they offer.
type TeacherSummary struct {
	ID       uint64   `json:"id"`
	FullName string   `json:"full_name"`
	Subjects []string `json:"subjects"`
}

// SearchTeachers returns a page of active teachers, optionally
// filtered by a subject name fragment, ordered by name.  The second
// return value is the total count for pagination.
func (r *SubjectRepo) SearchTeachers(ctx context.Context, subject string, limit, offset int) ([]TeacherSummary, int, error) {
	where := `FROM users u WHERE u.role = 'TEACHER' AND u.is_active = 1`
	args := []interface{}{}
	if subject != "" {
		where += ` AND EXISTS (SELECT 1 FROM subjects sub WHERE sub.teacher_id = u.id AND sub.name LIKE ?)`
		args = append(args, "%"+subject+"%")
	}
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	pageArgs := append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, `SELECT u.id, u.full_name `+where+` ORDER BY u.full_name ASC LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	teachers := make([]TeacherSummary, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var t TeacherSummary
		if err := rows.Scan(&t.ID, &t.FullName); err != nil {
			return nil, 0, err
		}
		t.Subjects = []string{}
		index[t.ID] = len(teachers)
		teachers = append(teachers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(teachers) == 0 {
		return teachers, total, nil
	}
	// Populate subject names for the page in a second query.
	ids := make([]interface{}, 0, len(teachers))
	ph := ""
	for i, t := range teachers {
		if i > 0 {
			ph += ","
		}
		ph += "?"
		ids = append(ids, t.ID)
	}
	srows, err := r.db.QueryContext(ctx,
		`SELECT teacher_id, name FROM subjects WHERE teacher_id IN (`+ph+`) ORDER BY name ASC`, ids...)
	if err != nil {
		return nil, 0, err
	}
	defer srows.Close()
	for srows.Next() {
		var tid uint64
		var name string
		if err := srows.Scan(&tid, &name); err != nil {
			return nil, 0, err
		}
		if idx, ok := index[tid]; ok {
			teachers[idx].Subjects = append(teachers[idx].Subjects, name)
		}
	}
	return teachers, total, srows.Err()
}
