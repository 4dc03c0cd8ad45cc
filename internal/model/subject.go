package model

import "time"

// Subject is a topic a teacher offers lessons in.  Subjects are
// plain catalog data; they carry no scheduling invariants.
//
// Fields:
//
//	ID          – primary key identifier.
//	TeacherID   – teacher offering the subject.
//	Name        – subject name (e.g. "Algebra").
//	Description – optional free-form description.
//	CreatedAt   – creation timestamp.
type Subject struct {
	ID          uint64    // subjects.id
	TeacherID   uint64    // subjects.teacher_id
	Name        string    // subjects.name
	Description string    // subjects.description
	CreatedAt   time.Time // subjects.created_at
}
