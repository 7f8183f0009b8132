package models

import "time"

// SubjectKind distinguishes lecture-only from practical-only subjects.
type SubjectKind string

const (
	SubjectKindLecture   SubjectKind = "LECTURE"
	SubjectKindPractical SubjectKind = "PRACTICAL"
)

// Subject is an academic-year catalog entry scheduled by the timetable
// generator.
type Subject struct {
	ID                 string      `db:"id" json:"id"`
	Code               string      `db:"code" json:"code"`
	Name               string      `db:"name" json:"name"`
	DepartmentID       string      `db:"department_id" json:"department_id"`
	Year               string      `db:"year" json:"year"`
	Kind               SubjectKind `db:"kind" json:"kind"`
	LecturesPerWeek    int         `db:"lectures_per_week" json:"lectures_per_week"`
	PracticalsPerWeek  int         `db:"practicals_per_week" json:"practicals_per_week"`
	ConsecutiveSlots   int         `db:"consecutive_slots" json:"consecutive_slots"`
	Priority           int         `db:"priority" json:"priority"`
	PreferredTeacherID *string     `db:"preferred_teacher_id" json:"preferred_teacher_id,omitempty"`
	CreatedAt          time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	DepartmentID string
	Year         string
	Kind         SubjectKind
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
