package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// SemesterScheduleStatus represents lifecycle phases for a generated timetable.
type SemesterScheduleStatus string

const (
	SemesterScheduleStatusDraft     SemesterScheduleStatus = "DRAFT"
	SemesterScheduleStatusPublished SemesterScheduleStatus = "PUBLISHED"
	SemesterScheduleStatusArchived  SemesterScheduleStatus = "ARCHIVED"
)

// SemesterSchedule captures a versioned timetable for one (department,
// academic year, SE/TE/BE year) tuple. Version increments every time the
// department's timetable is regenerated, mirroring how a repeated generate
// call for the same class/term pair used to fork a new draft.
type SemesterSchedule struct {
	ID           string                 `db:"id" json:"id"`
	DepartmentID string                 `db:"department_id" json:"department_id"`
	AcademicYear string                 `db:"academic_year" json:"academic_year"`
	Year         string                 `db:"year" json:"year"`
	Version      int                    `db:"version" json:"version"`
	Status       SemesterScheduleStatus `db:"status" json:"status"`
	Meta         types.JSONText         `db:"meta" json:"meta"`
	CreatedAt    time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time              `db:"updated_at" json:"updated_at"`
}

// SemesterScheduleSlot is one placed cell inside a semester schedule. An
// empty Batch means the slot belongs to the year's shared Main grid;
// otherwise it belongs to the named batch's practical grid.
type SemesterScheduleSlot struct {
	ID                 string    `db:"id" json:"id"`
	SemesterScheduleID string    `db:"semester_schedule_id" json:"semester_schedule_id"`
	DayOfWeek          string    `db:"day_of_week" json:"day_of_week"`
	TimeSlotStart      string    `db:"time_slot_start" json:"time_slot_start"`
	Batch              string    `db:"batch" json:"batch,omitempty"`
	SubjectID          string    `db:"subject_id" json:"subject_id"`
	TeacherID          string    `db:"teacher_id" json:"teacher_id"`
	RoomID             string    `db:"room_id" json:"room_id"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}
