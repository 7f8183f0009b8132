package models

import "time"

// Department is the tenant a timetable is generated for.
type Department struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	BatchSize   int       `db:"batch_size" json:"batch_size"`
	WorkingDays *string   `db:"working_days" json:"working_days,omitempty"` // comma-separated MON..FRI day codes, nil: every weekday
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DepartmentFilter captures supported filters for listing departments.
type DepartmentFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// DepartmentYear configures how many practical batches a department runs
// for one academic year (SE/TE/BE).
type DepartmentYear struct {
	DepartmentID string `db:"department_id" json:"department_id"`
	Year         string `db:"year" json:"year"`
	NumBatches   int    `db:"num_batches" json:"num_batches"`
}

// DepartmentBreak names a fixed break window shared by every grid a
// department generates.
type DepartmentBreak struct {
	DepartmentID string `db:"department_id" json:"department_id"`
	SlotStart    string `db:"slot_start" json:"slot_start"`
	SlotEnd      string `db:"slot_end" json:"slot_end"`
}
