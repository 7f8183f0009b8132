package dto

import "time"

// GenerateTimetableRequest asks the generator to build and persist a fresh
// set of timetables (one per SE/TE/BE year) for a department.
type GenerateTimetableRequest struct {
	DepartmentID string `json:"departmentId" validate:"required"`
	AcademicYear string `json:"academicYear" validate:"required"`
}

// TimeSlotResponse is one ordered column of a grid.
type TimeSlotResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CellResponse is the wire form of a scheduler.Cell: "empty"/"break" carry
// no other fields, "lecture"/"practical" carry the subject/teacher/room
// codes (not internal ids) plus, for practicals, the batch tag.
type CellResponse struct {
	Type        string `json:"type"`
	SubjectCode string `json:"subjectCode,omitempty"`
	TeacherCode string `json:"teacherCode,omitempty"`
	RoomNumber  string `json:"roomNumber,omitempty"`
	Batch       string `json:"batch,omitempty"`
}

// GridResponse is one cohort's grid: Main or a single batch.
type GridResponse struct {
	Days      []string                        `json:"days"`
	TimeSlots []TimeSlotResponse              `json:"timeSlots"`
	Cells     map[string]map[string]CellResponse `json:"cells"`
}

// WarningResponse reports unmet demand for a subject (and batch, for
// practicals) that the generator could not fully place.
type WarningResponse struct {
	Kind        string `json:"kind"`
	SubjectID   string `json:"subjectId"`
	SubjectCode string `json:"subjectCode"`
	Remaining   int    `json:"remaining"`
	Batch       string `json:"batch,omitempty"`
}

// TimetableResponse is the wire contract for one generated (department,
// year) timetable: grids.Main/B1..Bk, formatted, created_at, warnings.
type TimetableResponse struct {
	ID           string                         `json:"id"`
	DepartmentID string                         `json:"departmentId"`
	AcademicYear string                         `json:"academicYear"`
	Year         string                         `json:"year"`
	Grids        map[string]GridResponse        `json:"grids"`
	Formatted    map[string]map[string]string   `json:"formatted"`
	CreatedAt    time.Time                      `json:"createdAt"`
	Warnings     []WarningResponse              `json:"warnings"`
}

// SemesterScheduleQuery filters stored timetables by department/academic
// year/year tuple.
type SemesterScheduleQuery struct {
	DepartmentID string `form:"departmentId" json:"departmentId"`
	AcademicYear string `form:"academicYear" json:"academicYear"`
	Year         string `form:"year" json:"year"`
}

// ExportRequest asks for a timetable render in a downloadable format.
type ExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}
