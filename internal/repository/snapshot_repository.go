package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/acme/timetable-scheduler/internal/models"
	"github.com/acme/timetable-scheduler/internal/scheduler"
)

// defaultShapeGroupLen matches DefaultShape()'s own maxGroupLen; no
// department-level override of the slot sequence itself exists yet, only
// of its breaks and working days.
const defaultShapeGroupLen = 4

// SnapshotRepository assembles a scheduler.Snapshot from the Postgres-backed
// department/subject/teacher/room catalogs. It is the production
// implementation of scheduler.Repository.
type SnapshotRepository struct {
	departments     *DepartmentRepository
	subjects        *SubjectRepository
	teachers        *TeacherRepository
	rooms           *RoomRepository
	teacherSubjects *TeacherSubjectRepository
}

// NewSnapshotRepository wires the catalog repositories used to build a snapshot.
func NewSnapshotRepository(
	departments *DepartmentRepository,
	subjects *SubjectRepository,
	teachers *TeacherRepository,
	rooms *RoomRepository,
	teacherSubjects *TeacherSubjectRepository,
) *SnapshotRepository {
	return &SnapshotRepository{
		departments:     departments,
		subjects:        subjects,
		teachers:        teachers,
		rooms:           rooms,
		teacherSubjects: teacherSubjects,
	}
}

// LoadSnapshot loads every entity generate needs for one department, across
// all three academic years, in a handful of flat queries.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context, departmentID scheduler.ID) (*scheduler.Snapshot, error) {
	department, err := r.departments.FindByID(ctx, string(departmentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduler.ErrNotFound(fmt.Sprintf("department %s not found", departmentID))
		}
		return nil, scheduler.ErrInternal("load department", err)
	}

	yearConfigs, err := r.departments.YearConfigs(ctx, department.ID)
	if err != nil {
		return nil, scheduler.ErrInternal("load department year configs", err)
	}
	breaks, err := r.departments.Breaks(ctx, department.ID)
	if err != nil {
		return nil, scheduler.ErrInternal("load department breaks", err)
	}

	var allSubjects []models.Subject
	for _, yc := range yearConfigs {
		subjects, err := r.subjects.ListByDepartmentYear(ctx, department.ID, yc.Year)
		if err != nil {
			return nil, scheduler.ErrInternal(fmt.Sprintf("load subjects for year %s", yc.Year), err)
		}
		allSubjects = append(allSubjects, subjects...)
	}

	teachers, err := r.teachers.ListActive(ctx)
	if err != nil {
		return nil, scheduler.ErrInternal("load active teachers", err)
	}

	rooms, err := r.rooms.ListAll(ctx)
	if err != nil {
		return nil, scheduler.ErrInternal("load rooms", err)
	}

	subjectIDs := make([]string, len(allSubjects))
	for i, s := range allSubjects {
		subjectIDs[i] = s.ID
	}
	eligibility, err := r.teacherSubjects.ListBySubjects(ctx, subjectIDs)
	if err != nil {
		return nil, scheduler.ErrInternal("load teacher subject eligibility", err)
	}
	allowedByTeacher := make(map[string]map[scheduler.ID]bool)
	for _, row := range eligibility {
		set, ok := allowedByTeacher[row.TeacherID]
		if !ok {
			set = make(map[scheduler.ID]bool)
			allowedByTeacher[row.TeacherID] = set
		}
		set[scheduler.ID(row.SubjectID)] = true
	}

	return &scheduler.Snapshot{
		Department: toDomainDepartment(*department, yearConfigs, breaks),
		Subjects:   toDomainSubjects(allSubjects),
		Teachers:   toDomainTeachers(teachers, allowedByTeacher),
		Rooms:      toDomainRooms(rooms),
	}, nil
}

func toDomainDepartment(d models.Department, years []models.DepartmentYear, breaks []models.DepartmentBreak) scheduler.Department {
	yearCfg := make(map[scheduler.Year]scheduler.YearConfig, len(years))
	for _, y := range years {
		yearCfg[scheduler.Year(y.Year)] = scheduler.YearConfig{NumBatches: y.NumBatches}
	}

	windows := make([]scheduler.BreakWindow, len(breaks))
	breakStarts := make([]string, len(breaks))
	for i, b := range breaks {
		windows[i] = scheduler.BreakWindow{Start: b.SlotStart, End: b.SlotEnd}
		breakStarts[i] = b.SlotStart
	}

	workingDays := parseWorkingDays(d.WorkingDays)

	dept := scheduler.Department{
		ID:          scheduler.ID(d.ID),
		Name:        d.Name,
		Years:       yearCfg,
		Breaks:      windows,
		WorkingDays: workingDays,
		BatchSize:   d.BatchSize,
	}

	// A department only needs a custom shape when it overrides the default
	// break set or working-day order; otherwise DefaultShape() (engine.go)
	// applies.
	if len(windows) > 0 || len(workingDays) > 0 {
		days := workingDays
		if len(days) == 0 {
			days = scheduler.DefaultDays
		}
		starts := breakStarts
		if len(starts) == 0 {
			starts = scheduler.DefaultBreaks()
		}
		shape := scheduler.NewTimeTableShape(days, scheduler.DefaultTimeSlots(), starts, defaultShapeGroupLen)
		dept.Shape = &shape
	}

	return dept
}

// parseWorkingDays decodes the comma-separated working_days column into
// ordered scheduler.Day values, skipping anything unrecognized. A nil or
// empty column means no override: DefaultDays applies.
func parseWorkingDays(raw *string) []scheduler.Day {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	valid := map[scheduler.Day]bool{
		scheduler.Monday: true, scheduler.Tuesday: true, scheduler.Wednesday: true,
		scheduler.Thursday: true, scheduler.Friday: true,
	}
	var days []scheduler.Day
	for _, part := range strings.Split(*raw, ",") {
		day := scheduler.Day(strings.ToUpper(strings.TrimSpace(part)))
		if valid[day] {
			days = append(days, day)
		}
	}
	return days
}

func toDomainSubjects(subjects []models.Subject) []scheduler.Subject {
	out := make([]scheduler.Subject, len(subjects))
	for i, s := range subjects {
		var preferredTeacher scheduler.ID
		if s.PreferredTeacherID != nil {
			preferredTeacher = scheduler.ID(*s.PreferredTeacherID)
		}
		out[i] = scheduler.Subject{
			ID:                 scheduler.ID(s.ID),
			Code:               s.Code,
			Name:               s.Name,
			DepartmentID:       scheduler.ID(s.DepartmentID),
			Year:               scheduler.Year(s.Year),
			Kind:               scheduler.SubjectKind(s.Kind),
			LecturesPerWeek:    s.LecturesPerWeek,
			PracticalsPerWeek:  s.PracticalsPerWeek,
			ConsecutiveSlots:   s.ConsecutiveSlots,
			PreferredTeacherID: preferredTeacher,
		}
	}
	return out
}

func toDomainTeachers(teachers []models.Teacher, allowedByTeacher map[string]map[scheduler.ID]bool) []scheduler.Teacher {
	out := make([]scheduler.Teacher, len(teachers))
	for i, t := range teachers {
		out[i] = scheduler.Teacher{
			ID:              scheduler.ID(t.ID),
			Code:            t.Code,
			Name:            t.FullName,
			AllowedSubjects: allowedByTeacher[t.ID],
			MaxWeeklyHours:  t.MaxWeeklyHours,
		}
	}
	return out
}

func toDomainRooms(rooms []models.Room) []scheduler.Room {
	out := make([]scheduler.Room, len(rooms))
	for i, r := range rooms {
		out[i] = scheduler.Room{
			ID:       scheduler.ID(r.ID),
			Number:   r.Number,
			Kind:     scheduler.RoomKind(r.Kind),
			Capacity: r.Capacity,
		}
	}
	return out
}
