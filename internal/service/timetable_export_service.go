package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/acme/timetable-scheduler/internal/models"
	"github.com/acme/timetable-scheduler/internal/scheduler"
	appErrors "github.com/acme/timetable-scheduler/pkg/errors"
)

// TimetableExportService reconstructs a scheduler.Timetable from a stored
// semester schedule's slots and renders it through ExportService. It is
// the read-path counterpart to TimetableStore.Save: where that writes one
// SemesterScheduleSlot row per placed cell, this reassembles the grids a
// download needs from those same rows plus the department's current
// catalog (for the subject/teacher/room codes the formatter renders).
type TimetableExportService struct {
	semesters semesterScheduleRepository
	slots     semesterScheduleSlotRepository
	snapshots scheduler.Repository
	exporter  *ExportService
}

// NewTimetableExportService wires the export reconstruction path.
func NewTimetableExportService(
	semesters semesterScheduleRepository,
	slots semesterScheduleSlotRepository,
	snapshots scheduler.Repository,
	exporter *ExportService,
) *TimetableExportService {
	return &TimetableExportService{semesters: semesters, slots: slots, snapshots: snapshots, exporter: exporter}
}

// Export rebuilds the stored timetable for scheduleID and renders it as
// the requested format, returning a signed download link.
func (s *TimetableExportService) Export(ctx context.Context, scheduleID string, format ExportFormat) (*ExportResult, error) {
	schedule, err := s.semesters.FindByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester schedule")
	}

	slots, err := s.slots.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester schedule slots")
	}

	snapshot, err := s.snapshots.LoadSnapshot(ctx, scheduler.ID(schedule.DepartmentID))
	if err != nil {
		var schedErr *scheduler.Error
		if errors.As(err, &schedErr) && schedErr.Kind == scheduler.KindNotFound {
			return nil, appErrors.Clone(appErrors.ErrNotFound, schedErr.Message)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department catalog")
	}

	timetable := rebuildTimetable(*schedule, slots, *snapshot)

	result, err := s.exporter.Generate(ctx, timetable, format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable export")
	}
	return result, nil
}

func rebuildTimetable(schedule models.SemesterSchedule, slots []models.SemesterScheduleSlot, snapshot scheduler.Snapshot) scheduler.Timetable {
	shape := scheduler.DefaultShape()
	if snapshot.Department.Shape != nil {
		shape = *snapshot.Department.Shape
	}
	year := scheduler.Year(schedule.Year)

	main := scheduler.NewGrid(shape)
	batchGrids := make(map[scheduler.BatchTag]*scheduler.Grid)
	var batchOrder []scheduler.BatchTag
	seenBatch := make(map[scheduler.BatchTag]bool)

	for _, row := range slots {
		day := scheduler.Day(row.DayOfWeek)
		slot := findSlot(shape, row.TimeSlotStart)
		if slot == nil {
			continue
		}
		if row.Batch == "" {
			main.Set(day, *slot, scheduler.NewLecture(scheduler.ID(row.SubjectID), scheduler.ID(row.TeacherID), scheduler.ID(row.RoomID)))
			continue
		}
		batch := scheduler.BatchTag(row.Batch)
		grid, ok := batchGrids[batch]
		if !ok {
			grid = scheduler.NewGrid(shape)
			batchGrids[batch] = grid
		}
		if !seenBatch[batch] {
			seenBatch[batch] = true
			batchOrder = append(batchOrder, batch)
		}
		grid.Set(day, *slot, scheduler.NewPractical(scheduler.ID(row.SubjectID), scheduler.ID(row.TeacherID), scheduler.ID(row.RoomID), batch))
	}
	sort.Slice(batchOrder, func(i, j int) bool { return batchOrder[i] < batchOrder[j] })

	codes := scheduler.NewCodeIndex(snapshot)
	formatted := scheduler.Combine(shape, year, main, batchGrids, batchOrder, codes)

	return scheduler.Timetable{
		ID:           scheduler.ID(schedule.ID),
		DepartmentID: scheduler.ID(schedule.DepartmentID),
		AcademicYear: schedule.AcademicYear,
		Year:         year,
		Main:         main,
		Batches:      batchGrids,
		BatchOrder:   batchOrder,
		Formatted:    formatted,
		Codes:        codes,
		CreatedAt:    schedule.CreatedAt,
	}
}

func findSlot(shape scheduler.TimeTableShape, start string) *scheduler.TimeSlot {
	for i, slot := range shape.TimeSlots {
		if slot.Start == start {
			return &shape.TimeSlots[i]
		}
	}
	return nil
}
