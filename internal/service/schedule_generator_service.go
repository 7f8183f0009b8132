package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acme/timetable-scheduler/internal/dto"
	"github.com/acme/timetable-scheduler/internal/models"
	"github.com/acme/timetable-scheduler/internal/scheduler"
	appErrors "github.com/acme/timetable-scheduler/pkg/errors"
)

type semesterScheduleRepository interface {
	ListByDepartmentYear(ctx context.Context, departmentID, academicYear, year string) ([]models.SemesterSchedule, error)
	FindByID(ctx context.Context, id string) (*models.SemesterSchedule, error)
	Delete(ctx context.Context, id string) error
}

type semesterScheduleSlotRepository interface {
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.SemesterScheduleSlot, error)
}

// ScheduleGeneratorService orchestrates internal/scheduler.Generate: it
// loads a snapshot through the Repository port (Redis read-through cache
// in front of Postgres), runs the constraint solver, and persists results
// through the TimetableStore port. List/Slots/Delete read back what the
// store already wrote.
type ScheduleGeneratorService struct {
	repo      scheduler.Repository
	store     scheduler.TimetableStore
	clock     scheduler.Clock
	semesters semesterScheduleRepository
	slots     semesterScheduleSlotRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleGeneratorService wires the generator's dependencies.
func NewScheduleGeneratorService(
	repo scheduler.Repository,
	store scheduler.TimetableStore,
	clock scheduler.Clock,
	semesters semesterScheduleRepository,
	slots semesterScheduleSlotRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *ScheduleGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = scheduler.SystemClock{}
	}
	return &ScheduleGeneratorService{
		repo:      repo,
		store:     store,
		clock:     clock,
		semesters: semesters,
		slots:     slots,
		validator: validate,
		logger:    logger,
	}
}

// Generate runs the constraint solver for one department/academic year and
// persists one timetable per SE/TE/BE year. A request that fails
// validation returns an *appErrors.Error; errors from the solver are
// returned as *scheduler.Error, whose Kind the HTTP boundary maps to a
// status code.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) ([]dto.TimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}

	timetables, err := scheduler.Generate(ctx, s.repo, s.store, s.clock, scheduler.ID(req.DepartmentID), req.AcademicYear)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.TimetableResponse, len(timetables))
	for i, tt := range timetables {
		resp[i] = toTimetableResponse(tt)
	}
	return resp, nil
}

// List returns stored versions for a department/academic-year/year tuple.
func (s *ScheduleGeneratorService) List(ctx context.Context, query dto.SemesterScheduleQuery) ([]models.SemesterSchedule, error) {
	if query.DepartmentID == "" || query.AcademicYear == "" || query.Year == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "departmentId, academicYear and year are required")
	}
	list, err := s.semesters.ListByDepartmentYear(ctx, query.DepartmentID, query.AcademicYear, query.Year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semester schedules")
	}
	return list, nil
}

// GetSlots returns the placed cells for a stored schedule version.
func (s *ScheduleGeneratorService) GetSlots(ctx context.Context, scheduleID string) ([]models.SemesterScheduleSlot, error) {
	if scheduleID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schedule id is required")
	}
	if _, err := s.semesters.FindByID(ctx, scheduleID); err != nil {
		return nil, notFoundOrInternal(err, "semester schedule not found", "failed to load semester schedule")
	}
	slots, err := s.slots.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semester schedule slots")
	}
	return slots, nil
}

// Delete removes a draft schedule version.
func (s *ScheduleGeneratorService) Delete(ctx context.Context, scheduleID string) error {
	record, err := s.semesters.FindByID(ctx, scheduleID)
	if err != nil {
		return notFoundOrInternal(err, "semester schedule not found", "failed to load semester schedule")
	}
	if record.Status != models.SemesterScheduleStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft schedules can be deleted")
	}
	if err := s.semesters.Delete(ctx, scheduleID); err != nil {
		return notFoundOrInternal(err, "semester schedule not found", "failed to delete semester schedule")
	}
	return nil
}

func notFoundOrInternal(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMsg)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internalMsg)
}

func toTimetableResponse(tt scheduler.Timetable) dto.TimetableResponse {
	grids := make(map[string]dto.GridResponse, len(tt.BatchOrder)+1)
	if tt.Main != nil {
		grids["Main"] = toGridResponse(tt.Main, tt.Codes)
	}
	for _, batch := range tt.BatchOrder {
		if grid, ok := tt.Batches[batch]; ok {
			grids[string(batch)] = toGridResponse(grid, tt.Codes)
		}
	}

	formatted := make(map[string]map[string]string, len(tt.Formatted))
	for slotStart, byDay := range tt.Formatted {
		row := make(map[string]string, len(byDay))
		for day, text := range byDay {
			row[string(day)] = text
		}
		formatted[slotStart] = row
	}

	warnings := make([]dto.WarningResponse, len(tt.Warnings))
	for i, w := range tt.Warnings {
		warnings[i] = dto.WarningResponse{
			Kind:        w.Kind,
			SubjectID:   string(w.Subject.ID),
			SubjectCode: w.Subject.Code,
			Remaining:   w.Remaining,
			Batch:       string(w.Batch),
		}
	}

	return dto.TimetableResponse{
		ID:           string(tt.ID),
		DepartmentID: string(tt.DepartmentID),
		AcademicYear: tt.AcademicYear,
		Year:         string(tt.Year),
		Grids:        grids,
		Formatted:    formatted,
		CreatedAt:    tt.CreatedAt,
		Warnings:     warnings,
	}
}

func toGridResponse(grid *scheduler.Grid, codes scheduler.CodeIndex) dto.GridResponse {
	days := make([]string, len(grid.Shape.Days))
	for i, d := range grid.Shape.Days {
		days[i] = string(d)
	}
	slots := make([]dto.TimeSlotResponse, len(grid.Shape.TimeSlots))
	for i, s := range grid.Shape.TimeSlots {
		slots[i] = dto.TimeSlotResponse{Start: s.Start, End: s.End}
	}

	cells := make(map[string]map[string]dto.CellResponse, len(grid.Shape.Days))
	for _, day := range grid.Shape.Days {
		row := make(map[string]dto.CellResponse, len(grid.Shape.TimeSlots))
		for _, slot := range grid.Shape.TimeSlots {
			cell := grid.At(day, slot)
			row[slot.Start] = dto.CellResponse{
				Type:        string(cell.Kind),
				SubjectCode: codes.SubjectCodes[cell.SubjectID],
				TeacherCode: codes.TeacherCodes[cell.TeacherID],
				RoomNumber:  codes.RoomNumbers[cell.RoomID],
				Batch:       string(cell.BatchTag),
			}
		}
		cells[string(day)] = row
	}

	return dto.GridResponse{Days: days, TimeSlots: slots, Cells: cells}
}
