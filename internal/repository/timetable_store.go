package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/acme/timetable-scheduler/internal/models"
	"github.com/acme/timetable-scheduler/internal/scheduler"
)

// TimetableStore persists generated timetables as a versioned
// SemesterSchedule header plus one SemesterScheduleSlot row per placed
// cell, one department/academic-year/year pair per timetable. A whole
// Save call runs inside one transaction, so a failure writes none of the
// batch.
type TimetableStore struct {
	db        *sqlx.DB
	schedules *SemesterScheduleRepository
	slots     *SemesterScheduleSlotRepository
}

// NewTimetableStore wires the repositories used to persist timetables.
func NewTimetableStore(db *sqlx.DB, schedules *SemesterScheduleRepository, slots *SemesterScheduleSlotRepository) *TimetableStore {
	return &TimetableStore{db: db, schedules: schedules, slots: slots}
}

// Save persists all timetables in one transaction and returns the stored
// IDs in the same order as the input slice.
func (s *TimetableStore) Save(ctx context.Context, timetables []scheduler.Timetable) ([]scheduler.ID, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin timetable transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ids := make([]scheduler.ID, 0, len(timetables))
	for _, tt := range timetables {
		id, err := s.saveOne(ctx, tx, tt)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit timetable transaction: %w", err)
	}
	return ids, nil
}

func (s *TimetableStore) saveOne(ctx context.Context, tx *sqlx.Tx, tt scheduler.Timetable) (scheduler.ID, error) {
	meta, err := buildScheduleMeta(tt)
	if err != nil {
		return "", fmt.Errorf("build schedule meta: %w", err)
	}

	schedule := &models.SemesterSchedule{
		DepartmentID: string(tt.DepartmentID),
		AcademicYear: tt.AcademicYear,
		Year:         string(tt.Year),
		Status:       models.SemesterScheduleStatusDraft,
		Meta:         meta,
	}
	if err := s.schedules.CreateVersioned(ctx, tx, schedule); err != nil {
		return "", fmt.Errorf("create semester schedule: %w", err)
	}

	slotRows := buildSlotRows(schedule.ID, tt)
	if err := s.slots.UpsertBatch(ctx, tx, slotRows); err != nil {
		return "", fmt.Errorf("save timetable slots: %w", err)
	}

	return scheduler.ID(schedule.ID), nil
}

func buildScheduleMeta(tt scheduler.Timetable) (types.JSONText, error) {
	type warningMeta struct {
		Kind      string `json:"kind"`
		Subject   string `json:"subject"`
		Remaining int    `json:"remaining"`
		Batch     string `json:"batch,omitempty"`
	}
	warnings := make([]warningMeta, len(tt.Warnings))
	for i, w := range tt.Warnings {
		warnings[i] = warningMeta{
			Kind:      w.Kind,
			Subject:   string(w.Subject.Code),
			Remaining: w.Remaining,
			Batch:     string(w.Batch),
		}
	}
	payload := struct {
		Warnings []warningMeta `json:"warnings"`
	}{Warnings: warnings}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return types.JSONText(raw), nil
}

func buildSlotRows(scheduleID string, tt scheduler.Timetable) []models.SemesterScheduleSlot {
	var rows []models.SemesterScheduleSlot
	rows = append(rows, gridSlotRows(scheduleID, "", tt.Main)...)
	for _, batch := range tt.BatchOrder {
		rows = append(rows, gridSlotRows(scheduleID, string(batch), tt.Batches[batch])...)
	}
	return rows
}

func gridSlotRows(scheduleID, batch string, grid *scheduler.Grid) []models.SemesterScheduleSlot {
	if grid == nil {
		return nil
	}
	var rows []models.SemesterScheduleSlot
	for _, day := range grid.Shape.Days {
		for _, slot := range grid.Shape.TimeSlots {
			cell := grid.At(day, slot)
			if cell.IsEmpty() || grid.Shape.IsBreak(slot) {
				continue
			}
			rows = append(rows, models.SemesterScheduleSlot{
				SemesterScheduleID: scheduleID,
				DayOfWeek:          string(day),
				TimeSlotStart:      slot.Start,
				Batch:              batch,
				SubjectID:          string(cell.SubjectID),
				TeacherID:          string(cell.TeacherID),
				RoomID:             string(cell.RoomID),
			})
		}
	}
	return rows
}
