package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acme/timetable-scheduler/internal/models"
	"github.com/acme/timetable-scheduler/internal/scheduler"
	"github.com/acme/timetable-scheduler/pkg/export"
	"github.com/acme/timetable-scheduler/pkg/storage"
)

func TestTimetableExportServiceExportCSV(t *testing.T) {
	schedule := models.SemesterSchedule{
		ID:           "sched-1",
		DepartmentID: "dept-1",
		AcademicYear: "2026-27",
		Year:         "SE",
		CreatedAt:    time.Now().UTC(),
	}
	slotRows := []models.SemesterScheduleSlot{
		{SemesterScheduleID: "sched-1", DayOfWeek: "MONDAY", TimeSlotStart: "09:00", SubjectID: "sub-1", TeacherID: "tch-1", RoomID: "room-1"},
	}
	snapshot := &scheduler.Snapshot{
		Subjects: []scheduler.Subject{{ID: "sub-1", Code: "CS301"}},
		Teachers: []scheduler.Teacher{{ID: "tch-1", Code: "JD"}},
		Rooms:    []scheduler.Room{{ID: "room-1", Number: "A101"}},
	}

	semesters := fakeSemesterScheduleRepo{schedules: map[string]models.SemesterSchedule{"sched-1": schedule}}
	slots := fakeSemesterScheduleSlotRepo{slots: slotRows}
	snapshots := fakeSchedulerRepository{snapshot: snapshot}

	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	exporter := NewExportService(store, signer, ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())

	svc := NewTimetableExportService(semesters, slots, snapshots, exporter)
	result, err := svc.Export(context.Background(), "sched-1", ExportFormatCSV)
	require.NoError(t, err)
	require.NotEmpty(t, result.RelativePath)
}

func TestTimetableExportServiceExportNotFound(t *testing.T) {
	svc := NewTimetableExportService(
		fakeSemesterScheduleRepo{schedules: map[string]models.SemesterSchedule{}},
		fakeSemesterScheduleSlotRepo{},
		fakeSchedulerRepository{},
		nil,
	)
	_, err := svc.Export(context.Background(), "missing", ExportFormatCSV)
	require.Error(t, err)
}
