package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acme/timetable-scheduler/internal/scheduler"
	"github.com/acme/timetable-scheduler/pkg/export"
	"github.com/acme/timetable-scheduler/pkg/storage"
)

func newExportServiceForTest(t *testing.T) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	cfg := ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}
	svc := NewExportService(store, signer, cfg, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	return svc, store
}

func sampleTimetable() scheduler.Timetable {
	shape := scheduler.DefaultShape()
	main := scheduler.NewGrid(shape)
	main.Set(scheduler.Monday, scheduler.TimeSlot{Start: "09:00", End: "10:00"}, scheduler.NewLecture("sub-1", "tch-1", "room-1"))

	snapshot := scheduler.Snapshot{
		Subjects: []scheduler.Subject{{ID: "sub-1", Code: "CS301"}},
		Teachers: []scheduler.Teacher{{ID: "tch-1", Code: "JD"}},
		Rooms:    []scheduler.Room{{ID: "room-1", Number: "A101"}},
	}
	codes := scheduler.NewCodeIndex(snapshot)
	view := scheduler.Combine(shape, scheduler.YearSE, main, nil, nil, codes)

	return scheduler.Timetable{
		ID:           "tt-1",
		DepartmentID: "dept-1",
		AcademicYear: "2026-27",
		Year:         scheduler.YearSE,
		Main:         main,
		Formatted:    view,
		Codes:        codes,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestExportServiceGenerateCSV(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	result, err := svc.Generate(context.Background(), sampleTimetable(), ExportFormatCSV)
	require.NoError(t, err)
	require.NotEmpty(t, result.RelativePath)
	require.Contains(t, result.URL, "/timetables/export/")

	path := store.Path(result.RelativePath)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestExportServiceGeneratePDF(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	result, err := svc.Generate(context.Background(), sampleTimetable(), ExportFormatPDF)
	require.NoError(t, err)
	require.Equal(t, ExportFormatPDF, result.Format)

	path := filepath.Clean(store.Path(result.RelativePath))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}
