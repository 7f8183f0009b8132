package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acme/timetable-scheduler/internal/models"
)

func newSemesterScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSemesterScheduleRepositoryCreateVersioned(t *testing.T) {
	db, mock, cleanup := newSemesterScheduleRepoMock(t)
	defer cleanup()
	repo := NewSemesterScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM semester_schedules WHERE department_id = $1 AND academic_year = $2 AND year = $3")).
		WithArgs("dept-1", "2026-27", "SE").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(2))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO semester_schedules")).
		WithArgs(sqlmock.AnyArg(), "dept-1", "2026-27", "SE", 2, string(models.SemesterScheduleStatusDraft), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	payload := &models.SemesterSchedule{
		DepartmentID: "dept-1",
		AcademicYear: "2026-27",
		Year:         "SE",
		Meta:         types.JSONText(`{}`),
	}
	err := repo.CreateVersioned(context.Background(), nil, payload)
	require.NoError(t, err)
	assert.Equal(t, 2, payload.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterScheduleRepositoryListByDepartmentYear(t *testing.T) {
	db, mock, cleanup := newSemesterScheduleRepoMock(t)
	defer cleanup()
	repo := NewSemesterScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "department_id", "academic_year", "year", "version", "status", "meta", "created_at", "updated_at"}).
		AddRow("sch-1", "dept-1", "2026-27", "SE", 1, string(models.SemesterScheduleStatusDraft), types.JSONText(`{}`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, department_id, academic_year, year, version, status, meta, created_at, updated_at\nFROM semester_schedules WHERE department_id = $1 AND academic_year = $2 AND year = $3 ORDER BY version DESC")).
		WithArgs("dept-1", "2026-27", "SE").
		WillReturnRows(rows)

	list, err := repo.ListByDepartmentYear(context.Background(), "dept-1", "2026-27", "SE")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterScheduleRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newSemesterScheduleRepoMock(t)
	defer cleanup()
	repo := NewSemesterScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM semester_schedules WHERE id = $1")).
		WithArgs("sch-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), "sch-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterScheduleRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newSemesterScheduleRepoMock(t)
	defer cleanup()
	repo := NewSemesterScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM semester_schedules WHERE id = $1")).
		WithArgs("sch-1").
		WillReturnResult(sqlmock.NewResult(1, 0))

	err := repo.Delete(context.Background(), "sch-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterScheduleRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newSemesterScheduleRepoMock(t)
	defer cleanup()
	repo := NewSemesterScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE semester_schedules SET status = $1, meta = $2, updated_at = $3 WHERE id = $4")).
		WithArgs(string(models.SemesterScheduleStatusPublished), types.JSONText(`{"warnings":1}`), sqlmock.AnyArg(), "sch-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpdateStatus(context.Background(), nil, "sch-1", models.SemesterScheduleStatusPublished, types.JSONText(`{"warnings":1}`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterScheduleRepositoryUpdateStatusNoMeta(t *testing.T) {
	db, mock, cleanup := newSemesterScheduleRepoMock(t)
	defer cleanup()
	repo := NewSemesterScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE semester_schedules SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(string(models.SemesterScheduleStatusDraft), sqlmock.AnyArg(), "sch-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpdateStatus(context.Background(), nil, "sch-1", models.SemesterScheduleStatusDraft, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
