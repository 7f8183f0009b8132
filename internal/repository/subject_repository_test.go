package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acme/timetable-scheduler/internal/models"
)

func newSubjectRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubjectRepositoryListByDepartmentYear(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "code", "name", "department_id", "year", "kind", "lectures_per_week",
		"practicals_per_week", "consecutive_slots", "priority", "preferred_teacher_id", "created_at", "updated_at",
	}).AddRow("sub-1", "CS301", "Data Structures", "dept-1", "SE", models.SubjectKindLecture, 3, 0, 1, 5, nil, time.Now(), time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects WHERE department_id = $1 AND year = $2 ORDER BY priority DESC, code")).
		WithArgs("dept-1", "SE").
		WillReturnRows(rows)

	subjects, err := repo.ListByDepartmentYear(context.Background(), "dept-1", "SE")
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "CS301", subjects[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryExistsByCode(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM subjects WHERE department_id = $1 AND LOWER(code) = LOWER($2) LIMIT 1")).
		WithArgs("dept-1", "CS301").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByCode(context.Background(), "dept-1", "CS301", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("INSERT INTO subjects").
		WithArgs(sqlmock.AnyArg(), "CS301", "Data Structures", "dept-1", "SE", models.SubjectKindLecture, 3, 0, 1, 5, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &models.Subject{
		Code: "CS301", Name: "Data Structures", DepartmentID: "dept-1", Year: "SE",
		Kind: models.SubjectKindLecture, LecturesPerWeek: 3, ConsecutiveSlots: 1, Priority: 5,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
