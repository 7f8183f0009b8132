package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/acme/timetable-scheduler/internal/models"
)

// TeacherSubjectRepository manages teacher-subject eligibility mappings.
type TeacherSubjectRepository struct {
	db *sqlx.DB
}

// NewTeacherSubjectRepository creates a new repository instance.
func NewTeacherSubjectRepository(db *sqlx.DB) *TeacherSubjectRepository {
	return &TeacherSubjectRepository{db: db}
}

// ListBySubjects returns every teacher-subject row for the given subject IDs.
// A teacher with no rows here may teach every subject.
func (r *TeacherSubjectRepository) ListBySubjects(ctx context.Context, subjectIDs []string) ([]models.TeacherSubject, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT teacher_id, subject_id FROM teacher_subjects WHERE subject_id IN (?)`, subjectIDs)
	if err != nil {
		return nil, fmt.Errorf("build teacher subjects query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []models.TeacherSubject
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	return rows, nil
}

// Assign records that a teacher is eligible to teach a subject.
func (r *TeacherSubjectRepository) Assign(ctx context.Context, teacherID, subjectID string) error {
	const query = `INSERT INTO teacher_subjects (teacher_id, subject_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, teacherID, subjectID); err != nil {
		return fmt.Errorf("assign teacher subject: %w", err)
	}
	return nil
}

// Unassign removes a teacher-subject eligibility mapping.
func (r *TeacherSubjectRepository) Unassign(ctx context.Context, teacherID, subjectID string) error {
	const query = `DELETE FROM teacher_subjects WHERE teacher_id = $1 AND subject_id = $2`
	if _, err := r.db.ExecContext(ctx, query, teacherID, subjectID); err != nil {
		return fmt.Errorf("unassign teacher subject: %w", err)
	}
	return nil
}
