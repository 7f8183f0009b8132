package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acme/timetable-scheduler/internal/models"
)

// DepartmentRepository handles persistence for departments.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository creates a new repository instance.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns departments matching filters with pagination metadata.
func (r *DepartmentRepository) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, int, error) {
	base := "FROM departments WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "name"
	}
	allowedSorts := map[string]bool{"name": true, "created_at": true, "updated_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, name, batch_size, working_days, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, sortBy, order, size, offset)
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list departments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count departments: %w", err)
	}

	return departments, total, nil
}

// FindByID returns a department by id.
func (r *DepartmentRepository) FindByID(ctx context.Context, id string) (*models.Department, error) {
	const query = `SELECT id, name, batch_size, working_days, created_at, updated_at FROM departments WHERE id = $1`
	var department models.Department
	if err := r.db.GetContext(ctx, &department, query, id); err != nil {
		return nil, err
	}
	return &department, nil
}

// Create persists a new department.
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	if department.ID == "" {
		department.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if department.CreatedAt.IsZero() {
		department.CreatedAt = now
	}
	department.UpdatedAt = now

	const query = `INSERT INTO departments (id, name, batch_size, working_days, created_at, updated_at) VALUES (:id, :name, :batch_size, :working_days, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, department); err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}

// YearConfigs returns the per-year batch counts configured for a department.
func (r *DepartmentRepository) YearConfigs(ctx context.Context, departmentID string) ([]models.DepartmentYear, error) {
	const query = `SELECT department_id, year, num_batches FROM department_years WHERE department_id = $1 ORDER BY year`
	var years []models.DepartmentYear
	if err := r.db.SelectContext(ctx, &years, query, departmentID); err != nil {
		return nil, fmt.Errorf("list department years: %w", err)
	}
	return years, nil
}

// SetYearConfig upserts the batch count configured for one academic year.
func (r *DepartmentRepository) SetYearConfig(ctx context.Context, year models.DepartmentYear) error {
	const query = `INSERT INTO department_years (department_id, year, num_batches) VALUES (:department_id, :year, :num_batches)
		ON CONFLICT (department_id, year) DO UPDATE SET num_batches = EXCLUDED.num_batches`
	if _, err := r.db.NamedExecContext(ctx, query, year); err != nil {
		return fmt.Errorf("set department year config: %w", err)
	}
	return nil
}

// Breaks returns the break windows shared by every grid a department generates.
func (r *DepartmentRepository) Breaks(ctx context.Context, departmentID string) ([]models.DepartmentBreak, error) {
	const query = `SELECT department_id, slot_start, slot_end FROM department_breaks WHERE department_id = $1 ORDER BY slot_start`
	var breaks []models.DepartmentBreak
	if err := r.db.SelectContext(ctx, &breaks, query, departmentID); err != nil {
		return nil, fmt.Errorf("list department breaks: %w", err)
	}
	return breaks, nil
}
