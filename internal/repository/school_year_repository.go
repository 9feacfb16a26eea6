package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classtrack-api/internal/models"
)

// SchoolYearRepository manages persistence for school years.
type SchoolYearRepository struct {
	db *sqlx.DB
}

// NewSchoolYearRepository constructs a new school year repository.
func NewSchoolYearRepository(db *sqlx.DB) *SchoolYearRepository {
	return &SchoolYearRepository{db: db}
}

// List returns school years matching filter criteria.
func (r *SchoolYearRepository) List(ctx context.Context, filter models.SchoolYearFilter) ([]models.SchoolYear, int, error) {
	base := "FROM school_years WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
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

	query := fmt.Sprintf("SELECT id, name, start_date, end_date, scoring, active, created_at, updated_at %s ORDER BY start_date DESC LIMIT %d OFFSET %d", base, size, offset)
	var years []models.SchoolYear
	if err := r.db.SelectContext(ctx, &years, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list school years: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count school years: %w", err)
	}
	return years, total, nil
}

// FindByID returns a school year by ID.
func (r *SchoolYearRepository) FindByID(ctx context.Context, id string) (*models.SchoolYear, error) {
	const query = `SELECT id, name, start_date, end_date, scoring, active, created_at, updated_at FROM school_years WHERE id = $1`
	var year models.SchoolYear
	if err := r.db.GetContext(ctx, &year, query, id); err != nil {
		return nil, err
	}
	return &year, nil
}

// ExistsByName checks if a school year with the same name already exists.
func (r *SchoolYearRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM school_years WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check school year name: %w", err)
	}
	return true, nil
}

// Create persists a school year record.
func (r *SchoolYearRepository) Create(ctx context.Context, year *models.SchoolYear) error {
	if year.ID == "" {
		year.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if year.CreatedAt.IsZero() {
		year.CreatedAt = now
	}
	year.UpdatedAt = now

	const query = `INSERT INTO school_years (id, name, start_date, end_date, scoring, active, created_at, updated_at)
VALUES (:id, :name, :start_date, :end_date, :scoring, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, year); err != nil {
		return fmt.Errorf("create school year: %w", err)
	}
	return nil
}

// Update modifies a school year record.
func (r *SchoolYearRepository) Update(ctx context.Context, year *models.SchoolYear) error {
	year.UpdatedAt = time.Now().UTC()
	const query = `UPDATE school_years SET name = :name, start_date = :start_date, end_date = :end_date, scoring = :scoring, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, year); err != nil {
		return fmt.Errorf("update school year: %w", err)
	}
	return nil
}

// Delete removes a school year record.
func (r *SchoolYearRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM school_years WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete school year: %w", err)
	}
	return nil
}
