package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classtrack-api/internal/models"
)

// AcademicRepository manages persistence for weekly academic gradings.
type AcademicRepository struct {
	db *sqlx.DB
}

// NewAcademicRepository constructs a new academic repository.
func NewAcademicRepository(db *sqlx.DB) *AcademicRepository {
	return &AcademicRepository{db: db}
}

const academicColumns = "id, week_id, class_id, day_gradings, total_weekly_score, total_weekly_periods, average_score, good_day_count, is_good_week, good_day_bonus, good_week_bonus, final_weekly_score, status, created_by, updated_by, created_at, updated_at"

// List returns academic gradings matching filter criteria.
func (r *AcademicRepository) List(ctx context.Context, filter models.AcademicGradingFilter) ([]models.ClassAcademicGrading, int, error) {
	base := "FROM class_academic_gradings WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.WeekID != "" {
		conditions = append(conditions, fmt.Sprintf("week_id = $%d", len(args)+1))
		args = append(args, filter.WeekID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY updated_at DESC LIMIT %d OFFSET %d", academicColumns, base, size, offset)
	var gradings []models.ClassAcademicGrading
	if err := r.db.SelectContext(ctx, &gradings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list academic gradings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count academic gradings: %w", err)
	}
	return gradings, total, nil
}

// FindByID returns an academic grading by ID.
func (r *AcademicRepository) FindByID(ctx context.Context, id string) (*models.ClassAcademicGrading, error) {
	query := fmt.Sprintf("SELECT %s FROM class_academic_gradings WHERE id = $1", academicColumns)
	var grading models.ClassAcademicGrading
	if err := r.db.GetContext(ctx, &grading, query, id); err != nil {
		return nil, err
	}
	return &grading, nil
}

// FindByWeekClass returns the grading for one (week, class) pair.
func (r *AcademicRepository) FindByWeekClass(ctx context.Context, weekID, classID string) (*models.ClassAcademicGrading, error) {
	query := fmt.Sprintf("SELECT %s FROM class_academic_gradings WHERE week_id = $1 AND class_id = $2", academicColumns)
	var grading models.ClassAcademicGrading
	if err := r.db.GetContext(ctx, &grading, query, weekID, classID); err != nil {
		return nil, err
	}
	return &grading, nil
}

// Upsert inserts or replaces the grading for its (week, class) key.
func (r *AcademicRepository) Upsert(ctx context.Context, grading *models.ClassAcademicGrading) error {
	if grading.ID == "" {
		grading.ID = uuid.NewString()
	}
	if grading.Status == "" {
		grading.Status = models.StatusDraft
	}
	now := time.Now().UTC()
	if grading.CreatedAt.IsZero() {
		grading.CreatedAt = now
	}
	grading.UpdatedAt = now

	const query = `INSERT INTO class_academic_gradings (id, week_id, class_id, day_gradings, total_weekly_score, total_weekly_periods, average_score, good_day_count, is_good_week, good_day_bonus, good_week_bonus, final_weekly_score, status, created_by, updated_by, created_at, updated_at)
VALUES (:id, :week_id, :class_id, :day_gradings, :total_weekly_score, :total_weekly_periods, :average_score, :good_day_count, :is_good_week, :good_day_bonus, :good_week_bonus, :final_weekly_score, :status, :created_by, :updated_by, :created_at, :updated_at)
ON CONFLICT (week_id, class_id)
DO UPDATE SET day_gradings = EXCLUDED.day_gradings, total_weekly_score = EXCLUDED.total_weekly_score, total_weekly_periods = EXCLUDED.total_weekly_periods, average_score = EXCLUDED.average_score, good_day_count = EXCLUDED.good_day_count, is_good_week = EXCLUDED.is_good_week, good_day_bonus = EXCLUDED.good_day_bonus, good_week_bonus = EXCLUDED.good_week_bonus, final_weekly_score = EXCLUDED.final_weekly_score, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, grading); err != nil {
		return fmt.Errorf("upsert academic grading: %w", err)
	}
	return nil
}

// Delete removes an academic grading.
func (r *AcademicRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM class_academic_gradings WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete academic grading: %w", err)
	}
	return nil
}
