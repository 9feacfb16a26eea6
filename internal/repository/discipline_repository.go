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

// DisciplineRepository manages persistence for weekly discipline gradings.
type DisciplineRepository struct {
	db *sqlx.DB
}

// NewDisciplineRepository constructs a new discipline repository.
func NewDisciplineRepository(db *sqlx.DB) *DisciplineRepository {
	return &DisciplineRepository{db: db}
}

const disciplineColumns = "id, week_id, class_id, items, total_weekly_score, max_possible_score, percentage, flag, status, created_by, updated_by, created_at, updated_at"

// List returns discipline gradings matching filter criteria.
func (r *DisciplineRepository) List(ctx context.Context, filter models.DisciplineGradingFilter) ([]models.DisciplineGrading, int, error) {
	base := "FROM discipline_gradings WHERE 1=1"
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
	if filter.Flag != nil {
		conditions = append(conditions, fmt.Sprintf("flag = $%d", len(args)+1))
		args = append(args, *filter.Flag)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY updated_at DESC LIMIT %d OFFSET %d", disciplineColumns, base, size, offset)
	var gradings []models.DisciplineGrading
	if err := r.db.SelectContext(ctx, &gradings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list discipline gradings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count discipline gradings: %w", err)
	}
	return gradings, total, nil
}

// FindByID returns a discipline grading by ID.
func (r *DisciplineRepository) FindByID(ctx context.Context, id string) (*models.DisciplineGrading, error) {
	query := fmt.Sprintf("SELECT %s FROM discipline_gradings WHERE id = $1", disciplineColumns)
	var grading models.DisciplineGrading
	if err := r.db.GetContext(ctx, &grading, query, id); err != nil {
		return nil, err
	}
	return &grading, nil
}

// FindByWeekClass returns the grading for one (week, class) pair.
func (r *DisciplineRepository) FindByWeekClass(ctx context.Context, weekID, classID string) (*models.DisciplineGrading, error) {
	query := fmt.Sprintf("SELECT %s FROM discipline_gradings WHERE week_id = $1 AND class_id = $2", disciplineColumns)
	var grading models.DisciplineGrading
	if err := r.db.GetContext(ctx, &grading, query, weekID, classID); err != nil {
		return nil, err
	}
	return &grading, nil
}

// Upsert inserts or replaces the grading for its (week, class) key.
func (r *DisciplineRepository) Upsert(ctx context.Context, grading *models.DisciplineGrading) error {
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

	const query = `INSERT INTO discipline_gradings (id, week_id, class_id, items, total_weekly_score, max_possible_score, percentage, flag, status, created_by, updated_by, created_at, updated_at)
VALUES (:id, :week_id, :class_id, :items, :total_weekly_score, :max_possible_score, :percentage, :flag, :status, :created_by, :updated_by, :created_at, :updated_at)
ON CONFLICT (week_id, class_id)
DO UPDATE SET items = EXCLUDED.items, total_weekly_score = EXCLUDED.total_weekly_score, max_possible_score = EXCLUDED.max_possible_score, percentage = EXCLUDED.percentage, flag = EXCLUDED.flag, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, grading); err != nil {
		return fmt.Errorf("upsert discipline grading: %w", err)
	}
	return nil
}

// Delete removes a discipline grading.
func (r *DisciplineRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM discipline_gradings WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete discipline grading: %w", err)
	}
	return nil
}
