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

// MonthlySummaryRepository manages persistence for monthly summaries.
type MonthlySummaryRepository struct {
	db *sqlx.DB
}

// NewMonthlySummaryRepository constructs a new monthly summary repository.
func NewMonthlySummaryRepository(db *sqlx.DB) *MonthlySummaryRepository {
	return &MonthlySummaryRepository{db: db}
}

const monthlySummaryColumns = "id, school_year_id, class_id, month, year, week_count, total_score, flag, details, generated_by, generated_at, created_at, updated_at"

// List returns monthly summaries matching filter criteria.
func (r *MonthlySummaryRepository) List(ctx context.Context, filter models.MonthlySummaryFilter) ([]models.MonthlySummary, int, error) {
	base := "FROM monthly_summaries WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.SchoolYearID != "" {
		conditions = append(conditions, fmt.Sprintf("school_year_id = $%d", len(args)+1))
		args = append(args, filter.SchoolYearID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.Month > 0 {
		conditions = append(conditions, fmt.Sprintf("month = $%d", len(args)+1))
		args = append(args, filter.Month)
	}
	if filter.Year > 0 {
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)+1))
		args = append(args, filter.Year)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY year DESC, month DESC, total_score DESC LIMIT %d OFFSET %d", monthlySummaryColumns, base, size, offset)
	var summaries []models.MonthlySummary
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list monthly summaries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count monthly summaries: %w", err)
	}
	return summaries, total, nil
}

// FindByID returns a monthly summary by ID.
func (r *MonthlySummaryRepository) FindByID(ctx context.Context, id string) (*models.MonthlySummary, error) {
	query := fmt.Sprintf("SELECT %s FROM monthly_summaries WHERE id = $1", monthlySummaryColumns)
	var summary models.MonthlySummary
	if err := r.db.GetContext(ctx, &summary, query, id); err != nil {
		return nil, err
	}
	return &summary, nil
}

// FindByKey returns the summary for one (school year, month, year, class).
func (r *MonthlySummaryRepository) FindByKey(ctx context.Context, schoolYearID string, month, year int, classID string) (*models.MonthlySummary, error) {
	query := fmt.Sprintf("SELECT %s FROM monthly_summaries WHERE school_year_id = $1 AND month = $2 AND year = $3 AND class_id = $4", monthlySummaryColumns)
	var summary models.MonthlySummary
	if err := r.db.GetContext(ctx, &summary, query, schoolYearID, month, year, classID); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Upsert fully replaces the summary for its (school year, month, year, class)
// key.
func (r *MonthlySummaryRepository) Upsert(ctx context.Context, summary *models.MonthlySummary) error {
	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = now
	}
	if summary.GeneratedAt.IsZero() {
		summary.GeneratedAt = now
	}
	summary.UpdatedAt = now

	const query = `INSERT INTO monthly_summaries (id, school_year_id, class_id, month, year, week_count, total_score, flag, details, generated_by, generated_at, created_at, updated_at)
VALUES (:id, :school_year_id, :class_id, :month, :year, :week_count, :total_score, :flag, :details, :generated_by, :generated_at, :created_at, :updated_at)
ON CONFLICT (school_year_id, month, year, class_id)
DO UPDATE SET week_count = EXCLUDED.week_count, total_score = EXCLUDED.total_score, flag = EXCLUDED.flag, details = EXCLUDED.details, generated_by = EXCLUDED.generated_by, generated_at = EXCLUDED.generated_at, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, summary); err != nil {
		return fmt.Errorf("upsert monthly summary: %w", err)
	}
	return nil
}

// Delete removes a monthly summary.
func (r *MonthlySummaryRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM monthly_summaries WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete monthly summary: %w", err)
	}
	return nil
}
