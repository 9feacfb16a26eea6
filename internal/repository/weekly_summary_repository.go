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

// WeeklySummaryRepository manages persistence for weekly summaries.
type WeeklySummaryRepository struct {
	db *sqlx.DB
}

// NewWeeklySummaryRepository constructs a new weekly summary repository.
func NewWeeklySummaryRepository(db *sqlx.DB) *WeeklySummaryRepository {
	return &WeeklySummaryRepository{db: db}
}

const weeklySummaryColumns = "id, week_id, class_id, conduct_total, academic_total, good_day_count, bonus_total, penalty_total, total_score, max_possible_score, percentage, flag, details, status, generated_by, generated_at, created_at, updated_at"

// List returns weekly summaries matching filter criteria.
func (r *WeeklySummaryRepository) List(ctx context.Context, filter models.WeeklySummaryFilter) ([]models.WeeklySummary, int, error) {
	base := "FROM weekly_summaries WHERE 1=1"
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
	if filter.Flag != nil {
		conditions = append(conditions, fmt.Sprintf("flag = $%d", len(args)+1))
		args = append(args, *filter.Flag)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY total_score DESC LIMIT %d OFFSET %d", weeklySummaryColumns, base, size, offset)
	var summaries []models.WeeklySummary
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list weekly summaries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count weekly summaries: %w", err)
	}
	return summaries, total, nil
}

// FindByID returns a weekly summary by ID.
func (r *WeeklySummaryRepository) FindByID(ctx context.Context, id string) (*models.WeeklySummary, error) {
	query := fmt.Sprintf("SELECT %s FROM weekly_summaries WHERE id = $1", weeklySummaryColumns)
	var summary models.WeeklySummary
	if err := r.db.GetContext(ctx, &summary, query, id); err != nil {
		return nil, err
	}
	return &summary, nil
}

// FindByWeekClass returns the summary for one (week, class) pair.
func (r *WeeklySummaryRepository) FindByWeekClass(ctx context.Context, weekID, classID string) (*models.WeeklySummary, error) {
	query := fmt.Sprintf("SELECT %s FROM weekly_summaries WHERE week_id = $1 AND class_id = $2", weeklySummaryColumns)
	var summary models.WeeklySummary
	if err := r.db.GetContext(ctx, &summary, query, weekID, classID); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ListByWeekIDs returns a class's summaries for the given weeks.
func (r *WeeklySummaryRepository) ListByWeekIDs(ctx context.Context, weekIDs []string, classID string) ([]models.WeeklySummary, error) {
	if len(weekIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM weekly_summaries WHERE week_id IN (?) AND class_id = ?", weeklySummaryColumns), weekIDs, classID)
	if err != nil {
		return nil, fmt.Errorf("build weekly summaries query: %w", err)
	}
	query = r.db.Rebind(query)

	var summaries []models.WeeklySummary
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, fmt.Errorf("list weekly summaries by weeks: %w", err)
	}
	return summaries, nil
}

// Upsert fully replaces the summary for its (week, class) key.
func (r *WeeklySummaryRepository) Upsert(ctx context.Context, summary *models.WeeklySummary) error {
	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}
	if summary.Status == "" {
		summary.Status = models.StatusDraft
	}
	now := time.Now().UTC()
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = now
	}
	if summary.GeneratedAt.IsZero() {
		summary.GeneratedAt = now
	}
	summary.UpdatedAt = now

	const query = `INSERT INTO weekly_summaries (id, week_id, class_id, conduct_total, academic_total, good_day_count, bonus_total, penalty_total, total_score, max_possible_score, percentage, flag, details, status, generated_by, generated_at, created_at, updated_at)
VALUES (:id, :week_id, :class_id, :conduct_total, :academic_total, :good_day_count, :bonus_total, :penalty_total, :total_score, :max_possible_score, :percentage, :flag, :details, :status, :generated_by, :generated_at, :created_at, :updated_at)
ON CONFLICT (week_id, class_id)
DO UPDATE SET conduct_total = EXCLUDED.conduct_total, academic_total = EXCLUDED.academic_total, good_day_count = EXCLUDED.good_day_count, bonus_total = EXCLUDED.bonus_total, penalty_total = EXCLUDED.penalty_total, total_score = EXCLUDED.total_score, max_possible_score = EXCLUDED.max_possible_score, percentage = EXCLUDED.percentage, flag = EXCLUDED.flag, details = EXCLUDED.details, generated_by = EXCLUDED.generated_by, generated_at = EXCLUDED.generated_at, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, summary); err != nil {
		return fmt.Errorf("upsert weekly summary: %w", err)
	}
	return nil
}

// Delete removes a weekly summary.
func (r *WeeklySummaryRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM weekly_summaries WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete weekly summary: %w", err)
	}
	return nil
}
