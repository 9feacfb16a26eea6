package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classtrack-api/internal/models"
)

// DailyScoreRepository manages persistence for per-day conduct and academic
// records.
type DailyScoreRepository struct {
	db *sqlx.DB
}

// NewDailyScoreRepository constructs a new daily score repository.
func NewDailyScoreRepository(db *sqlx.DB) *DailyScoreRepository {
	return &DailyScoreRepository{db: db}
}

const conductScoreColumns = "id, week_id, class_id, date, items, total_score, recorded_by, created_at, updated_at"

const academicScoreColumns = "id, week_id, class_id, date, tiers, total_lessons, subtotal, daily_average, is_good_day, total_daily_score, recorded_by, created_at, updated_at"

// UpsertConduct inserts or replaces the conduct record for (week, class, date).
func (r *DailyScoreRepository) UpsertConduct(ctx context.Context, score *models.DailyConductScore) error {
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if score.CreatedAt.IsZero() {
		score.CreatedAt = now
	}
	score.UpdatedAt = now

	const query = `INSERT INTO daily_conduct_scores (id, week_id, class_id, date, items, total_score, recorded_by, created_at, updated_at)
VALUES (:id, :week_id, :class_id, :date, :items, :total_score, :recorded_by, :created_at, :updated_at)
ON CONFLICT (week_id, class_id, date)
DO UPDATE SET items = EXCLUDED.items, total_score = EXCLUDED.total_score, recorded_by = EXCLUDED.recorded_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, score); err != nil {
		return fmt.Errorf("upsert daily conduct score: %w", err)
	}
	return nil
}

// UpsertAcademic inserts or replaces the academic record for (week, class, date).
func (r *DailyScoreRepository) UpsertAcademic(ctx context.Context, score *models.DailyAcademicScore) error {
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if score.CreatedAt.IsZero() {
		score.CreatedAt = now
	}
	score.UpdatedAt = now

	const query = `INSERT INTO daily_academic_scores (id, week_id, class_id, date, tiers, total_lessons, subtotal, daily_average, is_good_day, total_daily_score, recorded_by, created_at, updated_at)
VALUES (:id, :week_id, :class_id, :date, :tiers, :total_lessons, :subtotal, :daily_average, :is_good_day, :total_daily_score, :recorded_by, :created_at, :updated_at)
ON CONFLICT (week_id, class_id, date)
DO UPDATE SET tiers = EXCLUDED.tiers, total_lessons = EXCLUDED.total_lessons, subtotal = EXCLUDED.subtotal, daily_average = EXCLUDED.daily_average, is_good_day = EXCLUDED.is_good_day, total_daily_score = EXCLUDED.total_daily_score, recorded_by = EXCLUDED.recorded_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, score); err != nil {
		return fmt.Errorf("upsert daily academic score: %w", err)
	}
	return nil
}

// ListConduct returns conduct records for the filter ordered by date.
func (r *DailyScoreRepository) ListConduct(ctx context.Context, filter models.DailyScoreFilter) ([]models.DailyConductScore, error) {
	query := fmt.Sprintf("SELECT %s FROM daily_conduct_scores WHERE 1=1", conductScoreColumns)
	var args []interface{}
	if filter.WeekID != "" {
		query += fmt.Sprintf(" AND week_id = $%d", len(args)+1)
		args = append(args, filter.WeekID)
	}
	if filter.ClassID != "" {
		query += fmt.Sprintf(" AND class_id = $%d", len(args)+1)
		args = append(args, filter.ClassID)
	}
	query += " ORDER BY date ASC"

	var scores []models.DailyConductScore
	if err := r.db.SelectContext(ctx, &scores, query, args...); err != nil {
		return nil, fmt.Errorf("list daily conduct scores: %w", err)
	}
	return scores, nil
}

// ListAcademic returns academic records for the filter ordered by date.
func (r *DailyScoreRepository) ListAcademic(ctx context.Context, filter models.DailyScoreFilter) ([]models.DailyAcademicScore, error) {
	query := fmt.Sprintf("SELECT %s FROM daily_academic_scores WHERE 1=1", academicScoreColumns)
	var args []interface{}
	if filter.WeekID != "" {
		query += fmt.Sprintf(" AND week_id = $%d", len(args)+1)
		args = append(args, filter.WeekID)
	}
	if filter.ClassID != "" {
		query += fmt.Sprintf(" AND class_id = $%d", len(args)+1)
		args = append(args, filter.ClassID)
	}
	query += " ORDER BY date ASC"

	var scores []models.DailyAcademicScore
	if err := r.db.SelectContext(ctx, &scores, query, args...); err != nil {
		return nil, fmt.Errorf("list daily academic scores: %w", err)
	}
	return scores, nil
}

// FindConduct returns the conduct record for one (week, class, date).
func (r *DailyScoreRepository) FindConduct(ctx context.Context, weekID, classID string, date time.Time) (*models.DailyConductScore, error) {
	query := fmt.Sprintf("SELECT %s FROM daily_conduct_scores WHERE week_id = $1 AND class_id = $2 AND date = $3", conductScoreColumns)
	var score models.DailyConductScore
	if err := r.db.GetContext(ctx, &score, query, weekID, classID, date); err != nil {
		return nil, err
	}
	return &score, nil
}

// FindAcademic returns the academic record for one (week, class, date).
func (r *DailyScoreRepository) FindAcademic(ctx context.Context, weekID, classID string, date time.Time) (*models.DailyAcademicScore, error) {
	query := fmt.Sprintf("SELECT %s FROM daily_academic_scores WHERE week_id = $1 AND class_id = $2 AND date = $3", academicScoreColumns)
	var score models.DailyAcademicScore
	if err := r.db.GetContext(ctx, &score, query, weekID, classID, date); err != nil {
		return nil, err
	}
	return &score, nil
}
