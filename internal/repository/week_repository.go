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

// WeekRepository manages persistence for weeks.
type WeekRepository struct {
	db *sqlx.DB
}

// NewWeekRepository constructs a new week repository.
func NewWeekRepository(db *sqlx.DB) *WeekRepository {
	return &WeekRepository{db: db}
}

const weekColumns = "id, school_year_id, week_number, start_date, end_date, status, approved_by, approved_at, locked_by, locked_at, created_at, updated_at"

// List returns weeks matching filter criteria ordered by week number.
func (r *WeekRepository) List(ctx context.Context, filter models.WeekFilter) ([]models.Week, int, error) {
	base := "FROM weeks WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.SchoolYearID != "" {
		conditions = append(conditions, fmt.Sprintf("school_year_id = $%d", len(args)+1))
		args = append(args, filter.SchoolYearID)
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
		size = 60
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY week_number ASC LIMIT %d OFFSET %d", weekColumns, base, size, offset)
	var weeks []models.Week
	if err := r.db.SelectContext(ctx, &weeks, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list weeks: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count weeks: %w", err)
	}
	return weeks, total, nil
}

// FindByID returns a week by ID.
func (r *WeekRepository) FindByID(ctx context.Context, id string) (*models.Week, error) {
	query := fmt.Sprintf("SELECT %s FROM weeks WHERE id = $1", weekColumns)
	var week models.Week
	if err := r.db.GetContext(ctx, &week, query, id); err != nil {
		return nil, err
	}
	return &week, nil
}

// ListBySchoolYear returns every week of a school year ordered by number.
func (r *WeekRepository) ListBySchoolYear(ctx context.Context, schoolYearID string) ([]models.Week, error) {
	query := fmt.Sprintf("SELECT %s FROM weeks WHERE school_year_id = $1 ORDER BY week_number ASC", weekColumns)
	var weeks []models.Week
	if err := r.db.SelectContext(ctx, &weeks, query, schoolYearID); err != nil {
		return nil, fmt.Errorf("list weeks by school year: %w", err)
	}
	return weeks, nil
}

// CountBySchoolYear returns how many weeks exist for a school year.
func (r *WeekRepository) CountBySchoolYear(ctx context.Context, schoolYearID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM weeks WHERE school_year_id = $1", schoolYearID); err != nil {
		return 0, fmt.Errorf("count weeks by school year: %w", err)
	}
	return total, nil
}

// BulkCreate inserts the generated weeks of a school year in one transaction.
func (r *WeekRepository) BulkCreate(ctx context.Context, weeks []models.Week) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for i := range weeks {
		if weeks[i].ID == "" {
			weeks[i].ID = uuid.NewString()
		}
		if weeks[i].Status == "" {
			weeks[i].Status = models.StatusDraft
		}
		if weeks[i].CreatedAt.IsZero() {
			weeks[i].CreatedAt = now
		}
		weeks[i].UpdatedAt = now
		const query = `INSERT INTO weeks (id, school_year_id, week_number, start_date, end_date, status, created_at, updated_at)
VALUES (:id, :school_year_id, :week_number, :start_date, :end_date, :status, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, weeks[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("bulk create week %d: %w", weeks[i].WeekNumber, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit weeks: %w", err)
	}
	return nil
}

// UpdateStatus persists a lifecycle change on the week itself.
func (r *WeekRepository) UpdateStatus(ctx context.Context, week *models.Week) error {
	week.UpdatedAt = time.Now().UTC()
	const query = `UPDATE weeks SET status = :status, approved_by = :approved_by, approved_at = :approved_at, locked_by = :locked_by, locked_at = :locked_at, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, week); err != nil {
		return fmt.Errorf("update week status: %w", err)
	}
	return nil
}

// CascadeStatus propagates a week status change to the named dependent record
// classes.
func (r *WeekRepository) CascadeStatus(ctx context.Context, weekID string, status models.RecordStatus, targets []models.CascadeEntity) error {
	tables := map[models.CascadeEntity]string{
		models.CascadeDisciplineGradings: "discipline_gradings",
		models.CascadeAcademicGradings:   "class_academic_gradings",
		models.CascadeWeeklySummaries:    "weekly_summaries",
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, target := range targets {
		table, ok := tables[target]
		if !ok {
			continue
		}
		query := fmt.Sprintf("UPDATE %s SET status = $1, updated_at = $2 WHERE week_id = $3", table)
		if _, err := tx.ExecContext(ctx, query, status, now, weekID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("cascade status to %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cascade: %w", err)
	}
	return nil
}

// DeletePreview counts the dependent records a week delete would remove.
func (r *WeekRepository) DeletePreview(ctx context.Context, weekID string) (*models.WeekDeletePreview, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM discipline_gradings WHERE week_id = $1) AS discipline_gradings,
        (SELECT COUNT(*) FROM class_academic_gradings WHERE week_id = $1) AS academic_gradings,
        (SELECT COUNT(*) FROM daily_conduct_scores WHERE week_id = $1) AS daily_conduct_scores,
        (SELECT COUNT(*) FROM daily_academic_scores WHERE week_id = $1) AS daily_academic_scores,
        (SELECT COUNT(*) FROM violation_logs WHERE week_id = $1) AS violations,
        (SELECT COUNT(*) FROM weekly_summaries WHERE week_id = $1) AS weekly_summaries`
	var preview models.WeekDeletePreview
	if err := r.db.GetContext(ctx, &preview, query, weekID); err != nil {
		return nil, fmt.Errorf("preview week delete: %w", err)
	}
	preview.WeekID = weekID
	return &preview, nil
}

// Delete removes a week and every dependent record in one transaction.
func (r *WeekRepository) Delete(ctx context.Context, weekID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	dependents := []string{
		"discipline_gradings",
		"class_academic_gradings",
		"daily_conduct_scores",
		"daily_academic_scores",
		"violation_logs",
		"weekly_summaries",
	}
	for _, table := range dependents {
		query := fmt.Sprintf("DELETE FROM %s WHERE week_id = $1", table)
		if _, err := tx.ExecContext(ctx, query, weekID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("delete %s for week: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM weeks WHERE id = $1", weekID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete week: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit week delete: %w", err)
	}
	return nil
}
