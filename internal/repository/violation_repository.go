package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classtrack-api/internal/models"
)

// ViolationRepository manages persistence for the violation ledger.
type ViolationRepository struct {
	db *sqlx.DB
}

// NewViolationRepository constructs a new violation repository.
func NewViolationRepository(db *sqlx.DB) *ViolationRepository {
	return &ViolationRepository{db: db}
}

const violationColumns = "id, week_id, class_id, student_id, violation_type_id, date, description, status, is_duplicate, duplicate_of, recorded_by, approved_by, approved_at, rejected_by, rejected_at, reject_reason, created_at, updated_at"

func violationDetailColumns(alias string) string {
	cols := strings.Split(violationColumns, ", ")
	for i, col := range cols {
		cols[i] = alias + "." + col
	}
	return strings.Join(cols, ", ") +
		", s.full_name AS student_name, vt.name AS violation_type_name, vt.severity, vt.default_penalty"
}

// Create persists a violation record.
func (r *ViolationRepository) Create(ctx context.Context, violation *models.ViolationLog) error {
	if violation.ID == "" {
		violation.ID = uuid.NewString()
	}
	if violation.Status == "" {
		violation.Status = models.ViolationPending
	}
	now := time.Now().UTC()
	if violation.CreatedAt.IsZero() {
		violation.CreatedAt = now
	}
	violation.UpdatedAt = now

	const query = `INSERT INTO violation_logs (id, week_id, class_id, student_id, violation_type_id, date, description, status, is_duplicate, duplicate_of, recorded_by, approved_by, approved_at, rejected_by, rejected_at, reject_reason, created_at, updated_at)
VALUES (:id, :week_id, :class_id, :student_id, :violation_type_id, :date, :description, :status, :is_duplicate, :duplicate_of, :recorded_by, :approved_by, :approved_at, :rejected_by, :rejected_at, :reject_reason, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, violation); err != nil {
		return fmt.Errorf("create violation: %w", err)
	}
	return nil
}

// FindByID returns a violation by ID.
func (r *ViolationRepository) FindByID(ctx context.Context, id string) (*models.ViolationLog, error) {
	query := fmt.Sprintf("SELECT %s FROM violation_logs WHERE id = $1", violationColumns)
	var violation models.ViolationLog
	if err := r.db.GetContext(ctx, &violation, query, id); err != nil {
		return nil, err
	}
	return &violation, nil
}

// FindApprovedDuplicate looks for an approved record of the same student,
// type, and calendar date. Returns nil without error when none exists.
func (r *ViolationRepository) FindApprovedDuplicate(ctx context.Context, studentID, violationTypeID string, date time.Time) (*models.ViolationLog, error) {
	query := fmt.Sprintf(`SELECT %s FROM violation_logs
WHERE student_id = $1 AND violation_type_id = $2 AND date = $3 AND status = $4
ORDER BY created_at ASC LIMIT 1`, violationColumns)
	var violation models.ViolationLog
	err := r.db.GetContext(ctx, &violation, query, studentID, violationTypeID, date, models.ViolationApproved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find approved duplicate: %w", err)
	}
	return &violation, nil
}

// List returns violation details matching filter criteria.
func (r *ViolationRepository) List(ctx context.Context, filter models.ViolationFilter) ([]models.ViolationDetail, int, error) {
	base := `FROM violation_logs v
JOIN students s ON s.id = v.student_id
JOIN violation_types vt ON vt.id = v.violation_type_id
WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.WeekID != "" {
		conditions = append(conditions, fmt.Sprintf("v.week_id = $%d", len(args)+1))
		args = append(args, filter.WeekID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("v.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("v.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ViolationTypeID != "" {
		conditions = append(conditions, fmt.Sprintf("v.violation_type_id = $%d", len(args)+1))
		args = append(args, filter.ViolationTypeID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("v.status = $%d", len(args)+1))
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY v.date DESC, v.created_at DESC LIMIT %d OFFSET %d", violationDetailColumns("v"), base, size, offset)
	var violations []models.ViolationDetail
	if err := r.db.SelectContext(ctx, &violations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list violations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count violations: %w", err)
	}
	return violations, total, nil
}

// ListByWeekClass returns every violation detail of a (week, class) pair.
func (r *ViolationRepository) ListByWeekClass(ctx context.Context, weekID, classID string) ([]models.ViolationDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM violation_logs v
JOIN students s ON s.id = v.student_id
JOIN violation_types vt ON vt.id = v.violation_type_id
WHERE v.week_id = $1 AND v.class_id = $2
ORDER BY v.date ASC, v.created_at ASC`, violationDetailColumns("v"))
	var violations []models.ViolationDetail
	if err := r.db.SelectContext(ctx, &violations, query, weekID, classID); err != nil {
		return nil, fmt.Errorf("list violations by week and class: %w", err)
	}
	return violations, nil
}

// ListByWeekIDs returns violation details for a class across several weeks.
func (r *ViolationRepository) ListByWeekIDs(ctx context.Context, weekIDs []string, classID string) ([]models.ViolationDetail, error) {
	if len(weekIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf(`SELECT %s FROM violation_logs v
JOIN students s ON s.id = v.student_id
JOIN violation_types vt ON vt.id = v.violation_type_id
WHERE v.week_id IN (?) AND v.class_id = ?`, violationDetailColumns("v")), weekIDs, classID)
	if err != nil {
		return nil, fmt.Errorf("build violations query: %w", err)
	}
	query = r.db.Rebind(query)

	var violations []models.ViolationDetail
	if err := r.db.SelectContext(ctx, &violations, query, args...); err != nil {
		return nil, fmt.Errorf("list violations by weeks: %w", err)
	}
	return violations, nil
}

// UpdateStatus persists a review decision on a violation record.
func (r *ViolationRepository) UpdateStatus(ctx context.Context, violation *models.ViolationLog) error {
	violation.UpdatedAt = time.Now().UTC()
	const query = `UPDATE violation_logs SET status = :status, approved_by = :approved_by, approved_at = :approved_at, rejected_by = :rejected_by, rejected_at = :rejected_at, reject_reason = :reject_reason, is_duplicate = :is_duplicate, duplicate_of = :duplicate_of, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, violation); err != nil {
		return fmt.Errorf("update violation status: %w", err)
	}
	return nil
}

// Delete removes a violation record.
func (r *ViolationRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM violation_logs WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete violation: %w", err)
	}
	return nil
}
