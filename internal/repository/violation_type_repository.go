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

// ViolationTypeRepository manages persistence for the violation catalogue.
type ViolationTypeRepository struct {
	db *sqlx.DB
}

// NewViolationTypeRepository constructs a new violation type repository.
func NewViolationTypeRepository(db *sqlx.DB) *ViolationTypeRepository {
	return &ViolationTypeRepository{db: db}
}

const violationTypeColumns = "id, name, category, severity, default_penalty, active, created_at, updated_at"

// List returns violation types matching filter criteria.
func (r *ViolationTypeRepository) List(ctx context.Context, filter models.ViolationTypeFilter) ([]models.ViolationType, int, error) {
	base := "FROM violation_types WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Severity != nil {
		conditions = append(conditions, fmt.Sprintf("severity = $%d", len(args)+1))
		args = append(args, *filter.Severity)
	}
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
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY category ASC, name ASC LIMIT %d OFFSET %d", violationTypeColumns, base, size, offset)
	var types []models.ViolationType
	if err := r.db.SelectContext(ctx, &types, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list violation types: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count violation types: %w", err)
	}
	return types, total, nil
}

// FindByID returns a violation type by ID.
func (r *ViolationTypeRepository) FindByID(ctx context.Context, id string) (*models.ViolationType, error) {
	query := fmt.Sprintf("SELECT %s FROM violation_types WHERE id = $1", violationTypeColumns)
	var violationType models.ViolationType
	if err := r.db.GetContext(ctx, &violationType, query, id); err != nil {
		return nil, err
	}
	return &violationType, nil
}

// FindByIDs returns violation types keyed by ID.
func (r *ViolationTypeRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.ViolationType, error) {
	if len(ids) == 0 {
		return map[string]models.ViolationType{}, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM violation_types WHERE id IN (?)", violationTypeColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build violation types query: %w", err)
	}
	query = r.db.Rebind(query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch violation types: %w", err)
	}
	defer rows.Close()

	result := make(map[string]models.ViolationType, len(ids))
	for rows.Next() {
		var violationType models.ViolationType
		if err := rows.StructScan(&violationType); err != nil {
			return nil, fmt.Errorf("scan violation type: %w", err)
		}
		result[violationType.ID] = violationType
	}
	return result, rows.Err()
}

// Create persists a violation type record.
func (r *ViolationTypeRepository) Create(ctx context.Context, violationType *models.ViolationType) error {
	if violationType.ID == "" {
		violationType.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if violationType.CreatedAt.IsZero() {
		violationType.CreatedAt = now
	}
	violationType.UpdatedAt = now

	const query = `INSERT INTO violation_types (id, name, category, severity, default_penalty, active, created_at, updated_at)
VALUES (:id, :name, :category, :severity, :default_penalty, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, violationType); err != nil {
		return fmt.Errorf("create violation type: %w", err)
	}
	return nil
}

// Update modifies a violation type record.
func (r *ViolationTypeRepository) Update(ctx context.Context, violationType *models.ViolationType) error {
	violationType.UpdatedAt = time.Now().UTC()
	const query = `UPDATE violation_types SET name = :name, category = :category, severity = :severity, default_penalty = :default_penalty, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, violationType); err != nil {
		return fmt.Errorf("update violation type: %w", err)
	}
	return nil
}

// Delete removes a violation type record.
func (r *ViolationTypeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM violation_types WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete violation type: %w", err)
	}
	return nil
}
