package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/classtrack-api/internal/models"
	appErrors "github.com/noah-isme/classtrack-api/pkg/errors"
)

type violationTypeRepo interface {
	List(ctx context.Context, filter models.ViolationTypeFilter) ([]models.ViolationType, int, error)
	FindByID(ctx context.Context, id string) (*models.ViolationType, error)
	Create(ctx context.Context, violationType *models.ViolationType) error
	Update(ctx context.Context, violationType *models.ViolationType) error
	Delete(ctx context.Context, id string) error
}

// CreateViolationTypeRequest catalogues a violation type.
type CreateViolationTypeRequest struct {
	Name           string                   `json:"name" validate:"required,min=1,max=100"`
	Category       string                   `json:"category" validate:"required,min=1,max=50"`
	Severity       models.ViolationSeverity `json:"severity" validate:"required,oneof=Minor Moderate Severe"`
	DefaultPenalty int                      `json:"default_penalty" validate:"gte=0"`
}

// UpdateViolationTypeRequest modifies a violation type.
type UpdateViolationTypeRequest struct {
	Name           *string                   `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Category       *string                   `json:"category,omitempty" validate:"omitempty,min=1,max=50"`
	Severity       *models.ViolationSeverity `json:"severity,omitempty" validate:"omitempty,oneof=Minor Moderate Severe"`
	DefaultPenalty *int                      `json:"default_penalty,omitempty" validate:"omitempty,gte=0"`
	Active         *bool                     `json:"active,omitempty"`
}

// ViolationTypeService maintains the violation type catalogue. Penalty edits
// only affect summaries regenerated afterwards; stored summaries keep the
// penalty totals they were generated with.
type ViolationTypeService struct {
	types     violationTypeRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewViolationTypeService constructs ViolationTypeService.
func NewViolationTypeService(types violationTypeRepo, validate *validator.Validate, logger *zap.Logger) *ViolationTypeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViolationTypeService{types: types, validator: validate, logger: logger}
}

// List returns violation types with pagination metadata.
func (s *ViolationTypeService) List(ctx context.Context, filter models.ViolationTypeFilter) ([]models.ViolationType, *models.Pagination, error) {
	types, total, err := s.types.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list violation types")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return types, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one violation type.
func (s *ViolationTypeService) Get(ctx context.Context, id string) (*models.ViolationType, error) {
	violationType, err := s.types.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "violation type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load violation type")
	}
	return violationType, nil
}

// Create catalogues a violation type.
func (s *ViolationTypeService) Create(ctx context.Context, req CreateViolationTypeRequest) (*models.ViolationType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	violationType := &models.ViolationType{
		Name:           req.Name,
		Category:       req.Category,
		Severity:       req.Severity,
		DefaultPenalty: req.DefaultPenalty,
		Active:         true,
	}
	if err := s.types.Create(ctx, violationType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create violation type")
	}
	return violationType, nil
}

// Update modifies a violation type in place.
func (s *ViolationTypeService) Update(ctx context.Context, id string, req UpdateViolationTypeRequest) (*models.ViolationType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	violationType, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		violationType.Name = *req.Name
	}
	if req.Category != nil {
		violationType.Category = *req.Category
	}
	if req.Severity != nil {
		violationType.Severity = *req.Severity
	}
	if req.DefaultPenalty != nil {
		violationType.DefaultPenalty = *req.DefaultPenalty
	}
	if req.Active != nil {
		violationType.Active = *req.Active
	}

	if err := s.types.Update(ctx, violationType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update violation type")
	}
	return violationType, nil
}

// Delete removes a violation type. Existing violation records keep their
// reference; deactivating is usually the better move.
func (s *ViolationTypeService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.types.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete violation type")
	}
	return nil
}
