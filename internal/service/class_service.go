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

type classRepo interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
}

// CreateClassRequest registers a class.
type CreateClassRequest struct {
	Name            string  `json:"name" validate:"required,min=1,max=50"`
	Grade           string  `json:"grade" validate:"required,min=1,max=20"`
	HomeroomTeacher *string `json:"homeroom_teacher,omitempty" validate:"omitempty,max=100"`
}

// UpdateClassRequest modifies a class.
type UpdateClassRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Grade           *string `json:"grade,omitempty" validate:"omitempty,min=1,max=20"`
	HomeroomTeacher *string `json:"homeroom_teacher,omitempty" validate:"omitempty,max=100"`
	Active          *bool   `json:"active,omitempty"`
}

// ClassService maintains the class registry.
type ClassService struct {
	classes   classRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs ClassService.
func NewClassService(classes classRepo, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{classes: classes, validator: validate, logger: logger}
}

// List returns classes with pagination metadata.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, *models.Pagination, error) {
	classes, total, err := s.classes.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return classes, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one class.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Create registers a class. Names are unique.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	exists, err := s.classes.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "class name already in use")
	}

	class := &models.Class{
		Name:            req.Name,
		Grade:           req.Grade,
		HomeroomTeacher: req.HomeroomTeacher,
		Active:          true,
	}
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	return class, nil
}

// Update modifies a class in place.
func (s *ClassService) Update(ctx context.Context, id string, req UpdateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != class.Name {
		exists, err := s.classes.ExistsByName(ctx, *req.Name, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class name")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "class name already in use")
		}
		class.Name = *req.Name
	}
	if req.Grade != nil {
		class.Grade = *req.Grade
	}
	if req.HomeroomTeacher != nil {
		class.HomeroomTeacher = req.HomeroomTeacher
	}
	if req.Active != nil {
		class.Active = *req.Active
	}

	if err := s.classes.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	return class, nil
}

// Delete removes a class.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.classes.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	return nil
}
