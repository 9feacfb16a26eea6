package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/classtrack-api/internal/models"
	appErrors "github.com/noah-isme/classtrack-api/pkg/errors"
)

type schoolYearRepo interface {
	List(ctx context.Context, filter models.SchoolYearFilter) ([]models.SchoolYear, int, error)
	FindByID(ctx context.Context, id string) (*models.SchoolYear, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Create(ctx context.Context, year *models.SchoolYear) error
	Update(ctx context.Context, year *models.SchoolYear) error
	Delete(ctx context.Context, id string) error
}

type weekGenerator interface {
	CountBySchoolYear(ctx context.Context, schoolYearID string) (int, error)
	BulkCreate(ctx context.Context, weeks []models.Week) error
	ListBySchoolYear(ctx context.Context, schoolYearID string) ([]models.Week, error)
}

// CreateSchoolYearRequest carries a new school year payload.
type CreateSchoolYearRequest struct {
	Name      string                `json:"name" validate:"required"`
	StartDate string                `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string                `json:"end_date" validate:"required,datetime=2006-01-02"`
	Scoring   *models.ScoringConfig `json:"scoring,omitempty"`
	Active    bool                  `json:"active"`
}

// UpdateSchoolYearRequest carries mutable school year fields. Threshold and
// coefficient edits only affect future recomputation.
type UpdateSchoolYearRequest struct {
	Name    string                `json:"name" validate:"required"`
	Scoring *models.ScoringConfig `json:"scoring,omitempty"`
	Active  *bool                 `json:"active,omitempty"`
}

// SchoolYearService manages school years and their week registry.
type SchoolYearService struct {
	years     schoolYearRepo
	weeks     weekGenerator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSchoolYearService constructs SchoolYearService.
func NewSchoolYearService(years schoolYearRepo, weeks weekGenerator, validate *validator.Validate, logger *zap.Logger) *SchoolYearService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolYearService{years: years, weeks: weeks, validator: validate, logger: logger}
}

// List returns school years with pagination metadata.
func (s *SchoolYearService) List(ctx context.Context, filter models.SchoolYearFilter) ([]models.SchoolYear, *models.Pagination, error) {
	years, total, err := s.years.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list school years")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return years, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one school year.
func (s *SchoolYearService) Get(ctx context.Context, id string) (*models.SchoolYear, error) {
	year, err := s.years.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school year")
	}
	return year, nil
}

// Create registers a new school year with its scoring configuration.
func (s *SchoolYearService) Create(ctx context.Context, req CreateSchoolYearRequest) (*models.SchoolYear, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid start date format, expected YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid end date format, expected YYYY-MM-DD")
	}
	if !end.After(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must be after start date")
	}

	exists, err := s.years.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check school year name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "school year name already in use")
	}

	scoring := models.DefaultScoringConfig()
	if req.Scoring != nil {
		scoring = *req.Scoring
	}

	year := &models.SchoolYear{
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		Scoring:   scoring,
		Active:    req.Active,
	}
	if err := s.years.Create(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create school year")
	}
	return year, nil
}

// Update modifies a school year's name and scoring configuration. The date
// range stays fixed once created so existing weeks keep their anchors.
func (s *SchoolYearService) Update(ctx context.Context, id string, req UpdateSchoolYearRequest) (*models.SchoolYear, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	year, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.years.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check school year name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "school year name already in use")
	}

	year.Name = req.Name
	if req.Scoring != nil {
		year.Scoring = *req.Scoring
	}
	if req.Active != nil {
		year.Active = *req.Active
	}
	if err := s.years.Update(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update school year")
	}
	return year, nil
}

// Delete removes a school year that has no generated weeks.
func (s *SchoolYearService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.weeks.CountBySchoolYear(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count weeks")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "school year still has generated weeks")
	}
	if err := s.years.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete school year")
	}
	return nil
}

// GenerateWeeks creates the non-overlapping Monday-start weeks covering the
// school year's date range. The last week is clamped to the year end and the
// operation refuses to run twice for the same year.
func (s *SchoolYearService) GenerateWeeks(ctx context.Context, schoolYearID string) ([]models.Week, error) {
	year, err := s.Get(ctx, schoolYearID)
	if err != nil {
		return nil, err
	}

	count, err := s.weeks.CountBySchoolYear(ctx, schoolYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count weeks")
	}
	if count > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "weeks already generated for this school year")
	}

	weeks := buildWeeks(year)
	if len(weeks) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "school year range contains no full week start")
	}
	if err := s.weeks.BulkCreate(ctx, weeks); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist generated weeks")
	}

	s.logger.Info("generated weeks",
		zap.String("school_year_id", schoolYearID),
		zap.Int("count", len(weeks)),
	)
	return weeks, nil
}

// ListWeeks returns every week of a school year ordered by number.
func (s *SchoolYearService) ListWeeks(ctx context.Context, schoolYearID string) ([]models.Week, error) {
	if _, err := s.Get(ctx, schoolYearID); err != nil {
		return nil, err
	}
	weeks, err := s.weeks.ListBySchoolYear(ctx, schoolYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list weeks")
	}
	return weeks, nil
}

func buildWeeks(year *models.SchoolYear) []models.Week {
	start := firstMonday(year.StartDate)
	var weeks []models.Week
	number := 1
	for cursor := start; !cursor.After(year.EndDate); cursor = cursor.AddDate(0, 0, 7) {
		end := cursor.AddDate(0, 0, 6)
		if end.After(year.EndDate) {
			end = year.EndDate
		}
		weeks = append(weeks, models.Week{
			SchoolYearID: year.ID,
			WeekNumber:   number,
			StartDate:    cursor,
			EndDate:      end,
			Status:       models.StatusDraft,
		})
		number++
	}
	return weeks
}

func firstMonday(from time.Time) time.Time {
	cursor := from
	for cursor.Weekday() != time.Monday {
		cursor = cursor.AddDate(0, 0, 1)
	}
	return cursor
}
