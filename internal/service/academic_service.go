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

type academicRepo interface {
	List(ctx context.Context, filter models.AcademicGradingFilter) ([]models.ClassAcademicGrading, int, error)
	FindByID(ctx context.Context, id string) (*models.ClassAcademicGrading, error)
	FindByWeekClass(ctx context.Context, weekID, classID string) (*models.ClassAcademicGrading, error)
	Upsert(ctx context.Context, grading *models.ClassAcademicGrading) error
	Delete(ctx context.Context, id string) error
}

// AcademicDayEntry carries one weekday's tier counts.
type AcademicDayEntry struct {
	Day   string            `json:"day" validate:"required"`
	Tiers models.TierCounts `json:"tiers"`
}

// UpsertAcademicGradingRequest replaces the day gradings of a (week, class)
// academic grading.
type UpsertAcademicGradingRequest struct {
	WeekID  string             `json:"week_id" validate:"required"`
	ClassID string             `json:"class_id" validate:"required"`
	Days    []AcademicDayEntry `json:"days" validate:"required,min=1,dive"`
}

// AcademicService maintains weekly academic gradings.
type AcademicService struct {
	gradings  academicRepo
	weeks     weekReader
	years     schoolYearReader
	summaries summaryRefresher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAcademicService constructs AcademicService.
func NewAcademicService(gradings academicRepo, weeks weekReader, years schoolYearReader, summaries summaryRefresher, validate *validator.Validate, logger *zap.Logger) *AcademicService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicService{gradings: gradings, weeks: weeks, years: years, summaries: summaries, validator: validate, logger: logger}
}

// List returns academic gradings with pagination metadata.
func (s *AcademicService) List(ctx context.Context, filter models.AcademicGradingFilter) ([]models.ClassAcademicGrading, *models.Pagination, error) {
	gradings, total, err := s.gradings.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic gradings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return gradings, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one academic grading.
func (s *AcademicService) Get(ctx context.Context, id string) (*models.ClassAcademicGrading, error) {
	grading, err := s.gradings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic grading not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic grading")
	}
	return grading, nil
}

// Upsert replaces the grading's day entries and recomputes every derived
// field. Both the owning week and the grading itself must be writable.
func (s *AcademicService) Upsert(ctx context.Context, req UpsertAcademicGradingRequest, actor string) (*models.ClassAcademicGrading, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	for _, day := range req.Days {
		tiers := day.Tiers
		if tiers.Excellent < 0 || tiers.Good < 0 || tiers.Average < 0 || tiers.Poor < 0 || tiers.Failing < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "tier counts must not be negative")
		}
	}
	week, year, err := s.resolveWritableWeek(ctx, req.WeekID)
	if err != nil {
		return nil, err
	}

	existing, err := s.gradings.FindByWeekClass(ctx, week.ID, req.ClassID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic grading")
	}
	if existing != nil && existing.Status == models.StatusLocked {
		return nil, appErrors.Clone(appErrors.ErrLocked, "academic grading is locked")
	}

	days := make(models.AcademicDayGradings, len(req.Days))
	for i, day := range req.Days {
		days[i] = models.AcademicDayGrading{Day: day.Day, Tiers: day.Tiers}
	}

	grading := &models.ClassAcademicGrading{
		WeekID:      week.ID,
		ClassID:     req.ClassID,
		DayGradings: days,
	}
	if existing != nil {
		grading.ID = existing.ID
		grading.Status = existing.Status
		grading.CreatedBy = existing.CreatedBy
		grading.CreatedAt = existing.CreatedAt
	} else {
		grading.CreatedBy = &actor
	}
	grading.UpdatedBy = &actor

	RecomputeAcademic(grading, year.Scoring.Coefficients)

	if err := s.gradings.Upsert(ctx, grading); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store academic grading")
	}
	s.refreshSummary(ctx, week.ID, req.ClassID, actor)
	return grading, nil
}

// Recompute reruns the derived-field calculation on the stored day gradings.
func (s *AcademicService) Recompute(ctx context.Context, id, actor string) (*models.ClassAcademicGrading, error) {
	grading, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	week, year, err := s.resolveWritableWeek(ctx, grading.WeekID)
	if err != nil {
		return nil, err
	}
	if grading.Status == models.StatusLocked {
		return nil, appErrors.Clone(appErrors.ErrLocked, "academic grading is locked")
	}

	RecomputeAcademic(grading, year.Scoring.Coefficients)
	grading.UpdatedBy = &actor

	if err := s.gradings.Upsert(ctx, grading); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store academic grading")
	}
	s.refreshSummary(ctx, week.ID, grading.ClassID, actor)
	return grading, nil
}

// Delete removes an academic grading that is not locked.
func (s *AcademicService) Delete(ctx context.Context, id, actor string) error {
	grading, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if grading.Status == models.StatusLocked {
		return appErrors.Clone(appErrors.ErrLocked, "academic grading is locked")
	}
	if err := s.gradings.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete academic grading")
	}
	s.refreshSummary(ctx, grading.WeekID, grading.ClassID, actor)
	return nil
}

func (s *AcademicService) resolveWritableWeek(ctx context.Context, weekID string) (*models.Week, *models.SchoolYear, error) {
	week, err := s.weeks.FindByID(ctx, weekID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "week not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week")
	}
	if week.Status == models.StatusLocked {
		return nil, nil, appErrors.Clone(appErrors.ErrLocked, "week is locked")
	}
	year, err := s.years.FindByID(ctx, week.SchoolYearID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "school year not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school year")
	}
	return week, year, nil
}

func (s *AcademicService) refreshSummary(ctx context.Context, weekID, classID, actor string) {
	if s.summaries == nil {
		return
	}
	if _, err := s.summaries.Regenerate(ctx, weekID, classID, actor); err != nil {
		s.logger.Warn("weekly summary refresh failed",
			zap.String("week_id", weekID),
			zap.String("class_id", classID),
			zap.Error(err),
		)
	}
}
