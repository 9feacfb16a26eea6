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

type disciplineRepo interface {
	List(ctx context.Context, filter models.DisciplineGradingFilter) ([]models.DisciplineGrading, int, error)
	FindByID(ctx context.Context, id string) (*models.DisciplineGrading, error)
	FindByWeekClass(ctx context.Context, weekID, classID string) (*models.DisciplineGrading, error)
	Upsert(ctx context.Context, grading *models.DisciplineGrading) error
	Delete(ctx context.Context, id string) error
}

type summaryRefresher interface {
	Regenerate(ctx context.Context, weekID, classID, actor string) (*models.WeeklySummary, error)
}

// DisciplineDayEntry carries one weekday's input for a discipline item.
type DisciplineDayEntry struct {
	Day                 string   `json:"day" validate:"required"`
	Violations          int      `json:"violations" validate:"gte=0"`
	Score               int      `json:"score" validate:"gte=0"`
	ViolatingStudentIDs []string `json:"violating_student_ids,omitempty"`
}

// DisciplineItemEntry carries one discipline criterion's weekly input.
type DisciplineItemEntry struct {
	Name           string               `json:"name" validate:"required"`
	MaxScore       int                  `json:"max_score" validate:"gt=0"`
	ApplicableDays []string             `json:"applicable_days" validate:"required,min=1"`
	DayScores      []DisciplineDayEntry `json:"day_scores" validate:"dive"`
}

// UpsertDisciplineGradingRequest replaces the items of a (week, class)
// discipline grading.
type UpsertDisciplineGradingRequest struct {
	WeekID  string                `json:"week_id" validate:"required"`
	ClassID string                `json:"class_id" validate:"required"`
	Items   []DisciplineItemEntry `json:"items" validate:"required,min=1,dive"`
}

// DisciplineService maintains weekly discipline gradings.
type DisciplineService struct {
	gradings  disciplineRepo
	weeks     weekReader
	years     schoolYearReader
	summaries summaryRefresher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDisciplineService constructs DisciplineService.
func NewDisciplineService(gradings disciplineRepo, weeks weekReader, years schoolYearReader, summaries summaryRefresher, validate *validator.Validate, logger *zap.Logger) *DisciplineService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DisciplineService{gradings: gradings, weeks: weeks, years: years, summaries: summaries, validator: validate, logger: logger}
}

// List returns discipline gradings with pagination metadata.
func (s *DisciplineService) List(ctx context.Context, filter models.DisciplineGradingFilter) ([]models.DisciplineGrading, *models.Pagination, error) {
	gradings, total, err := s.gradings.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list discipline gradings")
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

// Get returns one discipline grading.
func (s *DisciplineService) Get(ctx context.Context, id string) (*models.DisciplineGrading, error) {
	grading, err := s.gradings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "discipline grading not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load discipline grading")
	}
	return grading, nil
}

// Upsert replaces the grading's items and recomputes every derived field.
// Both the owning week and the grading itself must be writable.
func (s *DisciplineService) Upsert(ctx context.Context, req UpsertDisciplineGradingRequest, actor string) (*models.DisciplineGrading, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	week, year, err := s.resolveWritableWeek(ctx, req.WeekID)
	if err != nil {
		return nil, err
	}

	existing, err := s.gradings.FindByWeekClass(ctx, week.ID, req.ClassID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load discipline grading")
	}
	if existing != nil && existing.Status == models.StatusLocked {
		return nil, appErrors.Clone(appErrors.ErrLocked, "discipline grading is locked")
	}

	items := make(models.DisciplineItems, len(req.Items))
	for i, item := range req.Items {
		days := make([]models.DisciplineDayScore, len(item.DayScores))
		for j, day := range item.DayScores {
			days[j] = models.DisciplineDayScore{
				Day:                 day.Day,
				Violations:          day.Violations,
				Score:               day.Score,
				ViolatingStudentIDs: day.ViolatingStudentIDs,
			}
		}
		items[i] = models.DisciplineItem{
			Name:           item.Name,
			MaxScore:       item.MaxScore,
			ApplicableDays: item.ApplicableDays,
			DayScores:      days,
		}
	}

	grading := &models.DisciplineGrading{
		WeekID:  week.ID,
		ClassID: req.ClassID,
		Items:   items,
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

	RecomputeDiscipline(grading, year.Scoring.Thresholds)

	if err := s.gradings.Upsert(ctx, grading); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store discipline grading")
	}
	s.refreshSummary(ctx, week.ID, req.ClassID, actor)
	return grading, nil
}

// Recompute reruns the derived-field calculation on the stored items. The
// result is identical when the items have not changed.
func (s *DisciplineService) Recompute(ctx context.Context, id, actor string) (*models.DisciplineGrading, error) {
	grading, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	week, year, err := s.resolveWritableWeek(ctx, grading.WeekID)
	if err != nil {
		return nil, err
	}
	if grading.Status == models.StatusLocked {
		return nil, appErrors.Clone(appErrors.ErrLocked, "discipline grading is locked")
	}

	RecomputeDiscipline(grading, year.Scoring.Thresholds)
	grading.UpdatedBy = &actor

	if err := s.gradings.Upsert(ctx, grading); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store discipline grading")
	}
	s.refreshSummary(ctx, week.ID, grading.ClassID, actor)
	return grading, nil
}

// Delete removes a discipline grading that is not locked.
func (s *DisciplineService) Delete(ctx context.Context, id, actor string) error {
	grading, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if grading.Status == models.StatusLocked {
		return appErrors.Clone(appErrors.ErrLocked, "discipline grading is locked")
	}
	if err := s.gradings.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete discipline grading")
	}
	s.refreshSummary(ctx, grading.WeekID, grading.ClassID, actor)
	return nil
}

func (s *DisciplineService) resolveWritableWeek(ctx context.Context, weekID string) (*models.Week, *models.SchoolYear, error) {
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

// refreshSummary keeps the weekly summary in step with grading changes. A
// failed refresh is logged, never surfaced; the summary can always be
// regenerated on demand.
func (s *DisciplineService) refreshSummary(ctx context.Context, weekID, classID, actor string) {
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
