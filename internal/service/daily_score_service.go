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

type dailyScoreRepo interface {
	UpsertConduct(ctx context.Context, score *models.DailyConductScore) error
	UpsertAcademic(ctx context.Context, score *models.DailyAcademicScore) error
	ListConduct(ctx context.Context, filter models.DailyScoreFilter) ([]models.DailyConductScore, error)
	ListAcademic(ctx context.Context, filter models.DailyScoreFilter) ([]models.DailyAcademicScore, error)
}

type weekReader interface {
	FindByID(ctx context.Context, id string) (*models.Week, error)
}

type schoolYearReader interface {
	FindByID(ctx context.Context, id string) (*models.SchoolYear, error)
}

// ConductItemEntry is one checklist item's violation count for a day.
type ConductItemEntry struct {
	ItemName   string `json:"item_name" validate:"required"`
	Violations int    `json:"violations" validate:"gte=0"`
}

// ComputeConductScoreRequest records one class's conduct for a calendar day.
type ComputeConductScoreRequest struct {
	WeekID  string             `json:"week_id" validate:"required"`
	ClassID string             `json:"class_id" validate:"required"`
	Date    string             `json:"date" validate:"required,datetime=2006-01-02"`
	Items   []ConductItemEntry `json:"items" validate:"required,min=1,dive"`
}

// ComputeAcademicScoreRequest records one class's lesson quality for a day.
type ComputeAcademicScoreRequest struct {
	WeekID  string            `json:"week_id" validate:"required"`
	ClassID string            `json:"class_id" validate:"required"`
	Date    string            `json:"date" validate:"required,datetime=2006-01-02"`
	Tiers   models.TierCounts `json:"tiers"`
}

// DailyScoreService computes and stores per-day conduct and academic records.
type DailyScoreService struct {
	scores    dailyScoreRepo
	weeks     weekReader
	years     schoolYearReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDailyScoreService constructs DailyScoreService.
func NewDailyScoreService(scores dailyScoreRepo, weeks weekReader, years schoolYearReader, validate *validator.Validate, logger *zap.Logger) *DailyScoreService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyScoreService{scores: scores, weeks: weeks, years: years, validator: validate, logger: logger}
}

// ComputeConduct scores the day's checklist and upserts the record keyed by
// (week, class, date).
func (s *DailyScoreService) ComputeConduct(ctx context.Context, req ComputeConductScoreRequest, actor string) (*models.DailyConductScore, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	week, year, date, err := s.resolveWritableDay(ctx, req.WeekID, req.Date)
	if err != nil {
		return nil, err
	}

	items := make(models.ConductItemScores, len(req.Items))
	for i, item := range req.Items {
		items[i] = models.ConductItemScore{ItemName: item.ItemName, Violations: item.Violations}
	}
	scored, total := ScoreConductDay(items, year.Scoring.Conduct.MaxPointsPerItem)

	record := &models.DailyConductScore{
		WeekID:     week.ID,
		ClassID:    req.ClassID,
		Date:       date,
		Items:      scored,
		TotalScore: total,
		RecordedBy: &actor,
	}
	if err := s.scores.UpsertConduct(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store conduct score")
	}
	return record, nil
}

// ComputeAcademic scores the day's lesson tiers and upserts the record keyed
// by (week, class, date).
func (s *DailyScoreService) ComputeAcademic(ctx context.Context, req ComputeAcademicScoreRequest, actor string) (*models.DailyAcademicScore, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if req.Tiers.Excellent < 0 || req.Tiers.Good < 0 || req.Tiers.Average < 0 || req.Tiers.Poor < 0 || req.Tiers.Failing < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tier counts must not be negative")
	}
	week, year, date, err := s.resolveWritableDay(ctx, req.WeekID, req.Date)
	if err != nil {
		return nil, err
	}

	record := ScoreAcademicDay(req.Tiers, year.Scoring.Coefficients, year.Scoring.Bonus.GoodDayBonus)
	record.WeekID = week.ID
	record.ClassID = req.ClassID
	record.Date = date
	record.RecordedBy = &actor

	if err := s.scores.UpsertAcademic(ctx, &record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store academic score")
	}
	return &record, nil
}

// ListConduct returns a class's conduct records for a week.
func (s *DailyScoreService) ListConduct(ctx context.Context, filter models.DailyScoreFilter) ([]models.DailyConductScore, error) {
	scores, err := s.scores.ListConduct(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list conduct scores")
	}
	return scores, nil
}

// ListAcademic returns a class's academic records for a week.
func (s *DailyScoreService) ListAcademic(ctx context.Context, filter models.DailyScoreFilter) ([]models.DailyAcademicScore, error) {
	scores, err := s.scores.ListAcademic(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic scores")
	}
	return scores, nil
}

// resolveWritableDay loads the week and its school year, rejecting locked
// weeks and dates outside the week's range.
func (s *DailyScoreService) resolveWritableDay(ctx context.Context, weekID, rawDate string) (*models.Week, *models.SchoolYear, time.Time, error) {
	week, err := s.weeks.FindByID(ctx, weekID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, time.Time{}, appErrors.Clone(appErrors.ErrNotFound, "week not found")
		}
		return nil, nil, time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week")
	}
	if week.Status == models.StatusLocked {
		return nil, nil, time.Time{}, appErrors.Clone(appErrors.ErrLocked, "week is locked")
	}

	date, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		return nil, nil, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	if !week.ContainsDate(date) {
		return nil, nil, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date falls outside the week's range")
	}

	year, err := s.years.FindByID(ctx, week.SchoolYearID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, time.Time{}, appErrors.Clone(appErrors.ErrNotFound, "school year not found")
		}
		return nil, nil, time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school year")
	}
	return week, year, date, nil
}
