package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classtrack-api/internal/models"
	appErrors "github.com/noah-isme/classtrack-api/pkg/errors"
)

type monthlySummaryRepo interface {
	List(ctx context.Context, filter models.MonthlySummaryFilter) ([]models.MonthlySummary, int, error)
	FindByID(ctx context.Context, id string) (*models.MonthlySummary, error)
	FindByKey(ctx context.Context, schoolYearID string, month, year int, classID string) (*models.MonthlySummary, error)
	Upsert(ctx context.Context, summary *models.MonthlySummary) error
}

type weekLister interface {
	ListBySchoolYear(ctx context.Context, schoolYearID string) ([]models.Week, error)
}

type weeklySummaryBatchReader interface {
	ListByWeekIDs(ctx context.Context, weekIDs []string, classID string) ([]models.WeeklySummary, error)
}

type violationBatchReader interface {
	ListByWeekIDs(ctx context.Context, weekIDs []string, classID string) ([]models.ViolationDetail, error)
}

// MonthlySummaryService rolls the weekly summaries of a calendar month into
// one monthly record per class.
type MonthlySummaryService struct {
	summaries  monthlySummaryRepo
	weeklies   weeklySummaryBatchReader
	weeks      weekLister
	violations violationBatchReader
	years      schoolYearReader
	logger     *zap.Logger
}

// NewMonthlySummaryService constructs MonthlySummaryService.
func NewMonthlySummaryService(
	summaries monthlySummaryRepo,
	weeklies weeklySummaryBatchReader,
	weeks weekLister,
	violations violationBatchReader,
	years schoolYearReader,
	logger *zap.Logger,
) *MonthlySummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonthlySummaryService{
		summaries:  summaries,
		weeklies:   weeklies,
		weeks:      weeks,
		violations: violations,
		years:      years,
		logger:     logger,
	}
}

// List returns monthly summaries with pagination metadata.
func (s *MonthlySummaryService) List(ctx context.Context, filter models.MonthlySummaryFilter) ([]models.MonthlySummary, *models.Pagination, error) {
	summaries, total, err := s.summaries.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list monthly summaries")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return summaries, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one monthly summary.
func (s *MonthlySummaryService) Get(ctx context.Context, id string) (*models.MonthlySummary, error) {
	summary, err := s.summaries.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "monthly summary not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load monthly summary")
	}
	return summary, nil
}

// Regenerate rebuilds the monthly record of a class from the weekly summaries
// of every week starting in the target month, fully replacing any record
// stored under the same (school year, month, year, class) key.
func (s *MonthlySummaryService) Regenerate(ctx context.Context, schoolYearID string, month, year int, classID, actor string) (*models.MonthlySummary, error) {
	if month < 1 || month > 12 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	schoolYear, err := s.years.FindByID(ctx, schoolYearID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school year")
	}

	weeks, err := s.weeks.ListBySchoolYear(ctx, schoolYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list weeks")
	}
	monthWeeks := make([]models.Week, 0, len(weeks))
	weekIDs := make([]string, 0, len(weeks))
	for _, w := range weeks {
		if int(w.StartDate.Month()) == month && w.StartDate.Year() == year {
			monthWeeks = append(monthWeeks, w)
			weekIDs = append(weekIDs, w.ID)
		}
	}
	if len(monthWeeks) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no weeks start in the requested month")
	}

	weeklies, err := s.weeklies.ListByWeekIDs(ctx, weekIDs, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly summaries")
	}
	violations, err := s.violations.ListByWeekIDs(ctx, weekIDs, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load violations")
	}

	summary := ComposeMonthlySummary(schoolYearID, classID, month, year, monthWeeks, weeklies, violations, schoolYear.Scoring.Thresholds)
	summary.GeneratedBy = &actor
	summary.GeneratedAt = time.Now().UTC()

	existing, err := s.summaries.FindByKey(ctx, schoolYearID, month, year, classID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load monthly summary")
	}
	if existing != nil {
		summary.ID = existing.ID
		summary.CreatedAt = existing.CreatedAt
	}

	if err := s.summaries.Upsert(ctx, summary); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store monthly summary")
	}

	s.logger.Info("monthly summary regenerated",
		zap.String("school_year_id", schoolYearID),
		zap.String("class_id", classID),
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int("week_count", summary.WeekCount),
		zap.String("flag", string(summary.Flag)),
	)
	return summary, nil
}

// ComposeMonthlySummary builds the monthly document from the month's weeks,
// their weekly summaries, and the month's violation records. The flag is
// classified against the absolute total score; weekly summaries work in
// percentages, monthly ones in raw points.
func ComposeMonthlySummary(
	schoolYearID, classID string,
	month, year int,
	weeks []models.Week,
	weeklies []models.WeeklySummary,
	violations []models.ViolationDetail,
	thresholds models.Thresholds,
) *models.MonthlySummary {
	summary := &models.MonthlySummary{
		SchoolYearID: schoolYearID,
		ClassID:      classID,
		Month:        month,
		Year:         year,
		WeekCount:    len(weeks),
	}

	byWeek := make(map[string]models.WeeklySummary, len(weeklies))
	for _, w := range weeklies {
		byWeek[w.WeekID] = w
	}

	var conductTotal, academicTotal float64
	for _, weekly := range weeklies {
		conductTotal += float64(weekly.ConductTotal)
		academicTotal += weekly.AcademicTotal
		summary.Details.Bonus.GoodDays += weekly.GoodDayCount
		summary.Details.Bonus.Total += weekly.BonusTotal
	}

	summary.Details.Conduct = models.MonthlySection{
		Total:         conductTotal,
		WeeklyAverage: weeklyAverage(conductTotal, len(weeks)),
	}
	summary.Details.Academic = models.MonthlySection{
		Total:         academicTotal,
		WeeklyAverage: weeklyAverage(academicTotal, len(weeks)),
	}

	summary.Details.Violations = composeMonthlyViolations(violations)

	for _, week := range weeks {
		weekly, ok := byWeek[week.ID]
		if !ok {
			continue
		}
		standing := models.WeekStanding{
			WeekID:     week.ID,
			WeekNumber: week.WeekNumber,
			TotalScore: weekly.TotalScore,
			Flag:       weekly.Flag,
		}
		switch weekly.Flag {
		case models.FlagRed, models.FlagGreen:
			summary.Details.HonorRoll = append(summary.Details.HonorRoll, standing)
		default:
			summary.Details.CriticalList = append(summary.Details.CriticalList, standing)
		}
	}

	summary.TotalScore = conductTotal + academicTotal + float64(summary.Details.Bonus.Total)
	summary.Flag = ClassifyFlag(summary.TotalScore, thresholds)

	return summary
}

func composeMonthlyViolations(violations []models.ViolationDetail) models.MonthlyViolations {
	result := models.MonthlyViolations{Total: len(violations)}
	if len(violations) == 0 {
		return result
	}

	result.ByStatus = make(map[string]int)
	byStudent := make(map[string]*models.StudentViolationCount)
	for _, v := range violations {
		result.ByStatus[string(v.Status)]++
		if entry, ok := byStudent[v.StudentID]; ok {
			entry.Count++
		} else {
			byStudent[v.StudentID] = &models.StudentViolationCount{
				StudentID:   v.StudentID,
				StudentName: v.StudentName,
				Count:       1,
			}
		}
	}
	result.TopViolators = rankViolators(byStudent, 10)
	return result
}

func weeklyAverage(total float64, weekCount int) int {
	if weekCount == 0 {
		return 0
	}
	return roundHalfUp(total / float64(weekCount))
}
