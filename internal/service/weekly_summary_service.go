package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classtrack-api/internal/models"
	"github.com/noah-isme/classtrack-api/pkg/config"
	appErrors "github.com/noah-isme/classtrack-api/pkg/errors"
)

type weeklySummaryRepo interface {
	List(ctx context.Context, filter models.WeeklySummaryFilter) ([]models.WeeklySummary, int, error)
	FindByID(ctx context.Context, id string) (*models.WeeklySummary, error)
	FindByWeekClass(ctx context.Context, weekID, classID string) (*models.WeeklySummary, error)
	Upsert(ctx context.Context, summary *models.WeeklySummary) error
}

type disciplineReader interface {
	FindByWeekClass(ctx context.Context, weekID, classID string) (*models.DisciplineGrading, error)
}

type academicReader interface {
	FindByWeekClass(ctx context.Context, weekID, classID string) (*models.ClassAcademicGrading, error)
}

type violationWeekReader interface {
	ListByWeekClass(ctx context.Context, weekID, classID string) ([]models.ViolationDetail, error)
}

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// keyedMutex serializes work per string key. Regenerations for distinct
// (week, class) pairs run concurrently; two for the same pair do not.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// WeeklySummaryService composes the weekly standing of a class from its
// discipline grading, academic grading, and violation ledger.
type WeeklySummaryService struct {
	summaries  weeklySummaryRepo
	discipline disciplineReader
	academic   academicReader
	violations violationWeekReader
	weeks      weekReader
	years      schoolYearReader
	cache      summaryCache
	cacheCfg   config.SummariesConfig
	locks      *keyedMutex
	logger     *zap.Logger
}

// NewWeeklySummaryService constructs WeeklySummaryService.
func NewWeeklySummaryService(
	summaries weeklySummaryRepo,
	discipline disciplineReader,
	academic academicReader,
	violations violationWeekReader,
	weeks weekReader,
	years schoolYearReader,
	cache summaryCache,
	cacheCfg config.SummariesConfig,
	logger *zap.Logger,
) *WeeklySummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeeklySummaryService{
		summaries:  summaries,
		discipline: discipline,
		academic:   academic,
		violations: violations,
		weeks:      weeks,
		years:      years,
		cache:      cache,
		cacheCfg:   cacheCfg,
		locks:      newKeyedMutex(),
		logger:     logger,
	}
}

// List returns weekly summaries with pagination metadata.
func (s *WeeklySummaryService) List(ctx context.Context, filter models.WeeklySummaryFilter) ([]models.WeeklySummary, *models.Pagination, error) {
	summaries, total, err := s.summaries.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list weekly summaries")
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

// Get returns the summary of one (week, class) pair, served from cache when
// enabled.
func (s *WeeklySummaryService) Get(ctx context.Context, weekID, classID string) (*models.WeeklySummary, error) {
	key := weeklySummaryCacheKey(weekID, classID)
	if s.cacheEnabled() {
		var cached models.WeeklySummary
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !appErrors.HasCode(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("weekly summary cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	summary, err := s.summaries.FindByWeekClass(ctx, weekID, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "weekly summary not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly summary")
	}
	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, key, summary, s.cacheCfg.CacheTTL); err != nil {
			s.logger.Warn("weekly summary cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return summary, nil
}

// Regenerate rebuilds the summary of a (week, class) pair from its source
// records and fully replaces the stored document. A locked summary is left
// untouched and returned as is. Concurrent regenerations of the same pair
// are serialized.
func (s *WeeklySummaryService) Regenerate(ctx context.Context, weekID, classID, actor string) (*models.WeeklySummary, error) {
	unlock := s.locks.lock(weekID + "|" + classID)
	defer unlock()

	week, err := s.weeks.FindByID(ctx, weekID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "week not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week")
	}

	existing, err := s.summaries.FindByWeekClass(ctx, weekID, classID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly summary")
	}
	if existing != nil && existing.Status == models.StatusLocked {
		return existing, nil
	}
	if week.Status == models.StatusLocked {
		return nil, appErrors.Clone(appErrors.ErrLocked, "week is locked")
	}

	year, err := s.years.FindByID(ctx, week.SchoolYearID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school year")
	}

	discipline, err := s.discipline.FindByWeekClass(ctx, weekID, classID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load discipline grading")
	}
	academic, err := s.academic.FindByWeekClass(ctx, weekID, classID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic grading")
	}
	violations, err := s.violations.ListByWeekClass(ctx, weekID, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load violations")
	}

	summary := ComposeWeeklySummary(weekID, classID, discipline, academic, violations, year.Scoring)
	summary.GeneratedBy = &actor
	summary.GeneratedAt = time.Now().UTC()
	if existing != nil {
		summary.ID = existing.ID
		summary.Status = existing.Status
		summary.CreatedAt = existing.CreatedAt
	}

	if err := s.summaries.Upsert(ctx, summary); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store weekly summary")
	}
	s.InvalidateWeek(ctx, weekID)

	s.logger.Info("weekly summary regenerated",
		zap.String("week_id", weekID),
		zap.String("class_id", classID),
		zap.String("flag", string(summary.Flag)),
		zap.Int("total_score", summary.TotalScore),
	)
	return summary, nil
}

// InvalidateWeek drops every cached summary of a week.
func (s *WeeklySummaryService) InvalidateWeek(ctx context.Context, weekID string) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("summary:week:%s:*", weekID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("weekly summary cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

func (s *WeeklySummaryService) cacheEnabled() bool {
	return s.cache != nil && s.cacheCfg.CacheEnabled
}

func weeklySummaryCacheKey(weekID, classID string) string {
	return fmt.Sprintf("summary:week:%s:class:%s", weekID, classID)
}

// ComposeWeeklySummary builds the full summary document from its inputs. It
// is a pure function; composing twice from identical inputs yields an
// identical document.
func ComposeWeeklySummary(
	weekID, classID string,
	discipline *models.DisciplineGrading,
	academic *models.ClassAcademicGrading,
	violations []models.ViolationDetail,
	scoring models.ScoringConfig,
) *models.WeeklySummary {
	summary := &models.WeeklySummary{
		WeekID:  weekID,
		ClassID: classID,
		Status:  models.StatusDraft,
	}

	if discipline != nil {
		summary.ConductTotal = discipline.TotalWeeklyScore
		summary.MaxPossibleScore = discipline.MaxPossibleScore
		summary.Details.ConductItems = make([]models.ConductItemBreakdown, len(discipline.Items))
		for i, item := range discipline.Items {
			summary.Details.ConductItems[i] = models.ConductItemBreakdown{
				Name:        item.Name,
				MaxPossible: item.MaxScore * len(item.ApplicableDays),
				Score:       item.TotalScore,
			}
		}
	}

	if academic != nil {
		summary.AcademicTotal = academic.FinalWeeklyScore
		summary.GoodDayCount = academic.GoodDayCount
		summary.Details.AcademicDays = make([]models.AcademicDayBreakdown, len(academic.DayGradings))
		lessons := models.LessonStats{TotalLessons: academic.TotalWeeklyPeriods}
		for i, day := range academic.DayGradings {
			summary.Details.AcademicDays[i] = models.AcademicDayBreakdown{
				Day:          day.Day,
				TotalPeriods: day.TotalPeriods,
				DailyScore:   day.DailyScore,
				IsGoodDay:    day.IsGoodDay,
			}
			lessons.Tiers = lessons.Tiers.Add(day.Tiers)
		}
		summary.Details.Lessons = lessons
	}

	summary.BonusTotal = summary.GoodDayCount * scoring.Bonus.GoodDayBonus
	if summary.GoodDayCount >= 4 {
		summary.BonusTotal += scoring.Bonus.GoodWeekBonus
	}

	summary.Details.Violations = composeViolationBreakdown(violations)
	summary.PenaltyTotal = summary.Details.Violations.PenaltyTotal

	total := summary.ConductTotal + summary.BonusTotal - summary.PenaltyTotal
	if total < 0 {
		total = 0
	}
	summary.TotalScore = total

	if summary.MaxPossibleScore > 0 {
		summary.Percentage = roundHalfUp(float64(total) / float64(summary.MaxPossibleScore) * 100)
	} else {
		summary.Percentage = 0
	}
	summary.Flag = ClassifyFlag(float64(summary.Percentage), scoring.Thresholds)

	return summary
}

func composeViolationBreakdown(violations []models.ViolationDetail) models.ViolationBreakdown {
	breakdown := models.ViolationBreakdown{Total: len(violations)}
	if len(violations) == 0 {
		return breakdown
	}

	breakdown.ByStatus = make(map[string]int)
	byType := make(map[string]*models.ViolationTypeCount)
	byStudent := make(map[string]*models.StudentViolationCount)

	for _, v := range violations {
		breakdown.ByStatus[string(v.Status)]++
		if v.Status == models.ViolationApproved {
			breakdown.PenaltyTotal += v.DefaultPenalty
		}

		if entry, ok := byType[v.ViolationTypeID]; ok {
			entry.Count++
		} else {
			byType[v.ViolationTypeID] = &models.ViolationTypeCount{
				ViolationTypeID: v.ViolationTypeID,
				Name:            v.ViolationTypeName,
				Count:           1,
			}
		}

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

	breakdown.ByType = make([]models.ViolationTypeCount, 0, len(byType))
	for _, entry := range byType {
		breakdown.ByType = append(breakdown.ByType, *entry)
	}
	sort.Slice(breakdown.ByType, func(i, j int) bool {
		if breakdown.ByType[i].Count != breakdown.ByType[j].Count {
			return breakdown.ByType[i].Count > breakdown.ByType[j].Count
		}
		return breakdown.ByType[i].ViolationTypeID < breakdown.ByType[j].ViolationTypeID
	})

	breakdown.TopViolators = rankViolators(byStudent, 5)
	return breakdown
}

// rankViolators orders students by violation count descending with ties
// broken by student id ascending, truncated to limit.
func rankViolators(byStudent map[string]*models.StudentViolationCount, limit int) []models.StudentViolationCount {
	ranked := make([]models.StudentViolationCount, 0, len(byStudent))
	for _, entry := range byStudent {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].StudentID < ranked[j].StudentID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
