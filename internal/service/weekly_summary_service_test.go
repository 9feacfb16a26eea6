package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/classtrack-api/internal/models"
	"github.com/noah-isme/classtrack-api/pkg/config"
	appErrors "github.com/noah-isme/classtrack-api/pkg/errors"
)

type mockWeeklySummaryRepo struct {
	summaries map[string]*models.WeeklySummary
	upserts   int
}

func weeklyKey(weekID, classID string) string { return weekID + "|" + classID }

func (m *mockWeeklySummaryRepo) List(ctx context.Context, filter models.WeeklySummaryFilter) ([]models.WeeklySummary, int, error) {
	return nil, 0, nil
}

func (m *mockWeeklySummaryRepo) FindByID(ctx context.Context, id string) (*models.WeeklySummary, error) {
	for _, s := range m.summaries {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockWeeklySummaryRepo) FindByWeekClass(ctx context.Context, weekID, classID string) (*models.WeeklySummary, error) {
	if s, ok := m.summaries[weeklyKey(weekID, classID)]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockWeeklySummaryRepo) Upsert(ctx context.Context, summary *models.WeeklySummary) error {
	if m.summaries == nil {
		m.summaries = make(map[string]*models.WeeklySummary)
	}
	if summary.ID == "" {
		summary.ID = "ws1"
	}
	m.upserts++
	m.summaries[weeklyKey(summary.WeekID, summary.ClassID)] = summary
	return nil
}

type mockDisciplineReader struct {
	grading *models.DisciplineGrading
}

func (m *mockDisciplineReader) FindByWeekClass(ctx context.Context, weekID, classID string) (*models.DisciplineGrading, error) {
	if m.grading == nil {
		return nil, sql.ErrNoRows
	}
	return m.grading, nil
}

type mockAcademicReader struct {
	grading *models.ClassAcademicGrading
}

func (m *mockAcademicReader) FindByWeekClass(ctx context.Context, weekID, classID string) (*models.ClassAcademicGrading, error) {
	if m.grading == nil {
		return nil, sql.ErrNoRows
	}
	return m.grading, nil
}

type mockViolationWeekReader struct {
	violations []models.ViolationDetail
}

func (m *mockViolationWeekReader) ListByWeekClass(ctx context.Context, weekID, classID string) ([]models.ViolationDetail, error) {
	return m.violations, nil
}

type mockSummaryCache struct {
	patterns []string
}

func (m *mockSummaryCache) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (m *mockSummaryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (m *mockSummaryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

func approvedViolation(studentID, studentName string, penalty int) models.ViolationDetail {
	return models.ViolationDetail{
		ViolationLog:   models.ViolationLog{StudentID: studentID, ViolationTypeID: "vt1", Status: models.ViolationApproved},
		StudentName:    studentName,
		DefaultPenalty: penalty,
	}
}

func TestComposeWeeklySummaryPenaltyMath(t *testing.T) {
	discipline := &models.DisciplineGrading{
		TotalWeeklyScore: 77,
		MaxPossibleScore: 80,
		Items: models.DisciplineItems{
			{Name: "Uniform", MaxScore: 8, ApplicableDays: []string{"Mon", "Tue", "Wed", "Thu", "Fri"}, TotalScore: 37},
			{Name: "Punctuality", MaxScore: 8, ApplicableDays: []string{"Mon", "Tue", "Wed", "Thu", "Fri"}, TotalScore: 40},
		},
	}
	academic := &models.ClassAcademicGrading{GoodDayCount: 2, FinalWeeklyScore: 410}
	violations := []models.ViolationDetail{
		approvedViolation("s1", "An", 5),
		approvedViolation("s1", "An", 12),
		{ViolationLog: models.ViolationLog{StudentID: "s2", Status: models.ViolationPending}, StudentName: "Binh", DefaultPenalty: 50},
	}

	summary := ComposeWeeklySummary("w1", "c1", discipline, academic, violations, models.DefaultScoringConfig())

	assert.Equal(t, 77, summary.ConductTotal)
	// Two good days at the default 20-point bonus.
	assert.Equal(t, 40, summary.BonusTotal)
	// Only approved violations count toward the penalty.
	assert.Equal(t, 17, summary.PenaltyTotal)
	assert.Equal(t, 100, summary.TotalScore)
	// 100/80 of the possible conduct points.
	assert.Equal(t, 125, summary.Percentage)
	assert.Equal(t, models.FlagRed, summary.Flag)

	assert.Equal(t, 3, summary.Details.Violations.Total)
	assert.Equal(t, 2, summary.Details.Violations.ByStatus["Approved"])
	assert.Equal(t, 1, summary.Details.Violations.ByStatus["Pending"])
	require.Len(t, summary.Details.Violations.TopViolators, 2)
	assert.Equal(t, "s1", summary.Details.Violations.TopViolators[0].StudentID)
	assert.Equal(t, 2, summary.Details.Violations.TopViolators[0].Count)
}

func TestComposeWeeklySummaryPercentageRounding(t *testing.T) {
	// 102/80 sits on the .5 boundary in exact arithmetic but lands just
	// below it in float64, so the percentage rounds down to 127.
	discipline := &models.DisciplineGrading{TotalWeeklyScore: 102, MaxPossibleScore: 80}

	summary := ComposeWeeklySummary("w1", "c1", discipline, nil, nil, models.DefaultScoringConfig())

	assert.Equal(t, 102, summary.TotalScore)
	assert.Equal(t, 127, summary.Percentage)
}

func TestComposeWeeklySummaryGoodWeekBonus(t *testing.T) {
	scoring := models.DefaultScoringConfig()
	scoring.Bonus = models.BonusConfig{GoodDayBonus: 20, GoodWeekBonus: 80}

	academic := &models.ClassAcademicGrading{GoodDayCount: 4}
	summary := ComposeWeeklySummary("w1", "c1", nil, academic, nil, scoring)

	// Four good days earn their own bonus plus the good-week bonus.
	assert.Equal(t, 4*20+80, summary.BonusTotal)

	academic.GoodDayCount = 3
	summary = ComposeWeeklySummary("w1", "c1", nil, academic, nil, scoring)
	assert.Equal(t, 60, summary.BonusTotal)
}

func TestComposeWeeklySummaryFloorsAtZero(t *testing.T) {
	discipline := &models.DisciplineGrading{TotalWeeklyScore: 10, MaxPossibleScore: 80}
	violations := []models.ViolationDetail{approvedViolation("s1", "An", 100)}

	summary := ComposeWeeklySummary("w1", "c1", discipline, nil, violations, models.DefaultScoringConfig())

	assert.Equal(t, 0, summary.TotalScore)
	assert.Equal(t, 0, summary.Percentage)
	assert.Equal(t, models.FlagNone, summary.Flag)
}

func TestComposeWeeklySummaryNoDiscipline(t *testing.T) {
	summary := ComposeWeeklySummary("w1", "c1", nil, nil, nil, models.DefaultScoringConfig())

	assert.Equal(t, 0, summary.MaxPossibleScore)
	assert.Equal(t, 0, summary.Percentage)
	assert.Equal(t, models.FlagNone, summary.Flag)
}

func TestComposeWeeklySummaryDeterministic(t *testing.T) {
	discipline := &models.DisciplineGrading{TotalWeeklyScore: 60, MaxPossibleScore: 80}
	academic := &models.ClassAcademicGrading{GoodDayCount: 1, FinalWeeklyScore: 123.4}
	violations := []models.ViolationDetail{approvedViolation("s1", "An", 5), approvedViolation("s2", "Binh", 5)}

	first := ComposeWeeklySummary("w1", "c1", discipline, academic, violations, models.DefaultScoringConfig())
	second := ComposeWeeklySummary("w1", "c1", discipline, academic, violations, models.DefaultScoringConfig())
	assert.Equal(t, first, second)
}

func newWeeklySummaryFixture(t *testing.T) (*WeeklySummaryService, *mockWeeklySummaryRepo, *mockWeekRepo, *mockSummaryCache) {
	t.Helper()
	summaries := &mockWeeklySummaryRepo{}
	weeks := &mockWeekRepo{weeks: map[string]*models.Week{"w1": {
		ID:           "w1",
		SchoolYearID: "sy1",
		Status:       models.StatusApproved,
		StartDate:    mustDate(t, "2026-09-07"),
		EndDate:      mustDate(t, "2026-09-13"),
	}}}
	years := &mockSchoolYearRepo{years: map[string]*models.SchoolYear{"sy1": {
		ID:      "sy1",
		Scoring: models.DefaultScoringConfig(),
	}}}
	cache := &mockSummaryCache{}
	svc := NewWeeklySummaryService(
		summaries,
		&mockDisciplineReader{grading: &models.DisciplineGrading{TotalWeeklyScore: 70, MaxPossibleScore: 80}},
		&mockAcademicReader{grading: &models.ClassAcademicGrading{GoodDayCount: 1, FinalWeeklyScore: 200}},
		&mockViolationWeekReader{violations: []models.ViolationDetail{approvedViolation("s1", "An", 5)}},
		weeks,
		years,
		cache,
		config.SummariesConfig{},
		zap.NewNop(),
	)
	return svc, summaries, weeks, cache
}

func TestWeeklySummaryServiceRegenerate(t *testing.T) {
	svc, summaries, _, cache := newWeeklySummaryFixture(t)

	summary, err := svc.Regenerate(context.Background(), "w1", "c1", "admin")
	require.NoError(t, err)
	assert.Equal(t, 70, summary.ConductTotal)
	assert.Equal(t, 20, summary.BonusTotal)
	assert.Equal(t, 5, summary.PenaltyTotal)
	assert.Equal(t, 85, summary.TotalScore)
	assert.Equal(t, models.StatusDraft, summary.Status)
	require.NotNil(t, summary.GeneratedBy)
	assert.Equal(t, "admin", *summary.GeneratedBy)
	assert.Equal(t, 1, summaries.upserts)
	assert.Contains(t, cache.patterns, "summary:week:w1:*")
}

func TestWeeklySummaryServiceRegenerateReplaces(t *testing.T) {
	svc, summaries, _, _ := newWeeklySummaryFixture(t)

	first, err := svc.Regenerate(context.Background(), "w1", "c1", "admin")
	require.NoError(t, err)
	second, err := svc.Regenerate(context.Background(), "w1", "c1", "admin")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, summaries.upserts)
}

func TestWeeklySummaryServiceRegenerateSkipsLockedSummary(t *testing.T) {
	svc, summaries, _, _ := newWeeklySummaryFixture(t)
	locked := &models.WeeklySummary{ID: "ws1", WeekID: "w1", ClassID: "c1", Status: models.StatusLocked, TotalScore: 99}
	summaries.summaries = map[string]*models.WeeklySummary{weeklyKey("w1", "c1"): locked}

	summary, err := svc.Regenerate(context.Background(), "w1", "c1", "admin")
	require.NoError(t, err)
	assert.Equal(t, locked, summary)
	assert.Zero(t, summaries.upserts)
}

func TestWeeklySummaryServiceRegenerateLockedWeek(t *testing.T) {
	svc, summaries, weeks, _ := newWeeklySummaryFixture(t)
	weeks.weeks["w1"].Status = models.StatusLocked

	_, err := svc.Regenerate(context.Background(), "w1", "c1", "admin")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrLocked))
	assert.Zero(t, summaries.upserts)
}
