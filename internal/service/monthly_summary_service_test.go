package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/classtrack-api/internal/models"
	appErrors "github.com/noah-isme/classtrack-api/pkg/errors"
)

type mockMonthlySummaryRepo struct {
	summaries map[string]*models.MonthlySummary
	upserts   int
}

func monthlyKey(schoolYearID string, month, year int, classID string) string {
	return fmt.Sprintf("%s|%d|%d|%s", schoolYearID, month, year, classID)
}

func (m *mockMonthlySummaryRepo) List(ctx context.Context, filter models.MonthlySummaryFilter) ([]models.MonthlySummary, int, error) {
	return nil, 0, nil
}

func (m *mockMonthlySummaryRepo) FindByID(ctx context.Context, id string) (*models.MonthlySummary, error) {
	for _, s := range m.summaries {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockMonthlySummaryRepo) FindByKey(ctx context.Context, schoolYearID string, month, year int, classID string) (*models.MonthlySummary, error) {
	if s, ok := m.summaries[monthlyKey(schoolYearID, month, year, classID)]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockMonthlySummaryRepo) Upsert(ctx context.Context, summary *models.MonthlySummary) error {
	if m.summaries == nil {
		m.summaries = make(map[string]*models.MonthlySummary)
	}
	if summary.ID == "" {
		summary.ID = "ms1"
	}
	m.upserts++
	m.summaries[monthlyKey(summary.SchoolYearID, summary.Month, summary.Year, summary.ClassID)] = summary
	return nil
}

type mockWeeklyBatchReader struct {
	summaries []models.WeeklySummary
}

func (m *mockWeeklyBatchReader) ListByWeekIDs(ctx context.Context, weekIDs []string, classID string) ([]models.WeeklySummary, error) {
	return m.summaries, nil
}

type mockViolationBatchReader struct {
	violations []models.ViolationDetail
}

func (m *mockViolationBatchReader) ListByWeekIDs(ctx context.Context, weekIDs []string, classID string) ([]models.ViolationDetail, error) {
	return m.violations, nil
}

type mockWeekLister struct {
	weeks []models.Week
}

func (m *mockWeekLister) ListBySchoolYear(ctx context.Context, schoolYearID string) ([]models.Week, error) {
	return m.weeks, nil
}

func monthFixtureWeeks(t *testing.T) []models.Week {
	t.Helper()
	return []models.Week{
		{ID: "w1", WeekNumber: 1, StartDate: mustDate(t, "2026-09-07"), EndDate: mustDate(t, "2026-09-13")},
		{ID: "w2", WeekNumber: 2, StartDate: mustDate(t, "2026-09-14"), EndDate: mustDate(t, "2026-09-20")},
		{ID: "w3", WeekNumber: 3, StartDate: mustDate(t, "2026-09-28"), EndDate: mustDate(t, "2026-10-04")},
	}
}

func TestComposeMonthlySummaryTotalsAndFlag(t *testing.T) {
	weeks := monthFixtureWeeks(t)
	weeklies := []models.WeeklySummary{
		{WeekID: "w1", ConductTotal: 30, AcademicTotal: 12.5, GoodDayCount: 1, BonusTotal: 20, TotalScore: 45, Flag: models.FlagGreen},
		{WeekID: "w2", ConductTotal: 20, AcademicTotal: 8, GoodDayCount: 0, BonusTotal: 0, TotalScore: 18, Flag: models.FlagYellow},
	}

	summary := ComposeMonthlySummary("sy1", "c1", 9, 2026, weeks, weeklies, nil, models.DefaultThresholds())

	assert.Equal(t, 3, summary.WeekCount)
	assert.InDelta(t, 50.0, summary.Details.Conduct.Total, 1e-9)
	assert.InDelta(t, 20.5, summary.Details.Academic.Total, 1e-9)
	// Averages divide over every week of the month, rounded half up.
	assert.Equal(t, 17, summary.Details.Conduct.WeeklyAverage)
	assert.Equal(t, 7, summary.Details.Academic.WeeklyAverage)
	assert.Equal(t, 1, summary.Details.Bonus.GoodDays)
	assert.Equal(t, 20, summary.Details.Bonus.Total)

	// Monthly totals include academic and classify against the absolute
	// score, not a percentage.
	assert.InDelta(t, 90.5, summary.TotalScore, 1e-9)
	assert.Equal(t, models.FlagRed, summary.Flag)
}

func TestComposeMonthlySummaryStandings(t *testing.T) {
	weeks := monthFixtureWeeks(t)
	weeklies := []models.WeeklySummary{
		{WeekID: "w1", TotalScore: 95, Flag: models.FlagRed},
		{WeekID: "w2", TotalScore: 40, Flag: models.FlagNone},
		{WeekID: "w3", TotalScore: 75, Flag: models.FlagGreen},
	}

	summary := ComposeMonthlySummary("sy1", "c1", 9, 2026, weeks, weeklies, nil, models.DefaultThresholds())

	require.Len(t, summary.Details.HonorRoll, 2)
	assert.Equal(t, "w1", summary.Details.HonorRoll[0].WeekID)
	assert.Equal(t, "w3", summary.Details.HonorRoll[1].WeekID)
	require.Len(t, summary.Details.CriticalList, 1)
	assert.Equal(t, "w2", summary.Details.CriticalList[0].WeekID)
	assert.Equal(t, 2, summary.Details.CriticalList[0].WeekNumber)
}

func TestComposeMonthlySummaryTopViolatorsTieBreak(t *testing.T) {
	weeks := monthFixtureWeeks(t)
	var violations []models.ViolationDetail
	// s2 and s1 tie on two violations each; s1 wins the tie on id order.
	for _, studentID := range []string{"s2", "s1", "s1", "s3", "s2"} {
		violations = append(violations, models.ViolationDetail{
			ViolationLog: models.ViolationLog{StudentID: studentID, Status: models.ViolationApproved},
			StudentName:  "Student " + studentID,
		})
	}

	summary := ComposeMonthlySummary("sy1", "c1", 9, 2026, weeks, nil, violations, models.DefaultThresholds())

	assert.Equal(t, 5, summary.Details.Violations.Total)
	require.Len(t, summary.Details.Violations.TopViolators, 3)
	assert.Equal(t, "s1", summary.Details.Violations.TopViolators[0].StudentID)
	assert.Equal(t, "s2", summary.Details.Violations.TopViolators[1].StudentID)
	assert.Equal(t, "s3", summary.Details.Violations.TopViolators[2].StudentID)
}

func newMonthlySummaryFixture(t *testing.T) (*MonthlySummaryService, *mockMonthlySummaryRepo) {
	t.Helper()
	repo := &mockMonthlySummaryRepo{}
	years := &mockSchoolYearRepo{years: map[string]*models.SchoolYear{"sy1": {
		ID:      "sy1",
		Scoring: models.DefaultScoringConfig(),
	}}}
	svc := NewMonthlySummaryService(
		repo,
		&mockWeeklyBatchReader{summaries: []models.WeeklySummary{
			{WeekID: "w1", ConductTotal: 70, AcademicTotal: 100, GoodDayCount: 2, BonusTotal: 40, TotalScore: 105, Flag: models.FlagRed},
		}},
		&mockWeekLister{weeks: monthFixtureWeeks(t)},
		&mockViolationBatchReader{},
		years,
		zap.NewNop(),
	)
	return svc, repo
}

func TestMonthlySummaryServiceRegenerate(t *testing.T) {
	svc, repo := newMonthlySummaryFixture(t)

	summary, err := svc.Regenerate(context.Background(), "sy1", 9, 2026, "c1", "admin")
	require.NoError(t, err)
	// w3 starts in September too; all three weeks count.
	assert.Equal(t, 3, summary.WeekCount)
	assert.InDelta(t, 210.0, summary.TotalScore, 1e-9)
	require.NotNil(t, summary.GeneratedBy)
	assert.Equal(t, "admin", *summary.GeneratedBy)
	assert.Equal(t, 1, repo.upserts)
}

func TestMonthlySummaryServiceRegenerateReplacesRecord(t *testing.T) {
	svc, repo := newMonthlySummaryFixture(t)

	first, err := svc.Regenerate(context.Background(), "sy1", 9, 2026, "c1", "admin")
	require.NoError(t, err)
	second, err := svc.Regenerate(context.Background(), "sy1", 9, 2026, "c1", "admin")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, repo.upserts)
}

func TestMonthlySummaryServiceRegenerateNoWeeks(t *testing.T) {
	svc, _ := newMonthlySummaryFixture(t)

	_, err := svc.Regenerate(context.Background(), "sy1", 2, 2027, "c1", "admin")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestMonthlySummaryServiceRegenerateValidatesMonth(t *testing.T) {
	svc, _ := newMonthlySummaryFixture(t)

	_, err := svc.Regenerate(context.Background(), "sy1", 13, 2026, "c1", "admin")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}
