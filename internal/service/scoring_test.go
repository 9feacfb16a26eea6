package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classtrack-api/internal/models"
)

func TestClassifyFlag(t *testing.T) {
	thresholds := models.DefaultThresholds()

	assert.Equal(t, models.FlagRed, ClassifyFlag(90, thresholds))
	assert.Equal(t, models.FlagRed, ClassifyFlag(120, thresholds))
	assert.Equal(t, models.FlagGreen, ClassifyFlag(89, thresholds))
	assert.Equal(t, models.FlagGreen, ClassifyFlag(70, thresholds))
	assert.Equal(t, models.FlagYellow, ClassifyFlag(69, thresholds))
	assert.Equal(t, models.FlagYellow, ClassifyFlag(50, thresholds))
	assert.Equal(t, models.FlagNone, ClassifyFlag(49, thresholds))
	assert.Equal(t, models.FlagNone, ClassifyFlag(0, thresholds))
}

func TestScoreConductDayClampsAtZero(t *testing.T) {
	items := models.ConductItemScores{
		{ItemName: "Uniform", Violations: 2},
		{ItemName: "Punctuality", Violations: 15},
		{ItemName: "Cleanliness", Violations: 0},
	}

	scored, total := ScoreConductDay(items, 10)
	require.Len(t, scored, 3)
	assert.Equal(t, 8, scored[0].Score)
	assert.Equal(t, 0, scored[1].Score, "score must clamp at zero when violations exceed the maximum")
	assert.Equal(t, 10, scored[2].Score)
	assert.Equal(t, 18, total)
}

func TestScoreAcademicDay(t *testing.T) {
	coefficients := models.DefaultAcademicCoefficients()

	t.Run("good day earns the bonus", func(t *testing.T) {
		day := ScoreAcademicDay(models.TierCounts{Excellent: 4, Good: 2}, coefficients, 20)
		assert.Equal(t, 6, day.TotalLessons)
		assert.Equal(t, 100, day.Subtotal)
		assert.Equal(t, 17, day.DailyAverage)
		assert.True(t, day.IsGoodDay)
		assert.Equal(t, 37, day.TotalDailyScore)
	})

	t.Run("poor lesson forfeits the bonus", func(t *testing.T) {
		day := ScoreAcademicDay(models.TierCounts{Excellent: 4, Poor: 1}, coefficients, 20)
		assert.False(t, day.IsGoodDay)
		assert.Equal(t, day.DailyAverage, day.TotalDailyScore)
	})

	t.Run("empty day divides by one", func(t *testing.T) {
		day := ScoreAcademicDay(models.TierCounts{}, coefficients, 20)
		assert.Equal(t, 0, day.TotalLessons)
		assert.Equal(t, 0, day.DailyAverage)
		assert.True(t, day.IsGoodDay)
		assert.Equal(t, 20, day.TotalDailyScore)
	})
}

func TestRecomputeDiscipline(t *testing.T) {
	grading := &models.DisciplineGrading{
		Items: models.DisciplineItems{
			{
				Name:           "Uniform",
				MaxScore:       10,
				ApplicableDays: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
				DayScores: []models.DisciplineDayScore{
					{Day: "Monday", Violations: 0, Score: 10},
					{Day: "Tuesday", Violations: 1, Score: 9},
					{Day: "Wednesday", Violations: 0, Score: 10},
					{Day: "Thursday", Violations: 0, Score: 10},
					{Day: "Friday", Violations: 2, Score: 8},
				},
			},
			{
				Name:           "Punctuality",
				MaxScore:       10,
				ApplicableDays: []string{"Monday", "Wednesday", "Friday"},
				DayScores: []models.DisciplineDayScore{
					{Day: "Monday", Violations: 0, Score: 10},
					{Day: "Wednesday", Violations: 0, Score: 10},
					{Day: "Friday", Violations: 0, Score: 10},
				},
			},
		},
	}

	RecomputeDiscipline(grading, models.DefaultThresholds())

	assert.Equal(t, 47, grading.Items[0].TotalScore)
	assert.Equal(t, 30, grading.Items[1].TotalScore)
	assert.Equal(t, 77, grading.TotalWeeklyScore)
	assert.Equal(t, 80, grading.MaxPossibleScore)
	assert.Equal(t, 96, grading.Percentage)
	assert.Equal(t, models.FlagRed, grading.Flag)
}

func TestRecomputeDisciplinePerfectScore(t *testing.T) {
	grading := &models.DisciplineGrading{
		Items: models.DisciplineItems{
			{
				Name:           "Uniform",
				MaxScore:       24,
				ApplicableDays: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
				DayScores: []models.DisciplineDayScore{
					{Day: "Monday", Score: 24},
					{Day: "Tuesday", Score: 24},
					{Day: "Wednesday", Score: 24},
					{Day: "Thursday", Score: 24},
					{Day: "Friday", Score: 24},
				},
			},
		},
	}

	RecomputeDiscipline(grading, models.DefaultThresholds())

	assert.Equal(t, 120, grading.TotalWeeklyScore)
	assert.Equal(t, 120, grading.MaxPossibleScore)
	assert.Equal(t, 100, grading.Percentage)
	assert.Equal(t, models.FlagRed, grading.Flag)
}

func TestRecomputeDisciplineNoItems(t *testing.T) {
	grading := &models.DisciplineGrading{}
	RecomputeDiscipline(grading, models.DefaultThresholds())

	assert.Equal(t, 0, grading.MaxPossibleScore)
	assert.Equal(t, 0, grading.Percentage, "percentage must be zero when nothing is scorable")
	assert.Equal(t, models.FlagNone, grading.Flag)
}

func TestRecomputeAcademicGoodWeek(t *testing.T) {
	days := make(models.AcademicDayGradings, 5)
	names := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
	for i, name := range names {
		days[i] = models.AcademicDayGrading{Day: name, Tiers: models.TierCounts{Excellent: 25}}
	}
	grading := &models.ClassAcademicGrading{DayGradings: days}

	RecomputeAcademic(grading, models.DefaultAcademicCoefficients())

	assert.Equal(t, 125, grading.TotalWeeklyPeriods)
	assert.Equal(t, 2500, grading.TotalWeeklyScore)
	assert.InDelta(t, 20.0, grading.AverageScore, 1e-9)
	assert.Equal(t, 5, grading.GoodDayCount)
	assert.True(t, grading.IsGoodWeek)
	assert.Equal(t, 80, grading.GoodWeekBonus)
	assert.Equal(t, 0, grading.GoodDayBonus, "good-day bonus must not stack on a good week")
	assert.InDelta(t, grading.AverageScore+80, grading.FinalWeeklyScore, 1e-9)
}

func TestRecomputeAcademicMixedWeek(t *testing.T) {
	grading := &models.ClassAcademicGrading{
		DayGradings: models.AcademicDayGradings{
			{Day: "Monday", Tiers: models.TierCounts{Excellent: 5}},
			{Day: "Tuesday", Tiers: models.TierCounts{Excellent: 3, Good: 2}},
			{Day: "Wednesday", Tiers: models.TierCounts{Excellent: 5}},
		},
	}

	RecomputeAcademic(grading, models.DefaultAcademicCoefficients())

	assert.Equal(t, 2, grading.GoodDayCount)
	assert.False(t, grading.IsGoodWeek)
	assert.Equal(t, 0, grading.GoodWeekBonus)
	assert.Equal(t, 40, grading.GoodDayBonus)
}

func TestRecomputeAcademicEmptyWeekIsNotGood(t *testing.T) {
	grading := &models.ClassAcademicGrading{}
	RecomputeAcademic(grading, models.DefaultAcademicCoefficients())

	assert.False(t, grading.IsGoodWeek, "a week without periods is never a good week")
	assert.Equal(t, 0.0, grading.AverageScore)
	assert.Equal(t, 0.0, grading.FinalWeeklyScore)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	grading := &models.ClassAcademicGrading{
		DayGradings: models.AcademicDayGradings{
			{Day: "Monday", Tiers: models.TierCounts{Excellent: 3, Poor: 1}},
			{Day: "Tuesday", Tiers: models.TierCounts{Good: 4}},
		},
	}

	RecomputeAcademic(grading, models.DefaultAcademicCoefficients())
	first := *grading
	RecomputeAcademic(grading, models.DefaultAcademicCoefficients())
	assert.Equal(t, first.TotalWeeklyScore, grading.TotalWeeklyScore)
	assert.Equal(t, first.FinalWeeklyScore, grading.FinalWeeklyScore)
	assert.Equal(t, first.GoodDayBonus, grading.GoodDayBonus)
}
