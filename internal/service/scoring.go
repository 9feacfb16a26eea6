package service

import (
	"math"

	"github.com/noah-isme/classtrack-api/internal/models"
)

// roundHalfUp rounds to the nearest integer with ties going toward positive
// infinity, matching the rounding the scoring rules were defined with.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// ClassifyFlag maps a score against the configured thresholds. Red is the
// highest tier.
func ClassifyFlag(score float64, thresholds models.Thresholds) models.Flag {
	switch {
	case score >= float64(thresholds.RedFlag):
		return models.FlagRed
	case score >= float64(thresholds.GreenFlag):
		return models.FlagGreen
	case score >= float64(thresholds.YellowFlag):
		return models.FlagYellow
	default:
		return models.FlagNone
	}
}

// ScoreConductDay scores each checklist item as max(0, maxPointsPerItem -
// violations) and returns the items with the day total.
func ScoreConductDay(items models.ConductItemScores, maxPointsPerItem int) (models.ConductItemScores, int) {
	scored := make(models.ConductItemScores, len(items))
	total := 0
	for i, item := range items {
		score := maxPointsPerItem - item.Violations
		if score < 0 {
			score = 0
		}
		scored[i] = models.ConductItemScore{ItemName: item.ItemName, Violations: item.Violations, Score: score}
		total += score
	}
	return scored, total
}

// ScoreAcademicDay derives the daily academic record from its tier counts.
// The divisor floors at 1 so a day without lessons scores zero instead of
// failing.
func ScoreAcademicDay(tiers models.TierCounts, coefficients models.AcademicCoefficients, goodDayBonus int) models.DailyAcademicScore {
	totalLessons := tiers.Total()
	subtotal := tiers.Excellent*coefficients.Excellent +
		tiers.Good*coefficients.Good +
		tiers.Average*coefficients.Average +
		tiers.Poor*coefficients.Poor +
		tiers.Failing*coefficients.Failing

	divisor := totalLessons
	if divisor < 1 {
		divisor = 1
	}
	dailyAverage := roundHalfUp(float64(subtotal) / float64(divisor))

	isGoodDay := tiers.Poor == 0 && tiers.Failing == 0
	totalDailyScore := dailyAverage
	if isGoodDay {
		totalDailyScore += goodDayBonus
	}

	return models.DailyAcademicScore{
		Tiers:           tiers,
		TotalLessons:    totalLessons,
		Subtotal:        subtotal,
		DailyAverage:    dailyAverage,
		IsGoodDay:       isGoodDay,
		TotalDailyScore: totalDailyScore,
	}
}

// RecomputeDiscipline recalculates every derived field of a discipline
// grading from its items. The computation is a pure function of the items;
// running it twice yields identical output.
func RecomputeDiscipline(grading *models.DisciplineGrading, thresholds models.Thresholds) {
	totalWeekly := 0
	maxPossible := 0
	for i := range grading.Items {
		item := &grading.Items[i]
		itemTotal := 0
		for _, day := range item.DayScores {
			itemTotal += day.Score
		}
		item.TotalScore = itemTotal
		totalWeekly += itemTotal
		maxPossible += item.MaxScore * len(item.ApplicableDays)
	}

	grading.TotalWeeklyScore = totalWeekly
	grading.MaxPossibleScore = maxPossible
	if maxPossible > 0 {
		grading.Percentage = roundHalfUp(float64(totalWeekly) / float64(maxPossible) * 100)
	} else {
		grading.Percentage = 0
	}
	grading.Flag = ClassifyFlag(float64(grading.Percentage), thresholds)
}

// RecomputeAcademic recalculates every derived field of an academic grading
// from its day gradings. A good week requires at least one day with periods
// and every such day rated entirely excellent; the good-day bonus is zeroed
// on a good week so the two bonuses never stack.
func RecomputeAcademic(grading *models.ClassAcademicGrading, coefficients models.AcademicCoefficients) {
	totalPeriods := 0
	totalScore := 0
	goodDays := 0
	daysWithPeriods := 0
	goodDaysWithPeriods := 0

	for i := range grading.DayGradings {
		day := &grading.DayGradings[i]
		day.TotalPeriods = day.Tiers.Total()
		day.DailyScore = day.Tiers.Excellent*coefficients.Excellent +
			day.Tiers.Good*coefficients.Good +
			day.Tiers.Average*coefficients.Average +
			day.Tiers.Poor*coefficients.Poor +
			day.Tiers.Failing*coefficients.Failing
		day.IsGoodDay = day.TotalPeriods > 0 && day.Tiers.Excellent == day.TotalPeriods

		totalPeriods += day.TotalPeriods
		totalScore += day.DailyScore
		if day.IsGoodDay {
			goodDays++
		}
		if day.TotalPeriods > 0 {
			daysWithPeriods++
			if day.IsGoodDay {
				goodDaysWithPeriods++
			}
		}
	}

	grading.TotalWeeklyPeriods = totalPeriods
	grading.TotalWeeklyScore = totalScore
	if totalPeriods > 0 {
		grading.AverageScore = float64(totalScore) / float64(totalPeriods)
	} else {
		grading.AverageScore = 0
	}
	grading.GoodDayCount = goodDays
	grading.IsGoodWeek = daysWithPeriods > 0 && goodDaysWithPeriods == daysWithPeriods

	if grading.IsGoodWeek {
		grading.GoodWeekBonus = 80
		grading.GoodDayBonus = 0
	} else {
		grading.GoodWeekBonus = 0
		grading.GoodDayBonus = goodDays * 20
	}
	grading.FinalWeeklyScore = grading.AverageScore + float64(grading.GoodWeekBonus) + float64(grading.GoodDayBonus)
}
