package models

import (
	"database/sql/driver"
	"time"
)

// ConductItemBreakdown is the per-item conduct detail carried on a summary.
type ConductItemBreakdown struct {
	Name        string `json:"name"`
	MaxPossible int    `json:"max_possible"`
	Score       int    `json:"score"`
}

// AcademicDayBreakdown is the per-day academic detail carried on a summary.
type AcademicDayBreakdown struct {
	Day          string `json:"day"`
	TotalPeriods int    `json:"total_periods"`
	DailyScore   int    `json:"daily_score"`
	IsGoodDay    bool   `json:"is_good_day"`
}

// LessonStats aggregates the week's lessons by quality tier.
type LessonStats struct {
	TotalLessons int        `json:"total_lessons"`
	Tiers        TierCounts `json:"tiers"`
}

// StudentViolationCount pairs a student with their violation frequency.
type StudentViolationCount struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name,omitempty"`
	Count       int    `json:"count"`
}

// ViolationTypeCount pairs a violation type with its occurrence count.
type ViolationTypeCount struct {
	ViolationTypeID string `json:"violation_type_id"`
	Name            string `json:"name,omitempty"`
	Count           int    `json:"count"`
}

// ViolationBreakdown aggregates the week's violations for the summary.
type ViolationBreakdown struct {
	Total        int                     `json:"total"`
	ByStatus     map[string]int          `json:"by_status,omitempty"`
	ByType       []ViolationTypeCount    `json:"by_type,omitempty"`
	TopViolators []StudentViolationCount `json:"top_violators,omitempty"`
	PenaltyTotal int                     `json:"penalty_total"`
}

// WeeklySummaryDetails is the JSONB-persisted breakdown block of a summary.
type WeeklySummaryDetails struct {
	ConductItems []ConductItemBreakdown `json:"conduct_items,omitempty"`
	AcademicDays []AcademicDayBreakdown `json:"academic_days,omitempty"`
	Lessons      LessonStats            `json:"lessons"`
	Violations   ViolationBreakdown     `json:"violations"`
}

// Value marshals the details for JSONB persistence.
func (d WeeklySummaryDetails) Value() (driver.Value, error) { return jsonbValue(d) }

// Scan unmarshals a JSONB payload into the details.
func (d *WeeklySummaryDetails) Scan(value interface{}) error { return jsonbScan(d, value) }

// WeeklySummary is the combined standing of one class for one week.
// Regeneration fully replaces the record unless it is Locked.
type WeeklySummary struct {
	ID               string               `db:"id" json:"id"`
	WeekID           string               `db:"week_id" json:"week_id"`
	ClassID          string               `db:"class_id" json:"class_id"`
	ConductTotal     int                  `db:"conduct_total" json:"conduct_total"`
	AcademicTotal    float64              `db:"academic_total" json:"academic_total"`
	GoodDayCount     int                  `db:"good_day_count" json:"good_day_count"`
	BonusTotal       int                  `db:"bonus_total" json:"bonus_total"`
	PenaltyTotal     int                  `db:"penalty_total" json:"penalty_total"`
	TotalScore       int                  `db:"total_score" json:"total_score"`
	MaxPossibleScore int                  `db:"max_possible_score" json:"max_possible_score"`
	Percentage       int                  `db:"percentage" json:"percentage"`
	Flag             Flag                 `db:"flag" json:"flag"`
	Details          WeeklySummaryDetails `db:"details" json:"details"`
	Status           RecordStatus         `db:"status" json:"status"`
	GeneratedBy      *string              `db:"generated_by" json:"generated_by,omitempty"`
	GeneratedAt      time.Time            `db:"generated_at" json:"generated_at"`
	CreatedAt        time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time            `db:"updated_at" json:"updated_at"`
}

// WeeklySummaryFilter defines filter criteria for listing summaries.
type WeeklySummaryFilter struct {
	WeekID   string
	ClassID  string
	Flag     *Flag
	Status   *RecordStatus
	Page     int
	PageSize int
}
