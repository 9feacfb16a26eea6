package models

import (
	"database/sql/driver"
	"time"
)

// AcademicDayGrading is one day's lesson quality record inside the weekly
// academic grading.
type AcademicDayGrading struct {
	Day          string     `json:"day"`
	Tiers        TierCounts `json:"tiers"`
	TotalPeriods int        `json:"total_periods"`
	DailyScore   int        `json:"daily_score"`
	IsGoodDay    bool       `json:"is_good_day"`
}

// AcademicDayGradings is the JSONB-persisted list of day gradings.
type AcademicDayGradings []AcademicDayGrading

// Value marshals the day gradings for JSONB persistence.
func (a AcademicDayGradings) Value() (driver.Value, error) { return jsonbValue(a) }

// Scan unmarshals a JSONB payload into the day gradings.
func (a *AcademicDayGradings) Scan(value interface{}) error { return jsonbScan(a, value) }

// ClassAcademicGrading is the weekly academic grading of one class. One
// record exists per (week, class). The derived fields are recomputed from
// DayGradings on every mutation.
type ClassAcademicGrading struct {
	ID                 string              `db:"id" json:"id"`
	WeekID             string              `db:"week_id" json:"week_id"`
	ClassID            string              `db:"class_id" json:"class_id"`
	DayGradings        AcademicDayGradings `db:"day_gradings" json:"day_gradings"`
	TotalWeeklyScore   int                 `db:"total_weekly_score" json:"total_weekly_score"`
	TotalWeeklyPeriods int                 `db:"total_weekly_periods" json:"total_weekly_periods"`
	AverageScore       float64             `db:"average_score" json:"average_score"`
	GoodDayCount       int                 `db:"good_day_count" json:"good_day_count"`
	IsGoodWeek         bool                `db:"is_good_week" json:"is_good_week"`
	GoodDayBonus       int                 `db:"good_day_bonus" json:"good_day_bonus"`
	GoodWeekBonus      int                 `db:"good_week_bonus" json:"good_week_bonus"`
	FinalWeeklyScore   float64             `db:"final_weekly_score" json:"final_weekly_score"`
	Status             RecordStatus        `db:"status" json:"status"`
	CreatedBy          *string             `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy          *string             `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt          time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time           `db:"updated_at" json:"updated_at"`
}

// AcademicGradingFilter defines filter criteria for listing gradings.
type AcademicGradingFilter struct {
	WeekID   string
	ClassID  string
	Status   *RecordStatus
	Page     int
	PageSize int
}
