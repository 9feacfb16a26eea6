package models

import (
	"database/sql/driver"
	"time"
)

// ConductItemScore is one scored conduct checklist item for a single day.
type ConductItemScore struct {
	ItemName   string `json:"item_name"`
	Violations int    `json:"violations"`
	Score      int    `json:"score"`
}

// ConductItemScores is the JSONB-persisted list of item scores.
type ConductItemScores []ConductItemScore

// Value marshals the item scores for JSONB persistence.
func (c ConductItemScores) Value() (driver.Value, error) { return jsonbValue(c) }

// Scan unmarshals a JSONB payload into the item scores.
func (c *ConductItemScores) Scan(value interface{}) error { return jsonbScan(c, value) }

// DailyConductScore is the conduct record for one class on one calendar day.
// One record exists per (week, class, date); re-submitting replaces it.
type DailyConductScore struct {
	ID         string            `db:"id" json:"id"`
	WeekID     string            `db:"week_id" json:"week_id"`
	ClassID    string            `db:"class_id" json:"class_id"`
	Date       time.Time         `db:"date" json:"date"`
	Items      ConductItemScores `db:"items" json:"items"`
	TotalScore int               `db:"total_score" json:"total_score"`
	RecordedBy *string           `db:"recorded_by" json:"recorded_by,omitempty"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updated_at"`
}

// TierCounts buckets a day's lessons by quality tier.
type TierCounts struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Average   int `json:"average"`
	Poor      int `json:"poor"`
	Failing   int `json:"failing"`
}

// Total returns the number of lessons across all tiers.
func (t TierCounts) Total() int {
	return t.Excellent + t.Good + t.Average + t.Poor + t.Failing
}

// Add accumulates another day's tier counts.
func (t TierCounts) Add(other TierCounts) TierCounts {
	return TierCounts{
		Excellent: t.Excellent + other.Excellent,
		Good:      t.Good + other.Good,
		Average:   t.Average + other.Average,
		Poor:      t.Poor + other.Poor,
		Failing:   t.Failing + other.Failing,
	}
}

// Value marshals the tier counts for JSONB persistence.
func (t TierCounts) Value() (driver.Value, error) { return jsonbValue(t) }

// Scan unmarshals a JSONB payload into the tier counts.
func (t *TierCounts) Scan(value interface{}) error { return jsonbScan(t, value) }

// DailyAcademicScore is the academic record for one class on one calendar
// day. One record exists per (week, class, date); re-submitting replaces it.
type DailyAcademicScore struct {
	ID              string     `db:"id" json:"id"`
	WeekID          string     `db:"week_id" json:"week_id"`
	ClassID         string     `db:"class_id" json:"class_id"`
	Date            time.Time  `db:"date" json:"date"`
	Tiers           TierCounts `db:"tiers" json:"tiers"`
	TotalLessons    int        `db:"total_lessons" json:"total_lessons"`
	Subtotal        int        `db:"subtotal" json:"subtotal"`
	DailyAverage    int        `db:"daily_average" json:"daily_average"`
	IsGoodDay       bool       `db:"is_good_day" json:"is_good_day"`
	TotalDailyScore int        `db:"total_daily_score" json:"total_daily_score"`
	RecordedBy      *string    `db:"recorded_by" json:"recorded_by,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// DailyScoreFilter scopes daily score queries.
type DailyScoreFilter struct {
	WeekID  string
	ClassID string
}
