package models

import (
	"database/sql/driver"
	"time"
)

// MonthlySection carries a total and its rounded per-week average for one
// scoring dimension.
type MonthlySection struct {
	Total         float64 `json:"total"`
	WeeklyAverage int     `json:"weekly_average"`
}

// MonthlyBonus aggregates bonus points earned across the month's weeks.
type MonthlyBonus struct {
	GoodDays int `json:"good_days"`
	Total    int `json:"total"`
}

// MonthlyViolations aggregates the month's violations.
type MonthlyViolations struct {
	Total        int                     `json:"total"`
	ByStatus     map[string]int          `json:"by_status,omitempty"`
	TopViolators []StudentViolationCount `json:"top_violators,omitempty"`
}

// WeekStanding references one week's summary outcome inside a monthly record.
type WeekStanding struct {
	WeekID     string `json:"week_id"`
	WeekNumber int    `json:"week_number"`
	TotalScore int    `json:"total_score"`
	Flag       Flag   `json:"flag"`
}

// MonthlySummaryDetails is the JSONB-persisted breakdown block of a monthly
// summary.
type MonthlySummaryDetails struct {
	Conduct      MonthlySection    `json:"conduct"`
	Academic     MonthlySection    `json:"academic"`
	Bonus        MonthlyBonus      `json:"bonus"`
	Violations   MonthlyViolations `json:"violations"`
	HonorRoll    []WeekStanding    `json:"honor_roll,omitempty"`
	CriticalList []WeekStanding    `json:"critical_list,omitempty"`
}

// Value marshals the details for JSONB persistence.
func (d MonthlySummaryDetails) Value() (driver.Value, error) { return jsonbValue(d) }

// Scan unmarshals a JSONB payload into the details.
func (d *MonthlySummaryDetails) Scan(value interface{}) error { return jsonbScan(d, value) }

// MonthlySummary is the combined standing of one class for one calendar
// month. One record exists per (school year, month, year, class);
// regeneration fully replaces it. The flag is derived from the absolute
// total score, not a percentage.
type MonthlySummary struct {
	ID           string                `db:"id" json:"id"`
	SchoolYearID string                `db:"school_year_id" json:"school_year_id"`
	ClassID      string                `db:"class_id" json:"class_id"`
	Month        int                   `db:"month" json:"month"`
	Year         int                   `db:"year" json:"year"`
	WeekCount    int                   `db:"week_count" json:"week_count"`
	TotalScore   float64               `db:"total_score" json:"total_score"`
	Flag         Flag                  `db:"flag" json:"flag"`
	Details      MonthlySummaryDetails `db:"details" json:"details"`
	GeneratedBy  *string               `db:"generated_by" json:"generated_by,omitempty"`
	GeneratedAt  time.Time             `db:"generated_at" json:"generated_at"`
	CreatedAt    time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time             `db:"updated_at" json:"updated_at"`
}

// MonthlySummaryFilter defines filter criteria for listing monthly summaries.
type MonthlySummaryFilter struct {
	SchoolYearID string
	ClassID      string
	Month        int
	Year         int
	Page         int
	PageSize     int
}
