package models

import (
	"database/sql/driver"
	"time"
)

// Flag classifies a class's weekly or monthly standing. Red is the best
// standing, None the worst.
type Flag string

const (
	FlagRed    Flag = "Red"
	FlagGreen  Flag = "Green"
	FlagYellow Flag = "Yellow"
	FlagNone   Flag = "None"
)

// AcademicCoefficients weight the lesson quality tiers when scoring a day.
type AcademicCoefficients struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Average   int `json:"average"`
	Poor      int `json:"poor"`
	Failing   int `json:"failing"`
}

// DefaultAcademicCoefficients returns the standard tier weights.
func DefaultAcademicCoefficients() AcademicCoefficients {
	return AcademicCoefficients{Excellent: 20, Good: 10, Average: 0, Poor: -10, Failing: -20}
}

// BonusConfig holds the bonus points granted by the weekly summary.
type BonusConfig struct {
	GoodDayBonus  int `json:"good_day_bonus"`
	GoodWeekBonus int `json:"good_week_bonus"`
}

// DefaultBonusConfig returns the standard summary bonus values.
func DefaultBonusConfig() BonusConfig {
	return BonusConfig{GoodDayBonus: 20, GoodWeekBonus: 0}
}

// Thresholds are the minimum percentages (weekly) or totals (monthly) for
// each flag tier.
type Thresholds struct {
	RedFlag    int `json:"red_flag"`
	GreenFlag  int `json:"green_flag"`
	YellowFlag int `json:"yellow_flag"`
}

// DefaultThresholds returns the standard flag boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{RedFlag: 90, GreenFlag: 70, YellowFlag: 50}
}

// ConductItemConfig describes one conduct checklist item and the weekdays it
// applies to.
type ConductItemConfig struct {
	Name           string   `json:"name"`
	ApplicableDays []string `json:"applicable_days"`
}

// ConductConfig configures the daily conduct checklist.
type ConductConfig struct {
	MaxPointsPerItem int                 `json:"max_points_per_item"`
	Items            []ConductItemConfig `json:"items"`
}

// ScoringConfig bundles every tunable scoring parameter of a school year.
type ScoringConfig struct {
	Coefficients AcademicCoefficients `json:"coefficients"`
	Bonus        BonusConfig          `json:"bonus"`
	Thresholds   Thresholds           `json:"thresholds"`
	Conduct      ConductConfig        `json:"conduct"`
}

// DefaultScoringConfig returns a ScoringConfig with all standard values.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Coefficients: DefaultAcademicCoefficients(),
		Bonus:        DefaultBonusConfig(),
		Thresholds:   DefaultThresholds(),
		Conduct:      ConductConfig{MaxPointsPerItem: 10},
	}
}

// Value marshals the scoring config for JSONB persistence.
func (s ScoringConfig) Value() (driver.Value, error) { return jsonbValue(s) }

// Scan unmarshals a JSONB payload into the scoring config.
func (s *ScoringConfig) Scan(value interface{}) error { return jsonbScan(s, value) }

// SchoolYear represents an academic year with its scoring configuration.
type SchoolYear struct {
	ID        string        `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	StartDate time.Time     `db:"start_date" json:"start_date"`
	EndDate   time.Time     `db:"end_date" json:"end_date"`
	Scoring   ScoringConfig `db:"scoring" json:"scoring"`
	Active    bool          `db:"active" json:"active"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// SchoolYearFilter defines filter criteria for listing school years.
type SchoolYearFilter struct {
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
