package models

import (
	"database/sql/driver"
	"time"
)

// DisciplineDayScore is the per-weekday record of one discipline item.
type DisciplineDayScore struct {
	Day                 string   `json:"day"`
	Violations          int      `json:"violations"`
	Score               int      `json:"score"`
	ViolatingStudentIDs []string `json:"violating_student_ids,omitempty"`
}

// DisciplineItem is one scored discipline criterion across the week.
type DisciplineItem struct {
	Name           string               `json:"name"`
	MaxScore       int                  `json:"max_score"`
	ApplicableDays []string             `json:"applicable_days"`
	DayScores      []DisciplineDayScore `json:"day_scores"`
	TotalScore     int                  `json:"total_score"`
}

// DisciplineItems is the JSONB-persisted list of discipline items.
type DisciplineItems []DisciplineItem

// Value marshals the items for JSONB persistence.
func (d DisciplineItems) Value() (driver.Value, error) { return jsonbValue(d) }

// Scan unmarshals a JSONB payload into the items.
func (d *DisciplineItems) Scan(value interface{}) error { return jsonbScan(d, value) }

// DisciplineGrading is the weekly conduct grading of one class. One record
// exists per (week, class). The derived fields are recomputed from Items on
// every mutation.
type DisciplineGrading struct {
	ID               string          `db:"id" json:"id"`
	WeekID           string          `db:"week_id" json:"week_id"`
	ClassID          string          `db:"class_id" json:"class_id"`
	Items            DisciplineItems `db:"items" json:"items"`
	TotalWeeklyScore int             `db:"total_weekly_score" json:"total_weekly_score"`
	MaxPossibleScore int             `db:"max_possible_score" json:"max_possible_score"`
	Percentage       int             `db:"percentage" json:"percentage"`
	Flag             Flag            `db:"flag" json:"flag"`
	Status           RecordStatus    `db:"status" json:"status"`
	CreatedBy        *string         `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy        *string         `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// DisciplineGradingFilter defines filter criteria for listing gradings.
type DisciplineGradingFilter struct {
	WeekID   string
	ClassID  string
	Status   *RecordStatus
	Flag     *Flag
	Page     int
	PageSize int
}
