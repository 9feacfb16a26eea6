package models

import "time"

// Week is one Monday-start scoring period inside a school year. Week numbers
// are sequential and unique within the year.
type Week struct {
	ID           string       `db:"id" json:"id"`
	SchoolYearID string       `db:"school_year_id" json:"school_year_id"`
	WeekNumber   int          `db:"week_number" json:"week_number"`
	StartDate    time.Time    `db:"start_date" json:"start_date"`
	EndDate      time.Time    `db:"end_date" json:"end_date"`
	Status       RecordStatus `db:"status" json:"status"`
	ApprovedBy   *string      `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt   *time.Time   `db:"approved_at" json:"approved_at,omitempty"`
	LockedBy     *string      `db:"locked_by" json:"locked_by,omitempty"`
	LockedAt     *time.Time   `db:"locked_at" json:"locked_at,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// ContainsDate reports whether the given calendar date falls inside the week.
func (w Week) ContainsDate(date time.Time) bool {
	day := date.Truncate(24 * time.Hour)
	start := w.StartDate.Truncate(24 * time.Hour)
	end := w.EndDate.Truncate(24 * time.Hour)
	return !day.Before(start) && !day.After(end)
}

// WeekFilter defines filter criteria for listing weeks.
type WeekFilter struct {
	SchoolYearID string
	Status       *RecordStatus
	Page         int
	PageSize     int
}

// WeekDeletePreview reports how many dependent records a week delete would
// remove.
type WeekDeletePreview struct {
	WeekID              string `db:"-" json:"week_id"`
	DisciplineGradings  int    `db:"discipline_gradings" json:"discipline_gradings"`
	AcademicGradings    int    `db:"academic_gradings" json:"academic_gradings"`
	DailyConductScores  int    `db:"daily_conduct_scores" json:"daily_conduct_scores"`
	DailyAcademicScores int    `db:"daily_academic_scores" json:"daily_academic_scores"`
	Violations          int    `db:"violations" json:"violations"`
	WeeklySummaries     int    `db:"weekly_summaries" json:"weekly_summaries"`
}

// Total returns the combined number of dependent records.
func (p WeekDeletePreview) Total() int {
	return p.DisciplineGradings + p.AcademicGradings + p.DailyConductScores +
		p.DailyAcademicScores + p.Violations + p.WeeklySummaries
}
