package models

import "time"

// ViolationSeverity ranks how serious a violation category is.
type ViolationSeverity string

const (
	SeverityMinor    ViolationSeverity = "Minor"
	SeverityModerate ViolationSeverity = "Moderate"
	SeveritySevere   ViolationSeverity = "Severe"
)

// ViolationType is a catalogued violation with its summary penalty.
type ViolationType struct {
	ID             string            `db:"id" json:"id"`
	Name           string            `db:"name" json:"name"`
	Category       string            `db:"category" json:"category"`
	Severity       ViolationSeverity `db:"severity" json:"severity"`
	DefaultPenalty int               `db:"default_penalty" json:"default_penalty"`
	Active         bool              `db:"active" json:"active"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// ViolationTypeFilter defines filter criteria for listing violation types.
type ViolationTypeFilter struct {
	Category string
	Severity *ViolationSeverity
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
