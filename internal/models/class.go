package models

import "time"

// Class represents a school class tracked by the grading engine.
type Class struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Grade           string    `db:"grade" json:"grade"`
	HomeroomTeacher *string   `db:"homeroom_teacher" json:"homeroom_teacher,omitempty"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	Grade    string
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
