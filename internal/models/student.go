package models

import "time"

// Student represents a learner registered in a class.
type Student struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	FullName  string    `db:"full_name" json:"full_name"`
	ClassID   string    `db:"class_id" json:"class_id"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter defines filter criteria for listing students.
type StudentFilter struct {
	ClassID  string
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
