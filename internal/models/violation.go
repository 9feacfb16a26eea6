package models

import "time"

// ViolationStatus is the review state of a logged violation.
type ViolationStatus string

const (
	ViolationPending  ViolationStatus = "Pending"
	ViolationApproved ViolationStatus = "Approved"
	ViolationRejected ViolationStatus = "Rejected"
	// ViolationMerged marks a record folded into another during duplicate
	// cleanup. No workflow operation sets it; it is reserved for the data model.
	ViolationMerged ViolationStatus = "Merged"
)

// ViolationLog is one recorded violation of a student. Records flagged as
// duplicates are still persisted with a pointer to the approved original.
type ViolationLog struct {
	ID              string          `db:"id" json:"id"`
	WeekID          string          `db:"week_id" json:"week_id"`
	ClassID         string          `db:"class_id" json:"class_id"`
	StudentID       string          `db:"student_id" json:"student_id"`
	ViolationTypeID string          `db:"violation_type_id" json:"violation_type_id"`
	Date            time.Time       `db:"date" json:"date"`
	Description     string          `db:"description" json:"description"`
	Status          ViolationStatus `db:"status" json:"status"`
	IsDuplicate     bool            `db:"is_duplicate" json:"is_duplicate"`
	DuplicateOf     *string         `db:"duplicate_of" json:"duplicate_of,omitempty"`
	RecordedBy      *string         `db:"recorded_by" json:"recorded_by,omitempty"`
	ApprovedBy      *string         `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `db:"approved_at" json:"approved_at,omitempty"`
	RejectedBy      *string         `db:"rejected_by" json:"rejected_by,omitempty"`
	RejectedAt      *time.Time      `db:"rejected_at" json:"rejected_at,omitempty"`
	RejectReason    *string         `db:"reject_reason" json:"reject_reason,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// ViolationDetail joins a violation with student and type context.
type ViolationDetail struct {
	ViolationLog
	StudentName       string            `db:"student_name" json:"student_name"`
	ViolationTypeName string            `db:"violation_type_name" json:"violation_type_name"`
	Severity          ViolationSeverity `db:"severity" json:"severity"`
	DefaultPenalty    int               `db:"default_penalty" json:"default_penalty"`
}

// LogViolationResult is returned by the log operation so callers can surface
// the duplicate decision without a second lookup.
type LogViolationResult struct {
	Record      ViolationLog `json:"record"`
	IsDuplicate bool         `json:"is_duplicate"`
}

// ViolationFilter defines filter criteria for listing violations.
type ViolationFilter struct {
	WeekID          string
	ClassID         string
	StudentID       string
	ViolationTypeID string
	Status          *ViolationStatus
	Page            int
	PageSize        int
}
