package models

// RecordStatus is the lifecycle state shared by weeks, gradings, and summaries.
type RecordStatus string

const (
	StatusDraft    RecordStatus = "Draft"
	StatusApproved RecordStatus = "Approved"
	StatusLocked   RecordStatus = "Locked"
)

// LifecycleAction enumerates the operations that move a record between states.
type LifecycleAction string

const (
	ActionApprove LifecycleAction = "approve"
	ActionLock    LifecycleAction = "lock"
	ActionUnlock  LifecycleAction = "unlock"
)

// CascadeEntity names a dependent record class whose status must follow the week's.
type CascadeEntity string

const (
	CascadeDisciplineGradings CascadeEntity = "discipline_gradings"
	CascadeAcademicGradings   CascadeEntity = "class_academic_gradings"
	CascadeWeeklySummaries    CascadeEntity = "weekly_summaries"
)

// TransitionResult is the outcome of applying a lifecycle action.
type TransitionResult struct {
	Next    RecordStatus
	Cascade []CascadeEntity
}

// Transition resolves a lifecycle action against the current state. The
// returned bool is false when the action is not allowed from that state.
// Approve and lock move strictly forward and never touch dependent records;
// unlock moves Locked back to Approved and lists every dependent record class
// that must be re-opened alongside the week.
func Transition(current RecordStatus, action LifecycleAction) (TransitionResult, bool) {
	switch action {
	case ActionApprove:
		if current != StatusDraft {
			return TransitionResult{}, false
		}
		return TransitionResult{Next: StatusApproved}, true
	case ActionLock:
		if current != StatusApproved {
			return TransitionResult{}, false
		}
		return TransitionResult{Next: StatusLocked}, true
	case ActionUnlock:
		if current != StatusLocked {
			return TransitionResult{}, false
		}
		return TransitionResult{
			Next: StatusApproved,
			Cascade: []CascadeEntity{
				CascadeDisciplineGradings,
				CascadeAcademicGradings,
				CascadeWeeklySummaries,
			},
		}, true
	default:
		return TransitionResult{}, false
	}
}
