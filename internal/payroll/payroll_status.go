package payroll

import payrollerrors "go-payroll/internal/payroll/errors"

const (
	PeriodStatusDraft         = "draft"
	PeriodStatusProcessing    = "processing"
	PeriodStatusSentForReview = "sent_for_review"
	PeriodStatusCompleted     = "completed"
	PeriodStatusCancelled     = "cancelled"
)

const (
	RecordStatusDraft     = "draft"
	RecordStatusProcessed = "processed"
	RecordStatusPaid      = "paid"
)

const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

// periodTransitions is the legal-transition table for periods. completed and
// cancelled are terminal. Regeneration re-enters processing from either
// processing or sent_for_review.
var periodTransitions = map[string]map[string]bool{
	PeriodStatusDraft: {
		PeriodStatusProcessing: true,
		PeriodStatusCancelled:  true,
	},
	PeriodStatusProcessing: {
		PeriodStatusProcessing:    true,
		PeriodStatusSentForReview: true,
		PeriodStatusCancelled:     true,
	},
	PeriodStatusSentForReview: {
		PeriodStatusProcessing: true,
		PeriodStatusCompleted:  true,
	},
}

// recordTransitions: record statuses are monotonic, no regressions.
var recordTransitions = map[string]map[string]bool{
	RecordStatusDraft: {
		RecordStatusProcessed: true,
	},
	RecordStatusProcessed: {
		RecordStatusPaid: true,
	},
}

func ValidPeriodStatus(s string) bool {
	switch s {
	case PeriodStatusDraft, PeriodStatusProcessing, PeriodStatusSentForReview,
		PeriodStatusCompleted, PeriodStatusCancelled:
		return true
	}
	return false
}

func ValidRecordStatus(s string) bool {
	switch s {
	case RecordStatusDraft, RecordStatusProcessed, RecordStatusPaid:
		return true
	}
	return false
}

func ValidApprovalDecision(s string) bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

// CanTransitionPeriod reports whether a period may move from one status to
// another under the lifecycle table.
func CanTransitionPeriod(from, to string) bool {
	return periodTransitions[from][to]
}

// CheckRecordTransition validates a record status change, including the
// approval gate in front of processed.
func CheckRecordTransition(from, to, approvalStatus string) error {
	if !ValidRecordStatus(to) {
		return payrollerrors.ErrInvalidRecordStatus
	}
	if !recordTransitions[from][to] {
		return payrollerrors.ErrIllegalRecordTransition
	}
	if to == RecordStatusProcessed && approvalStatus != ApprovalStatusApproved {
		return payrollerrors.ErrRecordNotApproved
	}
	return nil
}
