package events

import "time"

const (
	PayrollSentForReviewTopic    = "hr.payroll.review.v1"
	PayrollPeriodCompletedTopic  = "hr.payroll.completed.v1"
	PayrollPaystubRequestedTopic = "hr.payroll.paystub.requested.v1"
)

// PayrollSentForReviewEvent fans out to department heads once records are
// generated and approvals routed.
type PayrollSentForReviewEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	PeriodID    string    `json:"period_id"`
	CompanyID   string    `json:"company_id"`
	Departments []string  `json:"departments"`
	RecordCount int       `json:"record_count"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type PayrollPeriodCompletedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	PeriodID    string    `json:"period_id"`
	CompanyID   string    `json:"company_id"`
	CompletedBy string    `json:"completed_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type PayrollPaystubRequestedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	PeriodID    string    `json:"period_id"`
	CompanyID   string    `json:"company_id"`
	RequestedBy string    `json:"requested_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
