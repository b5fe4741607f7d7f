package payrollerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll period not found",
		http.StatusNotFound,
	)
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll record not found",
		http.StatusNotFound,
	)
	ErrApprovalNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll approval not found",
		http.StatusNotFound,
	)
	ErrPeriodCompleted = apperror.New(
		apperror.CodeInvalidState,
		"payroll period is completed and can no longer be modified",
		http.StatusUnprocessableEntity,
	)
	ErrPeriodCancelled = apperror.New(
		apperror.CodeInvalidState,
		"payroll period is cancelled",
		http.StatusUnprocessableEntity,
	)
	ErrPeriodNotDraft = apperror.New(
		apperror.CodeInvalidState,
		"payroll period can only be modified while in draft",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidPeriodDates = apperror.New(
		apperror.CodeInvalidInput,
		"end_date must be after start_date",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrRegenerateNeedsConfirm = apperror.New(
		apperror.CodeConflict,
		"period already has records; regeneration discards them, set confirm_regenerate to proceed",
		http.StatusConflict,
	)
	ErrNoEmployeesForPeriod = apperror.New(
		apperror.CodeInvalidState,
		"no active employees with a salary to generate records for",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidRecordStatus = apperror.New(
		apperror.CodeInvalidInput,
		"invalid record status",
		http.StatusBadRequest,
	)
	ErrIllegalRecordTransition = apperror.New(
		apperror.CodeInvalidState,
		"record status transition is not allowed",
		http.StatusUnprocessableEntity,
	)
	ErrRecordNotApproved = apperror.New(
		apperror.CodeInvalidState,
		"record cannot be processed until its department approval is approved",
		http.StatusUnprocessableEntity,
	)
	ErrApprovalsNotAllApproved = apperror.New(
		apperror.CodeInvalidState,
		"all department approvals must be approved before completing the period",
		http.StatusUnprocessableEntity,
	)
	ErrNoProcessedRecords = apperror.New(
		apperror.CodeInvalidState,
		"at least one record must be processed before completing the period",
		http.StatusUnprocessableEntity,
	)
	ErrApprovalAlreadyDecided = apperror.New(
		apperror.CodeInvalidState,
		"approval has already been decided",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidApprovalDecision = apperror.New(
		apperror.CodeInvalidInput,
		"approval status must be approved or rejected",
		http.StatusBadRequest,
	)
	ErrIllegalPeriodTransition = apperror.New(
		apperror.CodeInvalidState,
		"period status transition is not allowed",
		http.StatusUnprocessableEntity,
	)
	ErrPeriodHasNoApprovals = apperror.New(
		apperror.CodeInvalidState,
		"payroll period has not been sent for review",
		http.StatusUnprocessableEntity,
	)
)
