package payroll

type CreatePeriodRequest struct {
	PeriodName    string `json:"period_name" binding:"required,min=1,max=100"`
	StartDate     string `json:"start_date" binding:"required"`
	EndDate       string `json:"end_date" binding:"required"`
	WorkingDays   int    `json:"working_days" binding:"required,min=1,max=31"`
	ExpectedHours int    `json:"expected_hours" binding:"required,min=1"`
}

type UpdatePeriodRequest struct {
	PeriodName    string `json:"period_name" binding:"required,min=1,max=100"`
	StartDate     string `json:"start_date" binding:"required"`
	EndDate       string `json:"end_date" binding:"required"`
	WorkingDays   int    `json:"working_days" binding:"required,min=1,max=31"`
	ExpectedHours int    `json:"expected_hours" binding:"required,min=1"`
}

type ListPeriodsFilter struct {
	Status string `form:"status"`
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type GenerateRequest struct {
	ConfirmRegenerate bool `json:"confirm_regenerate"`
}

type UpdateRecordStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type BulkUpdateStatusRequest struct {
	Status       string  `json:"status" binding:"required"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
}

type BulkMarkPaidRequest struct {
	PeriodID     *string  `json:"period_id" binding:"omitempty,uuid"`
	DepartmentID *string  `json:"department_id" binding:"omitempty,uuid"`
	RecordIDs    []string `json:"record_ids" binding:"omitempty,dive,uuid"`
}

type ListRecordsFilter struct {
	PeriodID     string `form:"period_id" binding:"omitempty,uuid"`
	EmployeeID   string `form:"employee_id" binding:"omitempty,uuid"`
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	Status       string `form:"status"`
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
}

type ApproveRequest struct {
	Status   string  `json:"status" binding:"required"`
	Comments *string `json:"comments" binding:"omitempty,max=1000"`
}

type ListApprovalsFilter struct {
	PeriodID     string `form:"period_id" binding:"omitempty,uuid"`
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	Status       string `form:"status"`
	PendingOnly  bool   `form:"pending_only"`
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
}

type PeriodResponse struct {
	ID            string `json:"id"`
	CompanyID     string `json:"company_id"`
	PeriodName    string `json:"period_name"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	WorkingDays   int    `json:"working_days"`
	ExpectedHours int    `json:"expected_hours"`
	Status        string `json:"status"`
}

type RecordResponse struct {
	ID                 string  `json:"id"`
	PayrollPeriodID    string  `json:"payroll_period_id"`
	EmployeeID         string  `json:"employee_id"`
	DepartmentID       string  `json:"department_id"`
	BaseSalary         int64   `json:"base_salary"`
	HourlyRate         int64   `json:"hourly_rate"`
	TotalWorkedHours   float64 `json:"total_worked_hours"`
	TotalRegularHours  float64 `json:"total_regular_hours"`
	TotalOvertimeHours float64 `json:"total_overtime_hours"`
	TotalLateHours     float64 `json:"total_late_hours"`
	PaidLeaveHours     float64 `json:"paid_leave_hours"`
	LateDeductions     int64   `json:"late_deductions"`
	GrossPay           int64   `json:"gross_pay"`
	NetPay             int64   `json:"net_pay"`
	TotalDeductions    int64   `json:"total_deductions"`
	TotalBenefits      int64   `json:"total_benefits"`
	Status             string  `json:"status"`
	ApprovalStatus     string  `json:"approval_status"`
}

type ApprovalResponse struct {
	ID              string  `json:"id"`
	PayrollPeriodID string  `json:"payroll_period_id"`
	DepartmentID    string  `json:"department_id"`
	ApproverID      *string `json:"approver_id"`
	Status          string  `json:"status"`
	Comments        *string `json:"comments"`
	ApprovedAt      *string `json:"approved_at"`
}

type GenerateResponse struct {
	Period        PeriodResponse `json:"period"`
	RecordCount   int            `json:"record_count"`
	ApprovalCount int            `json:"approval_count"`
}

type BulkUpdateResponse struct {
	UpdatedCount int64 `json:"updated_count"`
}
