package attendance

type ClockInRequest struct {
	EmployeeID string  `json:"employee_id" binding:"required,uuid"`
	Notes      *string `json:"notes"`
}

type ClockOutRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
}

type CorrectAttendanceRequest struct {
	ClockIn         *string `json:"clock_in"`
	ClockOut        *string `json:"clock_out"`
	LateMinutes     *int    `json:"late_minutes" binding:"omitempty,min=0"`
	OvertimeMinutes *int    `json:"overtime_minutes" binding:"omitempty,min=0"`
	PaidLeave       *bool   `json:"paid_leave"`
	Notes           *string `json:"notes"`
}

type ListAttendanceFilter struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	From       string `form:"from"`
	To         string `form:"to"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

type AttendanceResponse struct {
	ID              string  `json:"id"`
	CompanyID       string  `json:"company_id"`
	EmployeeID      string  `json:"employee_id"`
	WorkDate        string  `json:"work_date"`
	ClockIn         *string `json:"clock_in"`
	ClockOut        *string `json:"clock_out"`
	LateMinutes     int     `json:"late_minutes"`
	OvertimeMinutes int     `json:"overtime_minutes"`
	PaidLeave       bool    `json:"paid_leave"`
	Notes           *string `json:"notes"`
}
