package payroll

import (
	"math"

	"go-payroll/internal/attendance"

	"github.com/google/uuid"
)

const (
	overtimeMultiplier = 1.5
	paidLeaveDayHours  = 8
)

// computeRecord derives one employee's pay figures from their salary row,
// the period parameters, and the attendance rollup. An employee with no
// attendance rows is credited the period's expected hours as regular time.
func computeRecord(period *PayrollPeriod, row GenerationRow, agg *attendance.PeriodAggregate) PayrollRecord {
	hourlyRate := int64(math.Round(float64(row.BaseSalary) / float64(period.ExpectedHours)))

	var worked, overtime, late, paidLeave float64
	if agg != nil {
		worked = roundHours(float64(agg.WorkedMinutes) / 60)
		overtime = roundHours(float64(agg.OvertimeMinutes) / 60)
		late = roundHours(float64(agg.LateMinutes) / 60)
		paidLeave = float64(agg.PaidLeaveDays) * paidLeaveDayHours
	} else {
		worked = float64(period.ExpectedHours)
	}

	regular := roundHours(worked - overtime)
	if regular < 0 {
		regular = 0
	}

	overtimePay := int64(math.Round(overtime * float64(hourlyRate) * overtimeMultiplier))
	lateDeductions := int64(math.Round(late * float64(hourlyRate)))

	gross := row.BaseSalary + overtimePay
	net := gross - row.TotalDeductions - lateDeductions + row.TotalBenefits

	return PayrollRecord{
		ID:                 uuid.New(),
		CompanyID:          period.CompanyID,
		PayrollPeriodID:    period.ID,
		EmployeeID:         row.EmployeeID,
		DepartmentID:       row.DepartmentID,
		BaseSalary:         row.BaseSalary,
		HourlyRate:         hourlyRate,
		TotalWorkedHours:   worked,
		TotalRegularHours:  regular,
		TotalOvertimeHours: overtime,
		TotalLateHours:     late,
		PaidLeaveHours:     paidLeave,
		LateDeductions:     lateDeductions,
		GrossPay:           gross,
		NetPay:             net,
		TotalDeductions:    row.TotalDeductions,
		TotalBenefits:      row.TotalBenefits,
		Status:             RecordStatusDraft,
		ApprovalStatus:     ApprovalStatusPending,
	}
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
