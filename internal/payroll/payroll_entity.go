package payroll

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PayrollPeriod struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID `gorm:"type:uuid;not null;index"`
	PeriodName    string    `gorm:"size:100;not null"`
	StartDate     time.Time `gorm:"type:date;not null"`
	EndDate       time.Time `gorm:"type:date;not null"`
	WorkingDays   int       `gorm:"not null"`
	ExpectedHours int       `gorm:"not null"`
	Status        string    `gorm:"size:20;not null;default:'draft';index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// PayrollRecord carries one employee's computed figures for a period. Money
// fields are in the smallest currency unit; hour fields are decimal hours.
// approval_status mirrors the department-level approval covering the record.
type PayrollRecord struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID          uuid.UUID `gorm:"type:uuid;not null;index"`
	PayrollPeriodID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_record_period_employee"`
	EmployeeID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_record_period_employee"`
	DepartmentID       uuid.UUID `gorm:"type:uuid;not null;index"`
	BaseSalary         int64     `gorm:"not null"`
	HourlyRate         int64     `gorm:"not null"`
	TotalWorkedHours   float64   `gorm:"not null"`
	TotalRegularHours  float64   `gorm:"not null"`
	TotalOvertimeHours float64   `gorm:"not null"`
	TotalLateHours     float64   `gorm:"not null"`
	PaidLeaveHours     float64   `gorm:"not null"`
	LateDeductions     int64     `gorm:"not null"`
	GrossPay           int64     `gorm:"not null"`
	NetPay             int64     `gorm:"not null"`
	TotalDeductions    int64     `gorm:"not null"`
	TotalBenefits      int64     `gorm:"not null"`
	Status             string    `gorm:"size:20;not null;default:'draft';index"`
	ApprovalStatus     string    `gorm:"size:20;not null;default:'pending'"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type PayrollApproval struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	PayrollPeriodID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_approval_dept_period"`
	DepartmentID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_approval_dept_period"`
	ApproverID      *uuid.UUID `gorm:"type:uuid"`
	Status          string     `gorm:"size:20;not null;default:'pending';index"`
	Comments        *string    `gorm:"size:1000"`
	ApprovedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// GenerationRow is the per-employee source row record generation computes
// from: active employee, latest effective base salary as of the period end,
// and summed compensation assignments.
type GenerationRow struct {
	EmployeeID      uuid.UUID
	DepartmentID    uuid.UUID
	EmployeeNumber  string
	FullName        string
	BaseSalary      int64
	TotalBenefits   int64
	TotalDeductions int64
}

// RecordExportRow joins a record with its employee identity for paystubs.
type RecordExportRow struct {
	PayrollRecord
	EmployeeNumber string
	FullName       string
	DepartmentName string
}
