package employeesalary

import (
	"time"

	"github.com/google/uuid"
)

// EmployeeSalary rows are effective-dated; the row with the latest
// effective_date at or before a payroll period's end supplies that period's
// base salary. Amounts are stored in the smallest currency unit.
type EmployeeSalary struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_employee_salary_effective"`
	BaseSalary    int64     `gorm:"type:bigint;not null;default:0"`
	EffectiveDate time.Time `gorm:"type:date;not null;uniqueIndex:uq_employee_salary_effective"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
