package compensation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BenefitType struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_benefit_type_name"`
	Name          string    `gorm:"size:100;not null;uniqueIndex:uq_benefit_type_name"`
	Description   *string   `gorm:"size:500"`
	DefaultAmount int64     `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

type DeductionType struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_deduction_type_name"`
	Name          string    `gorm:"size:100;not null;uniqueIndex:uq_deduction_type_name"`
	Description   *string   `gorm:"size:500"`
	DefaultAmount int64     `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

type EmployeeBenefit struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_employee_benefit"`
	BenefitTypeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_employee_benefit"`
	Amount        int64     `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

type EmployeeDeduction struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_employee_deduction"`
	DeductionTypeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_employee_deduction"`
	Amount          int64     `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

// EmployeeTotal is the per-employee sum of assigned benefit or deduction
// amounts, consumed by payroll record generation.
type EmployeeTotal struct {
	EmployeeID uuid.UUID
	Total      int64
}
