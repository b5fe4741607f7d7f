package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EmploymentActive     = "active"
	EmploymentOnLeave    = "on_leave"
	EmploymentTerminated = "terminated"
)

type Employee struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	DepartmentID     *uuid.UUID `gorm:"type:uuid;index"`
	EmployeeNumber   string     `gorm:"size:20;not null;uniqueIndex:idx_company_employee_number"`
	FullName         string     `gorm:"size:255;not null"`
	Email            string     `gorm:"size:255;uniqueIndex"`
	Phone            *string    `gorm:"size:30"`
	HireDate         time.Time  `gorm:"type:date;not null"`
	EmploymentStatus string     `gorm:"size:20;not null;default:'active'"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}
