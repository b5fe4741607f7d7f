package attendance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Attendance struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	EmployeeID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_employee_work_date"`
	WorkDate        time.Time  `gorm:"type:date;not null;uniqueIndex:uq_attendance_employee_work_date"`
	ClockIn         *time.Time `gorm:"type:timestamptz"`
	ClockOut        *time.Time `gorm:"type:timestamptz"`
	LateMinutes     int        `gorm:"not null;default:0"`
	OvertimeMinutes int        `gorm:"not null;default:0"`
	PaidLeave       bool       `gorm:"not null;default:false"`
	Notes           *string    `gorm:"size:500"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

// PeriodAggregate is the per-employee attendance rollup over a date range.
// Minutes are summed server-side so record generation never loads raw rows.
type PeriodAggregate struct {
	EmployeeID      uuid.UUID
	WorkedMinutes   int64
	OvertimeMinutes int64
	LateMinutes     int64
	PaidLeaveDays   int64
}
