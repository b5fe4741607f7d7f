package attendance

import (
	"context"
	"database/sql"
	"time"

	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, att *Attendance) error
	Update(ctx context.Context, att *Attendance) error
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Attendance, error)
	FindByEmployeeAndDate(ctx context.Context, companyID string, employeeID string, workDate time.Time) (*Attendance, error)
	FindAllByCompany(ctx context.Context, companyID string, filter ListAttendanceFilter) ([]Attendance, int64, error)
	AggregateByPeriod(ctx context.Context, companyID string, from, to time.Time) ([]PeriodAggregate, error)
	EmployeeBelongsToCompany(ctx context.Context, companyID string, employeeID string) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) Create(ctx context.Context, att *Attendance) error {
	return r.db.WithContext(ctx).Create(att).Error
}

func (r *repository) Update(ctx context.Context, att *Attendance) error {
	return r.db.WithContext(ctx).Save(att).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Attendance, error) {
	var att Attendance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&att, "id = ?", id).Error
	return &att, err
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, companyID string, employeeID string, workDate time.Time) (*Attendance, error) {
	var att Attendance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("work_date = ?", workDate.Format("2006-01-02")).
		First(&att).Error
	return &att, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string, filter ListAttendanceFilter) ([]Attendance, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Scopes(tenant.Scope(companyID))

	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.From != "" {
		q = q.Where("work_date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("work_date <= ?", filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []Attendance
	err := q.
		Order("work_date DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&rows).Error
	return rows, total, err
}

// AggregateByPeriod rolls attendance up per employee for the given date range.
// Worked minutes only count rows with both clock marks present; paid-leave
// days are counted separately so record generation can credit them as hours.
func (r *repository) AggregateByPeriod(ctx context.Context, companyID string, from, to time.Time) ([]PeriodAggregate, error) {
	var aggs []PeriodAggregate
	err := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Scopes(tenant.Scope(companyID)).
		Select(
			"employee_id",
			"COALESCE(SUM(CASE WHEN clock_in IS NOT NULL AND clock_out IS NOT NULL THEN EXTRACT(EPOCH FROM (clock_out - clock_in)) / 60 ELSE 0 END), 0)::bigint AS worked_minutes",
			"COALESCE(SUM(overtime_minutes), 0) AS overtime_minutes",
			"COALESCE(SUM(late_minutes), 0) AS late_minutes",
			"COALESCE(SUM(CASE WHEN paid_leave THEN 1 ELSE 0 END), 0) AS paid_leave_days",
		).
		Where("work_date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Group("employee_id").
		Scan(&aggs).Error
	return aggs, err
}

func (r *repository) EmployeeBelongsToCompany(ctx context.Context, companyID string, employeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("employees").
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", employeeID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}
