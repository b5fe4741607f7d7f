package payroll

import (
	"context"
	"database/sql"
	"time"

	"go-payroll/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreatePeriod(ctx context.Context, period *PayrollPeriod) error
	FindPeriods(ctx context.Context, companyID string, filter ListPeriodsFilter) ([]PayrollPeriod, int64, error)
	FindPeriodByID(ctx context.Context, companyID string, id string) (*PayrollPeriod, error)
	UpdatePeriod(ctx context.Context, period *PayrollPeriod) error
	DeletePeriod(ctx context.Context, companyID string, id string) error

	CreateRecords(ctx context.Context, records []PayrollRecord) error
	CountRecordsByPeriod(ctx context.Context, companyID string, periodID string) (int64, error)
	DeleteRecordsByPeriod(ctx context.Context, companyID string, periodID string) error
	FindRecords(ctx context.Context, companyID string, filter ListRecordsFilter) ([]PayrollRecord, int64, error)
	FindRecordByID(ctx context.Context, companyID string, id string) (*PayrollRecord, error)
	UpdateRecord(ctx context.Context, record *PayrollRecord) error
	BulkTransitionRecords(ctx context.Context, companyID string, scope BulkScope, from, to string, requireApproved bool) (int64, error)
	MirrorApprovalStatus(ctx context.Context, companyID, periodID, departmentID, approvalStatus string) error
	HasProcessedRecords(ctx context.Context, companyID string, periodID string) (bool, error)
	FindRecordsForExport(ctx context.Context, companyID string, periodID string, departmentID *string) ([]RecordExportRow, error)

	UpsertApproval(ctx context.Context, approval *PayrollApproval) error
	FindApprovalsByPeriod(ctx context.Context, companyID string, periodID string) ([]PayrollApproval, error)
	FindApprovalByID(ctx context.Context, companyID string, id string) (*PayrollApproval, error)
	UpdateApproval(ctx context.Context, approval *PayrollApproval) error
	FindApprovals(ctx context.Context, companyID string, filter ListApprovalsFilter) ([]PayrollApproval, int64, error)

	GenerationRows(ctx context.Context, companyID string, asOf time.Time) ([]GenerationRow, error)
}

// BulkScope narrows a bulk record transition to a period, optionally one
// department, or an explicit id set.
type BulkScope struct {
	PeriodID     *string
	DepartmentID *string
	RecordIDs    []string
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

func (r *repository) CreatePeriod(ctx context.Context, period *PayrollPeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *repository) FindPeriods(ctx context.Context, companyID string, filter ListPeriodsFilter) ([]PayrollPeriod, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&PayrollPeriod{}).
		Scopes(tenant.Scope(companyID))

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		q = q.Where("period_name ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var periods []PayrollPeriod
	err := q.
		Order("start_date DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&periods).Error
	return periods, total, err
}

func (r *repository) FindPeriodByID(ctx context.Context, companyID string, id string) (*PayrollPeriod, error) {
	var period PayrollPeriod
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&period, "id = ?", id).Error
	return &period, err
}

func (r *repository) UpdatePeriod(ctx context.Context, period *PayrollPeriod) error {
	return r.db.WithContext(ctx).Save(period).Error
}

func (r *repository) DeletePeriod(ctx context.Context, companyID string, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&PayrollPeriod{}, "id = ?", id).Error
}

func (r *repository) CreateRecords(ctx context.Context, records []PayrollRecord) error {
	return r.db.WithContext(ctx).CreateInBatches(records, 100).Error
}

func (r *repository) CountRecordsByPeriod(ctx context.Context, companyID string, periodID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PayrollRecord{}).
		Scopes(tenant.Scope(companyID)).
		Where("payroll_period_id = ?", periodID).
		Count(&count).Error
	return count, err
}

// DeleteRecordsByPeriod hard-deletes: regeneration replaces the whole record
// set for the period.
func (r *repository) DeleteRecordsByPeriod(ctx context.Context, companyID string, periodID string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("payroll_period_id = ?", periodID).
		Delete(&PayrollRecord{}).Error
}

func (r *repository) FindRecords(ctx context.Context, companyID string, filter ListRecordsFilter) ([]PayrollRecord, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&PayrollRecord{}).
		Scopes(tenant.Scope(companyID))

	if filter.PeriodID != "" {
		q = q.Where("payroll_period_id = ?", filter.PeriodID)
	}
	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.DepartmentID != "" {
		q = q.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []PayrollRecord
	err := q.
		Order("created_at ASC, id ASC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&records).Error
	return records, total, err
}

func (r *repository) FindRecordByID(ctx context.Context, companyID string, id string) (*PayrollRecord, error) {
	var record PayrollRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&record, "id = ?", id).Error
	return &record, err
}

func (r *repository) UpdateRecord(ctx context.Context, record *PayrollRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// BulkTransitionRecords moves every in-scope record from one status to the
// next in a single statement. The WHERE clause carries the precondition, so
// records that fail it are skipped rather than erroring the batch. Records
// of completed or cancelled periods never match, whatever the scope shape.
func (r *repository) BulkTransitionRecords(ctx context.Context, companyID string, scope BulkScope, from, to string, requireApproved bool) (int64, error) {
	activePeriods := r.db.
		Model(&PayrollPeriod{}).
		Select("id").
		Scopes(tenant.Scope(companyID)).
		Where("status NOT IN ?", []string{PeriodStatusCompleted, PeriodStatusCancelled})

	q := r.db.WithContext(ctx).
		Model(&PayrollRecord{}).
		Scopes(tenant.Scope(companyID)).
		Where("status = ?", from).
		Where("payroll_period_id IN (?)", activePeriods)

	if scope.PeriodID != nil {
		q = q.Where("payroll_period_id = ?", *scope.PeriodID)
	}
	if scope.DepartmentID != nil {
		q = q.Where("department_id = ?", *scope.DepartmentID)
	}
	if len(scope.RecordIDs) > 0 {
		q = q.Where("id IN ?", scope.RecordIDs)
	}
	if requireApproved {
		q = q.Where("approval_status = ?", ApprovalStatusApproved)
	}

	res := q.Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *repository) MirrorApprovalStatus(ctx context.Context, companyID, periodID, departmentID, approvalStatus string) error {
	return r.db.WithContext(ctx).
		Model(&PayrollRecord{}).
		Scopes(tenant.Scope(companyID)).
		Where("payroll_period_id = ?", periodID).
		Where("department_id = ?", departmentID).
		Update("approval_status", approvalStatus).Error
}

func (r *repository) HasProcessedRecords(ctx context.Context, companyID string, periodID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PayrollRecord{}).
		Scopes(tenant.Scope(companyID)).
		Where("payroll_period_id = ?", periodID).
		Where("status IN ?", []string{RecordStatusProcessed, RecordStatusPaid}).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindRecordsForExport(ctx context.Context, companyID string, periodID string, departmentID *string) ([]RecordExportRow, error) {
	q := r.db.WithContext(ctx).
		Model(&PayrollRecord{}).
		Select(
			"payroll_records.*",
			"employees.employee_number AS employee_number",
			"employees.full_name AS full_name",
			"departments.name AS department_name",
		).
		Joins("JOIN employees ON employees.id = payroll_records.employee_id").
		Joins("JOIN departments ON departments.id = payroll_records.department_id").
		Where("payroll_records.company_id = ?", companyID).
		Where("payroll_records.payroll_period_id = ?", periodID)

	if departmentID != nil {
		q = q.Where("payroll_records.department_id = ?", *departmentID)
	}

	var rows []RecordExportRow
	err := q.
		Order("departments.name ASC, employees.full_name ASC").
		Scan(&rows).Error
	return rows, err
}

// UpsertApproval creates the approval entry or resets an existing one to
// pending, keyed on the (department_id, payroll_period_id) constraint.
func (r *repository) UpsertApproval(ctx context.Context, approval *PayrollApproval) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "department_id"}, {Name: "payroll_period_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"status":      ApprovalStatusPending,
				"approver_id": nil,
				"comments":    nil,
				"approved_at": nil,
				"updated_at":  time.Now(),
			}),
		}).
		Create(approval).Error
}

func (r *repository) FindApprovalsByPeriod(ctx context.Context, companyID string, periodID string) ([]PayrollApproval, error) {
	var approvals []PayrollApproval
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("payroll_period_id = ?", periodID).
		Order("created_at ASC, id ASC").
		Find(&approvals).Error
	return approvals, err
}

func (r *repository) FindApprovalByID(ctx context.Context, companyID string, id string) (*PayrollApproval, error) {
	var approval PayrollApproval
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&approval, "id = ?", id).Error
	return &approval, err
}

func (r *repository) UpdateApproval(ctx context.Context, approval *PayrollApproval) error {
	return r.db.WithContext(ctx).Save(approval).Error
}

// FindApprovals excludes approvals whose period has been completed or
// cancelled so finished cycles never show up in approval queues.
func (r *repository) FindApprovals(ctx context.Context, companyID string, filter ListApprovalsFilter) ([]PayrollApproval, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&PayrollApproval{}).
		Joins("JOIN payroll_periods ON payroll_periods.id = payroll_approvals.payroll_period_id").
		Where("payroll_approvals.company_id = ?", companyID).
		Where("payroll_periods.status NOT IN ?", []string{PeriodStatusCompleted, PeriodStatusCancelled})

	if filter.PeriodID != "" {
		q = q.Where("payroll_approvals.payroll_period_id = ?", filter.PeriodID)
	}
	if filter.DepartmentID != "" {
		q = q.Where("payroll_approvals.department_id = ?", filter.DepartmentID)
	}
	if filter.Status != "" {
		q = q.Where("payroll_approvals.status = ?", filter.Status)
	}
	if filter.PendingOnly {
		q = q.Where("payroll_approvals.status = ?", ApprovalStatusPending)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var approvals []PayrollApproval
	err := q.
		Order("payroll_approvals.created_at ASC, payroll_approvals.id ASC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&approvals).Error
	return approvals, total, err
}

// GenerationRows assembles the per-employee inputs for record generation:
// active employees with a department, their latest effective salary at the
// period end, and their summed benefit and deduction assignments.
func (r *repository) GenerationRows(ctx context.Context, companyID string, asOf time.Time) ([]GenerationRow, error) {
	query := `
        SELECT e.id              AS employee_id,
               e.department_id   AS department_id,
               e.employee_number AS employee_number,
               e.full_name       AS full_name,
               s.base_salary     AS base_salary,
               COALESCE(b.total, 0) AS total_benefits,
               COALESCE(d.total, 0) AS total_deductions
        FROM employees e
        JOIN LATERAL (
            SELECT es.base_salary
            FROM employee_salaries es
            WHERE es.employee_id = e.id
              AND es.effective_date <= ?
            ORDER BY es.effective_date DESC
            LIMIT 1
        ) s ON TRUE
        LEFT JOIN (
            SELECT employee_id, SUM(amount) AS total
            FROM employee_benefits
            WHERE company_id = ? AND deleted_at IS NULL
            GROUP BY employee_id
        ) b ON b.employee_id = e.id
        LEFT JOIN (
            SELECT employee_id, SUM(amount) AS total
            FROM employee_deductions
            WHERE company_id = ? AND deleted_at IS NULL
            GROUP BY employee_id
        ) d ON d.employee_id = e.id
        WHERE e.company_id = ?
          AND e.deleted_at IS NULL
          AND e.employment_status = 'active'
          AND e.department_id IS NOT NULL
        ORDER BY e.department_id, e.full_name
    `

	var rows []GenerationRow
	err := r.db.WithContext(ctx).
		Raw(query, asOf.Format("2006-01-02"), companyID, companyID, companyID).
		Scan(&rows).Error
	return rows, err
}
