package compensation

import (
	"context"
	"database/sql"

	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=compensation_repo.go -destination=mock/compensation_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreateBenefitType(ctx context.Context, bt *BenefitType) error
	FindBenefitTypes(ctx context.Context, companyID string) ([]BenefitType, error)
	FindBenefitTypeByID(ctx context.Context, companyID string, id string) (*BenefitType, error)
	UpdateBenefitType(ctx context.Context, bt *BenefitType) error
	DeleteBenefitType(ctx context.Context, companyID string, id string) error
	BenefitTypeHasAssignments(ctx context.Context, companyID string, id string) (bool, error)

	CreateDeductionType(ctx context.Context, dt *DeductionType) error
	FindDeductionTypes(ctx context.Context, companyID string) ([]DeductionType, error)
	FindDeductionTypeByID(ctx context.Context, companyID string, id string) (*DeductionType, error)
	UpdateDeductionType(ctx context.Context, dt *DeductionType) error
	DeleteDeductionType(ctx context.Context, companyID string, id string) error
	DeductionTypeHasAssignments(ctx context.Context, companyID string, id string) (bool, error)

	CreateEmployeeBenefit(ctx context.Context, eb *EmployeeBenefit) error
	FindEmployeeBenefits(ctx context.Context, companyID string, employeeID string) ([]EmployeeBenefit, error)
	DeleteEmployeeBenefit(ctx context.Context, companyID string, id string) error

	CreateEmployeeDeduction(ctx context.Context, ed *EmployeeDeduction) error
	FindEmployeeDeductions(ctx context.Context, companyID string, employeeID string) ([]EmployeeDeduction, error)
	DeleteEmployeeDeduction(ctx context.Context, companyID string, id string) error

	SumBenefitsByEmployee(ctx context.Context, companyID string) ([]EmployeeTotal, error)
	SumDeductionsByEmployee(ctx context.Context, companyID string) ([]EmployeeTotal, error)

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

func (r *repository) CreateBenefitType(ctx context.Context, bt *BenefitType) error {
	return r.db.WithContext(ctx).Create(bt).Error
}

func (r *repository) FindBenefitTypes(ctx context.Context, companyID string) ([]BenefitType, error) {
	var types []BenefitType
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("name ASC").
		Find(&types).Error
	return types, err
}

func (r *repository) FindBenefitTypeByID(ctx context.Context, companyID string, id string) (*BenefitType, error) {
	var bt BenefitType
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&bt, "id = ?", id).Error
	return &bt, err
}

func (r *repository) UpdateBenefitType(ctx context.Context, bt *BenefitType) error {
	return r.db.WithContext(ctx).Save(bt).Error
}

func (r *repository) DeleteBenefitType(ctx context.Context, companyID string, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&BenefitType{}, "id = ?", id).Error
}

func (r *repository) BenefitTypeHasAssignments(ctx context.Context, companyID string, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&EmployeeBenefit{}).
		Scopes(tenant.Scope(companyID)).
		Where("benefit_type_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CreateDeductionType(ctx context.Context, dt *DeductionType) error {
	return r.db.WithContext(ctx).Create(dt).Error
}

func (r *repository) FindDeductionTypes(ctx context.Context, companyID string) ([]DeductionType, error) {
	var types []DeductionType
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("name ASC").
		Find(&types).Error
	return types, err
}

func (r *repository) FindDeductionTypeByID(ctx context.Context, companyID string, id string) (*DeductionType, error) {
	var dt DeductionType
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&dt, "id = ?", id).Error
	return &dt, err
}

func (r *repository) UpdateDeductionType(ctx context.Context, dt *DeductionType) error {
	return r.db.WithContext(ctx).Save(dt).Error
}

func (r *repository) DeleteDeductionType(ctx context.Context, companyID string, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&DeductionType{}, "id = ?", id).Error
}

func (r *repository) DeductionTypeHasAssignments(ctx context.Context, companyID string, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&EmployeeDeduction{}).
		Scopes(tenant.Scope(companyID)).
		Where("deduction_type_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CreateEmployeeBenefit(ctx context.Context, eb *EmployeeBenefit) error {
	return r.db.WithContext(ctx).Create(eb).Error
}

func (r *repository) FindEmployeeBenefits(ctx context.Context, companyID string, employeeID string) ([]EmployeeBenefit, error) {
	var rows []EmployeeBenefit
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Find(&rows).Error
	return rows, err
}

func (r *repository) DeleteEmployeeBenefit(ctx context.Context, companyID string, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&EmployeeBenefit{}, "id = ?", id).Error
}

func (r *repository) CreateEmployeeDeduction(ctx context.Context, ed *EmployeeDeduction) error {
	return r.db.WithContext(ctx).Create(ed).Error
}

func (r *repository) FindEmployeeDeductions(ctx context.Context, companyID string, employeeID string) ([]EmployeeDeduction, error) {
	var rows []EmployeeDeduction
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Find(&rows).Error
	return rows, err
}

func (r *repository) DeleteEmployeeDeduction(ctx context.Context, companyID string, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&EmployeeDeduction{}, "id = ?", id).Error
}

func (r *repository) SumBenefitsByEmployee(ctx context.Context, companyID string) ([]EmployeeTotal, error) {
	var totals []EmployeeTotal
	err := r.db.WithContext(ctx).
		Model(&EmployeeBenefit{}).
		Scopes(tenant.Scope(companyID)).
		Select("employee_id", "COALESCE(SUM(amount), 0) AS total").
		Group("employee_id").
		Scan(&totals).Error
	return totals, err
}

func (r *repository) SumDeductionsByEmployee(ctx context.Context, companyID string) ([]EmployeeTotal, error) {
	var totals []EmployeeTotal
	err := r.db.WithContext(ctx).
		Model(&EmployeeDeduction{}).
		Scopes(tenant.Scope(companyID)).
		Select("employee_id", "COALESCE(SUM(amount), 0) AS total").
		Group("employee_id").
		Scan(&totals).Error
	return totals, err
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
