package employeesalary

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	employeesalaryerrors "go-payroll/internal/employeesalary/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_salary_service.go -destination=mock/employee_salary_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateEmployeeSalaryRequest) (EmployeeSalaryResponse, error)
	GetByEmployee(ctx context.Context, companyID, employeeID string) ([]EmployeeSalaryResponse, error)
	GetEffective(ctx context.Context, companyID, employeeID string, asOf time.Time) (EmployeeSalaryResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateEmployeeSalaryRequest) (EmployeeSalaryResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("employeesalary.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employeesalary.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, companyID string, req CreateEmployeeSalaryRequest) (EmployeeSalaryResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EmployeeSalaryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	effectiveDate, err := time.Parse("2006-01-02", req.EffectiveDate)
	if err != nil {
		return EmployeeSalaryResponse{}, employeesalaryerrors.ErrInvalidEffectiveDate
	}

	belongs, err := qtx.EmployeeBelongsToCompany(ctx, companyID, req.EmployeeID)
	if err != nil {
		return EmployeeSalaryResponse{}, err
	}
	if !belongs {
		return EmployeeSalaryResponse{}, employeesalaryerrors.ErrEmployeeNotInCompany
	}

	salary := &EmployeeSalary{
		ID:            uuid.New(),
		CompanyID:     uuid.MustParse(companyID),
		EmployeeID:    uuid.MustParse(req.EmployeeID),
		BaseSalary:    req.BaseSalary,
		EffectiveDate: effectiveDate,
	}

	if err := qtx.Create(ctx, salary); err != nil {
		return EmployeeSalaryResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return EmployeeSalaryResponse{}, err
	}

	s.logger.Info("employee salary created",
		zap.String("employee_id", req.EmployeeID),
		zap.String("effective_date", req.EffectiveDate),
	)

	return mapToResponse(*salary), nil
}

func (s *service) GetByEmployee(ctx context.Context, companyID, employeeID string) ([]EmployeeSalaryResponse, error) {
	salaries, err := s.repo.FindAllByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}

	resp := make([]EmployeeSalaryResponse, len(salaries))
	for i, sal := range salaries {
		resp[i] = mapToResponse(sal)
	}
	return resp, nil
}

func (s *service) GetEffective(ctx context.Context, companyID, employeeID string, asOf time.Time) (EmployeeSalaryResponse, error) {
	salary, err := s.repo.FindEffective(ctx, companyID, employeeID, asOf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeSalaryResponse{}, employeesalaryerrors.ErrSalaryNotFound
		}
		return EmployeeSalaryResponse{}, err
	}
	return mapToResponse(*salary), nil
}

func (s *service) Update(ctx context.Context, companyID, id string, req UpdateEmployeeSalaryRequest) (EmployeeSalaryResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EmployeeSalaryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	salary, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeSalaryResponse{}, employeesalaryerrors.ErrSalaryNotFound
		}
		return EmployeeSalaryResponse{}, err
	}

	effectiveDate, err := time.Parse("2006-01-02", req.EffectiveDate)
	if err != nil {
		return EmployeeSalaryResponse{}, employeesalaryerrors.ErrInvalidEffectiveDate
	}

	salary.BaseSalary = req.BaseSalary
	salary.EffectiveDate = effectiveDate

	if err := qtx.Update(ctx, salary); err != nil {
		return EmployeeSalaryResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return EmployeeSalaryResponse{}, err
	}

	return mapToResponse(*salary), nil
}

func mapRepositoryError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_employee_salary_effective" {
			return employeesalaryerrors.ErrSalaryEffectiveDateAlreadyExists
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_employee_salary_effective") {
		return employeesalaryerrors.ErrSalaryEffectiveDateAlreadyExists
	}
	return err
}

func mapToResponse(sal EmployeeSalary) EmployeeSalaryResponse {
	return EmployeeSalaryResponse{
		ID:            sal.ID.String(),
		CompanyID:     sal.CompanyID.String(),
		EmployeeID:    sal.EmployeeID.String(),
		BaseSalary:    sal.BaseSalary,
		EffectiveDate: sal.EffectiveDate.Format("2006-01-02"),
	}
}
