package compensation

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	compensationerrors "go-payroll/internal/compensation/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=compensation_service.go -destination=mock/compensation_service_mock.go -package=mock
type Service interface {
	CreateBenefitType(ctx context.Context, companyID string, req CreateTypeRequest) (TypeResponse, error)
	GetBenefitTypes(ctx context.Context, companyID string) ([]TypeResponse, error)
	UpdateBenefitType(ctx context.Context, companyID, id string, req UpdateTypeRequest) (TypeResponse, error)
	DeleteBenefitType(ctx context.Context, companyID, id string) error

	CreateDeductionType(ctx context.Context, companyID string, req CreateTypeRequest) (TypeResponse, error)
	GetDeductionTypes(ctx context.Context, companyID string) ([]TypeResponse, error)
	UpdateDeductionType(ctx context.Context, companyID, id string, req UpdateTypeRequest) (TypeResponse, error)
	DeleteDeductionType(ctx context.Context, companyID, id string) error

	AssignBenefit(ctx context.Context, companyID string, req AssignRequest) (AssignmentResponse, error)
	GetEmployeeBenefits(ctx context.Context, companyID, employeeID string) ([]AssignmentResponse, error)
	UnassignBenefit(ctx context.Context, companyID, id string) error

	AssignDeduction(ctx context.Context, companyID string, req AssignRequest) (AssignmentResponse, error)
	GetEmployeeDeductions(ctx context.Context, companyID, employeeID string) ([]AssignmentResponse, error)
	UnassignDeduction(ctx context.Context, companyID, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("compensation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("compensation.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) CreateBenefitType(ctx context.Context, companyID string, req CreateTypeRequest) (TypeResponse, error) {
	bt := &BenefitType{
		ID:            uuid.New(),
		CompanyID:     uuid.MustParse(companyID),
		Name:          req.Name,
		Description:   req.Description,
		DefaultAmount: req.DefaultAmount,
	}

	if err := s.repo.CreateBenefitType(ctx, bt); err != nil {
		return TypeResponse{}, mapUniqueViolation(err)
	}

	s.logger.Info("benefit type created", zap.String("name", req.Name))
	return mapTypeResponse(bt.ID, bt.CompanyID, bt.Name, bt.Description, bt.DefaultAmount), nil
}

func (s *service) GetBenefitTypes(ctx context.Context, companyID string) ([]TypeResponse, error) {
	types, err := s.repo.FindBenefitTypes(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]TypeResponse, len(types))
	for i, bt := range types {
		resp[i] = mapTypeResponse(bt.ID, bt.CompanyID, bt.Name, bt.Description, bt.DefaultAmount)
	}
	return resp, nil
}

func (s *service) UpdateBenefitType(ctx context.Context, companyID, id string, req UpdateTypeRequest) (TypeResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TypeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	bt, err := qtx.FindBenefitTypeByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TypeResponse{}, compensationerrors.ErrBenefitTypeNotFound
		}
		return TypeResponse{}, err
	}

	bt.Name = req.Name
	bt.Description = req.Description
	bt.DefaultAmount = req.DefaultAmount

	if err := qtx.UpdateBenefitType(ctx, bt); err != nil {
		return TypeResponse{}, mapUniqueViolation(err)
	}

	if err := tx.Commit(); err != nil {
		return TypeResponse{}, err
	}

	return mapTypeResponse(bt.ID, bt.CompanyID, bt.Name, bt.Description, bt.DefaultAmount), nil
}

func (s *service) DeleteBenefitType(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindBenefitTypeByID(ctx, companyID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return compensationerrors.ErrBenefitTypeNotFound
		}
		return err
	}

	inUse, err := qtx.BenefitTypeHasAssignments(ctx, companyID, id)
	if err != nil {
		return err
	}
	if inUse {
		return compensationerrors.ErrTypeInUse
	}

	if err := qtx.DeleteBenefitType(ctx, companyID, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) CreateDeductionType(ctx context.Context, companyID string, req CreateTypeRequest) (TypeResponse, error) {
	dt := &DeductionType{
		ID:            uuid.New(),
		CompanyID:     uuid.MustParse(companyID),
		Name:          req.Name,
		Description:   req.Description,
		DefaultAmount: req.DefaultAmount,
	}

	if err := s.repo.CreateDeductionType(ctx, dt); err != nil {
		return TypeResponse{}, mapUniqueViolation(err)
	}

	s.logger.Info("deduction type created", zap.String("name", req.Name))
	return mapTypeResponse(dt.ID, dt.CompanyID, dt.Name, dt.Description, dt.DefaultAmount), nil
}

func (s *service) GetDeductionTypes(ctx context.Context, companyID string) ([]TypeResponse, error) {
	types, err := s.repo.FindDeductionTypes(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]TypeResponse, len(types))
	for i, dt := range types {
		resp[i] = mapTypeResponse(dt.ID, dt.CompanyID, dt.Name, dt.Description, dt.DefaultAmount)
	}
	return resp, nil
}

func (s *service) UpdateDeductionType(ctx context.Context, companyID, id string, req UpdateTypeRequest) (TypeResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TypeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	dt, err := qtx.FindDeductionTypeByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TypeResponse{}, compensationerrors.ErrDeductionTypeNotFound
		}
		return TypeResponse{}, err
	}

	dt.Name = req.Name
	dt.Description = req.Description
	dt.DefaultAmount = req.DefaultAmount

	if err := qtx.UpdateDeductionType(ctx, dt); err != nil {
		return TypeResponse{}, mapUniqueViolation(err)
	}

	if err := tx.Commit(); err != nil {
		return TypeResponse{}, err
	}

	return mapTypeResponse(dt.ID, dt.CompanyID, dt.Name, dt.Description, dt.DefaultAmount), nil
}

func (s *service) DeleteDeductionType(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindDeductionTypeByID(ctx, companyID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return compensationerrors.ErrDeductionTypeNotFound
		}
		return err
	}

	inUse, err := qtx.DeductionTypeHasAssignments(ctx, companyID, id)
	if err != nil {
		return err
	}
	if inUse {
		return compensationerrors.ErrTypeInUse
	}

	if err := qtx.DeleteDeductionType(ctx, companyID, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) AssignBenefit(ctx context.Context, companyID string, req AssignRequest) (AssignmentResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AssignmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	belongs, err := qtx.EmployeeBelongsToCompany(ctx, companyID, req.EmployeeID)
	if err != nil {
		return AssignmentResponse{}, err
	}
	if !belongs {
		return AssignmentResponse{}, compensationerrors.ErrEmployeeNotInCompany
	}

	bt, err := qtx.FindBenefitTypeByID(ctx, companyID, req.TypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AssignmentResponse{}, compensationerrors.ErrBenefitTypeNotFound
		}
		return AssignmentResponse{}, err
	}

	amount := bt.DefaultAmount
	if req.Amount != nil {
		amount = *req.Amount
	}

	eb := &EmployeeBenefit{
		ID:            uuid.New(),
		CompanyID:     uuid.MustParse(companyID),
		EmployeeID:    uuid.MustParse(req.EmployeeID),
		BenefitTypeID: bt.ID,
		Amount:        amount,
	}

	if err := qtx.CreateEmployeeBenefit(ctx, eb); err != nil {
		if isUniqueViolation(err) {
			return AssignmentResponse{}, compensationerrors.ErrBenefitAlreadyAssigned
		}
		return AssignmentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return AssignmentResponse{}, err
	}

	s.logger.Info("benefit assigned",
		zap.String("employee_id", req.EmployeeID),
		zap.String("benefit_type_id", req.TypeID),
	)

	return AssignmentResponse{
		ID:         eb.ID.String(),
		CompanyID:  eb.CompanyID.String(),
		EmployeeID: eb.EmployeeID.String(),
		TypeID:     eb.BenefitTypeID.String(),
		Amount:     eb.Amount,
	}, nil
}

func (s *service) GetEmployeeBenefits(ctx context.Context, companyID, employeeID string) ([]AssignmentResponse, error) {
	rows, err := s.repo.FindEmployeeBenefits(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}

	resp := make([]AssignmentResponse, len(rows))
	for i, eb := range rows {
		resp[i] = AssignmentResponse{
			ID:         eb.ID.String(),
			CompanyID:  eb.CompanyID.String(),
			EmployeeID: eb.EmployeeID.String(),
			TypeID:     eb.BenefitTypeID.String(),
			Amount:     eb.Amount,
		}
	}
	return resp, nil
}

func (s *service) UnassignBenefit(ctx context.Context, companyID, id string) error {
	return s.repo.DeleteEmployeeBenefit(ctx, companyID, id)
}

func (s *service) AssignDeduction(ctx context.Context, companyID string, req AssignRequest) (AssignmentResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AssignmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	belongs, err := qtx.EmployeeBelongsToCompany(ctx, companyID, req.EmployeeID)
	if err != nil {
		return AssignmentResponse{}, err
	}
	if !belongs {
		return AssignmentResponse{}, compensationerrors.ErrEmployeeNotInCompany
	}

	dt, err := qtx.FindDeductionTypeByID(ctx, companyID, req.TypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AssignmentResponse{}, compensationerrors.ErrDeductionTypeNotFound
		}
		return AssignmentResponse{}, err
	}

	amount := dt.DefaultAmount
	if req.Amount != nil {
		amount = *req.Amount
	}

	ed := &EmployeeDeduction{
		ID:              uuid.New(),
		CompanyID:       uuid.MustParse(companyID),
		EmployeeID:      uuid.MustParse(req.EmployeeID),
		DeductionTypeID: dt.ID,
		Amount:          amount,
	}

	if err := qtx.CreateEmployeeDeduction(ctx, ed); err != nil {
		if isUniqueViolation(err) {
			return AssignmentResponse{}, compensationerrors.ErrDeductionAlreadyAssigned
		}
		return AssignmentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return AssignmentResponse{}, err
	}

	s.logger.Info("deduction assigned",
		zap.String("employee_id", req.EmployeeID),
		zap.String("deduction_type_id", req.TypeID),
	)

	return AssignmentResponse{
		ID:         ed.ID.String(),
		CompanyID:  ed.CompanyID.String(),
		EmployeeID: ed.EmployeeID.String(),
		TypeID:     ed.DeductionTypeID.String(),
		Amount:     ed.Amount,
	}, nil
}

func (s *service) GetEmployeeDeductions(ctx context.Context, companyID, employeeID string) ([]AssignmentResponse, error) {
	rows, err := s.repo.FindEmployeeDeductions(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}

	resp := make([]AssignmentResponse, len(rows))
	for i, ed := range rows {
		resp[i] = AssignmentResponse{
			ID:         ed.ID.String(),
			CompanyID:  ed.CompanyID.String(),
			EmployeeID: ed.EmployeeID.String(),
			TypeID:     ed.DeductionTypeID.String(),
			Amount:     ed.Amount,
		}
	}
	return resp, nil
}

func (s *service) UnassignDeduction(ctx context.Context, companyID, id string) error {
	return s.repo.DeleteEmployeeDeduction(ctx, companyID, id)
}

func mapUniqueViolation(err error) error {
	if isUniqueViolation(err) {
		return compensationerrors.ErrTypeNameAlreadyExists
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key value")
}

func mapTypeResponse(id, companyID uuid.UUID, name string, description *string, defaultAmount int64) TypeResponse {
	return TypeResponse{
		ID:            id.String(),
		CompanyID:     companyID.String(),
		Name:          name,
		Description:   description,
		DefaultAmount: defaultAmount,
	}
}
