package compensationerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrBenefitTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"benefit type not found",
		http.StatusNotFound,
	)
	ErrDeductionTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"deduction type not found",
		http.StatusNotFound,
	)
	ErrAssignmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"compensation assignment not found",
		http.StatusNotFound,
	)
	ErrTypeNameAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"a type with this name already exists",
		http.StatusConflict,
	)
	ErrBenefitAlreadyAssigned = apperror.New(
		apperror.CodeConflict,
		"benefit is already assigned to this employee",
		http.StatusConflict,
	)
	ErrDeductionAlreadyAssigned = apperror.New(
		apperror.CodeConflict,
		"deduction is already assigned to this employee",
		http.StatusConflict,
	)
	ErrEmployeeNotInCompany = apperror.New(
		apperror.CodeInvalidInput,
		"employee does not belong to this company",
		http.StatusBadRequest,
	)
	ErrTypeInUse = apperror.New(
		apperror.CodeConflict,
		"type is assigned to employees and cannot be deleted",
		http.StatusConflict,
	)
)
