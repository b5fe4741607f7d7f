package employeesalary

type CreateEmployeeSalaryRequest struct {
	EmployeeID    string `json:"employee_id" binding:"required,uuid"`
	BaseSalary    int64  `json:"base_salary" binding:"min=0"`
	EffectiveDate string `json:"effective_date" binding:"required"`
}

type UpdateEmployeeSalaryRequest struct {
	BaseSalary    int64  `json:"base_salary" binding:"min=0"`
	EffectiveDate string `json:"effective_date" binding:"required"`
}

type EmployeeSalaryResponse struct {
	ID            string `json:"id"`
	CompanyID     string `json:"company_id"`
	EmployeeID    string `json:"employee_id"`
	BaseSalary    int64  `json:"base_salary"`
	EffectiveDate string `json:"effective_date"`
}
