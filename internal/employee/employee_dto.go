package employee

type CreateEmployeeRequest struct {
	FullName         string  `json:"full_name" binding:"required"`
	Email            string  `json:"email" binding:"required,email"`
	DepartmentID     string  `json:"department_id" binding:"required,uuid"`
	EmployeeNumber   string  `json:"employee_number"`
	Phone            *string `json:"phone"`
	HireDate         string  `json:"hire_date" binding:"required"`
	EmploymentStatus string  `json:"employment_status" binding:"omitempty,oneof=active on_leave terminated"`
}

type UpdateEmployeeRequest struct {
	FullName         string  `json:"full_name" binding:"required"`
	Email            string  `json:"email" binding:"required,email"`
	DepartmentID     string  `json:"department_id" binding:"required,uuid"`
	Phone            *string `json:"phone"`
	EmploymentStatus string  `json:"employment_status" binding:"omitempty,oneof=active on_leave terminated"`
}

type EmployeeResponse struct {
	ID               string  `json:"id"`
	CompanyID        string  `json:"company_id"`
	DepartmentID     *string `json:"department_id,omitempty"`
	EmployeeNumber   string  `json:"employee_number"`
	FullName         string  `json:"full_name"`
	Email            string  `json:"email"`
	Phone            *string `json:"phone,omitempty"`
	HireDate         string  `json:"hire_date"`
	EmploymentStatus string  `json:"employment_status"`
}
