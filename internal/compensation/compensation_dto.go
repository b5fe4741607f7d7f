package compensation

type CreateTypeRequest struct {
	Name          string  `json:"name" binding:"required,min=1,max=100"`
	Description   *string `json:"description" binding:"omitempty,max=500"`
	DefaultAmount int64   `json:"default_amount" binding:"min=0"`
}

type UpdateTypeRequest struct {
	Name          string  `json:"name" binding:"required,min=1,max=100"`
	Description   *string `json:"description" binding:"omitempty,max=500"`
	DefaultAmount int64   `json:"default_amount" binding:"min=0"`
}

type AssignRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	TypeID     string `json:"type_id" binding:"required,uuid"`
	Amount     *int64 `json:"amount" binding:"omitempty,min=0"`
}

type TypeResponse struct {
	ID            string  `json:"id"`
	CompanyID     string  `json:"company_id"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	DefaultAmount int64   `json:"default_amount"`
}

type AssignmentResponse struct {
	ID         string `json:"id"`
	CompanyID  string `json:"company_id"`
	EmployeeID string `json:"employee_id"`
	TypeID     string `json:"type_id"`
	Amount     int64  `json:"amount"`
}
