package employeesalary

import (
	"go-payroll/internal/domain"
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	rbacService rbac.Service,
) {
	salaries := r.Group("/employee-salaries")

	salaries.Use(middleware.AuthMiddleware())

	{
		salaries.POST("", middleware.RBACAuthorize(rbacService, domain.ResourceEmployeeSalary, domain.ActionCreate), h.Create)
		salaries.GET("/employee/:employee_id", middleware.RBACAuthorize(rbacService, domain.ResourceEmployeeSalary, domain.ActionRead), h.GetByEmployee)
		salaries.GET("/employee/:employee_id/effective", middleware.RBACAuthorize(rbacService, domain.ResourceEmployeeSalary, domain.ActionRead), h.GetEffective)
		salaries.PUT("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceEmployeeSalary, domain.ActionUpdate), h.Update)
	}
}
