package compensation

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
	comp := r.Group("/compensation")

	comp.Use(middleware.AuthMiddleware())

	read := middleware.RBACAuthorize(rbacService, domain.ResourceCompensation, domain.ActionRead)
	create := middleware.RBACAuthorize(rbacService, domain.ResourceCompensation, domain.ActionCreate)
	update := middleware.RBACAuthorize(rbacService, domain.ResourceCompensation, domain.ActionUpdate)
	remove := middleware.RBACAuthorize(rbacService, domain.ResourceCompensation, domain.ActionDelete)

	{
		comp.GET("/benefit-types", read, h.GetBenefitTypes)
		comp.POST("/benefit-types", create, h.CreateBenefitType)
		comp.PUT("/benefit-types/:id", update, h.UpdateBenefitType)
		comp.DELETE("/benefit-types/:id", remove, h.DeleteBenefitType)

		comp.GET("/deduction-types", read, h.GetDeductionTypes)
		comp.POST("/deduction-types", create, h.CreateDeductionType)
		comp.PUT("/deduction-types/:id", update, h.UpdateDeductionType)
		comp.DELETE("/deduction-types/:id", remove, h.DeleteDeductionType)

		comp.GET("/benefits/employee/:employee_id", read, h.GetEmployeeBenefits)
		comp.POST("/benefits", create, h.AssignBenefit)
		comp.DELETE("/benefits/:id", remove, h.UnassignBenefit)

		comp.GET("/deductions/employee/:employee_id", read, h.GetEmployeeDeductions)
		comp.POST("/deductions", create, h.AssignDeduction)
		comp.DELETE("/deductions/:id", remove, h.UnassignDeduction)
	}
}
