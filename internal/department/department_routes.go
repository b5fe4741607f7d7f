package department

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
	departments := r.Group("/departments")

	departments.Use(middleware.AuthMiddleware())

	{
		departments.GET("", middleware.RBACAuthorize(rbacService, domain.ResourceDepartment, domain.ActionRead), h.GetAll)
		departments.POST("", middleware.RBACAuthorize(rbacService, domain.ResourceDepartment, domain.ActionCreate), h.Create)
		departments.GET("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceDepartment, domain.ActionRead), h.GetById)
		departments.PUT("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceDepartment, domain.ActionUpdate), h.Update)
		departments.DELETE("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceDepartment, domain.ActionDelete), h.Delete)
	}
}
