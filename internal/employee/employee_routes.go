package employee

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
	employees := r.Group("/employees")

	employees.Use(middleware.AuthMiddleware())

	{
		employees.GET("", middleware.RBACAuthorize(rbacService, domain.ResourceEmployee, domain.ActionRead), h.GetAll)
		employees.GET("/options", middleware.RBACAuthorize(rbacService, domain.ResourceEmployee, domain.ActionRead), h.GetOptions)
		employees.POST("", middleware.RBACAuthorize(rbacService, domain.ResourceEmployee, domain.ActionCreate), h.Create)
		employees.GET("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceEmployee, domain.ActionRead), h.GetById)
		employees.PUT("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceEmployee, domain.ActionUpdate), h.Update)
		employees.DELETE("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceEmployee, domain.ActionDelete), h.Delete)
	}
}
