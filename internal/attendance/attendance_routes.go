package attendance

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
	attendances := r.Group("/attendances")

	attendances.Use(middleware.AuthMiddleware())

	{
		attendances.GET("", middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionRead), h.GetAll)
		attendances.POST("/clock-in", middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionCreate), h.ClockIn)
		attendances.POST("/clock-out", middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionCreate), h.ClockOut)
		attendances.PUT("/:id/correct", middleware.RBACAuthorize(rbacService, domain.ResourceAttendance, domain.ActionUpdate), h.Correct)
	}
}
