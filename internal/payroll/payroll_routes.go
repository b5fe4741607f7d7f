package payroll

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
	idempotency gin.HandlerFunc,
) {
	p := r.Group("/payroll")

	p.Use(middleware.AuthMiddleware())

	read := middleware.RBACAuthorize(rbacService, domain.ResourcePayroll, domain.ActionRead)
	create := middleware.RBACAuthorize(rbacService, domain.ResourcePayroll, domain.ActionCreate)
	update := middleware.RBACAuthorize(rbacService, domain.ResourcePayroll, domain.ActionUpdate)
	remove := middleware.RBACAuthorize(rbacService, domain.ResourcePayroll, domain.ActionDelete)
	pay := middleware.RBACAuthorize(rbacService, domain.ResourcePayroll, domain.ActionPay)
	complete := middleware.RBACAuthorize(rbacService, domain.ResourcePayroll, domain.ActionComplete)
	approve := middleware.RBACAuthorize(rbacService, domain.ResourcePayrollApproval, domain.ActionApprove)

	{
		p.GET("/periods", read, h.GetPeriods)
		p.POST("/periods", create, h.CreatePeriod)
		p.GET("/periods/:id", read, h.GetPeriodById)
		p.PUT("/periods/:id", update, h.UpdatePeriod)
		p.DELETE("/periods/:id", remove, h.DeletePeriod)
		p.PUT("/periods/:id/cancel", update, h.CancelPeriod)

		// destructive when regenerating, hence the idempotency guard
		p.POST("/periods/:id/generate", create, idempotency, h.Generate)
		p.POST("/periods/:id/approvals", create, h.SendToDepartments)

		p.GET("/records", read, h.GetRecords)
		p.PUT("/records/:id/status", update, h.UpdateRecordStatus)
		p.PUT("/periods/:id/records/status", update, h.BulkUpdateStatus)
		p.PUT("/records/bulk-paid", pay, h.BulkMarkPaid)
		p.PUT("/periods/:id/complete", complete, h.CompletePeriod)

		p.GET("/approvals", read, h.GetApprovals)
		p.PUT("/approvals/:id/approve", approve, h.Approve)

		p.GET("/periods/:id/export/paystubs/pdf", read, h.ExportPeriodPaystubs)
		p.GET("/periods/:id/export/paystubs/department/pdf", read, h.ExportDepartmentPaystubs)
		p.GET("/paystubs/department/:dept_id/period/:period_id", read, h.ExportDepartmentPaystubsForApproval)
	}
}
