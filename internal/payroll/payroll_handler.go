package payroll

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// idempotencyCacheTTL keeps a completed generate response replayable long
// after the in-flight lock has expired.
const idempotencyCacheTTL = 24 * time.Hour

type Handler struct {
	service Service
	rdb     *redis.Client
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func NewHandlerWithRedis(service Service, rdb *redis.Client) *Handler {
	return &Handler{service: service, rdb: rdb}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindingError(c *gin.Context, err error) {
	mapped := apperror.ToHTTP(apperror.MapValidationError(err))
	response.Error(c, mapped.Status, mapped.Code, mapped.Message, mapped.Details)
}

func (h *Handler) CreatePeriod(c *gin.Context) {
	companyID := c.GetString("company_id")

	var req CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindingError(c, err)
		return
	}

	resp, err := h.service.CreatePeriod(c.Request.Context(), companyID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetPeriods(c *gin.Context) {
	companyID := c.GetString("company_id")

	var filter ListPeriodsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.writeBindingError(c, err)
		return
	}

	resp, pagination, err := h.service.GetPeriods(c.Request.Context(), companyID, filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, &pagination)
}

func (h *Handler) GetPeriodById(c *gin.Context) {
	resp, err := h.service.GetPeriodByID(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) UpdatePeriod(c *gin.Context) {
	companyID := c.GetString("company_id")

	var req UpdatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindingError(c, err)
		return
	}

	resp, err := h.service.UpdatePeriod(c.Request.Context(), companyID, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) DeletePeriod(c *gin.Context) {
	if err := h.service.DeletePeriod(c.Request.Context(), c.GetString("company_id"), c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func (h *Handler) CancelPeriod(c *gin.Context) {
	resp, err := h.service.CancelPeriod(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Generate(c *gin.Context) {
	companyID := c.GetString("company_id")

	if h.rdb != nil {
		if lockKey := c.GetString("idempotency_lock_key"); lockKey != "" {
			defer h.rdb.Del(c.Request.Context(), lockKey)
		}
	}

	// body is optional: a bare generate call means no regeneration consent
	var req GenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeBindingError(c, err)
			return
		}
	}

	resp, err := h.service.GenerateAndRoute(c.Request.Context(), companyID, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if h.rdb != nil {
		if cacheKey := c.GetString("idempotency_cache_key"); cacheKey != "" {
			if payload, marshalErr := json.Marshal(resp); marshalErr == nil {
				_ = h.rdb.Set(c.Request.Context(), cacheKey, payload, idempotencyCacheTTL).Err()
			}
		}
	}

	response.SuccessMessage(c, http.StatusOK, resp, "payroll records generated and sent for review")
}

func (h *Handler) SendToDepartments(c *gin.Context) {
	count, err := h.service.RouteApprovals(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.SuccessMessage(c, http.StatusOK, gin.H{"approval_count": count}, "approvals sent to departments")
}

func (h *Handler) UpdateRecordStatus(c *gin.Context) {
	companyID := c.GetString("company_id")

	var req UpdateRecordStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindingError(c, err)
		return
	}

	resp, err := h.service.UpdateRecordStatus(c.Request.Context(), companyID, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) BulkUpdateStatus(c *gin.Context) {
	companyID := c.GetString("company_id")

	var req BulkUpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindingError(c, err)
		return
	}

	resp, err := h.service.BulkUpdateStatus(c.Request.Context(), companyID, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) BulkMarkPaid(c *gin.Context) {
	companyID := c.GetString("company_id")
	actorID := c.GetString("user_id")

	var req BulkMarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindingError(c, err)
		return
	}

	resp, err := h.service.BulkMarkPaid(c.Request.Context(), companyID, actorID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) CompletePeriod(c *gin.Context) {
	resp, err := h.service.CompletePeriod(
		c.Request.Context(),
		c.GetString("company_id"),
		c.GetString("user_id"),
		c.Param("id"),
	)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.SuccessMessage(c, http.StatusOK, resp, "payroll period completed")
}

func (h *Handler) Approve(c *gin.Context) {
	companyID := c.GetString("company_id")
	approverID := c.GetString("employee_id")

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindingError(c, err)
		return
	}

	resp, err := h.service.ApproveDepartment(c.Request.Context(), companyID, approverID, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetRecords(c *gin.Context) {
	companyID := c.GetString("company_id")

	var filter ListRecordsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.writeBindingError(c, err)
		return
	}

	resp, pagination, err := h.service.GetRecords(c.Request.Context(), companyID, filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, &pagination)
}

func (h *Handler) GetApprovals(c *gin.Context) {
	companyID := c.GetString("company_id")

	var filter ListApprovalsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.writeBindingError(c, err)
		return
	}

	resp, pagination, err := h.service.GetApprovals(c.Request.Context(), companyID, filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, &pagination)
}

func (h *Handler) ExportPeriodPaystubs(c *gin.Context) {
	h.exportPaystubs(c, c.Param("id"), nil)
}

func (h *Handler) ExportDepartmentPaystubs(c *gin.Context) {
	deptID := c.Query("department_id")
	if deptID == "" {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "department_id is required", nil)
		return
	}
	h.exportPaystubs(c, c.Param("id"), &deptID)
}

func (h *Handler) ExportDepartmentPaystubsForApproval(c *gin.Context) {
	deptID := c.Param("dept_id")
	h.exportPaystubs(c, c.Param("period_id"), &deptID)
}

func (h *Handler) exportPaystubs(c *gin.Context, periodID string, departmentID *string) {
	pdf, err := h.service.ExportPaystubs(c.Request.Context(), c.GetString("company_id"), periodID, departmentID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="paystubs-%s.pdf"`, periodID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
