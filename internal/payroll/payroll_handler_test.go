package payroll_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-payroll/internal/payroll"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Success    bool                 `json:"success"`
	Data       json.RawMessage      `json:"data"`
	Pagination *response.Pagination `json:"pagination"`
	Message    string               `json:"message"`
	Error      *apiError            `json:"error"`
}

func mustDecodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakePayrollService struct {
	payroll.Service

	createPeriodFn  func(ctx context.Context, companyID string, req payroll.CreatePeriodRequest) (payroll.PeriodResponse, error)
	getPeriodsFn    func(ctx context.Context, companyID string, filter payroll.ListPeriodsFilter) ([]payroll.PeriodResponse, response.Pagination, error)
	cancelPeriodFn  func(ctx context.Context, companyID, id string) (payroll.PeriodResponse, error)
	generateFn      func(ctx context.Context, companyID, periodID string, req payroll.GenerateRequest) (payroll.GenerateResponse, error)
	updateStatusFn  func(ctx context.Context, companyID, recordID string, req payroll.UpdateRecordStatusRequest) (payroll.RecordResponse, error)
	bulkMarkPaidFn  func(ctx context.Context, companyID, actorID string, req payroll.BulkMarkPaidRequest) (payroll.BulkUpdateResponse, error)
	completeFn      func(ctx context.Context, companyID, actorID, periodID string) (payroll.PeriodResponse, error)
	approveFn       func(ctx context.Context, companyID, approverEmployeeID, approvalID string, req payroll.ApproveRequest) (payroll.ApprovalResponse, error)
	getApprovalsFn  func(ctx context.Context, companyID string, filter payroll.ListApprovalsFilter) ([]payroll.ApprovalResponse, response.Pagination, error)
	exportPaystubFn func(ctx context.Context, companyID, periodID string, departmentID *string) ([]byte, error)
}

func (f *fakePayrollService) CreatePeriod(ctx context.Context, companyID string, req payroll.CreatePeriodRequest) (payroll.PeriodResponse, error) {
	return f.createPeriodFn(ctx, companyID, req)
}

func (f *fakePayrollService) GetPeriods(ctx context.Context, companyID string, filter payroll.ListPeriodsFilter) ([]payroll.PeriodResponse, response.Pagination, error) {
	return f.getPeriodsFn(ctx, companyID, filter)
}

func (f *fakePayrollService) CancelPeriod(ctx context.Context, companyID, id string) (payroll.PeriodResponse, error) {
	return f.cancelPeriodFn(ctx, companyID, id)
}

func (f *fakePayrollService) GenerateAndRoute(ctx context.Context, companyID, periodID string, req payroll.GenerateRequest) (payroll.GenerateResponse, error) {
	return f.generateFn(ctx, companyID, periodID, req)
}

func (f *fakePayrollService) UpdateRecordStatus(ctx context.Context, companyID, recordID string, req payroll.UpdateRecordStatusRequest) (payroll.RecordResponse, error) {
	return f.updateStatusFn(ctx, companyID, recordID, req)
}

func (f *fakePayrollService) BulkMarkPaid(ctx context.Context, companyID, actorID string, req payroll.BulkMarkPaidRequest) (payroll.BulkUpdateResponse, error) {
	return f.bulkMarkPaidFn(ctx, companyID, actorID, req)
}

func (f *fakePayrollService) CompletePeriod(ctx context.Context, companyID, actorID, periodID string) (payroll.PeriodResponse, error) {
	return f.completeFn(ctx, companyID, actorID, periodID)
}

func (f *fakePayrollService) ApproveDepartment(ctx context.Context, companyID, approverEmployeeID, approvalID string, req payroll.ApproveRequest) (payroll.ApprovalResponse, error) {
	return f.approveFn(ctx, companyID, approverEmployeeID, approvalID, req)
}

func (f *fakePayrollService) GetApprovals(ctx context.Context, companyID string, filter payroll.ListApprovalsFilter) ([]payroll.ApprovalResponse, response.Pagination, error) {
	return f.getApprovalsFn(ctx, companyID, filter)
}

func (f *fakePayrollService) ExportPaystubs(ctx context.Context, companyID, periodID string, departmentID *string) ([]byte, error) {
	return f.exportPaystubFn(ctx, companyID, periodID, departmentID)
}

func TestPayrollHandler_CreatePeriod(t *testing.T) {
	companyID := uuid.New().String()

	svc := &fakePayrollService{
		createPeriodFn: func(ctx context.Context, cid string, req payroll.CreatePeriodRequest) (payroll.PeriodResponse, error) {
			assert.Equal(t, companyID, cid)
			assert.Equal(t, "2026-08", req.PeriodName)
			return payroll.PeriodResponse{ID: uuid.New().String(), Status: payroll.PeriodStatusDraft}, nil
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"period_name":"2026-08","start_date":"2026-08-01","end_date":"2026-08-31","working_days":21,"expected_hours":168}`
	c.Request = httptest.NewRequest(http.MethodPost, "/payroll/periods", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("company_id", companyID)

	h.CreatePeriod(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Success)
}

func TestPayrollHandler_CreatePeriod_BindingError(t *testing.T) {
	h := payroll.NewHandler(&fakePayrollService{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"period_name":""}`
	c.Request = httptest.NewRequest(http.MethodPost, "/payroll/periods", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("company_id", uuid.New().String())

	h.CreatePeriod(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Success)
	assert.NotNil(t, env.Error)
}

func TestPayrollHandler_GetPeriods_Pagination(t *testing.T) {
	svc := &fakePayrollService{
		getPeriodsFn: func(ctx context.Context, companyID string, filter payroll.ListPeriodsFilter) ([]payroll.PeriodResponse, response.Pagination, error) {
			assert.Equal(t, "draft", filter.Status)
			return []payroll.PeriodResponse{{ID: uuid.New().String()}}, response.NewPagination(1, 1, 20), nil
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/payroll/periods?status=draft", nil)
	c.Set("company_id", uuid.New().String())

	h.GetPeriods(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Success)
	assert.NotNil(t, env.Pagination)
	assert.Equal(t, int64(1), env.Pagination.Total)
}

func TestPayrollHandler_Generate(t *testing.T) {
	periodID := uuid.New().String()

	t.Run("empty body means no regeneration consent", func(t *testing.T) {
		svc := &fakePayrollService{
			generateFn: func(ctx context.Context, companyID, pid string, req payroll.GenerateRequest) (payroll.GenerateResponse, error) {
				assert.Equal(t, periodID, pid)
				assert.False(t, req.ConfirmRegenerate)
				return payroll.GenerateResponse{RecordCount: 4, ApprovalCount: 2}, nil
			},
		}

		h := payroll.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/payroll/periods/"+periodID+"/generate", nil)
		c.Params = []gin.Param{{Key: "id", Value: periodID}}
		c.Set("company_id", uuid.New().String())

		h.Generate(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Success)
	})

	t.Run("regeneration conflict surfaces as 409", func(t *testing.T) {
		svc := &fakePayrollService{
			generateFn: func(ctx context.Context, companyID, pid string, req payroll.GenerateRequest) (payroll.GenerateResponse, error) {
				return payroll.GenerateResponse{}, payrollerrors.ErrRegenerateNeedsConfirm
			},
		}

		h := payroll.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/payroll/periods/"+periodID+"/generate", nil)
		c.Params = []gin.Param{{Key: "id", Value: periodID}}
		c.Set("company_id", uuid.New().String())

		h.Generate(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Success)
	})

	t.Run("confirm_regenerate passes through", func(t *testing.T) {
		svc := &fakePayrollService{
			generateFn: func(ctx context.Context, companyID, pid string, req payroll.GenerateRequest) (payroll.GenerateResponse, error) {
				assert.True(t, req.ConfirmRegenerate)
				return payroll.GenerateResponse{RecordCount: 4, ApprovalCount: 2}, nil
			},
		}

		h := payroll.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/payroll/periods/"+periodID+"/generate",
			strings.NewReader(`{"confirm_regenerate":true}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = []gin.Param{{Key: "id", Value: periodID}}
		c.Set("company_id", uuid.New().String())

		h.Generate(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestPayrollHandler_Generate_IdempotencyCompletion(t *testing.T) {
	periodID := uuid.New().String()
	cacheKey := "idemp:/payroll/periods/:id/generate:user-1:key-1"
	lockKey := cacheKey + ":lock"

	t.Run("success fills the cache and releases the lock", func(t *testing.T) {
		resp := payroll.GenerateResponse{RecordCount: 4, ApprovalCount: 2}
		svc := &fakePayrollService{
			generateFn: func(ctx context.Context, companyID, pid string, req payroll.GenerateRequest) (payroll.GenerateResponse, error) {
				return resp, nil
			},
		}

		rdb, redisMock := redismock.NewClientMock()
		payload, err := json.Marshal(resp)
		assert.NoError(t, err)
		redisMock.ExpectSet(cacheKey, payload, 24*time.Hour).SetVal("OK")
		redisMock.ExpectDel(lockKey).SetVal(1)

		h := payroll.NewHandlerWithRedis(svc, rdb)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/payroll/periods/"+periodID+"/generate", nil)
		c.Params = []gin.Param{{Key: "id", Value: periodID}}
		c.Set("company_id", uuid.New().String())
		c.Set("idempotency_cache_key", cacheKey)
		c.Set("idempotency_lock_key", lockKey)

		h.Generate(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("failure releases the lock without caching", func(t *testing.T) {
		svc := &fakePayrollService{
			generateFn: func(ctx context.Context, companyID, pid string, req payroll.GenerateRequest) (payroll.GenerateResponse, error) {
				return payroll.GenerateResponse{}, payrollerrors.ErrRegenerateNeedsConfirm
			},
		}

		rdb, redisMock := redismock.NewClientMock()
		redisMock.ExpectDel(lockKey).SetVal(1)

		h := payroll.NewHandlerWithRedis(svc, rdb)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/payroll/periods/"+periodID+"/generate", nil)
		c.Params = []gin.Param{{Key: "id", Value: periodID}}
		c.Set("company_id", uuid.New().String())
		c.Set("idempotency_cache_key", cacheKey)
		c.Set("idempotency_lock_key", lockKey)

		h.Generate(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})
}

func TestPayrollHandler_UpdateRecordStatus_NotApproved(t *testing.T) {
	svc := &fakePayrollService{
		updateStatusFn: func(ctx context.Context, companyID, recordID string, req payroll.UpdateRecordStatusRequest) (payroll.RecordResponse, error) {
			return payroll.RecordResponse{}, payrollerrors.ErrRecordNotApproved
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	recordID := uuid.New().String()
	c.Request = httptest.NewRequest(http.MethodPatch, "/payroll/records/"+recordID+"/status",
		strings.NewReader(`{"status":"processed"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = []gin.Param{{Key: "id", Value: recordID}}
	c.Set("company_id", uuid.New().String())

	h.UpdateRecordStatus(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)
}

func TestPayrollHandler_BulkMarkPaid_PassesActor(t *testing.T) {
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	periodID := uuid.New().String()

	svc := &fakePayrollService{
		bulkMarkPaidFn: func(ctx context.Context, cid, aid string, req payroll.BulkMarkPaidRequest) (payroll.BulkUpdateResponse, error) {
			assert.Equal(t, companyID, cid)
			assert.Equal(t, actorID, aid)
			assert.Equal(t, periodID, *req.PeriodID)
			return payroll.BulkUpdateResponse{UpdatedCount: 4}, nil
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/payroll/records/bulk-paid",
		strings.NewReader(`{"period_id":"`+periodID+`"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("company_id", companyID)
	c.Set("user_id", actorID)

	h.BulkMarkPaid(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Success)
}

func TestPayrollHandler_CompletePeriod_NotAllApproved(t *testing.T) {
	svc := &fakePayrollService{
		completeFn: func(ctx context.Context, companyID, actorID, periodID string) (payroll.PeriodResponse, error) {
			return payroll.PeriodResponse{}, payrollerrors.ErrApprovalsNotAllApproved
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	periodID := uuid.New().String()
	c.Request = httptest.NewRequest(http.MethodPost, "/payroll/periods/"+periodID+"/complete", nil)
	c.Params = []gin.Param{{Key: "id", Value: periodID}}
	c.Set("company_id", uuid.New().String())
	c.Set("user_id", uuid.New().String())

	h.CompletePeriod(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPayrollHandler_Approve(t *testing.T) {
	approverID := uuid.New().String()
	approvalID := uuid.New().String()

	svc := &fakePayrollService{
		approveFn: func(ctx context.Context, companyID, aid, apID string, req payroll.ApproveRequest) (payroll.ApprovalResponse, error) {
			assert.Equal(t, approverID, aid)
			assert.Equal(t, approvalID, apID)
			assert.Equal(t, payroll.ApprovalStatusApproved, req.Status)
			return payroll.ApprovalResponse{ID: apID, Status: req.Status}, nil
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/payroll/approvals/"+approvalID+"/approve",
		strings.NewReader(`{"status":"approved"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = []gin.Param{{Key: "id", Value: approvalID}}
	c.Set("company_id", uuid.New().String())
	c.Set("employee_id", approverID)

	h.Approve(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Success)
}

func TestPayrollHandler_ExportPaystubs(t *testing.T) {
	periodID := uuid.New().String()

	t.Run("period export returns a pdf attachment", func(t *testing.T) {
		svc := &fakePayrollService{
			exportPaystubFn: func(ctx context.Context, companyID, pid string, departmentID *string) ([]byte, error) {
				assert.Equal(t, periodID, pid)
				assert.Nil(t, departmentID)
				return []byte("%PDF-1.3 fake"), nil
			},
		}

		h := payroll.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/payroll/periods/"+periodID+"/export/paystubs/pdf", nil)
		c.Params = []gin.Param{{Key: "id", Value: periodID}}
		c.Set("company_id", uuid.New().String())

		h.ExportPeriodPaystubs(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	})

	t.Run("department export requires department_id", func(t *testing.T) {
		h := payroll.NewHandler(&fakePayrollService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/payroll/periods/"+periodID+"/export/paystubs/department/pdf", nil)
		c.Params = []gin.Param{{Key: "id", Value: periodID}}
		c.Set("company_id", uuid.New().String())

		h.ExportDepartmentPaystubs(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("department export scopes by query param", func(t *testing.T) {
		deptID := uuid.New().String()
		svc := &fakePayrollService{
			exportPaystubFn: func(ctx context.Context, companyID, pid string, departmentID *string) ([]byte, error) {
				assert.NotNil(t, departmentID)
				assert.Equal(t, deptID, *departmentID)
				return []byte("%PDF-1.3 fake"), nil
			},
		}

		h := payroll.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet,
			"/payroll/periods/"+periodID+"/export/paystubs/department/pdf?department_id="+deptID, nil)
		c.Params = []gin.Param{{Key: "id", Value: periodID}}
		c.Set("company_id", uuid.New().String())

		h.ExportDepartmentPaystubs(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
