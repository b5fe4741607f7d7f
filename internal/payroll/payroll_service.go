package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-payroll/internal/attendance"
	"go-payroll/internal/bootstrap"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/counter"
	"go-payroll/internal/shared/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttendanceSource supplies the per-employee attendance rollup record
// generation consumes. Satisfied by attendance.Repository.
type AttendanceSource interface {
	AggregateByPeriod(ctx context.Context, companyID string, from, to time.Time) ([]attendance.PeriodAggregate, error)
}

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	CreatePeriod(ctx context.Context, companyID string, req CreatePeriodRequest) (PeriodResponse, error)
	GetPeriods(ctx context.Context, companyID string, filter ListPeriodsFilter) ([]PeriodResponse, response.Pagination, error)
	GetPeriodByID(ctx context.Context, companyID, id string) (PeriodResponse, error)
	UpdatePeriod(ctx context.Context, companyID, id string, req UpdatePeriodRequest) (PeriodResponse, error)
	DeletePeriod(ctx context.Context, companyID, id string) error
	CancelPeriod(ctx context.Context, companyID, id string) (PeriodResponse, error)

	GenerateAndRoute(ctx context.Context, companyID, periodID string, req GenerateRequest) (GenerateResponse, error)
	RouteApprovals(ctx context.Context, companyID, periodID string) (int, error)

	UpdateRecordStatus(ctx context.Context, companyID, recordID string, req UpdateRecordStatusRequest) (RecordResponse, error)
	BulkUpdateStatus(ctx context.Context, companyID, periodID string, req BulkUpdateStatusRequest) (BulkUpdateResponse, error)
	BulkMarkPaid(ctx context.Context, companyID, actorID string, req BulkMarkPaidRequest) (BulkUpdateResponse, error)
	CompletePeriod(ctx context.Context, companyID, actorID, periodID string) (PeriodResponse, error)
	ApproveDepartment(ctx context.Context, companyID, approverEmployeeID, approvalID string, req ApproveRequest) (ApprovalResponse, error)

	GetRecords(ctx context.Context, companyID string, filter ListRecordsFilter) ([]RecordResponse, response.Pagination, error)
	GetApprovals(ctx context.Context, companyID string, filter ListApprovalsFilter) ([]ApprovalResponse, response.Pagination, error)

	ExportPaystubs(ctx context.Context, companyID, periodID string, departmentID *string) ([]byte, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	attendance AttendanceSource
	outbox     kafka.OutboxRepository
	counter    counter.Repository
	audit      bootstrap.AuditLogger
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(
	db *sql.DB,
	repo Repository,
	attendanceSource AttendanceSource,
	outboxRepo kafka.OutboxRepository,
	counterRepo counter.Repository,
	audit bootstrap.AuditLogger,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		attendance: attendanceSource,
		outbox:     outboxRepo,
		counter:    counterRepo,
		audit:      audit,
		logger:     l,
		now:        time.Now,
	}
}

func (s *service) CreatePeriod(ctx context.Context, companyID string, req CreatePeriodRequest) (PeriodResponse, error) {
	start, end, err := parsePeriodDates(req.StartDate, req.EndDate)
	if err != nil {
		return PeriodResponse{}, err
	}

	period := &PayrollPeriod{
		ID:            uuid.New(),
		CompanyID:     uuid.MustParse(companyID),
		PeriodName:    req.PeriodName,
		StartDate:     start,
		EndDate:       end,
		WorkingDays:   req.WorkingDays,
		ExpectedHours: req.ExpectedHours,
		Status:        PeriodStatusDraft,
	}

	if err := s.repo.CreatePeriod(ctx, period); err != nil {
		return PeriodResponse{}, err
	}

	s.logger.Info("payroll period created",
		zap.String("period_id", period.ID.String()),
		zap.String("period_name", period.PeriodName),
	)

	return mapPeriodResponse(*period), nil
}

func (s *service) GetPeriods(ctx context.Context, companyID string, filter ListPeriodsFilter) ([]PeriodResponse, response.Pagination, error) {
	normalizePaging(&filter.Page, &filter.Limit)

	periods, total, err := s.repo.FindPeriods(ctx, companyID, filter)
	if err != nil {
		return nil, response.Pagination{}, err
	}

	resp := make([]PeriodResponse, len(periods))
	for i, p := range periods {
		resp[i] = mapPeriodResponse(p)
	}
	return resp, response.NewPagination(total, filter.Page, filter.Limit), nil
}

func (s *service) GetPeriodByID(ctx context.Context, companyID, id string) (PeriodResponse, error) {
	period, err := s.findPeriod(ctx, s.repo, companyID, id)
	if err != nil {
		return PeriodResponse{}, err
	}
	return mapPeriodResponse(*period), nil
}

func (s *service) UpdatePeriod(ctx context.Context, companyID, id string, req UpdatePeriodRequest) (PeriodResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := s.findPeriod(ctx, qtx, companyID, id)
	if err != nil {
		return PeriodResponse{}, err
	}
	if period.Status != PeriodStatusDraft {
		return PeriodResponse{}, payrollerrors.ErrPeriodNotDraft
	}

	start, end, err := parsePeriodDates(req.StartDate, req.EndDate)
	if err != nil {
		return PeriodResponse{}, err
	}

	period.PeriodName = req.PeriodName
	period.StartDate = start
	period.EndDate = end
	period.WorkingDays = req.WorkingDays
	period.ExpectedHours = req.ExpectedHours

	if err := qtx.UpdatePeriod(ctx, period); err != nil {
		return PeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PeriodResponse{}, err
	}
	return mapPeriodResponse(*period), nil
}

func (s *service) DeletePeriod(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := s.findPeriod(ctx, qtx, companyID, id)
	if err != nil {
		return err
	}
	if period.Status != PeriodStatusDraft {
		return payrollerrors.ErrPeriodNotDraft
	}

	if err := qtx.DeletePeriod(ctx, companyID, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) CancelPeriod(ctx context.Context, companyID, id string) (PeriodResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := s.findPeriod(ctx, qtx, companyID, id)
	if err != nil {
		return PeriodResponse{}, err
	}
	if err := s.ensurePeriodActive(period); err != nil {
		return PeriodResponse{}, err
	}
	if !CanTransitionPeriod(period.Status, PeriodStatusCancelled) {
		return PeriodResponse{}, payrollerrors.ErrIllegalPeriodTransition
	}

	period.Status = PeriodStatusCancelled
	if err := qtx.UpdatePeriod(ctx, period); err != nil {
		return PeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PeriodResponse{}, err
	}

	s.logger.Info("payroll period cancelled", zap.String("period_id", id))
	return mapPeriodResponse(*period), nil
}

// GenerateAndRoute rebuilds the period's record set and routes department
// approvals in one transaction. Regeneration discards every prior record for
// the period, so an existing record set requires confirm_regenerate.
// Approval routing only happens once generation succeeded.
func (s *service) GenerateAndRoute(ctx context.Context, companyID, periodID string, req GenerateRequest) (GenerateResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return GenerateResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := s.findPeriod(ctx, qtx, companyID, periodID)
	if err != nil {
		return GenerateResponse{}, err
	}
	if err := s.ensurePeriodActive(period); err != nil {
		return GenerateResponse{}, err
	}
	if !CanTransitionPeriod(period.Status, PeriodStatusProcessing) {
		return GenerateResponse{}, payrollerrors.ErrIllegalPeriodTransition
	}

	existing, err := qtx.CountRecordsByPeriod(ctx, companyID, periodID)
	if err != nil {
		return GenerateResponse{}, err
	}
	if existing > 0 && !req.ConfirmRegenerate {
		return GenerateResponse{}, payrollerrors.ErrRegenerateNeedsConfirm
	}

	rows, err := qtx.GenerationRows(ctx, companyID, period.EndDate)
	if err != nil {
		return GenerateResponse{}, err
	}
	if len(rows) == 0 {
		return GenerateResponse{}, payrollerrors.ErrNoEmployeesForPeriod
	}

	aggs, err := s.attendance.AggregateByPeriod(ctx, companyID, period.StartDate, period.EndDate)
	if err != nil {
		return GenerateResponse{}, err
	}
	aggByEmployee := make(map[uuid.UUID]*attendance.PeriodAggregate, len(aggs))
	for i := range aggs {
		aggByEmployee[aggs[i].EmployeeID] = &aggs[i]
	}

	if err := qtx.DeleteRecordsByPeriod(ctx, companyID, periodID); err != nil {
		return GenerateResponse{}, err
	}

	records := make([]PayrollRecord, len(rows))
	departments := make(map[uuid.UUID]struct{})
	for i, row := range rows {
		records[i] = computeRecord(period, row, aggByEmployee[row.EmployeeID])
		departments[row.DepartmentID] = struct{}{}
	}

	if err := qtx.CreateRecords(ctx, records); err != nil {
		return GenerateResponse{}, err
	}

	deptIDs := make([]string, 0, len(departments))
	for deptID := range departments {
		if err := qtx.UpsertApproval(ctx, &PayrollApproval{
			ID:              uuid.New(),
			CompanyID:       period.CompanyID,
			PayrollPeriodID: period.ID,
			DepartmentID:    deptID,
			Status:          ApprovalStatusPending,
		}); err != nil {
			return GenerateResponse{}, err
		}
		deptIDs = append(deptIDs, deptID.String())
	}

	// generation holds the period in processing; routing releases it for
	// review, each step validated against the lifecycle table
	period.Status = PeriodStatusProcessing
	if !CanTransitionPeriod(period.Status, PeriodStatusSentForReview) {
		return GenerateResponse{}, payrollerrors.ErrIllegalPeriodTransition
	}
	period.Status = PeriodStatusSentForReview
	if err := qtx.UpdatePeriod(ctx, period); err != nil {
		return GenerateResponse{}, err
	}

	if s.outbox != nil {
		event := events.PayrollSentForReviewEvent{
			EventType:   "payroll_sent_for_review",
			RequestID:   rid,
			PeriodID:    period.ID.String(),
			CompanyID:   companyID,
			Departments: deptIDs,
			RecordCount: len(records),
			OccurredAt:  s.now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return GenerateResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "payroll_period",
			AggregateID:   period.ID.String(),
			EventType:     event.EventType,
			Topic:         events.PayrollSentForReviewTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			return GenerateResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return GenerateResponse{}, err
	}

	s.logger.Info("payroll records generated and routed",
		zap.String("request_id", rid),
		zap.String("period_id", periodID),
		zap.Int("record_count", len(records)),
		zap.Int("approval_count", len(deptIDs)),
	)

	return GenerateResponse{
		Period:        mapPeriodResponse(*period),
		RecordCount:   len(records),
		ApprovalCount: len(deptIDs),
	}, nil
}

// RouteApprovals re-sends the period to departments without regenerating
// records: one pending approval per department that has records.
func (s *service) RouteApprovals(ctx context.Context, companyID, periodID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := s.findPeriod(ctx, qtx, companyID, periodID)
	if err != nil {
		return 0, err
	}
	if err := s.ensurePeriodActive(period); err != nil {
		return 0, err
	}

	records, _, err := qtx.FindRecords(ctx, companyID, ListRecordsFilter{PeriodID: periodID, Page: 1, Limit: 10000})
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, payrollerrors.ErrNoEmployeesForPeriod
	}

	departments := make(map[uuid.UUID]struct{})
	for _, rec := range records {
		departments[rec.DepartmentID] = struct{}{}
	}

	for deptID := range departments {
		if err := qtx.UpsertApproval(ctx, &PayrollApproval{
			ID:              uuid.New(),
			CompanyID:       period.CompanyID,
			PayrollPeriodID: period.ID,
			DepartmentID:    deptID,
			Status:          ApprovalStatusPending,
		}); err != nil {
			return 0, err
		}
	}

	if period.Status == PeriodStatusProcessing {
		period.Status = PeriodStatusSentForReview
		if err := qtx.UpdatePeriod(ctx, period); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(departments), nil
}

func (s *service) UpdateRecordStatus(ctx context.Context, companyID, recordID string, req UpdateRecordStatusRequest) (RecordResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RecordResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	record, err := qtx.FindRecordByID(ctx, companyID, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RecordResponse{}, payrollerrors.ErrRecordNotFound
		}
		return RecordResponse{}, err
	}

	period, err := s.findPeriod(ctx, qtx, companyID, record.PayrollPeriodID.String())
	if err != nil {
		return RecordResponse{}, err
	}
	if err := s.ensurePeriodActive(period); err != nil {
		return RecordResponse{}, err
	}

	if err := CheckRecordTransition(record.Status, req.Status, record.ApprovalStatus); err != nil {
		return RecordResponse{}, err
	}

	record.Status = req.Status
	if err := qtx.UpdateRecord(ctx, record); err != nil {
		return RecordResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return RecordResponse{}, err
	}

	s.logger.Info("payroll record status updated",
		zap.String("record_id", recordID),
		zap.String("status", req.Status),
	)

	return mapRecordResponse(*record), nil
}

func (s *service) BulkUpdateStatus(ctx context.Context, companyID, periodID string, req BulkUpdateStatusRequest) (BulkUpdateResponse, error) {
	from, requireApproved, err := bulkTransitionFor(req.Status)
	if err != nil {
		return BulkUpdateResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BulkUpdateResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := s.findPeriod(ctx, qtx, companyID, periodID)
	if err != nil {
		return BulkUpdateResponse{}, err
	}
	if err := s.ensurePeriodActive(period); err != nil {
		return BulkUpdateResponse{}, err
	}

	scope := BulkScope{PeriodID: &periodID, DepartmentID: req.DepartmentID}
	count, err := qtx.BulkTransitionRecords(ctx, companyID, scope, from, req.Status, requireApproved)
	if err != nil {
		return BulkUpdateResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return BulkUpdateResponse{}, err
	}

	s.logger.Info("payroll records bulk transitioned",
		zap.String("period_id", periodID),
		zap.String("status", req.Status),
		zap.Int64("updated_count", count),
	)

	return BulkUpdateResponse{UpdatedCount: count}, nil
}

func (s *service) BulkMarkPaid(ctx context.Context, companyID, actorID string, req BulkMarkPaidRequest) (BulkUpdateResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BulkUpdateResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if req.PeriodID != nil {
		period, err := s.findPeriod(ctx, qtx, companyID, *req.PeriodID)
		if err != nil {
			return BulkUpdateResponse{}, err
		}
		if err := s.ensurePeriodActive(period); err != nil {
			return BulkUpdateResponse{}, err
		}
	}

	scope := BulkScope{
		PeriodID:     req.PeriodID,
		DepartmentID: req.DepartmentID,
		RecordIDs:    req.RecordIDs,
	}
	count, err := qtx.BulkTransitionRecords(ctx, companyID, scope, RecordStatusProcessed, RecordStatusPaid, false)
	if err != nil {
		return BulkUpdateResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return BulkUpdateResponse{}, err
	}

	if s.audit != nil {
		subject := ""
		if req.PeriodID != nil {
			subject = *req.PeriodID
		}
		s.audit.Record(ctx, bootstrap.AuditEntry{
			Action:    "payroll.bulk_mark_paid",
			ActorID:   actorID,
			CompanyID: companyID,
			SubjectID: subject,
		})
	}

	return BulkUpdateResponse{UpdatedCount: count}, nil
}

// CompletePeriod closes the cycle: every department approval must be
// approved and at least one record must have reached processed.
func (s *service) CompletePeriod(ctx context.Context, companyID, actorID, periodID string) (PeriodResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := s.findPeriod(ctx, qtx, companyID, periodID)
	if err != nil {
		return PeriodResponse{}, err
	}
	if err := s.ensurePeriodActive(period); err != nil {
		return PeriodResponse{}, err
	}
	if !CanTransitionPeriod(period.Status, PeriodStatusCompleted) {
		return PeriodResponse{}, payrollerrors.ErrIllegalPeriodTransition
	}

	approvals, err := qtx.FindApprovalsByPeriod(ctx, companyID, periodID)
	if err != nil {
		return PeriodResponse{}, err
	}
	approvals = dedupeApprovals(approvals)
	if len(approvals) == 0 {
		return PeriodResponse{}, payrollerrors.ErrPeriodHasNoApprovals
	}
	for _, a := range approvals {
		if a.Status != ApprovalStatusApproved {
			return PeriodResponse{}, payrollerrors.ErrApprovalsNotAllApproved
		}
	}

	processed, err := qtx.HasProcessedRecords(ctx, companyID, periodID)
	if err != nil {
		return PeriodResponse{}, err
	}
	if !processed {
		return PeriodResponse{}, payrollerrors.ErrNoProcessedRecords
	}

	period.Status = PeriodStatusCompleted
	if err := qtx.UpdatePeriod(ctx, period); err != nil {
		return PeriodResponse{}, err
	}

	if s.outbox != nil {
		event := events.PayrollPeriodCompletedEvent{
			EventType:   "payroll_period_completed",
			RequestID:   rid,
			PeriodID:    periodID,
			CompanyID:   companyID,
			CompletedBy: actorID,
			OccurredAt:  s.now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return PeriodResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "payroll_period",
			AggregateID:   periodID,
			EventType:     event.EventType,
			Topic:         events.PayrollPeriodCompletedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			return PeriodResponse{}, err
		}

		// completion also queues a paystub archive render for the consumer
		paystubEvent := events.PayrollPaystubRequestedEvent{
			EventType:   "payroll_paystub_requested",
			RequestID:   rid,
			PeriodID:    periodID,
			CompanyID:   companyID,
			RequestedBy: actorID,
			OccurredAt:  s.now().UTC(),
		}
		paystubPayload, err := json.Marshal(paystubEvent)
		if err != nil {
			return PeriodResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "payroll_period",
			AggregateID:   periodID,
			EventType:     paystubEvent.EventType,
			Topic:         events.PayrollPaystubRequestedTopic,
			Payload:       paystubPayload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			return PeriodResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return PeriodResponse{}, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, bootstrap.AuditEntry{
			Action:    "payroll.period_completed",
			ActorID:   actorID,
			CompanyID: companyID,
			SubjectID: periodID,
		})
	}

	s.logger.Info("payroll period completed",
		zap.String("request_id", rid),
		zap.String("period_id", periodID),
	)

	return mapPeriodResponse(*period), nil
}

// ApproveDepartment decides one department's approval and mirrors the
// decision onto that department's records in the same transaction.
func (s *service) ApproveDepartment(ctx context.Context, companyID, approverEmployeeID, approvalID string, req ApproveRequest) (ApprovalResponse, error) {
	if !ValidApprovalDecision(req.Status) {
		return ApprovalResponse{}, payrollerrors.ErrInvalidApprovalDecision
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ApprovalResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	approval, err := qtx.FindApprovalByID(ctx, companyID, approvalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApprovalResponse{}, payrollerrors.ErrApprovalNotFound
		}
		return ApprovalResponse{}, err
	}
	if approval.Status != ApprovalStatusPending {
		return ApprovalResponse{}, payrollerrors.ErrApprovalAlreadyDecided
	}

	period, err := s.findPeriod(ctx, qtx, companyID, approval.PayrollPeriodID.String())
	if err != nil {
		return ApprovalResponse{}, err
	}
	if err := s.ensurePeriodActive(period); err != nil {
		return ApprovalResponse{}, err
	}

	approverID, err := uuid.Parse(approverEmployeeID)
	if err != nil {
		return ApprovalResponse{}, payrollerrors.ErrApprovalNotFound
	}

	now := s.now().UTC()
	approval.Status = req.Status
	approval.Comments = req.Comments
	approval.ApproverID = &approverID
	approval.ApprovedAt = &now

	if err := qtx.UpdateApproval(ctx, approval); err != nil {
		return ApprovalResponse{}, err
	}

	if err := qtx.MirrorApprovalStatus(ctx, companyID,
		approval.PayrollPeriodID.String(), approval.DepartmentID.String(), req.Status); err != nil {
		return ApprovalResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return ApprovalResponse{}, err
	}

	s.logger.Info("department approval decided",
		zap.String("approval_id", approvalID),
		zap.String("status", req.Status),
	)

	return mapApprovalResponse(*approval), nil
}

func (s *service) GetRecords(ctx context.Context, companyID string, filter ListRecordsFilter) ([]RecordResponse, response.Pagination, error) {
	normalizePaging(&filter.Page, &filter.Limit)

	records, total, err := s.repo.FindRecords(ctx, companyID, filter)
	if err != nil {
		return nil, response.Pagination{}, err
	}

	records = dedupeRecords(records)
	resp := make([]RecordResponse, len(records))
	for i, rec := range records {
		resp[i] = mapRecordResponse(rec)
	}
	return resp, response.NewPagination(total, filter.Page, filter.Limit), nil
}

func (s *service) GetApprovals(ctx context.Context, companyID string, filter ListApprovalsFilter) ([]ApprovalResponse, response.Pagination, error) {
	normalizePaging(&filter.Page, &filter.Limit)

	approvals, total, err := s.repo.FindApprovals(ctx, companyID, filter)
	if err != nil {
		return nil, response.Pagination{}, err
	}

	approvals = dedupeApprovals(approvals)
	resp := make([]ApprovalResponse, len(approvals))
	for i, a := range approvals {
		resp[i] = mapApprovalResponse(a)
	}
	return resp, response.NewPagination(total, filter.Page, filter.Limit), nil
}

func (s *service) ExportPaystubs(ctx context.Context, companyID, periodID string, departmentID *string) ([]byte, error) {
	period, err := s.findPeriod(ctx, s.repo, companyID, periodID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.FindRecordsForExport(ctx, companyID, periodID, departmentID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, payrollerrors.ErrRecordNotFound
	}

	nextVal, err := s.counter.GetNextValue(ctx, companyID, "paystub_batch")
	if err != nil {
		return nil, err
	}

	return buildPaystubPDF(period, rows, nextVal, s.now())
}

func (s *service) findPeriod(ctx context.Context, repo Repository, companyID, id string) (*PayrollPeriod, error) {
	period, err := repo.FindPeriodByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollerrors.ErrPeriodNotFound
		}
		return nil, err
	}
	return period, nil
}

func (s *service) ensurePeriodActive(period *PayrollPeriod) error {
	switch period.Status {
	case PeriodStatusCompleted:
		return payrollerrors.ErrPeriodCompleted
	case PeriodStatusCancelled:
		return payrollerrors.ErrPeriodCancelled
	}
	return nil
}

func bulkTransitionFor(to string) (from string, requireApproved bool, err error) {
	switch to {
	case RecordStatusProcessed:
		return RecordStatusDraft, true, nil
	case RecordStatusPaid:
		return RecordStatusProcessed, false, nil
	default:
		return "", false, payrollerrors.ErrInvalidRecordStatus
	}
}

// dedupeApprovals keeps the first occurrence per (department, period) key.
func dedupeApprovals(approvals []PayrollApproval) []PayrollApproval {
	type key struct{ dept, period uuid.UUID }
	seen := make(map[key]struct{}, len(approvals))
	out := approvals[:0]
	for _, a := range approvals {
		k := key{a.DepartmentID, a.PayrollPeriodID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}

// dedupeRecords keeps the first occurrence per (period, employee) key.
func dedupeRecords(records []PayrollRecord) []PayrollRecord {
	type key struct{ period, employee uuid.UUID }
	seen := make(map[key]struct{}, len(records))
	out := records[:0]
	for _, r := range records {
		k := key{r.PayrollPeriodID, r.EmployeeID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

func parsePeriodDates(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return time.Time{}, time.Time{}, payrollerrors.ErrInvalidDateFormat
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return time.Time{}, time.Time{}, payrollerrors.ErrInvalidDateFormat
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, payrollerrors.ErrInvalidPeriodDates
	}
	return start, end, nil
}

func normalizePaging(page, limit *int) {
	if *page < 1 {
		*page = 1
	}
	if *limit < 1 || *limit > 100 {
		*limit = 20
	}
}

func mapPeriodResponse(p PayrollPeriod) PeriodResponse {
	return PeriodResponse{
		ID:            p.ID.String(),
		CompanyID:     p.CompanyID.String(),
		PeriodName:    p.PeriodName,
		StartDate:     p.StartDate.Format("2006-01-02"),
		EndDate:       p.EndDate.Format("2006-01-02"),
		WorkingDays:   p.WorkingDays,
		ExpectedHours: p.ExpectedHours,
		Status:        p.Status,
	}
}

func mapRecordResponse(r PayrollRecord) RecordResponse {
	return RecordResponse{
		ID:                 r.ID.String(),
		PayrollPeriodID:    r.PayrollPeriodID.String(),
		EmployeeID:         r.EmployeeID.String(),
		DepartmentID:       r.DepartmentID.String(),
		BaseSalary:         r.BaseSalary,
		HourlyRate:         r.HourlyRate,
		TotalWorkedHours:   r.TotalWorkedHours,
		TotalRegularHours:  r.TotalRegularHours,
		TotalOvertimeHours: r.TotalOvertimeHours,
		TotalLateHours:     r.TotalLateHours,
		PaidLeaveHours:     r.PaidLeaveHours,
		LateDeductions:     r.LateDeductions,
		GrossPay:           r.GrossPay,
		NetPay:             r.NetPay,
		TotalDeductions:    r.TotalDeductions,
		TotalBenefits:      r.TotalBenefits,
		Status:             r.Status,
		ApprovalStatus:     r.ApprovalStatus,
	}
}

func mapApprovalResponse(a PayrollApproval) ApprovalResponse {
	resp := ApprovalResponse{
		ID:              a.ID.String(),
		PayrollPeriodID: a.PayrollPeriodID.String(),
		DepartmentID:    a.DepartmentID.String(),
		Status:          a.Status,
		Comments:        a.Comments,
	}
	if a.ApproverID != nil {
		v := a.ApproverID.String()
		resp.ApproverID = &v
	}
	if a.ApprovedAt != nil {
		v := a.ApprovedAt.UTC().Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}
