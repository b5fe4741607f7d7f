package payroll_test

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"go-payroll/internal/attendance"
	"go-payroll/internal/bootstrap"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/payroll"
	payrollerrors "go-payroll/internal/payroll/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// memPayrollRepository keeps periods, records and approvals in memory and
// reproduces the repository's filtering semantics so the lifecycle can be
// exercised end to end without a database.
type memPayrollRepository struct {
	mu        sync.Mutex
	periods   map[uuid.UUID]payroll.PayrollPeriod
	records   map[uuid.UUID]payroll.PayrollRecord
	approvals map[uuid.UUID]payroll.PayrollApproval
	genRows   []payroll.GenerationRow

	approvalListOverride []payroll.PayrollApproval
}

func newMemRepo() *memPayrollRepository {
	return &memPayrollRepository{
		periods:   make(map[uuid.UUID]payroll.PayrollPeriod),
		records:   make(map[uuid.UUID]payroll.PayrollRecord),
		approvals: make(map[uuid.UUID]payroll.PayrollApproval),
	}
}

func (m *memPayrollRepository) WithTx(tx *sql.Tx) payroll.Repository { return m }

func (m *memPayrollRepository) CreatePeriod(ctx context.Context, period *payroll.PayrollPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods[period.ID] = *period
	return nil
}

func (m *memPayrollRepository) FindPeriods(ctx context.Context, companyID string, filter payroll.ListPeriodsFilter) ([]payroll.PayrollPeriod, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.PayrollPeriod
	for _, p := range m.periods {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (m *memPayrollRepository) FindPeriodByID(ctx context.Context, companyID string, id string) (*payroll.PayrollPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.periods[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (m *memPayrollRepository) UpdatePeriod(ctx context.Context, period *payroll.PayrollPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods[period.ID] = *period
	return nil
}

func (m *memPayrollRepository) DeletePeriod(ctx context.Context, companyID string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.periods, uuid.MustParse(id))
	return nil
}

func (m *memPayrollRepository) CreateRecords(ctx context.Context, records []payroll.PayrollRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.records[r.ID] = r
	}
	return nil
}

func (m *memPayrollRepository) CountRecordsByPeriod(ctx context.Context, companyID string, periodID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.records {
		if r.PayrollPeriodID.String() == periodID {
			n++
		}
	}
	return n, nil
}

func (m *memPayrollRepository) DeleteRecordsByPeriod(ctx context.Context, companyID string, periodID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.records {
		if r.PayrollPeriodID.String() == periodID {
			delete(m.records, id)
		}
	}
	return nil
}

func (m *memPayrollRepository) FindRecords(ctx context.Context, companyID string, filter payroll.ListRecordsFilter) ([]payroll.PayrollRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.PayrollRecord
	for _, r := range m.records {
		if filter.PeriodID != "" && r.PayrollPeriodID.String() != filter.PeriodID {
			continue
		}
		if filter.EmployeeID != "" && r.EmployeeID.String() != filter.EmployeeID {
			continue
		}
		if filter.DepartmentID != "" && r.DepartmentID.String() != filter.DepartmentID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, int64(len(out)), nil
}

func (m *memPayrollRepository) FindRecordByID(ctx context.Context, companyID string, id string) (*payroll.PayrollRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (m *memPayrollRepository) UpdateRecord(ctx context.Context, record *payroll.PayrollRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = *record
	return nil
}

func (m *memPayrollRepository) BulkTransitionRecords(ctx context.Context, companyID string, scope payroll.BulkScope, from, to string, requireApproved bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idSet := make(map[string]struct{}, len(scope.RecordIDs))
	for _, id := range scope.RecordIDs {
		idSet[id] = struct{}{}
	}
	var n int64
	for id, r := range m.records {
		if r.Status != from {
			continue
		}
		if p, ok := m.periods[r.PayrollPeriodID]; !ok ||
			p.Status == payroll.PeriodStatusCompleted || p.Status == payroll.PeriodStatusCancelled {
			continue
		}
		if scope.PeriodID != nil && r.PayrollPeriodID.String() != *scope.PeriodID {
			continue
		}
		if scope.DepartmentID != nil && r.DepartmentID.String() != *scope.DepartmentID {
			continue
		}
		if len(idSet) > 0 {
			if _, ok := idSet[id.String()]; !ok {
				continue
			}
		}
		if requireApproved && r.ApprovalStatus != payroll.ApprovalStatusApproved {
			continue
		}
		r.Status = to
		m.records[id] = r
		n++
	}
	return n, nil
}

func (m *memPayrollRepository) MirrorApprovalStatus(ctx context.Context, companyID, periodID, departmentID, approvalStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.records {
		if r.PayrollPeriodID.String() == periodID && r.DepartmentID.String() == departmentID {
			r.ApprovalStatus = approvalStatus
			m.records[id] = r
		}
	}
	return nil
}

func (m *memPayrollRepository) HasProcessedRecords(ctx context.Context, companyID string, periodID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.PayrollPeriodID.String() == periodID &&
			(r.Status == payroll.RecordStatusProcessed || r.Status == payroll.RecordStatusPaid) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memPayrollRepository) FindRecordsForExport(ctx context.Context, companyID string, periodID string, departmentID *string) ([]payroll.RecordExportRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.RecordExportRow
	for _, r := range m.records {
		if r.PayrollPeriodID.String() != periodID {
			continue
		}
		if departmentID != nil && r.DepartmentID.String() != *departmentID {
			continue
		}
		out = append(out, payroll.RecordExportRow{
			PayrollRecord:  r,
			EmployeeNumber: "EMP-000001",
			FullName:       "Test Employee",
			DepartmentName: "Test Department",
		})
	}
	return out, nil
}

func (m *memPayrollRepository) UpsertApproval(ctx context.Context, approval *payroll.PayrollApproval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.approvals {
		if a.DepartmentID == approval.DepartmentID && a.PayrollPeriodID == approval.PayrollPeriodID {
			a.Status = payroll.ApprovalStatusPending
			a.ApproverID = nil
			a.Comments = nil
			a.ApprovedAt = nil
			m.approvals[id] = a
			return nil
		}
	}
	m.approvals[approval.ID] = *approval
	return nil
}

func (m *memPayrollRepository) FindApprovalsByPeriod(ctx context.Context, companyID string, periodID string) ([]payroll.PayrollApproval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.approvalListOverride != nil {
		return m.approvalListOverride, nil
	}
	var out []payroll.PayrollApproval
	for _, a := range m.approvals {
		if a.PayrollPeriodID.String() == periodID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (m *memPayrollRepository) FindApprovalByID(ctx context.Context, companyID string, id string) (*payroll.PayrollApproval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.approvals[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (m *memPayrollRepository) UpdateApproval(ctx context.Context, approval *payroll.PayrollApproval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approvals[approval.ID] = *approval
	return nil
}

func (m *memPayrollRepository) FindApprovals(ctx context.Context, companyID string, filter payroll.ListApprovalsFilter) ([]payroll.PayrollApproval, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.approvalListOverride != nil {
		return m.approvalListOverride, int64(len(m.approvalListOverride)), nil
	}
	var out []payroll.PayrollApproval
	for _, a := range m.approvals {
		period, ok := m.periods[a.PayrollPeriodID]
		if ok && (period.Status == payroll.PeriodStatusCompleted || period.Status == payroll.PeriodStatusCancelled) {
			continue
		}
		if filter.PeriodID != "" && a.PayrollPeriodID.String() != filter.PeriodID {
			continue
		}
		if filter.DepartmentID != "" && a.DepartmentID.String() != filter.DepartmentID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.PendingOnly && a.Status != payroll.ApprovalStatusPending {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, int64(len(out)), nil
}

func (m *memPayrollRepository) GenerationRows(ctx context.Context, companyID string, asOf time.Time) ([]payroll.GenerationRow, error) {
	return m.genRows, nil
}

type fakeAttendanceSource struct {
	aggs []attendance.PeriodAggregate
}

func (f *fakeAttendanceSource) AggregateByPeriod(ctx context.Context, companyID string, from, to time.Time) ([]attendance.PeriodAggregate, error) {
	return f.aggs, nil
}

type fakeOutboxRepository struct {
	mu     sync.Mutex
	events []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }
func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type fakeCounter struct{ next int64 }

func (f *fakeCounter) GetNextValue(ctx context.Context, companyID string, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []bootstrap.AuditEntry
}

func (f *fakeAudit) Record(ctx context.Context, entry bootstrap.AuditEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
}

type payrollServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service payroll.Service
	repo    *memPayrollRepository
	att     *fakeAttendanceSource
	outbox  *fakeOutboxRepository
	audit   *fakeAudit
}

func setupPayrollServiceTest(t *testing.T) *payrollServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := newMemRepo()
	att := &fakeAttendanceSource{}
	outbox := &fakeOutboxRepository{}
	audit := &fakeAudit{}
	svc := payroll.NewService(db, repo, att, outbox, &fakeCounter{}, audit)

	return &payrollServiceDeps{db: db, sqlMock: sqlMock, service: svc, repo: repo, att: att, outbox: outbox, audit: audit}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func seedPeriod(deps *payrollServiceDeps, status string) payroll.PayrollPeriod {
	period := payroll.PayrollPeriod{
		ID:            uuid.New(),
		CompanyID:     uuid.New(),
		PeriodName:    "2026-08",
		StartDate:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		WorkingDays:   21,
		ExpectedHours: 168,
		Status:        status,
	}
	deps.repo.periods[period.ID] = period
	return period
}

// seedTwoDepartments wires 2 departments with 2 employees each into the
// generation source.
func seedTwoDepartments(deps *payrollServiceDeps) (deptA, deptB uuid.UUID) {
	deptA = uuid.New()
	deptB = uuid.New()
	for i := 0; i < 2; i++ {
		deps.repo.genRows = append(deps.repo.genRows, payroll.GenerationRow{
			EmployeeID: uuid.New(), DepartmentID: deptA, BaseSalary: 1_680_000,
		})
		deps.repo.genRows = append(deps.repo.genRows, payroll.GenerationRow{
			EmployeeID: uuid.New(), DepartmentID: deptB, BaseSalary: 1_680_000,
		})
	}
	return deptA, deptB
}

func TestGenerateAndRoute_FanOut(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	period := seedPeriod(deps, payroll.PeriodStatusDraft)
	seedTwoDepartments(deps)

	expectTx(t, deps.sqlMock, true)
	resp, err := deps.service.GenerateAndRoute(ctx, period.CompanyID.String(), period.ID.String(), payroll.GenerateRequest{})

	assert.NoError(t, err)
	assert.Equal(t, 4, resp.RecordCount)
	assert.Equal(t, 2, resp.ApprovalCount)
	assert.Equal(t, payroll.PeriodStatusSentForReview, resp.Period.Status)

	assert.Len(t, deps.repo.records, 4)
	assert.Len(t, deps.repo.approvals, 2)
	for _, a := range deps.repo.approvals {
		assert.Equal(t, payroll.ApprovalStatusPending, a.Status)
	}
	for _, r := range deps.repo.records {
		assert.Equal(t, payroll.RecordStatusDraft, r.Status)
		assert.Equal(t, payroll.ApprovalStatusPending, r.ApprovalStatus)
		// 1,680,000 over 168 expected hours
		assert.Equal(t, int64(10_000), r.HourlyRate)
	}

	assert.Len(t, deps.outbox.events, 1)
	assert.Equal(t, "payroll_sent_for_review", deps.outbox.events[0].EventType)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestGenerateAndRoute_RegenerateNeedsConfirm(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	period := seedPeriod(deps, payroll.PeriodStatusSentForReview)
	seedTwoDepartments(deps)

	oldRecord := payroll.PayrollRecord{
		ID:              uuid.New(),
		PayrollPeriodID: period.ID,
		EmployeeID:      uuid.New(),
		DepartmentID:    uuid.New(),
		Status:          payroll.RecordStatusDraft,
		ApprovalStatus:  payroll.ApprovalStatusPending,
	}
	deps.repo.records[oldRecord.ID] = oldRecord

	expectTx(t, deps.sqlMock, false)
	_, err := deps.service.GenerateAndRoute(ctx, period.CompanyID.String(), period.ID.String(), payroll.GenerateRequest{})
	assert.ErrorIs(t, err, payrollerrors.ErrRegenerateNeedsConfirm)

	// confirmed regeneration replaces all prior records for the period
	expectTx(t, deps.sqlMock, true)
	resp, err := deps.service.GenerateAndRoute(ctx, period.CompanyID.String(), period.ID.String(), payroll.GenerateRequest{ConfirmRegenerate: true})
	assert.NoError(t, err)
	assert.Equal(t, 4, resp.RecordCount)
	_, stillThere := deps.repo.records[oldRecord.ID]
	assert.False(t, stillThere)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestGenerateAndRoute_CompletedPeriodRejected(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	period := seedPeriod(deps, payroll.PeriodStatusCompleted)
	seedTwoDepartments(deps)

	expectTx(t, deps.sqlMock, false)
	_, err := deps.service.GenerateAndRoute(ctx, period.CompanyID.String(), period.ID.String(), payroll.GenerateRequest{ConfirmRegenerate: true})

	assert.ErrorIs(t, err, payrollerrors.ErrPeriodCompleted)
	assert.Empty(t, deps.repo.records)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestUpdateRecordStatus_RequiresApprovedApproval(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	period := seedPeriod(deps, payroll.PeriodStatusSentForReview)
	record := payroll.PayrollRecord{
		ID:              uuid.New(),
		CompanyID:       period.CompanyID,
		PayrollPeriodID: period.ID,
		EmployeeID:      uuid.New(),
		DepartmentID:    uuid.New(),
		Status:          payroll.RecordStatusDraft,
		ApprovalStatus:  payroll.ApprovalStatusPending,
	}
	deps.repo.records[record.ID] = record

	expectTx(t, deps.sqlMock, false)
	_, err := deps.service.UpdateRecordStatus(ctx, period.CompanyID.String(), record.ID.String(),
		payroll.UpdateRecordStatusRequest{Status: payroll.RecordStatusProcessed})
	assert.ErrorIs(t, err, payrollerrors.ErrRecordNotApproved)

	record.ApprovalStatus = payroll.ApprovalStatusApproved
	deps.repo.records[record.ID] = record

	expectTx(t, deps.sqlMock, true)
	resp, err := deps.service.UpdateRecordStatus(ctx, period.CompanyID.String(), record.ID.String(),
		payroll.UpdateRecordStatusRequest{Status: payroll.RecordStatusProcessed})
	assert.NoError(t, err)
	assert.Equal(t, payroll.RecordStatusProcessed, resp.Status)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestUpdateRecordStatus_Monotonic(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceDepsWithPaidRecord(t)
	period, record := deps.period, deps.record

	for _, target := range []string{payroll.RecordStatusProcessed, payroll.RecordStatusDraft} {
		expectTx(t, deps.deps.sqlMock, false)
		_, err := deps.deps.service.UpdateRecordStatus(ctx, period.CompanyID.String(), record.ID.String(),
			payroll.UpdateRecordStatusRequest{Status: target})
		assert.ErrorIs(t, err, payrollerrors.ErrIllegalRecordTransition)
	}

	got := deps.deps.repo.records[record.ID]
	assert.Equal(t, payroll.RecordStatusPaid, got.Status)
}

func TestBulkMarkPaid_CompletedPeriodUntouched(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	period := seedPeriod(deps, payroll.PeriodStatusCompleted)
	record := payroll.PayrollRecord{
		ID:              uuid.New(),
		CompanyID:       period.CompanyID,
		PayrollPeriodID: period.ID,
		EmployeeID:      uuid.New(),
		DepartmentID:    uuid.New(),
		Status:          payroll.RecordStatusProcessed,
		ApprovalStatus:  payroll.ApprovalStatusApproved,
	}
	deps.repo.records[record.ID] = record

	t.Run("record ids scope", func(t *testing.T) {
		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.BulkMarkPaid(ctx, period.CompanyID.String(), "actor-1",
			payroll.BulkMarkPaidRequest{RecordIDs: []string{record.ID.String()}})
		assert.NoError(t, err)
		assert.Equal(t, int64(0), resp.UpdatedCount)
		assert.Equal(t, payroll.RecordStatusProcessed, deps.repo.records[record.ID].Status)
	})

	t.Run("department scope", func(t *testing.T) {
		deptID := record.DepartmentID.String()
		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.BulkMarkPaid(ctx, period.CompanyID.String(), "actor-1",
			payroll.BulkMarkPaidRequest{DepartmentID: &deptID})
		assert.NoError(t, err)
		assert.Equal(t, int64(0), resp.UpdatedCount)
		assert.Equal(t, payroll.RecordStatusProcessed, deps.repo.records[record.ID].Status)
	})

	t.Run("period scope still rejects up front", func(t *testing.T) {
		periodID := period.ID.String()
		expectTx(t, deps.sqlMock, false)
		_, err := deps.service.BulkMarkPaid(ctx, period.CompanyID.String(), "actor-1",
			payroll.BulkMarkPaidRequest{PeriodID: &periodID})
		assert.ErrorIs(t, err, payrollerrors.ErrPeriodCompleted)
	})

	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

type paidRecordDeps struct {
	deps   *payrollServiceDeps
	period payroll.PayrollPeriod
	record payroll.PayrollRecord
}

func setupPayrollServiceDepsWithPaidRecord(t *testing.T) *paidRecordDeps {
	t.Helper()
	deps := setupPayrollServiceTest(t)
	period := seedPeriod(deps, payroll.PeriodStatusSentForReview)
	record := payroll.PayrollRecord{
		ID:              uuid.New(),
		CompanyID:       period.CompanyID,
		PayrollPeriodID: period.ID,
		EmployeeID:      uuid.New(),
		DepartmentID:    uuid.New(),
		Status:          payroll.RecordStatusPaid,
		ApprovalStatus:  payroll.ApprovalStatusApproved,
	}
	deps.repo.records[record.ID] = record
	return &paidRecordDeps{deps: deps, period: period, record: record}
}

func TestCompletePeriod_Gating(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	t.Run("pending approval blocks completion", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		period := seedPeriod(deps, payroll.PeriodStatusSentForReview)

		approval := payroll.PayrollApproval{
			ID: uuid.New(), CompanyID: period.CompanyID,
			PayrollPeriodID: period.ID, DepartmentID: uuid.New(),
			Status: payroll.ApprovalStatusPending,
		}
		deps.repo.approvals[approval.ID] = approval

		expectTx(t, deps.sqlMock, false)
		_, err := deps.service.CompletePeriod(ctx, period.CompanyID.String(), actorID, period.ID.String())
		assert.ErrorIs(t, err, payrollerrors.ErrApprovalsNotAllApproved)
	})

	t.Run("no approvals blocks completion", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		period := seedPeriod(deps, payroll.PeriodStatusSentForReview)

		expectTx(t, deps.sqlMock, false)
		_, err := deps.service.CompletePeriod(ctx, period.CompanyID.String(), actorID, period.ID.String())
		assert.ErrorIs(t, err, payrollerrors.ErrPeriodHasNoApprovals)
	})

	t.Run("no processed records blocks completion", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		period := seedPeriod(deps, payroll.PeriodStatusSentForReview)

		approval := payroll.PayrollApproval{
			ID: uuid.New(), CompanyID: period.CompanyID,
			PayrollPeriodID: period.ID, DepartmentID: uuid.New(),
			Status: payroll.ApprovalStatusApproved,
		}
		deps.repo.approvals[approval.ID] = approval

		expectTx(t, deps.sqlMock, false)
		_, err := deps.service.CompletePeriod(ctx, period.CompanyID.String(), actorID, period.ID.String())
		assert.ErrorIs(t, err, payrollerrors.ErrNoProcessedRecords)
	})

	t.Run("success emits events and audit entry", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		period := seedPeriod(deps, payroll.PeriodStatusSentForReview)

		approval := payroll.PayrollApproval{
			ID: uuid.New(), CompanyID: period.CompanyID,
			PayrollPeriodID: period.ID, DepartmentID: uuid.New(),
			Status: payroll.ApprovalStatusApproved,
		}
		deps.repo.approvals[approval.ID] = approval
		record := payroll.PayrollRecord{
			ID: uuid.New(), CompanyID: period.CompanyID,
			PayrollPeriodID: period.ID, EmployeeID: uuid.New(),
			DepartmentID: approval.DepartmentID,
			Status:       payroll.RecordStatusProcessed, ApprovalStatus: payroll.ApprovalStatusApproved,
		}
		deps.repo.records[record.ID] = record

		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.CompletePeriod(ctx, period.CompanyID.String(), actorID, period.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, payroll.PeriodStatusCompleted, resp.Status)
		assert.Len(t, deps.outbox.events, 2)
		assert.Equal(t, "payroll_period_completed", deps.outbox.events[0].EventType)
		assert.Equal(t, "payroll_paystub_requested", deps.outbox.events[1].EventType)
		assert.Len(t, deps.audit.entries, 1)
		assert.Equal(t, "payroll.period_completed", deps.audit.entries[0].Action)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestGetApprovals_DeduplicatesFirstWins(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	periodID := uuid.New()
	deptID := uuid.New()
	first := payroll.PayrollApproval{
		ID: uuid.New(), PayrollPeriodID: periodID, DepartmentID: deptID,
		Status: payroll.ApprovalStatusPending,
	}
	duplicate := payroll.PayrollApproval{
		ID: uuid.New(), PayrollPeriodID: periodID, DepartmentID: deptID,
		Status: payroll.ApprovalStatusApproved,
	}
	other := payroll.PayrollApproval{
		ID: uuid.New(), PayrollPeriodID: periodID, DepartmentID: uuid.New(),
		Status: payroll.ApprovalStatusPending,
	}
	deps.repo.approvalListOverride = []payroll.PayrollApproval{first, duplicate, other}

	resp, _, err := deps.service.GetApprovals(ctx, uuid.New().String(), payroll.ListApprovalsFilter{})

	assert.NoError(t, err)
	assert.Len(t, resp, 2)
	assert.Equal(t, first.ID.String(), resp[0].ID)
	assert.Equal(t, payroll.ApprovalStatusPending, resp[0].Status)
}

func TestCompletedPeriodExcludedFromApprovalQueue(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	completed := seedPeriod(deps, payroll.PeriodStatusCompleted)
	active := seedPeriod(deps, payroll.PeriodStatusSentForReview)

	deps.repo.approvals[uuid.New()] = payroll.PayrollApproval{
		ID: uuid.New(), PayrollPeriodID: completed.ID, DepartmentID: uuid.New(),
		Status: payroll.ApprovalStatusApproved,
	}
	keep := payroll.PayrollApproval{
		ID: uuid.New(), PayrollPeriodID: active.ID, DepartmentID: uuid.New(),
		Status: payroll.ApprovalStatusPending,
	}
	deps.repo.approvals[keep.ID] = keep

	resp, _, err := deps.service.GetApprovals(ctx, completed.CompanyID.String(), payroll.ListApprovalsFilter{})

	assert.NoError(t, err)
	assert.Len(t, resp, 1)
	assert.Equal(t, active.ID.String(), resp[0].PayrollPeriodID)
}

// Full lifecycle: generate for two departments, approve A, bulk process per
// department, approve B, process, pay, complete, then verify the completed
// period rejects another generation.
func TestPayrollLifecycle_EndToEnd(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	approverID := uuid.New().String()
	deps := setupPayrollServiceTest(t)

	period := seedPeriod(deps, payroll.PeriodStatusDraft)
	deptA, deptB := seedTwoDepartments(deps)
	companyID := period.CompanyID.String()
	periodID := period.ID.String()

	expectTx(t, deps.sqlMock, true)
	gen, err := deps.service.GenerateAndRoute(ctx, companyID, periodID, payroll.GenerateRequest{})
	assert.NoError(t, err)
	assert.Equal(t, 4, gen.RecordCount)
	assert.Equal(t, 2, gen.ApprovalCount)

	approvalFor := func(dept uuid.UUID) payroll.PayrollApproval {
		t.Helper()
		for _, a := range deps.repo.approvals {
			if a.DepartmentID == dept {
				return a
			}
		}
		t.Fatalf("no approval for department %s", dept)
		return payroll.PayrollApproval{}
	}

	// approve department A; its records mirror the decision
	expectTx(t, deps.sqlMock, true)
	_, err = deps.service.ApproveDepartment(ctx, companyID, approverID, approvalFor(deptA).ID.String(),
		payroll.ApproveRequest{Status: payroll.ApprovalStatusApproved})
	assert.NoError(t, err)

	// bulk process scoped to A succeeds for its 2 records
	deptAID := deptA.String()
	expectTx(t, deps.sqlMock, true)
	bulk, err := deps.service.BulkUpdateStatus(ctx, companyID, periodID,
		payroll.BulkUpdateStatusRequest{Status: payroll.RecordStatusProcessed, DepartmentID: &deptAID})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), bulk.UpdatedCount)

	// the same call scoped to still-pending B touches nothing
	deptBID := deptB.String()
	expectTx(t, deps.sqlMock, true)
	bulk, err = deps.service.BulkUpdateStatus(ctx, companyID, periodID,
		payroll.BulkUpdateStatusRequest{Status: payroll.RecordStatusProcessed, DepartmentID: &deptBID})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), bulk.UpdatedCount)

	// approve B and process the rest
	expectTx(t, deps.sqlMock, true)
	_, err = deps.service.ApproveDepartment(ctx, companyID, approverID, approvalFor(deptB).ID.String(),
		payroll.ApproveRequest{Status: payroll.ApprovalStatusApproved})
	assert.NoError(t, err)

	expectTx(t, deps.sqlMock, true)
	bulk, err = deps.service.BulkUpdateStatus(ctx, companyID, periodID,
		payroll.BulkUpdateStatusRequest{Status: payroll.RecordStatusProcessed})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), bulk.UpdatedCount)

	// pay everything
	expectTx(t, deps.sqlMock, true)
	paid, err := deps.service.BulkMarkPaid(ctx, companyID, actorID,
		payroll.BulkMarkPaidRequest{PeriodID: &periodID})
	assert.NoError(t, err)
	assert.Equal(t, int64(4), paid.UpdatedCount)

	expectTx(t, deps.sqlMock, true)
	done, err := deps.service.CompletePeriod(ctx, companyID, actorID, periodID)
	assert.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusCompleted, done.Status)

	// a completed period rejects regeneration
	expectTx(t, deps.sqlMock, false)
	_, err = deps.service.GenerateAndRoute(ctx, companyID, periodID, payroll.GenerateRequest{ConfirmRegenerate: true})
	assert.ErrorIs(t, err, payrollerrors.ErrPeriodCompleted)

	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestApproveDepartment_AlreadyDecided(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	period := seedPeriod(deps, payroll.PeriodStatusSentForReview)
	approval := payroll.PayrollApproval{
		ID: uuid.New(), CompanyID: period.CompanyID,
		PayrollPeriodID: period.ID, DepartmentID: uuid.New(),
		Status: payroll.ApprovalStatusApproved,
	}
	deps.repo.approvals[approval.ID] = approval

	expectTx(t, deps.sqlMock, false)
	_, err := deps.service.ApproveDepartment(ctx, period.CompanyID.String(), uuid.New().String(), approval.ID.String(),
		payroll.ApproveRequest{Status: payroll.ApprovalStatusRejected})

	assert.ErrorIs(t, err, payrollerrors.ErrApprovalAlreadyDecided)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestCancelPeriod(t *testing.T) {
	ctx := context.Background()

	t.Run("draft can be cancelled", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		period := seedPeriod(deps, payroll.PeriodStatusDraft)

		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.CancelPeriod(ctx, period.CompanyID.String(), period.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, payroll.PeriodStatusCancelled, resp.Status)
	})

	t.Run("sent_for_review cannot be cancelled", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		period := seedPeriod(deps, payroll.PeriodStatusSentForReview)

		expectTx(t, deps.sqlMock, false)
		_, err := deps.service.CancelPeriod(ctx, period.CompanyID.String(), period.ID.String())
		assert.ErrorIs(t, err, payrollerrors.ErrIllegalPeriodTransition)
	})
}

func TestExportPaystubs(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	period := seedPeriod(deps, payroll.PeriodStatusSentForReview)
	record := payroll.PayrollRecord{
		ID: uuid.New(), CompanyID: period.CompanyID,
		PayrollPeriodID: period.ID, EmployeeID: uuid.New(),
		DepartmentID: uuid.New(),
		BaseSalary:   1_680_000, HourlyRate: 10_000,
		GrossPay: 1_680_000, NetPay: 1_680_000,
		Status: payroll.RecordStatusProcessed, ApprovalStatus: payroll.ApprovalStatusApproved,
	}
	deps.repo.records[record.ID] = record

	pdf, err := deps.service.ExportPaystubs(ctx, period.CompanyID.String(), period.ID.String(), nil)

	assert.NoError(t, err)
	assert.True(t, len(pdf) > 0)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestExportPaystubs_NoRecords(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	period := seedPeriod(deps, payroll.PeriodStatusSentForReview)

	_, err := deps.service.ExportPaystubs(ctx, period.CompanyID.String(), period.ID.String(), nil)
	assert.ErrorIs(t, err, payrollerrors.ErrRecordNotFound)
}
