package payroll

import (
	"testing"

	"go-payroll/internal/attendance"
	payrollerrors "go-payroll/internal/payroll/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testPeriod() *PayrollPeriod {
	return &PayrollPeriod{
		ID:            uuid.New(),
		CompanyID:     uuid.New(),
		ExpectedHours: 160,
	}
}

func TestComputeRecord(t *testing.T) {
	row := GenerationRow{
		EmployeeID:      uuid.New(),
		DepartmentID:    uuid.New(),
		BaseSalary:      1_600_000,
		TotalBenefits:   50_000,
		TotalDeductions: 30_000,
	}

	t.Run("overtime pays at 1.5x the hourly rate", func(t *testing.T) {
		agg := &attendance.PeriodAggregate{
			EmployeeID:      row.EmployeeID,
			WorkedMinutes:   160 * 60,
			OvertimeMinutes: 10 * 60,
		}

		rec := computeRecord(testPeriod(), row, agg)

		assert.Equal(t, int64(10_000), rec.HourlyRate)
		assert.Equal(t, float64(160), rec.TotalWorkedHours)
		assert.Equal(t, float64(150), rec.TotalRegularHours)
		assert.Equal(t, float64(10), rec.TotalOvertimeHours)
		// 1,600,000 base + 10h * 10,000 * 1.5 overtime
		assert.Equal(t, int64(1_750_000), rec.GrossPay)
		// gross - deductions + benefits
		assert.Equal(t, int64(1_770_000), rec.NetPay)
	})

	t.Run("late hours deduct at the hourly rate", func(t *testing.T) {
		agg := &attendance.PeriodAggregate{
			EmployeeID:    row.EmployeeID,
			WorkedMinutes: 157 * 60,
			LateMinutes:   3 * 60,
		}

		rec := computeRecord(testPeriod(), row, agg)

		assert.Equal(t, float64(3), rec.TotalLateHours)
		assert.Equal(t, int64(30_000), rec.LateDeductions)
		assert.Equal(t, int64(1_600_000), rec.GrossPay)
		assert.Equal(t, int64(1_590_000), rec.NetPay)
	})

	t.Run("no attendance rows credits expected hours", func(t *testing.T) {
		rec := computeRecord(testPeriod(), row, nil)

		assert.Equal(t, float64(160), rec.TotalWorkedHours)
		assert.Equal(t, float64(160), rec.TotalRegularHours)
		assert.Zero(t, rec.TotalOvertimeHours)
		assert.Equal(t, int64(1_600_000), rec.GrossPay)
	})

	t.Run("paid leave days credit eight hours each", func(t *testing.T) {
		agg := &attendance.PeriodAggregate{
			EmployeeID:    row.EmployeeID,
			WorkedMinutes: 144 * 60,
			PaidLeaveDays: 2,
		}

		rec := computeRecord(testPeriod(), row, agg)

		assert.Equal(t, float64(16), rec.PaidLeaveHours)
	})

	t.Run("partial minutes round to two decimal places", func(t *testing.T) {
		agg := &attendance.PeriodAggregate{
			EmployeeID:    row.EmployeeID,
			WorkedMinutes: 160*60 + 25,
			LateMinutes:   25,
		}

		rec := computeRecord(testPeriod(), row, agg)

		assert.Equal(t, 160.42, rec.TotalWorkedHours)
		assert.Equal(t, 0.42, rec.TotalLateHours)
		// 0.42h * 10,000 rounds to 4,200
		assert.Equal(t, int64(4_200), rec.LateDeductions)
	})

	t.Run("hourly rate rounds rather than truncates", func(t *testing.T) {
		uneven := row
		uneven.BaseSalary = 1_600_100

		rec := computeRecord(testPeriod(), uneven, nil)

		// 1,600,100 / 160 = 10,000.625
		assert.Equal(t, int64(10_001), rec.HourlyRate)
	})

	t.Run("fresh record starts draft and pending", func(t *testing.T) {
		rec := computeRecord(testPeriod(), row, nil)

		assert.Equal(t, RecordStatusDraft, rec.Status)
		assert.Equal(t, ApprovalStatusPending, rec.ApprovalStatus)
	})
}

func TestCanTransitionPeriod(t *testing.T) {
	allowed := []struct{ from, to string }{
		{PeriodStatusDraft, PeriodStatusProcessing},
		{PeriodStatusDraft, PeriodStatusCancelled},
		{PeriodStatusProcessing, PeriodStatusSentForReview},
		{PeriodStatusProcessing, PeriodStatusCancelled},
		{PeriodStatusProcessing, PeriodStatusProcessing},
		{PeriodStatusSentForReview, PeriodStatusProcessing},
		{PeriodStatusSentForReview, PeriodStatusCompleted},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransitionPeriod(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to string }{
		{PeriodStatusDraft, PeriodStatusSentForReview},
		{PeriodStatusDraft, PeriodStatusCompleted},
		{PeriodStatusSentForReview, PeriodStatusCancelled},
		{PeriodStatusCompleted, PeriodStatusProcessing},
		{PeriodStatusCompleted, PeriodStatusDraft},
		{PeriodStatusCancelled, PeriodStatusProcessing},
	}
	for _, tc := range denied {
		assert.False(t, CanTransitionPeriod(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCheckRecordTransition(t *testing.T) {
	t.Run("draft to processed needs an approved record", func(t *testing.T) {
		err := CheckRecordTransition(RecordStatusDraft, RecordStatusProcessed, ApprovalStatusPending)
		assert.ErrorIs(t, err, payrollerrors.ErrRecordNotApproved)

		err = CheckRecordTransition(RecordStatusDraft, RecordStatusProcessed, ApprovalStatusApproved)
		assert.NoError(t, err)
	})

	t.Run("statuses never move backwards", func(t *testing.T) {
		assert.ErrorIs(t,
			CheckRecordTransition(RecordStatusProcessed, RecordStatusDraft, ApprovalStatusApproved),
			payrollerrors.ErrIllegalRecordTransition)
		assert.ErrorIs(t,
			CheckRecordTransition(RecordStatusPaid, RecordStatusProcessed, ApprovalStatusApproved),
			payrollerrors.ErrIllegalRecordTransition)
		assert.ErrorIs(t,
			CheckRecordTransition(RecordStatusPaid, RecordStatusDraft, ApprovalStatusApproved),
			payrollerrors.ErrIllegalRecordTransition)
	})

	t.Run("processed to paid ignores approval status", func(t *testing.T) {
		assert.NoError(t, CheckRecordTransition(RecordStatusProcessed, RecordStatusPaid, ApprovalStatusApproved))
	})

	t.Run("unknown target status rejected", func(t *testing.T) {
		assert.ErrorIs(t,
			CheckRecordTransition(RecordStatusDraft, "archived", ApprovalStatusApproved),
			payrollerrors.ErrInvalidRecordStatus)
	})
}
