package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	attendanceerrors "go-payroll/internal/attendance/errors"
	"go-payroll/internal/shared/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	ClockIn(ctx context.Context, companyID string, req ClockInRequest) (AttendanceResponse, error)
	ClockOut(ctx context.Context, companyID string, req ClockOutRequest) (AttendanceResponse, error)
	Correct(ctx context.Context, companyID, id string, req CorrectAttendanceRequest) (AttendanceResponse, error)
	GetAll(ctx context.Context, companyID string, filter ListAttendanceFilter) ([]AttendanceResponse, response.Pagination, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{db: db, repo: repo, logger: l, now: time.Now}
}

func (s *service) ClockIn(ctx context.Context, companyID string, req ClockInRequest) (AttendanceResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	belongs, err := qtx.EmployeeBelongsToCompany(ctx, companyID, req.EmployeeID)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if !belongs {
		return AttendanceResponse{}, attendanceerrors.ErrEmployeeNotInCompany
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	existing, err := qtx.FindByEmployeeAndDate(ctx, companyID, req.EmployeeID, today)
	if err == nil && existing.ClockIn != nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyClockedIn
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return AttendanceResponse{}, err
	}

	att := &Attendance{
		ID:         uuid.New(),
		CompanyID:  uuid.MustParse(companyID),
		EmployeeID: uuid.MustParse(req.EmployeeID),
		WorkDate:   today,
		ClockIn:    &now,
		Notes:      req.Notes,
	}

	if err := qtx.Create(ctx, att); err != nil {
		return AttendanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("clock in recorded",
		zap.String("employee_id", req.EmployeeID),
		zap.String("work_date", today.Format("2006-01-02")),
	)

	return mapToResponse(*att), nil
}

func (s *service) ClockOut(ctx context.Context, companyID string, req ClockOutRequest) (AttendanceResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	att, err := qtx.FindByEmployeeAndDate(ctx, companyID, req.EmployeeID, today)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrNotClockedIn
		}
		return AttendanceResponse{}, err
	}
	if att.ClockIn == nil {
		return AttendanceResponse{}, attendanceerrors.ErrNotClockedIn
	}
	if att.ClockOut != nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyClockedOut
	}

	att.ClockOut = &now

	if err := qtx.Update(ctx, att); err != nil {
		return AttendanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	return mapToResponse(*att), nil
}

// Correct is the time-correction path: HR adjusts clock marks, late and
// overtime minutes, or flags a day as paid leave on an existing row.
func (s *service) Correct(ctx context.Context, companyID, id string, req CorrectAttendanceRequest) (AttendanceResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	att, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrAttendanceNotFound
		}
		return AttendanceResponse{}, err
	}

	if req.ClockIn != nil {
		parsed, err := time.Parse(time.RFC3339, *req.ClockIn)
		if err != nil {
			return AttendanceResponse{}, attendanceerrors.ErrInvalidTimestamp
		}
		att.ClockIn = &parsed
	}
	if req.ClockOut != nil {
		parsed, err := time.Parse(time.RFC3339, *req.ClockOut)
		if err != nil {
			return AttendanceResponse{}, attendanceerrors.ErrInvalidTimestamp
		}
		att.ClockOut = &parsed
	}
	if att.ClockIn != nil && att.ClockOut != nil && !att.ClockOut.After(*att.ClockIn) {
		return AttendanceResponse{}, attendanceerrors.ErrClockOutBeforeClockIn
	}
	if req.LateMinutes != nil {
		att.LateMinutes = *req.LateMinutes
	}
	if req.OvertimeMinutes != nil {
		att.OvertimeMinutes = *req.OvertimeMinutes
	}
	if req.PaidLeave != nil {
		att.PaidLeave = *req.PaidLeave
	}
	if req.Notes != nil {
		att.Notes = req.Notes
	}

	if err := qtx.Update(ctx, att); err != nil {
		return AttendanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("attendance corrected", zap.String("attendance_id", id))

	return mapToResponse(*att), nil
}

func (s *service) GetAll(ctx context.Context, companyID string, filter ListAttendanceFilter) ([]AttendanceResponse, response.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	rows, total, err := s.repo.FindAllByCompany(ctx, companyID, filter)
	if err != nil {
		return nil, response.Pagination{}, err
	}

	resp := make([]AttendanceResponse, len(rows))
	for i, att := range rows {
		resp[i] = mapToResponse(att)
	}
	return resp, response.NewPagination(total, filter.Page, filter.Limit), nil
}

func mapToResponse(att Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:              att.ID.String(),
		CompanyID:       att.CompanyID.String(),
		EmployeeID:      att.EmployeeID.String(),
		WorkDate:        att.WorkDate.Format("2006-01-02"),
		LateMinutes:     att.LateMinutes,
		OvertimeMinutes: att.OvertimeMinutes,
		PaidLeave:       att.PaidLeave,
		Notes:           att.Notes,
	}
	if att.ClockIn != nil {
		v := att.ClockIn.Format(time.RFC3339)
		resp.ClockIn = &v
	}
	if att.ClockOut != nil {
		v := att.ClockOut.Format(time.RFC3339)
		resp.ClockOut = &v
	}
	return resp
}
