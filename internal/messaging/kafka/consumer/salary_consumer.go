package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-payroll/internal/employeesalary"
	employeesalaryerrors "go-payroll/internal/employeesalary/errors"
	"go-payroll/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageSource is the slice of kafkago.Reader the consumer loops need.
type MessageSource interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// fetchBackoff paces the loop when the broker keeps erroring.
var fetchBackoff = time.Second

// RunDefaultSalaryConsumer creates a zero-amount salary row for every new
// employee so record generation always finds an effective salary. A salary
// that already exists for the effective date is treated as already handled.
func RunDefaultSalaryConsumer(
	ctx context.Context,
	reader MessageSource,
	salaryService employeesalary.Service,
	logger *zap.Logger,
) {
	log := logger.Named("consumer.default_salary")
	log.Info("default salary consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("default salary consumer stopped")
				return
			}
			log.Error("fetch message failed", zap.Error(err))
			// broker outages would otherwise spin this loop
			time.Sleep(fetchBackoff)
			continue
		}

		var event events.EmployeeCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode employee_created event failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			commit(ctx, reader, msg, log)
			continue
		}

		_, err = salaryService.Create(ctx, event.CompanyID, employeesalary.CreateEmployeeSalaryRequest{
			EmployeeID:    event.EmployeeID,
			BaseSalary:    0,
			EffectiveDate: event.OccurredAt.Format("2006-01-02"),
		})
		if err != nil && !errors.Is(err, employeesalaryerrors.ErrSalaryEffectiveDateAlreadyExists) {
			log.Error("create default salary failed",
				zap.String("employee_id", event.EmployeeID),
				zap.Error(err),
			)
			// left uncommitted so the next fetch retries it
			time.Sleep(fetchBackoff)
			continue
		}

		log.Info("default salary ensured",
			zap.String("employee_id", event.EmployeeID),
			zap.String("request_id", event.RequestID),
		)
		commit(ctx, reader, msg, log)
	}
}

func commit(ctx context.Context, reader MessageSource, msg kafkago.Message, log *zap.Logger) {
	if err := reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit message failed", zap.Int64("offset", msg.Offset), zap.Error(err))
	}
}
