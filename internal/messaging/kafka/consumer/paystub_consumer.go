package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-payroll/internal/events"

	"go.uber.org/zap"
)

// PaystubExporter renders the paystub PDF for a period, optionally narrowed
// to one department. Satisfied by payroll.Service.
type PaystubExporter interface {
	ExportPaystubs(ctx context.Context, companyID, periodID string, departmentID *string) ([]byte, error)
}

// RunPaystubArchiver renders and archives the full paystub PDF for each
// completed period announced on the paystub-request topic.
func RunPaystubArchiver(
	ctx context.Context,
	reader MessageSource,
	exporter PaystubExporter,
	archiveDir string,
	logger *zap.Logger,
) {
	log := logger.Named("consumer.paystub_archiver")
	log.Info("paystub archiver started", zap.String("archive_dir", archiveDir))

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("paystub archiver stopped")
				return
			}
			log.Error("fetch message failed", zap.Error(err))
			// broker outages would otherwise spin this loop
			time.Sleep(fetchBackoff)
			continue
		}

		var event events.PayrollPaystubRequestedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode paystub request failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			commit(ctx, reader, msg, log)
			continue
		}

		if err := archivePaystubs(ctx, exporter, archiveDir, event); err != nil {
			log.Error("archive paystubs failed",
				zap.String("period_id", event.PeriodID),
				zap.Error(err),
			)
			time.Sleep(fetchBackoff)
			continue
		}

		log.Info("paystubs archived",
			zap.String("period_id", event.PeriodID),
			zap.String("request_id", event.RequestID),
		)
		commit(ctx, reader, msg, log)
	}
}

func archivePaystubs(ctx context.Context, exporter PaystubExporter, archiveDir string, event events.PayrollPaystubRequestedEvent) error {
	pdf, err := exporter.ExportPaystubs(ctx, event.CompanyID, event.PeriodID, nil)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return err
	}

	name := fmt.Sprintf("paystubs-%s-%s.pdf", event.PeriodID, event.OccurredAt.UTC().Format("20060102T150405Z"))
	return os.WriteFile(filepath.Join(archiveDir, name), pdf, 0o644)
}
