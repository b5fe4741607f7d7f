package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AuditEntry records who did what to which aggregate. Emitted for the
// irreversible payroll operations (period completion, bulk payment).
type AuditEntry struct {
	Action     string
	ActorID    string
	CompanyID  string
	SubjectID  string
	OccurredAt time.Time
}

type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}

type zapAuditLogger struct {
	logger *zap.Logger
}

func NewAuditLogger(logger *zap.Logger) AuditLogger {
	return &zapAuditLogger{logger: logger.Named("audit")}
}

func (a *zapAuditLogger) Record(_ context.Context, entry AuditEntry) {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}
	a.logger.Info("audit",
		zap.String("action", entry.Action),
		zap.String("actor_id", entry.ActorID),
		zap.String("company_id", entry.CompanyID),
		zap.String("subject_id", entry.SubjectID),
		zap.Time("occurred_at", entry.OccurredAt),
	)
}
