package auditsink

import (
	"context"
	"fmt"

	"github.com/bankapp/account-core/internal/domain"
	"github.com/rs/zerolog"
)

const notAvailable = "N/A"

// TraceLogger writes audit records as TRANSACTION_TRACE log lines.
type TraceLogger struct {
	logger zerolog.Logger
}

// NewTraceLogger returns a TraceLogger writing to the given logger.
func NewTraceLogger(logger zerolog.Logger) *TraceLogger {
	return &TraceLogger{logger: logger}
}

// Append writes one trace line. It never returns an error.
func (t *TraceLogger) Append(ctx context.Context, rec domain.AuditRecord) error {
	t.logger.Info().Msg("[TRANSACTION_TRACE] " + FormatRecord(rec))

	return nil
}

// FormatRecord renders the record in the fixed pipe-separated trace layout.
// Fields the attempt never resolved render as N/A.
func FormatRecord(rec domain.AuditRecord) string {
	actorUserID := notAvailable
	if rec.ActorUserID > 0 {
		actorUserID = fmt.Sprintf("%d", rec.ActorUserID)
	}

	accountID := notAvailable
	if rec.AccountID != nil {
		accountID = fmt.Sprintf("%d", *rec.AccountID)
	}

	amount := notAvailable
	if rec.Amount != nil {
		amount = rec.Amount.String()
	}

	currency := rec.Currency
	if currency == "" {
		currency = notAvailable
	}

	originIP := rec.OriginIP
	if originIP == "" {
		originIP = notAvailable
	}

	return fmt.Sprintf(
		"TIMESTAMP: %s | USER_ID: %s | OPERATION: %s | ACCOUNT_ID: %s | AMOUNT: %s | CURRENCY: %s | STATUS: %s | IP: %s | MESSAGE: %s",
		rec.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		actorUserID,
		rec.Operation,
		accountID,
		amount,
		currency,
		rec.Outcome,
		originIP,
		rec.Message,
	)
}
