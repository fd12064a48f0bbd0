package auditsink

import (
	"context"

	"github.com/bankapp/account-core/internal/domain"
	"github.com/bankapp/account-core/pkg/dbpkg"
)

// RepoPGS appends audit records to the operation_log table.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns audit RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const appendQuery = `
INSERT INTO
    operation_log (logged_at, actor_user_id, operation_type, account_id, amount, currency, status, origin_ip, message)
VALUES
    ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Append inserts one audit record. Rows are never updated or deleted.
func (r *RepoPGS) Append(ctx context.Context, rec domain.AuditRecord) error {
	_, err := r.db.ExecContext(ctx, appendQuery,
		rec.Timestamp,
		rec.ActorUserID,
		rec.Operation,
		rec.AccountID,
		rec.Amount,
		nullableString(rec.Currency),
		rec.Outcome,
		nullableString(rec.OriginIP),
		rec.Message,
	)

	return err
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
