package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput indicates that the request is missing the user or carries
// a non-positive amount.
var ErrInvalidInput = errors.New("invalid input")

// OperationType identifies one of the three account operations.
type OperationType string

// All operation types as they appear in the audit trail.
const (
	OperationInquiry    OperationType = "BALANCE_INQUIRY"
	OperationDeposit    OperationType = "DEPOSIT"
	OperationWithdrawal OperationType = "WITHDRAWAL"
)

// Outcome is the classified terminal result of one operation attempt.
type Outcome string

// All outcomes. Every attempt ends in exactly one of these.
const (
	OutcomeSuccess           Outcome = "SUCCESS"
	OutcomeInvalidInput      Outcome = "INVALID_INPUT"
	OutcomeNotFound          Outcome = "NOT_FOUND"
	OutcomeUnauthorized      Outcome = "UNAUTHORIZED"
	OutcomeForbiddenStatus   Outcome = "FORBIDDEN_STATUS"
	OutcomeInsufficientFunds Outcome = "INSUFFICIENT_FUNDS"
	OutcomeSystemError       Outcome = "SYSTEM_ERROR"
)

// Err returns the sentinel error callers receive for the outcome,
// or nil for success. SYSTEM_ERROR is mapped by the caller to its
// internal error value to keep diagnostics out of the domain.
func (o Outcome) Err() error {
	switch o {
	case OutcomeInvalidInput:
		return ErrInvalidInput
	case OutcomeNotFound:
		return ErrAccountNotFound
	case OutcomeUnauthorized:
		return ErrUnauthorizedAccess
	case OutcomeForbiddenStatus:
		return ErrAccountNotActive
	case OutcomeInsufficientFunds:
		return ErrInsufficientBalance
	}

	return nil
}

// AuditRecord is the permanent, append-only artifact of one operation
// attempt. AccountID, Amount and Currency stay unset when the attempt
// failed before they could be resolved.
type AuditRecord struct {
	Timestamp   time.Time        `json:"timestamp"`
	ActorUserID int64            `json:"actor_user_id"`
	Operation   OperationType    `json:"operation"`
	AccountID   *int64           `json:"account_id,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Currency    string           `json:"currency,omitempty"`
	Outcome     Outcome          `json:"status"`
	OriginIP    string           `json:"origin_ip,omitempty"`
	Message     string           `json:"message"`
}
