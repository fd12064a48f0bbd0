// Package ledgerengine holds the pure decision logic for account operations.
// It performs no I/O and keeps no state: given an account and a requested
// operation it classifies admissibility and computes the resulting balance.
// Rules evaluate in a fixed order and the first failing rule wins.
package ledgerengine

import (
	"fmt"

	"github.com/bankapp/account-core/internal/domain"
	"github.com/shopspring/decimal"
)

// Decision is the engine's verdict on one operation attempt.
// NewBalance is meaningful only when Outcome is SUCCESS on a mutation.
// Reason is a sanitized message safe for the audit trail and for callers.
type Decision struct {
	Outcome    domain.Outcome
	NewBalance decimal.Decimal
	Reason     string
}

// Err returns the sentinel error matching the decision outcome, nil on success.
func (d Decision) Err() error {
	return d.Outcome.Err()
}

// ParseAmount validates and parses a requested operation amount.
// The amount must be a well-formed, strictly positive decimal.
func ParseAmount(raw string) (decimal.Decimal, Decision) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, Decision{
			Outcome: domain.OutcomeInvalidInput,
			Reason:  fmt.Sprintf("Invalid amount: %q. Amount must be a decimal number.", raw),
		}
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, Decision{
			Outcome: domain.OutcomeInvalidInput,
			Reason:  fmt.Sprintf("Invalid amount: %s. Amount must be positive.", amount.String()),
		}
	}

	return amount, Decision{Outcome: domain.OutcomeSuccess}
}

// Inquiry decides whether the account balance may be viewed.
func Inquiry(a domain.Account) Decision {
	if !a.Status.CanInquire() {
		return Decision{
			Outcome: domain.OutcomeForbiddenStatus,
			Reason:  fmt.Sprintf("Balance inquiry not permitted: account %d status is %s.", a.ID, a.Status),
		}
	}

	return Decision{
		Outcome:    domain.OutcomeSuccess,
		NewBalance: a.Balance,
		Reason:     fmt.Sprintf("Balance inquiry successful for account %d.", a.ID),
	}
}

// Deposit decides whether the amount may be credited and computes the
// resulting balance. Arithmetic is exact decimal, no rounding.
func Deposit(a domain.Account, amount decimal.Decimal) Decision {
	if !a.Status.CanTransact() {
		return Decision{
			Outcome: domain.OutcomeForbiddenStatus,
			Reason:  fmt.Sprintf("Deposit not permitted: account %d status is %s.", a.ID, a.Status),
		}
	}

	newBalance := a.Balance.Add(amount)

	return Decision{
		Outcome:    domain.OutcomeSuccess,
		NewBalance: newBalance,
		Reason: fmt.Sprintf("Deposit of %s %s to account %d successful. New balance: %s.",
			amount.String(), a.Currency, a.ID, newBalance.String()),
	}
}

// Withdrawal decides whether the amount may be debited and computes the
// resulting balance. Draining the balance to exactly zero is valid; the
// resulting balance is never negative.
func Withdrawal(a domain.Account, amount decimal.Decimal) Decision {
	if !a.Status.CanTransact() {
		return Decision{
			Outcome: domain.OutcomeForbiddenStatus,
			Reason:  fmt.Sprintf("Withdrawal not permitted: account %d status is %s.", a.ID, a.Status),
		}
	}

	if a.Balance.LessThan(amount) {
		return Decision{
			Outcome: domain.OutcomeInsufficientFunds,
			Reason: fmt.Sprintf("Insufficient funds in account %d. Balance: %s, requested: %s.",
				a.ID, a.Balance.String(), amount.String()),
		}
	}

	newBalance := a.Balance.Sub(amount)

	return Decision{
		Outcome:    domain.OutcomeSuccess,
		NewBalance: newBalance,
		Reason: fmt.Sprintf("Withdrawal of %s %s from account %d successful. New balance: %s.",
			amount.String(), a.Currency, a.ID, newBalance.String()),
	}
}
