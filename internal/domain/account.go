// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrUnauthorizedAccess indicates that the account belongs to another owner.
	ErrUnauthorizedAccess = errors.New("account does not belong to the user")
	// ErrAccountNotActive indicates that the account status forbids the operation.
	ErrAccountNotActive = errors.New("account is not active")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrStaleAccount indicates that the account changed since it was loaded.
	ErrStaleAccount = errors.New("account version conflict")
	// ErrOwnerNotFound indicates that the owner for the account is not found.
	ErrOwnerNotFound = errors.New("owner not found")
	// ErrAccountNumberAlreadyExists indicates that the account number is already taken.
	ErrAccountNumberAlreadyExists = errors.New("account number already exists")
)

// Status is the lifecycle state of an account. Transitions are driven by
// administrative actions outside this service; the core only reads it.
type Status string

// All account statuses.
const (
	StatusPendingActivation Status = "pending_activation"
	StatusActive            Status = "active"
	StatusSuspended         Status = "suspended"
	StatusClosed            Status = "closed"
)

// CanInquire reports whether a balance inquiry is permitted for the status.
// New accounts may be viewed before being provisioned for money movement.
func (s Status) CanInquire() bool {
	return s == StatusActive || s == StatusPendingActivation
}

// CanTransact reports whether deposits and withdrawals are permitted.
func (s Status) CanTransact() bool {
	return s == StatusActive
}

// Account holds one owner's monetary balance for a specific currency.
type Account struct {
	ID            int64           `json:"id"`
	OwnerID       int64           `json:"owner_id"`
	AccountNumber string          `json:"account_number"`
	AccountType   string          `json:"account_type"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	Status        Status          `json:"status"`
	Version       int64           `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AccountRef selects the account an operation targets. The zero value with
// Explicit false resolves the sole account owned by the acting user.
type AccountRef struct {
	AccountID int64
	Explicit  bool
}

// ByOwner returns a ref resolving the account owned by the acting user.
func ByOwner() AccountRef {
	return AccountRef{}
}

// ByID returns a ref resolving the given account constrained to the acting user.
func ByID(accountID int64) AccountRef {
	return AccountRef{AccountID: accountID, Explicit: true}
}

// CreateAccountParams is the input data to create an account.
type CreateAccountParams struct {
	OwnerID       int64           `json:"owner_id"`
	AccountNumber string          `json:"account_number"`
	AccountType   string          `json:"account_type"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	Status        Status          `json:"status"`
}

// AccountSnapshot is the immutable view returned by a balance inquiry.
type AccountSnapshot struct {
	AccountID     int64           `json:"account_id"`
	AccountNumber string          `json:"account_number"`
	AccountType   string          `json:"account_type"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	Status        Status          `json:"status"`
}

// SnapshotOf returns the inquiry view of the given account.
func SnapshotOf(a Account) AccountSnapshot {
	return AccountSnapshot{
		AccountID:     a.ID,
		AccountNumber: a.AccountNumber,
		AccountType:   a.AccountType,
		Balance:       a.Balance,
		Currency:      a.Currency,
		Status:        a.Status,
	}
}

// TransactionReceipt is the immutable artifact of a committed mutation.
// Exactly one of AmountDeposited and AmountWithdrawn is set.
type TransactionReceipt struct {
	Message         string           `json:"message"`
	AccountID       int64            `json:"account_id"`
	AccountNumber   string           `json:"account_number"`
	NewBalance      decimal.Decimal  `json:"new_balance"`
	Currency        string           `json:"currency"`
	AmountDeposited *decimal.Decimal `json:"amount_deposited,omitempty"`
	AmountWithdrawn *decimal.Decimal `json:"amount_withdrawn,omitempty"`
	TransactionID   string           `json:"transaction_id"`
	Timestamp       time.Time        `json:"transaction_timestamp"`
}
