// Package operationservice orchestrates the three account operations:
// balance inquiry, deposit and withdrawal. It sequences store reads, ledger
// decisions and store writes, and is the sole writer of audit records, so
// every attempt produces exactly one terminal record.
package operationservice

import (
	"context"
	"fmt"
	"time"

	"github.com/bankapp/account-core/internal/domain"
	"github.com/bankapp/account-core/internal/ledgerengine"
	"github.com/bankapp/account-core/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// maxSaveAttempts bounds the optimistic-conflict retry of the full
// load-decide-save sequence before the call surfaces SYSTEM_ERROR.
const maxSaveAttempts = 3

// Store provides the account persistence interface needed by the dispatcher.
//
//go:generate mockgen -source service.go -destination service_mock.go -package operationservice
type Store interface {
	LoadByOwner(ctx context.Context, ownerID int64) (domain.Account, error)
	LoadByIDForOwner(ctx context.Context, accountID, ownerID int64) (domain.Account, error)
	ExistsByID(ctx context.Context, accountID int64) (bool, error)
	CompareAndSave(ctx context.Context, account domain.Account, newBalance decimal.Decimal) (domain.Account, error)
}

// Sink provides the append-only audit interface needed by the dispatcher.
type Sink interface {
	Append(ctx context.Context, rec domain.AuditRecord) error
}

// Service facilitates account operation orchestration.
type Service struct {
	store Store
	sink  Sink
}

// New returns operation service struct with the injected store and audit sink.
func New(store Store, sink Sink) *Service {
	return &Service{
		store: store,
		sink:  sink,
	}
}

// attempt accumulates the best-known audit context of one call.
type attempt struct {
	op        domain.OperationType
	actorID   int64
	originIP  string
	accountID *int64
	amount    *decimal.Decimal
	currency  string
}

func newAttempt(op domain.OperationType, actorID int64, ref domain.AccountRef, originIP string) *attempt {
	att := &attempt{
		op:       op,
		actorID:  actorID,
		originIP: originIP,
	}

	// An explicit ref names the target even when resolution later fails.
	if ref.Explicit {
		accountID := ref.AccountID
		att.accountID = &accountID
	}

	return att
}

func (att *attempt) noteAccount(a domain.Account) {
	accountID := a.ID
	att.accountID = &accountID
	att.currency = a.Currency
}

// audit emits the single terminal record of the attempt. Sink failures are
// diagnostics only and never alter the outcome already determined.
func (s *Service) audit(ctx context.Context, att *attempt, outcome domain.Outcome, message string) {
	rec := domain.AuditRecord{
		Timestamp:   time.Now().UTC(),
		ActorUserID: att.actorID,
		Operation:   att.op,
		AccountID:   att.accountID,
		Amount:      att.amount,
		Currency:    att.currency,
		Outcome:     outcome,
		OriginIP:    att.originIP,
		Message:     message,
	}

	if err := s.sink.Append(ctx, rec); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("audit append failed")
	}
}

// resolve loads the target account using the ref's strategy. For explicit
// refs a miss is disambiguated with a secondary existence check: the
// account existing under another owner is UNAUTHORIZED, not NOT_FOUND.
func (s *Service) resolve(ctx context.Context, actorID int64, ref domain.AccountRef) (domain.Account, domain.Outcome, string) {
	l := zerolog.Ctx(ctx)

	if !ref.Explicit {
		account, err := s.store.LoadByOwner(ctx, actorID)
		if err != nil {
			if err == domain.ErrAccountNotFound {
				return account, domain.OutcomeNotFound,
					fmt.Sprintf("No account found for user %d.", actorID)
			}

			l.Error().Err(err).Send()

			return account, domain.OutcomeSystemError, "Account lookup failed."
		}

		return account, domain.OutcomeSuccess, ""
	}

	account, err := s.store.LoadByIDForOwner(ctx, ref.AccountID, actorID)
	if err == nil {
		return account, domain.OutcomeSuccess, ""
	}

	if err != domain.ErrAccountNotFound {
		l.Error().Err(err).Send()
		return account, domain.OutcomeSystemError, "Account lookup failed."
	}

	exists, err := s.store.ExistsByID(ctx, ref.AccountID)
	if err != nil {
		l.Error().Err(err).Send()
		return account, domain.OutcomeSystemError, "Account lookup failed."
	}

	if exists {
		return account, domain.OutcomeUnauthorized,
			fmt.Sprintf("Account %d does not belong to user %d. Access denied.", ref.AccountID, actorID)
	}

	return account, domain.OutcomeNotFound,
		fmt.Sprintf("Account %d not found for user %d.", ref.AccountID, actorID)
}

// outcomeError maps an outcome to the error surfaced to the caller.
func outcomeError(outcome domain.Outcome) error {
	if outcome == domain.OutcomeSystemError {
		return errorspkg.ErrInternal
	}

	return outcome.Err()
}

// Inquire returns the current balance snapshot of the referenced account.
func (s *Service) Inquire(ctx context.Context, actorID int64, ref domain.AccountRef, originIP string) (domain.AccountSnapshot, error) {
	att := newAttempt(domain.OperationInquiry, actorID, ref, originIP)

	if actorID <= 0 {
		s.audit(ctx, att, domain.OutcomeInvalidInput, "User ID not provided for balance inquiry.")
		return domain.AccountSnapshot{}, domain.ErrInvalidInput
	}

	account, outcome, reason := s.resolve(ctx, actorID, ref)
	if outcome != domain.OutcomeSuccess {
		s.audit(ctx, att, outcome, reason)
		return domain.AccountSnapshot{}, outcomeError(outcome)
	}

	att.noteAccount(account)

	decision := ledgerengine.Inquiry(account)
	s.audit(ctx, att, decision.Outcome, decision.Reason)

	if err := decision.Err(); err != nil {
		return domain.AccountSnapshot{}, err
	}

	return domain.SnapshotOf(account), nil
}

// Deposit credits the amount to the referenced account and returns a receipt.
func (s *Service) Deposit(ctx context.Context, actorID int64, ref domain.AccountRef, amount, originIP string) (domain.TransactionReceipt, error) {
	return s.mutate(ctx, domain.OperationDeposit, actorID, ref, amount, originIP)
}

// Withdraw debits the amount from the referenced account and returns a receipt.
func (s *Service) Withdraw(ctx context.Context, actorID int64, ref domain.AccountRef, amount, originIP string) (domain.TransactionReceipt, error) {
	return s.mutate(ctx, domain.OperationWithdrawal, actorID, ref, amount, originIP)
}

// mutate runs the shared deposit/withdrawal sequence: validate, resolve,
// decide, compare-and-save. A stale save restarts the whole load-decide-save
// sequence so the decision is always made against fresh state.
func (s *Service) mutate(ctx context.Context, op domain.OperationType, actorID int64, ref domain.AccountRef, rawAmount, originIP string) (domain.TransactionReceipt, error) {
	l := zerolog.Ctx(ctx)
	att := newAttempt(op, actorID, ref, originIP)

	if actorID <= 0 {
		s.audit(ctx, att, domain.OutcomeInvalidInput, fmt.Sprintf("User ID not provided for %s.", op))
		return domain.TransactionReceipt{}, domain.ErrInvalidInput
	}

	amount, decision := ledgerengine.ParseAmount(rawAmount)
	if decision.Outcome != domain.OutcomeSuccess {
		s.audit(ctx, att, decision.Outcome, decision.Reason)
		return domain.TransactionReceipt{}, decision.Err()
	}

	att.amount = &amount

	for i := 0; i < maxSaveAttempts; i++ {
		account, outcome, reason := s.resolve(ctx, actorID, ref)
		if outcome != domain.OutcomeSuccess {
			s.audit(ctx, att, outcome, reason)
			return domain.TransactionReceipt{}, outcomeError(outcome)
		}

		att.noteAccount(account)

		switch op {
		case domain.OperationDeposit:
			decision = ledgerengine.Deposit(account, amount)
		default:
			decision = ledgerengine.Withdrawal(account, amount)
		}

		if decision.Outcome != domain.OutcomeSuccess {
			s.audit(ctx, att, decision.Outcome, decision.Reason)
			return domain.TransactionReceipt{}, decision.Err()
		}

		updated, err := s.store.CompareAndSave(ctx, account, decision.NewBalance)
		if err == domain.ErrStaleAccount {
			l.Debug().Int64("account_id", account.ID).Int("attempt", i+1).Msg("account version conflict, retrying")
			continue
		}

		if err != nil {
			l.Error().Err(err).Send()
			s.audit(ctx, att, domain.OutcomeSystemError, fmt.Sprintf("Failed to persist %s.", op))

			return domain.TransactionReceipt{}, errorspkg.ErrInternal
		}

		s.audit(ctx, att, domain.OutcomeSuccess, decision.Reason)

		return newReceipt(op, updated, amount), nil
	}

	l.Error().Int("attempts", maxSaveAttempts).Msg("account version conflict retries exhausted")
	s.audit(ctx, att, domain.OutcomeSystemError, fmt.Sprintf("Failed to persist %s after concurrent updates.", op))

	return domain.TransactionReceipt{}, errorspkg.ErrInternal
}

func newReceipt(op domain.OperationType, account domain.Account, amount decimal.Decimal) domain.TransactionReceipt {
	receipt := domain.TransactionReceipt{
		AccountID:     account.ID,
		AccountNumber: account.AccountNumber,
		NewBalance:    account.Balance,
		Currency:      account.Currency,
		Timestamp:     time.Now().UTC(),
	}

	if op == domain.OperationDeposit {
		receipt.Message = "Deposit completed successfully."
		receipt.AmountDeposited = &amount
		receipt.TransactionID = "txn_dep_" + uuid.NewString()
	} else {
		receipt.Message = "Withdrawal completed successfully."
		receipt.AmountWithdrawn = &amount
		receipt.TransactionID = "txn_wdr_" + uuid.NewString()
	}

	return receipt
}
