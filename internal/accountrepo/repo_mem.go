package accountrepo

import (
	"context"
	"sync"

	"github.com/bankapp/account-core/internal/domain"
	"github.com/shopspring/decimal"
)

// RepoMem is an in-memory account store with the same compare-and-save
// semantics as RepoPGS. It backs tests and local runs without Postgres.
// All reads return copies so callers never hold internal state.
type RepoMem struct {
	mu     sync.Mutex
	nextID int64
	accts  map[int64]*domain.Account
}

// NewRepoMem returns an empty in-memory account store.
func NewRepoMem() *RepoMem {
	return &RepoMem{accts: make(map[int64]*domain.Account)}
}

// LoadByOwner returns the sole account owned by the given user.
func (r *RepoMem) LoadByOwner(ctx context.Context, ownerID int64) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accts {
		if a.OwnerID == ownerID {
			return *a, nil
		}
	}

	return domain.Account{}, domain.ErrAccountNotFound
}

// LoadByIDForOwner returns the account with the given id constrained to
// ownership by the given user.
func (r *RepoMem) LoadByIDForOwner(ctx context.Context, accountID, ownerID int64) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accts[accountID]
	if !ok || a.OwnerID != ownerID {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return *a, nil
}

// ExistsByID reports whether any account with the given id exists.
func (r *RepoMem) ExistsByID(ctx context.Context, accountID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.accts[accountID]

	return ok, nil
}

// CompareAndSave persists the new balance keyed on the version the account
// was loaded with and returns the updated account. A stale version returns
// ErrStaleAccount and leaves the stored account untouched.
func (r *RepoMem) CompareAndSave(ctx context.Context, account domain.Account, newBalance decimal.Decimal) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.accts[account.ID]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	if stored.Version != account.Version {
		return domain.Account{}, domain.ErrStaleAccount
	}

	if newBalance.IsNegative() {
		return domain.Account{}, domain.ErrInsufficientBalance
	}

	stored.Balance = newBalance
	stored.Version++

	return *stored, nil
}

// Create creates the account and then returns it.
func (r *RepoMem) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++

	a := &domain.Account{
		ID:            r.nextID,
		OwnerID:       arg.OwnerID,
		AccountNumber: arg.AccountNumber,
		AccountType:   arg.AccountType,
		Balance:       arg.Balance,
		Currency:      arg.Currency,
		Status:        arg.Status,
		Version:       1,
	}
	r.accts[a.ID] = a

	return *a, nil
}
