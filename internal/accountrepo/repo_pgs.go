// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/bankapp/account-core/internal/domain"
	"github.com/bankapp/account-core/pkg/dbpkg"
	"github.com/bankapp/account-core/pkg/errorspkg"
	"github.com/shopspring/decimal"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const accountColumns = `
	id, owner_id, account_number, account_type, balance, currency, status, version, created_at, updated_at
`

func scanAccount(row *sql.Row) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.AccountNumber,
		&a.AccountType,
		&a.Balance,
		&a.Currency,
		&a.Status,
		&a.Version,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	return a, err
}

const loadByOwnerQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE owner_id = $1
`

// LoadByOwner returns the sole account owned by the given user.
func (r *RepoPGS) LoadByOwner(ctx context.Context, ownerID int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, loadByOwnerQuery, ownerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const loadByIDForOwnerQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE id = $1 AND owner_id = $2
`

// LoadByIDForOwner returns the account with the given id constrained to
// ownership by the given user.
func (r *RepoPGS) LoadByIDForOwner(ctx context.Context, accountID, ownerID int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, loadByIDForOwnerQuery, accountID, ownerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const existsByIDQuery = `
SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)
`

// ExistsByID reports whether any account with the given id exists,
// regardless of owner.
func (r *RepoPGS) ExistsByID(ctx context.Context, accountID int64) (bool, error) {
	l := zerolog.Ctx(ctx)

	var exists bool
	if err := r.db.QueryRowContext(ctx, existsByIDQuery, accountID).Scan(&exists); err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrInternal
	}

	return exists, nil
}

const compareAndSaveQuery = `
UPDATE accounts
SET balance = $1, version = version + 1, updated_at = now()
WHERE id = $2 AND version = $3
RETURNING ` + accountColumns + `

`

// CompareAndSave persists the new balance keyed on the version the account
// was loaded with. A concurrent writer bumps the version first and the
// update matches no row, which surfaces as ErrStaleAccount.
func (r *RepoPGS) CompareAndSave(ctx context.Context, account domain.Account, newBalance decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, compareAndSaveQuery, newBalance, account.ID, account.Version))
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrStaleAccount
		}

		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				return a, domain.ErrInsufficientBalance
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const createQuery = `
INSERT INTO
    accounts (owner_id, account_number, account_type, balance, currency, status)
VALUES
    ($1, $2, $3, $4, $5, $6)
RETURNING ` + accountColumns + `
`

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.OwnerID,
		arg.AccountNumber,
		arg.AccountType,
		arg.Balance,
		arg.Currency,
		arg.Status,
	)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "accounts_owner_id_fkey":
				return a, domain.ErrOwnerNotFound
			case "accounts_account_number_key":
				return a, domain.ErrAccountNumberAlreadyExists
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}
