// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/concierge-bank/backend/internal/domain"
	"github.com/concierge-bank/backend/pkg/dbpkg"
	"github.com/concierge-bank/backend/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates account repository layer logic. It accepts any
// dbpkg.SQLInterface so the same methods run standalone or inside a
// transfer transaction.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const debitQuery = `
UPDATE accounts
SET balance = balance - $1, updated_at = now()
WHERE id = $2 AND status = 'active' AND balance >= $1
RETURNING id, owner, balance, currency, status, created_at, updated_at
`

// Debit atomically checks sufficiency and decrements the balance in a single
// statement, so two concurrent debits can never both observe a stale balance.
// A no-row result is resolved to ErrAccountNotFound, ErrAccountNotActive or
// ErrInsufficientBalance by re-reading the row.
func (r *RepoPGS) Debit(ctx context.Context, amount string, id int32) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, debitQuery, amount, id)

	a, err := scanAccount(row)
	if err != nil {
		l.Warn().Err(err).Int32("account_id", id).Msg("debit rejected")

		if err == sql.ErrNoRows {
			return a, r.debitRejection(ctx, id)
		}

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				return a, domain.ErrInsufficientBalance
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

// debitRejection tells apart the causes of a no-row conditional debit. The
// account may be gone, frozen or closed since pre-authorization, or a
// concurrent debit drained the balance.
func (r *RepoPGS) debitRejection(ctx context.Context, id int32) error {
	var status string

	err := r.db.QueryRowContext(ctx, `SELECT status FROM accounts WHERE id = $1`, id).Scan(&status)

	switch {
	case err == sql.ErrNoRows:
		return domain.ErrAccountNotFound
	case err != nil:
		return errorspkg.ErrInternal
	case status != domain.AccountStatusActive:
		return domain.ErrAccountNotActive
	}

	return domain.ErrInsufficientBalance
}

const creditQuery = `
UPDATE accounts
SET balance = balance + $1, updated_at = now()
WHERE id = $2 AND status = 'active'
RETURNING id, owner, balance, currency, status, created_at, updated_at
`

// Credit atomically increments the balance of an active account.
func (r *RepoPGS) Credit(ctx context.Context, amount string, id int32) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, creditQuery, amount, id)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Int32("account_id", id).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const createQuery = `
INSERT INTO
    accounts (owner, balance, currency, status)
VALUES
    ($1, $2, $3, 'active')
RETURNING id, owner, balance, currency, status, created_at, updated_at
`

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, owner, balance, currency string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, owner, balance, currency)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "accounts_owner_fkey":
				return a, domain.ErrOwnerNotFound
			case "accounts_owner_currency_key":
				return a, domain.ErrCurrencyAlreadyExists
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getQuery = `
SELECT
	id, owner, balance, currency, status, created_at, updated_at
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id regardless of owner.
func (r *RepoPGS) Get(ctx context.Context, id int32) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getForOwnerQuery = `
SELECT
	id, owner, balance, currency, status, created_at, updated_at
FROM accounts
WHERE id = $1 AND owner = $2
`

// GetForOwner returns the account only when it belongs to owner. A missing
// account and an ownership mismatch are both reported as ErrAccountNotFound.
func (r *RepoPGS) GetForOwner(ctx context.Context, id int32, owner string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getForOwnerQuery, id, owner)

	a, err := scanAccount(row)
	if err != nil {
		l.Warn().Err(err).Int32("account_id", id).Msg("owned account lookup failed")

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const listAccounts = `
SELECT
	id, owner, balance, currency, status, created_at, updated_at
FROM accounts
WHERE owner = $1
ORDER BY id
LIMIT $2 OFFSET $3
`

// List returns the specified number of accounts for the given user.
func (r *RepoPGS) List(ctx context.Context, owner string, limit, offset int32) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listAccounts, owner, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.Owner, &a.Balance, &a.Currency, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&a.Balance,
		&a.Currency,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	return a, err
}
