// Package transactionrepo manages repository layer of transaction records.
package transactionrepo

import (
	"context"
	"database/sql"

	"github.com/concierge-bank/backend/internal/domain"
	"github.com/concierge-bank/backend/pkg/dbpkg"
	"github.com/concierge-bank/backend/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates transaction record repository layer logic. The
// transactions table is append-only; there is no update or delete here.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transaction record RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const appendQuery = `
INSERT INTO
    transactions (account_id, direction, amount, description, category)
VALUES
    ($1, $2, $3, $4, $5)
RETURNING id, account_id, direction, amount, description, category, created_at
`

// Append creates an immutable record and then returns it.
func (r *RepoPGS) Append(ctx context.Context, arg domain.TransactionRecord) (domain.TransactionRecord, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, appendQuery,
		arg.AccountID,
		arg.Direction,
		arg.Amount,
		arg.Description,
		arg.Category,
	)

	var rec domain.TransactionRecord

	err := row.Scan(
		&rec.ID,
		&rec.AccountID,
		&rec.Direction,
		&rec.Amount,
		&rec.Description,
		&rec.Category,
		&rec.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transactions_account_id_fkey":
				return rec, domain.ErrAccountNotFound
			case "transactions_amount_check":
				return rec, domain.ErrInvalidAmount
			}
		}

		return rec, errorspkg.ErrInternal
	}

	return rec, nil
}

const getQuery = `
SELECT id, account_id, direction, amount, description, category, created_at FROM transactions
WHERE id = $1 LIMIT 1
`

// Get returns the record with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.TransactionRecord, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var rec domain.TransactionRecord

	err := row.Scan(
		&rec.ID,
		&rec.AccountID,
		&rec.Direction,
		&rec.Amount,
		&rec.Description,
		&rec.Category,
		&rec.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return rec, domain.ErrRecordNotFound
		}

		return rec, errorspkg.ErrInternal
	}

	return rec, nil
}

const listQuery = `
SELECT id, account_id, direction, amount, description, category, created_at FROM transactions
WHERE account_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

// List returns records for the given account, most recent first.
func (r *RepoPGS) List(ctx context.Context, accountID int32, limit, offset int32) ([]domain.TransactionRecord, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, accountID, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.TransactionRecord{}

	for rows.Next() {
		var rec domain.TransactionRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.AccountID,
			&rec.Direction,
			&rec.Amount,
			&rec.Description,
			&rec.Category,
			&rec.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, rec)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
