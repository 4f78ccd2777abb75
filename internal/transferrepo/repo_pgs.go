// Package transferrepo manages repository layer of transfers.
package transferrepo

import (
	"context"
	"database/sql"

	"github.com/concierge-bank/backend/internal/accountrepo"
	"github.com/concierge-bank/backend/internal/domain"
	"github.com/concierge-bank/backend/internal/transactionrepo"
	"github.com/concierge-bank/backend/pkg/dbpkg"
	"github.com/concierge-bank/backend/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates transfer repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns transfer RepoPGS bound to an existing transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns transfer RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const createQuery = `
INSERT INTO
    transfers (owner, from_account_id, to_account_id,
               external_routing_number, external_account_number, external_recipient_name,
               peer_email, peer_phone,
               transfer_type, status, amount, description)
VALUES
    ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id, owner, from_account_id, to_account_id,
          external_routing_number, external_account_number, external_recipient_name,
          peer_email, peer_phone, transfer_type, status, amount, description, created_at
`

// Create persists the transfer row and then returns it.
func (r *RepoPGS) Create(ctx context.Context, owner string, arg domain.CreateTransferParams, status domain.TransferStatus) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	var (
		toAccountID                             sql.NullInt32
		routingNumber, accountNumber, recipient sql.NullString
		peerEmail, peerPhone                    sql.NullString
	)

	if arg.Internal != nil {
		toAccountID = sql.NullInt32{Int32: arg.Internal.ToAccountID, Valid: true}
	}

	if arg.External != nil {
		routingNumber = sql.NullString{String: arg.External.RoutingNumber, Valid: true}
		accountNumber = sql.NullString{String: arg.External.AccountNumber, Valid: true}
		recipient = sql.NullString{String: arg.External.RecipientName, Valid: true}
	}

	if arg.Peer != nil {
		peerEmail = sql.NullString{String: arg.Peer.Email, Valid: arg.Peer.Email != ""}
		peerPhone = sql.NullString{String: arg.Peer.Phone, Valid: arg.Peer.Phone != ""}
	}

	row := r.db.QueryRowContext(ctx, createQuery,
		owner,
		arg.FromAccountID,
		toAccountID,
		routingNumber,
		accountNumber,
		recipient,
		peerEmail,
		peerPhone,
		arg.Type,
		status,
		arg.Amount,
		arg.Description,
	)

	t, err := scanTransfer(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %v, %+v, %v)", owner, arg, status)

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transfers_from_account_id_fkey", "transfers_to_account_id_fkey":
				return t, domain.ErrAccountNotFound
			case "transfers_owner_fkey":
				return t, domain.ErrOwnerNotFound
			case "transfers_amount_check":
				return t, domain.ErrInvalidAmount
			case "transfers_destination_check":
				return t, domain.ErrMissingDestination
			}
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT
	id, owner, from_account_id, to_account_id,
	external_routing_number, external_account_number, external_recipient_name,
	peer_email, peer_phone, transfer_type, status, amount, description, created_at
FROM transfers
WHERE id = $1
`

// Get returns the transfer with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	t, err := scanTransfer(row)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return t, domain.ErrTransferNotFound
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const listQuery = `
SELECT
	id, owner, from_account_id, to_account_id,
	external_routing_number, external_account_number, external_recipient_name,
	peer_email, peer_phone, transfer_type, status, amount, description, created_at
FROM transfers
WHERE owner = $1
ORDER BY id DESC
LIMIT $2 OFFSET $3
`

// List returns the owner's transfers, most recent first.
func (r *RepoPGS) List(ctx context.Context, owner string, limit, offset int32) ([]domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, owner, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transfer{}

	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const setStatusQuery = `
UPDATE transfers
SET status = $1
WHERE id = $2 AND status = 'pending_settlement'
RETURNING id
`

// SetStatus moves a pending_settlement transfer to completed or failed. It is
// the store-side hook for the settlement reconciler; a failed settlement does
// not touch the source balance, compensation is an explicit operator action.
func (r *RepoPGS) SetStatus(ctx context.Context, id int64, status domain.TransferStatus) error {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, setStatusQuery, status, id)

	var updated int64
	if err := row.Scan(&updated); err != nil {
		l.Error().Err(err).Int64("transfer_id", id).Send()

		if err == sql.ErrNoRows {
			return domain.ErrTransferNotFound
		}

		return errorspkg.ErrInternal
	}

	return nil
}

// TransferInternal moves money between two accounts of the same owner.
//
// The debit, the credit, both transaction records and the transfer row commit
// as one database transaction: either all of them exist or none of them do.
// Balance updates run in ascending account id order to avoid deadlocks
// between concurrent opposite transfers.
func (r *RepoPGS) TransferInternal(ctx context.Context, owner string, arg domain.CreateTransferParams) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferTxResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	recordRepo := transactionrepo.NewRepoPGS(tx)
	accountRepo := accountrepo.NewRepoPGS(tx)
	transferRepo := NewTxRepoPGS(tx)

	result.Transfer, err = transferRepo.Create(ctx, owner, arg, domain.TransferCompleted)
	if err != nil {
		return result, err
	}

	fromID, toID := arg.FromAccountID, arg.Internal.ToAccountID

	if fromID < toID {
		result.FromAccount, err = accountRepo.Debit(ctx, arg.Amount, fromID)
		if err == nil {
			result.ToAccount, err = accountRepo.Credit(ctx, arg.Amount, toID)
		}
	} else {
		result.ToAccount, err = accountRepo.Credit(ctx, arg.Amount, toID)
		if err == nil {
			result.FromAccount, err = accountRepo.Debit(ctx, arg.Amount, fromID)
		}
	}

	if err != nil {
		return result, err
	}

	result.FromRecord, err = recordRepo.Append(ctx, domain.TransactionRecord{
		AccountID:   fromID,
		Direction:   domain.DirectionDebit,
		Amount:      arg.Amount,
		Description: arg.Description,
		Category:    domain.CategoryTransfer,
	})
	if err != nil {
		return result, err
	}

	result.ToRecord, err = recordRepo.Append(ctx, domain.TransactionRecord{
		AccountID:   toID,
		Direction:   domain.DirectionCredit,
		Amount:      arg.Amount,
		Description: arg.Description,
		Category:    domain.CategoryTransfer,
	})
	if err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	return result, nil
}

// TransferOutbound debits the source for an external or p2p transfer. The
// destination is outside the bank, so no credit and no destination record
// are created; the transfer commits as pending_settlement in the same
// transaction as the debit and its record.
func (r *RepoPGS) TransferOutbound(ctx context.Context, owner string, arg domain.CreateTransferParams) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferTxResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	recordRepo := transactionrepo.NewRepoPGS(tx)
	accountRepo := accountrepo.NewRepoPGS(tx)
	transferRepo := NewTxRepoPGS(tx)

	result.Transfer, err = transferRepo.Create(ctx, owner, arg, domain.TransferPendingSettlement)
	if err != nil {
		return result, err
	}

	result.FromAccount, err = accountRepo.Debit(ctx, arg.Amount, arg.FromAccountID)
	if err != nil {
		return result, err
	}

	result.FromRecord, err = recordRepo.Append(ctx, domain.TransactionRecord{
		AccountID:   arg.FromAccountID,
		Direction:   domain.DirectionDebit,
		Amount:      arg.Amount,
		Description: arg.Description,
		Category:    domain.CategoryTransfer,
	})
	if err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransfer(row rowScanner) (domain.Transfer, error) {
	var (
		t                                       domain.Transfer
		toAccountID                             sql.NullInt32
		routingNumber, accountNumber, recipient sql.NullString
		peerEmail, peerPhone                    sql.NullString
	)

	err := row.Scan(
		&t.ID,
		&t.Owner,
		&t.FromAccountID,
		&toAccountID,
		&routingNumber,
		&accountNumber,
		&recipient,
		&peerEmail,
		&peerPhone,
		&t.Type,
		&t.Status,
		&t.Amount,
		&t.Description,
		&t.CreatedAt,
	)
	if err != nil {
		return t, err
	}

	if toAccountID.Valid {
		t.ToAccountID = toAccountID.Int32
	}

	if routingNumber.Valid {
		t.External = &domain.ExternalDestination{
			RoutingNumber: routingNumber.String,
			AccountNumber: accountNumber.String,
			RecipientName: recipient.String,
		}
	}

	if peerEmail.Valid || peerPhone.Valid {
		t.Peer = &domain.PeerDestination{
			Email: peerEmail.String,
			Phone: peerPhone.String,
		}
	}

	return t, nil
}
