package domain

import (
	"errors"
	"time"
)

// ErrRecordNotFound indicates that the transaction record is not found.
var ErrRecordNotFound = errors.New("transaction record not found")

// TransactionDirection marks a record as money leaving or entering an account.
type TransactionDirection string

// Record directions.
const (
	DirectionDebit  TransactionDirection = "debit"
	DirectionCredit TransactionDirection = "credit"
)

// Record categories used by the transfer engine.
const (
	CategoryTransfer = "transfer"
)

// TransactionRecord is an immutable ledger entry justifying a balance change.
// Records are append-only; they are never updated or deleted.
type TransactionRecord struct {
	ID          int64                `json:"id"`
	AccountID   int32                `json:"account_id"`
	Direction   TransactionDirection `json:"direction"`
	Amount      string               `json:"amount"` // always positive; Direction carries the sign
	Description string               `json:"description"`
	Category    string               `json:"category"`
	CreatedAt   time.Time            `json:"created_at"`
}
