// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found or is not
	// owned by the caller. Ownership mismatch deliberately reports the same
	// error so that callers cannot probe for other users' accounts.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountNotActive indicates that the account is closed or frozen.
	ErrAccountNotActive = errors.New("account is not active")
	// ErrCurrencyAlreadyExists indicates that the account with the given currency already exists.
	ErrCurrencyAlreadyExists = errors.New("account currency already exists")
	// ErrOwnerNotFound indicates that the owner for the account is not found.
	ErrOwnerNotFound = errors.New("owner not found")
)

// Account statuses.
const (
	AccountStatusActive = "active"
	AccountStatusClosed = "closed"
	AccountStatusFrozen = "frozen"
)

// Account holds user balance data for a specific currency.
//
// Balance is a fixed-point decimal carried as a string. It is mutated only
// through the ledger repository and is non-negative at every committed state.
type Account struct {
	ID        int32     `json:"id"`
	Owner     string    `json:"owner"`
	Balance   string    `json:"balance"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
