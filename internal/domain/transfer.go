package domain

import (
	"errors"
	"time"
)

var (
	// ErrCurrencyMismatch indicates that transfer accounts have different currencies.
	ErrCurrencyMismatch = errors.New("accounts currency mismatch")
	// ErrInvalidAmount indicates an unparsable amount or more than 2 fractional digits.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNegativeAmount indicates a zero or negative amount.
	ErrNegativeAmount = errors.New("amount must be positive")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrSelfTransfer indicates that source and destination accounts are the same.
	ErrSelfTransfer = errors.New("source and destination accounts are the same")
	// ErrMissingDestination indicates that the destination for the transfer type is not provided.
	ErrMissingDestination = errors.New("transfer destination is required")
	// ErrInvalidTransferType indicates an unknown transfer type.
	ErrInvalidTransferType = errors.New("invalid transfer type")
	// ErrInvalidRoutingNumber indicates a routing number that is not exactly 9 digits.
	ErrInvalidRoutingNumber = errors.New("routing number must be exactly 9 digits")
	// ErrInvalidAccountNumber indicates an external account number that is not numeric or too short.
	ErrInvalidAccountNumber = errors.New("account number must be numeric with at least 4 digits")
	// ErrInvalidRecipient indicates an empty external recipient name.
	ErrInvalidRecipient = errors.New("recipient name is required")
	// ErrInvalidPeerContact indicates that not exactly one valid peer contact was provided.
	ErrInvalidPeerContact = errors.New("exactly one of email or phone is required")
	// ErrTransfersBlocked indicates that transfers are administratively blocked for the user.
	ErrTransfersBlocked = errors.New("transfers are blocked for this user")
	// ErrTransferNotFound indicates that the transfer is not found.
	ErrTransferNotFound = errors.New("transfer not found")
)

// TransferType discriminates the three transfer variants.
type TransferType string

// Supported transfer types.
const (
	TransferInternal TransferType = "internal"
	TransferExternal TransferType = "external"
	TransferP2P      TransferType = "p2p"
)

// TransferStatus is a terminal or settlement state of a transfer.
type TransferStatus string

// Transfer statuses. Outbound transfers commit as pending_settlement and are
// moved to completed or failed by the settlement reconciler.
const (
	TransferCompleted         TransferStatus = "completed"
	TransferPendingSettlement TransferStatus = "pending_settlement"
	TransferFailed            TransferStatus = "failed"
)

// InternalDestination addresses another account inside the bank.
type InternalDestination struct {
	ToAccountID int32 `json:"to_account_id"`
}

// ExternalDestination addresses an account at another institution.
type ExternalDestination struct {
	RoutingNumber string `json:"routing_number"`
	AccountNumber string `json:"account_number"`
	RecipientName string `json:"recipient_name"`
}

// PeerDestination addresses a person by email or phone. Exactly one of the
// two fields is set on a valid destination.
type PeerDestination struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Transfer holds a committed movement of money out of a source account.
// Exactly one of ToAccountID, External, Peer is populated, matching Type.
type Transfer struct {
	ID            int64                `json:"id"`
	Owner         string               `json:"owner"`
	FromAccountID int32                `json:"from_account_id"`
	ToAccountID   int32                `json:"to_account_id,omitempty"`
	External      *ExternalDestination `json:"external,omitempty"`
	Peer          *PeerDestination     `json:"peer,omitempty"`
	Type          TransferType         `json:"transfer_type"`
	Status        TransferStatus       `json:"status"`
	Amount        string               `json:"amount"` // must be positive
	Description   string               `json:"description,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// CreateTransferParams is the tagged-variant input for the transfer
// transaction: the destination field matching Type is set, the others nil.
type CreateTransferParams struct {
	FromAccountID int32                `json:"from_account_id"`
	Type          TransferType         `json:"transfer_type"`
	Amount        string               `json:"amount"`
	Description   string               `json:"description"`
	Internal      *InternalDestination `json:"internal,omitempty"`
	External      *ExternalDestination `json:"external,omitempty"`
	Peer          *PeerDestination     `json:"peer,omitempty"`
}

// TransferTxResult is the result of the transfer transaction. ToAccount and
// ToRecord are zero-valued for external and p2p transfers since the
// destination is outside the bank.
type TransferTxResult struct {
	Transfer    Transfer          `json:"transfer"`
	FromAccount Account           `json:"from_account"`
	ToAccount   Account           `json:"to_account,omitempty"`
	FromRecord  TransactionRecord `json:"from_record"`
	ToRecord    TransactionRecord `json:"to_record,omitempty"`
}
