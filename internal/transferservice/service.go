// Package transferservice manages business logic layer of transfers.
package transferservice

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/concierge-bank/backend/internal/accountdelivery"
	"github.com/concierge-bank/backend/internal/domain"
)

// Repo provides data access layer interface needed by transfer service layer.
// Both methods commit the debit, the record append(s) and the transfer row as
// one atomic unit.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Repo interface {
	TransferInternal(ctx context.Context, owner string, arg domain.CreateTransferParams) (domain.TransferTxResult, error)
	TransferOutbound(ctx context.Context, owner string, arg domain.CreateTransferParams) (domain.TransferTxResult, error)
}

// Dispatcher is the best-effort notification collaborator invoked after a
// durable commit. Its failure is logged and never surfaced to the caller.
type Dispatcher interface {
	Notify(ctx context.Context, username, kind, message, subject, body string) error
}

// Service drives a transfer through validation, authorization and the atomic
// commit, then fires the post-commit notification.
type Service struct {
	repo           Repo
	accountService accountdelivery.Service
	dispatcher     Dispatcher
}

// New returns transfer service struct to manage transfer business logic.
func New(tr Repo, as accountdelivery.Service, nd Dispatcher) *Service {
	return &Service{
		repo:           tr,
		accountService: as,
		dispatcher:     nd,
	}
}

// authorize resolves the source account under the authenticated owner and
// checks funds. All failures here are deterministic and leave no side effects.
func (s *Service) authorize(ctx context.Context, owner string, arg domain.CreateTransferParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	fromAccount, err := s.accountService.GetOwned(ctx, arg.FromAccountID, owner)
	if err != nil {
		return fromAccount, err
	}

	if fromAccount.Status != domain.AccountStatusActive {
		l.Info().Int32("account_id", fromAccount.ID).Str("status", fromAccount.Status).Msg("inactive source account")
		return fromAccount, domain.ErrAccountNotActive
	}

	balance, err := decimal.NewFromString(fromAccount.Balance)
	if err != nil {
		l.Error().Err(err).Send()
		return fromAccount, err
	}

	amount, err := ValidateAmount(arg.Amount)
	if err != nil {
		return fromAccount, err
	}

	// Spending the entire balance is legal; only amount > balance fails.
	if balance.LessThan(amount) {
		return fromAccount, domain.ErrInsufficientBalance
	}

	return fromAccount, nil
}

// Transfer validates and executes a transfer request for the authenticated
// owner. Internal transfers settle instantly; external and p2p transfers
// commit as pending_settlement.
func (s *Service) Transfer(ctx context.Context, owner string, arg domain.CreateTransferParams) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	if err := ValidateParams(arg); err != nil {
		l.Info().Err(err).Send()
		return domain.TransferTxResult{}, err
	}

	fromAccount, err := s.authorize(ctx, owner, arg)
	if err != nil {
		return domain.TransferTxResult{}, err
	}

	if arg.Description == "" {
		arg.Description = describeDestination(arg)
	}

	var result domain.TransferTxResult

	switch arg.Type {
	case domain.TransferInternal:
		toAccount, err := s.accountService.GetOwned(ctx, arg.Internal.ToAccountID, owner)
		if err != nil {
			return result, err
		}

		if toAccount.Status != domain.AccountStatusActive {
			return result, domain.ErrAccountNotActive
		}

		if fromAccount.Currency != toAccount.Currency {
			return result, domain.ErrCurrencyMismatch
		}

		result, err = s.repo.TransferInternal(ctx, owner, arg)
		if err != nil {
			return result, err
		}
	default:
		result, err = s.repo.TransferOutbound(ctx, owner, arg)
		if err != nil {
			return result, err
		}
	}

	s.dispatch(ctx, owner, result)

	return result, nil
}

// dispatch notifies the owner about a committed transfer. It runs decoupled
// from the commit path on a fresh context so a slow or failing dispatcher
// can never roll back or delay the transfer.
func (s *Service) dispatch(ctx context.Context, owner string, result domain.TransferTxResult) {
	l := zerolog.Ctx(ctx)

	message := fmt.Sprintf("Transfer of %s %s %s",
		result.FromAccount.Currency,
		result.Transfer.Amount,
		statusVerb(result.Transfer.Status),
	)

	nctx := l.WithContext(context.Background())

	go func() {
		if err := s.dispatcher.Notify(nctx, owner, domain.NotificationTransfer, message,
			"Transfer Confirmation", message); err != nil {
			l.Warn().Err(err).Int64("transfer_id", result.Transfer.ID).Msg("transfer notification failed")
		}
	}()
}

func statusVerb(status domain.TransferStatus) string {
	if status == domain.TransferPendingSettlement {
		return "initiated"
	}

	return "completed"
}

func describeDestination(arg domain.CreateTransferParams) string {
	switch {
	case arg.Internal != nil:
		return fmt.Sprintf("Transfer to account %d", arg.Internal.ToAccountID)
	case arg.External != nil:
		return fmt.Sprintf("Transfer to %s", arg.External.RecipientName)
	case arg.Peer != nil && arg.Peer.Email != "":
		return fmt.Sprintf("Transfer to %s", arg.Peer.Email)
	case arg.Peer != nil:
		return fmt.Sprintf("Transfer to %s", arg.Peer.Phone)
	}

	return "Transfer"
}
