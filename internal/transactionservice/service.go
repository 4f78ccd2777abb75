// Package transactionservice manages business logic layer of transaction records.
package transactionservice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/concierge-bank/backend/internal/accountdelivery"
	"github.com/concierge-bank/backend/internal/domain"
)

// Repo provides data access layer interface needed by transaction service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type Repo interface {
	List(ctx context.Context, accountID int32, limit, offset int32) ([]domain.TransactionRecord, error)
}

// Service facilitates transaction record service layer logic.
type Service struct {
	repo           Repo
	accountService accountdelivery.Service
}

// New returns transaction service struct to manage record history logic.
func New(tr Repo, as accountdelivery.Service) *Service {
	return &Service{
		repo:           tr,
		accountService: as,
	}
}

// History returns the account's records most recent first. Ownership is
// checked through the account service first, so records of foreign accounts
// are never listed.
func (s *Service) History(ctx context.Context, owner string, accountID, pageSize, pageID int32) ([]domain.TransactionRecord, error) {
	l := zerolog.Ctx(ctx)

	if _, err := s.accountService.GetOwned(ctx, accountID, owner); err != nil {
		l.Info().Err(err).Int32("account_id", accountID).Send()
		return nil, err
	}

	limit := pageSize
	offset := (pageID - 1) * pageSize

	records, err := s.repo.List(ctx, accountID, limit, offset)
	if err != nil {
		return nil, err
	}

	return records, nil
}
