// Package test provides shared test helpers.
package test

import (
	"context"
	"testing"
	"time"

	"github.com/concierge-bank/backend/internal/accountrepo"
	"github.com/concierge-bank/backend/internal/domain"
	"github.com/concierge-bank/backend/internal/transactionrepo"
	"github.com/concierge-bank/backend/internal/userrepo"
	"github.com/concierge-bank/backend/pkg/currencypkg"
	"github.com/concierge-bank/backend/pkg/dbpkg"
	"github.com/concierge-bank/backend/pkg/passpkg"
	"github.com/concierge-bank/backend/pkg/randompkg"
)

// RandomAccount returns random active account owned by the given owner.
func RandomAccount(owner string) domain.Account {
	return domain.Account{
		ID:        randompkg.IntBetween(1, 100),
		Owner:     owner,
		Balance:   randompkg.MoneyAmountBetween(1000, 10_000),
		Currency:  randompkg.Currency(),
		Status:    domain.AccountStatusActive,
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

// SeedUser creates random User inside a test transaction.
func SeedUser(t *testing.T, tx dbpkg.SQLInterface) domain.User {
	t.Helper()

	hashedPassword, err := passpkg.Hash(randompkg.String(32))
	if err != nil {
		t.Fatalf("passpkg.Hash(randompkg.String(32)) returned error: %v", err)
	}

	arg := domain.CreateUserParams{
		Username:       randompkg.Owner(),
		HashedPassword: hashedPassword,
		FullName:       randompkg.String(10),
		Email:          randompkg.Email(),
	}

	userRepo := userrepo.NewRepoPGS(tx)
	user, err := userRepo.Create(context.Background(), arg)

	if err != nil {
		t.Fatalf("userRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return user
}

// SeedAccount creates an account with the given balance inside a test transaction.
func SeedAccount(t *testing.T, tx dbpkg.SQLInterface, username, balance, currency string) domain.Account {
	t.Helper()

	accountRepo := accountrepo.NewRepoPGS(tx)

	account, err := accountRepo.Create(context.Background(), username, balance, currency)
	if err != nil {
		stmt := `accountRepo.Create(context.Background(), %v, %v, %v) returned error: %v`
		t.Fatalf(stmt, username, balance, currency, err)
	}

	return account
}

// SeedAccountWith1000USDBalance creates USD Account with 1000 USD on balance inside a test transaction.
func SeedAccountWith1000USDBalance(t *testing.T, tx dbpkg.SQLInterface, username string) domain.Account {
	t.Helper()

	return SeedAccount(t, tx, username, "1000", currencypkg.USD)
}

// SeedRecord appends a transaction record inside a test transaction.
func SeedRecord(t *testing.T, tx dbpkg.SQLInterface, accountID int32, direction domain.TransactionDirection, amount string) domain.TransactionRecord {
	t.Helper()

	recordRepo := transactionrepo.NewRepoPGS(tx)

	arg := domain.TransactionRecord{
		AccountID:   accountID,
		Direction:   direction,
		Amount:      amount,
		Description: randompkg.String(10),
		Category:    domain.CategoryTransfer,
	}

	record, err := recordRepo.Append(context.Background(), arg)
	if err != nil {
		t.Fatalf("recordRepo.Append(context.Background(), %+v) returned error: %v", arg, err)
	}

	return record
}

// SeedRecords appends count debit records with random amounts inside a test transaction.
func SeedRecords(t *testing.T, tx dbpkg.SQLInterface, count, accountID int32) []domain.TransactionRecord {
	t.Helper()

	records := make([]domain.TransactionRecord, count)

	for i := range records {
		records[i] = SeedRecord(t, tx, accountID, domain.DirectionDebit, randompkg.MoneyAmountBetween(1, 100))
	}

	return records
}
