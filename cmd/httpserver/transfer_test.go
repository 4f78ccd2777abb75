//go:build integration

package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/concierge-bank/backend/internal/domain"
	"github.com/concierge-bank/backend/internal/integrationtest"
	"github.com/concierge-bank/backend/internal/middleware"
	"github.com/concierge-bank/backend/internal/test"
	"github.com/concierge-bank/backend/internal/userrepo"
	"github.com/concierge-bank/backend/pkg/currencypkg"
	"github.com/concierge-bank/backend/pkg/tokenpkg"
	"github.com/concierge-bank/backend/pkg/web"
)

type transferRequestBody struct {
	FromAccountID int32  `json:"from_account_id"`
	TransferType  string `json:"transfer_type"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
	ToAccountID   int32  `json:"to_account_id,omitempty"`
	RoutingNumber string `json:"routing_number,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	RecipientName string `json:"recipient_name,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
}

func postTransfer(t *testing.T, server http.Handler, body transferRequestBody, setupAuth func(r *http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Encoding request body error: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Creating request error: %v", err)
	}

	setupAuth(req)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	return w
}

func TestInternalTransferAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)

	user := test.SeedUser(t, server.DB)
	stranger := test.SeedUser(t, server.DB)
	account1 := test.SeedAccount(t, server.DB, user.Username, "500", currencypkg.USD)
	account2 := test.SeedAccount(t, server.DB, user.Username, "100", currencypkg.USD)
	account3 := test.SeedAccount(t, server.DB, user.Username, "1000", currencypkg.EUR)
	description := "monthly savings"

	tokenMaker, err := tokenpkg.NewPasetoMaker(server.Config.TokenSymmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker(%v) returned error: %v", server.Config.TokenSymmetricKey, err)
	}

	authType := middleware.AuthorizationTypeBearer
	duration := server.Config.AccessTokenDuration

	testCases := []struct {
		name           string
		requestBody    transferRequestBody
		setupAuth      func(r *http.Request)
		wantStatusCode int
		wantError      string
		checkData      func(resData any)
	}{
		{
			name: "ErrCurrencyMismatch",
			requestBody: transferRequestBody{
				FromAccountID: account1.ID,
				TransferType:  "internal",
				Amount:        "200",
				ToAccountID:   account3.ID,
			},
			setupAuth: func(r *http.Request) {
				middleware.AddAuthorization(t, r, tokenMaker, authType, user.Username, duration)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrCurrencyMismatch.Error(),
		},
		{
			name: "ForeignSourceAccount",
			requestBody: transferRequestBody{
				FromAccountID: account1.ID,
				TransferType:  "internal",
				Amount:        "200",
				ToAccountID:   account2.ID,
			},
			setupAuth: func(r *http.Request) {
				middleware.AddAuthorization(t, r, tokenMaker, authType, stranger.Username, duration)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
		{
			name: "ErrInsufficientBalance",
			requestBody: transferRequestBody{
				FromAccountID: account1.ID,
				TransferType:  "internal",
				Amount:        "500.01",
				ToAccountID:   account2.ID,
			},
			setupAuth: func(r *http.Request) {
				middleware.AddAuthorization(t, r, tokenMaker, authType, user.Username, duration)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInsufficientBalance.Error(),
		},
		{
			name: "MissingTransferType",
			requestBody: transferRequestBody{
				FromAccountID: account1.ID,
				Amount:        "200",
				ToAccountID:   account2.ID,
			},
			setupAuth: func(r *http.Request) {
				middleware.AddAuthorization(t, r, tokenMaker, authType, user.Username, duration)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "TransferType is required",
		},
		{
			name: "NoAuthorization",
			requestBody: transferRequestBody{
				FromAccountID: account1.ID,
				TransferType:  "internal",
				Amount:        "200",
				ToAccountID:   account2.ID,
			},
			setupAuth:      func(r *http.Request) {},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "authorization header is not provided",
		},
		{
			name: "OK",
			requestBody: transferRequestBody{
				FromAccountID: account1.ID,
				TransferType:  "internal",
				Amount:        "200",
				Description:   description,
				ToAccountID:   account2.ID,
			},
			setupAuth: func(r *http.Request) {
				middleware.AddAuthorization(t, r, tokenMaker, authType, user.Username, duration)
			},
			wantStatusCode: http.StatusOK,
			checkData: func(resData any) {
				got, ok := resData.(*struct {
					Transfer domain.TransferTxResult `json:"transfer"`
				})
				if !ok {
					t.Fatalf("res.Data=%#v, failed type conversion", resData)
				}

				want := domain.TransferTxResult{
					Transfer: domain.Transfer{
						Owner:         user.Username,
						FromAccountID: account1.ID,
						ToAccountID:   account2.ID,
						Type:          domain.TransferInternal,
						Status:        domain.TransferCompleted,
						Amount:        "200",
						Description:   description,
						CreatedAt:     time.Now().UTC().Truncate(time.Second),
					},
					FromAccount: domain.Account{
						ID:        account1.ID,
						Owner:     user.Username,
						Balance:   "300",
						Currency:  currencypkg.USD,
						Status:    domain.AccountStatusActive,
						CreatedAt: account1.CreatedAt,
						UpdatedAt: time.Now().UTC().Truncate(time.Second),
					},
					ToAccount: domain.Account{
						ID:        account2.ID,
						Owner:     user.Username,
						Balance:   "300",
						Currency:  currencypkg.USD,
						Status:    domain.AccountStatusActive,
						CreatedAt: account2.CreatedAt,
						UpdatedAt: time.Now().UTC().Truncate(time.Second),
					},
					FromRecord: domain.TransactionRecord{
						AccountID:   account1.ID,
						Direction:   domain.DirectionDebit,
						Amount:      "200",
						Description: description,
						Category:    domain.CategoryTransfer,
						CreatedAt:   time.Now().UTC().Truncate(time.Second),
					},
					ToRecord: domain.TransactionRecord{
						AccountID:   account2.ID,
						Direction:   domain.DirectionCredit,
						Amount:      "200",
						Description: description,
						Category:    domain.CategoryTransfer,
						CreatedAt:   time.Now().UTC().Truncate(time.Second),
					},
				}

				ignoreTransferID := cmpopts.IgnoreFields(domain.Transfer{}, "ID")
				ignoreRecordID := cmpopts.IgnoreFields(domain.TransactionRecord{}, "ID")
				compareCreatedAt := cmpopts.EquateApproxTime(time.Second)

				if diff := cmp.Diff(want, got.Transfer, ignoreTransferID, ignoreRecordID, compareCreatedAt); diff != "" {
					t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
				}
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			w := postTransfer(t, server, tc.requestBody, tc.setupAuth)

			if got := w.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{
				Data: &struct {
					Transfer domain.TransferTxResult `json:"transfer"`
				}{},
			}

			if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
				t.Errorf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf("res.Error=%q, want %q", res.Error, tc.wantError)
				}
			} else {
				tc.checkData(res.Data)
			}
		})
	}
}

func TestExternalTransferAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)

	user := test.SeedUser(t, server.DB)
	account := test.SeedAccount(t, server.DB, user.Username, "500", currencypkg.USD)

	tokenMaker, err := tokenpkg.NewPasetoMaker(server.Config.TokenSymmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker(%v) returned error: %v", server.Config.TokenSymmetricKey, err)
	}

	authType := middleware.AuthorizationTypeBearer
	duration := server.Config.AccessTokenDuration

	setupAuth := func(r *http.Request) {
		middleware.AddAuthorization(t, r, tokenMaker, authType, user.Username, duration)
	}

	t.Run("InvalidRoutingNumberLeavesBalanceIntact", func(t *testing.T) {
		w := postTransfer(t, server, transferRequestBody{
			FromAccountID: account.ID,
			TransferType:  "external",
			Amount:        "50",
			RoutingNumber: "12345",
			AccountNumber: "987654321",
			RecipientName: "Jane Roe",
		}, setupAuth)

		if got := w.Code; got != http.StatusBadRequest {
			t.Errorf("Status code: got %v, want %v", got, http.StatusBadRequest)
		}

		var res web.Response
		if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
			t.Errorf("Decoding response body error: %v", err)
		}

		if res.Error != domain.ErrInvalidRoutingNumber.Error() {
			t.Errorf("res.Error=%q, want %q", res.Error, domain.ErrInvalidRoutingNumber.Error())
		}

		var balance string
		err := server.DB.QueryRowContext(context.Background(),
			"SELECT balance FROM accounts WHERE id = $1", account.ID).Scan(&balance)
		if err != nil {
			t.Fatalf("reading balance returned error: %v", err)
		}

		if balance != "500" {
			t.Errorf("balance after rejected transfer = %v, want 500", balance)
		}
	})

	t.Run("OK", func(t *testing.T) {
		w := postTransfer(t, server, transferRequestBody{
			FromAccountID: account.ID,
			TransferType:  "external",
			Amount:        "50",
			RoutingNumber: "123456789",
			AccountNumber: "987654321",
			RecipientName: "Jane Roe",
		}, setupAuth)

		if got := w.Code; got != http.StatusOK {
			t.Errorf("Status code: got %v, want %v", got, http.StatusOK)
		}

		res := web.Response{
			Data: &struct {
				Transfer domain.TransferTxResult `json:"transfer"`
			}{},
		}

		if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
			t.Errorf("Decoding response body error: %v", err)
		}

		got, ok := res.Data.(*struct {
			Transfer domain.TransferTxResult `json:"transfer"`
		})
		if !ok {
			t.Fatalf("res.Data=%#v, failed type conversion", res.Data)
		}

		result := got.Transfer

		if result.Transfer.Status != domain.TransferPendingSettlement {
			t.Errorf("transfer status = %v, want %v", result.Transfer.Status, domain.TransferPendingSettlement)
		}

		if result.FromAccount.Balance != "450" {
			t.Errorf("source balance = %v, want 450", result.FromAccount.Balance)
		}

		if result.Transfer.External == nil || result.Transfer.External.RoutingNumber != "123456789" {
			t.Errorf("transfer destination = %+v, want routing number 123456789", result.Transfer.External)
		}

		if result.FromRecord.Direction != domain.DirectionDebit || result.FromRecord.Amount != "50" {
			t.Errorf("source record = %+v, want a 50 debit", result.FromRecord)
		}

		// The destination is outside the bank.
		if result.ToAccount.ID != 0 || result.ToRecord.ID != 0 {
			t.Errorf("destination side = %+v %+v, want empty", result.ToAccount, result.ToRecord)
		}
	})
}

func TestBlockedUserTransferAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)

	user := test.SeedUser(t, server.DB)
	account1 := test.SeedAccount(t, server.DB, user.Username, "500", currencypkg.USD)
	account2 := test.SeedAccount(t, server.DB, user.Username, "100", currencypkg.EUR)

	userRepo := userrepo.NewRepoPGS(server.DB)
	if _, err := userRepo.SetTransfersBlocked(context.Background(), user.Username, true); err != nil {
		t.Fatalf("userRepo.SetTransfersBlocked(ctx, %v, true) returned error: %v", user.Username, err)
	}

	tokenMaker, err := tokenpkg.NewPasetoMaker(server.Config.TokenSymmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker(%v) returned error: %v", server.Config.TokenSymmetricKey, err)
	}

	w := postTransfer(t, server, transferRequestBody{
		FromAccountID: account1.ID,
		TransferType:  "internal",
		Amount:        "50",
		ToAccountID:   account2.ID,
	}, func(r *http.Request) {
		middleware.AddAuthorization(t, r, tokenMaker,
			middleware.AuthorizationTypeBearer, user.Username, server.Config.AccessTokenDuration)
	})

	if got := w.Code; got != http.StatusForbidden {
		t.Errorf("Status code: got %v, want %v", got, http.StatusForbidden)
	}

	var res web.Response
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Errorf("Decoding response body error: %v", err)
	}

	if res.Error != domain.ErrTransfersBlocked.Error() {
		t.Errorf("res.Error=%q, want %q", res.Error, domain.ErrTransfersBlocked.Error())
	}
}
