package accountservice

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/concierge-bank/backend/internal/domain"
	"github.com/concierge-bank/backend/internal/test"
	"github.com/concierge-bank/backend/pkg/currencypkg"
	"github.com/concierge-bank/backend/pkg/errorspkg"
	"github.com/concierge-bank/backend/pkg/randompkg"
)

func TestCreate(t *testing.T) {
	owner := randompkg.Owner()
	account := test.RandomAccount(owner)
	account.Balance = "0"

	testCases := []struct {
		name          string
		buildStubs    func(repo *MockRepo)
		checkResponse func(got domain.Account, err error)
	}{
		{
			name: "OK",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Create(gomock.Any(), gomock.Eq(owner), gomock.Eq("0"), gomock.Eq(account.Currency)).
					Times(1).
					Return(account, nil)
			},
			checkResponse: func(got domain.Account, err error) {
				require.NoError(t, err)
				require.Equal(t, account, got)
			},
		},
		{
			name: "CurrencyAlreadyExists",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Create(gomock.Any(), gomock.Eq(owner), gomock.Eq("0"), gomock.Eq(account.Currency)).
					Times(1).
					Return(domain.Account{}, domain.ErrCurrencyAlreadyExists)
			},
			checkResponse: func(got domain.Account, err error) {
				require.Empty(t, got)
				require.EqualError(t, err, domain.ErrCurrencyAlreadyExists.Error())
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			service := New(repo)

			got, err := service.Create(context.Background(), owner, account.Currency)

			tc.checkResponse(got, err)
		})
	}
}

func TestGetOwned(t *testing.T) {
	owner := randompkg.Owner()
	account := test.RandomAccount(owner)

	testCases := []struct {
		name          string
		buildStubs    func(repo *MockRepo)
		checkResponse func(got domain.Account, err error)
	}{
		{
			name: "OK",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					GetForOwner(gomock.Any(), gomock.Eq(account.ID), gomock.Eq(owner)).
					Times(1).
					Return(account, nil)
			},
			checkResponse: func(got domain.Account, err error) {
				require.NoError(t, err)
				require.Equal(t, account, got)
			},
		},
		{
			name: "NotFound",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					GetForOwner(gomock.Any(), gomock.Eq(account.ID), gomock.Eq(owner)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			checkResponse: func(got domain.Account, err error) {
				require.Empty(t, got)
				require.EqualError(t, err, domain.ErrAccountNotFound.Error())
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			service := New(repo)

			got, err := service.GetOwned(context.Background(), account.ID, owner)

			tc.checkResponse(got, err)
		})
	}
}

func TestList(t *testing.T) {
	owner := randompkg.Owner()

	accounts := []domain.Account{
		test.RandomAccount(owner),
		test.RandomAccount(owner),
	}
	accounts[0].Currency = currencypkg.USD
	accounts[1].Currency = currencypkg.EUR

	testCases := []struct {
		name          string
		pageSize      int32
		pageID        int32
		buildStubs    func(repo *MockRepo)
		checkResponse func(got []domain.Account, err error)
	}{
		{
			name:     "OK",
			pageSize: 5,
			pageID:   1,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					List(gomock.Any(), gomock.Eq(owner), gomock.Eq(int32(5)), gomock.Eq(int32(0))).
					Times(1).
					Return(accounts, nil)
			},
			checkResponse: func(got []domain.Account, err error) {
				require.NoError(t, err)
				require.Equal(t, accounts, got)
			},
		},
		{
			name:     "OffsetFromPageID",
			pageSize: 5,
			pageID:   2,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					List(gomock.Any(), gomock.Eq(owner), gomock.Eq(int32(5)), gomock.Eq(int32(5))).
					Times(1).
					Return([]domain.Account{}, nil)
			},
			checkResponse: func(got []domain.Account, err error) {
				require.NoError(t, err)
				require.Empty(t, got)
			},
		},
		{
			name:     "RepoErr",
			pageSize: 5,
			pageID:   1,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					List(gomock.Any(), gomock.Eq(owner), gomock.Any(), gomock.Any()).
					Times(1).
					Return(nil, errorspkg.ErrInternal)
			},
			checkResponse: func(got []domain.Account, err error) {
				require.Empty(t, got)
				require.EqualError(t, err, errorspkg.ErrInternal.Error())
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			service := New(repo)

			got, err := service.List(context.Background(), owner, tc.pageSize, tc.pageID)

			tc.checkResponse(got, err)
		})
	}
}
