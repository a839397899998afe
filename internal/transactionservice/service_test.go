package transactionservice

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/eagle-bank/eagle-bank/internal/domain"
	"github.com/eagle-bank/eagle-bank/pkg/currencypkg"
	"github.com/eagle-bank/eagle-bank/pkg/errorspkg"
	"github.com/eagle-bank/eagle-bank/pkg/randompkg"
)

func randomAccount(number, ownerID, balance string) domain.Account {
	return domain.Account{
		Number:    number,
		SortCode:  domain.DefaultSortCode,
		Name:      "Savings",
		Type:      domain.AccountTypePersonal,
		Balance:   balance,
		Currency:  currencypkg.GBP,
		OwnerID:   ownerID,
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

type balanceChangeMatcher struct {
	change string
}

func (m balanceChangeMatcher) Matches(x interface{}) bool {
	arg, ok := x.(domain.PostTransactionParams)
	if !ok {
		return false
	}

	change, err := decimal.NewFromString(arg.BalanceChange)
	if err != nil {
		return false
	}

	return change.Equal(decimal.RequireFromString(m.change))
}

func (m balanceChangeMatcher) String() string {
	return "has balance change " + m.change
}

func balanceChangeEq(change string) gomock.Matcher {
	return balanceChangeMatcher{change: change}
}

type postedAmountsMatcher struct {
	change string
	amount string
}

func (m postedAmountsMatcher) Matches(x interface{}) bool {
	arg, ok := x.(domain.PostTransactionParams)
	if !ok {
		return false
	}

	// The repo receives plain numeric strings, never a sign carried
	// over from the request body.
	if strings.Contains(arg.Amount, "+") || strings.Contains(arg.BalanceChange, "+") {
		return false
	}

	amount, err := decimal.NewFromString(arg.Amount)
	if err != nil {
		return false
	}

	change, err := decimal.NewFromString(arg.BalanceChange)
	if err != nil {
		return false
	}

	return amount.Equal(decimal.RequireFromString(m.amount)) &&
		change.Equal(decimal.RequireFromString(m.change))
}

func (m postedAmountsMatcher) String() string {
	return "has amount " + m.amount + " and balance change " + m.change
}

func postedAmountsEq(change, amount string) gomock.Matcher {
	return postedAmountsMatcher{change: change, amount: amount}
}

func TestCreate(t *testing.T) {
	ownerID := randompkg.UserID()
	testAccount := randomAccount("01234567", ownerID, "100.00")
	testAmount := "25.50"

	testResult := domain.PostTxResult{
		Transaction: domain.Transaction{
			ID:            randompkg.TransactionID(),
			AccountNumber: testAccount.Number,
			Amount:        testAmount,
			Currency:      currencypkg.GBP,
			Type:          domain.TransactionTypeDeposit,
		},
		Account: testAccount,
	}

	type input struct {
		requesterID string
		number      string
		arg         domain.CreateTransactionParams
	}

	testCases := []struct {
		name          string
		input         input
		buildStubs    func(repo *MockRepo, accountService *MockAccountService)
		checkResponse func(res domain.PostTxResult, err error)
	}{
		{
			name: "AccountNotFound",
			input: input{
				requesterID: ownerID,
				number:      "01999999",
				arg: domain.CreateTransactionParams{
					Amount:   testAmount,
					Currency: currencypkg.GBP,
					Type:     domain.TransactionTypeDeposit,
				},
			},
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().Post(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Eq("01999999")).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			checkResponse: func(res domain.PostTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrAccountNotFound.Error())
			},
		},
		{
			name: "OwnerMismatch",
			input: input{
				requesterID: randompkg.UserID(),
				number:      testAccount.Number,
				arg: domain.CreateTransactionParams{
					Amount:   testAmount,
					Currency: currencypkg.GBP,
					Type:     domain.TransactionTypeDeposit,
				},
			},
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().Post(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(testAccount, nil)
			},
			checkResponse: func(res domain.PostTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrAccountOwnerMismatch.Error())
			},
		},
		{
			name: "InvalidAmount",
			input: input{
				requesterID: ownerID,
				number:      testAccount.Number,
				arg: domain.CreateTransactionParams{
					Amount:   "!@#$",
					Currency: currencypkg.GBP,
					Type:     domain.TransactionTypeDeposit,
				},
			},
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().Post(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(testAccount, nil)
			},
			checkResponse: func(res domain.PostTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrInvalidAmount.Error())
			},
		},
		{
			name: "NegativeAmount",
			input: input{
				requesterID: ownerID,
				number:      testAccount.Number,
				arg: domain.CreateTransactionParams{
					Amount:   "-100",
					Currency: currencypkg.GBP,
					Type:     domain.TransactionTypeDeposit,
				},
			},
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().Post(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(testAccount, nil)
			},
			checkResponse: func(res domain.PostTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrNegativeAmount.Error())
			},
		},
		{
			name: "ZeroAmount",
			input: input{
				requesterID: ownerID,
				number:      testAccount.Number,
				arg: domain.CreateTransactionParams{
					Amount:   "0",
					Currency: currencypkg.GBP,
					Type:     domain.TransactionTypeDeposit,
				},
			},
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().Post(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(testAccount, nil)
			},
			checkResponse: func(res domain.PostTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrNegativeAmount.Error())
			},
		},
		{
			name: "CurrencyMismatch",
			input: input{
				requesterID: ownerID,
				number:      testAccount.Number,
				arg: domain.CreateTransactionParams{
					Amount:   testAmount,
					Currency: "USD",
					Type:     domain.TransactionTypeDeposit,
				},
			},
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().Post(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(testAccount, nil)
			},
			checkResponse: func(res domain.PostTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrCurrencyMismatch.Error())
			},
		},
		{
			name: "InternalBalanceError",
			input: input{
				requesterID: ownerID,
				number:      testAccount.Number,
				arg: domain.CreateTransactionParams{
					Amount:   testAmount,
					Currency: currencypkg.GBP,
					Type:     domain.TransactionTypeDeposit,
				},
			},
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().Post(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(randomAccount(testAccount.Number, ownerID, "invalid"), nil)
			},
			checkResponse: func(res domain.PostTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, errorspkg.ErrInternal.Error())
			},
		},
		{
			name: "InvalidTransactionType",
			input: input{
				requesterID: ownerID,
				number:      testAccount.Number,
				arg: domain.CreateTransactionParams{
					Amount:   testAmount,
					Currency: currencypkg.GBP,
					Type:     "transfer",
				},
			},
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().Post(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(testAccount, nil)
			},
			checkResponse: func(res domain.PostTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrInvalidTransactionType.Error())
			},
		},
		{
			name: "InsufficientBalance",
			input: input{
				requesterID: ownerID,
				number:      testAccount.Number,
				arg: domain.CreateTransactionParams{
					Amount:   "100.01",
					Currency: currencypkg.GBP,
					Type:     domain.TransactionTypeWithdrawal,
				},
			},
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().Post(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(testAccount, nil)
			},
			checkResponse: func(res domain.PostTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrInsufficientBalance.Error())
			},
		},
		{
			name: "BalanceCeilingExceeded",
			input: input{
				requesterID: ownerID,
				number:      testAccount.Number,
				arg: domain.CreateTransactionParams{
					Amount:   "9900.01",
					Currency: currencypkg.GBP,
					Type:     domain.TransactionTypeDeposit,
				},
			},
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().Post(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(testAccount, nil)
			},
			checkResponse: func(res domain.PostTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrBalanceCeilingExceeded.Error())
			},
		},
		{
			name: "DepositToCeilingOK",
			input: input{
				requesterID: ownerID,
				number:      testAccount.Number,
				arg: domain.CreateTransactionParams{
					Amount:   "9900.00",
					Currency: currencypkg.GBP,
					Type:     domain.TransactionTypeDeposit,
				},
			},
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(testAccount, nil)
				repo.EXPECT().Post(gomock.Any(), balanceChangeEq("9900.00")).
					Times(1).
					Return(testResult, nil)
			},
			checkResponse: func(res domain.PostTxResult, err error) {
				require.NoError(t, err)
				require.Equal(t, testResult, res)
			},
		},
		{
			name: "WithdrawalOK",
			input: input{
				requesterID: ownerID,
				number:      testAccount.Number,
				arg: domain.CreateTransactionParams{
					Amount:    testAmount,
					Currency:  currencypkg.GBP,
					Type:      domain.TransactionTypeWithdrawal,
					Reference: "rent",
				},
			},
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(testAccount, nil)
				repo.EXPECT().Post(gomock.Any(), balanceChangeEq("-"+testAmount)).
					Times(1).
					Return(testResult, nil)
			},
			checkResponse: func(res domain.PostTxResult, err error) {
				require.NoError(t, err)
				require.Equal(t, testResult, res)
			},
		},
		{
			name: "PlusSignedWithdrawalOK",
			input: input{
				requesterID: ownerID,
				number:      testAccount.Number,
				arg: domain.CreateTransactionParams{
					Amount:   "+" + testAmount,
					Currency: currencypkg.GBP,
					Type:     domain.TransactionTypeWithdrawal,
				},
			},
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(testAccount, nil)
				repo.EXPECT().Post(gomock.Any(), postedAmountsEq("-"+testAmount, testAmount)).
					Times(1).
					Return(testResult, nil)
			},
			checkResponse: func(res domain.PostTxResult, err error) {
				require.NoError(t, err)
				require.Equal(t, testResult, res)
			},
		},
		{
			name: "RepoError",
			input: input{
				requesterID: ownerID,
				number:      testAccount.Number,
				arg: domain.CreateTransactionParams{
					Amount:   testAmount,
					Currency: currencypkg.GBP,
					Type:     domain.TransactionTypeDeposit,
				},
			},
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(testAccount, nil)
				repo.EXPECT().Post(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.PostTxResult{}, errorspkg.ErrInternal)
			},
			checkResponse: func(res domain.PostTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, errorspkg.ErrInternal.Error())
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			transactionRepo := NewMockRepo(ctrl)
			accountService := NewMockAccountService(ctrl)
			transactionService := New(transactionRepo, accountService)

			tc.buildStubs(transactionRepo, accountService)

			tc.checkResponse(transactionService.Create(
				context.Background(),
				tc.input.requesterID,
				tc.input.number,
				tc.input.arg))
		})
	}
}

func TestList(t *testing.T) {
	ownerID := randompkg.UserID()
	testAccount := randomAccount("01234567", ownerID, "100.00")

	transactions := []domain.Transaction{
		{
			ID:            randompkg.TransactionID(),
			AccountNumber: testAccount.Number,
			Amount:        "10.00",
			Currency:      currencypkg.GBP,
			Type:          domain.TransactionTypeDeposit,
		},
		{
			ID:            randompkg.TransactionID(),
			AccountNumber: testAccount.Number,
			Amount:        "5.00",
			Currency:      currencypkg.GBP,
			Type:          domain.TransactionTypeWithdrawal,
		},
	}

	testCases := []struct {
		name          string
		requesterID   string
		buildStubs    func(repo *MockRepo, accountService *MockAccountService)
		checkResponse func(res []domain.Transaction, err error)
	}{
		{
			name:        "OK",
			requesterID: ownerID,
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(testAccount, nil)
				repo.EXPECT().ListByAccount(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(transactions, nil)
			},
			checkResponse: func(res []domain.Transaction, err error) {
				require.NoError(t, err)
				require.Equal(t, transactions, res)
			},
		},
		{
			name:        "AccountNotFound",
			requesterID: ownerID,
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().ListByAccount(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			checkResponse: func(res []domain.Transaction, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrAccountNotFound.Error())
			},
		},
		{
			name:        "OwnerMismatch",
			requesterID: randompkg.UserID(),
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().ListByAccount(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(testAccount, nil)
			},
			checkResponse: func(res []domain.Transaction, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrAccountOwnerMismatch.Error())
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			transactionRepo := NewMockRepo(ctrl)
			accountService := NewMockAccountService(ctrl)
			transactionService := New(transactionRepo, accountService)

			tc.buildStubs(transactionRepo, accountService)

			tc.checkResponse(transactionService.List(
				context.Background(),
				tc.requesterID,
				testAccount.Number))
		})
	}
}

// accountStore is an in-memory posting backend used to exercise concurrent
// withdrawals against a single account.
type accountStore struct {
	mu      sync.Mutex
	account domain.Account
}

func (s *accountStore) GetByNumber(ctx context.Context, number string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if number != s.account.Number {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return s.account, nil
}

func (s *accountStore) Post(ctx context.Context, arg domain.PostTransactionParams) (domain.PostTxResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := decimal.RequireFromString(s.account.Balance)
	change := decimal.RequireFromString(arg.BalanceChange)

	updated := balance.Add(change)
	if updated.IsNegative() {
		return domain.PostTxResult{}, domain.ErrInsufficientBalance
	}

	if updated.GreaterThan(decimal.RequireFromString(domain.BalanceCeiling)) {
		return domain.PostTxResult{}, domain.ErrBalanceCeilingExceeded
	}

	s.account.Balance = updated.StringFixed(2)

	return domain.PostTxResult{
		Transaction: domain.Transaction{
			ID:            arg.TransactionID,
			AccountNumber: arg.AccountNumber,
			Amount:        arg.Amount,
			Currency:      arg.Currency,
			Type:          arg.Type,
		},
		Account: s.account,
	}, nil
}

func (s *accountStore) ListByAccount(ctx context.Context, number string) ([]domain.Transaction, error) {
	return nil, nil
}

// TestConcurrentWithdrawals posts n simultaneous withdrawals of the full
// balance. Exactly one must succeed and the rest must be rejected without
// driving the balance negative.
func TestConcurrentWithdrawals(t *testing.T) {
	t.Parallel()

	ownerID := randompkg.UserID()
	store := &accountStore{
		account: randomAccount("01234567", ownerID, "50.00"),
	}

	transactionService := New(store, store)

	n := 10
	errs := make(chan error, n)

	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := transactionService.Create(
				context.Background(),
				ownerID,
				store.account.Number,
				domain.CreateTransactionParams{
					Amount:   "50.00",
					Currency: currencypkg.GBP,
					Type:     domain.TransactionTypeWithdrawal,
				})

			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	succeeded := 0

	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		require.EqualError(t, err, domain.ErrInsufficientBalance.Error())
	}

	require.Equal(t, 1, succeeded)
	require.Equal(t, "0.00", store.account.Balance)
}
