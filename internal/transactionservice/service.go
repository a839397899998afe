// Package transactionservice manages business logic layer of transactions.
package transactionservice

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/eagle-bank/eagle-bank/internal/domain"
	"github.com/eagle-bank/eagle-bank/pkg/errorspkg"
	"github.com/eagle-bank/eagle-bank/pkg/randompkg"
)

// Repo provides data access layer interface needed by transaction service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type Repo interface {
	Post(ctx context.Context, arg domain.PostTransactionParams) (domain.PostTxResult, error)
	ListByAccount(ctx context.Context, number string) ([]domain.Transaction, error)
}

// AccountService provides the account resolution interface needed to validate postings.
type AccountService interface {
	GetByNumber(ctx context.Context, number string) (domain.Account, error)
}

var balanceCeiling = decimal.RequireFromString(domain.BalanceCeiling)

// Service facilitates transaction service layer logic.
type Service struct {
	repo     Repo
	accounts AccountService
}

// New returns transaction service struct to manage transaction business logic.
func New(tr Repo, as AccountService) *Service {
	return &Service{
		repo:     tr,
		accounts: as,
	}
}

// Create validates a posting request against the account's current state and,
// if valid, commits the balance change together with the transaction record.
//
// A rejected posting leaves no persisted side effect.
func (s *Service) Create(ctx context.Context, requesterID, number string, arg domain.CreateTransactionParams) (domain.PostTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.PostTxResult

	account, err := s.accounts.GetByNumber(ctx, number)
	if err != nil {
		l.Info().Err(err).Send()
		return result, err
	}

	if !domain.IsOwner(requesterID, account.OwnerID) {
		l.Warn().Str("number", number).Msg("transaction posting denied")
		return result, domain.ErrAccountOwnerMismatch
	}

	amount, err := decimal.NewFromString(arg.Amount)
	if err != nil {
		l.Info().Err(err).Send()
		return result, domain.ErrInvalidAmount
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return result, domain.ErrNegativeAmount
	}

	if arg.Currency != account.Currency {
		return result, domain.ErrCurrencyMismatch
	}

	balance, err := decimal.NewFromString(account.Balance)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	var balanceChange decimal.Decimal

	switch arg.Type {
	case domain.TransactionTypeDeposit:
		if balance.Add(amount).GreaterThan(balanceCeiling) {
			return result, domain.ErrBalanceCeilingExceeded
		}

		balanceChange = amount
	case domain.TransactionTypeWithdrawal:
		if balance.LessThan(amount) {
			return result, domain.ErrInsufficientBalance
		}

		balanceChange = amount.Neg()
	default:
		return result, domain.ErrInvalidTransactionType
	}

	post := domain.PostTransactionParams{
		TransactionID: randompkg.TransactionID(),
		AccountNumber: number,
		Amount:        amount.String(),
		BalanceChange: balanceChange.String(),
		Currency:      arg.Currency,
		Type:          arg.Type,
		Reference:     arg.Reference,
	}

	result, err = s.repo.Post(ctx, post)
	if err != nil {
		return result, err
	}

	return result, nil
}

// List returns all postings for the given account in chronological order,
// provided the requester owns the account.
func (s *Service) List(ctx context.Context, requesterID, number string) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	account, err := s.accounts.GetByNumber(ctx, number)
	if err != nil {
		l.Info().Err(err).Send()
		return nil, err
	}

	if !domain.IsOwner(requesterID, account.OwnerID) {
		l.Warn().Str("number", number).Msg("transaction listing denied")
		return nil, domain.ErrAccountOwnerMismatch
	}

	return s.repo.ListByAccount(ctx, number)
}
