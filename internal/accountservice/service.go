// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/eagle-bank/eagle-bank/internal/domain"
	"github.com/eagle-bank/eagle-bank/pkg/currencypkg"
	"github.com/eagle-bank/eagle-bank/pkg/errorspkg"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	GetByNumber(ctx context.Context, number string) (domain.Account, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Account, error)
}

// NumberGenerator draws a fresh account number.
type NumberGenerator func() string

// maxNumberAttempts bounds the retries on generated account number collisions.
const maxNumberAttempts = 5

// Service facilitates account service layer logic.
type Service struct {
	repo           Repo
	generateNumber NumberGenerator
}

// New returns account service struct to manage account business logic.
// The number generator is injected so collision handling is testable.
func New(ar Repo, generate NumberGenerator) *Service {
	return &Service{
		repo:           ar,
		generateNumber: generate,
	}
}

// Create creates and returns an account for the given owner.
//
// The balance always starts at zero and the currency and sort code are fixed
// system defaults. A generated account number that collides with an existing
// one is retried with a fresh number a bounded number of times.
func (s *Service) Create(ctx context.Context, name, accountType, ownerID string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	arg := domain.CreateAccountParams{
		SortCode: domain.DefaultSortCode,
		Name:     name,
		Type:     accountType,
		Balance:  "0",
		Currency: currencypkg.GBP,
		OwnerID:  ownerID,
	}

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		arg.Number = s.generateNumber()

		account, err := s.repo.Create(ctx, arg)
		if err == domain.ErrAccountNumberTaken {
			l.Info().Str("number", arg.Number).Msg("account number collision, retrying")
			continue
		}

		return account, err
	}

	l.Error().Msg("account number generation attempts exhausted")

	return domain.Account{}, errorspkg.ErrInternal
}

// GetByNumber returns the account with the given account number.
func (s *Service) GetByNumber(ctx context.Context, number string) (domain.Account, error) {
	return s.repo.GetByNumber(ctx, number)
}

// GetOwned returns the account with the given number if the requester owns it.
func (s *Service) GetOwned(ctx context.Context, number, requesterID string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	account, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return account, err
	}

	if !domain.IsOwner(requesterID, account.OwnerID) {
		l.Warn().Str("number", number).Msg("account access denied")
		return domain.Account{}, domain.ErrAccountOwnerMismatch
	}

	return account, nil
}

// List returns accounts that are owned by the given user.
func (s *Service) List(ctx context.Context, ownerID string) ([]domain.Account, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}
