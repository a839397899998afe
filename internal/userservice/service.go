// Package userservice manages business logic layer of users.
package userservice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/eagle-bank/eagle-bank/internal/domain"
	"github.com/eagle-bank/eagle-bank/pkg/errorspkg"
	"github.com/eagle-bank/eagle-bank/pkg/passpkg"
	"github.com/eagle-bank/eagle-bank/pkg/randompkg"
)

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error)
	Get(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Update(ctx context.Context, arg domain.UpdateUserParams) (domain.User, error)
	Delete(ctx context.Context, id string) error
}

// AccountService provides the account listing interface needed by the delete guard.
type AccountService interface {
	List(ctx context.Context, ownerID string) ([]domain.Account, error)
}

// Service facilitates user service layer logic.
type Service struct {
	repo     Repo
	accounts AccountService
}

// New returns user service struct to manage user business logic.
func New(ur Repo, as AccountService) *Service {
	return &Service{
		repo:     ur,
		accounts: as,
	}
}

// Create registers and returns a new user.
func (s *Service) Create(ctx context.Context, arg domain.RegisterUserParams) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	hashedPassword, err := passpkg.Hash(arg.Password)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.User{}, errorspkg.ErrInternal
	}

	createArg := domain.CreateUserParams{
		ID:              randompkg.UserID(),
		Email:           arg.Email,
		Name:            arg.Name,
		PhoneNumber:     arg.PhoneNumber,
		AddressLine1:    arg.AddressLine1,
		AddressTown:     arg.AddressTown,
		AddressCounty:   arg.AddressCounty,
		AddressPostcode: arg.AddressPostcode,
		HashedPassword:  hashedPassword,
	}

	return s.repo.Create(ctx, createArg)
}

// Get returns the user with the given id if the requester is that user.
func (s *Service) Get(ctx context.Context, id, requesterID string) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	if !domain.IsOwner(requesterID, id) {
		l.Warn().Str("user_id", id).Msg("user access denied")
		return domain.User{}, domain.ErrUserAccessDenied
	}

	return s.repo.Get(ctx, id)
}

// Update patches the user's own details and returns the updated user.
func (s *Service) Update(ctx context.Context, requesterID string, arg domain.PatchUserParams) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	if !domain.IsOwner(requesterID, arg.ID) {
		l.Warn().Str("user_id", arg.ID).Msg("user update denied")
		return domain.User{}, domain.ErrUserAccessDenied
	}

	updateArg := domain.UpdateUserParams{
		ID:          arg.ID,
		Name:        arg.Name,
		PhoneNumber: arg.PhoneNumber,
	}

	if arg.Password != "" {
		hashedPassword, err := passpkg.Hash(arg.Password)
		if err != nil {
			l.Error().Err(err).Send()
			return domain.User{}, errorspkg.ErrInternal
		}

		updateArg.HashedPassword = hashedPassword
	}

	return s.repo.Update(ctx, updateArg)
}

// Delete removes the user with the given id. Deletion is refused while the
// user still owns any bank account.
func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	l := zerolog.Ctx(ctx)

	if !domain.IsOwner(requesterID, id) {
		l.Warn().Str("user_id", id).Msg("user delete denied")
		return domain.ErrUserAccessDenied
	}

	accounts, err := s.accounts.List(ctx, id)
	if err != nil {
		return err
	}

	if len(accounts) > 0 {
		return domain.ErrUserHasAccounts
	}

	return s.repo.Delete(ctx, id)
}

// CheckPassword checks the given credentials and returns the matching user.
//
// Unknown emails and wrong passwords both map to the same error so callers
// cannot enumerate registered users.
func (s *Service) CheckPassword(ctx context.Context, email, password string) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return domain.User{}, domain.ErrInvalidCredentials
		}

		return domain.User{}, err
	}

	if err := passpkg.Check(password, user.HashedPassword); err != nil {
		l.Warn().Str("email", email).Msg("failed login attempt")
		return domain.User{}, domain.ErrInvalidCredentials
	}

	return user, nil
}
