// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/eagle-bank/eagle-bank/internal/domain"
	"github.com/eagle-bank/eagle-bank/pkg/dbpkg"
	"github.com/eagle-bank/eagle-bank/pkg/errorspkg"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    accounts (number, sort_code, name, type, balance, currency, owner_id)
VALUES
    ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, number, sort_code, name, type, balance, currency, owner_id, created_at, updated_at
`

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Number,
		arg.SortCode,
		arg.Name,
		arg.Type,
		arg.Balance,
		arg.Currency,
		arg.OwnerID,
	)

	var a domain.Account

	err := scanAccount(row, &a)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "accounts_number_key":
				return a, domain.ErrAccountNumberTaken
			case "accounts_owner_id_fkey":
				return a, domain.ErrOwnerNotFound
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getByNumberQuery = `
SELECT
	id, number, sort_code, name, type, balance, currency, owner_id, created_at, updated_at
FROM accounts
WHERE number = $1
`

// GetByNumber returns the account with the given account number.
func (r *RepoPGS) GetByNumber(ctx context.Context, number string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getByNumberQuery, number)

	var a domain.Account

	err := scanAccount(row, &a)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const listByOwnerQuery = `
SELECT
	id, number, sort_code, name, type, balance, currency, owner_id, created_at, updated_at
FROM accounts
WHERE owner_id = $1
ORDER BY id
`

// ListByOwner returns all accounts owned by the given user.
func (r *RepoPGS) ListByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByOwnerQuery, ownerID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(
			&a.ID,
			&a.Number,
			&a.SortCode,
			&a.Name,
			&a.Type,
			&a.Balance,
			&a.Currency,
			&a.OwnerID,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1, updated_at = now()
WHERE number = $2
RETURNING id, number, sort_code, name, type, balance, currency, owner_id, created_at, updated_at
`

// AddBalance applies the signed amount to the account's balance and returns the changed account.
//
// The UPDATE takes a row lock for the duration of the surrounding transaction,
// serializing concurrent postings against the same account. The balance range
// constraint rejects any change that would leave the balance outside its bounds.
func (r *RepoPGS) AddBalance(ctx context.Context, amount, number string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, addBalanceQuery, amount, number)

	var a domain.Account

	err := scanAccount(row, &a)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				// The same constraint guards both bounds; the sign of the
				// change tells which one was violated.
				if strings.HasPrefix(amount, "-") {
					return a, domain.ErrInsufficientBalance
				}

				return a, domain.ErrBalanceCeilingExceeded
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner, a *domain.Account) error {
	return row.Scan(
		&a.ID,
		&a.Number,
		&a.SortCode,
		&a.Name,
		&a.Type,
		&a.Balance,
		&a.Currency,
		&a.OwnerID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
}
