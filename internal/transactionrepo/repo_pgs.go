// Package transactionrepo manages repository layer of transactions.
package transactionrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/eagle-bank/eagle-bank/internal/accountrepo"
	"github.com/eagle-bank/eagle-bank/internal/domain"
	"github.com/eagle-bank/eagle-bank/pkg/dbpkg"
	"github.com/eagle-bank/eagle-bank/pkg/errorspkg"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns transaction RepoPGS bound to an existing transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns transaction RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const createQuery = `
INSERT INTO
    transactions (id, account_number, amount, currency, type, reference)
VALUES
    ($1, $2, $3, $4, $5, $6)
RETURNING id, account_number, amount, currency, type, reference, created_at
`

// Create creates the transaction record and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.PostTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.TransactionID,
		arg.AccountNumber,
		arg.Amount,
		arg.Currency,
		arg.Type,
		arg.Reference,
	)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.AccountNumber,
		&t.Amount,
		&t.Currency,
		&t.Type,
		&t.Reference,
		&t.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transactions_account_number_fkey":
				return t, domain.ErrAccountNotFound
			case "transactions_amount_check":
				return t, domain.ErrNegativeAmount
			}
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT
	id, account_number, amount, currency, type, reference, created_at
FROM transactions
WHERE id = $1
`

// Get returns the transaction with the given id.
func (r *RepoPGS) Get(ctx context.Context, id string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.AccountNumber,
		&t.Amount,
		&t.Currency,
		&t.Type,
		&t.Reference,
		&t.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionNotFound
		}

		l.Error().Err(err).Send()

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const listByAccountQuery = `
SELECT
	id, account_number, amount, currency, type, reference, created_at
FROM transactions
WHERE account_number = $1
ORDER BY created_at, id
`

// ListByAccount returns all transactions posted against the given account
// in chronological order.
func (r *RepoPGS) ListByAccount(ctx context.Context, number string) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByAccountQuery, number)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID,
			&t.AccountNumber,
			&t.Amount,
			&t.Currency,
			&t.Type,
			&t.Reference,
			&t.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

// Post applies a posting to an account.
//
// It updates the account balance and creates the transaction record within a
// single database transaction. Either both changes commit or neither does;
// readers never observe a transaction without its balance change.
func (r *RepoPGS) Post(ctx context.Context, arg domain.PostTransactionParams) (domain.PostTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.PostTxResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	accountRepo := accountrepo.NewRepoPGS(tx)
	transactionRepo := NewTxRepoPGS(tx)

	result.Account, err = accountRepo.AddBalance(ctx, arg.BalanceChange, arg.AccountNumber)
	if err != nil {
		return result, err
	}

	result.Transaction, err = transactionRepo.Create(ctx, arg)
	if err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	return result, nil
}
