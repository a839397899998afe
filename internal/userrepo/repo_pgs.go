// Package userrepo manages repository layer of users.
package userrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/eagle-bank/eagle-bank/internal/domain"
	"github.com/eagle-bank/eagle-bank/pkg/dbpkg"
	"github.com/eagle-bank/eagle-bank/pkg/errorspkg"
)

// RepoPGS facilitates user repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns user RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const userColumns = `
	id, email, name, phone_number,
	address_line1, address_town, address_county, address_postcode,
	hashed_password, created_at, updated_at`

const createQuery = `
INSERT INTO users (
    id, email, name, phone_number,
    address_line1, address_town, address_county, address_postcode,
    hashed_password
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9
) RETURNING` + userColumns

// Create creates the user and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.ID,
		arg.Email,
		arg.Name,
		arg.PhoneNumber,
		arg.AddressLine1,
		arg.AddressTown,
		arg.AddressCounty,
		arg.AddressPostcode,
		arg.HashedPassword,
	)

	var u domain.User

	err := scanUser(row, &u)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "users_email_key" {
				return u, domain.ErrEmailAlreadyExists
			}
		}

		return u, errorspkg.ErrInternal
	}

	return u, nil
}

const getQuery = `
SELECT` + userColumns + `
FROM users
WHERE id = $1
`

// Get returns the user with the given id.
func (r *RepoPGS) Get(ctx context.Context, id string) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var u domain.User

	err := scanUser(row, &u)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, domain.ErrUserNotFound
		}

		l.Error().Err(err).Send()

		return u, errorspkg.ErrInternal
	}

	return u, nil
}

const getByEmailQuery = `
SELECT` + userColumns + `
FROM users
WHERE email = $1
`

// GetByEmail returns the user with the given email.
func (r *RepoPGS) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getByEmailQuery, email)

	var u domain.User

	err := scanUser(row, &u)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, domain.ErrUserNotFound
		}

		l.Error().Err(err).Send()

		return u, errorspkg.ErrInternal
	}

	return u, nil
}

const updateQuery = `
UPDATE users
SET
	name = COALESCE(NULLIF($2, ''), name),
	phone_number = COALESCE(NULLIF($3, ''), phone_number),
	hashed_password = COALESCE(NULLIF($4, ''), hashed_password),
	updated_at = now()
WHERE id = $1
RETURNING` + userColumns

// Update patches the user's mutable fields, leaving empty arguments unchanged.
func (r *RepoPGS) Update(ctx context.Context, arg domain.UpdateUserParams) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, updateQuery,
		arg.ID,
		arg.Name,
		arg.PhoneNumber,
		arg.HashedPassword,
	)

	var u domain.User

	err := scanUser(row, &u)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, domain.ErrUserNotFound
		}

		l.Error().Err(err).Send()

		return u, errorspkg.ErrInternal
	}

	return u, nil
}

const deleteQuery = `
DELETE FROM users
WHERE id = $1
`

// Delete removes the user with the given id.
func (r *RepoPGS) Delete(ctx context.Context, id string) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if deleted == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner, u *domain.User) error {
	return row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PhoneNumber,
		&u.AddressLine1,
		&u.AddressTown,
		&u.AddressCounty,
		&u.AddressPostcode,
		&u.HashedPassword,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}
