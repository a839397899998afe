// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrUserNotFound indicates that the user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailAlreadyExists indicates that a user with the given email already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrUserAccessDenied indicates that the requester does not own the target user record.
	ErrUserAccessDenied = errors.New("access to another user's details is forbidden")
	// ErrUserHasAccounts indicates that the user still owns bank accounts and cannot be deleted.
	ErrUserHasAccounts = errors.New("cannot delete user with existing bank accounts")
	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User holds user data.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	PhoneNumber     string    `json:"phone_number"`
	AddressLine1    string    `json:"address_line1"`
	AddressTown     string    `json:"address_town"`
	AddressCounty   string    `json:"address_county"`
	AddressPostcode string    `json:"address_postcode"`
	HashedPassword  string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateUserParams is the input data to create a user.
type CreateUserParams struct {
	ID              string
	Email           string
	Name            string
	PhoneNumber     string
	AddressLine1    string
	AddressTown     string
	AddressCounty   string
	AddressPostcode string
	HashedPassword  string
}

// UpdateUserParams is the input data to patch a user. Empty fields are left unchanged.
type UpdateUserParams struct {
	ID             string
	Name           string
	PhoneNumber    string
	HashedPassword string
}

// RegisterUserParams is the input data to register a user.
type RegisterUserParams struct {
	Email           string
	Name            string
	PhoneNumber     string
	AddressLine1    string
	AddressTown     string
	AddressCounty   string
	AddressPostcode string
	Password        string
}

// PatchUserParams is the input data to update a user's own details.
// Empty fields are left unchanged.
type PatchUserParams struct {
	ID          string
	Name        string
	PhoneNumber string
	Password    string
}
