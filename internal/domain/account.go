package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountOwnerMismatch indicates that the requester does not own the account.
	ErrAccountOwnerMismatch = errors.New("account is owned by another user")
	// ErrAccountNumberTaken indicates that the generated account number already exists.
	ErrAccountNumberTaken = errors.New("account number already exists")
	// ErrOwnerNotFound indicates that the owner for the account is not found.
	ErrOwnerNotFound = errors.New("owner not found")
)

// Constants fixed for every account in the system.
const (
	DefaultSortCode = "10-10-10"

	// BalanceCeiling is the inclusive upper bound every account balance must stay under.
	BalanceCeiling = "10000.00"
)

// Supported account types.
const (
	AccountTypePersonal = "personal"
	AccountTypeBusiness = "business"
)

// Account holds a single user's bank account with its mutable balance.
type Account struct {
	ID        int64     `json:"-"`
	Number    string    `json:"account_number"`
	SortCode  string    `json:"sort_code"`
	Name      string    `json:"name"`
	Type      string    `json:"account_type"`
	Balance   string    `json:"balance"`
	Currency  string    `json:"currency"`
	OwnerID   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateAccountParams is the input data to persist a new account.
type CreateAccountParams struct {
	Number   string
	SortCode string
	Name     string
	Type     string
	Balance  string
	Currency string
	OwnerID  string
}
