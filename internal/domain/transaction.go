package domain

import (
	"errors"
	"time"
)

var (
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInvalidAmount indicates an amount that cannot be parsed as a decimal.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNegativeAmount indicates an amount that is not strictly positive.
	ErrNegativeAmount = errors.New("amount must be greater than 0")
	// ErrInvalidTransactionType indicates a type outside deposit/withdrawal.
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	// ErrInsufficientBalance indicates that the account balance cannot cover a withdrawal.
	ErrInsufficientBalance = errors.New("insufficient balance for withdrawal")
	// ErrBalanceCeilingExceeded indicates that a deposit would push the balance over the ceiling.
	ErrBalanceCeilingExceeded = errors.New("account balance limit exceeded")
	// ErrCurrencyMismatch indicates that the posting currency differs from the account currency.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// Supported transaction types.
const (
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"
)

// Transaction holds a single posting against an account. Immutable once created.
type Transaction struct {
	ID            string    `json:"id"`
	AccountNumber string    `json:"account_number"`
	Amount        string    `json:"amount"` // always positive
	Currency      string    `json:"currency"`
	Type          string    `json:"type"`
	Reference     string    `json:"reference,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateTransactionParams is the posting request input.
type CreateTransactionParams struct {
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Type      string `json:"type"`
	Reference string `json:"reference"`
}

// PostTransactionParams is the input data for the atomic posting commit.
type PostTransactionParams struct {
	TransactionID string
	AccountNumber string
	Amount        string
	BalanceChange string // signed; negative for withdrawals
	Currency      string
	Type          string
	Reference     string
}

// PostTxResult is the result of a committed posting.
type PostTxResult struct {
	Transaction Transaction `json:"transaction"`
	Account     Account     `json:"account"`
}
