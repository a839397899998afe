package transactiondelivery

import (
	"github.com/go-playground/validator/v10"

	"github.com/eagle-bank/eagle-bank/internal/domain"
)

// ValidTransactionType validates whether the transaction type is supported.
var ValidTransactionType validator.Func = func(fl validator.FieldLevel) bool {
	if t, ok := fl.Field().Interface().(string); ok {
		return t == domain.TransactionTypeDeposit || t == domain.TransactionTypeWithdrawal
	}

	return false
}
