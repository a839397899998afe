package accountdelivery

import (
	"github.com/go-playground/validator/v10"

	"github.com/eagle-bank/eagle-bank/internal/domain"
)

// ValidAccountType validates whether the account type is supported.
var ValidAccountType validator.Func = func(fl validator.FieldLevel) bool {
	if t, ok := fl.Field().Interface().(string); ok {
		return t == domain.AccountTypePersonal || t == domain.AccountTypeBusiness
	}

	return false
}
