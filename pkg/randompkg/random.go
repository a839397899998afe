// Package randompkg provides functionality for generating random application common items.
package randompkg

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// Float64 is a shortcut for generating a random float between 0 and 1 using crypto/rand.
func Float64() float64 {
	return float64(Intn(1<<32)) / (1 << 32)
}

// FloatBetween generates a random decimal number between min and max rounded to 2 decimals.
func FloatBetween(min, max float64) float64 {
	numInRange := min + Float64()*(max-min)
	return math.Floor(numInRange*100) / 100
}

// String generates a random string of length n.
func String(n int) string {
	var sb strings.Builder

	k := len(alphabet)

	for i := 0; i < n; i++ {
		c := alphabet[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// MoneyAmountBetween generates a random amount of money between min and max rounded to 2 decimals.
func MoneyAmountBetween(min, max float64) string {
	return decimal.NewFromFloat(FloatBetween(min, max)).String()
}

// Email generates a random email.
func Email() string {
	return fmt.Sprintf("%s@email.com", String(10))
}

// AccountNumber generates an externally visible account number:
// the fixed "01" prefix followed by 6 random digits.
func AccountNumber() string {
	return fmt.Sprintf("01%06d", Intn(1_000_000))
}

// TransactionID generates a transaction identifier with the "tan-" prefix
// followed by 12 random alphanumerics.
func TransactionID() string {
	return "tan-" + alphanumeric(12)
}

// UserID generates a user identifier with the "usr-" prefix
// followed by 12 random alphanumerics.
func UserID() string {
	return "usr-" + alphanumeric(12)
}

func alphanumeric(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
