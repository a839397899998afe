package tokenpkg

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aead/chacha20poly1305"
	"github.com/eagle-bank/eagle-bank/pkg/randompkg"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestNewPasetoMaker(t *testing.T) {
	t.Parallel()

	// OK
	symmetricKey := strings.Repeat("x", chacha20poly1305.KeySize)

	_, err := NewPasetoMaker(symmetricKey)
	if err != nil {
		t.Errorf("NewPasetoMaker(%v) returned error: %v", symmetricKey, err)
	}

	// shortKeyError
	shortKey := strings.Repeat("x", chacha20poly1305.KeySize-1)

	got, err := NewPasetoMaker(shortKey)
	if err.Error() != fmt.Errorf("invalid key size: must be exactly %d characters", chacha20poly1305.KeySize).Error() {
		t.Errorf("NewPasetoMaker(%v) returned unexpected error: %v", shortKey, err)
	}

	if got != nil {
		t.Errorf("PasetoMaker = %+v, want nil", got)
	}
}

func TestPasetoMaker(t *testing.T) {
	t.Parallel()

	symmetricKey := randompkg.String(32)

	maker, err := NewPasetoMaker(symmetricKey)
	if err != nil {
		t.Fatalf("NewPasetoMaker(%v) returned error: %v", symmetricKey, err)
	}

	userID := randompkg.UserID()
	duration := time.Minute

	token, payload, err := maker.CreateToken(userID, duration)
	if err != nil {
		t.Errorf("maker.CreateToken(%v, %v) returned error: %v", userID, duration, err)
	}

	_, err = maker.VerifyToken(token)
	if err != nil {
		t.Errorf("maker.VerifyToken(%v) returned error: %v", token, err)
	}

	want := &Payload{
		UserID:    userID,
		IssuedAt:  time.Now(),
		ExpiredAt: time.Now().Add(duration),
	}

	ignore := cmpopts.IgnoreFields(Payload{}, "ID")
	delta := cmpopts.EquateApproxTime(time.Minute)

	if diff := cmp.Diff(payload, want, ignore, delta); diff != "" {
		t.Errorf("maker.CreateToken(%v, %v) returned unexpected diff: %v", userID, duration, diff)
	}
}

func TestExpiredPasetoToken(t *testing.T) {
	t.Parallel()

	symmetricKey := randompkg.String(32)

	maker, err := NewPasetoMaker(symmetricKey)
	if err != nil {
		t.Fatalf("NewPasetoMaker(%v) returned error: %v", symmetricKey, err)
	}

	userID := randompkg.UserID()
	duration := -time.Minute

	token, _, err := maker.CreateToken(userID, duration)
	if err != nil {
		t.Errorf("maker.CreateToken(%v, %v) returned error: %v", userID, duration, err)
	}

	_, err = maker.VerifyToken(token)
	if err != ErrExpiredToken {
		t.Errorf("maker.VerifyToken(%v) returned unexpected error: %v", token, err)
	}
}
