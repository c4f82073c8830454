package utils

import (
	"crypto/rand"
	"math/big"
	"time"
)

// One-time codes gate authentication, so they come from crypto/rand and
// are uniform over their full numeric range.

// NewLoginOTP returns a 4-digit login code and its expiry.
func NewLoginOTP() (int, time.Time, error) {
	code, err := randomCode(OTP_MIN, OTP_MAX)
	return code, time.Now().Add(time.Minute * OTP_DURATION), err
}

// NewResetCode returns a 6-digit recovery code and its expiry.
func NewResetCode() (int, time.Time, error) {
	code, err := randomCode(RESET_CODE_MIN, RESET_CODE_MAX)
	return code, time.Now().Add(time.Minute * RESET_CODE_DURATION), err
}

// NewVerificationCode returns a 6-digit email-ownership code and its
// expiry. Same shape and window as a recovery code, stored separately.
func NewVerificationCode() (int, time.Time, error) {
	return NewResetCode()
}

// CodeValid reports whether submitted matches a stored, unexpired code.
// Expiry is only ever enforced here, at verification time.
func CodeValid(submitted int, code *int, expiresAt *time.Time) bool {
	if code == nil || expiresAt == nil {
		return false
	}
	return submitted == *code && time.Now().Before(*expiresAt)
}

func randomCode(min, max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min+1)))
	if err != nil {
		return 0, err
	}
	return min + int(n.Int64()), nil
}
