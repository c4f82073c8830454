package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrCorruptCredential reports a stored hash bcrypt cannot parse. This
// is a server fault, never a user error.
var ErrCorruptCredential = errors.New("stored password hash is malformed")

// HashPassword derives a salted bcrypt digest. bcrypt generates a fresh
// salt per call, so hashing the same password twice yields different
// strings.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), HASH_ROUNDS)
	return string(bytes), err
}

// ComparePasswords reports whether password matches hashedPassword. A
// mismatch is (false, nil); only an unreadable stored hash is an error.
func ComparePasswords(hashedPassword, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, ErrCorruptCredential
}
