package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt hashes without truncating.
const MaxPasswordBytes = 72

var (
	ErrEmptyPassword    = errors.New("auth: empty password")
	ErrPasswordTooLong  = errors.New("auth: password longer than 72 bytes")
	ErrPasswordMismatch = errors.New("auth: password does not match")
)

// HashPassword produces the value expected in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword reports ErrPasswordMismatch for a wrong password and any
// other error for a malformed hash.
func ComparePassword(hash, password string) error {
	if hash == "" || password == "" {
		return ErrPasswordMismatch
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
