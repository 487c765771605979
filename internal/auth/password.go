package auth

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores input beyond 72 bytes.
	MaxPasswordLength = 72
	DefaultBcryptCost = 12
)

var (
	ErrPasswordTooShort       = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong        = errors.New("password must be at most 72 bytes")
	ErrPasswordNeedsDigit     = errors.New("password must contain a digit")
	ErrPasswordNeedsLower     = errors.New("password must contain a lowercase letter")
	ErrPasswordNeedsUpper     = errors.New("password must contain an uppercase letter")
	ErrPasswordNeedsNonAlphaN = errors.New("password must contain a non-alphanumeric character")
)

// ValidatePassword enforces the account password policy.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}

	var digit, lower, upper, other bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case !unicode.IsLetter(r):
			other = true
		}
	}

	switch {
	case !digit:
		return ErrPasswordNeedsDigit
	case !lower:
		return ErrPasswordNeedsLower
	case !upper:
		return ErrPasswordNeedsUpper
	case !other:
		return ErrPasswordNeedsNonAlphaN
	}
	return nil
}

func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
