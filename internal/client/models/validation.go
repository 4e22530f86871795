package models

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

// ErrValidation is matched by every local validation failure.
var ErrValidation = errors.New("validation error")

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	hexColor        = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

const passwordSpecials = "@$!%*?&"

func ValidateUsername(s string) error {
	if !usernamePattern.MatchString(s) {
		return newValidationError("username", "must be 3-20 letters, numbers or underscore")
	}
	return nil
}

func ValidateEmail(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return newValidationError("email", "is not a valid address")
	}
	return nil
}

// ValidatePassword enforces the account password policy: at least eight
// characters drawn from letters, digits and @$!%*?&, with at least one of
// each of lower case, upper case, digit and special character.
func ValidatePassword(s string) error {
	if len(s) < 8 {
		return newValidationError("password", "must be at least 8 characters")
	}

	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
			return newValidationError("password", "contains an unsupported character")
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return newValidationError("password", "contains an unsupported character")
		}
	}

	if !lower || !upper || !digit || !special {
		return newValidationError("password", "must contain upper and lower case letters, a number and one of "+passwordSpecials)
	}
	return nil
}
