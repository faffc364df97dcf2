// internal/app/system/authutil/authutil.go
package authutil

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Password length bounds. bcrypt ignores bytes past 72, so the upper
// bound mostly guards against giant form posts.
const (
	MinPasswordLength = 12
	MaxPasswordLength = 128
)

var (
	ErrPasswordTooShort  = errors.New("Password must be at least 12 characters")
	ErrPasswordTooLong   = errors.New("Password must be at most 128 characters")
	ErrPasswordNoUpper   = errors.New("Password must contain at least one uppercase letter")
	ErrPasswordNoLower   = errors.New("Password must contain at least one lowercase letter")
	ErrPasswordNoDigit   = errors.New("Password must contain at least one number")
	ErrPasswordNoSpecial = errors.New("Password must contain at least one special character")
	ErrPasswordCommon    = errors.New("Password is too common; choose something less guessable")
)

// common holds well-known passwords that pass the character rules.
var common = map[string]struct{}{
	"password123!":    {},
	"password1234!":   {},
	"welcome12345!":   {},
	"qwerty123456!":   {},
	"iloveyou1234!":   {},
	"letmein12345!":   {},
	"changeme123!":    {},
	"administrator1!": {},
}

// ValidatePassword enforces the sign-up password rules and returns the
// first rule that fails.
func ValidatePassword(pw string) error {
	n := len([]rune(pw))
	if n < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if n > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	switch {
	case !upper:
		return ErrPasswordNoUpper
	case !lower:
		return ErrPasswordNoLower
	case !digit:
		return ErrPasswordNoDigit
	case !special:
		return ErrPasswordNoSpecial
	}
	if _, bad := common[strings.ToLower(pw)]; bad {
		return ErrPasswordCommon
	}
	return nil
}

// PasswordRules is the help text shown under password fields.
func PasswordRules() string {
	return "At least " + strconv.Itoa(MinPasswordLength) +
		" characters, with an uppercase letter, a lowercase letter, a number and a special character."
}

// HashPassword returns a bcrypt hash of pw.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches the bcrypt hash.
func CheckPassword(pw, hash string) bool {
	if pw == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
