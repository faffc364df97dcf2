package authutil

import (
	"strings"
	"testing"
)

func TestValidatePassword_Valid(t *testing.T) {
	valid := []string{
		"Correct-Horse-9",
		"MyP@ssw0rd2025",
		"Ünïcödé-Pass1x",
	}
	for _, pw := range valid {
		if err := ValidatePassword(pw); err != nil {
			t.Errorf("expected %q to be valid, got error: %v", pw, err)
		}
	}
}

func TestValidatePassword_Rules(t *testing.T) {
	tests := []struct {
		pw   string
		want error
	}{
		{"", ErrPasswordTooShort},
		{"Ab1!short", ErrPasswordTooShort},
		{strings.Repeat("a", 129), ErrPasswordTooLong},
		{"all-lowercase-1", ErrPasswordNoUpper},
		{"ALL-UPPERCASE-1", ErrPasswordNoLower},
		{"No-Digits-Here!", ErrPasswordNoDigit},
		{"NoSpecials12345", ErrPasswordNoSpecial},
		{"Password123!", ErrPasswordCommon},
		{"PASSWORD123!", ErrPasswordNoLower},
	}
	for _, tc := range tests {
		if err := ValidatePassword(tc.pw); err != tc.want {
			t.Errorf("ValidatePassword(%q) = %v, want %v", tc.pw, err, tc.want)
		}
	}
}

func TestValidatePassword_AtMaxLength(t *testing.T) {
	pw := "Aa1!" + strings.Repeat("x", MaxPasswordLength-4)
	if err := ValidatePassword(pw); err != nil {
		t.Errorf("expected password at max length to be valid, got %v", err)
	}
}

func TestHashPassword_Valid(t *testing.T) {
	password := "SecurePassword123!"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "" || hash == password {
		t.Errorf("unexpected hash %q", hash)
	}
	// bcrypt hashes start with $2a$ or $2b$
	if hash[0] != '$' {
		t.Error("expected bcrypt hash to start with $")
	}
}

func TestHashPassword_DifferentHashesForSamePassword(t *testing.T) {
	hash1, err := HashPassword("SecurePassword123!")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	hash2, err := HashPassword("SecurePassword123!")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash1 == hash2 {
		t.Error("expected different hashes for same password (random salt)")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("SecurePassword123!")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPassword("SecurePassword123!", hash) {
		t.Error("expected CheckPassword to return true for correct password")
	}
	if CheckPassword("WrongPassword456!", hash) {
		t.Error("expected CheckPassword to return false for wrong password")
	}
	if CheckPassword("", hash) {
		t.Error("expected CheckPassword to return false for empty password")
	}
	if CheckPassword("password", "not-a-valid-hash") {
		t.Error("expected CheckPassword to return false for invalid hash")
	}
}

func TestPasswordRules(t *testing.T) {
	if rules := PasswordRules(); !strings.Contains(rules, "12") {
		t.Errorf("expected PasswordRules to mention minimum length, got %q", rules)
	}
}
