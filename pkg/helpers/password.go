package helpers

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes the plaintext password using bcrypt.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plaintext password.
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// PasswordStrong reports whether the password meets the policy: at least
// 8 characters with at least one digit, one uppercase and one lowercase
// letter.
func PasswordStrong(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var digit, upper, lower bool
	for _, r := range pw {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
	}
	return digit && upper && lower
}
