package utils

import (
	"regexp"
	"strings"
)

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

var phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// PasswordProblem returns a human readable description of the first strength
// rule the password breaks, or "" when it satisfies all of them.
func PasswordProblem(password string) string {
	if len(password) < 8 {
		return "password must be at least 8 characters long"
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	switch {
	case !upper:
		return "password must contain at least one uppercase letter"
	case !lower:
		return "password must contain at least one lowercase letter"
	case !digit:
		return "password must contain at least one digit"
	case !special:
		return "password must contain at least one special character"
	}
	return ""
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidPhoneNumber(phone string) bool {
	return phonePattern.MatchString(phone)
}
