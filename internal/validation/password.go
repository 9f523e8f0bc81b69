package validation

import (
	"strings"
)

// ValidatePassword validates password strength
// Enforces NIST recommendations: minimum 12 characters, blocks common patterns
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return newError("password", "password must be at least 12 characters")
	}

	// bcrypt silently truncates passwords longer than 72 bytes
	if len(password) > 72 {
		return newError("password", "password must not exceed 72 characters")
	}

	lower := strings.ToLower(password)
	for _, pattern := range []string{"password", "123456", "qwerty", "letmein", "welcome", "wedding"} {
		if strings.Contains(lower, pattern) {
			return newError("password", "password is too common, please choose a stronger one")
		}
	}

	return nil
}
