package validation

import (
	"strings"
	"unicode/utf8"
)

// ValidateName validates a guest's display name
func ValidateName(name string, max int) error {
	return validateText("name", name, max)
}

// ValidateMessage validates the text of a wish
func ValidateMessage(message string, max int) error {
	return validateText("message", message, max)
}

// validateText counts characters, not bytes
func validateText(field, value string, max int) error {
	trimmed := strings.TrimSpace(value)

	if trimmed == "" {
		return newError(field, "%s is required", field)
	}

	if max > 0 && utf8.RuneCountInString(trimmed) > max {
		return newError(field, "%s is too long (max %d characters)", field, max)
	}

	return nil
}
