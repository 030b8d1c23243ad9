package admins

import (
	"strings"
	"unicode"
)

// passwordSymbols is the fixed set of accepted special characters.
const passwordSymbols = "@$!%*?&"

// ValidationError carries field-level messages for a rejected request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func validateUsername(username string) string {
	switch {
	case username == "":
		return "Username is required."
	case len(username) < 4:
		return "Username must be at least 4 characters long."
	case strings.ContainsFunc(username, unicode.IsSpace):
		return "Username should not contain spaces."
	case !isAlphanumeric(username):
		return "Username should only contain alphanumeric characters."
	}
	return ""
}

func validatePassword(password string) string {
	if password == "" {
		return "Password is required."
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}

	if len(password) < 8 || !upper || !lower || !digit || !symbol {
		return "Password must include at least 8 characters, an uppercase letter, a lowercase letter, a number, and a special character."
	}
	return ""
}

func isAlphanumeric(value string) bool {
	for _, r := range value {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
