package account

import (
	"regexp"
	"unicode/utf8"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	hasLower = regexp.MustCompile(`[a-z]`)
	hasUpper = regexp.MustCompile(`[A-Z]`)
	hasDigit = regexp.MustCompile(`[0-9]`)
)

// MinPasswordLength is the shortest password the workflows accept.
const MinPasswordLength = 8

// ValidUsername reports whether s is 3 to 20 letters, digits or underscores.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// ValidEmail is a shape check only: something@domain.tld without spaces.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// StrongPassword requires a lowercase letter, an uppercase letter, a digit
// and at least MinPasswordLength characters.
func StrongPassword(s string) bool {
	return utf8.RuneCountInString(s) >= MinPasswordLength &&
		hasLower.MatchString(s) &&
		hasUpper.MatchString(s) &&
		hasDigit.MatchString(s)
}
