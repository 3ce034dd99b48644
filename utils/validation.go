package utils

import "regexp"

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	// E.164-ish: optional +, leading non-zero digit, up to 15 digits
	phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{7,14}$`)
)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// ValidPhone reports whether s is a usable MSISDN for mobile money.
func ValidPhone(s string) bool {
	return phoneRegex.MatchString(s)
}
