package users

import (
	"regexp"
	"strings"
)

var (
	phoneSeparators = regexp.MustCompile(`[\s\-()]+`)
	nonDigits       = regexp.MustCompile(`\D`)
)

// NormalizeIndianPhone accepts 10 digit numbers with an optional 0 or 91
// prefix and returns either "+91XXXXXXXXXX" (when the input carried a +
// country code) or the bare 10 digits. The second result is false when the
// input is not a recognizable Indian mobile number.
func NormalizeIndianPhone(input string) (string, bool) {
	s := phoneSeparators.ReplaceAllString(strings.TrimSpace(input), "")
	if s == "" {
		return "", false
	}
	digits := nonDigits.ReplaceAllString(s, "")
	if strings.HasPrefix(s, "+") {
		if len(digits) == 12 && strings.HasPrefix(digits, "91") {
			return "+" + digits, true
		}
		return "", false
	}
	switch {
	case len(digits) == 10:
		return digits, true
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return digits[1:], true
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return digits[2:], true
	}
	return "", false
}

// NormalizeEmail lowercases and trims an email used as an identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
