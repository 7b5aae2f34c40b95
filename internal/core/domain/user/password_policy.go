package user

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	PasswordMinLength      = 8
	PasswordSpecialChars   = `@$!%*?&().,;:'"\|/#^_+=-`
	passwordRuleCountTotal = 6
)

type PasswordRule string

const (
	PasswordTooShort      PasswordRule = "too_short"
	PasswordNoUppercase   PasswordRule = "no_uppercase"
	PasswordNoLowercase   PasswordRule = "no_lowercase"
	PasswordNoDigit       PasswordRule = "no_digit"
	PasswordNoSpecial     PasswordRule = "no_special"
	PasswordHasWhitespace PasswordRule = "has_whitespace"
)

type PasswordViolation struct {
	Rule    PasswordRule
	Message string
}

type passwordCheck struct {
	rule    PasswordRule
	message string
	fails   func(password string) bool
}

var passwordChecks = [passwordRuleCountTotal]passwordCheck{
	{
		rule:    PasswordTooShort,
		message: "Password must be at least 8 characters long.",
		fails:   func(p string) bool { return utf8.RuneCountInString(p) < PasswordMinLength },
	},
	{
		rule:    PasswordNoUppercase,
		message: "Password must contain at least one uppercase letter (A-Z).",
		fails:   func(p string) bool { return !containsRuneInRange(p, 'A', 'Z') },
	},
	{
		rule:    PasswordNoLowercase,
		message: "Password must contain at least one lowercase letter (a-z).",
		fails:   func(p string) bool { return !containsRuneInRange(p, 'a', 'z') },
	},
	{
		rule:    PasswordNoDigit,
		message: "Password must contain at least one digit (0-9).",
		fails:   func(p string) bool { return !containsRuneInRange(p, '0', '9') },
	},
	{
		rule:    PasswordNoSpecial,
		message: "Password must contain at least one special character.",
		fails:   func(p string) bool { return !strings.ContainsAny(p, PasswordSpecialChars) },
	},
	{
		rule:    PasswordHasWhitespace,
		message: "Password cannot contain spaces.",
		fails:   func(p string) bool { return strings.IndexFunc(p, unicode.IsSpace) >= 0 },
	},
}

// ValidatePassword returns every rule the password breaks, in rule order.
// An empty result means the password is acceptable.
func ValidatePassword(password RawPassword) []PasswordViolation {
	var violations []PasswordViolation
	for _, check := range passwordChecks {
		if check.fails(string(password)) {
			violations = append(violations, PasswordViolation{Rule: check.rule, Message: check.message})
		}
	}
	return violations
}

func containsRuneInRange(s string, lo, hi rune) bool {
	for _, r := range s {
		if r >= lo && r <= hi {
			return true
		}
	}
	return false
}
