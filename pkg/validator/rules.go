package validator

import (
	"net/mail"
	"strings"
	"unicode"
)

// maxEmailLength is the RFC 5321 path limit.
const maxEmailLength = 254

// Required fails on empty or whitespace-only values.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{
			Field:          field,
			Message:        "is required",
			TranslationKey: "validation.required",
		},
	}
}

// ValidEmail accepts a bare address (no display name) with a dotted domain.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if value == "" || len(value) > maxEmailLength {
				return false
			}

			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value {
				return false
			}

			local, domain, ok := strings.Cut(value, "@")
			if !ok || local == "" {
				return false
			}
			if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") || !strings.Contains(domain, ".") {
				return false
			}
			for part := range strings.SplitSeq(domain, ".") {
				if part == "" {
					return false
				}
			}
			return true
		},
		Error: ValidationError{
			Field:          field,
			Message:        "must be a valid email address",
			TranslationKey: "validation.email",
		},
	}
}

// PasswordPolicy bounds acceptable passwords. Lengths are in bytes: bcrypt reads at most 72.
type PasswordPolicy struct {
	MinLength      int `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`
	MaxLength      int `env:"PASSWORD_MAX_LENGTH" envDefault:"72"`
	MinCharClasses int `env:"PASSWORD_MIN_CHAR_CLASSES" envDefault:"0"` // of upper, lower, digit, other
}

// DefaultPasswordPolicy is 8 to 72 bytes with no composition rules.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: 8, MaxLength: 72}
}

// PasswordLength enforces the policy length bounds.
func PasswordLength(field, value string, policy PasswordPolicy) Rule {
	return Rule{
		Check: func() bool {
			return len(value) >= policy.MinLength && (policy.MaxLength <= 0 || len(value) <= policy.MaxLength)
		},
		Error: ValidationError{
			Field:          field,
			Message:        "has an invalid length",
			TranslationKey: "validation.password_length",
			TranslationValues: map[string]any{
				"min": policy.MinLength,
				"max": policy.MaxLength,
			},
		},
	}
}

// PasswordCharClasses enforces the minimum number of character classes.
func PasswordCharClasses(field, value string, policy PasswordPolicy) Rule {
	return Rule{
		Check: func() bool {
			return charClasses(value) >= policy.MinCharClasses
		},
		Error: ValidationError{
			Field:          field,
			Message:        "is too simple",
			TranslationKey: "validation.password_classes",
			TranslationValues: map[string]any{
				"min": policy.MinCharClasses,
			},
		},
	}
}

// Password combines the length and composition rules of policy.
func Password(field, value string, policy PasswordPolicy) []Rule {
	return []Rule{
		PasswordLength(field, value, policy),
		PasswordCharClasses(field, value, policy),
	}
}

func charClasses(s string) int {
	var upper, lower, digit, other bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}

	n := 0
	for _, b := range []bool{upper, lower, digit, other} {
		if b {
			n++
		}
	}
	return n
}
