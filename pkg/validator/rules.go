package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

var digitsOnlyRegex = regexp.MustCompile(`^[0-9]+$`)

// Required validates that a string is not empty after trimming whitespace.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:   field,
			Message: "This field is required",
		},
	}
}

// ValidEmail validates that a string is a parseable email address with a
// dotted domain, which is what web forms expect in practice.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" {
				return false
			}

			addr, err := mail.ParseAddress(value)
			if err != nil {
				return false
			}

			parts := strings.Split(addr.Address, "@")
			if len(parts) != 2 || parts[0] == "" {
				return false
			}

			domain := parts[1]
			if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
				return false
			}

			return true
		},
		Error: ValidationError{
			Field:   field,
			Message: "Must be a valid email address",
		},
	}
}

// MinLen validates that a string has at least min characters.
func MinLen(field, value string, min int) Rule {
	return Rule{
		Check: func() bool {
			return len([]rune(value)) >= min
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("Must be at least %d characters long", min),
		},
	}
}

// MaxLen validates that a string has at most max characters.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return len([]rune(value)) <= max
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("Must be at most %d characters long", max),
		},
	}
}

// EqualStrings validates that two fields carry identical values, e.g. a
// password and its confirmation.
func EqualStrings(field, value, other string) Rule {
	return Rule{
		Check: func() bool {
			return value == other
		},
		Error: ValidationError{
			Field:   field,
			Message: "Values do not match",
		},
	}
}

// DigitCode validates that a string is exactly `digits` decimal digits,
// the shape of a TOTP code.
func DigitCode(field, value string, digits int) Rule {
	return Rule{
		Check: func() bool {
			return len(value) == digits && digitsOnlyRegex.MatchString(value)
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("Must be a %d-digit code", digits),
		},
	}
}
