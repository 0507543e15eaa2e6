package validator

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	uppercaseRegex   = regexp.MustCompile(`[A-Z]`)
	lowercaseRegex   = regexp.MustCompile(`[a-z]`)
	digitRegex       = regexp.MustCompile(`[0-9]`)
	specialCharRegex = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?~` + "`" + `]`)

	// Frequently compromised passwords rejected regardless of strength score.
	commonPasswords = map[string]bool{
		"password":    true,
		"password1":   true,
		"password123": true,
		"123456":      true,
		"12345678":    true,
		"123456789":   true,
		"1234567890":  true,
		"qwerty":      true,
		"qwerty123":   true,
		"qwertyuiop":  true,
		"abc123":      true,
		"letmein":     true,
		"welcome":     true,
		"iloveyou":    true,
		"admin":       true,
		"admin123":    true,
		"root":        true,
		"guest":       true,
		"test":        true,
		"master":      true,
		"secret":      true,
		"trustno1":    true,
		"dragon":      true,
		"monkey":      true,
		"sunshine":    true,
	}
)

// PasswordStrengthConfig defines the requirements a password must satisfy.
type PasswordStrengthConfig struct {
	MinLength      int
	MaxLength      int
	MinCharClasses int // Of: uppercase, lowercase, digits, special characters
}

// DefaultPasswordStrength returns pragmatic defaults suitable for web forms.
func DefaultPasswordStrength() PasswordStrengthConfig {
	return PasswordStrengthConfig{
		MinLength:      8,
		MaxLength:      128,
		MinCharClasses: 2,
	}
}

// StrongPassword validates password length and character class diversity.
func StrongPassword(field, value string, config PasswordStrengthConfig) Rule {
	return Rule{
		Check: func() bool {
			length := len([]rune(value))
			if length < config.MinLength || length > config.MaxLength {
				return false
			}
			return countCharClasses(value) >= config.MinCharClasses
		},
		Error: ValidationError{
			Field: field,
			Message: fmt.Sprintf("Password must be %d-%d characters and contain at least %d character types",
				config.MinLength, config.MaxLength, config.MinCharClasses),
		},
	}
}

// NotCommonPassword rejects passwords from the curated compromised list.
func NotCommonPassword(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return !commonPasswords[strings.ToLower(value)]
		},
		Error: ValidationError{
			Field:   field,
			Message: "Password is too common",
		},
	}
}

func countCharClasses(value string) int {
	classes := 0
	if uppercaseRegex.MatchString(value) {
		classes++
	}
	if lowercaseRegex.MatchString(value) {
		classes++
	}
	if digitRegex.MatchString(value) {
		classes++
	}
	if specialCharRegex.MatchString(value) {
		classes++
	}
	return classes
}
