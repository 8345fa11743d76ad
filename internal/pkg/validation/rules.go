package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Email validation pattern, applied to normalized (lower case) addresses
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Document id pattern - 24 hex characters
	ObjectIDPattern = `^[0-9a-fA-F]{24}$`

	// Password min length
	PasswordMinLength = 8

	// Name validation min/max length
	NameMinLength = 1
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Email    *regexp.Regexp
	ObjectID *regexp.Regexp
}{
	Email:    regexp.MustCompile(EmailPattern),
	ObjectID: regexp.MustCompile(ObjectIDPattern),
}

// NormalizeEmail trims and lower cases an address before lookup or storage
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether the normalized address matches EmailPattern
func IsValidEmail(email string) bool {
	return CompiledPatterns.Email.MatchString(NormalizeEmail(email))
}

// IsValidPassword enforces the minimum password length
func IsValidPassword(password string) bool {
	return NewStringValidation(password).WithMinLength(PasswordMinLength).Validate()
}

// IsObjectID reports whether s is a hex document id
func IsObjectID(s string) bool {
	return CompiledPatterns.ObjectID.MatchString(s)
}

// RegisterCustomValidators adds the `objectid` tag to v
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return IsObjectID(fl.Field().String())
	})
}

// String validation
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Required && v.Value == "" {
		return false
	}

	// Skip other validations for empty optional values
	if !v.Required && v.Value == "" {
		return true
	}

	length := len([]rune(v.Value))
	if v.MinLen > 0 && length < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && length > v.MaxLen {
		return false
	}

	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}

	return true
}
