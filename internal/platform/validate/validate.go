// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

// Package validate provides the credential validation rules and a chainable
// Validator that collects field-level errors before returning a single
// [apperr.AppError].
//
// # Architecture
//
// All input checking happens at the handler boundary through this package.
// The credential rules ([IsValidEmail], [IsStrongPassword]) are pure and
// deterministic: they take raw strings, return booleans, and never touch
// state or raise.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/pkg/username"
)

var (
	// emailRegex is a conservative email shape: local part, @, domain, and a
	// TLD of at least two letters.
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	// uuidRegex matches a UUIDv4 or UUIDv7 string.
	uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// passwordSymbols is the fixed set of symbols accepted as the "special
// character" class for password strength.
const passwordSymbols = "@$!%*?&"

// # Credential Rules

// IsValidEmail reports whether the raw string looks like a deliverable email
// address. Pure and deterministic; callers translate false into a
// validation error.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsStrongPassword reports whether the password meets the strength policy:
// at least 8 characters with at least one lowercase letter, one uppercase
// letter, one digit, and one symbol from the allowed set (@$!%*?&).
func IsStrongPassword(password string) bool {
	if utf8.RuneCountInString(password) < 8 {
		return false
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	return hasLower && hasUpper && hasDigit && hasSymbol
}

// # Chainable Validator

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Email fails if the value does not match the conservative email shape.
func (v *Validator) Email(field, value string) *Validator {
	if !IsValidEmail(value) {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// Password fails if the value does not meet the strength policy.
func (v *Validator) Password(field, value string) *Validator {
	if !IsStrongPassword(value) {
		v.add(field, "Must be at least 8 characters with an uppercase letter, a lowercase letter, a digit, and one of @$!%*?&")
	}
	return v
}

// Username fails if the value, once normalized to its canonical stored form,
// falls outside the account-name alphabet or length bounds.
func (v *Validator) Username(field, value string) *Validator {
	if !username.IsValid(username.Normalize(value)) {
		v.add(field, "Must be 3-32 characters using only lowercase letters, digits, dots, underscores, or hyphens")
	}
	return v
}

// UUID fails if the value is not a valid UUID string (case-insensitive).
func (v *Validator) UUID(field, value string) *Validator {
	lower := strings.ToLower(value)
	if !uuidRegex.MatchString(lower) {
		v.add(field, "Must be a valid UUID")
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("retype_new_password", input.New != input.Retype, "Passwords do not match")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed. Call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
