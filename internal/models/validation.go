package models

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports bad caller input. Message is safe to show to users.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

const MinPasswordLength = 8

var (
	validate     = validator.New()
	phonePattern = regexp.MustCompile(`^\+?[0-9 ]{7,20}$`)
)

func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	// validator accepts dotless domains such as a@localhost
	if validate.Var(email, "email") != nil || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return &ValidationError{Field: "email", Message: "Email address is invalid"}
	}
	return nil
}

func ValidatePassword(password string) error {
	if validate.Var(password, "min="+strconv.Itoa(MinPasswordLength)) != nil {
		return &ValidationError{Field: "password", Message: "Password must be at least 8 characters long"}
	}
	return nil
}

// ValidatePhone accepts Swiss and international numbers written with digits,
// spaces and an optional leading +.
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(strings.TrimSpace(phone)) {
		return &ValidationError{Field: "phone", Message: "Phone number is invalid"}
	}
	return nil
}

// ValidatePostalCode checks a Swiss NPA (four digits).
func ValidatePostalCode(code string) error {
	if validate.Var(strings.TrimSpace(code), "len=4,number") != nil {
		return &ValidationError{Field: "postalCode", Message: "Postal code must have 4 digits"}
	}
	return nil
}
