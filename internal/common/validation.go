package common

import (
	"fmt"
	"strings"
)

// FieldError is one failed rule on a named field.
type FieldError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s (got %v)", e.Field, e.Message, e.Value)
}

// Validator collects field errors from a chain of Field calls.
type Validator struct {
	errors []FieldError
}

func NewValidator() *Validator {
	return &Validator{errors: make([]FieldError, 0)}
}

// Field applies rules to value and collects their errors.
func (v *Validator) Field(fieldName string, value interface{}, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

func (v *Validator) Errors() []FieldError {
	return v.errors
}

// ErrorMessage joins all collected errors with "; ".
func (v *Validator) ErrorMessage() string {
	messages := make([]string, 0, len(v.errors))
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Err returns the collected errors as an AppError with the given code, or nil.
func (v *Validator) Err(code string) error {
	if !v.HasErrors() {
		return nil
	}
	cause := ErrInvalidInput
	if code == CodeValidation {
		cause = ErrValidation
	}
	return NewAppError(code, v.ErrorMessage(), cause)
}

// ValidationRule checks one field and returns nil when it passes.
type ValidationRule func(fieldName string, value interface{}) *FieldError

// Required fails on nil, blank strings and empty string slices.
func Required(fieldName string, value interface{}) *FieldError {
	fail := &FieldError{Field: fieldName, Value: value, Message: "is required"}
	switch v := value.(type) {
	case nil:
		return fail
	case string:
		if strings.TrimSpace(v) == "" {
			return fail
		}
	case []string:
		if len(v) == 0 {
			return fail
		}
	case []byte:
		if len(v) == 0 {
			return fail
		}
	}
	return nil
}

// OneOf accepts a string equal (case-insensitively) to one of allowed.
func OneOf(allowed ...string) ValidationRule {
	return func(fieldName string, value interface{}) *FieldError {
		s, ok := value.(string)
		if ok {
			for _, a := range allowed {
				if strings.EqualFold(s, a) {
					return nil
				}
			}
		}
		return &FieldError{
			Field:   fieldName,
			Value:   value,
			Message: fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")),
		}
	}
}

// IntRange accepts an int in [min, max].
func IntRange(min, max int) ValidationRule {
	return func(fieldName string, value interface{}) *FieldError {
		n, ok := value.(int)
		if !ok || n < min || n > max {
			return &FieldError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("must be between %d and %d", min, max),
			}
		}
		return nil
	}
}

// FloatRange accepts a float64 in [min, max].
func FloatRange(min, max float64) ValidationRule {
	return func(fieldName string, value interface{}) *FieldError {
		f, ok := value.(float64)
		if !ok || f < min || f > max {
			return &FieldError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("must be between %g and %g", min, max),
			}
		}
		return nil
	}
}

// MaxItems bounds the length of a slice of strings or bytes.
func MaxItems(max int) ValidationRule {
	return func(fieldName string, value interface{}) *FieldError {
		n := 0
		switch v := value.(type) {
		case []string:
			n = len(v)
		case []byte:
			n = len(v)
		case int:
			n = v
		}
		if n > max {
			return &FieldError{
				Field:   fieldName,
				Value:   n,
				Message: fmt.Sprintf("must have at most %d items", max),
			}
		}
		return nil
	}
}
