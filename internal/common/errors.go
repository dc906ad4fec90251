package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes carried by AppError and surfaced to HTTP clients.
const (
	CodeAcquisition  = "ACQUISITION_ERROR"
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeConfig       = "CONFIG_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

// Common application errors
var (
	ErrAcquisition  = errors.New("unable to extract meaningful data")
	ErrValidation   = errors.New("validation failed")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAcquisitionError reports that no strategy produced any text. cause may be
// nil; the result always matches ErrAcquisition.
func NewAcquisitionError(cause error) *AppError {
	if cause == nil {
		return NewAppError(CodeAcquisition, "extraction failed", ErrAcquisition)
	}
	return NewAppError(CodeAcquisition, "extraction failed", fmt.Errorf("%w: %w", ErrAcquisition, cause))
}

// NewValidationError reports a hard validation failure of an extraction.
func NewValidationError(message string) *AppError {
	return NewAppError(CodeValidation, message, ErrValidation)
}

func NewInvalidInputError(message string) *AppError {
	return NewAppError(CodeInvalidInput, message, ErrInvalidInput)
}

func IsAcquisition(err error) bool { return errors.Is(err, ErrAcquisition) }

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// CodeOf returns the AppError code in err's chain, or CodeInternal.
func CodeOf(err error) string {
	var app *AppError
	if errors.As(err, &app) {
		return app.Code
	}
	return CodeInternal
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
