package services

import (
	"errors"

	"github.com/prepnest/exam-engine/internal/validator"
)

// Sentinel errors mapped to HTTP statuses at the handler layer
var (
	ErrTestNotFound      = errors.New("test not found")
	ErrTestAlreadyExists = errors.New("test already exists")

	ErrSessionNotFound         = errors.New("session not found")
	ErrSessionNotActive        = errors.New("session is not active")
	ErrSessionAlreadyEvaluated = errors.New("session already evaluated")
	ErrAttemptLimitReached     = errors.New("attempt limit reached")

	ErrQuestionsNotFound = errors.New("one or more questions not found")
)

// ValidationError carries field-level failures out of the service layer
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	return e.Errors.Error()
}

func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	return &ValidationError{Errors: errs}
}

// IsValidationError reports whether err is a field validation failure
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
