package usecase

import (
	"errors"
	"fmt"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeStorageFailure = "STORAGE_FAILURE"
)

// DomainError is a failure caused by the request itself (bad input,
// unknown id). It is safe to show to the caller.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError is a failure of the infrastructure. Err keeps the cause
// for logging; Message is what the caller sees.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func newValidationError(msg string) error {
	return &DomainError{Code: CodeValidation, Message: msg}
}

func newNotFoundError(resource, id string) error {
	return &DomainError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

// storageError classifies a repository error. Errors that already carry a
// usecase classification pass through untouched.
func storageError(op, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) || IsTechnicalError(err) {
		return err
	}
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return newNotFoundError(resource, id)
	case errors.Is(err, entity.ErrConflict):
		return &DomainError{Code: CodeConflict, Message: fmt.Sprintf("%s for %s already exists", resource, id)}
	}
	return &TechnicalError{
		Code:    CodeStorageFailure,
		Message: "failed to " + op,
		Err:     err,
	}
}
