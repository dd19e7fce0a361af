package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrValidationFailed   = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrGenerationDegraded = errors.New("generation degraded")
)

// ValidationError names the caller-supplied field that is out of its allowed domain
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

func validationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// storeError classifies a persistence error. Missing rows map to ErrNotFound, everything else to ErrStoreUnavailable.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStoreUnavailable, err)
}
