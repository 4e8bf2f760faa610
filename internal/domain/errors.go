package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEntryNotFound    = errors.New("entry not found")
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrNotFound         = errors.New("record not found")
	ErrValidation       = errors.New("validation failed")
)

// ValidationError is a client-side error raised before any store call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
