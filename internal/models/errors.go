package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("complaint not found")
	ErrClassification = errors.New("classification failed")
	ErrStorage        = errors.New("object storage failed")
	ErrPersistence    = errors.New("persistence failed")
	ErrUnauthorized   = errors.New("unauthorized")
)

// WrapError tags err with a semantic kind and the failing operation.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}
