package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a malformed record or batch rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidArgument signals a query or delete construction contract violation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSchema signals an incompatible backing table schema.
	ErrSchema = errors.New("incompatible schema")
	// ErrDimensionMismatch signals an embedding whose length differs from the configured dimensions.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrIndexExists signals that the ANN index already exists.
	ErrIndexExists = errors.New("index already exists")
	// ErrProvider signals a transport or auth failure from an embedding or completion provider.
	ErrProvider = errors.New("provider error")
	// ErrUnsupportedProvider signals an unknown completion provider selector.
	ErrUnsupportedProvider = errors.New("unsupported provider")
	// ErrSchemaValidation signals that completion output never conformed to the
	// answer schema within the configured retry bound.
	ErrSchemaValidation = errors.New("output failed schema validation")
)

// DimensionError wraps ErrDimensionMismatch with the observed and expected lengths.
type DimensionError struct {
	Got  int
	Want int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: got %d, want %d", ErrDimensionMismatch.Error(), e.Got, e.Want)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionError creates a dimension mismatch error.
func NewDimensionError(got, want int) error {
	return &DimensionError{Got: got, Want: want}
}
