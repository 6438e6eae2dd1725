package store

import (
	"errors"
	"fmt"
)

// NotFoundError reports that no record of the given kind has the
// requested id.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Kind)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ValueError reports that a caller-supplied field value does not match
// the column's declared type.
type ValueError struct {
	Kind  string
	Field string
	Value any
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value for %s.%s: %v", e.Kind, e.Field, e.Value)
}

// IsValueError reports whether err is a ValueError.
func IsValueError(err error) bool {
	var ve *ValueError
	return errors.As(err, &ve)
}
