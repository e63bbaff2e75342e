package classfile

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidClass matches every structural parse failure.
	ErrInvalidClass = errors.New("invalid class file")

	// ErrOutOfRange is returned by pool lookups outside [1, Size()) or on the
	// unused second slot of a Long or Double.
	ErrOutOfRange = errors.New("constant pool index out of range")

	// ErrUnresolved is returned when an entry still carries an unbound reference.
	ErrUnresolved = errors.New("unresolved constant pool reference")

	// ErrUnassigned is returned when a referenced entry has no pool index.
	ErrUnassigned = errors.New("constant pool entry has no index")
)

// InvalidClassError describes a structural failure while reading a class file.
type InvalidClassError struct {
	Offset int
	Reason string
	Err    error
}

func (e *InvalidClassError) Error() string {
	msg := fmt.Sprintf("invalid class file at offset %d: %s", e.Offset, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidClassError) Unwrap() error { return e.Err }

func (e *InvalidClassError) Is(target error) bool {
	return target == ErrInvalidClass
}

func invalidf(offset int, format string, args ...any) *InvalidClassError {
	return &InvalidClassError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

func errTooMany(n int) error {
	return fmt.Errorf("%d items do not fit in a u2 count", n)
}
