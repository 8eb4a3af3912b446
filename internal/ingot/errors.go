package ingot

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid marks a recognised key whose value could not be coerced.
	ErrInvalid = errors.New("ingot: invalid value")
	// ErrEmpty marks input without any usable content.
	ErrEmpty = errors.New("ingot: empty input")
	// ErrIO marks a failure reading the input source.
	ErrIO = errors.New("ingot: read failed")
)

// IOError wraps the cause of a failed read. errors.Is(err, ErrIO) holds.
type IOError struct {
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("ingot: read: %v", e.Err) }

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// InvalidFieldError describes one value the collator had to drop.
type InvalidFieldError struct {
	Key    string
	Value  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("ingot: %s: %s (value %q)", e.Key, e.Reason, e.Value)
}

func (e *InvalidFieldError) Unwrap() error { return ErrInvalid }

// Issue is a dropped field recorded on the parsed Ingot.
type Issue struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}
