package fsa

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrFormat is matched by every *FormatError.
	ErrFormat = errors.New("malformed automaton")

	// ErrTraversalLimit is returned by enumeration when the path grows past
	// the depth guard. It usually means the automaton contains a loop.
	ErrTraversalLimit = errors.New("traversal depth limit exceeded")

	// ErrOutOfOrder is returned by Builder.Add for sequences that are not
	// strictly greater than the previous one.
	ErrOutOfOrder = errors.New("sequences not in increasing order")

	// ErrFinished is returned when adding to a finished Builder.
	ErrFinished = errors.New("builder already finished")

	// ErrEmptySequence is returned by Builder.Add for an empty sequence.
	ErrEmptySequence = errors.New("empty sequence")
)

// FormatError describes a malformed or unsupported automaton. No automaton
// is returned alongside it.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fsa: %s: %v", e.Reason, e.Err)
	}
	return "fsa: " + e.Reason
}

// Is makes errors.Is(err, ErrFormat) true for any FormatError.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatErrorf(format string, args ...interface{}) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}
