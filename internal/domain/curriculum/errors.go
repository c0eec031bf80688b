package curriculum

import (
	"errors"
	"fmt"
)

// ErrMalformedInput marks uploads that cannot be parsed or carry no usable header.
var ErrMalformedInput = errors.New("malformed input")

type InputError struct {
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *InputError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedInput, e.Err}
	}
	return []error{ErrMalformedInput}
}

func Malformed(reason string, err error) error {
	return &InputError{Reason: reason, Err: err}
}

// PersistenceError reports a chunk write that failed after Committed rows
// were already stored. Chunk is 1-based. Earlier chunks are not rolled back.
type PersistenceError struct {
	Committed int
	Chunk     int
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist chunk %d (committed %d): %v", e.Chunk, e.Committed, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
