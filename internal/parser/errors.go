package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrReentrant is returned when Parse is called on an engine that is
	// already parsing.
	ErrReentrant = errors.New("parse already in progress")
	// ErrStrictMode is returned when a recoverable condition occurs in strict mode.
	ErrStrictMode = errors.New("strict mode violation")
	// ErrMalformedTree is returned by invalid structural edits.
	ErrMalformedTree = errors.New("malformed tree operation")
	// ErrRecoveryImpossible is returned when an unmatched construct cannot be
	// reinterpreted as text.
	ErrRecoveryImpossible = errors.New("recovery impossible")
	// ErrHook is returned when a grammar hook reports failure.
	ErrHook = errors.New("grammar hook failed")
)

// ParseError locates a failure in the filtered input.
type ParseError struct {
	Offset  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("offset %d: %s: %v", e.Offset, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(offset int, err error, format string, args ...any) *ParseError {
	return &ParseError{Offset: offset, Message: fmt.Sprintf(format, args...), Err: err}
}
