package vcd

import (
	"errors"
	"fmt"
)

// ParseErrorKind categorizes structural violations found while parsing.
type ParseErrorKind string

const (
	// MalformedHeader indicates a broken declaration section or a value
	// change referencing an identifier that was never declared.
	MalformedHeader ParseErrorKind = "MALFORMED_HEADER"

	// MalformedValue indicates a bit-vector literal that disagrees with the
	// signal's declared width beyond permissible leading padding, or one
	// containing characters outside 0/1/x/z.
	MalformedValue ParseErrorKind = "MALFORMED_VALUE"

	// MalformedTimestamp indicates an unparseable or backwards timestamp
	// marker in the value-change body.
	MalformedTimestamp ParseErrorKind = "MALFORMED_TIMESTAMP"

	// UnbalancedScope indicates an $upscope without a matching $scope.
	UnbalancedScope ParseErrorKind = "UNBALANCED_SCOPE"
)

// ParseError is a fatal structural violation in the dump. A Parse call that
// returns a ParseError yields no usable store.
type ParseError struct {
	Kind ParseErrorKind

	// Line is the 1-based line number of the offending record.
	Line int

	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: line %d: %s", e.Kind, e.Line, e.Message)
}

func newParseError(kind ParseErrorKind, line int, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
}

// SignalNotFoundError reports a query for a name absent from the store.
// This is a recoverable, typed absence - never a default value.
type SignalNotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *SignalNotFoundError) Error() string {
	return fmt.Sprintf("signal not found: %s", e.Name)
}

// IsNotFound returns true if the error is a SignalNotFoundError.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var nf *SignalNotFoundError
	return errors.As(err, &nf)
}
