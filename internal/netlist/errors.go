package netlist

import (
	"errors"
	"fmt"
)

// ParseError is a fatal structural violation in the netlist document.
// A Parse call that returns a ParseError yields no usable graph.
type ParseError struct {
	// Offset is the byte offset of the violation where the decoder could
	// report one, otherwise -1.
	Offset int64

	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("netlist parse error at byte %d: %s", e.Offset, e.Message)
	}
	return fmt.Sprintf("netlist parse error: %s", e.Message)
}

// ModuleNotFoundError reports a query against an unknown module name.
type ModuleNotFoundError struct {
	Module string
}

// Error implements the error interface.
func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("module not found: %s", e.Module)
}

// SignalNotFoundError reports a query for a signal name absent from a
// module's netnames and ports.
type SignalNotFoundError struct {
	Module string
	Signal string
}

// Error implements the error interface.
func (e *SignalNotFoundError) Error() string {
	return fmt.Sprintf("signal not found in module %s: %s", e.Module, e.Signal)
}

// UnresolvedBitError reports a cell connection or port referencing a bit-id
// that appears in no netname and is not a module boundary bit. This is a
// structural inconsistency and fails the load.
type UnresolvedBitError struct {
	Module string
	Cell   string
	Port   string
	Bit    int
}

// Error implements the error interface.
func (e *UnresolvedBitError) Error() string {
	if e.Cell != "" {
		return fmt.Sprintf("module %s: cell %s port %s references unresolved bit %d",
			e.Module, e.Cell, e.Port, e.Bit)
	}
	return fmt.Sprintf("module %s: port %s references unresolved bit %d", e.Module, e.Port, e.Bit)
}

// IsNotFound returns true for module- or signal-not-found errors.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var me *ModuleNotFoundError
	if errors.As(err, &me) {
		return true
	}
	var se *SignalNotFoundError
	return errors.As(err, &se)
}
