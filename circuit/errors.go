package circuit

import (
	"errors"
	"fmt"
)

// Sentinel errors for circuit construction.
var (
	// ErrUnknownType indicates a block references a type id outside the library.
	ErrUnknownType = errors.New("circuit: block references unknown type id")
	// ErrUnknownBlock indicates a net pin references a block id outside the circuit.
	ErrUnknownBlock = errors.New("circuit: net pin references unknown block id")
	// ErrUnknownPin indicates a net pin references a pin id outside its block type.
	ErrUnknownPin = errors.New("circuit: net pin references unknown pin id")
	// ErrEmptyRegion indicates the placement region has non-positive width or height.
	ErrEmptyRegion = errors.New("circuit: placement region must have positive width and height")
	// ErrBadRowHeight indicates a non-positive row height.
	ErrBadRowHeight = errors.New("circuit: row height must be positive")
)

// InvariantError reports corrupt library input detected at load time, such as
// mismatched well rectangle counts or non-abutted wells. It carries the
// location (type or block name) the check failed on.
type InvariantError struct {
	Message  string
	Location string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("circuit: %s (at %s)", e.Message, e.Location)
}

func invariantf(location, format string, args ...any) error {
	return &InvariantError{Message: fmt.Sprintf(format, args...), Location: location}
}
