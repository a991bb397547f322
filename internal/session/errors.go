package session

import (
	"errors"
	"fmt"

	"floatc/internal/ir"
)

var (
	// ErrNoFunction is returned by emitting operations before CreateFunction.
	ErrNoFunction = errors.New("no current function")
	// ErrEmptyName is returned by Assign for an empty variable name.
	ErrEmptyName = errors.New("variable name is empty")
)

// UnknownVariableError reports a read of a name that was never assigned in
// the current function.
type UnknownVariableError struct {
	Name string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable %q", e.Name)
}

// IsLocal reports whether err is recovered locally by poisoning the result
// rather than aborting the compilation.
func IsLocal(err error) bool {
	if err == nil {
		return false
	}
	var opErr *ir.OperatorError
	var unk *UnknownVariableError
	return errors.As(err, &opErr) ||
		errors.As(err, &unk) ||
		errors.Is(err, ir.ErrPoisonedOperand) ||
		errors.Is(err, ErrEmptyName)
}
