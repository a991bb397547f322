package ir

import (
	"errors"
	"fmt"
)

var (
	// ErrPoisonedOperand is returned when an operand is missing because an
	// earlier step already failed.
	ErrPoisonedOperand = errors.New("operand is poisoned by an earlier failure")
	// ErrTerminated is returned when emitting into a terminated function.
	ErrTerminated = errors.New("function is already terminated")
	// ErrForeignValue is returned when an operand belongs to another function or module.
	ErrForeignValue = errors.New("operand belongs to another function")
	// ErrTypeMismatch is returned when an operand has the wrong type for an instruction.
	ErrTypeMismatch = errors.New("operand type mismatch")
	// ErrSealed is returned when adding functions to a finalized module.
	ErrSealed = errors.New("module is sealed")
)

// OperatorError reports a binary operator outside the supported set.
type OperatorError struct {
	Op BinOp
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("invalid operator %q", rune(e.Op))
}
