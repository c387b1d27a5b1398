package value

import "errors"

// Sentinel errors returned by the arithmetic and logic operators. Callers
// that need the failing opcode index wrap these with additional context at
// the VM layer.
var (
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrDivideByZero       = errors.New("divide by zero")
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
)
