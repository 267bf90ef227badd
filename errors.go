package radixmath

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidOperation is returned when an operation is undefined and the
	// numeric kind cannot represent NaN.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrOverflow is returned when a result overflows and the numeric kind
	// cannot represent infinity.
	ErrOverflow = errors.New("overflow")
	// ErrRoundingNecessary is returned when the Unnecessary rounding mode
	// meets a result that cannot be represented exactly.
	ErrRoundingNecessary = errors.New("rounding necessary")
	// ErrExponentRange is returned when an exponent difference is too large
	// to be materialized as a digit shift.
	ErrExponentRange = errors.New("exponent difference out of range")
	errInvalidString = errors.New("invalid numeric string")
)

// TrapError is returned when an operation raises a trapped condition.
type TrapError struct {
	Flags Flags
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("trapped condition %v", e.Flags)
}
