package radixmath

import "math/big"

// Kernel computes arithmetic on values of type T.
//
// A kernel reports the conditions it raises onto the context it is given
// and rounds its results to that context.
// It is not required to gate NaN operands, validate quantize targets or
// apply an overflow policy, [Engine] does that.
type Kernel[T any] interface {
	Kind() Kind[T]

	// AddEx adds x and y. If roundToOperandPrecision is true, operands with
	// more digits than the precision are rounded before they are added.
	AddEx(x, y T, ctx *Context, roundToOperandPrecision bool) (T, error)
	Negate(x T, ctx *Context) (T, error)
	Abs(x T, ctx *Context) (T, error)
	Multiply(x, y T, ctx *Context) (T, error)
	Divide(x, y T, ctx *Context) (T, error)
	DivideToExponent(x, y T, exp *big.Int, ctx *Context) (T, error)
	DivideToIntegerNaturalScale(x, y T, ctx *Context) (T, error)
	DivideToIntegerZeroScale(x, y T, ctx *Context) (T, error)
	Remainder(x, y T, ctx *Context) (T, error)
	RemainderNear(x, y T, ctx *Context) (T, error)
	Power(x, y T, ctx *Context) (T, error)
	Ln(x T, ctx *Context) (T, error)
	Log10(x T, ctx *Context) (T, error)
	Exp(x T, ctx *Context) (T, error)
	SquareRoot(x T, ctx *Context) (T, error)
	// Pi returns π rounded to ctx.
	Pi(ctx *Context) (T, error)
	Plus(x T, ctx *Context) (T, error)
	RoundToPrecision(x T, ctx *Context) (T, error)
	// RoundToBinaryPrecision rounds x so that its mantissa fits in
	// ctx.Precision bits, whatever the radix.
	RoundToBinaryPrecision(x T, ctx *Context) (T, error)
	Quantize(x, y T, ctx *Context) (T, error)
	Reduce(x T, ctx *Context) (T, error)
	RoundToExponentExact(x T, exp *big.Int, ctx *Context) (T, error)
	RoundToExponentSimple(x T, exp *big.Int, ctx *Context) (T, error)
	RoundToExponentNoRoundedFlag(x T, exp *big.Int, ctx *Context) (T, error)
	NextPlus(x T, ctx *Context) (T, error)
	NextMinus(x T, ctx *Context) (T, error)
	NextToward(x, y T, ctx *Context) (T, error)
	MinMagnitude(x, y T, ctx *Context) (T, error)
	MaxMagnitude(x, y T, ctx *Context) (T, error)
	// CompareToWithContext returns -1, 0 or 1 as a value.
	CompareToWithContext(x, y T, treatQuietNaNsAsSignaling bool, ctx *Context) (T, error)
	// Compare returns -1, 0 or 1 comparing x and y numerically.
	// NaNs compare greater than everything else.
	Compare(x, y T) int
}
