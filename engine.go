package radixmath

import (
	"math"
	"math/big"

	"github.com/cockroachdb/errors"
)

// Engine layers the flag, rounding and validity rules of the simplified
// General Decimal Arithmetic on top of a [Kernel].
//
// Every operation follows the same steps:
//
//  1. NaN operands are answered directly, signaling NaNs first.
//  2. Operands with more digits than the precision are rounded first and
//     the caller is told about the lost digits.
//  3. The kernel computes the result with an empty copy of the context.
//  4. The kernel's conditions are merged into the caller's context and the
//     result is brought into canonical form.
//
// An Engine is safe for concurrent use, a [Context] is not.
type Engine[T any] struct {
	kernel Kernel[T]
	kind   Kind[T]
}

// NewEngine returns an engine owning the given kernel.
func NewEngine[T any](kernel Kernel[T]) *Engine[T] {
	return &Engine[T]{kernel: kernel, kind: kernel.Kind()}
}

var (
	// Decimal is the engine for radix 10 values.
	Decimal = NewEngine[Value](NewArith(DecimalKind))
	// Binary is the engine for radix 2 values.
	Binary = NewEngine[Value](NewArith(BinaryKind))
)

// opClass selects the canonical form applied after an operation.
type opClass uint8

const (
	opGeneral  opClass = iota
	opDivision         // trailing zeros are trimmed
	opQuantize         // the exponent chosen by the operation is kept
)

// Kind returns the representation the engine works with.
func (e *Engine[T]) Kind() Kind[T] {
	return e.kind
}

// Compare returns -1, 0 or 1 comparing x and y numerically.
func (e *Engine[T]) Compare(x, y T) int {
	return e.kernel.Compare(x, y)
}

// Add returns x + y.
func (e *Engine[T]) Add(x, y T, ctx *Context) (T, error) {
	r, done, err := e.prepare(ctx, &x, &y)
	if done || err != nil {
		return r, err
	}
	scratch := ctx.WithBlankFlags()
	zx, zy := e.isZero(x), e.isZero(y)
	switch {
	case zx:
		if zy {
			x = e.kind.ValueOf(0)
		} else {
			x = y
		}
		r, err = e.RoundToPrecision(x, scratch)
	case !zy:
		r, err = e.kernel.AddEx(x, y, scratch, true)
	default:
		r, err = e.RoundToPrecision(x, scratch)
	}
	if err != nil {
		return r, err
	}
	return e.postProcess(r, ctx, scratch, opGeneral)
}

// AddEx returns x + y.
// The roundToOperandPrecision hint is ignored, operands are always rounded
// to the precision of ctx before they are added.
func (e *Engine[T]) AddEx(x, y T, ctx *Context, roundToOperandPrecision bool) (T, error) {
	return e.Add(x, y, ctx)
}

// Negate returns -x rounded to ctx.
func (e *Engine[T]) Negate(x T, ctx *Context) (T, error) {
	return e.unary(x, ctx, opGeneral, e.kernel.Negate)
}

// Abs returns |x| rounded to ctx.
func (e *Engine[T]) Abs(x T, ctx *Context) (T, error) {
	return e.unary(x, ctx, opGeneral, e.kernel.Abs)
}

// Multiply returns x * y.
func (e *Engine[T]) Multiply(x, y T, ctx *Context) (T, error) {
	return e.binary(x, y, ctx, opGeneral, e.kernel.Multiply)
}

// Divide returns x / y.
// With unbounded precision a quotient without a terminating expansion is invalid.
func (e *Engine[T]) Divide(x, y T, ctx *Context) (T, error) {
	return e.binary(x, y, ctx, opDivision, e.kernel.Divide)
}

// DivideToExponent returns x / y rounded to the given exponent.
func (e *Engine[T]) DivideToExponent(x, y T, exp *big.Int, ctx *Context) (T, error) {
	return e.binary(x, y, ctx, opDivision, func(x, y T, ctx *Context) (T, error) {
		return e.kernel.DivideToExponent(x, y, exp, ctx)
	})
}

// DivideToIntegerNaturalScale returns the integer part of x / y with the
// exponent closest to the difference of the operand exponents.
func (e *Engine[T]) DivideToIntegerNaturalScale(x, y T, ctx *Context) (T, error) {
	return e.binary(x, y, ctx, opDivision, e.kernel.DivideToIntegerNaturalScale)
}

// DivideToIntegerZeroScale returns the integer part of x / y with exponent 0.
func (e *Engine[T]) DivideToIntegerZeroScale(x, y T, ctx *Context) (T, error) {
	return e.binary(x, y, ctx, opDivision, e.kernel.DivideToIntegerZeroScale)
}

// Remainder returns x - y * trunc(x / y).
func (e *Engine[T]) Remainder(x, y T, ctx *Context) (T, error) {
	return e.binary(x, y, ctx, opGeneral, e.kernel.Remainder)
}

// RemainderNear returns x - y * n, where n is x / y rounded half to even.
func (e *Engine[T]) RemainderNear(x, y T, ctx *Context) (T, error) {
	return e.binary(x, y, ctx, opGeneral, e.kernel.RemainderNear)
}

// Power returns x^y. Zero raised to zero is one.
func (e *Engine[T]) Power(x, y T, ctx *Context) (T, error) {
	return e.binary(x, y, ctx, opDivision, func(x, y T, ctx *Context) (T, error) {
		if e.isZero(x) && e.isZero(y) {
			return e.kind.ValueOf(1), nil
		}
		return e.kernel.Power(x, y, ctx)
	})
}

// Ln returns the natural logarithm of x.
func (e *Engine[T]) Ln(x T, ctx *Context) (T, error) {
	return e.unary(x, ctx, opGeneral, e.kernel.Ln)
}

// Log10 returns the base 10 logarithm of x.
func (e *Engine[T]) Log10(x T, ctx *Context) (T, error) {
	return e.unary(x, ctx, opGeneral, e.kernel.Log10)
}

// Exp returns e^x.
func (e *Engine[T]) Exp(x T, ctx *Context) (T, error) {
	return e.unary(x, ctx, opGeneral, e.kernel.Exp)
}

// SquareRoot returns √x.
func (e *Engine[T]) SquareRoot(x T, ctx *Context) (T, error) {
	return e.unary(x, ctx, opGeneral, e.kernel.SquareRoot)
}

// Pi returns π rounded to ctx.
// With unbounded precision the operation is invalid.
func (e *Engine[T]) Pi(ctx *Context) (T, error) {
	scratch := ctx.WithBlankFlags()
	r, err := e.kernel.Pi(scratch)
	if err != nil {
		return r, err
	}
	return e.postProcess(r, ctx, scratch, opDivision)
}

// Plus returns x rounded to ctx.
func (e *Engine[T]) Plus(x T, ctx *Context) (T, error) {
	return e.unary(x, ctx, opGeneral, e.kernel.Plus)
}

// RoundToPrecision returns x rounded to the precision and exponent range of ctx.
func (e *Engine[T]) RoundToPrecision(x T, ctx *Context) (T, error) {
	return e.unary(x, ctx, opGeneral, e.kernel.RoundToPrecision)
}

// RoundToBinaryPrecision returns x with its mantissa rounded to
// ctx.Precision bits.
func (e *Engine[T]) RoundToBinaryPrecision(x T, ctx *Context) (T, error) {
	return e.unary(x, ctx, opGeneral, e.kernel.RoundToBinaryPrecision)
}

// Quantize returns x rounded to the exponent of y.
// If y itself does not fit the precision of ctx, its exponent cannot be
// honored and the operation is invalid.
func (e *Engine[T]) Quantize(x, y T, ctx *Context) (T, error) {
	r, done, err := e.checkNaN(ctx, x, y)
	if done || err != nil {
		return r, err
	}
	// Rounding y would change its exponent.
	if e.needsRounding(y, ctx) {
		return e.signalInvalid(ctx)
	}
	scratch := ctx.WithBlankFlags()
	x, done, err = e.roundBeforeOp(x, ctx)
	if done || err != nil {
		return x, err
	}
	r, err = e.kernel.Quantize(x, y, scratch)
	if err != nil {
		return r, err
	}
	return e.postProcess(r, ctx, scratch, opQuantize)
}

// Reduce returns x with trailing zeros removed from its mantissa.
func (e *Engine[T]) Reduce(x T, ctx *Context) (T, error) {
	return e.unary(x, ctx, opQuantize, e.kernel.Reduce)
}

// RoundToExponentExact returns x rounded to the given exponent.
// Discarding nonzero digits is invalid.
func (e *Engine[T]) RoundToExponentExact(x T, exp *big.Int, ctx *Context) (T, error) {
	return e.unary(x, ctx, opQuantize, func(x T, ctx *Context) (T, error) {
		return e.kernel.RoundToExponentExact(x, exp, ctx)
	})
}

// RoundToExponentSimple returns x rounded to the given exponent.
func (e *Engine[T]) RoundToExponentSimple(x T, exp *big.Int, ctx *Context) (T, error) {
	return e.unary(x, ctx, opQuantize, func(x T, ctx *Context) (T, error) {
		return e.kernel.RoundToExponentSimple(x, exp, ctx)
	})
}

// RoundToExponentNoRoundedFlag returns x rounded to the given exponent
// without raising [FlagRounded].
func (e *Engine[T]) RoundToExponentNoRoundedFlag(x T, exp *big.Int, ctx *Context) (T, error) {
	return e.unary(x, ctx, opQuantize, func(x T, ctx *Context) (T, error) {
		return e.kernel.RoundToExponentNoRoundedFlag(x, exp, ctx)
	})
}

// NextPlus returns the smallest representable value greater than x.
func (e *Engine[T]) NextPlus(x T, ctx *Context) (T, error) {
	return e.unary(x, ctx, opGeneral, e.kernel.NextPlus)
}

// NextMinus returns the largest representable value less than x.
func (e *Engine[T]) NextMinus(x T, ctx *Context) (T, error) {
	return e.unary(x, ctx, opGeneral, e.kernel.NextMinus)
}

// NextToward returns the representable value next to x in the direction of y.
func (e *Engine[T]) NextToward(x, y T, ctx *Context) (T, error) {
	return e.binary(x, y, ctx, opGeneral, e.kernel.NextToward)
}

// Max returns the greater of x and y, or x if they are numerically equal.
func (e *Engine[T]) Max(x, y T, ctx *Context) (T, error) {
	return e.binary(x, y, ctx, opGeneral, func(x, y T, _ *Context) (T, error) {
		if e.kernel.Compare(x, y) >= 0 {
			return x, nil
		}
		return y, nil
	})
}

// Min returns the smaller of x and y, or x if they are numerically equal.
func (e *Engine[T]) Min(x, y T, ctx *Context) (T, error) {
	return e.binary(x, y, ctx, opGeneral, func(x, y T, _ *Context) (T, error) {
		if e.kernel.Compare(x, y) <= 0 {
			return x, nil
		}
		return y, nil
	})
}

// MaxMagnitude returns the operand with the greater absolute value.
func (e *Engine[T]) MaxMagnitude(x, y T, ctx *Context) (T, error) {
	return e.binary(x, y, ctx, opGeneral, e.kernel.MaxMagnitude)
}

// MinMagnitude returns the operand with the smaller absolute value.
func (e *Engine[T]) MinMagnitude(x, y T, ctx *Context) (T, error) {
	return e.binary(x, y, ctx, opGeneral, e.kernel.MinMagnitude)
}

// CompareToWithContext returns -1, 0 or 1 as a value.
// If treatQuietNaNsAsSignaling is true, quiet NaN operands are invalid too.
func (e *Engine[T]) CompareToWithContext(x, y T, treatQuietNaNsAsSignaling bool, ctx *Context) (T, error) {
	return e.binary(x, y, ctx, opGeneral, func(x, y T, ctx *Context) (T, error) {
		return e.kernel.CompareToWithContext(x, y, treatQuietNaNsAsSignaling, ctx)
	})
}

// MultiplyAndAdd is not supported: it always raises [FlagInvalid] and
// returns a quiet NaN.
func (e *Engine[T]) MultiplyAndAdd(x, y, z T, ctx *Context) (T, error) {
	return e.signalInvalid(ctx)
}

// unary runs a single-operand kernel operation under the engine's rules.
func (e *Engine[T]) unary(x T, ctx *Context, class opClass, op func(T, *Context) (T, error)) (T, error) {
	r, done, err := e.prepare(ctx, &x)
	if done || err != nil {
		return r, err
	}
	scratch := ctx.WithBlankFlags()
	r, err = op(x, scratch)
	if err != nil {
		return r, err
	}
	return e.postProcess(r, ctx, scratch, class)
}

// binary runs a two-operand kernel operation under the engine's rules.
func (e *Engine[T]) binary(x, y T, ctx *Context, class opClass, op func(T, T, *Context) (T, error)) (T, error) {
	r, done, err := e.prepare(ctx, &x, &y)
	if done || err != nil {
		return r, err
	}
	scratch := ctx.WithBlankFlags()
	r, err = op(x, y, scratch)
	if err != nil {
		return r, err
	}
	return e.postProcess(r, ctx, scratch, class)
}

// prepare answers NaN operands and rounds the remaining operands in place.
// If done is true, r is the result of the operation.
func (e *Engine[T]) prepare(ctx *Context, ops ...*T) (r T, done bool, err error) {
	vals := make([]T, len(ops))
	for i, op := range ops {
		vals[i] = *op
	}
	r, done, err = e.checkNaN(ctx, vals...)
	if done || err != nil {
		return r, true, err
	}
	for _, op := range ops {
		*op, done, err = e.roundBeforeOp(*op, ctx)
		if done || err != nil {
			return *op, true, err
		}
	}
	return r, false, nil
}

// checkNaN returns the result for NaN operands.
// Signaling NaNs take precedence over quiet ones, and earlier operands
// take precedence over later ones.
func (e *Engine[T]) checkNaN(ctx *Context, ops ...T) (T, bool, error) {
	var zero T
	for _, x := range ops {
		if e.kind.Form(x)&FormSignalingNaN != 0 {
			if err := ctx.signal(FlagInvalid); err != nil {
				return zero, true, err
			}
			return e.quietNaN(x, ctx), true, nil
		}
	}
	for _, x := range ops {
		if e.kind.Form(x)&FormQuietNaN != 0 {
			return e.quietNaN(x, ctx), true, nil
		}
	}
	return zero, false, nil
}

// quietNaN returns a quiet NaN with the sign of x and its payload reduced
// to the precision of ctx.
func (e *Engine[T]) quietNaN(x T, ctx *Context) T {
	form := e.kind.Form(x)
	mant := e.kind.Mantissa(x)
	changed := false
	if ctx.HasMaxPrecision() && uint64(e.kind.DigitLen(mant)) > ctx.Precision {
		limit := e.kind.MulRadixPow(bigOne, precInt64(ctx))
		mant = new(big.Int).Mod(mant, limit)
		changed = true
	}
	if !changed && form&FormQuietNaN != 0 {
		return x
	}
	return e.kind.New(new(big.Int).Set(mant), new(big.Int), form&FormNegative|FormQuietNaN)
}

// roundBeforeOp rounds an operand with more digits than the precision.
// If done is true, rounding overflowed and r is the result of the operation.
func (e *Engine[T]) roundBeforeOp(x T, ctx *Context) (r T, done bool, err error) {
	if !e.needsRounding(x, ctx) {
		return x, false, nil
	}
	scratch := ctx.WithBlankFlags().WithTraps(0)
	r, err = e.kernel.RoundToPrecision(x, scratch)
	if err != nil {
		return r, true, err
	}
	switch {
	case scratch.Flags&FlagInexact != 0:
		err = ctx.signal(FlagLostDigits | FlagInexact | FlagRounded)
	case scratch.Flags&FlagRounded != 0:
		err = ctx.signal(FlagRounded)
	}
	if err != nil {
		return r, true, err
	}
	if scratch.Flags&FlagOverflow != 0 {
		r, err = e.signalOverflow(ctx, e.kind.Form(x)&FormNegative != 0)
		return r, true, err
	}
	return r, false, nil
}

// needsRounding reports whether a finite x has more digits than the
// precision of ctx.
func (e *Engine[T]) needsRounding(x T, ctx *Context) bool {
	if !ctx.HasMaxPrecision() || e.kind.Form(x)&FormSpecial != 0 {
		return false
	}
	return uint64(e.kind.DigitLen(e.kind.Mantissa(x))) > ctx.Precision
}

// postProcess merges the conditions of scratch into ctx and brings the
// kernel's result x into canonical form.
func (e *Engine[T]) postProcess(x T, ctx, scratch *Context, class opClass) (T, error) {
	var zero T
	flags := scratch.Flags &^ FlagClamped
	if flags&FlagSubnormal != 0 {
		flags |= FlagUnderflow | FlagInexact | FlagRounded
	}
	if err := ctx.signal(flags); err != nil {
		return zero, err
	}
	form := e.kind.Form(x)
	if flags&FlagOverflow != 0 && form&FormNaN == 0 {
		return e.signalOverflow(ctx, form&FormNegative != 0)
	}
	if form&FormSpecial != 0 {
		if ctx.flags() == 0 {
			return e.signalInvalid(ctx)
		}
		return x, nil
	}
	mant := e.kind.Mantissa(x)
	if mant.Sign() == 0 {
		if class == opQuantize {
			return x, nil
		}
		return e.kind.ValueOf(0), nil
	}
	if class == opQuantize {
		return x, nil
	}
	exp := e.kind.Exponent(x)
	switch exp.Sign() {
	case 1:
		if !ctx.HasMaxPrecision() {
			if !exp.IsInt64() || !ctx.ExponentWithinRange(exp) || !ctx.ExponentWithinRange(bigZero) {
				return x, nil
			}
			return e.kind.New(e.kind.MulRadixPow(mant, exp.Int64()), new(big.Int), form), nil
		}
		if !ctx.ExponentWithinRange(exp) {
			return x, nil
		}
		spare := precInt64(ctx) - e.kind.DigitLen(mant)
		if spare > 0 && exp.Cmp(big.NewInt(spare)) <= 0 {
			return e.kind.New(e.kind.MulRadixPow(mant, exp.Int64()), new(big.Int), form), nil
		}
		if class == opDivision {
			return e.trimZeros(x, nil), nil
		}
	case -1:
		if class == opDivision {
			return e.trimZeros(x, bigZero), nil
		}
	}
	return x, nil
}

// trimZeros moves trailing zero digits of the mantissa into the exponent.
// If ideal is not nil, the exponent does not grow beyond it.
func (e *Engine[T]) trimZeros(x T, ideal *big.Int) T {
	r := radixOf(e.kind.Radix())
	mant, exp := e.kind.Mantissa(x), e.kind.Exponent(x)
	n := r.ntz(mant)
	if ideal != nil {
		room := sub(ideal, exp)
		if room.Cmp(big.NewInt(n)) < 0 {
			n = room.Int64()
		}
	}
	if n <= 0 {
		return x
	}
	q, _ := r.quoPow(mant, n)
	return e.kind.New(q, addInt(exp, n), e.kind.Form(x))
}

// signalOverflow returns the result of an overflowing operation: the largest
// finite value when the rounding mode rounds towards it, infinity otherwise.
func (e *Engine[T]) signalOverflow(ctx *Context, neg bool) (T, error) {
	var zero T
	if err := ctx.signal(FlagOverflow | FlagInexact | FlagRounded); err != nil {
		return zero, err
	}
	var form Form
	if neg {
		form = FormNegative
	}
	if ctx.HasMaxPrecision() && ctx.EMax != nil {
		switch mode := ctx.Rounding; {
		case mode == Down, mode == ZeroFiveUp, mode == Ceiling && neg, mode == Floor && !neg:
			if err := ctx.signal(FlagLostDigits); err != nil {
				return zero, err
			}
			prec := precInt64(ctx)
			mant := new(big.Int).Sub(e.kind.MulRadixPow(bigOne, prec), bigOne)
			return e.kind.New(mant, addInt(ctx.EMax, 1-prec), form), nil
		}
	}
	if e.kind.FiniteOnly() {
		return zero, errors.Wrapf(ErrOverflow, "no infinity in %v", e.kind)
	}
	return e.kind.New(new(big.Int), new(big.Int), form|FormInfinity), nil
}

// signalInvalid raises [FlagInvalid] and returns a quiet NaN.
func (e *Engine[T]) signalInvalid(ctx *Context) (T, error) {
	var zero T
	if e.kind.FiniteOnly() {
		return zero, errors.Wrapf(ErrInvalidOperation, "no NaN in %v", e.kind)
	}
	if err := ctx.signal(FlagInvalid); err != nil {
		return zero, err
	}
	return e.kind.New(new(big.Int), new(big.Int), FormQuietNaN), nil
}

func (e *Engine[T]) isZero(x T) bool {
	return e.kind.Form(x)&FormSpecial == 0 && e.kind.Mantissa(x).Sign() == 0
}

// precInt64 returns the precision of ctx as int64.
func precInt64(ctx *Context) int64 {
	p := ctx.precision()
	if p > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(p)
}
