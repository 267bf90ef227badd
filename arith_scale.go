package radixmath

import (
	"math/big"
)

// Quantize implements the [Kernel] interface.
func (a *Arith) Quantize(x, y Value, ctx *Context) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x, y); ok {
		return r, err
	}
	switch {
	case x.IsInf() && y.IsInf():
		return x, nil
	case x.IsInf(), y.IsInf():
		return a.invalid(ctx)
	}
	target := y.e()
	if ctx != nil && ctx.EMax != nil && target.Cmp(ctx.EMax) > 0 {
		return a.invalid(ctx)
	}
	if etiny := ctx.etiny(); etiny != nil && target.Cmp(etiny) < 0 {
		return a.invalid(ctx)
	}
	coef, flags, ok, err := a.rescale(x, target, ctx.rounding(), ctx)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return a.invalid(ctx)
	}
	if coef.Sign() != 0 && ctx != nil && ctx.EMin != nil &&
		addInt(target, a.r.prec(coef)-1).Cmp(ctx.EMin) < 0 {
		flags |= FlagSubnormal
		if flags&FlagInexact != 0 {
			flags |= FlagUnderflow
		}
	}
	if err := ctx.signal(flags); err != nil {
		return Value{}, err
	}
	form := Form(0)
	if x.IsNeg() {
		form = FormNegative
	}
	return newValue(form, coef, new(big.Int).Set(target)), nil
}

// rescale returns the coefficient of x at exponent target, rounded with mode.
// It reports false if the coefficient does not fit the precision of ctx.
func (a *Arith) rescale(x Value, target *big.Int, mode Rounding, ctx *Context) (*big.Int, Flags, bool, error) {
	var flags Flags
	coef := x.c()
	delta := sub(target, x.e())
	switch delta.Sign() {
	case 1:
		n := a.r.prec(coef) + 2
		if delta.Cmp(big.NewInt(n)) < 0 {
			n = delta.Int64()
		}
		q, inexact, err := a.r.rsh(coef, n, x.IsNeg(), mode, false)
		if err != nil {
			return nil, 0, false, err
		}
		flags |= FlagRounded
		if inexact {
			flags |= FlagInexact
		}
		coef = q
	case -1:
		if coef.Sign() == 0 {
			break
		}
		pad := new(big.Int).Neg(delta)
		if ctx.HasMaxPrecision() && addInt(pad, a.r.prec(coef)).Cmp(big.NewInt(precInt64(ctx))) > 0 {
			return nil, 0, false, nil
		}
		n, err := int64Of(pad)
		if err != nil {
			return nil, 0, false, err
		}
		coef = a.r.lsh(coef, n)
	}
	if ctx.HasMaxPrecision() && a.r.prec(coef) > precInt64(ctx) {
		return nil, 0, false, nil
	}
	return coef, flags, true, nil
}

// Reduce implements the [Kernel] interface.
func (a *Arith) Reduce(x Value, ctx *Context) (Value, error) {
	x, err := a.RoundToPrecision(x, ctx)
	if err != nil || !x.IsFinite() {
		return x, err
	}
	if x.IsZero() {
		return newValue(x.form, nil, nil), nil
	}
	n := a.r.ntz(x.c())
	if n == 0 {
		return x, nil
	}
	q, _ := a.r.quoPow(x.c(), n)
	return newValue(x.form, q, addInt(x.e(), n)), nil
}

// roundMode selects the conditions raised by the RoundToExponent operations.
type roundMode uint8

const (
	roundSimple roundMode = iota
	roundExact
	roundNoRoundedFlag
)

// RoundToExponentExact implements the [Kernel] interface.
func (a *Arith) RoundToExponentExact(x Value, exp *big.Int, ctx *Context) (Value, error) {
	return a.roundToExponent(x, exp, ctx, roundExact)
}

// RoundToExponentSimple implements the [Kernel] interface.
func (a *Arith) RoundToExponentSimple(x Value, exp *big.Int, ctx *Context) (Value, error) {
	return a.roundToExponent(x, exp, ctx, roundSimple)
}

// RoundToExponentNoRoundedFlag implements the [Kernel] interface.
func (a *Arith) RoundToExponentNoRoundedFlag(x Value, exp *big.Int, ctx *Context) (Value, error) {
	return a.roundToExponent(x, exp, ctx, roundNoRoundedFlag)
}

// roundToExponent rounds x to exponent exp. Values whose exponent is at
// or above exp are only rounded to the precision.
func (a *Arith) roundToExponent(x Value, exp *big.Int, ctx *Context, mode roundMode) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x); ok {
		return r, err
	}
	if x.IsInf() || x.e().Cmp(exp) >= 0 {
		return a.RoundToPrecision(x, ctx)
	}
	coef, flags, _, err := a.rescale(x, exp, ctx.rounding(), nil)
	if err != nil {
		return Value{}, err
	}
	switch mode {
	case roundExact:
		if flags&FlagInexact != 0 {
			return a.invalid(ctx)
		}
	case roundNoRoundedFlag:
		flags &^= FlagRounded
	}
	if err := ctx.signal(flags); err != nil {
		return Value{}, err
	}
	return a.fix(x.IsNeg(), coef, exp, false, ctx)
}

// NextPlus implements the [Kernel] interface.
func (a *Arith) NextPlus(x Value, ctx *Context) (Value, error) {
	return a.next(x, true, ctx)
}

// NextMinus implements the [Kernel] interface.
func (a *Arith) NextMinus(x Value, ctx *Context) (Value, error) {
	return a.next(x, false, ctx)
}

// next returns the value adjacent to x in the given direction.
// No conditions are raised.
func (a *Arith) next(x Value, up bool, ctx *Context) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x); ok {
		return r, err
	}
	if !ctx.HasMaxPrecision() {
		return a.invalid(ctx)
	}
	r, _, err := a.step(x, up, ctx)
	return r, err
}

// step returns the value adjacent to x in the given direction and the
// conditions rounding raised. The precision of ctx must be bounded.
func (a *Arith) step(x Value, up bool, ctx *Context) (Value, Flags, error) {
	prec := precInt64(ctx)
	if x.IsInf() {
		if x.IsNeg() != up {
			return x, 0, nil
		}
		// The largest finite value of the same sign.
		if ctx.EMax == nil {
			v, err := a.invalid(ctx)
			return v, 0, err
		}
		coef := new(big.Int).Sub(a.r.pow(prec), bigOne)
		return newValue(x.form&FormNegative, coef, addInt(ctx.EMax, 1-prec)), 0, nil
	}
	if x.IsZero() {
		etiny := ctx.etiny()
		if etiny == nil {
			v, err := a.invalid(ctx)
			return v, 0, err
		}
		form := Form(0)
		if !up {
			form = FormNegative
		}
		return newValue(form, big.NewInt(1), new(big.Int).Set(etiny)), FlagSubnormal, nil
	}
	// Pad the coefficient with k zeros and move it by less than one unit
	// in its last digit, then round in the direction of the step.
	k := prec + 2 - a.r.prec(x.c())
	if k < 1 {
		k = 1
	}
	coef := a.r.lsh(x.c(), k)
	towardZero := up == x.IsNeg()
	if towardZero {
		coef.Sub(coef, bigOne)
	}
	mode := Floor
	if up {
		mode = Ceiling
	}
	return a.round(x.IsNeg(), coef, addInt(x.e(), -k), true, ctx.WithRounding(mode))
}

// NextToward implements the [Kernel] interface.
func (a *Arith) NextToward(x, y Value, ctx *Context) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x, y); ok {
		return r, err
	}
	c := a.Compare(x, y)
	if c == 0 {
		if x.IsInf() {
			return x, nil
		}
		return a.fix(y.IsNeg(), x.c(), x.e(), false, ctx)
	}
	if !ctx.HasMaxPrecision() {
		return a.invalid(ctx)
	}
	r, flags, err := a.step(x, c < 0, ctx)
	if err != nil {
		return Value{}, err
	}
	var raise Flags
	switch {
	case r.IsInf() && x.IsFinite():
		raise = FlagOverflow | FlagInexact | FlagRounded
	case r.IsFinite() && (r.IsZero() || flags&FlagSubnormal != 0):
		raise = FlagUnderflow | FlagSubnormal | FlagInexact | FlagRounded
		if r.IsZero() {
			raise |= FlagClamped
		}
	}
	if err := ctx.signal(raise); err != nil {
		return Value{}, err
	}
	return r, nil
}
