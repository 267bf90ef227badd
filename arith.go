package radixmath

import (
	"math"
	"math/big"

	"github.com/cockroachdb/errors"
)

// Arith is the arbitrary-precision arithmetic of [Value] in radix 10 or 2,
// following the General Decimal Arithmetic rules for rounding, exponent
// range and special values.
// Arith implements [Kernel] and is usually wrapped in an [Engine].
type Arith struct {
	kind   Kind[Value]
	r      *rdx
	finite bool
}

// NewArith returns the arithmetic of the given kind.
func NewArith(kind Kind[Value]) *Arith {
	return &Arith{kind: kind, r: radixOf(kind.Radix()), finite: kind.FiniteOnly()}
}

// Kind returns the representation the arithmetic works with.
func (a *Arith) Kind() Kind[Value] {
	return a.kind
}

// fix rounds (-1)^neg * (coef + sticky) * radix^exp to ctx and raises the
// resulting conditions.
func (a *Arith) fix(neg bool, coef, exp *big.Int, sticky bool, ctx *Context) (Value, error) {
	v, flags, err := a.round(neg, coef, exp, sticky, ctx)
	if err != nil {
		return Value{}, err
	}
	if err := ctx.signal(flags); err != nil {
		return Value{}, err
	}
	return v, nil
}

// round rounds (-1)^neg * (coef + sticky) * radix^exp to the precision and
// exponent range of ctx. If sticky is true, the value is slightly larger
// than coef, by less than one unit in its last digit.
// round only reads ctx, the raised conditions are returned.
func (a *Arith) round(neg bool, coef, exp *big.Int, sticky bool, ctx *Context) (Value, Flags, error) {
	var flags Flags
	form := Form(0)
	if neg {
		form = FormNegative
	}
	prec := precInt64(ctx)
	etiny := ctx.etiny()

	// Zeros
	if coef.Sign() == 0 && !sticky {
		if ctx != nil && ctx.EMax != nil && exp.Cmp(ctx.EMax) > 0 {
			exp = ctx.EMax
			flags |= FlagClamped
		}
		if etiny != nil && exp.Cmp(etiny) < 0 {
			exp = etiny
			flags |= FlagClamped
		}
		return newValue(form, nil, exp), flags, nil
	}

	// Precision and subnormal range
	digits := a.r.prec(coef)
	subnormal := etiny != nil && addInt(exp, digits-1).Cmp(ctx.EMin) < 0
	if subnormal {
		flags |= FlagSubnormal
	}
	var shift int64
	if prec > 0 && digits > prec {
		shift = digits - prec
	}
	target := addInt(exp, shift)
	if prec > 0 && etiny != nil && target.Cmp(etiny) < 0 {
		target = etiny
	}
	if delta := sub(target, exp); delta.Sign() > 0 || sticky {
		n := digits + 2
		if delta.Cmp(big.NewInt(n)) < 0 {
			n = delta.Int64()
		}
		q, inexact, err := a.r.rsh(coef, n, neg, ctx.rounding(), sticky)
		if err != nil {
			return Value{}, 0, err
		}
		if delta.Sign() > 0 {
			flags |= FlagRounded
		}
		if inexact {
			flags |= FlagInexact | FlagRounded
			if subnormal {
				flags |= FlagUnderflow
				if q.Sign() == 0 {
					flags |= FlagClamped
				}
			}
		}
		coef, exp = q, target
		if prec > 0 && a.r.prec(coef) > prec {
			coef, _ = a.r.quoPow(coef, 1)
			exp = addInt(exp, 1)
		}
	}

	// Overflow
	if ctx != nil && ctx.EMax != nil && coef.Sign() != 0 && addInt(exp, a.r.prec(coef)-1).Cmp(ctx.EMax) > 0 {
		flags |= FlagOverflow | FlagInexact | FlagRounded
		if prec > 0 && saturates(ctx.rounding(), neg) {
			coef = new(big.Int).Sub(a.r.pow(prec), bigOne)
			exp = addInt(ctx.EMax, 1-prec)
			return newValue(form, coef, exp), flags, nil
		}
		if a.finite {
			return Value{}, 0, errors.Wrapf(ErrOverflow, "no infinity in %v", a.kind)
		}
		return Inf(neg), flags, nil
	}
	return newValue(form, coef, exp), flags, nil
}

// saturates reports whether an overflowing result rounds to the largest
// finite value rather than to infinity.
func saturates(mode Rounding, neg bool) bool {
	switch mode {
	case Down, ZeroFiveUp:
		return true
	case Ceiling:
		return neg
	case Floor:
		return !neg
	}
	return false
}

// invalid raises [FlagInvalid] and returns a quiet NaN.
func (a *Arith) invalid(ctx *Context) (Value, error) {
	if a.finite {
		return Value{}, errors.Wrapf(ErrInvalidOperation, "no NaN in %v", a.kind)
	}
	if err := ctx.signal(FlagInvalid); err != nil {
		return Value{}, err
	}
	return NaN(false, 0), nil
}

// infinity returns a signed infinity.
func (a *Arith) infinity(neg bool) (Value, error) {
	if a.finite {
		return Value{}, errors.Wrapf(ErrOverflow, "no infinity in %v", a.kind)
	}
	return Inf(neg), nil
}

// nanOperand answers operations with NaN operands.
// Signaling NaNs are invalid and become quiet, quiet NaNs propagate.
func (a *Arith) nanOperand(ctx *Context, ops ...Value) (Value, bool, error) {
	for _, x := range ops {
		if x.IsSignaling() {
			if err := ctx.signal(FlagInvalid); err != nil {
				return Value{}, true, err
			}
			x.form = x.form&FormNegative | FormQuietNaN
			return x, true, nil
		}
	}
	for _, x := range ops {
		if x.IsNaN() {
			return x, true, nil
		}
	}
	return Value{}, false, nil
}

// zeroNeg returns the sign of an exact zero sum of operands with signs xneg and yneg.
func zeroNeg(xneg, yneg bool, ctx *Context) bool {
	if xneg == yneg {
		return xneg
	}
	return ctx.rounding() == Floor
}

// AddEx implements the [Kernel] interface.
func (a *Arith) AddEx(x, y Value, ctx *Context, roundToOperandPrecision bool) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x, y); ok {
		return r, err
	}
	if x.IsInf() || y.IsInf() {
		switch {
		case x.IsInf() && y.IsInf() && x.IsNeg() != y.IsNeg():
			return a.invalid(ctx)
		case x.IsInf():
			return x, nil
		}
		return y, nil
	}
	if roundToOperandPrecision && ctx.HasMaxPrecision() {
		var err error
		if x, err = a.roundOperand(x, ctx); err != nil {
			return Value{}, err
		}
		if y, err = a.roundOperand(y, ctx); err != nil {
			return Value{}, err
		}
	}
	return a.add(x, y, ctx)
}

// roundOperand rounds an operand with more digits than the precision.
func (a *Arith) roundOperand(x Value, ctx *Context) (Value, error) {
	if a.r.prec(x.c()) <= precInt64(ctx) {
		return x, nil
	}
	return a.fix(x.IsNeg(), x.c(), x.e(), false, ctx)
}

// add calculates x + y for finite x and y.
func (a *Arith) add(x, y Value, ctx *Context) (Value, error) {
	// Alignment
	hi, lo := x, y
	if x.e().Cmp(y.e()) < 0 {
		hi, lo = y, x
	}
	diff := sub(hi.e(), lo.e())
	hc, lc := hi.c(), lo.c()

	// Special cases
	switch {
	case hc.Sign() == 0 && lc.Sign() == 0:
		return a.fix(zeroNeg(x.IsNeg(), y.IsNeg(), ctx), bigZero, lo.e(), false, ctx)
	case hc.Sign() == 0:
		return a.fix(lo.IsNeg(), lc, lo.e(), false, ctx)
	case lc.Sign() == 0 && ctx.HasMaxPrecision():
		// The exponent moves towards lo.e() as far as the precision allows.
		pad := precInt64(ctx) - a.r.prec(hc)
		if pad < 0 {
			pad = 0
		}
		if diff.Cmp(big.NewInt(pad)) < 0 {
			pad = diff.Int64()
		}
		return a.fix(hi.IsNeg(), a.r.lsh(hc, pad), addInt(hi.e(), -pad), false, ctx)
	case ctx.HasMaxPrecision():
		// If lo is below the last digit hi can keep, it only breaks ties.
		hd, ld := a.r.prec(hc), a.r.prec(lc)
		k := precInt64(ctx) + 3 - hd
		if k < 1 {
			k = 1
		}
		if diff.Cmp(big.NewInt(ld+k)) >= 0 {
			coef := a.r.lsh(hc, k)
			if hi.IsNeg() != lo.IsNeg() {
				coef.Sub(coef, bigOne)
			}
			return a.fix(hi.IsNeg(), coef, addInt(hi.e(), -k), true, ctx)
		}
	}

	// General case
	shift, err := int64Of(diff)
	if err != nil {
		return Value{}, err
	}
	hs := a.r.lsh(hc, shift)
	if hi.IsNeg() {
		hs.Neg(hs)
	}
	ls := new(big.Int).Set(lc)
	if lo.IsNeg() {
		ls.Neg(ls)
	}
	sum := hs.Add(hs, ls)
	if sum.Sign() == 0 {
		return a.fix(zeroNeg(x.IsNeg(), y.IsNeg(), ctx), bigZero, lo.e(), false, ctx)
	}
	neg := sum.Sign() < 0
	return a.fix(neg, sum.Abs(sum), lo.e(), false, ctx)
}

// Negate implements the [Kernel] interface.
func (a *Arith) Negate(x Value, ctx *Context) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x); ok {
		return r, err
	}
	if x.IsInf() {
		return x.neg(), nil
	}
	if x.IsZero() {
		return a.fix(ctx.rounding() == Floor, bigZero, x.e(), false, ctx)
	}
	return a.fix(!x.IsNeg(), x.c(), x.e(), false, ctx)
}

// Abs implements the [Kernel] interface.
func (a *Arith) Abs(x Value, ctx *Context) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x); ok {
		return r, err
	}
	if x.IsInf() {
		return x.abs(), nil
	}
	return a.fix(false, x.c(), x.e(), false, ctx)
}

// Plus implements the [Kernel] interface.
func (a *Arith) Plus(x Value, ctx *Context) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x); ok {
		return r, err
	}
	if x.IsInf() {
		return x, nil
	}
	if x.IsZero() {
		return a.fix(zeroNeg(false, x.IsNeg(), ctx), bigZero, x.e(), false, ctx)
	}
	return a.fix(x.IsNeg(), x.c(), x.e(), false, ctx)
}

// RoundToPrecision implements the [Kernel] interface.
func (a *Arith) RoundToPrecision(x Value, ctx *Context) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x); ok {
		return r, err
	}
	if x.IsInf() {
		return x, nil
	}
	return a.fix(x.IsNeg(), x.c(), x.e(), false, ctx)
}

// RoundToBinaryPrecision implements the [Kernel] interface.
// For radix 10 the exponent range is applied as if the precision were unbounded.
func (a *Arith) RoundToBinaryPrecision(x Value, ctx *Context) (Value, error) {
	if a.r.base == 2 || !ctx.HasMaxPrecision() {
		return a.RoundToPrecision(x, ctx)
	}
	if r, ok, err := a.nanOperand(ctx, x); ok {
		return r, err
	}
	if x.IsInf() {
		return x, nil
	}
	bits := precInt64(ctx)
	coef, exp := x.c(), x.e()
	if int64(coef.BitLen()) <= bits {
		return a.fix(x.IsNeg(), coef, exp, false, ctx.WithPrecision(0))
	}
	// 2^(bitlen-1) <= coef, so fewer digits than the estimate cannot fit.
	shift := int64(float64(int64(coef.BitLen())-1-bits) * log10of2)
	if shift < 0 {
		shift = 0
	}
	var flags Flags
	for {
		q, inexact, err := a.r.rsh(coef, shift, x.IsNeg(), ctx.rounding(), false)
		if err != nil {
			return Value{}, err
		}
		if int64(q.BitLen()) <= bits {
			if shift > 0 {
				flags |= FlagRounded
			}
			if inexact {
				flags |= FlagInexact
			}
			coef, exp = q, addInt(exp, shift)
			break
		}
		shift++
	}
	if err := ctx.signal(flags); err != nil {
		return Value{}, err
	}
	return a.fix(x.IsNeg(), coef, exp, false, ctx.WithPrecision(0))
}

// Multiply implements the [Kernel] interface.
func (a *Arith) Multiply(x, y Value, ctx *Context) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x, y); ok {
		return r, err
	}
	neg := x.IsNeg() != y.IsNeg()
	if x.IsInf() || y.IsInf() {
		if x.IsZero() || y.IsZero() {
			return a.invalid(ctx)
		}
		return a.infinity(neg)
	}
	coef := new(big.Int).Mul(x.c(), y.c())
	exp := new(big.Int).Add(x.e(), y.e())
	return a.fix(neg, coef, exp, false, ctx)
}

// Compare implements the [Kernel] interface.
func (a *Arith) Compare(x, y Value) int {
	// Special cases
	switch {
	case x.IsNaN() && y.IsNaN():
		return 0
	case x.IsNaN():
		return 1
	case y.IsNaN():
		return -1
	}
	// Sign
	sx, sy := x.Sign(), y.Sign()
	switch {
	case sx < sy:
		return -1
	case sx > sy:
		return 1
	case sx == 0:
		return 0
	}
	// Magnitude
	c := a.cmpAbs(x, y)
	if sx < 0 {
		return -c
	}
	return c
}

// cmpAbs compares |x| and |y| for non-NaN x and y.
func (a *Arith) cmpAbs(x, y Value) int {
	// Special cases
	switch {
	case x.IsInf() && y.IsInf():
		return 0
	case x.IsInf():
		return 1
	case y.IsInf():
		return -1
	}
	xc, yc := x.c(), y.c()
	switch {
	case xc.Sign() == 0 && yc.Sign() == 0:
		return 0
	case xc.Sign() == 0:
		return -1
	case yc.Sign() == 0:
		return 1
	}
	// Adjusted exponents
	xd, yd := a.r.prec(xc), a.r.prec(yc)
	if c := addInt(x.e(), xd).Cmp(addInt(y.e(), yd)); c != 0 {
		return c
	}
	// Equal adjusted exponents bound the alignment shift by the digit counts.
	switch diff := sub(x.e(), y.e()); diff.Sign() {
	case 1:
		return a.r.lsh(xc, diff.Int64()).Cmp(yc)
	case -1:
		return xc.Cmp(a.r.lsh(yc, -diff.Int64()))
	}
	return xc.Cmp(yc)
}

// cmpTotal compares x and y numerically and breaks ties between equal
// values by sign, then by exponent.
func (a *Arith) cmpTotal(x, y Value) int {
	if c := a.Compare(x, y); c != 0 {
		return c
	}
	switch {
	case x.IsNeg() && !y.IsNeg():
		return -1
	case !x.IsNeg() && y.IsNeg():
		return 1
	}
	c := x.e().Cmp(y.e())
	if x.IsNeg() {
		return -c
	}
	return c
}

// CompareToWithContext implements the [Kernel] interface.
func (a *Arith) CompareToWithContext(x, y Value, treatQuietNaNsAsSignaling bool, ctx *Context) (Value, error) {
	if treatQuietNaNsAsSignaling && (x.IsNaN() || y.IsNaN()) {
		return a.invalid(ctx)
	}
	if r, ok, err := a.nanOperand(ctx, x, y); ok {
		return r, err
	}
	return a.kind.ValueOf(int64(a.Compare(x, y))), nil
}

// MaxMagnitude implements the [Kernel] interface.
func (a *Arith) MaxMagnitude(x, y Value, ctx *Context) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x, y); ok {
		return r, err
	}
	c := a.cmpAbs(x, y)
	if c == 0 {
		c = a.cmpTotal(x, y)
	}
	if c >= 0 {
		return a.RoundToPrecision(x, ctx)
	}
	return a.RoundToPrecision(y, ctx)
}

// MinMagnitude implements the [Kernel] interface.
func (a *Arith) MinMagnitude(x, y Value, ctx *Context) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x, y); ok {
		return r, err
	}
	c := a.cmpAbs(x, y)
	if c == 0 {
		c = a.cmpTotal(x, y)
	}
	if c <= 0 {
		return a.RoundToPrecision(x, ctx)
	}
	return a.RoundToPrecision(y, ctx)
}

// bitsPerDigit returns log2(radix).
func (a *Arith) bitsPerDigit() float64 {
	return math.Log2(float64(a.r.base))
}
