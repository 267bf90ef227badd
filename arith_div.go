package radixmath

import (
	"math/big"
)

// divGuard answers divisions with infinite or zero operands.
// If done is true, r is the result of the division.
func (a *Arith) divGuard(x, y Value, ctx *Context) (r Value, done bool, err error) {
	if r, ok, err := a.nanOperand(ctx, x, y); ok {
		return r, true, err
	}
	neg := x.IsNeg() != y.IsNeg()
	switch {
	case x.IsInf() && y.IsInf():
		r, err = a.invalid(ctx)
		return r, true, err
	case x.IsInf():
		r, err = a.infinity(neg)
		return r, true, err
	case y.IsZero():
		if x.IsZero() {
			r, err = a.invalid(ctx)
			return r, true, err
		}
		if err := ctx.signal(FlagDivideByZero); err != nil {
			return Value{}, true, err
		}
		r, err = a.infinity(neg)
		return r, true, err
	}
	return Value{}, false, nil
}

// Divide implements the [Kernel] interface.
func (a *Arith) Divide(x, y Value, ctx *Context) (Value, error) {
	if r, done, err := a.divGuard(x, y, ctx); done {
		return r, err
	}
	neg := x.IsNeg() != y.IsNeg()
	if y.IsInf() {
		exp := ctx.etiny()
		if exp == nil {
			exp = bigZero
		} else if err := ctx.signal(FlagClamped); err != nil {
			return Value{}, err
		}
		return a.fix(neg, bigZero, exp, false, ctx)
	}
	ideal := sub(x.e(), y.e())
	if x.IsZero() {
		return a.fix(neg, bigZero, ideal, false, ctx)
	}

	// Unbounded precision
	if !ctx.HasMaxPrecision() {
		coef, shift, ok := a.exactQuo(x.c(), y.c())
		if !ok {
			return a.invalid(ctx)
		}
		return a.fix(neg, coef, addInt(ideal, -shift), false, ctx)
	}

	// Bounded precision
	// The quotient gets at least prec+2 digits, the rest is sticky.
	k := precInt64(ctx) + 2 + a.r.prec(y.c()) - a.r.prec(x.c())
	if k < 0 {
		k = 0
	}
	q, rem := new(big.Int).QuoRem(a.r.lsh(x.c(), k), y.c(), new(big.Int))
	exp := addInt(ideal, -k)
	if rem.Sign() == 0 {
		q, exp = a.reduceTo(q, exp, ideal)
		return a.fix(neg, q, exp, false, ctx)
	}
	return a.fix(neg, q, exp, true, ctx)
}

// exactQuo calculates x / y = coef * radix^-shift.
// It reports false if the quotient has no terminating expansion in the radix.
func (a *Arith) exactQuo(x, y *big.Int) (coef *big.Int, shift int64, ok bool) {
	g := new(big.Int).GCD(nil, nil, x, y)
	num := new(big.Int).Quo(x, g)
	den := new(big.Int).Quo(y, g)
	// den = 2^twos * 5^fives
	twos := int64(den.TrailingZeroBits())
	den.Rsh(den, uint(twos))
	if a.r.base == 2 {
		if den.Cmp(bigOne) != 0 {
			return nil, 0, false
		}
		return num, twos, true
	}
	five := big.NewInt(5)
	var fives int64
	m := new(big.Int)
	for den.Cmp(bigOne) != 0 {
		q, r := new(big.Int).QuoRem(den, five, m)
		if r.Sign() != 0 {
			return nil, 0, false
		}
		den = q
		fives++
	}
	// 1 / (2^twos * 5^fives) = 2^(shift-twos) * 5^(shift-fives) / 10^shift
	shift = max(twos, fives)
	coef = new(big.Int).Lsh(num, uint(shift-twos))
	coef.Mul(coef, new(big.Int).Exp(five, big.NewInt(shift-fives), nil))
	return coef, shift, true
}

// reduceTo removes trailing zeros from coef while the exponent stays at or
// below ideal.
func (a *Arith) reduceTo(coef, exp, ideal *big.Int) (*big.Int, *big.Int) {
	room := sub(ideal, exp)
	if room.Sign() <= 0 {
		return coef, exp
	}
	n := a.r.ntz(coef)
	if room.Cmp(big.NewInt(n)) < 0 {
		n = room.Int64()
	}
	if n == 0 {
		return coef, exp
	}
	q, _ := a.r.quoPow(coef, n)
	return q, addInt(exp, n)
}

// roundQuo rounds the quotient q of a division with remainder rem and
// divisor den. The second result reports whether the division was inexact.
func (a *Arith) roundQuo(q, rem, den *big.Int, neg bool, mode Rounding) (*big.Int, bool, error) {
	if rem.Sign() == 0 {
		return q, false, nil
	}
	half := new(big.Int).Lsh(rem, 1).Cmp(den)
	up, err := a.r.roundUp(q, neg, mode, half)
	if err != nil {
		return nil, true, err
	}
	if up {
		q = new(big.Int).Add(q, bigOne)
	}
	return q, true, nil
}

// alignQuo returns |x| and |y| scaled to the common exponent x.e - y.e - exp,
// so that their quotient is the coefficient of x / y at exponent exp.
func (a *Arith) alignQuo(x, y Value, exp *big.Int) (num, den *big.Int, err error) {
	shift := sub(sub(x.e(), y.e()), exp)
	n, err := int64Of(shift)
	if err != nil {
		return nil, nil, err
	}
	if n >= 0 {
		return a.r.lsh(x.c(), n), y.c(), nil
	}
	return x.c(), a.r.lsh(y.c(), -n), nil
}

// DivideToExponent implements the [Kernel] interface.
func (a *Arith) DivideToExponent(x, y Value, exp *big.Int, ctx *Context) (Value, error) {
	if r, done, err := a.divGuard(x, y, ctx); done {
		return r, err
	}
	neg := x.IsNeg() != y.IsNeg()
	if y.IsInf() || x.IsZero() {
		return a.fix(neg, bigZero, exp, false, ctx)
	}
	// The quotient cannot have fewer digits than this estimate.
	est := sub(sub(x.e(), y.e()), exp)
	est = addInt(est, a.r.prec(x.c())-a.r.prec(y.c())-1)
	if ctx.HasMaxPrecision() && est.Cmp(big.NewInt(precInt64(ctx))) > 0 {
		return a.invalid(ctx)
	}
	if est.Sign() < 0 && est.Cmp(big.NewInt(-a.r.prec(y.c())-2)) < 0 {
		// |x / y| is far below half a unit at exp.
		q, inexact, err := a.r.rsh(bigZero, 0, neg, ctx.rounding(), true)
		if err != nil {
			return Value{}, err
		}
		return a.finishDivideToExponent(neg, q, exp, inexact, ctx)
	}
	num, den, err := a.alignQuo(x, y, exp)
	if err != nil {
		return Value{}, err
	}
	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	q, inexact, err := a.roundQuo(q, rem, den, neg, ctx.rounding())
	if err != nil {
		return Value{}, err
	}
	return a.finishDivideToExponent(neg, q, exp, inexact, ctx)
}

func (a *Arith) finishDivideToExponent(neg bool, q, exp *big.Int, inexact bool, ctx *Context) (Value, error) {
	if ctx.HasMaxPrecision() && a.r.prec(q) > precInt64(ctx) {
		return a.invalid(ctx)
	}
	if inexact {
		if err := ctx.signal(FlagInexact | FlagRounded); err != nil {
			return Value{}, err
		}
	}
	form := Form(0)
	if neg {
		form = FormNegative
	}
	return newValue(form, q, new(big.Int).Set(exp)), nil
}

// DivideToIntegerNaturalScale implements the [Kernel] interface.
func (a *Arith) DivideToIntegerNaturalScale(x, y Value, ctx *Context) (Value, error) {
	return a.divideToInteger(x, y, ctx, true)
}

// DivideToIntegerZeroScale implements the [Kernel] interface.
func (a *Arith) DivideToIntegerZeroScale(x, y Value, ctx *Context) (Value, error) {
	return a.divideToInteger(x, y, ctx, false)
}

// divideToInteger calculates the integer part of x / y.
// With the natural scale the exponent moves towards x.e - y.e.
func (a *Arith) divideToInteger(x, y Value, ctx *Context, natural bool) (Value, error) {
	if r, done, err := a.divGuard(x, y, ctx); done {
		return r, err
	}
	neg := x.IsNeg() != y.IsNeg()
	ideal := sub(x.e(), y.e())
	var q *big.Int
	switch {
	case y.IsInf():
		q = new(big.Int)
	case a.cmpAbs(x, y) < 0:
		q = new(big.Int)
	default:
		if a.intQuoTooLong(x, y, ctx) {
			return a.invalid(ctx)
		}
		num, den, err := a.alignQuo(x, y, bigZero)
		if err != nil {
			return Value{}, err
		}
		q = new(big.Int).Quo(num, den)
	}
	exp := new(big.Int)
	if natural && !y.IsInf() {
		switch ideal.Sign() {
		case 1:
			q, exp = a.reduceTo(q, exp, ideal)
		case -1:
			pad := int64(0)
			if ctx.HasMaxPrecision() {
				pad = precInt64(ctx) - a.r.prec(q)
			} else if ideal.IsInt64() {
				pad = -ideal.Int64()
			}
			if ideal.IsInt64() && pad > -ideal.Int64() {
				pad = -ideal.Int64()
			}
			if q.Sign() != 0 && pad > 0 {
				q, exp = a.r.lsh(q, pad), big.NewInt(-pad)
			} else if q.Sign() == 0 {
				exp = minBig(bigZero, ideal)
			}
		}
	}
	if ctx.HasMaxPrecision() && a.r.prec(q) > precInt64(ctx) {
		return a.invalid(ctx)
	}
	return a.fix(neg, q, exp, false, ctx)
}

// intQuoTooLong reports whether the integer part of |x / y| surely has more
// digits than the precision allows.
func (a *Arith) intQuoTooLong(x, y Value, ctx *Context) bool {
	if !ctx.HasMaxPrecision() {
		return false
	}
	// |x / y| >= radix^(adjusted(x) - adjusted(y) - 1)
	d := sub(addInt(x.e(), a.r.prec(x.c())), addInt(y.e(), a.r.prec(y.c())))
	return d.Cmp(big.NewInt(precInt64(ctx)+1)) > 0
}

// Remainder implements the [Kernel] interface.
func (a *Arith) Remainder(x, y Value, ctx *Context) (Value, error) {
	return a.remainder(x, y, ctx, false)
}

// RemainderNear implements the [Kernel] interface.
func (a *Arith) RemainderNear(x, y Value, ctx *Context) (Value, error) {
	return a.remainder(x, y, ctx, true)
}

// remainder calculates x - y * n, where n is x / y truncated, or rounded
// half to even if near is true.
func (a *Arith) remainder(x, y Value, ctx *Context, near bool) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x, y); ok {
		return r, err
	}
	switch {
	case x.IsInf(), y.IsZero():
		return a.invalid(ctx)
	case y.IsInf():
		return a.fix(x.IsNeg(), x.c(), x.e(), false, ctx)
	case a.intQuoTooLong(x, y, ctx):
		return a.invalid(ctx)
	}
	exp := minBig(x.e(), y.e())
	// If y is far above x, n is 0 and the remainder is x itself.
	if sub(y.e(), x.e()).Cmp(big.NewInt(a.r.prec(x.c())+2)) > 0 {
		return a.fix(x.IsNeg(), x.c(), x.e(), false, ctx)
	}
	xs, err := int64Of(sub(x.e(), exp))
	if err != nil {
		return Value{}, err
	}
	ys, err := int64Of(sub(y.e(), exp))
	if err != nil {
		return Value{}, err
	}
	num, den := a.r.lsh(x.c(), xs), a.r.lsh(y.c(), ys)
	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	neg := x.IsNeg()
	if near && rem.Sign() != 0 {
		half := new(big.Int).Lsh(rem, 1).Cmp(den)
		if half > 0 || (half == 0 && q.Bit(0) != 0) {
			q.Add(q, bigOne)
			rem.Sub(den, rem)
			neg = !neg
		}
	}
	if ctx.HasMaxPrecision() && a.r.prec(q) > precInt64(ctx) {
		return a.invalid(ctx)
	}
	if rem.Sign() == 0 {
		neg = x.IsNeg()
	}
	return a.fix(neg, rem, exp, false, ctx)
}
