package radixmath

import (
	"math"
	"math/big"
	"math/bits"
	"sync"

	"github.com/cockroachdb/errors"
)

// The functions below compute with binary fixed-point numbers: an integer v
// at w fractional bits stands for v / 2^w.

// shrFix calculates x / 2^n truncated towards zero.
func shrFix(x *big.Int, n uint) *big.Int {
	if x.Sign() >= 0 {
		return new(big.Int).Rsh(x, n)
	}
	z := new(big.Int).Neg(x)
	z.Rsh(z, n)
	return z.Neg(z)
}

// mulFix calculates x * y for fixed-point x and y.
func mulFix(x, y *big.Int, w uint) *big.Int {
	return shrFix(new(big.Int).Mul(x, y), w)
}

// atanhInv calculates atanh(1 / n) for an integer n > 1.
func atanhInv(n int64, w uint) *big.Int {
	term := new(big.Int).Lsh(bigOne, w)
	term.Quo(term, big.NewInt(n))
	n2 := big.NewInt(n * n)
	sum := new(big.Int).Set(term)
	t := new(big.Int)
	for k := int64(1); ; k++ {
		term.Quo(term, n2)
		if term.Sign() == 0 {
			break
		}
		sum.Add(sum, t.Quo(term, big.NewInt(2*k+1)))
	}
	return sum
}

// atanInv calculates atan(1 / n) for an integer n > 1.
func atanInv(n int64, w uint) *big.Int {
	term := new(big.Int).Lsh(bigOne, w)
	term.Quo(term, big.NewInt(n))
	n2 := big.NewInt(n * n)
	sum := new(big.Int).Set(term)
	t := new(big.Int)
	for k := int64(1); ; k++ {
		term.Quo(term, n2)
		if term.Sign() == 0 {
			break
		}
		t.Quo(term, big.NewInt(2*k+1))
		if k%2 == 1 {
			sum.Sub(sum, t)
		} else {
			sum.Add(sum, t)
		}
	}
	return sum
}

// atanhFix calculates atanh(z) for a fixed-point |z| <= 1/3.
func atanhFix(z *big.Int, w uint) *big.Int {
	z2 := mulFix(z, z, w)
	sum := new(big.Int).Set(z)
	term := new(big.Int).Set(z)
	t := new(big.Int)
	for k := int64(1); ; k++ {
		term = mulFix(term, z2, w)
		if term.Sign() == 0 {
			break
		}
		sum.Add(sum, t.Quo(term, big.NewInt(2*k+1)))
	}
	return sum
}

// constCache keeps the most precise approximation of a constant computed so far.
type constCache struct {
	mu   sync.Mutex
	w    uint
	v    *big.Int
	calc func(w uint) *big.Int
}

func (c *constCache) get(w uint) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.v == nil || c.w < w {
		c.w = w + 64
		c.v = c.calc(c.w)
	}
	return new(big.Int).Rsh(c.v, c.w-w)
}

var (
	// ln 2 = 2 atanh(1/3)
	ln2Cache = &constCache{calc: func(w uint) *big.Int {
		v := atanhInv(3, w)
		return v.Lsh(v, 1)
	}}
	// ln 10 = 3 ln 2 + ln 1.25 = 3 ln 2 + 2 atanh(1/9)
	ln10Cache = &constCache{calc: func(w uint) *big.Int {
		v := atanhInv(9, w)
		v.Lsh(v, 1)
		l2 := atanhInv(3, w)
		l2.Mul(l2, big.NewInt(6))
		return v.Add(v, l2)
	}}
	// π = 16 atan(1/5) - 4 atan(1/239)
	piCache = &constCache{calc: func(w uint) *big.Int {
		v := atanInv(5, w)
		v.Lsh(v, 4)
		t := atanInv(239, w)
		t.Lsh(t, 2)
		return v.Sub(v, t)
	}}
)

// lnRadix returns ln(radix).
func (a *Arith) lnRadix(w uint) *big.Int {
	if a.r.base == 2 {
		return ln2Cache.get(w)
	}
	return ln10Cache.get(w)
}

// lnGuard returns the number of extra bits lnFix needs to keep its error
// below a few units.
func lnGuard(c *big.Int, e int64) uint {
	if e < 0 {
		e = -e
	}
	return 40 + uint(bits.Len64(uint64(e))) + uint(bits.Len(uint(c.BitLen())))
}

// lnFix calculates ln(c * radix^e) for c > 0.
func (a *Arith) lnFix(c *big.Int, e int64, w uint) *big.Int {
	// c = m * 2^bl, 1/2 <= m < 1
	bl := uint(c.BitLen())
	var m *big.Int
	if bl <= w {
		m = new(big.Int).Lsh(c, w-bl)
	} else {
		m = new(big.Int).Rsh(c, bl-w)
	}
	// ln m = 2 atanh((m - 1) / (m + 1))
	one := new(big.Int).Lsh(bigOne, w)
	z := new(big.Int).Sub(m, one)
	z.Lsh(z, w)
	z.Quo(z, new(big.Int).Add(m, one))
	r := atanhFix(z, w)
	r.Lsh(r, 1)
	r.Add(r, new(big.Int).Mul(ln2Cache.get(w), big.NewInt(int64(bl))))
	if e != 0 {
		r.Add(r, new(big.Int).Mul(a.lnRadix(w), big.NewInt(e)))
	}
	return r
}

// expFix calculates e^x = v * 2^n, where 1 <= v < 2. The integer n must
// fit int64, callers keep |x| below 2^30.
func expFix(x *big.Int, w uint) (v *big.Int, n int64) {
	ln2 := ln2Cache.get(w)
	q := new(big.Int).Div(x, ln2)
	f := new(big.Int).Sub(x, new(big.Int).Mul(q, ln2))
	// Taylor series, 0 <= f < ln 2
	sum := new(big.Int).Lsh(bigOne, w)
	term := new(big.Int).Set(sum)
	for k := int64(1); ; k++ {
		term = mulFix(term, f, w)
		term.Quo(term, big.NewInt(k))
		if term.Sign() == 0 {
			break
		}
		sum.Add(sum, term)
	}
	return sum, q.Int64()
}

// digitsPerBit returns log_radix(2).
func (a *Arith) digitsPerBit() float64 {
	if a.r.base == 2 {
		return 1
	}
	return log10of2
}

// approx rounds a real number to ctx.
// The function f computes the number with w fractional working bits and
// returns v and s such that |v * 2^s - x| < 256 * 2^s, where x is the number
// being approximated, and v has about as many bits as the working precision.
// The result is correctly rounded unless x lies exactly on a rounding
// boundary, in which case it is off by at most one unit in the last place.
func (a *Arith) approx(ctx *Context, neg bool, f func(w uint) (*big.Int, int64, error)) (Value, error) {
	prec := precInt64(ctx)
	var r Value
	var flags Flags
	for guard := int64(4); guard <= 256; guard *= 2 {
		want := prec + guard
		need := int(float64(want)*a.bitsPerDigit()) + 16
		w := uint(need)
		var v *big.Int
		var s int64
		for tries := 0; ; tries++ {
			var err error
			v, s, err = f(w)
			if err != nil {
				return Value{}, err
			}
			if v.BitLen() >= need {
				break
			}
			if tries == 64 {
				return Value{}, errors.AssertionFailedf("approximation does not converge at %v bits", w)
			}
			if v.Sign() == 0 {
				w *= 2
			} else {
				w += uint(need-v.BitLen()) + 8
			}
		}
		vneg := v.Sign() < 0
		v = new(big.Int).Abs(v)

		// m = ⌊v * 2^s * radix^q⌋ has want or want+1 digits.
		q := want - int64(math.Floor(float64(int64(v.BitLen())+s)*a.digitsPerBit()))
		num, den := new(big.Int).Set(v), big.NewInt(1)
		if s >= 0 {
			num.Lsh(num, uint(s))
		} else {
			den.Lsh(den, uint(-s))
		}
		if q >= 0 {
			num.Mul(num, a.r.pow(q))
		} else {
			den.Mul(den, a.r.pow(-q))
		}
		m := num.Quo(num, den)

		// x * radix^q lies strictly between m - 1 and m + 2.
		exp := big.NewInt(-q)
		lo, flo, err := a.round(neg != vneg, new(big.Int).Sub(m, bigOne), exp, true, ctx)
		if err != nil {
			return Value{}, err
		}
		hi, fhi, err := a.round(neg != vneg, new(big.Int).Add(m, bigOne), exp, true, ctx)
		if err != nil {
			return Value{}, err
		}
		r, flags = hi, fhi
		if lo.Identical(hi) && flo == fhi {
			break
		}
	}
	if err := ctx.signal(flags); err != nil {
		return Value{}, err
	}
	return r, nil
}

// float64Of approximates a finite x.
// Values beyond the float64 range become infinities or zeros.
func (a *Arith) float64Of(x Value) float64 {
	if x.IsZero() {
		return 0
	}
	d := a.r.prec(x.c())
	adj := addInt(x.e(), d-1)
	limit := int64(1000 * a.digitsPerBit())
	sign := 1.0
	if x.IsNeg() {
		sign = -1
	}
	switch {
	case adj.Cmp(big.NewInt(limit)) > 0:
		return math.Inf(int(sign))
	case adj.Cmp(big.NewInt(-limit)) < 0:
		return 0
	}
	drop := max(d-20, 0)
	top, _ := a.r.quoPow(x.c(), drop)
	f, _ := new(big.Float).SetInt(top).Float64()
	return sign * f * math.Pow(float64(a.r.base), float64(addInt(x.e(), drop).Int64()))
}

// lnEstimate approximates ln(x) for a positive finite x.
// The estimate is poor when x is close to 1.
func (a *Arith) lnEstimate(x Value) float64 {
	drop := max(a.r.prec(x.c())-20, 0)
	top, _ := a.r.quoPow(x.c(), drop)
	f, _ := new(big.Float).SetInt(top).Float64()
	k, _ := new(big.Float).SetInt(addInt(x.e(), drop)).Float64()
	return math.Log(f) + k*math.Log(float64(a.r.base))
}

// expBounds answers e^t when the result is certainly outside the exponent
// range of ctx or too large to calculate.
func (a *Arith) expBounds(t float64, neg bool, ctx *Context) (Value, bool, error) {
	adj := t / math.Log(float64(a.r.base))
	if ctx != nil && ctx.EMax != nil {
		emax, _ := new(big.Float).SetInt(ctx.EMax).Float64()
		if adj > emax+2 {
			v, err := a.fix(neg, bigOne, addInt(ctx.EMax, 2), false, ctx)
			return v, true, err
		}
	}
	if etiny := ctx.etiny(); etiny != nil {
		et, _ := new(big.Float).SetInt(etiny).Float64()
		if adj < et-2 {
			v, err := a.fix(neg, bigOne, addInt(etiny, -2), false, ctx)
			return v, true, err
		}
	}
	if math.Abs(t) > 1<<30 || math.IsNaN(t) {
		return Value{}, true, errors.Wrapf(ErrExponentRange, "e^%g", t)
	}
	return Value{}, false, nil
}

// isOne reports whether |x| is exactly 1.
func (a *Arith) isOne(x Value) bool {
	if !x.IsFinite() || x.IsZero() {
		return false
	}
	n := a.r.ntz(x.c())
	q, _ := a.r.quoPow(x.c(), n)
	return q.Cmp(bigOne) == 0 && addInt(x.e(), n).Sign() == 0
}

// tenPower returns k if x is exactly 10^k.
func (a *Arith) tenPower(x Value) (int64, bool) {
	n := a.r.ntz(x.c())
	q, _ := a.r.quoPow(x.c(), n)
	e := addInt(x.e(), n)
	if !e.IsInt64() {
		return 0, false
	}
	if a.r.base == 10 {
		return e.Int64(), q.Cmp(bigOne) == 0
	}
	// 10^k = 5^k * 2^k, so q must be 5^k with k = e.
	k := e.Int64()
	if k < 0 || k > 1<<16 {
		return 0, false
	}
	return k, q.Cmp(new(big.Int).Exp(big.NewInt(5), big.NewInt(k), nil)) == 0
}

// Ln implements the [Kernel] interface.
func (a *Arith) Ln(x Value, ctx *Context) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x); ok {
		return r, err
	}
	switch {
	case x.IsZero():
		return a.infinity(true)
	case x.IsNeg():
		return a.invalid(ctx)
	case x.IsInf():
		return x, nil
	case a.isOne(x):
		return a.fix(false, bigZero, bigZero, false, ctx)
	case !ctx.HasMaxPrecision():
		return a.invalid(ctx)
	}
	e, err := int64Of(x.e())
	if err != nil {
		return Value{}, err
	}
	g := lnGuard(x.c(), e)
	return a.approx(ctx, false, func(w uint) (*big.Int, int64, error) {
		return shrFix(a.lnFix(x.c(), e, w+g), g), -int64(w), nil
	})
}

// Log10 implements the [Kernel] interface.
func (a *Arith) Log10(x Value, ctx *Context) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x); ok {
		return r, err
	}
	switch {
	case x.IsZero():
		return a.infinity(true)
	case x.IsNeg():
		return a.invalid(ctx)
	case x.IsInf():
		return x, nil
	}
	if k, ok := a.tenPower(x); ok {
		return a.fix(k < 0, new(big.Int).Abs(big.NewInt(k)), bigZero, false, ctx)
	}
	if !ctx.HasMaxPrecision() {
		return a.invalid(ctx)
	}
	e, err := int64Of(x.e())
	if err != nil {
		return Value{}, err
	}
	g := lnGuard(x.c(), e) + 4
	return a.approx(ctx, false, func(w uint) (*big.Int, int64, error) {
		v := a.lnFix(x.c(), e, w+g)
		v.Lsh(v, w+g)
		v.Quo(v, ln10Cache.get(w+g))
		return shrFix(v, g), -int64(w), nil
	})
}

// Pi implements the [Kernel] interface.
func (a *Arith) Pi(ctx *Context) (Value, error) {
	if !ctx.HasMaxPrecision() {
		return a.invalid(ctx)
	}
	return a.approx(ctx, false, func(w uint) (*big.Int, int64, error) {
		return piCache.get(w), -int64(w), nil
	})
}

// Exp implements the [Kernel] interface.
func (a *Arith) Exp(x Value, ctx *Context) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x); ok {
		return r, err
	}
	switch {
	case x.IsInf() && x.IsNeg():
		return a.fix(false, bigZero, bigZero, false, ctx)
	case x.IsInf():
		return x, nil
	case x.IsZero():
		return a.fix(false, bigOne, bigZero, false, ctx)
	case !ctx.HasMaxPrecision():
		return a.invalid(ctx)
	}
	if v, done, err := a.expBounds(a.float64Of(x), false, ctx); done {
		if errors.Is(err, ErrExponentRange) {
			return a.expReduced(x, ctx)
		}
		return v, err
	}
	// e^x = 1 ± ε for x below one unit in the last place of 1.
	prec := precInt64(ctx)
	if addInt(x.e(), a.r.prec(x.c())).Cmp(big.NewInt(-prec-2)) < 0 {
		coef := new(big.Int).Set(a.r.pow(prec + 2))
		if x.IsNeg() {
			coef.Sub(coef, bigOne)
		}
		return a.fix(false, coef, big.NewInt(-prec-2), true, ctx)
	}
	e, err := int64Of(x.e())
	if err != nil {
		return Value{}, err
	}
	const g = 64
	return a.approx(ctx, false, func(w uint) (*big.Int, int64, error) {
		t := new(big.Int).Lsh(x.c(), w+g)
		if e >= 0 {
			t.Mul(t, a.r.pow(e))
		} else {
			t.Quo(t, a.r.pow(-e))
		}
		if x.IsNeg() {
			t.Neg(t)
		}
		v, n := expFix(t, w+g)
		return shrFix(v, g), n - int64(w), nil
	})
}

// expReduced calculates e^x for an x too large to be exponentiated directly,
// when the exponent range on the side of the result is unbounded.
// It uses e^x = radix^k * e^r, where k is x / ln(radix) rounded to an integer.
func (a *Arith) expReduced(x Value, ctx *Context) (Value, error) {
	ex, err := int64Of(x.e())
	if err != nil {
		return Value{}, err
	}
	adj := ex + a.r.prec(x.c())
	if adj > 1<<20 {
		return Value{}, errors.Wrapf(ErrExponentRange, "e^%v", x)
	}
	// |x| < 2^b
	b := uint(float64(adj)/a.digitsPerBit()) + 2
	// fixed calculates x and ln(radix) at w fractional bits.
	fixed := func(w uint) (*big.Int, *big.Int) {
		v := new(big.Int).Lsh(x.c(), w)
		if ex >= 0 {
			v.Mul(v, a.r.pow(ex))
		} else {
			v.Quo(v, a.r.pow(-ex))
		}
		if x.IsNeg() {
			v.Neg(v)
		}
		return v, a.lnRadix(w)
	}
	v, l := fixed(b + 64)
	// k = round(x / ln(radix))
	v.Add(v, new(big.Int).Rsh(l, 1))
	k := v.Div(v, l)

	scratch := ctx.WithBlankFlags().WithUnlimitedExponents()
	const g = 64
	r, err := a.approx(scratch, false, func(w uint) (*big.Int, int64, error) {
		wl := w + g + b + 64
		v, l := fixed(wl)
		v.Sub(v, l.Mul(l, k))
		v, n := expFix(shrFix(v, wl-w-g), w+g)
		return shrFix(v, g), n - int64(w), nil
	})
	if err != nil {
		return Value{}, err
	}
	if err := ctx.signal(scratch.Flags); err != nil {
		return Value{}, err
	}
	return newValue(0, r.c(), new(big.Int).Add(r.e(), k)), nil
}

// SquareRoot implements the [Kernel] interface.
func (a *Arith) SquareRoot(x Value, ctx *Context) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x); ok {
		return r, err
	}
	switch {
	case x.IsZero():
		ideal := new(big.Int).Div(x.e(), big.NewInt(2))
		return a.fix(x.IsNeg(), bigZero, ideal, false, ctx)
	case x.IsNeg():
		return a.invalid(ctx)
	case x.IsInf():
		return x, nil
	}
	ideal := new(big.Int).Div(x.e(), big.NewInt(2))
	// Pad the coefficient to at least 2 * (prec + 2) digits at an even exponent.
	k := int64(0)
	if ctx.HasMaxPrecision() {
		k = max(2*(precInt64(ctx)+2)-a.r.prec(x.c()), 0)
	}
	e := addInt(x.e(), -k)
	if e.Bit(0) != 0 {
		k++
		e = addInt(e, -1)
	}
	c := a.r.lsh(x.c(), k)
	s := new(big.Int).Sqrt(c)
	exp := e.Rsh(e, 1)
	if new(big.Int).Mul(s, s).Cmp(c) == 0 {
		s, exp = a.reduceTo(s, exp, ideal)
		return a.fix(false, s, exp, false, ctx)
	}
	if !ctx.HasMaxPrecision() {
		return a.invalid(ctx)
	}
	return a.fix(false, s, exp, true, ctx)
}

// Power implements the [Kernel] interface.
func (a *Arith) Power(x, y Value, ctx *Context) (Value, error) {
	if r, ok, err := a.nanOperand(ctx, x, y); ok {
		return r, err
	}
	n, odd, integral := a.integral(y)
	neg := x.IsNeg() && integral && odd
	switch {
	case x.IsInf():
		switch y.Sign() {
		case 0:
			return a.fix(false, bigOne, bigZero, false, ctx)
		case 1:
			return a.infinity(neg)
		}
		return a.fix(neg, bigZero, bigZero, false, ctx)
	case y.IsInf():
		if x.IsNeg() && !x.IsZero() {
			return a.invalid(ctx)
		}
		c := a.cmpAbs(x, New(1, 0))
		switch {
		case c == 0:
			return a.fix(false, bigOne, bigZero, false, ctx)
		case (c < 0) == !y.IsNeg():
			return a.fix(false, bigZero, bigZero, false, ctx)
		}
		return a.infinity(false)
	case x.IsZero():
		switch y.Sign() {
		case 0:
			return a.invalid(ctx)
		case 1:
			return a.fix(neg, bigZero, bigZero, false, ctx)
		}
		return a.infinity(neg)
	case y.IsZero():
		return a.fix(false, bigOne, bigZero, false, ctx)
	case x.IsNeg() && !integral:
		return a.invalid(ctx)
	case a.isOne(x):
		return a.fix(neg, bigOne, bigZero, false, ctx)
	}
	if integral {
		if r, ok, err := a.intPower(x, n, neg, ctx); ok {
			return r, err
		}
	}
	if !ctx.HasMaxPrecision() {
		return a.invalid(ctx)
	}
	return a.expLn(x.abs(), y, neg, ctx)
}

// integral reports whether a finite y is an integer, returning its value
// when it fits int64 and whether it is odd.
func (a *Arith) integral(y Value) (n *big.Int, odd, ok bool) {
	if !y.IsFinite() {
		return nil, false, false
	}
	c := y.c()
	switch y.e().Sign() {
	case 1:
		// A positive exponent makes y a multiple of the radix.
		if !y.e().IsInt64() || y.e().Int64() > 64 {
			return nil, false, true
		}
		n = a.r.lsh(c, y.e().Int64())
	case -1:
		z := new(big.Int).Neg(y.e())
		if z.Cmp(big.NewInt(a.r.prec(c))) > 0 {
			return nil, false, c.Sign() == 0
		}
		q, rem := a.r.quoPow(c, z.Int64())
		if rem.Sign() != 0 {
			return nil, false, false
		}
		n = q
	default:
		n = new(big.Int).Set(c)
	}
	odd = n.Bit(0) != 0
	if y.IsNeg() {
		n.Neg(n)
	}
	if !n.IsInt64() {
		return nil, odd, true
	}
	return n, odd, true
}

// intPower calculates x^n exactly when the result is small enough.
// It reports false when it did not calculate the power.
func (a *Arith) intPower(x Value, n *big.Int, neg bool, ctx *Context) (Value, bool, error) {
	if n == nil {
		return Value{}, false, nil
	}
	k := n.Int64()
	if k < 0 {
		k = -k
	}
	// |x| = c * radix^(e+z) where c has no trailing zeros, so c^k has none
	// either. Unless c is 1, a c^k too long for the precision is inexact.
	z := a.r.ntz(x.c())
	c, _ := a.r.quoPow(x.c(), z)
	if ctx.HasMaxPrecision() {
		if c.Cmp(bigOne) != 0 && k > (4*precInt64(ctx)+100)/a.r.prec(c) {
			return Value{}, false, nil
		}
	} else if k > (1<<26)/a.r.prec(x.c()) {
		return Value{}, true, errors.Wrapf(ErrExponentRange, "power %v has too many digits", n)
	}
	coef := new(big.Int).Exp(c, big.NewInt(k), nil)
	exp := new(big.Int).Mul(addInt(x.e(), z), big.NewInt(k))

	// Restore the trailing zeros of x^k, but no more than one beyond the
	// precision: the remaining ones would only be rounded away.
	pad := new(big.Int).Mul(big.NewInt(z), big.NewInt(k))
	if ctx.HasMaxPrecision() {
		room := max(precInt64(ctx)-a.r.prec(coef)+1, 0)
		if pad.Cmp(big.NewInt(room)) > 0 {
			pad.SetInt64(room)
		}
	}
	coef = a.r.lsh(coef, pad.Int64())
	exp.Sub(exp, pad)

	if n.Sign() >= 0 {
		r, err := a.fix(neg, coef, exp, false, ctx)
		return r, true, err
	}
	sign := Form(0)
	if neg {
		sign = FormNegative
	}
	r, err := a.Divide(newValue(sign, big.NewInt(1), nil), newValue(0, coef, exp), ctx)
	return r, true, err
}

// mulLn calculates y * ln x for a positive finite x.
func (a *Arith) mulLn(x, y Value, w uint) (*big.Int, error) {
	ex, err := int64Of(x.e())
	if err != nil {
		return nil, err
	}
	ey, err := int64Of(y.e())
	if err != nil {
		return nil, err
	}
	// |y| < 2^ybits
	var ybits uint
	if adj := ey + a.r.prec(y.c()); adj > 0 {
		ybits = uint(float64(adj)*a.bitsPerDigit()) + 1
	}
	g := lnGuard(x.c(), ex) + ybits
	v := a.lnFix(x.c(), ex, w+g)
	v.Mul(v, y.c())
	if ey >= 0 {
		v.Mul(v, a.r.pow(ey))
	} else {
		v.Quo(v, a.r.pow(-ey))
	}
	if y.IsNeg() {
		v.Neg(v)
	}
	return shrFix(v, g), nil
}

// expLn calculates e^(y ln x) for a positive finite x.
func (a *Arith) expLn(x, y Value, neg bool, ctx *Context) (Value, error) {
	var t float64
	if l := a.lnEstimate(x); math.Abs(l) > 1e-6 {
		t = a.float64Of(y) * l
	} else {
		v, err := a.mulLn(x, y, 64)
		if err != nil {
			return Value{}, err
		}
		t, _ = new(big.Float).SetMantExp(new(big.Float).SetInt(v), -64).Float64()
	}
	if v, done, err := a.expBounds(t, neg, ctx); done {
		return v, err
	}
	const g = 64
	return a.approx(ctx, neg, func(w uint) (*big.Int, int64, error) {
		l, err := a.mulLn(x, y, w+g)
		if err != nil {
			return nil, 0, err
		}
		v, n := expFix(l, w+g)
		return shrFix(v, g), n - int64(w), nil
	})
}
