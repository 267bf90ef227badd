package radixmath

import (
	"fmt"
	"math"
	"math/big"
	"sync"

	"github.com/cockroachdb/errors"
)

// rdx describes a radix and caches its powers.
type rdx struct {
	base int64
	bigb *big.Int
	pows []*big.Int // pows[x] = base^x
}

// npows is the number of cached powers per radix.
const npows = 128

var (
	rdx10 = newRdx(10)
	rdx2  = newRdx(2)
)

func newRdx(base int64) *rdx {
	r := &rdx{base: base, bigb: big.NewInt(base), pows: make([]*big.Int, npows)}
	r.pows[0] = big.NewInt(1)
	for i := 1; i < npows; i++ {
		r.pows[i] = new(big.Int).Mul(r.pows[i-1], r.bigb)
	}
	return r
}

func radixOf(radix int) *rdx {
	switch radix {
	case 10:
		return rdx10
	case 2:
		return rdx2
	}
	panic(fmt.Sprintf("radixOf(%v) failed: unsupported radix", radix))
}

// pow returns base^power.
// The result may be shared with the cache and must not be modified.
// If power is negative, the result is unpredictable.
func (r *rdx) pow(power int64) *big.Int {
	if power < int64(len(r.pows)) {
		return r.pows[power]
	}
	if r.base == 2 {
		return new(big.Int).Lsh(bigOne, uint(power))
	}
	return new(big.Int).Exp(r.bigb, big.NewInt(power), nil)
}

// lsh (Left Shift) calculates x * base^shift into a new integer.
func (r *rdx) lsh(x *big.Int, shift int64) *big.Int {
	switch {
	case shift <= 0:
		return new(big.Int).Set(x)
	case r.base == 2:
		return new(big.Int).Lsh(x, uint(shift))
	}
	return new(big.Int).Mul(x, r.pow(shift))
}

// quoPow calculates q = ⌊x / base^shift⌋, rem = x - q * base^shift.
func (r *rdx) quoPow(x *big.Int, shift int64) (q, rem *big.Int) {
	q, rem = new(big.Int), new(big.Int)
	if shift <= 0 {
		return q.Set(x), rem
	}
	return q.QuoRem(x, r.pow(shift), rem)
}

// log10of2 is log10(2), used to estimate decimal lengths from bit lengths.
var log10of2 = math.Log10(2)

// prec returns the number of radix digits in x.
// Unlike the digit count of a coefficient, prec counts 0 as one digit.
// If x is negative, the result is unpredictable.
func (r *rdx) prec(x *big.Int) int64 {
	// Special cases
	switch {
	case x.Sign() == 0:
		return 1
	case r.base == 2:
		return int64(x.BitLen())
	case x.Cmp(r.pows[len(r.pows)-1]) < 0:
		left, right := 0, len(r.pows)
		for left < right {
			mid := (left + right) / 2
			if x.Cmp(r.pows[mid]) < 0 {
				right = mid
			} else {
				left = mid + 1
			}
		}
		return int64(left)
	}
	// General case
	// 2^(bits-1) <= x < 2^bits bounds the digit count within one of the estimate.
	d := int64(float64(x.BitLen()-1)*log10of2) + 1
	if x.Cmp(r.pow(d-1)) < 0 {
		return d - 1
	}
	if x.Cmp(r.pow(d)) >= 0 {
		return d + 1
	}
	return d
}

// ntz returns number of trailing zero digits in x.
// ntz assumes that 0 has no trailing zeros.
func (r *rdx) ntz(x *big.Int) int64 {
	if x.Sign() == 0 {
		return 0
	}
	if r.base == 2 {
		return int64(x.TrailingZeroBits())
	}
	n := int64(0)
	q, m := getBint(), getBint()
	defer putBint(q)
	defer putBint(m)
	q.Set(x)
	// Strip in chunks of 16 digits first.
	chunk := r.pows[16]
	for {
		q2, m2 := new(big.Int).QuoRem(q, chunk, m)
		if m2.Sign() != 0 {
			break
		}
		q.Set(q2)
		n += 16
	}
	for {
		q2, m2 := new(big.Int).QuoRem(q, r.bigb, m)
		if m2.Sign() != 0 {
			break
		}
		q.Set(q2)
		n++
	}
	return n
}

// rsh (Right Shift) calculates round(x / base^shift) using the given rounding
// mode. The sign of the value being rounded is neg, x is its magnitude.
// If sticky is true, the value being rounded is slightly larger than x, by
// less than one unit in the last position of x.
// The second result reports whether nonzero digits were discarded.
func (r *rdx) rsh(x *big.Int, shift int64, neg bool, mode Rounding, sticky bool) (*big.Int, bool, error) {
	var q, rem *big.Int
	var half int // sign of 2 * rem - base^shift
	switch {
	case shift <= 0:
		q, rem = new(big.Int).Set(x), new(big.Int)
		half = -1
	case shift > r.prec(x):
		// x < base^(shift-1) <= base^shift / 2
		q, rem = new(big.Int), x
		half = -1
	default:
		d := r.pow(shift)
		q, rem = r.quoPow(x, shift)
		dbl := getBint()
		defer putBint(dbl)
		dbl.Lsh(rem, 1)
		half = dbl.Cmp(d)
		if half == 0 && sticky {
			half = 1
		}
	}
	if rem.Sign() == 0 && !sticky {
		return q, false, nil
	}
	up, err := r.roundUp(q, neg, mode, half)
	if err != nil {
		return nil, true, err
	}
	if up {
		q.Add(q, bigOne)
	}
	return q, true, nil
}

// roundUp decides whether an inexact quotient q has to be incremented.
func (r *rdx) roundUp(q *big.Int, neg bool, mode Rounding, half int) (bool, error) {
	switch mode {
	case Up:
		return true, nil
	case Down:
		return false, nil
	case Ceiling:
		return !neg, nil
	case Floor:
		return neg, nil
	case HalfUp:
		return half >= 0, nil
	case HalfDown:
		return half > 0, nil
	case HalfEven:
		return half > 0 || (half == 0 && q.Bit(0) != 0), nil
	case ZeroFiveUp:
		last := new(big.Int).Rem(q, r.bigb).Int64()
		return last == 0 || (r.base == 10 && last == 5), nil
	case Unnecessary:
		return false, ErrRoundingNecessary
	}
	return false, errors.AssertionFailedf("unknown rounding mode %v", mode)
}

// int64Of converts an exponent or shift to int64.
func int64Of(x *big.Int) (int64, error) {
	if !x.IsInt64() {
		return 0, errors.Wrapf(ErrExponentRange, "%v", x)
	}
	return x.Int64(), nil
}

// addInt calculates x + n into a new integer.
func addInt(x *big.Int, n int64) *big.Int {
	return new(big.Int).Add(x, big.NewInt(n))
}

// sub calculates x - y into a new integer.
func sub(x, y *big.Int) *big.Int {
	return new(big.Int).Sub(x, y)
}

// minBig returns the smaller of x and y.
func minBig(x, y *big.Int) *big.Int {
	if x.Cmp(y) <= 0 {
		return x
	}
	return y
}

// bpool is a cache of reusable *big.Int instances.
var bpool = sync.Pool{
	New: func() any {
		return new(big.Int)
	},
}

// getBint obtains a *big.Int from the pool.
func getBint() *big.Int {
	return bpool.Get().(*big.Int)
}

// putBint returns the *big.Int into the pool.
func putBint(b *big.Int) {
	bpool.Put(b)
}
