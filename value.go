package radixmath

import (
	"math/big"
)

// Form holds the sign and category bits of a [Value].
type Form uint8

const (
	FormNegative     Form = 1 << iota // the value is negative
	FormInfinity                      // the value is an infinity
	FormQuietNaN                      // the value is a quiet NaN
	FormSignalingNaN                  // the value is a signaling NaN

	FormNaN     = FormQuietNaN | FormSignalingNaN
	FormSpecial = FormInfinity | FormNaN
)

// Category classifies a value.
type Category uint8

const (
	Finite Category = iota
	Infinity
	QuietNaN
	SignalingNaN
)

func (c Category) String() string {
	switch c {
	case Finite:
		return "Finite"
	case Infinity:
		return "Infinity"
	case QuietNaN:
		return "QuietNaN"
	case SignalingNaN:
		return "SignalingNaN"
	}
	return "Category(?)"
}

// Value is an immutable arbitrary-precision floating-point number:
//
//	(-1)^sign * coef * radix^exp
//
// The radix is not stored in the value, it is a property of the [Kind]
// that interprets it. For NaNs coef holds the diagnostic payload.
//
// The zero value is the finite value 0.
type Value struct {
	form Form
	coef *big.Int // never negative, nil means 0, never modified after construction
	exp  *big.Int // nil means 0, never modified after construction
}

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
)

// New returns a finite value equal to coef * radix^exp.
func New(coef, exp int64) Value {
	var form Form
	c := big.NewInt(coef)
	if coef < 0 {
		form = FormNegative
		c.Neg(c)
	}
	return newValue(form, c, big.NewInt(exp))
}

// NewFromBig returns a finite value equal to (-1)^neg * |coef| * radix^exp.
// The arguments are copied.
func NewFromBig(neg bool, coef, exp *big.Int) Value {
	var form Form
	if neg {
		form = FormNegative
	}
	return newValue(form, new(big.Int).Abs(coef), new(big.Int).Set(exp))
}

// Inf returns a signed infinity.
func Inf(neg bool) Value {
	form := FormInfinity
	if neg {
		form |= FormNegative
	}
	return Value{form: form}
}

// NaN returns a quiet NaN with the given payload.
func NaN(neg bool, payload int64) Value {
	return nan(FormQuietNaN, neg, payload)
}

// SNaN returns a signaling NaN with the given payload.
func SNaN(neg bool, payload int64) Value {
	return nan(FormSignalingNaN, neg, payload)
}

func nan(form Form, neg bool, payload int64) Value {
	if neg {
		form |= FormNegative
	}
	p := big.NewInt(payload)
	return newValue(form, p.Abs(p), nil)
}

// newValue takes ownership of coef and exp.
func newValue(form Form, coef, exp *big.Int) Value {
	if coef != nil && coef.Sign() == 0 {
		coef = nil
	}
	if exp != nil && exp.Sign() == 0 {
		exp = nil
	}
	if form&FormSpecial != 0 {
		exp = nil
	}
	if form&FormInfinity != 0 {
		coef = nil
	}
	return Value{form: form, coef: coef, exp: exp}
}

// c returns the shared coefficient, callers must not modify it.
func (v Value) c() *big.Int {
	if v.coef == nil {
		return bigZero
	}
	return v.coef
}

// e returns the shared exponent, callers must not modify it.
func (v Value) e() *big.Int {
	if v.exp == nil {
		return bigZero
	}
	return v.exp
}

// Coef returns a copy of the coefficient (the NaN payload for NaNs).
func (v Value) Coef() *big.Int {
	return new(big.Int).Set(v.c())
}

// Exp returns a copy of the exponent.
func (v Value) Exp() *big.Int {
	return new(big.Int).Set(v.e())
}

// Form returns the sign and category bits.
func (v Value) Form() Form {
	return v.form
}

// Category returns the category of v.
func (v Value) Category() Category {
	switch {
	case v.form&FormSignalingNaN != 0:
		return SignalingNaN
	case v.form&FormQuietNaN != 0:
		return QuietNaN
	case v.form&FormInfinity != 0:
		return Infinity
	}
	return Finite
}

// Sign returns -1 if v is negative, 0 if v is zero and 1 otherwise.
// Infinities are nonzero, NaNs have sign 0.
func (v Value) Sign() int {
	switch {
	case v.IsNaN():
		return 0
	case v.IsFinite() && v.c().Sign() == 0:
		return 0
	case v.IsNeg():
		return -1
	}
	return 1
}

// IsNeg reports whether the sign bit of v is set.
func (v Value) IsNeg() bool {
	return v.form&FormNegative != 0
}

// IsZero reports whether v is a finite zero of either sign.
func (v Value) IsZero() bool {
	return v.IsFinite() && v.c().Sign() == 0
}

// IsFinite reports whether v is neither an infinity nor a NaN.
func (v Value) IsFinite() bool {
	return v.form&FormSpecial == 0
}

// IsInf reports whether v is an infinity of either sign.
func (v Value) IsInf() bool {
	return v.form&FormInfinity != 0
}

// IsNaN reports whether v is a quiet or signaling NaN.
func (v Value) IsNaN() bool {
	return v.form&FormNaN != 0
}

// IsSignaling reports whether v is a signaling NaN.
func (v Value) IsSignaling() bool {
	return v.form&FormSignalingNaN != 0
}

// Identical reports whether v and w have the same sign, category,
// coefficient and exponent.
// Unlike numeric comparison, 2.0 and 2.00 are not identical.
func (v Value) Identical(w Value) bool {
	return v.form == w.form && v.c().Cmp(w.c()) == 0 && v.e().Cmp(w.e()) == 0
}

func (v Value) neg() Value {
	v.form ^= FormNegative
	return v
}

func (v Value) abs() Value {
	v.form &^= FormNegative
	return v
}

func (v Value) withSign(neg bool) Value {
	if neg {
		v.form |= FormNegative
	} else {
		v.form &^= FormNegative
	}
	return v
}
