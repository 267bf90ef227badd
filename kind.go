package radixmath

import (
	"math/big"
)

// Kind describes how a numeric type T stores its mantissa, exponent and
// form, and which radix and special values it supports.
// An [Engine] works on any T through its Kind.
type Kind[T any] interface {
	// Mantissa returns the non-negative mantissa of x.
	// The result may be shared with x and must not be modified.
	Mantissa(x T) *big.Int
	// Exponent returns the exponent of x.
	// The result may be shared with x and must not be modified.
	Exponent(x T) *big.Int
	// Form returns the sign and category bits of x.
	Form(x T) Form
	// New builds a value and takes ownership of mant and exp.
	New(mant, exp *big.Int, form Form) T
	// ValueOf returns the canonical value of a small integer.
	ValueOf(n int64) T
	// MulRadixPow returns mant * radix^power, power must not be negative.
	MulRadixPow(mant *big.Int, power int64) *big.Int
	// DigitLen returns the number of radix digits in mant, 0 has one digit.
	DigitLen(mant *big.Int) int64
	// Radix returns 2 or 10.
	Radix() int
	// FiniteOnly reports whether the kind lacks infinities and NaNs.
	FiniteOnly() bool
}

// valueKind interprets a [Value] in a fixed radix.
type valueKind struct {
	name   string
	r      *rdx
	finite bool
}

var (
	// DecimalKind interprets values in radix 10 with special values.
	DecimalKind Kind[Value] = valueKind{name: "decimal", r: rdx10}
	// BinaryKind interprets values in radix 2 with special values.
	BinaryKind Kind[Value] = valueKind{name: "binary", r: rdx2}
	// FiniteDecimalKind interprets values in radix 10 without special values.
	FiniteDecimalKind Kind[Value] = valueKind{name: "finite decimal", r: rdx10, finite: true}
	// FiniteBinaryKind interprets values in radix 2 without special values.
	FiniteBinaryKind Kind[Value] = valueKind{name: "finite binary", r: rdx2, finite: true}
)

func (k valueKind) Mantissa(x Value) *big.Int {
	return x.c()
}

func (k valueKind) Exponent(x Value) *big.Int {
	return x.e()
}

func (k valueKind) Form(x Value) Form {
	return x.form
}

func (k valueKind) New(mant, exp *big.Int, form Form) Value {
	if k.finite && form&FormSpecial != 0 {
		panic("New failed: " + k.name + " values cannot be special")
	}
	return newValue(form, mant, exp)
}

func (k valueKind) ValueOf(n int64) Value {
	return New(n, 0)
}

func (k valueKind) MulRadixPow(mant *big.Int, power int64) *big.Int {
	return k.r.lsh(mant, power)
}

func (k valueKind) DigitLen(mant *big.Int) int64 {
	return k.r.prec(mant)
}

func (k valueKind) Radix() int {
	return int(k.r.base)
}

func (k valueKind) FiniteOnly() bool {
	return k.finite
}

func (k valueKind) String() string {
	return k.name
}
