package radixmath

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
)

// Rounding determines how a value is rounded when digits have to be discarded.
// The zero value is [HalfEven].
type Rounding uint8

const (
	HalfEven    Rounding = iota // round to nearest, ties to even
	HalfUp                      // round to nearest, ties away from zero
	HalfDown                    // round to nearest, ties towards zero
	Up                          // round away from zero
	Down                        // round towards zero (truncate)
	Ceiling                     // round towards positive infinity
	Floor                       // round towards negative infinity
	ZeroFiveUp                  // round away from zero if the last kept digit is 0 or 5, otherwise towards zero
	Unnecessary                 // fail if any nonzero digit would be discarded
)

var roundingNames = [...]string{
	HalfEven:    "HalfEven",
	HalfUp:      "HalfUp",
	HalfDown:    "HalfDown",
	Up:          "Up",
	Down:        "Down",
	Ceiling:     "Ceiling",
	Floor:       "Floor",
	ZeroFiveUp:  "ZeroFiveUp",
	Unnecessary: "Unnecessary",
}

func (r Rounding) String() string {
	if int(r) < len(roundingNames) {
		return roundingNames[r]
	}
	return fmt.Sprintf("Rounding(%d)", r)
}

// ParseRounding converts a rounding mode name to [Rounding].
// Matching ignores case, hyphens and underscores, so "half-even",
// "HALF_EVEN" and "HalfEven" are equivalent.
func ParseRounding(s string) (Rounding, error) {
	key := normalizeName(s)
	for i, name := range roundingNames {
		if normalizeName(name) == key {
			return Rounding(i), nil
		}
	}
	return 0, errors.Newf("unknown rounding mode %q", s)
}

// Flags is a set of conditions raised by arithmetic operations.
type Flags uint16

const (
	FlagInexact      Flags = 1 << iota // the result differs from the exact value
	FlagRounded                        // digits were discarded, possibly all zeros
	FlagSubnormal                      // the result is below the normal exponent range
	FlagUnderflow                      // the result is subnormal and inexact
	FlagOverflow                       // the result exceeds the exponent range
	FlagClamped                        // the exponent was adjusted to fit the range
	FlagInvalid                        // the operation is undefined
	FlagDivideByZero                   // a finite nonzero value was divided by zero
	FlagLostDigits                     // an operand had more digits than the precision
)

var flagNames = [...]string{
	"Inexact",
	"Rounded",
	"Subnormal",
	"Underflow",
	"Overflow",
	"Clamped",
	"Invalid",
	"DivideByZero",
	"LostDigits",
}

// String returns the flag names joined with "|", or "0" for an empty set.
func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	var names []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			names = append(names, name)
			f &^= 1 << i
		}
	}
	if f != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint16(f)))
	}
	return strings.Join(names, "|")
}

// ParseFlags converts a list of flag names separated by "|", "," or spaces.
// An empty string or "0" is the empty set.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ',' || r == ' '
	})
	for _, field := range fields {
		if field == "0" {
			continue
		}
		found := false
		for i, name := range flagNames {
			if normalizeName(name) == normalizeName(field) {
				f |= 1 << i
				found = true
				break
			}
		}
		if !found {
			return 0, errors.Newf("unknown flag %q", field)
		}
	}
	return f, nil
}

func normalizeName(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// Context holds the arithmetic configuration of an operation and
// accumulates the conditions the operation raises.
//
// Flags are only ever added: operations OR new conditions into Flags
// when HasFlags is true and never clear them.
// A Context is not safe for concurrent use.
//
// A nil *Context is valid and means unbounded precision, [HalfEven] rounding,
// no exponent range, no flag recording and no traps.
type Context struct {
	// Precision is the maximum number of radix digits in a mantissa.
	// Zero means unbounded.
	Precision uint64
	// Rounding is the rounding mode.
	Rounding Rounding
	// EMin and EMax bound the adjusted exponent of normal values.
	// A nil bound is unbounded on that side.
	// Contexts share these big integers, they must not be modified.
	EMin, EMax *big.Int
	// HasFlags enables recording of conditions into Flags.
	HasFlags bool
	// Traps is the set of conditions that fail the operation with a
	// [TrapError] at the moment they are raised.
	Traps Flags
	// Flags is the accumulated set of raised conditions.
	Flags Flags
}

// NewContext returns a context with the given precision and rounding,
// unbounded exponent range and flag recording enabled.
func NewContext(prec uint64, rounding Rounding) *Context {
	return &Context{Precision: prec, Rounding: rounding, HasFlags: true}
}

// Decimal32Context returns the context of the IEEE 754 decimal32 format.
func Decimal32Context() *Context {
	return NewContext(7, HalfEven).WithExponentRange(-95, 96)
}

// Decimal64Context returns the context of the IEEE 754 decimal64 format.
func Decimal64Context() *Context {
	return NewContext(16, HalfEven).WithExponentRange(-383, 384)
}

// Decimal128Context returns the context of the IEEE 754 decimal128 format.
func Decimal128Context() *Context {
	return NewContext(34, HalfEven).WithExponentRange(-6143, 6144)
}

// Binary32Context returns the context of the IEEE 754 binary32 format.
func Binary32Context() *Context {
	return NewContext(24, HalfEven).WithExponentRange(-126, 127)
}

// Binary64Context returns the context of the IEEE 754 binary64 format.
func Binary64Context() *Context {
	return NewContext(53, HalfEven).WithExponentRange(-1022, 1023)
}

// UnlimitedContext returns a context with unbounded precision and
// exponent range and flag recording enabled.
func UnlimitedContext() *Context {
	return NewContext(0, HalfEven)
}

// clone returns a shallow copy of c, a nil c is copied as the zero context.
func (c *Context) clone() *Context {
	if c == nil {
		return &Context{}
	}
	d := *c
	return &d
}

// WithBlankFlags returns a copy of c with empty flags and flag recording enabled.
func (c *Context) WithBlankFlags() *Context {
	d := c.clone()
	d.Flags = 0
	d.HasFlags = true
	return d
}

// WithTraps returns a copy of c with the given trap set.
func (c *Context) WithTraps(traps Flags) *Context {
	d := c.clone()
	d.Traps = traps
	return d
}

// WithPrecision returns a copy of c with the given precision.
func (c *Context) WithPrecision(prec uint64) *Context {
	d := c.clone()
	d.Precision = prec
	return d
}

// WithRounding returns a copy of c with the given rounding mode.
func (c *Context) WithRounding(rounding Rounding) *Context {
	d := c.clone()
	d.Rounding = rounding
	return d
}

// WithExponentRange returns a copy of c with both exponent bounds set.
func (c *Context) WithExponentRange(emin, emax int64) *Context {
	d := c.clone()
	d.EMin = big.NewInt(emin)
	d.EMax = big.NewInt(emax)
	return d
}

// WithUnlimitedExponents returns a copy of c without exponent bounds.
func (c *Context) WithUnlimitedExponents() *Context {
	d := c.clone()
	d.EMin = nil
	d.EMax = nil
	return d
}

// HasMaxPrecision reports whether the precision is bounded.
func (c *Context) HasMaxPrecision() bool {
	return c != nil && c.Precision > 0
}

// HasExponentRange reports whether at least one exponent bound is set.
func (c *Context) HasExponentRange() bool {
	return c != nil && (c.EMin != nil || c.EMax != nil)
}

// ExponentWithinRange reports whether exp lies within the bounds that are set.
func (c *Context) ExponentWithinRange(exp *big.Int) bool {
	if c == nil {
		return true
	}
	if c.EMin != nil && exp.Cmp(c.EMin) < 0 {
		return false
	}
	if c.EMax != nil && exp.Cmp(c.EMax) > 0 {
		return false
	}
	return true
}

func (c *Context) rounding() Rounding {
	if c == nil {
		return HalfEven
	}
	return c.Rounding
}

func (c *Context) precision() uint64 {
	if c == nil {
		return 0
	}
	return c.Precision
}

func (c *Context) flags() Flags {
	if c == nil {
		return 0
	}
	return c.Flags
}

// etiny returns the smallest exponent of a subnormal value, EMin - (prec - 1).
// It returns nil when EMin is unbounded.
func (c *Context) etiny() *big.Int {
	if c == nil || c.EMin == nil {
		return nil
	}
	z := new(big.Int).Set(c.EMin)
	if c.Precision > 1 {
		z.Sub(z, new(big.Int).SetUint64(c.Precision-1))
	}
	return z
}

// signal raises the conditions f.
// If any of them is trapped, nothing is recorded and a [TrapError] is returned.
func (c *Context) signal(f Flags) error {
	if c == nil || f == 0 {
		return nil
	}
	if trapped := f & c.Traps; trapped != 0 {
		return errors.WithStack(&TrapError{Flags: trapped})
	}
	if c.HasFlags {
		c.Flags |= f
	}
	return nil
}

// String implements the [fmt.Stringer] interface.
func (c *Context) String() string {
	if c == nil {
		return "Context{unbounded}"
	}
	emin, emax := "-inf", "+inf"
	if c.EMin != nil {
		emin = c.EMin.String()
	}
	if c.EMax != nil {
		emax = c.EMax.String()
	}
	return fmt.Sprintf("Context{prec=%d, rounding=%v, emin=%s, emax=%s, traps=%v, flags=%v}",
		c.Precision, c.Rounding, emin, emax, c.Traps, c.Flags)
}
