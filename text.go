package radixmath

import (
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// Parse converts a string to a radix 10 value.
// The input string must follow the General Decimal Arithmetic grammar,
// letters are case-insensitive:
//
//	sign           ::= '+' | '-'
//	digits         ::= { '0' | '1' | '2' | '3' | '4' | '5' | '6' | '7' | '8' | '9' }
//	significand    ::= digits '.' digits | '.' digits | digits '.' | digits
//	exponent       ::= 'E' [sign] digits
//	infinity       ::= 'Inf' | 'Infinity'
//	nan            ::= 'NaN' [digits] | 'sNaN' [digits]
//	numeric-string ::= [sign] (significand [exponent] | infinity | nan)
//
// Parse keeps trailing zeros, so "1.50" and "1.5" parse to values with
// different exponents.
func Parse(s string) (Value, error) {
	return parse(s, 10)
}

// ParseBinary converts a string to a radix 2 value.
// The mantissa is written in decimal digits and the exponent is a power of two:
//
//	numeric-string ::= [sign] (digits [('p' | 'P') [sign] digits] | infinity | nan)
//
// For example, "5p-3" is 5 * 2^-3.
func ParseBinary(s string) (Value, error) {
	return parse(s, 2)
}

func parse(s string, radix int) (Value, error) {
	pos, width := 0, len(s)
	var form Form

	// Sign
	switch {
	case pos == width:
		// skip
	case s[pos] == '-':
		form = FormNegative
		pos++
	case s[pos] == '+':
		pos++
	}

	// Special values
	if v, ok, err := parseSpecial(s[pos:], form); ok || err != nil {
		if err != nil {
			return Value{}, errors.Wrapf(err, "parsing %q", s)
		}
		return v, nil
	}

	// Coefficient
	var digits strings.Builder
	scale := 0
	hascoef := false
	for pos < width && isDigit(s[pos]) {
		digits.WriteByte(s[pos])
		hascoef = true
		pos++
	}
	if radix == 10 && pos < width && s[pos] == '.' {
		pos++
		for pos < width && isDigit(s[pos]) {
			digits.WriteByte(s[pos])
			hascoef = true
			scale++
			pos++
		}
	}

	// Exponent
	exp := new(big.Int)
	if pos < width && isExpMark(s[pos], radix) {
		pos++
		start := pos
		if pos < width && (s[pos] == '-' || s[pos] == '+') {
			pos++
		}
		end := pos
		for end < width && isDigit(s[end]) {
			end++
		}
		if end == pos {
			return Value{}, errors.Wrapf(errInvalidString, "parsing %q: no exponent", s)
		}
		exp.SetString(s[start:end], 10)
		pos = end
	}

	if pos != width {
		r, _ := utf8.DecodeRuneInString(s[pos:])
		return Value{}, errors.Wrapf(errInvalidString, "parsing %q: invalid character %q", s, r)
	}
	if !hascoef {
		return Value{}, errors.Wrapf(errInvalidString, "parsing %q: no coefficient", s)
	}
	coef, _ := new(big.Int).SetString(digits.String(), 10)
	exp.Sub(exp, big.NewInt(int64(scale)))
	return newValue(form, coef, exp), nil
}

// parseSpecial recognizes infinities and NaNs.
func parseSpecial(s string, sign Form) (Value, bool, error) {
	lower := strings.ToLower(s)
	switch {
	case lower == "inf" || lower == "infinity":
		return Value{form: sign | FormInfinity}, true, nil
	case strings.HasPrefix(lower, "snan"):
		v, err := parsePayload(s[4:], sign|FormSignalingNaN)
		return v, true, err
	case strings.HasPrefix(lower, "nan"):
		v, err := parsePayload(s[3:], sign|FormQuietNaN)
		return v, true, err
	}
	return Value{}, false, nil
}

func parsePayload(s string, form Form) (Value, error) {
	payload := new(big.Int)
	if s != "" {
		for i := 0; i < len(s); i++ {
			if !isDigit(s[i]) {
				return Value{}, errors.Wrapf(errInvalidString, "invalid payload %q", s)
			}
		}
		payload.SetString(s, 10)
	}
	return newValue(form, payload, nil), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isExpMark(c byte, radix int) bool {
	if radix == 2 {
		return c == 'p' || c == 'P'
	}
	return c == 'e' || c == 'E'
}

// MustParse is like [Parse] but panics if the string cannot be parsed.
// It simplifies safe initialization of global variables holding values.
func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("MustParse(%q) failed: %v", s, err))
	}
	return v
}

// MustParseBinary is like [ParseBinary] but panics if the string cannot be parsed.
func MustParseBinary(s string) Value {
	v, err := ParseBinary(s)
	if err != nil {
		panic(fmt.Sprintf("MustParseBinary(%q) failed: %v", s, err))
	}
	return v
}

// String implements the [fmt.Stringer] interface and returns the radix 10
// scientific string of v, as defined by the General Decimal Arithmetic:
// values with a non-positive exponent and an adjusted exponent of at
// least -6 are written without exponent, all others in scientific notation.
//
//	New(123, -2)  → "1.23"
//	New(123, 3)   → "1.23E+5"
//	New(1, -8)    → "1E-8"
//
// Use [Value.BinaryString] for radix 2 values.
//
// [fmt.Stringer]: https://pkg.go.dev/fmt#Stringer
func (v Value) String() string {
	var sb strings.Builder
	if v.IsNeg() {
		sb.WriteByte('-')
	}
	if special := v.specialString(); special != "" {
		sb.WriteString(special)
		return sb.String()
	}
	digits := v.c().String()
	exp := v.e()
	adj := addInt(exp, int64(len(digits))-1)
	switch {
	case exp.Sign() <= 0 && adj.Cmp(big.NewInt(-6)) >= 0:
		// Plain notation
		if exp.Sign() == 0 {
			sb.WriteString(digits)
			break
		}
		point := len(digits) + int(exp.Int64())
		if point > 0 {
			sb.WriteString(digits[:point])
			sb.WriteByte('.')
			sb.WriteString(digits[point:])
		} else {
			sb.WriteString("0.")
			sb.WriteString(strings.Repeat("0", -point))
			sb.WriteString(digits)
		}
	default:
		// Scientific notation
		sb.WriteString(digits[:1])
		if len(digits) > 1 {
			sb.WriteByte('.')
			sb.WriteString(digits[1:])
		}
		sb.WriteByte('E')
		if adj.Sign() >= 0 {
			sb.WriteByte('+')
		}
		sb.WriteString(adj.String())
	}
	return sb.String()
}

// BinaryString returns v in the format read by [ParseBinary].
//
//	New(5, -3) → "5p-3"
//	New(5, 0)  → "5"
func (v Value) BinaryString() string {
	var sb strings.Builder
	if v.IsNeg() {
		sb.WriteByte('-')
	}
	if special := v.specialString(); special != "" {
		sb.WriteString(special)
		return sb.String()
	}
	sb.WriteString(v.c().String())
	if v.e().Sign() != 0 {
		sb.WriteByte('p')
		sb.WriteString(v.e().String())
	}
	return sb.String()
}

func (v Value) specialString() string {
	var s string
	switch v.Category() {
	case Infinity:
		return "Infinity"
	case QuietNaN:
		s = "NaN"
	case SignalingNaN:
		s = "sNaN"
	default:
		return ""
	}
	if v.c().Sign() != 0 {
		s += v.c().String()
	}
	return s
}

// UnmarshalText implements [encoding.TextUnmarshaler] interface.
// Also see method [Parse].
//
// [encoding.TextUnmarshaler]: https://pkg.go.dev/encoding#TextUnmarshaler
func (v *Value) UnmarshalText(text []byte) error {
	var err error
	*v, err = Parse(string(text))
	return err
}

// MarshalText implements [encoding.TextMarshaler] interface.
// Also see method [Value.String].
//
// [encoding.TextMarshaler]: https://pkg.go.dev/encoding#TextMarshaler
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Format implements [fmt.Formatter] interface.
// The following [verbs] are available:
//
//	%s, %v: -1.23E+5
//	%q:    "-1.23E+5"
//	%b:     -123p3
//
// The '+' and ' ' flags add a sign to non-negative values.
// Width pads with spaces, on the right with the '-' flag.
//
// [verbs]: https://pkg.go.dev/fmt#hdr-Printing
// [fmt.Formatter]: https://pkg.go.dev/fmt#Formatter
func (v Value) Format(state fmt.State, verb rune) {
	var body string
	switch verb {
	case 'b':
		body = v.BinaryString()
	case 's', 'v', 'q':
		body = v.String()
	default:
		fmt.Fprintf(state, "%%!%c(radixmath.Value=%s)", verb, v.String())
		return
	}

	// Arithmetic sign
	if !v.IsNeg() {
		switch {
		case state.Flag('+'):
			body = "+" + body
		case state.Flag(' '):
			body = " " + body
		}
	}

	// Quotes
	if verb == 'q' {
		body = `"` + body + `"`
	}

	// Padding
	if w, ok := state.Width(); ok && w > len(body) {
		pad := strings.Repeat(" ", w-len(body))
		if state.Flag('-') {
			body += pad
		} else {
			body = pad + body
		}
	}
	fmt.Fprint(state, body)
}
