package radixmath

import (
	"math/big"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	decArith = NewArith(DecimalKind)
	binArith = NewArith(BinaryKind)
)

type arithTest struct {
	name  string
	ctx   *Context
	op    func(ctx *Context) (Value, error)
	want  string
	flags Flags
}

func runArithTests(t *testing.T, tests []arithTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tt.ctx
			got, err := tt.op(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, tt.flags, ctx.Flags, "flags")
		})
	}
}

func prec(p uint64) *Context {
	return NewContext(p, HalfEven)
}

func ranged(p uint64, mode Rounding, emin, emax int64) *Context {
	return NewContext(p, mode).WithExponentRange(emin, emax)
}

func TestArith_Add(t *testing.T) {
	add := func(x, y string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.AddEx(MustParse(x), MustParse(y), ctx, false)
		}
	}
	runArithTests(t, []arithTest{
		{"exact", prec(9), add("12", "7.00"), "19.00", 0},
		{"exponent", prec(9), add("1E+2", "1E+2"), "2E+2", 0},
		{"cancel", prec(9), add("1", "-1"), "0", 0},
		{"cancel floor", NewContext(9, Floor), add("1", "-1"), "-0", 0},
		{"negative zeros", prec(9), add("-0", "-0.0"), "-0.0", 0},
		{"zero operand", prec(3), add("0.000", "12345"), "1.23E+4", FlagInexact | FlagRounded},
		{"zero keeps exponent", prec(9), add("1", "0.00"), "1.00", 0},
		{"tie", prec(9), add("123456789", "0.5"), "123456790", FlagInexact | FlagRounded},
		{"sticky", prec(5), add("1", "1E-20"), "1.0000", FlagInexact | FlagRounded},
		{"sticky up", NewContext(5, Up), add("1", "1E-20"), "1.0001", FlagInexact | FlagRounded},
		{"sticky subtract", NewContext(5, Down), add("1", "-1E-20"), "0.99999", FlagInexact | FlagRounded},
		{"infinity", prec(9), add("Inf", "-1E+100"), "Infinity", 0},
		{"infinities", prec(9), add("Inf", "-Inf"), "NaN", FlagInvalid},
		{"nan", prec(9), add("NaN5", "sNaN7"), "NaN7", FlagInvalid},
		{"overflow", ranged(3, HalfEven, -2, 2), add("999", "1"), "Infinity", FlagInexact | FlagRounded | FlagOverflow},
		{"overflow down", ranged(3, Down, -2, 2), add("999", "1"), "999", FlagInexact | FlagRounded | FlagOverflow},
		{"unbounded", UnlimitedContext(), add("1E+30", "1E-30"), "1000000000000000000000000000000.000000000000000000000000000001", 0},
	})

	t.Run("operand precision", func(t *testing.T) {
		ctx := prec(3)
		got, err := decArith.AddEx(MustParse("1.2345"), MustParse("0.0001"), ctx, true)
		require.NoError(t, err)
		// 1.2345 is rounded to 1.23 first.
		assert.Equal(t, "1.23", got.String())
		assert.Equal(t, FlagInexact|FlagRounded, ctx.Flags)
	})
}

func TestArith_Multiply(t *testing.T) {
	mul := func(x, y string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.Multiply(MustParse(x), MustParse(y), ctx)
		}
	}
	runArithTests(t, []arithTest{
		{"exact", prec(9), mul("1.20", "3"), "3.60", 0},
		{"negative zero", prec(9), mul("-2", "0"), "-0", 0},
		{"rounded", prec(3), mul("12.3", "4.56"), "56.1", FlagInexact | FlagRounded},
		{"infinity", prec(9), mul("Inf", "-2"), "-Infinity", 0},
		{"infinity zero", prec(9), mul("Inf", "0"), "NaN", FlagInvalid},
		{"subnormal", ranged(3, HalfEven, -2, 2), mul("0.01", "0.01"), "0.0001", FlagSubnormal},
		{"underflow", ranged(3, HalfEven, -2, 2), mul("0.01", "0.001"), "0.0000",
			FlagInexact | FlagRounded | FlagSubnormal | FlagUnderflow | FlagClamped},
		{"overflow", ranged(3, Ceiling, -2, 2), mul("-999", "999"), "-999", FlagInexact | FlagRounded | FlagOverflow},
	})
}

func TestArith_Divide(t *testing.T) {
	quo := func(x, y string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.Divide(MustParse(x), MustParse(y), ctx)
		}
	}
	runArithTests(t, []arithTest{
		{"third", prec(9), quo("1", "3"), "0.333333333", FlagInexact | FlagRounded},
		{"two thirds", prec(9), quo("2", "3"), "0.666666667", FlagInexact | FlagRounded},
		{"quarter", prec(9), quo("1", "4"), "0.25", 0},
		{"ideal exponent", prec(9), quo("6", "2"), "3", 0},
		{"ideal exponent 2", prec(9), quo("6.00", "2"), "3.00", 0},
		{"ideal exponent 3", prec(9), quo("1E+3", "1"), "1E+3", 0},
		{"zero", prec(9), quo("0.00", "-7"), "-0.00", 0},
		{"by zero", prec(9), quo("-1", "0"), "-Infinity", FlagDivideByZero},
		{"zero by zero", prec(9), quo("0", "0"), "NaN", FlagInvalid},
		{"by infinity", prec(9), quo("1", "Inf"), "0", 0},
		{"by infinity clamped", ranged(3, HalfEven, -2, 2), quo("1", "-Inf"), "-0.0000", FlagClamped},
		{"infinity", prec(9), quo("-Inf", "2"), "-Infinity", 0},
		{"unbounded", UnlimitedContext(), quo("1", "8"), "0.125", 0},
		{"unbounded 2", UnlimitedContext(), quo("3", "1.6"), "1.875", 0},
		{"unbounded inexact", UnlimitedContext(), quo("1", "3"), "NaN", FlagInvalid},
	})

	t.Run("binary", func(t *testing.T) {
		ctx := prec(4)
		got, err := binArith.Divide(New(1, 0), New(3, 0), ctx)
		require.NoError(t, err)
		// 1/3 = 0.0101010...b, rounded to 4 bits is 1011b * 2^-5.
		assert.Equal(t, "11p-5", got.BinaryString())
		assert.Equal(t, FlagInexact|FlagRounded, ctx.Flags)
	})
}

func TestArith_DivideToExponent(t *testing.T) {
	quo := func(x, y string, exp int64) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.DivideToExponent(MustParse(x), MustParse(y), big.NewInt(exp), ctx)
		}
	}
	runArithTests(t, []arithTest{
		{"third", prec(9), quo("1", "3", -3), "0.333", FlagInexact | FlagRounded},
		{"two thirds", prec(9), quo("2", "3", -2), "0.67", FlagInexact | FlagRounded},
		{"exact", prec(9), quo("1", "4", -4), "0.2500", 0},
		{"tiny", NewContext(9, Up), quo("1", "3E+20", 0), "1", FlagInexact | FlagRounded},
		{"too long", prec(9), quo("1E+20", "1", 0), "NaN", FlagInvalid},
	})
}

func TestArith_DivideToInteger(t *testing.T) {
	natural := func(x, y string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.DivideToIntegerNaturalScale(MustParse(x), MustParse(y), ctx)
		}
	}
	zero := func(x, y string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.DivideToIntegerZeroScale(MustParse(x), MustParse(y), ctx)
		}
	}
	runArithTests(t, []arithTest{
		{"zero scale", prec(9), zero("7", "2"), "3", 0},
		{"zero scale 2", prec(9), zero("2.00", "1"), "2", 0},
		{"zero scale negative", prec(9), zero("-7", "2"), "-3", 0},
		{"natural", prec(9), natural("7.5", "0.5"), "15", 0},
		{"natural 2", prec(9), natural("2.00", "1"), "2.00", 0},
		{"natural 3", prec(9), natural("1E+3", "1"), "1E+3", 0},
		{"natural 4", prec(9), natural("1", "0.3"), "3", 0},
		{"less than one", prec(9), natural("1", "3"), "0", 0},
		{"too long", prec(3), zero("1E+5", "1"), "NaN", FlagInvalid},
		{"by zero", prec(9), zero("1", "0"), "Infinity", FlagDivideByZero},
	})
}

func TestArith_Remainder(t *testing.T) {
	rem := func(x, y string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.Remainder(MustParse(x), MustParse(y), ctx)
		}
	}
	near := func(x, y string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.RemainderNear(MustParse(x), MustParse(y), ctx)
		}
	}
	runArithTests(t, []arithTest{
		{"remainder", prec(9), rem("10", "3"), "1", 0},
		{"remainder negative", prec(9), rem("-7", "2"), "-1", 0},
		{"remainder fraction", prec(9), rem("7.5", "2"), "1.5", 0},
		{"remainder zero", prec(9), rem("-6", "3"), "-0", 0},
		{"remainder by zero", prec(9), rem("1", "0"), "NaN", FlagInvalid},
		{"remainder infinity", prec(9), rem("Inf", "1"), "NaN", FlagInvalid},
		{"remainder by infinity", prec(9), rem("5", "Inf"), "5", 0},
		{"remainder large divisor", prec(9), rem("5", "1E+20"), "5", 0},
		{"near", prec(9), near("10", "3"), "1", 0},
		{"near up", prec(9), near("10", "6"), "-2", 0},
		{"near tie", prec(9), near("3", "2"), "-1", 0},
		{"near tie even", prec(9), near("5", "2"), "1", 0},
		{"too long", prec(3), rem("1E+5", "3"), "NaN", FlagInvalid},
	})
}

func TestArith_Quantize(t *testing.T) {
	quantize := func(x, y string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.Quantize(MustParse(x), MustParse(y), ctx)
		}
	}
	runArithTests(t, []arithTest{
		{"pad", prec(9), quantize("2.17", "0.001"), "2.170", 0},
		{"round", prec(9), quantize("2.17", "0.1"), "2.2", FlagInexact | FlagRounded},
		{"round to zero", prec(9), quantize("2.17", "1E+1"), "0E+1", FlagInexact | FlagRounded},
		{"negative", prec(9), quantize("-0.1", "1"), "-0", FlagInexact | FlagRounded},
		{"exact rounded", prec(9), quantize("2.0", "1"), "2", FlagRounded},
		{"infinities", prec(9), quantize("Inf", "-Inf"), "Infinity", 0},
		{"infinity", prec(9), quantize("1", "Inf"), "NaN", FlagInvalid},
		{"too long", prec(3), quantize("123.45", "0.01"), "NaN", FlagInvalid},
		{"pad too long", prec(3), quantize("123", "0.1"), "NaN", FlagInvalid},
		{"subnormal", ranged(3, HalfEven, -2, 2), quantize("0.001", "0.0001"), "0.0010", FlagSubnormal},
		{"above emax", ranged(3, HalfEven, -2, 2), quantize("1", "1E+3"), "NaN", FlagInvalid},
		{"below etiny", ranged(3, HalfEven, -2, 2), quantize("1", "1E-5"), "NaN", FlagInvalid},
	})
}

func TestArith_Reduce(t *testing.T) {
	reduce := func(x string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.Reduce(MustParse(x), ctx)
		}
	}
	runArithTests(t, []arithTest{
		{"fraction", prec(9), reduce("1.200"), "1.2", 0},
		{"integer", prec(9), reduce("100"), "1E+2", 0},
		{"zero", prec(9), reduce("0.00"), "0", 0},
		{"negative zero", prec(9), reduce("-0E+5"), "-0", 0},
		{"rounded", prec(3), reduce("1.2049"), "1.2", FlagInexact | FlagRounded},
		{"infinity", prec(9), reduce("-Inf"), "-Infinity", 0},
	})
}

func TestArith_RoundToExponent(t *testing.T) {
	op := func(f func(Value, *big.Int, *Context) (Value, error), x string, exp int64) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return f(MustParse(x), big.NewInt(exp), ctx)
		}
	}
	runArithTests(t, []arithTest{
		{"simple", prec(9), op(decArith.RoundToExponentSimple, "2.5", 0), "2", FlagInexact | FlagRounded},
		{"simple up", NewContext(9, Up), op(decArith.RoundToExponentSimple, "2.01", -1), "2.1", FlagInexact | FlagRounded},
		{"simple above", prec(9), op(decArith.RoundToExponentSimple, "1E+2", 0), "1E+2", 0},
		{"exact", prec(9), op(decArith.RoundToExponentExact, "2.0", 0), "2", FlagRounded},
		{"exact inexact", prec(9), op(decArith.RoundToExponentExact, "2.5", 0), "NaN", FlagInvalid},
		{"no rounded flag", prec(9), op(decArith.RoundToExponentNoRoundedFlag, "2.5", 0), "2", FlagInexact},
		{"no rounded flag exact", prec(9), op(decArith.RoundToExponentNoRoundedFlag, "2.0", 0), "2", 0},
	})
}

func TestArith_RoundToPrecision(t *testing.T) {
	round := func(k *Arith, x string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return k.RoundToPrecision(MustParse(x), ctx)
		}
	}
	runArithTests(t, []arithTest{
		{"inexact", prec(3), round(decArith, "12345"), "1.23E+4", FlagInexact | FlagRounded},
		{"exact", prec(3), round(decArith, "12300"), "1.23E+4", FlagRounded},
		{"half up", NewContext(3, HalfUp), round(decArith, "12350"), "1.24E+4", FlagInexact | FlagRounded},
		{"half down", NewContext(3, HalfDown), round(decArith, "12350"), "1.23E+4", FlagInexact | FlagRounded},
		{"carry", prec(3), round(decArith, "9996"), "1.00E+4", FlagInexact | FlagRounded},
		{"fits", prec(3), round(decArith, "1.23"), "1.23", 0},
		{"zero clamped", ranged(3, HalfEven, -2, 2), round(decArith, "0E+9"), "0E+2", FlagClamped},
		{"zero five up", NewContext(3, ZeroFiveUp), round(decArith, "1201"), "1.21E+3", FlagInexact | FlagRounded},
		{"zero five up 2", NewContext(3, ZeroFiveUp), round(decArith, "1221"), "1.22E+3", FlagInexact | FlagRounded},
	})

	t.Run("binary", func(t *testing.T) {
		ctx := prec(2)
		got, err := binArith.RoundToPrecision(New(13, 0), ctx)
		require.NoError(t, err)
		assert.Equal(t, "3p2", got.BinaryString())
		assert.Equal(t, FlagInexact|FlagRounded, ctx.Flags)
	})

	t.Run("unnecessary", func(t *testing.T) {
		_, err := decArith.RoundToPrecision(New(12345, 0), NewContext(3, Unnecessary))
		assert.True(t, errors.Is(err, ErrRoundingNecessary), "RoundToPrecision() = %v", err)
	})
}

func TestArith_RoundToBinaryPrecision(t *testing.T) {
	round := func(x string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.RoundToBinaryPrecision(MustParse(x), ctx)
		}
	}
	runArithTests(t, []arithTest{
		{"fits", prec(4), round("15"), "15", 0},
		{"exact", prec(4), round("100"), "1.0E+2", FlagRounded},
		{"inexact", prec(4), round("17"), "2E+1", FlagInexact | FlagRounded},
	})
}

func TestArith_Next(t *testing.T) {
	ctx := func() *Context { return ranged(3, HalfEven, -5, 5) }
	plus := func(x string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.NextPlus(MustParse(x), ctx)
		}
	}
	minus := func(x string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.NextMinus(MustParse(x), ctx)
		}
	}
	toward := func(x, y string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.NextToward(MustParse(x), MustParse(y), ctx)
		}
	}
	runArithTests(t, []arithTest{
		{"plus", ctx(), plus("1"), "1.01", 0},
		{"plus negative", ctx(), plus("-1"), "-0.999", 0},
		{"plus zero", ctx(), plus("0"), "1E-7", 0},
		{"plus max", ctx(), plus("9.99E+5"), "Infinity", 0},
		{"plus -inf", ctx(), plus("-Inf"), "-9.99E+5", 0},
		{"plus inf", ctx(), plus("Inf"), "Infinity", 0},
		{"minus", ctx(), minus("1"), "0.999", 0},
		{"minus zero", ctx(), minus("0"), "-1E-7", 0},
		{"minus inf", ctx(), minus("Inf"), "9.99E+5", 0},
		{"minus unbounded", UnlimitedContext(), minus("1"), "NaN", FlagInvalid},
		{"toward", ctx(), toward("1", "2"), "1.01", 0},
		{"toward down", ctx(), toward("1", "-2"), "0.999", 0},
		{"toward equal", ctx(), toward("0", "-0"), "-0", 0},
		{"toward subnormal", ctx(), toward("1E-5", "0"), "0.0000099",
			FlagInexact | FlagRounded | FlagSubnormal | FlagUnderflow},
		{"toward overflow", ctx(), toward("9.99E+5", "Inf"), "Infinity",
			FlagInexact | FlagRounded | FlagOverflow},
	})
}

func TestArith_Compare(t *testing.T) {
	tests := []struct {
		x, y string
		want int
	}{
		{"2.0", "2.00", 0},
		{"-0", "0", 0},
		{"1", "2", -1},
		{"-1", "-2", 1},
		{"1E+2", "99", 1},
		{"0.1", "0.09", 1},
		{"-Inf", "-1E+999", -1},
		{"Inf", "Inf", 0},
		{"NaN", "Inf", 1},
		{"1", "sNaN", -1},
	}
	for _, tt := range tests {
		got := decArith.Compare(MustParse(tt.x), MustParse(tt.y))
		if got != tt.want {
			t.Errorf("Compare(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestArith_MinMaxMagnitude(t *testing.T) {
	maxMag := func(x, y string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.MaxMagnitude(MustParse(x), MustParse(y), ctx)
		}
	}
	minMag := func(x, y string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.MinMagnitude(MustParse(x), MustParse(y), ctx)
		}
	}
	cmpCtx := func(x, y string, signaling bool) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.CompareToWithContext(MustParse(x), MustParse(y), signaling, ctx)
		}
	}
	runArithTests(t, []arithTest{
		{"max magnitude", prec(9), maxMag("-3", "2"), "-3", 0},
		{"max magnitude tie", prec(9), maxMag("-2", "2"), "2", 0},
		{"max magnitude exponent", prec(9), maxMag("2.0", "2.00"), "2.0", 0},
		{"min magnitude", prec(9), minMag("-3", "2"), "2", 0},
		{"min magnitude tie", prec(9), minMag("-2", "2"), "-2", 0},
		{"min magnitude exponent", prec(9), minMag("2.0", "2.00"), "2.00", 0},
		{"compare", prec(9), cmpCtx("1", "2", false), "-1", 0},
		{"compare equal", prec(9), cmpCtx("2.0", "2", false), "0", 0},
		{"compare nan", prec(9), cmpCtx("NaN", "2", false), "NaN", 0},
		{"compare nan signaling", prec(9), cmpCtx("NaN", "2", true), "NaN", FlagInvalid},
		{"compare snan", prec(9), cmpCtx("1", "sNaN3", false), "NaN3", FlagInvalid},
	})
}

func TestArith_SquareRoot(t *testing.T) {
	sqrt := func(x string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.SquareRoot(MustParse(x), ctx)
		}
	}
	runArithTests(t, []arithTest{
		{"exact", prec(9), sqrt("4"), "2", 0},
		{"exact fraction", prec(9), sqrt("0.04"), "0.2", 0},
		{"ideal exponent", prec(9), sqrt("1.00"), "1.0", 0},
		{"inexact", prec(9), sqrt("2"), "1.41421356", FlagInexact | FlagRounded},
		{"inexact 2", prec(16), sqrt("10"), "3.162277660168379", FlagInexact | FlagRounded},
		{"zero", prec(9), sqrt("-0.00"), "-0.0", 0},
		{"negative", prec(9), sqrt("-1"), "NaN", FlagInvalid},
		{"infinity", prec(9), sqrt("Inf"), "Infinity", 0},
		{"unbounded exact", UnlimitedContext(), sqrt("152.2756"), "12.34", 0},
		{"unbounded inexact", UnlimitedContext(), sqrt("2"), "NaN", FlagInvalid},
	})
}

func TestArith_Transcendental(t *testing.T) {
	exp := func(x string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.Exp(MustParse(x), ctx)
		}
	}
	ln := func(x string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.Ln(MustParse(x), ctx)
		}
	}
	log10 := func(x string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.Log10(MustParse(x), ctx)
		}
	}
	runArithTests(t, []arithTest{
		{"exp zero", prec(9), exp("0"), "1", 0},
		{"exp one", prec(9), exp("1"), "2.71828183", FlagInexact | FlagRounded},
		{"exp minus one", prec(9), exp("-1"), "0.367879441", FlagInexact | FlagRounded},
		{"exp ten", prec(9), exp("10"), "22026.4658", FlagInexact | FlagRounded},
		{"exp -inf", prec(9), exp("-Inf"), "0", 0},
		{"exp inf", prec(9), exp("Inf"), "Infinity", 0},
		{"exp unbounded", UnlimitedContext(), exp("1"), "NaN", FlagInvalid},
		{"exp huge negative", prec(9), exp("-1E+50"),
			"2.20489826E-43429448190325182765112891891660508229439700580367", FlagInexact | FlagRounded},
		{"exp huge", prec(9), exp("1E+50"),
			"4.53535666E+43429448190325182765112891891660508229439700580366", FlagInexact | FlagRounded},
		{"ln one", prec(9), ln("1.000"), "0", 0},
		{"ln two", prec(9), ln("2"), "0.693147181", FlagInexact | FlagRounded},
		{"ln ten", prec(9), ln("10"), "2.30258509", FlagInexact | FlagRounded},
		{"ln half", prec(9), ln("0.5"), "-0.693147181", FlagInexact | FlagRounded},
		{"ln negative", prec(9), ln("-1"), "NaN", FlagInvalid},
		{"ln zero", prec(9), ln("0"), "-Infinity", 0},
		{"log10 power", prec(9), log10("1000"), "3", 0},
		{"log10 negative power", prec(9), log10("0.01"), "-2", 0},
		{"log10 two", prec(9), log10("2"), "0.301029996", FlagInexact | FlagRounded},
		{"log10 unbounded", UnlimitedContext(), log10("1E+10"), "10", 0},
	})

	t.Run("exp overflow", func(t *testing.T) {
		ctx := ranged(9, HalfEven, -99, 99)
		got, err := decArith.Exp(New(1000, 0), ctx)
		require.NoError(t, err)
		assert.True(t, got.IsInf())
		assert.Equal(t, FlagInexact|FlagRounded|FlagOverflow, ctx.Flags&(FlagInexact|FlagRounded|FlagOverflow))
	})
}

func TestArith_Pi(t *testing.T) {
	runArithTests(t, []arithTest{
		{"nine digits", prec(9), decArith.Pi, "3.14159265", FlagInexact | FlagRounded},
		{"rounded up", prec(4), decArith.Pi, "3.142", FlagInexact | FlagRounded},
		{"forty digits", prec(40), decArith.Pi, "3.141592653589793238462643383279502884197", FlagInexact | FlagRounded},
		{"unbounded", UnlimitedContext(), decArith.Pi, "NaN", FlagInvalid},
	})

	t.Run("binary", func(t *testing.T) {
		ctx := NewContext(8, HalfEven)
		got, err := binArith.Pi(ctx)
		require.NoError(t, err)
		// π = 11.00100100001...b
		assert.Equal(t, "201p-6", got.BinaryString())
		assert.Equal(t, FlagInexact|FlagRounded, ctx.Flags)
	})
}

func TestArith_Power(t *testing.T) {
	pow := func(x, y string) func(*Context) (Value, error) {
		return func(ctx *Context) (Value, error) {
			return decArith.Power(MustParse(x), MustParse(y), ctx)
		}
	}
	runArithTests(t, []arithTest{
		{"integer", prec(9), pow("2", "10"), "1024", 0},
		{"negative exponent", prec(9), pow("2", "-2"), "0.25", 0},
		{"negative base", prec(9), pow("-2", "3"), "-8", 0},
		{"negative base even", prec(9), pow("-2", "4"), "16", 0},
		{"fraction base", prec(9), pow("1.1", "2"), "1.21", 0},
		{"rounded", prec(3), pow("2", "10"), "1.02E+3", FlagInexact | FlagRounded},
		{"radix power", prec(9), pow("10", "200"), "1.00000000E+200", FlagRounded},
		{"radix power exact", prec(9), pow("1.00", "3"), "1.000000", 0},
		{"square root", prec(9), pow("2", "0.5"), "1.41421356", FlagInexact | FlagRounded},
		{"one", prec(9), pow("1", "12.5"), "1", 0},
		{"zero exponent", prec(9), pow("7", "0"), "1", 0},
		{"zero zero", prec(9), pow("0", "0"), "NaN", FlagInvalid},
		{"zero negative", prec(9), pow("-0", "-3"), "-Infinity", 0},
		{"zero positive", prec(9), pow("0", "2"), "0", 0},
		{"infinity negative", prec(9), pow("Inf", "-1"), "0", 0},
		{"infinity", prec(9), pow("-Inf", "3"), "-Infinity", 0},
		{"infinite exponent", prec(9), pow("0.5", "Inf"), "0", 0},
		{"infinite exponent 2", prec(9), pow("2", "Inf"), "Infinity", 0},
		{"negative fractional", prec(9), pow("-8", "0.5"), "NaN", FlagInvalid},
		{"unbounded", UnlimitedContext(), pow("2", "100"), "1267650600228229401496703205376", 0},
		{"unbounded inexact", UnlimitedContext(), pow("2", "0.5"), "NaN", FlagInvalid},
	})
}

func TestArith_FiniteOnly(t *testing.T) {
	k := NewArith(FiniteDecimalKind)
	ctx := prec(9)

	_, err := k.Divide(New(1, 0), New(0, 0), ctx)
	assert.True(t, errors.Is(err, ErrOverflow), "Divide(1, 0) = %v, want %v", err, ErrOverflow)

	_, err = k.Divide(New(0, 0), New(0, 0), ctx)
	assert.True(t, errors.Is(err, ErrInvalidOperation), "Divide(0, 0) = %v, want %v", err, ErrInvalidOperation)

	_, err = k.Multiply(New(999, 0), New(999, 0), ranged(3, HalfEven, -2, 2))
	assert.True(t, errors.Is(err, ErrOverflow), "Multiply(999, 999) = %v, want %v", err, ErrOverflow)

	got, err := k.Multiply(New(999, 0), New(999, 0), ranged(3, Down, -2, 2))
	require.NoError(t, err)
	assert.Equal(t, "999", got.String())
}

func TestArith_Traps(t *testing.T) {
	ctx := prec(9).WithTraps(FlagDivideByZero)
	_, err := decArith.Divide(New(1, 0), New(0, 0), ctx)
	var trap *TrapError
	require.True(t, errors.As(err, &trap), "Divide(1, 0) = %v, want *TrapError", err)
	assert.Equal(t, FlagDivideByZero, trap.Flags)
	assert.Equal(t, Flags(0), ctx.Flags)
}
