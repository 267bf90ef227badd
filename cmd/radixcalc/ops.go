package main

import (
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/govalues/radixmath"
)

type (
	unaryFunc    = func(*engine, radixmath.Value, *radixmath.Context) (radixmath.Value, error)
	binaryFunc   = func(*engine, radixmath.Value, radixmath.Value, *radixmath.Context) (radixmath.Value, error)
	exponentFunc = func(*engine, radixmath.Value, *big.Int, *radixmath.Context) (radixmath.Value, error)
)

// operation is an engine method callable by name.
// If exponent is true, the last argument is an integer exponent.
type operation struct {
	arity    int
	exponent bool
	fn       func(e *engine, v []radixmath.Value, exp *big.Int, ctx *radixmath.Context) (radixmath.Value, error)
}

func unary(f unaryFunc) operation {
	return operation{
		arity: 1,
		fn: func(e *engine, v []radixmath.Value, _ *big.Int, ctx *radixmath.Context) (radixmath.Value, error) {
			return f(e, v[0], ctx)
		},
	}
}

func binary(f binaryFunc) operation {
	return operation{
		arity: 2,
		fn: func(e *engine, v []radixmath.Value, _ *big.Int, ctx *radixmath.Context) (radixmath.Value, error) {
			return f(e, v[0], v[1], ctx)
		},
	}
}

func toExponent(f exponentFunc) operation {
	return operation{
		arity:    2,
		exponent: true,
		fn: func(e *engine, v []radixmath.Value, exp *big.Int, ctx *radixmath.Context) (radixmath.Value, error) {
			return f(e, v[0], exp, ctx)
		},
	}
}

var operations = map[string]operation{
	// Arithmetic
	"add":            binary((*engine).Add),
	"subtract":       binary(subtract),
	"multiply":       binary((*engine).Multiply),
	"divide":         binary((*engine).Divide),
	"divide-int":     binary((*engine).DivideToIntegerZeroScale),
	"divide-natural": binary((*engine).DivideToIntegerNaturalScale),
	"remainder":      binary((*engine).Remainder),
	"remainder-near": binary((*engine).RemainderNear),
	"power":          binary((*engine).Power),
	"fma": {
		arity: 3,
		fn: func(e *engine, v []radixmath.Value, _ *big.Int, ctx *radixmath.Context) (radixmath.Value, error) {
			return e.MultiplyAndAdd(v[0], v[1], v[2], ctx)
		},
	},
	"divide-to-exponent": {
		arity:    3,
		exponent: true,
		fn: func(e *engine, v []radixmath.Value, exp *big.Int, ctx *radixmath.Context) (radixmath.Value, error) {
			return e.DivideToExponent(v[0], v[1], exp, ctx)
		},
	},

	// Sign and rounding
	"abs":            unary((*engine).Abs),
	"negate":         unary((*engine).Negate),
	"plus":           unary((*engine).Plus),
	"round":          unary((*engine).RoundToPrecision),
	"round-binary":   unary((*engine).RoundToBinaryPrecision),
	"reduce":         unary((*engine).Reduce),
	"quantize":       binary((*engine).Quantize),
	"rescale":        toExponent((*engine).RoundToExponentSimple),
	"rescale-exact":  toExponent((*engine).RoundToExponentExact),
	"rescale-silent": toExponent((*engine).RoundToExponentNoRoundedFlag),

	// Functions
	"pi": {
		fn: func(e *engine, _ []radixmath.Value, _ *big.Int, ctx *radixmath.Context) (radixmath.Value, error) {
			return e.Pi(ctx)
		},
	},
	"sqrt":  unary((*engine).SquareRoot),
	"exp":   unary((*engine).Exp),
	"ln":    unary((*engine).Ln),
	"log10": unary((*engine).Log10),

	// Neighbors and comparison
	"next-plus":   unary((*engine).NextPlus),
	"next-minus":  unary((*engine).NextMinus),
	"next-toward": binary((*engine).NextToward),
	"max":         binary((*engine).Max),
	"min":         binary((*engine).Min),
	"max-mag":     binary((*engine).MaxMagnitude),
	"min-mag":     binary((*engine).MinMagnitude),
	"compare": binary(func(e *engine, x, y radixmath.Value, ctx *radixmath.Context) (radixmath.Value, error) {
		return e.CompareToWithContext(x, y, false, ctx)
	}),
	"compare-signal": binary(func(e *engine, x, y radixmath.Value, ctx *radixmath.Context) (radixmath.Value, error) {
		return e.CompareToWithContext(x, y, true, ctx)
	}),
}

// subtract returns x - y as x + (-y), with y negated exactly.
func subtract(e *engine, x, y radixmath.Value, ctx *radixmath.Context) (radixmath.Value, error) {
	return e.Add(x, negated(y), ctx)
}

func negated(v radixmath.Value) radixmath.Value {
	switch v.Category() {
	case radixmath.Finite:
		return radixmath.NewFromBig(!v.IsNeg(), v.Coef(), v.Exp())
	case radixmath.Infinity:
		return radixmath.Inf(!v.IsNeg())
	}
	return v
}

// parse converts the arguments of the operation.
func (op operation) parse(e *engine, args []string) ([]radixmath.Value, *big.Int, error) {
	n := len(args)
	var exp *big.Int
	if op.exponent {
		n--
		var ok bool
		exp, ok = new(big.Int).SetString(args[n], 10)
		if !ok {
			return nil, nil, errors.Newf("invalid exponent %q", args[n])
		}
	}
	vals := make([]radixmath.Value, n)
	for i := range vals {
		v, err := parseValue(e, args[i])
		if err != nil {
			return nil, nil, err
		}
		vals[i] = v
	}
	return vals, exp, nil
}
