/*
Package radixmath implements arbitrary-precision floating-point arithmetic
in radix 10 and radix 2 under an explicit arithmetic context.
This package follows the simplified arithmetic of the
[General Decimal Arithmetic Specification] (Appendix A, formerly ANSI X3.274-1996).

# Representation

[Value] is an immutable struct with three fields:

  - Form: the sign bit and whether the value is finite, an infinity,
    a quiet NaN or a signaling NaN.
  - Coefficient: a non-negative [big.Int] holding the digits of the value.
    For NaNs it holds the diagnostic payload.
  - Exponent: a [big.Int] power of the radix.

The numerical value of a finite value is calculated as:

  - -Coefficient * Radix^Exponent, if the sign bit is set.
  - Coefficient * Radix^Exponent, otherwise.

The radix is not stored in the value. It is a property of the [Kind]
interpreting it: [DecimalKind] and [BinaryKind] support special values,
[FiniteDecimalKind] and [FiniteBinaryKind] do not.

As in General Decimal Arithmetic, 1, 1.0 and 1.00 are the same number with
different exponents, see [Value.Identical].

# Engines

An [Engine] layers the context rules on top of a [Kernel], which computes the
raw results. [NewArith] returns the kernel of this package, and [Decimal] and
[Binary] are ready-made engines over it:

	ctx := radixmath.NewContext(9, radixmath.HalfEven)
	q, err := radixmath.Decimal.Divide(radixmath.New(1, 0), radixmath.New(3, 0), ctx)
	// q = 0.333333333, ctx.Flags = Inexact|Rounded

Any numeric type can be used with an engine by implementing [Kind] and [Kernel].

# Context

[Context] carries the settings of an operation and collects the conditions
it raises:

	| Field     | Meaning                                              | Zero value       |
	| --------- | ---------------------------------------------------- | ---------------- |
	| Precision | maximum digits in a coefficient                      | unbounded        |
	| Rounding  | rounding mode                                        | HalfEven         |
	| EMin      | smallest adjusted exponent of a normal value         | unbounded (nil)  |
	| EMax      | largest adjusted exponent                            | unbounded (nil)  |
	| HasFlags  | whether conditions are recorded in Flags             | false            |
	| Traps     | conditions that fail the operation with [TrapError]  | none             |
	| Flags     | conditions raised so far                             | none             |

A nil *Context is unbounded and records nothing.
Presets are available for the IEEE 754 interchange formats:

	| Preset               | Precision | EMin   | EMax  |
	| -------------------- | --------- | ------ | ----- |
	| [Decimal32Context]   | 7         | -95    | 96    |
	| [Decimal64Context]   | 16        | -383   | 384   |
	| [Decimal128Context]  | 34        | -6143  | 6144  |
	| [Binary32Context]    | 24        | -126   | 127   |
	| [Binary64Context]    | 53        | -1022  | 1023  |

# Operations

Every engine operation follows the same steps:

 1. Signaling NaN operands raise [FlagInvalid] and become quiet,
    quiet NaN operands are returned as they are.
 2. Operands with more digits than the precision are rounded first.
    If digits are lost, [FlagLostDigits], [FlagInexact] and [FlagRounded] are raised.
 3. The kernel computes the result with a blank copy of the context.
 4. The kernel's conditions, except [FlagClamped], are merged into the context,
    and the result is canonicalized: zeros lose their sign and exponent,
    positive exponents are expanded into the coefficient when the precision
    allows, and quotients lose trailing zeros.

Overflow yields an infinity, or the largest finite value when the rounding
mode rounds towards it ([Down], [ZeroFiveUp], [Ceiling] for negative and
[Floor] for positive values).

# Rounding

The following rounding modes are available:

	| Mode          | Description                                           |
	| ------------- | ----------------------------------------------------- |
	| [HalfEven]    | to nearest, ties to even                              |
	| [HalfUp]      | to nearest, ties away from zero                       |
	| [HalfDown]    | to nearest, ties towards zero                         |
	| [Up]          | away from zero                                        |
	| [Down]        | towards zero                                          |
	| [Ceiling]     | towards +Infinity                                     |
	| [Floor]       | towards -Infinity                                     |
	| [ZeroFiveUp]  | away from zero if the last digit is 0 or 5            |
	| [Unnecessary] | fails with [ErrRoundingNecessary] if digits are lost  |

Results of [Engine.Exp], [Engine.Ln], [Engine.Log10] and non-integer
[Engine.Power] are correctly rounded, except when the exact result lies on a
rounding boundary, where they may be off by one unit in the last place.

# Errors

Conditions are reported through [Context.Flags] and do not fail an operation.
Errors are returned in the following cases:

  - A trapped condition is raised: the error is a [*TrapError].
  - A finite-only kind meets an invalid operation or an overflow:
    [ErrInvalidOperation] or [ErrOverflow].
  - The [Unnecessary] rounding mode has to discard digits: [ErrRoundingNecessary].
  - An exponent difference is too large to shift by: [ErrExponentRange].

[General Decimal Arithmetic Specification]: https://speleotrove.com/decimal/decarith.html
[big.Int]: https://pkg.go.dev/math/big#Int
*/
package radixmath
