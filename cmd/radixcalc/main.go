// Command radixcalc evaluates arbitrary-precision arithmetic under a
// configurable context and reports the conditions each computation raised.
package main

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/govalues/radixmath"
	"github.com/govalues/radixmath/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type engine = radixmath.Engine[radixmath.Value]

// app holds the global flags and the logger shared by all commands.
type app struct {
	configPath string
	preset     string
	precision  uint64
	rounding   string
	traps      string
	binary     bool
	verbose    bool

	logger *zap.Logger
}

func main() {
	a := &app{}
	err := a.command().Execute()
	a.sync()
	if err != nil {
		os.Exit(1)
	}
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:   "radixcalc",
		Short: "Arbitrary-precision decimal and binary arithmetic",
		Long: `radixcalc evaluates arithmetic under a precision, rounding mode and
exponent range taken from a named preset, and prints the result together
with the conditions raised (Inexact, Rounded, Overflow, ...).

Negative numbers must follow "--" so they are not taken for flags:
  radixcalc eval add -- 1 -2.5`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initLogger()
		},
	}
	a.bindFlags(root.PersistentFlags())

	root.AddCommand(a.evalCommand(), a.rpnCommand(), a.presetsCommand())
	return root
}

func (a *app) bindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&a.configPath, "config", "", "YAML file with additional presets")
	fs.StringVarP(&a.preset, "preset", "p", "", "context preset (default from config, decimal64)")
	fs.Uint64Var(&a.precision, "precision", 0, "override the preset precision, 0 is unbounded")
	fs.StringVar(&a.rounding, "rounding", "", "override the preset rounding mode")
	fs.StringVar(&a.traps, "traps", "", "conditions that fail the computation, e.g. Inexact|Overflow")
	fs.BoolVar(&a.binary, "binary", false, "use a radix 2 preset (binary64 by default) and the p exponent notation")
	fs.BoolVarP(&a.verbose, "verbose", "v", false, "log every operation")
}

func (a *app) initLogger() error {
	if a.logger != nil {
		return nil
	}
	cfg := zap.NewProductionConfig()
	if a.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	a.logger = logger
	return nil
}

func (a *app) sync() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// setup resolves the engine and context from the preset and the
// overriding flags.
func (a *app) setup(fs *pflag.FlagSet) (*engine, *radixmath.Context, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, nil, err
	}
	name := a.preset
	if a.binary && name == "" {
		name = "binary64"
	}
	p, err := cfg.Preset(name)
	if err != nil {
		return nil, nil, err
	}
	if a.binary && p.Radix != 2 {
		return nil, nil, errors.Newf("--binary needs a radix 2 preset, %q has radix %d", p.Name, p.Radix)
	}
	ctx, err := p.Context()
	if err != nil {
		return nil, nil, err
	}
	e := p.Engine()
	if fs.Changed("precision") {
		ctx.Precision = a.precision
	}
	if fs.Changed("rounding") {
		if ctx.Rounding, err = radixmath.ParseRounding(a.rounding); err != nil {
			return nil, nil, err
		}
	}
	if fs.Changed("traps") {
		if ctx.Traps, err = radixmath.ParseFlags(a.traps); err != nil {
			return nil, nil, err
		}
	}
	a.logger.Debug("context",
		zap.String("preset", p.Name),
		zap.Int("radix", e.Kind().Radix()),
		zap.Stringer("context", ctx))
	return e, ctx, nil
}

func binaryMode(e *engine) bool {
	return e.Kind().Radix() == 2
}

func parseValue(e *engine, s string) (radixmath.Value, error) {
	if binaryMode(e) {
		return radixmath.ParseBinary(s)
	}
	return radixmath.Parse(s)
}

func formatValue(e *engine, v radixmath.Value) string {
	if binaryMode(e) {
		return v.BinaryString()
	}
	return v.String()
}

func printResult(w io.Writer, e *engine, v radixmath.Value, ctx *radixmath.Context) {
	fmt.Fprintln(w, formatValue(e, v))
	if ctx.Flags != 0 {
		fmt.Fprintf(w, "flags: %v\n", ctx.Flags)
	}
}

func (a *app) evalCommand() *cobra.Command {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)

	return &cobra.Command{
		Use:   "eval OP ARG...",
		Short: "Evaluate a single operation",
		Long: "Evaluates a single operation and prints its result and raised conditions.\n\n" +
			"Operations: " + strings.Join(names, ", "),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ctx, err := a.setup(cmd.Flags())
			if err != nil {
				return err
			}
			r, err := a.eval(e, ctx, args[0], args[1:])
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), e, r, ctx)
			return nil
		},
	}
}

func (a *app) eval(e *engine, ctx *radixmath.Context, name string, args []string) (radixmath.Value, error) {
	op, ok := operations[strings.ToLower(name)]
	if !ok {
		return radixmath.Value{}, errors.Newf("unknown operation %q", name)
	}
	if len(args) != op.arity {
		return radixmath.Value{}, errors.Newf("%s takes %d arguments, got %d", name, op.arity, len(args))
	}
	vals, exp, err := op.parse(e, args)
	if err != nil {
		return radixmath.Value{}, errors.Wrapf(err, "%s", name)
	}
	return a.run(e, ctx, name, op, vals, exp)
}

// run applies op and logs the outcome.
func (a *app) run(e *engine, ctx *radixmath.Context, name string, op operation, vals []radixmath.Value, exp *big.Int) (radixmath.Value, error) {
	r, err := op.fn(e, vals, exp, ctx)
	if err != nil {
		a.logger.Debug("failed", zap.String("op", name), zap.Error(err))
		return radixmath.Value{}, errors.Wrapf(err, "%s", name)
	}
	if ce := a.logger.Check(zapcore.DebugLevel, "evaluated"); ce != nil {
		args := make([]string, len(vals))
		for i, v := range vals {
			args[i] = formatValue(e, v)
		}
		ce.Write(
			zap.String("op", name),
			zap.Strings("args", args),
			zap.String("result", formatValue(e, r)),
			zap.Stringer("flags", ctx.Flags))
	}
	return r, nil
}

func (a *app) rpnCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rpn EXPR",
		Short: "Evaluate an expression in reverse Polish notation",
		Long: `Evaluates a postfix expression with one context, so the conditions
accumulate over the whole computation.

Operators: + - * / ^ sqrt ln exp pi

Example:
  radixcalc rpn "2 sqrt 3 ^"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ctx, err := a.setup(cmd.Flags())
			if err != nil {
				return err
			}
			r, err := a.rpn(e, ctx, strings.Fields(strings.Join(args, " ")))
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), e, r, ctx)
			return nil
		},
	}
}

var rpnOperators = map[string]string{
	"+":    "add",
	"-":    "subtract",
	"*":    "multiply",
	"/":    "divide",
	"^":    "power",
	"sqrt": "sqrt",
	"ln":   "ln",
	"exp":  "exp",
	"pi":   "pi",
}

func (a *app) rpn(e *engine, ctx *radixmath.Context, tokens []string) (radixmath.Value, error) {
	var stack []radixmath.Value
	for i, tok := range tokens {
		name, ok := rpnOperators[tok]
		if !ok {
			v, err := parseValue(e, tok)
			if err != nil {
				return radixmath.Value{}, errors.Wrapf(err, "token %d", i+1)
			}
			stack = append(stack, v)
			continue
		}
		op := operations[name]
		if len(stack) < op.arity {
			return radixmath.Value{}, errors.Newf("token %d: %q needs %d operands", i+1, tok, op.arity)
		}
		top := len(stack) - op.arity
		r, err := a.run(e, ctx, name, op, stack[top:], nil)
		if err != nil {
			return radixmath.Value{}, errors.Wrapf(err, "token %d", i+1)
		}
		stack = append(stack[:top], r)
	}
	if len(stack) != 1 {
		return radixmath.Value{}, errors.Newf("expression leaves %d values", len(stack))
	}
	return stack[0], nil
}

func (a *app) presetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the available context presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return errors.Wrap(err, "failed to encode presets")
			}
			return enc.Close()
		},
	}
}
