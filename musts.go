package radixmath

import "fmt"

// Must returns v, or panics if err is not nil.
// It suits operations that cannot fail under their context, such as any
// operation of a kind with special values and a context without traps.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("Must(%v) failed: %v", v, err))
	}
	return v
}

// MustAdd is like [Engine.Add] but panics if computing error.
func (e *Engine[T]) MustAdd(x, y T, ctx *Context) T {
	z, err := e.Add(x, y, ctx)
	if err != nil {
		panic(fmt.Sprintf("MustAdd(%v, %v) failed: %v", x, y, err))
	}
	return z
}

// MustMultiply is like [Engine.Multiply] but panics if computing error.
func (e *Engine[T]) MustMultiply(x, y T, ctx *Context) T {
	z, err := e.Multiply(x, y, ctx)
	if err != nil {
		panic(fmt.Sprintf("MustMultiply(%v, %v) failed: %v", x, y, err))
	}
	return z
}

// MustDivide is like [Engine.Divide] but panics if computing error.
func (e *Engine[T]) MustDivide(x, y T, ctx *Context) T {
	z, err := e.Divide(x, y, ctx)
	if err != nil {
		panic(fmt.Sprintf("MustDivide(%v, %v) failed: %v", x, y, err))
	}
	return z
}
