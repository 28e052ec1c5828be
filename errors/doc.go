// Package errors provides structured error types for the wasm-builtins library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the builtin or runtime service involved, the offending
// value and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
//		Service("WasmMemoryGrow").
//		Value(args).
//		Detail("argument %d is not a tagged value", 1).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseRuntime, "table", 5, 3)
//	err := errors.StackOverflow()
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
