// Package runtime is the managed host runtime that builtins dispatch into.
//
// It owns the data the builtins read but never own themselves:
//
//	Isolate        process-wide state, root table, runtime function table
//	RootTable      builtin entry points; SlotCEntry holds the generic stub
//	NativeContext  the realm an instance belongs to
//	Instance       one sandbox instance (memory, tables, reference handles)
//	Frame          compiled-code frames with fixed slots
//
// Runtime services are numbered by FunctionID and reached only through
// CEntry.Call. Every argument and result of a service is a tagged.Value;
// a service reports a thrown error (trap, exception, termination) through its
// error result.
package runtime
