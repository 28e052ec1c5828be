// Package builtins implements the trampolines compiled guest code calls to
// reach host runtime services.
//
// Every builtin follows the same sequence: read the instance from the caller
// frame, read the native context and the generic entry stub from the
// instance, box raw arguments into tagged values, and dispatch.
//
// Two dispatch modes exist. A tail dispatch hands the runtime result (or the
// thrown error) straight back to the guest; builtins using it return a Tail
// and cannot inspect the outcome. A call-and-return dispatch resumes the
// builtin so it can unbox the result into a raw value.
//
//	Builtin              Guard                 Dispatch
//	─────────────────────────────────────────────────────────────
//	MemoryGrow           pages fits Smi        call, unbox; else -1
//	TableGet / TableSet  entry fits Smi        tail; else trap
//	StackGuard           none                  tail
//	StackOverflow        none                  tail
//	Throw / Rethrow      none                  tail
//	AtomicNotify         none                  call, unbox
//	I32/I64AtomicWait    none                  call, unbox
//	ThrowWasm<Reason>    none                  tail to ThrowWasmError
//
// No raw value is kept across a dispatch: boxing completes before the call,
// and anything needed afterwards is read from the returned tagged value.
package builtins
