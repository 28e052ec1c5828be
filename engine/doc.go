// Package engine hosts guest WebAssembly modules on wazero and exposes the
// builtins to them as a host module.
//
// # Architecture
//
// The engine package provides three main types:
//
//	Engine   - wazero runtime, isolate and the builtins host module
//	Module   - a compiled guest whose imports resolved against the builtins
//	Instance - a running guest bound to a runtime.Instance
//
// # Instantiation Flow
//
//  1. New() validates Config and instantiates the host module under
//     Config.ModuleName ("wasm_builtins" by default)
//  2. Engine.LoadModule() compiles the guest and checks every import
//     against the builtin descriptors
//  3. Module.Instantiate() creates the wazero module together with its
//     native context, function tables and reference handles
//  4. Instance.Call() invokes guest exports
//
// # Calling Convention
//
// Builtins take raw wasm values. Tagged values crossing the boundary are
// passed as i32 reference handles (0 is null):
//
//	Export                 Params                             Results
//	──────────────────────────────────────────────────────────────────
//	stack_guard            -                                  -
//	stack_overflow         -                                  -
//	throw, rethrow         handle                             -
//	atomic_notify          address i32, count i32             i32
//	i32_atomic_wait        address i32, expected i32, f64     i32
//	i64_atomic_wait        address i32, high i32, low i32, f64 i32
//	memory_grow            pages i32                          i32
//	table_get              table i32, entry i32               handle
//	table_set              table i32, entry i32, handle       -
//	trap_<reason>          -                                  -
//
// A builtin that throws unwinds the guest. Instance.Call returns the thrown
// error wrapped, so callers match it with errors.As:
//
//	_, err := inst.Call(ctx, "run")
//	var te *trap.Error
//	if errors.As(err, &te) {
//	    log.Printf("trap: %s", te.Reason)
//	}
package engine
