// Package wasmbuiltins implements the builtins that compiled WebAssembly code
// calls to reach services of the managed host runtime.
//
// Guest code runs with raw machine values and no exceptions; the host runtime
// only understands tagged values. Each builtin boxes its raw arguments, locates
// the current instance from the caller frame, and dispatches through the single
// generic entry stub in the isolate's root table.
//
// # Architecture Overview
//
//	wasmbuiltins/        Root package with the Memory interface
//	├── tagged/          Tagged value representation and boxing codec
//	├── trap/            Trap reason catalogue and message templates
//	├── runtime/         Host runtime: isolate, root table, CEntry, services
//	├── builtins/        Builtins (trampolines) and trap builtins
//	├── engine/          wazero host module exposing builtins to guests
//	├── errors/          Structured error types
//	├── cmd/run/         CLI and interactive dispatch tracer
//	└── internal/        Test memory and a minimal wasm binary encoder
//
// # Quick Start
//
//	eng, err := engine.New(ctx, nil) // engine.DefaultConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//
//	mod, err := eng.LoadModule(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inst, err := mod.Instantiate(ctx, &engine.InstanceConfig{
//	    Tables: []engine.TableConfig{{Size: 8}},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Close(ctx)
//
//	results, err := inst.Call(ctx, "run")
//
// Guests import builtins from the "wasm_builtins" module:
//
//	(import "wasm_builtins" "memory_grow" (func (param i32) (result i32)))
//	(import "wasm_builtins" "table_get" (func (param i32 i32) (result i32)))
//	(import "wasm_builtins" "trap_table_out_of_bounds" (func))
//
// # Thread Safety
//
// Engine, Isolate and Instance are safe for concurrent use. Concurrent calls
// into one instance share its memory, which is what atomic wait and notify
// synchronize.
package wasmbuiltins
