package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-builtins/builtins"
	"github.com/wippyai/wasm-builtins/internal/wasmtest"
)

// builtinImport imports the named builtin with its declared signature.
func builtinImport(t *testing.T, name string) wasmtest.Import {
	t.Helper()
	d, ok := builtins.Lookup(name)
	require.True(t, ok, "unknown builtin %s", name)
	return wasmtest.Import{
		Module: DefaultModuleName,
		Name:   name,
		Type: wasmtest.FuncType{
			Params:  toValTypes(valueTypes(d.Params)),
			Results: toValTypes(valueTypes(d.Results)),
		},
	}
}

func toValTypes(types []api.ValueType) []wasmtest.ValType {
	out := make([]wasmtest.ValType, len(types))
	for i, t := range types {
		switch t {
		case api.ValueTypeI64:
			out[i] = wasmtest.I64
		case api.ValueTypeF32:
			out[i] = wasmtest.F32
		case api.ValueTypeF64:
			out[i] = wasmtest.F64
		default:
			out[i] = wasmtest.I32
		}
	}
	return out
}

// forward exports name calling import idx with every parameter forwarded.
func forward(name string, idx uint32, imp wasmtest.Import) wasmtest.Func {
	body := make([][]byte, 0, len(imp.Type.Params)+1)
	for i := range imp.Type.Params {
		body = append(body, wasmtest.LocalGet(uint32(i)))
	}
	body = append(body, wasmtest.Call(idx))
	return wasmtest.Func{Export: name, Type: imp.Type, Body: wasmtest.Code(body...)}
}

// forwardingGuest wraps a single builtin import in an export named "run".
func forwardingGuest(t *testing.T, builtin string, mem *wasmtest.Memory) []byte {
	t.Helper()
	imp := builtinImport(t, builtin)
	m := &wasmtest.Module{
		Imports: []wasmtest.Import{imp},
		Funcs:   []wasmtest.Func{forward("run", 0, imp)},
		Memory:  mem,
	}
	return m.Encode()
}

func newTestEngine(t *testing.T, cfg *Config, opts ...Option) *Engine {
	t.Helper()
	ctx := context.Background()
	e, err := New(ctx, cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close(ctx) })
	return e
}

func instantiate(t *testing.T, e *Engine, wasm []byte, cfg *InstanceConfig) *Instance {
	t.Helper()
	ctx := context.Background()
	mod, err := e.LoadModule(ctx, wasm)
	require.NoError(t, err)
	inst, err := mod.Instantiate(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = inst.Close(ctx) })
	return inst
}
