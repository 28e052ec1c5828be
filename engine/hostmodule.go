package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-builtins/builtins"
	"github.com/wippyai/wasm-builtins/errors"
	"github.com/wippyai/wasm-builtins/runtime"
	"github.com/wippyai/wasm-builtins/tagged"
)

// hostCall decodes the raw guest stack, runs one builtin and encodes its
// results back onto the stack.
type hostCall func(ctx context.Context, f *runtime.Frame, inst *Instance, stack []uint64) error

func (e *Engine) instantiateHostModule(ctx context.Context) (api.Module, error) {
	builder := e.runtime.NewHostModuleBuilder(e.cfg.ModuleName)
	for _, d := range builtins.Descriptors() {
		builder = builder.NewFunctionBuilder().
			WithGoModuleFunction(e.hostFunc(d), valueTypes(d.Params), valueTypes(d.Results)).
			WithName(d.Name).
			WithParameterNames(paramNames(d.Params)...).
			Export(d.Export)
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Registration(errors.PhaseHost, e.cfg.ModuleName, "builtins", err)
	}
	return mod, nil
}

// hostFunc adapts a builtin to wazero. Errors unwind the guest by panicking;
// wazero returns them wrapped from the guest call.
func (e *Engine) hostFunc(d builtins.Descriptor) api.GoModuleFunc {
	call := hostCallFor(d.ID)
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		inst := e.instance(mod)
		if inst == nil {
			panic(errors.NotInitialized(errors.PhaseHost, "instance of module "+mod.Name()))
		}

		// Host functions cannot see the calling function index.
		f := runtime.NewWasmFrame(inst.rt, 0).EnterBuiltin()
		if err := call(ctx, f, inst, stack); err != nil {
			if ce := e.log.Check(zap.DebugLevel, "builtin threw"); ce != nil {
				ce.Write(
					zap.String("builtin", d.Name),
					zap.Stringer("instance", inst.rt),
					zap.Error(err),
				)
			}
			panic(err)
		}
	}
}

func hostCallFor(id builtins.ID) hostCall {
	if reason, ok := id.Trap(); ok {
		fn, _ := builtins.TrapBuiltin(reason)
		return func(ctx context.Context, f *runtime.Frame, _ *Instance, _ []uint64) error {
			return terminal(id, fn(ctx, f))
		}
	}

	switch id {
	case builtins.WasmStackGuard:
		return func(ctx context.Context, f *runtime.Frame, _ *Instance, _ []uint64) error {
			return builtins.StackGuard(ctx, f).Err()
		}
	case builtins.WasmStackOverflow:
		return func(ctx context.Context, f *runtime.Frame, _ *Instance, _ []uint64) error {
			return terminal(id, builtins.StackOverflow(ctx, f))
		}
	case builtins.WasmThrow:
		return func(ctx context.Context, f *runtime.Frame, inst *Instance, stack []uint64) error {
			exception, err := inst.resolve(stack[0])
			if err != nil {
				return err
			}
			return terminal(id, builtins.Throw(ctx, f, exception))
		}
	case builtins.WasmRethrow:
		return func(ctx context.Context, f *runtime.Frame, inst *Instance, stack []uint64) error {
			exception, err := inst.resolve(stack[0])
			if err != nil {
				return err
			}
			return terminal(id, builtins.Rethrow(ctx, f, exception))
		}
	case builtins.WasmAtomicNotify:
		return func(ctx context.Context, f *runtime.Frame, _ *Instance, stack []uint64) error {
			woken, err := builtins.AtomicNotify(ctx, f, api.DecodeU32(stack[0]), api.DecodeU32(stack[1]))
			if err != nil {
				return err
			}
			stack[0] = api.EncodeI32(woken)
			return nil
		}
	case builtins.WasmI32AtomicWait:
		return func(ctx context.Context, f *runtime.Frame, _ *Instance, stack []uint64) error {
			status, err := builtins.I32AtomicWait(ctx, f,
				api.DecodeU32(stack[0]), api.DecodeI32(stack[1]), api.DecodeF64(stack[2]))
			if err != nil {
				return err
			}
			stack[0] = api.EncodeI32(status)
			return nil
		}
	case builtins.WasmI64AtomicWait:
		return func(ctx context.Context, f *runtime.Frame, _ *Instance, stack []uint64) error {
			status, err := builtins.I64AtomicWait(ctx, f,
				api.DecodeU32(stack[0]), api.DecodeU32(stack[1]), api.DecodeU32(stack[2]), api.DecodeF64(stack[3]))
			if err != nil {
				return err
			}
			stack[0] = api.EncodeI32(status)
			return nil
		}
	case builtins.WasmMemoryGrow:
		return func(ctx context.Context, f *runtime.Frame, _ *Instance, stack []uint64) error {
			prev, err := builtins.MemoryGrow(ctx, f, api.DecodeI32(stack[0]))
			if err != nil {
				return err
			}
			stack[0] = api.EncodeI32(prev)
			return nil
		}
	case builtins.WasmTableGet:
		return func(ctx context.Context, f *runtime.Frame, inst *Instance, stack []uint64) error {
			tableIndex, err := decodeTableIndex(stack[0])
			if err != nil {
				return err
			}
			value, err := builtins.TableGet(ctx, f, tableIndex, api.DecodeI32(stack[1])).Result()
			if err != nil {
				return err
			}
			h, err := inst.rt.Refs().Insert(value)
			if err != nil {
				return errors.Wrap(errors.PhaseHost, errors.KindInvalidData, err, "export table entry")
			}
			stack[0] = api.EncodeU32(uint32(h))
			return nil
		}
	case builtins.WasmTableSet:
		return func(ctx context.Context, f *runtime.Frame, inst *Instance, stack []uint64) error {
			tableIndex, err := decodeTableIndex(stack[0])
			if err != nil {
				return err
			}
			value, err := inst.resolve(stack[2])
			if err != nil {
				return err
			}
			return builtins.TableSet(ctx, f, tableIndex, api.DecodeI32(stack[1]), value).Err()
		}
	default:
		panic("engine: no host call for builtin " + id.String())
	}
}

// terminal returns the error a non-resuming builtin must unwind with. A
// runtime service that returned normally is reported as a dispatch error.
func terminal(id builtins.ID, t builtins.Tail) error {
	if err := t.Err(); err != nil {
		return err
	}
	return errors.New(errors.PhaseDispatch, errors.KindInvalidData).
		Service(builtins.Describe(id).Name).
		Detail("runtime service returned instead of throwing").
		Build()
}

// decodeTableIndex reads a table index the guest passes as a constant.
func decodeTableIndex(raw uint64) (tagged.Smi, error) {
	idx := api.DecodeU32(raw)
	smi, ok := tagged.TrySmall(int64(idx))
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseHost, "table", uint64(idx), uint64(tagged.MaxSmi)+1)
	}
	return smi, nil
}

func valueTypes(params []builtins.Param) []api.ValueType {
	if len(params) == 0 {
		return nil
	}
	types := make([]api.ValueType, len(params))
	for i, p := range params {
		types[i] = valueType(p.Type)
	}
	return types
}

func valueType(t wit.Type) api.ValueType {
	switch t.(type) {
	case wit.U64, wit.S64:
		return api.ValueTypeI64
	case wit.F32:
		return api.ValueTypeF32
	case wit.F64:
		return api.ValueTypeF64
	default:
		return api.ValueTypeI32
	}
}

func paramNames(params []builtins.Param) []string {
	if len(params) == 0 {
		return nil
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}
