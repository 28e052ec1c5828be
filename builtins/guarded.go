package builtins

import (
	"context"

	"github.com/wippyai/wasm-builtins/runtime"
	"github.com/wippyai/wasm-builtins/tagged"
	"github.com/wippyai/wasm-builtins/trap"
)

// MemoryGrow grows the caller's memory by numPages and returns the previous
// size in pages. Requests that do not fit a Smi return -1 without reaching
// the runtime.
func MemoryGrow(ctx context.Context, f *runtime.Frame, numPages int32) (int32, error) {
	numPagesSmi, ok := tagged.TrySmall(int64(numPages))
	if !ok {
		return -1, nil
	}

	instance := loadInstanceFromFrame(f)
	centry := loadCEntryFromInstance(instance)
	nctx := loadContextFromInstance(instance)
	ret, err := callRuntime(ctx, centry, runtime.WasmMemoryGrow, nctx, instance, numPagesSmi)
	if err != nil {
		return 0, err
	}
	return tagged.UnboxSmi(ret), nil
}

// TableGet reads entry entryIndex of table tableIndex.
func TableGet(ctx context.Context, f *runtime.Frame, tableIndex tagged.Smi, entryIndex int32) Tail {
	instance := loadInstanceFromFrame(f)
	centry := loadCEntryFromInstance(instance)
	nctx := loadContextFromInstance(instance)

	entryIndexSmi, ok := tagged.TrySmall(int64(entryIndex))
	if !ok {
		return throwTrap(ctx, centry, nctx, trap.TableOutOfBounds)
	}

	return tailCallRuntime(ctx, centry, runtime.WasmFunctionTableGet, nctx,
		instance, tableIndex, entryIndexSmi)
}

// TableSet stores value at entry entryIndex of table tableIndex.
func TableSet(ctx context.Context, f *runtime.Frame, tableIndex tagged.Smi, entryIndex int32, value tagged.Value) Tail {
	instance := loadInstanceFromFrame(f)
	centry := loadCEntryFromInstance(instance)
	nctx := loadContextFromInstance(instance)

	entryIndexSmi, ok := tagged.TrySmall(int64(entryIndex))
	if !ok {
		return throwTrap(ctx, centry, nctx, trap.TableOutOfBounds)
	}

	return tailCallRuntime(ctx, centry, runtime.WasmFunctionTableSet, nctx,
		instance, tableIndex, entryIndexSmi, value)
}
