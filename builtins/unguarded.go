package builtins

import (
	"context"

	"github.com/wippyai/wasm-builtins/runtime"
	"github.com/wippyai/wasm-builtins/tagged"
)

func StackGuard(ctx context.Context, f *runtime.Frame) Tail {
	instance := loadInstanceFromFrame(f)
	centry := loadCEntryFromInstance(instance)
	nctx := loadContextFromInstance(instance)
	return tailCallRuntime(ctx, centry, runtime.StackGuard, nctx)
}

func StackOverflow(ctx context.Context, f *runtime.Frame) Tail {
	instance := loadInstanceFromFrame(f)
	centry := loadCEntryFromInstance(instance)
	nctx := loadContextFromInstance(instance)
	return tailCallRuntime(ctx, centry, runtime.ThrowStackOverflow, nctx)
}

// Throw raises exception, which is already tagged.
func Throw(ctx context.Context, f *runtime.Frame, exception tagged.Value) Tail {
	instance := loadInstanceFromFrame(f)
	centry := loadCEntryFromInstance(instance)
	nctx := loadContextFromInstance(instance)
	return tailCallRuntime(ctx, centry, runtime.Throw, nctx, exception)
}

func Rethrow(ctx context.Context, f *runtime.Frame, exception tagged.Value) Tail {
	instance := loadInstanceFromFrame(f)
	centry := loadCEntryFromInstance(instance)
	nctx := loadContextFromInstance(instance)
	return tailCallRuntime(ctx, centry, runtime.ReThrow, nctx, exception)
}

// AtomicNotify wakes up to count waiters on address and returns how many woke.
func AtomicNotify(ctx context.Context, f *runtime.Frame, address, count uint32) (int32, error) {
	instance := loadInstanceFromFrame(f)
	centry := loadCEntryFromInstance(instance)

	// TODO: pass address and count as Smis when they fit, skipping the allocation.
	addressHeap := tagged.BoxUint32(address)
	countHeap := tagged.BoxUint32(count)

	result, err := callRuntime(ctx, centry, runtime.WasmAtomicNotify, nil,
		instance, addressHeap, countHeap)
	if err != nil {
		return 0, err
	}
	return tagged.UnboxSmi(result), nil
}

// I32AtomicWait blocks while the i32 at address equals expectedValue.
// timeout is in nanoseconds; negative waits forever.
func I32AtomicWait(ctx context.Context, f *runtime.Frame, address uint32, expectedValue int32, timeout float64) (int32, error) {
	instance := loadInstanceFromFrame(f)
	centry := loadCEntryFromInstance(instance)

	addressHeap := tagged.BoxUint32(address)
	expectedValueHeap := tagged.BoxInt32(expectedValue)
	timeoutHeap := tagged.BoxFloat64(timeout)

	result, err := callRuntime(ctx, centry, runtime.WasmI32AtomicWait, nil,
		instance, addressHeap, expectedValueHeap, timeoutHeap)
	if err != nil {
		return 0, err
	}
	return tagged.UnboxSmi(result), nil
}

// I64AtomicWait is I32AtomicWait for an i64 passed as two halves.
func I64AtomicWait(ctx context.Context, f *runtime.Frame, address, expectedValueHigh, expectedValueLow uint32, timeout float64) (int32, error) {
	instance := loadInstanceFromFrame(f)
	centry := loadCEntryFromInstance(instance)

	addressHeap := tagged.BoxUint32(address)
	expectedValueHighHeap := tagged.BoxUint32(expectedValueHigh)
	expectedValueLowHeap := tagged.BoxUint32(expectedValueLow)
	timeoutHeap := tagged.BoxFloat64(timeout)

	result, err := callRuntime(ctx, centry, runtime.WasmI64AtomicWait, nil,
		instance, addressHeap, expectedValueHighHeap, expectedValueLowHeap, timeoutHeap)
	if err != nil {
		return 0, err
	}
	return tagged.UnboxSmi(result), nil
}
