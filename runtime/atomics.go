package runtime

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	wasmbuiltins "github.com/wippyai/wasm-builtins"
	"github.com/wippyai/wasm-builtins/errors"
	"github.com/wippyai/wasm-builtins/tagged"
	"github.com/wippyai/wasm-builtins/trap"
)

// checkAtomicAccess validates an access of size bytes at addr. Misaligned
// and out-of-bounds accesses trap.
func (iso *Isolate) checkAtomicAccess(inst *Instance, addr, size uint32, nctx *NativeContext) (wasmbuiltins.Memory, error) {
	mem := inst.Memory()
	if mem == nil || uint64(addr)+uint64(size) > uint64(mem.Size()) {
		return nil, iso.newTrap(trap.MessageID(trap.MemOutOfBounds), nctx)
	}
	if addr%size != 0 {
		return nil, iso.newTrap(trap.MessageID(trap.UnalignedAccess), nctx)
	}
	return mem, nil
}

func (iso *Isolate) atomicNotify(_ context.Context, args Arguments) (tagged.Value, error) {
	inst, err := args.Instance(0)
	if err != nil {
		return nil, err
	}
	addr, err := args.Uint32(1)
	if err != nil {
		return nil, err
	}
	count, err := args.Uint32(2)
	if err != nil {
		return nil, err
	}

	mem, err := iso.checkAtomicAccess(inst, addr, 4, args.Context)
	if err != nil {
		return nil, err
	}

	woken := iso.futex.notify(futexKey{memory: mem, addr: addr}, count)
	// Waiter counts beyond MaxSmi are reported as MaxSmi.
	if woken > tagged.MaxSmi {
		woken = tagged.MaxSmi
	}
	return tagged.SmiFromInt32(int32(woken)), nil
}

func (iso *Isolate) i32AtomicWait(ctx context.Context, args Arguments) (tagged.Value, error) {
	inst, err := args.Instance(0)
	if err != nil {
		return nil, err
	}
	addr, err := args.Uint32(1)
	if err != nil {
		return nil, err
	}
	expected, err := args.Int32(2)
	if err != nil {
		return nil, err
	}
	timeoutNs, err := args.Float64(3)
	if err != nil {
		return nil, err
	}

	mem, err := iso.checkAtomicAccess(inst, addr, 4, args.Context)
	if err != nil {
		return nil, err
	}
	if !iso.allowAtomicsWait {
		return nil, errors.Unsupported(errors.PhaseRuntime, WasmI32AtomicWait.String(), "atomics wait is not allowed in this isolate")
	}

	return iso.wait(ctx, inst, futexKey{memory: mem, addr: addr}, timeoutNs, func() bool {
		v, ok := mem.ReadUint32Le(addr)
		return ok && int32(v) == expected
	})
}

func (iso *Isolate) i64AtomicWait(ctx context.Context, args Arguments) (tagged.Value, error) {
	inst, err := args.Instance(0)
	if err != nil {
		return nil, err
	}
	addr, err := args.Uint32(1)
	if err != nil {
		return nil, err
	}
	high, err := args.Uint32(2)
	if err != nil {
		return nil, err
	}
	low, err := args.Uint32(3)
	if err != nil {
		return nil, err
	}
	timeoutNs, err := args.Float64(4)
	if err != nil {
		return nil, err
	}

	mem, err := iso.checkAtomicAccess(inst, addr, 8, args.Context)
	if err != nil {
		return nil, err
	}
	if !iso.allowAtomicsWait {
		return nil, errors.Unsupported(errors.PhaseRuntime, WasmI64AtomicWait.String(), "atomics wait is not allowed in this isolate")
	}

	expected := uint64(high)<<32 | uint64(low)
	return iso.wait(ctx, inst, futexKey{memory: mem, addr: addr}, timeoutNs, func() bool {
		v, ok := mem.ReadUint64Le(addr)
		return ok && v == expected
	})
}

func (iso *Isolate) wait(ctx context.Context, inst *Instance, key futexKey, timeoutNs float64, check func() bool) (tagged.Value, error) {
	timeout := time.Duration(-1)
	if timeoutNs >= 0 && timeoutNs < math.MaxInt64 {
		timeout = time.Duration(timeoutNs)
	}

	result, err := iso.futex.wait(ctx, key, timeout, check)
	if err == errFutexClosed {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindTerminated, err, "atomic wait on closed isolate")
	}
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInterrupted, err, "atomic wait")
	}
	iso.log.Debug("atomic wait finished",
		zap.String("instance", inst.Name()),
		zap.Uint32("address", key.addr),
		zap.Int32("result", result))
	return tagged.SmiFromInt32(result), nil
}
