package runtime

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-builtins/errors"
	"github.com/wippyai/wasm-builtins/internal/memtest"
	"github.com/wippyai/wasm-builtins/tagged"
	"github.com/wippyai/wasm-builtins/trap"
)

func newTestInstance(iso *Isolate, tableSizes ...uint32) (*Instance, *memtest.Memory) {
	mem := memtest.New(1, 4)
	tables := make([]*Table, len(tableSizes))
	for i, n := range tableSizes {
		tables[i] = NewTable(n, 0)
	}
	return iso.NewInstance(InstanceConfig{Name: "test", Memory: mem, Tables: tables}), mem
}

func call(t *testing.T, iso *Isolate, id FunctionID, nctx *NativeContext, args ...tagged.Value) (tagged.Value, error) {
	t.Helper()
	return cEntry(iso).Call(context.Background(), id, nctx, args...)
}

func TestMemoryGrow(t *testing.T) {
	iso := NewIsolate()
	inst, mem := newTestInstance(iso)

	result, err := call(t, iso, WasmMemoryGrow, inst.NativeContext(), inst, tagged.Smi(2))
	require.NoError(t, err)
	assert.Equal(t, tagged.Smi(1), result)
	assert.Equal(t, uint32(3), mem.Pages())

	result, err = call(t, iso, WasmMemoryGrow, inst.NativeContext(), inst, tagged.Smi(5))
	require.NoError(t, err)
	assert.Equal(t, tagged.Smi(-1), result)
	assert.Equal(t, uint32(3), mem.Pages())
}

func TestMemoryGrowWithoutMemory(t *testing.T) {
	iso := NewIsolate()
	inst := iso.NewInstance(InstanceConfig{Name: "nomem"})

	result, err := call(t, iso, WasmMemoryGrow, inst.NativeContext(), inst, tagged.Smi(1))
	require.NoError(t, err)
	assert.Equal(t, tagged.Smi(-1), result)
}

func TestMemoryGrowTypeMismatch(t *testing.T) {
	iso := NewIsolate()
	inst, _ := newTestInstance(iso)

	_, err := call(t, iso, WasmMemoryGrow, inst.NativeContext(), inst, tagged.BoxInt32(1))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindTypeMismatch}))
}

func TestFunctionTableGetSet(t *testing.T) {
	iso := NewIsolate()
	inst, _ := newTestInstance(iso, 3)
	nctx := inst.NativeContext()
	fn := tagged.NewObject("callee")

	result, err := call(t, iso, WasmFunctionTableGet, nctx, inst, tagged.Smi(0), tagged.Smi(2))
	require.NoError(t, err)
	assert.Equal(t, tagged.Null, result)

	result, err = call(t, iso, WasmFunctionTableSet, nctx, inst, tagged.Smi(0), tagged.Smi(2), fn)
	require.NoError(t, err)
	assert.Equal(t, tagged.Undefined, result)

	result, err = call(t, iso, WasmFunctionTableGet, nctx, inst, tagged.Smi(0), tagged.Smi(2))
	require.NoError(t, err)
	assert.Same(t, fn, result)
}

func TestFunctionTableOutOfBoundsTraps(t *testing.T) {
	iso := NewIsolate()
	inst, _ := newTestInstance(iso, 3)
	nctx := inst.NativeContext()

	_, err := call(t, iso, WasmFunctionTableGet, nctx, inst, tagged.Smi(0), tagged.Smi(5))
	require.Error(t, err)
	assert.True(t, trap.Is(err, trap.TableOutOfBounds))

	_, err = call(t, iso, WasmFunctionTableSet, nctx, inst, tagged.Smi(0), tagged.Smi(3), tagged.Null)
	require.Error(t, err)
	assert.True(t, trap.Is(err, trap.TableOutOfBounds))
}

func TestFunctionTableUnknownTable(t *testing.T) {
	iso := NewIsolate()
	inst, _ := newTestInstance(iso, 1)

	_, err := call(t, iso, WasmFunctionTableGet, inst.NativeContext(), inst, tagged.Smi(4), tagged.Smi(0))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindOutOfBounds}))
}

func TestThrowAndRethrow(t *testing.T) {
	iso := NewIsolate()
	exc := tagged.NewObject("boom")

	_, err := call(t, iso, Throw, nil, exc)
	var e *Exception
	require.True(t, stderrors.As(err, &e))
	assert.Same(t, exc, e.Value)
	assert.False(t, e.Rethrown)
	assert.Contains(t, err.Error(), "Object(boom)")

	_, err = call(t, iso, ReThrow, nil, exc)
	require.True(t, stderrors.As(err, &e))
	assert.True(t, e.Rethrown)
	assert.Contains(t, err.Error(), "rethrown")
}

func TestThrowWasmError(t *testing.T) {
	iso := NewIsolate()
	for _, r := range trap.Reasons() {
		_, err := call(t, iso, ThrowWasmError, nil, tagged.Smi(trap.MessageID(r)))
		require.Error(t, err)
		assert.True(t, trap.Is(err, r), "reason %s", r)
	}
}

func TestThrowStackOverflow(t *testing.T) {
	iso := NewIsolate()
	_, err := call(t, iso, ThrowStackOverflow, iso.NewNativeContext("x"))
	assert.True(t, stderrors.Is(err, errors.StackOverflow()))
}

func TestStackGuard(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		iso := NewIsolate()
		result, err := call(t, iso, StackGuard, nil)
		require.NoError(t, err)
		assert.Equal(t, tagged.Undefined, result)
	})

	t.Run("runs interrupts once", func(t *testing.T) {
		iso := NewIsolate()
		var runs int
		iso.RequestInterrupt(func(context.Context) error {
			runs++
			return nil
		})

		_, err := call(t, iso, StackGuard, nil)
		require.NoError(t, err)
		_, err = call(t, iso, StackGuard, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, runs)
	})

	t.Run("interrupt error", func(t *testing.T) {
		iso := NewIsolate()
		boom := stderrors.New("boom")
		var later int
		iso.RequestInterrupt(func(context.Context) error { return boom })
		iso.RequestInterrupt(func(context.Context) error {
			later++
			return nil
		})

		_, err := call(t, iso, StackGuard, nil)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, later)

		_, err = call(t, iso, StackGuard, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, later)
	})

	t.Run("termination", func(t *testing.T) {
		iso := NewIsolate()
		iso.TerminateExecution()
		assert.True(t, iso.IsExecutionTerminating())

		_, err := call(t, iso, StackGuard, nil)
		assert.True(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindTerminated}))

		iso.CancelTerminateExecution()
		_, err = call(t, iso, StackGuard, nil)
		assert.NoError(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		iso := NewIsolate()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := cEntry(iso).Call(ctx, StackGuard, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
