package runtime

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-builtins/errors"
	"github.com/wippyai/wasm-builtins/tagged"
)

func cEntry(iso *Isolate) *CEntry {
	return iso.Roots().Load(SlotCEntry).(*CEntry)
}

func TestRootTableHoldsSingleCEntry(t *testing.T) {
	iso := NewIsolate()
	code := iso.Roots().Load(SlotCEntry)
	require.NotNil(t, code)
	assert.IsType(t, &CEntry{}, code)
	assert.Equal(t, "CEntry_Return1_ArgvOnStack", code.Name())
	assert.Same(t, code, iso.Roots().Load(SlotCEntry))
}

func TestCEntryRejectsUntaggedArguments(t *testing.T) {
	iso := NewIsolate()
	nctx := iso.NewNativeContext("test")

	_, err := cEntry(iso).Call(context.Background(), Throw, nctx, nil)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseDispatch, Kind: errors.KindInvalidInput}))
	assert.Zero(t, iso.TotalCalls())
}

func TestCEntryChecksArity(t *testing.T) {
	iso := NewIsolate()
	_, err := cEntry(iso).Call(context.Background(), WasmMemoryGrow, nil, tagged.Smi(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2 arguments, got 1")
}

func TestCEntryUnknownFunction(t *testing.T) {
	iso := NewIsolate()
	_, err := cEntry(iso).Call(context.Background(), FunctionID(200), nil)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseDispatch, Kind: errors.KindNotFound}))
}

func TestCEntryRecordsAndNotifies(t *testing.T) {
	var events []DispatchEvent
	iso := NewIsolate(WithObserver(ObserverFunc(func(e DispatchEvent) {
		events = append(events, e)
	})))
	nctx := iso.NewNativeContext("test")

	result, err := cEntry(iso).Call(context.Background(), StackGuard, nctx)
	require.NoError(t, err)
	assert.Equal(t, tagged.Undefined, result)

	require.Len(t, events, 1)
	assert.Equal(t, StackGuard, events[0].Function)
	assert.Same(t, nctx, events[0].Context)
	assert.Equal(t, uint64(1), iso.Calls(StackGuard))
	assert.Equal(t, map[FunctionID]uint64{StackGuard: 1}, iso.Stats())
}

func TestCEntryUsesReplacementFunction(t *testing.T) {
	var got Arguments
	iso := NewIsolate(WithFunction(WasmMemoryGrow, func(_ context.Context, args Arguments) (tagged.Value, error) {
		got = args
		return tagged.Smi(9), nil
	}))

	result, err := cEntry(iso).Call(context.Background(), WasmMemoryGrow, nil, tagged.Smi(1), tagged.Smi(2))
	require.NoError(t, err)
	assert.Equal(t, tagged.Smi(9), result)
	assert.Equal(t, WasmMemoryGrow, got.Function())
	assert.Equal(t, 2, got.Len())
	assert.Nil(t, got.Context)
}

func TestSubscribeUnsubscribe(t *testing.T) {
	iso := NewIsolate()
	var n int
	unsubscribe := iso.Subscribe(&countingObserver{n: &n})

	_, _ = cEntry(iso).Call(context.Background(), StackGuard, nil)
	unsubscribe()
	_, _ = cEntry(iso).Call(context.Background(), StackGuard, nil)

	assert.Equal(t, 1, n)
	assert.Equal(t, uint64(2), iso.Calls(StackGuard))
}

func TestUnsubscribeObserverFunc(t *testing.T) {
	iso := NewIsolate()
	var first, second int
	unsubFirst := iso.Subscribe(ObserverFunc(func(DispatchEvent) { first++ }))
	iso.Subscribe(ObserverFunc(func(DispatchEvent) { second++ }))

	_, _ = cEntry(iso).Call(context.Background(), StackGuard, nil)
	assert.NotPanics(t, unsubFirst)
	assert.NotPanics(t, unsubFirst)
	_, _ = cEntry(iso).Call(context.Background(), StackGuard, nil)

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestObserverMaySubscribeDuringDispatch(t *testing.T) {
	iso := NewIsolate()
	var nested int
	var unsubscribe func()
	unsubscribe = iso.Subscribe(ObserverFunc(func(DispatchEvent) {
		unsubscribe()
		iso.Subscribe(ObserverFunc(func(DispatchEvent) { nested++ }))
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = cEntry(iso).Call(context.Background(), StackGuard, nil)
		_, _ = cEntry(iso).Call(context.Background(), StackGuard, nil)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatch deadlocked on observer registration")
	}
	assert.Equal(t, 1, nested)
}

type countingObserver struct {
	n *int
}

func (o *countingObserver) OnDispatch(DispatchEvent) { *o.n++ }

func TestFunctionIDs(t *testing.T) {
	ids := FunctionIDs()
	require.Len(t, ids, numFunctions)
	for _, id := range ids {
		assert.True(t, id.Valid())
		assert.NotContains(t, id.String(), "FunctionID(")
	}
	assert.Equal(t, "FunctionID(99)", FunctionID(99).String())
	assert.Equal(t, 5, WasmI64AtomicWait.Arity())
}
