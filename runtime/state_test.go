package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-builtins/tagged"
)

func TestFrames(t *testing.T) {
	iso := NewIsolate()
	inst, _ := newTestInstance(iso)

	caller := NewWasmFrame(inst, 3)
	assert.Equal(t, FrameWasmCompiled, caller.Type())
	assert.Same(t, inst, caller.Load(FrameSlotInstance))
	assert.Nil(t, caller.Parent())

	builtin := caller.EnterBuiltin()
	assert.Equal(t, FrameBuiltin, builtin.Type())
	assert.Same(t, caller, builtin.Parent())
	assert.Nil(t, builtin.Load(FrameSlotInstance))
}

func TestInstanceFields(t *testing.T) {
	iso := NewIsolate()
	inst, mem := newTestInstance(iso, 2)

	assert.Same(t, iso.Roots(), inst.IsolateRoot())
	require.NotNil(t, inst.NativeContext())
	assert.Same(t, iso, inst.NativeContext().Isolate())
	assert.Equal(t, "test", inst.NativeContext().Name())
	assert.Same(t, mem, inst.Memory())
	assert.Equal(t, tagged.TagObject, inst.Tag())
	assert.Equal(t, 1, inst.NumTables())

	_, ok := inst.Table(1)
	assert.False(t, ok)
	_, ok = inst.Table(-1)
	assert.False(t, ok)
}

func TestNativeContextsAreDistinct(t *testing.T) {
	iso := NewIsolate()
	a := iso.NewInstance(InstanceConfig{Name: "a"})
	b := iso.NewInstance(InstanceConfig{Name: "b"})
	assert.NotEqual(t, a.NativeContext().ID(), b.NativeContext().ID())
	assert.Equal(t, "NoContext", (*NativeContext)(nil).String())
}

func TestTable(t *testing.T) {
	table := NewTable(2, 3)
	assert.Equal(t, uint32(2), table.Len())

	v, ok := table.Get(1)
	require.True(t, ok)
	assert.Equal(t, tagged.Null, v)

	_, ok = table.Get(2)
	assert.False(t, ok)
	assert.False(t, table.Set(2, tagged.Smi(1)))

	obj := tagged.NewObject(1)
	assert.True(t, table.Set(0, obj))
	v, _ = table.Get(0)
	assert.Same(t, obj, v)

	assert.True(t, table.Set(0, nil))
	v, _ = table.Get(0)
	assert.Equal(t, tagged.Null, v)

	prev, ok := table.Grow(1, nil)
	require.True(t, ok)
	assert.Equal(t, uint32(2), prev)
	_, ok = table.Grow(1, nil)
	assert.False(t, ok)
}

func TestRefs(t *testing.T) {
	refs := NewRefs()

	h, err := refs.Insert(tagged.Null)
	require.NoError(t, err)
	assert.Equal(t, Handle(0), h)

	v, ok := refs.Get(0)
	require.True(t, ok)
	assert.Equal(t, tagged.Null, v)

	obj := tagged.NewObject("x")
	h, err = refs.Insert(obj)
	require.NoError(t, err)
	assert.Equal(t, Handle(1), h)
	assert.Equal(t, 1, refs.Len())

	v, ok = refs.Get(h)
	require.True(t, ok)
	assert.Same(t, obj, v)

	dropped, ok := refs.Drop(h)
	require.True(t, ok)
	assert.Same(t, obj, dropped)
	_, ok = refs.Get(h)
	assert.False(t, ok)
	assert.Equal(t, 0, refs.Len())

	h2, err := refs.Insert(tagged.Smi(5))
	require.NoError(t, err)
	assert.Equal(t, h, h2, "freed handle is reused")

	require.NoError(t, refs.Close())
	_, err = refs.Insert(obj)
	assert.ErrorIs(t, err, ErrRefsClosed)
}
