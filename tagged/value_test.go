package tagged

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxing(t *testing.T) {
	u := BoxUint32(math.MaxUint32)
	assert.Equal(t, TagHeapNumber, u.Tag())
	assert.Equal(t, float64(math.MaxUint32), u.Value())

	i := BoxInt32(-7)
	assert.Equal(t, float64(-7), i.Value())

	f := BoxFloat64(1.5)
	assert.Equal(t, 1.5, f.Value())
}

func TestBoxingAllocatesFresh(t *testing.T) {
	a := BoxUint32(1)
	b := BoxUint32(1)
	assert.NotSame(t, a, b)
}

func TestNumberConversions(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		u32  uint32
		i32  int32
		ok   bool
	}{
		{"smi", Smi(12), 12, 12, true},
		{"heap uint32 max", BoxUint32(math.MaxUint32), math.MaxUint32, -1, true},
		{"heap negative", BoxInt32(-2), math.MaxUint32 - 1, -2, true},
		{"fraction truncates", BoxFloat64(3.9), 3, 3, true},
		{"nan", BoxFloat64(math.NaN()), 0, 0, true},
		{"wraps", BoxFloat64(1 << 32), 0, 0, true},
		{"oddball", Undefined, 0, 0, false},
		{"object", NewObject("x"), 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, ok := NumberToUint32(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.u32, u)

			i, ok := NumberToInt32(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.i32, i)
		})
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Smi(4)", Describe(Smi(4)))
	assert.Equal(t, "HeapNumber(2.5)", Describe(BoxFloat64(2.5)))
	assert.Equal(t, "undefined", Describe(Undefined))
	assert.Equal(t, "null", Describe(Null))
	assert.Equal(t, "Object(payload)", Describe(NewObject("payload")))
	assert.Equal(t, "<raw>", Describe(nil))
}

func TestObjectPayload(t *testing.T) {
	o := NewObject(42)
	assert.Equal(t, TagObject, o.Tag())
	assert.Equal(t, 42, o.Payload())
}
